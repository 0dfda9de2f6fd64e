package lmsAuth

import (
	"testing"
	"time"
)

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricRefreshFailure)
	m.Observe(MetricValidateLatency, 3*time.Millisecond)
	m.Observe(MetricValidateLatency, time.Second)

	s := m.Snapshot()
	if s.Counters[MetricLoginSuccess] != 2 || s.Counters[MetricRefreshFailure] != 1 {
		t.Fatalf("unexpected counters %+v", s.Counters)
	}
	buckets := s.Histograms[MetricValidateLatency]
	if len(buckets) != histBucketCount || buckets[0] != 1 || buckets[histBucketCount-1] != 1 {
		t.Fatalf("unexpected histogram %v", buckets)
	}
	if _, ok := s.Counters[MetricValidateLatency]; ok {
		t.Fatal("expected histogram id to be absent from counters")
	}
}

func TestMetricsDisabledAndNil(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)
	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("expected disabled metrics to stay zero")
	}

	var nilMetrics *Metrics
	nilMetrics.Inc(MetricLoginSuccess)
	nilMetrics.Observe(MetricValidateLatency, time.Millisecond)
	if len(nilMetrics.Snapshot().Counters) != 0 {
		t.Fatal("expected empty snapshot from nil metrics")
	}
}

func TestBucketIndexBounds(t *testing.T) {
	cases := map[time.Duration]int{
		0:                      0,
		5 * time.Millisecond:   0,
		6 * time.Millisecond:   1,
		50 * time.Millisecond:  3,
		500 * time.Millisecond: 6,
		501 * time.Millisecond: 7,
	}
	for d, want := range cases {
		if got := bucketIndex(d); got != want {
			t.Fatalf("%v: expected bucket %d, got %d", d, want, got)
		}
	}
}
