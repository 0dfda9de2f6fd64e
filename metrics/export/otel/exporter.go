package otel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/MrEthical07/lmsAuth/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// Instrument names and attribute keys.
const (
	EventsInstrument       = "lmsauth.events"
	AuditDroppedInstrument = "lmsauth.audit.dropped"

	EventKey     = attribute.Key("event")
	BoundKey     = attribute.Key("le")
	EventTypeKey = attribute.Key("event_type")
)

// MetricsSource is read on every collection. *lmsAuth.Engine satisfies it.
type MetricsSource interface {
	MetricsSnapshot() lmsAuth.MetricsSnapshot
	AuditDroppedByType() map[string]uint64
}

type eventSeries struct {
	id   lmsAuth.MetricID
	attr metric.ObserveOption
}

// latencySeries is one engine histogram spread over a bucket gauge keyed by
// le and a count gauge, since observable instruments cannot carry buckets.
type latencySeries struct {
	id      lmsAuth.MetricID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
	bounds  [internaldefs.BucketCount]metric.ObserveOption
}

type Exporter struct {
	source       MetricsSource
	registration metric.Registration
	events       metric.Int64ObservableCounter
	eventSeries  []eventSeries
	latency      []latencySeries
	auditDropped metric.Int64ObservableCounter
}

// NewExporter registers the engine instruments on meter. Every engine counter
// becomes one series of lmsauth.events, told apart by the event attribute.
func NewExporter(meter metric.Meter, source MetricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	events, err := meter.Int64ObservableCounter(EventsInstrument,
		metric.WithDescription("Authentication events by outcome."),
		metric.WithUnit("{event}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", EventsInstrument, err)
	}
	auditDropped, err := meter.Int64ObservableCounter(AuditDroppedInstrument,
		metric.WithDescription(internaldefs.AuditDroppedHelp),
		metric.WithUnit("{event}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", AuditDroppedInstrument, err)
	}

	exporter := &Exporter{
		source:       source,
		events:       events,
		auditDropped: auditDropped,
		eventSeries:  make([]eventSeries, 0, len(internaldefs.CounterDefs)),
	}
	for _, def := range internaldefs.CounterDefs {
		exporter.eventSeries = append(exporter.eventSeries, eventSeries{
			id:   def.ID,
			attr: metric.WithAttributes(EventKey.String(internaldefs.EventName(def.Name))),
		})
	}

	observables := []metric.Observable{events, auditDropped}
	for _, def := range internaldefs.HistogramDefs {
		series, err := newLatencySeries(meter, def)
		if err != nil {
			return nil, err
		}
		exporter.latency = append(exporter.latency, series)
		observables = append(observables, series.buckets, series.count)
	}

	registration, err := meter.RegisterCallback(exporter.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	exporter.registration = registration
	return exporter, nil
}

// instrumentName turns lmsauth_validate_latency_seconds into
// lmsauth.validate.latency.
func instrumentName(promName string) string {
	return strings.ReplaceAll(strings.TrimSuffix(promName, "_seconds"), "_", ".")
}

func newLatencySeries(meter metric.Meter, def internaldefs.HistogramDef) (latencySeries, error) {
	name := instrumentName(def.Name)
	buckets, err := meter.Int64ObservableGauge(name+".bucket",
		metric.WithDescription(def.Help+" Cumulative count per upper bound in seconds."))
	if err != nil {
		return latencySeries{}, fmt.Errorf("create %s.bucket: %w", name, err)
	}
	count, err := meter.Int64ObservableGauge(name+".count",
		metric.WithDescription(def.Help+" Total samples."))
	if err != nil {
		return latencySeries{}, fmt.Errorf("create %s.count: %w", name, err)
	}

	series := latencySeries{id: def.ID, buckets: buckets, count: count}
	for i, le := range internaldefs.HistogramBoundLabels {
		series.bounds[i] = metric.WithAttributes(BoundKey.String(le))
	}
	return series, nil
}

func (e *Exporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, s := range e.eventSeries {
		observer.ObserveInt64(e.events, int64(snapshot.Counters[s.id]), s.attr)
	}
	for _, s := range e.latency {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[s.id]))
		for i := range cumulative {
			observer.ObserveInt64(s.buckets, int64(cumulative[i]), s.bounds[i])
		}
		observer.ObserveInt64(s.count, int64(cumulative[internaldefs.BucketCount-1]))
	}

	drops := e.source.AuditDroppedByType()
	for _, eventType := range internaldefs.SortedKeys(drops) {
		observer.ObserveInt64(e.auditDropped, int64(drops[eventType]), metric.WithAttributes(EventTypeKey.String(eventType)))
	}
	return nil
}

// Close unregisters the callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
