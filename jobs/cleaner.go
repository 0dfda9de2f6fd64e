package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/lmsAuth/store"
	"go.uber.org/zap"
)

const (
	DefaultRetention = 30 * 24 * time.Hour
)

// NotificationCleaner deletes read notifications older than Retention once a
// day at local midnight.
type NotificationCleaner struct {
	store     store.NotificationStore
	logger    *zap.Logger
	retention time.Duration
	now       func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewNotificationCleaner(s store.NotificationStore, retention time.Duration, logger *zap.Logger) *NotificationCleaner {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationCleaner{
		store:     s,
		logger:    logger,
		retention: retention,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// RunOnce deletes expired notifications and returns the number removed.
func (c *NotificationCleaner) RunOnce(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.retention)
	n, err := c.store.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		c.logger.Error("notification cleanup failed", zap.Error(err))
		return 0, err
	}
	c.logger.Info("notification cleanup", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	return n, nil
}

// Start runs the cleaner in a goroutine until ctx is done or Stop is called.
func (c *NotificationCleaner) Start(ctx context.Context) {
	go c.loop(ctx)
}

// Stop halts the loop and waits for a running cleanup to finish.
func (c *NotificationCleaner) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *NotificationCleaner) loop(ctx context.Context) {
	defer close(c.done)

	for {
		timer := time.NewTimer(untilMidnight(c.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-c.stop:
			timer.Stop()
			return
		case <-timer.C:
			_, _ = c.RunOnce(ctx)
		}
	}
}

// untilMidnight returns the wait until the next local 00:00 after now.
func untilMidnight(now time.Time) time.Duration {
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}
