package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MrEthical07/lmsAuth/store"
	"github.com/google/uuid"
)

// Notifications is a mutex-guarded notification store.
type Notifications struct {
	mu    sync.Mutex
	items map[string]store.Notification
	now   func() time.Time
}

func NewNotifications() *Notifications {
	return &Notifications{
		items: map[string]store.Notification{},
		now:   time.Now,
	}
}

// CreateNotification stores n. A zero CreatedAt is set to now; an empty
// status defaults to unread.
func (s *Notifications) CreateNotification(_ context.Context, n store.Notification) (store.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.NewString()
	if n.Status == "" {
		n.Status = store.NotificationUnread
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	n.UpdatedAt = n.CreatedAt
	s.items[n.ID] = n
	return n, nil
}

func (s *Notifications) ListNotifications(context.Context) ([]store.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Notification, 0, len(s.items))
	for _, n := range s.items {
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Notifications) MarkRead(_ context.Context, id string) (store.Notification, error) {
	if err := checkID(id); err != nil {
		return store.Notification{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return store.Notification{}, store.ErrNotificationNotFound
	}
	n.Status = store.NotificationRead
	n.UpdatedAt = s.now().UTC()
	s.items[id] = n
	return n, nil
}

func (s *Notifications) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, item := range s.items {
		if item.Status == store.NotificationRead && item.CreatedAt.Before(cutoff) {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many notifications are stored.
func (s *Notifications) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

var _ store.NotificationStore = (*Notifications)(nil)
