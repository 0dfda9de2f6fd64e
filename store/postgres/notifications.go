package postgres

import (
	"context"
	"time"

	"github.com/MrEthical07/lmsAuth/store"
)

const notificationColumns = `id, principal_id, title, message, status, created_at, updated_at`

// Notifications is the PostgreSQL notification repository.
type Notifications struct {
	db DBTX
}

func NewNotifications(db DBTX) *Notifications {
	return &Notifications{db: db}
}

func scanNotification(row rowScanner) (store.Notification, error) {
	var (
		n      store.Notification
		status string
	)
	if err := row.Scan(&n.ID, &n.PrincipalID, &n.Title, &n.Message, &status, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return store.Notification{}, err
	}
	n.Status = store.NotificationStatus(status)
	return n, nil
}

func (r *Notifications) CreateNotification(ctx context.Context, n store.Notification) (store.Notification, error) {
	query :=
		`INSERT INTO notifications (principal_id, title, message)
		 VALUES ($1, $2, $3)
		 RETURNING ` + notificationColumns

	out, err := scanNotification(r.db.QueryRowContext(ctx, query, n.PrincipalID, n.Title, n.Message))
	if err != nil {
		return store.Notification{}, mapError(err, store.ErrNotificationNotFound)
	}
	return out, nil
}

// ListNotifications returns all notifications, newest first.
func (r *Notifications) ListNotifications(ctx context.Context) ([]store.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, store.ErrNotificationNotFound)
	}
	defer rows.Close()

	out := []store.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, mapError(err, store.ErrNotificationNotFound)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, store.ErrNotificationNotFound)
	}
	return out, nil
}

func (r *Notifications) MarkRead(ctx context.Context, id string) (store.Notification, error) {
	query :=
		`UPDATE notifications
		 SET status = 'read', updated_at = now()
		 WHERE id = $1
		 RETURNING ` + notificationColumns

	out, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return store.Notification{}, mapError(err, store.ErrNotificationNotFound)
	}
	return out, nil
}

// DeleteReadBefore removes read notifications created before cutoff.
func (r *Notifications) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE status = 'read' AND created_at < $1`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, mapError(err, store.ErrNotificationNotFound)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError(err, store.ErrNotificationNotFound)
	}
	return n, nil
}

var _ store.NotificationStore = (*Notifications)(nil)
