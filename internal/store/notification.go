package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"raptor/internal/models"
)

// NotificationRepository works with the notifications table.
type NotificationRepository struct {
	db *sql.DB
}

const notificationColumns = `
	id, user_telegram_id, type, payload, claimed_by, claimed_at, delivered_at,
	attempts, failed, created_at`

func scanNotification(scan func(...interface{}) error) (*models.Notification, error) {
	n := &models.Notification{}
	var payload []byte
	err := scan(
		&n.ID, &n.UserTelegramID, &n.Type, &payload, &n.ClaimedBy, &n.ClaimedAt, &n.DeliveredAt,
		&n.Attempts, &n.Failed, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &n.Payload); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Create enqueues a notification for outbox delivery.
func (r *NotificationRepository) Create(n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()

	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (id, user_telegram_id, type, payload, attempts, failed, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = r.db.Exec(query, n.ID, n.UserTelegramID, n.Type, payload, n.Attempts, n.Failed, n.CreatedAt)
	return err
}

// ClaimBatch is the store function behind spec.md §4.5's outbox: atomically
// claims up to `batch` undelivered, unclaimed (or lease-expired) rows for
// workerID.
func (r *NotificationRepository) ClaimBatch(ctx context.Context, workerID string, batch int, lease time.Duration) ([]*models.Notification, error) {
	query := `
		UPDATE notifications
		SET claimed_by = $1, claimed_at = $2
		WHERE id IN (
			SELECT id FROM notifications
			WHERE failed = false
			  AND delivered_at IS NULL
			  AND (claimed_by = '' OR claimed_at < $3)
			ORDER BY created_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + notificationColumns

	now := time.Now()
	rows, err := r.db.QueryContext(ctx, query, workerID, now, now.Add(-lease), batch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkDelivered records a successful delivery.
func (r *NotificationRepository) MarkDelivered(id uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE notifications SET delivered_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}

// MarkFailed increments attempts and gives up permanently once attempts
// reaches maxAttempts, per spec.md §4.5 ("a notification that cannot be delivered
// after N attempts is marked failed, not retried forever").
func (r *NotificationRepository) MarkFailed(id uuid.UUID, maxAttempts int) error {
	query := `
		UPDATE notifications
		SET attempts = attempts + 1,
		    claimed_by = '',
		    failed = (attempts + 1 >= $1)
		WHERE id = $2`
	_, err := r.db.Exec(query, maxAttempts, id)
	return err
}

// GetByID returns a notification by id.
func (r *NotificationRepository) GetByID(id uuid.UUID) (*models.Notification, error) {
	row := r.db.QueryRow(`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}
