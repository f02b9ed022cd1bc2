package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"raptor/internal/models"
	"raptor/internal/store"
)

type fakeSender struct {
	sendErr error
	sent    []*models.Notification
}

func (f *fakeSender) Send(_ context.Context, _ int64, n *models.Notification) error {
	f.sent = append(f.sent, n)
	return f.sendErr
}

func newMockStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.New(db), mock
}

func TestOutboxEngine_DeliverSuccessMarksDelivered(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(
		[]string{"id", "user_telegram_id", "type", "payload", "claimed_by", "claimed_at", "delivered_at", "attempts", "failed", "created_at"},
	).AddRow(id, int64(42), models.NotificationBuyConfirmed, []byte(`{"mint":"abc"}`), "w-1", now, nil, 0, false, now)

	mock.ExpectQuery(`UPDATE notifications`).WillReturnRows(rows)
	mock.ExpectExec(`UPDATE notifications SET delivered_at`).WithArgs(sqlmock.AnyArg(), id).WillReturnResult(sqlmock.NewResult(0, 1))

	sender := &fakeSender{}
	e := New(st, sender, Config{BatchSize: 10, Lease: time.Minute, MaxAttempts: 3}, nil)
	e.tick(context.Background())

	if len(sender.sent) != 1 {
		t.Fatalf("sender.sent = %d, want 1", len(sender.sent))
	}
	if sender.sent[0].ID != id {
		t.Fatalf("delivered wrong notification id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOutboxEngine_DeliverFailureMarksFailed(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(
		[]string{"id", "user_telegram_id", "type", "payload", "claimed_by", "claimed_at", "delivered_at", "attempts", "failed", "created_at"},
	).AddRow(id, int64(7), models.NotificationSLHit, []byte(`{}`), "w-1", now, nil, 2, false, now)

	mock.ExpectQuery(`UPDATE notifications`).WillReturnRows(rows)
	mock.ExpectExec(`UPDATE notifications SET attempts`).WithArgs(3, id).WillReturnResult(sqlmock.NewResult(0, 1))

	sender := &fakeSender{sendErr: errors.New("chat api unavailable")}
	e := New(st, sender, Config{BatchSize: 10, Lease: time.Minute, MaxAttempts: 3}, nil)
	e.tick(context.Background())

	if len(sender.sent) != 1 {
		t.Fatalf("sender.sent = %d, want 1", len(sender.sent))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOutboxEngine_EmptyBatchSendsNothing(t *testing.T) {
	st, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "user_telegram_id", "type", "payload", "claimed_by", "claimed_at", "delivered_at", "attempts", "failed", "created_at"})
	mock.ExpectQuery(`UPDATE notifications`).WillReturnRows(rows)

	sender := &fakeSender{}
	e := New(st, sender, Config{BatchSize: 10, Lease: time.Minute, MaxAttempts: 3}, nil)
	e.tick(context.Background())

	if len(sender.sent) != 0 {
		t.Fatalf("sender.sent = %d, want 0", len(sender.sent))
	}
}
