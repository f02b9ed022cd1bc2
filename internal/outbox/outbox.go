// Package outbox implements the Notification Outbox (spec.md §4.5): a
// single poller process claims unclaimed/lease-expired rows, renders and
// sends each to its user's chat, and records delivery. Grounded on the
// teacher's internal/websocket/hub.go broadcast loop, generalized from an
// in-memory fan-out to a durable claim/deliver cycle since a notification
// here must survive a process restart between being written and being
// sent.
package outbox

import (
	"context"
	"fmt"
	"os"
	"time"

	"raptor/internal/metrics"
	"raptor/internal/models"
	"raptor/internal/store"
	"raptor/pkg/logging"
)

// Sender renders a notification's (type, payload) into a chat message and
// delivers it to the user. The production implementation talks to the
// chat-UI's bot API; no example in this pack wires a concrete chat
// transport, so it stays behind this interface.
type Sender interface {
	Send(ctx context.Context, userTelegramID int64, n *models.Notification) error
}

// Config tunes the claim/deliver cadence.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	Lease        time.Duration // claimed rows older than this are re-eligible
	MaxAttempts  int
}

// DefaultConfig follows spec.md §4.5's "a single poller process... each
// tick" shape with a short lease, since a stuck delivery should free up
// quickly rather than stall a user's queue.
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		BatchSize:    50,
		Lease:        30 * time.Second,
		MaxAttempts:  5,
	}
}

// Engine is the outbox's single consumer.
type Engine struct {
	store    *store.Store
	sender   Sender
	workerID string
	cfg      Config
	log      *logging.Logger
}

// New builds an outbox engine. Only one instance should run against a
// given database at a time (spec.md §4.5: "single poller process... to
// guarantee single-instance delivery"); running more is safe but wasteful
// since ClaimBatch already serializes via row locks.
func New(st *store.Store, sender Sender, cfg Config, log *logging.Logger) *Engine {
	return &Engine{store: st, sender: sender, workerID: workerID(), cfg: cfg, log: log}
}

func workerID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d-outbox", host, os.Getpid())
}

// Start runs the claim/deliver loop until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	go e.run(ctx)
}

func (e *Engine) run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick claims a batch and delivers it oldest-first, which ClaimBatch's
// `ORDER BY created_at ASC` already guarantees per spec.md §4.5
// "Ordering": since one user's rows are created in order, a global
// oldest-first scan never reorders them relative to each other.
func (e *Engine) tick(ctx context.Context) {
	rows, err := e.store.Notifications.ClaimBatch(ctx, e.workerID, e.cfg.BatchSize, e.cfg.Lease)
	if err != nil {
		if e.log != nil {
			e.log.Warn("outbox: claim batch failed", logging.Err(err))
		}
		return
	}
	for _, n := range rows {
		e.deliver(ctx, n)
	}
}

func (e *Engine) deliver(ctx context.Context, n *models.Notification) {
	if err := e.sender.Send(ctx, n.UserTelegramID, n); err != nil {
		metrics.RecordNotificationDelivery(false)
		if markErr := e.store.Notifications.MarkFailed(n.ID, e.cfg.MaxAttempts); markErr != nil && e.log != nil {
			e.log.Warn("outbox: mark failed errored", logging.Err(markErr))
		}
		if e.log != nil {
			e.log.Warn("outbox: send failed, will retry until max attempts",
				logging.String("notification_id", n.ID.String()), logging.Err(err))
		}
		return
	}
	metrics.RecordNotificationDelivery(true)
	if err := e.store.Notifications.MarkDelivered(n.ID); err != nil && e.log != nil {
		e.log.Warn("outbox: mark delivered failed", logging.String("notification_id", n.ID.String()), logging.Err(err))
	}
}
