package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enumerates the terminal-state notifications the
// pipeline can emit (spec.md §7 "User-visible behavior").
type NotificationType string

const (
	NotificationBuyConfirmed    NotificationType = "BUY_CONFIRMED"
	NotificationBuyFailed       NotificationType = "BUY_FAILED"
	NotificationTPHit           NotificationType = "TP_HIT"
	NotificationSLHit           NotificationType = "SL_HIT"
	NotificationTrailingHit     NotificationType = "TRAILING_STOP_HIT"
	NotificationPositionClosed  NotificationType = "POSITION_CLOSED"
	NotificationExecutionFailed NotificationType = "EXECUTION_FAILED"
	NotificationHuntSkipped     NotificationType = "HUNT_SKIPPED"
)

// Notification is one outbox row. Created by any pipeline stage via an
// append-only insert; never edited by producers (spec.md §4.5).
type Notification struct {
	ID             uuid.UUID              `json:"id"`
	UserTelegramID int64                  `json:"user_telegram_id"`
	Type           NotificationType       `json:"type"`
	Payload        map[string]interface{} `json:"payload"`
	ClaimedBy      string                 `json:"claimed_by,omitempty"`
	ClaimedAt      *time.Time             `json:"claimed_at,omitempty"`
	DeliveredAt    *time.Time             `json:"delivered_at,omitempty"`
	Attempts       int                    `json:"attempts"`
	Failed         bool                   `json:"failed"`
	CreatedAt      time.Time              `json:"created_at"`
}

// IsPending reports whether the row is still eligible for delivery.
func (n *Notification) IsPending() bool {
	return n.DeliveredAt == nil && !n.Failed
}
