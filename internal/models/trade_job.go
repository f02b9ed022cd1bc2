package models

import (
	"time"

	"github.com/google/uuid"
)

// JobAction distinguishes an entry job from an exit job.
type JobAction string

const (
	JobActionBuy  JobAction = "BUY"
	JobActionSell JobAction = "SELL"
)

// JobStatus is the claim lifecycle column. Only the claimant may advance
// status past CLAIMED (spec.md §3 ownership rules).
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobClaimed   JobStatus = "CLAIMED"
	JobExecuting JobStatus = "EXECUTING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

// ExitTrigger names the reason a SELL job was produced by the TP/SL engine.
type ExitTrigger string

const (
	TriggerNone      ExitTrigger = ""
	TriggerTP        ExitTrigger = "TP"
	TriggerSL        ExitTrigger = "SL"
	TriggerTrail     ExitTrigger = "TRAIL"
	TriggerMaxHold   ExitTrigger = "MAXHOLD"
	TriggerEmergency ExitTrigger = "EMERGENCY"
)

// TriggerPriority returns the priority ranking from spec.md §4.4:
// lower number wins when multiple triggers fire in the same tick.
func TriggerPriority(t ExitTrigger) int {
	switch t {
	case TriggerSL:
		return 0
	case TriggerTP:
		return 1
	case TriggerTrail:
		return 2
	case TriggerMaxHold:
		return 3
	case TriggerEmergency:
		return 0 // operator-initiated, treated with SL urgency
	default:
		return 99
	}
}

// JobPayload carries the fields needed to execute either side of a trade.
// Only the fields relevant to Action are populated.
type JobPayload struct {
	Mint            string      `json:"mint"`
	AmountSol       float64     `json:"amount_sol,omitempty"`       // BUY
	SlippageBps     int         `json:"slippage_bps"`
	PriorityFeeLamports uint64  `json:"priority_fee_lamports"`
	Trigger         ExitTrigger `json:"trigger,omitempty"`          // SELL
	TriggerPrice    float64     `json:"trigger_price,omitempty"`    // SELL
	SellPercentBps  int         `json:"sell_percent_bps,omitempty"` // SELL, [0,10000]
	PositionID      uuid.UUID   `json:"position_id,omitempty"`      // SELL
}

// TradeJob is a durable, claimable unit of execution work. Exactly one
// row exists per (user, intent) via IdempotencyKey.
type TradeJob struct {
	ID              int64      `json:"id"`
	IdempotencyKey  string     `json:"idempotency_key"`
	StrategyID      uuid.UUID  `json:"strategy_id"`
	UserTelegramID  int64      `json:"user_telegram_id"`
	OpportunityID   uuid.UUID  `json:"opportunity_id"`
	Chain           Chain      `json:"chain"`
	Action          JobAction  `json:"action"`
	Payload         JobPayload `json:"payload"`
	Priority        int        `json:"priority"`
	Status          JobStatus  `json:"status"`
	ClaimedBy       string     `json:"claimed_by,omitempty"`
	ClaimedAt       *time.Time `json:"claimed_at,omitempty"`
	Attempts        int        `json:"attempts"`
	LastError       string     `json:"last_error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
