package models

import (
	"time"

	"github.com/google/uuid"
)

// LifecycleState tracks a position's relationship to bonding-curve
// graduation (spec.md §3).
type LifecycleState string

const (
	LifecyclePreGraduation  LifecycleState = "PRE_GRADUATION"
	LifecyclePostGraduation LifecycleState = "POST_GRADUATION"
	LifecycleClosed         LifecycleState = "CLOSED"
)

// TriggerState is the TP/SL engine's own state machine, distinct from
// LifecycleState. Transitions are monotonic and never step backward
// (spec.md §8 property 2).
type TriggerState string

const (
	TriggerMonitoring TriggerState = "MONITORING"
	TriggerTriggered  TriggerState = "TRIGGERED"
	TriggerExecuting  TriggerState = "EXECUTING"
	TriggerCompleted  TriggerState = "COMPLETED"
	TriggerFailed     TriggerState = "FAILED"
)

// triggerTransitions is the DAG MONITORING → TRIGGERED → EXECUTING →
// {COMPLETED, FAILED}. Mirrors the shape of the teacher's
// internal/bot/state_machine.go ValidTransitions table, generalized from
// the arbitrage pair lifecycle to the position trigger lifecycle.
var triggerTransitions = map[TriggerState][]TriggerState{
	TriggerMonitoring: {TriggerTriggered},
	TriggerTriggered:  {TriggerExecuting},
	TriggerExecuting:  {TriggerCompleted, TriggerFailed},
}

// CanTransitionTrigger reports whether from → to is a legal trigger-state
// move.
func CanTransitionTrigger(from, to TriggerState) bool {
	for _, s := range triggerTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalTrigger reports whether a trigger state will never advance
// further without manual intervention.
func IsTerminalTrigger(s TriggerState) bool {
	return s == TriggerCompleted || s == TriggerFailed
}

// Position is an open (or closed) holding created on a successful BUY.
type Position struct {
	ID                 uuid.UUID      `json:"id"`
	UserTelegramID     int64          `json:"user_telegram_id"`
	StrategyID         uuid.UUID      `json:"strategy_id"`
	Chain              Chain          `json:"chain"`
	TokenMint          string         `json:"token_mint"`
	TokenSymbol        string         `json:"token_symbol"`
	BondingCurve       string         `json:"bonding_curve"`
	EntryTxSig         string         `json:"entry_tx_sig"`
	EntryPrice         float64        `json:"entry_price"` // lamports_in / tokens_out
	EntryCostSol       float64        `json:"entry_cost_sol"`
	SizeTokens         float64        `json:"size_tokens"`
	TokenDecimals      int            `json:"token_decimals"`
	LifecycleState     LifecycleState `json:"lifecycle_state"`
	TriggerState       TriggerState   `json:"trigger_state"`
	TPPrice            float64        `json:"tp_price"`
	SLPrice            float64        `json:"sl_price"`
	PeakPrice          float64        `json:"peak_price"`
	TrailingStopPrice  float64        `json:"trailing_stop_price"`
	PartialExitTaken   bool           `json:"partial_exit_taken"`
	ExitLevelsHit      int            `json:"exit_levels_hit"`
	MoonBagAmount      float64        `json:"moon_bag_amount"`
	RealizedPnlSol     float64        `json:"realized_pnl_sol"`
	LastTrigger        ExitTrigger    `json:"last_trigger,omitempty"`
	LastTriggerPrice   float64        `json:"last_trigger_price,omitempty"`
	OpenedAt           time.Time      `json:"opened_at"`
	ClosedAt           *time.Time     `json:"closed_at,omitempty"`
}

// IsOpen reports whether the position still holds size.
func (p *Position) IsOpen() bool {
	return p.LifecycleState != LifecycleClosed
}

// IsEligibleForEvaluation reports whether the TP/SL engine should still
// evaluate triggers for this position: open, and not already past
// MONITORING (spec.md §4.4: "A position in TRIGGERED or later is not
// re-evaluated").
func (p *Position) IsEligibleForEvaluation() bool {
	return p.IsOpen() && p.TriggerState == TriggerMonitoring
}

// UpdatePeak advances PeakPrice monotonically; never steps backward even
// if current is lower than the stored peak (spec.md §9 open question:
// peak must be monotone non-decreasing).
func (p *Position) UpdatePeak(current float64) {
	if current > p.PeakPrice {
		p.PeakPrice = current
	}
}
