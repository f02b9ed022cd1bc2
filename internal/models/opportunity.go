package models

import (
	"time"

	"github.com/google/uuid"
)

// OpportunityStatus is the handoff column between the Hunter (producer)
// and the Executor (reader). Transitions are monotonic.
type OpportunityStatus string

const (
	OpportunityNew       OpportunityStatus = "NEW"
	OpportunityQualified OpportunityStatus = "QUALIFIED"
	OpportunityRejected  OpportunityStatus = "REJECTED"
	OpportunityExecuting OpportunityStatus = "EXECUTING"
	OpportunityCompleted OpportunityStatus = "COMPLETED"
	OpportunityExpired   OpportunityStatus = "EXPIRED"
)

// opportunityTransitions is the DAG from spec.md §3: NEW→{REJECTED,
// QUALIFIED}, QUALIFIED→{EXECUTING,EXPIRED}, EXECUTING→{COMPLETED,REJECTED}.
var opportunityTransitions = map[OpportunityStatus]map[OpportunityStatus]bool{
	OpportunityNew:       {OpportunityRejected: true, OpportunityQualified: true},
	OpportunityQualified: {OpportunityExecuting: true, OpportunityExpired: true},
	OpportunityExecuting: {OpportunityCompleted: true, OpportunityRejected: true},
}

// CanTransition reports whether from → to is a legal opportunity status
// move per the DAG above.
func CanTransition(from, to OpportunityStatus) bool {
	return opportunityTransitions[from][to]
}

// Opportunity is a scored, deduplicated candidate derived from a launchpad
// CreateEvent. Unique on (Source, TokenMint); rows are never deleted.
type Opportunity struct {
	ID               uuid.UUID         `json:"id"`
	Source           string            `json:"source"` // e.g. "pump.fun"
	TokenMint        string            `json:"token_mint"`
	Name             string            `json:"name"`
	Symbol           string            `json:"symbol"`
	Deployer         string            `json:"deployer"`
	BondingCurveAddr string            `json:"bonding_curve_addr"`
	InitialLiquiditySol float64        `json:"initial_liquidity_sol"`
	Score            int               `json:"score"`
	Reasons          []string          `json:"reasons"`
	Status           OpportunityStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
