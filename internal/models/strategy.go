package models

import (
	"time"

	"github.com/google/uuid"
)

// SnipeMode controls how much time the opportunity engine spends fetching
// off-chain metadata before scoring. Mutually exclusive with latency: a
// faster mode risks scoring blind to name/symbol/uri quality.
type SnipeMode string

const (
	SnipeModeSpeed   SnipeMode = "speed"   // 0 ms budget, never fetches metadata
	SnipeModeBalanced SnipeMode = "balanced" // 200 ms budget
	SnipeModeQuality SnipeMode = "quality" // 2000 ms budget
)

// snipeModeRank orders modes from least to most thorough so the
// opportunity engine can pick the most thorough one active across
// enabled strategies (spec.md §4.2 step 3).
var snipeModeRank = map[SnipeMode]int{
	SnipeModeSpeed:    0,
	SnipeModeBalanced: 1,
	SnipeModeQuality:  2,
}

// Budget returns the metadata fetch timeout for this mode.
func (m SnipeMode) Budget() time.Duration {
	switch m {
	case SnipeModeBalanced:
		return 200 * time.Millisecond
	case SnipeModeQuality:
		return 2000 * time.Millisecond
	default:
		return 0
	}
}

// MoreThorough reports whether m is at least as thorough as other.
func (m SnipeMode) MoreThorough(other SnipeMode) bool {
	return snipeModeRank[m] >= snipeModeRank[other]
}

// TrailingConfig configures the TRAIL trigger (spec.md §4.4).
type TrailingConfig struct {
	Enabled            bool    `json:"enabled"`
	ActivationPercent  float64 `json:"activation_percent"`  // price must exceed entry by this % before trailing arms
	TrailingDistanceBps int64  `json:"trailing_distance_bps"`
}

// DCARung is one take-profit rung in a laddered exit: sell SellPercentBps
// of the original size once price rises TargetBps above entry. Rungs are
// evaluated in order; a position works through them one at a time via
// Position.ExitLevelsHit (spec.md §4.4: "fire for the next unused rung
// with its partial sell_percent").
type DCARung struct {
	TargetBps      int `json:"target_bps"`       // price threshold above entry, in bps
	SellPercentBps int `json:"sell_percent_bps"` // fraction of original size to sell at this rung
}

// Strategy is a user's autohunt configuration for one chain. Created on
// first autohunt toggle; mutated only by its owning user. When disabled,
// no BUY job may be created for it (spec.md §3 invariant).
type Strategy struct {
	ID              uuid.UUID `json:"id"`
	UserTelegramID  int64     `json:"user_telegram_id"`
	Chain           Chain     `json:"chain"`
	Enabled         bool      `json:"enabled"`
	AutoExecute     bool      `json:"auto_execute"`
	MinScore        int       `json:"min_score"`
	AllowedSources  []string  `json:"allowed_sources"`
	TokenDenylist   []string  `json:"token_denylist"`
	DeployerDenylist []string `json:"deployer_denylist"`
	MaxPerTradeSol  float64   `json:"max_per_trade_sol"`
	SlippageBps     int       `json:"slippage_bps"`
	PriorityFeeLamports uint64 `json:"priority_fee_lamports"`
	TakeProfitBps   int       `json:"take_profit_bps"` // percentages expressed in bps, [0, 100000]
	StopLossBps     int       `json:"stop_loss_bps"`
	MaxHold         time.Duration `json:"max_hold"`
	Trailing        TrailingConfig `json:"trailing"`
	MoonBagBps      int       `json:"moon_bag_bps"`
	DCALadder       []DCARung `json:"dca_ladder,omitempty"` // empty: flat single-shot TP at TakeProfitBps
	SnipeMode       SnipeMode `json:"snipe_mode"`
	MinLiquiditySol float64   `json:"min_liquidity_sol"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Laddered reports whether this strategy exits TP in rungs rather than a
// single take-profit price.
func (s *Strategy) Laddered() bool {
	return len(s.DCALadder) > 0
}

// NextRung returns the first rung past levelsHit already fired, or ok=false
// once every rung has been used.
func (s *Strategy) NextRung(levelsHit int) (rung DCARung, ok bool) {
	if levelsHit < 0 || levelsHit >= len(s.DCALadder) {
		return DCARung{}, false
	}
	return s.DCALadder[levelsHit], true
}

// AllowsSource reports whether source is in the strategy's allowlist.
func (s *Strategy) AllowsSource(source string) bool {
	for _, a := range s.AllowedSources {
		if a == source {
			return true
		}
	}
	return false
}

// DeniesToken reports whether mint or deployer trips a denylist.
func (s *Strategy) DeniesToken(mint, deployer string) bool {
	for _, m := range s.TokenDenylist {
		if m == mint {
			return true
		}
	}
	for _, d := range s.DeployerDenylist {
		if d == deployer {
			return true
		}
	}
	return false
}
