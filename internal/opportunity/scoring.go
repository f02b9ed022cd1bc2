// Package opportunity implements the Opportunity Engine (spec.md §4.2):
// idempotent upsert of create-events, the deterministic scoring rule set,
// and BUY job materialization per matching enabled strategy.
package opportunity

import "raptor/internal/models"

// RuleInput is the data a scoring rule evaluates against.
type RuleInput struct {
	InitialLiquiditySol float64
	HasMetadata         bool
	NameLength          int
	SymbolLength        int
	DeployerSeenBefore  bool
}

// RuleResult is one rule's verdict.
type RuleResult struct {
	Name       string
	Passed     bool
	Weight     int
	IsHardStop bool
}

// Rule is one scoring check. The rule set is ordered and deterministic;
// ties in the final score are broken in rule order (spec.md §4.2 step 5).
type Rule struct {
	Name       string
	Weight     int
	IsHardStop bool
	Check      func(RuleInput) bool
}

// DefaultRules is the scoring rule set. Each rule produces
// {passed, weight, isHardStop}; a failing hard-stop rule rejects the
// opportunity regardless of score, otherwise the score is the sum of
// weights of passing rules.
var DefaultRules = []Rule{
	{
		Name:       "min_liquidity",
		Weight:     0,
		IsHardStop: true,
		Check:      func(in RuleInput) bool { return in.InitialLiquiditySol > 0 },
	},
	{
		Name:   "has_metadata",
		Weight: 20,
		Check:  func(in RuleInput) bool { return in.HasMetadata },
	},
	{
		Name:   "plausible_name",
		Weight: 15,
		Check:  func(in RuleInput) bool { return in.NameLength > 0 && in.NameLength <= 32 },
	},
	{
		Name:   "plausible_symbol",
		Weight: 15,
		Check:  func(in RuleInput) bool { return in.SymbolLength > 0 && in.SymbolLength <= 10 },
	},
	{
		Name:   "liquidity_above_threshold",
		Weight: 25,
		Check:  func(in RuleInput) bool { return in.InitialLiquiditySol >= 5 },
	},
	{
		Name:   "new_deployer",
		Weight: 10,
		Check:  func(in RuleInput) bool { return !in.DeployerSeenBefore },
	},
}

// Score runs rules over in in order, returning the total score, the reason
// list (one entry per passing rule, in rule order), and whether a hard
// stop rejected the opportunity outright.
func Score(rules []Rule, in RuleInput) (score int, reasons []string, hardStopped bool) {
	for _, rule := range rules {
		passed := rule.Check(in)
		if rule.IsHardStop && !passed {
			return 0, nil, true
		}
		if passed {
			score += rule.Weight
			reasons = append(reasons, rule.Name)
		}
	}
	return score, reasons, false
}

// SelectSnipeMode picks the most thorough snipe mode active among enabled
// strategies (quality > balanced > speed). Known coarseness per spec.md
// §4.2 step 3: the fetch budget is chosen once per opportunity, not per
// user.
func SelectSnipeMode(strategies []*models.Strategy) models.SnipeMode {
	best := models.SnipeModeSpeed
	for _, s := range strategies {
		if s.SnipeMode.MoreThorough(best) {
			best = s.SnipeMode
		}
	}
	return best
}
