package router

import "fmt"

// KnownGraduated reports whether mint is known to have graduated off its
// bonding curve, independent of the intent's own lifecycle_state hint
// (spec.md §4.3 step 2). A thin interface so the factory doesn't need a
// store dependency directly.
type KnownGraduated interface {
	IsGraduated(mint string) bool
}

// Select picks the router for intent, mirroring the teacher's
// NewExchange name-keyed switch but dispatching on graduation state
// instead of an exchange name string (spec.md §4.3 step 2: "if
// lifecycle_state == POST_GRADUATION or the mint is known to have
// graduated, use the AMM aggregator router; otherwise if a bonding curve
// exists, use the bonding-curve router").
func Select(intent Intent, postGraduation bool, graduated KnownGraduated, curve *BondingCurveRouter, amm *AmmAggregatorRouter) (Router, error) {
	isGraduated := postGraduation || (graduated != nil && graduated.IsGraduated(intent.Mint.String()))
	if isGraduated {
		if amm == nil {
			return nil, fmt.Errorf("router: no AMM aggregator router configured")
		}
		return amm, nil
	}
	if curve != nil && curve.CanHandle(intent) {
		return curve, nil
	}
	if amm != nil {
		return amm, nil
	}
	return nil, fmt.Errorf("router: no router can handle mint %s", intent.Mint.String())
}
