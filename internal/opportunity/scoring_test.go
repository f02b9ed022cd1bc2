package opportunity

import (
	"testing"
	"time"

	"raptor/internal/models"
)

func TestScoreHardStop(t *testing.T) {
	in := RuleInput{InitialLiquiditySol: 0}
	score, reasons, hardStopped := Score(DefaultRules, in)
	if !hardStopped {
		t.Fatalf("expected hard stop on zero liquidity")
	}
	if score != 0 || reasons != nil {
		t.Fatalf("hard-stopped score should be zero with no reasons, got %d %v", score, reasons)
	}
}

func TestScoreAccumulatesPassingWeights(t *testing.T) {
	in := RuleInput{
		InitialLiquiditySol: 10,
		HasMetadata:         true,
		NameLength:          4,
		SymbolLength:        3,
		DeployerSeenBefore:  false,
	}
	score, reasons, hardStopped := Score(DefaultRules, in)
	if hardStopped {
		t.Fatalf("did not expect a hard stop")
	}
	want := 20 + 15 + 15 + 25 + 10
	if score != want {
		t.Fatalf("score = %d, want %d", score, want)
	}
	if len(reasons) != 6 {
		t.Fatalf("expected 6 passing reasons, got %v", reasons)
	}
}

func TestScoreRejectsImplausibleNameAndSymbol(t *testing.T) {
	in := RuleInput{
		InitialLiquiditySol: 10,
		NameLength:          0,
		SymbolLength:        20,
	}
	score, reasons, hardStopped := Score(DefaultRules, in)
	if hardStopped {
		t.Fatalf("did not expect a hard stop")
	}
	for _, r := range reasons {
		if r == "plausible_name" || r == "plausible_symbol" {
			t.Fatalf("rule %q should not have passed", r)
		}
	}
	if score != 35 {
		t.Fatalf("score = %d, want 35 (liquidity_above_threshold + new_deployer)", score)
	}
}

func TestSelectSnipeModeMostThorough(t *testing.T) {
	strategies := []*models.Strategy{
		{SnipeMode: models.SnipeModeSpeed},
		{SnipeMode: models.SnipeModeBalanced},
		{SnipeMode: models.SnipeModeSpeed},
	}
	if got := SelectSnipeMode(strategies); got.Budget() != 200*time.Millisecond {
		t.Fatalf("expected balanced mode budget, got %v", got.Budget())
	}
}
