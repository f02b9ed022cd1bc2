package execution

import (
	"context"
	"errors"
	"testing"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/models"
	"raptor/internal/router"
	"raptor/pkg/errkind"
)

// fakeCurveReader satisfies router.CurveReader without touching the
// network; selectRouterForBuy only needs a non-nil reader to make the
// bonding-curve router eligible, it never calls ReadCurve itself.
type fakeCurveReader struct{}

func (fakeCurveReader) ReadCurve(ctx context.Context, curve solanago.PublicKey) (*router.CurveState, error) {
	return &router.CurveState{}, nil
}

// fakeQuoter satisfies router.PriceQuoter the same way, for the AMM path.
type fakeQuoter struct{}

func (fakeQuoter) Quote(ctx context.Context, mint solanago.PublicKey, side router.Side, amount float64) (*router.SwapQuote, error) {
	return &router.SwapQuote{}, nil
}

type fakeGraduated struct{ graduated map[string]bool }

func (f fakeGraduated) IsGraduated(mint string) bool { return f.graduated[mint] }

func TestSelectRouterForBuy_PreGraduationUsesBondingCurve(t *testing.T) {
	e := &Engine{curves: fakeCurveReader{}, quoter: fakeQuoter{}}
	mint := solanago.NewWallet().PublicKey()
	opp := &models.Opportunity{BondingCurveAddr: solanago.NewWallet().PublicKey().String()}
	job := &models.TradeJob{Payload: models.JobPayload{AmountSol: 0.5, SlippageBps: 500}}

	r, intent, err := e.selectRouterForBuy(mint, opp, job)
	if err != nil {
		t.Fatalf("selectRouterForBuy: %v", err)
	}
	if r.Name() != "bonding_curve" {
		t.Fatalf("router = %s, want bonding_curve", r.Name())
	}
	if intent.BondingCurve.IsZero() {
		t.Fatalf("intent.BondingCurve was never populated")
	}
}

func TestSelectRouterForBuy_GraduatedMintUsesAmm(t *testing.T) {
	mint := solanago.NewWallet().PublicKey()
	e := &Engine{
		curves:    fakeCurveReader{},
		quoter:    fakeQuoter{},
		graduated: fakeGraduated{graduated: map[string]bool{mint.String(): true}},
	}
	opp := &models.Opportunity{BondingCurveAddr: solanago.NewWallet().PublicKey().String()}
	job := &models.TradeJob{Payload: models.JobPayload{AmountSol: 0.5, SlippageBps: 500}}

	r, _, err := e.selectRouterForBuy(mint, opp, job)
	if err != nil {
		t.Fatalf("selectRouterForBuy: %v", err)
	}
	if r.Name() != "amm_aggregator" {
		t.Fatalf("router = %s, want amm_aggregator", r.Name())
	}
}

func TestSelectRouterForBuy_NoBondingCurveFallsBackToAmm(t *testing.T) {
	e := &Engine{quoter: fakeQuoter{}}
	mint := solanago.NewWallet().PublicKey()
	opp := &models.Opportunity{} // no bonding curve address
	job := &models.TradeJob{Payload: models.JobPayload{AmountSol: 0.5, SlippageBps: 500}}

	r, intent, err := e.selectRouterForBuy(mint, opp, job)
	if err != nil {
		t.Fatalf("selectRouterForBuy: %v", err)
	}
	if r.Name() != "amm_aggregator" {
		t.Fatalf("router = %s, want amm_aggregator", r.Name())
	}
	if !intent.BondingCurve.IsZero() {
		t.Fatalf("intent.BondingCurve should stay zero without a curve address")
	}
}

type fakeBalanceReader struct {
	sol float64
	err error
}

func (f fakeBalanceReader) SolBalance(ctx context.Context, pubkey solanago.PublicKey) (float64, error) {
	return f.sol, f.err
}

func TestCheckBalance_SkippedWhenNoReaderConfigured(t *testing.T) {
	e := &Engine{}
	if err := e.checkBalance(context.Background(), solanago.NewWallet().PublicKey(), 1.0); err != nil {
		t.Fatalf("checkBalance with nil reader = %v, want nil", err)
	}
}

func TestCheckBalance_PassesWhenFundsSufficient(t *testing.T) {
	e := &Engine{balances: fakeBalanceReader{sol: 1.0}, cfg: Config{RentBufferSol: 0.01}}
	if err := e.checkBalance(context.Background(), solanago.NewWallet().PublicKey(), 0.5); err != nil {
		t.Fatalf("checkBalance = %v, want nil", err)
	}
}

func TestCheckBalance_FailsWithInsufficientFunds(t *testing.T) {
	e := &Engine{balances: fakeBalanceReader{sol: 0.02}, cfg: Config{RentBufferSol: 0.01}}
	err := e.checkBalance(context.Background(), solanago.NewWallet().PublicKey(), 0.10)
	if err == nil {
		t.Fatal("checkBalance = nil, want insufficient funds error")
	}
	if !errkind.Is(err, errkind.InsufficientFunds) {
		t.Fatalf("checkBalance error kind = %v, want INSUFFICIENT_FUNDS", errkind.KindOf(err))
	}
	fields := errkind.FieldsOf(err)
	if fields["needed"].(float64) != 0.11 {
		t.Fatalf("needed field = %v, want 0.11", fields["needed"])
	}
	if fields["have"].(float64) != 0.02 {
		t.Fatalf("have field = %v, want 0.02", fields["have"])
	}
}

func TestCheckBalance_PropagatesReadError(t *testing.T) {
	e := &Engine{balances: fakeBalanceReader{err: errors.New("rpc down")}, cfg: Config{RentBufferSol: 0.01}}
	err := e.checkBalance(context.Background(), solanago.NewWallet().PublicKey(), 0.10)
	if err == nil {
		t.Fatal("checkBalance = nil, want propagated error")
	}
	if errkind.Is(err, errkind.InsufficientFunds) {
		t.Fatal("a balance read failure must not be classified as insufficient funds")
	}
}
