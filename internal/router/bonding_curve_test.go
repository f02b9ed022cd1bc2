package router

import (
	"context"
	"errors"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
)

type fakeCurveReader struct{ state *CurveState }

func (f *fakeCurveReader) ReadCurve(ctx context.Context, curve solanago.PublicKey) (*CurveState, error) {
	return f.state, nil
}

func TestBondingCurveQuoteBuy(t *testing.T) {
	reader := &fakeCurveReader{state: &CurveState{
		VirtualSolReserves:   30_000_000_000,
		VirtualTokenReserves: 1_073_000_000_000_000,
	}}
	r := NewBondingCurveRouter(reader, nil, nil, 0, nil)

	q, err := r.Quote(context.Background(), Intent{
		BondingCurve: solanago.PublicKey{1},
		Side:         SideBuy,
		AmountSol:    1,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.TokensOut <= 0 {
		t.Fatalf("expected positive tokens out, got %v", q.TokensOut)
	}
}

func TestBondingCurveQuoteRejectsGraduated(t *testing.T) {
	reader := &fakeCurveReader{state: &CurveState{Complete: true}}
	r := NewBondingCurveRouter(reader, nil, nil, 0, nil)

	_, err := r.Quote(context.Background(), Intent{BondingCurve: solanago.PublicKey{1}, Side: SideBuy, AmountSol: 1})
	if err == nil {
		t.Fatalf("expected an error quoting a graduated curve")
	}
}

func TestBondingCurveQuoteRejectsHighImpact(t *testing.T) {
	reader := &fakeCurveReader{state: &CurveState{
		VirtualSolReserves:   1_000_000_000, // thin reserves: 1 SOL dwarfs this
		VirtualTokenReserves: 1_000_000_000_000,
	}}
	r := NewBondingCurveRouter(reader, nil, nil, 100, nil) // 1% cap

	_, err := r.Quote(context.Background(), Intent{BondingCurve: solanago.PublicKey{1}, Side: SideBuy, AmountSol: 1})
	if err == nil {
		t.Fatalf("expected price impact error")
	}
	var impactErr *PriceImpactError
	if !errors.As(err, &impactErr) {
		t.Fatalf("expected *PriceImpactError, got %T: %v", err, err)
	}
}
