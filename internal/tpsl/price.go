// Package tpsl implements the TP/SL Engine (spec.md §4.4): a
// non-blocking evaluation loop over every open position that enqueues
// sell jobs through a priority, deduplicated in-process queue.
// Grounded on the teacher's internal/bot/risk.go RiskManager (a
// centralized ticker-driven monitor that detects an exit condition and
// hands off to a callback rather than awaiting the close inline).
package tpsl

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/models"
	"raptor/internal/router"
	"raptor/internal/solana"
)

// SpotPriceSource fetches a post-graduation token's current SOL price
// without sizing a trade, distinct from router.PriceQuoter (which prices
// a specific swap amount for execution). Kept separate so polling for
// trigger evaluation never distorts itself by assuming a trade size.
type SpotPriceSource interface {
	SpotPrice(ctx context.Context, mint solanago.PublicKey) (float64, error)
}

// PriceReader resolves the current price for a position regardless of
// its graduation state (spec.md §4.4 "Inputs": aggregator API for
// post-graduation, bonding-curve state for pre-graduation).
type PriceReader struct {
	curves CurveReader
	spot   SpotPriceSource
}

// CurveReader is an alias of router.CurveReader so this package doesn't
// need its own copy of the bonding-curve account contract.
type CurveReader = router.CurveReader

// NewPriceReader builds a reader. Either dependency may be nil if that
// venue isn't wired yet; Price returns an error for positions it can't
// price.
func NewPriceReader(curves CurveReader, spot SpotPriceSource) *PriceReader {
	return &PriceReader{curves: curves, spot: spot}
}

// Price returns the current price for pos in lamports per raw token unit,
// the unit of Position.EntryPrice.
func (r *PriceReader) Price(ctx context.Context, pos *models.Position) (float64, error) {
	if pos.LifecycleState == models.LifecyclePreGraduation {
		return r.bondingCurvePrice(ctx, pos)
	}
	return r.spotPrice(ctx, pos)
}

func (r *PriceReader) bondingCurvePrice(ctx context.Context, pos *models.Position) (float64, error) {
	if r.curves == nil {
		return 0, fmt.Errorf("tpsl: no curve reader configured")
	}
	curve, err := solanago.PublicKeyFromBase58(pos.BondingCurve)
	if err != nil {
		return 0, fmt.Errorf("tpsl: parse bonding curve: %w", err)
	}
	state, err := r.curves.ReadCurve(ctx, curve)
	if err != nil {
		return 0, fmt.Errorf("tpsl: read curve: %w", err)
	}
	if state.VirtualTokenReserves == 0 {
		return 0, fmt.Errorf("tpsl: curve has no token reserves")
	}
	return float64(state.VirtualSolReserves) / float64(state.VirtualTokenReserves), nil
}

func (r *PriceReader) spotPrice(ctx context.Context, pos *models.Position) (float64, error) {
	if r.spot == nil {
		return 0, fmt.Errorf("tpsl: no spot price source configured")
	}
	mint, err := solana.ParseMint(pos.TokenMint)
	if err != nil {
		return 0, fmt.Errorf("tpsl: parse mint: %w", err)
	}
	return r.spot.SpotPrice(ctx, mint)
}
