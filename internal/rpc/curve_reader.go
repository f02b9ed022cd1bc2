package rpc

import (
	"context"
	"fmt"
	"sync"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/router"
	"raptor/internal/solana"
)

// CurveReader implements router.CurveReader over a Pool, decoding the
// program account layout internal/solana already names for bonding-curve
// state. Grounded on internal/monitor/decode.go's GetTransaction/commitment
// usage of *rpc.Client, the one verified entry point this module already
// calls against the real gagliardetto/solana-go surface.
type CurveReader struct {
	pool *Pool
}

// NewCurveReader builds a CurveReader over pool.
func NewCurveReader(pool *Pool) *CurveReader {
	return &CurveReader{pool: pool}
}

// ReadCurve fetches and decodes curve's account data.
func (c *CurveReader) ReadCurve(ctx context.Context, curve solanago.PublicKey) (*router.CurveState, error) {
	url, client, err := c.pool.BestWithURL()
	if err != nil {
		return nil, fmt.Errorf("rpc: curve reader: %w", err)
	}

	info, err := client.GetAccountInfo(ctx, curve)
	if err != nil {
		c.pool.ReportFailure(url)
		return nil, fmt.Errorf("rpc: get bonding curve account: %w", err)
	}
	c.pool.ReportSuccess(url)
	if info == nil || info.Value == nil {
		return nil, fmt.Errorf("rpc: bonding curve account %s not found", curve.String())
	}

	data := info.Value.Data.GetBinary()
	state, err := solana.DecodeCurveAccount(data)
	if err != nil {
		return nil, err
	}

	return &router.CurveState{
		VirtualSolReserves:   state.VirtualSolReserves,
		VirtualTokenReserves: state.VirtualTokenReserves,
		RealSolReserves:      state.RealSolReserves,
		RealTokenReserves:    state.RealTokenReserves,
		Complete:             state.Complete,
	}, nil
}

// GraduationTracker implements router.KnownGraduated over a CurveReader,
// caching a mint's graduated state forever once observed true: graduation
// is monotonic (spec.md §4.3's lifecycle DAG never steps POST_GRADUATION
// back to PRE_GRADUATION), so a positive result never needs to be
// re-checked.
type GraduationTracker struct {
	curves  *CurveReader
	curveOf func(mint string) (solanago.PublicKey, bool)

	mu    sync.Mutex
	known map[string]bool
}

// NewGraduationTracker builds a tracker. curveOf resolves a mint to its
// bonding curve address (the store already holds this from the create
// event); a mint curveOf can't resolve is reported as not graduated.
func NewGraduationTracker(curves *CurveReader, curveOf func(mint string) (solanago.PublicKey, bool)) *GraduationTracker {
	return &GraduationTracker{curves: curves, curveOf: curveOf, known: make(map[string]bool)}
}

// IsGraduated implements router.KnownGraduated.
func (g *GraduationTracker) IsGraduated(mint string) bool {
	g.mu.Lock()
	if g.known[mint] {
		g.mu.Unlock()
		return true
	}
	g.mu.Unlock()

	curve, ok := g.curveOf(mint)
	if !ok {
		return false
	}
	state, err := g.curves.ReadCurve(context.Background(), curve)
	if err != nil {
		return false
	}
	if state.Complete {
		g.mu.Lock()
		g.known[mint] = true
		g.mu.Unlock()
	}
	return state.Complete
}
