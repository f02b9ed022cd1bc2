package router

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"raptor/pkg/logging"
)

// CurveState is the on-chain bonding-curve account's constant-product
// reserves (spec.md §8 glossary: "a constant-product market maker for a
// new token before it graduates"). Virtual reserves absorb the curve's
// initial liquidity so price starts finite at mint.
type CurveState struct {
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	RealSolReserves      uint64
	RealTokenReserves    uint64
	Complete             bool // graduated; this router refuses further quotes
}

// CurveReader fetches a bonding curve account's current reserves. The
// concrete implementation decodes the launchpad program's account layout;
// kept as an interface so BondingCurveRouter stays decoupled from any one
// program's binary account format.
type CurveReader interface {
	ReadCurve(ctx context.Context, curve solanago.PublicKey) (*CurveState, error)
}

// BondingCurveRouter quotes and submits swaps directly against a
// pre-graduation bonding curve, per spec.md §4.3 step 2. Mirrors the
// teacher's per-exchange Exchange implementations in shape: one small
// struct holding a client handle, implementing the shared Router
// interface with venue-specific math. Instruction encoding for the
// specific launchpad IDL is delegated to a TxBuilder, the same way the
// pack's RovshanMuradov-solana-bot worker delegates per-venue swap
// encoding to a `dex.Adapter` it resolves by name — this package owns
// quoting/impact/submission, not any one program's binary layout.
type BondingCurveRouter struct {
	curveReader      CurveReader
	builder          TxBuilder
	submitter        Submitter
	priceImpactCapBp int
	log              *logging.Logger
}

// NewBondingCurveRouter builds a router bounded by priceImpactCapBp
// (spec.md §4.3 step 4: "refuse at a configured cap").
func NewBondingCurveRouter(reader CurveReader, builder TxBuilder, submitter Submitter, priceImpactCapBp int, log *logging.Logger) *BondingCurveRouter {
	return &BondingCurveRouter{curveReader: reader, builder: builder, submitter: submitter, priceImpactCapBp: priceImpactCapBp, log: log}
}

func (r *BondingCurveRouter) Name() string { return "bonding_curve" }

// CanHandle reports true whenever a bonding-curve address is present and
// the intent carries no contrary graduated hint; the factory is
// responsible for not calling this on known-graduated mints.
func (r *BondingCurveRouter) CanHandle(intent Intent) bool {
	return !intent.BondingCurve.IsZero()
}

// Quote computes tokens-out (BUY) or lamports-out (SELL) from the
// constant-product invariant k = virtualSol * virtualToken, using
// virtual reserves so price is finite even before any real liquidity has
// been deposited.
func (r *BondingCurveRouter) Quote(ctx context.Context, intent Intent) (*SwapQuote, error) {
	curve, err := r.curveReader.ReadCurve(ctx, intent.BondingCurve)
	if err != nil {
		return nil, fmt.Errorf("router: read curve: %w", err)
	}
	if curve.Complete {
		return nil, fmt.Errorf("router: bonding curve already graduated")
	}

	vSol := float64(curve.VirtualSolReserves)
	vToken := float64(curve.VirtualTokenReserves)
	k := vSol * vToken

	q := &SwapQuote{Intent: intent}
	switch intent.Side {
	case SideBuy:
		lamportsIn := intent.AmountSol * 1e9
		newVSol := vSol + lamportsIn
		newVToken := k / newVSol
		tokensOut := vToken - newVToken
		q.TokensOut = tokensOut
		q.Price = lamportsIn / tokensOut
		q.PriceImpactBp = impactBp(vSol/vToken, newVSol/newVToken)
	case SideSell:
		newVToken := vToken + intent.SizeTokens
		newVSol := k / newVToken
		lamportsOut := vSol - newVSol
		q.LamportsOut = uint64(lamportsOut)
		q.Price = lamportsOut / intent.SizeTokens
		q.PriceImpactBp = impactBp(vSol/vToken, newVSol/newVToken)
	default:
		return nil, fmt.Errorf("router: unknown side %q", intent.Side)
	}

	if r.priceImpactCapBp > 0 && q.PriceImpactBp > r.priceImpactCapBp {
		return nil, &PriceImpactError{ImpactBp: q.PriceImpactBp, CapBp: r.priceImpactCapBp}
	}
	if q.PriceImpactBp >= 500 && r.log != nil {
		r.log.Warn("router: high price impact", logging.Int("impact_bp", q.PriceImpactBp))
	}
	return q, nil
}

// impactBp returns the basis-point change between the pre- and post-trade
// implied price.
func impactBp(priceBefore, priceAfter float64) int {
	if priceBefore == 0 {
		return 0
	}
	delta := (priceAfter - priceBefore) / priceBefore
	if delta < 0 {
		delta = -delta
	}
	return int(delta * 10000)
}

// Prepare builds and signs the buy/sell instruction against the bonding
// curve program via the injected TxBuilder, then signs the resulting
// message with wallet.
func (r *BondingCurveRouter) Prepare(ctx context.Context, quote *SwapQuote, wallet Wallet) (*SignedTx, error) {
	msg, err := r.builder.BuildSwap(ctx, quote, wallet.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("router: build swap: %w", err)
	}
	sig, err := wallet.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("router: sign: %w", err)
	}
	return &SignedTx{Raw: AssembleSignedTx(msg, sig), Signature: base58.Encode(sig)}, nil
}

// Submit broadcasts the signed transaction at confirmed commitment
// (spec.md §4.3 step 5), delegating to the injected Submitter so this
// package never assumes one specific RPC client surface — the executor
// wires in internal/rpc.Pool's broadcast-first-wins submission.
func (r *BondingCurveRouter) Submit(ctx context.Context, tx *SignedTx) (string, error) {
	sig, err := r.submitter.Submit(ctx, tx.Raw)
	if err != nil {
		return "", fmt.Errorf("router: submit: %w", err)
	}
	return sig, nil
}
