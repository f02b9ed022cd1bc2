// Package router implements the Router Factory (spec.md §4.3 step 2): a
// pluggable swap backend selected per trade intent, either the
// bonding-curve router for pre-graduation tokens or the AMM aggregator
// router for graduated ones. Grounded on the teacher's
// internal/exchange/interface.go Exchange interface shape (one small
// interface, several concrete implementations, a name-keyed factory) —
// generalized from "which CEX" to "which swap venue".
package router

import (
	"context"
	"time"

	solanago "github.com/gagliardetto/solana-go"
)

// Intent is a trade request handed to a router, independent of which
// venue ends up serving it.
type Intent struct {
	Mint         solanago.PublicKey
	BondingCurve solanago.PublicKey // zero value if unknown/graduated
	Side         Side
	AmountSol    float64 // BUY: SOL in. SELL: ignored, SizeTokens governs.
	SizeTokens   float64 // SELL: token amount in.
	SlippageBps  int
}

// Side distinguishes a buy from a sell leg.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// SwapQuote is a router's priced estimate for an Intent.
type SwapQuote struct {
	Intent        Intent
	TokensOut     float64 // BUY
	LamportsOut   uint64  // SELL
	PriceImpactBp int
	Price         float64 // lamports per raw token unit implied by this quote
}

// SignedTx is a transaction ready for submission.
type SignedTx struct {
	Raw       []byte
	Signature string // base58, populated once known (pre-submit placeholder otherwise empty)
}

// AssembleSignedTx builds the wire-format bytes of a single-signer
// transaction: Solana's compact-array signature count (always 1 here,
// encoded as the single byte 0x01 since shortvec(1) fits in one byte),
// the 64-byte signature, then the serialized message verbatim. Every
// router in this package signs with exactly one wallet, so this single
// shared encoder is all Prepare needs.
func AssembleSignedTx(message, signature []byte) []byte {
	out := make([]byte, 0, 1+len(signature)+len(message))
	out = append(out, 1)
	out = append(out, signature...)
	out = append(out, message...)
	return out
}

// Wallet is the minimal signing surface a router needs; callers supply a
// concrete implementation backed by pkg/crypto's decrypted keypair.
type Wallet interface {
	PublicKey() solanago.PublicKey
	Sign(msg []byte) ([]byte, error)
}

// TxBuilder encodes a venue-specific swap instruction message for a
// priced quote, to be signed and submitted by the router. Takes the full
// quote rather than just its Intent because the on-chain instruction
// needs the quote's computed token/lamport amounts to set its own
// slippage-bounding fields (e.g. pump.fun's max_sol_cost/min_sol_output),
// not merely the caller's requested side and size. Kept as an interface
// so routers never hard-code one launchpad's IDL or one aggregator's
// instruction format.
type TxBuilder interface {
	BuildSwap(ctx context.Context, quote *SwapQuote, payer solanago.PublicKey) ([]byte, error)
}

// Submitter broadcasts a signed, serialized transaction and returns its
// signature. internal/rpc.Submitter is the production implementation;
// routers depend only on this narrow interface, not on any concrete RPC
// client method set.
type Submitter interface {
	Submit(ctx context.Context, raw []byte) (string, error)
}

// Router is the venue-agnostic trade interface every concrete router
// implements, mirroring the teacher's Exchange interface shape: a small
// set of verbs (quote, prepare, submit) plus a capability probe
// (canHandle) the factory uses to pick the right implementation.
type Router interface {
	Name() string
	CanHandle(intent Intent) bool
	Quote(ctx context.Context, intent Intent) (*SwapQuote, error)
	Prepare(ctx context.Context, quote *SwapQuote, wallet Wallet) (*SignedTx, error)
	Submit(ctx context.Context, tx *SignedTx) (string, error)
}

// PriceImpactError is returned by Quote when the implied price impact
// exceeds the caller-supplied ceiling (spec.md §4.3 step 4: "warn at 5%,
// refuse at a configured cap").
type PriceImpactError struct {
	ImpactBp int
	CapBp    int
}

func (e *PriceImpactError) Error() string {
	return "router: price impact exceeds configured cap"
}

// RequestTimeout bounds quote/prepare/submit calls, per spec.md §5's
// cancellation-points rule ("every outbound HTTP has an explicit
// deadline").
const RequestTimeout = 5 * time.Second
