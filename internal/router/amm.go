package router

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"raptor/pkg/logging"
)

// PriceQuoter fetches a post-graduation AMM pool's current price and
// depth for mint. Concrete implementations call whichever aggregator API
// the deployment is configured for (e.g. Jupiter); kept abstract here so
// this package never hard-codes one aggregator's HTTP contract.
type PriceQuoter interface {
	Quote(ctx context.Context, mint solanago.PublicKey, side Side, amount float64) (*SwapQuote, error)
}

// AmmAggregatorRouter routes swaps through a conventional AMM aggregator
// once a token has graduated off its bonding curve (spec.md §4.3 step 2:
// "if lifecycle_state == POST_GRADUATION ... use the AMM aggregator
// router"). Same shape as BondingCurveRouter: quoting is delegated to an
// injected interface, instruction building and submission share the
// TxBuilder/Submitter contracts.
type AmmAggregatorRouter struct {
	quoter           PriceQuoter
	builder          TxBuilder
	submitter        Submitter
	priceImpactCapBp int
	log              *logging.Logger
}

// NewAmmAggregatorRouter builds an aggregator-backed router.
func NewAmmAggregatorRouter(quoter PriceQuoter, builder TxBuilder, submitter Submitter, priceImpactCapBp int, log *logging.Logger) *AmmAggregatorRouter {
	return &AmmAggregatorRouter{quoter: quoter, builder: builder, submitter: submitter, priceImpactCapBp: priceImpactCapBp, log: log}
}

func (r *AmmAggregatorRouter) Name() string { return "amm_aggregator" }

// CanHandle reports true for any intent; the factory only reaches this
// router once a mint is known to have graduated.
func (r *AmmAggregatorRouter) CanHandle(intent Intent) bool { return true }

func (r *AmmAggregatorRouter) Quote(ctx context.Context, intent Intent) (*SwapQuote, error) {
	amount := intent.AmountSol
	if intent.Side == SideSell {
		amount = intent.SizeTokens
	}
	q, err := r.quoter.Quote(ctx, intent.Mint, intent.Side, amount)
	if err != nil {
		return nil, fmt.Errorf("router: aggregator quote: %w", err)
	}
	q.Intent = intent

	if r.priceImpactCapBp > 0 && q.PriceImpactBp > r.priceImpactCapBp {
		return nil, &PriceImpactError{ImpactBp: q.PriceImpactBp, CapBp: r.priceImpactCapBp}
	}
	if q.PriceImpactBp >= 500 && r.log != nil {
		r.log.Warn("router: high price impact", logging.Int("impact_bp", q.PriceImpactBp))
	}
	return q, nil
}

func (r *AmmAggregatorRouter) Prepare(ctx context.Context, quote *SwapQuote, wallet Wallet) (*SignedTx, error) {
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

func (r *AmmAggregatorRouter) Submit(ctx context.Context, tx *SignedTx) (string, error) {
	sig, err := r.submitter.Submit(ctx, tx.Raw)
	if err != nil {
		return "", fmt.Errorf("router: submit: %w", err)
	}
	return sig, nil
}
