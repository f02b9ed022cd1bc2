package jupiter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/router"
)

// quoteResponse is the subset of Jupiter's /quote response this package
// consumes; unknown fields are ignored.
type quoteResponse struct {
	InAmount      string `json:"inAmount"`
	OutAmount     string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`
}

// lamportsPerSol converts a SOL amount to lamports for Jupiter's
// integer-lamport quote request.
const lamportsPerSol = 1e9

// fetchQuote calls Jupiter's quote endpoint for amount raw input units of
// inputMint, requesting outputMint, bounded by router.RequestTimeout
// (spec.md §5: "every outbound HTTP has an explicit deadline").
func (c *Client) fetchQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*quoteResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, router.RequestTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", strconv.FormatUint(amount, 10))
	q.Set("slippageBps", strconv.Itoa(slippageBps))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jupiter: quote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jupiter: quote returned status %d", resp.StatusCode)
	}

	var out quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("jupiter: decode quote: %w", err)
	}
	return &out, nil
}

func parsePriceImpactBp(pct string) int {
	f, err := strconv.ParseFloat(pct, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f * 10000)
}

// Quote implements router.PriceQuoter: amount is SOL for a buy, tokens
// for a sell (router.AmmAggregatorRouter.Quote already normalizes this
// before calling in).
func (c *Client) Quote(ctx context.Context, mint solanago.PublicKey, side router.Side, amount float64) (*router.SwapQuote, error) {
	switch side {
	case router.SideBuy:
		lamports := uint64(amount * lamportsPerSol)
		resp, err := c.fetchQuote(ctx, WrappedSolMint, mint.String(), lamports, 0)
		if err != nil {
			return nil, err
		}
		tokensOut, err := strconv.ParseUint(resp.OutAmount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("jupiter: parse out amount: %w", err)
		}
		q := &router.SwapQuote{
			TokensOut:     float64(tokensOut),
			PriceImpactBp: parsePriceImpactBp(resp.PriceImpactPct),
		}
		if tokensOut > 0 {
			q.Price = amount * lamportsPerSol / float64(tokensOut)
		}
		return q, nil

	case router.SideSell:
		tokensIn := uint64(amount)
		resp, err := c.fetchQuote(ctx, mint.String(), WrappedSolMint, tokensIn, 0)
		if err != nil {
			return nil, err
		}
		lamportsOut, err := strconv.ParseUint(resp.OutAmount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("jupiter: parse out amount: %w", err)
		}
		q := &router.SwapQuote{
			LamportsOut:   lamportsOut,
			PriceImpactBp: parsePriceImpactBp(resp.PriceImpactPct),
		}
		if amount > 0 {
			q.Price = float64(lamportsOut) / amount
		}
		return q, nil

	default:
		return nil, fmt.Errorf("jupiter: unknown side %q", side)
	}
}
