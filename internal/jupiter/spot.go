package jupiter

import (
	"context"
	"fmt"
	"strconv"

	solanago "github.com/gagliardetto/solana-go"
)

// referenceTokenUnits is one whole token at the 6 decimals every
// pump.fun-launched mint uses (internal/launchpad.TokenDecimals),
// sized small enough that its own price impact is negligible — this is
// a spot-price probe, not a sized trade.
const referenceTokenUnits = 1_000_000

// SpotPrice implements tpsl.SpotPriceSource: a small reference sell quote
// converted to lamports per raw token unit (the unit of
// models.Position.EntryPrice), independent of any position's actual size.
func (c *Client) SpotPrice(ctx context.Context, mint solanago.PublicKey) (float64, error) {
	resp, err := c.fetchQuote(ctx, mint.String(), WrappedSolMint, referenceTokenUnits, 0)
	if err != nil {
		return 0, fmt.Errorf("jupiter: spot price: %w", err)
	}
	lamportsOut, err := strconv.ParseUint(resp.OutAmount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("jupiter: parse out amount: %w", err)
	}
	return float64(lamportsOut) / float64(referenceTokenUnits), nil
}
