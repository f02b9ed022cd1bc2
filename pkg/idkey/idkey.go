// Package idkey computes deterministic idempotency keys for jobs and
// exit intents, per spec.md §4.2 step 7 and §4.4 "Exit queue".
package idkey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

func hash(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0}) // separator, avoids "ab"+"c" colliding with "a"+"bc"
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BuyJob computes the BUY job idempotency key:
// H(chain, strategy_id, mint, opportunity_id, amount_sol, slippage_bps).
func BuyJob(chain, strategyID, mint, opportunityID string, amountSol float64, slippageBps int) string {
	return hash(chain, strategyID, mint, opportunityID,
		fmt.Sprintf("%.9f", amountSol), fmt.Sprintf("%d", slippageBps))
}

// Exit computes the exit idempotency key H(position_id, trigger, sell_percent)
// used to deduplicate the TP/SL engine's in-process exit queue.
func Exit(positionID, trigger string, sellPercentBps int) string {
	return hash(positionID, trigger, fmt.Sprintf("%d", sellPercentBps))
}
