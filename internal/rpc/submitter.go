package rpc

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Submitter implements router.Submitter by broadcasting a serialized,
// signed transaction to every pool endpoint in parallel and returning the
// first accepted signature (spec.md §5: "broadcast in parallel with
// first-wins semantics"). Grounded on Pool.Broadcast, built in this
// package for exactly this purpose.
type Submitter struct {
	pool *Pool
}

// NewSubmitter builds a Submitter over pool.
func NewSubmitter(pool *Pool) *Submitter {
	return &Submitter{pool: pool}
}

// Submit decodes raw back into a transaction and sends it skipping
// preflight, the well-established solana-go rpc.Client surface for
// latency-sensitive submission (preflight simulation adds a full
// round trip this module's deadlines can't afford).
func (s *Submitter) Submit(ctx context.Context, raw []byte) (string, error) {
	tx, err := solanago.TransactionFromBytes(raw)
	if err != nil {
		return "", fmt.Errorf("rpc: decode signed transaction: %w", err)
	}

	sig, err := s.pool.Broadcast(ctx, func(ctx context.Context, client *rpc.Client) (string, error) {
		out, err := client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			return "", err
		}
		return out.String(), nil
	})
	if err != nil {
		return "", fmt.Errorf("rpc: submit transaction: %w", err)
	}
	return sig, nil
}
