package rpc

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	gorpc "github.com/gagliardetto/solana-go/rpc"
)

// BalanceReader reads a wallet's native SOL balance, used by the BUY
// pipeline's balance validation step (spec.md §4.3 step 3).
type BalanceReader struct {
	pool *Pool
}

// NewBalanceReader builds a BalanceReader over pool.
func NewBalanceReader(pool *Pool) *BalanceReader {
	return &BalanceReader{pool: pool}
}

// SolBalance returns pubkey's current balance in SOL at confirmed
// commitment.
func (b *BalanceReader) SolBalance(ctx context.Context, pubkey solanago.PublicKey) (float64, error) {
	url, client, err := b.pool.BestWithURL()
	if err != nil {
		return 0, fmt.Errorf("rpc: balance reader: %w", err)
	}

	out, err := client.GetBalance(ctx, pubkey, gorpc.CommitmentConfirmed)
	if err != nil {
		b.pool.ReportFailure(url)
		return 0, fmt.Errorf("rpc: get balance: %w", err)
	}
	b.pool.ReportSuccess(url)
	return float64(out.Value) / 1e9, nil
}
