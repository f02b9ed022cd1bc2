package rpc

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

// LatestBlockhash implements internal/launchpad.BlockhashSource, fetching
// a recent blockhash from the best eligible endpoint the same way
// CurveReader reads account state: one best-effort call, reporting
// success/failure back against the endpoint it used.
func (p *Pool) LatestBlockhash(ctx context.Context) ([32]byte, error) {
	url, client, err := p.BestWithURL()
	if err != nil {
		return [32]byte{}, fmt.Errorf("rpc: latest blockhash: %w", err)
	}

	result, err := client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		p.ReportFailure(url)
		return [32]byte{}, fmt.Errorf("rpc: get latest blockhash: %w", err)
	}
	p.ReportSuccess(url)

	var out [32]byte
	copy(out[:], result.Value.Blockhash[:])
	return out, nil
}
