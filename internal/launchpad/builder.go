package launchpad

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/router"
	"raptor/internal/solana"
)

// BlockhashSource supplies a recent blockhash for message construction.
// Kept as an interface so this package never depends on a concrete RPC
// pool type; internal/rpc.Pool is the production implementation.
type BlockhashSource interface {
	LatestBlockhash(ctx context.Context) ([32]byte, error)
}

// Builder implements router.TxBuilder for pump.fun-family bonding-curve
// swaps.
type Builder struct {
	blockhash BlockhashSource
}

// NewBuilder builds an instruction encoder sourcing blockhashes from bh.
func NewBuilder(bh BlockhashSource) *Builder {
	return &Builder{blockhash: bh}
}

// BuildSwap implements router.TxBuilder, encoding quote's buy or sell
// against its bonding curve and deriving both associated token accounts
// the instruction needs.
func (b *Builder) BuildSwap(ctx context.Context, quote *router.SwapQuote, payer solanago.PublicKey) ([]byte, error) {
	mint := quote.Intent.Mint
	curve := quote.Intent.BondingCurve

	assocCurve, err := solana.DeriveAssociatedTokenAccount(curve, mint)
	if err != nil {
		return nil, fmt.Errorf("launchpad: derive curve ata: %w", err)
	}
	assocUser, err := solana.DeriveAssociatedTokenAccount(payer, mint)
	if err != nil {
		return nil, fmt.Errorf("launchpad: derive user ata: %w", err)
	}

	data, err := instructionData(quote)
	if err != nil {
		return nil, err
	}

	accounts := swapAccounts{
		payer:          payer,
		feeRecipient:   FeeRecipient,
		bondingCurve:   curve,
		assocCurve:     assocCurve,
		assocUser:      assocUser,
		global:         GlobalAccount,
		mint:           mint,
		systemProgram:  solana.SystemProgramID,
		tokenProgram:   solana.TokenProgramID,
		rent:           RentSysvar,
		eventAuthority: EventAuthority,
		program:        ProgramID,
	}

	blockhash, err := b.blockhash.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("launchpad: fetch blockhash: %w", err)
	}

	return accounts.buildMessage(data, blockhash), nil
}
