package solana

import (
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
)

// Exported copies of curve.go's well-known program ids, needed by
// instruction encoders outside this package (internal/launchpad).
var (
	SystemProgramID     = solanago.MustPublicKeyFromBase58(systemProgramID)
	TokenProgramID       = solanago.MustPublicKeyFromBase58(tokenProgramID)
	AssociatedTokenProgramID = solanago.MustPublicKeyFromBase58(associatedTokenAccountProgID)
)

// DeriveAssociatedTokenAccount computes the associated token account (ATA)
// address for owner holding mint, following the fixed seed scheme every
// SPL associated-token-account PDA uses: [owner, token_program, mint]
// under the associated-token-account program id.
func DeriveAssociatedTokenAccount(owner, mint solanago.PublicKey) (solanago.PublicKey, error) {
	addr, _, err := solanago.FindProgramAddress([][]byte{
		owner[:],
		TokenProgramID[:],
		mint[:],
	}, AssociatedTokenProgramID)
	if err != nil {
		return solanago.PublicKey{}, fmt.Errorf("solana: derive associated token account: %w", err)
	}
	return addr, nil
}
