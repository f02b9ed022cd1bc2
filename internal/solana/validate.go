package solana

import (
	"errors"

	"github.com/mr-tron/base58"
	solanago "github.com/gagliardetto/solana-go"
)

// ErrBadBase58 is returned when a mint string is not valid base58 or does
// not decode to a 32-byte public key.
var ErrBadBase58 = errors.New("solana: invalid base58 public key")

// ParseMint decodes and validates a mint address end to end: base58 shape,
// 32-byte length, and on-curve check (spec.md §8 property 7).
func ParseMint(s string) (solanago.PublicKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return solanago.PublicKey{}, ErrBadBase58
	}
	if len(raw) != 32 {
		return solanago.PublicKey{}, ErrBadBase58
	}
	var key solanago.PublicKey
	copy(key[:], raw)
	if !IsOnCurve(key) {
		return solanago.PublicKey{}, errors.New("solana: mint is not on-curve")
	}
	return key, nil
}
