package models

import (
	"time"

	"github.com/google/uuid"
)

// Chain identifies the blockchain a wallet/strategy/position operates on.
// RAPTOR only trades Solana; the column exists because the store schema
// predates the EVM-to-Solana pivot (spec.md §1, legacy EVM is out of scope).
type Chain string

const (
	ChainSolana Chain = "solana"
)

// Wallet is a user's self-custodial signing key. The secret is never
// stored in plaintext: EncryptedSecret is AEAD-sealed with a per-user
// subkey derived from the process master key via HKDF (see pkg/crypto).
type Wallet struct {
	ID              uuid.UUID  `json:"id"`
	UserTelegramID  int64      `json:"user_telegram_id"`
	Chain           Chain      `json:"chain"`
	PublicKey       string     `json:"public_key"` // base58, derivable from the plaintext secret
	EncryptedSecret []byte     `json:"-"`           // nonce||ciphertext||tag, never logged
	BackedUpAt      *time.Time `json:"backed_up_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
