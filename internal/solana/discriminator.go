// Package solana holds the on-chain decoding primitives the Launchpad
// Monitor and Router Factory share: Anchor instruction discriminators,
// versioned-transaction account-list construction, and base58/on-curve
// validation. Grounded on the teacher's exchange-layer decoding idiom
// (small, single-purpose files per concern) and on gagliardetto/solana-go's
// wire types (spec.md §6).
package solana

import "crypto/sha256"

// DiscriminatorLen is the length, in bytes, of an Anchor instruction
// discriminator.
const DiscriminatorLen = 8

// Discriminator computes the 8-byte Anchor instruction discriminator for a
// named instruction: the first 8 bytes of sha256("global:<name>")
// (spec.md §6).
func Discriminator(name string) [DiscriminatorLen]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var out [DiscriminatorLen]byte
	copy(out[:], sum[:DiscriminatorLen])
	return out
}

// MatchesDiscriminator reports whether data begins with one of the given
// discriminators. Used to accept multiple create-instruction variants over
// a program's lifetime (e.g. "create" and "create_v2").
func MatchesDiscriminator(data []byte, discriminators ...[DiscriminatorLen]byte) bool {
	if len(data) < DiscriminatorLen {
		return false
	}
	var head [DiscriminatorLen]byte
	copy(head[:], data[:DiscriminatorLen])
	for _, d := range discriminators {
		if head == d {
			return true
		}
	}
	return false
}

// CreateDiscriminators lists the instruction names accepted as a launch
// event for pump.fun-family programs (spec.md §6: "currently accepted
// include both create and create_v2 forms").
var CreateDiscriminators = []string{"create", "create_v2"}

// KnownCreateDiscriminators pre-computes CreateDiscriminators.
func KnownCreateDiscriminators() [][DiscriminatorLen]byte {
	out := make([][DiscriminatorLen]byte, len(CreateDiscriminators))
	for i, name := range CreateDiscriminators {
		out[i] = Discriminator(name)
	}
	return out
}
