package solana

import solanago "github.com/gagliardetto/solana-go"

// LoadedAddresses holds the writable/readonly accounts a versioned
// transaction resolves through address lookup tables.
type LoadedAddresses struct {
	Writable []solanago.PublicKey
	Readonly []solanago.PublicKey
}

// AccountList builds the full account-index space for a versioned
// transaction: the concatenation staticAccountKeys ∥ loadedAddresses.writable
// ∥ loadedAddresses.readonly (spec.md §6). Compiled instruction account
// indexes are only meaningful against this combined list.
func AccountList(staticKeys []solanago.PublicKey, loaded LoadedAddresses) []solanago.PublicKey {
	out := make([]solanago.PublicKey, 0, len(staticKeys)+len(loaded.Writable)+len(loaded.Readonly))
	out = append(out, staticKeys...)
	out = append(out, loaded.Writable...)
	out = append(out, loaded.Readonly...)
	return out
}

// AccountAt returns the account key at idx in the combined list, or false
// if idx is out of range. A malformed or truncated instruction must never
// panic the decoder.
func AccountAt(accounts []solanago.PublicKey, idx int) (solanago.PublicKey, bool) {
	if idx < 0 || idx >= len(accounts) {
		return solanago.PublicKey{}, false
	}
	return accounts[idx], true
}
