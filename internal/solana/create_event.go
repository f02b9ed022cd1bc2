package solana

import (
	"encoding/binary"
	"errors"
	"time"

	solanago "github.com/gagliardetto/solana-go"
)

// ErrTruncatedPayload is returned when an instruction payload is shorter
// than its own length prefixes claim; the caller drops the event and logs
// a warning (spec.md §4.1: "a bad decode yields a warning and is dropped,
// never a hard crash").
var ErrTruncatedPayload = errors.New("solana: truncated create instruction payload")

// CreateEvent is a decoded launch from a bonding-curve program.
type CreateEvent struct {
	Signature    string
	Slot         uint64
	Mint         solanago.PublicKey
	Name         string
	Symbol       string
	URI          string
	BondingCurve solanago.PublicKey
	Creator      solanago.PublicKey
	Timestamp    time.Time
}

// AccountLayout names the compiled-account indexes a program's IDL assigns
// to mint/bonding-curve/creator for its create instruction (spec.md §4.1
// step 5: "e.g., 0, 2, 7 for pump.fun's layout").
type AccountLayout struct {
	MintIndex         int
	BondingCurveIndex int
	CreatorIndex      int
}

// PumpFunLayout is the account layout pump.fun's `create` instruction uses.
var PumpFunLayout = AccountLayout{MintIndex: 0, BondingCurveIndex: 2, CreatorIndex: 7}

func readLenPrefixedString(data []byte, offset int) (string, int, error) {
	if offset+4 > len(data) {
		return "", 0, ErrTruncatedPayload
	}
	n := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if n < 0 || offset+n > len(data) {
		return "", 0, ErrTruncatedPayload
	}
	return string(data[offset : offset+n]), offset + n, nil
}

// DecodeCreatePayload decodes the name/symbol/uri triple from a create
// instruction's data, skipping the leading discriminator (spec.md §4.1
// step 5: "length-prefixed little-endian UTF-8 strings").
func DecodeCreatePayload(data []byte) (name, symbol, uri string, err error) {
	if len(data) < DiscriminatorLen {
		return "", "", "", ErrTruncatedPayload
	}
	offset := DiscriminatorLen

	name, offset, err = readLenPrefixedString(data, offset)
	if err != nil {
		return "", "", "", err
	}
	symbol, offset, err = readLenPrefixedString(data, offset)
	if err != nil {
		return "", "", "", err
	}
	uri, _, err = readLenPrefixedString(data, offset)
	if err != nil {
		return "", "", "", err
	}
	return name, symbol, uri, nil
}

// DecodeCreateAccounts pulls mint/bonding-curve/creator out of the combined
// account list at the positions layout defines, rejecting the
// degenerate/hostile shapes spec.md §8 property 7 names: account-0 equal to
// account-5, or a creator equal to a known system/program id.
func DecodeCreateAccounts(accounts []solanago.PublicKey, indexes []uint16, layout AccountLayout) (mint, bondingCurve, creator solanago.PublicKey, err error) {
	resolve := func(layoutIdx int) (solanago.PublicKey, error) {
		if layoutIdx < 0 || layoutIdx >= len(indexes) {
			return solanago.PublicKey{}, ErrTruncatedPayload
		}
		key, ok := AccountAt(accounts, int(indexes[layoutIdx]))
		if !ok {
			return solanago.PublicKey{}, ErrTruncatedPayload
		}
		return key, nil
	}

	mint, err = resolve(layout.MintIndex)
	if err != nil {
		return
	}
	bondingCurve, err = resolve(layout.BondingCurveIndex)
	if err != nil {
		return
	}
	creator, err = resolve(layout.CreatorIndex)
	if err != nil {
		return
	}

	if len(indexes) > 5 && indexes[0] == indexes[5] {
		err = errors.New("solana: account-0 equals account-5, rejecting instruction")
		return
	}
	if IsKnownSystemAccount(creator) {
		err = errors.New("solana: creator is a known system/program account, rejecting instruction")
		return
	}
	if !IsOnCurve(mint) {
		err = errors.New("solana: mint fails on-curve check, rejecting instruction")
		return
	}
	return mint, bondingCurve, creator, nil
}
