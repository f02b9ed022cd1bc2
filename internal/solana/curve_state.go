package solana

import (
	"encoding/binary"
	"fmt"
)

// CurveAccountState is the decoded payload of a pump.fun-family bonding
// curve account: an 8-byte Anchor discriminator followed by five
// little-endian fields (spec.md §6's wire layout for this account).
type CurveAccountState struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}

// curveAccountMinLen is discriminator (8) + five u64 reserve/supply fields
// (40) + one bool byte, the fixed prefix every known layout version keeps
// stable; trailing fields added by newer program versions are ignored.
const curveAccountMinLen = DiscriminatorLen + 8*5 + 1

// DecodeCurveAccount parses a bonding curve account's raw data.
func DecodeCurveAccount(data []byte) (*CurveAccountState, error) {
	if len(data) < curveAccountMinLen {
		return nil, fmt.Errorf("solana: bonding curve account too short: got %d bytes, want at least %d", len(data), curveAccountMinLen)
	}
	off := DiscriminatorLen
	readU64 := func() uint64 {
		v := binary.LittleEndian.Uint64(data[off : off+8])
		off += 8
		return v
	}
	return &CurveAccountState{
		VirtualTokenReserves: readU64(),
		VirtualSolReserves:   readU64(),
		RealTokenReserves:    readU64(),
		RealSolReserves:      readU64(),
		TokenTotalSupply:     readU64(),
		Complete:             data[off] != 0,
	}, nil
}
