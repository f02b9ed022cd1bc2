package solana

import (
	"encoding/binary"
	"testing"
)

func encodeCurveAccount(t *testing.T, vToken, vSol, rToken, rSol, supply uint64, complete bool) []byte {
	t.Helper()
	buf := make([]byte, curveAccountMinLen)
	copy(buf[:DiscriminatorLen], Discriminator("curve")[:])
	off := DiscriminatorLen
	for _, v := range []uint64{vToken, vSol, rToken, rSol, supply} {
		binary.LittleEndian.PutUint64(buf[off:off+8], v)
		off += 8
	}
	if complete {
		buf[off] = 1
	}
	return buf
}

func TestDecodeCurveAccount(t *testing.T) {
	data := encodeCurveAccount(t, 1_073_000_000_000_000, 30_000_000_000, 500, 10, 1_000_000_000, false)

	state, err := DecodeCurveAccount(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.VirtualTokenReserves != 1_073_000_000_000_000 {
		t.Errorf("virtual token reserves = %d", state.VirtualTokenReserves)
	}
	if state.VirtualSolReserves != 30_000_000_000 {
		t.Errorf("virtual sol reserves = %d", state.VirtualSolReserves)
	}
	if state.Complete {
		t.Errorf("expected Complete = false")
	}
}

func TestDecodeCurveAccountGraduated(t *testing.T) {
	data := encodeCurveAccount(t, 1, 2, 3, 4, 5, true)

	state, err := DecodeCurveAccount(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !state.Complete {
		t.Errorf("expected Complete = true")
	}
}

func TestDecodeCurveAccountTooShort(t *testing.T) {
	_, err := DecodeCurveAccount(make([]byte, curveAccountMinLen-1))
	if err == nil {
		t.Fatalf("expected error for short account data")
	}
}
