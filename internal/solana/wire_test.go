package solana

import (
	"bytes"
	"testing"
)

func TestEncodeShortVecSingleByte(t *testing.T) {
	if got := EncodeShortVec(1); !bytes.Equal(got, []byte{1}) {
		t.Fatalf("EncodeShortVec(1) = %v, want [1]", got)
	}
	if got := EncodeShortVec(127); !bytes.Equal(got, []byte{0x7f}) {
		t.Fatalf("EncodeShortVec(127) = %v, want [0x7f]", got)
	}
}

func TestEncodeShortVecMultiByte(t *testing.T) {
	if got := EncodeShortVec(128); !bytes.Equal(got, []byte{0x80, 0x01}) {
		t.Fatalf("EncodeShortVec(128) = %v, want [0x80 0x01]", got)
	}
	if got := EncodeShortVec(300); !bytes.Equal(got, []byte{0xac, 0x02}) {
		t.Fatalf("EncodeShortVec(300) = %v, want [0xac 0x02]", got)
	}
}
