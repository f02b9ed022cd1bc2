package launchpad

import (
	"context"
	"testing"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/router"
)

type fakeBlockhashSource struct{ hash [32]byte }

func (f fakeBlockhashSource) LatestBlockhash(ctx context.Context) ([32]byte, error) {
	return f.hash, nil
}

func TestBuildSwapBuyEncodesMessageHeader(t *testing.T) {
	b := NewBuilder(fakeBlockhashSource{hash: [32]byte{1, 2, 3}})

	quote := &router.SwapQuote{
		Intent: router.Intent{
			Mint:         solanago.PublicKey{4},
			BondingCurve: solanago.PublicKey{5},
			Side:         router.SideBuy,
			AmountSol:    1,
			SlippageBps:  500,
		},
		TokensOut: 1000,
	}

	msg, err := b.BuildSwap(context.Background(), quote, solanago.PublicKey{9})
	if err != nil {
		t.Fatalf("BuildSwap: %v", err)
	}
	if len(msg) == 0 {
		t.Fatalf("expected non-empty message")
	}
	// header: 1 required signature, 0 readonly-signed, numReadonlyUnsigned readonly-unsigned.
	if msg[0] != 1 || msg[1] != 0 || msg[2] != numReadonlyUnsigned {
		t.Fatalf("unexpected message header: %v", msg[:3])
	}
}

func TestBuildSwapSellProducesMessage(t *testing.T) {
	b := NewBuilder(fakeBlockhashSource{hash: [32]byte{1}})

	quote := &router.SwapQuote{
		Intent: router.Intent{
			Mint:         solanago.PublicKey{4},
			BondingCurve: solanago.PublicKey{5},
			Side:         router.SideSell,
			SizeTokens:   500,
			SlippageBps:  200,
		},
		LamportsOut: 10_000,
	}

	msg, err := b.BuildSwap(context.Background(), quote, solanago.PublicKey{9})
	if err != nil {
		t.Fatalf("BuildSwap: %v", err)
	}
	if len(msg) == 0 {
		t.Fatalf("expected non-empty message")
	}
}

func TestInstructionDataRejectsUnknownSide(t *testing.T) {
	_, err := instructionData(&router.SwapQuote{Intent: router.Intent{Side: "unknown"}})
	if err == nil {
		t.Fatalf("expected an error for an unknown side")
	}
}
