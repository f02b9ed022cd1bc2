package router

import (
	"bytes"
	"context"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
)

func TestAssembleSignedTx(t *testing.T) {
	msg := []byte("message-bytes")
	sig := bytes.Repeat([]byte{0xAB}, 64)

	raw := AssembleSignedTx(msg, sig)

	if raw[0] != 1 {
		t.Fatalf("expected leading shortvec(1) byte, got %d", raw[0])
	}
	if !bytes.Equal(raw[1:1+64], sig) {
		t.Fatalf("signature not placed immediately after the shortvec byte")
	}
	if !bytes.Equal(raw[1+64:], msg) {
		t.Fatalf("message not placed immediately after the signature")
	}
}

type fakeBuilder struct {
	gotQuote *SwapQuote
	msg      []byte
}

func (f *fakeBuilder) BuildSwap(ctx context.Context, quote *SwapQuote, payer solanago.PublicKey) ([]byte, error) {
	f.gotQuote = quote
	return f.msg, nil
}

type fakeWallet struct {
	pub solanago.PublicKey
	sig []byte
}

func (w *fakeWallet) PublicKey() solanago.PublicKey { return w.pub }
func (w *fakeWallet) Sign(msg []byte) ([]byte, error) { return w.sig, nil }

func TestBondingCurveRouterPreparePassesQuote(t *testing.T) {
	builder := &fakeBuilder{msg: []byte("msg")}
	wallet := &fakeWallet{pub: solanago.PublicKey{9}, sig: bytes.Repeat([]byte{0x01}, 64)}
	r := NewBondingCurveRouter(nil, builder, nil, 0, nil)

	quote := &SwapQuote{Intent: Intent{Side: SideBuy, AmountSol: 1}, TokensOut: 123}

	tx, err := r.Prepare(context.Background(), quote, wallet)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if builder.gotQuote != quote {
		t.Fatalf("expected BuildSwap to receive the full quote, got %+v", builder.gotQuote)
	}
	if tx.Signature == "" {
		t.Fatalf("expected a populated base58 signature")
	}
	if tx.Raw[0] != 1 {
		t.Fatalf("expected assembled tx to lead with shortvec(1)")
	}
}

func TestAmmAggregatorRouterPreparePassesQuote(t *testing.T) {
	builder := &fakeBuilder{msg: []byte("msg")}
	wallet := &fakeWallet{pub: solanago.PublicKey{9}, sig: bytes.Repeat([]byte{0x02}, 64)}
	r := NewAmmAggregatorRouter(nil, builder, nil, 0, nil)

	quote := &SwapQuote{Intent: Intent{Side: SideSell, SizeTokens: 50}, LamportsOut: 456}

	tx, err := r.Prepare(context.Background(), quote, wallet)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if builder.gotQuote != quote {
		t.Fatalf("expected BuildSwap to receive the full quote, got %+v", builder.gotQuote)
	}
	if tx.Signature == "" {
		t.Fatalf("expected a populated base58 signature")
	}
}
