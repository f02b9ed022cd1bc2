package solana

import "testing"

func TestDeriveAssociatedTokenAccountDeterministic(t *testing.T) {
	owner := SystemProgramID
	mint := TokenProgramID

	a, err := DeriveAssociatedTokenAccount(owner, mint)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, err := DeriveAssociatedTokenAccount(owner, mint)
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}
	if a != b {
		t.Fatalf("expected deterministic ATA derivation, got %s vs %s", a, b)
	}
}

func TestDeriveAssociatedTokenAccountVariesByMint(t *testing.T) {
	owner := SystemProgramID

	a, err := DeriveAssociatedTokenAccount(owner, TokenProgramID)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, err := DeriveAssociatedTokenAccount(owner, AssociatedTokenProgramID)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if a == b {
		t.Fatalf("expected different ATAs for different mints")
	}
}
