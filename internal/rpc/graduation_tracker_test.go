package rpc

import (
	"testing"

	solanago "github.com/gagliardetto/solana-go"
)

func TestGraduationTrackerUnresolvableMintIsNotGraduated(t *testing.T) {
	tr := NewGraduationTracker(nil, func(mint string) (solanago.PublicKey, bool) {
		return solanago.PublicKey{}, false
	})

	if tr.IsGraduated("unknown-mint") {
		t.Fatalf("expected an unresolvable mint to report not graduated")
	}
}

func TestGraduationTrackerCachesKnownGraduation(t *testing.T) {
	tr := NewGraduationTracker(nil, func(mint string) (solanago.PublicKey, bool) {
		return solanago.PublicKey{}, false
	})

	tr.mu.Lock()
	tr.known["cached-mint"] = true
	tr.mu.Unlock()

	if !tr.IsGraduated("cached-mint") {
		t.Fatalf("expected cached mint to report graduated without consulting curveOf")
	}
}
