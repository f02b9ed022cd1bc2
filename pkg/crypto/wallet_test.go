package crypto

import "testing"

func testMasterKey() []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func TestDeriveUserKey_Deterministic(t *testing.T) {
	master := testMasterKey()

	k1, err := DeriveUserKey(master, 123, "wallet-a")
	if err != nil {
		t.Fatalf("DeriveUserKey: %v", err)
	}
	k2, err := DeriveUserKey(master, 123, "wallet-a")
	if err != nil {
		t.Fatalf("DeriveUserKey: %v", err)
	}
	if string(k1) != string(k2) {
		t.Error("DeriveUserKey should be deterministic for the same inputs")
	}
}

func TestDeriveUserKey_DiffersPerWallet(t *testing.T) {
	master := testMasterKey()

	k1, _ := DeriveUserKey(master, 123, "wallet-a")
	k2, _ := DeriveUserKey(master, 123, "wallet-b")
	if string(k1) == string(k2) {
		t.Error("two wallets under the same user must derive different subkeys")
	}
}

func TestDeriveUserKey_RejectsShortMaster(t *testing.T) {
	if _, err := DeriveUserKey([]byte("short"), 1, "w"); err == nil {
		t.Error("expected error for master key shorter than 32 bytes")
	}
}

func TestSealOpenSecret_RoundTrip(t *testing.T) {
	master := testMasterKey()
	subkey, err := DeriveUserKey(master, 42, "wallet-1")
	if err != nil {
		t.Fatalf("DeriveUserKey: %v", err)
	}

	plaintext := []byte("a-base58-encoded-secret-key-placeholder")
	blob, err := SealSecret(subkey, plaintext)
	if err != nil {
		t.Fatalf("SealSecret: %v", err)
	}

	got, err := OpenSecret(subkey, blob)
	if err != nil {
		t.Fatalf("OpenSecret: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", got, plaintext)
	}
}

func TestOpenSecret_WrongKeyFails(t *testing.T) {
	master := testMasterKey()
	subkey1, _ := DeriveUserKey(master, 1, "wallet-a")
	subkey2, _ := DeriveUserKey(master, 1, "wallet-b")

	blob, err := SealSecret(subkey1, []byte("secret"))
	if err != nil {
		t.Fatalf("SealSecret: %v", err)
	}
	if _, err := OpenSecret(subkey2, blob); err == nil {
		t.Error("expected authentication failure when opening with the wrong subkey")
	}
}

func TestZeroize(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zeroize(b)
	for _, v := range b {
		if v != 0 {
			t.Fatalf("Zeroize left nonzero bytes: %v", b)
		}
	}
}
