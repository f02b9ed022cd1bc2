package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveUserKey derives a 32-byte AES-256 subkey for one user from the
// process master key via HKDF-SHA256, per spec.md §9: "the encryption
// envelope is AEAD with a 12-byte IV, 16-byte tag, and a per-user subkey
// via HKDF over a master key". The user's telegram id plus wallet uuid
// form the HKDF info parameter so a compromised subkey for one wallet
// does not expose another wallet's secret even under the same user.
func DeriveUserKey(masterKey []byte, userTelegramID int64, walletID string) ([]byte, error) {
	if len(masterKey) != 32 {
		return nil, ErrInvalidKeyLength
	}

	info := []byte("raptor-wallet-v1|" + walletIDWithUser(userTelegramID, walletID))
	r := hkdf.New(sha256.New, masterKey, nil, info)

	subkey := make([]byte, 32)
	if _, err := io.ReadFull(r, subkey); err != nil {
		return nil, err
	}
	return subkey, nil
}

func walletIDWithUser(userTelegramID int64, walletID string) string {
	return itoa(userTelegramID) + "|" + walletID
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// SealSecret encrypts a wallet's plaintext secret key with AES-256-GCM
// under subkey, returning nonce||ciphertext||tag as a single blob ready to
// store in Wallet.EncryptedSecret.
func SealSecret(subkey, plaintext []byte) ([]byte, error) {
	if len(subkey) != 32 {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(subkey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// OpenSecret reverses SealSecret. The caller is responsible for zeroizing
// the returned plaintext once signing is complete (spec.md §5: "Wallet
// secrets are decrypted only inside a narrow critical section around
// signing and zeroized on all exit paths").
func OpenSecret(subkey, blob []byte) ([]byte, error) {
	if len(subkey) != 32 {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(subkey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// Zeroize overwrites b in place. Best-effort: the Go runtime may have
// copied b's backing array before this call (e.g. during GC), but it
// closes the obvious window where a live reference outlives its use.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
