package execution

import (
	"errors"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/router"
)

var errInvalidKeypairLength = errors.New("execution: wallet secret must be a 64-byte ed25519 keypair")

// signingWallet adapts a decrypted ed25519 keypair to router.Wallet. The
// plaintext secret is the raw 64-byte Solana keypair (as produced by
// pkg/crypto.OpenSecret); callers must Zeroize it once signing is done.
type signingWallet struct {
	key solanago.PrivateKey
}

func newSigningWallet(secret []byte) (*signingWallet, error) {
	if len(secret) != 64 {
		return nil, errInvalidKeypairLength
	}
	return &signingWallet{key: solanago.PrivateKey(secret)}, nil
}

func (w *signingWallet) PublicKey() solanago.PublicKey {
	return w.key.PublicKey()
}

func (w *signingWallet) Sign(msg []byte) ([]byte, error) {
	sig, err := w.key.Sign(msg)
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}

var _ router.Wallet = (*signingWallet)(nil)
