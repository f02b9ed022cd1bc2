package solana

import (
	"math/big"

	solanago "github.com/gagliardetto/solana-go"
)

// Ed25519 field/curve constants (RFC 8032): p = 2^255 - 19,
// d = -121665/121666 mod p. A 32-byte account key is "on-curve" (usable as
// a token mint, which must be an ed25519 point, as opposed to a
// program-derived address, which deliberately is not) iff it decompresses
// to a valid curve point.
var (
	fieldPrime = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(19))
	curveD     = computeCurveD()
)

func computeCurveD() *big.Int {
	num := big.NewInt(-121665)
	den := big.NewInt(121666)
	num.Mod(num, fieldPrime)
	denInv := new(big.Int).ModInverse(den, fieldPrime)
	return num.Mul(num, denInv).Mod(num, fieldPrime)
}

// modSqrt computes a square root of a mod p for p ≡ 5 (mod 8), the
// ed25519 field case, falling back to the generic candidate-squared check.
func modSqrt(a *big.Int) (*big.Int, bool) {
	if a.Sign() == 0 {
		return big.NewInt(0), true
	}
	exp := new(big.Int).Add(fieldPrime, big.NewInt(3))
	exp.Rsh(exp, 3) // (p+3)/8
	cand := new(big.Int).Exp(a, exp, fieldPrime)

	check := new(big.Int).Exp(cand, big.NewInt(2), fieldPrime)
	if check.Cmp(new(big.Int).Mod(a, fieldPrime)) == 0 {
		return cand, true
	}

	// p ≡ 5 mod 8 case: try cand * sqrt(-1).
	two := big.NewInt(2)
	exp2 := new(big.Int).Sub(fieldPrime, big.NewInt(1))
	exp2.Rsh(exp2, 2) // (p-1)/4
	sqrtMinus1 := new(big.Int).Exp(two, exp2, fieldPrime)

	cand2 := new(big.Int).Mul(cand, sqrtMinus1)
	cand2.Mod(cand2, fieldPrime)
	check2 := new(big.Int).Exp(cand2, big.NewInt(2), fieldPrime)
	if check2.Cmp(new(big.Int).Mod(a, fieldPrime)) == 0 {
		return cand2, true
	}
	return nil, false
}

// IsOnCurve reports whether key decompresses to a valid ed25519 curve
// point, i.e. recovering x from the encoded y-coordinate and sign bit
// yields a point satisfying -x^2 + y^2 = 1 + d*x^2*y^2 (spec.md §8
// property 7: "mint fails base58/on-curve checks").
func IsOnCurve(key solanago.PublicKey) bool {
	b := key[:]
	if len(b) != 32 {
		return false
	}

	signBit := b[31] >> 7
	yBytes := make([]byte, 32)
	copy(yBytes, b)
	yBytes[31] &= 0x7f

	// Reverse to big-endian for math/big (ed25519 encodes little-endian).
	for i, j := 0, len(yBytes)-1; i < j; i, j = i+1, j-1 {
		yBytes[i], yBytes[j] = yBytes[j], yBytes[i]
	}
	y := new(big.Int).SetBytes(yBytes)
	if y.Cmp(fieldPrime) >= 0 {
		return false
	}

	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, fieldPrime)

	num := new(big.Int).Sub(y2, big.NewInt(1))
	num.Mod(num, fieldPrime)

	den := new(big.Int).Mul(curveD, y2)
	den.Add(den, big.NewInt(1))
	den.Mod(den, fieldPrime)

	denInv := new(big.Int).ModInverse(den, fieldPrime)
	if denInv == nil {
		return false
	}

	x2 := num.Mul(num, denInv)
	x2.Mod(x2, fieldPrime)

	x, ok := modSqrt(x2)
	if !ok {
		return false
	}

	if x.Bit(0) != uint(signBit) {
		x.Sub(fieldPrime, x)
		x.Mod(x, fieldPrime)
	}

	check := new(big.Int).Mul(x, x)
	check.Mod(check, fieldPrime)
	if check.Cmp(x2) != 0 {
		return false
	}
	return true
}

// IsKnownSystemAccount reports whether key is a well-known system or core
// program id that can never legitimately be a launch creator.
func IsKnownSystemAccount(key solanago.PublicKey) bool {
	for _, id := range knownSystemAccounts {
		if key.Equals(id) {
			return true
		}
	}
	return false
}

// Well-known program ids that can never be a legitimate launch creator.
// Hardcoded as base58 strings rather than library constants since the
// exact exported names vary across solana-go versions.
const (
	systemProgramID             = "11111111111111111111111111111111"
	tokenProgramID              = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	token2022ProgramID          = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	associatedTokenAccountProgID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

var knownSystemAccounts = []solanago.PublicKey{
	solanago.MustPublicKeyFromBase58(systemProgramID),
	solanago.MustPublicKeyFromBase58(tokenProgramID),
	solanago.MustPublicKeyFromBase58(token2022ProgramID),
	solanago.MustPublicKeyFromBase58(associatedTokenAccountProgID),
}
