// Package shamir implements Shamir secret sharing over GF(256), the byte-oriented
// variant used to split dead-drop session keys into threshold shares.
package shamir

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
)

const (
	// MinShares is the smallest threshold this implementation accepts.
	MinShares = 2
	// MaxShares is the largest total share count this implementation accepts.
	MaxShares = 10
)

// Split deals secret into n shares such that any t of them reconstruct it,
// while any t-1 reveal nothing. Each returned share is len(secret)+1 bytes:
// a one-byte x-coordinate (1..n) followed by the polynomial evaluation at x
// for every byte of the secret.
func Split(secret []byte, t, n int) ([][]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("shamir: empty secret")
	}
	if t < MinShares || n > MaxShares || t > n {
		return nil, fmt.Errorf("shamir: invalid policy t=%d n=%d", t, n)
	}

	shares := make([][]byte, n)
	for i := range shares {
		shares[i] = make([]byte, 1, len(secret)+1)
		shares[i][0] = byte(i + 1)
	}

	coeffs := make([]byte, t)
	for _, b := range secret {
		coeffs[0] = b
		if _, err := rand.Read(coeffs[1:]); err != nil {
			return nil, fmt.Errorf("shamir: draw coefficients: %w", err)
		}
		for i := 0; i < n; i++ {
			x := byte(i + 1)
			shares[i] = append(shares[i], evalPoly(coeffs, x))
		}
	}

	return shares, nil
}

// Reconstruct recovers the secret from t or more shares produced by Split.
// All shares must share the same length; duplicate x-coordinates are rejected.
func Reconstruct(shares [][]byte) ([]byte, error) {
	if len(shares) < MinShares {
		return nil, fmt.Errorf("shamir: need at least %d shares", MinShares)
	}
	shareLen := len(shares[0])
	if shareLen < 2 {
		return nil, fmt.Errorf("shamir: malformed share")
	}
	xs := make([]byte, len(shares))
	seen := make(map[byte]bool, len(shares))
	for i, s := range shares {
		if len(s) != shareLen {
			return nil, fmt.Errorf("shamir: share length mismatch")
		}
		x := s[0]
		if x == 0 {
			return nil, fmt.Errorf("shamir: invalid share x-coordinate 0")
		}
		if seen[x] {
			return nil, fmt.Errorf("shamir: duplicate share x-coordinate %d", x)
		}
		seen[x] = true
		xs[i] = x
	}

	secretLen := shareLen - 1
	secret := make([]byte, secretLen)
	ys := make([]byte, len(shares))
	for byteIdx := 0; byteIdx < secretLen; byteIdx++ {
		for i, s := range shares {
			ys[i] = s[1+byteIdx]
		}
		secret[byteIdx] = interpolateAtZero(xs, ys)
	}
	return secret, nil
}

// evalPoly evaluates, via Horner's method, the polynomial with the given
// coefficients (constant term first) at point x in GF(256).
func evalPoly(coeffs []byte, x byte) byte {
	var result byte
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = gfAdd(gfMul(result, x), coeffs[i])
	}
	return result
}

// interpolateAtZero performs Lagrange interpolation over GF(256) to recover
// the polynomial's value at x=0 (the secret byte) from the given points.
func interpolateAtZero(xs, ys []byte) byte {
	var result byte
	for i := range xs {
		num := byte(1)
		den := byte(1)
		for j := range xs {
			if i == j {
				continue
			}
			num = gfMul(num, xs[j])
			den = gfMul(den, gfAdd(xs[i], xs[j]))
		}
		term := gfMul(ys[i], gfMul(num, gfInv(den)))
		result = gfAdd(result, term)
	}
	return result
}

// gfAdd is addition in GF(256), which is XOR.
func gfAdd(a, b byte) byte { return a ^ b }

// gfMul multiplies two GF(256) elements under the AES/Rijndael reduction
// polynomial x^8 + x^4 + x^3 + x + 1 (0x11B).
func gfMul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hiBitSet := a & 0x80
		a <<= 1
		if hiBitSet != 0 {
			a ^= 0x1B
		}
		b >>= 1
	}
	return p
}

// gfInv returns the multiplicative inverse of a in GF(256) via exponentiation
// (a^254 == a^-1, since the multiplicative group has order 255).
func gfInv(a byte) byte {
	if a == 0 {
		panic("shamir: division by zero in GF(256)")
	}
	result := byte(1)
	base := a
	exp := 254
	for exp > 0 {
		if exp&1 == 1 {
			result = gfMul(result, base)
		}
		base = gfMul(base, base)
		exp >>= 1
	}
	return result
}

// ConstantTimeCompare compares two byte slices for equality without leaking
// timing information; cmd/storaged uses it to check bearer tokens.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
