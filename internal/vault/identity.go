package vault

import (
	"crypto/rand"

	"golang.org/x/crypto/curve25519"
)

// keypair is the long-term X25519 identity: sk authenticates application
// messages via ECDH, distinct from any transport-level identity the swarm
// layer derives separately.
type keypair struct {
	sk [32]byte
	pk [32]byte
}

// generateKeypair draws a fresh X25519 scalar and derives its public point.
func generateKeypair() (keypair, error) {
	var kp keypair
	if _, err := rand.Read(kp.sk[:]); err != nil {
		return keypair{}, err
	}
	// Clamp per the X25519 spec (RFC 7748 §5).
	kp.sk[0] &= 248
	kp.sk[31] &= 127
	kp.sk[31] |= 64

	pub, err := curve25519.X25519(kp.sk[:], curve25519.Basepoint)
	if err != nil {
		zero(kp.sk[:])
		return keypair{}, err
	}
	copy(kp.pk[:], pub)
	return kp, nil
}

// generatePublicFrom derives the X25519 public point for an existing
// clamped scalar, used when re-unsealing a stored identity.
func generatePublicFrom(sk [32]byte) ([32]byte, error) {
	var pk [32]byte
	pub, err := curve25519.X25519(sk[:], curve25519.Basepoint)
	if err != nil {
		return pk, err
	}
	copy(pk[:], pub)
	return pk, nil
}

// zero overwrites b with zeros in place.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
