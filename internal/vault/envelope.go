package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
)

// messageKeyLabel domain-separates the ECDH-derived AEAD key used for
// application messages from any other use of the shared secret.
const messageKeyLabel = "deaddrop-message-key"

func deriveMessageKey(sk, peerPK [32]byte) ([]byte, error) {
	shared, err := curve25519.X25519(sk[:], peerPK[:])
	if err != nil {
		return nil, fmt.Errorf("vault: ecdh: %w", err)
	}
	defer zero(shared)

	h := sha256.New()
	h.Write([]byte(messageKeyLabel))
	h.Write(shared)
	return h.Sum(nil), nil
}

// sealEnvelope encrypts plaintext for peerPK and returns
// senderPK(32) || nonce(12) || ciphertext || tag(16).
func sealEnvelope(sk, senderPK, peerPK [32]byte, plaintext []byte) ([]byte, error) {
	key, err := deriveMessageKey(sk, peerPK)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("vault: build aead: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("vault: draw nonce: %w", err)
	}
	ct := aead.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, 32+len(nonce)+len(ct))
	out = append(out, senderPK[:]...)
	out = append(out, nonce...)
	out = append(out, ct...)
	return out, nil
}

// openEnvelope splits and decrypts an envelope produced by sealEnvelope,
// returning the sender's public key and the recovered plaintext.
func openEnvelope(sk [32]byte, envelope []byte) (senderPK [32]byte, plaintext []byte, err error) {
	const minLen = 32 + chacha20poly1305.NonceSize + 16
	if len(envelope) < minLen {
		return senderPK, nil, ErrInvalidEnvelope
	}
	copy(senderPK[:], envelope[:32])
	nonce := envelope[32 : 32+chacha20poly1305.NonceSize]
	ct := envelope[32+chacha20poly1305.NonceSize:]

	key, derr := deriveMessageKey(sk, senderPK)
	if derr != nil {
		return senderPK, nil, derr
	}
	defer zero(key)

	aead, aerr := chacha20poly1305.New(key)
	if aerr != nil {
		return senderPK, nil, fmt.Errorf("vault: build aead: %w", aerr)
	}
	plaintext, err = aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return senderPK, nil, ErrAuthFailure
	}
	return senderPK, plaintext, nil
}
