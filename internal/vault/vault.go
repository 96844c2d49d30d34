// Package vault owns the long-term X25519 identity: its password-gated
// on-disk encryption, and the ECDH-based encrypt/decrypt operations every
// other component relies on.
package vault

import (
	"fmt"
	"sync"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

// Vault caches the unsealed identity for the lifetime of the process once
// Init succeeds. It is safe for concurrent use; only Init and Close write.
type Vault struct {
	path string
	log  *zap.Logger

	mu     sync.RWMutex
	unseal keypair
	sealed bool
}

// New constructs a Vault bound to the given identity file path.
func New(path string, log *zap.Logger) *Vault {
	return &Vault{path: path, log: log, sealed: true}
}

// Init unseals the identity file, creating a fresh keypair if none exists
// yet, and returns the base58-encoded public identifier. Safe to call more
// than once; subsequent calls re-unseal with the given password.
func (v *Vault) Init(password string) (string, error) {
	pass := []byte(password)

	var kp keypair
	var err error
	if identityExists(v.path) {
		kp.sk, err = openIdentity(v.path, pass)
		if err != nil {
			return "", err
		}
		pub, derr := derivePublic(kp.sk)
		if derr != nil {
			return "", derr
		}
		kp.pk = pub
	} else {
		kp, err = generateKeypair()
		if err != nil {
			return "", fmt.Errorf("vault: generate keypair: %w", err)
		}
		if err := sealIdentity(v.path, pass, kp.sk); err != nil {
			return "", err
		}
	}

	v.mu.Lock()
	v.unseal = kp
	v.sealed = false
	v.mu.Unlock()

	if v.log != nil {
		v.log.Info("identity unsealed", zap.String("public_id", base58.Encode(kp.pk[:])))
	}
	return base58.Encode(kp.pk[:]), nil
}

// PublicID returns the base58-encoded public key of the unsealed identity.
func (v *Vault) PublicID() (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.sealed {
		return "", ErrNotUnsealed
	}
	return base58.Encode(v.unseal.pk[:]), nil
}

// PublicKey returns the raw 32-byte public key of the unsealed identity.
func (v *Vault) PublicKey() ([32]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.sealed {
		return [32]byte{}, ErrNotUnsealed
	}
	return v.unseal.pk, nil
}

// EncryptTo builds a message envelope addressed to recipientPK.
func (v *Vault) EncryptTo(recipientPK [32]byte, plaintext []byte) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.sealed {
		return nil, ErrNotUnsealed
	}
	return sealEnvelope(v.unseal.sk, v.unseal.pk, recipientPK, plaintext)
}

// DecryptFrom opens a message envelope, returning the sender's public key
// and the recovered plaintext.
func (v *Vault) DecryptFrom(envelope []byte) (senderPK [32]byte, plaintext []byte, err error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.sealed {
		return senderPK, nil, ErrNotUnsealed
	}
	return openEnvelope(v.unseal.sk, envelope)
}

// EncodePublicID encodes a raw 32-byte public key as a base58 identifier.
func EncodePublicID(pk [32]byte) string {
	return base58.Encode(pk[:])
}

// DecodePublicID decodes a base58 public identifier into its raw 32-byte form.
func DecodePublicID(id string) ([32]byte, error) {
	var pk [32]byte
	raw, err := base58.Decode(id)
	if err != nil || len(raw) != 32 {
		return pk, ErrInvalidRecipient
	}
	copy(pk[:], raw)
	return pk, nil
}

// Close wipes the cached keypair from memory. The Vault is unusable
// afterward until Init is called again.
func (v *Vault) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	zero(v.unseal.sk[:])
	zero(v.unseal.pk[:])
	v.sealed = true
}

func derivePublic(sk [32]byte) ([32]byte, error) {
	kp := keypair{sk: sk}
	pub, err := generatePublicFrom(kp.sk)
	if err != nil {
		return [32]byte{}, err
	}
	return pub, nil
}
