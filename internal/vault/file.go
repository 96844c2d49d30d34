package vault

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// argon2id parameters per the identity-file spec: 16 MiB memory, 3 passes,
// single lane.
const (
	argonMemoryKiB = 16 * 1024
	argonTime      = 3
	argonThreads   = 1
	argonKeyLen    = 32
)

// encryptedFile is the self-describing on-disk record for identity.enc.
type encryptedFile struct {
	SaltB64       string `json:"salt"`
	NonceB64      string `json:"nonce"`
	CiphertextB64 string `json:"ciphertext"`
}

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemoryKiB, argonThreads, argonKeyLen)
}

// sealIdentity encrypts sk under a password-derived key and writes it
// atomically to path (write-to-temp then rename).
func sealIdentity(path string, password []byte, sk [32]byte) error {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("vault: draw salt: %w", err)
	}
	key := deriveKey(password, salt)
	defer zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return fmt.Errorf("vault: build aead: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("vault: draw nonce: %w", err)
	}
	ct := aead.Seal(nil, nonce, sk[:], nil)

	rec := encryptedFile{
		SaltB64:       base64.StdEncoding.EncodeToString(salt),
		NonceB64:      base64.StdEncoding.EncodeToString(nonce),
		CiphertextB64: base64.StdEncoding.EncodeToString(ct),
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("vault: marshal identity record: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("vault: write temp identity file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("vault: rename identity file: %w", err)
	}
	return nil
}

// openIdentity decrypts the identity file at path under password.
// Returns ErrWrongPassword on tag-verification failure.
func openIdentity(path string, password []byte) ([32]byte, error) {
	var sk [32]byte
	blob, err := os.ReadFile(path)
	if err != nil {
		return sk, fmt.Errorf("vault: read identity file: %w", err)
	}
	var rec encryptedFile
	if err := json.Unmarshal(blob, &rec); err != nil {
		return sk, fmt.Errorf("vault: parse identity file: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(rec.SaltB64)
	if err != nil {
		return sk, fmt.Errorf("vault: decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(rec.NonceB64)
	if err != nil {
		return sk, fmt.Errorf("vault: decode nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(rec.CiphertextB64)
	if err != nil {
		return sk, fmt.Errorf("vault: decode ciphertext: %w", err)
	}

	key := deriveKey(password, salt)
	defer zero(key)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return sk, fmt.Errorf("vault: build aead: %w", err)
	}
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return sk, ErrWrongPassword
	}
	if len(plain) != 32 {
		return sk, ErrWrongPassword
	}
	copy(sk[:], plain)
	zero(plain)
	return sk, nil
}

func identityExists(path string) bool {
	_, err := os.Stat(filepath.Clean(path))
	return err == nil
}
