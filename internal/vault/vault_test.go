package vault

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitCreatesAndUnsealsIdentity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.enc")

	v := New(path, nil)
	id, err := v.Init("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	pk, err := v.PublicKey()
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, pk)
}

func TestInitReopensExistingIdentity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.enc")

	v1 := New(path, nil)
	id1, err := v1.Init("hunter2")
	require.NoError(t, err)

	v2 := New(path, nil)
	id2, err := v2.Init("hunter2")
	require.NoError(t, err)

	require.Equal(t, id1, id2)
}

func TestInitWrongPasswordFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.enc")

	v1 := New(path, nil)
	_, err := v1.Init("right-password")
	require.NoError(t, err)

	v2 := New(path, nil)
	_, err = v2.Init("wrong-password")
	require.ErrorIs(t, err, ErrWrongPassword)
}

func TestEncryptToDecryptFromRoundTrip(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	alice := New(filepath.Join(dirA, "identity.enc"), nil)
	_, err := alice.Init("alice-pass")
	require.NoError(t, err)

	bob := New(filepath.Join(dirB, "identity.enc"), nil)
	_, err = bob.Init("bob-pass")
	require.NoError(t, err)

	bobPK, err := bob.PublicKey()
	require.NoError(t, err)

	plaintext := []byte(`{"kind":"msg","id":"1","content":"hello bob","ts":1}`)
	envelope, err := alice.EncryptTo(bobPK, plaintext)
	require.NoError(t, err)

	alicePK, err := alice.PublicKey()
	require.NoError(t, err)

	senderPK, recovered, err := bob.DecryptFrom(envelope)
	require.NoError(t, err)
	require.Equal(t, alicePK, senderPK)
	require.Equal(t, plaintext, recovered)
}

func TestDecryptFromTamperedEnvelopeFails(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	alice := New(filepath.Join(dirA, "identity.enc"), nil)
	_, err := alice.Init("alice-pass")
	require.NoError(t, err)

	bob := New(filepath.Join(dirB, "identity.enc"), nil)
	_, err = bob.Init("bob-pass")
	require.NoError(t, err)

	bobPK, err := bob.PublicKey()
	require.NoError(t, err)

	envelope, err := alice.EncryptTo(bobPK, []byte("hello"))
	require.NoError(t, err)

	envelope[len(envelope)-1] ^= 0xFF

	_, _, err = bob.DecryptFrom(envelope)
	require.ErrorIs(t, err, ErrAuthFailure)
}

func TestDecodePublicIDRejectsInvalid(t *testing.T) {
	_, err := DecodePublicID("not-valid-base58!!")
	require.Error(t, err)
}

func TestPublicIDBeforeInitFails(t *testing.T) {
	v := New(filepath.Join(t.TempDir(), "identity.enc"), nil)
	_, err := v.PublicID()
	require.ErrorIs(t, err, ErrNotUnsealed)
}
