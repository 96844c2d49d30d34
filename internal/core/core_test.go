package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ghostdrop/internal/config"
)

func newTestCore(t *testing.T) *Core {
	t.Helper()
	cfg := config.Default()
	cfg.ListenAddrs = []string{"/ip4/127.0.0.1/tcp/0"}
	dir := t.TempDir()
	paths := &config.Paths{
		BaseDir:     dir,
		IdentityEnc: filepath.Join(dir, "identity.enc"),
	}
	return New(paths, cfg, nil, nil)
}

func TestInitIdentityReturnsPublicID(t *testing.T) {
	c := newTestCore(t)
	id, err := c.InitIdentity("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, id)
}

func TestInitIdentityWrongPasswordOnReopen(t *testing.T) {
	dir := t.TempDir()
	paths := &config.Paths{BaseDir: dir, IdentityEnc: filepath.Join(dir, "identity.enc")}
	cfg := config.Default()

	c1 := New(paths, cfg, nil, nil)
	_, err := c1.InitIdentity("right")
	require.NoError(t, err)

	c2 := New(paths, cfg, nil, nil)
	_, err = c2.InitIdentity("wrong")
	require.ErrorIs(t, err, ErrWrongPassword)
}

func TestSendGhostMessageBeforeStartFails(t *testing.T) {
	c := newTestCore(t)
	_, err := c.InitIdentity("pass")
	require.NoError(t, err)

	_, err = c.SendGhostMessage(context.Background(), "anything", "hi")
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestCreateDropInvalidPolicy(t *testing.T) {
	c := newTestCore(t)
	_, err := c.InitIdentity("pass")
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	_, err = c.CreateDrop(context.Background(), path, 1, 3)
	require.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestTestIPFSUnavailableWhenNoBackend(t *testing.T) {
	c := newTestCore(t)
	_, err := c.TestIPFS(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}
