package deaddrop

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"

	"ghostdrop/internal/metrics"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := filename + "-cid"
	m.data[id] = b
	return id, nil
}

func (m *memStore) Fetch(ctx context.Context, cid string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[cid]
	if !ok {
		return nil, ErrIO
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func writeTempFile(t *testing.T, content []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.bin")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestCreateAndOpenDropRoundTrip(t *testing.T) {
	store := newMemStore()
	content := make([]byte, 10*1024*1024+37)
	_, err := rand.Read(content)
	require.NoError(t, err)
	path := writeTempFile(t, content)

	drop, err := CreateDrop(context.Background(), store, path, 2, 3, nil, nil)
	require.NoError(t, err)
	require.Len(t, drop.Shares, 3)

	r, err := OpenDrop(context.Background(), store, drop.CID, drop.Shares[:2])
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.True(t, bytes.Equal(content, got))
}

func TestCreateDropZeroLengthFile(t *testing.T) {
	store := newMemStore()
	path := writeTempFile(t, nil)

	drop, err := CreateDrop(context.Background(), store, path, 2, 2, nil, nil)
	require.NoError(t, err)

	r, err := OpenDrop(context.Background(), store, drop.CID, drop.Shares)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCreateDropExactMultipleOfWindow(t *testing.T) {
	store := newMemStore()
	content := make([]byte, chunkWindow*2)
	_, err := rand.Read(content)
	require.NoError(t, err)
	path := writeTempFile(t, content)

	drop, err := CreateDrop(context.Background(), store, path, 2, 3, nil, nil)
	require.NoError(t, err)

	r, err := OpenDrop(context.Background(), store, drop.CID, drop.Shares[:2])
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.True(t, bytes.Equal(content, got))
}

func TestCreateDropRejectsInvalidPolicy(t *testing.T) {
	store := newMemStore()
	path := writeTempFile(t, []byte("hello"))

	_, err := CreateDrop(context.Background(), store, path, 1, 3, nil, nil)
	require.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = CreateDrop(context.Background(), store, path, 5, 11, nil, nil)
	require.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = CreateDrop(context.Background(), store, path, 4, 2, nil, nil)
	require.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestOpenDropTamperedChunkFails(t *testing.T) {
	store := newMemStore()
	path := writeTempFile(t, []byte("some plaintext data to chunk"))

	drop, err := CreateDrop(context.Background(), store, path, 2, 2, nil, nil)
	require.NoError(t, err)

	store.mu.Lock()
	blob := store.data[drop.CID]
	blob[len(blob)-1] ^= 0xFF
	store.mu.Unlock()

	r, err := OpenDrop(context.Background(), store, drop.CID, drop.Shares)
	require.NoError(t, err)
	defer r.Close()

	_, err = io.ReadAll(r)
	require.ErrorIs(t, err, ErrAuthFailure)
}

func TestCreateDropObservesDropDuration(t *testing.T) {
	store := newMemStore()
	path := writeTempFile(t, []byte("timed payload"))
	reg, _ := metrics.New()

	_, err := CreateDrop(context.Background(), store, path, 2, 2, nil, reg)
	require.NoError(t, err)

	m := &dto.Metric{}
	require.NoError(t, reg.DropDuration.Write(m))
	require.EqualValues(t, 1, m.GetHistogram().GetSampleCount())
}

func TestOpenDropThresholdMinusOneSharesFails(t *testing.T) {
	store := newMemStore()
	path := writeTempFile(t, []byte("threshold test"))

	drop, err := CreateDrop(context.Background(), store, path, 3, 5, nil, nil)
	require.NoError(t, err)

	r, err := OpenDrop(context.Background(), store, drop.CID, drop.Shares[:2])
	require.NoError(t, err)
	defer r.Close()

	_, err = io.ReadAll(r)
	require.Error(t, err)
}
