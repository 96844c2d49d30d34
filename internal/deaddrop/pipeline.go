// Package deaddrop implements the dead-drop pipeline: constant-memory
// chunked authenticated encryption of a file, publication of the resulting
// ciphertext to a content-addressed store, and threshold secret sharing of
// the session key.
package deaddrop

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"ghostdrop/internal/metrics"
	"ghostdrop/internal/shamir"
	"ghostdrop/internal/storage"
)

// Uploader is the subset of storage.Client the pipeline needs, so tests can
// substitute a fake.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Fetcher is the subset of storage.Client needed for retrieval.
type Fetcher interface {
	Fetch(ctx context.Context, cid string) (io.ReadCloser, error)
}

// Drop is the result of a successful CreateDrop.
type Drop struct {
	CID    string
	Shares []string // hex-encoded
}

// CreateDrop encrypts the file at path under a fresh session key, uploads
// the ciphertext, deals the session key into n shares (t required to
// reconstruct), and returns the content id and shares. The session key is
// zeroized before return. The end-to-end wall-clock duration, including the
// upload round trip, is observed on reg.DropDuration regardless of outcome.
func CreateDrop(ctx context.Context, up Uploader, path string, t, n int, log *zap.Logger, reg *metrics.Registry) (Drop, error) {
	start := time.Now()
	if reg != nil {
		defer func() { reg.DropDuration.Observe(time.Since(start).Seconds()) }()
	}

	if t < shamir.MinShares || n > shamir.MaxShares || t > n {
		return Drop{}, ErrInvalidPolicy
	}

	src, err := os.Open(path)
	if err != nil {
		return Drop{}, fmt.Errorf("%w: open input: %v", ErrIO, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "ghostdrop-drop-*")
	if err != nil {
		return Drop{}, fmt.Errorf("%w: create staging file: %v", ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	sessionKey := make([]byte, 32)
	if _, err := rand.Read(sessionKey); err != nil {
		tmp.Close()
		return Drop{}, fmt.Errorf("deaddrop: draw session key: %w", err)
	}
	defer zero(sessionKey)

	if err := encryptStream(tmp, src, sessionKey); err != nil {
		tmp.Close()
		return Drop{}, err
	}
	if err := tmp.Close(); err != nil {
		return Drop{}, fmt.Errorf("%w: flush staging file: %v", ErrIO, err)
	}

	staged, err := os.Open(tmpPath)
	if err != nil {
		return Drop{}, fmt.Errorf("%w: reopen staging file: %v", ErrIO, err)
	}
	defer staged.Close()

	cid, err := up.Upload(ctx, "drop.bin", staged)
	if err != nil {
		if log != nil {
			log.Warn("drop upload failed", zap.Error(err))
		}
		return Drop{}, err
	}

	rawShares, err := shamir.Split(sessionKey, t, n)
	if err != nil {
		return Drop{}, fmt.Errorf("deaddrop: deal shares: %w", err)
	}
	hexShares := make([]string, len(rawShares))
	for i, s := range rawShares {
		hexShares[i] = hex.EncodeToString(s)
	}

	if log != nil {
		log.Info("drop created", zap.String("cid", cid), zap.Int("threshold", t), zap.Int("total", n))
	}
	return Drop{CID: cid, Shares: hexShares}, nil
}

// OpenDrop reconstructs the session key from the supplied hex-encoded
// shares, fetches the ciphertext blob by cid, and returns a reader that
// decrypts it chunk by chunk as it is consumed.
func OpenDrop(ctx context.Context, fetch Fetcher, cid string, hexShares []string) (io.ReadCloser, error) {
	rawShares := make([][]byte, len(hexShares))
	for i, s := range hexShares {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("deaddrop: decode share: %w", err)
		}
		rawShares[i] = b
	}
	sessionKey, err := shamir.Reconstruct(rawShares)
	if err != nil {
		return nil, fmt.Errorf("deaddrop: reconstruct session key: %w", err)
	}
	defer zero(sessionKey)

	blob, err := fetch.Fetch(ctx, cid)
	if err != nil {
		return nil, err
	}

	ds, err := newDecryptStream(blob, sessionKey)
	if err != nil {
		blob.Close()
		return nil, err
	}
	return &readCloser{Reader: ds, closer: blob}, nil
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

func (r *readCloser) Close() error { return r.closer.Close() }

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
