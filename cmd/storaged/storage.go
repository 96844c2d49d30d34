package main

import (
	"database/sql"
	"fmt"

	"lukechampine.com/blake3"

	_ "modernc.org/sqlite"
)

// blobStore persists uploaded ciphertext blobs, addressed by the blake3
// hex digest of their content.
type blobStore struct {
	db *sql.DB
}

func newBlobStore(dbPath string) (*blobStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storaged: open db: %w", err)
	}
	s := &blobStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storaged: init schema: %w", err)
	}
	return s, nil
}

func (s *blobStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS blobs (
		cid TEXT PRIMARY KEY,
		content BLOB NOT NULL,
		size INTEGER NOT NULL
	);
	`)
	return err
}

func (s *blobStore) Close() error { return s.db.Close() }

// Put stores content under its blake3 digest and returns the digest.
func (s *blobStore) Put(content []byte) (string, error) {
	sum := blake3.Sum256(content)
	cid := fmt.Sprintf("%x", sum)

	_, err := s.db.Exec(`
		INSERT INTO blobs (cid, content, size) VALUES (?, ?, ?)
		ON CONFLICT(cid) DO NOTHING
	`, cid, content, len(content))
	if err != nil {
		return "", fmt.Errorf("storaged: store blob: %w", err)
	}
	return cid, nil
}

// Get returns the blob stored under cid.
func (s *blobStore) Get(cid string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRow(`SELECT content FROM blobs WHERE cid = ?`, cid).Scan(&content)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storaged: fetch blob: %w", err)
	}
	return content, nil
}
