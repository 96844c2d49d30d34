package storage

import "errors"

var (
	// ErrUploadFailed is returned when the storage backend rejects or
	// fails to accept an upload.
	ErrUploadFailed = errors.New("storage: upload failed")
	// ErrStorageUnavailable is returned when the storage backend cannot
	// be reached, answers with an unexpected status, or sends an
	// unreadable response.
	ErrStorageUnavailable = errors.New("storage: backend unavailable")
	// ErrNotFound is returned when a content id has no matching blob.
	ErrNotFound = errors.New("storage: content id not found")
)
