// Package storage is the HTTP client for the content-addressed storage
// backend the dead-drop pipeline publishes ciphertext blobs to.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client talks to an IPFS-API-compatible content-addressed store.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New builds a Client pointed at baseURL (e.g. "http://127.0.0.1:5001").
func New(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

type addResponse struct {
	Hash string `json:"Hash"`
}

// Upload submits r as a multipart "file" field to /api/v0/add and returns
// the resulting content identifier.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("storage: build multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("storage: stage upload body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v0/add", &body)
	if err != nil {
		return "", fmt.Errorf("storage: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		if c.log != nil {
			c.log.Warn("upload request failed", zap.Error(err))
		}
		return "", ErrUploadFailed
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", ErrUploadFailed
	}

	var out addResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", ErrUploadFailed
	}
	if out.Hash == "" {
		return "", ErrUploadFailed
	}
	return out.Hash, nil
}

// Fetch retrieves the blob stored under cid.
func (c *Client) Fetch(ctx context.Context, cid string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v0/cat?arg="+cid, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, ErrStorageUnavailable
	}
	return resp.Body, nil
}

type idResponse struct {
	Version string `json:"Version"`
}

// Version hits /api/v0/id and returns the backend's reported version string,
// used to implement the test_ipfs command.
func (c *Client) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v0/id", nil)
	if err != nil {
		return "", fmt.Errorf("storage: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", ErrStorageUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", ErrStorageUnavailable
	}
	var out idResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", ErrStorageUnavailable
	}
	return out.Version, nil
}
