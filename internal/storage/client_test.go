package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUploadReturnsHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v0/add", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		fmt.Fprint(w, `{"Hash":"bafy-test-hash"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	cid, err := c.Upload(context.Background(), "blob.bin", strings.NewReader("ciphertext-bytes"))
	require.NoError(t, err)
	require.Equal(t, "bafy-test-hash", cid)
}

func TestUploadFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Upload(context.Background(), "blob.bin", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrUploadFailed)
}

func TestVersionReturnsBackendVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v0/id", r.URL.Path)
		fmt.Fprint(w, `{"Version":"0.1.0-ghostdrop"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	v, err := c.Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.1.0-ghostdrop", v)
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Fetch(context.Background(), "missing-cid")
	require.ErrorIs(t, err, ErrNotFound)
}
