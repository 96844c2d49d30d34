package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
)

// server is a minimal reference implementation of the IPFS-API-compatible
// content-addressed storage backend the core's internal/storage client
// talks to in local development and integration tests.
type server struct {
	store *blobStore
	cfg   *config
}

func newServer(store *blobStore, cfg *config) *server {
	return &server{store: store, cfg: cfg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v0/add", s.handleAdd)
	mux.HandleFunc("/api/v0/cat", s.handleCat)
	mux.HandleFunc("/api/v0/id", s.handleID)
	return authMiddleware(s.cfg.AuthTokens, mux)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "storaged"})
}

type addResponse struct {
	Hash string `json:"Hash"`
}

// POST /api/v0/add — accepts a multipart "file" field, stores it, and
// returns its content id.
func (s *server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error":"missing file field"}`, http.StatusBadRequest)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, `{"error":"read upload"}`, http.StatusInternalServerError)
		return
	}

	cid, err := s.store.Put(content)
	if err != nil {
		log.Printf("[add] error: %v", err)
		http.Error(w, `{"error":"store failed"}`, http.StatusInternalServerError)
		return
	}

	log.Printf("[add] cid=%s size=%d", cid, len(content))
	writeJSON(w, http.StatusOK, addResponse{Hash: cid})
}

// GET /api/v0/cat?arg=<cid> — streams back the stored blob.
func (s *server) handleCat(w http.ResponseWriter, r *http.Request) {
	cid := r.URL.Query().Get("arg")
	if cid == "" {
		http.Error(w, `{"error":"missing ?arg parameter"}`, http.StatusBadRequest)
		return
	}
	content, err := s.store.Get(cid)
	if err != nil {
		log.Printf("[cat] error: %v", err)
		http.Error(w, `{"error":"fetch failed"}`, http.StatusInternalServerError)
		return
	}
	if content == nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

type idResponse struct {
	Version string `json:"Version"`
}

// POST /api/v0/id — reports the backend's version, used by test_ipfs.
func (s *server) handleID(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, idResponse{Version: s.cfg.Version})
}
