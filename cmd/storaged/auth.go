package main

import (
	"net/http"
	"strings"

	"ghostdrop/internal/shamir"
)

// authMiddleware validates bearer tokens; an empty token set means open
// access, matching local development defaults. Tokens guard access to the
// same ciphertext blobs a compromised dead-drop CID could otherwise expose
// to anyone who guesses it, so token comparison goes through
// shamir.ConstantTimeCompare rather than a map lookup: a map probes its
// buckets in time that depends on which bucket (and thus which stored
// token) the request token hashes to, where a linear constant-time scan
// does not favor any one configured token over another.
func authMiddleware(tokens []string, next http.Handler) http.Handler {
	configured := make([][]byte, len(tokens))
	for i, t := range tokens {
		configured[i] = []byte(t)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		if len(configured) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, `{"error":"invalid authorization format"}`, http.StatusUnauthorized)
			return
		}

		presented := []byte(parts[1])
		authorized := false
		for _, tok := range configured {
			if shamir.ConstantTimeCompare(presented, tok) {
				authorized = true
			}
		}
		if !authorized {
			http.Error(w, `{"error":"invalid token"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
