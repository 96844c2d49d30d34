// Command storaged is a local reference implementation of the
// content-addressed storage backend the core treats as an external
// collaborator, for development and integration testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	cfg := defaultConfig()

	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")

	var tokensFlag string
	flag.StringVar(&tokensFlag, "tokens", "", "comma-separated API tokens (empty = no auth)")
	flag.Parse()

	if env := os.Getenv("STORAGED_TOKENS"); env != "" {
		tokensFlag = env
	}
	if tokensFlag != "" {
		cfg.AuthTokens = strings.Split(tokensFlag, ",")
		for i := range cfg.AuthTokens {
			cfg.AuthTokens[i] = strings.TrimSpace(cfg.AuthTokens[i])
		}
		log.Printf("[auth] %d API tokens configured", len(cfg.AuthTokens))
	} else {
		log.Printf("[auth] no API tokens configured, running in open mode")
	}

	store, err := newBlobStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}
	defer store.Close()
	log.Printf("[storage] initialized at %s", cfg.DBPath)

	srv := newServer(store, cfg)
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("[server] listening on :%d", cfg.Port)
	if err := httpSrv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
