// Package config resolves the application's on-disk footprint and the
// runtime settings accepted by cmd/ghostdrop, generalizing the single-file
// layout the core's filesystem contract requires.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const identityFileName = "identity.enc"

// Paths holds every filesystem location the core touches. The core owns
// exactly one persisted file; the only other entry is the directory that
// contains it.
type Paths struct {
	BaseDir     string
	IdentityEnc string
}

// Resolve locates (and creates if absent) the application data directory and
// returns the single identity file path within it.
func Resolve() (*Paths, error) {
	base, err := baseDir()
	if err != nil {
		return nil, fmt.Errorf("config: resolve base dir: %w", err)
	}
	if err := os.MkdirAll(base, 0o700); err != nil {
		return nil, fmt.Errorf("config: create base dir: %w", err)
	}
	return &Paths{
		BaseDir:     base,
		IdentityEnc: filepath.Join(base, identityFileName),
	}, nil
}

func baseDir() (string, error) {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ghostdrop"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot find home dir: %w", err)
	}
	return filepath.Join(home, ".ghostdrop"), nil
}

// Config carries the runtime parameters cmd/ghostdrop wires into the core.
type Config struct {
	ListenAddrs    []string
	StorageBaseURL string
	MDNSTag        string
	ControlAddr    string
	MetricsAddr    string
	EnableRelay    bool
}

// Default returns the configuration used when no flags override it.
func Default() Config {
	return Config{
		ListenAddrs: []string{
			"/ip4/0.0.0.0/tcp/0",
			"/ip4/0.0.0.0/udp/0/quic-v1",
		},
		StorageBaseURL: "http://127.0.0.1:5001",
		MDNSTag:        "ghostdrop-mdns",
		ControlAddr:    "127.0.0.1:7077",
		MetricsAddr:    "127.0.0.1:7078",
		EnableRelay:    false,
	}
}
