package main

// config holds storaged's runtime settings.
type config struct {
	Port       int
	DBPath     string
	AuthTokens []string
	Version    string
}

func defaultConfig() *config {
	return &config{
		Port:       5001,
		DBPath:     "storaged.db",
		AuthTokens: nil, // open mode by default, for local development
		Version:    "0.1.0-ghostdrop-storaged",
	}
}
