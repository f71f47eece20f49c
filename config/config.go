package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults match the production profile of the FreeDays backend.
const (
	DefaultBaseURL        = "https://next-vite-delta.vercel.app/api"
	DefaultRequestTimeout = 10 * time.Second
	DefaultDatabasePath   = "data/ledger.db"
)

type Config struct {
	// BaseURL is the root of the remote API, without a trailing slash.
	BaseURL string
	// RequestTimeout bounds every remote call. Timeouts surface as network errors.
	RequestTimeout time.Duration
	// DatabasePath is the SQLite file backing the local store.
	DatabasePath string
	// UserAgent is sent on every remote request.
	UserAgent string
}

func init() {
	// Load env from .env. Missing file is fine; env vars still apply.
	godotenv.Load()
}

// Load reads configuration from the environment.
//
// Env overrides (optional):
// - API_BASE_URL
// - API_TIMEOUT_SECONDS (default 10)
// - DB_PATH (default data/ledger.db)
// - LOG_LEVEL
func Load() Config {
	cfg := Config{
		BaseURL:        DefaultBaseURL,
		RequestTimeout: DefaultRequestTimeout,
		DatabasePath:   DefaultDatabasePath,
		UserAgent:      "FreeDays-LedgerClient/1.0.0",
	}
	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.BaseURL = trimTrailingSlash(v)
	}
	if v := os.Getenv("API_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	return cfg
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
