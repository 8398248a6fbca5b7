// Package config provides configuration for the WeSigned client agent and
// the reference sync backend, from command-line flags, a .env file, and
// environment variables.
package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrNoSecret is returned when no encryption secret is configured. There is
// no fallback key: starting without a secret would leave credentials
// recoverable by anyone reading the store file.
var ErrNoSecret = errors.New("config: WESIGNED_SECRET_KEY is not set")

// ClientOptions holds configuration for the offline client agent.
type ClientOptions struct {
	// ServerAddress is the base URL of the sync backend.
	ServerAddress string

	// StorePath is the path of the local store file.
	StorePath string

	// SecretKey is the symmetric secret protecting credentials at rest.
	// Required; the agent refuses to start without it.
	SecretKey string

	// SyncInterval is the background sync loop period.
	SyncInterval time.Duration

	// SweepInterval is the pending-user activation sweep period.
	SweepInterval time.Duration

	// ClearHistoryOnSync wipes the signin history collection after a
	// successful attendance sync instead of only the synced batch.
	ClearHistoryOnSync bool

	// LogLevel sets the zap log level.
	LogLevel string
}

// ParseClient parses client configuration from args and the environment.
// A .env file in the working directory is loaded first if present.
func ParseClient(args []string) (*ClientOptions, error) {
	_ = godotenv.Load(".env")

	opts := &ClientOptions{}
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&opts.ServerAddress, "a", "http://localhost:5000", "sync backend base URL")
	fs.StringVar(&opts.StorePath, "s", "wesigned.json", "local store file path")
	fs.DurationVar(&opts.SyncInterval, "sync-interval", 30*time.Second, "background sync period")
	fs.DurationVar(&opts.SweepInterval, "sweep-interval", 10*time.Minute, "pending-user sweep period")
	fs.BoolVar(&opts.ClearHistoryOnSync, "clear-history", false, "clear signin history after a successful sync")
	fs.StringVar(&opts.LogLevel, "log-level", "Info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if v := os.Getenv("WESIGNED_SERVER_ADDRESS"); v != "" {
		opts.ServerAddress = v
	}
	if v := os.Getenv("WESIGNED_STORE_PATH"); v != "" {
		opts.StorePath = v
	}
	if v := getenvDuration("WESIGNED_SYNC_INTERVAL"); v > 0 {
		opts.SyncInterval = v
	}
	if v := getenvDuration("WESIGNED_SWEEP_INTERVAL"); v > 0 {
		opts.SweepInterval = v
	}
	if v := os.Getenv("WESIGNED_CLEAR_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.ClearHistoryOnSync = b
		}
	}

	opts.SecretKey = os.Getenv("WESIGNED_SECRET_KEY")
	if opts.SecretKey == "" {
		return nil, ErrNoSecret
	}
	return opts, nil
}

// ServerOptions holds configuration for the reference sync backend.
type ServerOptions struct {
	// Addr is the ip:port the HTTP server listens on.
	Addr string

	// DatabaseDSN is the PostgreSQL connection string.
	DatabaseDSN string

	// JWTSecret signs session tokens issued at login.
	JWTSecret string

	// JWTIssuer is the "iss" claim of issued tokens.
	JWTIssuer string

	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration

	// LogLevel sets the zap log level.
	LogLevel string
}

// ParseServer parses backend configuration from args and the environment.
func ParseServer(args []string) (*ServerOptions, error) {
	_ = godotenv.Load(".env")

	opts := &ServerOptions{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&opts.Addr, "a", "localhost:5000", "run on ip:port")
	fs.StringVar(&opts.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&opts.JWTIssuer, "issuer", "wesigned", "jwt issuer")
	fs.DurationVar(&opts.TokenTTL, "token-ttl", 24*time.Hour, "session token lifetime")
	fs.StringVar(&opts.LogLevel, "log-level", "Info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if v := os.Getenv("WESIGNED_SERVER_ADDRESS"); v != "" {
		opts.Addr = v
	}
	if v := os.Getenv("WESIGNED_DATABASE_DSN"); v != "" {
		opts.DatabaseDSN = v
	}
	opts.JWTSecret = os.Getenv("WESIGNED_JWT_SECRET")
	if opts.JWTSecret == "" {
		return nil, errors.New("config: WESIGNED_JWT_SECRET is not set")
	}
	return opts, nil
}

func getenvDuration(key string) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 0
}
