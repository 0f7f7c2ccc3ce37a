package params

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/uhyunpark/venueorder/pkg/util"
)

type API struct {
	Addr        string
	CORSOrigins []string
}

// Session holds the venue session keys copied into every payload.
type Session struct {
	SesKey1 string
	SesKey2 string
}

type Log struct {
	File  string // empty = console only
	Level string
}

type Config struct {
	API     API
	Session Session
	Log     Log
}

func Default() Config {
	return Config{
		API: API{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		Log: Log{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	// godotenv never overrides variables already set in the process
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg.API.Addr = getEnv("API_ADDR", cfg.API.Addr)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.API.CORSOrigins = splitList(origins)
	}

	cfg.Session.SesKey1 = getEnv("SESKEY1", cfg.Session.SesKey1)
	cfg.Session.SesKey2 = getEnv("SESKEY2", cfg.Session.SesKey2)

	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)

	return cfg
}

// Validate checks that the listen address and log level are usable.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.API.Addr); err != nil {
		return fmt.Errorf("invalid API_ADDR %q: %w", c.API.Addr, err)
	}
	if _, err := util.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
