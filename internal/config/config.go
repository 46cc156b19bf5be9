package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/snapledger/snapledger/internal/budget"
	"github.com/snapledger/snapledger/internal/extract"
)

// Config is the ambient configuration read fresh on each action: remote sync
// settings, the page marker overrides, and the empirically tuned knobs.
type Config struct {
	ServerAddr string

	Sync budget.Config

	HeaderMarker      string
	RowMarker         string
	MaxHeaderDistance float64

	SettleInterval     time.Duration
	SettleMaxAttempts  int
	SettleStableRounds int
}

// Load reads configuration from the environment, optionally seeding it from
// an env file first.
func Load(envFile string) *Config {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Println("error loading config from file", err)
		}
	}

	cfg := &Config{}

	cfg.ServerAddr = GetEnv("SERVER_ADDR", ":8080")

	cfg.Sync.Endpoint = GetEnv("SYNC_ENDPOINT", "")
	cfg.Sync.APIKey = GetEnv("SYNC_API_KEY", "")
	cfg.Sync.BudgetID = GetEnv("SYNC_BUDGET_ID", "")
	cfg.Sync.Accounts = ParseAccountMap(GetEnv("ACCOUNT_MAP", ""))

	cfg.HeaderMarker = GetEnv("HEADER_MARKER", extract.DefaultHeaderMarker)
	cfg.RowMarker = GetEnv("ROW_MARKER", extract.DefaultRowMarker)
	cfg.MaxHeaderDistance = GetEnvAsFloat("MAX_HEADER_DISTANCE", extract.DefaultMaxHeaderDistance)

	cfg.SettleInterval = time.Duration(GetEnvAsInt("SETTLE_INTERVAL_MS", 500)) * time.Millisecond
	cfg.SettleMaxAttempts = GetEnvAsInt("SETTLE_MAX_ATTEMPTS", extract.DefaultSettleMaxAttempts)
	cfg.SettleStableRounds = GetEnvAsInt("SETTLE_STABLE_ROUNDS", extract.DefaultSettleStableRounds)

	return cfg
}

// ExtractOptions derives the extraction options from the loaded settings.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{
		HeaderMarker:      c.HeaderMarker,
		RowMarker:         c.RowMarker,
		MaxHeaderDistance: c.MaxHeaderDistance,
	}
}

// SettleOptions derives the snapshot settle options from the loaded settings.
func (c *Config) SettleOptions() extract.SettleOptions {
	return extract.SettleOptions{
		Interval:     c.SettleInterval,
		MaxAttempts:  c.SettleMaxAttempts,
		StableRounds: c.SettleStableRounds,
	}
}

// ParseAccountMap parses the ACCOUNT_MAP form "Label=remoteID,Label2=id2"
// into the account-label mapping. Malformed pairs are dropped.
func ParseAccountMap(raw string) map[string]string {
	accounts := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		label, id, ok := strings.Cut(pair, "=")
		label, id = strings.TrimSpace(label), strings.TrimSpace(id)
		if !ok || label == "" || id == "" {
			continue
		}
		accounts[label] = id
	}
	return accounts
}

// GetEnv returns the environment value or the fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// GetEnvAsInt returns the environment value parsed as int, or the fallback.
func GetEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvAsFloat returns the environment value parsed as float64, or the fallback.
func GetEnvAsFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
