package config

import (
	"testing"
	"time"
)

func TestParseAccountMap(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:     "single pair",
			input:    "Joint Checking=acct-9",
			expected: map[string]string{"Joint Checking": "acct-9"},
		},
		{
			name:  "multiple pairs with spaces",
			input: "Joint Checking=acct-9, Savings = acct-2",
			expected: map[string]string{
				"Joint Checking": "acct-9",
				"Savings":        "acct-2",
			},
		},
		{
			name:     "malformed pairs dropped",
			input:    "nodelimiter,=noid,nolabel=,Good=1",
			expected: map[string]string{"Good": "1"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAccountMap(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %d entries, want %d: %v", len(got), len(tt.expected), got)
			}
			for k, v := range tt.expected {
				if got[k] != v {
					t.Errorf("key %q: got %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load("")

	if cfg.ServerAddr == "" {
		t.Error("expected a default server address")
	}
	if cfg.HeaderMarker == "" || cfg.RowMarker == "" {
		t.Error("expected default page markers")
	}
	if cfg.MaxHeaderDistance <= 0 {
		t.Error("expected a positive distance bound")
	}
	if cfg.SettleMaxAttempts <= 0 || cfg.SettleStableRounds <= 0 {
		t.Error("expected positive settle defaults")
	}
}

func TestSettleOptionsFromEnv(t *testing.T) {
	t.Setenv("SETTLE_INTERVAL_MS", "50")
	t.Setenv("SETTLE_MAX_ATTEMPTS", "7")
	t.Setenv("SETTLE_STABLE_ROUNDS", "2")

	opts := Load("").SettleOptions()

	if opts.Interval != 50*time.Millisecond {
		t.Errorf("interval: got %v", opts.Interval)
	}
	if opts.MaxAttempts != 7 {
		t.Errorf("max attempts: got %d", opts.MaxAttempts)
	}
	if opts.StableRounds != 2 {
		t.Errorf("stable rounds: got %d", opts.StableRounds)
	}
}

func TestLoadSyncFromEnv(t *testing.T) {
	t.Setenv("SYNC_ENDPOINT", "https://budget.example")
	t.Setenv("SYNC_API_KEY", "k")
	t.Setenv("SYNC_BUDGET_ID", "b1")
	t.Setenv("ACCOUNT_MAP", "Joint Checking=acct-9")

	cfg := Load("")

	if cfg.Sync.Endpoint != "https://budget.example" {
		t.Errorf("endpoint: got %q", cfg.Sync.Endpoint)
	}
	if cfg.Sync.BudgetID != "b1" {
		t.Errorf("budget id: got %q", cfg.Sync.BudgetID)
	}
	if cfg.Sync.Accounts["Joint Checking"] != "acct-9" {
		t.Errorf("account map: got %v", cfg.Sync.Accounts)
	}
}
