package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "feed:\n  rss_url: https://example.com/feed\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.PollSeconds != 120 {
		t.Errorf("PollSeconds = %d, want 120", cfg.PollSeconds)
	}
	if cfg.Dedup.SimilarityThreshold != 0.9 {
		t.Errorf("SimilarityThreshold = %v, want 0.9", cfg.Dedup.SimilarityThreshold)
	}
	if cfg.Dedup.WindowCapacity != 50 {
		t.Errorf("WindowCapacity = %d, want 50", cfg.Dedup.WindowCapacity)
	}
	if cfg.Publisher.MaxPostLen != 240 {
		t.Errorf("MaxPostLen = %d, want 240", cfg.Publisher.MaxPostLen)
	}
	if cfg.Publisher.BackoffMinutes != 30 {
		t.Errorf("BackoffMinutes = %d, want 30", cfg.Publisher.BackoffMinutes)
	}
	if cfg.Trading.StartingCash != 10000 || cfg.Trading.CashReserve != 1000 {
		t.Errorf("cash defaults = %v/%v, want 10000/1000",
			cfg.Trading.StartingCash, cfg.Trading.CashReserve)
	}
	if len(cfg.Trading.Blacklist) != 4 {
		t.Errorf("Blacklist = %v, want 4 default entries", cfg.Trading.Blacklist)
	}
	if cfg.LLM.Provider != "NOOP" {
		t.Errorf("Provider = %q, want NOOP default", cfg.LLM.Provider)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			"no feed source",
			"poll_seconds: 60\n",
			"feed.rss_url or feed.account",
		},
		{
			"bad threshold",
			"feed:\n  rss_url: x\ndedup:\n  similarity_threshold: 1.5\n",
			"similarity_threshold",
		},
		{
			"bad provider",
			"feed:\n  rss_url: x\nllm:\n  provider: GEMINI\n",
			"llm.provider",
		},
		{
			"reserve exceeds cash",
			"feed:\n  rss_url: x\ntrading:\n  starting_cash: 500\n  cash_reserve: 900\n",
			"starting_cash",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRequireEnv(t *testing.T) {
	t.Setenv("SCRYPTBOT_TEST_CRED", "abc")
	if v, err := RequireEnv("SCRYPTBOT_TEST_CRED"); err != nil || v != "abc" {
		t.Errorf("RequireEnv = %q, %v", v, err)
	}
	if _, err := RequireEnv("SCRYPTBOT_TEST_MISSING"); err == nil {
		t.Error("RequireEnv should fail for unset variable")
	}
}
