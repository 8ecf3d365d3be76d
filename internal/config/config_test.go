package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
dispatch:
  rate_ceiling_per_minute: 5
  spam_repeat_threshold: 2
  typing_delay_cap: 2s
moderation:
  escalation_ceiling: 2
  anti_links: true
  banned_words: [scam, crypto]
providers:
  - id: groq
    base_url: https://api.groq.com/openai/v1
    model: llama-3.3-70b-versatile
    timeout: 9s
brand:
  owner_name: Salman Dev
  status: busy
  keywords: [price, demo]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Dispatch.RateCeilingPerMinute != 5 {
		t.Fatalf("unexpected rate ceiling: %d", cfg.Dispatch.RateCeilingPerMinute)
	}
	if cfg.Dispatch.SpamRepeatThreshold != 2 {
		t.Fatalf("unexpected spam repeat threshold: %d", cfg.Dispatch.SpamRepeatThreshold)
	}
	if cfg.Dispatch.TypingDelayCap != 2*time.Second {
		t.Fatalf("unexpected typing delay cap: %s", cfg.Dispatch.TypingDelayCap)
	}
	if cfg.Moderation.EscalationCeiling != 2 {
		t.Fatalf("unexpected escalation ceiling: %d", cfg.Moderation.EscalationCeiling)
	}
	if !cfg.Moderation.AntiLinks {
		t.Fatalf("anti_links should be enabled by yaml")
	}
	if len(cfg.Moderation.BannedWords) != 2 {
		t.Fatalf("unexpected banned words: %v", cfg.Moderation.BannedWords)
	}
	if len(cfg.Providers) != 1 || cfg.Providers[0].ID != "groq" {
		t.Fatalf("provider list should be replaced by yaml: %+v", cfg.Providers)
	}
	if cfg.Providers[0].Timeout != 9*time.Second {
		t.Fatalf("unexpected provider timeout: %s", cfg.Providers[0].Timeout)
	}
	if cfg.Brand.OwnerName != "Salman Dev" || cfg.Brand.Status != "busy" {
		t.Fatalf("unexpected brand profile: %+v", cfg.Brand)
	}

	// Untouched sections keep their defaults.
	if cfg.Dispatch.SpamMaxLength != 4000 {
		t.Fatalf("spam_max_length default should stay 4000")
	}
	if !cfg.Moderation.AntiCaps {
		t.Fatalf("anti_caps default should stay true")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Dispatch.RateCeilingPerMinute != 8 {
		t.Fatalf("unexpected default rate ceiling: %d", cfg.Dispatch.RateCeilingPerMinute)
	}
	if cfg.Moderation.EscalationCeiling != 3 {
		t.Fatalf("unexpected default escalation ceiling: %d", cfg.Moderation.EscalationCeiling)
	}
	if cfg.Moderation.DefaultMuteDuration != 60*time.Minute {
		t.Fatalf("unexpected default mute duration: %s", cfg.Moderation.DefaultMuteDuration)
	}
	if cfg.Postgres.MaxConns != 8 {
		t.Fatalf("unexpected default postgres max conns: %d", cfg.Postgres.MaxConns)
	}
	if len(cfg.Providers) != 2 {
		t.Fatalf("unexpected default provider count: %d", len(cfg.Providers))
	}
	if cfg.Providers[0].ID != "openrouter" || cfg.Providers[1].ID != "groq" {
		t.Fatalf("unexpected default provider order: %s, %s", cfg.Providers[0].ID, cfg.Providers[1].ID)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("RATE_CEILING_PER_MINUTE", "3")
	t.Setenv("ESCALATION_CEILING", "5")
	t.Setenv("PROVIDER_API_KEY", "sk-test")
	t.Setenv("ASSISTANT_NAME", "salmanbot")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Dispatch.RateCeilingPerMinute != 3 {
		t.Fatalf("env override of rate ceiling not applied: %d", cfg.Dispatch.RateCeilingPerMinute)
	}
	if cfg.Moderation.EscalationCeiling != 5 {
		t.Fatalf("env override of escalation ceiling not applied: %d", cfg.Moderation.EscalationCeiling)
	}
	for _, p := range cfg.Providers {
		if p.APIKey != "sk-test" {
			t.Fatalf("shared api key not propagated to provider %s", p.ID)
		}
	}
	if cfg.Telegram.AssistantName != "salmanbot" {
		t.Fatalf("assistant name override not applied: %s", cfg.Telegram.AssistantName)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "ADMIN_TOKEN", "BOT_TOKEN",
		"ASSISTANT_NAME", "POSTGRES_DSN", "POSTGRES_MAX_CONNS", "REDIS_ADDR", "REDIS_PASSWORD",
		"REDIS_DB", "PROVIDER_API_KEY", "RATE_CEILING_PER_MINUTE",
		"SPAM_REPEAT_THRESHOLD", "FLUSH_INTERVAL", "ESCALATION_CEILING",
		"DEFAULT_MUTE_DURATION",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}
