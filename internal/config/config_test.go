package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subsmith/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsForMissingFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Whisper.Backend != "whisper" {
		t.Fatalf("unexpected backend default: %q", cfg.Whisper.Backend)
	}
	if cfg.Telegram.PollTimeout != 30 {
		t.Fatalf("unexpected poll timeout default: %d", cfg.Telegram.PollTimeout)
	}
	if len(cfg.Subtitles.Languages) != 2 {
		t.Fatalf("unexpected default languages: %v", cfg.Subtitles.Languages)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
staging_dir = "`+filepath.Join(base, "staging")+`"
log_dir = "`+filepath.Join(base, "logs")+`"

[telegram]
token = "  abc123  "

[subtitles]
languages = ["EN", "en", " km "]
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Telegram.Token != "abc123" {
		t.Fatalf("expected trimmed token, got %q", cfg.Telegram.Token)
	}
	if got := cfg.Subtitles.Languages; len(got) != 2 || got[0] != "en" || got[1] != "km" {
		t.Fatalf("expected deduped lowercase languages, got %v", got)
	}
}

func TestLoadTokenFromEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Fatalf("expected token from environment, got %q", cfg.Telegram.Token)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
[whisper]
backend = "azure"
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "whisper.backend") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestLoadRejectsOpenAIWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := writeConfig(t, `
[whisper]
backend = "openai"
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "whisper.api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestLoadRejectsUnknownLanguage(t *testing.T) {
	path := writeConfig(t, `
[subtitles]
languages = ["xx"]
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "unrecognized language") {
		t.Fatalf("expected language error, got %v", err)
	}
}

func TestValidateHeartbeatOrdering(t *testing.T) {
	cfg := config.Default()
	cfg.Workflow.HeartbeatInterval = 60
	cfg.Workflow.HeartbeatTimeout = 30

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected heartbeat ordering error")
	}
}

func TestMaxFileBytes(t *testing.T) {
	cfg := config.Default()
	cfg.Telegram.MaxFileMB = 2
	if got := cfg.MaxFileBytes(); got != 2*1024*1024 {
		t.Fatalf("MaxFileBytes = %d", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs", "nested")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
}

func TestCreateSampleRoundTrip(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Whisper.Backend != "whisper" {
		t.Fatalf("unexpected backend: %q", cfg.Whisper.Backend)
	}
	if cfg.Workflow.HeartbeatTimeout != 120 {
		t.Fatalf("unexpected heartbeat timeout: %d", cfg.Workflow.HeartbeatTimeout)
	}
}
