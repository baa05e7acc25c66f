package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// 环境变量未设置时，应该返回默认值
	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	// 环境变量设置后，应优先返回环境变量
	t.Setenv(key, "8080")
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestTypedGetters(t *testing.T) {
	t.Setenv("TEST_INT", "7")
	t.Setenv("TEST_BAD_INT", "seven")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_DUR", "250ms")
	t.Setenv("TEST_DUR_SECONDS", "3")

	if got := getEnvInt("TEST_INT", 1); got != 7 {
		t.Fatalf("getEnvInt = %d, want 7", got)
	}
	if got := getEnvInt("TEST_BAD_INT", 1); got != 1 {
		t.Fatalf("invalid int should fall back to default, got %d", got)
	}
	if !getEnvBool("TEST_BOOL", false) {
		t.Fatalf("getEnvBool should be true")
	}
	if got := getEnvDuration("TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("getEnvDuration = %v", got)
	}
	if got := getEnvDuration("TEST_DUR_SECONDS", time.Second); got != 3*time.Second {
		t.Fatalf("plain number should be seconds, got %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "FEED_URL", "FEED_TIMEOUT", "FEED_ITEM_LIMIT", "KEEP_ON_FEED_FAILURE", "SYNC_CRON_SPEC", "REDIS_ADDR", "POSTGRES_DSN"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.AppPort != "9000" {
		t.Fatalf("AppPort = %q", cfg.AppPort)
	}
	if cfg.FeedURL != "https://nexcar.substack.com/feed" {
		t.Fatalf("FeedURL = %q", cfg.FeedURL)
	}
	if cfg.FeedItemLimit != 3 || cfg.FeedTimeout != 15*time.Second {
		t.Fatalf("feed defaults not applied: %+v", cfg)
	}
	if cfg.KeepOnFeedFailure || cfg.SyncCronSpec != "" || cfg.RedisAddr != "" || cfg.PostgresDSN != "" {
		t.Fatalf("optional features must default to disabled: %+v", cfg)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("BLOGHUB_TEST_FROM_FILE=yes\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("BLOGHUB_TEST_FROM_FILE") })

	loaded := LoadEnv(path, filepath.Join(dir, "missing.env"))
	if len(loaded) != 1 || loaded[0] != path {
		t.Fatalf("loaded = %v", loaded)
	}
	if got := os.Getenv("BLOGHUB_TEST_FROM_FILE"); got != "yes" {
		t.Fatalf("env from file = %q", got)
	}
}
