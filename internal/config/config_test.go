package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIURL, EnvDataDir, EnvLogLevel} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "" {
		t.Fatalf("APIURL = %q, want empty", cfg.APIURL)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.Debounce != defaultDebounce || cfg.NotificationTTL != defaultNotificationTTL {
		t.Fatalf("durations = %v/%v, want defaults", cfg.Debounce, cfg.NotificationTTL)
	}
	if cfg.Retries != defaultRetries {
		t.Fatalf("Retries = %d, want %d", cfg.Retries, defaultRetries)
	}
	if cfg.CrewRefresh != 0 {
		t.Fatalf("CrewRefresh = %v, want disabled", cfg.CrewRefresh)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := writeConfig(t, `
api_url = "  https://script.example.com/exec  "
data_dir = "  ~/.foam  "
log_level = "debug"
debounce = "500ms"
retries = 0
crew_refresh = "1m"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://script.example.com/exec" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.LogLevel != logrus.DebugLevel {
		t.Fatalf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.Debounce != 500*time.Millisecond {
		t.Fatalf("Debounce = %v, want 500ms", cfg.Debounce)
	}
	if cfg.Retries != 0 {
		t.Fatalf("Retries = %d, want 0", cfg.Retries)
	}
	if cfg.CrewRefresh != time.Minute {
		t.Fatalf("CrewRefresh = %v, want 1m", cfg.CrewRefresh)
	}
	if cfg.CachePath() != filepath.Join(cfg.DataDir, "cache") {
		t.Fatalf("CachePath = %q", cfg.CachePath())
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)
	path := writeConfig(t, `
api_url = "https://file.example.com"
log_level = "warn"
`)
	t.Setenv(EnvAPIURL, "https://env.example.com")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://env.example.com" {
		t.Fatalf("APIURL = %q, want env value", cfg.APIURL)
	}
	if cfg.LogLevel != logrus.ErrorLevel {
		t.Fatalf("LogLevel = %v, want error", cfg.LogLevel)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	cases := map[string]string{
		"debounce":        `debounce = "soon"`,
		"success_window":  `success_window = "0s"`,
		"retries":         `retries = -1`,
		"log_level":       `log_level = "loud"`,
		"crew_refresh":    `crew_refresh = "-5s"`,
		"request_timeout": `request_timeout = "-1s"`,
	}
	for key, body := range cases {
		_, err := Load(writeConfig(t, body))
		if err == nil {
			t.Fatalf("Load(%s) returned nil error", key)
		}
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("Load(%s) error = %q, want it to name the key", key, err.Error())
		}
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, `api_url = [`))
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenDataDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/foamsync.log")) {
		t.Fatalf("LogPath = %q, want it to end with /foamsync.log", got)
	}
}
