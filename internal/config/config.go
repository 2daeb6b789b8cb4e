package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Config holds the client settings.
type Config struct {
	APIURL          string
	DataDir         string
	LogLevel        logrus.Level
	Debounce        time.Duration
	SuccessWindow   time.Duration
	NotificationTTL time.Duration
	Retries         int
	RetryDelay      time.Duration
	RequestTimeout  time.Duration
	CrewRefresh     time.Duration
}

const (
	defaultConfigPath = "~/.config/foamsync/config.toml"
	defaultDataDir    = "~/.local/share/foamsync"
	defaultLogLevel   = logrus.InfoLevel

	defaultDebounce        = 3 * time.Second
	defaultSuccessWindow   = 3 * time.Second
	defaultNotificationTTL = 2 * time.Second
	defaultRetries         = 2
	defaultRetryDelay      = time.Second
	defaultRequestTimeout  = 30 * time.Second
)

// Environment overrides, applied after the file.
const (
	EnvAPIURL   = "FOAMSYNC_API_URL"
	EnvDataDir  = "FOAMSYNC_DATA_DIR"
	EnvLogLevel = "FOAMSYNC_LOG_LEVEL"
)

type fileConfig struct {
	APIURL          string `toml:"api_url"`
	DataDir         string `toml:"data_dir"`
	LogLevel        string `toml:"log_level"`
	Debounce        string `toml:"debounce"`
	SuccessWindow   string `toml:"success_window"`
	NotificationTTL string `toml:"notification_ttl"`
	Retries         *int   `toml:"retries"`
	RetryDelay      string `toml:"retry_delay"`
	RequestTimeout  string `toml:"request_timeout"`
	CrewRefresh     string `toml:"crew_refresh"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		DataDir:         mustExpand(defaultDataDir),
		LogLevel:        defaultLogLevel,
		Debounce:        defaultDebounce,
		SuccessWindow:   defaultSuccessWindow,
		NotificationTTL: defaultNotificationTTL,
		Retries:         defaultRetries,
		RetryDelay:      defaultRetryDelay,
		RequestTimeout:  defaultRequestTimeout,
	}
}

// Load reads the config file at path (or the default location), applies
// environment overrides and validates the result. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&raw)
	return build(raw)
}

func applyEnv(raw *fileConfig) {
	if v, ok := os.LookupEnv(EnvAPIURL); ok {
		raw.APIURL = v
	}
	if v, ok := os.LookupEnv(EnvDataDir); ok {
		raw.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		raw.LogLevel = v
	}
}

func build(raw fileConfig) (Config, error) {
	cfg := Default()
	cfg.APIURL = strings.TrimSpace(raw.APIURL)

	if dir := strings.TrimSpace(raw.DataDir); dir != "" {
		expanded, err := expandPath(dir)
		if err != nil {
			return Config{}, fmt.Errorf("data_dir: %w", err)
		}
		cfg.DataDir = expanded
	}

	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return Config{}, fmt.Errorf("log_level: %w", err)
		}
		cfg.LogLevel = parsed
	}

	durations := []struct {
		key      string
		value    string
		dst      *time.Duration
		zeroOkay bool
	}{
		{"debounce", raw.Debounce, &cfg.Debounce, false},
		{"success_window", raw.SuccessWindow, &cfg.SuccessWindow, false},
		{"notification_ttl", raw.NotificationTTL, &cfg.NotificationTTL, false},
		{"retry_delay", raw.RetryDelay, &cfg.RetryDelay, false},
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout, false},
		{"crew_refresh", raw.CrewRefresh, &cfg.CrewRefresh, true},
	}
	for _, d := range durations {
		v := strings.TrimSpace(d.value)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", d.key, err)
		}
		if parsed < 0 || (parsed == 0 && !d.zeroOkay) {
			return Config{}, fmt.Errorf("%s must be positive, got %s", d.key, v)
		}
		*d.dst = parsed
	}

	if raw.Retries != nil {
		if *raw.Retries < 0 {
			return Config{}, fmt.Errorf("retries must not be negative, got %d", *raw.Retries)
		}
		cfg.Retries = *raw.Retries
	}
	return cfg, nil
}

// CachePath is the badger directory for the local cache.
func (c Config) CachePath() string {
	return filepath.Join(c.dataDir(), "cache")
}

// LogPath is the application log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "foamsync.log")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
