package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures how shelf reaches the BookTracker backend and where it
// keeps its local state.
type Config struct {
	APIURL         string
	Username       string
	Password       string // only ever read from SHELF_PASSWORD
	Timezone       string
	DataDir        string
	LogLevel       string
	PollEvery      time.Duration
	RequestTimeout time.Duration
}

const (
	defaultConfigPath     = "~/.config/shelf/config.toml"
	defaultDataDir        = "~/.local/share/shelf"
	defaultAPIURL         = "http://127.0.0.1:8080"
	defaultTimezone       = "UTC"
	defaultLogLevel       = "info"
	defaultPollSeconds    = 30
	defaultTimeoutSeconds = 10
)

// Environment variables applied on top of the file.
const (
	EnvAPIURL   = "SHELF_API_URL"
	EnvUsername = "SHELF_USERNAME"
	EnvPassword = "SHELF_PASSWORD"
	EnvLogLevel = "SHELF_LOG_LEVEL"
	EnvTimezone = "SHELF_TIMEZONE"
)

// DefaultTOML is written by `shelf init`.
const DefaultTOML = `# shelf configuration

# Base URL of the BookTracker backend.
api_url = "http://127.0.0.1:8080"

# Account used by "shelf login" when --username is not given.
# The password is never stored here; set SHELF_PASSWORD or type it at the prompt.
username = ""

# IANA time zone used to decide what "today" is for the reading streak.
timezone = "UTC"

# Cache database and log file live here.
data_dir = "~/.local/share/shelf"

# debug, info, warn or error.
log_level = "info"

# How often the TUI refreshes books and sessions.
poll_seconds = 30

# Per-request timeout for API calls.
request_timeout_seconds = 10
`

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the shelf config, falling back to defaults when
// missing. A .env file in the working directory and SHELF_* environment
// variables override file values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		if err := parse(file, &cfg); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	// A missing .env is normal.
	_ = godotenv.Load()
	applyEnv(&cfg)

	cfg.DataDir = mustExpand(cfg.DataDir)
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		APIURL:         defaultAPIURL,
		Timezone:       defaultTimezone,
		DataDir:        defaultDataDir,
		LogLevel:       defaultLogLevel,
		PollEvery:      defaultPollSeconds * time.Second,
		RequestTimeout: defaultTimeoutSeconds * time.Second,
	}
}

func parse(r io.Reader, cfg *Config) error {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		Username       string `toml:"username"`
		Timezone       string `toml:"timezone"`
		DataDir        string `toml:"data_dir"`
		LogLevel       string `toml:"log_level"`
		PollSeconds    int    `toml:"poll_seconds"`
		TimeoutSeconds int    `toml:"request_timeout_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.APIURL, raw.APIURL)
	setString(&cfg.Username, raw.Username)
	setString(&cfg.Timezone, raw.Timezone)
	setString(&cfg.DataDir, raw.DataDir)
	setString(&cfg.LogLevel, raw.LogLevel)
	if raw.PollSeconds > 0 {
		cfg.PollEvery = time.Duration(raw.PollSeconds) * time.Second
	}
	if raw.TimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.APIURL, os.Getenv(EnvAPIURL))
	setString(&cfg.Username, os.Getenv(EnvUsername))
	setString(&cfg.Password, os.Getenv(EnvPassword))
	setString(&cfg.LogLevel, os.Getenv(EnvLogLevel))
	setString(&cfg.Timezone, os.Getenv(EnvTimezone))
}

func setString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

// Location resolves the configured time zone, defaulting to UTC.
func (c Config) Location() *time.Location {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CachePath returns the path to the local SQLite cache.
func (c Config) CachePath() string {
	return filepath.Join(c.dataDir(), "shelf.db")
}

// LogPath returns the path to shelf's own log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "shelf.log")
}

// Summary is a one-line description for `shelf version -v` and logs.
func (c Config) Summary() string {
	return fmt.Sprintf("api=%s tz=%s poll=%s", c.APIURL, c.Timezone, c.PollEvery)
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

// WriteDefault writes DefaultTOML to path unless a file already exists.
func WriteDefault(path string) (string, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(resolved); err == nil {
		return resolved, fmt.Errorf("config already exists at %s", resolved)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(resolved, []byte(DefaultTOML), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return resolved, nil
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
