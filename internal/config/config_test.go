package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIURL, EnvUsername, EnvPassword, EnvLogLevel, EnvTimezone} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.PollEvery != 30*time.Second {
		t.Fatalf("PollEvery = %v, want 30s", cfg.PollEvery)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("Location = %v, want UTC", cfg.Location())
	}

	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.CachePath() != filepath.Join(wantDataDir, "shelf.db") {
		t.Fatalf("CachePath = %q, want %q", cfg.CachePath(), filepath.Join(wantDataDir, "shelf.db"))
	}
	if cfg.LogPath() != filepath.Join(wantDataDir, "shelf.log") {
		t.Fatalf("LogPath = %q, want %q", cfg.LogPath(), filepath.Join(wantDataDir, "shelf.log"))
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  http://books.lan:9000  "
username = " reader "
timezone = "America/New_York"
data_dir = "  ~/.shelf  "
log_level = "debug"
poll_seconds = 5
request_timeout_seconds = 3
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://books.lan:9000" {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, "http://books.lan:9000")
	}
	if cfg.Username != "reader" {
		t.Fatalf("Username = %q, want reader", cfg.Username)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Fatalf("Location = %v, want America/New_York", cfg.Location())
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.PollEvery != 5*time.Second || cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("PollEvery = %v RequestTimeout = %v, want 5s/3s", cfg.PollEvery, cfg.RequestTimeout)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "   "
data_dir = ""
poll_seconds = 0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.PollEvery != defaultPollSeconds*time.Second {
		t.Fatalf("PollEvery = %v, want default", cfg.PollEvery)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)
	t.Setenv(EnvAPIURL, "http://override:1")
	t.Setenv(EnvUsername, "env-user")
	t.Setenv(EnvPassword, "secret")
	t.Setenv(EnvTimezone, "Asia/Tokyo")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "http://file:2"
username = "file-user"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://override:1" {
		t.Fatalf("APIURL = %q, want env override", cfg.APIURL)
	}
	if cfg.Username != "env-user" || cfg.Password != "secret" {
		t.Fatalf("Username/Password = %q/%q, want env values", cfg.Username, cfg.Password)
	}
	if cfg.Location().String() != "Asia/Tokyo" {
		t.Fatalf("Location = %v, want Asia/Tokyo", cfg.Location())
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidTimezoneFails(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimezone, "Mars/Olympus_Mons")
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "invalid timezone") {
		t.Fatalf("Load error = %v, want invalid timezone", err)
	}
}

func TestDefaultTOML_ParsesToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	written, err := WriteDefault(path)
	if err != nil {
		t.Fatalf("WriteDefault returned error: %v", err)
	}
	if written != path {
		t.Fatalf("WriteDefault path = %q, want %q", written, path)
	}
	if _, err := WriteDefault(path); err == nil {
		t.Fatalf("second WriteDefault returned nil error, want exists error")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := defaults()
	want.DataDir = mustExpand(defaultDataDir)
	if cfg != want {
		t.Fatalf("Load(DefaultTOML) = %+v, want %+v", cfg, want)
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
	if !strings.HasSuffix(got, filepath.FromSlash("/shelf.log")) {
		t.Fatalf("LogPath = %q, want it to end with /shelf.log", got)
	}
}
