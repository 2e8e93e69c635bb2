package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvPort, EnvLogLevel, EnvDataDir, EnvConfigFile, EnvSaveDebounce, EnvHeadless} {
		os.Unsetenv(key)
	}
}

func TestNew_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != "info" {
		t.Errorf("LogLevel() = %q, want info", cfg.LogLevel())
	}
	if cfg.SaveDebounce() != 1500*time.Millisecond {
		t.Errorf("SaveDebounce() = %v, want 1.5s", cfg.SaveDebounce())
	}
	if cfg.Headless() {
		t.Error("Headless() = true, want false by default")
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv(EnvPort, "9999")
	os.Setenv(EnvLogLevel, "debug")
	os.Setenv(EnvDataDir, "/tmp/clipforge-test")
	os.Setenv(EnvSaveDebounce, "250")
	os.Setenv(EnvHeadless, "true")
	defer clearEnv(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9999 {
		t.Errorf("Port() = %d, want 9999", cfg.Port())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %q, want debug", cfg.LogLevel())
	}
	if cfg.DBPath() != filepath.Join("/tmp/clipforge-test", DBFilename) {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
	if cfg.SaveDebounce() != 250*time.Millisecond {
		t.Errorf("SaveDebounce() = %v, want 250ms", cfg.SaveDebounce())
	}
	if !cfg.Headless() {
		t.Error("Headless() = false, want true")
	}
}

func TestNew_InvalidPort(t *testing.T) {
	clearEnv(t)
	os.Setenv(EnvPort, "not-a-port")
	defer clearEnv(t)

	if _, err := New(); err == nil {
		t.Error("New() should reject a non-numeric port")
	}

	os.Setenv(EnvPort, "70000")
	if _, err := New(); err == nil {
		t.Error("New() should reject an out-of-range port")
	}
}

func TestNew_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: 8900\nlog_level: warn\nsave_debounce_ms: 500\nheadless: true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	os.Setenv(EnvConfigFile, path)
	defer clearEnv(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 8900 {
		t.Errorf("Port() = %d, want 8900 from file", cfg.Port())
	}
	if cfg.LogLevel() != "warn" {
		t.Errorf("LogLevel() = %q, want warn from file", cfg.LogLevel())
	}
	if cfg.SaveDebounce() != 500*time.Millisecond {
		t.Errorf("SaveDebounce() = %v, want 500ms from file", cfg.SaveDebounce())
	}
	if !cfg.Headless() {
		t.Error("Headless() = false, want true from file")
	}
}

func TestNew_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("port: 8900\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	os.Setenv(EnvConfigFile, path)
	os.Setenv(EnvPort, "9001")
	defer clearEnv(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9001 {
		t.Errorf("Port() = %d, want env value 9001", cfg.Port())
	}
}

func TestNew_MissingConfigFileIgnored(t *testing.T) {
	clearEnv(t)
	os.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))
	defer clearEnv(t)

	if _, err := New(); err != nil {
		t.Errorf("missing config file should not be an error, got %v", err)
	}
}

func TestNew_MalformedConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("port: [broken\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	os.Setenv(EnvConfigFile, path)
	defer clearEnv(t)

	if _, err := New(); err == nil {
		t.Error("malformed config file should be an error")
	}
}
