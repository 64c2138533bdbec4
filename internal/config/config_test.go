package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("default http addr")
	}
	if cfg.FsyncMode != "interval" || cfg.FsyncIntervalMs != 5 {
		t.Fatalf("default fsync policy")
	}
	if cfg.MaxBatch != 1000 {
		t.Fatalf("default max batch")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Fatalf("default log config")
	}
	if cfg.DataDir == "" {
		t.Fatalf("default data dir should not be empty")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ksuid.json")
	data := []byte(`{"httpAddr":":9191","fsyncMode":"always","maxStreams":4,"log":{"level":"debug","format":"text"}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9191" {
		t.Fatalf("expected :9191")
	}
	if cfg.FsyncMode != "always" {
		t.Fatalf("expected always")
	}
	if cfg.MaxStreams != 4 {
		t.Fatalf("expected 4")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Fatalf("nested log config not loaded")
	}
	// Fields absent from the file keep their defaults.
	if cfg.MaxBatch != 1000 {
		t.Fatalf("expected default max batch")
	}
}

func TestLoadYAMLRejected(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ksuid.yaml")
	if err := os.WriteFile(file, []byte("httpAddr: :9191"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected yaml rejection")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("KSUID_HTTP_ADDR", ":7070")
	os.Setenv("KSUID_FSYNC_MODE", "never")
	os.Setenv("KSUID_MAX_STREAMS", "16")
	os.Setenv("KSUID_LOG_LEVEL", "warn")
	t.Cleanup(func() {
		os.Unsetenv("KSUID_HTTP_ADDR")
		os.Unsetenv("KSUID_FSYNC_MODE")
		os.Unsetenv("KSUID_MAX_STREAMS")
		os.Unsetenv("KSUID_LOG_LEVEL")
	})
	FromEnv(&cfg)
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("env override addr")
	}
	if cfg.FsyncMode != "never" {
		t.Fatalf("env override fsync")
	}
	if cfg.MaxStreams != 16 {
		t.Fatalf("env override max streams")
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("env override log level")
	}
}
