package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/malbaugh/ksuid-ts/pkg/log"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	DataDir         string `json:"dataDir"`
	HTTPAddr        string `json:"httpAddr"`
	FsyncMode       string `json:"fsyncMode"`
	FsyncIntervalMs int    `json:"fsyncIntervalMs"`
	// StreamNameRegex validates ledger stream names; empty uses the
	// ledger's built-in pattern.
	StreamNameRegex string `json:"streamNameRegex"`
	// MaxStreams caps how many ledger streams may exist; 0 means no cap.
	MaxStreams int `json:"maxStreams"`
	// MaxBatch bounds how many ids one request or command may mint.
	MaxBatch int        `json:"maxBatch"`
	Log      log.Config `json:"log"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DataDir:         DefaultDataDir(),
		HTTPAddr:        ":8080",
		FsyncMode:       "interval",
		FsyncIntervalMs: 5,
		MaxBatch:        1000,
		Log: log.Config{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
	}
}

// Load reads configuration from a JSON file. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported; use JSON")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
