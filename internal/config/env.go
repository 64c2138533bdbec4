package config

import (
	"os"
	"strconv"
)

// FromEnv overlays KSUID_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("KSUID_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("KSUID_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("KSUID_FSYNC_MODE"); v != "" {
		cfg.FsyncMode = v
	}
	if v := os.Getenv("KSUID_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FsyncIntervalMs = n
		}
	}
	if v := os.Getenv("KSUID_STREAM_NAME_REGEX"); v != "" {
		cfg.StreamNameRegex = v
	}
	if v := os.Getenv("KSUID_MAX_STREAMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxStreams = n
		}
	}
	if v := os.Getenv("KSUID_MAX_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxBatch = n
		}
	}
	if v := os.Getenv("KSUID_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("KSUID_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
