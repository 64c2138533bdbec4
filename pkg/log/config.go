package log

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Config declaratively describes a logger, typically loaded from the main
// configuration file or flags.
type Config struct {
	Level    string   `json:"level"`     // debug, info, warn, error, fatal
	Format   string   `json:"format"`    // json or text
	Output   string   `json:"output"`    // console, file or null
	FilePath string   `json:"file_path"` // required when Output is file
	Redact   []string `json:"redact"`    // field keys replaced with [REDACTED]

	// Sampling drops repeats of identical messages: the first SampleInitial
	// occurrences pass, then one in every SampleThereafter. Zero disables it.
	SampleInitial    int `json:"sample_initial"`
	SampleThereafter int `json:"sample_thereafter"`
}

// ParseLevel converts a level name to a Level. The empty string means
// InfoLevel.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// ApplyConfig builds a logger from cfg. A nil cfg yields the default logger.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		return NewLogger(), nil
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		formatter = &JSONFormatter{}
	case "text":
		formatter = &TextFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var output Output
	switch strings.ToLower(cfg.Output) {
	case "", "console":
		output = NewConsoleOutput()
	case "file":
		if cfg.FilePath == "" {
			return nil, errors.New("file log output requires file_path")
		}
		fo, err := NewFileOutput(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		output = fo
	case "null":
		output = NullOutput{}
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}

	logger := NewLogger(WithLevel(level), WithFormatter(formatter), WithOutput(output))

	if len(cfg.Redact) > 0 || cfg.SampleThereafter > 0 {
		base := logger.(*BaseLogger)
		base.handler = base.handler.
			withRedactions(cfg.Redact).
			withSampler(cfg.SampleInitial, cfg.SampleThereafter)
		base.slogLogger = slog.New(base.handler)
	}
	return logger, nil
}
