package serverrun

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	cfgpkg "github.com/malbaugh/ksuid-ts/internal/config"
	"github.com/malbaugh/ksuid-ts/internal/runtime"
	httpserver "github.com/malbaugh/ksuid-ts/internal/server/http"
	logpkg "github.com/malbaugh/ksuid-ts/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := func() string { return getenv(key) }(); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	DataDir  string
	HTTPAddr string
	Config   cfgpkg.Config
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context
	// or if signal delivery needs to be observed here. We layer a
	// local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := opts.Config
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.HTTPAddr != "" {
		cfg.HTTPAddr = opts.HTTPAddr
	}
	if cfg.DataDir == "" {
		cfg.DataDir = cfgpkg.DefaultDataDir()
	}
	storeCfg := cfg
	storeCfg.DataDir = filepath.Join(cfg.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{Config: storeCfg})
	if err != nil {
		return err
	}
	defer rt.Close()

	// Build process-wide logger using env/ApplyConfig; defaults: level=info, format=text
	logCfg := cfg.Log
	if logCfg.Level == "" {
		logCfg.Level = getenvDefault("KSUID_LOG_LEVEL", "info")
	}
	if logCfg.Format == "" {
		logCfg.Format = getenvDefault("KSUID_LOG_FORMAT", "text")
	}
	procLogger, err := logpkg.ApplyConfig(&logCfg)
	if err != nil {
		// Fallback to a sane default
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(logCfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	procLogger.Info("Starting ksuid server",
		logpkg.Str("http", cfg.HTTPAddr),
		logpkg.Str("data_dir", cfg.DataDir),
		logpkg.Str("fsync", cfg.FsyncMode),
		logpkg.Str("level", logCfg.Level),
		logpkg.Str("format", logCfg.Format),
	)

	hsrv := httpserver.New(rt, procLogger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, cfg.HTTPAddr); err != nil && sctx.Err() == nil {
			log.Printf("http error: %v", err)
		}
	}()

	<-sctx.Done()
	// Shut the server down before closing the runtime/DB to avoid races.
	hsrv.Close()
	wg.Wait()
	return nil
}
