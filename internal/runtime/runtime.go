package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	cfgpkg "github.com/malbaugh/ksuid-ts/internal/config"
	"github.com/malbaugh/ksuid-ts/internal/ledger"
	pebblestore "github.com/malbaugh/ksuid-ts/internal/storage/pebble"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
}

// Runtime wires storage, config, and the stream ledger for a single-node
// instance.
type Runtime struct {
	db     *pebblestore.DB
	led    *ledger.Ledger
	config cfgpkg.Config
}

// Open initializes the underlying storage and ledger and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	mode, err := pebblestore.ParseFsyncMode(cfg.FsyncMode)
	if err != nil {
		return nil, err
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       cfg.DataDir,
		Fsync:         mode,
		FsyncInterval: time.Duration(cfg.FsyncIntervalMs) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	led, err := ledger.Open(db, ledger.Options{
		NamePattern: cfg.StreamNameRegex,
		MaxStreams:  cfg.MaxStreams,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &Runtime{db: db, led: led, config: cfg}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// Ledger returns the durable stream ledger.
func (r *Runtime) Ledger() *ledger.Ledger { return r.led }

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
