// Package runtime wires storage, config, and the stream ledger into a
// single-node id service instance. It exposes Open/Close, basic health
// checks, and accessors used by the HTTP server and CLI.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	// Health
//	_ = rt.CheckHealth(context.Background())
//	// Mint from a durable stream
//	id, _ := rt.Ledger().Next("orders")
package runtime
