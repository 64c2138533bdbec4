// Package client provides the `ksuid` command-line client.
//
// The CLI mints and decodes identifiers locally and talks to the ksuid HTTP
// endpoint for durable stream operations. It is primarily intended for
// developers and operators.
//
// Installation
//
//	go install github.com/malbaugh/ksuid-ts/cmd/ksuid@latest
//
// Or build from this repo and use the embedded `ksuid` binary.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:8080 and can be overridden with the
// KSUID_HTTP environment variable.
//
// Usage
//
//	ksuid generate
//	ksuid generate -n 10
//	ksuid generate -f inspect
//	ksuid generate -f raw > id.bin
//	ksuid generate -f template -t '{{.Time}} {{.String}}'
//
//	ksuid inspect 0ujtsYcgvSTl8PAuAdqWYSMnLOv
//
//	# Ordered ids sharing one seed (in-process, nothing persisted)
//	ksuid seq -n 5
//	ksuid seq --seed 0ujtsYcgvSTl8PAuAdqWYSMnLOv -n 5
//	ksuid seq bounds --seed 0ujtsYcgvSTl8PAuAdqWYSMnLOv
//
//	# Compressed sets over stdio
//	ksuid generate -n 100 | ksuid set pack > ids.b64
//	ksuid set unpack < ids.b64
//
//	# Durable streams served by `ksuid server start`
//	ksuid stream next --name orders -n 3
//	ksuid stream bounds --name orders
//	ksuid stream list
//
//	# Same operations against a stopped server's data directory
//	ksuid stream next --name orders --data-dir /var/lib/ksuid
//
// Notes
//
//   - generate and seq never contact a server; stream subcommands use the
//     HTTP API unless --data-dir is given.
//   - set pack sorts and deduplicates its input, so unpack yields ascending
//     order regardless of the order ids were piped in.
//   - --data-dir opens the store exclusively and fails while a server holds
//     the same directory.
package client
