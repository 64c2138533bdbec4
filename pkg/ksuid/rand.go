package ksuid

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// rander is the source of payload bytes. It defaults to crypto/rand and is
// replaced wholesale by SetRand; individual reads are not synchronized here,
// the reader itself must be safe for concurrent use.
var rander io.Reader = rand.Reader

// SetRand replaces the random source used by New and NewWithTime. Passing
// nil restores crypto/rand. Intended for program setup and tests, not for
// concurrent reconfiguration.
func SetRand(r io.Reader) {
	if r == nil {
		rander = rand.Reader
		return
	}
	rander = r
}

func readRandomPayload(dst []byte) error {
	if _, err := io.ReadFull(rander, dst); err != nil {
		return fmt.Errorf("read random payload: %w", err)
	}
	return nil
}

// FastRander generates payloads from a ChaCha20 keystream keyed once from
// crypto/rand. It is faster than the OS source and safe for concurrent use,
// but its output is not suitable where ids must be unpredictable. Install
// with SetRand(FastRander).
var FastRander = newFastRander()

type fastRander struct {
	mu sync.Mutex
	c  *chacha20.Cipher
}

func newFastRander() io.Reader {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return rand.Reader
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return rand.Reader
	}
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return rand.Reader
	}
	return &fastRander{c: c}
}

func (r *fastRander) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(p)
	r.c.XORKeyStream(p, p)
	return len(p), nil
}
