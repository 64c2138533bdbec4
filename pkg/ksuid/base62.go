package ksuid

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// base62Alphabet is ordered by digit value. Because the order matches ASCII
// order, encoded strings compare the same way as the bytes they encode.
const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	// minEncoded and maxEncoded are the encodings of the all-zero and
	// all-0xFF 20-byte values. Every valid encoding sorts inside this
	// closed range.
	minEncoded = "000000000000000000000000000"
	maxEncoded = "aWgEPTl1tmebfsQzFP4bxwgy80V"
)

var (
	ErrStringSize       = errors.New("encoded id must be exactly 27 characters")
	ErrInvalidCharacter = errors.New("encoded id contains a character outside the base62 alphabet")
	ErrOutOfRange       = errors.New("encoded id is beyond the 20-byte maximum value")
)

var maxEncodedBytes = []byte(maxEncoded)

// base62Value maps an alphabet character to its digit value.
func base62Value(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'Z':
		return 10 + c - 'A', true
	case c >= 'a' && c <= 'z':
		return 36 + c - 'a', true
	}
	return 0, false
}

// encodeBase62 writes the 27-character base62 form of the 20 src bytes into
// dst. src is treated as an unsigned big-endian integer split into five
// 32-bit words. Each pass divides the remaining quotient by 62 and emits one
// digit, least significant first, so digits fill dst from the right; unfilled
// leading positions are padded with '0'.
//
// Each division step works on at most 38 bits (word + remainder*2^32), so no
// intermediate value exceeds a uint64.
func encodeBase62(dst []byte, src []byte) {
	words := [5]uint32{
		binary.BigEndian.Uint32(src[0:4]),
		binary.BigEndian.Uint32(src[4:8]),
		binary.BigEndian.Uint32(src[8:12]),
		binary.BigEndian.Uint32(src[12:16]),
		binary.BigEndian.Uint32(src[16:20]),
	}

	i := encodedLen
	for start := 0; start < len(words); {
		rem := uint64(0)
		for j := start; j < len(words); j++ {
			acc := rem<<32 | uint64(words[j])
			words[j] = uint32(acc / 62)
			rem = acc % 62
		}
		i--
		dst[i] = base62Alphabet[rem]
		// Leading zero words are settled and never divided again.
		for start < len(words) && words[start] == 0 {
			start++
		}
	}
	for i > 0 {
		i--
		dst[i] = '0'
	}
}

// decodeBase62 parses the 27-character base62 form in src into the 20 dst
// bytes, validating length, alphabet membership and numeric range. It is the
// inverse of encodeBase62: the 27 digits are repeatedly divided by 2^32,
// emitting one 32-bit word per pass from the right.
func decodeBase62(dst []byte, src []byte) error {
	if len(src) != encodedLen {
		return ErrStringSize
	}

	var digits [encodedLen]byte
	for j, c := range src {
		v, ok := base62Value(c)
		if !ok {
			return ErrInvalidCharacter
		}
		digits[j] = v
	}

	// 27 base62 digits can hold slightly more than 160 bits. Alphabet order
	// matches value order, so a lexicographic bound against the maximum
	// encoding rejects the excess before any division runs. The lower bound
	// needs no check: no alphabet string sorts below the all-'0' encoding.
	if bytes.Compare(src, maxEncodedBytes) > 0 {
		return ErrOutOfRange
	}

	i := rawLen
	for start := 0; start < len(digits); {
		rem := uint64(0)
		for j := start; j < len(digits); j++ {
			acc := rem*62 + uint64(digits[j])
			digits[j] = byte(acc >> 32)
			rem = acc & 0xFFFFFFFF
		}
		i -= 4
		binary.BigEndian.PutUint32(dst[i:], uint32(rem))
		for start < len(digits) && digits[start] == 0 {
			start++
		}
	}
	for i > 0 {
		i--
		dst[i] = 0
	}
	return nil
}
