package ksuid

import (
	"cmp"
	"encoding/binary"
	"math/bits"
)

// uint128 is the identifier payload viewed as an unsigned 128-bit integer,
// split into two 64-bit halves. All arithmetic wraps silently within 128
// bits; callers decide whether a wrap must carry into the timestamp.
type uint128 struct {
	hi uint64
	lo uint64
}

var (
	zero128 = uint128{}
	one128  = uint128{lo: 1}
	max128  = uint128{hi: ^uint64(0), lo: ^uint64(0)}
)

func makeUint128(hi, lo uint64) uint128 { return uint128{hi: hi, lo: lo} }

// uint128Payload reads bytes 4..19 of id as a big-endian uint128.
func uint128Payload(id KSUID) uint128 {
	return uint128{
		hi: binary.BigEndian.Uint64(id[timestampLen : timestampLen+8]),
		lo: binary.BigEndian.Uint64(id[timestampLen+8:]),
	}
}

// bytes returns the big-endian 16-byte representation.
func (v uint128) bytes() [payloadLen]byte {
	var b [payloadLen]byte
	binary.BigEndian.PutUint64(b[:8], v.hi)
	binary.BigEndian.PutUint64(b[8:], v.lo)
	return b
}

func (v uint128) add(w uint128) uint128 {
	lo, carry := bits.Add64(v.lo, w.lo, 0)
	hi, _ := bits.Add64(v.hi, w.hi, carry)
	return uint128{hi: hi, lo: lo}
}

func (v uint128) sub(w uint128) uint128 {
	lo, borrow := bits.Sub64(v.lo, w.lo, 0)
	hi, _ := bits.Sub64(v.hi, w.hi, borrow)
	return uint128{hi: hi, lo: lo}
}

func (v uint128) incr() uint128 { return v.add(one128) }

func (v uint128) decr() uint128 { return v.sub(one128) }

// cmp compares most-significant half first.
func (v uint128) cmp(w uint128) int {
	if c := cmp.Compare(v.hi, w.hi); c != 0 {
		return c
	}
	return cmp.Compare(v.lo, w.lo)
}

// shl shifts left by n bits. Shifts of 128 or more yield zero.
func (v uint128) shl(n uint) uint128 {
	if n >= 64 {
		return uint128{hi: v.lo << (n - 64)}
	}
	return uint128{hi: v.hi<<n | v.lo>>(64-n), lo: v.lo << n}
}

// shr shifts right by n bits. Shifts of 128 or more yield zero.
func (v uint128) shr(n uint) uint128 {
	if n >= 64 {
		return uint128{lo: v.hi >> (n - 64)}
	}
	return uint128{hi: v.hi >> n, lo: v.lo>>n | v.hi<<(64-n)}
}

func (v uint128) or(w uint128) uint128 {
	return uint128{hi: v.hi | w.hi, lo: v.lo | w.lo}
}
