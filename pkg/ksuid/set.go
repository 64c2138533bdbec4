package ksuid

import (
	"encoding/binary"
	"errors"
	"strings"
)

// ErrCorruptedSet is reported by CompressedSetIter.Err when the underlying
// buffer is truncated or was not produced by Compress.
var ErrCorruptedSet = errors.New("compressed id set is corrupted")

// CompressedSet is a compact binary encoding of a set of identifiers. The
// ids are stored sorted and deduplicated: the first one raw, each following
// one as a varint timestamp delta followed by either a varint payload delta
// (timestamp unchanged) or the raw 16-byte payload (timestamp advanced).
// Sets of ids minted close together, sequence runs in particular, compress
// to a few bytes per id.
type CompressedSet []byte

// Compress encodes ids into a new CompressedSet. The input slice is not
// modified; ids are sorted and deduplicated on a copy.
func Compress(ids ...KSUID) CompressedSet {
	if len(ids) == 0 {
		return nil
	}

	sorted := make([]KSUID, len(ids))
	copy(sorted, ids)
	Sort(sorted)

	set := make([]byte, 0, len(ids)*rawLen)
	prev := sorted[0]
	set = append(set, prev[:]...)

	for _, id := range sorted[1:] {
		if id == prev {
			continue
		}
		delta := uint64(id.Timestamp() - prev.Timestamp())
		set = binary.AppendUvarint(set, delta)
		if delta == 0 {
			set = appendUvarint128(set, uint128Payload(id).sub(uint128Payload(prev)))
		} else {
			set = append(set, id[timestampLen:]...)
		}
		prev = id
	}
	return set
}

// Iter returns an iterator over the ids in the set, in ascending order:
//
//	it := set.Iter()
//	for it.Next() {
//		use(it.KSUID)
//	}
//	if err := it.Err(); err != nil { ... }
func (set CompressedSet) Iter() *CompressedSetIter {
	return &CompressedSetIter{content: set}
}

// String renders the decoded ids, for logs and debugging.
func (set CompressedSet) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for it, n := set.Iter(), 0; it.Next(); n++ {
		if n > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(it.KSUID.String())
	}
	b.WriteByte(']')
	return b.String()
}

// CompressedSetIter decodes a CompressedSet one identifier at a time.
type CompressedSetIter struct {
	// KSUID is the identifier decoded by the latest successful Next call.
	KSUID KSUID

	content []byte
	offset  int
	err     error

	timestamp uint32
	payload   uint128
}

// Next decodes the next identifier into it.KSUID. It returns false when the
// set is exhausted or corrupted; Err distinguishes the two.
func (it *CompressedSetIter) Next() bool {
	if it.err != nil || it.offset >= len(it.content) {
		return false
	}

	if it.offset == 0 {
		if len(it.content) < rawLen {
			return it.fail()
		}
		id, _ := FromBytes(it.content[:rawLen])
		it.offset = rawLen
		it.timestamp = id.Timestamp()
		it.payload = uint128Payload(id)
		it.KSUID = id
		return true
	}

	delta, n := binary.Uvarint(it.content[it.offset:])
	if n <= 0 || delta > (1<<32)-1 {
		return it.fail()
	}
	it.offset += n

	if delta == 0 {
		pd, n := uvarint128(it.content[it.offset:])
		if n <= 0 {
			return it.fail()
		}
		it.offset += n
		it.payload = it.payload.add(pd)
	} else {
		if it.offset+payloadLen > len(it.content) {
			return it.fail()
		}
		it.timestamp += uint32(delta)
		it.payload = makeUint128(
			binary.BigEndian.Uint64(it.content[it.offset:]),
			binary.BigEndian.Uint64(it.content[it.offset+8:]),
		)
		it.offset += payloadLen
	}

	it.KSUID = makeKSUID(it.timestamp, it.payload)
	return true
}

// Err returns the first decoding error encountered, if any.
func (it *CompressedSetIter) Err() error {
	return it.err
}

func (it *CompressedSetIter) fail() bool {
	it.err = ErrCorruptedSet
	return false
}

// appendUvarint128 writes v in base-128 varint form, 7 bits per byte, least
// significant group first. Values fit in at most 19 bytes.
func appendUvarint128(b []byte, v uint128) []byte {
	for v.hi != 0 || v.lo > 0x7F {
		b = append(b, byte(v.lo)|0x80)
		v = v.shr(7)
	}
	return append(b, byte(v.lo))
}

// uvarint128 decodes a base-128 varint into a uint128, returning the value
// and the number of bytes consumed. It returns n == 0 when b is truncated
// or the varint exceeds 19 bytes.
func uvarint128(b []byte) (uint128, int) {
	var v uint128
	for j, c := range b {
		if j == 19 {
			return zero128, 0
		}
		v = v.or(makeUint128(0, uint64(c&0x7F)).shl(uint(7 * j)))
		if c < 0x80 {
			return v, j + 1
		}
	}
	return zero128, 0
}
