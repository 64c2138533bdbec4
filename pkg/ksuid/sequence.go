package ksuid

import (
	"encoding/binary"
	"errors"
)

// seqCapacity is the number of identifiers one seed can yield: counters 0
// through 65535 inclusive.
const seqCapacity = 1 << 16

// ErrSequenceExhausted is returned by Sequence.Next once all 65536 counter
// values of the seed have been emitted. The state is permanent; a fresh
// Sequence with a fresh seed is required to continue.
var ErrSequenceExhausted = errors.New("sequence exhausted its 65536-id capacity")

// Sequence emits up to 65536 strictly increasing identifiers derived from a
// single seed. Every emitted id shares the seed's timestamp and the high 112
// bits of its payload; only the low 16 bits vary, carrying the counter.
//
// A Sequence is a single-owner state machine and performs no internal
// locking. Independent producers should each construct their own.
type Sequence struct {
	seed  KSUID
	count uint32
}

// NewSequence returns a Sequence over seed. The low 16 bits of the seed's
// payload belong to the counter and are cleared, so the first emitted id is
// the seed with counter 0.
func NewSequence(seed KSUID) *Sequence {
	seed[rawLen-2] = 0
	seed[rawLen-1] = 0
	return &Sequence{seed: seed}
}

// Next returns the next identifier in the sequence, or ErrSequenceExhausted
// once the counter range is spent.
func (s *Sequence) Next() (KSUID, error) {
	if s.count == seqCapacity {
		return Nil, ErrSequenceExhausted
	}
	id := s.seed
	binary.BigEndian.PutUint16(id[rawLen-2:], uint16(s.count))
	s.count++
	return id, nil
}

// Bounds reports the observed lower bound, the most recently emitted id or
// the seed itself before the first emission, and the fixed upper bound, the
// seed with counter 0xFFFF. The upper bound does not depend on how many ids
// remain.
func (s *Sequence) Bounds() (min, max KSUID) {
	min = s.seed
	if s.count > 0 {
		binary.BigEndian.PutUint16(min[rawLen-2:], uint16(s.count-1))
	}
	max = s.seed
	max[rawLen-2] = 0xFF
	max[rawLen-1] = 0xFF
	return min, max
}
