package ksuid

import (
	"bytes"
	"database/sql/driver"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	// epochOffset anchors the 32-bit timestamp field at 2014-05-13T16:53:20Z.
	epochOffset int64 = 1400000000

	timestampLen = 4
	payloadLen   = 16
	rawLen       = timestampLen + payloadLen
	encodedLen   = 27
)

var (
	ErrSize        = errors.New("id must be exactly 20 bytes")
	ErrPayloadSize = errors.New("payload must be exactly 16 bytes")
)

// KSUID is an immutable 20-byte identifier: a big-endian 32-bit timestamp
// followed by a 16-byte random payload. The zero value is Nil.
type KSUID [rawLen]byte

var (
	// Nil is the all-zero identifier. It sorts before every other id.
	Nil KSUID

	// Max is the all-0xFF identifier. It sorts after every other id.
	Max = KSUID{
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	}
)

// New returns an identifier carrying the current time and a fresh random
// payload. It fails only when the random source does.
func New() (KSUID, error) {
	return NewWithTime(time.Now())
}

// MustNew is New for call sites where a random-source failure is fatal.
func MustNew() KSUID {
	id, err := New()
	if err != nil {
		panic(err)
	}
	return id
}

// NewWithTime returns an identifier carrying the given time and a fresh
// random payload.
func NewWithTime(t time.Time) (KSUID, error) {
	var id KSUID
	binary.BigEndian.PutUint32(id[:timestampLen], timestampFromTime(t))
	if err := readRandomPayload(id[timestampLen:]); err != nil {
		return Nil, err
	}
	return id, nil
}

// FromParts assembles an identifier from an explicit time and a 16-byte
// payload.
func FromParts(t time.Time, payload []byte) (KSUID, error) {
	if len(payload) != payloadLen {
		return Nil, ErrPayloadSize
	}
	var id KSUID
	binary.BigEndian.PutUint32(id[:timestampLen], timestampFromTime(t))
	copy(id[timestampLen:], payload)
	return id, nil
}

// FromBytes decodes a raw 20-byte representation.
func FromBytes(b []byte) (KSUID, error) {
	if len(b) != rawLen {
		return Nil, ErrSize
	}
	var id KSUID
	copy(id[:], b)
	return id, nil
}

// Parse decodes the 27-character base62 text form. It rejects input of the
// wrong length, characters outside the alphabet, and values beyond Max.
func Parse(s string) (KSUID, error) {
	if len(s) != encodedLen {
		return Nil, ErrStringSize
	}
	var src [encodedLen]byte
	copy(src[:], s)
	var id KSUID
	if err := decodeBase62(id[:], src[:]); err != nil {
		return Nil, err
	}
	return id, nil
}

// ParseOrNil is Parse with a sentinel instead of an error: invalid input
// yields Nil.
func ParseOrNil(s string) KSUID {
	id, err := Parse(s)
	if err != nil {
		return Nil
	}
	return id
}

// Timestamp returns the raw 32-bit timestamp, in seconds since the custom
// epoch.
func (i KSUID) Timestamp() uint32 {
	return binary.BigEndian.Uint32(i[:timestampLen])
}

// Time returns the creation time recorded in the identifier.
func (i KSUID) Time() time.Time {
	return time.Unix(int64(i.Timestamp())+epochOffset, 0)
}

// Payload returns a copy of the 16-byte random portion.
func (i KSUID) Payload() []byte {
	b := make([]byte, payloadLen)
	copy(b, i[timestampLen:])
	return b
}

// Bytes returns a copy of the raw 20-byte representation.
func (i KSUID) Bytes() []byte {
	b := make([]byte, rawLen)
	copy(b, i[:])
	return b
}

// String returns the 27-character base62 text form.
func (i KSUID) String() string {
	var dst [encodedLen]byte
	encodeBase62(dst[:], i[:])
	return string(dst[:])
}

// IsNil reports whether the identifier is the all-zero value.
func (i KSUID) IsNil() bool {
	return i == Nil
}

// Compare returns -1, 0 or 1 ordering by the full 20 bytes, timestamp first.
func (i KSUID) Compare(other KSUID) int {
	return bytes.Compare(i[:], other[:])
}

// Equal reports whether two identifiers hold the same 20 bytes.
func (i KSUID) Equal(other KSUID) bool {
	return i == other
}

// Next returns the smallest identifier greater than i. A payload wrap
// carries into the timestamp, so the result is strictly greater for every
// id except Max, which wraps to Nil.
func (i KSUID) Next() KSUID {
	t := i.Timestamp()
	u := uint128Payload(i).incr()
	if u == zero128 {
		t++
	}
	return makeKSUID(t, u)
}

// Prev returns the largest identifier smaller than i. A payload underflow
// borrows from the timestamp, so the result is strictly smaller for every
// id except Nil, which wraps to Max.
func (i KSUID) Prev() KSUID {
	t := i.Timestamp()
	u := uint128Payload(i).decr()
	if u == max128 {
		t--
	}
	return makeKSUID(t, u)
}

// Sort orders ids in place, oldest first.
func Sort(ids []KSUID) {
	slices.SortFunc(ids, KSUID.Compare)
}

// IsSorted reports whether ids are already in ascending order.
func IsSorted(ids []KSUID) bool {
	return slices.IsSortedFunc(ids, KSUID.Compare)
}

// MarshalText implements encoding.TextMarshaler. encoding/json picks this up
// as well, so identifiers marshal as base62 JSON strings.
func (i KSUID) MarshalText() ([]byte, error) {
	dst := make([]byte, encodedLen)
	encodeBase62(dst, i[:])
	return dst, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *KSUID) UnmarshalText(b []byte) error {
	var id KSUID
	if err := decodeBase62(id[:], b); err != nil {
		return err
	}
	*i = id
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (i KSUID) MarshalBinary() ([]byte, error) {
	return i.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (i *KSUID) UnmarshalBinary(b []byte) error {
	id, err := FromBytes(b)
	if err != nil {
		return err
	}
	*i = id
	return nil
}

// Scan implements sql.Scanner. It accepts the text form, the raw 20-byte
// form, and NULL, which scans as Nil.
func (i *KSUID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = Nil
		return nil
	case string:
		id, err := Parse(v)
		if err != nil {
			return err
		}
		*i = id
		return nil
	case []byte:
		if len(v) == rawLen {
			return i.UnmarshalBinary(v)
		}
		return i.UnmarshalText(v)
	}
	return fmt.Errorf("scan id: unsupported source type %T", src)
}

// Value implements driver.Valuer, storing the text form so database order
// matches id order.
func (i KSUID) Value() (driver.Value, error) {
	return i.String(), nil
}

// makeKSUID assembles an identifier from a raw timestamp and payload.
func makeKSUID(timestamp uint32, payload uint128) KSUID {
	var id KSUID
	binary.BigEndian.PutUint32(id[:timestampLen], timestamp)
	binary.BigEndian.PutUint64(id[timestampLen:timestampLen+8], payload.hi)
	binary.BigEndian.PutUint64(id[timestampLen+8:], payload.lo)
	return id
}

func timestampFromTime(t time.Time) uint32 {
	return uint32(t.Unix() - epochOffset)
}
