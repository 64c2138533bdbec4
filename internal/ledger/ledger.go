// Package ledger persists named sequence streams on Pebble. A stream emits
// strictly increasing ids across process restarts: the advanced counter is
// committed before ids are handed out, and an exhausted range rotates to a
// fresh seed that sorts above everything already emitted.
package ledger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/malbaugh/ksuid-ts/internal/storage/pebble"
	"github.com/malbaugh/ksuid-ts/pkg/ksuid"
)

// rangeCap is the number of ids one seed can emit before rotation.
const rangeCap = 1 << 16

// DefaultNamePattern constrains stream names to a key-safe charset.
const DefaultNamePattern = `^[a-z0-9][a-z0-9._-]{0,63}$`

var (
	ErrStreamName     = errors.New("invalid stream name")
	ErrStreamNotFound = errors.New("stream not found")
	ErrStreamLimit    = errors.New("stream limit reached")
)

// Options configures a Ledger.
type Options struct {
	// NamePattern validates stream names; empty uses DefaultNamePattern.
	NamePattern string
	// MaxStreams caps how many streams may exist; 0 means no cap.
	MaxStreams int
}

// Ledger hands out ids from durable streams. All emissions are serialized
// through one mutex; the counter is persisted before ids are returned, so a
// crash can burn ids but never repeat one.
type Ledger struct {
	db         *pebblestore.DB
	namePat    *regexp.Regexp
	maxStreams int

	mu      sync.Mutex
	streams map[string]*stream
}

// stream is the in-memory state for one named stream. The seed always has
// its low 16 payload bits clear; count is the next counter to emit.
type stream struct {
	seed      ksuid.KSUID
	count     uint32
	rotations uint64
	createdAt time.Time
}

// streamRecord is the persisted form of a stream.
type streamRecord struct {
	Name        string `json:"name"`
	CreatedAtMs int64  `json:"createdAtMs"`
	Seed        string `json:"seed"`
	Count       uint32 `json:"count"`
	Rotations   uint64 `json:"rotations"`
}

// Open initializes a Ledger on the given store.
func Open(db *pebblestore.DB, opts Options) (*Ledger, error) {
	pat := opts.NamePattern
	if pat == "" {
		pat = DefaultNamePattern
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, fmt.Errorf("compile name pattern: %w", err)
	}
	return &Ledger{
		db:         db,
		namePat:    re,
		maxStreams: opts.MaxStreams,
		streams:    make(map[string]*stream),
	}, nil
}

// Next emits one id from the named stream, creating the stream on first use.
func (l *Ledger) Next(name string) (ksuid.KSUID, error) {
	ids, err := l.NextN(name, 1)
	if err != nil {
		return ksuid.Nil, err
	}
	return ids[0], nil
}

// NextN emits n strictly increasing ids from the named stream as one durable
// step. The advanced state is committed before the ids are returned; a batch
// may span a rotation boundary.
func (l *Ledger) NextN(name string, n int) ([]ksuid.KSUID, error) {
	if n <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", n)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.load(name)
	if errors.Is(err, ErrStreamNotFound) {
		st, err = l.create(name)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]ksuid.KSUID, 0, n)
	seed, count, rotations := st.seed, st.count, st.rotations
	for len(ids) < n {
		if count == rangeCap {
			seed, err = rotateSeed(seed)
			if err != nil {
				return nil, err
			}
			count = 0
			rotations++
		}
		id := seed
		// Low 16 payload bits carry the counter; layout matches ksuid.Sequence.
		binary.BigEndian.PutUint16(id[len(id)-2:], uint16(count))
		ids = append(ids, id)
		count++
	}

	next := *st
	next.seed, next.count, next.rotations = seed, count, rotations
	if err := l.persist(name, &next); err != nil {
		return nil, err
	}
	*st = next
	return ids, nil
}

// Bounds reports the named stream's current range: min is the last emitted
// id (the seed before any emission), max is the top of the current range.
func (l *Ledger) Bounds(name string) (min, max ksuid.KSUID, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.load(name)
	if err != nil {
		return ksuid.Nil, ksuid.Nil, err
	}
	min = st.seed
	if st.count > 0 {
		binary.BigEndian.PutUint16(min[len(min)-2:], uint16(st.count-1))
	}
	return min, rangeUpper(st.seed), nil
}

// StreamInfo is a snapshot of one stream's state.
type StreamInfo struct {
	Name      string
	Seed      ksuid.KSUID
	Count     uint32
	Rotations uint64
	CreatedAt time.Time
}

// Stream returns a snapshot of the named stream.
func (l *Ledger) Stream(name string) (StreamInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.load(name)
	if err != nil {
		return StreamInfo{}, err
	}
	return StreamInfo{
		Name:      name,
		Seed:      st.seed,
		Count:     st.count,
		Rotations: st.rotations,
		CreatedAt: st.createdAt,
	}, nil
}

// Streams lists all persisted stream names in lexicographic order.
func (l *Ledger) Streams() ([]string, error) {
	lo, hi := streamScanBounds()
	it, err := l.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var names []string
	for it.First(); it.Valid(); it.Next() {
		if name, ok := streamNameFromKey(it.Key()); ok {
			names = append(names, name)
		}
	}
	return names, it.Error()
}

// load returns the cached or persisted stream state. Callers hold l.mu.
func (l *Ledger) load(name string) (*stream, error) {
	if st, ok := l.streams[name]; ok {
		return st, nil
	}
	b, err := l.db.Get(keyStreamState(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrStreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load stream %q: %w", name, err)
	}
	st, err := decodeStream(name, b)
	if err != nil {
		return nil, err
	}
	l.streams[name] = st
	return st, nil
}

// create builds fresh in-memory state for a new stream; the first emission
// persists it. Callers hold l.mu.
func (l *Ledger) create(name string) (*stream, error) {
	if !l.namePat.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrStreamName, name)
	}
	if l.maxStreams > 0 {
		names, err := l.Streams()
		if err != nil {
			return nil, err
		}
		if len(names) >= l.maxStreams {
			return nil, ErrStreamLimit
		}
	}
	fresh, err := ksuid.New()
	if err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint16(fresh[len(fresh)-2:], 0)
	st := &stream{seed: fresh, createdAt: time.Now()}
	l.streams[name] = st
	return st, nil
}

func (l *Ledger) persist(name string, st *stream) error {
	b, err := json.Marshal(streamRecord{
		Name:        name,
		CreatedAtMs: st.createdAt.UnixMilli(),
		Seed:        st.seed.String(),
		Count:       st.count,
		Rotations:   st.rotations,
	})
	if err != nil {
		return err
	}
	if err := l.db.Set(keyStreamState(name), b); err != nil {
		return fmt.Errorf("persist stream %q: %w", name, err)
	}
	return nil
}

func decodeStream(name string, b []byte) (*stream, error) {
	var rec streamRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode stream %q state: %w", name, err)
	}
	seed, err := ksuid.Parse(rec.Seed)
	if err != nil {
		return nil, fmt.Errorf("decode stream %q seed: %w", name, err)
	}
	if binary.BigEndian.Uint16(seed[len(seed)-2:]) != 0 {
		return nil, fmt.Errorf("stream %q seed carries a counter", name)
	}
	if rec.Count > rangeCap {
		return nil, fmt.Errorf("stream %q counter out of range", name)
	}
	return &stream{
		seed:      seed,
		count:     rec.Count,
		rotations: rec.Rotations,
		createdAt: time.UnixMilli(rec.CreatedAtMs),
	}, nil
}

// rotateSeed picks the seed for the range after prev's. A fresh random seed
// is used when it sorts above prev's whole range; otherwise (clock behind
// the previous seed's wall time) the range continues at upper.Next().
func rotateSeed(prev ksuid.KSUID) (ksuid.KSUID, error) {
	upper := rangeUpper(prev)
	fresh, err := ksuid.New()
	if err != nil {
		return ksuid.Nil, err
	}
	binary.BigEndian.PutUint16(fresh[len(fresh)-2:], 0)
	if fresh.Compare(upper) > 0 {
		return fresh, nil
	}
	next := upper.Next()
	if next == ksuid.Nil {
		return ksuid.Nil, errors.New("id space exhausted")
	}
	return next, nil
}

// rangeUpper returns the top of the range rooted at seed.
func rangeUpper(seed ksuid.KSUID) ksuid.KSUID {
	u := seed
	u[len(u)-2], u[len(u)-1] = 0xFF, 0xFF
	return u
}
