package ledger

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pebblestore "github.com/malbaugh/ksuid-ts/internal/storage/pebble"
	"github.com/malbaugh/ksuid-ts/pkg/ksuid"
)

func openLedgerAt(t *testing.T, dir string, opts Options) (*Ledger, *pebblestore.DB, func()) {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	led, err := Open(db, opts)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	return led, db, func() { _ = db.Close() }
}

func writeStreamRecord(t *testing.T, db *pebblestore.DB, name string, seed ksuid.KSUID, count uint32) {
	t.Helper()
	b, err := json.Marshal(streamRecord{
		Name:        name,
		CreatedAtMs: time.Now().UnixMilli(),
		Seed:        seed.String(),
		Count:       count,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := db.Set(keyStreamState(name), b); err != nil {
		t.Fatalf("set: %v", err)
	}
}

func counterOf(id ksuid.KSUID) uint16 {
	return binary.BigEndian.Uint16(id[len(id)-2:])
}

func TestNextPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	led, _, closeDB := openLedgerAt(t, dir, Options{})
	a, err := led.Next("orders")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	b, err := led.Next("orders")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if a.Compare(b) >= 0 {
		t.Fatalf("ids not increasing: %s then %s", a, b)
	}
	if counterOf(a) != 0 || counterOf(b) != 1 {
		t.Fatalf("counters = %d, %d", counterOf(a), counterOf(b))
	}
	closeDB()

	led, _, closeDB = openLedgerAt(t, dir, Options{})
	defer closeDB()
	c, err := led.Next("orders")
	if err != nil {
		t.Fatalf("next after reopen: %v", err)
	}
	if b.Compare(c) >= 0 {
		t.Fatalf("reopen regressed: %s then %s", b, c)
	}
	if counterOf(c) != 2 {
		t.Fatalf("counter after reopen = %d", counterOf(c))
	}
	if !bytes.Equal(b[:18], c[:18]) {
		t.Fatalf("seed changed across reopen")
	}
}

func TestNextNBatch(t *testing.T) {
	led, _, closeDB := openLedgerAt(t, t.TempDir(), Options{})
	defer closeDB()

	ids, err := led.NextN("batch", 5)
	if err != nil {
		t.Fatalf("nextn: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("got %d ids", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1].Compare(ids[i]) >= 0 {
			t.Fatalf("ids[%d] >= ids[%d]", i-1, i)
		}
	}
	info, err := led.Stream("batch")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if info.Count != 5 {
		t.Fatalf("count = %d", info.Count)
	}

	if _, err := led.NextN("batch", 0); err == nil {
		t.Fatalf("expected error for zero count")
	}
}

func TestRotationKeepsOrder(t *testing.T) {
	led, _, closeDB := openLedgerAt(t, t.TempDir(), Options{})
	defer closeDB()

	first, err := led.NextN("hot", rangeCap)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	last := first[len(first)-1]
	if counterOf(last) != rangeCap-1 {
		t.Fatalf("last counter = %d", counterOf(last))
	}

	after, err := led.NextN("hot", 2)
	if err != nil {
		t.Fatalf("post-rotation: %v", err)
	}
	if last.Compare(after[0]) >= 0 || after[0].Compare(after[1]) >= 0 {
		t.Fatalf("rotation broke ordering: %s, %s, %s", last, after[0], after[1])
	}
	if counterOf(after[0]) != 0 {
		t.Fatalf("post-rotation counter = %d", counterOf(after[0]))
	}
	info, err := led.Stream("hot")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if info.Rotations != 1 {
		t.Fatalf("rotations = %d", info.Rotations)
	}
}

func TestRotationPinsPastClockRegression(t *testing.T) {
	dir := t.TempDir()
	led, db, closeDB := openLedgerAt(t, dir, Options{})
	defer closeDB()

	// Seed far in the future so a fresh random seed cannot sort above it.
	future, err := ksuid.FromParts(time.Now().Add(50*365*24*time.Hour), make([]byte, 16))
	if err != nil {
		t.Fatalf("fromparts: %v", err)
	}
	writeStreamRecord(t, db, "pinned", future, rangeCap)

	upper := rangeUpper(future)
	ids, err := led.NextN("pinned", 2)
	if err != nil {
		t.Fatalf("nextn: %v", err)
	}
	if upper.Compare(ids[0]) >= 0 {
		t.Fatalf("rotation regressed below %s: %s", upper, ids[0])
	}
	if ids[0] != upper.Next() {
		t.Fatalf("expected continuation at %s, got %s", upper.Next(), ids[0])
	}
	if ids[0].Compare(ids[1]) >= 0 {
		t.Fatalf("ids not increasing: %s then %s", ids[0], ids[1])
	}
}

func TestRotationAtTopOfIDSpace(t *testing.T) {
	led, db, closeDB := openLedgerAt(t, t.TempDir(), Options{})
	defer closeDB()

	seed := ksuid.Max
	binary.BigEndian.PutUint16(seed[len(seed)-2:], 0)
	writeStreamRecord(t, db, "top", seed, rangeCap)

	if _, err := led.Next("top"); err == nil {
		t.Fatalf("expected id space exhaustion")
	}
}

func TestStreamNameValidation(t *testing.T) {
	led, _, closeDB := openLedgerAt(t, t.TempDir(), Options{})
	defer closeDB()

	for _, name := range []string{"", "Bad", "has space", "a/b", "-lead"} {
		if _, err := led.Next(name); !errors.Is(err, ErrStreamName) {
			t.Fatalf("name %q: expected ErrStreamName, got %v", name, err)
		}
	}
	if _, err := led.Next("ok-name_1.2"); err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}
}

func TestStreamNotFound(t *testing.T) {
	led, _, closeDB := openLedgerAt(t, t.TempDir(), Options{})
	defer closeDB()

	if _, _, err := led.Bounds("ghost"); !errors.Is(err, ErrStreamNotFound) {
		t.Fatalf("expected ErrStreamNotFound, got %v", err)
	}
	if _, err := led.Stream("ghost"); !errors.Is(err, ErrStreamNotFound) {
		t.Fatalf("expected ErrStreamNotFound, got %v", err)
	}
}

func TestStreamLimit(t *testing.T) {
	led, _, closeDB := openLedgerAt(t, t.TempDir(), Options{MaxStreams: 1})
	defer closeDB()

	if _, err := led.Next("one"); err != nil {
		t.Fatalf("first stream: %v", err)
	}
	if _, err := led.Next("two"); !errors.Is(err, ErrStreamLimit) {
		t.Fatalf("expected ErrStreamLimit, got %v", err)
	}
	// Existing streams keep working at the cap.
	if _, err := led.Next("one"); err != nil {
		t.Fatalf("existing stream at cap: %v", err)
	}
}

func TestStreamsListing(t *testing.T) {
	led, _, closeDB := openLedgerAt(t, t.TempDir(), Options{})
	defer closeDB()

	for _, name := range []string{"bravo", "alpha", "charlie"} {
		if _, err := led.Next(name); err != nil {
			t.Fatalf("next %q: %v", name, err)
		}
	}
	names, err := led.Streams()
	if err != nil {
		t.Fatalf("streams: %v", err)
	}
	want := []string{"alpha", "bravo", "charlie"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v", names)
		}
	}
}

func TestBounds(t *testing.T) {
	led, _, closeDB := openLedgerAt(t, t.TempDir(), Options{})
	defer closeDB()

	first, err := led.Next("b")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	min, max, err := led.Bounds("b")
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if min != first {
		t.Fatalf("min = %s, want %s", min, first)
	}
	if counterOf(max) != 0xFFFF {
		t.Fatalf("max counter = %d", counterOf(max))
	}
	if !bytes.Equal(min[:18], max[:18]) {
		t.Fatalf("bounds disagree on seed")
	}

	ids, err := led.NextN("b", 3)
	if err != nil {
		t.Fatalf("nextn: %v", err)
	}
	min, _, err = led.Bounds("b")
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if min != ids[2] {
		t.Fatalf("min = %s, want last emitted %s", min, ids[2])
	}
}

func TestCorruptStateRejected(t *testing.T) {
	led, db, closeDB := openLedgerAt(t, t.TempDir(), Options{})
	defer closeDB()

	if err := db.Set(keyStreamState("broken"), []byte("not json")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := led.Next("broken"); err == nil {
		t.Fatalf("expected decode error")
	}

	// A seed with a counter baked in means some writer misbehaved; refuse it.
	bad, err := ksuid.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	binary.BigEndian.PutUint16(bad[len(bad)-2:], 7)
	writeStreamRecord(t, db, "misaligned", bad, 1)
	if _, err := led.Next("misaligned"); err == nil {
		t.Fatalf("expected misaligned seed rejection")
	}
}

func TestStreamKeys(t *testing.T) {
	k := keyStreamState("orders")
	name, ok := streamNameFromKey(k)
	if !ok || name != "orders" {
		t.Fatalf("round trip = %q, %v", name, ok)
	}
	if _, ok := streamNameFromKey([]byte("other/key")); ok {
		t.Fatalf("foreign key accepted")
	}

	lo, hi := streamScanBounds()
	if bytes.Compare(lo, k) > 0 || bytes.Compare(k, hi) >= 0 {
		t.Fatalf("key %q outside scan bounds [%q, %q)", k, lo, hi)
	}
}
