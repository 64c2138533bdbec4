package ksuid

import "testing"

func TestUint128BytesRoundTrip(t *testing.T) {
	v := makeUint128(0x0123456789ABCDEF, 0xFEDCBA9876543210)
	b := v.bytes()

	want := [payloadLen]byte{
		0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF,
		0xFE, 0xDC, 0xBA, 0x98, 0x76, 0x54, 0x32, 0x10,
	}
	if b != want {
		t.Fatalf("bytes mismatch: %x", b)
	}

	id := makeKSUID(0, v)
	if got := uint128Payload(id); got != v {
		t.Fatalf("payload round trip mismatch: %+v", got)
	}
}

func TestUint128AddCarry(t *testing.T) {
	v := makeUint128(0, ^uint64(0))
	got := v.add(one128)
	if got != makeUint128(1, 0) {
		t.Fatalf("expected carry into high half, got %+v", got)
	}

	if max128.add(one128) != zero128 {
		t.Fatalf("expected max+1 to wrap to zero")
	}
}

func TestUint128SubBorrow(t *testing.T) {
	v := makeUint128(1, 0)
	got := v.sub(one128)
	if got != makeUint128(0, ^uint64(0)) {
		t.Fatalf("expected borrow from high half, got %+v", got)
	}

	// The wrap of 0-1 to max is how callers detect a borrow.
	if zero128.sub(one128) != max128 {
		t.Fatalf("expected 0-1 to wrap to max")
	}
}

func TestUint128IncrDecr(t *testing.T) {
	v := makeUint128(42, ^uint64(0))
	if got := v.incr().decr(); got != v {
		t.Fatalf("incr/decr not inverse: %+v", got)
	}
	if got := v.decr().incr(); got != v {
		t.Fatalf("decr/incr not inverse: %+v", got)
	}
}

func TestUint128Cmp(t *testing.T) {
	tests := []struct {
		a, b uint128
		want int
	}{
		{zero128, zero128, 0},
		{zero128, one128, -1},
		{one128, zero128, 1},
		{makeUint128(1, 0), makeUint128(0, ^uint64(0)), 1},
		{makeUint128(5, 1), makeUint128(5, 2), -1},
		{max128, makeUint128(^uint64(0), 0), 1},
	}
	for _, tt := range tests {
		if got := tt.a.cmp(tt.b); got != tt.want {
			t.Fatalf("cmp(%+v, %+v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestUint128Shifts(t *testing.T) {
	v := makeUint128(0, 1)
	if got := v.shl(64); got != makeUint128(1, 0) {
		t.Fatalf("shl(64) = %+v", got)
	}
	if got := v.shl(7); got != makeUint128(0, 128) {
		t.Fatalf("shl(7) = %+v", got)
	}
	if got := makeUint128(1, 0).shr(64); got != makeUint128(0, 1) {
		t.Fatalf("shr(64) = %+v", got)
	}
	if got := makeUint128(1, 0).shr(7); got != makeUint128(0, 1<<57) {
		t.Fatalf("shr(7) = %+v", got)
	}
	if got := v.shl(0); got != v {
		t.Fatalf("shl(0) = %+v", got)
	}
}
