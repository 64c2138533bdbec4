package ledger

import "bytes"

// Pebble keyspace.
//
// Layout (byte-wise, lexicographically sortable):
// - stream/{name}/s -> stream state (JSON)

var (
	streamPrefix = []byte("stream/")
	stateSuffix  = []byte("/s")
)

// keyStreamState builds the state key for a stream.
func keyStreamState(name string) []byte {
	k := make([]byte, 0, len(streamPrefix)+len(name)+len(stateSuffix))
	k = append(k, streamPrefix...)
	k = append(k, name...)
	k = append(k, stateSuffix...)
	return k
}

// streamScanBounds returns the [lo, hi) range covering every stream state key.
func streamScanBounds() (lo, hi []byte) {
	lo = append([]byte(nil), streamPrefix...)
	hi = append([]byte(nil), streamPrefix...)
	hi[len(hi)-1]++
	return lo, hi
}

// streamNameFromKey recovers the stream name from a state key.
func streamNameFromKey(k []byte) (string, bool) {
	if len(k) <= len(streamPrefix)+len(stateSuffix) ||
		!bytes.HasPrefix(k, streamPrefix) || !bytes.HasSuffix(k, stateSuffix) {
		return "", false
	}
	return string(k[len(streamPrefix) : len(k)-len(stateSuffix)]), true
}
