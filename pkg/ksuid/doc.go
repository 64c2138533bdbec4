// Package ksuid implements a 20-byte, time-ordered unique identifier with a
// fixed-width 27-character base62 text form.
//
// # Format
//
// An identifier is 20 bytes big-endian: [4 bytes timestamp][16 bytes payload].
// The timestamp counts seconds since a custom epoch placed 1,400,000,000
// seconds after the Unix epoch, which extends the useful range of the 32-bit
// field by about 44 years. The payload is random and treated as an unsigned
// 128-bit integer by Next and Prev.
//
// # Ordering
//
// Byte-wise comparison of identifiers orders them by creation time first and
// payload second. The base62 alphabet is ordered by digit value and encoding
// is fixed width, so lexicographic order of the text form equals the byte
// order. Identifiers can be sorted as strings without decoding them.
//
// Usage
//
//	id, err := ksuid.New()
//	s := id.String()        // 27-character base62 text
//	b := id.Bytes()         // 20-byte representation
//	id2, err := ksuid.Parse(s)
package ksuid
