// Package field converts raw byte buffers to and from scalar field elements
// of BN254, the proof system's curve.
//
// The canonical encoding of an element is 32 bytes, little-endian. Raw input
// longer than SafeBytes must be chunked (see Split): a 31-byte chunk
// interpreted little-endian is always strictly below the field modulus, so
// chunked conversion never silently truncates or wraps.
package field

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// SafeBytes is the largest byte width that fits any value below the BN254
// scalar field modulus (2^248 < r).
const SafeBytes = 31

// Bytes is the size of the canonical element encoding.
const Bytes = fr.Bytes

// FromBytes interprets b (at most SafeBytes bytes, little-endian) as a field
// element, zero-padding the high end.
func FromBytes(b []byte) (fr.Element, error) {
	var e fr.Element
	if len(b) > SafeBytes {
		return e, fmt.Errorf("input too long: %d > %d bytes, chunk with Split", len(b), SafeBytes)
	}
	var be [Bytes]byte
	for i, v := range b {
		be[Bytes-1-i] = v
	}
	e.SetBytes(be[:])
	return e, nil
}

// ToBytes returns the canonical little-endian encoding of e.
func ToBytes(e fr.Element) [Bytes]byte {
	be := e.Bytes()
	var le [Bytes]byte
	for i := range be {
		le[i] = be[Bytes-1-i]
	}
	return le
}

// FromCanonical decodes a full-width little-endian encoding, rejecting values
// greater or equal to the field modulus. This is the strict path used for
// externally supplied public inputs, where silent reduction would let two
// distinct encodings stand for the same scalar.
func FromCanonical(b [Bytes]byte) (fr.Element, error) {
	var be [Bytes]byte
	for i := range b {
		be[Bytes-1-i] = b[i]
	}
	var e fr.Element
	if err := e.SetBytesCanonical(be[:]); err != nil {
		return fr.Element{}, fmt.Errorf("non-canonical field element: %w", err)
	}
	return e, nil
}

// Split chunks buf into SafeBytes-sized little-endian segments and converts
// each to a field element. The last segment may be shorter; an empty buffer
// yields no elements.
func Split(buf []byte) []fr.Element {
	n := (len(buf) + SafeBytes - 1) / SafeBytes
	elems := make([]fr.Element, 0, n)
	for len(buf) > 0 {
		c := SafeBytes
		if len(buf) < c {
			c = len(buf)
		}
		e, _ := FromBytes(buf[:c]) // len <= SafeBytes, cannot fail
		elems = append(elems, e)
		buf = buf[c:]
	}
	return elems
}
