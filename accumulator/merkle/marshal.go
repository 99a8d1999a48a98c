package merkle

import (
	"bytes"
	"fmt"
	"io"

	"github.com/icza/bitio"

	"github.com/zkident/attest"
)

// Wire format: depth (1 byte) || sibling digests (32 bytes each) || direction
// bits, packed MSB-first and zero-padded to a byte boundary.

// MaxDepth bounds the wire-encodable proof depth.
const MaxDepth = 255

// MarshalBinary encodes the proof in the wire format.
func (p Proof) MarshalBinary() ([]byte, error) {
	if len(p.Siblings) != len(p.Directions) {
		return nil, fmt.Errorf("%w: %d siblings, %d directions",
			attest.ErrMerkleTree, len(p.Siblings), len(p.Directions))
	}
	if len(p.Siblings) > MaxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds %d", attest.ErrMerkleTree, len(p.Siblings), MaxDepth)
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	if err := w.WriteByte(byte(len(p.Siblings))); err != nil {
		return nil, err
	}
	for i := range p.Siblings {
		if _, err := w.Write(p.Siblings[i][:]); err != nil {
			return nil, err
		}
	}
	for _, d := range p.Directions {
		if err := w.WriteBool(d); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes the wire format, rejecting truncated or oversized
// payloads with attest.ErrMerkleTree.
func (p *Proof) UnmarshalBinary(data []byte) error {
	r := bitio.NewReader(bytes.NewReader(data))
	depth, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: missing depth", attest.ErrMerkleTree)
	}

	siblings := make([]attest.Digest, depth)
	for i := range siblings {
		if _, err := io.ReadFull(r, siblings[i][:]); err != nil {
			return fmt.Errorf("%w: truncated sibling %d", attest.ErrMerkleTree, i)
		}
	}
	directions := make([]bool, depth)
	for i := range directions {
		d, err := r.ReadBool()
		if err != nil {
			return fmt.Errorf("%w: truncated direction bits", attest.ErrMerkleTree)
		}
		directions[i] = d
	}

	// nothing but bit padding may remain
	expected := 1 + int(depth)*attest.DigestSize + (int(depth)+7)/8
	if len(data) != expected {
		return fmt.Errorf("%w: %d trailing bytes", attest.ErrMerkleTree, len(data)-expected)
	}

	p.Siblings = siblings
	p.Directions = directions
	return nil
}
