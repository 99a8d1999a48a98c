package groth16

import (
	"fmt"

	"github.com/zkident/attest"
)

// AttributeType tags the identity attribute a proof attests to. The set is
// closed: unrecognized tags are rejected, never defaulted.
type AttributeType uint8

const (
	Age         AttributeType = 1
	Nationality AttributeType = 2
	Uniqueness  AttributeType = 4
)

// Valid reports whether a is a known attribute tag.
func (a AttributeType) Valid() bool {
	switch a {
	case Age, Nationality, Uniqueness:
		return true
	}
	return false
}

// Bit returns the tag's position in the 8-bit attributes-verified bitmap
// maintained by the record store. Tags are chosen bitwise-OR-able, so the bit
// is the tag value itself.
func (a AttributeType) Bit() uint8 {
	return uint8(a)
}

func (a AttributeType) String() string {
	switch a {
	case Age:
		return "age"
	case Nationality:
		return "nationality"
	case Uniqueness:
		return "uniqueness"
	}
	return fmt.Sprintf("unknown(%d)", uint8(a))
}

// checkTag rejects unknown tags with the public-input error kind.
func checkTag(a AttributeType) error {
	if !a.Valid() {
		return fmt.Errorf("%w: unknown attribute tag %d", attest.ErrInvalidPublicInputs, uint8(a))
	}
	return nil
}
