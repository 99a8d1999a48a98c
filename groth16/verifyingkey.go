// Package groth16 verifies raw-byte Groth16 proofs over BN254 against
// per-attribute verification keys.
//
// Unlike a general-purpose backend, proofs and public inputs arrive as opaque
// byte buffers in a fixed wire layout (see the Proof and VerifyingKey size
// constants); the package parses, validates and checks the single pairing
// equation. It never mutates caller state: flipping attribute bits after a
// successful verification belongs to the orchestrating collaborator.
package groth16

import (
	"fmt"

	"github.com/blang/semver/v4"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/fxamacker/cbor/v2"

	"github.com/zkident/attest"
)

// Wire sizes, raw uncompressed gnark-crypto encodings (big-endian
// coordinates).
const (
	SizeG1 = 64
	SizeG2 = 128

	// ProofSize = A (G1) || B (G2) || C (G1). No partial proofs.
	ProofSize = SizeG1 + SizeG2 + SizeG1

	// Public-input arity ceiling. The supported arities form a closed set;
	// anything above fails, it is a deliberate ceiling rather than a silent
	// default.
	MinPublicInputs = 1
	MaxPublicInputs = 5
)

// supportedCircuits is the circuit-version range this verifier understands.
// Keys produced for a different major version are rejected at load time.
var supportedCircuits = semver.MustParseRange(">=1.0.0 <2.0.0")

// VerifyingKey holds the public parameters for one attribute circuit.
// Immutable after construction: the process loads one key set before the
// first verification and never writes it again.
type VerifyingKey struct {
	Alpha curve.G1Affine
	Beta  curve.G2Affine
	Gamma curve.G2Affine
	Delta curve.G2Affine

	// IC has one more point than the circuit's public-input count.
	IC []curve.G1Affine

	// CircuitVersion identifies the proving circuit this key was generated
	// for.
	CircuitVersion semver.Version
}

// NbPublicInputs returns the public-input count the key supports.
func (vk *VerifyingKey) NbPublicInputs() int {
	return len(vk.IC) - 1
}

// ParseVerifyingKey decodes the raw configuration layout:
// alpha_g1 (64) || beta_g2 (128) || gamma_g2 (128) || delta_g2 (128) || ic
// (n+1 G1 points, 64 bytes each). Points are validated (on curve, correct
// subgroup) and the IC arity checked against the supported range.
func ParseVerifyingKey(raw []byte, circuitVersion semver.Version) (*VerifyingKey, error) {
	header := SizeG1 + 3*SizeG2
	if len(raw) < header+2*SizeG1 || (len(raw)-header)%SizeG1 != 0 {
		return nil, fmt.Errorf("invalid verifying key length %d", len(raw))
	}
	nbIC := (len(raw) - header) / SizeG1
	if n := nbIC - 1; n < MinPublicInputs || n > MaxPublicInputs {
		return nil, fmt.Errorf("unsupported public-input arity %d (supported %d..%d)",
			nbIC-1, MinPublicInputs, MaxPublicInputs)
	}
	if !supportedCircuits(circuitVersion) {
		return nil, fmt.Errorf("unsupported circuit version %s", circuitVersion)
	}

	vk := &VerifyingKey{CircuitVersion: circuitVersion}
	o := 0
	if _, err := vk.Alpha.SetBytes(raw[o : o+SizeG1]); err != nil {
		return nil, fmt.Errorf("alpha_g1: %w", err)
	}
	o += SizeG1
	if _, err := vk.Beta.SetBytes(raw[o : o+SizeG2]); err != nil {
		return nil, fmt.Errorf("beta_g2: %w", err)
	}
	o += SizeG2
	if _, err := vk.Gamma.SetBytes(raw[o : o+SizeG2]); err != nil {
		return nil, fmt.Errorf("gamma_g2: %w", err)
	}
	o += SizeG2
	if _, err := vk.Delta.SetBytes(raw[o : o+SizeG2]); err != nil {
		return nil, fmt.Errorf("delta_g2: %w", err)
	}
	o += SizeG2
	vk.IC = make([]curve.G1Affine, nbIC)
	for i := range vk.IC {
		if _, err := vk.IC[i].SetBytes(raw[o : o+SizeG1]); err != nil {
			return nil, fmt.Errorf("ic[%d]: %w", i, err)
		}
		o += SizeG1
	}
	return vk, nil
}

// Raw re-encodes the key in the configuration layout.
func (vk *VerifyingKey) Raw() []byte {
	out := make([]byte, 0, SizeG1+3*SizeG2+len(vk.IC)*SizeG1)
	a := vk.Alpha.RawBytes()
	out = append(out, a[:]...)
	b := vk.Beta.RawBytes()
	out = append(out, b[:]...)
	g := vk.Gamma.RawBytes()
	out = append(out, g[:]...)
	d := vk.Delta.RawBytes()
	out = append(out, d[:]...)
	for i := range vk.IC {
		p := vk.IC[i].RawBytes()
		out = append(out, p[:]...)
	}
	return out
}

// vkEnvelope is the stored form of a key: raw points plus the circuit
// version they were generated for.
type vkEnvelope struct {
	CircuitVersion string `cbor:"1,keyasint"`
	Raw            []byte `cbor:"2,keyasint"`
}

// MarshalBinary encodes the key (cbor envelope) for configuration storage.
func (vk *VerifyingKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(vkEnvelope{
		CircuitVersion: vk.CircuitVersion.String(),
		Raw:            vk.Raw(),
	})
}

// UnmarshalBinary decodes a stored key, re-running all point and version
// validation.
func (vk *VerifyingKey) UnmarshalBinary(data []byte) error {
	var env vkEnvelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("verifying key envelope: %w", err)
	}
	v, err := semver.Parse(env.CircuitVersion)
	if err != nil {
		return fmt.Errorf("verifying key circuit version: %w", err)
	}
	parsed, err := ParseVerifyingKey(env.Raw, v)
	if err != nil {
		return err
	}
	*vk = *parsed
	return nil
}

// KeySet is the process-wide, read-only verification-key registry, one key
// per attribute tag. Built once before any verification; safe for
// unsynchronized concurrent reads.
type KeySet struct {
	keys map[AttributeType]*VerifyingKey
}

// NewKeySet builds a key set. Every tag must be a member of the closed
// attribute set and every key non-nil.
func NewKeySet(keys map[AttributeType]*VerifyingKey) (*KeySet, error) {
	ks := &KeySet{keys: make(map[AttributeType]*VerifyingKey, len(keys))}
	for tag, vk := range keys {
		if err := checkTag(tag); err != nil {
			return nil, err
		}
		if vk == nil {
			return nil, fmt.Errorf("nil verifying key for attribute %s", tag)
		}
		ks.keys[tag] = vk
	}
	return ks, nil
}

// Key resolves the verifying key for an attribute tag.
func (ks *KeySet) Key(attr AttributeType) (*VerifyingKey, error) {
	if err := checkTag(attr); err != nil {
		return nil, err
	}
	vk, ok := ks.keys[attr]
	if !ok {
		return nil, fmt.Errorf("%w: no verifying key loaded for attribute %s",
			attest.ErrInvalidPublicInputs, attr)
	}
	return vk, nil
}
