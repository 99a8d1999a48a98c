package groth16

import (
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkident/attest"
	"github.com/zkident/attest/field"
	"github.com/zkident/attest/logger"
)

// proofPoints is a parsed 256-byte proof.
type proofPoints struct {
	a, c curve.G1Affine
	b    curve.G2Affine
}

// parseProof splits raw into A||B||C and validates each point encoding
// (on curve and in the correct subgroup).
func parseProof(raw []byte) (*proofPoints, error) {
	if len(raw) != ProofSize {
		return nil, fmt.Errorf("%w: length %d, want %d", attest.ErrInvalidProof, len(raw), ProofSize)
	}
	var p proofPoints
	if _, err := p.a.SetBytes(raw[:SizeG1]); err != nil {
		return nil, fmt.Errorf("%w: point A: %v", attest.ErrInvalidProof, err)
	}
	if _, err := p.b.SetBytes(raw[SizeG1 : SizeG1+SizeG2]); err != nil {
		return nil, fmt.Errorf("%w: point B: %v", attest.ErrInvalidProof, err)
	}
	if _, err := p.c.SetBytes(raw[SizeG1+SizeG2:]); err != nil {
		return nil, fmt.Errorf("%w: point C: %v", attest.ErrInvalidProof, err)
	}
	return &p, nil
}

// parsePublicInputs decodes the concatenation of 32-byte little-endian field
// elements and checks the count against the key's IC points.
func parsePublicInputs(raw []byte, vk *VerifyingKey) ([]fr.Element, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", attest.ErrInvalidPublicInputs)
	}
	if len(raw)%field.Bytes != 0 {
		return nil, fmt.Errorf("%w: length %d not a multiple of %d",
			attest.ErrInvalidPublicInputs, len(raw), field.Bytes)
	}
	n := len(raw) / field.Bytes
	if n < MinPublicInputs || n > MaxPublicInputs {
		return nil, fmt.Errorf("%w: arity %d outside supported %d..%d",
			attest.ErrInvalidPublicInputs, n, MinPublicInputs, MaxPublicInputs)
	}
	if n != vk.NbPublicInputs() {
		return nil, fmt.Errorf("%w: arity %d, key expects %d",
			attest.ErrInvalidPublicInputs, n, vk.NbPublicInputs())
	}

	inputs := make([]fr.Element, n)
	for i := range inputs {
		var b [field.Bytes]byte
		copy(b[:], raw[i*field.Bytes:])
		e, err := field.FromCanonical(b)
		if err != nil {
			return nil, fmt.Errorf("%w: input %d: %v", attest.ErrInvalidPublicInputs, i, err)
		}
		inputs[i] = e
	}
	return inputs, nil
}

// Verify checks a 256-byte Groth16 proof against the key registered for the
// attribute tag.
//
// It returns (false, nil) when the proof is well-formed but the pairing
// equation does not hold; errors are reserved for malformed input (see the
// attest error kinds). No state is mutated either way.
func (ks *KeySet) Verify(proof, publicInputs []byte, attr AttributeType) (bool, error) {
	log := logger.Logger().With().Str("curve", "bn254").Str("attribute", attr.String()).Logger()
	start := time.Now()

	vk, err := ks.Key(attr)
	if err != nil {
		return false, err
	}
	p, err := parseProof(proof)
	if err != nil {
		return false, err
	}
	inputs, err := parsePublicInputs(publicInputs, vk)
	if err != nil {
		return false, err
	}

	// L = IC[0] + Σ_i inputs[i]·IC[i+1]
	var acc curve.G1Jac
	if _, err := acc.MultiExp(vk.IC[1:], inputs, ecc.MultiExpConfig{}); err != nil {
		return false, fmt.Errorf("%w: linear combination: %v", attest.ErrInvalidPublicInputs, err)
	}
	acc.AddMixed(&vk.IC[0])
	var l curve.G1Affine
	l.FromJacobian(&acc)

	// e(A,B) = e(α,β)·e(L,γ)·e(C,δ), folded into a single product
	// e(-A,B)·e(α,β)·e(L,γ)·e(C,δ) == 1
	var aNeg curve.G1Affine
	aNeg.Neg(&p.a)
	ok, err := curve.PairingCheck(
		[]curve.G1Affine{aNeg, vk.Alpha, l, p.c},
		[]curve.G2Affine{p.b, vk.Beta, vk.Gamma, vk.Delta},
	)
	if err != nil {
		return false, fmt.Errorf("%w: pairing: %v", attest.ErrInvalidProof, err)
	}

	log.Debug().Dur("took", time.Since(start)).Bool("accepted", ok).Msg("proof verified")
	return ok, nil
}

// VerifyStrict is Verify for callers that treat a rejected proof like a
// fault: it maps (false, nil) to attest.ErrProofVerificationFailed.
func (ks *KeySet) VerifyStrict(proof, publicInputs []byte, attr AttributeType) error {
	ok, err := ks.Verify(proof, publicInputs, attr)
	if err != nil {
		return err
	}
	if !ok {
		return attest.ErrProofVerificationFailed
	}
	return nil
}
