// Package fixture builds matching verifying-key/proof pairs from fixed
// scalars, so verifier tests run a genuine pairing check without a prover or
// a trusted setup.
//
// With generators g1, g2 and scalars α, β, γ, δ, ic_j, inputs x_i, let
// l = ic_0 + Σ x_i·ic_{i+1} and ab = αβ + lγ + cδ. Then the proof
// (A, B, C) = (ab·g1, g2, c·g1) satisfies
// e(A,B) = e(α·g1, β·g2)·e(l·g1, γ·g2)·e(C, δ·g2) by construction.
package fixture

import (
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkident/attest/field"
)

// Fixture is a self-consistent verification scenario.
type Fixture struct {
	VKRaw        []byte // raw configuration layout, parses as a VerifyingKey
	Proof        []byte // 256 bytes, verifies against VKRaw and PublicInputs
	ProofWrongC  []byte // valid points, pairing equation fails
	PublicInputs []byte // nbInputs little-endian field elements
}

// New builds a fixture with the given public-input arity. Different seeds
// yield independent keys.
func New(nbInputs int, seed uint64) Fixture {
	_, _, g1, g2 := curve.Generators()

	next := seed*6364136223846793005 + 1442695040888963407
	scalar := func() fr.Element {
		var e fr.Element
		next = next*6364136223846793005 + 1442695040888963407
		e.SetUint64(next | 1) // nonzero
		return e
	}

	alpha, beta, gamma, delta, c := scalar(), scalar(), scalar(), scalar(), scalar()
	ic := make([]fr.Element, nbInputs+1)
	inputs := make([]fr.Element, nbInputs)
	for i := range ic {
		ic[i] = scalar()
	}
	for i := range inputs {
		inputs[i] = scalar()
	}

	// l = ic_0 + Σ x_i·ic_{i+1}
	l := ic[0]
	for i := range inputs {
		var t fr.Element
		t.Mul(&inputs[i], &ic[i+1])
		l.Add(&l, &t)
	}

	// ab = αβ + lγ + cδ
	var ab, t fr.Element
	ab.Mul(&alpha, &beta)
	t.Mul(&l, &gamma)
	ab.Add(&ab, &t)
	t.Mul(&c, &delta)
	ab.Add(&ab, &t)

	g1mul := func(s fr.Element) curve.G1Affine {
		var bi big.Int
		s.BigInt(&bi)
		var p curve.G1Affine
		p.ScalarMultiplication(&g1, &bi)
		return p
	}
	g2mul := func(s fr.Element) curve.G2Affine {
		var bi big.Int
		s.BigInt(&bi)
		var p curve.G2Affine
		p.ScalarMultiplication(&g2, &bi)
		return p
	}

	var f Fixture

	appendG1 := func(dst []byte, p curve.G1Affine) []byte {
		raw := p.RawBytes()
		return append(dst, raw[:]...)
	}
	appendG2 := func(dst []byte, p curve.G2Affine) []byte {
		raw := p.RawBytes()
		return append(dst, raw[:]...)
	}

	f.VKRaw = appendG1(f.VKRaw, g1mul(alpha))
	f.VKRaw = appendG2(f.VKRaw, g2mul(beta))
	f.VKRaw = appendG2(f.VKRaw, g2mul(gamma))
	f.VKRaw = appendG2(f.VKRaw, g2mul(delta))
	for i := range ic {
		f.VKRaw = appendG1(f.VKRaw, g1mul(ic[i]))
	}

	f.Proof = appendG1(f.Proof, g1mul(ab))
	rawB := g2.RawBytes()
	f.Proof = append(f.Proof, rawB[:]...)
	f.Proof = appendG1(f.Proof, g1mul(c))

	var cWrong fr.Element
	one := fr.One()
	cWrong.Add(&c, &one)
	f.ProofWrongC = append(f.ProofWrongC, f.Proof[:192]...)
	f.ProofWrongC = appendG1(f.ProofWrongC, g1mul(cWrong))

	for i := range inputs {
		le := field.ToBytes(inputs[i])
		f.PublicInputs = append(f.PublicInputs, le[:]...)
	}

	return f
}
