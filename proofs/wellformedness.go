package proofs

import (
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/curve"
	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/sigma"
	"github.com/mercat-network/mercat/transcript"
)

// WellFormednessLabel is the domain separator for the WellFormedness relation: proof that a ciphertext is a valid
// ElGamal encryption of *some* value under a known key, without declaring the value itself (spec.md §4.4,
// "WellFormedness" — used where correctness's declared-plaintext variant would leak the amount, e.g. a sender's
// pending balance commitment).
const WellFormednessLabel = "mercat/wellformedness"

// WellFormednessInitialMessage is WellFormedness's first-move commitment, binding both unknowns (value and blinding)
// at once: A = ra·B + rb·pub_key, B = rb·BBlinding.
type WellFormednessInitialMessage struct {
	A *ristretto255.Element
	B *ristretto255.Element
}

// Label implements sigma.InitialMessage.
func (m WellFormednessInitialMessage) Label() string { return WellFormednessLabel }

// WellFormednessFinalResponse holds the two response scalars, one per unknown.
type WellFormednessFinalResponse struct {
	Z1 *ristretto255.Scalar // binds value
	Z2 *ristretto255.Scalar // binds blinding
}

// WellFormednessProver drives the prover side of the WellFormedness relation.
type WellFormednessProver struct {
	witness elgamal.CommitmentWitness
	pubKey  elgamal.ElgamalPublicKey
	gens    *elgamal.PedersenGens
}

// NewWellFormednessProver builds a prover for the statement "some ciphertext encrypting witness under pubKey is
// well-formed", without revealing witness.Value to the verifier.
func NewWellFormednessProver(witness elgamal.CommitmentWitness, pubKey elgamal.ElgamalPublicKey, gens *elgamal.PedersenGens) WellFormednessProver {
	return WellFormednessProver{witness: witness, pubKey: pubKey, gens: gens}
}

// CreateTranscriptRNG forks t into prover/verifier branches bound to this proof's full witness (both the value and
// the blinding factor, since both are secret here).
func (p WellFormednessProver) CreateTranscriptRNG(t *transcript.Transcript, rand io.Reader) (*transcript.Transcript, *transcript.Transcript, error) {
	witness := append(append([]byte{}, p.witness.ValueScalar().Bytes()...), p.witness.Blinding.Bytes()...)
	return transcript.ProverRNG(t, witness, rand)
}

type wellFormednessFinalProver struct {
	value    *ristretto255.Scalar
	blinding *ristretto255.Scalar
	ra, rb   *ristretto255.Scalar
}

// GenerateInitialMessage draws two nonces, ra and rb, and commits to them.
func (p WellFormednessProver) GenerateInitialMessage(proverT *transcript.Transcript) (wellFormednessFinalProver, WellFormednessInitialMessage) {
	ra := proverT.DeriveScalar("nonce-value")
	rb := proverT.DeriveScalar("nonce-blinding")

	msg := WellFormednessInitialMessage{
		A: ristretto255.NewIdentityElement().VarTimeMultiScalarMult(
			[]*ristretto255.Scalar{ra, rb},
			[]*ristretto255.Element{p.gens.B, p.pubKey.PubKey},
		),
		B: ristretto255.NewIdentityElement().ScalarMult(rb, p.gens.BBlinding),
	}
	return wellFormednessFinalProver{value: p.witness.ValueScalar(), blinding: p.witness.Blinding, ra: ra, rb: rb}, msg
}

// ApplyChallenge answers c with z1 = ra + c·value, z2 = rb + c·blinding.
func (fp wellFormednessFinalProver) ApplyChallenge(c sigma.Challenge) WellFormednessFinalResponse {
	return WellFormednessFinalResponse{
		Z1: ristretto255.NewScalar().Add(fp.ra, ristretto255.NewScalar().Multiply(c, fp.value)),
		Z2: ristretto255.NewScalar().Add(fp.rb, ristretto255.NewScalar().Multiply(c, fp.blinding)),
	}
}

// WellFormednessVerifier holds the public statement: the encrypting key, the ciphertext, and the generator pair.
type WellFormednessVerifier struct {
	PubKey elgamal.ElgamalPublicKey
	Cipher elgamal.CipherText
	Gens   *elgamal.PedersenGens
}

// Verify checks z1·B + z2·pub_key == A + c·Y and z2·BBlinding == B + c·X.
func (v WellFormednessVerifier) Verify(initial WellFormednessInitialMessage, c sigma.Challenge, final WellFormednessFinalResponse) error {
	lhs1 := ristretto255.NewIdentityElement().VarTimeMultiScalarMult(
		[]*ristretto255.Scalar{final.Z1, final.Z2},
		[]*ristretto255.Element{v.Gens.B, v.PubKey.PubKey},
	)
	rhs1 := ristretto255.NewIdentityElement().Add(initial.A, ristretto255.NewIdentityElement().ScalarMult(c, v.Cipher.Y))
	if !curve.EqualPoints(lhs1, rhs1) {
		return &WellFormednessCheckError{Check: 1}
	}

	lhs2 := ristretto255.NewIdentityElement().ScalarMult(final.Z2, v.Gens.BBlinding)
	rhs2 := ristretto255.NewIdentityElement().Add(initial.B, ristretto255.NewIdentityElement().ScalarMult(c, v.Cipher.X))
	if !curve.EqualPoints(lhs2, rhs2) {
		return &WellFormednessCheckError{Check: 2}
	}

	return nil
}

// ProveWellFormedness runs the full prover side in one call.
func ProveWellFormedness(t *transcript.Transcript, prover WellFormednessProver, rand io.Reader) (WellFormednessInitialMessage, WellFormednessFinalResponse, error) {
	proverT, _, err := prover.CreateTranscriptRNG(t, rand)
	if err != nil {
		return WellFormednessInitialMessage{}, WellFormednessFinalResponse{}, err
	}
	fp, initial := prover.GenerateInitialMessage(proverT)

	challengeT := t.Clone()
	challengeT.AppendPoint("A", initial.A)
	challengeT.AppendPoint("B", initial.B)
	c := challengeT.ScalarChallenge(WellFormednessLabel + "/challenge")

	return initial, fp.ApplyChallenge(c), nil
}

// VerifyWellFormedness re-derives the challenge and checks the final response.
func VerifyWellFormedness(t *transcript.Transcript, verifier WellFormednessVerifier, initial WellFormednessInitialMessage, final WellFormednessFinalResponse) error {
	challengeT := t.Clone()
	challengeT.AppendPoint("A", initial.A)
	challengeT.AppendPoint("B", initial.B)
	c := challengeT.ScalarChallenge(WellFormednessLabel + "/challenge")

	return verifier.Verify(initial, c, final)
}
