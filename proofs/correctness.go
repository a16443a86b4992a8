package proofs

import (
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/curve"
	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/sigma"
	"github.com/mercat-network/mercat/transcript"
)

// CorrectnessLabel is the domain separator for the CorrectEncryption relation: proof that a ciphertext encrypts a
// publicly declared value under a publicly known key, without revealing the blinding factor (spec.md §4.4,
// "CorrectEncryption").
const CorrectnessLabel = "mercat/correctness"

// CorrectnessInitialMessage is CorrectEncryption's first-move commitment: A = u·BBlinding, B = u·pub_key for a fresh
// nonce u.
type CorrectnessInitialMessage struct {
	A *ristretto255.Element
	B *ristretto255.Element
}

// Label implements sigma.InitialMessage.
func (m CorrectnessInitialMessage) Label() string { return CorrectnessLabel }

// CorrectnessFinalResponse is the prover's response scalar z = u + c·blinding.
type CorrectnessFinalResponse struct {
	Z *ristretto255.Scalar
}

// CorrectnessProver drives the two-step CorrectEncryption prover role: GenerateInitialMessage, then ApplyChallenge.
type CorrectnessProver struct {
	witness elgamal.CommitmentWitness
	pubKey  elgamal.ElgamalPublicKey
	gens    *elgamal.PedersenGens
}

// NewCorrectnessProver builds a prover for the statement "the ciphertext encrypting witness under pubKey encrypts the
// declared value witness.Value", ready to generate its initial message.
func NewCorrectnessProver(witness elgamal.CommitmentWitness, pubKey elgamal.ElgamalPublicKey, gens *elgamal.PedersenGens) CorrectnessProver {
	return CorrectnessProver{witness: witness, pubKey: pubKey, gens: gens}
}

// CreateTranscriptRNG forks t into transcript-bound prover and verifier branches, binding the prover's nonce to this
// proof's witness so a weak external RNG alone cannot cause nonce reuse (spec.md §4.2).
func (p CorrectnessProver) CreateTranscriptRNG(t *transcript.Transcript, rand io.Reader) (*transcript.Transcript, *transcript.Transcript, error) {
	return transcript.ProverRNG(t, p.witness.Blinding.Bytes(), rand)
}

// correctnessFinalProver is the prover's state between GenerateInitialMessage and ApplyChallenge.
type correctnessFinalProver struct {
	blinding *ristretto255.Scalar
	u        *ristretto255.Scalar
}

// GenerateInitialMessage draws a nonce from proverT and commits to it, returning the state needed to answer a
// challenge along with the message to publish.
func (p CorrectnessProver) GenerateInitialMessage(proverT *transcript.Transcript) (correctnessFinalProver, CorrectnessInitialMessage) {
	u := proverT.DeriveScalar("nonce")
	msg := CorrectnessInitialMessage{
		A: ristretto255.NewIdentityElement().ScalarMult(u, p.gens.BBlinding),
		B: ristretto255.NewIdentityElement().ScalarMult(u, p.pubKey.PubKey),
	}
	return correctnessFinalProver{blinding: p.witness.Blinding, u: u}, msg
}

// ApplyChallenge answers challenge c with z = u + c·blinding.
func (fp correctnessFinalProver) ApplyChallenge(c sigma.Challenge) CorrectnessFinalResponse {
	z := ristretto255.NewScalar().Add(fp.u, ristretto255.NewScalar().Multiply(c, fp.blinding))
	return CorrectnessFinalResponse{Z: z}
}

// CorrectnessVerifier holds the public statement a CorrectEncryption proof is checked against: the declared
// plaintext value, the encrypting key, the ciphertext, and the generator pair.
type CorrectnessVerifier struct {
	Value  uint64
	PubKey elgamal.ElgamalPublicKey
	Cipher elgamal.CipherText
	Gens   *elgamal.PedersenGens
}

// Verify checks both equations z·BBlinding == A + c·X and z·pub_key == B + c·(Y − value·B), returning
// *CorrectnessCheckError naming the first one that fails.
func (v CorrectnessVerifier) Verify(initial CorrectnessInitialMessage, c sigma.Challenge, final CorrectnessFinalResponse) error {
	lhs1 := ristretto255.NewIdentityElement().ScalarMult(final.Z, v.Gens.BBlinding)
	rhs1 := ristretto255.NewIdentityElement().Add(initial.A, ristretto255.NewIdentityElement().ScalarMult(c, v.Cipher.X))
	if !curve.EqualPoints(lhs1, rhs1) {
		return &CorrectnessCheckError{Check: 1}
	}

	valueB := ristretto255.NewIdentityElement().ScalarMult(curve.ScalarFromUint64(v.Value), v.Gens.B)
	yMinusValueB := ristretto255.NewIdentityElement().Subtract(v.Cipher.Y, valueB)

	lhs2 := ristretto255.NewIdentityElement().ScalarMult(final.Z, v.PubKey.PubKey)
	rhs2 := ristretto255.NewIdentityElement().Add(initial.B, ristretto255.NewIdentityElement().ScalarMult(c, yMinusValueB))
	if !curve.EqualPoints(lhs2, rhs2) {
		return &CorrectnessCheckError{Check: 2}
	}

	return nil
}

// ProveCorrectEncryption runs the full CorrectEncryption prover side in one call: forks a transcript-bound RNG,
// commits, derives the challenge from t, and answers it. Returns the initial message and final response to publish
// alongside the (now-consumed) transcript's challenge, which the verifier re-derives independently from its own
// transcript built over the same public inputs.
func ProveCorrectEncryption(t *transcript.Transcript, prover CorrectnessProver, rand io.Reader) (CorrectnessInitialMessage, CorrectnessFinalResponse, error) {
	proverT, _, err := prover.CreateTranscriptRNG(t, rand)
	if err != nil {
		return CorrectnessInitialMessage{}, CorrectnessFinalResponse{}, err
	}
	fp, initial := prover.GenerateInitialMessage(proverT)

	challengeT := t.Clone()
	challengeT.AppendPoint("A", initial.A)
	challengeT.AppendPoint("B", initial.B)
	c := challengeT.ScalarChallenge(CorrectnessLabel + "/challenge")

	return initial, fp.ApplyChallenge(c), nil
}

// VerifyCorrectEncryption re-derives the challenge from t and the published initial message, then checks the final
// response against it.
func VerifyCorrectEncryption(t *transcript.Transcript, verifier CorrectnessVerifier, initial CorrectnessInitialMessage, final CorrectnessFinalResponse) error {
	challengeT := t.Clone()
	challengeT.AppendPoint("A", initial.A)
	challengeT.AppendPoint("B", initial.B)
	c := challengeT.ScalarChallenge(CorrectnessLabel + "/challenge")

	return verifier.Verify(initial, c, final)
}
