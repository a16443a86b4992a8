package proofs

import (
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/curve"
	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/sigma"
	"github.com/mercat-network/mercat/transcript"
)

// CipherEqualityLabel is the domain separator for the CipherEquality relation: proof that two ciphertexts, possibly
// under two different public keys, encrypt the same value (spec.md §4.4, "CipherEquality" — used to show the
// sender's and receiver's encrypted transfer amounts agree without revealing the amount).
const CipherEqualityLabel = "mercat/cipher-equality"

// CipherEqualityInitialMessage commits to the three unknowns (the shared value and the two independent blinding
// factors) across both ciphertexts' defining equations.
type CipherEqualityInitialMessage struct {
	A1 *ristretto255.Element // commits to cipher1.X = r1·BBlinding
	A2 *ristretto255.Element // commits to cipher1.Y = v·B + r1·pub_key1
	A3 *ristretto255.Element // commits to cipher2.X = r2·BBlinding
	A4 *ristretto255.Element // commits to cipher2.Y = v·B + r2·pub_key2
}

// Label implements sigma.InitialMessage.
func (m CipherEqualityInitialMessage) Label() string { return CipherEqualityLabel }

// CipherEqualityFinalResponse holds the three response scalars.
type CipherEqualityFinalResponse struct {
	Zv *ristretto255.Scalar // binds the shared value
	Z1 *ristretto255.Scalar // binds cipher1's blinding
	Z2 *ristretto255.Scalar // binds cipher2's blinding
}

// CipherEqualityProver drives the prover side. Witness1 and Witness2 must carry the same Value; NewCipherEqualityProver
// does not itself check this, since in the honest-prover case the caller constructs both witnesses from one shared
// amount by definition.
type CipherEqualityProver struct {
	witness1 elgamal.CommitmentWitness
	witness2 elgamal.CommitmentWitness
	pubKey1  elgamal.ElgamalPublicKey
	pubKey2  elgamal.ElgamalPublicKey
	gens     *elgamal.PedersenGens
}

// NewCipherEqualityProver builds a prover for the statement "an encryption of witness1.Value under pubKey1 and an
// encryption of witness2.Value under pubKey2 carry the same value", where witness1.Value == witness2.Value.
func NewCipherEqualityProver(witness1, witness2 elgamal.CommitmentWitness, pubKey1, pubKey2 elgamal.ElgamalPublicKey, gens *elgamal.PedersenGens) CipherEqualityProver {
	return CipherEqualityProver{witness1: witness1, witness2: witness2, pubKey1: pubKey1, pubKey2: pubKey2, gens: gens}
}

// CreateTranscriptRNG forks t into prover/verifier branches bound to the full witness (the shared value and both
// blinding factors).
func (p CipherEqualityProver) CreateTranscriptRNG(t *transcript.Transcript, rand io.Reader) (*transcript.Transcript, *transcript.Transcript, error) {
	witness := append([]byte{}, p.witness1.ValueScalar().Bytes()...)
	witness = append(witness, p.witness1.Blinding.Bytes()...)
	witness = append(witness, p.witness2.Blinding.Bytes()...)
	return transcript.ProverRNG(t, witness, rand)
}

type cipherEqualityFinalProver struct {
	value          *ristretto255.Scalar
	blinding1      *ristretto255.Scalar
	blinding2      *ristretto255.Scalar
	rv, r1n, r2n   *ristretto255.Scalar
}

// GenerateInitialMessage draws three nonces — rv, r1n, r2n — and commits to them.
func (p CipherEqualityProver) GenerateInitialMessage(proverT *transcript.Transcript) (cipherEqualityFinalProver, CipherEqualityInitialMessage) {
	rv := proverT.DeriveScalar("nonce-value")
	r1n := proverT.DeriveScalar("nonce-blinding-1")
	r2n := proverT.DeriveScalar("nonce-blinding-2")

	msg := CipherEqualityInitialMessage{
		A1: ristretto255.NewIdentityElement().ScalarMult(r1n, p.gens.BBlinding),
		A2: ristretto255.NewIdentityElement().VarTimeMultiScalarMult(
			[]*ristretto255.Scalar{rv, r1n},
			[]*ristretto255.Element{p.gens.B, p.pubKey1.PubKey},
		),
		A3: ristretto255.NewIdentityElement().ScalarMult(r2n, p.gens.BBlinding),
		A4: ristretto255.NewIdentityElement().VarTimeMultiScalarMult(
			[]*ristretto255.Scalar{rv, r2n},
			[]*ristretto255.Element{p.gens.B, p.pubKey2.PubKey},
		),
	}
	return cipherEqualityFinalProver{
		value:     p.witness1.ValueScalar(),
		blinding1: p.witness1.Blinding,
		blinding2: p.witness2.Blinding,
		rv:        rv, r1n: r1n, r2n: r2n,
	}, msg
}

// ApplyChallenge answers c with zv = rv + c·v, z1 = r1n + c·r1, z2 = r2n + c·r2.
func (fp cipherEqualityFinalProver) ApplyChallenge(c sigma.Challenge) CipherEqualityFinalResponse {
	return CipherEqualityFinalResponse{
		Zv: ristretto255.NewScalar().Add(fp.rv, ristretto255.NewScalar().Multiply(c, fp.value)),
		Z1: ristretto255.NewScalar().Add(fp.r1n, ristretto255.NewScalar().Multiply(c, fp.blinding1)),
		Z2: ristretto255.NewScalar().Add(fp.r2n, ristretto255.NewScalar().Multiply(c, fp.blinding2)),
	}
}

// CipherEqualityVerifier holds the public statement: the two keys, the two ciphertexts, and the generator pair.
type CipherEqualityVerifier struct {
	PubKey1 elgamal.ElgamalPublicKey
	PubKey2 elgamal.ElgamalPublicKey
	Cipher1 elgamal.CipherText
	Cipher2 elgamal.CipherText
	Gens    *elgamal.PedersenGens
}

// Verify checks both ciphertexts' pairs of equations against the shared value binding.
func (v CipherEqualityVerifier) Verify(initial CipherEqualityInitialMessage, c sigma.Challenge, final CipherEqualityFinalResponse) error {
	lhsX1 := ristretto255.NewIdentityElement().ScalarMult(final.Z1, v.Gens.BBlinding)
	rhsX1 := ristretto255.NewIdentityElement().Add(initial.A1, ristretto255.NewIdentityElement().ScalarMult(c, v.Cipher1.X))
	lhsY1 := ristretto255.NewIdentityElement().VarTimeMultiScalarMult(
		[]*ristretto255.Scalar{final.Zv, final.Z1},
		[]*ristretto255.Element{v.Gens.B, v.PubKey1.PubKey},
	)
	rhsY1 := ristretto255.NewIdentityElement().Add(initial.A2, ristretto255.NewIdentityElement().ScalarMult(c, v.Cipher1.Y))
	if !curve.EqualPoints(lhsX1, rhsX1) || !curve.EqualPoints(lhsY1, rhsY1) {
		return &CipherEqualityCheckError{Check: 1}
	}

	lhsX2 := ristretto255.NewIdentityElement().ScalarMult(final.Z2, v.Gens.BBlinding)
	rhsX2 := ristretto255.NewIdentityElement().Add(initial.A3, ristretto255.NewIdentityElement().ScalarMult(c, v.Cipher2.X))
	lhsY2 := ristretto255.NewIdentityElement().VarTimeMultiScalarMult(
		[]*ristretto255.Scalar{final.Zv, final.Z2},
		[]*ristretto255.Element{v.Gens.B, v.PubKey2.PubKey},
	)
	rhsY2 := ristretto255.NewIdentityElement().Add(initial.A4, ristretto255.NewIdentityElement().ScalarMult(c, v.Cipher2.Y))
	if !curve.EqualPoints(lhsX2, rhsX2) || !curve.EqualPoints(lhsY2, rhsY2) {
		return &CipherEqualityCheckError{Check: 2}
	}

	return nil
}

// ProveCipherEquality runs the full prover side in one call.
func ProveCipherEquality(t *transcript.Transcript, prover CipherEqualityProver, rand io.Reader) (CipherEqualityInitialMessage, CipherEqualityFinalResponse, error) {
	proverT, _, err := prover.CreateTranscriptRNG(t, rand)
	if err != nil {
		return CipherEqualityInitialMessage{}, CipherEqualityFinalResponse{}, err
	}
	fp, initial := prover.GenerateInitialMessage(proverT)

	challengeT := t.Clone()
	challengeT.AppendPoint("A1", initial.A1)
	challengeT.AppendPoint("A2", initial.A2)
	challengeT.AppendPoint("A3", initial.A3)
	challengeT.AppendPoint("A4", initial.A4)
	c := challengeT.ScalarChallenge(CipherEqualityLabel + "/challenge")

	return initial, fp.ApplyChallenge(c), nil
}

// VerifyCipherEquality re-derives the challenge and checks the final response.
func VerifyCipherEquality(t *transcript.Transcript, verifier CipherEqualityVerifier, initial CipherEqualityInitialMessage, final CipherEqualityFinalResponse) error {
	challengeT := t.Clone()
	challengeT.AppendPoint("A1", initial.A1)
	challengeT.AppendPoint("A2", initial.A2)
	challengeT.AppendPoint("A3", initial.A3)
	challengeT.AppendPoint("A4", initial.A4)
	c := challengeT.ScalarChallenge(CipherEqualityLabel + "/challenge")

	return verifier.Verify(initial, c, final)
}
