package proofs

import (
	"fmt"
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/curve"
	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/transcript"
)

// AssetIdMembershipLabel is the domain separator for the AssetIdMembership relation: proof that an encrypted asset id
// is one of a publicly known allowlist, without revealing which entry (spec.md §4.4, "AssetIdMembership"). It is a
// Cramer–Damgård–Schoenmakers OR-composition of one CorrectEncryption-shaped Schnorr proof per allowlist entry.
const AssetIdMembershipLabel = "mercat/asset-id-membership"

// AssetIdMembershipBranch is one allowlist entry's commitment/response pair within the OR-proof: the simulated or
// real (A, B) commitment, its challenge share, and its response.
type AssetIdMembershipBranch struct {
	A *ristretto255.Element
	B *ristretto255.Element
	C *ristretto255.Scalar // this branch's challenge share
	Z *ristretto255.Scalar
}

// AssetIdMembershipProof is the complete OR-proof: one branch per allowed asset id, in the same order as the
// allowlist the verifier checks against.
type AssetIdMembershipProof struct {
	Branches []AssetIdMembershipBranch
}

// ProveAssetIdMembership proves that cipher encrypts allowedIDs[realIndex] under pubKey with blinding r, without
// revealing realIndex. t must already have the ciphertext, public key, and allowlist mixed in by the caller before
// this is invoked, so the derived per-branch randomness is bound to the full public statement.
func ProveAssetIdMembership(t *transcript.Transcript, allowedIDs []uint64, realIndex int, r *ristretto255.Scalar, pubKey elgamal.ElgamalPublicKey, cipher elgamal.CipherText, gens *elgamal.PedersenGens, rand io.Reader) (AssetIdMembershipProof, error) {
	if realIndex < 0 || realIndex >= len(allowedIDs) {
		return AssetIdMembershipProof{}, fmt.Errorf("proofs: asset-id membership real index %d out of range [0,%d)", realIndex, len(allowedIDs))
	}

	witness := append([]byte{}, r.Bytes()...)
	proverT, _, err := transcript.ProverRNG(t, witness, rand)
	if err != nil {
		return AssetIdMembershipProof{}, err
	}

	n := len(allowedIDs)
	branches := make([]AssetIdMembershipBranch, n)

	var uReal *ristretto255.Scalar
	for j := 0; j < n; j++ {
		if j == realIndex {
			uReal = proverT.DeriveScalar(fmt.Sprintf("nonce-%d", j))
			branches[j].A = ristretto255.NewIdentityElement().ScalarMult(uReal, gens.BBlinding)
			branches[j].B = ristretto255.NewIdentityElement().ScalarMult(uReal, pubKey.PubKey)
			continue
		}

		cj := proverT.DeriveScalar(fmt.Sprintf("sim-challenge-%d", j))
		zj := proverT.DeriveScalar(fmt.Sprintf("sim-response-%d", j))
		branches[j].C = cj
		branches[j].Z = zj

		negCj := ristretto255.NewScalar().Negate(cj)
		branches[j].A = ristretto255.NewIdentityElement().VarTimeMultiScalarMult(
			[]*ristretto255.Scalar{zj, negCj},
			[]*ristretto255.Element{gens.BBlinding, cipher.X},
		)

		aB := ristretto255.NewIdentityElement().ScalarMult(curve.ScalarFromUint64(allowedIDs[j]), gens.B)
		yMinusAB := ristretto255.NewIdentityElement().Subtract(cipher.Y, aB)
		branches[j].B = ristretto255.NewIdentityElement().VarTimeMultiScalarMult(
			[]*ristretto255.Scalar{zj, negCj},
			[]*ristretto255.Element{pubKey.PubKey, yMinusAB},
		)
	}

	challengeT := t.Clone()
	for j, br := range branches {
		challengeT.AppendPoint(fmt.Sprintf("A-%d", j), br.A)
		challengeT.AppendPoint(fmt.Sprintf("B-%d", j), br.B)
	}
	c := challengeT.ScalarChallenge(AssetIdMembershipLabel + "/challenge")

	sumOthers := ristretto255.NewScalar()
	for j := 0; j < n; j++ {
		if j != realIndex {
			sumOthers = ristretto255.NewScalar().Add(sumOthers, branches[j].C)
		}
	}
	cReal := ristretto255.NewScalar().Subtract(c, sumOthers)
	branches[realIndex].C = cReal
	branches[realIndex].Z = ristretto255.NewScalar().Add(uReal, ristretto255.NewScalar().Multiply(cReal, r))

	return AssetIdMembershipProof{Branches: branches}, nil
}

// VerifyAssetIdMembership re-derives the overall challenge from the proof's branch commitments and checks that every
// branch's equation holds and that the branch challenge shares sum to the overall challenge.
func VerifyAssetIdMembership(t *transcript.Transcript, allowedIDs []uint64, pubKey elgamal.ElgamalPublicKey, cipher elgamal.CipherText, gens *elgamal.PedersenGens, proof AssetIdMembershipProof) error {
	if len(proof.Branches) != len(allowedIDs) {
		return &AssetIdMembershipError{}
	}

	challengeT := t.Clone()
	for j, br := range proof.Branches {
		challengeT.AppendPoint(fmt.Sprintf("A-%d", j), br.A)
		challengeT.AppendPoint(fmt.Sprintf("B-%d", j), br.B)
	}
	c := challengeT.ScalarChallenge(AssetIdMembershipLabel + "/challenge")

	sum := ristretto255.NewScalar()
	for j, br := range proof.Branches {
		lhsA := ristretto255.NewIdentityElement().ScalarMult(br.Z, gens.BBlinding)
		rhsA := ristretto255.NewIdentityElement().Add(br.A, ristretto255.NewIdentityElement().ScalarMult(br.C, cipher.X))
		if !curve.EqualPoints(lhsA, rhsA) {
			return &AssetIdMembershipError{}
		}

		aB := ristretto255.NewIdentityElement().ScalarMult(curve.ScalarFromUint64(allowedIDs[j]), gens.B)
		yMinusAB := ristretto255.NewIdentityElement().Subtract(cipher.Y, aB)
		lhsB := ristretto255.NewIdentityElement().ScalarMult(br.Z, pubKey.PubKey)
		rhsB := ristretto255.NewIdentityElement().Add(br.B, ristretto255.NewIdentityElement().ScalarMult(br.C, yMinusAB))
		if !curve.EqualPoints(lhsB, rhsB) {
			return &AssetIdMembershipError{}
		}

		sum = ristretto255.NewScalar().Add(sum, br.C)
	}

	if !curve.EqualScalars(sum, c) {
		return &AssetIdMembershipError{}
	}
	return nil
}
