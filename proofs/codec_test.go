package proofs_test

import (
	"testing"

	"github.com/mercat-network/mercat/curve"
	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/internal/testdata"
	"github.com/mercat-network/mercat/proofs"
)

func TestCorrectnessBundleRoundTrip(t *testing.T) {
	drbg := testdata.New("codec correctness")
	gens := elgamal.DefaultPedersenGens()
	sk, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	pk := sk.PublicKey(gens)
	w, err := elgamal.NewCommitmentWitness(11, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	prover := proofs.NewCorrectnessProver(w, pk, gens)
	initial, final, err := proofs.ProveCorrectEncryption(correctnessTranscript(), prover, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	initialBytes, err := initial.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var gotInitial proofs.CorrectnessInitialMessage
	if err := gotInitial.UnmarshalBinary(initialBytes); err != nil {
		t.Fatal(err)
	}
	if !curve.EqualPoints(gotInitial.A, initial.A) || !curve.EqualPoints(gotInitial.B, initial.B) {
		t.Fatal("decoded initial message does not match the original")
	}

	finalBytes, err := final.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var gotFinal proofs.CorrectnessFinalResponse
	if err := gotFinal.UnmarshalBinary(finalBytes); err != nil {
		t.Fatal(err)
	}
	if !curve.EqualScalars(gotFinal.Z, final.Z) {
		t.Fatal("decoded final response does not match the original")
	}
}

func TestWellFormednessBundleRoundTrip(t *testing.T) {
	drbg := testdata.New("codec wellformedness")
	gens := elgamal.DefaultPedersenGens()
	sk, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	pk := sk.PublicKey(gens)
	w, err := elgamal.NewCommitmentWitness(5, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	prover := proofs.NewWellFormednessProver(w, pk, gens)
	initial, final, err := proofs.ProveWellFormedness(wellFormednessTranscript(), prover, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	initialBytes, err := initial.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var gotInitial proofs.WellFormednessInitialMessage
	if err := gotInitial.UnmarshalBinary(initialBytes); err != nil {
		t.Fatal(err)
	}
	if !curve.EqualPoints(gotInitial.A, initial.A) || !curve.EqualPoints(gotInitial.B, initial.B) {
		t.Fatal("decoded initial message does not match the original")
	}

	finalBytes, err := final.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var gotFinal proofs.WellFormednessFinalResponse
	if err := gotFinal.UnmarshalBinary(finalBytes); err != nil {
		t.Fatal(err)
	}
	if !curve.EqualScalars(gotFinal.Z1, final.Z1) || !curve.EqualScalars(gotFinal.Z2, final.Z2) {
		t.Fatal("decoded final response does not match the original")
	}
}

func TestCipherEqualityBundleRoundTrip(t *testing.T) {
	drbg := testdata.New("codec cipher equality")
	gens := elgamal.DefaultPedersenGens()
	sk1, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	sk2, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	pk1, pk2 := sk1.PublicKey(gens), sk2.PublicKey(gens)
	w1, w2 := newCipherEqualityWitnesses(drbg, 20)

	prover := proofs.NewCipherEqualityProver(w1, w2, pk1, pk2, gens)
	initial, final, err := proofs.ProveCipherEquality(cipherEqualityTranscript(), prover, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	initialBytes, err := initial.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var gotInitial proofs.CipherEqualityInitialMessage
	if err := gotInitial.UnmarshalBinary(initialBytes); err != nil {
		t.Fatal(err)
	}
	if !curve.EqualPoints(gotInitial.A1, initial.A1) || !curve.EqualPoints(gotInitial.A4, initial.A4) {
		t.Fatal("decoded initial message does not match the original")
	}

	finalBytes, err := final.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var gotFinal proofs.CipherEqualityFinalResponse
	if err := gotFinal.UnmarshalBinary(finalBytes); err != nil {
		t.Fatal(err)
	}
	if !curve.EqualScalars(gotFinal.Zv, final.Zv) {
		t.Fatal("decoded final response does not match the original")
	}
}

func TestAssetIdMembershipProofRoundTrip(t *testing.T) {
	drbg := testdata.New("codec asset id membership")
	gens := elgamal.DefaultPedersenGens()
	sk, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	pk := sk.PublicKey(gens)
	w, err := elgamal.NewCommitmentWitness(3, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	cipher := elgamal.Encrypt(pk, w, gens)

	proof, err := proofs.ProveAssetIdMembership(assetIDMembershipTranscript(cipher), allowedAssetIDs, 2, w.Blinding, pk, cipher, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	data, err := proof.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got proofs.AssetIdMembershipProof
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if len(got.Branches) != len(proof.Branches) {
		t.Fatalf("decoded branch count = %d, want %d", len(got.Branches), len(proof.Branches))
	}
	if err := proofs.VerifyAssetIdMembership(assetIDMembershipTranscript(cipher), allowedAssetIDs, pk, cipher, gens, got); err != nil {
		t.Fatalf("round-tripped proof failed to verify: %v", err)
	}
}

func TestRangeProofRoundTrip(t *testing.T) {
	drbg := testdata.New("codec range proof")
	gens := elgamal.DefaultPedersenGens()
	const nbits = 8
	sk, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	pk := sk.PublicKey(gens)
	w, err := elgamal.NewCommitmentWitness(17, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	cipher := elgamal.Encrypt(pk, w, gens)

	proof, err := proofs.ProveRange(rangeProofTranscript(), 17, w.Blinding, pk, gens, nbits, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	data, err := proof.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got proofs.RangeProof
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if len(got.BitCiphers) != nbits {
		t.Fatalf("decoded bit count = %d, want %d", len(got.BitCiphers), nbits)
	}
	if err := proofs.VerifyRange(rangeProofTranscript(), cipher, pk, gens, got); err != nil {
		t.Fatalf("round-tripped proof failed to verify: %v", err)
	}
}
