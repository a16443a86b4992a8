// Package proofs implements the five concrete Sigma-style zero-knowledge proofs MERCAT needs (spec.md §4.4):
// CorrectEncryption, WellFormedness, CipherEquality, AssetIdMembership, and RangeProof. Each follows the same
// three-move commit/challenge/response shape described in package sigma, with its own relation.
package proofs

import "fmt"

// CorrectnessCheckError reports which of CorrectEncryption's two verification equations failed, matching spec.md's
// CorrectnessFinalResponseVerificationError{check: 1|2}.
type CorrectnessCheckError struct {
	Check int
}

func (e *CorrectnessCheckError) Error() string {
	return fmt.Sprintf("proofs: correctness proof verification failed (check %d)", e.Check)
}

// WellFormednessCheckError reports which of WellFormedness's two verification equations failed.
type WellFormednessCheckError struct {
	Check int
}

func (e *WellFormednessCheckError) Error() string {
	return fmt.Sprintf("proofs: well-formedness proof verification failed (check %d)", e.Check)
}

// CipherEqualityCheckError reports which of CipherEquality's two verification equations failed.
type CipherEqualityCheckError struct {
	Check int
}

func (e *CipherEqualityCheckError) Error() string {
	return fmt.Sprintf("proofs: cipher equality proof verification failed (check %d)", e.Check)
}

// AssetIdMembershipError is returned when none of the OR-branches of an asset-id membership proof verify.
type AssetIdMembershipError struct{}

func (e *AssetIdMembershipError) Error() string {
	return "proofs: asset-id membership proof verification failed"
}

// RangeProofError reports which bit (or the aggregate sum check) failed verification in a range proof.
type RangeProofError struct {
	Bit int // -1 for the aggregate sum check
}

func (e *RangeProofError) Error() string {
	if e.Bit < 0 {
		return "proofs: range proof aggregate sum check failed"
	}
	return fmt.Sprintf("proofs: range proof bit %d verification failed", e.Bit)
}
