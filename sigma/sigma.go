// Package sigma defines the shared vocabulary for the three-move (commit, challenge, response) Sigma protocol role
// machine spec.md §4.3 describes:
//
//	ProverAwaitingChallenge —create_transcript_rng→ TranscriptRng
//	                        —generate_initial_message(rng)→ (Prover, InitialMessage)
//	Prover                  —apply_challenge(c)→ FinalResponse
//	Verifier                —verify(c, initial, final)→ error
//
// Each concrete proof in package proofs is its own closed set of types implementing this shape directly — a
// "ProverAwaitingChallenge", a "Prover", an "InitialMessage", a "FinalResponse", and a "Verifier" per relation — rather
// than a single generic engine. That mirrors how the teacher's own schemes (sig, vrf) each implement one concrete
// Sigma-shaped protocol with its own types instead of sharing an abstract "Proof" interface; this package only holds
// the pieces genuinely common to all of them.
package sigma

import "github.com/gtank/ristretto255"

// Challenge is the verifier's challenge scalar, derived deterministically from the transcript (spec.md's
// ZKPChallenge). All five concrete proof families in package proofs share this type.
type Challenge = *ristretto255.Scalar

// InitialMessage is the first-move commitment a prover publishes before a challenge is known. The correctness,
// well-formedness and cipher-equality proofs each define their own initial-message struct satisfying this interface;
// the asset-id membership and range proofs have no such struct.
type InitialMessage interface {
	// Label identifies this proof family's domain separator, e.g. "mercat/correctness": the same label constant the
	// family's own challenge derivation uses.
	Label() string
}
