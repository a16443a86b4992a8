// Package transcript adapts the teacher's domain-separated transcript engine (package mercat, this project's own
// primitive layer) into the strong Fiat–Shamir transcript the Sigma proof framework needs: validated point
// absorption, scalar challenge derivation, and witness-bound prover randomness.
package transcript

import (
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat"
	"github.com/mercat-network/mercat/curve"
)

// A Transcript absorbs a proof's public inputs and derives its challenge and prover randomness. It wraps a
// *mercat.Protocol instead of reimplementing a Merlin-style transcript from scratch, following the teacher's own
// pattern in schemes/complex/sig and schemes/complex/vrf of building challenge derivation directly on
// Protocol.Mix/Derive/Fork.
type Transcript struct {
	p *mercat.Protocol
}

// New starts a transcript for a proof identified by domainLabel (e.g. "mercat/correctness"). Every concrete proof
// family uses a distinct label so that challenges for one relation can never be replayed against another.
func New(domainLabel string) *Transcript {
	return &Transcript{p: mercat.New(domainLabel)}
}

// AppendPoint absorbs a labeled group element's canonical encoding.
func (t *Transcript) AppendPoint(label string, p *ristretto255.Element) {
	t.p.Mix(label, p.Bytes())
}

// AppendValidatedPoint absorbs a labeled group element after checking it decodes canonically and is not the identity
// element, returning curve.ErrInvalidPoint if either check fails. This is the "append_validated_point" rejection
// rule from spec.md §4.2: a transcript must never silently accept a malformed or identity public input.
func (t *Transcript) AppendValidatedPoint(label string, encoded []byte) (*ristretto255.Element, error) {
	p, err := curve.DecodeNonIdentityPoint(encoded)
	if err != nil {
		return nil, err
	}
	t.AppendPoint(label, p)
	return p, nil
}

// AppendScalar absorbs a labeled scalar's canonical encoding. Scalars are public proof inputs (e.g. a declared
// plaintext value in CorrectEncryption); witnesses are never appended to the transcript directly — they only
// influence it through ProverRNG.
func (t *Transcript) AppendScalar(label string, s *ristretto255.Scalar) {
	t.p.Mix(label, s.Bytes())
}

// AppendUint64 absorbs a labeled 64-bit value, used for public scalars like a declared plaintext amount before it is
// lifted onto the scalar field.
func (t *Transcript) AppendUint64(label string, v uint64) {
	var b [8]byte
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	t.p.Mix(label, b[:])
}

// AppendBytes absorbs arbitrary labeled bytes, e.g. a ciphertext's raw encoding when the proof treats it as opaque.
func (t *Transcript) AppendBytes(label string, b []byte) {
	t.p.Mix(label, b)
}

// ScalarChallenge derives a uniformly distributed challenge scalar from the transcript state so far. Call this only
// after every public input has been appended; anything appended afterward does not bind the challenge already
// produced.
func (t *Transcript) ScalarChallenge(label string) *ristretto255.Scalar {
	c, err := ristretto255.NewScalar().SetUniformBytes(t.p.Derive(label, nil, 64))
	if err != nil {
		// Derive always returns the requested 64 bytes; SetUniformBytes cannot fail on 64 bytes.
		panic("transcript: unreachable scalar reduction failure: " + err.Error())
	}
	return c
}

// Clone returns an independent copy of the transcript state, e.g. to branch the same prefix into several
// OR-proof sub-transcripts (AssetIdMembership, RangeProof).
func (t *Transcript) Clone() *Transcript {
	return &Transcript{p: t.p.Clone()}
}

// ProverRNG derives a transcript-bound source of prover randomness. It forks the transcript into "prover" and
// "verifier" branches — exactly as the teacher's sig.Sign and vrf.Prove do — mixes the witness bytes and the
// caller-supplied entropy into the prover branch, and returns that branch for deriving nonce scalars.
//
// Binding the nonce to both the witness and external randomness means a broken or adversarial RNG cannot, by itself,
// cause nonce reuse or leak the witness: the transcript state (which already depends on every public input) and the
// witness jointly determine the nonce even if rand is all-zero.
func ProverRNG(t *Transcript, witness []byte, rand io.Reader) (*Transcript, *Transcript, error) {
	entropy := make([]byte, 32)
	if _, err := io.ReadFull(rand, entropy); err != nil {
		return nil, nil, err
	}

	clones := t.p.ForkN("role", []byte("prover"), []byte("verifier"))
	prover, verifier := &Transcript{p: clones[0]}, &Transcript{p: clones[1]}
	prover.p.Mix("witness", witness)
	prover.p.Mix("entropy", entropy)
	return prover, verifier, nil
}

// DeriveScalar derives a scalar from the transcript under the given label, consuming and advancing its state. Used by
// ProverRNG's caller to turn the bound prover branch into a concrete nonce scalar.
func (t *Transcript) DeriveScalar(label string) *ristretto255.Scalar {
	s, err := ristretto255.NewScalar().SetUniformBytes(t.p.Derive(label, nil, 64))
	if err != nil {
		panic("transcript: unreachable scalar reduction failure: " + err.Error())
	}
	return s
}
