// Package curve collects the Ristretto255 group and scalar helpers shared across the MERCAT core: canonical point
// encoding, the independent Pedersen blinding generator, and constant-time equality checks. Everything here is a thin
// convenience layer over github.com/gtank/ristretto255 — the proof and protocol packages use *ristretto255.Scalar and
// *ristretto255.Element directly rather than wrapping them in MERCAT-specific types, the same way the teacher's own
// schemes (sig, vrf) consume the group directly.
package curve

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat"
)

// PointSize is the length, in bytes, of a canonical compressed Ristretto255 element.
const PointSize = 32

// ScalarSize is the length, in bytes, of a canonical little-endian Ristretto255 scalar.
const ScalarSize = 32

// CompressedPoint is the 32-byte canonical encoding of a Ristretto255 group element.
type CompressedPoint [PointSize]byte

// ErrInvalidPoint is returned when a byte string is not the canonical encoding of a Ristretto255 element, or decodes
// to the identity element where a non-identity element is required.
var ErrInvalidPoint = errors.New("curve: invalid point encoding")

// ErrInvalidScalar is returned when a byte string is not the canonical little-endian encoding of a Ristretto255
// scalar reduced modulo the group order.
var ErrInvalidScalar = errors.New("curve: invalid scalar encoding")

// RandomScalar draws a uniformly random scalar from r, which must supply at least 64 bytes of cryptographically
// secure randomness (r is typically crypto/rand.Reader).
func RandomScalar(r io.Reader) (*ristretto255.Scalar, error) {
	var buf [64]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	s, err := ristretto255.NewScalar().SetUniformBytes(buf[:])
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DecodePoint parses a canonical compressed Ristretto255 element. It rejects non-canonical encodings.
func DecodePoint(b []byte) (*ristretto255.Element, error) {
	e, err := ristretto255.NewIdentityElement().SetCanonicalBytes(b)
	if err != nil {
		return nil, ErrInvalidPoint
	}
	return e, nil
}

// DecodeNonIdentityPoint parses a canonical compressed Ristretto255 element and rejects the identity element. Used
// wherever a public key, generator, or ciphertext component must be a non-identity group element (spec's
// "append_validated_point" rule).
func DecodeNonIdentityPoint(b []byte) (*ristretto255.Element, error) {
	e, err := DecodePoint(b)
	if err != nil {
		return nil, err
	}
	if e.Equal(ristretto255.NewIdentityElement()) == 1 {
		return nil, ErrInvalidPoint
	}
	return e, nil
}

// DecodeScalar parses a canonical little-endian scalar, strictly less than the group order.
func DecodeScalar(b []byte) (*ristretto255.Scalar, error) {
	s, err := ristretto255.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return nil, ErrInvalidScalar
	}
	return s, nil
}

// Generator returns the Ristretto255 basepoint, G.
func Generator() *ristretto255.Element {
	return ristretto255.NewGeneratorElement()
}

// HashToPoint derives a second, independent group element from a domain label by hashing it through the teacher's
// transcript (the same "mix a label, derive 64 bytes, reduce onto the curve" idiom the teacher's vrf scheme uses to
// hash an arbitrary message onto a curve point). Distinct labels yield independent generators with overwhelming
// probability, since finding their discrete log relationship would require inverting TurboSHAKE128.
func HashToPoint(label string) *ristretto255.Element {
	p := mercat.New("mercat/generator")
	p.Mix("label", []byte(label))
	e, err := ristretto255.NewIdentityElement().SetUniformBytes(p.Derive("point", nil, 64))
	if err != nil {
		// Derive always returns 64 bytes, and SetUniformBytes never fails on 64 bytes of input.
		panic("curve: unreachable SetUniformBytes failure: " + err.Error())
	}
	return e
}

// ScalarFromUint64 lifts a 64-bit public value onto the scalar field. Used for declared plaintext amounts and other
// small integers that appear as public Sigma-proof inputs (never for secret witnesses, which are sampled uniformly).
func ScalarFromUint64(v uint64) *ristretto255.Scalar {
	var buf [ScalarSize]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	s, err := ristretto255.NewScalar().SetCanonicalBytes(buf[:])
	if err != nil {
		// buf encodes a value < 2^64, far below the Ristretto255 group order; this can never fail.
		panic("curve: unreachable canonical scalar failure: " + err.Error())
	}
	return s
}

// EqualPoints reports whether two elements are equal, in constant time.
func EqualPoints(a, b *ristretto255.Element) bool {
	return a.Equal(b) == 1
}

// EqualScalars reports whether two scalars are equal, in constant time.
func EqualScalars(a, b *ristretto255.Scalar) bool {
	return a.Equal(b) == 1
}

// RandomBytes returns n bytes read from crypto/rand.Reader, the caller-supplied entropy source used throughout this
// module wherever spec.md's RNG discipline calls for "a cryptographically secure RNG passed by reference."
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic("curve: system randomness source failed: " + err.Error())
	}
	return b
}
