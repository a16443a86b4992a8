// Package elgamal implements the additively-homomorphic ElGamal encryption layer over Ristretto255 described in
// spec.md §3 and §4.1: key pairs, encryption of a (value, blinding) commitment witness, homomorphic addition and
// subtraction of ciphertexts, and small-message decryption via a bounded discrete-log search.
package elgamal

import (
	"crypto/subtle"
	"errors"
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/curve"
)

// PedersenGens holds the two independent generators used throughout the core: B, the value base (the Ristretto255
// basepoint), and BBlinding, the randomness base. Both are read-only and process-wide — construct one with
// DefaultPedersenGens and share it by reference, the way the teacher's schemes share a single domain string rather
// than re-deriving constants per call (spec.md §9, "shared ownership of generators").
type PedersenGens struct {
	B         *ristretto255.Element
	BBlinding *ristretto255.Element
}

// DefaultPedersenGens returns the MERCAT-standard generator pair: B is the Ristretto255 basepoint, and BBlinding is an
// independent generator derived by hashing a fixed domain label (curve.HashToPoint), so that no one knows its discrete
// log with respect to B.
func DefaultPedersenGens() *PedersenGens {
	return &PedersenGens{
		B:         curve.Generator(),
		BBlinding: curve.HashToPoint("mercat/pedersen/blinding-generator"),
	}
}

// CommitmentWitness is the secret pair backing both a Pedersen commitment and an ElGamal ciphertext: the plaintext
// value (interpreted as a scalar) and the blinding factor. It must be zeroized after use; see Zeroize.
type CommitmentWitness struct {
	Value    uint64
	Blinding *ristretto255.Scalar
}

// NewCommitmentWitness builds a witness for value with a fresh, uniformly random blinding factor drawn from rand
// (which must supply 64 bytes of secure randomness; crypto/rand.Reader is the typical choice).
func NewCommitmentWitness(value uint64, rand io.Reader) (CommitmentWitness, error) {
	blinding, err := curve.RandomScalar(rand)
	if err != nil {
		return CommitmentWitness{}, err
	}
	return CommitmentWitness{Value: value, Blinding: blinding}, nil
}

// ValueScalar returns the witness's value lifted onto the scalar field.
func (w CommitmentWitness) ValueScalar() *ristretto255.Scalar {
	return curve.ScalarFromUint64(w.Value)
}

// Zeroize scrubs the witness's secret blinding factor. Callers must call this once a witness's transaction has
// completed; CommitmentWitness carries secret material for the lifetime of a single protocol step and must not
// outlive it (spec.md §3 "Ownership").
func (w *CommitmentWitness) Zeroize() {
	zeroScalar(w.Blinding)
	w.Value = 0
}

// zeroScalar overwrites s's canonical representation with zero. ristretto255.Scalar has no exported zeroing method, so
// this scrubs it the same way the library itself constructs values: by re-deriving from an all-zero canonical
// encoding, which is always valid (0 is less than the group order).
func zeroScalar(s *ristretto255.Scalar) {
	if s == nil {
		return
	}
	var zero [curve.ScalarSize]byte
	_, _ = s.SetCanonicalBytes(zero[:])
}

// ElgamalSecretKey is an ElGamal private key: a scalar satisfying PubKey = secret·BBlinding. It must be zeroized on
// drop.
type ElgamalSecretKey struct {
	secret *ristretto255.Scalar
}

// ElgamalPublicKey is an ElGamal public key: a group element, pub_key = secret·BBlinding.
type ElgamalPublicKey struct {
	PubKey *ristretto255.Element
}

// NewSecretKey samples a fresh ElGamal secret key.
func NewSecretKey(rand io.Reader) (ElgamalSecretKey, error) {
	s, err := curve.RandomScalar(rand)
	if err != nil {
		return ElgamalSecretKey{}, err
	}
	return ElgamalSecretKey{secret: s}, nil
}

// SecretKeyFromScalar wraps an already-derived scalar as an ElgamalSecretKey, for callers reconstructing a key from
// stored bytes (see curve.DecodeScalar). It does not validate that s was drawn uniformly; that is the caller's
// responsibility when s comes from persistent storage rather than NewSecretKey.
func SecretKeyFromScalar(s *ristretto255.Scalar) ElgamalSecretKey {
	return ElgamalSecretKey{secret: s}
}

// PublicKey derives the secret key's corresponding public key under the given generator pair.
func (k ElgamalSecretKey) PublicKey(gens *PedersenGens) ElgamalPublicKey {
	return ElgamalPublicKey{PubKey: ristretto255.NewIdentityElement().ScalarMult(k.secret, gens.BBlinding)}
}

// Scalar exposes the raw secret scalar for use in proof witnesses (e.g. CipherEquality, which must reason about two
// secret keys at once). Treat the result as secret: it aliases the key's internal state.
func (k ElgamalSecretKey) Scalar() *ristretto255.Scalar {
	return k.secret
}

// Zeroize scrubs the secret key's scalar.
func (k *ElgamalSecretKey) Zeroize() {
	zeroScalar(k.secret)
}

// CipherText is an ElGamal ciphertext pair (x, y): x = blinding·BBlinding, y = value·B + blinding·pub_key. CipherText
// supports componentwise addition and subtraction, the additive homomorphism spec.md §3/§4.1 describes:
// Enc(a) ⊕ Enc(b) = Enc(a+b) with summed randomness.
type CipherText struct {
	X *ristretto255.Element
	Y *ristretto255.Element
}

// Encrypt computes the ElGamal encryption of w under pk using generators gens: x = w.Blinding·BBlinding,
// y = w.Value·B + w.Blinding·pub_key (spec.md §4.1).
func Encrypt(pk ElgamalPublicKey, w CommitmentWitness, gens *PedersenGens) CipherText {
	x := ristretto255.NewIdentityElement().ScalarMult(w.Blinding, gens.BBlinding)
	y := ristretto255.NewIdentityElement().VarTimeMultiScalarMult(
		[]*ristretto255.Scalar{w.ValueScalar(), w.Blinding},
		[]*ristretto255.Element{gens.B, pk.PubKey},
	)
	return CipherText{X: x, Y: y}
}

// Identity returns the additive identity ciphertext (an encryption of 0 with zero blinding): the zero element in
// both coordinates.
func Identity() CipherText {
	return CipherText{X: ristretto255.NewIdentityElement(), Y: ristretto255.NewIdentityElement()}
}

// Add returns the homomorphic sum ct ⊕ other: an encryption of the sum of the two plaintexts under summed
// randomness, without either plaintext or blinding ever being recovered.
func (ct CipherText) Add(other CipherText) CipherText {
	return CipherText{
		X: ristretto255.NewIdentityElement().Add(ct.X, other.X),
		Y: ristretto255.NewIdentityElement().Add(ct.Y, other.Y),
	}
}

// Sub returns the homomorphic difference ct ⊖ other.
func (ct CipherText) Sub(other CipherText) CipherText {
	return CipherText{
		X: ristretto255.NewIdentityElement().Subtract(ct.X, other.X),
		Y: ristretto255.NewIdentityElement().Subtract(ct.Y, other.Y),
	}
}

// Equal reports whether two ciphertexts are identical (not whether they decrypt to the same value — distinct
// randomness yields distinct ciphertexts for the same plaintext).
func (ct CipherText) Equal(other CipherText) bool {
	return curve.EqualPoints(ct.X, other.X) && curve.EqualPoints(ct.Y, other.Y)
}

// ErrDecryptionOutOfRange is returned by Decrypt when the plaintext cannot be found within the searched range,
// spec.md §4.1's DecryptionOutOfRange.
var ErrDecryptionOutOfRange = errors.New("elgamal: decryption out of searched range")

// DefaultSearchBound is the exclusive upper bound on the plaintext Decrypt searches by default: the full 32-bit
// plaintext space, covered with a baby-step table of 2^16 entries. DecryptBounded accepts a smaller bound.
const DefaultSearchBound = 1 << 32

// Decrypt recovers the plaintext value encrypted under sk's matching public key by computing M = y − sk·x and
// brute-forcing the discrete log m·B = M for m in [0, DefaultSearchBound) via baby-step/giant-step.
func Decrypt(sk ElgamalSecretKey, ct CipherText, gens *PedersenGens) (uint64, error) {
	return DecryptBounded(sk, ct, gens, DefaultSearchBound)
}

// DecryptBounded is Decrypt with an explicit search bound (exclusive upper bound on the plaintext, at most 2^32 per
// spec.md §4.1).
func DecryptBounded(sk ElgamalSecretKey, ct CipherText, gens *PedersenGens, bound uint64) (uint64, error) {
	m := ristretto255.NewIdentityElement().ScalarMult(sk.secret, ct.X)
	m = ristretto255.NewIdentityElement().Subtract(ct.Y, m)
	return bsgs(m, gens.B, bound)
}

// bsgs finds m in [0, bound) such that m·base == target, using baby-step/giant-step with a table of size
// ceil(sqrt(bound)) — spec.md §4.1's "table of size ≈2^16" for the default 2^32 plaintext space, scaled to whatever
// bound the caller supplies.
func bsgs(target, base *ristretto255.Element, bound uint64) (uint64, error) {
	if bound == 0 {
		return 0, ErrDecryptionOutOfRange
	}

	m := isqrtCeil(bound)
	if m == 0 {
		m = 1
	}

	// Baby steps: table[encode(j·base)] = j, for j in [0, m).
	table := make(map[[curve.PointSize]byte]uint64, m)
	acc := ristretto255.NewIdentityElement()
	for j := uint64(0); j < m; j++ {
		var key [curve.PointSize]byte
		copy(key[:], acc.Bytes())
		if _, ok := table[key]; !ok {
			table[key] = j
		}
		acc = ristretto255.NewIdentityElement().Add(acc, base)
	}

	// Giant steps: for i in [0, m), check whether target − i·m·base lands in the table.
	negM := ristretto255.NewScalar().Negate(curve.ScalarFromUint64(m))
	giantStrideNeg := ristretto255.NewIdentityElement().ScalarMult(negM, base)

	cur := target
	for i := uint64(0); i < m; i++ {
		var key [curve.PointSize]byte
		copy(key[:], cur.Bytes())
		if j, ok := table[key]; ok {
			candidate := i*m + j
			if candidate < bound {
				return candidate, nil
			}
		}
		cur = ristretto255.NewIdentityElement().Add(cur, giantStrideNeg)
	}

	return 0, ErrDecryptionOutOfRange
}

// isqrtCeil returns ceil(sqrt(n)) for n > 0 using integer Newton's method.
func isqrtCeil(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	if x*x < n {
		x++
	}
	return x
}

// ConstantTimeCompareBytes exposes a constant-time byte comparison for callers that need to compare encoded
// ciphertext or key material without leaking timing information (spec.md's emphasis on constant-time equality for
// scalars and points).
func ConstantTimeCompareBytes(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
