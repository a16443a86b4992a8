package curve_test

import (
	"errors"
	"testing"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/curve"
	"github.com/mercat-network/mercat/internal/testdata"
)

var errReadFailed = errors.New("curve test: read failed")

func TestRandomScalarDistinct(t *testing.T) {
	drbg := testdata.New("curve random scalar")
	a, err := curve.RandomScalar(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	b, err := curve.RandomScalar(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	if curve.EqualScalars(a, b) {
		t.Fatal("two independently sampled scalars collided")
	}
}

func TestRandomScalarFailingReader(t *testing.T) {
	_, err := curve.RandomScalar(&testdata.ErrReader{Err: errReadFailed})
	if err == nil {
		t.Fatal("should have failed on a failing reader")
	}
}

func TestDecodePointRoundTrip(t *testing.T) {
	p := curve.Generator()
	encoded := p.Bytes()

	decoded, err := curve.DecodePoint(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !curve.EqualPoints(p, decoded) {
		t.Fatal("decoded point does not equal the original")
	}
}

func TestDecodePointRejectsGarbage(t *testing.T) {
	garbage := make([]byte, curve.PointSize)
	for i := range garbage {
		garbage[i] = 0xff
	}
	if _, err := curve.DecodePoint(garbage); err == nil {
		t.Fatal("should have rejected a non-canonical encoding")
	}
}

func TestDecodeNonIdentityPointRejectsIdentity(t *testing.T) {
	identity := ristretto255.NewIdentityElement()
	if _, err := curve.DecodeNonIdentityPoint(identity.Bytes()); err == nil {
		t.Fatal("should have rejected the identity element")
	}
}

func TestDecodeScalarRoundTrip(t *testing.T) {
	s := curve.ScalarFromUint64(424242)
	decoded, err := curve.DecodeScalar(s.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !curve.EqualScalars(s, decoded) {
		t.Fatal("decoded scalar does not equal the original")
	}
}

func TestDecodeScalarRejectsNonCanonical(t *testing.T) {
	var b [curve.ScalarSize]byte
	for i := range b {
		b[i] = 0xff
	}
	if _, err := curve.DecodeScalar(b[:]); err == nil {
		t.Fatal("should have rejected a non-canonical scalar")
	}
}

func TestHashToPointDeterministicAndIndependent(t *testing.T) {
	a := curve.HashToPoint("mercat/test/label-a")
	again := curve.HashToPoint("mercat/test/label-a")
	if !curve.EqualPoints(a, again) {
		t.Fatal("HashToPoint is not deterministic for the same label")
	}

	b := curve.HashToPoint("mercat/test/label-b")
	if curve.EqualPoints(a, b) {
		t.Fatal("distinct labels produced the same point")
	}
}

func TestScalarFromUint64(t *testing.T) {
	for _, v := range []uint64{0, 1, 42, 1 << 32, ^uint64(0)} {
		s := curve.ScalarFromUint64(v)
		if s == nil {
			t.Fatalf("ScalarFromUint64(%d) returned nil", v)
		}
	}

	if curve.EqualScalars(curve.ScalarFromUint64(1), curve.ScalarFromUint64(2)) {
		t.Fatal("distinct values produced equal scalars")
	}
}

func TestEqualScalarsConstantTimeShape(t *testing.T) {
	one := curve.ScalarFromUint64(1)
	oneAgain := curve.ScalarFromUint64(1)
	two := curve.ScalarFromUint64(2)

	if !curve.EqualScalars(one, oneAgain) {
		t.Error("equal scalars reported unequal")
	}
	if curve.EqualScalars(one, two) {
		t.Error("unequal scalars reported equal")
	}
}

func TestRandomBytesLength(t *testing.T) {
	b := curve.RandomBytes(40)
	if len(b) != 40 {
		t.Fatalf("len(RandomBytes(40)) = %d, want 40", len(b))
	}
}
