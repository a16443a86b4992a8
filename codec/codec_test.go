package codec_test

import (
	"bytes"
	"testing"

	"github.com/mercat-network/mercat/codec"
	"github.com/mercat-network/mercat/curve"
)

func TestUint64RoundTrip(t *testing.T) {
	w := codec.NewWriter()
	w.WriteUint64(0)
	w.WriteUint64(1)
	w.WriteUint64(1<<63 + 7)

	r := codec.NewReader(w.Bytes())
	for _, want := range []uint64{0, 1, 1<<63 + 7} {
		got, err := r.ReadUint64()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("ReadUint64() = %d, want %d", got, want)
		}
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", r.Remaining())
	}
}

func TestUint32RoundTrip(t *testing.T) {
	w := codec.NewWriter()
	w.WriteUint32(0)
	w.WriteUint32(4242)

	r := codec.NewReader(w.Bytes())
	for _, want := range []uint32{0, 4242} {
		got, err := r.ReadUint32()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("ReadUint32() = %d, want %d", got, want)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	w := codec.NewWriter()
	w.WriteBytes([]byte("hello"))
	w.WriteBytes(nil)
	w.WriteBytes([]byte("world"))

	r := codec.NewReader(w.Bytes())
	for _, want := range []string{"hello", "", "world"} {
		got, err := r.ReadBytes()
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("ReadBytes() = %q, want %q", got, want)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	w := codec.NewWriter()
	w.WriteString("USD")

	r := codec.NewReader(w.Bytes())
	got, err := r.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if got != "USD" {
		t.Errorf("ReadString() = %q, want %q", got, "USD")
	}
}

func TestPointScalarRoundTrip(t *testing.T) {
	w := codec.NewWriter()
	w.WritePoint(curve.Generator())
	w.WriteScalar(curve.ScalarFromUint64(99))

	r := codec.NewReader(w.Bytes())
	p, err := r.ReadPoint()
	if err != nil {
		t.Fatal(err)
	}
	if !curve.EqualPoints(p, curve.Generator()) {
		t.Error("decoded point does not match the generator")
	}

	s, err := r.ReadScalar()
	if err != nil {
		t.Fatal(err)
	}
	if !curve.EqualScalars(s, curve.ScalarFromUint64(99)) {
		t.Error("decoded scalar does not match the original")
	}
}

func TestReadTruncated(t *testing.T) {
	r := codec.NewReader([]byte{1, 2, 3})
	if _, err := r.ReadUint64(); err != codec.ErrTruncated {
		t.Fatalf("ReadUint64() error = %v, want ErrTruncated", err)
	}
}

func TestReadBytesTruncatedLengthPrefix(t *testing.T) {
	w := codec.NewWriter()
	w.WriteUint32(10) // declares 10 bytes, but none follow
	r := codec.NewReader(w.Bytes())
	if _, err := r.ReadBytes(); err != codec.ErrTruncated {
		t.Fatalf("ReadBytes() error = %v, want ErrTruncated", err)
	}
}

func TestReadBytesFieldTooLarge(t *testing.T) {
	w := codec.NewWriter()
	w.WriteUint32(codec.MaxFieldLength + 1)
	r := codec.NewReader(w.Bytes())
	if _, err := r.ReadBytes(); err != codec.ErrFieldTooLarge {
		t.Fatalf("ReadBytes() error = %v, want ErrFieldTooLarge", err)
	}
}

func TestCopyTo(t *testing.T) {
	w := codec.NewWriter()
	w.WriteUint32(1)
	w.WriteFixed([]byte("trailing"))

	r := codec.NewReader(w.Bytes())
	if _, err := r.ReadUint32(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := r.CopyTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) || buf.String() != "trailing" {
		t.Fatalf("CopyTo copied %q (n=%d), want %q", buf.String(), n, "trailing")
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining() after CopyTo = %d, want 0", r.Remaining())
	}
}
