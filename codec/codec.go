// Package codec implements the canonical binary encoding MERCAT uses for every on-chain and off-chain artifact
// (spec.md §6, "Serialization"). It mirrors the length-prefix discipline of the teacher's own transcript encoder
// (protocol.go's writeLeftEncode/writeLengthEncode, itself NIST SP 800-185's left_encode/encode_string) so that the
// same "length, then bytes" shape a reader of this codebase already knows from the transcript layer reappears here
// for on-disk artifacts: every variable-length field is self-delimiting, so a decoder never has to guess a length.
package codec

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/curve"
)

// ErrTruncated is returned when a reader runs out of input mid-field.
var ErrTruncated = errors.New("codec: truncated input")

// ErrFieldTooLarge is returned when a length-prefixed field's declared length exceeds MaxFieldLength, guarding
// against a corrupted or adversarial prefix forcing an unbounded allocation.
var ErrFieldTooLarge = errors.New("codec: field length exceeds maximum")

// MaxFieldLength bounds any single length-prefixed field. No MERCAT artifact (a point, a scalar, a proof, an
// allowlist) approaches this size; it exists purely to reject corrupt length prefixes before they drive an
// allocation.
const MaxFieldLength = 16 << 20

// Writer accumulates a canonical-encoded MERCAT artifact. The zero Writer is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteUint64 appends a fixed-width, little-endian 64-bit integer (used for plaintext amounts, indices, and other
// values whose width is a protocol constant rather than a length to be decoded).
func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint32 appends a fixed-width, little-endian 32-bit integer.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteFixed appends b verbatim, with no length prefix. Used for fields whose length is already a protocol constant,
// like a 32-byte compressed Ristretto255 point or scalar.
func (w *Writer) WriteFixed(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteBytes appends data prefixed with its length as a uint32, so a decoder can recover exactly data's bytes without
// knowing its length in advance.
func (w *Writer) WriteBytes(data []byte) {
	w.WriteUint32(uint32(len(data)))
	w.buf = append(w.buf, data...)
}

// WriteString appends s as a length-prefixed UTF-8 byte string.
func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

// WritePoint appends p's canonical compressed encoding (curve.PointSize bytes, unprefixed).
func (w *Writer) WritePoint(p *ristretto255.Element) {
	w.WriteFixed(p.Bytes())
}

// WriteScalar appends s's canonical little-endian encoding (curve.ScalarSize bytes, unprefixed).
func (w *Writer) WriteScalar(s *ristretto255.Scalar) {
	w.WriteFixed(s.Bytes())
}

// Reader decodes a canonical-encoded MERCAT artifact produced by Writer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining reports how many undecoded bytes are left.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// ReadUint64 decodes a fixed-width, little-endian 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.readFixed(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadUint32 decodes a fixed-width, little-endian 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.readFixed(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadFixed decodes exactly n bytes verbatim.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	return r.readFixed(n)
}

func (r *Reader) readFixed(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrTruncated
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBytes decodes a length-prefixed byte string.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > MaxFieldLength {
		return nil, ErrFieldTooLarge
	}
	return r.readFixed(int(n))
}

// ReadString decodes a length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadPoint decodes a canonical compressed Ristretto255 element.
func (r *Reader) ReadPoint() (*ristretto255.Element, error) {
	b, err := r.readFixed(curve.PointSize)
	if err != nil {
		return nil, err
	}
	return curve.DecodePoint(b)
}

// ReadScalar decodes a canonical little-endian Ristretto255 scalar.
func (r *Reader) ReadScalar() (*ristretto255.Scalar, error) {
	b, err := r.readFixed(curve.ScalarSize)
	if err != nil {
		return nil, err
	}
	return curve.DecodeScalar(b)
}

// CopyTo writes every remaining undecoded byte to w, for artifacts that embed a raw trailing payload.
func (r *Reader) CopyTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.buf[r.pos:])
	r.pos = len(r.buf)
	return int64(n), err
}
