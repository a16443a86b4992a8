package proofs

import (
	"github.com/mercat-network/mercat/codec"
	"github.com/mercat-network/mercat/elgamal"
)

// MarshalBinary encodes a CorrectnessInitialMessage using the codec package's canonical encoding.
func (m CorrectnessInitialMessage) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WritePoint(m.A)
	w.WritePoint(m.B)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a CorrectnessInitialMessage.
func (m *CorrectnessInitialMessage) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	var err error
	if m.A, err = r.ReadPoint(); err != nil {
		return err
	}
	if m.B, err = r.ReadPoint(); err != nil {
		return err
	}
	return nil
}

// MarshalBinary encodes a CorrectnessFinalResponse.
func (m CorrectnessFinalResponse) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WriteScalar(m.Z)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a CorrectnessFinalResponse.
func (m *CorrectnessFinalResponse) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	var err error
	m.Z, err = r.ReadScalar()
	return err
}

// MarshalBinary encodes a WellFormednessInitialMessage.
func (m WellFormednessInitialMessage) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WritePoint(m.A)
	w.WritePoint(m.B)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a WellFormednessInitialMessage.
func (m *WellFormednessInitialMessage) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	var err error
	if m.A, err = r.ReadPoint(); err != nil {
		return err
	}
	if m.B, err = r.ReadPoint(); err != nil {
		return err
	}
	return nil
}

// MarshalBinary encodes a WellFormednessFinalResponse.
func (m WellFormednessFinalResponse) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WriteScalar(m.Z1)
	w.WriteScalar(m.Z2)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a WellFormednessFinalResponse.
func (m *WellFormednessFinalResponse) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	var err error
	if m.Z1, err = r.ReadScalar(); err != nil {
		return err
	}
	if m.Z2, err = r.ReadScalar(); err != nil {
		return err
	}
	return nil
}

// MarshalBinary encodes a CipherEqualityInitialMessage.
func (m CipherEqualityInitialMessage) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WritePoint(m.A1)
	w.WritePoint(m.A2)
	w.WritePoint(m.A3)
	w.WritePoint(m.A4)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a CipherEqualityInitialMessage.
func (m *CipherEqualityInitialMessage) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	var err error
	if m.A1, err = r.ReadPoint(); err != nil {
		return err
	}
	if m.A2, err = r.ReadPoint(); err != nil {
		return err
	}
	if m.A3, err = r.ReadPoint(); err != nil {
		return err
	}
	if m.A4, err = r.ReadPoint(); err != nil {
		return err
	}
	return nil
}

// MarshalBinary encodes a CipherEqualityFinalResponse.
func (m CipherEqualityFinalResponse) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WriteScalar(m.Zv)
	w.WriteScalar(m.Z1)
	w.WriteScalar(m.Z2)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a CipherEqualityFinalResponse.
func (m *CipherEqualityFinalResponse) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	var err error
	if m.Zv, err = r.ReadScalar(); err != nil {
		return err
	}
	if m.Z1, err = r.ReadScalar(); err != nil {
		return err
	}
	if m.Z2, err = r.ReadScalar(); err != nil {
		return err
	}
	return nil
}

// MarshalBinary encodes an AssetIdMembershipProof as its branch count followed by each branch's (A, B, C, Z) in
// order.
func (p AssetIdMembershipProof) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WriteUint32(uint32(len(p.Branches)))
	for _, b := range p.Branches {
		w.WritePoint(b.A)
		w.WritePoint(b.B)
		w.WriteScalar(b.C)
		w.WriteScalar(b.Z)
	}
	return w.Bytes(), nil
}

// UnmarshalBinary decodes an AssetIdMembershipProof.
func (p *AssetIdMembershipProof) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	n, err := r.ReadUint32()
	if err != nil {
		return err
	}
	branches := make([]AssetIdMembershipBranch, n)
	for i := range branches {
		if branches[i].A, err = r.ReadPoint(); err != nil {
			return err
		}
		if branches[i].B, err = r.ReadPoint(); err != nil {
			return err
		}
		if branches[i].C, err = r.ReadScalar(); err != nil {
			return err
		}
		if branches[i].Z, err = r.ReadScalar(); err != nil {
			return err
		}
	}
	p.Branches = branches
	return nil
}

// MarshalBinary encodes a RangeProof as its bit count followed by each bit's ciphertext and membership proof.
func (p RangeProof) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WriteUint32(uint32(len(p.BitCiphers)))
	for i, ct := range p.BitCiphers {
		w.WritePoint(ct.X)
		w.WritePoint(ct.Y)
		branchBytes, err := p.BitProofs[i].MarshalBinary()
		if err != nil {
			return nil, err
		}
		w.WriteBytes(branchBytes)
	}
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a RangeProof.
func (p *RangeProof) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	n, err := r.ReadUint32()
	if err != nil {
		return err
	}
	ciphers := make([]elgamal.CipherText, n)
	proofsOut := make([]AssetIdMembershipProof, n)
	for i := range ciphers {
		if ciphers[i].X, err = r.ReadPoint(); err != nil {
			return err
		}
		if ciphers[i].Y, err = r.ReadPoint(); err != nil {
			return err
		}
		branchBytes, err := r.ReadBytes()
		if err != nil {
			return err
		}
		if err := proofsOut[i].UnmarshalBinary(branchBytes); err != nil {
			return err
		}
	}
	p.BitCiphers = ciphers
	p.BitProofs = proofsOut
	return nil
}
