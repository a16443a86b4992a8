package mercat

import (
	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/codec"
	"github.com/mercat-network/mercat/elgamal"
)

// This file implements the canonical binary round-trip for every artifact the store package persists (spec.md §6).
// Each type's MarshalBinary/UnmarshalBinary pair writes and reads fields in the same order encode.go's signing
// content uses, so a decoded artifact is bit-identical to the one the signer originally produced.

func decodeCipher(r *codec.Reader) (elgamal.CipherText, error) {
	x, err := r.ReadPoint()
	if err != nil {
		return elgamal.CipherText{}, err
	}
	y, err := r.ReadPoint()
	if err != nil {
		return elgamal.CipherText{}, err
	}
	return elgamal.CipherText{X: x, Y: y}, nil
}

func decodeMemo(r *codec.Reader) (AccountMemo, error) {
	pub, err := r.ReadPoint()
	if err != nil {
		return AccountMemo{}, err
	}
	signPub, err := r.ReadPoint()
	if err != nil {
		return AccountMemo{}, err
	}
	ctr, err := r.ReadUint32()
	if err != nil {
		return AccountMemo{}, err
	}
	return AccountMemo{
		OwnerEncPubKey:     elgamal.ElgamalPublicKey{PubKey: pub},
		OwnerSignPubKey:    signPub,
		LastProcessedTxCtr: ctr,
	}, nil
}

func writeProofBundle(w *codec.Writer, initial interface{ MarshalBinary() ([]byte, error) }, response interface{ MarshalBinary() ([]byte, error) }) error {
	initialBytes, err := initial.MarshalBinary()
	if err != nil {
		return err
	}
	responseBytes, err := response.MarshalBinary()
	if err != nil {
		return err
	}
	w.WriteBytes(initialBytes)
	w.WriteBytes(responseBytes)
	return nil
}

// MarshalBinary encodes a PubAccount.
func (a PubAccount) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WriteUint32(a.ID)
	encodeCipher(w, a.EncAssetID)
	encodeCipher(w, a.EncBalance)
	encodeMemo(w, a.Memo)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a PubAccount.
func (a *PubAccount) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	var err error
	if a.ID, err = r.ReadUint32(); err != nil {
		return err
	}
	if a.EncAssetID, err = decodeCipher(r); err != nil {
		return err
	}
	if a.EncBalance, err = decodeCipher(r); err != nil {
		return err
	}
	if a.Memo, err = decodeMemo(r); err != nil {
		return err
	}
	return nil
}

// MarshalBinary encodes an OrderedPubAccount. LastProcessedTxID is encoded as a uint32 with an extra presence byte,
// since nil (no transaction processed yet) and 0 (the first transaction processed) are distinct states.
func (o OrderedPubAccount) MarshalBinary() ([]byte, error) {
	accountBytes, err := o.Account.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w := codec.NewWriter()
	w.WriteBytes(accountBytes)
	if o.LastProcessedTxID != nil {
		w.WriteFixed([]byte{1})
		w.WriteUint32(*o.LastProcessedTxID)
	} else {
		w.WriteFixed([]byte{0})
	}
	return w.Bytes(), nil
}

// UnmarshalBinary decodes an OrderedPubAccount.
func (o *OrderedPubAccount) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	accountBytes, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if err := o.Account.UnmarshalBinary(accountBytes); err != nil {
		return err
	}
	present, err := r.ReadFixed(1)
	if err != nil {
		return err
	}
	if present[0] == 0 {
		o.LastProcessedTxID = nil
		return nil
	}
	txID, err := r.ReadUint32()
	if err != nil {
		return err
	}
	o.LastProcessedTxID = &txID
	return nil
}

// MarshalBinary encodes a SecAccount for off-chain sealed storage: the ElGamal secret scalar, the signing secret
// scalar, and the asset-id witness (value plus blinding). The corresponding public material is recomputed from these
// on load rather than stored twice.
func (a SecAccount) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WriteScalar(a.EncSecret.Scalar())
	w.WriteScalar(a.SignKeys.Secret)
	w.WriteUint64(a.AssetIDWitness.Value)
	w.WriteScalar(a.AssetIDWitness.Blinding)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a SecAccount previously written by MarshalBinary, deriving public keys under gens.
func (a *SecAccount) UnmarshalBinary(data []byte, gens *elgamal.PedersenGens) error {
	r := codec.NewReader(data)

	encScalar, err := r.ReadScalar()
	if err != nil {
		return err
	}
	signScalar, err := r.ReadScalar()
	if err != nil {
		return err
	}
	assetID, err := r.ReadUint64()
	if err != nil {
		return err
	}
	blinding, err := r.ReadScalar()
	if err != nil {
		return err
	}

	encSecret := elgamal.SecretKeyFromScalar(encScalar)
	a.EncSecret = encSecret
	a.EncPublic = encSecret.PublicKey(gens)
	a.SignKeys = SigningKeyPair{Secret: signScalar, Public: ristretto255.NewIdentityElement().ScalarBaseMult(signScalar)}
	a.AssetIDWitness = elgamal.CommitmentWitness{Value: assetID, Blinding: blinding}
	return nil
}

// MarshalBinary encodes a MediatorPublicAccount.
func (m MediatorPublicAccount) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WritePoint(m.EncPublic.PubKey)
	w.WritePoint(m.SignPublicKey)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a MediatorPublicAccount.
func (m *MediatorPublicAccount) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	encPub, err := r.ReadPoint()
	if err != nil {
		return err
	}
	signPub, err := r.ReadPoint()
	if err != nil {
		return err
	}
	m.EncPublic = elgamal.ElgamalPublicKey{PubKey: encPub}
	m.SignPublicKey = signPub
	return nil
}

// MarshalBinary encodes an InitializedPubAccountTx.
func (tx InitializedPubAccountTx) MarshalBinary() ([]byte, error) {
	accountBytes, err := tx.PubAccount.MarshalBinary()
	if err != nil {
		return nil, err
	}
	assetProofBytes, err := tx.AssetIDMembershipProof.MarshalBinary()
	if err != nil {
		return nil, err
	}

	w := codec.NewWriter()
	w.WriteBytes(accountBytes)
	w.WriteBytes(assetProofBytes)
	if err := writeProofBundle(w, tx.BalanceWellFormedness.Initial, tx.BalanceWellFormedness.Response); err != nil {
		return nil, err
	}
	if err := writeProofBundle(w, tx.BalanceCorrectness.Initial, tx.BalanceCorrectness.Response); err != nil {
		return nil, err
	}
	w.WriteBytes(tx.Signature)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes an InitializedPubAccountTx.
func (tx *InitializedPubAccountTx) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)

	accountBytes, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if err := tx.PubAccount.UnmarshalBinary(accountBytes); err != nil {
		return err
	}

	assetProofBytes, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if err := tx.AssetIDMembershipProof.UnmarshalBinary(assetProofBytes); err != nil {
		return err
	}

	if err := readProofBundle(r, &tx.BalanceWellFormedness.Initial, &tx.BalanceWellFormedness.Response); err != nil {
		return err
	}
	if err := readProofBundle(r, &tx.BalanceCorrectness.Initial, &tx.BalanceCorrectness.Response); err != nil {
		return err
	}

	sig, err := r.ReadBytes()
	if err != nil {
		return err
	}
	tx.Signature = sig
	return nil
}

// MarshalBinary encodes an InitializedAssetTx.
func (tx InitializedAssetTx) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WriteUint32(tx.IssuerID)
	encodeCipher(w, tx.EncAmountUsingIssr)
	encodeCipher(w, tx.EncAmountUsingMdtr)
	if err := writeProofBundle(w, tx.WellFormedness.Initial, tx.WellFormedness.Response); err != nil {
		return nil, err
	}
	if err := writeProofBundle(w, tx.CipherEquality.Initial, tx.CipherEquality.Response); err != nil {
		return nil, err
	}
	w.WriteBytes(tx.IssuerSignature)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes an InitializedAssetTx.
func (tx *InitializedAssetTx) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	var err error

	if tx.IssuerID, err = r.ReadUint32(); err != nil {
		return err
	}
	if tx.EncAmountUsingIssr, err = decodeCipher(r); err != nil {
		return err
	}
	if tx.EncAmountUsingMdtr, err = decodeCipher(r); err != nil {
		return err
	}

	if err := readProofBundle(r, &tx.WellFormedness.Initial, &tx.WellFormedness.Response); err != nil {
		return err
	}
	if err := readProofBundle(r, &tx.CipherEquality.Initial, &tx.CipherEquality.Response); err != nil {
		return err
	}

	sig, err := r.ReadBytes()
	if err != nil {
		return err
	}
	tx.IssuerSignature = sig
	return nil
}

// MarshalBinary encodes a JustifiedAssetTx.
func (jtx JustifiedAssetTx) MarshalBinary() ([]byte, error) {
	initializedBytes, err := jtx.Initialized.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w := codec.NewWriter()
	w.WriteBytes(initializedBytes)
	w.WriteUint32(uint32(jtx.State))
	w.WriteBytes(jtx.MediatorSignature)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a JustifiedAssetTx.
func (jtx *JustifiedAssetTx) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)

	initializedBytes, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if err := jtx.Initialized.UnmarshalBinary(initializedBytes); err != nil {
		return err
	}

	state, err := r.ReadUint32()
	if err != nil {
		return err
	}
	jtx.State = AssetTxState(state)

	sig, err := r.ReadBytes()
	if err != nil {
		return err
	}
	jtx.MediatorSignature = sig
	return nil
}

// MarshalBinary encodes an InitializedTransferTx.
func (tx InitializedTransferTx) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter()
	w.WriteUint32(tx.TxID)
	w.WriteUint32(tx.SenderID)
	w.WriteUint32(tx.ReceiverID)
	encodeCipher(w, tx.EncAmountUsingSndr)
	encodeCipher(w, tx.EncAmountUsingRcvr)
	encodeCipher(w, tx.EncAmountUsingMdtr)
	encodeCipher(w, tx.EncRefreshedBalance)

	if err := writeProofBundle(w, tx.AmountWellFormed.Initial, tx.AmountWellFormed.Response); err != nil {
		return nil, err
	}
	if err := writeProofBundle(w, tx.SndrRcvrEquality.Initial, tx.SndrRcvrEquality.Response); err != nil {
		return nil, err
	}
	if err := writeProofBundle(w, tx.SndrMdtrEquality.Initial, tx.SndrMdtrEquality.Response); err != nil {
		return nil, err
	}

	rangeAmountBytes, err := tx.RangeAmount.MarshalBinary()
	if err != nil {
		return nil, err
	}
	rangeRefreshedBytes, err := tx.RangeRefreshed.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w.WriteBytes(rangeAmountBytes)
	w.WriteBytes(rangeRefreshedBytes)
	w.WriteBytes(tx.SenderSignature)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes an InitializedTransferTx.
func (tx *InitializedTransferTx) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)
	var err error

	if tx.TxID, err = r.ReadUint32(); err != nil {
		return err
	}
	if tx.SenderID, err = r.ReadUint32(); err != nil {
		return err
	}
	if tx.ReceiverID, err = r.ReadUint32(); err != nil {
		return err
	}
	if tx.EncAmountUsingSndr, err = decodeCipher(r); err != nil {
		return err
	}
	if tx.EncAmountUsingRcvr, err = decodeCipher(r); err != nil {
		return err
	}
	if tx.EncAmountUsingMdtr, err = decodeCipher(r); err != nil {
		return err
	}
	if tx.EncRefreshedBalance, err = decodeCipher(r); err != nil {
		return err
	}

	if err := readProofBundle(r, &tx.AmountWellFormed.Initial, &tx.AmountWellFormed.Response); err != nil {
		return err
	}
	if err := readProofBundle(r, &tx.SndrRcvrEquality.Initial, &tx.SndrRcvrEquality.Response); err != nil {
		return err
	}
	if err := readProofBundle(r, &tx.SndrMdtrEquality.Initial, &tx.SndrMdtrEquality.Response); err != nil {
		return err
	}

	rangeAmountBytes, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if err := tx.RangeAmount.UnmarshalBinary(rangeAmountBytes); err != nil {
		return err
	}
	rangeRefreshedBytes, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if err := tx.RangeRefreshed.UnmarshalBinary(rangeRefreshedBytes); err != nil {
		return err
	}

	sig, err := r.ReadBytes()
	if err != nil {
		return err
	}
	tx.SenderSignature = sig
	return nil
}

type binaryUnmarshaler interface {
	UnmarshalBinary([]byte) error
}

func readProofBundle(r *codec.Reader, initial, response binaryUnmarshaler) error {
	initialBytes, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if err := initial.UnmarshalBinary(initialBytes); err != nil {
		return err
	}
	responseBytes, err := r.ReadBytes()
	if err != nil {
		return err
	}
	return response.UnmarshalBinary(responseBytes)
}

// MarshalBinary encodes a FinalizedTransferTx.
func (ftx FinalizedTransferTx) MarshalBinary() ([]byte, error) {
	initializedBytes, err := ftx.Initialized.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w := codec.NewWriter()
	w.WriteBytes(initializedBytes)
	w.WriteBytes(ftx.ReceiverSignature)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a FinalizedTransferTx.
func (ftx *FinalizedTransferTx) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)

	initializedBytes, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if err := ftx.Initialized.UnmarshalBinary(initializedBytes); err != nil {
		return err
	}

	sig, err := r.ReadBytes()
	if err != nil {
		return err
	}
	ftx.ReceiverSignature = sig
	return nil
}

// MarshalBinary encodes a JustifiedTransferTx.
func (jtx JustifiedTransferTx) MarshalBinary() ([]byte, error) {
	finalizedBytes, err := jtx.Finalized.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w := codec.NewWriter()
	w.WriteBytes(finalizedBytes)
	w.WriteUint32(uint32(jtx.State))
	w.WriteBytes(jtx.MediatorSignature)
	return w.Bytes(), nil
}

// UnmarshalBinary decodes a JustifiedTransferTx.
func (jtx *JustifiedTransferTx) UnmarshalBinary(data []byte) error {
	r := codec.NewReader(data)

	finalizedBytes, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if err := jtx.Finalized.UnmarshalBinary(finalizedBytes); err != nil {
		return err
	}

	state, err := r.ReadUint32()
	if err != nil {
		return err
	}
	jtx.State = TxState(state)

	sig, err := r.ReadBytes()
	if err != nil {
		return err
	}
	jtx.MediatorSignature = sig
	return nil
}
