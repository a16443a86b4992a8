package mercat

import (
	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/codec"
	"github.com/mercat-network/mercat/elgamal"
)

func encodePoint(w *codec.Writer, p *ristretto255.Element) {
	w.WriteFixed(p.Bytes())
}

func encodeCipher(w *codec.Writer, ct elgamal.CipherText) {
	encodePoint(w, ct.X)
	encodePoint(w, ct.Y)
}

func encodeMemo(w *codec.Writer, m AccountMemo) {
	encodePoint(w, m.OwnerEncPubKey.PubKey)
	encodePoint(w, m.OwnerSignPubKey)
	w.WriteUint32(m.LastProcessedTxCtr)
}

// encodePubAccountContent produces the canonical bytes an account's signature attests to: every field a validator
// checks, so that mutating any of them after signing is detectable (spec.md §4.8).
func encodePubAccountContent(a PubAccount) []byte {
	w := codec.NewWriter()
	w.WriteUint32(a.ID)
	encodeCipher(w, a.EncAssetID)
	encodeCipher(w, a.EncBalance)
	encodeMemo(w, a.Memo)
	return w.Bytes()
}
