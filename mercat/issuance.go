package mercat

import (
	"bytes"
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/codec"
	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/proofs"
	"github.com/mercat-network/mercat/sign"
	"github.com/mercat-network/mercat/transcript"
)

// AssetTxState is the asset-issuance state machine's current phase (spec.md §4.6). Justification{Rejected} is
// terminal: a rejected issuance never re-enters the protocol under the same tx_id.
type AssetTxState int

const (
	AssetTxInitializationStarted AssetTxState = iota
	AssetTxJustificationStarted
	AssetTxJustificationValidated
	AssetTxJustificationRejected
)

// InitializedAssetTx is the issuer's initial message: amounts encrypted under both the issuer's and the mediator's
// keys, a WellFormedness proof that the issuer's ciphertext is well-formed without revealing the amount, a
// CipherEquality proof that both ciphertexts carry the same amount, and the issuer's signature.
type InitializedAssetTx struct {
	IssuerID           uint32
	EncAmountUsingIssr elgamal.CipherText
	EncAmountUsingMdtr elgamal.CipherText
	WellFormedness     WellFormednessProof
	CipherEquality     CipherEqualityProof
	IssuerSignature    []byte
}

// JustifiedAssetTx adds the mediator's decision to an InitializedAssetTx: State records whether the mediator
// accepted or rejected, and MediatorSignature is present only when State is AssetTxJustificationValidated.
type JustifiedAssetTx struct {
	Initialized        InitializedAssetTx
	State              AssetTxState
	MediatorSignature  []byte
}

func issuanceWellFormednessTranscript(issuerID uint32, issuerPK elgamal.ElgamalPublicKey, encIssr elgamal.CipherText) *transcript.Transcript {
	t := transcript.New("mercat/asset/wellformedness")
	t.AppendUint64("issuer-id", uint64(issuerID))
	t.AppendPoint("issuer-pub-key", issuerPK.PubKey)
	t.AppendPoint("enc-x", encIssr.X)
	t.AppendPoint("enc-y", encIssr.Y)
	return t
}

func issuanceCipherEqualityTranscript(issuerID uint32, issuerPK, mediatorPK elgamal.ElgamalPublicKey, encIssr, encMdtr elgamal.CipherText) *transcript.Transcript {
	t := transcript.New("mercat/asset/cipher-equality")
	t.AppendUint64("issuer-id", uint64(issuerID))
	t.AppendPoint("issuer-pub-key", issuerPK.PubKey)
	t.AppendPoint("mediator-pub-key", mediatorPK.PubKey)
	t.AppendPoint("enc-issr-x", encIssr.X)
	t.AppendPoint("enc-issr-y", encIssr.Y)
	t.AppendPoint("enc-mdtr-x", encMdtr.X)
	t.AppendPoint("enc-mdtr-y", encMdtr.Y)
	return t
}

func encodeAssetContent(issuerID uint32, encIssr, encMdtr elgamal.CipherText) []byte {
	w := codec.NewWriter()
	w.WriteUint32(issuerID)
	encodeCipher(w, encIssr)
	encodeCipher(w, encMdtr)
	return w.Bytes()
}

// InitializeAssetIssuance runs the issuer's side of asset issuance: it encrypts amount under both issuerKey's public
// half and mediatorPubKey, proves the issuer ciphertext well-formed and both ciphertexts equal, and signs under
// sign.DomainAsset.
func InitializeAssetIssuance(issuerID uint32, issuerKey SigningKeyPair, issuerEnc elgamal.ElgamalSecretKey, issuerPub elgamal.ElgamalPublicKey, mediatorPub elgamal.ElgamalPublicKey, amount uint64, gens *elgamal.PedersenGens, rand io.Reader) (InitializedAssetTx, error) {
	w1, err := elgamal.NewCommitmentWitness(amount, rand)
	if err != nil {
		return InitializedAssetTx{}, err
	}
	w2, err := elgamal.NewCommitmentWitness(amount, rand)
	if err != nil {
		return InitializedAssetTx{}, err
	}

	encIssr := elgamal.Encrypt(issuerPub, w1, gens)
	encMdtr := elgamal.Encrypt(mediatorPub, w2, gens)

	wfT := issuanceWellFormednessTranscript(issuerID, issuerPub, encIssr)
	wfProver := proofs.NewWellFormednessProver(w1, issuerPub, gens)
	wfInitial, wfResponse, err := proofs.ProveWellFormedness(wfT, wfProver, rand)
	if err != nil {
		return InitializedAssetTx{}, err
	}

	ceT := issuanceCipherEqualityTranscript(issuerID, issuerPub, mediatorPub, encIssr, encMdtr)
	ceProver := proofs.NewCipherEqualityProver(w1, w2, issuerPub, mediatorPub, gens)
	ceInitial, ceResponse, err := proofs.ProveCipherEquality(ceT, ceProver, rand)
	if err != nil {
		return InitializedAssetTx{}, err
	}

	hedge := make([]byte, 32)
	if _, err := io.ReadFull(rand, hedge); err != nil {
		return InitializedAssetTx{}, err
	}
	sig, err := sign.SignAsset(issuerKey.Secret, hedge, bytes.NewReader(encodeAssetContent(issuerID, encIssr, encMdtr)))
	if err != nil {
		return InitializedAssetTx{}, err
	}

	return InitializedAssetTx{
		IssuerID:           issuerID,
		EncAmountUsingIssr: encIssr,
		EncAmountUsingMdtr: encMdtr,
		WellFormedness:     WellFormednessProof{Initial: wfInitial, Response: wfResponse},
		CipherEquality:     CipherEqualityProof{Initial: ceInitial, Response: ceResponse},
		IssuerSignature:    sig,
	}, nil
}

// PolicyDecision is a caller-supplied predicate deciding whether a mediator should approve a decrypted issuance
// amount. Policy itself is out of the core's scope (spec.md §1); this package only enforces the protocol-level
// consequence of the decision.
type PolicyDecision func(amount uint64) bool

// JustifyAssetIssuance runs the mediator's side: it decrypts the issuer's declared amount under mediatorKey, applies
// decide, and either signs a justification under sign.DomainAsset or returns a terminal rejection.
func JustifyAssetIssuance(tx InitializedAssetTx, mediatorSignKey SigningKeyPair, mediatorEncKey elgamal.ElgamalSecretKey, gens *elgamal.PedersenGens, decide PolicyDecision, rand io.Reader) (JustifiedAssetTx, error) {
	amount, err := elgamal.Decrypt(mediatorEncKey, tx.EncAmountUsingMdtr, gens)
	if err != nil {
		return JustifiedAssetTx{}, &CryptoError{Err: err}
	}

	if !decide(amount) {
		return JustifiedAssetTx{Initialized: tx, State: AssetTxJustificationRejected}, nil
	}

	hedge := make([]byte, 32)
	if _, err := io.ReadFull(rand, hedge); err != nil {
		return JustifiedAssetTx{}, err
	}
	sig, err := sign.SignAsset(mediatorSignKey.Secret, hedge, bytes.NewReader(encodeAssetContent(tx.IssuerID, tx.EncAmountUsingIssr, tx.EncAmountUsingMdtr)))
	if err != nil {
		return JustifiedAssetTx{}, err
	}

	return JustifiedAssetTx{Initialized: tx, State: AssetTxJustificationValidated, MediatorSignature: sig}, nil
}

// ValidateAssetIssuance runs the validator's side: it checks both proofs and both signatures, and on success returns
// the updated OrderedPubAccount with amount added homomorphically to the issuer's balance and the counter bumped to
// txID. It refuses a tx not in AssetTxJustificationValidated.
func ValidateAssetIssuance(jtx JustifiedAssetTx, issuerPub, mediatorPub elgamal.ElgamalPublicKey, issuerSignPub, mediatorSignPub *ristretto255.Element, account OrderedPubAccount, gens *elgamal.PedersenGens, txID uint32) (OrderedPubAccount, error) {
	if jtx.State != AssetTxJustificationValidated {
		return OrderedPubAccount{}, &StateError{Reason: "asset issuance was not justified"}
	}

	tx := jtx.Initialized

	wfT := issuanceWellFormednessTranscript(tx.IssuerID, issuerPub, tx.EncAmountUsingIssr)
	wfVerifier := proofs.WellFormednessVerifier{PubKey: issuerPub, Cipher: tx.EncAmountUsingIssr, Gens: gens}
	if err := proofs.VerifyWellFormedness(wfT, wfVerifier, tx.WellFormedness.Initial, tx.WellFormedness.Response); err != nil {
		return OrderedPubAccount{}, &ProofError{Proof: "issuance-wellformedness", Err: err}
	}

	ceT := issuanceCipherEqualityTranscript(tx.IssuerID, issuerPub, mediatorPub, tx.EncAmountUsingIssr, tx.EncAmountUsingMdtr)
	ceVerifier := proofs.CipherEqualityVerifier{PubKey1: issuerPub, PubKey2: mediatorPub, Cipher1: tx.EncAmountUsingIssr, Cipher2: tx.EncAmountUsingMdtr, Gens: gens}
	if err := proofs.VerifyCipherEquality(ceT, ceVerifier, tx.CipherEquality.Initial, tx.CipherEquality.Response); err != nil {
		return OrderedPubAccount{}, &ProofError{Proof: "issuance-cipher-equality", Err: err}
	}

	content := encodeAssetContent(tx.IssuerID, tx.EncAmountUsingIssr, tx.EncAmountUsingMdtr)

	validIssuer, err := sign.VerifyAsset(issuerSignPub, tx.IssuerSignature, bytes.NewReader(content))
	if err != nil {
		return OrderedPubAccount{}, err
	}
	if !validIssuer {
		return OrderedPubAccount{}, &SignatureError{Role: "issuer"}
	}

	validMediator, err := sign.VerifyAsset(mediatorSignPub, jtx.MediatorSignature, bytes.NewReader(content))
	if err != nil {
		return OrderedPubAccount{}, err
	}
	if !validMediator {
		return OrderedPubAccount{}, &SignatureError{Role: "mediator"}
	}

	updated := account.Account
	updated.EncBalance = updated.EncBalance.Add(tx.EncAmountUsingIssr)
	return OrderedPubAccount{Account: updated, LastProcessedTxID: &txID}, nil
}
