package mercat

import (
	"bytes"
	"io"

	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/proofs"
	"github.com/mercat-network/mercat/sign"
	"github.com/mercat-network/mercat/transcript"
)

// CorrectnessProof bundles a non-interactive CorrectEncryption proof: the prover's initial message and its response
// to the challenge derived from the transcript both parties reconstruct independently.
type CorrectnessProof struct {
	Initial  proofs.CorrectnessInitialMessage
	Response proofs.CorrectnessFinalResponse
}

// WellFormednessProof bundles a non-interactive WellFormedness proof.
type WellFormednessProof struct {
	Initial  proofs.WellFormednessInitialMessage
	Response proofs.WellFormednessFinalResponse
}

// CipherEqualityProof bundles a non-interactive CipherEquality proof.
type CipherEqualityProof struct {
	Initial  proofs.CipherEqualityInitialMessage
	Response proofs.CipherEqualityFinalResponse
}

// InitializedPubAccountTx is the account-creation message a holder publishes: the new public account, the proofs
// that its encrypted asset-id and zero initial balance are well-formed, and the holder's signature over the content
// (spec.md §4.5).
type InitializedPubAccountTx struct {
	PubAccount              PubAccount
	AssetIDMembershipProof  proofs.AssetIdMembershipProof
	BalanceWellFormedness   WellFormednessProof
	BalanceCorrectness      CorrectnessProof
	Signature               []byte
}

func assetIDMembershipTranscript(accountID uint32, pubKey elgamal.ElgamalPublicKey, encAssetID elgamal.CipherText, allowedIDs []uint64) *transcript.Transcript {
	t := transcript.New("mercat/account/asset-id-membership")
	t.AppendUint64("account-id", uint64(accountID))
	t.AppendPoint("pub-key", pubKey.PubKey)
	t.AppendPoint("enc-asset-id-x", encAssetID.X)
	t.AppendPoint("enc-asset-id-y", encAssetID.Y)
	for i, id := range allowedIDs {
		t.AppendUint64("allowed", uint64(i)<<32|id)
	}
	return t
}

func balanceWellFormednessTranscript(accountID uint32, pubKey elgamal.ElgamalPublicKey, encBalance elgamal.CipherText) *transcript.Transcript {
	t := transcript.New("mercat/account/balance-wellformedness")
	t.AppendUint64("account-id", uint64(accountID))
	t.AppendPoint("pub-key", pubKey.PubKey)
	t.AppendPoint("enc-balance-x", encBalance.X)
	t.AppendPoint("enc-balance-y", encBalance.Y)
	return t
}

func balanceCorrectnessTranscript(accountID uint32, pubKey elgamal.ElgamalPublicKey, encBalance elgamal.CipherText) *transcript.Transcript {
	t := transcript.New("mercat/account/balance-correctness")
	t.AppendUint64("account-id", uint64(accountID))
	t.AppendPoint("pub-key", pubKey.PubKey)
	t.AppendPoint("enc-balance-x", encBalance.X)
	t.AppendPoint("enc-balance-y", encBalance.Y)
	return t
}

// CreateAccount runs the account-creation initializer: it encrypts sec's asset-id and proves it belongs to
// allowedAssetIDs, encrypts a zero balance and proves it is well-formed and correct, and signs the result under
// sign.DomainAccount.
func CreateAccount(sec SecAccount, allowedAssetIDs []uint64, accountID uint32, gens *elgamal.PedersenGens, rand io.Reader) (InitializedPubAccountTx, error) {
	encAssetID := elgamal.Encrypt(sec.EncPublic, sec.AssetIDWitness, gens)

	realIndex := -1
	for i, id := range allowedAssetIDs {
		if id == sec.AssetIDWitness.Value {
			realIndex = i
			break
		}
	}
	if realIndex < 0 {
		return InitializedPubAccountTx{}, &InputError{Reason: "account asset-id is not in the allowed set"}
	}

	assetT := assetIDMembershipTranscript(accountID, sec.EncPublic, encAssetID, allowedAssetIDs)
	assetProof, err := proofs.ProveAssetIdMembership(assetT, allowedAssetIDs, realIndex, sec.AssetIDWitness.Blinding, sec.EncPublic, encAssetID, gens, rand)
	if err != nil {
		return InitializedPubAccountTx{}, err
	}

	zeroWitness, err := elgamal.NewCommitmentWitness(0, rand)
	if err != nil {
		return InitializedPubAccountTx{}, err
	}
	encBalance := elgamal.Encrypt(sec.EncPublic, zeroWitness, gens)

	wfT := balanceWellFormednessTranscript(accountID, sec.EncPublic, encBalance)
	wfProver := proofs.NewWellFormednessProver(zeroWitness, sec.EncPublic, gens)
	wfInitial, wfResponse, err := proofs.ProveWellFormedness(wfT, wfProver, rand)
	if err != nil {
		return InitializedPubAccountTx{}, err
	}

	ceT := balanceCorrectnessTranscript(accountID, sec.EncPublic, encBalance)
	ceProver := proofs.NewCorrectnessProver(zeroWitness, sec.EncPublic, gens)
	ceInitial, ceResponse, err := proofs.ProveCorrectEncryption(ceT, ceProver, rand)
	if err != nil {
		return InitializedPubAccountTx{}, err
	}

	account := PubAccount{
		ID:         accountID,
		EncAssetID: encAssetID,
		EncBalance: encBalance,
		Memo: AccountMemo{
			OwnerEncPubKey:     sec.EncPublic,
			OwnerSignPubKey:    sec.SignKeys.Public,
			LastProcessedTxCtr: 0,
		},
	}

	hedge := make([]byte, 32)
	if _, err := io.ReadFull(rand, hedge); err != nil {
		return InitializedPubAccountTx{}, err
	}
	sig, err := sign.SignAccount(sec.SignKeys.Secret, hedge, bytes.NewReader(encodePubAccountContent(account)))
	if err != nil {
		return InitializedPubAccountTx{}, err
	}

	return InitializedPubAccountTx{
		PubAccount:             account,
		AssetIDMembershipProof: assetProof,
		BalanceWellFormedness:  WellFormednessProof{Initial: wfInitial, Response: wfResponse},
		BalanceCorrectness:     CorrectnessProof{Initial: ceInitial, Response: ceResponse},
		Signature:              sig,
	}, nil
}

// ValidateAccount verifies every proof and the signature in tx, and on success returns the OrderedPubAccount the
// validator should publish with its last-processed counter set to txID (spec.md §4.5). On any failure it returns an
// *AccountVerificationError wrapping the specific cause.
func ValidateAccount(tx InitializedPubAccountTx, allowedAssetIDs []uint64, gens *elgamal.PedersenGens, txID uint32) (OrderedPubAccount, error) {
	pubKey := tx.PubAccount.Memo.OwnerEncPubKey

	assetT := assetIDMembershipTranscript(tx.PubAccount.ID, pubKey, tx.PubAccount.EncAssetID, allowedAssetIDs)
	if err := proofs.VerifyAssetIdMembership(assetT, allowedAssetIDs, pubKey, tx.PubAccount.EncAssetID, gens, tx.AssetIDMembershipProof); err != nil {
		return OrderedPubAccount{}, &AccountVerificationError{Err: &ProofError{Proof: "asset-id-membership", Err: err}}
	}

	wfT := balanceWellFormednessTranscript(tx.PubAccount.ID, pubKey, tx.PubAccount.EncBalance)
	wfVerifier := proofs.WellFormednessVerifier{PubKey: pubKey, Cipher: tx.PubAccount.EncBalance, Gens: gens}
	if err := proofs.VerifyWellFormedness(wfT, wfVerifier, tx.BalanceWellFormedness.Initial, tx.BalanceWellFormedness.Response); err != nil {
		return OrderedPubAccount{}, &AccountVerificationError{Err: &ProofError{Proof: "balance-wellformedness", Err: err}}
	}

	ceT := balanceCorrectnessTranscript(tx.PubAccount.ID, pubKey, tx.PubAccount.EncBalance)
	ceVerifier := proofs.CorrectnessVerifier{Value: 0, PubKey: pubKey, Cipher: tx.PubAccount.EncBalance, Gens: gens}
	if err := proofs.VerifyCorrectEncryption(ceT, ceVerifier, tx.BalanceCorrectness.Initial, tx.BalanceCorrectness.Response); err != nil {
		return OrderedPubAccount{}, &AccountVerificationError{Err: &ProofError{Proof: "balance-correctness", Err: err}}
	}

	valid, err := sign.VerifyAccount(tx.PubAccount.Memo.OwnerSignPubKey, tx.Signature, bytes.NewReader(encodePubAccountContent(tx.PubAccount)))
	if err != nil {
		return OrderedPubAccount{}, &AccountVerificationError{Err: err}
	}
	if !valid {
		return OrderedPubAccount{}, &AccountVerificationError{Err: &SignatureError{Role: "account-holder"}}
	}

	return OrderedPubAccount{Account: tx.PubAccount, LastProcessedTxID: &txID}, nil
}
