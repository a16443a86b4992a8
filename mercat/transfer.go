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

// TxState is the confidential-transfer state machine's current phase (spec.md §4.7). Justification{Rejected} is
// terminal.
type TxState int

const (
	TxInitializationStarted TxState = iota
	TxFinalizationStarted
	TxJustificationStarted
	TxJustificationValidated
	TxJustificationRejected
)

// InitializedTransferTx is the sender's initial message: the transfer amount encrypted under all three
// participants' keys, the sender's refreshed pending balance, and the proof bundle spec.md §4.7 requires —
// WellFormedness of the amount, CipherEquality tying all three amount ciphertexts together, and range proofs on both
// the amount and the post-transfer balance so neither can be negative.
type InitializedTransferTx struct {
	TxID                uint32
	SenderID            uint32
	ReceiverID          uint32
	EncAmountUsingSndr  elgamal.CipherText
	EncAmountUsingRcvr  elgamal.CipherText
	EncAmountUsingMdtr  elgamal.CipherText
	EncRefreshedBalance elgamal.CipherText
	AmountWellFormed    WellFormednessProof
	SndrRcvrEquality    CipherEqualityProof
	SndrMdtrEquality    CipherEqualityProof
	RangeAmount         proofs.RangeProof
	RangeRefreshed      proofs.RangeProof
	SenderSignature     []byte
}

// FinalizedTransferTx adds the receiver's acceptance signature to an InitializedTransferTx.
type FinalizedTransferTx struct {
	Initialized       InitializedTransferTx
	ReceiverSignature []byte
}

// JustifiedTransferTx adds the mediator's decision to a FinalizedTransferTx.
type JustifiedTransferTx struct {
	Finalized         FinalizedTransferTx
	State             TxState
	MediatorSignature []byte
}

func transferAmountTranscript(label string, txID uint32, encAmount elgamal.CipherText) *transcript.Transcript {
	t := transcript.New(label)
	t.AppendUint64("tx-id", uint64(txID))
	t.AppendPoint("enc-x", encAmount.X)
	t.AppendPoint("enc-y", encAmount.Y)
	return t
}

func transferEqualityTranscript(label string, txID uint32, pk1, pk2 elgamal.ElgamalPublicKey, ct1, ct2 elgamal.CipherText) *transcript.Transcript {
	t := transcript.New(label)
	t.AppendUint64("tx-id", uint64(txID))
	t.AppendPoint("pk1", pk1.PubKey)
	t.AppendPoint("pk2", pk2.PubKey)
	t.AppendPoint("ct1-x", ct1.X)
	t.AppendPoint("ct1-y", ct1.Y)
	t.AppendPoint("ct2-x", ct2.X)
	t.AppendPoint("ct2-y", ct2.Y)
	return t
}

func transferRangeTranscript(label string, txID uint32) *transcript.Transcript {
	t := transcript.New(label)
	t.AppendUint64("tx-id", uint64(txID))
	return t
}

func encodeTransferContent(tx InitializedTransferTx) []byte {
	w := codec.NewWriter()
	w.WriteUint32(tx.TxID)
	w.WriteUint32(tx.SenderID)
	w.WriteUint32(tx.ReceiverID)
	encodeCipher(w, tx.EncAmountUsingSndr)
	encodeCipher(w, tx.EncAmountUsingRcvr)
	encodeCipher(w, tx.EncAmountUsingMdtr)
	encodeCipher(w, tx.EncRefreshedBalance)
	return w.Bytes()
}

// InitializeTransfer runs the sender's side of a confidential transfer: it encrypts amount under all three
// participants' keys, computes the refreshed pending balance (pendingBalance minus amount, re-encrypted with a fresh
// blinding factor so its randomness is independent of the original), proves everything spec.md §4.7 requires, and
// signs under sign.DomainTransaction.
func InitializeTransfer(txID, senderID, receiverID uint32, senderKey SigningKeyPair, senderPub, receiverPub, mediatorPub elgamal.ElgamalPublicKey, pendingBalance elgamal.CipherText, amount uint64, refreshedBalance uint64, gens *elgamal.PedersenGens, rand io.Reader) (InitializedTransferTx, error) {
	wSndr, err := elgamal.NewCommitmentWitness(amount, rand)
	if err != nil {
		return InitializedTransferTx{}, err
	}
	wRcvr, err := elgamal.NewCommitmentWitness(amount, rand)
	if err != nil {
		return InitializedTransferTx{}, err
	}
	wMdtr, err := elgamal.NewCommitmentWitness(amount, rand)
	if err != nil {
		return InitializedTransferTx{}, err
	}
	wRefreshed, err := elgamal.NewCommitmentWitness(refreshedBalance, rand)
	if err != nil {
		return InitializedTransferTx{}, err
	}

	encSndr := elgamal.Encrypt(senderPub, wSndr, gens)
	encRcvr := elgamal.Encrypt(receiverPub, wRcvr, gens)
	encMdtr := elgamal.Encrypt(mediatorPub, wMdtr, gens)
	encRefreshed := elgamal.Encrypt(senderPub, wRefreshed, gens)

	wfT := transferAmountTranscript("mercat/transaction/amount-wellformedness", txID, encSndr)
	wfProver := proofs.NewWellFormednessProver(wSndr, senderPub, gens)
	wfInitial, wfResponse, err := proofs.ProveWellFormedness(wfT, wfProver, rand)
	if err != nil {
		return InitializedTransferTx{}, err
	}

	srT := transferEqualityTranscript("mercat/transaction/sndr-rcvr-equality", txID, senderPub, receiverPub, encSndr, encRcvr)
	srProver := proofs.NewCipherEqualityProver(wSndr, wRcvr, senderPub, receiverPub, gens)
	srInitial, srResponse, err := proofs.ProveCipherEquality(srT, srProver, rand)
	if err != nil {
		return InitializedTransferTx{}, err
	}

	smT := transferEqualityTranscript("mercat/transaction/sndr-mdtr-equality", txID, senderPub, mediatorPub, encSndr, encMdtr)
	smProver := proofs.NewCipherEqualityProver(wSndr, wMdtr, senderPub, mediatorPub, gens)
	smInitial, smResponse, err := proofs.ProveCipherEquality(smT, smProver, rand)
	if err != nil {
		return InitializedTransferTx{}, err
	}

	amountRangeT := transferRangeTranscript("mercat/transaction/range-amount", txID)
	rangeAmount, err := proofs.ProveRange(amountRangeT, amount, wSndr.Blinding, senderPub, gens, proofs.DefaultRangeBits, rand)
	if err != nil {
		return InitializedTransferTx{}, err
	}

	refreshedRangeT := transferRangeTranscript("mercat/transaction/range-refreshed", txID)
	rangeRefreshed, err := proofs.ProveRange(refreshedRangeT, refreshedBalance, wRefreshed.Blinding, senderPub, gens, proofs.DefaultRangeBits, rand)
	if err != nil {
		return InitializedTransferTx{}, err
	}

	tx := InitializedTransferTx{
		TxID:                txID,
		SenderID:            senderID,
		ReceiverID:          receiverID,
		EncAmountUsingSndr:  encSndr,
		EncAmountUsingRcvr:  encRcvr,
		EncAmountUsingMdtr:  encMdtr,
		EncRefreshedBalance: encRefreshed,
		AmountWellFormed:    WellFormednessProof{Initial: wfInitial, Response: wfResponse},
		SndrRcvrEquality:    CipherEqualityProof{Initial: srInitial, Response: srResponse},
		SndrMdtrEquality:    CipherEqualityProof{Initial: smInitial, Response: smResponse},
		RangeAmount:         rangeAmount,
		RangeRefreshed:      rangeRefreshed,
	}

	hedge := make([]byte, 32)
	if _, err := io.ReadFull(rand, hedge); err != nil {
		return InitializedTransferTx{}, err
	}
	sig, err := sign.SignTransaction(senderKey.Secret, hedge, bytes.NewReader(encodeTransferContent(tx)))
	if err != nil {
		return InitializedTransferTx{}, err
	}
	tx.SenderSignature = sig

	return tx, nil
}

// FinalizeTransfer runs the receiver's side: it decrypts EncAmountUsingRcvr and checks it matches the amount agreed
// out of band, then co-signs the sender's content under sign.DomainTransaction.
func FinalizeTransfer(tx InitializedTransferTx, receiverKey SigningKeyPair, receiverEncKey elgamal.ElgamalSecretKey, agreedAmount uint64, gens *elgamal.PedersenGens, rand io.Reader) (FinalizedTransferTx, error) {
	decrypted, err := elgamal.Decrypt(receiverEncKey, tx.EncAmountUsingRcvr, gens)
	if err != nil {
		return FinalizedTransferTx{}, &CryptoError{Err: err}
	}
	if decrypted != agreedAmount {
		return FinalizedTransferTx{}, &InputError{Reason: "receiver-visible amount does not match the agreed amount"}
	}

	hedge := make([]byte, 32)
	if _, err := io.ReadFull(rand, hedge); err != nil {
		return FinalizedTransferTx{}, err
	}
	sig, err := sign.SignTransaction(receiverKey.Secret, hedge, bytes.NewReader(encodeTransferContent(tx)))
	if err != nil {
		return FinalizedTransferTx{}, err
	}

	return FinalizedTransferTx{Initialized: tx, ReceiverSignature: sig}, nil
}

// JustifyTransfer runs the mediator's side: it decrypts EncAmountUsingMdtr, applies decide, and either signs a
// justification or returns a terminal rejection.
func JustifyTransfer(ftx FinalizedTransferTx, mediatorSignKey SigningKeyPair, mediatorEncKey elgamal.ElgamalSecretKey, gens *elgamal.PedersenGens, decide PolicyDecision, rand io.Reader) (JustifiedTransferTx, error) {
	amount, err := elgamal.Decrypt(mediatorEncKey, ftx.Initialized.EncAmountUsingMdtr, gens)
	if err != nil {
		return JustifiedTransferTx{}, &CryptoError{Err: err}
	}

	if !decide(amount) {
		return JustifiedTransferTx{Finalized: ftx, State: TxJustificationRejected}, nil
	}

	hedge := make([]byte, 32)
	if _, err := io.ReadFull(rand, hedge); err != nil {
		return JustifiedTransferTx{}, err
	}
	sig, err := sign.SignTransaction(mediatorSignKey.Secret, hedge, bytes.NewReader(encodeTransferContent(ftx.Initialized)))
	if err != nil {
		return JustifiedTransferTx{}, err
	}

	return JustifiedTransferTx{Finalized: ftx, State: TxJustificationValidated, MediatorSignature: sig}, nil
}

// ValidateTransfer runs the validator's side: it recomputes the sender's pending balance, checks that
// EncRefreshedBalance correctly reflects pendingBalance minus the sender-visible amount (BalanceCorrectness), checks
// every proof and every signature, and on success returns the updated sender and receiver accounts with both
// counters bumped to txID.
func ValidateTransfer(jtx JustifiedTransferTx, senderPub, receiverPub, mediatorPub elgamal.ElgamalPublicKey, mediatorSignPub *ristretto255.Element, pendingBalance elgamal.CipherText, senderAccount, receiverAccount OrderedPubAccount, gens *elgamal.PedersenGens) (sender, receiver OrderedPubAccount, err error) {
	if jtx.State != TxJustificationValidated {
		return OrderedPubAccount{}, OrderedPubAccount{}, &StateError{Reason: "transfer was not justified"}
	}

	tx := jtx.Finalized.Initialized

	expectedRefreshed := pendingBalance.Sub(tx.EncAmountUsingSndr)
	if !expectedRefreshed.Equal(tx.EncRefreshedBalance) {
		return OrderedPubAccount{}, OrderedPubAccount{}, &ProofError{Proof: "balance-correctness", Err: &StateError{Reason: "refreshed balance does not match pending balance minus the transferred amount"}}
	}

	wfT := transferAmountTranscript("mercat/transaction/amount-wellformedness", tx.TxID, tx.EncAmountUsingSndr)
	wfVerifier := proofs.WellFormednessVerifier{PubKey: senderPub, Cipher: tx.EncAmountUsingSndr, Gens: gens}
	if err := proofs.VerifyWellFormedness(wfT, wfVerifier, tx.AmountWellFormed.Initial, tx.AmountWellFormed.Response); err != nil {
		return OrderedPubAccount{}, OrderedPubAccount{}, &ProofError{Proof: "amount-wellformedness", Err: err}
	}

	srT := transferEqualityTranscript("mercat/transaction/sndr-rcvr-equality", tx.TxID, senderPub, receiverPub, tx.EncAmountUsingSndr, tx.EncAmountUsingRcvr)
	srVerifier := proofs.CipherEqualityVerifier{PubKey1: senderPub, PubKey2: receiverPub, Cipher1: tx.EncAmountUsingSndr, Cipher2: tx.EncAmountUsingRcvr, Gens: gens}
	if err := proofs.VerifyCipherEquality(srT, srVerifier, tx.SndrRcvrEquality.Initial, tx.SndrRcvrEquality.Response); err != nil {
		return OrderedPubAccount{}, OrderedPubAccount{}, &ProofError{Proof: "sndr-rcvr-equality", Err: err}
	}

	smT := transferEqualityTranscript("mercat/transaction/sndr-mdtr-equality", tx.TxID, senderPub, mediatorPub, tx.EncAmountUsingSndr, tx.EncAmountUsingMdtr)
	smVerifier := proofs.CipherEqualityVerifier{PubKey1: senderPub, PubKey2: mediatorPub, Cipher1: tx.EncAmountUsingSndr, Cipher2: tx.EncAmountUsingMdtr, Gens: gens}
	if err := proofs.VerifyCipherEquality(smT, smVerifier, tx.SndrMdtrEquality.Initial, tx.SndrMdtrEquality.Response); err != nil {
		return OrderedPubAccount{}, OrderedPubAccount{}, &ProofError{Proof: "sndr-mdtr-equality", Err: err}
	}

	amountRangeT := transferRangeTranscript("mercat/transaction/range-amount", tx.TxID)
	if err := proofs.VerifyRange(amountRangeT, tx.EncAmountUsingSndr, senderPub, gens, tx.RangeAmount); err != nil {
		return OrderedPubAccount{}, OrderedPubAccount{}, &ProofError{Proof: "range-amount", Err: err}
	}

	refreshedRangeT := transferRangeTranscript("mercat/transaction/range-refreshed", tx.TxID)
	if err := proofs.VerifyRange(refreshedRangeT, tx.EncRefreshedBalance, senderPub, gens, tx.RangeRefreshed); err != nil {
		return OrderedPubAccount{}, OrderedPubAccount{}, &ProofError{Proof: "range-refreshed", Err: err}
	}

	content := encodeTransferContent(tx)

	validSender, err := sign.VerifyTransaction(senderAccount.Account.Memo.OwnerSignPubKey, tx.SenderSignature, bytes.NewReader(content))
	if err != nil {
		return OrderedPubAccount{}, OrderedPubAccount{}, err
	}
	if !validSender {
		return OrderedPubAccount{}, OrderedPubAccount{}, &SignatureError{Role: "sender"}
	}

	validReceiver, err := sign.VerifyTransaction(receiverAccount.Account.Memo.OwnerSignPubKey, jtx.Finalized.ReceiverSignature, bytes.NewReader(content))
	if err != nil {
		return OrderedPubAccount{}, OrderedPubAccount{}, err
	}
	if !validReceiver {
		return OrderedPubAccount{}, OrderedPubAccount{}, &SignatureError{Role: "receiver"}
	}

	validMediator, err := sign.VerifyTransaction(mediatorSignPub, jtx.MediatorSignature, bytes.NewReader(content))
	if err != nil {
		return OrderedPubAccount{}, OrderedPubAccount{}, err
	}
	if !validMediator {
		return OrderedPubAccount{}, OrderedPubAccount{}, &SignatureError{Role: "mediator"}
	}

	updatedSender := senderAccount.Account
	updatedSender.EncBalance = updatedSender.EncBalance.Sub(tx.EncAmountUsingSndr)
	updatedReceiver := receiverAccount.Account
	updatedReceiver.EncBalance = updatedReceiver.EncBalance.Add(tx.EncAmountUsingRcvr)

	return OrderedPubAccount{Account: updatedSender, LastProcessedTxID: &tx.TxID},
		OrderedPubAccount{Account: updatedReceiver, LastProcessedTxID: &tx.TxID},
		nil
}
