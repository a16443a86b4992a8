package mercat

import (
	"sort"

	"github.com/mercat-network/mercat/elgamal"
)

// OrderingState is the per-(sender, tx_id) bookkeeping the validator consults to decide whether a transfer's
// declared refreshed balance is consistent with every other transaction the sender has in flight (spec.md §3,
// "Ordering state"). LastPendingTxCounter must never fall below LastProcessedTxCounter.
type OrderingState struct {
	LastProcessedTxCounter uint32
	LastPendingTxCounter   uint32
	TxID                   uint32
}

// PendingOutgoing is one outgoing transfer a sender has initiated but the validator has not yet processed,
// identified by its tx_id and the ciphertext it encrypted its amount under with the sender's own key.
type PendingOutgoing struct {
	TxID               uint32
	EncAmountUsingSndr elgamal.CipherText
}

// ComputePendingBalance implements spec.md §4.7's pending-balance rule: the sender's last-processed encrypted
// balance, minus the sum of enc_amount_using_sndr for every pending outgoing transaction whose tx_id falls in
// (lastProcessedTxCounter, thisTxID). Callers must pass only transactions not yet applied to lastProcessedBalance;
// ComputePendingBalance itself only filters by tx_id range, it does not consult the store.
func ComputePendingBalance(lastProcessedBalance elgamal.CipherText, lastProcessedTxCounter uint32, thisTxID uint32, pending []PendingOutgoing) elgamal.CipherText {
	balance := lastProcessedBalance
	for _, p := range pending {
		if p.TxID > lastProcessedTxCounter && p.TxID < thisTxID {
			balance = balance.Sub(p.EncAmountUsingSndr)
		}
	}
	return balance
}

// TxOrderingKey orders transfers for validation: ascending tx_id, ties broken by lexicographic sender id (spec.md
// §4.7, "Ordering rule").
type TxOrderingKey struct {
	TxID     uint32
	SenderID string
}

// Less reports whether k sorts before other under the tx_id-then-sender-id ordering rule.
func (k TxOrderingKey) Less(other TxOrderingKey) bool {
	if k.TxID != other.TxID {
		return k.TxID < other.TxID
	}
	return k.SenderID < other.SenderID
}

// SortForValidation orders a batch of pending transfer keys into the sequence the validator must process them in.
func SortForValidation(keys []TxOrderingKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
