package mercat_test

import (
	"testing"

	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/internal/testdata"
	"github.com/mercat-network/mercat/mercat"
)

func TestComputePendingBalanceFiltersByRange(t *testing.T) {
	drbg := testdata.New("pending balance")
	gens := elgamal.DefaultPedersenGens()

	sk, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	pk := sk.PublicKey(gens)

	base, err := elgamal.NewCommitmentWitness(100, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	baseBalance := elgamal.Encrypt(pk, base, gens)

	encAmount := func(v uint64) elgamal.CipherText {
		w, err := elgamal.NewCommitmentWitness(v, drbg.Reader())
		if err != nil {
			t.Fatal(err)
		}
		return elgamal.Encrypt(pk, w, gens)
	}

	pending := []mercat.PendingOutgoing{
		{TxID: 1, EncAmountUsingSndr: encAmount(5)},  // at or before lastProcessedTxCounter, excluded
		{TxID: 2, EncAmountUsingSndr: encAmount(10)}, // in (1, 4), included
		{TxID: 3, EncAmountUsingSndr: encAmount(20)}, // in (1, 4), included
		{TxID: 4, EncAmountUsingSndr: encAmount(40)}, // == thisTxID, excluded
	}

	result := mercat.ComputePendingBalance(baseBalance, 1, 4, pending)
	got, err := elgamal.Decrypt(sk, result, gens)
	if err != nil {
		t.Fatal(err)
	}
	if got != 100-10-20 {
		t.Fatalf("pending balance = %d, want %d", got, 100-10-20)
	}
}

func TestTxOrderingKeyLess(t *testing.T) {
	a := mercat.TxOrderingKey{TxID: 1, SenderID: "alice"}
	b := mercat.TxOrderingKey{TxID: 1, SenderID: "bob"}
	c := mercat.TxOrderingKey{TxID: 2, SenderID: "aaron"}

	if !a.Less(b) {
		t.Error("a should sort before b: same tx_id, lexicographically smaller sender")
	}
	if b.Less(a) {
		t.Error("b should not sort before a")
	}
	if !b.Less(c) {
		t.Error("b should sort before c: smaller tx_id always wins regardless of sender")
	}
}

func TestSortForValidation(t *testing.T) {
	keys := []mercat.TxOrderingKey{
		{TxID: 2, SenderID: "bob"},
		{TxID: 1, SenderID: "bob"},
		{TxID: 1, SenderID: "alice"},
	}
	mercat.SortForValidation(keys)

	want := []mercat.TxOrderingKey{
		{TxID: 1, SenderID: "alice"},
		{TxID: 1, SenderID: "bob"},
		{TxID: 2, SenderID: "bob"},
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %+v, want %+v", i, keys[i], want[i])
		}
	}
}
