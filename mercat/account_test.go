package mercat_test

import (
	"testing"

	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/internal/testdata"
	"github.com/mercat-network/mercat/mercat"
)

var testAllowedAssetIDs = []uint64{1, 2, 3}

func TestCreateAndValidateAccount(t *testing.T) {
	drbg := testdata.New("account create and validate")
	gens := elgamal.DefaultPedersenGens()

	sec, err := mercat.NewSecAccount(2, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	tx, err := mercat.CreateAccount(sec, testAllowedAssetIDs, 7, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	const txID = 1
	account, err := mercat.ValidateAccount(tx, testAllowedAssetIDs, gens, txID)
	if err != nil {
		t.Fatalf("validation failed: %v", err)
	}
	if account.Account.ID != 7 {
		t.Errorf("account ID = %d, want 7", account.Account.ID)
	}
	if account.LastProcessedTxID == nil || *account.LastProcessedTxID != txID {
		t.Errorf("LastProcessedTxID = %v, want %d", account.LastProcessedTxID, txID)
	}

	balance, err := elgamal.Decrypt(sec.EncSecret, account.Account.EncBalance, gens)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 0 {
		t.Errorf("initial balance = %d, want 0", balance)
	}
}

func TestCreateAccountRejectsAssetIDNotInAllowlist(t *testing.T) {
	drbg := testdata.New("account asset id not allowed")
	gens := elgamal.DefaultPedersenGens()

	sec, err := mercat.NewSecAccount(999, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := mercat.CreateAccount(sec, testAllowedAssetIDs, 1, gens, drbg.Reader()); err == nil {
		t.Fatal("should have rejected an asset-id outside the allowlist")
	}
}

func TestValidateAccountRejectsTamperedBalanceProof(t *testing.T) {
	drbg := testdata.New("account tampered balance proof")
	gens := elgamal.DefaultPedersenGens()

	sec, err := mercat.NewSecAccount(1, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	tx, err := mercat.CreateAccount(sec, testAllowedAssetIDs, 3, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	other, err := mercat.NewSecAccount(1, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	otherTx, err := mercat.CreateAccount(other, testAllowedAssetIDs, 3, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	tx.BalanceCorrectness = otherTx.BalanceCorrectness

	if _, err := mercat.ValidateAccount(tx, testAllowedAssetIDs, gens, 1); err == nil {
		t.Fatal("validation should have failed for a swapped-in correctness proof")
	}
}

func TestValidateAccountRejectsTamperedSignature(t *testing.T) {
	drbg := testdata.New("account tampered signature")
	gens := elgamal.DefaultPedersenGens()

	sec, err := mercat.NewSecAccount(1, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	tx, err := mercat.CreateAccount(sec, testAllowedAssetIDs, 3, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	tx.Signature[0] ^= 0xff

	if _, err := mercat.ValidateAccount(tx, testAllowedAssetIDs, gens, 1); err == nil {
		t.Fatal("validation should have failed for a tampered signature")
	}
}

func TestOrderedPubAccountAdvanceRejectsRegression(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Advance should have panicked on a backwards tx_id")
		}
	}()

	account := mercat.OrderedPubAccount{}.Advance(5)
	account.Advance(4)
}

func TestOrderedPubAccountAdvanceMonotonic(t *testing.T) {
	account := mercat.OrderedPubAccount{}.Advance(1)
	account = account.Advance(1)
	account = account.Advance(2)
	if *account.LastProcessedTxID != 2 {
		t.Fatalf("LastProcessedTxID = %d, want 2", *account.LastProcessedTxID)
	}
}
