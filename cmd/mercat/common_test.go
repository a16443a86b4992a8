package main

import (
	"testing"

	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/internal/testdata"
	"github.com/mercat-network/mercat/mercat"
	"github.com/mercat-network/mercat/store"
)

func TestParseAssetIDs(t *testing.T) {
	got, err := parseAssetIDs("1, 2,3")
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("parseAssetIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("parseAssetIDs[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestParseAssetIDsRejectsEmpty(t *testing.T) {
	if _, err := parseAssetIDs(""); err == nil {
		t.Fatal("empty asset-id list should be rejected")
	}
}

func TestParseAssetIDsRejectsNonNumeric(t *testing.T) {
	if _, err := parseAssetIDs("1,abc,3"); err == nil {
		t.Fatal("non-numeric asset-id should be rejected")
	}
}

func TestPolicyFromMax(t *testing.T) {
	policy := policyFromMax(100)
	if !policy(100) {
		t.Error("amount equal to max should be approved")
	}
	if !policy(50) {
		t.Error("amount below max should be approved")
	}
	if policy(101) {
		t.Error("amount above max should be rejected")
	}
}

func TestLastValidatedTxIDRoundTrip(t *testing.T) {
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	got, err := loadLastValidatedTxID(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("default watermark = %d, want 0", got)
	}

	if err := saveLastValidatedTxID(s, 42); err != nil {
		t.Fatal(err)
	}
	got, err = loadLastValidatedTxID(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Fatalf("watermark after save = %d, want 42", got)
	}
}

func TestSecAccountStoreRoundTrip(t *testing.T) {
	drbg := testdata.New("cmd sec account round trip")
	gens := gens()
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	sec, err := mercat.NewSecAccount(1, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	if err := saveSecAccount(s, "alice", "ACME", sec, []byte("hunter2")); err != nil {
		t.Fatal(err)
	}
	got, err := loadSecAccount(s, "alice", "ACME", []byte("hunter2"), gens)
	if err != nil {
		t.Fatal(err)
	}
	if got.AssetIDWitness.Value != sec.AssetIDWitness.Value {
		t.Errorf("AssetIDWitness.Value = %d, want %d", got.AssetIDWitness.Value, sec.AssetIDWitness.Value)
	}
}

func TestOrderedAccountStoreRoundTrip(t *testing.T) {
	drbg := testdata.New("cmd ordered account round trip")
	gens := gens()
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	sec, err := mercat.NewSecAccount(1, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	tx, err := mercat.CreateAccount(sec, []uint64{1, 2}, 9, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	account, err := mercat.ValidateAccount(tx, []uint64{1, 2}, gens, 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := saveOrderedAccount(s, "alice", "ACME", account); err != nil {
		t.Fatal(err)
	}
	got, err := loadOrderedAccount(s, "alice", "ACME")
	if err != nil {
		t.Fatal(err)
	}
	if got.Account.ID != account.Account.ID {
		t.Errorf("Account.ID = %d, want %d", got.Account.ID, account.Account.ID)
	}
	if *got.LastProcessedTxID != *account.LastProcessedTxID {
		t.Errorf("LastProcessedTxID = %d, want %d", *got.LastProcessedTxID, *account.LastProcessedTxID)
	}
}

func TestMediatorPublicAccountStoreRoundTrip(t *testing.T) {
	drbg := testdata.New("cmd mediator public account round trip")
	gens := gens()
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	encSecret, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	signKeys, err := mercat.NewSigningKeyPair(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	mediator := mercat.NewMediatorPublicAccount(encSecret, signKeys, gens)

	if err := saveMediatorPublicAccount(s, mediator); err != nil {
		t.Fatal(err)
	}
	got, err := loadMediatorPublicAccount(s)
	if err != nil {
		t.Fatal(err)
	}
	if got.EncPublic.PubKey.Equal(mediator.EncPublic.PubKey) != 1 {
		t.Error("round-tripped mediator encryption key does not match")
	}
}

func TestMediatorSecretStoreRoundTrip(t *testing.T) {
	drbg := testdata.New("cmd mediator secret round trip")
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	encSecret, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	signKeys, err := mercat.NewSigningKeyPair(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	if err := saveMediatorSecret(s, "mediator", encSecret, signKeys, []byte("pw")); err != nil {
		t.Fatal(err)
	}
	gotEnc, gotSign, err := loadMediatorSecret(s, "mediator", []byte("pw"))
	if err != nil {
		t.Fatal(err)
	}
	if gotEnc.Scalar().Equal(encSecret.Scalar()) != 1 {
		t.Error("round-tripped mediator encryption secret does not match")
	}
	if gotSign.Public.Equal(signKeys.Public) != 1 {
		t.Error("round-tripped mediator signing public key does not match")
	}
}
