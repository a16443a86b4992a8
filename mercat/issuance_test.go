package mercat_test

import (
	"testing"

	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/internal/testdata"
	"github.com/mercat-network/mercat/mercat"
)

func approveAll(uint64) bool { return true }
func rejectAll(uint64) bool  { return false }

func TestAssetIssuanceHappyPath(t *testing.T) {
	drbg := testdata.New("issuance happy path")
	gens := elgamal.DefaultPedersenGens()

	issuerSec, err := mercat.NewSecAccount(1, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	issuerTx, err := mercat.CreateAccount(issuerSec, testAllowedAssetIDs, 1, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	issuerAccount, err := mercat.ValidateAccount(issuerTx, testAllowedAssetIDs, gens, 0)
	if err != nil {
		t.Fatal(err)
	}

	mediatorEnc, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	mediatorSignKeys, err := mercat.NewSigningKeyPair(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	mediator := mercat.NewMediatorPublicAccount(mediatorEnc, mediatorSignKeys, gens)

	itx, err := mercat.InitializeAssetIssuance(1, issuerSec.SignKeys, issuerSec.EncSecret, issuerSec.EncPublic, mediator.EncPublic, 100, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	jtx, err := mercat.JustifyAssetIssuance(itx, mediatorSignKeys, mediatorEnc, gens, approveAll, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	const txID = 1
	updated, err := mercat.ValidateAssetIssuance(jtx, issuerSec.EncPublic, mediator.EncPublic, issuerSec.SignKeys.Public, mediator.SignPublicKey, issuerAccount, gens, txID)
	if err != nil {
		t.Fatalf("validation failed: %v", err)
	}

	balance, err := elgamal.Decrypt(issuerSec.EncSecret, updated.Account.EncBalance, gens)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 100 {
		t.Errorf("balance = %d, want 100", balance)
	}
	if *updated.LastProcessedTxID != txID {
		t.Errorf("LastProcessedTxID = %d, want %d", *updated.LastProcessedTxID, txID)
	}
}

func TestAssetIssuanceMediatorRejects(t *testing.T) {
	drbg := testdata.New("issuance mediator rejects")
	gens := elgamal.DefaultPedersenGens()

	issuerSec, err := mercat.NewSecAccount(1, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	mediatorEnc, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	mediatorSignKeys, err := mercat.NewSigningKeyPair(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	mediator := mercat.NewMediatorPublicAccount(mediatorEnc, mediatorSignKeys, gens)

	itx, err := mercat.InitializeAssetIssuance(1, issuerSec.SignKeys, issuerSec.EncSecret, issuerSec.EncPublic, mediator.EncPublic, 1_000_000, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	jtx, err := mercat.JustifyAssetIssuance(itx, mediatorSignKeys, mediatorEnc, gens, rejectAll, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	if jtx.State != mercat.AssetTxJustificationRejected {
		t.Fatalf("State = %v, want AssetTxJustificationRejected", jtx.State)
	}

	if _, err := mercat.ValidateAssetIssuance(jtx, issuerSec.EncPublic, mediator.EncPublic, issuerSec.SignKeys.Public, mediator.SignPublicKey, mercat.OrderedPubAccount{}, gens, 1); err == nil {
		t.Fatal("validation should refuse a tx that was never justified")
	}
}

// TestAssetIssuanceRejectsMismatchedMediatorAmount covers the cipher-equality check tying the issuer-visible and
// mediator-visible issuance amounts together: an issuer who declares different amounts to each must be rejected by
// the validator even if the well-formedness proof on the issuer side alone is valid.
func TestAssetIssuanceRejectsMismatchedMediatorAmount(t *testing.T) {
	drbg := testdata.New("issuance mismatched mediator amount")
	gens := elgamal.DefaultPedersenGens()

	issuerSec, err := mercat.NewSecAccount(1, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	issuerTx, err := mercat.CreateAccount(issuerSec, testAllowedAssetIDs, 1, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	issuerAccount, err := mercat.ValidateAccount(issuerTx, testAllowedAssetIDs, gens, 0)
	if err != nil {
		t.Fatal(err)
	}

	mediatorEnc, err := elgamal.NewSecretKey(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	mediatorSignKeys, err := mercat.NewSigningKeyPair(drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	mediator := mercat.NewMediatorPublicAccount(mediatorEnc, mediatorSignKeys, gens)

	itx, err := mercat.InitializeAssetIssuance(1, issuerSec.SignKeys, issuerSec.EncSecret, issuerSec.EncPublic, mediator.EncPublic, 100, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	// Swap in a mediator-visible ciphertext for a different amount, from an otherwise independently valid issuance,
	// without regenerating the cipher-equality proof: the validator must catch the mismatch.
	other, err := mercat.InitializeAssetIssuance(1, issuerSec.SignKeys, issuerSec.EncSecret, issuerSec.EncPublic, mediator.EncPublic, 200, gens, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}
	itx.EncAmountUsingMdtr = other.EncAmountUsingMdtr

	jtx, err := mercat.JustifyAssetIssuance(itx, mediatorSignKeys, mediatorEnc, gens, approveAll, drbg.Reader())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := mercat.ValidateAssetIssuance(jtx, issuerSec.EncPublic, mediator.EncPublic, issuerSec.SignKeys.Public, mediator.SignPublicKey, issuerAccount, gens, 1); err == nil {
		t.Fatal("validation should have failed: mediator-visible amount ciphertext was swapped")
	}
}
