package sign_test

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/mercat-network/mercat/internal/testdata"
	"github.com/mercat-network/mercat/sign"
)

func TestSignAccount(t *testing.T) {
	drbg := testdata.New("mercat account signature")
	d, _ := drbg.KeyPair()

	t.Run("successful", func(t *testing.T) {
		signature, err := sign.SignAccount(d, drbg.Data(64), strings.NewReader("account message"))
		if err != nil {
			t.Fatal(err)
		}

		if got, want := len(signature), sign.Size; got != want {
			t.Errorf("len(signature) = %d, want %d", got, want)
		}
	})

	t.Run("reader failure", func(t *testing.T) {
		_, err := sign.SignAccount(d, drbg.Data(64), &testdata.ErrReader{Err: errors.New("broken")})
		if err == nil {
			t.Error("should have failed")
		}
	})
}

func TestVerifyAccount(t *testing.T) {
	drbg := testdata.New("mercat account signature")
	d, q := drbg.KeyPair()
	_, qX := drbg.KeyPair()

	signature, err := sign.SignAccount(d, drbg.Data(64), strings.NewReader("account message"))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid", func(t *testing.T) {
		valid, err := sign.VerifyAccount(q, signature, strings.NewReader("account message"))
		if err != nil {
			t.Fatal(err)
		}
		if !valid {
			t.Errorf("VerifyAccount() = false, want = true")
		}
	})

	t.Run("short signature", func(t *testing.T) {
		valid, err := sign.VerifyAccount(q, signature[:sign.Size-1], strings.NewReader("account message"))
		if err != nil {
			t.Fatal(err)
		}
		if valid {
			t.Errorf("VerifyAccount() = true, want = false")
		}
	})

	t.Run("wrong signer", func(t *testing.T) {
		valid, err := sign.VerifyAccount(qX, signature, strings.NewReader("account message"))
		if err != nil {
			t.Fatal(err)
		}
		if valid {
			t.Error("should not have been valid")
		}
	})

	t.Run("wrong message", func(t *testing.T) {
		valid, err := sign.VerifyAccount(q, signature, strings.NewReader("a different message"))
		if err != nil {
			t.Fatal(err)
		}
		if valid {
			t.Error("should not have been valid")
		}
	})

	t.Run("wrong domain", func(t *testing.T) {
		// A signature produced for DomainAccount must not verify as DomainAsset or DomainTransaction, even over the
		// identical message and key: each MERCAT message kind has its own domain separator.
		valid, err := sign.VerifyAsset(q, signature, strings.NewReader("account message"))
		if err != nil {
			t.Fatal(err)
		}
		if valid {
			t.Error("should not have been valid under a different domain")
		}
	})

	t.Run("non-canonical s", func(t *testing.T) {
		badS := slices.Clone(signature)
		for i := 32; i < 64; i++ {
			badS[i] = 0xff
		}
		valid, err := sign.VerifyAccount(q, badS, strings.NewReader("account message"))
		if err != nil {
			t.Fatal(err)
		}
		if valid {
			t.Error("should not have been valid")
		}
	})
}

func TestDomainSeparation(t *testing.T) {
	drbg := testdata.New("mercat domain separation")
	d, q := drbg.KeyPair()

	accountSig, err := sign.SignAccount(d, drbg.Data(64), strings.NewReader("same bytes"))
	if err != nil {
		t.Fatal(err)
	}
	assetSig, err := sign.SignAsset(d, drbg.Data(64), strings.NewReader("same bytes"))
	if err != nil {
		t.Fatal(err)
	}
	txSig, err := sign.SignTransaction(d, drbg.Data(64), strings.NewReader("same bytes"))
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(accountSig, assetSig) || bytes.Equal(assetSig, txSig) || bytes.Equal(accountSig, txSig) {
		t.Fatal("distinct domains produced colliding signatures")
	}

	valid, err := sign.VerifyTransaction(q, accountSig, strings.NewReader("same bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if valid {
		t.Error("account signature verified under the transaction domain")
	}
}

func FuzzVerifyAccount(f *testing.F) {
	drbg := testdata.New("mercat sig fuzz")
	_, q := drbg.KeyPair()

	for range 10 {
		f.Add(drbg.Data(sign.Size), drbg.Data(32))
	}

	f.Fuzz(func(t *testing.T, signature, message []byte) {
		valid, err := sign.VerifyAccount(q, signature, bytes.NewReader(message))
		if err != nil {
			t.Fatal(err)
		}
		if valid {
			t.Errorf("VerifyAccount(signature=%x, message=%x) = true, want = false", signature, message)
		}
	})
}
