// Package sign implements the role-scoped Schnorr-over-Ristretto255 signatures MERCAT's three protocols use to bind
// an account, an asset issuance, or a transaction to its owner (spec.md §4.5). It is the teacher's own
// schemes/complex/sig adapted to carry a role-specific domain separator instead of a single caller-supplied one, so
// that a signature produced for one MERCAT message kind can never be replayed as another.
package sign

import (
	"bytes"
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat"
)

// Size is the length of a signature in bytes: a 32-byte commitment point followed by a 32-byte proof scalar.
const Size = 64

// Domain separators for the three message kinds MERCAT signs. Each protocol role driver signs exactly one of these;
// a signature computed under one domain will not verify under another, even for byte-identical message contents.
const (
	DomainAccount     = "mercat/account"
	DomainAsset       = "mercat/asset"
	DomainTransaction = "mercat/transaction"
)

// Sign produces a signature over message's contents under domain, using private key d and the caller-supplied
// entropy rand to hedge the otherwise-deterministic nonce derivation against fault attacks (the same discipline the
// teacher's Sign uses; spec.md's "Signing" leaves the nonce scheme to the implementation).
func Sign(domain string, d *ristretto255.Scalar, rand []byte, message io.Reader) ([]byte, error) {
	p := mercat.New(domain)
	p.Mix("signer", ristretto255.NewIdentityElement().ScalarBaseMult(d).Bytes())
	w := p.MixWriter("message")
	if _, err := io.Copy(w, message); err != nil {
		return nil, err
	}
	_ = w.Close()

	prover, verifier := p.Fork("role", []byte("prover"), []byte("verifier"))
	prover.Mix("signer-private", d.Bytes())
	prover.Mix("hedged-rand", rand)

	k, _ := ristretto255.NewScalar().SetUniformBytes(prover.Derive("commitment", nil, 64))
	r := ristretto255.NewIdentityElement().ScalarBaseMult(k)
	rOut := r.Bytes()

	verifier.Mix("commitment", rOut)
	c, _ := ristretto255.NewScalar().SetUniformBytes(verifier.Derive("challenge", nil, 64))

	s := ristretto255.NewScalar().Multiply(d, c)
	s = s.Add(s, k)
	return append(rOut, s.Bytes()...), nil
}

// Verify reports whether sig is a valid signature over message's contents under domain and public key q.
func Verify(domain string, q *ristretto255.Element, sig []byte, message io.Reader) (bool, error) {
	if len(sig) != Size {
		return false, nil
	}

	p := mercat.New(domain)
	p.Mix("signer", q.Bytes())
	w := p.MixWriter("message")
	if _, err := io.Copy(w, message); err != nil {
		return false, err
	}
	_ = w.Close()

	_, verifier := p.Fork("role", []byte("prover"), []byte("verifier"))
	verifier.Mix("commitment", sig[:32])
	c, _ := ristretto255.NewScalar().SetUniformBytes(verifier.Derive("challenge", nil, 64))

	s, _ := ristretto255.NewScalar().SetCanonicalBytes(sig[32:])
	if s == nil {
		return false, nil
	}

	expectedR := ristretto255.NewIdentityElement().VarTimeDoubleScalarBaseMult(ristretto255.NewScalar().Negate(c), q, s)
	return bytes.Equal(sig[:32], expectedR.Bytes()), nil
}

// SignAccount signs an account-creation message, scoping the signature to DomainAccount.
func SignAccount(d *ristretto255.Scalar, rand []byte, message io.Reader) ([]byte, error) {
	return Sign(DomainAccount, d, rand, message)
}

// VerifyAccount verifies a signature produced by SignAccount.
func VerifyAccount(q *ristretto255.Element, sig []byte, message io.Reader) (bool, error) {
	return Verify(DomainAccount, q, sig, message)
}

// SignAsset signs an asset-issuance message, scoping the signature to DomainAsset.
func SignAsset(d *ristretto255.Scalar, rand []byte, message io.Reader) ([]byte, error) {
	return Sign(DomainAsset, d, rand, message)
}

// VerifyAsset verifies a signature produced by SignAsset.
func VerifyAsset(q *ristretto255.Element, sig []byte, message io.Reader) (bool, error) {
	return Verify(DomainAsset, q, sig, message)
}

// SignTransaction signs a confidential-transfer message, scoping the signature to DomainTransaction.
func SignTransaction(d *ristretto255.Scalar, rand []byte, message io.Reader) ([]byte, error) {
	return Sign(DomainTransaction, d, rand, message)
}

// VerifyTransaction verifies a signature produced by SignTransaction.
func VerifyTransaction(q *ristretto255.Element, sig []byte, message io.Reader) (bool, error) {
	return Verify(DomainTransaction, q, sig, message)
}
