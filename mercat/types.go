// Package mercat implements the MERCAT protocol's three state machines — Account Creation, Asset Issuance, and
// Confidential Transfer — on top of the elgamal, proofs, sign, and codec packages (spec.md §3, §4.5–4.8). It owns no
// I/O: artifact loading and saving is the store package's job, invoked by a caller between protocol steps (spec.md
// §5, "the core never blocks").
package mercat

import (
	"io"

	"github.com/gtank/ristretto255"
	"github.com/mercat-network/mercat/curve"
	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/sign"
)

// SigningKeyPair is a Schnorr-over-Ristretto255 keypair used to authenticate protocol messages under one of sign's
// role-scoped domains.
type SigningKeyPair struct {
	Secret *ristretto255.Scalar
	Public *ristretto255.Element
}

// NewSigningKeyPair draws a fresh signing keypair.
func NewSigningKeyPair(rand io.Reader) (SigningKeyPair, error) {
	s, err := curve.RandomScalar(rand)
	if err != nil {
		return SigningKeyPair{}, err
	}
	return SigningKeyPair{Secret: s, Public: ristretto255.NewIdentityElement().ScalarBaseMult(s)}, nil
}

// Zeroize scrubs the signing keypair's secret scalar.
func (k *SigningKeyPair) Zeroize() {
	if k.Secret == nil {
		return
	}
	var zero [curve.ScalarSize]byte
	_, _ = k.Secret.SetCanonicalBytes(zero[:])
}

// SecAccount is an account holder's complete secret state: the ElGamal keypair used to encrypt balances and amounts,
// the signing keypair used to authenticate messages, and the witness binding the account to one allowlisted asset-id
// (spec.md §3, "SecAccount"). It must never leave the holder's off-chain store; see the store package.
type SecAccount struct {
	EncSecret      elgamal.ElgamalSecretKey
	EncPublic      elgamal.ElgamalPublicKey
	SignKeys       SigningKeyPair
	AssetIDWitness elgamal.CommitmentWitness
}

// NewSecAccount builds a fresh secret account bound to assetID, with freshly sampled ElGamal and signing keys.
func NewSecAccount(assetID uint64, gens *elgamal.PedersenGens, rand io.Reader) (SecAccount, error) {
	encSecret, err := elgamal.NewSecretKey(rand)
	if err != nil {
		return SecAccount{}, err
	}
	signKeys, err := NewSigningKeyPair(rand)
	if err != nil {
		return SecAccount{}, err
	}
	witness, err := elgamal.NewCommitmentWitness(assetID, rand)
	if err != nil {
		return SecAccount{}, err
	}
	return SecAccount{
		EncSecret:      encSecret,
		EncPublic:      encSecret.PublicKey(gens),
		SignKeys:       signKeys,
		AssetIDWitness: witness,
	}, nil
}

// Zeroize scrubs every secret this account carries (spec.md §9, "Zeroization").
func (a *SecAccount) Zeroize() {
	a.EncSecret.Zeroize()
	a.SignKeys.Zeroize()
	a.AssetIDWitness.Zeroize()
}

// AccountMemo identifies an account's public keys and the last transaction counter the holder has observed as
// processed, so a counterparty can address a transfer without consulting the store directly.
type AccountMemo struct {
	OwnerEncPubKey     elgamal.ElgamalPublicKey
	OwnerSignPubKey    *ristretto255.Element
	LastProcessedTxCtr uint32
}

// PubAccount is the publicly shared half of an account: its id, its encrypted asset-id, its encrypted balance, and
// its memo (spec.md §3, "PubAccount"). Both invariants it states — enc_asset_id decrypts into the allowlist,
// enc_balance never decrypts negative — are established and preserved by the protocols in this package, not by
// PubAccount itself.
type PubAccount struct {
	ID         uint32
	EncAssetID elgamal.CipherText
	EncBalance elgamal.CipherText
	Memo       AccountMemo
}

// OrderedPubAccount pairs a PubAccount with the validator's view of how far it has been processed. LastProcessedTxID
// is nil until the account's first transaction validates; thereafter it only advances (spec.md §3, "monotonic").
type OrderedPubAccount struct {
	Account           PubAccount
	LastProcessedTxID *uint32
}

// Advance returns a copy of o with LastProcessedTxID set to txID. It panics if txID would move the counter
// backwards, since that would violate the monotonicity invariant the validator alone is responsible for upholding.
func (o OrderedPubAccount) Advance(txID uint32) OrderedPubAccount {
	if o.LastProcessedTxID != nil && txID < *o.LastProcessedTxID {
		panic("mercat: last_processed_tx_counter must only advance")
	}
	next := o
	next.LastProcessedTxID = &txID
	return next
}

// MediatorPublicAccount is the mediator's shared public material: the encryption key issuers and senders encrypt
// amounts under so the mediator alone can decrypt them, and the signing key validators check mediator justifications
// against (spec.md §3, "Mediator"). A mediator holds no balance and belongs to no asset-id allowlist, so it carries
// none of PubAccount's fields beyond these two keys.
type MediatorPublicAccount struct {
	EncPublic     elgamal.ElgamalPublicKey
	SignPublicKey *ristretto255.Element
}

// NewMediatorPublicAccount derives a mediator's shareable public material from its secret ElGamal key and signing
// keypair. Unlike account holders, a mediator has no asset-id witness and no balance, so there is no corresponding
// SecAccount — callers hold a bare elgamal.ElgamalSecretKey and SigningKeyPair instead.
func NewMediatorPublicAccount(encSecret elgamal.ElgamalSecretKey, signKeys SigningKeyPair, gens *elgamal.PedersenGens) MediatorPublicAccount {
	return MediatorPublicAccount{
		EncPublic:     encSecret.PublicKey(gens),
		SignPublicKey: signKeys.Public,
	}
}

// SignDomain identifies which of sign's role-scoped domains a message kind is authenticated under.
type SignDomain = string

const (
	// SignDomainAccount scopes account-creation signatures.
	SignDomainAccount SignDomain = sign.DomainAccount
	// SignDomainAsset scopes asset-issuance signatures.
	SignDomainAsset SignDomain = sign.DomainAsset
	// SignDomainTransaction scopes confidential-transfer signatures.
	SignDomainTransaction SignDomain = sign.DomainTransaction
)
