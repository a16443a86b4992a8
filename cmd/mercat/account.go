package main

import (
	"fmt"

	"github.com/mercat-network/mercat/elgamal"
	"github.com/mercat-network/mercat/internal/logx"
	"github.com/mercat-network/mercat/mercat"
	"github.com/mercat-network/mercat/store"
	"github.com/urfave/cli/v2"
)

var (
	accountIDFlag = &cli.Uint64Flag{
		Name:  "account-id",
		Usage: "numeric id this account will be published under (required unless --mediator)",
	}
	assetIDFlag = &cli.Uint64Flag{
		Name:  "asset-id",
		Usage: "the asset-id this account is bound to; must appear in --asset-ids (required unless --mediator)",
	}
	createAccountTickerFlag = &cli.StringFlag{
		Name:  "ticker",
		Usage: "asset ticker identifying the account (required unless --mediator)",
	}
	mediatorFlag = &cli.BoolFlag{
		Name:  "mediator",
		Usage: "generate the mediator's shared key material instead of a balance-holding account",
	}
)

var commandCreateAccount = &cli.Command{
	Name:  "create-account",
	Usage: "generate a secret account bound to one asset-id and publish its initialization message, or the mediator's shared key material with --mediator",
	Flags: []cli.Flag{userFlag, createAccountTickerFlag, passphraseFileFlag, assetIDsFlag, assetIDFlag, accountIDFlag, mediatorFlag},
	Action: func(ctx *cli.Context) error {
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase(ctx)
		if err != nil {
			return err
		}
		user := ctx.String(userFlag.Name)

		if ctx.Bool(mediatorFlag.Name) {
			return createMediator(ctx, s, user, passphrase)
		}

		ticker := ctx.String(createAccountTickerFlag.Name)
		if ticker == "" {
			return fmt.Errorf("--%s is required unless --mediator is set", createAccountTickerFlag.Name)
		}
		if !ctx.IsSet(accountIDFlag.Name) {
			return fmt.Errorf("--%s is required unless --mediator is set", accountIDFlag.Name)
		}
		if !ctx.IsSet(assetIDFlag.Name) {
			return fmt.Errorf("--%s is required unless --mediator is set", assetIDFlag.Name)
		}

		allowed, err := parseAssetIDs(ctx.String(assetIDsFlag.Name))
		if err != nil {
			return err
		}

		sec, err := mercat.NewSecAccount(ctx.Uint64(assetIDFlag.Name), gens(), randReader)
		if err != nil {
			return fmt.Errorf("generating secret account: %w", err)
		}

		tx, err := mercat.CreateAccount(sec, allowed, uint32(ctx.Uint64(accountIDFlag.Name)), gens(), randReader)
		if err != nil {
			sec.Zeroize()
			return fmt.Errorf("initializing account: %w", err)
		}

		if err := saveSecAccount(s, user, ticker, sec, passphrase); err != nil {
			sec.Zeroize()
			return fmt.Errorf("sealing secret account: %w", err)
		}
		sec.Zeroize()

		raw, err := tx.MarshalBinary()
		if err != nil {
			return err
		}
		if err := s.SaveOnChain(user, store.AccountTxFile(tx.PubAccount.ID, user, ticker), raw); err != nil {
			return fmt.Errorf("publishing account-creation tx: %w", err)
		}

		logx.Info("account creation initialized", map[string]any{"user": user, "ticker": ticker, "account_id": tx.PubAccount.ID})
		return nil
	},
}

// createMediator generates the mediator's ElGamal and signing keypairs, seals the secret half off-chain under user,
// and publishes the public half to the store's common namespace so every other role can find it (spec.md §3,
// "Mediator").
func createMediator(ctx *cli.Context, s *store.Store, user string, passphrase []byte) error {
	encSecret, err := elgamal.NewSecretKey(randReader)
	if err != nil {
		return fmt.Errorf("generating mediator encryption key: %w", err)
	}
	signKeys, err := mercat.NewSigningKeyPair(randReader)
	if err != nil {
		encSecret.Zeroize()
		return fmt.Errorf("generating mediator signing key: %w", err)
	}

	if err := saveMediatorSecret(s, user, encSecret, signKeys, passphrase); err != nil {
		encSecret.Zeroize()
		signKeys.Zeroize()
		return fmt.Errorf("sealing mediator secret: %w", err)
	}

	pub := mercat.NewMediatorPublicAccount(encSecret, signKeys, gens())
	encSecret.Zeroize()
	signKeys.Zeroize()

	if err := saveMediatorPublicAccount(s, pub); err != nil {
		return fmt.Errorf("publishing mediator public account: %w", err)
	}

	logx.Info("mediator key material generated", map[string]any{"user": user})
	return nil
}
