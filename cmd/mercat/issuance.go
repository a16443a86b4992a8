package main

import (
	"fmt"

	"github.com/mercat-network/mercat/internal/logx"
	"github.com/mercat-network/mercat/mercat"
	"github.com/mercat-network/mercat/store"
	"github.com/urfave/cli/v2"
)

var (
	issuerIDFlag = &cli.Uint64Flag{
		Name:     "issuer-id",
		Usage:    "account id of the issuing account",
		Required: true,
	}
	amountFlag = &cli.Uint64Flag{
		Name:     "amount",
		Usage:    "the amount being issued or transferred",
		Required: true,
	}
)

var commandIssue = &cli.Command{
	Name:  "issue",
	Usage: "issue a confidential amount of an asset to the issuer's own account",
	Flags: []cli.Flag{userFlag, tickerFlag, passphraseFileFlag, issuerIDFlag, amountFlag, txIDFlag},
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
		ticker := ctx.String(tickerFlag.Name)

		sec, err := loadSecAccount(s, user, ticker, passphrase, gens())
		if err != nil {
			return fmt.Errorf("loading issuer secret account: %w", err)
		}
		defer sec.Zeroize()

		mediator, err := loadMediatorPublicAccount(s)
		if err != nil {
			return fmt.Errorf("loading mediator public account: %w", err)
		}

		tx, err := mercat.InitializeAssetIssuance(
			uint32(ctx.Uint64(issuerIDFlag.Name)),
			sec.SignKeys,
			sec.EncSecret,
			sec.EncPublic,
			mediator.EncPublic,
			ctx.Uint64(amountFlag.Name),
			gens(),
			randReader,
		)
		if err != nil {
			return fmt.Errorf("initializing asset issuance: %w", err)
		}

		raw, err := tx.MarshalBinary()
		if err != nil {
			return err
		}
		txID := uint32(ctx.Uint64(txIDFlag.Name))
		if err := s.SaveOnChain(user, store.TxFile(txID, user, "initialized"), raw); err != nil {
			return fmt.Errorf("publishing issuance tx: %w", err)
		}

		logx.Info("asset issuance initialized", map[string]any{"user": user, "ticker": ticker, "tx_id": txID})
		return nil
	},
}
