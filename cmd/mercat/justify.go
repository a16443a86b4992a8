package main

import (
	"fmt"

	"github.com/mercat-network/mercat/internal/logx"
	"github.com/mercat-network/mercat/mercat"
	"github.com/mercat-network/mercat/store"
	"github.com/urfave/cli/v2"
)

var (
	kindFlag = &cli.StringFlag{
		Name:     "kind",
		Usage:    "which kind of artifact this command acts on",
		Required: true,
	}
	counterpartyUserFlag = &cli.StringFlag{
		Name:     "counterparty-user",
		Usage:    "store namespace the pending artifact was published under (the issuer for issuance, the sender for transfer)",
		Required: true,
	}
	maxAmountFlag = &cli.Uint64Flag{
		Name:     "max-amount",
		Usage:    "largest amount the mediator will approve",
		Required: true,
	}
)

var commandJustify = &cli.Command{
	Name:  "justify",
	Usage: "mediator decision on a pending asset issuance or confidential transfer",
	Flags: []cli.Flag{userFlag, tickerFlag, passphraseFileFlag, kindFlag, counterpartyUserFlag, txIDFlag, maxAmountFlag},
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
		counterparty := ctx.String(counterpartyUserFlag.Name)
		txID := uint32(ctx.Uint64(txIDFlag.Name))
		decide := policyFromMax(ctx.Uint64(maxAmountFlag.Name))

		encSecret, signKeys, err := loadMediatorSecret(s, user, passphrase)
		if err != nil {
			return fmt.Errorf("loading mediator secret: %w", err)
		}
		defer encSecret.Zeroize()
		defer signKeys.Zeroize()

		switch ctx.String(kindFlag.Name) {
		case "issuance":
			raw, err := s.LoadOnChain(counterparty, store.TxFile(txID, counterparty, "initialized"))
			if err != nil {
				return fmt.Errorf("loading initialized issuance tx: %w", err)
			}
			var tx mercat.InitializedAssetTx
			if err := tx.UnmarshalBinary(raw); err != nil {
				return err
			}

			jtx, err := mercat.JustifyAssetIssuance(tx, signKeys, encSecret, gens(), decide, randReader)
			if err != nil {
				return fmt.Errorf("justifying issuance: %w", err)
			}

			out, err := jtx.MarshalBinary()
			if err != nil {
				return err
			}
			if err := s.SaveOnChain(counterparty, store.TxFile(txID, counterparty, "justified"), out); err != nil {
				return fmt.Errorf("publishing justified issuance: %w", err)
			}
			logx.Info("issuance justified", map[string]any{"counterparty": counterparty, "tx_id": txID, "state": jtx.State})

		case "transfer":
			raw, err := s.LoadOnChain(counterparty, store.TxFile(txID, counterparty, "finalized"))
			if err != nil {
				return fmt.Errorf("loading finalized transfer tx: %w", err)
			}
			var ftx mercat.FinalizedTransferTx
			if err := ftx.UnmarshalBinary(raw); err != nil {
				return err
			}

			jtx, err := mercat.JustifyTransfer(ftx, signKeys, encSecret, gens(), decide, randReader)
			if err != nil {
				return fmt.Errorf("justifying transfer: %w", err)
			}

			out, err := jtx.MarshalBinary()
			if err != nil {
				return err
			}
			if err := s.SaveOnChain(counterparty, store.TxFile(txID, counterparty, "justified"), out); err != nil {
				return fmt.Errorf("publishing justified transfer: %w", err)
			}
			logx.Info("transfer justified", map[string]any{"counterparty": counterparty, "tx_id": txID, "state": jtx.State})

		default:
			return fmt.Errorf("--%s must be \"issuance\" or \"transfer\"", kindFlag.Name)
		}

		return nil
	},
}
