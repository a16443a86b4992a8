package main

import (
	"fmt"

	"github.com/mercat-network/mercat/internal/logx"
	"github.com/mercat-network/mercat/mercat"
	"github.com/mercat-network/mercat/store"
	"github.com/urfave/cli/v2"
)

var senderUserFlag = &cli.StringFlag{
	Name:     "sender-user",
	Usage:    "store namespace of the sending account",
	Required: true,
}

var commandFinalizeTx = &cli.Command{
	Name:  "finalize-tx",
	Usage: "accept a confidential transfer from the receiver's side",
	Flags: []cli.Flag{userFlag, tickerFlag, passphraseFileFlag, senderUserFlag, amountFlag, txIDFlag},
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
		senderUser := ctx.String(senderUserFlag.Name)
		txID := uint32(ctx.Uint64(txIDFlag.Name))

		raw, err := s.LoadOnChain(senderUser, store.TxFile(txID, senderUser, "initialized"))
		if err != nil {
			return fmt.Errorf("loading initialized transfer tx: %w", err)
		}
		var initTx mercat.InitializedTransferTx
		if err := initTx.UnmarshalBinary(raw); err != nil {
			return err
		}

		sec, err := loadSecAccount(s, user, ticker, passphrase, gens())
		if err != nil {
			return fmt.Errorf("loading receiver secret account: %w", err)
		}
		defer sec.Zeroize()

		ftx, err := mercat.FinalizeTransfer(initTx, sec.SignKeys, sec.EncSecret, ctx.Uint64(amountFlag.Name), gens(), randReader)
		if err != nil {
			return fmt.Errorf("finalizing transfer: %w", err)
		}

		out, err := ftx.MarshalBinary()
		if err != nil {
			return err
		}
		if err := s.SaveOnChain(user, store.TxFile(txID, user, "finalized"), out); err != nil {
			return fmt.Errorf("publishing finalized transfer: %w", err)
		}

		logx.Info("transfer finalized", map[string]any{"user": user, "sender": senderUser, "ticker": ticker, "tx_id": txID})
		return nil
	},
}
