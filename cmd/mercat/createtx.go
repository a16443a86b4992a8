package main

import (
	"fmt"

	"github.com/mercat-network/mercat/internal/logx"
	"github.com/mercat-network/mercat/store"
	"github.com/mercat-network/mercat/mercat"
	"github.com/urfave/cli/v2"
)

var (
	receiverUserFlag = &cli.StringFlag{
		Name:     "receiver-user",
		Usage:    "store namespace of the receiving account",
		Required: true,
	}
	refreshedBalanceFlag = &cli.Uint64Flag{
		Name:     "refreshed-balance",
		Usage:    "the sender's plaintext balance after this transfer is applied",
		Required: true,
	}
)

var commandCreateTx = &cli.Command{
	Name:  "create-tx",
	Usage: "initialize a confidential transfer from the sender's side",
	Flags: []cli.Flag{userFlag, tickerFlag, passphraseFileFlag, receiverUserFlag, amountFlag, refreshedBalanceFlag, txIDFlag},
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
		receiverUser := ctx.String(receiverUserFlag.Name)

		sec, err := loadSecAccount(s, user, ticker, passphrase, gens())
		if err != nil {
			return fmt.Errorf("loading sender secret account: %w", err)
		}
		defer sec.Zeroize()

		senderAccount, err := loadOrderedAccount(s, user, ticker)
		if err != nil {
			return fmt.Errorf("loading sender public account: %w", err)
		}
		receiverAccount, err := loadOrderedAccount(s, receiverUser, ticker)
		if err != nil {
			return fmt.Errorf("loading receiver public account: %w", err)
		}
		mediator, err := loadMediatorPublicAccount(s)
		if err != nil {
			return fmt.Errorf("loading mediator public account: %w", err)
		}

		txID := uint32(ctx.Uint64(txIDFlag.Name))

		// The CLI processes one transfer at a time in tx_id order, so the sender's current on-chain balance already
		// reflects every earlier validated transaction; there is no outstanding pending set to subtract (spec.md
		// §4.7's general rule, specialized to sequential single-command use).
		pendingBalance := senderAccount.Account.EncBalance

		tx, err := mercat.InitializeTransfer(
			txID,
			senderAccount.Account.ID,
			receiverAccount.Account.ID,
			sec.SignKeys,
			sec.EncPublic,
			receiverAccount.Account.Memo.OwnerEncPubKey,
			mediator.EncPublic,
			pendingBalance,
			ctx.Uint64(amountFlag.Name),
			ctx.Uint64(refreshedBalanceFlag.Name),
			gens(),
			randReader,
		)
		if err != nil {
			return fmt.Errorf("initializing transfer: %w", err)
		}

		raw, err := tx.MarshalBinary()
		if err != nil {
			return err
		}
		if err := s.SaveOnChain(user, store.TxFile(txID, user, "initialized"), raw); err != nil {
			return fmt.Errorf("publishing transfer tx: %w", err)
		}

		logx.Info("transfer initialized", map[string]any{"user": user, "receiver": receiverUser, "ticker": ticker, "tx_id": txID})
		return nil
	},
}
