package main

import (
	"fmt"

	"github.com/mercat-network/mercat/internal/logx"
	"github.com/mercat-network/mercat/mercat"
	"github.com/mercat-network/mercat/store"
	"github.com/urfave/cli/v2"
)

var validateReceiverUserFlag = &cli.StringFlag{
	Name:  "receiver-user",
	Usage: "store namespace of the receiving account (required for --kind=transfer)",
}

var commandValidate = &cli.Command{
	Name:  "validate",
	Usage: "validator check on an account-creation, issuance, or transfer tx; advances on-chain state on success",
	Flags: []cli.Flag{tickerFlag, kindFlag, counterpartyUserFlag, validateReceiverUserFlag, txIDFlag, accountIDFlag, assetIDsFlag},
	Action: func(ctx *cli.Context) error {
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		ticker := ctx.String(tickerFlag.Name)
		counterparty := ctx.String(counterpartyUserFlag.Name)
		txID := uint32(ctx.Uint64(txIDFlag.Name))

		switch ctx.String(kindFlag.Name) {
		case "account":
			if !ctx.IsSet(accountIDFlag.Name) {
				return fmt.Errorf("--%s is required for --kind=account", accountIDFlag.Name)
			}
			allowed, err := parseAssetIDs(ctx.String(assetIDsFlag.Name))
			if err != nil {
				return err
			}
			accountID := uint32(ctx.Uint64(accountIDFlag.Name))

			raw, err := s.LoadOnChain(counterparty, store.AccountTxFile(accountID, counterparty, ticker))
			if err != nil {
				return fmt.Errorf("loading account-creation tx: %w", err)
			}
			var tx mercat.InitializedPubAccountTx
			if err := tx.UnmarshalBinary(raw); err != nil {
				return err
			}

			account, err := mercat.ValidateAccount(tx, allowed, gens(), txID)
			if err != nil {
				return fmt.Errorf("validating account: %w", err)
			}
			if err := saveOrderedAccount(s, counterparty, ticker, account); err != nil {
				return fmt.Errorf("publishing validated account: %w", err)
			}
			if err := saveLastValidatedTxID(s, txID); err != nil {
				return err
			}
			logx.Info("account validated", map[string]any{"user": counterparty, "ticker": ticker, "tx_id": txID})

		case "issuance":
			raw, err := s.LoadOnChain(counterparty, store.TxFile(txID, counterparty, "justified"))
			if err != nil {
				return fmt.Errorf("loading justified issuance tx: %w", err)
			}
			var jtx mercat.JustifiedAssetTx
			if err := jtx.UnmarshalBinary(raw); err != nil {
				return err
			}

			issuerAccount, err := loadOrderedAccount(s, counterparty, ticker)
			if err != nil {
				return fmt.Errorf("loading issuer account: %w", err)
			}
			mediator, err := loadMediatorPublicAccount(s)
			if err != nil {
				return fmt.Errorf("loading mediator public account: %w", err)
			}

			updated, err := mercat.ValidateAssetIssuance(
				jtx,
				issuerAccount.Account.Memo.OwnerEncPubKey,
				mediator.EncPublic,
				issuerAccount.Account.Memo.OwnerSignPubKey,
				mediator.SignPublicKey,
				issuerAccount,
				gens(),
				txID,
			)
			if err != nil {
				return fmt.Errorf("validating issuance: %w", err)
			}
			if err := saveOrderedAccount(s, counterparty, ticker, updated); err != nil {
				return fmt.Errorf("publishing validated account: %w", err)
			}
			if err := saveLastValidatedTxID(s, txID); err != nil {
				return err
			}
			logx.Info("issuance validated", map[string]any{"user": counterparty, "ticker": ticker, "tx_id": txID})

		case "transfer":
			receiverUser := ctx.String(validateReceiverUserFlag.Name)
			if receiverUser == "" {
				return fmt.Errorf("--%s is required for --kind=transfer", validateReceiverUserFlag.Name)
			}

			raw, err := s.LoadOnChain(counterparty, store.TxFile(txID, counterparty, "justified"))
			if err != nil {
				return fmt.Errorf("loading justified transfer tx: %w", err)
			}
			var jtx mercat.JustifiedTransferTx
			if err := jtx.UnmarshalBinary(raw); err != nil {
				return err
			}

			senderAccount, err := loadOrderedAccount(s, counterparty, ticker)
			if err != nil {
				return fmt.Errorf("loading sender account: %w", err)
			}
			receiverAccount, err := loadOrderedAccount(s, receiverUser, ticker)
			if err != nil {
				return fmt.Errorf("loading receiver account: %w", err)
			}
			mediator, err := loadMediatorPublicAccount(s)
			if err != nil {
				return fmt.Errorf("loading mediator public account: %w", err)
			}

			// Same sequential-processing simplification as create-tx: the sender's on-chain balance already
			// reflects every earlier validated transaction.
			pendingBalance := senderAccount.Account.EncBalance

			updatedSender, updatedReceiver, err := mercat.ValidateTransfer(
				jtx,
				senderAccount.Account.Memo.OwnerEncPubKey,
				receiverAccount.Account.Memo.OwnerEncPubKey,
				mediator.EncPublic,
				mediator.SignPublicKey,
				pendingBalance,
				senderAccount,
				receiverAccount,
				gens(),
			)
			if err != nil {
				return fmt.Errorf("validating transfer: %w", err)
			}
			if err := saveOrderedAccount(s, counterparty, ticker, updatedSender); err != nil {
				return fmt.Errorf("publishing validated sender account: %w", err)
			}
			if err := saveOrderedAccount(s, receiverUser, ticker, updatedReceiver); err != nil {
				return fmt.Errorf("publishing validated receiver account: %w", err)
			}
			if err := saveLastValidatedTxID(s, txID); err != nil {
				return err
			}
			logx.Info("transfer validated", map[string]any{"sender": counterparty, "receiver": receiverUser, "ticker": ticker, "tx_id": txID})

		default:
			return fmt.Errorf("--%s must be \"account\", \"issuance\", or \"transfer\"", kindFlag.Name)
		}

		return nil
	},
}
