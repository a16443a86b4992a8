// Command mercat drives the MERCAT protocol's three state machines from the shell: one subcommand per role-facing
// operation spec.md §6 names (create-account, issue, create-tx, finalize-tx, justify, validate), each a thin
// adapter that loads artifacts from the store package, calls into the mercat package, and saves the result.
// Structured as a urfave/cli/v2 app with one *cli.Command per operation, the way tos-network-gtos's cmd/toskey
// builds its own subcommand-per-operation key manager.
package main

import (
	"fmt"
	"os"

	"github.com/mercat-network/mercat/internal/logx"
	"github.com/urfave/cli/v2"
)

var (
	dirFlag = &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"db-dir"},
		Value:   "./mercat-data",
		Usage:   "base directory for the on_chain/off_chain artifact store",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Value: logx.LevelInfo,
		Usage: "debug, info, warn, or error",
	}
)

func main() {
	app := &cli.App{
		Name:  "mercat",
		Usage: "mediated, encrypted, reversible, confidential asset transfer",
		Flags: []cli.Flag{dirFlag, logLevelFlag},
		Before: func(ctx *cli.Context) error {
			logx.Init(ctx.String(logLevelFlag.Name))
			return nil
		},
		Commands: []*cli.Command{
			commandCreateAccount,
			commandIssue,
			commandCreateTx,
			commandFinalizeTx,
			commandJustify,
			commandValidate,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mercat:", err)
		os.Exit(1)
	}
}
