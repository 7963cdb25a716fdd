package cli

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"github.com/hledgerkit/hledgerkit/importer"
	"github.com/hledgerkit/hledgerkit/importer/fidelity"
	"github.com/hledgerkit/hledgerkit/journal"
	"github.com/hledgerkit/hledgerkit/telemetry"
)

type FidelityCmd struct {
	Statement string `arg:"" type:"existingfile" help:"Fidelity transaction history CSV."`
	importFlags
}

func (cmd *FidelityCmd) Run(kctx *kong.Context, globals *Globals) error {
	setupLogging(globals.Verbose)

	run := func() error {
		return withTelemetry(globals, "fidelity import", kctx.Stderr, cmd.runOnce(kctx))
	}
	if err := run(); err != nil {
		return err
	}
	if cmd.Watch {
		return watchFile(context.Background(), cmd.Statement, kctx.Stderr, run)
	}
	return nil
}

func (cmd *FidelityCmd) runOnce(kctx *kong.Context) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		accounts, err := cmd.accounts(defaultAccounts("assets:taxable:liquid:ws:fidelity"))
		if err != nil {
			return err
		}

		parseTimer := telemetry.FromContext(ctx).Start("parse statement")
		content, err := os.ReadFile(cmd.Statement)
		if err != nil {
			parseTimer.End()
			return err
		}
		events, err := fidelity.Parse(string(content))
		parseTimer.End()
		if err != nil {
			return err
		}
		if len(events) == 0 {
			printInfof(kctx.Stderr, "no transactions in %s", cmd.Statement)
		}

		session := cmd.session(accounts)
		if err := snapshotDate(session, events); err != nil {
			return err
		}

		applyTimer := telemetry.FromContext(ctx).Start("apply events")
		transactions, err := importer.Apply(ctx, session, accounts, events)
		applyTimer.End()
		if err != nil {
			return err
		}

		sections := []journal.Section{{Title: "All Transactions", Transactions: transactions}}
		start, end := journal.Period(sections)
		return cmd.writeJournal(kctx, "hledgerkit fidelity", start, end, sections)
	}
}
