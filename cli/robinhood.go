package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/hledgerkit/hledgerkit/extract"
	"github.com/hledgerkit/hledgerkit/importer"
	"github.com/hledgerkit/hledgerkit/importer/robinhood"
	"github.com/hledgerkit/hledgerkit/journal"
	"github.com/hledgerkit/hledgerkit/telemetry"
)

type RobinhoodCmd struct {
	Statement string `arg:"" type:"existingfile" help:"Robinhood account statement PDF."`
	importFlags
}

func (cmd *RobinhoodCmd) Run(kctx *kong.Context, globals *Globals) error {
	setupLogging(globals.Verbose)

	if !extract.Available() {
		return fmt.Errorf("pdftotext not found in PATH; install poppler-utils")
	}

	run := func() error {
		return withTelemetry(globals, "robinhood import", kctx.Stderr, cmd.runOnce(kctx))
	}
	if err := run(); err != nil {
		return err
	}
	if cmd.Watch {
		return watchFile(context.Background(), cmd.Statement, kctx.Stderr, run)
	}
	return nil
}

func (cmd *RobinhoodCmd) runOnce(kctx *kong.Context) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		accounts, err := cmd.accounts(defaultAccounts("assets:taxable:liquid:lz:robinhood"))
		if err != nil {
			return err
		}

		parseTimer := telemetry.FromContext(ctx).Start("parse statement")
		text, err := extract.Text(ctx, cmd.Statement)
		if err != nil {
			parseTimer.End()
			return err
		}
		shadow, err := robinhood.LoadShadow(robinhood.ShadowPath(cmd.Statement))
		if err != nil {
			parseTimer.End()
			return err
		}
		events, err := robinhood.Parse(text, shadow)
		parseTimer.End()
		if err != nil {
			return err
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
		return cmd.writeJournal(kctx, "hledgerkit robinhood", start, end, sections)
	}
}
