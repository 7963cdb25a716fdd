package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/hledgerkit/hledgerkit/extract"
	"github.com/hledgerkit/hledgerkit/importer"
	"github.com/hledgerkit/hledgerkit/importer/acorns"
	"github.com/hledgerkit/hledgerkit/journal"
	"github.com/hledgerkit/hledgerkit/ledger"
	"github.com/hledgerkit/hledgerkit/telemetry"
)

type AcornsCmd struct {
	Statement string `arg:"" type:"existingfile" help:"Acorns account statement PDF."`
	importFlags
}

func (cmd *AcornsCmd) Run(kctx *kong.Context, globals *Globals) error {
	setupLogging(globals.Verbose)

	if !extract.Available() {
		return fmt.Errorf("pdftotext not found in PATH; install poppler-utils")
	}

	run := func() error {
		return withTelemetry(globals, "acorns import", kctx.Stderr, cmd.runOnce(kctx))
	}
	if err := run(); err != nil {
		return err
	}
	if cmd.Watch {
		return watchFile(context.Background(), cmd.Statement, kctx.Stderr, run)
	}
	return nil
}

func (cmd *AcornsCmd) runOnce(kctx *kong.Context) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		accounts, err := cmd.accounts(defaultAccounts("assets:taxable:liquid:lz:acorns"))
		if err != nil {
			return err
		}

		parseTimer := telemetry.FromContext(ctx).Start("parse statement")
		text, err := extract.Text(ctx, cmd.Statement)
		if err != nil {
			parseTimer.End()
			return err
		}
		stmt, err := acorns.Parse(text)
		parseTimer.End()
		if err != nil {
			return err
		}

		session := cmd.session(accounts)
		if err := session.SetSnapshotDate(stmt.Start); err != nil {
			return err
		}

		applyTimer := telemetry.FromContext(ctx).Start("apply events")
		sections, err := applySections(ctx, session, accounts, stmt)
		applyTimer.End()
		if err != nil {
			return err
		}

		return cmd.writeJournal(kctx, "hledgerkit acorns", stmt.Start, stmt.End, sections)
	}
}

// applySections walks the statement's sections in processing order, so
// buys land in the store before the sells that close against them.
func applySections(ctx context.Context, session *ledger.Session, accounts importer.Accounts, stmt *acorns.Statement) ([]journal.Section, error) {
	var sections []journal.Section
	for _, group := range []struct {
		title  string
		events []importer.Event
	}{
		{"Transfers", stmt.Transfers},
		{"Dividends and Interests", stmt.Dividends},
		{"Buys", stmt.Buys},
		{"Short-term Sells", stmt.ShortSells},
		{"Long-term Sells", stmt.LongSells},
	} {
		transactions, err := importer.Apply(ctx, session, accounts, group.events)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", group.title, err)
		}
		sections = append(sections, journal.Section{Title: group.title, Transactions: transactions})
	}
	return sections, nil
}
