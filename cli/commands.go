package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/hledgerkit/hledgerkit/hledger"
	"github.com/hledgerkit/hledgerkit/importer"
	"github.com/hledgerkit/hledgerkit/journal"
	"github.com/hledgerkit/hledgerkit/ledger"
	"github.com/hledgerkit/hledgerkit/telemetry"
)

// Globals defines global flags available to all commands.
type Globals struct {
	Verbose   bool `short:"v" help:"Enable debug logging."`
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Fidelity  FidelityCmd  `cmd:"" help:"Import a Fidelity transaction history CSV."`
	Robinhood RobinhoodCmd `cmd:"" help:"Import a Robinhood account statement PDF."`
	Acorns    AcornsCmd    `cmd:"" help:"Import an Acorns account statement PDF."`
	Ynab      YnabCmd      `cmd:"" help:"Sync a YNAB budget to journal files."`
}

// importFlags are the flags shared by the broker import commands.
type importFlags struct {
	Output  string `short:"o" default:"-" help:"Output journal file ('-' for stdout)."`
	Journal string `short:"j" type:"existingfile" optional:"" help:"Existing hledger journal consulted for open lots."`
	Config  string `short:"c" type:"existingfile" optional:"" help:"Accounts config YAML file."`
	Force   bool   `help:"Overwrite the output file without asking."`
	Watch   bool   `help:"Re-import whenever the statement file changes."`
}

func defaultAccounts(base string) importer.Accounts {
	return importer.Accounts{
		Base:       base,
		Transfer:   "assets:transfer",
		Dividends:  "revenues:investment:dividends",
		Interest:   "revenues:income:Interest",
		RSU:        "revenues:income:RSU",
		ShortGains: "revenues:investment:realized short term gain",
		LongGains:  "revenues:investment:realized long term gain",
		Fees:       "expenses:investment:trading fees",
	}
}

// accounts layers the config file (if any) over the command's
// defaults.
func (f *importFlags) accounts(defaults importer.Accounts) (importer.Accounts, error) {
	if f.Config != "" {
		loaded, err := importer.LoadAccounts(f.Config)
		if err != nil {
			return importer.Accounts{}, err
		}
		defaults = defaults.Merge(loaded)
	}
	return defaults.WithDefaults(), nil
}

// session builds a ledger session backed by the hledger journal when
// one is given, and by an empty lot source otherwise.
func (f *importFlags) session(accounts importer.Accounts) *ledger.Session {
	var source ledger.LotSource
	if f.Journal != "" || os.Getenv("LEDGER_FILE") != "" {
		source = hledger.NewSource(hledger.NewClient(f.Journal))
	} else {
		source = ledger.LotSourceFunc(func(ctx context.Context, account, commodity string, asOf time.Time) ([]*ledger.Lot, error) {
			return nil, nil
		})
	}
	return ledger.NewSession(source, accounts.Ledger())
}

// writeJournal renders the sections to the output target.
func (f *importFlags) writeJournal(kctx *kong.Context, generator string, start, end time.Time, sections []journal.Section) error {
	out, err := openOutput(f.Output, f.Force)
	if err != nil {
		return err
	}
	if err := journal.Write(out, generator, start, end, sections); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	total := 0
	for _, sec := range sections {
		total += len(sec.Transactions)
	}
	printSuccess(kctx.Stderr, fmt.Sprintf("wrote %d transactions", total))
	return nil
}

// withTelemetry runs fn, wrapping it in a timing collector and report
// when --telemetry is set.
func withTelemetry(globals *Globals, name string, stderr io.Writer, fn func(ctx context.Context) error) error {
	ctx := context.Background()
	if !globals.Telemetry {
		return fn(ctx)
	}

	collector := telemetry.NewTimingCollector()
	ctx = telemetry.WithCollector(ctx, collector)
	timer := collector.Start(name)
	err := fn(ctx)
	timer.End()

	fmt.Fprintln(stderr)
	collector.Report(stderr)
	return err
}

// snapshotDate seals the store's view at the first event so lots
// opened by the statement itself are not double counted.
func snapshotDate(session *ledger.Session, events []importer.Event) error {
	if len(events) == 0 {
		return nil
	}
	return session.SetSnapshotDate(events[0].Date)
}
