package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/alecthomas/kong"

	"github.com/hledgerkit/hledgerkit/journal"
	"github.com/hledgerkit/hledgerkit/telemetry"
	"github.com/hledgerkit/hledgerkit/ynab"
)

type YnabCmd struct {
	Settings  string `arg:"" type:"existingfile" help:"YNAB sync settings YAML."`
	OutputDir string `short:"o" default:"." type:"existingdir" help:"Directory for the per-year journal files."`
	Force     bool   `help:"Overwrite existing journal files without asking."`
}

func (cmd *YnabCmd) Run(kctx *kong.Context, globals *Globals) error {
	setupLogging(globals.Verbose)
	return withTelemetry(globals, "ynab sync", kctx.Stderr, func(ctx context.Context) error {
		return cmd.sync(ctx, kctx)
	})
}

func (cmd *YnabCmd) sync(ctx context.Context, kctx *kong.Context) error {
	settings, err := ynab.LoadSettings(cmd.Settings)
	if err != nil {
		return err
	}
	client := ynab.NewClient(settings.BaseURL, settings.Token)

	fetchTimer := telemetry.FromContext(ctx).Start("fetch budget")
	budget, err := client.BudgetByName(ctx, settings.BudgetName)
	if err != nil {
		fetchTimer.End()
		return err
	}
	payees, _, err := client.Payees(ctx, budget.ID, 0)
	if err != nil {
		fetchTimer.End()
		return err
	}
	groups, _, err := client.CategoryGroups(ctx, budget.ID, 0)
	if err != nil {
		fetchTimer.End()
		return err
	}
	transactions, _, err := client.Transactions(ctx, budget.ID, 0)
	fetchTimer.End()
	if err != nil {
		return err
	}

	convertTimer := telemetry.FromContext(ctx).Start("convert transactions")
	converter := ynab.NewConverter(settings, ynab.NewCatalog(groups, payees))
	byYear := make(map[int][]*journal.Transaction)
	for _, t := range transactions {
		if t.Deleted {
			continue
		}
		converted, err := converter.Convert(t)
		if err != nil {
			convertTimer.End()
			return err
		}
		for _, tx := range converted {
			byYear[tx.Date.Year()] = append(byYear[tx.Date.Year()], tx)
		}
	}
	convertTimer.End()

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		entries := byYear[year]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Date.Before(entries[j].Date)
		})

		sections := []journal.Section{{Title: budget.Name, Transactions: entries}}
		start, end := journal.Period(sections)

		path := filepath.Join(cmd.OutputDir, fmt.Sprintf("ynab_%d.journal", year))
		out, err := openOutput(path, cmd.Force)
		if err != nil {
			return err
		}
		if err := journal.Write(out, "hledgerkit ynab", start, end, sections); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		printInfof(kctx.Stderr, "wrote %s (%d transactions)", path, len(entries))
	}

	printSuccess(kctx.Stderr, fmt.Sprintf("synced %q across %d years", budget.Name, len(years)))
	return nil
}
