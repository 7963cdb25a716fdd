package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/hledgerkit/hledgerkit/importer"
)

func TestDefaultAccounts(t *testing.T) {
	flags := &importFlags{}
	accounts, err := flags.accounts(defaultAccounts("assets:taxable:liquid:ws:fidelity"))
	assert.NoError(t, err)
	assert.Equal(t, "assets:taxable:liquid:ws:fidelity", accounts.Base)
	assert.Equal(t, "assets:taxable:liquid:ws:fidelity:cash", accounts.Cash)
	assert.Equal(t, "expenses:investment:trading fees", accounts.Fees)
	assert.True(t, accounts.IsCashCommodity("SPAXX"))
}

func TestAccountsConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "accounts.yaml")
	assert.NoError(t, os.WriteFile(config, []byte("base: assets:broker\nfees: expenses:fees\n"), 0o644))

	flags := &importFlags{Config: config}
	accounts, err := flags.accounts(defaultAccounts("assets:taxable:liquid:lz:robinhood"))
	assert.NoError(t, err)
	assert.Equal(t, "assets:broker", accounts.Base)
	assert.Equal(t, "expenses:fees", accounts.Fees)
	assert.Equal(t, "assets:transfer", accounts.Transfer)
}

func TestOpenOutput(t *testing.T) {
	t.Run("dash means stdout", func(t *testing.T) {
		out, err := openOutput("-", false)
		assert.NoError(t, err)
		assert.NoError(t, out.Close())
	})

	t.Run("creates a new file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.journal")
		out, err := openOutput(path, false)
		assert.NoError(t, err)
		assert.NoError(t, out.Close())
	})

	t.Run("refuses to overwrite without force when non-interactive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.journal")
		assert.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))

		_, err := openOutput(path, false)
		assert.Error(t, err)

		out, err := openOutput(path, true)
		assert.NoError(t, err)
		assert.NoError(t, out.Close())
	})
}

func TestSessionWithoutJournalStartsEmpty(t *testing.T) {
	t.Setenv("LEDGER_FILE", "")
	flags := &importFlags{}
	accounts := defaultAccounts("assets:broker").WithDefaults()
	session := flags.session(accounts)

	lots, err := session.Lots(t.Context(), "MSFT")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(lots))
}

func TestSnapshotDate(t *testing.T) {
	flags := &importFlags{}
	accounts := defaultAccounts("assets:broker").WithDefaults()
	session := flags.session(accounts)

	assert.NoError(t, snapshotDate(session, nil))
	assert.NoError(t, snapshotDate(session, []importer.Event{{}}))
}
