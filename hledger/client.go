// Package hledger shells out to the hledger executable to query an
// existing journal, and adapts its output into lot state.
package hledger

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner executes the hledger binary with args and returns its stdout.
// It exists so tests can substitute canned output.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

func run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "hledger", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("hledger %s: %w: %s", args[0], err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// Client queries a journal through the hledger executable. An empty
// File defers to hledger's own journal resolution (the LEDGER_FILE
// environment variable).
type Client struct {
	File   string
	Runner Runner
}

// NewClient creates a Client over the given journal file ("" for
// hledger's default).
func NewClient(file string) *Client {
	return &Client{File: file, Runner: run}
}

// Print returns the journal text of transactions matching query, up to
// and including end. A zero end leaves the report window open.
func (c *Client) Print(ctx context.Context, query string, end time.Time) ([]byte, error) {
	args := []string{"print"}
	if c.File != "" {
		args = append(args, "-f", c.File)
	}
	if !end.IsZero() {
		// hledger -e is exclusive
		args = append(args, "-e", end.AddDate(0, 0, 1).Format("2006-01-02"))
	}
	if query != "" {
		args = append(args, query)
	}
	log.Debug().Strs("args", args).Msg("running hledger")
	return c.Runner(ctx, args...)
}
