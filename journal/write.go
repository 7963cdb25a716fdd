package journal

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// Section is a titled group of transactions within a generated journal
// file, e.g. "Transfers" or "Short-term Sells".
type Section struct {
	Title        string
	Transactions []*Transaction
}

// Write renders sections of transactions as an hledger journal file
// with a generated-by banner and the statement period covered.
func Write(w io.Writer, generator string, start, end time.Time, sections []Section) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "; automatically generated by %s\n", generator)
	fmt.Fprintf(bw, "; for %s - %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))

	for _, sec := range sections {
		fmt.Fprintf(bw, "\n; %s\n", sec.Title)
		if len(sec.Transactions) == 0 {
			fmt.Fprintln(bw, "; NO TRANSACTIONS")
		}
		for _, t := range sec.Transactions {
			fmt.Fprintln(bw, t.String())
			fmt.Fprintln(bw)
		}
	}

	return bw.Flush()
}

// Period returns the earliest and latest transaction dates across all
// sections, for the file banner. Zero times when there are none.
func Period(sections []Section) (time.Time, time.Time) {
	var start, end time.Time
	for _, sec := range sections {
		for _, t := range sec.Transactions {
			if start.IsZero() || t.Date.Before(start) {
				start = t.Date
			}
			if end.IsZero() || t.Date.After(end) {
				end = t.Date
			}
		}
	}
	return start, end
}
