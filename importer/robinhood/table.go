package robinhood

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// The statement's activity table is fixed-width text after pdftotext
// -layout. Column boundaries are recovered from the header row itself:
// each header cell's width (title plus trailing padding) is one
// column's ruler.
var (
	tableStart  = regexp.MustCompile(`^\s*Account Activity\s*$`)
	tableHeader = regexp.MustCompile(
		`^(\s*Description\s{2,})(Symbol\s{2,})(Acct Type\s{2,})(Transaction\s{2,})(Date\s{2,})(Qty\s{2,})(Price\s{2,})(Debit\s{2,})(Credit)\s*$`,
	)
	tableEnd   = regexp.MustCompile(`^\s*Total Funds Paid and Received.*$`)
	pageNumber = regexp.MustCompile(`(?i)^\s*page \d+ of \d+\s*$`)
)

type parserStage int

const (
	stageReady parserStage = iota
	stageStarted
	stageRulersSet
	stageInRecord
	stageEnded
)

// column is a half-open [start, end) byte range; end -1 means "to end
// of line" for the last column.
type column struct {
	start, end int
}

// tableParser is a line-at-a-time state machine over the statement
// text. A record may span several physical lines (descriptions wrap);
// a blank line, page break, or section restart closes it.
type tableParser struct {
	stage   parserStage
	rulers  []column
	active  []string
	records []Record
}

// parseStatement runs the table parser over the whole statement text.
// The statement occasionally uses 0xff as a line separator.
func parseStatement(text string) []Record {
	parser := &tableParser{}
	// blank lines close a record, so they must survive the split
	for _, line := range strings.Split(strings.ReplaceAll(text, "ÿ", "\n"), "\n") {
		parser.feed(line)
	}
	parser.flush()

	sort.SliceStable(parser.records, func(i, j int) bool {
		return parser.records[i].Date.Before(parser.records[j].Date)
	})
	return parser.records
}

func (p *tableParser) feed(line string) {
	switch p.stage {
	case stageEnded:
		return
	case stageReady:
		if p.end(line) {
			return
		}
		if tableStart.MatchString(line) {
			p.stage = stageStarted
		}
	case stageStarted:
		if p.end(line) {
			return
		}
		p.setRulers(line)
	case stageRulersSet:
		if p.end(line) {
			return
		}
		if p.setRulers(line) || blank(line) || tableStart.MatchString(line) || pageNumber.MatchString(line) {
			return
		}
		p.stage = stageInRecord
		p.active = append(p.active, line)
	case stageInRecord:
		if p.end(line) {
			return
		}
		if blank(line) || tableStart.MatchString(line) || pageNumber.MatchString(line) {
			p.flush()
			p.stage = stageRulersSet
			return
		}
		p.active = append(p.active, line)
	}
}

func (p *tableParser) end(line string) bool {
	if tableEnd.MatchString(line) {
		p.flush()
		p.stage = stageEnded
		return true
	}
	return false
}

func (p *tableParser) setRulers(line string) bool {
	m := tableHeader.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	p.rulers = p.rulers[:0]
	pos := 0
	for _, cell := range m[1:] {
		p.rulers = append(p.rulers, column{start: pos, end: pos + len(cell)})
		pos += len(cell)
	}
	p.rulers[len(p.rulers)-1].end = -1
	p.stage = stageRulersSet
	return true
}

// flush slices the accumulated lines by the rulers and assembles one
// record, joining wrapped cells with spaces.
func (p *tableParser) flush() {
	if len(p.active) == 0 {
		return
	}
	cells := make([]string, len(p.rulers))
	for _, line := range p.active {
		for i, col := range p.rulers {
			phrase := strings.TrimSpace(slice(line, col))
			if phrase == "" {
				continue
			}
			if cells[i] != "" {
				cells[i] += " "
			}
			cells[i] += phrase
		}
	}
	p.active = p.active[:0]

	raw := rawRecord{
		Description: cells[0],
		Symbol:      cells[1],
		AcctType:    cells[2],
		Transaction: cells[3],
		Date:        cells[4],
		Qty:         cells[5],
		Price:       cells[6],
		Debit:       cells[7],
		Credit:      cells[8],
	}
	rec, err := raw.parse()
	if err != nil {
		log.Warn().Err(err).Str("description", raw.Description).Msg("unable to process record")
		return
	}
	p.records = append(p.records, rec)
}

func slice(line string, col column) string {
	if col.start >= len(line) {
		return ""
	}
	if col.end < 0 || col.end > len(line) {
		return line[col.start:]
	}
	return line[col.start:col.end]
}

func blank(line string) bool {
	return strings.TrimSpace(line) == ""
}
