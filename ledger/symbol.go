package ledger

import "strings"

// MapSymbol rewrites a raw broker symbol into an hledger-safe
// commodity name. hledger commodities cannot contain digits or dots,
// so each digit becomes a letter ('0' -> 'a' .. '9' -> 'j') and '.'
// becomes '_'. The mapping is reproducible and lossless:
// MSFT210514C300 -> MSFTcbafbeCdaa, SELB210416C7.5 -> SELBcbaebgCh_f.
func MapSymbol(symbol string) string {
	var b strings.Builder
	b.Grow(len(symbol))
	for _, r := range symbol {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune('a' + (r - '0'))
		case r == '.':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UnmapSymbol reverses MapSymbol. Lowercase letters map back to
// digits and '_' back to '.'; everything else passes through, so plain
// equity symbols (all uppercase) are unchanged.
func UnmapSymbol(commodity string) string {
	var b strings.Builder
	b.Grow(len(commodity))
	for _, r := range commodity {
		switch {
		case r >= 'a' && r <= 'j':
			b.WriteRune('0' + (r - 'a'))
		case r == '_':
			b.WriteRune('.')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AccountSegment returns the account-name segment for a raw symbol.
// Account names tolerate digits and dots, so the segment is simply the
// symbol lowercased.
func AccountSegment(symbol string) string {
	return strings.ToLower(symbol)
}
