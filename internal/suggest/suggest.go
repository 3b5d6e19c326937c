// Package suggest appends a fuzzy-matched "did you mean" hint to an
// otherwise-unrecognized statement, without altering the canonical
// `I could not understand: ...` message it decorates.
package suggest

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// keywords lists every statement-leading verb the line translator
// recognizes, used only to suggest a likely typo fix.
var keywords = []string{
	"if", "elif", "else", "while", "try", "catch", "finally", "end",
	"function", "generator", "class", "with", "for each", "repeat",
	"say", "say formatted", "ask",
	"return", "yield", "raise",
	"import", "from", "global",
	"open", "write", "append", "read", "close",
	"add", "extend", "insert", "remove", "clear", "sort", "reverse", "copy",
	"get", "set", "keys", "values", "items", "pop", "unpack",
	"break", "continue", "pass",
	"list", "dict",
}

// Keyword returns the closest keyword to the leading word of stripped, or ""
// if nothing is close enough to be worth suggesting.
func Keyword(stripped string) string {
	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return ""
	}
	lead := fields[0]

	leads := make([]string, len(keywords))
	for i, kw := range keywords {
		leads[i] = strings.Fields(kw)[0]
	}

	ranks := fuzzy.RankFindNormalizedFold(lead, leads)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	if best.Distance > 2 || strings.EqualFold(best.Target, lead) {
		return ""
	}
	return keywords[best.OriginalIndex]
}
