// Package translator implements the pre-scanner, block-structure
// synthesizer, and line translator (spec §4.1, §4.2), the front end that
// turns TALE source into the canonical target-language program the
// expression parser and executor operate on.
package translator

import "strings"

// LogicalLine is a surviving (non-blank, non-comment, non-note-body) source
// line together with its original 1-based position, preserved for
// diagnostics per spec §3.
type LogicalLine struct {
	LineNo int
	Text   string
}

// scanLogicalLines strips blank/`#` lines and multi-line `note """ ... """`
// bodies, keeping every other line's original source position.
func scanLogicalLines(code string) []LogicalLine {
	var out []LogicalLine
	inNote := false
	for i, raw := range strings.Split(code, "\n") {
		lineNo := i + 1
		original := strings.TrimRight(raw, "\r")
		stripped := strings.TrimSpace(original)

		if inNote {
			if strings.HasSuffix(stripped, `"""`) {
				inNote = false
			}
			continue
		}

		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		lowered := strings.ToLower(stripped)
		if strings.HasPrefix(lowered, `note """`) {
			if !strings.HasSuffix(stripped, `"""`) {
				inNote = true
			}
			continue
		}

		out = append(out, LogicalLine{LineNo: lineNo, Text: original})
	}
	return out
}
