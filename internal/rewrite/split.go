// Package rewrite implements the expression rewriter (spec §4.3) and its
// two argument splitters (spec §4.4), ported faithfully from
// original_source/tale_engine.py.
package rewrite

import (
	"strings"
)

// SplitArgs performs the comma split: walks text tracking a quoted flag
// toggled by matching '"'/'\'' and splits on commas only outside quotes.
func SplitArgs(text string) []string {
	var parts []string
	var cur strings.Builder
	inStr := false
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '"' || c == '\'' {
			if inStr && c == quote {
				inStr = false
			} else if !inStr {
				inStr = true
				quote = c
			}
		}
		if c == ',' && !inStr {
			parts = append(parts, cur.String())
			cur.Reset()
		} else {
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// SplitConcatArgs performs the top-level `+` split, additionally tracking
// bracket depth across ()/[]/{} so `+` inside a nested call is not split.
func SplitConcatArgs(text string) []string {
	var parts []string
	var cur strings.Builder
	inStr := false
	var quote byte
	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '"' || c == '\'' {
			if inStr && c == quote {
				inStr = false
			} else if !inStr {
				inStr = true
				quote = c
			}
		} else if !inStr {
			switch c {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				if depth > 0 {
					depth--
				}
			}
		}
		if c == '+' && !inStr && depth == 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		} else {
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// LooksLikeString reports whether text is a plain (single- or
// triple-quoted) string literal at both ends.
func LooksLikeString(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) >= 6 && strings.HasPrefix(trimmed, `"""`) {
		return strings.HasSuffix(trimmed, `"""`)
	}
	if len(trimmed) >= 2 && trimmed[0] == trimmed[len(trimmed)-1] && (trimmed[0] == '"' || trimmed[0] == '\'') {
		return true
	}
	return false
}

// SplitFirst yields (head, rest) by comma-split or, failing that, the
// first whitespace separator. ok is false if neither splitter finds >= 2 parts.
func SplitFirst(text string) (head string, rest string, ok bool) {
	parts := SplitArgs(text)
	if len(parts) < 2 {
		wsParts := fieldsN(text, 2)
		if len(wsParts) < 2 {
			return "", "", false
		}
		return strings.TrimSpace(wsParts[0]), strings.TrimSpace(wsParts[1]), true
	}
	first := parts[0]
	rest = strings.TrimLeft(text[len(first):], " \t")
	rest = strings.TrimPrefix(rest, ",")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		rest = parts[1]
	}
	return strings.TrimSpace(first), strings.TrimSpace(rest), true
}

// fieldsN splits on the first run of whitespace, Python `str.split(None, 1)` style.
func fieldsN(text string, n int) []string {
	trimmed := strings.TrimSpace(text)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return nil
	}
	if len(fields) == 1 {
		return fields
	}
	idx := strings.Index(trimmed, fields[0]) + len(fields[0])
	rest := strings.TrimLeft(trimmed[idx:], " \t")
	return []string{fields[0], rest}
}

// shlexSplit approximates Python's shlex.split(text, posix=False): split on
// whitespace while keeping quoted substrings (including their quotes) intact
// as single tokens.
func shlexSplit(text string) []string {
	var parts []string
	var cur strings.Builder
	inStr := false
	var quote byte
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inStr:
			cur.WriteByte(c)
			if c == quote {
				inStr = false
			}
		case c == '"' || c == '\'':
			inStr = true
			quote = c
			cur.WriteByte(c)
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return parts
}
