package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reIdent        = regexp.MustCompile(`^[A-Za-z_][\w]*$`)
	reReplace      = regexp.MustCompile(`^replace\s+(.+?)\s+"([^"]*)"\s+"([^"]*)"`)
	reSplitTwo     = regexp.MustCompile(`^split\s+(.+?)\s+(.+)$`)
	reJoinTwo      = regexp.MustCompile(`^join\s+(.+?)\s+(.+)$`)
	reFindTwo      = regexp.MustCompile(`^find\s+(.+?)\s+(.+)$`)
	reCountTwo     = regexp.MustCompile(`^count\s+(.+?)\s+(.+)$`)
	reCountCompare = regexp.MustCompile(`^count\s*[><=]`)
	reStartsTwo    = regexp.MustCompile(`^starts\s+(.+?)\s+(.+)$`)
	reEndsTwo      = regexp.MustCompile(`^ends\s+(.+?)\s+(.+)$`)
	reDictKey      = regexp.MustCompile(`(^|[^"'\w])([A-Za-z_][\w]*)\s*:`)
	reTrue         = regexp.MustCompile(`(?i)\btrue\b`)
	reFalse        = regexp.MustCompile(`(?i)\bfalse\b`)
	reNothing      = regexp.MustCompile(`(?i)\bnothing\b`)
	reNone         = regexp.MustCompile(`(?i)\bnone\b`)
	reIsNotSame    = regexp.MustCompile(`(?i)\bis not same as\b`)
	reIsSame       = regexp.MustCompile(`(?i)\bis same as\b`)
	reNumberCall   = regexp.MustCompile(`\bnumber\(`)
	reTextCall     = regexp.MustCompile(`\btext\(`)
	reDecimalCall  = regexp.MustCompile(`\bdecimal\(`)
	reShorthandOp  = regexp.MustCompile(`[+\-*/%<>=:()\[\]{}.,]`)
	reLeadingIdent = regexp.MustCompile(`^[A-Za-z_][\w]*\s`)
)

// unaryStringMethods mirrors the Python dict preserving declaration order,
// since the first matching prefix wins.
var unaryStringMethods = []struct{ prefix, suffix string }{
	{"upper ", ".upper()"},
	{"lower ", ".lower()"},
	{"title ", ".title()"},
	{"strip ", ".strip()"},
	{"isalpha ", ".isalpha()"},
	{"isdigit ", ".isdigit()"},
	{"isalnum ", ".isalnum()"},
}

// TransformExpr rewrites a TALE expression substring into a canonical
// expression string (spec §4.3). Errors are already in the
// "I could not understand" shape where the source itself is malformed
// (e.g. `call` with no target).
func TransformExpr(expr string) (string, error) {
	expr = strings.TrimSpace(expr)

	if LooksLikeString(expr) {
		return expr, nil
	}

	if strings.HasPrefix(expr, "type of ") {
		inner, err := TransformExpr(expr[len("type of "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("type(%s)", inner), nil
	}
	if strings.HasPrefix(expr, "id of ") {
		inner, err := TransformExpr(expr[len("id of "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("id(%s)", inner), nil
	}
	if strings.HasPrefix(expr, `text r"`) || strings.HasPrefix(expr, "text r'") {
		return strings.TrimSpace(expr[5:]), nil
	}

	for _, u := range unaryStringMethods {
		if strings.HasPrefix(expr, u.prefix) {
			tail := strings.TrimSpace(expr[len(u.prefix):])
			tail = strings.TrimPrefix(tail, "of ")
			tail = strings.TrimSpace(tail)
			base, err := TransformExpr(tail)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s)%s", base, u.suffix), nil
		}
	}

	if strings.HasPrefix(expr, "replace ") {
		if m := reReplace.FindStringSubmatch(expr); m != nil {
			base, err := TransformExpr(strings.TrimSpace(m[1]))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf(`(%s).replace("%s", "%s")`, base, m[2], m[3]), nil
		}
	}

	if strings.HasPrefix(expr, "split ") {
		if m := reSplitTwo.FindStringSubmatch(expr); m != nil {
			base, err := TransformExpr(strings.TrimSpace(m[1]))
			if err != nil {
				return "", err
			}
			sep, err := TransformExpr(strings.TrimSpace(m[2]))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s).split(%s)", base, sep), nil
		}
	}

	if strings.HasPrefix(expr, "join ") {
		if m := reJoinTwo.FindStringSubmatch(expr); m != nil {
			glue, err := TransformExpr(strings.TrimSpace(m[1]))
			if err != nil {
				return "", err
			}
			target, err := TransformExpr(strings.TrimSpace(m[2]))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s).join(%s)", glue, target), nil
		}
	}

	if strings.HasPrefix(expr, "find ") {
		if m := reFindTwo.FindStringSubmatch(expr); m != nil {
			base, err := TransformExpr(strings.TrimSpace(m[1]))
			if err != nil {
				return "", err
			}
			sub, err := TransformExpr(strings.TrimSpace(m[2]))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s).find(%s)", base, sub), nil
		}
	}

	if strings.HasPrefix(expr, "count ") {
		// `count > 0` style comparisons skip the helper rewrite entirely.
		if !reCountCompare.MatchString(expr) {
			if m := reCountTwo.FindStringSubmatch(expr); m != nil {
				base, err := TransformExpr(strings.TrimSpace(m[1]))
				if err != nil {
					return "", err
				}
				sub, err := TransformExpr(strings.TrimSpace(m[2]))
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("(%s).count(%s)", base, sub), nil
			}
		}
	}

	if strings.HasPrefix(expr, "starts ") {
		if m := reStartsTwo.FindStringSubmatch(expr); m != nil {
			base, err := TransformExpr(strings.TrimSpace(m[1]))
			if err != nil {
				return "", err
			}
			sub, err := TransformExpr(strings.TrimSpace(m[2]))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s).startswith(%s)", base, sub), nil
		}
	}

	if strings.HasPrefix(expr, "ends ") {
		if m := reEndsTwo.FindStringSubmatch(expr); m != nil {
			base, err := TransformExpr(strings.TrimSpace(m[1]))
			if err != nil {
				return "", err
			}
			sub, err := TransformExpr(strings.TrimSpace(m[2]))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s).endswith(%s)", base, sub), nil
		}
	}

	if strings.HasPrefix(expr, "map ") {
		rest := expr[len("map "):]
		fnPart, seqPart, ok := SplitFirst(rest)
		if !ok {
			return "", fmt.Errorf("I could not understand: %s", expr)
		}
		fn, err := TransformExpr(fnPart)
		if err != nil {
			return "", err
		}
		seq, err := TransformExpr(seqPart)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("map(%s, %s)", fn, seq), nil
	}

	if strings.HasPrefix(expr, "filter ") {
		rest := expr[len("filter "):]
		fnPart, seqPart, ok := SplitFirst(rest)
		if !ok {
			return "", fmt.Errorf("I could not understand: %s", expr)
		}
		fn, err := TransformExpr(fnPart)
		if err != nil {
			return "", err
		}
		seq, err := TransformExpr(seqPart)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("filter(%s, %s)", fn, seq), nil
	}

	if strings.HasPrefix(expr, "enumerate ") {
		inner, err := TransformExpr(expr[len("enumerate "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("enumerate(%s)", inner), nil
	}

	if strings.HasPrefix(expr, "zip ") {
		parts := SplitArgs(expr[len("zip "):])
		rendered := make([]string, len(parts))
		for i, p := range parts {
			r, err := TransformExpr(strings.TrimSpace(p))
			if err != nil {
				return "", err
			}
			rendered[i] = r
		}
		return fmt.Sprintf("zip(%s)", strings.Join(rendered, ", ")), nil
	}

	if strings.HasPrefix(expr, "next ") {
		inner, err := TransformExpr(expr[len("next "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("next(%s)", inner), nil
	}

	if expr == "call" || strings.HasPrefix(expr, "call ") {
		body := strings.TrimSpace(expr[len("call"):])
		if body == "" {
			return "", fmt.Errorf("I could not understand: call")
		}
		if strings.Contains(body, "(") {
			return TransformExpr(body)
		}
		parts := shlexSplit(body)
		if len(parts) == 0 {
			return "", fmt.Errorf("I could not understand: %s", expr)
		}
		fnName, argParts := parts[0], parts[1:]
		if !reIdent.MatchString(fnName) {
			return "", fmt.Errorf("I could not understand: %s", expr)
		}
		if len(argParts) == 0 {
			return fnName + "()", nil
		}
		rendered := make([]string, len(argParts))
		for i, a := range argParts {
			r, err := TransformExpr(a)
			if err != nil {
				return "", err
			}
			rendered[i] = r
		}
		return fmt.Sprintf("%s(%s)", fnName, strings.Join(rendered, ", ")), nil
	}

	if strings.HasPrefix(expr, "get ") {
		body := strings.TrimSpace(expr[len("get "):])
		if idx := strings.IndexByte(body, ' '); idx >= 0 {
			dictName, key := body[:idx], strings.TrimSpace(body[idx+1:])
			dictExpr, err := TransformExpr(strings.TrimSpace(dictName))
			if err != nil {
				return "", err
			}
			var keyExpr string
			if reIdent.MatchString(key) {
				keyExpr = `"` + key + `"`
			} else {
				keyExpr, err = TransformExpr(key)
				if err != nil {
					return "", err
				}
			}
			return fmt.Sprintf("(%s).get(%s)", dictExpr, keyExpr), nil
		}
	}

	for _, kw := range []string{"len", "sum", "min", "max", "sorted", "any", "all"} {
		prefix := kw + " "
		if strings.HasPrefix(expr, prefix) {
			inner, err := TransformExpr(expr[len(prefix):])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s(%s)", kw, inner), nil
		}
	}

	if strings.HasPrefix(expr, "union ") {
		a, b, err := splitFirstChecked(expr[len("union "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) | (%s)", a, b), nil
	}
	if strings.HasPrefix(expr, "intersection ") {
		a, b, err := splitFirstChecked(expr[len("intersection "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) & (%s)", a, b), nil
	}
	if strings.HasPrefix(expr, "difference ") {
		a, b, err := splitFirstChecked(expr[len("difference "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) - (%s)", a, b), nil
	}
	if strings.HasPrefix(expr, "subset ") {
		a, b, err := splitFirstChecked(expr[len("subset "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s).issubset(%s)", a, b), nil
	}

	if strings.HasPrefix(expr, "copy ") {
		inner, err := TransformExpr(expr[len("copy "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s).copy()", inner), nil
	}

	if strings.HasPrefix(expr, "dict ") {
		return NormalizeDict(expr[len("dict "):]), nil
	}

	if strings.HasPrefix(expr, "json read ") {
		path, err := TransformExpr(expr[len("json read "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("read_json(%s)", path), nil
	}
	if strings.HasPrefix(expr, "json write ") && strings.Contains(expr, " to ") {
		body := expr[len("json write "):]
		dataPart, pathPart, ok := cutTo(body)
		if !ok {
			return "", fmt.Errorf("I could not understand: %s", expr)
		}
		data, err := TransformExpr(dataPart)
		if err != nil {
			return "", err
		}
		path, err := TransformExpr(pathPart)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("write_json(%s, %s)", data, path), nil
	}
	if strings.HasPrefix(expr, "csv read ") {
		path, err := TransformExpr(expr[len("csv read "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("read_csv(%s)", path), nil
	}
	if strings.HasPrefix(expr, "csv write ") && strings.Contains(expr, " to ") {
		body := expr[len("csv write "):]
		rowsPart, pathPart, ok := cutTo(body)
		if !ok {
			return "", fmt.Errorf("I could not understand: %s", expr)
		}
		rows, err := TransformExpr(rowsPart)
		if err != nil {
			return "", err
		}
		path, err := TransformExpr(pathPart)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("write_csv(%s, %s)", rows, path), nil
	}

	if strings.HasPrefix(expr, "read ") {
		inner, err := TransformExpr(expr[len("read "):])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s).read()", inner), nil
	}

	if strings.HasPrefix(expr, "lambda ") && strings.Contains(expr, "->") {
		rest := expr[len("lambda "):]
		idx := strings.Index(rest, "->")
		params := strings.TrimSpace(rest[:idx])
		body, err := TransformExpr(strings.TrimSpace(rest[idx+2:]))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("lambda %s: %s", params, body), nil
	}

	// Space-separated call shorthand.
	if reLeadingIdent.MatchString(expr) && !reShorthandOp.MatchString(expr) {
		parts := shlexSplit(expr)
		if len(parts) > 1 && reIdent.MatchString(parts[0]) {
			rendered := make([]string, len(parts)-1)
			for i, a := range parts[1:] {
				r, err := TransformExpr(a)
				if err != nil {
					return "", err
				}
				rendered[i] = r
			}
			return fmt.Sprintf("%s(%s)", parts[0], strings.Join(rendered, ", ")), nil
		}
	}

	expr = NormalizeDict(expr)
	expr = reTrue.ReplaceAllString(expr, "True")
	expr = reFalse.ReplaceAllString(expr, "False")
	expr = reNothing.ReplaceAllString(expr, "None")
	expr = reNone.ReplaceAllString(expr, "None")
	expr = reIsNotSame.ReplaceAllString(expr, " != ")
	expr = reIsSame.ReplaceAllString(expr, " == ")
	expr = reNumberCall.ReplaceAllString(expr, "int(")
	expr = reTextCall.ReplaceAllString(expr, "str(")
	expr = reDecimalCall.ReplaceAllString(expr, "float(")

	return expr, nil
}

// NormalizeDict substitutes bare identifier keys before a ':' with quoted
// keys, e.g. `name: v` -> `"name": v`, skipping matches already inside
// string literals (approximated, as in the original, by a word-boundary
// regex rather than a full quote-tracking scan).
func NormalizeDict(expr string) string {
	return reDictKey.ReplaceAllString(expr, `$1"$2":`)
}

func splitFirstChecked(text string) (a, b string, err error) {
	head, rest, ok := SplitFirst(text)
	if !ok {
		return "", "", fmt.Errorf("Wrong number of values: %s", text)
	}
	a, err = TransformExpr(head)
	if err != nil {
		return "", "", err
	}
	b, err = TransformExpr(rest)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

// cutTo splits "<data> to <path>" on the first " to " occurrence,
// mirroring Python's str.split(" to ", 1).
func cutTo(body string) (before, after string, ok bool) {
	idx := strings.Index(body, " to ")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+4:]), true
}
