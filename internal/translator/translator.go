package translator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aledsdavies/tale/internal/errs"
	"github.com/aledsdavies/tale/internal/exprparser"
	"github.com/aledsdavies/tale/internal/rewrite"
	"github.com/aledsdavies/tale/internal/suggest"
)

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][\w]*$`)

// Statement is one emitted line of the translated program at its effective
// indentation level (spec §3, "Translated program").
type Statement struct {
	Indent int
	Text   string
}

// Program is the ordered sequence the executor runs.
type Program struct {
	Statements []Statement
}

// String renders Program as an indented, newline-joined target-language
// text, four spaces per level (matching the teacher's Python indent unit).
func (p Program) String() string {
	var b strings.Builder
	for i, s := range p.Statements {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat("    ", s.Indent))
		b.WriteString(s.Text)
	}
	return b.String()
}

// Translate runs §4.1-§4.5 over code and returns the translated program, or
// a *errs.TranslationError carrying the offending original line number.
func Translate(code string) (Program, error) {
	lines := scanLogicalLines(code)
	prog := Program{}
	indent := 0

	emit := func(text string) {
		prog.Statements = append(prog.Statements, Statement{Indent: indent, Text: text})
	}
	dedent := func() {
		if indent > 0 {
			indent--
		}
	}

	for _, ll := range lines {
		stripped := strings.TrimSpace(ll.Text)
		lowered := strings.ToLower(stripped)

		switch {
		case lowered == "end":
			dedent()
			continue

		case strings.HasPrefix(lowered, "elif "):
			dedent()
			cond, err := transformAndValidate(stripped[5:], ll.Text)
			if err != nil {
				return Program{}, stampLine(err, ll.LineNo)
			}
			emit("elif " + cond + ":")
			indent++
			continue

		case lowered == "else":
			dedent()
			emit("else:")
			indent++
			continue

		case strings.HasPrefix(lowered, "catch "):
			dedent()
			name := strings.TrimSpace(stripped[6:])
			if name == "" {
				name = "error"
			}
			if err := validateName(name, ll.Text); err != nil {
				return Program{}, stampLine(err, ll.LineNo)
			}
			emit("except-as " + name + ":")
			indent++
			continue

		case lowered == "finally":
			dedent()
			emit("finally:")
			indent++
			continue
		}

		text, opens, err := translateLine(ll.Text)
		if err != nil {
			return Program{}, stampLine(err, ll.LineNo)
		}
		emit(text)
		if opens {
			indent++
		}
	}

	return prog, nil
}

func stampLine(err error, lineNo int) error {
	if te, ok := err.(*errs.TranslationError); ok {
		return te.WithLine(lineNo)
	}
	return (&errs.TranslationError{Message: err.Error()}).WithLine(lineNo)
}

func validateName(name, originalLine string) error {
	if name == "" || !reIdentifier.MatchString(name) {
		return errs.NotUnderstood(strings.TrimSpace(originalLine))
	}
	return nil
}

func transformAndValidate(raw, originalLine string) (string, error) {
	expr, err := rewrite.TransformExpr(raw)
	if err != nil {
		return "", errs.NotUnderstood(strings.TrimSpace(originalLine))
	}
	if _, err := exprparser.Parse(expr); err != nil {
		return "", errs.NotUnderstood(strings.TrimSpace(originalLine))
	}
	return expr, nil
}

// translateLine is the prefix-directed dispatch of spec §4.2. It returns the
// translated statement text and whether it opens a new block.
func translateLine(line string) (string, bool, error) {
	stripped := strings.TrimSpace(line)
	lowered := strings.ToLower(stripped)

	switch {
	case strings.HasPrefix(lowered, "if "):
		cond, err := transformAndValidate(stripped[3:], line)
		if err != nil {
			return "", false, err
		}
		return "if " + cond + ":", true, nil

	case strings.HasPrefix(lowered, "while "):
		cond, err := transformAndValidate(stripped[6:], line)
		if err != nil {
			return "", false, err
		}
		return "while " + cond + ":", true, nil

	case lowered == "try":
		return "try:", true, nil

	case strings.HasPrefix(lowered, "function "):
		name, params, err := parseFnHeader(stripped[9:], line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("def %s(%s):", name, params), true, nil

	case strings.HasPrefix(lowered, "generator "):
		name, params, err := parseFnHeader(stripped[10:], line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("def %s(%s):", name, params), true, nil

	case strings.HasPrefix(lowered, "class "):
		return "class " + strings.TrimSpace(stripped[6:]) + ":", true, nil

	case strings.HasPrefix(lowered, "with file ") && strings.Contains(lowered, " as "):
		before, alias, _ := cutLast(stripped[9:], " as ")
		fileExpr, err := transformAndValidate(strings.TrimSpace(before), line)
		if err != nil {
			return "", false, err
		}
		aliasName := strings.TrimSpace(alias)
		if err := validateName(aliasName, line); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("with _open_file(%s, 'r') as %s:", fileExpr, aliasName), true, nil

	case strings.HasPrefix(lowered, "with ") && strings.Contains(lowered, " as "):
		before, alias, _ := cutLast(stripped[5:], " as ")
		ctxExpr, err := transformAndValidate(strings.TrimSpace(before), line)
		if err != nil {
			return "", false, err
		}
		aliasName := strings.TrimSpace(alias)
		if err := validateName(aliasName, line); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("with %s as %s:", ctxExpr, aliasName), true, nil

	case strings.HasPrefix(lowered, "for each ") && strings.Contains(lowered, " in "):
		rest := stripped[9:]
		varPart, exprPart, ok := cutFirst(rest, " in ")
		if !ok {
			return "", false, errs.NotUnderstood(line)
		}
		varName := strings.TrimSpace(varPart)
		if err := validateName(varName, line); err != nil {
			return "", false, err
		}
		expr, err := transformAndValidate(exprPart, line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("for %s in %s:", varName, expr), true, nil

	case strings.HasPrefix(lowered, "repeat "):
		body := strings.TrimSpace(stripped[7:])
		if idx := strings.Index(strings.ToLower(body), " as "); idx >= 0 {
			countExpr := body[:idx]
			varName := strings.TrimSpace(body[idx+4:])
			if err := validateName(varName, line); err != nil {
				return "", false, err
			}
			count, err := transformAndValidate(countExpr, line)
			if err != nil {
				return "", false, err
			}
			return fmt.Sprintf("for %s in range(%s):", varName, count), true, nil
		}
		count, err := transformAndValidate(body, line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("for _ in range(%s):", count), true, nil

	case strings.HasPrefix(lowered, "say formatted "):
		fmtExpr := strings.TrimSpace(stripped[len("say formatted "):])
		pyExpr := fmtExpr
		if !strings.HasPrefix(pyExpr, "f") {
			pyExpr = "f" + pyExpr
		}
		if _, err := exprparser.Parse(stripFPrefix(pyExpr)); err != nil {
			return "", false, errs.NotUnderstood(line)
		}
		return fmt.Sprintf("print(%s)", pyExpr), false, nil

	case strings.HasPrefix(lowered, "say "):
		return translateSay(stripped[4:], line)

	case strings.HasPrefix(lowered, "ask "):
		return translateAsk(stripped[4:], line)

	case strings.HasPrefix(lowered, "return"):
		tail := strings.TrimSpace(stripped[len("return"):])
		if tail == "" {
			return "return", false, nil
		}
		expr, err := transformAndValidate(tail, line)
		if err != nil {
			return "", false, err
		}
		return "return " + expr, false, nil

	case strings.HasPrefix(lowered, "yield"):
		tail := strings.TrimSpace(stripped[len("yield"):])
		expr := "None"
		if tail != "" {
			var err error
			expr, err = transformAndValidate(tail, line)
			if err != nil {
				return "", false, err
			}
		}
		return "yield " + expr, false, nil

	case strings.HasPrefix(lowered, "raise"):
		tail := strings.TrimSpace(stripped[len("raise"):])
		expr := "Exception()"
		if tail != "" {
			var err error
			expr, err = transformAndValidate(tail, line)
			if err != nil {
				return "", false, err
			}
		}
		return "raise " + expr, false, nil

	case strings.HasPrefix(lowered, "import "), strings.HasPrefix(lowered, "from "), strings.HasPrefix(lowered, "global "):
		return stripped, false, nil

	case strings.HasPrefix(lowered, "open ") && strings.Contains(lowered, " as "):
		before, alias, _ := cutLast(stripped[5:], " as ")
		fileExpr, err := transformAndValidate(strings.TrimSpace(before), line)
		if err != nil {
			return "", false, err
		}
		aliasName := strings.TrimSpace(alias)
		if err := validateName(aliasName, line); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = _open_file(%s, 'r')", aliasName, fileExpr), false, nil

	case strings.HasPrefix(lowered, "write "), strings.HasPrefix(lowered, "append "):
		verbLen := len("write ")
		if strings.HasPrefix(lowered, "append ") {
			verbLen = len("append ")
		}
		body := stripped[verbLen:]
		target, content, ok := cutFirstSpace(body)
		if !ok {
			return "", false, errs.WrongNumberOfValues(line)
		}
		exprTarget, err := transformAndValidate(target, line)
		if err != nil {
			return "", false, err
		}
		exprContent, err := transformAndValidate(content, line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s.write(%s)", exprTarget, exprContent), false, nil

	case strings.HasPrefix(lowered, "read "):
		expr, err := transformAndValidate(stripped[5:], line)
		if err != nil {
			return "", false, err
		}
		return expr + ".read()", false, nil

	case strings.HasPrefix(lowered, "close "):
		expr, err := transformAndValidate(stripped[6:], line)
		if err != nil {
			return "", false, err
		}
		return expr + ".close()", false, nil

	case strings.HasPrefix(lowered, "add ") && strings.Contains(lowered, " to "):
		item, target, ok := cutFirst(stripped[4:], " to ")
		if !ok {
			return "", false, errs.NotUnderstood(line)
		}
		exprItem, err := transformAndValidate(item, line)
		if err != nil {
			return "", false, err
		}
		targetName := strings.TrimSpace(target)
		if err := validateName(targetName, line); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = _add_to(%s, %s)", targetName, targetName, exprItem), false, nil

	case strings.HasPrefix(lowered, "extend ") && strings.Contains(lowered, " with "):
		target, rest, ok := cutFirst(stripped[7:], " with ")
		if !ok {
			return "", false, errs.NotUnderstood(line)
		}
		targetName := strings.TrimSpace(target)
		if err := validateName(targetName, line); err != nil {
			return "", false, err
		}
		expr, err := transformAndValidate(rest, line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = %s.extend(%s)", targetName, targetName, expr), false, nil

	case strings.HasPrefix(lowered, "insert ") && strings.Contains(lowered, " into ") && strings.Contains(lowered, " at "):
		valuePart, rest, ok := cutFirst(stripped[7:], " into ")
		if !ok {
			return "", false, errs.NotUnderstood(line)
		}
		listPart, idxPart, ok := cutFirst(rest, " at ")
		if !ok {
			return "", false, errs.NotUnderstood(line)
		}
		listName := strings.TrimSpace(listPart)
		if err := validateName(listName, line); err != nil {
			return "", false, err
		}
		idxExpr, err := transformAndValidate(idxPart, line)
		if err != nil {
			return "", false, err
		}
		valExpr, err := transformAndValidate(valuePart, line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = %s.insert(%s, %s)", listName, listName, idxExpr, valExpr), false, nil

	case strings.HasPrefix(lowered, "remove ") && strings.Contains(lowered, " from "):
		valuePart, listPart, ok := cutFirst(stripped[7:], " from ")
		if !ok {
			return "", false, errs.NotUnderstood(line)
		}
		listName := strings.TrimSpace(listPart)
		if err := validateName(listName, line); err != nil {
			return "", false, err
		}
		valExpr, err := transformAndValidate(valuePart, line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = %s.remove(%s)", listName, listName, valExpr), false, nil

	case strings.HasPrefix(lowered, "clear "):
		name := strings.TrimSpace(stripped[6:])
		if err := validateName(name, line); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = %s.clear()", name, name), false, nil

	case strings.HasPrefix(lowered, "sort "):
		name := strings.TrimSpace(stripped[5:])
		if err := validateName(name, line); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = %s.sort()", name, name), false, nil

	case strings.HasPrefix(lowered, "reverse "):
		name := strings.TrimSpace(stripped[8:])
		if err := validateName(name, line); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = %s.reverse()", name, name), false, nil

	case strings.HasPrefix(lowered, "copy "):
		expr, err := transformAndValidate(stripped[5:], line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("(%s).copy()", expr), false, nil

	case strings.HasPrefix(lowered, "get ") && strings.Contains(lowered, " from "):
		keyPart, dictPart, ok := cutFirst(stripped[4:], " from ")
		if !ok {
			return "", false, errs.NotUnderstood(line)
		}
		keyExpr, err := transformAndValidate(keyPart, line)
		if err != nil {
			return "", false, err
		}
		dictExpr, err := transformAndValidate(dictPart, line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s.get(%s)", dictExpr, keyExpr), false, nil

	case strings.HasPrefix(lowered, "get "):
		body := stripped[4:]
		if idx := strings.IndexByte(body, ' '); idx >= 0 {
			dictName, key := body[:idx], strings.TrimSpace(body[idx+1:])
			dictExpr, err := transformAndValidate(dictName, line)
			if err != nil {
				return "", false, err
			}
			var keyExpr string
			if reIdentifier.MatchString(key) {
				keyExpr = strconv.Quote(key)
			} else {
				keyExpr, err = transformAndValidate(key, line)
				if err != nil {
					return "", false, err
				}
			}
			return fmt.Sprintf("%s.get(%s)", dictExpr, keyExpr), false, nil
		}

	case strings.HasPrefix(lowered, "set ") && strings.Contains(lowered, " to "):
		body := stripped[4:]
		beforeTo, valuePart, ok := cutFirst(body, " to ")
		if ok {
			if idx := strings.IndexByte(beforeTo, ' '); idx >= 0 {
				dictName, keyPart := beforeTo[:idx], strings.TrimSpace(beforeTo[idx+1:])
				dictExpr, err := transformAndValidate(dictName, line)
				if err != nil {
					return "", false, err
				}
				keyExpr, err := transformAndValidate(keyPart, line)
				if err != nil {
					return "", false, err
				}
				valExpr, err := transformAndValidate(valuePart, line)
				if err != nil {
					return "", false, err
				}
				return fmt.Sprintf("%s[%s] = %s", dictExpr, keyExpr, valExpr), false, nil
			}
		}

	case strings.HasPrefix(lowered, "keys "):
		expr, err := transformAndValidate(stripped[5:], line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("list(%s.keys())", expr), false, nil

	case strings.HasPrefix(lowered, "values "):
		expr, err := transformAndValidate(stripped[7:], line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("list(%s.values())", expr), false, nil

	case strings.HasPrefix(lowered, "items "):
		expr, err := transformAndValidate(stripped[6:], line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("list(%s.items())", expr), false, nil

	case strings.HasPrefix(lowered, "pop "):
		body := stripped[4:]
		if idx := strings.IndexByte(body, ' '); idx >= 0 {
			dictName, keyPart := strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+1:])
			if err := validateName(dictName, line); err != nil {
				return "", false, err
			}
			keyExpr, err := transformAndValidate(keyPart, line)
			if err != nil {
				return "", false, err
			}
			return fmt.Sprintf("%s = _dict_pop(%s, %s)", dictName, dictName, keyExpr), false, nil
		}
		listName := strings.TrimSpace(body)
		if err := validateName(listName, line); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = _list_pop(%s)", listName, listName), false, nil

	case strings.HasPrefix(lowered, "unpack ") && strings.Contains(lowered, " into "):
		valuePart, targetPart, ok := cutFirst(stripped[7:], " into ")
		if !ok {
			return "", false, errs.NotUnderstood(line)
		}
		valueExpr, err := transformAndValidate(valuePart, line)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = %s", strings.TrimSpace(targetPart), valueExpr), false, nil

	case lowered == "break" || lowered == "continue" || lowered == "pass":
		return lowered, false, nil

	case strings.HasPrefix(lowered, "list "):
		return translateCollectionDecl(stripped[5:], "[]", line)

	case strings.HasPrefix(lowered, "dict "):
		return translateCollectionDecl(stripped[5:], "{}", line)
	}

	if strings.Contains(lowered, " is ") {
		varPart, exprPart, ok := cutFirst(stripped, " is ")
		if ok {
			varName := strings.TrimSpace(varPart)
			if err := validateName(varName, line); err == nil {
				expr, err := transformAndValidate(exprPart, line)
				if err != nil {
					return "", false, err
				}
				return varName + " = " + expr, false, nil
			}
		}
	}

	expr, err := transformAndValidate(stripped, line)
	if err != nil {
		return "", false, enrichWithSuggestion(err, stripped)
	}
	return expr, false, nil
}

func enrichWithSuggestion(err error, stripped string) error {
	te, ok := err.(*errs.TranslationError)
	if !ok {
		return err
	}
	if hint := suggest.Keyword(stripped); hint != "" {
		te.Message += fmt.Sprintf(" (did you mean '%s'?)", hint)
	}
	return te
}

func translateCollectionDecl(body, empty, line string) (string, bool, error) {
	body = strings.TrimSpace(body)
	var namePart, expr string
	if strings.Contains(strings.ToLower(body), " is ") {
		n, e, ok := cutFirst(body, " is ")
		if !ok {
			return "", false, errs.NotUnderstood(line)
		}
		namePart = n
		var err error
		expr, err = transformAndValidate(e, line)
		if err != nil {
			return "", false, err
		}
	} else {
		namePart = body
		expr = empty
	}
	varName := strings.TrimSpace(namePart)
	if err := validateName(varName, line); err != nil {
		return "", false, err
	}
	return varName + " = " + expr, false, nil
}

func parseFnHeader(header, line string) (name string, params string, err error) {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return "", "", errs.NotUnderstood(line)
	}
	name = fields[0]
	if name == "init" {
		name = "__init__"
	}
	rest := strings.Join(fields[1:], " ")
	rest = strings.ReplaceAll(rest, ",", " ")
	paramFields := strings.Fields(rest)
	params = strings.Join(paramFields, ", ")
	if err := validateName(name, line); err != nil {
		return "", "", err
	}
	return name, params, nil
}

func stripFPrefix(s string) string {
	// Turn `f"..."` / `f'...'` into a validator-parseable plain string so
	// §4.5 can confirm the literal shape without needing f-string support.
	if len(s) > 1 && s[0] == 'f' {
		return s[1:]
	}
	return s
}

// cutFirst splits on the first occurrence of sep, like Python's str.split(sep, 1).
func cutFirst(s, sep string) (before, after string, ok bool) {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+len(sep):], true
}

// cutLast splits on the last occurrence of sep, like Python's str.rsplit used
// via split(sep, 1) on a reversed search (the original always had a single
// occurrence in practice; rsplit-ish behaviour is kept for robustness).
func cutLast(s, sep string) (before, after string, ok bool) {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+len(sep):], true
}

func cutFirstSpace(s string) (head, rest string, ok bool) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return "", "", false
	}
	idx := strings.Index(s, fields[0]) + len(fields[0])
	rest = strings.TrimLeft(s[idx:], " \t")
	return fields[0], rest, true
}

func anyLooksLikeString(parts []string) bool {
	for _, p := range parts {
		if rewrite.LooksLikeString(strings.TrimSpace(p)) {
			return true
		}
	}
	return false
}

func translateSay(payload, line string) (string, bool, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, `"""`) {
		if _, err := exprparser.Parse(payload); err != nil {
			return "", false, errs.NotUnderstood(line)
		}
		return fmt.Sprintf("print(%s)", payload), false, nil
	}

	splitArgs := rewrite.SplitArgs(payload)
	if len(splitArgs) == 1 {
		concat := rewrite.SplitConcatArgs(payload)
		if len(concat) > 1 && anyLooksLikeString(concat) {
			splitArgs = concat
		}
	}

	parts := make([]string, len(splitArgs))
	for i, part := range splitArgs {
		expr, err := transformAndValidate(strings.TrimSpace(part), line)
		if err != nil {
			return "", false, err
		}
		parts[i] = expr
	}
	return fmt.Sprintf("print(%s)", strings.Join(parts, ", ")), false, nil
}

func translateAsk(body, line string) (string, bool, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", false, errs.NotUnderstood(line)
	}

	if strings.Contains(body, " as ") {
		promptPart, varPart, _ := cutFirst(body, " as ")
		promptExpr, err := transformAndValidate(promptPart, line)
		if err != nil {
			return "", false, err
		}
		varName := strings.TrimSpace(varPart)
		if err := validateName(varName, line); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("print(%s, end=''); %s = input_provider(); result = %s", promptExpr, varName, varName), false, nil
	}

	if reIdentifier.MatchString(body) {
		if err := validateName(body, line); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s = input_provider(); result = %s", body, body), false, nil
	}

	promptExpr, err := transformAndValidate(body, line)
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("print(%s, end=''); result = input_provider()", promptExpr), false, nil
}
