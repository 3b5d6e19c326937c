package engine

import (
	"regexp"
	"strconv"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aledsdavies/tale/internal/errs"
	"github.com/aledsdavies/tale/internal/interp"
	"github.com/aledsdavies/tale/internal/translator"
)

// Log is the package-level structured logger, matching the teacher's
// convention of a shared logrus instance rather than per-call construction.
var Log = logrus.New()

var reLinePrefix = regexp.MustCompile(`^Line (\d+): `)

// Run translates code and, on success, executes it against inputs,
// returning the shaped Result spec §4.6 defines for every failure path.
func Run(code string, inputs []string) Result {
	runID := uuid.Must(uuid.NewV4()).String()
	log := Log.WithField("run_id", runID)
	log.Debug("translation started")

	prog, err := translator.Translate(code)
	if err != nil {
		log.WithError(err).Debug("translation failed")
		return Result{
			OK:           false,
			Translated:   nil,
			Tale:         code,
			Error:        strPtr(err.Error()),
			SuggestedFix: strPtr("I could not understand the TALE syntax; check if/else/end, assignments, and helpers."),
		}
	}
	translated := prog.String()
	log.WithField("statements", len(prog.Statements)).Debug("translation succeeded")

	block := interp.Build(prog)
	machine := interp.NewMachine(inputs)

	log.Debug("execution started")
	execErr := machine.Run(block)
	output := machine.Stdout.String()

	if execErr == nil {
		log.Debug("execution succeeded")
		return Result{OK: true, Output: strPtr(output), Translated: strPtr(translated), Tale: code}
	}

	log.WithError(execErr).Debug("execution failed")
	return shapeFailure(execErr, translated, code)
}

func shapeFailure(execErr error, translated, code string) Result {
	switch e := execErr.(type) {
	case *errs.RuntimeError:
		if e.UnknownName != "" {
			return Result{
				OK:           false,
				Translated:   strPtr(translated),
				Tale:         code,
				Error:        strPtr(e.Error()),
				SuggestedFix: strPtr("Did you define the variable before using it?"),
			}
		}
		return Result{
			OK:           false,
			Translated:   strPtr(translated),
			Tale:         code,
			Error:        strPtr(e.Error()),
			SuggestedFix: strPtr("Check the translated Python to see what went wrong."),
		}
	case *errs.InputExhausted:
		return Result{
			OK:           false,
			Translated:   strPtr(translated),
			Tale:         code,
			Error:        strPtr(e.Error()),
			SuggestedFix: strPtr("Provide an input value for each `ask` line in the Inputs box before running."),
		}
	default:
		return Result{
			OK:           false,
			Translated:   strPtr(translated),
			Tale:         code,
			Error:        strPtr(execErr.Error()),
			SuggestedFix: strPtr("Check the translated Python to see what went wrong."),
		}
	}
}

// Analyze runs only the translator (spec §4.1-§4.5), reporting a single
// diagnostic on failure with its line parsed back out of the `Line N:`
// prefix when present.
func Analyze(code string) Diagnostics {
	_, err := translator.Translate(code)
	if err == nil {
		return Diagnostics{OK: true, Diagnostics: []Diagnostic{}}
	}

	msg := err.Error()
	var line *int
	if m := reLinePrefix.FindStringSubmatch(msg); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil {
			line = intPtr(n)
		}
	}
	return Diagnostics{OK: false, Diagnostics: []Diagnostic{{Line: line, Message: msg}}}
}
