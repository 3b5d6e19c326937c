package interp

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/aledsdavies/tale/internal/value"
)

// module is the restricted import hook's runtime shape: a fixed table of
// constants and callables, standing in for a handful of CPython stdlib
// modules (spec §4.6's import whitelist).
type module struct {
	name   string
	consts map[string]value.Value
	fns    map[string]func([]value.Value) (value.Value, error)
}

func (m *module) call(name string, args []value.Value) (value.Value, error) {
	fn, ok := m.fns[name]
	if !ok {
		return value.Value{}, fmt.Errorf("module '%s' has no attribute '%s'", m.name, name)
	}
	return fn(args)
}

// allowedModules is the sandbox's import whitelist; anything else is a
// runtime error rather than a translation-time rejection, matching
// CPython's own import-time failure.
func allowedModules() map[string]*module {
	rng := rand.New(rand.NewSource(1))
	return map[string]*module{
		"math": {
			name:   "math",
			consts: map[string]value.Value{"pi": value.FloatValue(math.Pi), "e": value.FloatValue(math.E)},
			fns: map[string]func([]value.Value) (value.Value, error){
				"sqrt":  func(a []value.Value) (value.Value, error) { return value.FloatValue(math.Sqrt(arg0f(a))), nil },
				"floor": func(a []value.Value) (value.Value, error) { return value.IntValue(int64(math.Floor(arg0f(a)))), nil },
				"ceil":  func(a []value.Value) (value.Value, error) { return value.IntValue(int64(math.Ceil(arg0f(a)))), nil },
				"pow":   func(a []value.Value) (value.Value, error) { return value.FloatValue(math.Pow(arg0f(a), arg1f(a))), nil },
			},
		},
		"random": {
			name: "random",
			fns: map[string]func([]value.Value) (value.Value, error){
				"random": func(a []value.Value) (value.Value, error) { return value.FloatValue(rng.Float64()), nil },
				"randint": func(a []value.Value) (value.Value, error) {
					if len(a) < 2 {
						return value.Value{}, fmt.Errorf("randint() requires 2 arguments")
					}
					lo, hi := a[0].Int64(), a[1].Int64()
					return value.IntValue(lo + rng.Int63n(hi-lo+1)), nil
				},
				"choice": func(a []value.Value) (value.Value, error) {
					if len(a) < 1 || len(a[0].Items()) == 0 {
						return value.Value{}, fmt.Errorf("choice() requires a non-empty sequence")
					}
					items := a[0].Items()
					return items[rng.Intn(len(items))], nil
				},
				"shuffle": func(a []value.Value) (value.Value, error) {
					if len(a) < 1 {
						return value.Value{}, fmt.Errorf("shuffle() requires 1 argument")
					}
					items := append([]value.Value{}, a[0].Items()...)
					rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
					return value.ListValue(items), nil
				},
			},
		},
		"datetime": {
			name: "datetime",
			fns: map[string]func([]value.Value) (value.Value, error){
				"now": func(a []value.Value) (value.Value, error) {
					return value.StrValue(time.Now().Format("2006-01-02 15:04:05")), nil
				},
			},
		},
		"json": {
			name: "json",
			fns: map[string]func([]value.Value) (value.Value, error){
				"dumps": func(a []value.Value) (value.Value, error) {
					if len(a) < 1 {
						return value.Value{}, fmt.Errorf("dumps() requires 1 argument")
					}
					s, err := jsonDumps(a[0])
					return value.StrValue(s), err
				},
				"loads": func(a []value.Value) (value.Value, error) {
					if len(a) < 1 {
						return value.Value{}, fmt.Errorf("loads() requires 1 argument")
					}
					return jsonLoads(a[0].Str())
				},
			},
		},
		"csv": {
			name: "csv",
			fns:  map[string]func([]value.Value) (value.Value, error){},
		},
		"os": {
			name: "os",
			fns: map[string]func([]value.Value) (value.Value, error){
				"getcwd": func(a []value.Value) (value.Value, error) { return value.StrValue("."), nil },
			},
		},
		"sys": {
			name:   "sys",
			consts: map[string]value.Value{"version": value.StrValue("tale")},
			fns:    map[string]func([]value.Value) (value.Value, error){},
		},
	}
}

func arg0f(a []value.Value) float64 {
	if len(a) < 1 {
		return 0
	}
	return asFloat(a[0])
}

func arg1f(a []value.Value) float64 {
	if len(a) < 2 {
		return 0
	}
	return asFloat(a[1])
}

func asFloat(v value.Value) float64 {
	switch v.Kind {
	case value.Int:
		return float64(v.Int64())
	case value.Float:
		return v.Float64()
	default:
		return 0
	}
}

// execImport handles `import X` / `import X as Y` / `from X import Y, Z`.
func (m *Machine) execImport(text string, env *Env) error {
	mods := allowedModules()

	if strings.HasPrefix(text, "from ") {
		rest := strings.TrimPrefix(text, "from ")
		parts := strings.SplitN(rest, " import ", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid import statement")
		}
		modName := strings.TrimSpace(parts[0])
		mod, ok := mods[modName]
		if !ok {
			return fmt.Errorf("import of '%s' is not permitted", modName)
		}
		for _, name := range strings.Split(parts[1], ",") {
			name = strings.TrimSpace(name)
			if v, ok := mod.consts[name]; ok {
				env.Define(name, v)
				continue
			}
			fnName := name
			env.Define(name, value.CallableValue(fnName, func(args []value.Value) (value.Value, error) {
				return mod.call(fnName, args)
			}))
		}
		return nil
	}

	rest := strings.TrimPrefix(text, "import ")
	alias := rest
	modName := rest
	if idx := strings.Index(rest, " as "); idx >= 0 {
		modName = strings.TrimSpace(rest[:idx])
		alias = strings.TrimSpace(rest[idx+4:])
	}
	mod, ok := mods[strings.TrimSpace(modName)]
	if !ok {
		return fmt.Errorf("import of '%s' is not permitted", modName)
	}
	env.Define(strings.TrimSpace(alias), value.ForeignValue(mod.name, mod))
	return nil
}
