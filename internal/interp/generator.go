package interp

import "github.com/aledsdavies/tale/internal/value"

// generator backs a TALE `generator` function with a goroutine: its body
// runs concurrently, blocking on each yield until the consumer asks for the
// next value, giving true lazy (and potentially infinite) iteration instead
// of the eager list this interpreter otherwise has to fall back to.
type generator struct {
	out  chan value.Value
	stop chan struct{}
	done chan error
}

func newGenerator(body func(yield func(value.Value) bool) error) *generator {
	g := &generator{
		out:  make(chan value.Value),
		stop: make(chan struct{}),
		done: make(chan error, 1),
	}
	yield := func(v value.Value) bool {
		select {
		case g.out <- v:
			return true
		case <-g.stop:
			return false
		}
	}
	go func() {
		err := body(yield)
		close(g.out)
		g.done <- err
	}()
	return g
}

// next pulls the next yielded value, or ok=false at normal exhaustion.
func (g *generator) next() (value.Value, bool, error) {
	v, ok := <-g.out
	if !ok {
		err := <-g.done
		return value.Value{}, false, err
	}
	return v, true, nil
}

// drain materializes every remaining value (used by comprehensions and the
// `list()`/`sorted()` family, which need the whole sequence anyway; for-loops
// iterate lazily through execForGenerator instead).
func (g *generator) drain() []value.Value {
	var out []value.Value
	for {
		v, ok, err := g.next()
		if !ok || err != nil {
			return out
		}
		out = append(out, v)
	}
}

// close tells a generator's goroutine to stop at its next yield point,
// preventing a goroutine leak when a consumer breaks out of iteration early.
func (g *generator) close() {
	select {
	case <-g.stop:
	default:
		close(g.stop)
	}
}
