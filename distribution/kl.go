package distribution

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// A KLFn computes KL(a ‖ b) for a specific ordered pair of
// distribution kinds. Implementations may assume both arguments are of
// the kinds the function was registered for.
type KLFn func(a, b Distribution) (*tensor.Dense, error)

type klPair struct {
	a, b reflect.Type
}

// The divergence dispatch table is process-wide. It is populated by
// RegisterKL calls from package init functions and read concurrently
// thereafter; OverrideKL exists so tests can patch an entry and
// restore it.
var klTable = struct {
	sync.RWMutex
	fns map[klPair]KLFn
}{fns: make(map[klPair]KLFn)}

func kindOf(d Distribution) reflect.Type { return reflect.TypeOf(d) }

// RegisterKL registers fn as the divergence for the ordered pair of
// concrete kinds exemplified by a and b. Registering a pair again
// replaces the previous entry.
func RegisterKL(a, b Distribution, fn KLFn) {
	klTable.Lock()
	defer klTable.Unlock()

	klTable.fns[klPair{kindOf(a), kindOf(b)}] = fn
}

// OverrideKL installs fn for the ordered pair of kinds exemplified by
// a and b and returns a function that restores the previous state of
// the entry. It exists for tests that need to observe dispatch.
func OverrideKL(a, b Distribution, fn KLFn) (restore func()) {
	pair := klPair{kindOf(a), kindOf(b)}

	klTable.Lock()
	old, had := klTable.fns[pair]
	klTable.fns[pair] = fn
	klTable.Unlock()

	return func() {
		klTable.Lock()
		defer klTable.Unlock()

		if had {
			klTable.fns[pair] = old
		} else {
			delete(klTable.fns, pair)
		}
	}
}

func lookupKL(a, b Distribution) KLFn {
	klTable.RLock()
	defer klTable.RUnlock()

	return klTable.fns[klPair{kindOf(a), kindOf(b)}]
}

// KL computes the Kullback-Leibler divergence KL(a ‖ b). Lookup is by
// the exact ordered pair of concrete kinds; if that fails and either
// side wraps a gonum distribution with a native counterpart, the
// wrapped side is replaced by its counterpart and the lookup retried,
// so native/native, wrapped/wrapped and mixed pairs all resolve to the
// same formula. With no entry at either level, KL fails with an error
// wrapping prob.ErrUnsupportedDivergence.
func KL(a, b Distribution) (*tensor.Dense, error) {
	if fn := lookupKL(a, b); fn != nil {
		return fn(a, b)
	}

	na, nb := nativeOf(a), nativeOf(b)
	if fn := lookupKL(na, nb); fn != nil {
		return fn(na, nb)
	}

	return nil, fmt.Errorf("%w: %T and %T", prob.ErrUnsupportedDivergence,
		a, b)
}

// nativeOf replaces a wrapped gonum distribution by its native
// counterpart where one exists. Native distributions pass through
// unchanged.
func nativeOf(d Distribution) Distribution {
	if g, ok := d.(*Gonum); ok {
		if native, err := g.Native(); err == nil {
			return native
		}
	}

	return d
}

// CrossEntropy computes H(a) + KL(a ‖ b), resolving the divergence
// through the same dispatch as KL.
func CrossEntropy(a, b Distribution) (*tensor.Dense, error) {
	entropy, err := a.Entropy()
	if err != nil {
		return nil, fmt.Errorf("crossEntropy: %v", err)
	}

	kl, err := KL(a, b)
	if err != nil {
		return nil, fmt.Errorf("crossEntropy: %w", err)
	}

	out, err := add(entropy, kl)
	if err != nil {
		return nil, fmt.Errorf("crossEntropy: %v", err)
	}

	return out, nil
}
