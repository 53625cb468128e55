package decorators

import (
	"github.com/gradualgo/typecore/internal/diagnostics"
	"github.com/gradualgo/typecore/internal/types"
)

// OverloadAccumulator collects a symbol's prior @overload-marked signatures
// plus its single non-overload implementation, finalizing them into an
// OverloadedType once the host seals the symbol table for a module (spec.md
// §4.F, §9 "Overload collection": "re-architect as an explicit accumulator
// keyed by symbol identity ... order-preserving"). It replaces the source's
// walk-prior-declarations approach with an explicit, testable accumulator
// the host drives one Add call per declaration.
type OverloadAccumulator struct {
	overloads map[string][]types.FunctionType
	impl      map[string]*types.FunctionType
	order     []string
	seen      map[string]bool
}

// NewOverloadAccumulator returns an empty accumulator.
func NewOverloadAccumulator() *OverloadAccumulator {
	return &OverloadAccumulator{
		overloads: make(map[string][]types.FunctionType),
		impl:      make(map[string]*types.FunctionType),
		seen:      make(map[string]bool),
	}
}

// Add records one declaration of symbol, in source order. fn.Flags.Overloaded
// distinguishes an @overload-marked signature from the eventual
// non-overload implementation.
func (a *OverloadAccumulator) Add(symbol string, fn types.FunctionType) {
	if !a.seen[symbol] {
		a.seen[symbol] = true
		a.order = append(a.order, symbol)
	}
	if fn.Flags.Overloaded {
		a.overloads[symbol] = append(a.overloads[symbol], fn)
		return
	}
	impl := fn
	a.impl[symbol] = &impl
}

// Symbols returns every symbol Add has seen, in first-sight order.
func (a *OverloadAccumulator) Symbols() []string {
	return append([]string(nil), a.order...)
}

// Finalize assembles symbol's collected overloads (plus optional
// implementation) into an OverloadedType (spec.md §4.F "Propagation
// rules"). Returns (nil, nil) if symbol was never marked with @overload —
// the host should use the plain FunctionType/implementation in that case.
func (a *OverloadAccumulator) Finalize(symbol string) (*types.OverloadedType, *diagnostics.DiagnosticError) {
	overloads := a.overloads[symbol]
	if len(overloads) == 0 {
		return nil, nil
	}

	impl := a.impl[symbol]
	out := make([]types.FunctionType, len(overloads))
	copy(out, overloads)

	if impl != nil {
		for i := range out {
			if out[i].Docstring == "" {
				out[i].Docstring = impl.Docstring
			}
			if out[i].Deprecated == "" {
				out[i].Deprecated = impl.Deprecated
			}
		}
	}

	if err := checkOverloadConsistency(symbol, out); err != nil {
		return nil, err
	}

	return &types.OverloadedType{Overloads: out, Implementation: impl}, nil
}

// checkOverloadConsistency implements spec.md §4.F: "Inconsistency between
// an overload and its siblings on abstractmethod is a diagnostic."
func checkOverloadConsistency(symbol string, overloads []types.FunctionType) *diagnostics.DiagnosticError {
	if len(overloads) == 0 {
		return nil
	}
	want := overloads[0].Flags.Abstract
	for _, o := range overloads[1:] {
		if o.Flags.Abstract != want {
			return diagnostics.New(diagnostics.CodeInconsistentOverload, symbol, "abstractmethod")
		}
	}
	return nil
}
