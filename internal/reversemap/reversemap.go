// Package reversemap implements the generic-class expected-type reverse
// mapper (spec.md §4.C): given a derived class and an expected specialized
// base, it infers type arguments for the derived class by populating a
// constraint tracker. It is grounded on the same sibling funxy analyzer
// machinery internal/constraints builds on, generalized to run the solver
// "backwards" — fresh placeholder type variables stand in for both sides of
// the specialization, and the resulting bounds are read back out rather than
// solved to a final substitution.
package reversemap

import (
	"github.com/gradualgo/typecore/internal/constraints"
	"github.com/gradualgo/typecore/internal/host"
	"github.com/gradualgo/typecore/internal/types"
)

// Map implements the contract of spec.md §4.C: it returns true iff derived
// can be specialized so the specialization is assignable to expected, and
// when it returns true it has populated tracker with the inferred
// specialization's bounds for derived's type parameters.
func Map(ev host.Evaluator, derived types.ClassType, expected types.Type, tracker *constraints.Tracker, depth int) bool {
	if depth > 200 {
		return true
	}

	if types.IsAny(expected) || types.IsUnknown(expected) {
		populateAllAny(derived, tracker)
		return true
	}

	if self, ok := expected.(*types.TypeVar); ok && self.Self && self.Bound != nil {
		return Map(ev, derived, self.Bound, tracker, depth+1)
	}

	expectedCls, ok := expected.(types.ClassType)
	if !ok {
		return false
	}

	if len(expectedCls.TypeArgs) == 0 {
		return ev.AssignType(expectedCls, derived, nil, tracker, nil, types.PopulatingExpectedType, depth+1)
	}

	if types.IsSameClass(derived, expectedCls) {
		return mapSameClass(derived, expectedCls, tracker)
	}

	return mapGeneral(ev, derived, expectedCls, tracker, depth)
}

// populateAllAny sets every one of derived's type parameters to Any, the
// degenerate case spec.md §4.C names first.
func populateAllAny(derived types.ClassType, tracker *constraints.Tracker) {
	for _, tp := range derived.TypeParams {
		bounds := tracker.GetBounds(tp)
		if bounds == nil {
			bounds = &constraints.Bounds{}
		}
		bounds.Lower = types.Any()
		bounds.Upper = types.Any()
		setBounds(tracker, tp, bounds)
	}
}

// mapSameClass is the fast path: derived and expected name the same generic
// class, so expected's own per-parameter arguments are copied straight to
// the tracker, honoring each parameter's declared variance.
func mapSameClass(derived, expected types.ClassType, tracker *constraints.Tracker) bool {
	for i, tp := range derived.TypeParams {
		if i >= len(expected.TypeArgs) {
			break
		}
		arg := expected.TypeArgs[i]
		variance := types.Invariant
		if i < len(derived.ParamVariance) {
			variance = derived.ParamVariance[i]
		}
		bounds := tracker.GetBounds(tp)
		if bounds == nil {
			bounds = &constraints.Bounds{}
		}
		switch variance {
		case types.Covariant:
			bounds.Upper = arg
		case types.Contravariant:
			bounds.Lower = arg
		default:
			bounds.Lower = arg
			bounds.Upper = arg
		}
		setBounds(tracker, tp, bounds)
	}
	return true
}

// mapGeneral handles the general case: derived is specialized with fresh
// source placeholders, expected's base is specialized with fresh destination
// placeholders, and an ordinary assignability check between the two
// populates a scratch tracker. Destination placeholders that resolved back
// to a source placeholder tell us which derived parameter that expected
// argument maps to.
func mapGeneral(ev host.Evaluator, derived types.ClassType, expected types.ClassType, tracker *constraints.Tracker, depth int) bool {
	scratchScope := types.NewScopeID()
	scratch := constraints.NewTracker(scratchScope)

	sourcePlaceholders := make(map[string]*types.TypeVar, len(derived.TypeParams))
	sourceArgs := make([]types.Type, len(derived.TypeParams))
	for i, tp := range derived.TypeParams {
		ph := &types.TypeVar{Name: "$src" + tp.Name, ScopeID: scratchScope}
		sourcePlaceholders[tp.Name] = ph
		sourceArgs[i] = ph
	}
	specializedDerived := derived.WithTypeArgs(sourceArgs)

	destPlaceholders := make(map[string]*types.TypeVar, len(expected.TypeParams))
	destArgs := make([]types.Type, len(expected.TypeArgs))
	for i := range expected.TypeArgs {
		var name string
		if i < len(expected.TypeParams) {
			name = expected.TypeParams[i].Name
		} else {
			name = "arg"
		}
		ph := &types.TypeVar{Name: "$dst" + name, ScopeID: scratchScope}
		destPlaceholders[name] = ph
		destArgs[i] = ph
	}
	specializedExpected := expected.WithTypeArgs(destArgs)

	if !ev.AssignType(specializedExpected, specializedDerived, nil, scratch, nil, types.PopulatingExpectedType, depth+1) {
		return false
	}

	// For each destination placeholder, see whether it solved to a source
	// placeholder (directly, or as one member of a union) and propagate the
	// matching expected argument back to the real derived parameter.
	resolved := make(map[string]types.Type) // derived param name -> resolved expected arg
	invalid := make(map[string]bool)

	record := func(derivedName string, expectedArg types.Type) {
		if prev, seen := resolved[derivedName]; seen && prev.String() != expectedArg.String() {
			invalid[derivedName] = true
			return
		}
		resolved[derivedName] = expectedArg
	}

	for i, destArg := range destArgs {
		destTV := destArg.(*types.TypeVar)
		bounds := scratch.GetBounds(destTV)
		if bounds == nil || bounds.Lower == nil {
			continue
		}
		for derivedName := range matchingSourceParams(bounds.Lower, sourcePlaceholders) {
			record(derivedName, expected.TypeArgs[i])
		}
	}

	// Contravariant parameters record the mapping on the source placeholder's
	// own bounds instead (the comparison direction flips), so also scan those.
	for _, tp := range derived.TypeParams {
		ph, ok := sourcePlaceholders[tp.Name]
		if !ok {
			continue
		}
		bounds := scratch.GetBounds(ph)
		if bounds == nil || bounds.Lower == nil {
			continue
		}
		lowerTV, isTV := bounds.Lower.(*types.TypeVar)
		if !isTV {
			continue
		}
		for j, destArg := range destArgs {
			destTV := destArg.(*types.TypeVar)
			if types.SameVar(lowerTV, destTV) && j < len(expected.TypeArgs) {
				record(tp.Name, expected.TypeArgs[j])
			}
		}
	}

	for _, tp := range derived.TypeParams {
		bounds := tracker.GetBounds(tp)
		if bounds == nil {
			bounds = &constraints.Bounds{}
		}
		if invalid[tp.Name] {
			bounds.Lower = types.Unknown()
			bounds.Upper = types.Unknown()
		} else if arg, ok := resolved[tp.Name]; ok {
			variance := paramVariance(derived, tp.Name)
			switch variance {
			case types.Covariant:
				bounds.Upper = arg
			case types.Contravariant:
				bounds.Lower = arg
			default:
				bounds.Lower = arg
				bounds.Upper = arg
			}
		} else {
			bounds.Lower = types.Unknown()
			bounds.Upper = types.Unknown()
		}
		setBounds(tracker, tp, bounds)
	}
	return true
}

// matchingSourceParams finds which source placeholders appear in t (t is
// either a bare placeholder or a union containing one), returning a map from
// derived parameter name to the placeholders found under it.
func matchingSourceParams(t types.Type, sourcePlaceholders map[string]*types.TypeVar) map[string][]*types.TypeVar {
	out := make(map[string][]*types.TypeVar)
	for _, c := range types.Subtypes(t) {
		tv, ok := c.(*types.TypeVar)
		if !ok {
			continue
		}
		for name, ph := range sourcePlaceholders {
			if types.SameVar(tv, ph) {
				out[name] = append(out[name], ph)
			}
		}
	}
	return out
}

func paramVariance(derived types.ClassType, paramName string) types.Variance {
	for i, tp := range derived.TypeParams {
		if tp.Name == paramName && i < len(derived.ParamVariance) {
			return derived.ParamVariance[i]
		}
	}
	return types.Invariant
}

func setBounds(tracker *constraints.Tracker, tv *types.TypeVar, b *constraints.Bounds) {
	tracker.SetBounds(tv, b)
}
