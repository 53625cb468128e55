package constraints

import (
	"github.com/google/uuid"

	"github.com/gradualgo/typecore/internal/diagnostics"
	"github.com/gradualgo/typecore/internal/host"
	"github.com/gradualgo/typecore/internal/types"
)

// Assign is the constraint solver's single public operation (spec.md §4.B):
// it returns true iff src is compatible with dest under the current
// constraints, and — when the tracker is unlocked and owns dest's scope —
// records the resulting bounds.
//
// The dest parameter is always a bare TypeVar: a destination written as
// type[T] or *Ts is unwrapped by the caller (the host evaluator) before
// reaching this function, the same way the teacher's Unify normalizes
// aliases before dispatching on the concrete type (unify.go's directionality
// fix for TCon aliases).
func Assign(ev host.Evaluator, dest *types.TypeVar, src types.Type, flags types.AssignFlags, tracker *Tracker, depth int) (bool, *diagnostics.DiagnosticError) {
	if tracker.Tracer != nil {
		ok, err := assign(ev, dest, src, flags, tracker, depth)
		tracker.Tracer.TraceAssign(dest, src, flags, ok)
		return ok, err
	}
	return assign(ev, dest, src, flags, tracker, depth)
}

func assign(ev host.Evaluator, dest *types.TypeVar, src types.Type, flags types.AssignFlags, tracker *Tracker, depth int) (bool, *diagnostics.DiagnosticError) {
	// Step 1: out-of-scope use.
	if dest.ScopeID == uuid.Nil {
		return true, nil
	}

	// Step 2: foreign scope — validate only, never mutate.
	if !tracker.Owns(dest.ScopeID) {
		return validateAgainstBound(ev, dest, src, depth), nil
	}

	// Step 3: short-circuits that return true without mutation.
	if types.IsAnyOrUnknown(src) {
		return true, nil
	}
	if types.IsNever(src) && !flags.Has(types.EnforceInvariance) && !flags.Has(types.ReverseTypeVarMatching) {
		return true, nil
	}

	src = normalizeSource(dest, src)

	if tracker.Locked {
		return validateAgainstBound(ev, dest, src, depth), nil
	}

	switch dest.Kind {
	case types.TVarParamSpec:
		return assignParamSpec(ev, dest, src, tracker, depth)
	case types.TVarVariadic:
		return assignVariadic(ev, dest, src, flags, tracker, depth)
	default:
		if len(dest.Constraints) > 0 {
			return assignConstrained(ev, dest, src, tracker, depth)
		}
		return assignOrdinary(ev, dest, src, flags, tracker, depth)
	}
}

// normalizeSource implements spec.md §4.B step 4's remaining two bullets
// (the type[...] unwrap is the caller's responsibility — see Assign's doc
// comment).
func normalizeSource(dest *types.TypeVar, src types.Type) types.Type {
	if cls, ok := src.(types.ClassType); ok && len(cls.TypeParams) > 0 && len(cls.TypeArgs) == 0 {
		args := make([]types.Type, len(cls.TypeParams))
		for i := range args {
			args[i] = types.Unknown()
		}
		cls.TypeArgs = args
		src = cls
	}
	if dest.Kind == types.TVarVariadic && !types.IsUnpacked(src) {
		src = types.UnpackedTupleType{Tuple: types.ClassType{
			Name:         "tuple",
			HasTupleArgs: true,
			TupleArgs:    []types.TupleElement{{Type: src}},
		}}
	}
	return src
}

func validateAgainstBound(ev host.Evaluator, dest *types.TypeVar, src types.Type, depth int) bool {
	if dest.Bound == nil {
		return true
	}
	return ev.AssignType(dest.Bound, src, nil, nil, nil, 0, depth+1)
}

func isAssignable(ev host.Evaluator, dest, src types.Type, depth int) bool {
	return ev.AssignType(dest, src, nil, nil, nil, 0, depth+1)
}

// assignOrdinary implements spec.md §4.B's unconstrained ordinary-type-variable
// algorithm (steps 5-10).
func assignOrdinary(ev host.Evaluator, dest *types.TypeVar, src types.Type, flags types.AssignFlags, tracker *Tracker, depth int) (bool, *diagnostics.DiagnosticError) {
	b := tracker.GetBounds(dest)
	if b == nil {
		b = &Bounds{}
		if dest.Bound != nil {
			b.Upper = dest.Bound
		}
	} else {
		// Copy so a failed attempt never leaves partial mutation visible.
		cp := *b
		b = &cp
	}

	switch {
	case flags.Has(types.EnforceInvariance):
		if b.Lower != nil {
			if !isAssignable(ev, src, b.Lower, depth) || !isAssignable(ev, b.Lower, src, depth) {
				return false, diagnostics.New(diagnostics.CodeAssignabilityMismatch, ev.PrintType(src), ev.PrintType(b.Lower))
			}
		}
		b.Lower = src
	case flags.Has(types.ReverseTypeVarMatching):
		if b.Upper == nil {
			b.Upper = src
		} else if isAssignable(ev, b.Upper, src, depth) {
			// src is narrower or equal; tighten.
			b.Upper = src
		} else if !isAssignable(ev, src, b.Upper, depth) {
			b.Upper = combineUpper(b.Upper, src)
		}
		if b.Lower != nil && !isAssignable(ev, b.Upper, b.Lower, depth) {
			return false, diagnostics.New(diagnostics.CodeBoundViolation, ev.PrintType(b.Lower), ev.PrintType(b.Upper), dest.Name)
		}
	case flags.Has(types.PopulatingExpectedType):
		if b.Lower == nil {
			b.Lower = src
		}
	default: // covariant, the default.
		b.Lower = widenCovariant(ev, b.Lower, src, dest, depth)
	}

	if dest.Bound != nil {
		combined := b.Lower
		if b.Upper != nil {
			combined = types.UnionOf(nonNil(b.Lower), b.Upper)
		}
		if combined != nil && !isAssignable(ev, dest.Bound, combined, depth) {
			if !dest.Synthesized {
				return false, diagnostics.New(diagnostics.CodeBoundViolation, ev.PrintType(combined), ev.PrintType(dest.Bound), dest.Name)
			}
		}
	}

	if b.Lower != nil {
		stripped := ev.StripLiteralValue(b.Lower)
		if !flags.Has(types.RetainLiteralsForTypeVar) && !flags.Has(types.PopulatingExpectedType) {
			if dest.Bound == nil || isAssignable(ev, dest.Bound, stripped, depth) {
				b.LowerNoLiterals = stripped
			} else {
				b.LowerNoLiterals = b.Lower
			}
		} else {
			b.LowerNoLiterals = b.Lower
		}
	}

	tracker.setBounds(dest, b)
	return true, nil
}

func nonNil(t types.Type) types.Type {
	if t == nil {
		return types.Never()
	}
	return t
}

// widenCovariant implements spec.md §4.B step 6, honoring the Open Question
// decision recorded in SPEC_FULL.md/DESIGN.md: prefer the newer "concrete
// source wins" policy over the older "keep the union" one.
func widenCovariant(ev host.Evaluator, lower types.Type, src types.Type, dest *types.TypeVar, depth int) types.Type {
	if lower == nil {
		return src
	}
	if isAssignable(ev, lower, src, depth) {
		if types.IsUnknown(lower) && !types.IsUnknown(src) {
			return src
		}
		return lower
	}
	if isAssignable(ev, src, lower, depth) {
		return src
	}
	members := append(types.Subtypes(lower), types.Subtypes(src)...)
	if len(members) > types.MaxUnionSubtypes {
		if dest.Bound != nil {
			return dest.Bound
		}
		// No declared bound to fall back on: cap by truncating to the first
		// MaxUnionSubtypes members in insertion order (existing lower-bound
		// members first), so the last source members are dropped.
		members = members[:types.MaxUnionSubtypes]
	}
	return types.UnionOf(members...)
}

func combineUpper(upper, src types.Type) types.Type {
	return types.UnionOf(upper, src)
}

// assignConstrained implements spec.md §4.B's constrained type-variable
// algorithm.
func assignConstrained(ev host.Evaluator, dest *types.TypeVar, src types.Type, tracker *Tracker, depth int) (bool, *diagnostics.DiagnosticError) {
	subtypes := types.Subtypes(src)
	chosen := -1
	for _, st := range subtypes {
		idx := -1
		for i, c := range dest.Constraints {
			if isAssignable(ev, c, st, depth) {
				idx = i
				break
			}
		}
		if idx == -1 {
			if len(subtypes) > 1 {
				// The union as a whole might still match a single constraint.
				for i, c := range dest.Constraints {
					if isAssignable(ev, c, src, depth) {
						chosen = i
						goto commit
					}
				}
			}
			return false, diagnostics.New(diagnostics.CodeConstraintMismatch, ev.PrintType(src), dest.Name)
		}
		if chosen == -1 {
			chosen = idx
		} else if chosen != idx {
			return false, diagnostics.New(diagnostics.CodeConstraintMismatch, ev.PrintType(src), dest.Name)
		}
	}
	if chosen == -1 {
		return false, diagnostics.New(diagnostics.CodeConstraintMismatch, ev.PrintType(src), dest.Name)
	}

commit:
	b := tracker.GetBounds(dest)
	if b == nil {
		b = &Bounds{}
	} else {
		cp := *b
		b = &cp
	}
	chosenType := dest.Constraints[chosen]
	b.Lower = chosenType
	b.LowerNoLiterals = chosenType
	tracker.setBounds(dest, b)
	return true, nil
}

// assignVariadic implements spec.md §4.B's variadic type-variable algorithm:
// widening is defined only between two unpacked tuples of equal length and
// matching per-element unbounded flags.
func assignVariadic(ev host.Evaluator, dest *types.TypeVar, src types.Type, flags types.AssignFlags, tracker *Tracker, depth int) (bool, *diagnostics.DiagnosticError) {
	unpacked, ok := src.(types.UnpackedTupleType)
	if !ok {
		return false, diagnostics.New(diagnostics.CodeAssignabilityMismatch, ev.PrintType(src), dest.Name)
	}

	b := tracker.GetBounds(dest)
	if b == nil || len(b.TupleTypes) == 0 {
		b = &Bounds{TupleTypes: elementTypes(unpacked.Tuple.TupleArgs)}
		tracker.setBounds(dest, b)
		return true, nil
	}

	existingElems := unpacked.Tuple.TupleArgs
	if len(existingElems) != len(b.TupleTypes) {
		return false, diagnostics.New(diagnostics.CodeAssignabilityMismatch, ev.PrintType(src), dest.Name)
	}
	for i, e := range existingElems {
		if i < len(unpacked.Tuple.TupleArgs) && e.Unbounded != unpacked.Tuple.TupleArgs[i].Unbounded {
			return false, diagnostics.New(diagnostics.CodeAssignabilityMismatch, ev.PrintType(src), dest.Name)
		}
	}
	cp := *b
	newTypes := make([]types.Type, len(cp.TupleTypes))
	for i := range newTypes {
		newTypes[i] = types.UnionOf(cp.TupleTypes[i], existingElems[i].Type)
	}
	cp.TupleTypes = newTypes
	tracker.setBounds(dest, &cp)
	return true, nil
}

func elementTypes(elems []types.TupleElement) []types.Type {
	out := make([]types.Type, len(elems))
	for i, e := range elems {
		out[i] = e.Type
	}
	return out
}

// assignParamSpec implements spec.md §4.B's param-spec algorithm.
func assignParamSpec(ev host.Evaluator, dest *types.TypeVar, src types.Type, tracker *Tracker, depth int) (bool, *diagnostics.DiagnosticError) {
	gradual := isGradualCallable(src)
	existing := tracker.GetParamSpec(dest)

	if existing == nil {
		tracker.setParamSpec(dest, &ParamSpecEntry{Value: src, IsGradual: gradual})
		return true, nil
	}
	if existing.IsGradual && !gradual {
		tracker.setParamSpec(dest, &ParamSpecEntry{Value: src, IsGradual: false})
		return true, nil
	}
	if gradual {
		return true, nil // existing concrete entry wins; nothing to do.
	}

	srcFunc, srcIsFunc := src.(types.FunctionType)
	existingFunc, existingIsFunc := existing.Value.(types.FunctionType)
	if srcIsFunc && existingIsFunc {
		if isAssignable(ev, ignoreReturn(existingFunc), ignoreReturn(srcFunc), depth) {
			return true, nil // existing is already the narrower (or equal) one.
		}
		if isAssignable(ev, ignoreReturn(srcFunc), ignoreReturn(existingFunc), depth) {
			tracker.setParamSpec(dest, &ParamSpecEntry{Value: src})
			return true, nil
		}
		return false, diagnostics.New(diagnostics.CodeParamSpecMismatch, ev.PrintType(src), ev.PrintType(existing.Value))
	}

	// Another param-spec forwarded as-is: store only if nothing concrete yet.
	if !existingIsFunc {
		tracker.setParamSpec(dest, &ParamSpecEntry{Value: src})
	}
	return true, nil
}

func ignoreReturn(f types.FunctionType) types.Type {
	f.ReturnType = types.Any()
	return f
}

func isGradualCallable(t types.Type) bool {
	f, ok := t.(types.FunctionType)
	return ok && f.Flags.GradualCallable
}

// SolveForExpected returns the solved substitution from the tracker's stored
// bounds (tracker.Solution()), with no further validation pass — the
// core-exposed "solveForExpected" operation (spec.md §6).
func SolveForExpected(tracker *Tracker) types.Subst {
	return tracker.Solution()
}
