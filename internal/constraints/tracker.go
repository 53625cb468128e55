// Package constraints implements the constraint solver (spec.md §4.B): it
// assigns source types to destination type variables under variance,
// producing a lower/upper bound solution per variable. It is grounded on
// the sibling funxy analyzer's own constraint machinery
// (internal/analyzer/constraints.go's Constraint/ConstraintType and
// internal/analyzer/inference_solver.go's iterate-to-fixpoint
// SolveConstraints loop), generalized from "solve one flat substitution"
// to "solve a lower/upper bound per type variable under variance", and on
// internal/typesystem/unify.go's Bind/occurs-check for the underlying
// binding primitive.
package constraints

import (
	"github.com/google/uuid"

	"github.com/gradualgo/typecore/internal/types"
)

// Bounds is the per-variable accumulator spec.md §3 describes: a lower
// bound, its literal-stripped twin, an upper bound, and (for variadic type
// variables) the per-element tuple types being combined.
type Bounds struct {
	Lower           types.Type
	LowerNoLiterals types.Type
	Upper           types.Type
	TupleTypes      []types.Type
}

// ConstraintSet is the per-signature accumulator: one Bounds per type
// variable key (spec.md §3 "ConstraintSet").
type ConstraintSet map[string]*Bounds

// ParamSpecEntry is what a param-spec type variable resolves to: either a
// captured parameter list (as a Function) or another param-spec forwarded
// unchanged.
type ParamSpecEntry struct {
	Value    types.Type
	IsGradual bool
}

// Tracer, when installed on a Tracker, receives a trace of every Assign call
// (spec.md §5 "A debug logging flag may produce step-by-step traces"),
// generalizing the teacher's commented-out fmt.Printf debug line in
// unify.go into a first-class, always-compiled hook.
type Tracer interface {
	TraceAssign(dest *types.TypeVar, src types.Type, flags types.AssignFlags, ok bool)
}

// Tracker is the ConstraintTracker of spec.md §3: an ordered collection of
// ConstraintSets (one per overload candidate currently in flight), a lock
// flag, and the set of scope ids it owns.
type Tracker struct {
	Sets          []ConstraintSet
	active        int
	Locked        bool
	ownedScopes   map[uuid.UUID]bool
	paramSpecs    map[string]*ParamSpecEntry
	Tracer        Tracer
}

// NewTracker creates a tracker owning the given scope ids, with a single
// live constraint set (the common case: one overload candidate).
func NewTracker(ownedScopes ...uuid.UUID) *Tracker {
	owned := make(map[uuid.UUID]bool, len(ownedScopes))
	for _, s := range ownedScopes {
		owned[s] = true
	}
	return &Tracker{
		Sets:        []ConstraintSet{make(ConstraintSet)},
		ownedScopes: owned,
		paramSpecs:  make(map[string]*ParamSpecEntry),
	}
}

// AddCandidate appends a new, empty ConstraintSet for an additional overload
// candidate being tried concurrently, and returns its index.
func (t *Tracker) AddCandidate() int {
	t.Sets = append(t.Sets, make(ConstraintSet))
	return len(t.Sets) - 1
}

// UseCandidate selects which ConstraintSet subsequent Assign calls mutate.
func (t *Tracker) UseCandidate(i int) { t.active = i }

// Owns reports whether this tracker may solve for variables introduced in
// the given scope. Variables outside every owned scope are validated, not
// mutated (spec.md §4.B step 2).
func (t *Tracker) Owns(scope uuid.UUID) bool {
	if len(t.ownedScopes) == 0 {
		// A tracker created with no explicit scopes owns everything — this
		// is the common "fresh call-site tracker" case.
		return true
	}
	return t.ownedScopes[scope]
}

// Lock freezes the tracker: further Assign calls only validate, never mutate.
func (t *Tracker) Lock() { t.Locked = true }

func (t *Tracker) current() ConstraintSet { return t.Sets[t.active] }

// GetBounds returns the current bounds for tv, or nil if unset.
func (t *Tracker) GetBounds(tv *types.TypeVar) *Bounds {
	return t.current()[types.VarKey(tv)]
}

func (t *Tracker) setBounds(tv *types.TypeVar, b *Bounds) {
	t.current()[types.VarKey(tv)] = b
}

// SetBounds installs b as tv's current bounds directly, bypassing the
// solver's widening logic. Used by the reverse-type-argument mapper
// (spec.md §4.C), which computes a specialization's bounds by its own
// variance-directed propagation rather than by widening.
func (t *Tracker) SetBounds(tv *types.TypeVar, b *Bounds) {
	t.setBounds(tv, b)
}

// GetParamSpec returns the stored parameter-list entry for a param-spec
// variable, if any.
func (t *Tracker) GetParamSpec(tv *types.TypeVar) *ParamSpecEntry {
	return t.paramSpecs[types.VarKey(tv)]
}

func (t *Tracker) setParamSpec(tv *types.TypeVar, e *ParamSpecEntry) {
	t.paramSpecs[types.VarKey(tv)] = e
}

// Solution returns the final substitution built from the tracker's current
// constraint set: for each variable, the literal-stripped lower bound when
// one was recorded, else the raw lower bound, else the upper bound, else
// Unknown. No check against the upper bound is made here. This is
// solveForExpected's terminal step (spec.md §6 core-exposed operations).
func (t *Tracker) Solution() types.Subst {
	s := make(types.Subst, len(t.current()))
	for key, b := range t.current() {
		s[key] = b.solvedType()
	}
	for key, e := range t.paramSpecs {
		s[key] = e.Value
	}
	return s
}

func (b *Bounds) solvedType() types.Type {
	if b.LowerNoLiterals != nil {
		return b.LowerNoLiterals
	}
	if b.Lower != nil {
		return b.Lower
	}
	if b.Upper != nil {
		return b.Upper
	}
	return types.Unknown()
}
