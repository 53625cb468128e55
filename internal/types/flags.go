package types

// AssignFlags controls how an assignability/constraint-solving check behaves
// (spec.md §4.B "Variance handling (flags)"). It is a bitmask so callers can
// combine flags (e.g. populating an expected type while also retaining
// literals).
type AssignFlags uint32

const (
	// ReverseTypeVarMatching treats the destination type variable
	// contravariantly: narrow the upper bound toward the source.
	ReverseTypeVarMatching AssignFlags = 1 << iota
	// EnforceInvariance requires the source to be assignable in both
	// directions with the current lower bound.
	EnforceInvariance
	// PopulatingExpectedType seeds bounds from an outer expected type
	// without overwriting existing entries.
	PopulatingExpectedType
	// RetainLiteralsForTypeVar disables the literal-stripping step when
	// committing a lower bound.
	RetainLiteralsForTypeVar
	// SkipSolveTypeVars instructs a structural assignability check not to
	// recurse into the constraint solver for nested type variables. No code
	// in this module sets or reads it; it is passed through to the host.
	SkipSolveTypeVars
)

func (f AssignFlags) Has(bit AssignFlags) bool { return f&bit != 0 }
