package types

// MaxUnionSubtypes is the performance cap spec.md §4.B/§8 requires: no
// union produced by the solver (or by union normalization generally) may
// exceed this many subtypes.
const MaxUnionSubtypes = 64

// NormalizeUnion flattens nested unions, removes redundant (type-identical)
// members, and collapses a singleton result to its lone member — maintaining
// the invariant that a UnionType always has >= 2 distinct subtypes.
// Callers that would exceed MaxUnionSubtypes must cap before calling this
// (see internal/constraints, which owns the declared-bound collapse policy).
func NormalizeUnion(members []Type) Type {
	flat := make([]Type, 0, len(members))
	for _, m := range members {
		if u, ok := m.(UnionType); ok {
			flat = append(flat, u.Members...)
		} else {
			flat = append(flat, m)
		}
	}

	seen := make([]Type, 0, len(flat))
	for _, m := range flat {
		dup := false
		for _, s := range seen {
			if Identical(m, s) {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, m)
		}
	}

	if len(seen) == 0 {
		return Never()
	}
	if len(seen) == 1 {
		return seen[0]
	}
	return UnionType{Members: seen}
}

// Identical reports whether two types are structurally identical (not
// merely assignable both ways). Used by union normalization and literal
// folding's subtype deduplication.
func Identical(a, b Type) bool {
	return a.String() == identityKey(a) && b.String() == identityKey(b) && identityKey(a) == identityKey(b)
}

// identityKey produces a type's structural identity string. It differs from
// String() only in that it is defined to be stable for comparison purposes
// even for types whose String() intentionally loses precision (none today,
// but kept distinct so pretty-printing can diverge from identity later
// without silently breaking union dedup).
func identityKey(t Type) string {
	return t.String()
}

// UnionOf builds a normalized union from the given members, convenient for
// call sites that don't already have a []Type handy.
func UnionOf(members ...Type) Type {
	return NormalizeUnion(members)
}

// Subtypes returns a type's union members, or the type itself as a
// single-element slice if it is not a union.
func Subtypes(t Type) []Type {
	if u, ok := t.(UnionType); ok {
		return u.Members
	}
	return []Type{t}
}
