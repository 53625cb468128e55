package types

import "github.com/google/uuid"

// Subst maps a type variable's key (see VarKey) to its replacement Type.
// This generalizes the teacher's name-keyed Subst (internal/typesystem's
// map[string]Type) to scope-qualified keys, since two unrelated generic
// contexts may legitimately reuse the same variable name.
type Subst map[string]Type

// VarKey returns the stable map key for a type variable: its scope id plus
// name. Two TypeVar values denote the same variable iff their keys match.
func VarKey(tv *TypeVar) string {
	return tv.ScopeID.String() + "#" + tv.Name
}

// Bind returns a singleton Subst mapping tv to replacement.
func Bind(tv *TypeVar, replacement Type) Subst {
	return Subst{VarKey(tv): replacement}
}

// Compose returns a substitution equivalent to applying s first, then other:
// for every key in s, apply other to its value; then merge in any keys from
// other not already present.
func (s Subst) Compose(other Subst) Subst {
	out := make(Subst, len(s)+len(other))
	for k, v := range s {
		out[k] = v.Apply(other)
	}
	for k, v := range other {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// ApplySubst applies s to t with cycle detection, mirroring the teacher's
// ApplyWithCycleCheck: a type variable that would substitute into itself
// (directly, or via a chain already being expanded) is returned unchanged
// rather than recursing forever.
func ApplySubst(t Type, s Subst, visited map[uuid.UUID]bool) Type {
	tv, ok := t.(*TypeVar)
	if !ok {
		return t.Apply(s)
	}
	key := VarKey(tv)
	replacement, ok := s[key]
	if !ok {
		return tv
	}
	if rtv, ok := replacement.(*TypeVar); ok && SameVar(rtv, tv) {
		return tv
	}
	// Break cycles per variable (scope id plus name); a chain of
	// substitutions that revisits this variable is a self-reference.
	scopeKey := uuid.NewSHA1(tv.ScopeID, []byte(tv.Name))
	if visited[scopeKey] {
		return tv
	}
	newVisited := make(map[uuid.UUID]bool, len(visited)+1)
	for k, v := range visited {
		newVisited[k] = v
	}
	newVisited[scopeKey] = true
	if nested, ok := replacement.(*TypeVar); ok {
		return ApplySubst(nested, s, newVisited)
	}
	return replacement.Apply(s)
}
