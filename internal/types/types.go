// Package types implements the shared type algebra described in spec.md §3:
// a single closed sum type with one variant per kind, dispatched by type
// switch rather than virtual methods (spec.md §9 "Tagged unions over class
// hierarchies"). It is the generalization of the sibling funxy project's
// Hindley-Milner TCon/TApp/TFunc/TTuple/TRecord/TForall algebra
// (internal/typesystem/types.go) into a gradual, class-based one: classes
// replace type constructors, functions carry category-tagged parameter
// lists instead of a flat slice, and every type variable carries a scope id
// (spec.md §3 "Scope id") instead of a bare name.
package types

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Type is the interface every variant implements. Operations dispatch on the
// concrete type via a type switch; this interface exists only to let
// heterogeneous types flow through the same slices and maps.
type Type interface {
	// String renders the type the way printType (spec.md §6) would.
	String() string
	// Apply substitutes type variables per s, returning a new value (types
	// are immutable; structural sharing is permitted).
	Apply(s Subst) Type
	// FreeTypeVars returns every TypeVar reachable from this type.
	FreeTypeVars() []*TypeVar
}

// AnyType is the gradual top. Two distinct forms exist per spec.md §3:
// plain Any (explicit, precise gradual typing) and Unknown (a value whose
// precision was lost during inference). They behave identically for
// assignability but are printed, and reported, differently.
type AnyType struct {
	IsUnknown bool
}

func Any() Type     { return AnyType{} }
func Unknown() Type { return AnyType{IsUnknown: true} }

func (a AnyType) String() string {
	if a.IsUnknown {
		return "Unknown"
	}
	return "Any"
}
func (a AnyType) Apply(Subst) Type          { return a }
func (a AnyType) FreeTypeVars() []*TypeVar  { return nil }
func IsAny(t Type) bool {
	a, ok := t.(AnyType)
	return ok && !a.IsUnknown
}
func IsUnknown(t Type) bool {
	a, ok := t.(AnyType)
	return ok && a.IsUnknown
}
func IsAnyOrUnknown(t Type) bool {
	_, ok := t.(AnyType)
	return ok
}

// NeverType is the bottom type: assignable to every type in covariant
// position (spec.md §3, §8 invariant 2).
type NeverType struct{}

func Never() Type                         { return NeverType{} }
func (n NeverType) String() string        { return "Never" }
func (n NeverType) Apply(Subst) Type      { return n }
func (n NeverType) FreeTypeVars() []*TypeVar { return nil }
func IsNever(t Type) bool {
	_, ok := t.(NeverType)
	return ok
}

// NoneType is the singleton None, with an Instantiable flag distinguishing
// the instance form from its instantiable form type[None].
type NoneType struct {
	Instantiable bool
}

func None() Type                  { return NoneType{} }
func NoneTypeOf() Type            { return NoneType{Instantiable: true} }
func (n NoneType) String() string {
	if n.Instantiable {
		return "type[None]"
	}
	return "None"
}
func (n NoneType) Apply(Subst) Type         { return n }
func (n NoneType) FreeTypeVars() []*TypeVar { return nil }

// LiteralValue constrains a Class instance to a single concrete value
// (spec.md §3 "literal value tag").
type LiteralValue struct {
	// Kind is one of "str", "bytes", "int", "bool", "enum".
	Kind string
	Str  string
	Byte []byte
	Int  *BigOrMachineInt
	Bool bool
	// EnumClass/EnumMember identify a specific enum member literal.
	EnumClass  string
	EnumMember string
}

func (l *LiteralValue) String() string {
	switch l.Kind {
	case "str":
		return "\"" + l.Str + "\""
	case "bytes":
		return "b\"" + string(l.Byte) + "\""
	case "int":
		return l.Int.String()
	case "bool":
		if l.Bool {
			return "True"
		}
		return "False"
	case "enum":
		return l.EnumClass + "." + l.EnumMember
	default:
		return "<literal>"
	}
}

func (l *LiteralValue) Equal(o *LiteralValue) bool {
	if l == nil || o == nil {
		return l == o
	}
	if l.Kind != o.Kind {
		return false
	}
	switch l.Kind {
	case "str":
		return l.Str == o.Str
	case "bytes":
		return string(l.Byte) == string(o.Byte)
	case "int":
		return l.Int.Equal(o.Int)
	case "bool":
		return l.Bool == o.Bool
	case "enum":
		return l.EnumClass == o.EnumClass && l.EnumMember == o.EnumMember
	default:
		return false
	}
}

// ClassFlags carries the boolean flags spec.md §3 lists for Class.
type ClassFlags struct {
	DataClass       bool
	Frozen          bool
	Final           bool
	Protocol        bool
	RuntimeCheckable bool
	GeneratedSlots  bool
	BuiltinName     string // non-empty when this class has a recognized built-in name (e.g. "tuple")
}

// DataClassBehaviors captures a dataclass_transform decorator's configured
// defaults (spec.md §6 "Configuration options accepted by data-class
// transform"). It is attached to whichever function or class the transform
// decorator marks, so a later class decorator built from that marker can
// recover the behavior set (spec.md §4.F, §6
// "getDataClassBehaviorsFromDecorator"). It lives in this package, not
// internal/decorators, because it must hang off ClassType/FunctionType
// values without creating an import cycle between decorators and dataclass.
type DataClassBehaviors struct {
	KWOnlyDefault    bool
	EqDefault        bool
	OrderDefault     bool
	FieldDescriptors []Type
}

// TupleElement is one element of a tuple class's tupleTypeArguments.
type TupleElement struct {
	Type      Type
	Unbounded bool
}

// ClassType is the Class variant of Type (spec.md §3). Instantiable forms
// represent type[C]; instance forms represent an inhabitant of C.
type ClassType struct {
	Name             string
	Instantiable     bool
	MRO              []string
	TypeParams       []*TypeVar
	TypeArgs         []Type
	ParamVariance    []Variance // parallel to TypeParams
	Flags            ClassFlags
	Fields           map[string]*FieldSymbol
	FieldOrder       []string
	Metaclass        *ClassType
	Deprecated       string
	TupleArgs        []TupleElement
	HasTupleArgs     bool
	Literal          *LiteralValue

	// TransformBehaviors is set when this class (typically a metaclass) was
	// itself marked by a dataclass_transform decorator (spec.md §4.F).
	TransformBehaviors *DataClassBehaviors
}

// FieldSymbol is a name -> symbol entry in a class's field table.
type FieldSymbol struct {
	Name string
	Type Type
}

func (c ClassType) String() string {
	var b strings.Builder
	if c.Instantiable {
		b.WriteString("type[")
	}
	b.WriteString(c.Name)
	if len(c.TypeArgs) > 0 {
		b.WriteString("[")
		parts := make([]string, len(c.TypeArgs))
		for i, a := range c.TypeArgs {
			parts[i] = a.String()
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("]")
	}
	if c.Instantiable {
		b.WriteString("]")
	}
	if c.Literal != nil {
		return "Literal[" + c.Literal.String() + "]"
	}
	return b.String()
}

func (c ClassType) Apply(s Subst) Type {
	if len(c.TypeArgs) == 0 {
		return c
	}
	newArgs := make([]Type, len(c.TypeArgs))
	for i, a := range c.TypeArgs {
		newArgs[i] = a.Apply(s)
	}
	c.TypeArgs = newArgs
	return c
}

func (c ClassType) FreeTypeVars() []*TypeVar {
	var out []*TypeVar
	for _, a := range c.TypeArgs {
		out = append(out, a.FreeTypeVars()...)
	}
	return out
}

// IsSameClass reports whether a and b refer to the same generic class,
// ignoring specialization and instantiable-ness.
func IsSameClass(a, b ClassType) bool {
	return a.Name == b.Name
}

// WithTypeArgs returns a copy of c specialized with the given type arguments.
func (c ClassType) WithTypeArgs(args []Type) ClassType {
	c.TypeArgs = args
	return c
}

// ParamCategory tags a Function parameter's binding shape (spec.md §3).
type ParamCategory int

const (
	ParamPositional ParamCategory = iota
	ParamArgs                     // *args
	ParamKwargs                   // **kwargs
	ParamKeywordOnlyMarker        // bare '*' separator
	ParamPositionalOnlyMarker     // bare '/' separator
)

// Param is one entry in a Function's ordered parameter list.
type Param struct {
	Category     ParamCategory
	Name         string
	Type         Type
	HasDefault   bool
	KeywordOnly  bool
}

// FunctionFlags carries the boolean flags spec.md §3 lists for Function.
type FunctionFlags struct {
	Constructor     bool
	ClassMethod     bool
	StaticMethod    bool
	Abstract        bool
	Overloaded      bool
	Final           bool
	Overridden      bool
	GradualCallable bool // "..." any-shaped parameter list
	Synthesized     bool

	// TypeCheckOnly and NoTypeCheck back the @type_check_only and
	// @no_type_check built-in decorators (spec.md §4.F).
	TypeCheckOnly bool
	NoTypeCheck   bool
}

// FunctionType is the Function variant of Type.
type FunctionType struct {
	Params      []Param
	ReturnType  Type
	Flags       FunctionFlags
	BoundClass  *ClassType
	Docstring   string
	Deprecated  string
	ScopeID     uuid.UUID

	// TransformBehaviors is set when this function was itself marked by a
	// dataclass_transform decorator (spec.md §4.F: "a function whose full
	// name equals __dataclass_transform__").
	TransformBehaviors *DataClassBehaviors
}

func NewScopeID() uuid.UUID { return uuid.New() }

func (f FunctionType) String() string {
	var b strings.Builder
	b.WriteString("(")
	parts := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		switch p.Category {
		case ParamArgs:
			parts = append(parts, "*"+p.Name)
		case ParamKwargs:
			parts = append(parts, "**"+p.Name)
		case ParamKeywordOnlyMarker:
			parts = append(parts, "*")
		case ParamPositionalOnlyMarker:
			parts = append(parts, "/")
		default:
			if p.Type != nil {
				parts = append(parts, p.Name+": "+p.Type.String())
			} else {
				parts = append(parts, p.Name)
			}
		}
	}
	if f.Flags.GradualCallable {
		parts = []string{"..."}
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(") -> ")
	if f.ReturnType != nil {
		b.WriteString(f.ReturnType.String())
	} else {
		b.WriteString("Unknown")
	}
	return b.String()
}

func (f FunctionType) Apply(s Subst) Type {
	newParams := make([]Param, len(f.Params))
	for i, p := range f.Params {
		if p.Type != nil {
			p.Type = p.Type.Apply(s)
		}
		newParams[i] = p
	}
	f.Params = newParams
	if f.ReturnType != nil {
		f.ReturnType = f.ReturnType.Apply(s)
	}
	return f
}

func (f FunctionType) FreeTypeVars() []*TypeVar {
	var out []*TypeVar
	for _, p := range f.Params {
		if p.Type != nil {
			out = append(out, p.Type.FreeTypeVars()...)
		}
	}
	if f.ReturnType != nil {
		out = append(out, f.ReturnType.FreeTypeVars()...)
	}
	return out
}

// OverloadedType is an ordered list of Function signatures plus an optional
// non-overload implementation signature (spec.md §3, §4.F overload
// accumulation).
type OverloadedType struct {
	Overloads      []FunctionType
	Implementation *FunctionType
}

func (o OverloadedType) String() string {
	parts := make([]string, len(o.Overloads))
	for i, f := range o.Overloads {
		parts[i] = f.String()
	}
	return "Overload[" + strings.Join(parts, " | ") + "]"
}

func (o OverloadedType) Apply(s Subst) Type {
	newOverloads := make([]FunctionType, len(o.Overloads))
	for i, f := range o.Overloads {
		newOverloads[i] = f.Apply(s).(FunctionType)
	}
	o.Overloads = newOverloads
	if o.Implementation != nil {
		impl := o.Implementation.Apply(s).(FunctionType)
		o.Implementation = &impl
	}
	return o
}

func (o OverloadedType) FreeTypeVars() []*TypeVar {
	var out []*TypeVar
	for _, f := range o.Overloads {
		out = append(out, f.FreeTypeVars()...)
	}
	return out
}

// UnionType is a flat set of non-redundant subtypes (spec.md §3 invariant:
// at least 2 members; singleton unions collapse — use NormalizeUnion to
// maintain this).
type UnionType struct {
	Members []Type
}

func (u UnionType) String() string {
	sorted := SortedTypeStrings(u.Members)
	return strings.Join(sorted, " | ")
}

func (u UnionType) Apply(s Subst) Type {
	newMembers := make([]Type, len(u.Members))
	for i, m := range u.Members {
		newMembers[i] = m.Apply(s)
	}
	return NormalizeUnion(newMembers)
}

func (u UnionType) FreeTypeVars() []*TypeVar {
	var out []*TypeVar
	for _, m := range u.Members {
		out = append(out, m.FreeTypeVars()...)
	}
	return out
}

// SortedTypeStrings renders each type and returns them in the stable total
// order spec.md §5 requires for deterministic union output.
func SortedTypeStrings(members []Type) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.String()
	}
	sort.Strings(out)
	return out
}

// TypeVar is the generalized type-variable variant of Type (spec.md §3).
// ParamSpec values are represented as a FunctionType whose Params are the
// captured parameter list, so there is no separate ParamSpec Type variant;
// Kind distinguishes ordinary/variadic/param-spec TypeVars.
type TypeVar struct {
	Name      string
	ScopeID   uuid.UUID
	Kind      TVarKind
	Bound     Type
	Constraints []Type
	Variance  Variance

	Synthesized         bool
	Self                bool
	InScopePlaceholder  bool
	VariadicUnpacked    bool
	VariadicInUnion     bool
	ParamSpecDefault    bool
}

func (t *TypeVar) String() string {
	return t.Name
}
func (t *TypeVar) Apply(s Subst) Type {
	return ApplySubst(t, s, map[uuid.UUID]bool{})
}
func (t *TypeVar) FreeTypeVars() []*TypeVar { return []*TypeVar{t} }

// SameVar reports whether two TypeVar pointers denote the same variable:
// scope id plus name (names can repeat harmlessly across unrelated scopes).
func SameVar(a, b *TypeVar) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ScopeID == b.ScopeID && a.Name == b.Name
}

// IsConstrained reports whether t is a TypeVar with a non-empty constraint
// list (spec.md §3 invariant: such a variable has no upper bound).
func IsConstrained(t Type) bool {
	tv, ok := t.(*TypeVar)
	return ok && len(tv.Constraints) > 0
}

// UnpackedTupleType wraps a tuple ClassType to mean "spread its elements in
// place" in a positional context (spec.md GLOSSARY "Unpacked tuple").
type UnpackedTupleType struct {
	Tuple ClassType
}

func (u UnpackedTupleType) String() string {
	return "*" + u.Tuple.String()
}
func (u UnpackedTupleType) Apply(s Subst) Type {
	u.Tuple = u.Tuple.Apply(s).(ClassType)
	return u
}
func (u UnpackedTupleType) FreeTypeVars() []*TypeVar {
	return u.Tuple.FreeTypeVars()
}

// IsUnpacked reports whether t is an UnpackedTupleType.
func IsUnpacked(t Type) bool {
	_, ok := t.(UnpackedTupleType)
	return ok
}
