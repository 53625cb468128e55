// Package dataclass implements the class-synthesis engine (spec.md §4.E):
// given a class flagged as a data class, it collects fields across the MRO,
// synthesizes a constructor, and attaches the optional support members
// (__match_args__, __eq__, ordering, slots, frozen propagation). It is
// grounded on the sibling funxy analyzer's own class-body walking
// (internal/analyzer/declarations_class.go's field-table construction),
// generalized from a flat field list to the MRO-ordered, annotation-driven
// shape spec.md §4.E describes.
package dataclass

import (
	"github.com/gradualgo/typecore/internal/diagnostics"
	"github.com/gradualgo/typecore/internal/host"
	"github.com/gradualgo/typecore/internal/types"
)

// FieldShape distinguishes how a local statement declared a field (spec.md
// §4.E step 2).
type FieldShape int

const (
	ShapeAnnotatedWithDefault FieldShape = iota
	ShapeBareAnnotation
)

// FieldDecl is one class-body statement the host has already parsed down to
// its dataclass-relevant shape (lexing/parsing are non-goals; the host hands
// us this already-resolved view).
type FieldDecl struct {
	Name  string
	Type  types.Type
	Shape FieldShape

	// AnnotationNode is set instead of Type when the annotation could not be
	// resolved eagerly because it refers to a name not yet bound at the
	// point the class body was walked (spec.md §4.E step 3, "circular
	// references between sibling fields"). Synthesize resolves it lazily,
	// once every field's name is known, via the host's annotation evaluator.
	AnnotationNode host.Node

	// FieldConstructorCall is set when the right-hand side invokes a
	// declared field constructor (spec.md §4.E step 4).
	FieldConstructorCall *FieldConstructorArgs

	// IsClassVar marks a bare ClassVar[...] annotation (excluded from the
	// instance field table unless also Final).
	IsClassVar bool
	IsFinal    bool

	// KWOnlySentinel marks the special `_: KW_ONLY` marker statement.
	KWOnlySentinel bool
}

// FieldConstructorArgs is the introspected argument set of a field
// constructor call (spec.md §4.E step 4).
type FieldConstructorArgs struct {
	InitSet        bool
	Init           bool
	KWOnlySet      bool
	KWOnly         bool
	HasDefault     bool
	HasDefaultFactory bool
	Alias          string
}

// Field is one synthesized field entry.
type Field struct {
	Name       string
	Alias      string // constructor parameter name, defaults to Name
	Type       types.Type
	HasDefault bool
	Init       bool
	KWOnly     bool
}

// AncestorFields is one ancestor's contribution to the MRO walk (farthest
// first), or a marker that the ancestor's fields are unknown (spec.md §4.E
// step 1).
type AncestorFields struct {
	Fields  []Field
	Unknown bool
}

// ClassInput is everything the synthesis engine needs about the class being
// synthesized (spec.md §4.E).
type ClassInput struct {
	Name         string
	Ancestors    []AncestorFields // farthest ancestor first
	LocalFields  []FieldDecl
	Frozen       bool
	DirectBasesFrozen []bool // parallel to the class's declared bases, farthest-unrelated info aside
	GenerateEq      bool
	GenerateOrder   bool
	GenerateSlots   bool
	ExplicitSlots   bool
	NamedTupleBase  *types.ClassType

	// SkipInit corresponds to synthesizeDataClassMembers's skip_init
	// parameter (spec.md §6): the decorator call set init=False, so no
	// constructor is synthesized at all.
	SkipInit bool
	// KWOnlyDefault seeds every local field as keyword-only unless the field
	// itself or a preceding KW_ONLY sentinel says otherwise; set from a
	// dataclass_transform's kw_only_default or the decorator's own kw_only
	// argument (spec.md §4.F).
	KWOnlyDefault bool
}

// SynthesisResult is the output of Synthesize.
type SynthesisResult struct {
	Fields         []Field
	Init           *types.FunctionType
	New            *types.FunctionType
	MatchArgs      []string
	DataClassFieldsAttr types.Type
	Eq             *types.FunctionType
	Ordering       []types.FunctionType // lt, le, gt, ge in that order when GenerateOrder
	Slots          []string
	EffectiveFrozen bool
	// NamedTupleBase is the ancestor NamedTuple class respecialized with this
	// class's own field types, when ClassInput.NamedTupleBase was set.
	NamedTupleBase *types.ClassType
	// Diagnostics holds non-fatal diagnostics synthesis still wants to
	// surface even though it succeeded (e.g. CodeSlotsAlreadyDeclared) — the
	// spec.md §7 "success ... possibly with a synthesized value" outcome,
	// distinct from the fatal *diagnostics.DiagnosticError Synthesize itself
	// returns. The caller is responsible for routing these through
	// host.Evaluator.AddDiagnostic.
	Diagnostics []*diagnostics.DiagnosticError
}

// Synthesize implements spec.md §4.E end to end.
func Synthesize(ev host.Evaluator, in ClassInput) (*SynthesisResult, *diagnostics.DiagnosticError) {
	fields, ancestorUnknown := collectFields(ev, in)

	result := &SynthesisResult{Fields: fields}
	result.EffectiveFrozen = effectiveFrozen(in)

	if err := checkFrozenInheritance(in); err != nil {
		return nil, err
	}

	if !in.SkipInit {
		init, newFn, err := synthesizeConstructor(in.Name, fields, ancestorUnknown)
		if err != nil {
			return nil, err
		}
		result.Init = init
		result.New = newFn
	}

	result.MatchArgs = MatchArgsNames(fields)
	result.DataClassFieldsAttr = types.ClassType{Name: "dict", TypeArgs: []types.Type{
		types.ClassType{Name: "str"}, types.Any(),
	}}

	if in.GenerateEq {
		result.Eq = &types.FunctionType{
			Params: []types.Param{
				{Category: types.ParamPositional, Name: "self"},
				{Category: types.ParamPositional, Name: "other", Type: types.ClassType{Name: "object"}},
			},
			ReturnType: types.ClassType{Name: "bool"},
			Flags:      types.FunctionFlags{Synthesized: true},
		}
	}
	if in.GenerateOrder {
		for _, name := range []string{"__lt__", "__le__", "__gt__", "__ge__"} {
			result.Ordering = append(result.Ordering, types.FunctionType{
				Params: []types.Param{
					{Category: types.ParamPositional, Name: "self"},
					{Category: types.ParamPositional, Name: "other", Type: types.ClassType{Name: in.Name}},
				},
				ReturnType: types.ClassType{Name: "bool"},
				Flags:      types.FunctionFlags{Synthesized: true},
				Docstring:  name,
			})
		}
	}

	if in.GenerateSlots {
		if in.ExplicitSlots {
			// The class already declares its own __slots__: synthesis adds
			// none of its own, and the already-declared shape is flagged
			// per spec.md §4.E ("emit a diagnostic if slots were already
			// declared").
			result.Diagnostics = append(result.Diagnostics, diagnostics.New(diagnostics.CodeSlotsAlreadyDeclared, in.Name))
		} else {
			for _, f := range in.LocalFields {
				if f.KWOnlySentinel || f.IsClassVar && !f.IsFinal {
					continue
				}
				result.Slots = append(result.Slots, f.Name)
			}
		}
	}

	if in.NamedTupleBase != nil {
		args := make([]types.Type, len(fields))
		for i, f := range fields {
			args[i] = f.Type
		}
		respecialized := in.NamedTupleBase.WithTypeArgs(args)
		result.NamedTupleBase = &respecialized
	}

	return result, nil
}

// collectFields implements spec.md §4.E steps 1-5.
func collectFields(ev host.Evaluator, in ClassInput) ([]Field, bool) {
	byName := make(map[string]Field)
	order := []string{}
	ancestorUnknown := false

	for _, anc := range in.Ancestors {
		if anc.Unknown {
			ancestorUnknown = true
			continue
		}
		for _, f := range anc.Fields {
			if _, exists := byName[f.Name]; !exists {
				order = append(order, f.Name)
			}
			byName[f.Name] = f
		}
	}

	kwOnlyMode := in.KWOnlyDefault
	pending := make(map[string]host.Node)
	for _, decl := range in.LocalFields {
		if decl.KWOnlySentinel {
			kwOnlyMode = true
			continue
		}
		if decl.IsClassVar && !decl.IsFinal {
			// Class variables are excluded; remove any inherited instance
			// field with the same name (spec.md §4.E step 5).
			if _, exists := byName[decl.Name]; exists {
				delete(byName, decl.Name)
				order = removeName(order, decl.Name)
			}
			continue
		}

		fieldType := decl.Type
		if fieldType == nil && decl.AnnotationNode != nil {
			// Resolved after the walk, once every local field is recorded.
			pending[decl.Name] = decl.AnnotationNode
		}

		f := Field{
			Name:       decl.Name,
			Alias:      decl.Name,
			Type:       fieldType,
			HasDefault: decl.Shape == ShapeAnnotatedWithDefault,
			Init:       true,
			KWOnly:     kwOnlyMode,
		}
		if decl.FieldConstructorCall != nil {
			c := decl.FieldConstructorCall
			if c.InitSet {
				f.Init = c.Init
			}
			if c.KWOnlySet {
				f.KWOnly = c.KWOnly
			}
			if c.HasDefault || c.HasDefaultFactory {
				f.HasDefault = true
			}
			if c.Alias != "" {
				f.Alias = c.Alias
			}
		}

		if _, exists := byName[f.Name]; !exists {
			order = append(order, f.Name)
		}
		byName[f.Name] = f
	}

	fields := make([]Field, 0, len(order))
	for _, name := range order {
		f := byName[name]
		if node, ok := pending[name]; ok && f.Type == nil {
			f.Type = ev.GetTypeOfAnnotation(node, host.AnnotationOptions{AllowForwardReference: true})
		}
		fields = append(fields, f)
	}
	return fields, ancestorUnknown
}

func removeName(order []string, name string) []string {
	out := order[:0]
	for _, n := range order {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// synthesizeConstructor implements spec.md §4.E's "Constructor synthesis"
// paragraph, including the field-ordering diagnostic (spec.md §8 invariant
// 6: declared defaults form a monotonically non-decreasing sequence).
func synthesizeConstructor(className string, fields []Field, ancestorUnknown bool) (*types.FunctionType, *types.FunctionType, *diagnostics.DiagnosticError) {
	if ancestorUnknown {
		gradual := gradualSignature()
		newFn := gradual
		newFn.ReturnType = types.ClassType{Name: className}
		return &gradual, &newFn, nil
	}

	var positional, kwOnly []Field
	for _, f := range fields {
		if !f.Init {
			continue
		}
		if f.KWOnly {
			kwOnly = append(kwOnly, f)
		} else {
			positional = append(positional, f)
		}
	}

	seenDefault := false
	for _, f := range positional {
		if f.HasDefault {
			seenDefault = true
		} else if seenDefault {
			return nil, nil, diagnostics.New(diagnostics.CodeFieldOrdering, f.Name)
		}
	}

	params := []types.Param{{Category: types.ParamPositional, Name: "self"}}
	for _, f := range positional {
		params = append(params, types.Param{Category: types.ParamPositional, Name: f.Alias, Type: f.Type, HasDefault: f.HasDefault})
	}
	if len(kwOnly) > 0 {
		params = append(params, types.Param{Category: types.ParamKeywordOnlyMarker})
		for _, f := range kwOnly {
			params = append(params, types.Param{Category: types.ParamPositional, Name: f.Alias, Type: f.Type, HasDefault: f.HasDefault, KeywordOnly: true})
		}
	}

	init := &types.FunctionType{
		Params:     params,
		ReturnType: types.None(),
		Flags:      types.FunctionFlags{Constructor: true, Synthesized: true},
	}
	newFn := &types.FunctionType{
		Params:     gradualParams(),
		ReturnType: selfType(className),
		Flags:      types.FunctionFlags{Constructor: true, Synthesized: true},
	}
	return init, newFn, nil
}

func gradualSignature() types.FunctionType {
	return types.FunctionType{
		Params:     gradualParams(),
		ReturnType: types.None(),
		Flags:      types.FunctionFlags{Constructor: true, Synthesized: true},
	}
}

func gradualParams() []types.Param {
	return []types.Param{
		{Category: types.ParamPositional, Name: "self"},
		{Category: types.ParamArgs, Name: "args"},
		{Category: types.ParamKwargs, Name: "kwargs"},
	}
}

// selfType represents the synthesized __new__'s declared Self return as a
// synthesized type variable with types.TypeVar's Self flag set, bound to
// the class itself.
func selfType(className string) types.Type {
	return &types.TypeVar{Name: "Self", Synthesized: true, Self: true, Bound: types.ClassType{Name: className}}
}

// MatchArgsNames returns, in order, the names (not aliases) of every field
// with Init set, keyword-only fields included, for __match_args__ (spec.md §4.E: "tuple-of-string-literals of the
// non-excluded field names, not aliases").
func MatchArgsNames(fields []Field) []string {
	var names []string
	for _, f := range fields {
		if f.Init {
			names = append(names, f.Name)
		}
	}
	return names
}

// StaticBool is a static-foldable boolean argument that may not have
// resolved (spec.md §4.F: "an unfoldable value is silently treated as
// unspecified").
type StaticBool struct {
	Set   bool
	Value bool
}

// CallArgs is a data-class decorator call site's own keyword arguments
// (spec.md §4.F "Recognized call-site arguments"), each already folded
// through internal/boolfold by the caller.
type CallArgs struct {
	Init   StaticBool
	Eq     StaticBool
	Order  StaticBool
	Frozen StaticBool
	KWOnly StaticBool
	Slots  StaticBool
}

// DefaultBehaviors is the plain @dataclass default (spec.md §6): eq
// synthesized, everything else off.
func DefaultBehaviors() types.DataClassBehaviors {
	return types.DataClassBehaviors{EqDefault: true}
}

// ValidateDataClassTransform implements the core-exposed
// validateDataClassTransform(callExpr) -> Behaviors? operation (spec.md §6):
// it builds a DataClassBehaviors from an already-parsed dataclass_transform
// call's keyword arguments. The host is responsible for recognizing the
// call shape (non-goal: parsing); an empty fieldDescriptorNames tuple is
// valid and simply means no field-specifier callables are recognized.
func ValidateDataClassTransform(kwOnlyDefault, eqDefault, orderDefault StaticBool, fieldDescriptors []types.Type) types.DataClassBehaviors {
	b := types.DataClassBehaviors{EqDefault: true}
	if kwOnlyDefault.Set {
		b.KWOnlyDefault = kwOnlyDefault.Value
	}
	if eqDefault.Set {
		b.EqDefault = eqDefault.Value
	}
	if orderDefault.Set {
		b.OrderDefault = orderDefault.Value
	}
	b.FieldDescriptors = fieldDescriptors
	return b
}

// GetDataClassBehaviorsFromDecorator implements the core-exposed
// getDataClassBehaviorsFromDecorator(type) -> Behaviors? operation: it
// recovers a previously-attached dataclass_transform marker from a
// decorator's own type (spec.md §4.F). The marker is carried directly on
// the Type (types.DataClassBehaviors pointer fields on FunctionType and
// ClassType) rather than in a side table, since types.Type values are
// otherwise immutable and freely shared (spec.md §5 "Resource policy").
func GetDataClassBehaviorsFromDecorator(t types.Type) (types.DataClassBehaviors, bool) {
	switch v := t.(type) {
	case types.FunctionType:
		if v.TransformBehaviors != nil {
			return *v.TransformBehaviors, true
		}
	case types.ClassType:
		if v.TransformBehaviors != nil {
			return *v.TransformBehaviors, true
		}
	}
	return types.DataClassBehaviors{}, false
}

// ApplyDataClassBehaviorOverrides implements the core-exposed
// applyDataClassBehaviorOverrides(class, args) operation: it merges a
// dataclass_transform's configured defaults with a decorator call site's own
// keyword arguments (spec.md §4.F, §6). Unset (unfoldable) arguments leave
// the transform's default untouched.
func ApplyDataClassBehaviorOverrides(defaults types.DataClassBehaviors, args CallArgs) types.DataClassBehaviors {
	out := defaults
	if args.Eq.Set {
		out.EqDefault = args.Eq.Value
	}
	if args.Order.Set {
		out.OrderDefault = args.Order.Value
	}
	if args.KWOnly.Set {
		out.KWOnlyDefault = args.KWOnly.Value
	}
	return out
}

// checkFrozenInheritance implements spec.md §4.E's frozen-propagation
// paragraph and the CodeFrozenInheritance diagnostic.
func checkFrozenInheritance(in ClassInput) *diagnostics.DiagnosticError {
	if !in.Frozen {
		return nil
	}
	for _, baseFrozen := range in.DirectBasesFrozen {
		if !baseFrozen {
			return diagnostics.New(diagnostics.CodeFrozenInheritance, in.Name, "base")
		}
	}
	return nil
}

// effectiveFrozen implements "if any direct base is frozen, the child is
// implicitly frozen" (spec.md §4.E).
func effectiveFrozen(in ClassInput) bool {
	if in.Frozen {
		return true
	}
	for _, baseFrozen := range in.DirectBasesFrozen {
		if baseFrozen {
			return true
		}
	}
	return false
}
