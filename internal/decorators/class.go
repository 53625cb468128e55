package decorators

import (
	"github.com/gradualgo/typecore/internal/dataclass"
	"github.com/gradualgo/typecore/internal/diagnostics"
	"github.com/gradualgo/typecore/internal/host"
	"github.com/gradualgo/typecore/internal/types"
)

// ClassResult is the outcome of applying a chain of class decorators.
// Synthesis is set when a data-class decorator fired the class-synthesis
// engine (spec.md §4.E).
type ClassResult struct {
	Class     *types.ClassType
	Synthesis *dataclass.SynthesisResult
}

// ApplyClassDecorators implements spec.md §4.F's "Class decorators mirror
// function decorators" paragraph. fields supplies the field declarations
// the synthesis engine needs if a data-class decorator fires; it is ignored
// for every other decorator kind.
func ApplyClassDecorators(ev host.Evaluator, cls types.ClassType, decorators []Decorator, fields dataclass.ClassInput) (ClassResult, *diagnostics.DiagnosticError) {
	result := ClassResult{Class: &cls}

	for i := len(decorators) - 1; i >= 0; i-- {
		var err *diagnostics.DiagnosticError
		result, err = applyOneClassDecorator(ev, result, fields, decorators[i])
		if err != nil {
			return ClassResult{}, err
		}
	}
	return result, nil
}

func applyOneClassDecorator(ev host.Evaluator, in ClassResult, fields dataclass.ClassInput, d Decorator) (ClassResult, *diagnostics.DiagnosticError) {
	switch d.Kind {
	case KindFinal:
		cls := *in.Class
		cls.Flags.Final = true
		return ClassResult{Class: &cls, Synthesis: in.Synthesis}, nil
	case KindTypeCheckOnly:
		// Class-level type_check_only has no dedicated ClassFlags field in
		// this module's data model (spec.md §3 lists it only as a function
		// flag); the host tracks it on the symbol, not the type, for classes.
		return in, nil
	case KindDeprecated:
		cls := *in.Class
		cls.Deprecated = d.DeprecatedMessage
		return ClassResult{Class: &cls, Synthesis: in.Synthesis}, nil
	case KindDataclassTransform:
		cls := *in.Class
		behaviors := dataclass.ValidateDataClassTransform(d.Transform.KWOnlyDefault, d.Transform.EqDefault, d.Transform.OrderDefault, d.Transform.FieldDescriptors)
		cls.TransformBehaviors = &behaviors
		return ClassResult{Class: &cls, Synthesis: in.Synthesis}, nil
	case KindDataclass:
		return applyDataclassDecorator(ev, in, fields, d)
	default:
		return in, nil
	}
}

// applyDataclassDecorator implements spec.md §4.F: "A data-class decorator
// invokes the synthesis engine (§4.E) with the decorator's behavior
// defaults merged with its call-site arguments." The decorator's own
// behavior defaults come from a dataclass_transform marker on the
// decorator's callee type when present (spec.md §6
// "getDataClassBehaviorsFromDecorator"); a bare @dataclass with no such
// marker falls back to the plain dataclass.DefaultBehaviors().
func applyDataclassDecorator(ev host.Evaluator, in ClassResult, fields dataclass.ClassInput, d Decorator) (ClassResult, *diagnostics.DiagnosticError) {
	defaults := dataclass.DefaultBehaviors()
	if b, ok := dataclass.GetDataClassBehaviorsFromDecorator(d.CalleeType); ok {
		defaults = b
	}
	merged := dataclass.ApplyDataClassBehaviorOverrides(defaults, d.ClassArgs)

	in2 := fields
	in2.GenerateEq = merged.EqDefault
	in2.GenerateOrder = merged.OrderDefault
	in2.KWOnlyDefault = merged.KWOnlyDefault
	if d.ClassArgs.Frozen.Set && d.ClassArgs.Frozen.Value {
		in2.Frozen = true
	}
	if d.ClassArgs.Init.Set && !d.ClassArgs.Init.Value {
		in2.SkipInit = true
	}
	if d.ClassArgs.Slots.Set {
		in2.GenerateSlots = d.ClassArgs.Slots.Value
	}

	synth, err := dataclass.Synthesize(ev, in2)
	if err != nil {
		return ClassResult{}, err
	}
	for _, diag := range synth.Diagnostics {
		ev.AddDiagnostic(string(diag.Code), diag.Error(), d.Node)
	}
	cls := *in.Class
	cls.Flags.DataClass = true
	cls.Flags.Frozen = synth.EffectiveFrozen
	return ClassResult{Class: &cls, Synthesis: synth}, nil
}
