// Package diagnostics provides the stable error-category contract described
// in the type-reasoning core's error handling design: every user-visible
// failure is recorded as a DiagnosticError carrying a machine-readable Code
// plus a human sentence, never a bare error string.
package diagnostics

import (
	"fmt"
	"strings"
)

// Code identifies the stable category of a diagnostic. Names are internal;
// only the category they stand for is part of the contract.
type Code string

const (
	// CodeAssignabilityMismatch marks a structural/variance assignability failure.
	CodeAssignabilityMismatch Code = "T001"
	// CodeBoundViolation marks a type variable's declared bound rejecting a candidate.
	CodeBoundViolation Code = "T002"
	// CodeConstraintMismatch marks a constrained type variable with no single matching constraint.
	CodeConstraintMismatch Code = "T003"
	// CodeParamSpecMismatch marks incompatible parameter-specification signatures.
	CodeParamSpecMismatch Code = "T004"
	// CodeFieldOrdering marks a non-default field following a defaulted one during dataclass synthesis.
	CodeFieldOrdering Code = "T005"
	// CodeFrozenInheritance marks a frozen dataclass deriving from a non-frozen one.
	CodeFrozenInheritance Code = "T006"
	// CodeUnsupportedOperator marks an operator with no viable magic method and no fallback.
	CodeUnsupportedOperator Code = "T007"
	// CodeOptionalOperand marks an operator failure where the left operand was optional.
	CodeOptionalOperand Code = "T008"
	// CodeUnionAtTypePosition marks a disallowed stringified forward reference or version-gate violation.
	CodeUnionAtTypePosition Code = "T009"
	// CodeInconsistentOverload marks an abstractness mismatch across overload siblings.
	CodeInconsistentOverload Code = "T010"
	// CodeSlotsAlreadyDeclared marks a data-class whose slots were already
	// explicitly declared when slot generation was also requested. Non-fatal:
	// synthesis still succeeds, but the class keeps its own __slots__ rather
	// than gaining a synthesized one.
	CodeSlotsAlreadyDeclared Code = "T011"
)

var messageTemplates = map[Code]string{
	CodeAssignabilityMismatch: "%s is not assignable to %s",
	CodeBoundViolation:        "type %s does not satisfy the bound %s declared on %s",
	CodeConstraintMismatch:    "type %s does not match any constraint of %s",
	CodeParamSpecMismatch:     "parameter list %s is incompatible with %s",
	CodeFieldOrdering:         "field %q without a default follows a field with a default",
	CodeFrozenInheritance:     "frozen data-class %s cannot derive from non-frozen data-class %s",
	CodeUnsupportedOperator:   "operator %s not supported between %s and %s",
	CodeOptionalOperand:       "operand %s is optional; remove None before applying %s",
	CodeUnionAtTypePosition:   "%s is not valid in this union-at-type-position expression",
	CodeInconsistentOverload:  "overload %s is inconsistent with its siblings on %s",
	CodeSlotsAlreadyDeclared:  "class %s already declares __slots__; synthesized slots were not added",
}

// Addendum is a nested sub-diagnostic describing one mismatch inside a
// larger structural comparison (e.g. one field of a record assignment).
type Addendum struct {
	Message string
	Nested  []Addendum
}

func (a Addendum) render(indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(a.Message)
	for _, n := range a.Nested {
		b.WriteString("\n")
		b.WriteString(n.render(indent + "  "))
	}
	return b.String()
}

// DiagnosticError is the single error type every core component returns.
// It is always recoverable: producing one never aborts a compilation unit.
type DiagnosticError struct {
	Code      Code
	Args      []interface{}
	Addenda   []Addendum
	Internal  bool // true for "should never happen" invariant violations
}

func (e *DiagnosticError) Error() string {
	template, ok := messageTemplates[e.Code]
	if !ok {
		return fmt.Sprintf("unknown diagnostic code: %s", e.Code)
	}
	msg := fmt.Sprintf(template, e.Args...)
	if e.Internal {
		msg = "internal error: " + msg
	}
	if len(e.Addenda) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, msg)
	for _, a := range e.Addenda {
		b.WriteString("\n")
		b.WriteString(a.render("  "))
	}
	return b.String()
}

// New constructs a DiagnosticError for the given category.
func New(code Code, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Args: args}
}

// WithAddenda attaches nested sub-diagnostics, returning the same error for chaining.
func (e *DiagnosticError) WithAddenda(addenda ...Addendum) *DiagnosticError {
	e.Addenda = append(e.Addenda, addenda...)
	return e
}

// Internal marks a diagnostic as an internal ("should never happen") failure,
// mirroring the teacher's InternalError helper.
func Internal(code Code, args ...interface{}) *DiagnosticError {
	d := New(code, args...)
	d.Internal = true
	return d
}
