// Package valuesource models what a translation-key argument can evaluate to
// and resolves it to candidate keys.
//
// A Source tree is built once by the analyzer and never mutated. Candidate
// lists on the access variants come from literal tables in the registries.
package valuesource

import "fmt"

// MaxDepth caps recursion through Template and Conditional nodes.
const MaxDepth = 64

// Source is one node of the value algebra.
type Source interface {
	isSource()
}

// Literal is a known string.
type Literal struct {
	Value string
}

// Template is a template literal with exactly one substitution.
type Template struct {
	Prefix string
	Suffix string
	Inner  Source
}

// Conditional is `cond ? a : b` (and `a || b`).
type Conditional struct {
	Consequent Source
	Alternate  Source
}

// ObjectAccess is `OBJ[x]` or `OBJ.prop` over a registered key object.
type ObjectAccess struct {
	ObjectName string
	Candidates []string
}

// ArrayIteration reads one property of every element of a key array.
type ArrayIteration struct {
	ArrayName    string
	PropertyName string
	Candidates   []string
}

// StringArrayElement is any element of a registered string array.
type StringArrayElement struct {
	ArrayName  string
	Candidates []string
}

// Unresolvable is an expression static analysis cannot evaluate.
type Unresolvable struct {
	Reason *Reason
}

func (Literal) isSource()            {}
func (Template) isSource()           {}
func (Conditional) isSource()        {}
func (ObjectAccess) isSource()       {}
func (ArrayIteration) isSource()     {}
func (StringArrayElement) isSource() {}
func (Unresolvable) isSource()       {}

// ReasonKind classifies an Unresolvable.
type ReasonKind int

const (
	UnknownVariable ReasonKind = iota
	UnknownObject
	UnknownArray
	ComplexTemplate
	UnsupportedExpression
)

func (k ReasonKind) String() string {
	switch k {
	case UnknownVariable:
		return "unknown_variable"
	case UnknownObject:
		return "unknown_object"
	case UnknownArray:
		return "unknown_array"
	case ComplexTemplate:
		return "complex_template"
	case UnsupportedExpression:
		return "unsupported_expression"
	}
	return fmt.Sprintf("ReasonKind(%d)", int(k))
}

// Reason explains why a Source cannot be resolved. It is an ordinary
// outcome of analysis, returned as an error value.
type Reason struct {
	Kind ReasonKind
	// Name is the variable, object or array for the Unknown* kinds.
	Name string
	// ExprCount is the number of substitutions for ComplexTemplate.
	ExprCount int
	// ExprType names the syntax for UnsupportedExpression.
	ExprType string
}

func (r *Reason) Error() string {
	switch r.Kind {
	case UnknownVariable:
		return fmt.Sprintf("unknown variable %q", r.Name)
	case UnknownObject:
		return fmt.Sprintf("unknown object %q", r.Name)
	case UnknownArray:
		return fmt.Sprintf("unknown array %q", r.Name)
	case ComplexTemplate:
		return fmt.Sprintf("complex template with %d expressions", r.ExprCount)
	default:
		return "unsupported expression: " + r.ExprType
	}
}

// Unknown builds an Unresolvable for an unregistered variable, object or array.
func Unknown(kind ReasonKind, name string) Unresolvable {
	return Unresolvable{Reason: &Reason{Kind: kind, Name: name}}
}

// Complex builds an Unresolvable for a template with several substitutions.
func Complex(exprCount int) Unresolvable {
	return Unresolvable{Reason: &Reason{Kind: ComplexTemplate, ExprCount: exprCount}}
}

// Unsupported builds an Unresolvable for syntax outside the value grammar.
func Unsupported(exprType string) Unresolvable {
	return Unresolvable{Reason: &Reason{Kind: UnsupportedExpression, ExprType: exprType}}
}
