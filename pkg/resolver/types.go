package resolver

import (
	"fmt"

	"github.com/gnana997/glot/pkg/comments"
	"github.com/gnana997/glot/pkg/source"
)

// ReasonKind classifies an unresolved key usage.
type ReasonKind int

const (
	// VariableKey is a key held in a variable static analysis cannot follow.
	VariableKey ReasonKind = iota
	// TemplateWithExpr is a template literal whose substitution is unknown.
	TemplateWithExpr
	// UnknownNamespace is a schema key whose call site has no namespace.
	UnknownNamespace
)

func (k ReasonKind) String() string {
	switch k {
	case VariableKey:
		return "variable_key"
	case TemplateWithExpr:
		return "template_with_expr"
	case UnknownNamespace:
		return "unknown_namespace"
	}
	return fmt.Sprintf("ReasonKind(%d)", int(k))
}

func (k ReasonKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Reason explains an unresolved usage.
type Reason struct {
	Kind ReasonKind `json:"kind"`
	// SchemaName and RawKey are set for UnknownNamespace.
	SchemaName string `json:"schema_name,omitempty"`
	RawKey     string `json:"raw_key,omitempty"`
}

func (r Reason) String() string {
	if r.Kind == UnknownNamespace {
		return fmt.Sprintf("unknown namespace for key %q from schema %q", r.RawKey, r.SchemaName)
	}
	return r.Kind.String()
}

// SchemaSource traces a key back to the schema function that declared it.
type SchemaSource struct {
	SchemaName string `json:"schema_name"`
	SchemaFile string `json:"schema_file"`
}

// ResolvedKeyUsage is one fully qualified key used at a call site.
type ResolvedKeyUsage struct {
	Key             string          `json:"key"`
	Context         source.Context  `json:"context"`
	SuppressedRules []comments.Rule `json:"suppressed_rules,omitempty"`
	FromSchema      *SchemaSource   `json:"from_schema,omitempty"`
	// Dynamic marks keys that are candidates of an expression rather than a
	// literal written at the call site.
	Dynamic bool `json:"dynamic,omitempty"`
}

// UnresolvedKeyUsage is a call whose keys could not be determined.
type UnresolvedKeyUsage struct {
	Context source.Context `json:"context"`
	Reason  Reason         `json:"reason"`
	// Hint suggests a declaration comment; empty when none can be inferred.
	Hint string `json:"hint,omitempty"`
	// Pattern is the inferred glob, empty when none can be inferred.
	Pattern string `json:"pattern,omitempty"`
}

// FileKeyUsages is the resolver's output for one file.
type FileKeyUsages struct {
	Path       string               `json:"path"`
	Resolved   []ResolvedKeyUsage   `json:"resolved"`
	Unresolved []UnresolvedKeyUsage `json:"unresolved"`
}
