// Package scope tracks which names denote a translation function.
package scope

import "fmt"

// SourceKind distinguishes how a translation function reached a call site.
type SourceKind int

const (
	// Direct is `const t = useTranslations("ns")`.
	Direct SourceKind = iota
	// FromProps is a component prop fed with a translator at its usage sites.
	FromProps
	// FromFnCall is a function parameter fed with a translator at its call sites.
	FromFnCall
	// Shadowed is a non-translation binding that hides an outer translator.
	Shadowed
)

func (k SourceKind) String() string {
	switch k {
	case Direct:
		return "direct"
	case FromProps:
		return "from_props"
	case FromFnCall:
		return "from_fn_call"
	case Shadowed:
		return "shadowed"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// TranslationSource is the provenance of a translation binding.
// The empty namespace means "no namespace".
type TranslationSource struct {
	Kind       SourceKind
	namespaces []string
}

// DirectSource binds a translator created by a hook call.
func DirectSource(namespace string) TranslationSource {
	return TranslationSource{Kind: Direct, namespaces: []string{namespace}}
}

// PropsSource binds a translator received as a component prop.
func PropsSource(namespaces []string) TranslationSource {
	return TranslationSource{Kind: FromProps, namespaces: append([]string(nil), namespaces...)}
}

// FnCallSource binds a translator received as a function argument.
func FnCallSource(namespaces []string) TranslationSource {
	return TranslationSource{Kind: FromFnCall, namespaces: append([]string(nil), namespaces...)}
}

// ShadowedSource marks a name that must not be tracked.
func ShadowedSource() TranslationSource {
	return TranslationSource{Kind: Shadowed}
}

// IsShadowed reports whether calls through this binding are ignored.
func (s TranslationSource) IsShadowed() bool { return s.Kind == Shadowed }

// IsIndirect reports whether the namespace set comes from usage sites.
func (s TranslationSource) IsIndirect() bool {
	return s.Kind == FromProps || s.Kind == FromFnCall
}

// Namespaces returns every namespace a call through this binding may use.
// Shadowed sources have none.
func (s TranslationSource) Namespaces() []string {
	if s.Kind == Shadowed {
		return nil
	}
	return append([]string(nil), s.namespaces...)
}

// PrimaryNamespace returns the namespace of a Direct source, "" otherwise.
func (s TranslationSource) PrimaryNamespace() string {
	if s.Kind == Direct && len(s.namespaces) > 0 {
		return s.namespaces[0]
	}
	return ""
}

func (s TranslationSource) String() string {
	if s.Kind == Shadowed {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s%q", s.Kind, s.namespaces)
}
