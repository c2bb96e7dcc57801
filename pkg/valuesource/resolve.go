package valuesource

import "fmt"

// Resolve flattens src into every key it can produce. The result is
// deduplicated and keeps first-seen order. A Conditional resolves only if
// both branches do; the consequent's reason is reported first.
func Resolve(src Source) ([]string, error) {
	keys, err := resolve(src, 0)
	if err != nil {
		return nil, err
	}
	return dedupe(keys), nil
}

func resolve(src Source, depth int) ([]string, error) {
	if depth > MaxDepth {
		return nil, &Reason{Kind: UnsupportedExpression, ExprType: "nesting too deep"}
	}

	switch s := src.(type) {
	case Literal:
		return []string{s.Value}, nil
	case Template:
		inner, err := resolve(s.Inner, depth+1)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(inner))
		for i, k := range inner {
			out[i] = s.Prefix + k + s.Suffix
		}
		return out, nil
	case Conditional:
		cons, err := resolve(s.Consequent, depth+1)
		if err != nil {
			return nil, err
		}
		alt, err := resolve(s.Alternate, depth+1)
		if err != nil {
			return nil, err
		}
		return append(cons, alt...), nil
	case ObjectAccess:
		return append([]string(nil), s.Candidates...), nil
	case ArrayIteration:
		return append([]string(nil), s.Candidates...), nil
	case StringArrayElement:
		return append([]string(nil), s.Candidates...), nil
	case Unresolvable:
		if s.Reason == nil {
			return nil, &Reason{Kind: UnsupportedExpression, ExprType: "unknown"}
		}
		return nil, s.Reason
	case nil:
		return nil, &Reason{Kind: UnsupportedExpression, ExprType: "missing argument"}
	default:
		return nil, &Reason{Kind: UnsupportedExpression, ExprType: fmt.Sprintf("%T", src)}
	}
}

// StaticKeys returns the keys of src when they are known exactly: a Literal,
// or a Conditional whose every leaf is a Literal. Anything touching a
// template or a registry lookup is dynamic even if it resolves.
func StaticKeys(src Source) ([]string, bool) {
	keys, ok := staticKeys(src, 0)
	if !ok {
		return nil, false
	}
	return dedupe(keys), true
}

func staticKeys(src Source, depth int) ([]string, bool) {
	if depth > MaxDepth {
		return nil, false
	}
	switch s := src.(type) {
	case Literal:
		return []string{s.Value}, true
	case Conditional:
		cons, ok := staticKeys(s.Consequent, depth+1)
		if !ok {
			return nil, false
		}
		alt, ok := staticKeys(s.Alternate, depth+1)
		if !ok {
			return nil, false
		}
		return append(cons, alt...), true
	}
	return nil, false
}

// Describe returns a short human description of src.
func Describe(src Source) string {
	switch s := src.(type) {
	case Literal:
		return fmt.Sprintf("literal %q", s.Value)
	case Template:
		return "template"
	case Conditional:
		return "conditional"
	case ObjectAccess:
		return fmt.Sprintf("object %q", s.ObjectName)
	case ArrayIteration:
		return fmt.Sprintf("array %q", s.ArrayName+"."+s.PropertyName)
	case StringArrayElement:
		return fmt.Sprintf("array %q", s.ArrayName)
	case Unresolvable:
		if s.Reason != nil {
			return s.Reason.Error()
		}
	}
	return "unknown"
}

// HasTemplate reports whether src is a Template or a Conditional with a
// Template branch.
func HasTemplate(src Source) bool {
	switch s := src.(type) {
	case Template:
		return true
	case Conditional:
		_, a := s.Consequent.(Template)
		_, b := s.Alternate.(Template)
		return a || b
	}
	return false
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
