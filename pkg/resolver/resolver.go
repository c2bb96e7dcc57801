// Package resolver turns analyzed translation and schema calls into
// resolved key usages and unresolved-key diagnostics.
package resolver

import (
	"fmt"
	"strings"

	"github.com/gnana997/glot/pkg/analyzer"
	"github.com/gnana997/glot/pkg/comments"
	"github.com/gnana997/glot/pkg/schema"
	"github.com/gnana997/glot/pkg/scope"
	"github.com/gnana997/glot/pkg/source"
	vs "github.com/gnana997/glot/pkg/valuesource"
)

// maxPatternWildcards bounds the wildcards in an inferred pattern.
const maxPatternWildcards = 2

// Resolver is safe for concurrent use once built.
type Resolver struct {
	schemas *schema.Cache
	keys    map[string]struct{}
}

// New creates a resolver. schemas must already be warmed; keys is the
// primary locale's key set and is only used to expand declaration globs.
func New(schemas *schema.Cache, keys map[string]struct{}) *Resolver {
	if keys == nil {
		keys = map[string]struct{}{}
	}
	return &Resolver{schemas: schemas, keys: keys}
}

// ResolveFile resolves every call the analyzer found in one file.
func (r *Resolver) ResolveFile(res *analyzer.Result, fc *comments.FileComments) FileKeyUsages {
	if fc == nil {
		fc = &comments.FileComments{}
	}
	out := FileKeyUsages{Path: res.Path}
	for _, call := range res.Calls {
		r.resolveCall(call, fc, &out)
	}
	for _, call := range res.SchemaCalls {
		r.resolveSchemaCall(res.Path, call, fc, &out)
	}
	return out
}

func (r *Resolver) resolveCall(call analyzer.RawCall, fc *comments.FileComments, out *FileKeyUsages) {
	ctx := call.Context
	namespaces := call.Source.Namespaces()
	suppressed := fc.Suppressions.RulesAt(ctx.Line)

	emit := func(keys []string, dynamic bool) {
		for _, key := range keys {
			for _, ns := range namespaces {
				out.Resolved = append(out.Resolved, ResolvedKeyUsage{
					Key:             join(ns, key),
					Context:         ctx,
					SuppressedRules: suppressed,
					Dynamic:         dynamic,
				})
			}
		}
	}

	if keys, ok := vs.StaticKeys(call.Argument); ok {
		emit(keys, false)
		return
	}
	if keys, err := vs.Resolve(call.Argument); err == nil {
		emit(keys, true)
		return
	}
	// Method calls are validated elsewhere and never warn.
	if call.Kind == analyzer.CallMethod {
		return
	}

	if decl, ok := fc.Declarations.Lookup(ctx.Line); ok {
		for _, key := range decl.Expand(namespaces, r.keys) {
			out.Resolved = append(out.Resolved, ResolvedKeyUsage{
				Key:             key,
				Context:         ctx,
				SuppressedRules: suppressed,
				Dynamic:         true,
			})
		}
		return
	}
	out.Unresolved = append(out.Unresolved, diagnose(call.Argument, call.Source, ctx))
}

func diagnose(arg vs.Source, src scope.TranslationSource, ctx source.Context) UnresolvedKeyUsage {
	u := UnresolvedKeyUsage{Context: ctx, Reason: Reason{Kind: VariableKey}}
	switch a := arg.(type) {
	case vs.Template:
		u.Reason.Kind = TemplateWithExpr
		if p, ok := InferPattern(a.Prefix, a.Suffix, src); ok {
			u.Pattern = p
			u.Hint = Hint(p, ctx.CommentStyle)
		}
	case vs.Conditional:
		if isTemplate(a.Consequent) || isTemplate(a.Alternate) {
			u.Reason.Kind = TemplateWithExpr
		}
	}
	return u
}

func isTemplate(s vs.Source) bool {
	_, ok := s.(vs.Template)
	return ok
}

// InferPattern builds the declaration glob for a template `prefix${x}suffix`.
// Indirect sources carry several namespaces, so the pattern is relative.
func InferPattern(prefix, suffix string, src scope.TranslationSource) (string, bool) {
	pattern := prefix + "*" + suffix
	if src.IsIndirect() {
		if pattern == "*" {
			return "", false
		}
		pattern = "." + pattern
	} else if ns := src.PrimaryNamespace(); ns != "" {
		pattern = ns + "." + pattern
	}
	if !validPattern(pattern) {
		return "", false
	}
	return pattern, true
}

func validPattern(pattern string) bool {
	segments := strings.Split(pattern, ".")
	if segments[0] == "*" && len(segments) > 1 {
		return false
	}
	allWild := true
	for _, s := range segments {
		if s != "*" {
			allWild = false
			break
		}
	}
	if allWild {
		return false
	}
	return strings.Count(pattern, "*") <= maxPatternWildcards
}

// Hint formats the suggested declaration comment for pattern.
func Hint(pattern string, style source.CommentStyle) string {
	directive := fmt.Sprintf(`glot-message-keys "%s"`, pattern)
	return fmt.Sprintf("add `%s` to declare expected keys", style.Format(directive))
}

// resolveSchemaCall expands a schema at its call site. Schema calls carry
// no source line and always take a JS comment.
func (r *Resolver) resolveSchemaCall(path string, call analyzer.SchemaCall, fc *comments.FileComments, out *FileKeyUsages) {
	ctx := source.NewContext(path, call.Line, call.Col, "", source.StyleJS)
	suppressed := fc.Suppressions.RulesAt(call.Line)

	for _, key := range r.schemas.Expand(call.Name, call.Namespace).Keys {
		if !key.HasNamespace {
			out.Unresolved = append(out.Unresolved, UnresolvedKeyUsage{
				Context: ctx,
				Reason:  Reason{Kind: UnknownNamespace, SchemaName: key.FromSchema, RawKey: key.RawKey},
			})
			continue
		}
		out.Resolved = append(out.Resolved, ResolvedKeyUsage{
			Key:             key.FullKey,
			Context:         ctx,
			SuppressedRules: suppressed,
			FromSchema:      &SchemaSource{SchemaName: key.FromSchema, SchemaFile: key.SchemaFile},
		})
	}
}

func join(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + "." + key
}
