// Package syntax contains tree-sitter node helpers for the TS/JS grammars.
package syntax

import (
	"strings"
	"unicode"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// TranslationHooks are the factory calls that bind a translation function.
var TranslationHooks = []string{"useTranslations", "getTranslations"}

// IsTranslationHook reports whether name is a translation factory.
func IsTranslationHook(name string) bool {
	for _, h := range TranslationHooks {
		if h == name {
			return true
		}
	}
	return false
}

// Line returns the 1-based start line of node.
func Line(node *ts.Node) int {
	return int(node.StartPosition().Row) + 1
}

// Column returns the 1-based start column of node.
func Column(node *ts.Node) int {
	return int(node.StartPosition().Column) + 1
}

// EndLine returns the 1-based end line of node.
func EndLine(node *ts.Node) int {
	return int(node.EndPosition().Row) + 1
}

// Text returns the source text of node, or "" for nil.
func Text(node *ts.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return node.Utf8Text(src)
}

// NamedChildren returns the named children of node in order.
func NamedChildren(node *ts.Node) []*ts.Node {
	if node == nil {
		return nil
	}
	n := node.NamedChildCount()
	out := make([]*ts.Node, 0, n)
	for i := uint(0); i < n; i++ {
		if c := node.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Unwrap strips parentheses, `as`, `satisfies` and non-null wrappers.
// `x as const` is covered by the as_expression case.
func Unwrap(node *ts.Node) *ts.Node {
	for node != nil {
		switch node.Kind() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression", "type_assertion":
			inner := firstExpression(node)
			if inner == nil {
				return node
			}
			node = inner
		default:
			return node
		}
	}
	return node
}

// firstExpression returns the first named child that is not a type.
func firstExpression(node *ts.Node) *ts.Node {
	for _, c := range NamedChildren(node) {
		if c.Kind() == "comment" || strings.HasSuffix(c.Kind(), "type") || c.Kind() == "type_arguments" {
			continue
		}
		return c
	}
	return nil
}

// StringValue decodes a string literal.
func StringValue(node *ts.Node, src []byte) (string, bool) {
	node = Unwrap(node)
	if node == nil || node.Kind() != "string" {
		return "", false
	}
	text := node.Utf8Text(src)
	if len(text) < 2 {
		return "", true
	}
	return unescape(text[1 : len(text)-1]), true
}

// TemplateParts splits a template string into its static text chunks and
// substitution expressions. len(quasis) == len(exprs)+1.
func TemplateParts(node *ts.Node, src []byte) (quasis []string, exprs []*ts.Node, ok bool) {
	node = Unwrap(node)
	if node == nil || node.Kind() != "template_string" {
		return nil, nil, false
	}
	start := node.StartByte() + 1
	end := node.EndByte() - 1
	cursor := start
	for _, c := range NamedChildren(node) {
		if c.Kind() != "template_substitution" {
			continue
		}
		quasis = append(quasis, unescape(string(src[cursor:c.StartByte()])))
		exprs = append(exprs, firstExpression(c))
		cursor = c.EndByte()
	}
	if cursor > end {
		cursor = end
	}
	quasis = append(quasis, unescape(string(src[cursor:end])))
	return quasis, exprs, true
}

// StaticString returns the value of a string literal or a template without
// substitutions.
func StaticString(node *ts.Node, src []byte) (string, bool) {
	if s, ok := StringValue(node, src); ok {
		return s, true
	}
	quasis, exprs, ok := TemplateParts(node, src)
	if !ok || len(exprs) > 0 {
		return "", false
	}
	return quasis[0], true
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\n':
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// IsFunction reports whether node opens a function scope.
func IsFunction(node *ts.Node) bool {
	switch node.Kind() {
	case "function_declaration", "function_expression", "function", "arrow_function",
		"generator_function_declaration", "generator_function", "method_definition":
		return true
	}
	return false
}

// Params returns the parameter nodes of a function-like node. A bare arrow
// parameter (`x => …`) is returned as its identifier.
func Params(fn *ts.Node) []*ts.Node {
	if p := fn.ChildByFieldName("parameter"); p != nil {
		return []*ts.Node{p}
	}
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []*ts.Node
	for _, c := range NamedChildren(params) {
		if c.Kind() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ParamPattern returns the binding pattern of a parameter, looking through
// TS parameter wrappers and JS default values.
func ParamPattern(param *ts.Node) *ts.Node {
	switch param.Kind() {
	case "required_parameter", "optional_parameter":
		if p := param.ChildByFieldName("pattern"); p != nil {
			return p
		}
	}
	return param
}

// ParamTypeName returns the annotated type of a parameter without the colon.
func ParamTypeName(param *ts.Node, src []byte) string {
	t := param.ChildByFieldName("type")
	if t == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(t.Utf8Text(src), ":"))
}

// ParamIdentifier returns the plain identifier a parameter binds, if any.
// `x`, `x: T`, `x = d` and `x?: T` all bind x.
func ParamIdentifier(param *ts.Node, src []byte) (string, bool) {
	p := ParamPattern(param)
	if p.Kind() == "assignment_pattern" {
		p = p.ChildByFieldName("left")
	}
	if p == nil || p.Kind() != "identifier" {
		return "", false
	}
	return p.Utf8Text(src), true
}

// BindingNames lists every name a destructuring pattern binds.
func BindingNames(pattern *ts.Node, src []byte) []string {
	var names []string
	collectBindingNames(pattern, src, &names)
	return names
}

func collectBindingNames(node *ts.Node, src []byte, out *[]string) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		*out = append(*out, node.Utf8Text(src))
	case "required_parameter", "optional_parameter":
		collectBindingNames(node.ChildByFieldName("pattern"), src, out)
	case "pair_pattern":
		collectBindingNames(node.ChildByFieldName("value"), src, out)
	case "assignment_pattern", "object_assignment_pattern":
		collectBindingNames(node.ChildByFieldName("left"), src, out)
	case "object_pattern", "array_pattern", "rest_pattern":
		for _, c := range NamedChildren(node) {
			collectBindingNames(c, src, out)
		}
	}
}

// Callee returns the function node of a call expression.
func Callee(call *ts.Node) *ts.Node {
	return call.ChildByFieldName("function")
}

// CalleeIdent returns the callee name when it is a plain identifier.
func CalleeIdent(call *ts.Node, src []byte) (string, bool) {
	fn := Callee(call)
	if fn == nil || fn.Kind() != "identifier" {
		return "", false
	}
	return fn.Utf8Text(src), true
}

// Args returns the argument expressions of a call, skipping comments.
func Args(call *ts.Node) []*ts.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Kind() != "arguments" {
		return nil
	}
	var out []*ts.Node
	for _, c := range NamedChildren(args) {
		if c.Kind() != "comment" {
			out = append(out, c)
		}
	}
	return out
}

// HookCall matches `[await] useTranslations("ns")` and returns the namespace,
// "" when the argument is absent or not a string literal.
func HookCall(node *ts.Node, src []byte) (string, bool) {
	node = Unwrap(node)
	if node != nil && node.Kind() == "await_expression" {
		node = Unwrap(firstExpression(node))
	}
	if node == nil || node.Kind() != "call_expression" {
		return "", false
	}
	name, ok := CalleeIdent(node, src)
	if !ok || !IsTranslationHook(name) {
		return "", false
	}
	args := Args(node)
	if len(args) == 0 {
		return "", true
	}
	ns, _ := StringValue(args[0], src)
	return ns, true
}

// IsComponentName reports whether a JSX tag names a component.
func IsComponentName(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper(rune(name[0]))
}

// JSXTagName returns the tag name of an opening or self-closing element.
func JSXTagName(node *ts.Node, src []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Utf8Text(src)
	}
	return ""
}

// JSXAttributeName returns an attribute's name; for a namespaced name such as
// `xlink:href` it returns "xlink-href".
func JSXAttributeName(attr *ts.Node, src []byte) string {
	for _, c := range NamedChildren(attr) {
		switch c.Kind() {
		case "property_identifier":
			return c.Utf8Text(src)
		case "jsx_namespace_name":
			parts := NamedChildren(c)
			if len(parts) == 2 {
				return parts[0].Utf8Text(src) + "-" + parts[1].Utf8Text(src)
			}
			return strings.ReplaceAll(c.Utf8Text(src), ":", "-")
		}
	}
	return ""
}

// JSXAttributeValue returns the value node of an attribute (string or
// jsx_expression), or nil for a boolean attribute.
func JSXAttributeValue(attr *ts.Node) *ts.Node {
	children := NamedChildren(attr)
	if len(children) < 2 {
		return nil
	}
	return children[len(children)-1]
}

// JSXExpressionInner returns the expression inside `{…}`, or nil for `{}` and
// comment-only containers.
func JSXExpressionInner(node *ts.Node) *ts.Node {
	for _, c := range NamedChildren(node) {
		if c.Kind() != "comment" {
			return c
		}
	}
	return nil
}
