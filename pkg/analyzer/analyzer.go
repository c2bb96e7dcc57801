// Package analyzer walks one parsed file and records its translation calls,
// schema calls and hardcoded text. Keys are resolved later by the resolver
// package; the analyzer only describes what each call's argument can be.
package analyzer

import (
	"slices"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/glot/pkg/comments"
	"github.com/gnana997/glot/pkg/registry"
	"github.com/gnana997/glot/pkg/scope"
	"github.com/gnana997/glot/pkg/source"
	"github.com/gnana997/glot/pkg/syntax"
)

// Analyzer holds the merged registries. It is read-only once built and can
// be shared by concurrent workers.
type Analyzer struct {
	regs        *registry.Registries
	checked     map[string]bool
	ignoreTexts map[string]bool
}

// New creates an analyzer over fully merged registries.
func New(regs *registry.Registries, opts Options) *Analyzer {
	attrs := opts.CheckedAttributes
	if attrs == nil {
		attrs = DefaultCheckedAttributes
	}
	a := &Analyzer{
		regs:        regs,
		checked:     make(map[string]bool, len(attrs)),
		ignoreTexts: make(map[string]bool, len(opts.IgnoreTexts)),
	}
	for _, attr := range attrs {
		a.checked[attr] = true
	}
	for _, text := range opts.IgnoreTexts {
		a.ignoreTexts[strings.TrimSpace(text)] = true
	}
	return a
}

type fileAnalyzer struct {
	*Analyzer
	path     string
	src      []byte
	lines    *source.LineIndex
	comments *comments.FileComments
	tracker  *scope.Tracker
	values   *valueAnalyzer
	jsx      jsxState
	stmts    []stmtContext
	result   *Result
}

// Analyze walks one file. fc may be nil when the file has no directives.
func (a *Analyzer) Analyze(path string, root *ts.Node, src []byte, fc *comments.FileComments) *Result {
	if fc == nil {
		fc = &comments.FileComments{}
	}
	fa := &fileAnalyzer{
		Analyzer: a,
		path:     path,
		src:      src,
		lines:    source.NewLineIndex(src),
		comments: fc,
		tracker:  scope.NewTracker(),
		values:   newValueAnalyzer(path, src, a.regs),
		result:   &Result{Path: path},
	}
	fa.visit(root)
	return fa.result
}

func (fa *fileAnalyzer) visit(node *ts.Node) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "import_statement", "comment":
		return
	case "export_statement":
		fa.visitExport(node)
		return
	case "lexical_declaration", "variable_declaration":
		fa.visitDeclaration(node)
		return
	case "return_statement":
		fa.withStmt(syntax.Line(node), stmtReturn, func() { fa.visitChildren(node) })
		return
	case "call_expression":
		fa.visitCall(node)
		return
	case "jsx_element":
		fa.visitJSXElement(node)
		return
	case "jsx_opening_element", "jsx_self_closing_element":
		fa.visitJSXAttributes(node)
		return
	case "jsx_attribute":
		fa.visitJSXAttribute(node)
		return
	case "jsx_expression":
		fa.visitJSXExpression(node)
		return
	case "jsx_text":
		fa.checkJSXText(node)
		return
	case "function_declaration", "generator_function_declaration":
		name := syntax.Text(node.ChildByFieldName("name"), fa.src)
		fa.shadowIfActive(name)
		fa.visitFunction(node, name)
		return
	}
	if syntax.IsFunction(node) {
		fa.visitFunction(node, "")
		return
	}
	fa.visitChildren(node)
}

func (fa *fileAnalyzer) visitChildren(node *ts.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		fa.visit(node.Child(i))
	}
}

// visitExport names anonymous default exports "default" so their props and
// parameters match registry entries recorded through default imports.
func (fa *fileAnalyzer) visitExport(node *ts.Node) {
	value := syntax.Unwrap(node.ChildByFieldName("value"))
	if value != nil && syntax.IsFunction(value) {
		name := syntax.Text(value.ChildByFieldName("name"), fa.src)
		if name == "" {
			name = "default"
		}
		fa.visitFunction(value, name)
		return
	}
	if decl := node.ChildByFieldName("declaration"); decl != nil && syntax.IsFunction(decl) && decl.ChildByFieldName("name") == nil {
		fa.visitFunction(decl, "default")
		return
	}
	fa.visitChildren(node)
}

func (fa *fileAnalyzer) visitDeclaration(node *ts.Node) {
	for _, decl := range syntax.NamedChildren(node) {
		if decl.Kind() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		value := decl.ChildByFieldName("value")
		if nameNode == nil {
			continue
		}
		if nameNode.Kind() != "identifier" {
			for _, n := range syntax.BindingNames(nameNode, fa.src) {
				fa.shadowIfActive(n)
			}
			fa.visitInit(value)
			continue
		}
		name := nameNode.Utf8Text(fa.src)
		if value == nil {
			fa.shadowIfActive(name)
			continue
		}

		if fn := syntax.Unwrap(value); syntax.IsFunction(fn) {
			fa.shadowIfActive(name)
			fa.visitFunction(fn, name)
			continue
		}
		if ns, ok := syntax.HookCall(value, fa.src); ok {
			fa.tracker.Bind(name, scope.DirectSource(ns))
		} else {
			fa.shadowIfActive(name)
		}
		if sub := syntax.Unwrap(value); sub.Kind() == "subscript_expression" {
			if obj := syntax.Unwrap(sub.ChildByFieldName("object")); obj != nil && obj.Kind() == "identifier" {
				fa.values.registerObjectAccess(name, obj.Utf8Text(fa.src))
			}
		}
		fa.visitInit(value)
	}
}

// shadowIfActive marks a non-translator rebinding of a tracked name.
func (fa *fileAnalyzer) shadowIfActive(name string) {
	if _, active := fa.tracker.Active(name); active {
		fa.tracker.Bind(name, scope.ShadowedSource())
	}
}

func (fa *fileAnalyzer) visitInit(value *ts.Node) {
	if value == nil {
		return
	}
	fa.withStmt(syntax.Line(value), stmtVarInit, func() { fa.visit(value) })
}

// visitFunction opens a scope for fn. A named function may receive a
// translator through its props or positional parameters; every other
// parameter shadows outer bindings of the same name.
func (fa *fileAnalyzer) visitFunction(fn *ts.Node, name string) {
	fa.tracker.Enter()
	defer fa.tracker.Exit()

	params := syntax.Params(fn)
	if name != "" {
		if len(params) > 0 {
			fa.bindPropsParam(name, params[0])
		}
		if !fa.isLocalSchema(name) {
			fa.bindFnCallParams(name, params)
		}
	}
	var names []string
	for _, p := range params {
		names = append(names, syntax.BindingNames(p, fa.src)...)
	}
	fa.tracker.Shadow(names...)

	body := fn.ChildByFieldName("body")
	for _, p := range params {
		fa.visit(p)
	}
	if body == nil {
		return
	}
	if fn.Kind() == "arrow_function" && body.Kind() != "statement_block" {
		fa.withStmt(syntax.Line(body), stmtArrowExpr, func() { fa.visit(body) })
		return
	}
	fa.visit(body)
}

// bindPropsParam binds destructured props that a registered
// Translation-Prop names: `{ t }`, `{ t: translate }`, `{ t = fallback }`.
func (fa *fileAnalyzer) bindPropsParam(component string, param *ts.Node) {
	pattern := syntax.ParamPattern(param)
	if pattern.Kind() != "object_pattern" {
		return
	}
	for _, prop := range syntax.NamedChildren(pattern) {
		var propName, binding string
		switch prop.Kind() {
		case "shorthand_property_identifier_pattern":
			propName = prop.Utf8Text(fa.src)
			binding = propName
		case "object_assignment_pattern":
			left := prop.ChildByFieldName("left")
			if left == nil || left.Kind() != "shorthand_property_identifier_pattern" {
				continue
			}
			propName = left.Utf8Text(fa.src)
			binding = propName
		case "pair_pattern":
			key := prop.ChildByFieldName("key")
			value := prop.ChildByFieldName("value")
			if key == nil || key.Kind() != "property_identifier" || value == nil {
				continue
			}
			if value.Kind() == "assignment_pattern" {
				value = value.ChildByFieldName("left")
			}
			if value == nil || value.Kind() != "identifier" {
				continue
			}
			propName = key.Utf8Text(fa.src)
			binding = value.Utf8Text(fa.src)
		default:
			continue
		}
		if p, ok := fa.regs.TranslationProps[registry.PropKey(component, propName)]; ok {
			fa.tracker.Bind(binding, scope.PropsSource(p.Namespaces))
		}
	}
}

// isLocalSchema reports whether name is a schema function declared in this
// file. Its keys are expanded at each schema call site, so the translator it
// receives is not tracked inside the body.
func (fa *fileAnalyzer) isLocalSchema(name string) bool {
	sf, ok := fa.regs.Schemas[name]
	return ok && sf.FilePath == fa.path
}

// bindFnCallParams binds positional parameters some caller passes a
// translator to. The file's default export also answers to "default".
func (fa *fileAnalyzer) bindFnCallParams(fnName string, params []*ts.Node) {
	isDefault := fa.regs.DefaultExports[fa.path] == fnName
	for idx, p := range params {
		ident, ok := syntax.ParamIdentifier(p, fa.src)
		if !ok {
			continue
		}
		call, ok := fa.regs.TranslationFnCalls[registry.FnCallKey(fa.path, fnName, idx)]
		if !ok && isDefault {
			call, ok = fa.regs.TranslationFnCalls[registry.FnCallKey(fa.path, "default", idx)]
		}
		if ok {
			fa.tracker.Bind(ident, scope.FnCallSource(call.Namespaces))
		}
	}
}

func (fa *fileAnalyzer) visitCall(call *ts.Node) {
	callee := syntax.Callee(call)
	args := syntax.Args(call)

	switch {
	case callee == nil:
	case callee.Kind() == "identifier":
		name := callee.Utf8Text(fa.src)
		if src, ok := fa.tracker.Active(name); ok && len(args) > 0 {
			fa.recordCall(call, src, args[0], CallDirect, "")
		}
		if _, ok := fa.regs.Schemas[name]; ok && len(args) > 0 {
			fa.checkSchemaCall(call, name, args[0])
		}
	case callee.Kind() == "member_expression":
		obj := syntax.Unwrap(callee.ChildByFieldName("object"))
		prop := callee.ChildByFieldName("property")
		if obj == nil || prop == nil || obj.Kind() != "identifier" {
			break
		}
		method := prop.Utf8Text(fa.src)
		if slices.Contains(TranslationMethods, method) && len(args) > 0 {
			if src, ok := fa.tracker.Active(obj.Utf8Text(fa.src)); ok {
				fa.recordCall(call, src, args[0], CallMethod, method)
			}
		}
		if slices.Contains(IteratorMethods, method) && len(args) > 0 {
			if param, ok := callbackParam(args[0], fa.src); ok {
				fa.values.enterScope()
				fa.values.registerIterator(param, obj.Utf8Text(fa.src))
				defer fa.values.exitScope()
			}
		}
	}
	fa.visitChildren(call)
}

// callbackParam returns the first parameter of an arrow callback.
func callbackParam(arg *ts.Node, src []byte) (string, bool) {
	fn := syntax.Unwrap(arg)
	if fn.Kind() != "arrow_function" {
		return "", false
	}
	params := syntax.Params(fn)
	if len(params) == 0 {
		return "", false
	}
	return syntax.ParamIdentifier(params[0], src)
}

func (fa *fileAnalyzer) recordCall(call *ts.Node, src scope.TranslationSource, arg *ts.Node, kind CallKind, method string) {
	fa.result.Calls = append(fa.result.Calls, RawCall{
		Context:  fa.context(syntax.Line(call), syntax.Column(call)),
		Source:   src,
		Argument: fa.values.analyze(arg),
		Kind:     kind,
		Method:   method,
	})
}

// checkSchemaCall records `schema(t)`. A translator argument must be live;
// any other argument leaves the namespace unknown.
func (fa *fileAnalyzer) checkSchemaCall(call *ts.Node, name string, arg *ts.Node) {
	namespace := ""
	if a := syntax.Unwrap(arg); a.Kind() == "identifier" {
		src, ok := fa.tracker.Active(a.Utf8Text(fa.src))
		if !ok {
			return
		}
		namespace = src.PrimaryNamespace()
	}
	fa.result.SchemaCalls = append(fa.result.SchemaCalls, SchemaCall{
		Name:      name,
		Namespace: namespace,
		Line:      syntax.Line(call),
		Col:       syntax.Column(call),
	})
}

func (fa *fileAnalyzer) context(line, col int) source.Context {
	text := fa.lines.Line(line)
	return source.NewContext(fa.path, line, col, text, fa.commentStyle(text, line))
}
