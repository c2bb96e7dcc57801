package registry

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/glot/pkg/scope"
	"github.com/gnana997/glot/pkg/syntax"
)

// Collector gathers registry entries from one file at a time. A Collector
// is not safe for concurrent use; create one per worker.
type Collector struct {
	exists func(string) bool
}

// NewCollector returns a collector that resolves relative imports with
// exists. A nil exists checks the filesystem.
func NewCollector(exists func(string) bool) *Collector {
	if exists == nil {
		exists = fileExists
	}
	return &Collector{exists: exists}
}

// schemaContext is the schema function whose body is being walked.
type schemaContext struct {
	tParam      string
	keys        []string
	nestedCalls []string
	shadowDepth int
}

type fileCollector struct {
	path    string
	src     []byte
	exists  func(string) bool
	tracker *scope.Tracker
	result  *FileResult
	schema  *schemaContext

	propIndex   map[string]int
	fnCallIndex map[string]int
}

// Collect walks one parsed file. The returned result is private to the
// caller until it is handed to Merge.
func (c *Collector) Collect(path string, root *ts.Node, src []byte) *FileResult {
	fc := &fileCollector{
		path:        path,
		src:         src,
		exists:      c.exists,
		tracker:     scope.NewTracker(),
		result:      &FileResult{Path: path},
		propIndex:   map[string]int{},
		fnCallIndex: map[string]int{},
	}
	// Imports first so call sites earlier in the file than an import still
	// resolve their callee.
	fc.collectImports(root)
	fc.visit(root)
	return fc.result
}

func (fc *fileCollector) collectImports(root *ts.Node) {
	for _, stmt := range syntax.NamedChildren(root) {
		if stmt.Kind() != "import_statement" {
			continue
		}
		module, ok := syntax.StringValue(stmt.ChildByFieldName("source"), fc.src)
		if !ok {
			continue
		}
		resolved, _ := ResolveImportPath(fc.path, module, fc.exists)

		for _, clause := range syntax.NamedChildren(stmt) {
			if clause.Kind() != "import_clause" {
				continue
			}
			for _, part := range syntax.NamedChildren(clause) {
				switch part.Kind() {
				case "identifier":
					fc.addImport(part.Utf8Text(fc.src), "default", module, resolved)
				case "namespace_import":
					for _, id := range syntax.NamedChildren(part) {
						if id.Kind() == "identifier" {
							fc.addImport(id.Utf8Text(fc.src), "*", module, resolved)
						}
					}
				case "named_imports":
					for _, spec := range syntax.NamedChildren(part) {
						if spec.Kind() != "import_specifier" {
							continue
						}
						name := importName(spec.ChildByFieldName("name"), fc.src)
						local := name
						if alias := spec.ChildByFieldName("alias"); alias != nil {
							local = alias.Utf8Text(fc.src)
						}
						fc.addImport(local, name, module, resolved)
					}
				}
			}
		}
	}
}

// importName handles both `{ a }` and `{ "a-b" as c }`.
func importName(node *ts.Node, src []byte) string {
	if s, ok := syntax.StringValue(node, src); ok {
		return s
	}
	return syntax.Text(node, src)
}

func (fc *fileCollector) addImport(local, imported, module, resolved string) {
	fc.result.Imports = append(fc.result.Imports, Import{
		Local:    local,
		Imported: imported,
		Module:   module,
		Path:     resolved,
	})
}

func (fc *fileCollector) visit(node *ts.Node) {
	switch node.Kind() {
	case "import_statement":
		return
	case "export_statement":
		fc.visitExport(node)
		return
	case "lexical_declaration", "variable_declaration":
		fc.visitDeclaration(node, false)
		return
	case "call_expression":
		fc.checkSchemaCall(node)
		fc.checkFnCallArgs(node)
	case "jsx_opening_element", "jsx_self_closing_element":
		fc.checkTranslationProps(node)
	}

	if syntax.IsFunction(node) {
		fc.visitFunction(node)
		return
	}
	fc.visitChildren(node)
}

func (fc *fileCollector) visitChildren(node *ts.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		fc.visit(node.Child(i))
	}
}

func (fc *fileCollector) visitExport(node *ts.Node) {
	isDefault := false
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c.Kind() == "default" {
			isDefault = true
		}
	}

	decl := node.ChildByFieldName("declaration")
	if isDefault {
		fc.recordDefaultExport(decl, node.ChildByFieldName("value"))
	}
	if decl != nil && (decl.Kind() == "lexical_declaration" || decl.Kind() == "variable_declaration") {
		fc.visitDeclaration(decl, true)
		return
	}
	fc.visitChildren(node)
}

func (fc *fileCollector) recordDefaultExport(decl, value *ts.Node) {
	target := decl
	if target == nil {
		target = syntax.Unwrap(value)
	}
	if target == nil {
		return
	}
	switch target.Kind() {
	case "identifier":
		fc.result.DefaultExport = target.Utf8Text(fc.src)
	case "function_declaration", "generator_function_declaration", "class_declaration",
		"function_expression", "function", "generator_function", "class":
		if name := target.ChildByFieldName("name"); name != nil {
			fc.result.DefaultExport = name.Utf8Text(fc.src)
		} else {
			fc.result.DefaultExport = "default"
		}
	case "arrow_function":
		fc.result.DefaultExport = "default"
	}
}

func (fc *fileCollector) visitDeclaration(node *ts.Node, exported bool) {
	for _, decl := range syntax.NamedChildren(node) {
		if decl.Kind() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		value := decl.ChildByFieldName("value")
		if nameNode == nil || value == nil {
			if value != nil {
				fc.visit(value)
			}
			continue
		}
		if nameNode.Kind() != "identifier" {
			fc.visit(value)
			continue
		}
		name := nameNode.Utf8Text(fc.src)

		if ns, ok := syntax.HookCall(value, fc.src); ok {
			fc.tracker.Bind(name, scope.DirectSource(ns))
		} else if _, active := fc.tracker.Active(name); active {
			fc.tracker.Bind(name, scope.ShadowedSource())
		}

		fc.checkLiteral(name, value, exported)

		if exported && value.Kind() == "arrow_function" && fc.schema == nil {
			if fc.collectSchema(name, value) {
				continue
			}
		}
		fc.visit(value)
	}
}

func (fc *fileCollector) checkLiteral(name string, value *ts.Node, exported bool) {
	moduleLevel := fc.tracker.AtModuleLevel()
	inner := syntax.Unwrap(value)
	switch inner.Kind() {
	case "object":
		if values, ok := objectStringValues(inner, fc.src); ok {
			fc.result.KeyObjects = append(fc.result.KeyObjects, KeyObject{
				Name: name, FilePath: fc.path, IsExported: exported, IsModuleLevel: moduleLevel, Candidates: values,
			})
		}
	case "array":
		if values, ok := stringArrayValues(inner, fc.src); ok {
			fc.result.StringArrays = append(fc.result.StringArrays, StringArray{
				Name: name, FilePath: fc.path, IsExported: exported, IsModuleLevel: moduleLevel, Values: values,
			})
		} else if props, ok := arrayPropertyValues(inner, fc.src); ok {
			fc.result.KeyArrays = append(fc.result.KeyArrays, KeyArray{
				Name: name, FilePath: fc.path, IsExported: exported, IsModuleLevel: moduleLevel, PropertyValues: props,
			})
		}
	}
}

func (fc *fileCollector) visitFunction(node *ts.Node) {
	fc.tracker.Enter()
	defer fc.tracker.Exit()

	var names []string
	for _, p := range syntax.Params(node) {
		names = append(names, syntax.BindingNames(p, fc.src)...)
	}
	fc.tracker.Shadow(names...)

	shadowsT := false
	if fc.schema != nil {
		for _, n := range names {
			if n == fc.schema.tParam {
				shadowsT = true
			}
		}
	}
	if shadowsT {
		fc.schema.shadowDepth++
	}
	fc.visitChildren(node)
	if shadowsT {
		fc.schema.shadowDepth--
	}
}

// collectSchema records `export const name = (t: TFunction) => …` when its
// body references the translator. It reports whether value was walked.
func (fc *fileCollector) collectSchema(name string, arrow *ts.Node) bool {
	params := syntax.Params(arrow)
	if len(params) == 0 {
		return false
	}
	tParam, ok := syntax.ParamIdentifier(params[0], fc.src)
	if !ok {
		return false
	}
	if tParam[0] != 't' && syntax.ParamTypeName(params[0], fc.src) != "TFunction" {
		return false
	}

	fc.schema = &schemaContext{tParam: tParam}
	fc.tracker.Enter()
	var names []string
	for _, p := range params {
		names = append(names, syntax.BindingNames(p, fc.src)...)
	}
	fc.tracker.Shadow(names...)
	if body := arrow.ChildByFieldName("body"); body != nil {
		fc.visit(body)
	}
	fc.tracker.Exit()

	ctx := fc.schema
	fc.schema = nil
	if len(ctx.keys) > 0 || len(ctx.nestedCalls) > 0 {
		fc.result.Schemas = append(fc.result.Schemas, SchemaFunction{
			Name:        name,
			FilePath:    fc.path,
			Keys:        ctx.keys,
			NestedCalls: ctx.nestedCalls,
		})
	}
	return true
}

func (fc *fileCollector) checkSchemaCall(call *ts.Node) {
	ctx := fc.schema
	if ctx == nil || ctx.shadowDepth > 0 {
		return
	}
	callee, ok := syntax.CalleeIdent(call, fc.src)
	if !ok {
		return
	}
	args := syntax.Args(call)
	if len(args) == 0 {
		return
	}
	if callee == ctx.tParam {
		if key, ok := syntax.StaticString(args[0], fc.src); ok {
			ctx.keys = append(ctx.keys, key)
		}
		return
	}
	if a := syntax.Unwrap(args[0]); a.Kind() == "identifier" && a.Utf8Text(fc.src) == ctx.tParam {
		ctx.nestedCalls = append(ctx.nestedCalls, callee)
	}
}

func (fc *fileCollector) checkFnCallArgs(call *ts.Node) {
	callee, ok := syntax.CalleeIdent(call, fc.src)
	if !ok || syntax.IsTranslationHook(callee) {
		return
	}

	fnFile, fnName := fc.path, callee
	if imp, ok := fc.result.Imports.Find(callee); ok && imp.Path != "" {
		fnFile, fnName = imp.Path, imp.Imported
	}

	for idx, arg := range syntax.Args(call) {
		if arg.Kind() != "identifier" {
			continue
		}
		src, ok := fc.tracker.Active(arg.Utf8Text(fc.src))
		if !ok {
			continue
		}
		key := FnCallKey(fnFile, fnName, idx)
		if i, seen := fc.fnCallIndex[key]; seen {
			fc.result.FnCalls[i].Namespaces = unionInto(fc.result.FnCalls[i].Namespaces, src.Namespaces()...)
			continue
		}
		fc.fnCallIndex[key] = len(fc.result.FnCalls)
		fc.result.FnCalls = append(fc.result.FnCalls, TranslationFnCall{
			FilePath:   fnFile,
			FnName:     fnName,
			ArgIndex:   idx,
			Namespaces: unionInto(nil, src.Namespaces()...),
		})
	}
}

func (fc *fileCollector) checkTranslationProps(el *ts.Node) {
	tag := el.ChildByFieldName("name")
	if tag == nil {
		return
	}
	component := tag.Utf8Text(fc.src)
	switch tag.Kind() {
	case "identifier":
		if !syntax.IsComponentName(component) {
			return
		}
	case "member_expression", "nested_identifier":
	default:
		return
	}

	for _, attr := range syntax.NamedChildren(el) {
		if attr.Kind() != "jsx_attribute" {
			continue
		}
		nameNode := attr.NamedChild(0)
		if nameNode == nil || nameNode.Kind() != "property_identifier" {
			continue
		}
		value := syntax.JSXAttributeValue(attr)
		if value == nil || value.Kind() != "jsx_expression" {
			continue
		}
		inner := syntax.JSXExpressionInner(value)
		if inner == nil || inner.Kind() != "identifier" {
			continue
		}
		src, ok := fc.tracker.Active(inner.Utf8Text(fc.src))
		if !ok {
			continue
		}

		prop := nameNode.Utf8Text(fc.src)
		key := PropKey(component, prop)
		if i, seen := fc.propIndex[key]; seen {
			fc.result.Props[i].Namespaces = unionInto(fc.result.Props[i].Namespaces, src.Namespaces()...)
			continue
		}
		fc.propIndex[key] = len(fc.result.Props)
		fc.result.Props = append(fc.result.Props, TranslationProp{
			ComponentName: component,
			PropName:      prop,
			Namespaces:    unionInto(nil, src.Namespaces()...),
		})
	}
}
