package analyzer

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/glot/pkg/registry"
	"github.com/gnana997/glot/pkg/syntax"
	vs "github.com/gnana997/glot/pkg/valuesource"
)

type iteratorKind int

const (
	iterStringArray iteratorKind = iota
	iterObjectArray
)

type iterator struct {
	array string
	kind  iteratorKind
}

// valueAnalyzer turns key argument expressions into value sources.
type valueAnalyzer struct {
	path    string
	src     []byte
	regs    *registry.Registries
	imports registry.FileImports

	// variables bound from `const key = OBJ[x]`.
	variables map[string]vs.Source
	iterators []map[string]iterator
}

func newValueAnalyzer(path string, src []byte, regs *registry.Registries) *valueAnalyzer {
	return &valueAnalyzer{
		path:      path,
		src:       src,
		regs:      regs,
		imports:   regs.Imports[path],
		variables: map[string]vs.Source{},
		iterators: []map[string]iterator{{}},
	}
}

func (va *valueAnalyzer) enterScope() {
	va.iterators = append(va.iterators, map[string]iterator{})
}

func (va *valueAnalyzer) exitScope() {
	if len(va.iterators) > 1 {
		va.iterators = va.iterators[:len(va.iterators)-1]
	}
}

func (va *valueAnalyzer) iterator(name string) (iterator, bool) {
	for i := len(va.iterators) - 1; i >= 0; i-- {
		if it, ok := va.iterators[i][name]; ok {
			return it, true
		}
	}
	return iterator{}, false
}

// registerIterator binds param as an element of array.
func (va *valueAnalyzer) registerIterator(param, array string) {
	kind := iterObjectArray
	if _, ok := va.stringArray(array); ok {
		kind = iterStringArray
	}
	va.iterators[len(va.iterators)-1][param] = iterator{array: array, kind: kind}
}

// registerObjectAccess binds name to the candidates of object.
func (va *valueAnalyzer) registerObjectAccess(name, object string) {
	va.variables[name] = va.resolveObject(object)
}

func (va *valueAnalyzer) analyze(node *ts.Node) vs.Source {
	return va.analyzeDepth(node, 0)
}

func (va *valueAnalyzer) analyzeDepth(node *ts.Node, depth int) vs.Source {
	node = syntax.Unwrap(node)
	if node == nil {
		return vs.Unsupported("missing argument")
	}
	if depth > vs.MaxDepth {
		return vs.Unsupported("nesting too deep")
	}

	switch node.Kind() {
	case "string":
		v, _ := syntax.StringValue(node, va.src)
		return vs.Literal{Value: v}
	case "number":
		return vs.Literal{Value: node.Utf8Text(va.src)}
	case "template_string":
		return va.template(node, depth)
	case "ternary_expression":
		return vs.Conditional{
			Consequent: va.analyzeDepth(node.ChildByFieldName("consequence"), depth+1),
			Alternate:  va.analyzeDepth(node.ChildByFieldName("alternative"), depth+1),
		}
	case "binary_expression":
		op := syntax.Text(node.ChildByFieldName("operator"), va.src)
		if op != "||" {
			return vs.Unsupported("binary_expression " + op)
		}
		return vs.Conditional{
			Consequent: va.analyzeDepth(node.ChildByFieldName("left"), depth+1),
			Alternate:  va.analyzeDepth(node.ChildByFieldName("right"), depth+1),
		}
	case "identifier":
		return va.identifier(node.Utf8Text(va.src))
	case "member_expression":
		return va.member(node)
	case "subscript_expression":
		return va.subscript(node)
	}
	return vs.Unsupported(node.Kind())
}

func (va *valueAnalyzer) template(node *ts.Node, depth int) vs.Source {
	quasis, exprs, _ := syntax.TemplateParts(node, va.src)
	switch len(exprs) {
	case 0:
		if len(quasis) == 0 {
			return vs.Literal{}
		}
		return vs.Literal{Value: quasis[0]}
	case 1:
		return vs.Template{
			Prefix: quasis[0],
			Suffix: quasis[1],
			Inner:  va.analyzeDepth(exprs[0], depth+1),
		}
	}
	return vs.Complex(len(exprs))
}

func (va *valueAnalyzer) identifier(name string) vs.Source {
	if v, ok := va.variables[name]; ok {
		return v
	}
	if it, ok := va.iterator(name); ok && it.kind == iterStringArray {
		return va.resolveStringArray(it.array)
	}
	return vs.Unknown(vs.UnknownVariable, name)
}

// member handles `item.prop` for iterators, `ARR[i].prop` and `OBJ.prop`.
func (va *valueAnalyzer) member(node *ts.Node) vs.Source {
	obj := syntax.Unwrap(node.ChildByFieldName("object"))
	prop := node.ChildByFieldName("property")
	if obj == nil || prop == nil || prop.Kind() != "property_identifier" {
		return vs.Unsupported("member_expression")
	}
	propName := prop.Utf8Text(va.src)

	switch obj.Kind() {
	case "identifier":
		name := obj.Utf8Text(va.src)
		if it, ok := va.iterator(name); ok {
			return va.resolveArrayProperty(it.array, propName)
		}
		if o, ok := va.keyObject(name); ok {
			return vs.ObjectAccess{ObjectName: name, Candidates: o.Candidates}
		}
	case "subscript_expression":
		if arr := syntax.Unwrap(obj.ChildByFieldName("object")); arr != nil && arr.Kind() == "identifier" {
			return va.resolveArrayProperty(arr.Utf8Text(va.src), propName)
		}
	}
	return vs.Unsupported("member_expression")
}

// subscript handles `OBJ[x]` and `ARR[i]`.
func (va *valueAnalyzer) subscript(node *ts.Node) vs.Source {
	obj := syntax.Unwrap(node.ChildByFieldName("object"))
	if obj == nil || obj.Kind() != "identifier" {
		return vs.Unsupported("subscript_expression")
	}
	name := obj.Utf8Text(va.src)
	if _, ok := va.keyObject(name); ok {
		return va.resolveObject(name)
	}
	if _, ok := va.stringArray(name); ok {
		return va.resolveStringArray(name)
	}
	return vs.Unknown(vs.UnknownObject, name)
}

func (va *valueAnalyzer) resolveObject(name string) vs.Source {
	if o, ok := va.keyObject(name); ok {
		return vs.ObjectAccess{ObjectName: name, Candidates: o.Candidates}
	}
	return vs.Unknown(vs.UnknownObject, name)
}

func (va *valueAnalyzer) resolveStringArray(name string) vs.Source {
	if a, ok := va.stringArray(name); ok {
		return vs.StringArrayElement{ArrayName: name, Candidates: a.Values}
	}
	return vs.Unknown(vs.UnknownArray, name)
}

func (va *valueAnalyzer) resolveArrayProperty(array, prop string) vs.Source {
	if a, ok := va.keyArray(array); ok {
		if values, ok := a.PropertyValues[prop]; ok {
			return vs.ArrayIteration{ArrayName: array, PropertyName: prop, Candidates: values}
		}
	}
	return vs.Unknown(vs.UnknownArray, array)
}

func (va *valueAnalyzer) keyObject(name string) (registry.KeyObject, bool) {
	return lookup(va, name, va.regs.KeyObjects, func(o registry.KeyObject) bool {
		return o.IsExported && o.IsModuleLevel
	})
}

func (va *valueAnalyzer) stringArray(name string) (registry.StringArray, bool) {
	return lookup(va, name, va.regs.StringArrays, func(a registry.StringArray) bool {
		return a.IsExported && a.IsModuleLevel
	})
}

func (va *valueAnalyzer) keyArray(name string) (registry.KeyArray, bool) {
	return lookup(va, name, va.regs.KeyArrays, func(a registry.KeyArray) bool {
		return a.IsExported && a.IsModuleLevel
	})
}

// lookup checks the own file first, then follows the import of name.
// Imported entries must pass visible.
func lookup[T any](va *valueAnalyzer, name string, entries map[string]T, visible func(T) bool) (T, bool) {
	if v, ok := entries[registry.Key(va.path, name)]; ok {
		return v, true
	}
	var zero T
	imp, ok := va.imports.Find(name)
	if !ok || imp.Path == "" {
		return zero, false
	}
	v, ok := entries[registry.Key(imp.Path, imp.Imported)]
	if !ok || !visible(v) {
		return zero, false
	}
	return v, true
}
