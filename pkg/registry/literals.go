package registry

import (
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/glot/pkg/syntax"
)

// objectStringValues returns the values of an object literal whose every
// property is `key: "string"`. Spreads, methods, shorthand properties and
// non-string values disqualify the whole object.
func objectStringValues(obj *ts.Node, src []byte) ([]string, bool) {
	var values []string
	for _, prop := range syntax.NamedChildren(obj) {
		switch prop.Kind() {
		case "comment":
			continue
		case "pair":
			if _, ok := propertyName(prop.ChildByFieldName("key"), src); !ok {
				return nil, false
			}
			v, ok := syntax.StringValue(prop.ChildByFieldName("value"), src)
			if !ok {
				return nil, false
			}
			values = append(values, v)
		default:
			return nil, false
		}
	}
	if len(values) == 0 {
		return nil, false
	}
	return values, true
}

// stringArrayValues returns the elements of an array of string literals.
func stringArrayValues(arr *ts.Node, src []byte) ([]string, bool) {
	var values []string
	for _, el := range syntax.NamedChildren(arr) {
		if el.Kind() == "comment" {
			continue
		}
		v, ok := syntax.StringValue(el, src)
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, false
	}
	return values, true
}

// arrayPropertyValues indexes an array of object literals by property name,
// keeping every string value seen. Non-string properties are ignored; a
// spread anywhere or a non-object element disqualifies the array.
func arrayPropertyValues(arr *ts.Node, src []byte) (map[string][]string, bool) {
	props := map[string][]string{}
	for _, el := range syntax.NamedChildren(arr) {
		if el.Kind() == "comment" {
			continue
		}
		obj := syntax.Unwrap(el)
		if obj.Kind() != "object" {
			return nil, false
		}
		for _, prop := range syntax.NamedChildren(obj) {
			switch prop.Kind() {
			case "spread_element":
				return nil, false
			case "pair":
				name, ok := propertyName(prop.ChildByFieldName("key"), src)
				if !ok {
					continue
				}
				if v, ok := syntax.StringValue(prop.ChildByFieldName("value"), src); ok {
					props[name] = append(props[name], v)
				}
			}
		}
	}
	if len(props) == 0 {
		return nil, false
	}
	return props, true
}

// propertyName accepts identifier and string keys only.
func propertyName(key *ts.Node, src []byte) (string, bool) {
	if key == nil {
		return "", false
	}
	switch key.Kind() {
	case "property_identifier":
		return key.Utf8Text(src), true
	case "string":
		return syntax.StringValue(key, src)
	}
	return "", false
}

// sortedKeys is used for deterministic logs and tests.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
