// Package registry builds the cross-file symbol tables used to resolve
// dynamic translation keys: schema functions, literal key tables, and the
// propagation of translators through props and function arguments.
//
// Each file is collected independently into a FileResult; Merge combines
// all results into one read-only Registries value.
package registry

import "strconv"

// SchemaFunction is an exported arrow whose first parameter is a translator.
type SchemaFunction struct {
	Name     string `json:"name"`
	FilePath string `json:"file_path"`
	// Keys are the raw keys passed directly to the translator.
	Keys []string `json:"keys"`
	// NestedCalls name functions the translator is passed on to.
	NestedCalls []string `json:"nested_calls,omitempty"`
}

// KeyObject is an object literal whose every value is a string literal.
type KeyObject struct {
	Name          string   `json:"name"`
	FilePath      string   `json:"file_path"`
	IsExported    bool     `json:"is_exported"`
	IsModuleLevel bool     `json:"is_module_level"`
	Candidates    []string `json:"candidates"`
}

// KeyArray is an array of object literals, indexed by property name.
type KeyArray struct {
	Name           string              `json:"name"`
	FilePath       string              `json:"file_path"`
	IsExported     bool                `json:"is_exported"`
	IsModuleLevel  bool                `json:"is_module_level"`
	PropertyValues map[string][]string `json:"property_values"`
}

// StringArray is an array whose every element is a string literal.
type StringArray struct {
	Name          string   `json:"name"`
	FilePath      string   `json:"file_path"`
	IsExported    bool     `json:"is_exported"`
	IsModuleLevel bool     `json:"is_module_level"`
	Values        []string `json:"values"`
}

// TranslationProp records the namespaces fed to a component prop.
type TranslationProp struct {
	ComponentName string   `json:"component_name"`
	PropName      string   `json:"prop_name"`
	Namespaces    []string `json:"namespaces"`
}

// TranslationFnCall records the namespaces fed to a function argument.
type TranslationFnCall struct {
	FilePath   string   `json:"file_path"`
	FnName     string   `json:"fn_name"`
	ArgIndex   int      `json:"arg_index"`
	Namespaces []string `json:"namespaces"`
}

// Import is one imported binding.
type Import struct {
	Local string `json:"local"`
	// Imported is the exported name, "default", or "*" for a namespace import.
	Imported string `json:"imported"`
	Module   string `json:"module"`
	// Path is the resolved file for relative imports, "" otherwise.
	Path string `json:"path,omitempty"`
}

// FileImports are the imports of one file.
type FileImports []Import

// Find returns the import that binds local.
func (fi FileImports) Find(local string) (Import, bool) {
	for _, imp := range fi {
		if imp.Local == local {
			return imp, true
		}
	}
	return Import{}, false
}

// Registries is the merged, read-only view over every file.
type Registries struct {
	Schemas            map[string]SchemaFunction
	KeyObjects         map[string]KeyObject
	KeyArrays          map[string]KeyArray
	StringArrays       map[string]StringArray
	TranslationProps   map[string]TranslationProp
	TranslationFnCalls map[string]TranslationFnCall
	// DefaultExports maps a file to the name of its default export.
	DefaultExports map[string]string
	Imports        map[string]FileImports
}

// NewRegistries returns empty registries.
func NewRegistries() *Registries {
	return &Registries{
		Schemas:            map[string]SchemaFunction{},
		KeyObjects:         map[string]KeyObject{},
		KeyArrays:          map[string]KeyArray{},
		StringArrays:       map[string]StringArray{},
		TranslationProps:   map[string]TranslationProp{},
		TranslationFnCalls: map[string]TranslationFnCall{},
		DefaultExports:     map[string]string{},
		Imports:            map[string]FileImports{},
	}
}

// Key is the registry key of a literal table.
func Key(filePath, name string) string {
	return filePath + "." + name
}

// PropKey is the registry key of a translation prop.
func PropKey(component, prop string) string {
	return component + "." + prop
}

// FnCallKey is the registry key of a translation function argument.
func FnCallKey(filePath, fnName string, argIndex int) string {
	return filePath + "." + fnName + "." + strconv.Itoa(argIndex)
}

// FileResult is what Collect gathers from one file before merging.
type FileResult struct {
	Path          string
	Schemas       []SchemaFunction
	KeyObjects    []KeyObject
	KeyArrays     []KeyArray
	StringArrays  []StringArray
	Props         []TranslationProp
	FnCalls       []TranslationFnCall
	Imports       FileImports
	DefaultExport string
}

// unionInto appends the namespaces of src missing from dst.
func unionInto(dst []string, src ...string) []string {
	for _, ns := range src {
		found := false
		for _, have := range dst {
			if have == ns {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, ns)
		}
	}
	return dst
}
