package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/glot/pkg/parser"
	"github.com/gnana997/glot/pkg/util"
)

func parseTSX(t *testing.T, code string) (*ts.Node, []byte) {
	t.Helper()
	pm := parser.NewParserManager(util.NopLogger())
	t.Cleanup(func() { pm.Close() })

	src := []byte(code)
	tree, err := pm.Parse(src, parser.DialectTSX)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode(), src
}

func findFirst(node *ts.Node, kind string) *ts.Node {
	if node.Kind() == kind {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := findFirst(node.Child(i), kind); found != nil {
			return found
		}
	}
	return nil
}

func TestHookCall(t *testing.T) {
	testCases := []struct {
		code   string
		wantNs string
		wantOk bool
	}{
		{`const t = useTranslations("Common");`, "Common", true},
		{`const t = useTranslations();`, "", true},
		{`async function f() { const t = await getTranslations("Auth"); }`, "Auth", true},
		{`const t = useTranslations(ns);`, "", true},
		{`const t = useState("x");`, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			root, src := parseTSX(t, tc.code)
			decl := findFirst(root, "variable_declarator")
			require.NotNil(t, decl)

			ns, ok := HookCall(decl.ChildByFieldName("value"), src)
			assert.Equal(t, tc.wantOk, ok)
			assert.Equal(t, tc.wantNs, ns)
		})
	}
}

func TestUnwrap(t *testing.T) {
	root, src := parseTSX(t, `const k = (("a" as const)) satisfies string;`)
	value := findFirst(root, "variable_declarator").ChildByFieldName("value")

	s, ok := StringValue(value, src)
	require.True(t, ok)
	assert.Equal(t, "a", s)
}

func TestTemplateParts(t *testing.T) {
	root, src := parseTSX(t, "const k = `items.${kind}.label`;")
	tpl := findFirst(root, "template_string")

	quasis, exprs, ok := TemplateParts(tpl, src)
	require.True(t, ok)
	assert.Equal(t, []string{"items.", ".label"}, quasis)
	require.Len(t, exprs, 1)
	assert.Equal(t, "kind", Text(exprs[0], src))
}

func TestStaticString(t *testing.T) {
	root, src := parseTSX(t, "const a = `plain`; const b = `x${y}`;")
	first := findFirst(root, "template_string")

	s, ok := StaticString(first, src)
	assert.True(t, ok)
	assert.Equal(t, "plain", s)

	second := findFirst(root.NamedChild(1), "template_string")
	_, ok = StaticString(second, src)
	assert.False(t, ok)
}

func TestBindingNames(t *testing.T) {
	root, src := parseTSX(t, `function f({ a, b: renamed, c = 1, ...rest }, [d, [e]], g = 2) {}`)
	fn := findFirst(root, "function_declaration")

	var names []string
	for _, p := range Params(fn) {
		names = append(names, BindingNames(p, src)...)
	}
	assert.Equal(t, []string{"a", "renamed", "c", "rest", "d", "e", "g"}, names)
}

func TestParamIdentifierAndType(t *testing.T) {
	root, src := parseTSX(t, `const schema = (t: TFunction, opts?: Options) => ({});`)
	fn := findFirst(root, "arrow_function")
	params := Params(fn)
	require.Len(t, params, 2)

	name, ok := ParamIdentifier(params[0], src)
	assert.True(t, ok)
	assert.Equal(t, "t", name)
	assert.Equal(t, "TFunction", ParamTypeName(params[0], src))

	name, ok = ParamIdentifier(params[1], src)
	assert.True(t, ok)
	assert.Equal(t, "opts", name)
}

func TestBareArrowParam(t *testing.T) {
	root, src := parseTSX(t, `items.map(item => item.key);`)
	fn := findFirst(root, "arrow_function")
	params := Params(fn)
	require.Len(t, params, 1)

	name, ok := ParamIdentifier(params[0], src)
	assert.True(t, ok)
	assert.Equal(t, "item", name)
}

func TestJSXAttributes(t *testing.T) {
	root, src := parseTSX(t, `const el = <Field label={t} xlink:href="#a" disabled />;`)
	el := findFirst(root, "jsx_self_closing_element")
	assert.Equal(t, "Field", JSXTagName(el, src))

	var names []string
	var values []string
	for _, c := range NamedChildren(el) {
		if c.Kind() != "jsx_attribute" {
			continue
		}
		names = append(names, JSXAttributeName(c, src))
		values = append(values, Text(JSXAttributeValue(c), src))
	}
	assert.Equal(t, []string{"label", "xlink-href", "disabled"}, names)
	assert.Equal(t, []string{"{t}", `"#a"`, ""}, values)
}

func TestIsComponentName(t *testing.T) {
	assert.True(t, IsComponentName("Button"))
	assert.False(t, IsComponentName("div"))
	assert.False(t, IsComponentName(""))
}
