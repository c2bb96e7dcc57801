package analyzer

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/glot/pkg/comments"
	"github.com/gnana997/glot/pkg/parser"
	"github.com/gnana997/glot/pkg/registry"
	"github.com/gnana997/glot/pkg/scope"
	"github.com/gnana997/glot/pkg/source"
	"github.com/gnana997/glot/pkg/util"
	vs "github.com/gnana997/glot/pkg/valuesource"
)

// analyzeFiles collects registries over every file, then analyzes target.
func analyzeFiles(t *testing.T, files map[string]string, target string, opts Options) *Result {
	t.Helper()
	pm := parser.NewParserManager(util.NopLogger())
	t.Cleanup(func() { pm.Close() })

	known := map[string]bool{}
	paths := make([]string, 0, len(files))
	for p := range files {
		known[p] = true
		paths = append(paths, p)
	}
	sort.Strings(paths)

	collector := registry.NewCollector(registry.ExistsIn(known))
	var results []*registry.FileResult
	for _, p := range paths {
		src := []byte(files[p])
		tree, err := pm.ParseFile(src, p)
		require.NoError(t, err)
		results = append(results, collector.Collect(p, tree.RootNode(), src))
		tree.Close()
	}
	regs := registry.Merge(results...)

	src := []byte(files[target])
	tree, err := pm.ParseFile(src, target)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	fc := comments.Collect(comments.FromTree(tree.RootNode(), src))
	return New(regs, opts).Analyze(target, tree.RootNode(), src, fc)
}

func analyzeOne(t *testing.T, path, code string) *Result {
	t.Helper()
	return analyzeFiles(t, map[string]string{path: code}, path, Options{})
}

func arguments(calls []RawCall) []vs.Source {
	out := make([]vs.Source, len(calls))
	for i, c := range calls {
		out[i] = c.Argument
	}
	return out
}

func TestAnalyze_DirectAndMethodCalls(t *testing.T) {
	res := analyzeOne(t, "/app/page.tsx", `
export function Page() {
  const t = useTranslations("Home");
  t("title");
  t.rich("body");
  t();
  t.has("x");
  other("x");
}
`)

	require.Len(t, res.Calls, 2)
	assert.Equal(t, CallDirect, res.Calls[0].Kind)
	assert.Equal(t, vs.Literal{Value: "title"}, res.Calls[0].Argument)
	assert.Equal(t, scope.DirectSource("Home"), res.Calls[0].Source)
	assert.Equal(t, 4, res.Calls[0].Context.Line)
	assert.Equal(t, 3, res.Calls[0].Context.Col)
	assert.Equal(t, `  t("title");`, res.Calls[0].Context.SourceLine)

	assert.Equal(t, CallMethod, res.Calls[1].Kind)
	assert.Equal(t, "rich", res.Calls[1].Method)
}

func TestAnalyze_ValueGrammar(t *testing.T) {
	res := analyzeOne(t, "/app/grammar.tsx", `
const toolKeys = { a: "tools.a", b: "tools.b" };
const KEYS = ["x", "y"];
const items = [{ titleKey: "i1" }, { titleKey: "i2" }];

function Grid({ name, idx }) {
  const t = useTranslations("NS");
  const key = toolKeys[name];
  t(key);
  t(toolKeys[name]);
  t(`+"`p.${name}.s`"+`);
  t(`+"`${a}.${b}`"+`);
  t(cond ? "a" : "b");
  t(x || "fallback");
  t(("wrapped" as const));
  t(5);
  t(`+"`static`"+`);
  KEYS.map((k) => t(k));
  items.map((item) => t(item.titleKey));
  t(items[idx].titleKey);
  t(KEYS[idx]);
  t(getKey());
}
`)

	objects := vs.ObjectAccess{ObjectName: "toolKeys", Candidates: []string{"tools.a", "tools.b"}}
	want := []vs.Source{
		objects,
		objects,
		vs.Template{Prefix: "p.", Suffix: ".s", Inner: vs.Unknown(vs.UnknownVariable, "name")},
		vs.Complex(2),
		vs.Conditional{Consequent: vs.Literal{Value: "a"}, Alternate: vs.Literal{Value: "b"}},
		vs.Conditional{Consequent: vs.Unknown(vs.UnknownVariable, "x"), Alternate: vs.Literal{Value: "fallback"}},
		vs.Literal{Value: "wrapped"},
		vs.Literal{Value: "5"},
		vs.Literal{Value: "static"},
		vs.StringArrayElement{ArrayName: "KEYS", Candidates: []string{"x", "y"}},
		vs.ArrayIteration{ArrayName: "items", PropertyName: "titleKey", Candidates: []string{"i1", "i2"}},
		vs.ArrayIteration{ArrayName: "items", PropertyName: "titleKey", Candidates: []string{"i1", "i2"}},
		vs.StringArrayElement{ArrayName: "KEYS", Candidates: []string{"x", "y"}},
		vs.Unsupported("call_expression"),
	}
	if diff := cmp.Diff(want, arguments(res.Calls)); diff != "" {
		t.Errorf("arguments mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_Shadowing(t *testing.T) {
	res := analyzeOne(t, "/app/shadow.tsx", `
const t = useTranslations("Outer");
function A(t) { t("param"); }
function B() { const t = makeFormatter(); t("local"); }
function C({ t }) { t("destructured"); }
function D() { t("outer"); }
function E() { const t = (k) => k.toUpperCase(); t("arrow"); }
function F() { let t; t = String; t("uninitialized"); }
function G() { function t(k) { return k; } t("declared"); }
function H() { const { t } = helpers; t("pattern"); }
`)

	require.Len(t, res.Calls, 1)
	assert.Equal(t, vs.Literal{Value: "outer"}, res.Calls[0].Argument)
}

func TestAnalyze_LocalSchemaBodyNotTracked(t *testing.T) {
	files := map[string]string{
		"/app/schema.ts": `export const loginSchema = (t) => ({ email: t("email") });
`,
		"/app/page.tsx": `import { loginSchema } from "./schema";
export function Page() {
  const t = useTranslations("Home");
  loginSchema(t);
}
`,
	}

	schemaFile := analyzeFiles(t, files, "/app/schema.ts", Options{})
	assert.Empty(t, schemaFile.Calls)

	page := analyzeFiles(t, files, "/app/page.tsx", Options{})
	require.Len(t, page.SchemaCalls, 1)
	assert.Equal(t, "loginSchema", page.SchemaCalls[0].Name)
	assert.Equal(t, "Home", page.SchemaCalls[0].Namespace)
}

func TestAnalyze_PropsAndFnCallBindings(t *testing.T) {
	files := map[string]string{
		"/app/page.tsx": `
import Card from "./Card";
import { formatRows } from "./rows";
export default function Page() {
  const t = useTranslations("Landing");
  formatRows(data, t);
  return <Card t={t} />;
}
`,
		"/app/Card.tsx": `
export default function Card({ t: translate }) {
  return <p>{translate("card.title")}</p>;
}
`,
		"/app/rows.ts": `
export function formatRows(rows, tr) {
  return rows.map((r) => tr(`+"`rows.${r}`"+`));
}
`,
	}

	card := analyzeFiles(t, files, "/app/Card.tsx", Options{})
	require.Len(t, card.Calls, 1)
	assert.Equal(t, scope.PropsSource([]string{"Landing"}), card.Calls[0].Source)
	assert.Equal(t, vs.Literal{Value: "card.title"}, card.Calls[0].Argument)
	assert.Equal(t, source.StyleJS, card.Calls[0].Context.CommentStyle)

	rows := analyzeFiles(t, files, "/app/rows.ts", Options{})
	require.Len(t, rows.Calls, 1)
	assert.Equal(t, scope.FnCallSource([]string{"Landing"}), rows.Calls[0].Source)
	assert.Equal(t, vs.Template{Prefix: "rows.", Inner: vs.Unknown(vs.UnknownVariable, "r")}, rows.Calls[0].Argument)
}

func TestAnalyze_DefaultExportedArrowParams(t *testing.T) {
	files := map[string]string{
		"/app/page.tsx": `
import label from "./label";
export function Page() {
  const t = useTranslations("Labels");
  label(t);
}
`,
		"/app/label.ts": `
export default (tr) => tr("name");
`,
	}

	res := analyzeFiles(t, files, "/app/label.ts", Options{})
	require.Len(t, res.Calls, 1)
	assert.Equal(t, []string{"Labels"}, res.Calls[0].Source.Namespaces())
}

func TestAnalyze_SchemaCalls(t *testing.T) {
	files := map[string]string{
		"/app/schema.ts": `
export const loginSchema = (t: TFunction) => ({ email: t("email") });
`,
		"/app/form.tsx": `
import { loginSchema } from "./schema";
export function Form() {
  const t = useTranslations("Auth");
  const s = loginSchema(t);
  const u = loginSchema(null);
  function inner(t) { loginSchema(t); }
  unknownSchema(t);
}
`,
	}

	res := analyzeFiles(t, files, "/app/form.tsx", Options{})
	want := []SchemaCall{
		{Name: "loginSchema", Namespace: "Auth", Line: 5, Col: 13},
		{Name: "loginSchema", Namespace: "", Line: 6, Col: 13},
	}
	if diff := cmp.Diff(want, res.SchemaCalls); diff != "" {
		t.Errorf("SchemaCalls mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_CallCommentStyles(t *testing.T) {
	res := analyzeOne(t, "/app/styles.tsx", `
export function View({ label }) {
  const t = useTranslations("S");
  return (
    <div>
      {t("child")}
      {label ||
        t("continued")}
    </div>
  );
}
`)

	require.Len(t, res.Calls, 2)
	assert.Equal(t, source.StyleJSX, res.Calls[0].Context.CommentStyle)
	assert.Equal(t, source.StyleJS, res.Calls[1].Context.CommentStyle)
}

func hardcodedTexts(res *Result) []string {
	out := make([]string, len(res.Hardcoded))
	for i, h := range res.Hardcoded {
		out[i] = h.Text
	}
	return out
}

func TestAnalyze_HardcodedText(t *testing.T) {
	res := analyzeFiles(t, map[string]string{"/app/view.tsx": `
export function View({ isOpen, q }) {
  return (
    <div title="Hover text" className="box">
      Hello world
      {isOpen && "Open now"}
      {/* glot-disable-next-line hardcoded */}
      Ignored text
      <input placeholder={`+"`Search ${q}`"+`} />
      <style>{`+"`.a { color: red }`"+`}</style>
      <span>123</span>
      <span>OK</span>
    </div>
  );
}
`}, "/app/view.tsx", Options{IgnoreTexts: []string{"OK"}})

	assert.Equal(t, []string{"Hover text", "Hello world", "Open now", "Search "}, hardcodedTexts(res))

	byText := map[string]HardcodedText{}
	for _, h := range res.Hardcoded {
		byText[h.Text] = h
	}
	assert.Equal(t, source.StyleJS, byText["Hover text"].Context.CommentStyle)
	assert.Equal(t, source.StyleJSX, byText["Hello world"].Context.CommentStyle)
	assert.Equal(t, 5, byText["Hello world"].Context.Line)
	assert.Equal(t, 7, byText["Hello world"].Context.Col)
	assert.Equal(t, source.StyleJSX, byText["Open now"].Context.CommentStyle)
	assert.Equal(t, source.StyleJS, byText["Search "].Context.CommentStyle)
}

func TestAnalyze_StatementLevelJSX(t *testing.T) {
	res := analyzeOne(t, "/app/inline.tsx", `
const el = <p>Inline</p>;
const f = () => <b>Arrow</b>;
function G() {
  return <i>Returned</i>;
}
`)

	require.Equal(t, []string{"Inline", "Arrow", "Returned"}, hardcodedTexts(res))
	for _, h := range res.Hardcoded {
		assert.Equal(t, source.StyleJS, h.Context.CommentStyle, h.Text)
	}
}

func TestAnalyze_CustomCheckedAttributes(t *testing.T) {
	res := analyzeFiles(t, map[string]string{"/app/a.tsx": `
const a = <img alt="Logo" data-tip="Tip text" />;
`}, "/app/a.tsx", Options{CheckedAttributes: []string{"data-tip"}})

	assert.Equal(t, []string{"Tip text"}, hardcodedTexts(res))
}
