package analyzer

import (
	"strings"
	"unicode"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/glot/pkg/comments"
	"github.com/gnana997/glot/pkg/source"
	"github.com/gnana997/glot/pkg/syntax"
)

// jsxState tracks where in JSX the walk is. The flags are independent.
type jsxState struct {
	inChildren    bool
	inAttr        bool
	inCheckedAttr bool
	inExpr        bool
	// exprLine is the line of the enclosing `{` when inExpr is set.
	exprLine int
}

func (s jsxState) children() jsxState {
	return jsxState{inChildren: true}
}

type stmtKind int

const (
	stmtReturn stmtKind = iota
	stmtVarInit
	stmtArrowExpr
)

// stmtContext marks JSX that starts on line as part of a JS statement.
type stmtContext struct {
	line int
	kind stmtKind
}

func (fa *fileAnalyzer) withStmt(line int, kind stmtKind, fn func()) {
	fa.stmts = append(fa.stmts, stmtContext{line: line, kind: kind})
	fn()
	fa.stmts = fa.stmts[:len(fa.stmts)-1]
}

// commentStyle picks how a directive above line must be written:
// `{/* … */}` between JSX children, `// …` everywhere else.
func (fa *fileAnalyzer) commentStyle(sourceLine string, line int) source.CommentStyle {
	trimmed := strings.TrimLeft(sourceLine, " \t")
	if fa.jsx.inAttr {
		return source.StyleJS
	}
	// A continuation line inside a multi-line `{ … }` takes a JS comment.
	if fa.jsx.inExpr && line != fa.jsx.exprLine {
		return source.StyleJS
	}
	if n := len(fa.stmts); n > 0 && fa.stmts[n-1].line == line && statementPrecedesJSX(fa.stmts[n-1].kind, trimmed) {
		return source.StyleJS
	}
	if fa.jsx.inChildren {
		return source.StyleJSX
	}
	return source.StyleJS
}

// statementPrecedesJSX reports whether the line starts with JS syntax
// before the JSX it produces, as in `return <p>` or `const x = <p>`.
func statementPrecedesJSX(kind stmtKind, trimmed string) bool {
	lt := strings.IndexByte(trimmed, '<')
	switch kind {
	case stmtReturn:
		return strings.HasPrefix(trimmed, "return ")
	case stmtVarInit:
		for _, kw := range []string{"const ", "let ", "var "} {
			if strings.HasPrefix(trimmed, kw) {
				return true
			}
		}
		eq := strings.IndexByte(trimmed, '=')
		return eq >= 0 && lt >= 0 && eq < lt
	case stmtArrowExpr:
		arrow := strings.Index(trimmed, "=>")
		return arrow >= 0 && lt >= 0 && arrow < lt
	}
	return false
}

func (fa *fileAnalyzer) visitJSXElement(el *ts.Node) {
	open := el.ChildByFieldName("open_tag")
	if open != nil {
		fa.visitJSXAttributes(open)
		if syntax.JSXTagName(open, fa.src) == "style" {
			return
		}
	}

	prev := fa.jsx
	fa.jsx = prev.children()
	for _, child := range syntax.NamedChildren(el) {
		switch child.Kind() {
		case "jsx_opening_element", "jsx_closing_element":
			continue
		}
		fa.visit(child)
	}
	fa.jsx = prev
}

func (fa *fileAnalyzer) visitJSXAttributes(el *ts.Node) {
	for _, child := range syntax.NamedChildren(el) {
		switch child.Kind() {
		case "jsx_attribute", "jsx_expression":
			fa.visit(child)
		}
	}
}

func (fa *fileAnalyzer) visitJSXAttribute(attr *ts.Node) {
	prev := fa.jsx
	defer func() { fa.jsx = prev }()

	fa.jsx.inAttr = true
	value := syntax.JSXAttributeValue(attr)
	if fa.checked[syntax.JSXAttributeName(attr, fa.src)] {
		fa.jsx.inCheckedAttr = true
		if text, ok := syntax.StringValue(value, fa.src); ok {
			fa.checkHardcoded(text, syntax.Line(value), syntax.Column(value))
		}
	}
	if value != nil {
		fa.visit(value)
	}
}

func (fa *fileAnalyzer) visitJSXExpression(node *ts.Node) {
	prev := fa.jsx
	defer func() { fa.jsx = prev }()

	fa.jsx.inExpr = true
	fa.jsx.exprLine = syntax.Line(node)
	if !prev.inAttr || prev.inCheckedAttr {
		fa.checkExpr(syntax.JSXExpressionInner(node))
	}
	fa.visitChildren(node)
}

// checkExpr reports string and template literals rendered through `{…}`,
// following `&&`, `||` and ternaries.
func (fa *fileAnalyzer) checkExpr(expr *ts.Node) {
	expr = syntax.Unwrap(expr)
	if expr == nil {
		return
	}
	switch expr.Kind() {
	case "string":
		if text, ok := syntax.StringValue(expr, fa.src); ok {
			fa.checkHardcoded(text, syntax.Line(expr), syntax.Column(expr))
		}
	case "template_string":
		for _, q := range templateChunks(expr, fa.src) {
			line, col := fa.lines.Position(q.offset)
			fa.checkHardcoded(q.text, line, col)
		}
	case "binary_expression":
		switch syntax.Text(expr.ChildByFieldName("operator"), fa.src) {
		case "&&", "||":
			fa.checkExpr(expr.ChildByFieldName("right"))
		}
	case "ternary_expression":
		fa.checkExpr(expr.ChildByFieldName("consequence"))
		fa.checkExpr(expr.ChildByFieldName("alternative"))
	}
}

type chunk struct {
	text   string
	offset int
}

// templateChunks returns the static text of a template with the byte
// offset each piece starts at.
func templateChunks(node *ts.Node, src []byte) []chunk {
	start := int(node.StartByte()) + 1
	var out []chunk
	for _, c := range syntax.NamedChildren(node) {
		if c.Kind() != "template_substitution" {
			continue
		}
		out = append(out, chunk{text: string(src[start:c.StartByte()]), offset: start})
		start = int(c.EndByte())
	}
	end := int(node.EndByte()) - 1
	if end > start {
		out = append(out, chunk{text: string(src[start:end]), offset: start})
	}
	return out
}

func (fa *fileAnalyzer) checkJSXText(node *ts.Node) {
	raw := node.Utf8Text(fa.src)
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return
	}
	lead := len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	line, col := fa.lines.Position(int(node.StartByte()) + lead)
	fa.checkHardcoded(trimmed, line, col)
}

func (fa *fileAnalyzer) checkHardcoded(text string, line, col int) {
	if fa.comments.Suppressions.IsSuppressed(line, comments.Hardcoded) {
		return
	}
	trimmed := strings.TrimSpace(text)
	if fa.ignoreTexts[trimmed] || !hasLetter(trimmed) {
		return
	}
	fa.result.Hardcoded = append(fa.result.Hardcoded, HardcodedText{
		Context: fa.context(line, col),
		Text:    text,
	})
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
