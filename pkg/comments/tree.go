package comments

import (
	"bytes"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/glot/pkg/syntax"
)

// FromTree gathers every comment node in a parsed file, JSX `{/* */}`
// comments included.
func FromTree(root *ts.Node, src []byte) []Comment {
	var nodes []*ts.Node
	walkComments(root, &nodes)
	return FromNodes(nodes, src)
}

// FromNodes converts comment nodes, e.g. the captures of a comment query,
// in document order.
func FromNodes(nodes []*ts.Node, src []byte) []Comment {
	out := make([]Comment, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, Comment{
			Text:       stripDelimiters(node.Utf8Text(src)),
			StartLine:  syntax.Line(node),
			EndLine:    syntax.EndLine(node),
			Standalone: standalone(src, node.StartByte()),
		})
	}
	return out
}

func walkComments(node *ts.Node, out *[]*ts.Node) {
	if node.Kind() == "comment" {
		*out = append(*out, node)
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkComments(node.Child(i), out)
	}
}

func stripDelimiters(text string) string {
	if rest, ok := strings.CutPrefix(text, "//"); ok {
		return strings.TrimSpace(rest)
	}
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	return strings.TrimSpace(text)
}

func standalone(src []byte, offset uint) bool {
	lineStart := bytes.LastIndexByte(src[:offset], '\n') + 1
	prefix := strings.TrimSpace(string(src[lineStart:offset]))
	return prefix == "" || prefix == "{"
}
