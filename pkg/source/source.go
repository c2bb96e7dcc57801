// Package source holds position and context types shared by the analysis phases.
package source

import (
	"fmt"
	"sort"
	"strings"
)

// CommentStyle is the comment syntax valid at a source position.
type CommentStyle int

const (
	// StyleJS is `// ...`.
	StyleJS CommentStyle = iota
	// StyleJSX is `{/* ... */}`, required between JSX children.
	StyleJSX
)

func (s CommentStyle) String() string {
	if s == StyleJSX {
		return "jsx"
	}
	return "js"
}

// Format wraps a directive in this comment style.
func (s CommentStyle) Format(directive string) string {
	if s == StyleJSX {
		return "{/* " + directive + " */}"
	}
	return "// " + directive
}

// MarshalText encodes the style as "js" or "jsx".
func (s CommentStyle) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Location is a 1-based position in a file.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Context is a location plus what is needed to report on it or edit near it.
type Context struct {
	Location
	SourceLine   string       `json:"source_line"`
	CommentStyle CommentStyle `json:"comment_style"`
}

// NewContext builds a Context.
func NewContext(file string, line, col int, sourceLine string, style CommentStyle) Context {
	return Context{
		Location:     Location{File: file, Line: line, Col: col},
		SourceLine:   sourceLine,
		CommentStyle: style,
	}
}

// LineIndex maps byte offsets to 1-based lines and columns.
type LineIndex struct {
	src    []byte
	starts []int
}

// NewLineIndex indexes src. The index keeps a reference to src.
func NewLineIndex(src []byte) *LineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, starts: starts}
}

// Position returns the 1-based line and byte column of offset.
func (li *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return i + 1, offset - li.starts[i] + 1
}

// Line returns the text of a 1-based line without its terminator.
func (li *LineIndex) Line(line int) string {
	if line < 1 || line > len(li.starts) {
		return ""
	}
	start := li.starts[line-1]
	end := len(li.src)
	if line < len(li.starts) {
		end = li.starts[line] - 1
	}
	if end < start {
		return ""
	}
	return strings.TrimSuffix(string(li.src[start:end]), "\r")
}

// LineCount returns the number of lines.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}
