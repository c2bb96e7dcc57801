package queries

import (
	"sync"
	"testing"

	"github.com/gnana997/glot/pkg/comments"
	"github.com/gnana997/glot/pkg/parser"
	"github.com/gnana997/glot/pkg/util"
)

// Test fixtures
var (
	testParserManager *parser.ParserManager
	testQueryManager  *QueryManager
)

// setupTest initializes test fixtures
func setupTest(t *testing.T) {
	t.Helper()
	testParserManager = parser.NewParserManager(util.NopLogger())
	testQueryManager = NewQueryManager(util.NopLogger())
}

// teardownTest cleans up test fixtures
func teardownTest(t *testing.T) {
	t.Helper()
	if testQueryManager != nil {
		testQueryManager.Close()
	}
	if testParserManager != nil {
		testParserManager.Close()
	}
}

const pageTSX = `// glot-message-keys "Page.items.*"
export function Page() {
  const x = 1; /* trailing */
  return (
    <div>
      {/* glot-disable-next-line hardcoded */}
      <p>Hello</p>
    </div>
  );
}
`

func TestQueryCompilation(t *testing.T) {
	setupTest(t)
	defer teardownTest(t)

	for _, d := range []parser.Dialect{parser.DialectTypeScript, parser.DialectTSX, parser.DialectJavaScript} {
		query, err := testQueryManager.GetQuery(d, QueryComments)
		if err != nil {
			t.Fatalf("%s: failed to compile comments query: %v", d, err)
		}
		again, err := testQueryManager.GetQuery(d, QueryComments)
		if err != nil || again != query {
			t.Errorf("%s: second GetQuery returned %p (err %v), want cached %p", d, again, err, query)
		}
	}
}

func TestQueryCompilation_Errors(t *testing.T) {
	setupTest(t)
	defer teardownTest(t)

	if _, err := testQueryManager.GetQuery(parser.DialectUnknown, QueryComments); err == nil {
		t.Error("expected error for unknown dialect")
	}
	if _, err := testQueryManager.GetQuery(parser.DialectTSX, QueryType(99)); err == nil {
		t.Error("expected error for unknown query type")
	}
}

func TestRun_CommentsMatchTreeWalk(t *testing.T) {
	setupTest(t)
	defer teardownTest(t)

	src := []byte(pageTSX)
	tree, err := testParserManager.Parse(src, parser.DialectTSX)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	matches, err := testQueryManager.Run(tree, parser.DialectTSX, QueryComments, src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	first := matches[0].Captures[0]
	if first.Category != "comment" || first.Field != "node" {
		t.Errorf("capture name split: got (%q, %q)", first.Category, first.Field)
	}
	if first.Text != `// glot-message-keys "Page.items.*"` {
		t.Errorf("capture text: got %q", first.Text)
	}

	fromQuery := comments.FromNodes(Nodes(matches, "comment.node"), src)
	fromWalk := comments.FromTree(tree.RootNode(), src)
	if len(fromQuery) != len(fromWalk) {
		t.Fatalf("query found %d comments, walk found %d", len(fromQuery), len(fromWalk))
	}
	for i := range fromWalk {
		if fromQuery[i] != fromWalk[i] {
			t.Errorf("comment %d: query %+v, walk %+v", i, fromQuery[i], fromWalk[i])
		}
	}
}

func TestExecuteQuery_NilArguments(t *testing.T) {
	setupTest(t)
	defer teardownTest(t)

	if _, err := testQueryManager.ExecuteQuery(nil, nil, nil); err == nil {
		t.Error("expected error for nil tree")
	}

	tree, err := testParserManager.Parse([]byte("const a = 1;"), parser.DialectTypeScript)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()
	if _, err := testQueryManager.ExecuteQuery(tree, nil, nil); err == nil {
		t.Error("expected error for nil query")
	}
}

func TestQueryManager_Concurrent(t *testing.T) {
	setupTest(t)
	defer teardownTest(t)

	src := []byte(pageTSX)
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := testParserManager.Parse(src, parser.DialectTSX)
			if err != nil {
				errs <- err
				return
			}
			defer tree.Close()
			matches, err := testQueryManager.Run(tree, parser.DialectTSX, QueryComments, src)
			if err == nil && len(matches) != 3 {
				t.Errorf("got %d matches, want 3", len(matches))
			}
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent run: %v", err)
	}
}

func TestParseCaptureName(t *testing.T) {
	tests := []struct {
		name, category, field string
	}{
		{"comment.node", "comment", "node"},
		{"call.arg.value", "call", "arg.value"},
		{"plain", "plain", ""},
	}
	for _, tc := range tests {
		c, f := parseCaptureName(tc.name)
		if c != tc.category || f != tc.field {
			t.Errorf("parseCaptureName(%q) = (%q, %q), want (%q, %q)", tc.name, c, f, tc.category, tc.field)
		}
	}
}
