package lang

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/codetext/internal/store"
)

// nodeTypes maps grammar node types of top-level declarations to element
// type tags.
var nodeTypes = map[string]string{
	"function_definition":            store.TypeFunction,
	"class_definition":               store.TypeClass,
	"function_item":                  store.TypeFunction,
	"struct_item":                    store.TypeStruct,
	"impl_item":                      store.TypeImpl,
	"function_declaration":           store.TypeFunction,
	"generator_function_declaration": store.TypeFunction,
	"class_declaration":              store.TypeClass,
	"lexical_declaration":            store.TypeArrowFunction,
}

// grammarSpans parses src with a real grammar and returns the 1-based line
// span of every top-level declaration keyed by "type/name".
func grammarSpans(t *testing.T, grammar *sitter.Language, src string) map[string][2]int {
	t.Helper()
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	defer tree.Close()

	out := make(map[string][2]int)
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		outer := root.NamedChild(i)
		decl := outer
		if outer.Type() == "export_statement" {
			if d := outer.ChildByFieldName("declaration"); d != nil {
				decl = d
			}
		}
		typ, ok := nodeTypes[decl.Type()]
		if !ok {
			continue
		}
		var nameNode *sitter.Node
		switch decl.Type() {
		case "impl_item":
			nameNode = decl.ChildByFieldName("type")
		case "lexical_declaration":
			if decl.NamedChildCount() > 0 {
				nameNode = decl.NamedChild(0).ChildByFieldName("name")
			}
		default:
			nameNode = decl.ChildByFieldName("name")
		}
		if nameNode == nil {
			continue
		}
		key := typ + "/" + nameNode.Content([]byte(src))
		out[key] = [2]int{int(outer.StartPoint().Row) + 1, int(decl.EndPoint().Row) + 1}
	}
	return out
}

// The regex parsers agree with a real grammar on where top-level
// declarations start and end for well-formed fixtures.
func TestParsers_AgreeWithGrammar(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		file    string
		l       Language
		grammar *sitter.Language
	}{
		{"sample.py", Python, python.GetLanguage()},
		{"sample.rs", Rust, rust.GetLanguage()},
		{"sample.js", JavaScript, javascript.GetLanguage()},
	} {
		t.Run(tc.file, func(t *testing.T) {
			t.Parallel()
			src := readFixture(t, tc.file)
			want := grammarSpans(t, tc.grammar, src)
			require.NotEmpty(t, want)

			checked := 0
			for _, el := range ParserFor(tc.l).Parse(src, tc.file) {
				if el.ElementType == store.TypeMethod {
					continue
				}
				span, ok := want[el.ElementType+"/"+el.Name]
				if !assert.True(t, ok, "grammar has no %s %s", el.ElementType, el.Name) {
					continue
				}
				assert.Equal(t, span, [2]int{el.StartLine, el.EndLine}, el.Name)
				checked++
			}
			assert.Equal(t, len(want), checked)
		})
	}
}
