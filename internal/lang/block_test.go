package lang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/codetext/internal/store"
)

func TestIndentBlock(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "stops at next top-level def",
			content: "def a():\n    return 1\ndef b():\n    return 2\n",
			want:    "def a():\n    return 1",
		},
		{
			name:    "trailing blank lines excluded",
			content: "def a():\n    x = 1\n\n    return x\n\n\nprint(a())\n",
			want:    "def a():\n    x = 1\n\n    return x",
		},
		{
			name:    "nested blocks stay inside",
			content: "def a(xs):\n    for x in xs:\n        if x:\n            yield x\n    return\nz = 1\n",
			want:    "def a(xs):\n    for x in xs:\n        if x:\n            yield x\n    return",
		},
		{
			name:    "column zero comment inside body",
			content: "def a():\n    x = 1\n# note\n    return x\n",
			want:    "def a():\n    x = 1\n# note\n    return x",
		},
		{
			name:    "docstring at column zero",
			content: "def a():\n    s = \"\"\"\nraw text\n\"\"\"\n    return s\ndef b():\n    pass\n",
			want:    "def a():\n    s = \"\"\"\nraw text\n\"\"\"\n    return s",
		},
		{
			name:    "multi-line header",
			content: "def a(x,\n      y):\n    return x + y\n",
			want:    "def a(x,\n      y):\n    return x + y",
		},
		{
			name:    "unterminated runs to end",
			content: "def a():\n    return 1",
			want:    "def a():\n    return 1",
		},
		{
			name:    "header only",
			content: "def a(): return 1\ndef b(): return 2\n",
			want:    "def a(): return 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			end, block := IndentBlock{}.Extract(tt.content, 0)
			assert.Equal(t, tt.want, block)
			assert.Equal(t, len(tt.want), end)
		})
	}
}

func TestIndentBlock_IndentedStart(t *testing.T) {
	t.Parallel()
	content := "class A:\n    def m(self):\n        return 1\n\n    def n(self):\n        return 2\n"
	start := strings.Index(content, "    def m")
	_, block := IndentBlock{}.Extract(content, start)
	assert.Equal(t, "    def m(self):\n        return 1", block)
}

func TestIndentBlock_MaxLines(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	sb.WriteString("def big():\n")
	for i := 0; i < 50; i++ {
		sb.WriteString("    x = 1\n")
	}
	_, block := IndentBlock{MaxLines: 10}.Extract(sb.String(), 0)
	assert.Equal(t, 10, strings.Count(block, "\n")+1)
}

func TestLineBraceBlock(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "function body",
			content: "fn a() {\n    b();\n}\nfn b() {}\n",
			want:    "fn a() {\n    b();\n}",
		},
		{
			name:    "one-line body",
			content: "fn b() -> i32 { 1 }\nfn c() {}\n",
			want:    "fn b() -> i32 { 1 }",
		},
		{
			name:    "unit struct",
			content: "struct Unit;\nstruct Other;\n",
			want:    "struct Unit;",
		},
		{
			name:    "signature spanning lines",
			content: "fn a(\n    x: i32,\n) -> i32 {\n    x\n}\n",
			want:    "fn a(\n    x: i32,\n) -> i32 {\n    x\n}",
		},
		{
			name:    "unterminated",
			content: "fn a() {\n    loop {\n",
			want:    "fn a() {\n    loop {\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			end, block := LineBraceBlock{}.Extract(tt.content, 0)
			assert.Equal(t, tt.want, block)
			assert.Equal(t, len(tt.want), end)
		})
	}
}

func TestStringAwareBraceBlock(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "braces in strings ignored",
			content: "function a() {\n  const s = \"}\";\n  const t = '{';\n  return `}${s}`;\n}\nfunction b() {}\n",
			want:    "function a() {\n  const s = \"}\";\n  const t = '{';\n  return `}${s}`;\n}",
		},
		{
			name:    "escaped quotes",
			content: "function a() {\n  return \"\\\"}\";\n}\n",
			want:    "function a() {\n  return \"\\\"}\";\n}",
		},
		{
			name:    "braces in comments ignored",
			content: "function a() {\n  // }\n  /* } */\n  return 1;\n}\n",
			want:    "function a() {\n  // }\n  /* } */\n  return 1;\n}",
		},
		{
			name:    "expression arrow with semicolon",
			content: "const f = (x) => x * 2;\nconst g = 1;\n",
			want:    "const f = (x) => x * 2;",
		},
		{
			name:    "expression arrow without semicolon",
			content: "const f = x => x * 2\nconst g = () => {}\n",
			want:    "const f = x => x * 2",
		},
		{
			name:    "arrow body on next line",
			content: "const f = () =>\n  compute(1);\nrest();\n",
			want:    "const f = () =>\n  compute(1);",
		},
		{
			name:    "destructured parameters",
			content: "function a({ x, y }) {\n  return x;\n}\n",
			want:    "function a({ x, y }) {\n  return x;\n}",
		},
		{
			name:    "unterminated",
			content: "function a() {\n  if (x) {\n",
			want:    "function a() {\n  if (x) {\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			end, block := StringAwareBraceBlock{}.Extract(tt.content, 0)
			assert.Equal(t, tt.want, block)
			assert.Equal(t, len(tt.want), end)
		})
	}
}

// Extracted blocks are exact substrings of the input starting at the
// requested offset, and a top-level element's content re-scanned from
// offset 0 is exactly one complete block.
func TestBlockExtractors_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		file  string
		l     Language
		block BlockExtractor
	}{
		{"sample.py", Python, IndentBlock{}},
		{"sample.rs", Rust, LineBraceBlock{}},
		{"sample.js", JavaScript, StringAwareBraceBlock{}},
	} {
		content := readFixture(t, tc.file)
		elements := ParserFor(tc.l).Parse(content, tc.file)
		require.NotEmpty(t, elements, tc.file)
		for _, el := range elements {
			idx := strings.Index(content, el.Content)
			assert.GreaterOrEqual(t, idx, 0, "%s content must be a substring", el.Name)
			assert.Equal(t, el.StartLine, lineOf(content, idx), el.Name)

			if el.ElementType == store.TypeMethod {
				continue
			}
			end, block := tc.block.Extract(el.Content, 0)
			assert.Equal(t, len(el.Content), end, "%s: %s must re-scan as one block", tc.file, el.Name)
			assert.Equal(t, el.Content, block, "%s: %s", tc.file, el.Name)
		}
	}
}
