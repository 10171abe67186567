package codetext

import (
	"fmt"
	"strings"

	"github.com/jward/codetext/internal/store"
)

// DefaultFullDepth is the number of levels rendered with full content.
const DefaultFullDepth = 2

// FormatElement renders a traced element tree as an indented plain-text
// report, two spaces per level. Nested elements below fullDepth levels are
// listed by name only.
func FormatElement(el *store.CodeElement, fullDepth int) string {
	var b strings.Builder
	writeElement(&b, el, 0, fullDepth)
	return b.String()
}

func writeElement(b *strings.Builder, el *store.CodeElement, depth, fullDepth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%sElement: %s\n", indent, el.Name)
	fmt.Fprintf(b, "%s  Type: %s\n", indent, el.ElementType)
	fmt.Fprintf(b, "%s  File: %s\n", indent, el.FilePath)
	fmt.Fprintf(b, "%s  Language: %s\n", indent, el.Language)
	fmt.Fprintf(b, "%s  Lines: %d-%d\n", indent, el.StartLine, el.EndLine)
	if len(el.Imports) > 0 {
		fmt.Fprintf(b, "%s  Imports: \n", indent)
		for _, imp := range el.Imports {
			fmt.Fprintf(b, "%s    %s\n", indent, imp)
		}
	}
	fmt.Fprintf(b, "%s  Content: \n", indent)
	for _, line := range contentLines(el.Content) {
		fmt.Fprintf(b, "%s    %s\n", indent, line)
	}
	if len(el.NestedElements) == 0 {
		return
	}
	fmt.Fprintf(b, "%s  Nested Elements: \n", indent)
	for _, n := range el.NestedElements {
		if depth < fullDepth {
			writeElement(b, n, depth+1, fullDepth)
		} else {
			fmt.Fprintf(b, "%s    %s (nested, content omitted)\n", indent, n.Name)
		}
	}
}

// contentLines splits content into lines without a phantom empty line for
// a trailing newline.
func contentLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
