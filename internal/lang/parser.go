package lang

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jward/codetext/internal/store"
)

// Parser segments one language family's source into code elements and
// extracts the names a piece of code refers to. Implementations are
// stateless and safe for concurrent use.
type Parser interface {
	// Parse returns the elements defined in content, in source order.
	Parse(content, filePath string) []*store.CodeElement
	// FindReferences returns the candidate names referenced by content.
	FindReferences(content string) map[string]struct{}
}

var parsers = map[Language]Parser{
	Python:     NewPythonParser(),
	Rust:       NewRustParser(),
	JavaScript: NewJavaScriptParser(),
}

// ParserFor returns the parser for a language. Unknown values fall back to
// the Python parser, matching ForFile's default.
func ParserFor(l Language) Parser {
	if p, ok := parsers[l]; ok {
		return p
	}
	return parsers[Python]
}

// located pairs an element with the byte offset of its header so results
// can be ordered by position.
type located struct {
	offset int
	el     *store.CodeElement
}

func sortedElements(found []located) []*store.CodeElement {
	sort.SliceStable(found, func(i, j int) bool { return found[i].offset < found[j].offset })
	out := make([]*store.CodeElement, len(found))
	for i, f := range found {
		out[i] = f.el
	}
	return out
}

// newElement builds an element from a block extracted at offset.
func newElement(name, typ string, l Language, filePath, content string, offset int, block string, imports []string) *store.CodeElement {
	start, end := lineSpan(content, offset, block)
	el := &store.CodeElement{
		Name:        name,
		ElementType: typ,
		Content:     block,
		FilePath:    filePath,
		Language:    l.String(),
		StartLine:   start,
		EndLine:     end,
	}
	if len(imports) > 0 {
		el.Imports = append([]string(nil), imports...)
	}
	return el
}

// collectStatements returns every match of re with internal whitespace
// collapsed, so multi-line statements read as one line.
func collectStatements(re *regexp.Regexp, content string) []string {
	var out []string
	for _, m := range re.FindAllString(content, -1) {
		out = append(out, strings.Join(strings.Fields(m), " "))
	}
	return out
}

// bodyIndent returns the indentation of the first code line after the
// header line of block, or -1 if the block has no body lines.
func bodyIndent(block string, comment string) int {
	lines := strings.Split(block, "\n")
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || (comment != "" && strings.HasPrefix(trimmed, comment)) {
			continue
		}
		return indentOf(line)
	}
	return -1
}

// memberHeaders returns the offsets (relative to block) and names of the
// member headers matched by re whose indentation equals indent. re must
// capture the indentation as group 1 and the name as group 2.
func memberHeaders(re *regexp.Regexp, block string, indent int, skip map[string]bool) []located {
	if indent <= 0 {
		return nil
	}
	var out []located
	for _, m := range re.FindAllStringSubmatchIndex(block, -1) {
		if m[0] == 0 || m[3]-m[2] != indent {
			continue
		}
		name := block[m[4]:m[5]]
		if skip[name] {
			continue
		}
		out = append(out, located{offset: m[0], el: &store.CodeElement{Name: name}})
	}
	return out
}
