package lang

import (
	"regexp"
	"strings"

	"github.com/jward/codetext/internal/store"
)

var (
	pyFuncRe   = regexp.MustCompile(`(?m)^(?:async\s+)?def\s+(\w+)\s*\((?:[^()]|\([^()]*\))*\)\s*(?:->\s*[^:\n]+)?:`)
	pyClassRe  = regexp.MustCompile(`(?m)^class\s+(\w+)\s*(?:\((?:[^()]|\([^()]*\))*\))?\s*:`)
	pyMethodRe = regexp.MustCompile(`(?m)^([ \t]+)(?:async\s+)?def\s+(\w+)\s*\((?:[^()]|\([^()]*\))*\)\s*(?:->\s*[^:\n]+)?:`)
	pyImportRe = regexp.MustCompile(`(?m)^(?:from\s+\S+\s+)?import\s+.+$`)

	pyCallRe = regexp.MustCompile(`\b(\w+(?:\.\w+)*)\s*\(`)
	pyAttrRe = regexp.MustCompile(`\b(\w+)\.(\w+)`)

	pyKeywords = keywordSet("if", "elif", "while", "for", "return", "and", "or", "not",
		"in", "is", "with", "assert", "del", "yield", "await", "lambda", "except", "def", "class")
)

// PythonParser parses Python source. Top-level def and class headers at
// column 0 become elements; each class's methods, the def headers at the
// class body's indentation, become "Class.method" elements that are nested
// under the class and also returned on their own.
type PythonParser struct {
	Block BlockExtractor
}

// NewPythonParser returns a parser using indentation blocks.
func NewPythonParser() *PythonParser {
	return &PythonParser{Block: IndentBlock{}}
}

// Parse implements Parser.
func (p *PythonParser) Parse(content, filePath string) []*store.CodeElement {
	imports := collectStatements(pyImportRe, content)
	var found []located

	for _, m := range pyClassRe.FindAllStringSubmatchIndex(content, -1) {
		start, name := m[0], content[m[2]:m[3]]
		_, block := p.Block.Extract(content, start)
		class := newElement(name, store.TypeClass, Python, filePath, content, start, block, imports)

		for _, h := range memberHeaders(pyMethodRe, block, bodyIndent(block, "#"), nil) {
			offset := start + h.offset
			_, body := p.Block.Extract(content, offset)
			method := newElement(name+"."+h.el.Name, store.TypeMethod, Python, filePath, content, offset, body, nil)
			class.NestedElements = append(class.NestedElements, method)
			found = append(found, located{offset: offset, el: method})
		}
		found = append(found, located{offset: start, el: class})
	}

	for _, m := range pyFuncRe.FindAllStringSubmatchIndex(content, -1) {
		start, name := m[0], content[m[2]:m[3]]
		_, block := p.Block.Extract(content, start)
		found = append(found, located{offset: start, el: newElement(name, store.TypeFunction, Python, filePath, content, start, block, imports)})
	}

	return sortedElements(found)
}

// FindReferences implements Parser. Call targets keep their dotted chain
// ("self.repo.save") and every attribute pair is added as "a.b".
func (p *PythonParser) FindReferences(content string) map[string]struct{} {
	refs := make(map[string]struct{})
	for _, m := range pyCallRe.FindAllStringSubmatch(content, -1) {
		if !pyKeywords[m[1]] {
			refs[m[1]] = struct{}{}
		}
	}
	for _, m := range pyAttrRe.FindAllStringSubmatch(content, -1) {
		refs[strings.Join(m[1:3], ".")] = struct{}{}
	}
	return refs
}
