package lang

import (
	"regexp"

	"github.com/jward/codetext/internal/store"
)

var (
	jsFuncRe   = regexp.MustCompile(`(?m)^(?:export\s+)?(?:default\s+)?(?:async\s+)?function(?:\s*\*\s*|\s+)(\w+)\s*(?:<(?:[^<>]|<[^<>]*>)*>)?\s*\(`)
	jsClassRe  = regexp.MustCompile(`(?m)^(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)`)
	jsArrowRe  = regexp.MustCompile(`(?m)^(?:export\s+)?const\s+(\w+)\s*(?::[^=]+)?=\s*(?:async\s+)?(?:\([^)]*\)|\w+)\s*(?::[^=]*)?=>`)
	jsMethodRe = regexp.MustCompile(`(?m)^([ \t]+)(?:(?:public|private|protected|static|async|get|set|override|readonly)\s+)*\*?\s*(\w+)\s*(?:<(?:[^<>]|<[^<>]*>)*>)?\s*\([^)]*\)\s*(?::[^{;]*)?\{`)
	jsImportRe = regexp.MustCompile(`(?m)^import\s+[^;]*?\s+from\s+['"][^'"\n]+['"];?`)

	jsCallRe = regexp.MustCompile(`\b(\w+)\s*\(`)
	jsNewRe  = regexp.MustCompile(`new\s+(\w+)`)

	jsKeywords = keywordSet("if", "for", "while", "switch", "catch", "function", "return",
		"typeof", "await", "super", "import", "with", "do", "else")
)

// JavaScriptParser parses JavaScript and TypeScript source. Function
// declarations, class declarations, and arrow functions bound with const
// become elements; class methods become "Class.method" elements nested
// under their class.
type JavaScriptParser struct {
	Block BlockExtractor
}

// NewJavaScriptParser returns a parser using string-aware brace blocks.
func NewJavaScriptParser() *JavaScriptParser {
	return &JavaScriptParser{Block: StringAwareBraceBlock{}}
}

// Parse implements Parser.
func (p *JavaScriptParser) Parse(content, filePath string) []*store.CodeElement {
	imports := collectStatements(jsImportRe, content)
	var found []located

	add := func(re *regexp.Regexp, typ string) {
		for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
			start, name := m[0], content[m[2]:m[3]]
			_, block := p.Block.Extract(content, start)
			found = append(found, located{offset: start, el: newElement(name, typ, JavaScript, filePath, content, start, block, imports)})
		}
	}
	add(jsFuncRe, store.TypeFunction)
	add(jsArrowRe, store.TypeArrowFunction)

	for _, m := range jsClassRe.FindAllStringSubmatchIndex(content, -1) {
		start, name := m[0], content[m[2]:m[3]]
		_, block := p.Block.Extract(content, start)
		class := newElement(name, store.TypeClass, JavaScript, filePath, content, start, block, imports)

		for _, h := range memberHeaders(jsMethodRe, block, bodyIndent(block, "//"), jsKeywords) {
			offset := start + h.offset
			_, body := p.Block.Extract(content, offset)
			method := newElement(name+"."+h.el.Name, store.TypeMethod, JavaScript, filePath, content, offset, body, nil)
			class.NestedElements = append(class.NestedElements, method)
			found = append(found, located{offset: offset, el: method})
		}
		found = append(found, located{offset: start, el: class})
	}

	return sortedElements(found)
}

// FindReferences implements Parser. Call forms and constructor forms are
// unioned.
func (p *JavaScriptParser) FindReferences(content string) map[string]struct{} {
	refs := make(map[string]struct{})
	addMatches(refs, jsCallRe, content, 1, jsKeywords)
	addMatches(refs, jsNewRe, content, 1, nil)
	return refs
}
