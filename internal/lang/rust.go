package lang

import (
	"regexp"

	"github.com/jward/codetext/internal/store"
)

var (
	rsFnRe     = regexp.MustCompile(`(?m)^(?:pub(?:\([^)]*\))?\s+)?(?:const\s+)?(?:async\s+)?(?:unsafe\s+)?(?:extern\s+"[^"]*"\s+)?fn\s+(\w+)`)
	rsStructRe = regexp.MustCompile(`(?m)^(?:pub(?:\([^)]*\))?\s+)?struct\s+(\w+)`)
	rsImplRe   = regexp.MustCompile(`(?m)^(?:unsafe\s+)?impl(?:<(?:[^<>]|<[^<>]*>)*>)?\s+(?:[\w:]+(?:<(?:[^<>]|<[^<>]*>)*>)?\s+for\s+)?(\w+)`)
	rsMethodRe = regexp.MustCompile(`(?m)^([ \t]+)(?:pub(?:\([^)]*\))?\s+)?(?:const\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+(\w+)`)
	rsUseRe    = regexp.MustCompile(`(?m)^(?:pub\s+)?use\s+[^;]+;`)

	rsCallRe      = regexp.MustCompile(`\b(\w+)\s*\(`)
	rsStructLitRe = regexp.MustCompile(`\b(\w+)\s*\{`)
	rsPathCallRe  = regexp.MustCompile(`\b(\w+)::(\w+)\s*\(`)

	rsKeywords = keywordSet("if", "else", "while", "for", "loop", "match", "return", "fn",
		"impl", "struct", "enum", "trait", "mod", "unsafe", "move", "in", "where", "as", "let", "mut")
)

// RustParser parses Rust source. Column-0 fn, struct, and impl headers
// become elements. An impl block is named after its implementing type and
// its fn members become "Type.method" elements nested under it.
type RustParser struct {
	Block BlockExtractor
}

// NewRustParser returns a parser using line-based brace blocks.
func NewRustParser() *RustParser {
	return &RustParser{Block: LineBraceBlock{}}
}

// Parse implements Parser.
func (p *RustParser) Parse(content, filePath string) []*store.CodeElement {
	imports := collectStatements(rsUseRe, content)
	var found []located

	add := func(re *regexp.Regexp, typ string) {
		for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
			start, name := m[0], content[m[2]:m[3]]
			_, block := p.Block.Extract(content, start)
			found = append(found, located{offset: start, el: newElement(name, typ, Rust, filePath, content, start, block, imports)})
		}
	}
	add(rsFnRe, store.TypeFunction)
	add(rsStructRe, store.TypeStruct)

	for _, m := range rsImplRe.FindAllStringSubmatchIndex(content, -1) {
		start, name := m[0], content[m[2]:m[3]]
		_, block := p.Block.Extract(content, start)
		impl := newElement(name, store.TypeImpl, Rust, filePath, content, start, block, imports)

		for _, h := range memberHeaders(rsMethodRe, block, bodyIndent(block, "//"), nil) {
			offset := start + h.offset
			_, body := p.Block.Extract(content, offset)
			method := newElement(name+"."+h.el.Name, store.TypeMethod, Rust, filePath, content, offset, body, nil)
			impl.NestedElements = append(impl.NestedElements, method)
			found = append(found, located{offset: offset, el: method})
		}
		found = append(found, located{offset: start, el: impl})
	}

	return sortedElements(found)
}

// FindReferences implements Parser. Call forms and struct-literal forms are
// unioned; Type::member(...) calls also yield "Type.member".
func (p *RustParser) FindReferences(content string) map[string]struct{} {
	refs := make(map[string]struct{})
	addMatches(refs, rsCallRe, content, 1, rsKeywords)
	addMatches(refs, rsStructLitRe, content, 1, rsKeywords)
	for _, m := range rsPathCallRe.FindAllStringSubmatch(content, -1) {
		refs[m[1]+"."+m[2]] = struct{}{}
	}
	return refs
}
