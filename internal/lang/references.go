package lang

import "regexp"

var (
	genericCallRe = regexp.MustCompile(`((?:\w+\.)*\w+)\s*\(`)
	genericAttrRe = regexp.MustCompile(`(\w+)\.(\w+)`)
)

// GenericReferences returns the language-neutral reference forms found in
// content: every call target, with dotted receiver chains kept whole, and
// the attribute name of every a.b access. The tracer unions these with a
// parser's own references.
func GenericReferences(content string) map[string]struct{} {
	refs := make(map[string]struct{})
	for _, m := range genericCallRe.FindAllStringSubmatch(content, -1) {
		refs[m[1]] = struct{}{}
	}
	for _, m := range genericAttrRe.FindAllStringSubmatch(content, -1) {
		refs[m[2]] = struct{}{}
	}
	return refs
}

// addMatches adds group of every match of re to refs unless it is in skip.
func addMatches(refs map[string]struct{}, re *regexp.Regexp, content string, group int, skip map[string]bool) {
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		if !skip[m[group]] {
			refs[m[group]] = struct{}{}
		}
	}
}

// Union returns a new set holding every name of each set.
func Union(sets ...map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range sets {
		for k := range s {
			out[k] = struct{}{}
		}
	}
	return out
}

func keywordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
