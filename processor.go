package codetext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jward/codetext/internal/lang"
	"github.com/jward/codetext/internal/store"
)

// MatchPolicy decides which parsed elements count as keyword matches while
// files are processed.
type MatchPolicy string

const (
	MatchSubstring MatchPolicy = "substring"
	MatchExact     MatchPolicy = "exact"
	MatchPrefix    MatchPolicy = "prefix"
)

// ParseMatchPolicy converts a configuration value to a MatchPolicy. The
// empty string selects MatchSubstring.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(s)) {
	case "", MatchSubstring:
		return MatchSubstring, nil
	case MatchExact:
		return MatchExact, nil
	case MatchPrefix:
		return MatchPrefix, nil
	}
	return "", fmt.Errorf("codetext: unknown match policy %q", s)
}

// Matches reports whether name matches keyword. An empty keyword matches
// nothing.
func (m MatchPolicy) Matches(name, keyword string) bool {
	if keyword == "" {
		return false
	}
	switch m {
	case MatchExact:
		return name == keyword
	case MatchPrefix:
		return strings.HasPrefix(name, keyword)
	default:
		return strings.Contains(name, keyword)
	}
}

// processFile parses one file into table and returns the elements matching
// keyword, each carrying one level of resolved references. Unsupported
// files yield nothing. Read failures come back as *FileError; a poisoned
// table as ErrTablePoisoned.
func (e *Engine) processFile(ctx context.Context, table *store.Table, path, keyword string) ([]*store.CodeElement, error) {
	if !lang.Supported(path) {
		e.logger.Debug("skipping file with unsupported extension", "path", path)
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	l := lang.ForFile(path)
	parser := e.parserFor(ctx, l)

	// Parse outside the lock.
	batch := store.NewBatch(path)
	batch.Add(e.parse(parser, l, path, content)...)

	var matched []*store.CodeElement
	err = table.Update(func(tx *store.Tx) error {
		elements := batch.Elements()
		for _, el := range elements {
			tx.Insert(el)
		}
		for _, el := range elements {
			if !e.match.Matches(el.Name, keyword) {
				continue
			}
			linked := linkReferences(tx, el, parser.FindReferences(el.Content))
			tx.Put(linked)
			matched = append(matched, linked)
		}
		return nil
	})
	if err != nil {
		return nil, poisoned(err)
	}
	return matched, nil
}

// parse runs parser over content, going through the parse cache.
func (e *Engine) parse(parser lang.Parser, l lang.Language, path string, content []byte) []*store.CodeElement {
	key := store.CacheKey(l.String(), path, content)
	if els, ok := e.cache.get(key); ok {
		return els
	}
	els := parser.Parse(string(content), path)
	e.cache.set(key, els)
	return els
}

// linkReferences returns a copy of el with a one-level copy of every
// referenced element found in the table appended to its nested elements.
func linkReferences(tx *store.Tx, el *store.CodeElement, refs map[string]struct{}) *store.CodeElement {
	linked := el.Clone()
	seen := map[string]bool{el.Name: true}
	for _, n := range el.NestedElements {
		seen[n.Name] = true
	}
	for _, ref := range sortedRefs(refs) {
		target, ok := resolveReference(tx, el, ref)
		if !ok || seen[target.Name] {
			continue
		}
		seen[target.Name] = true
		linked.NestedElements = append(linked.NestedElements, target.ShallowClone())
	}
	return linked
}

func sortedRefs(refs map[string]struct{}) []string {
	out := make([]string, 0, len(refs))
	for r := range refs {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// poisoned maps a table failure to ErrTablePoisoned.
func poisoned(err error) error {
	if errors.Is(err, store.ErrPoisoned) {
		return fmt.Errorf("%w: %w", ErrTablePoisoned, err)
	}
	return err
}
