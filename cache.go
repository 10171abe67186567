package codetext

import (
	"fmt"

	"github.com/maypok86/otter"

	"github.com/jward/codetext/internal/store"
)

// parseCache remembers the elements parsed from a file, keyed by language,
// path and content hash, so a long-lived Engine does not re-parse unchanged
// files across runs. A nil *parseCache is a valid, disabled cache.
type parseCache struct {
	c otter.Cache[string, []*store.CodeElement]
}

// newParseCache returns a cache holding up to size files, or nil when size
// is not positive.
func newParseCache(size int) (*parseCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := otter.MustBuilder[string, []*store.CodeElement](size).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("codetext: build parse cache: %w", err)
	}
	return &parseCache{c: c}, nil
}

// get returns deep copies of the cached elements so callers may mutate them.
func (p *parseCache) get(key string) ([]*store.CodeElement, bool) {
	if p == nil {
		return nil, false
	}
	els, ok := p.c.Get(key)
	if !ok {
		return nil, false
	}
	return cloneElements(els), true
}

func (p *parseCache) set(key string, els []*store.CodeElement) {
	if p == nil {
		return
	}
	p.c.Set(key, cloneElements(els))
}

// hitRatio reports the share of lookups served from the cache.
func (p *parseCache) hitRatio() float64 {
	if p == nil {
		return 0
	}
	return p.c.Stats().Ratio()
}

func (p *parseCache) close() {
	if p != nil {
		p.c.Close()
	}
}

// cloneElements deep-copies a parse result. Methods appear both nested in
// their owner and at top level; the copies keep that sharing.
func cloneElements(els []*store.CodeElement) []*store.CodeElement {
	copies := make(map[*store.CodeElement]*store.CodeElement)
	var clone func(el *store.CodeElement) *store.CodeElement
	clone = func(el *store.CodeElement) *store.CodeElement {
		if c, ok := copies[el]; ok {
			return c
		}
		c := el.ShallowClone()
		copies[el] = c
		for _, n := range el.NestedElements {
			c.NestedElements = append(c.NestedElements, clone(n))
		}
		return c
	}
	out := make([]*store.CodeElement, len(els))
	for i, el := range els {
		out[i] = clone(el)
	}
	return out
}
