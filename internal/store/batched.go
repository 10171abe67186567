package store

import "sync"

// Batch buffers the elements parsed from one file so that parsing happens
// outside the table lock. Table.Commit drains it in a single critical
// section.
//
// Thread safety: the mutex protects appends; a Batch is normally owned by a
// single worker.
type Batch struct {
	Path string

	mu       sync.Mutex
	elements []*CodeElement
}

// NewBatch creates an empty batch for path.
func NewBatch(path string) *Batch {
	return &Batch{Path: path}
}

// Add appends parsed elements to the batch.
func (b *Batch) Add(els ...*CodeElement) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.elements = append(b.elements, els...)
}

// Elements returns the buffered elements in insertion order.
func (b *Batch) Elements() []*CodeElement {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*CodeElement, len(b.elements))
	copy(out, b.elements)
	return out
}

// Len returns the number of buffered top-level elements.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.elements)
}
