package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrPoisoned is returned by every Table operation once a critical section
// has panicked. The map may be half-written at that point, so the table
// refuses further use.
var ErrPoisoned = errors.New("symbol table poisoned by an earlier panic")

// Table is the shared symbol table: element name to the most recently
// inserted element with that name. All access goes through Update or View,
// which serialize on a single mutex.
type Table struct {
	mu       sync.Mutex
	elements map[string]*CodeElement
	poisoned bool
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{elements: make(map[string]*CodeElement)}
}

// Update runs fn with exclusive access to the table. A panic inside fn
// poisons the table and is reported as ErrPoisoned.
func (t *Table) Update(fn func(tx *Tx) error) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.poisoned {
		return ErrPoisoned
	}
	defer func() {
		if r := recover(); r != nil {
			t.poisoned = true
			err = fmt.Errorf("%w: %v", ErrPoisoned, r)
		}
	}()
	return fn(&Tx{t: t})
}

// View runs fn with exclusive access for reading. Lookups are serialized
// with inserts; the tracer holds the lock for the whole trace.
func (t *Table) View(fn func(tx *Tx) error) error {
	return t.Update(fn)
}

// Commit inserts every element of a per-file batch in one critical
// section, including class-nested methods.
func (t *Table) Commit(b *Batch) error {
	return t.Update(func(tx *Tx) error {
		for _, el := range b.Elements() {
			tx.Insert(el)
		}
		return nil
	})
}

// Len returns the number of distinct names.
func (t *Table) Len() (int, error) {
	var n int
	err := t.View(func(tx *Tx) error {
		n = len(tx.t.elements)
		return nil
	})
	return n, err
}

// Snapshot returns clones of all elements sorted by name.
func (t *Table) Snapshot() ([]*CodeElement, error) {
	var out []*CodeElement
	err := t.View(func(tx *Tx) error {
		for _, name := range tx.Names() {
			out = append(out, tx.t.elements[name].Clone())
		}
		return nil
	})
	return out, err
}

// Tx is the handle passed to Update and View callbacks. It must not be
// retained after the callback returns.
type Tx struct {
	t *Table
}

// Insert stores el under its name, replacing any earlier element with the
// same name. Nested methods of classes and impl blocks are inserted too.
func (tx *Tx) Insert(el *CodeElement) {
	tx.t.elements[el.Name] = el
	if el.ElementType == TypeClass || el.ElementType == TypeImpl {
		for _, m := range el.NestedElements {
			if m.ElementType == TypeMethod {
				tx.t.elements[m.Name] = m
			}
		}
	}
}

// Put stores el under its name without touching nested methods.
func (tx *Tx) Put(el *CodeElement) {
	tx.t.elements[el.Name] = el
}

// Get looks up an element by exact name.
func (tx *Tx) Get(name string) (*CodeElement, bool) {
	el, ok := tx.t.elements[name]
	return el, ok
}

// Names returns all names in lexicographic order.
func (tx *Tx) Names() []string {
	names := make([]string, 0, len(tx.t.elements))
	for name := range tx.t.elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct names.
func (tx *Tx) Len() int {
	return len(tx.t.elements)
}
