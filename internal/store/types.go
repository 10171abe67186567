package store

import "time"

// Element type tags.
const (
	TypeFunction      = "function"
	TypeMethod        = "method"
	TypeClass         = "class"
	TypeStruct        = "struct"
	TypeImpl          = "impl"
	TypeArrowFunction = "arrow_function"
)

// CodeElement is a named, bounded unit of source text. Methods nested in a
// class or impl block carry a composite "Owner.method" name.
type CodeElement struct {
	Name           string
	ElementType    string
	Content        string
	FilePath       string
	Language       string
	StartLine      int // 1-based
	EndLine        int // 1-based, inclusive
	Imports        []string
	NestedElements []*CodeElement
}

// Clone returns a deep copy of the element and its nested elements.
func (e *CodeElement) Clone() *CodeElement {
	if e == nil {
		return nil
	}
	c := *e
	if e.Imports != nil {
		c.Imports = append([]string(nil), e.Imports...)
	}
	if e.NestedElements != nil {
		c.NestedElements = make([]*CodeElement, len(e.NestedElements))
		for i, n := range e.NestedElements {
			c.NestedElements[i] = n.Clone()
		}
	}
	return &c
}

// ShallowClone copies the element with an empty nested list. Tracing
// rebuilds the nested list on such a copy.
func (e *CodeElement) ShallowClone() *CodeElement {
	c := *e
	if e.Imports != nil {
		c.Imports = append([]string(nil), e.Imports...)
	}
	c.NestedElements = nil
	return &c
}

// Owner returns the "Owner" part of an "Owner.method" name, or "" for
// top-level elements.
func (e *CodeElement) Owner() string {
	if e.ElementType != TypeMethod {
		return ""
	}
	for i := len(e.Name) - 1; i >= 0; i-- {
		if e.Name[i] == '.' {
			return e.Name[:i]
		}
	}
	return ""
}

// Run describes one persisted snapshot of a symbol table.
type Run struct {
	ID           string
	Root         string
	ElementCount int
	CreatedAt    time.Time
}
