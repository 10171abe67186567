package codetext

import "github.com/jward/codetext/internal/store"

// Public type aliases for internal store types used in the Engine API.
// These are Go type aliases (=), identical to the internal types at compile
// time, so no conversion is needed.

type CodeElement = store.CodeElement
type Table = store.Table
type Store = store.Store
type Run = store.Run

// Element type tags.
const (
	TypeFunction      = store.TypeFunction
	TypeMethod        = store.TypeMethod
	TypeClass         = store.TypeClass
	TypeStruct        = store.TypeStruct
	TypeImpl          = store.TypeImpl
	TypeArrowFunction = store.TypeArrowFunction
)
