package store

import (
	"encoding/json"
	"strings"
)

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// stringsToArgs converts []string to []any for use with database/sql.
func stringsToArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

// marshalImports converts []string to JSON text for storage.
func marshalImports(imports []string) string {
	if len(imports) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(imports)
	return string(b)
}

// unmarshalImports converts JSON text back to []string. An empty list
// decodes to nil so round-tripped elements compare equal to parsed ones.
func unmarshalImports(s string) []string {
	if s == "" || s == "null" || s == "[]" {
		return nil
	}
	var imports []string
	_ = json.Unmarshal([]byte(s), &imports)
	return imports
}
