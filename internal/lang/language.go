// Package lang holds the per-language heuristics: extension-based language
// detection, block extractors that find where a code unit ends, and regex
// parsers that segment a file into code elements and collect references.
package lang

import (
	"path/filepath"
	"strings"
)

// Language is the closed set of source language families the engine parses.
type Language int

const (
	Python Language = iota
	Rust
	JavaScript
)

// String returns the display name recorded on parsed elements.
func (l Language) String() string {
	switch l {
	case Python:
		return "Python"
	case Rust:
		return "Rust"
	case JavaScript:
		return "JavaScript"
	default:
		return "Unknown"
	}
}

// extToLanguage maps file extensions to language families.
var extToLanguage = map[string]Language{
	".py":  Python,
	".rs":  Rust,
	".js":  JavaScript,
	".jsx": JavaScript,
	".ts":  JavaScript,
	".tsx": JavaScript,
	".mjs": JavaScript,
}

// ForFile returns the language for a path based on its extension. Unknown
// extensions fall back to Python; callers filter with Supported first.
func ForFile(path string) Language {
	if l, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]; ok {
		return l
	}
	return Python
}

// Supported reports whether path has an extension the engine parses.
func Supported(path string) bool {
	_, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Parse returns the language with the given display name, case-insensitive.
func Parse(name string) (Language, bool) {
	for _, l := range All() {
		if strings.EqualFold(l.String(), name) {
			return l, true
		}
	}
	return 0, false
}

// All returns every supported language.
func All() []Language {
	return []Language{Python, Rust, JavaScript}
}
