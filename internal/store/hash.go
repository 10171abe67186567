package store

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash returns the hex SHA-256 of a file's content. Two reads of an
// unchanged file hash identically, which lets callers skip re-parsing.
func ContentHash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// CacheKey identifies a parse result by language, path, and content hash.
// The path is part of the key because parsed elements record it.
func CacheKey(language, path string, content []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "language:%s\n", language)
	fmt.Fprintf(h, "path:%s\n", path)
	fmt.Fprintf(h, "content:%s\n", ContentHash(content))
	return fmt.Sprintf("%x", h.Sum(nil))
}
