package lang

import "strings"

// lineOf returns the 1-based line number of byte offset in content.
func lineOf(content string, offset int) int {
	return 1 + strings.Count(content[:offset], "\n")
}

// lineSpan returns the 1-based start and end lines of a block beginning at
// offset. A block never ends before it starts.
func lineSpan(content string, offset int, block string) (int, int) {
	start := lineOf(content, offset)
	return start, start + strings.Count(strings.TrimRight(block, "\n"), "\n")
}

// lineStart returns the offset of the first byte of the line holding offset.
func lineStart(content string, offset int) int {
	return strings.LastIndexByte(content[:offset], '\n') + 1
}

// lineEnd returns the offset of the newline terminating the line holding
// offset, or len(content) on the last line.
func lineEnd(content string, offset int) int {
	if i := strings.IndexByte(content[offset:], '\n'); i >= 0 {
		return offset + i
	}
	return len(content)
}

// indentOf returns the number of leading spaces and tabs in line.
func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
