package lang

import "strings"

// DefaultMaxBlockLines bounds how far an indentation block may extend.
const DefaultMaxBlockLines = 1000

// BlockExtractor finds where a code unit ends. start is the byte offset of
// the unit's header; end is the exclusive byte offset of its last byte and
// block is content[start:end]. Extraction never fails: an unterminated block
// runs to the furthest point reached.
type BlockExtractor interface {
	Extract(content string, start int) (end int, block string)
}

// IndentBlock delimits blocks by indentation. The header opens a block at
// its own indentation; every following non-blank line deeper than an open
// block stays inside it, and a line at or left of the outermost open block
// ends the scan. Blank and comment-only lines are included only when more
// body follows, so trailing blank lines never belong to a block.
type IndentBlock struct {
	MaxLines int // 0 means DefaultMaxBlockLines
}

// Extract implements BlockExtractor.
func (b IndentBlock) Extract(content string, start int) (int, string) {
	maxLines := b.MaxLines
	if maxLines <= 0 {
		maxLines = DefaultMaxBlockLines
	}

	end := lineEnd(content, start)
	header := content[lineStart(content, start):end]
	open := []int{indentOf(header)}
	quote := tripleQuote(header, "")

	pos, lines := end, 1
	for pos < len(content) && lines < maxLines {
		next := pos + 1
		le := lineEnd(content, next)
		line := content[next:le]
		pos = le
		lines++

		inString := quote != ""
		quote = tripleQuote(line, quote)
		if inString {
			end = le
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		indent := indentOf(line)
		for len(open) > 0 && open[len(open)-1] >= indent {
			open = open[:len(open)-1]
		}
		if len(open) == 0 {
			break
		}
		if strings.HasSuffix(trimmed, ":") {
			open = append(open, indent)
		}
		end = le
	}
	return end, content[start:end]
}

// tripleQuote returns the triple-quote delimiter still open after line,
// given the one open before it ("" for none).
func tripleQuote(line, open string) string {
	for {
		if open != "" {
			i := strings.Index(line, open)
			if i < 0 {
				return open
			}
			line = line[i+3:]
			open = ""
			continue
		}
		d, s := strings.Index(line, `"""`), strings.Index(line, `'''`)
		switch {
		case d < 0 && s < 0:
			return ""
		case s < 0 || (d >= 0 && d < s):
			open, line = `"""`, line[d+3:]
		default:
			open, line = `'''`, line[s+3:]
		}
	}
}

// LineBraceBlock delimits blocks by counting braces per line, ignoring
// string literals. The block ends on the line that brings the depth back to
// zero. A declaration that reaches a line ending in ';' before any brace is
// a one-line block.
type LineBraceBlock struct{}

// Extract implements BlockExtractor.
func (LineBraceBlock) Extract(content string, start int) (int, string) {
	depth, seen := 0, false
	pos := start
	for {
		le := lineEnd(content, pos)
		line := content[pos:le]
		opens := strings.Count(line, "{")
		depth += opens - strings.Count(line, "}")
		if opens > 0 {
			seen = true
		}
		if seen && depth <= 0 {
			return le, content[start:le]
		}
		if !seen && strings.HasSuffix(strings.TrimSpace(line), ";") {
			return le, content[start:le]
		}
		if le >= len(content) {
			return le, content[start:le]
		}
		pos = le + 1
	}
}

// StringAwareBraceBlock delimits blocks by a character scan that tracks
// brace depth while skipping string literals (', ", `) with backslash
// escapes and // and /* */ comments. Braces inside a parameter list are
// ignored until the body opens. Before any body brace, a ';' at depth zero
// ends the block, as does the end of a line holding an arrow function's
// expression body.
type StringAwareBraceBlock struct{}

const (
	scanCode = iota
	scanSingle
	scanDouble
	scanTemplate
	scanLineComment
	scanBlockComment
)

// Extract implements BlockExtractor.
func (StringAwareBraceBlock) Extract(content string, start int) (int, string) {
	var (
		state     = scanCode
		depth     int
		parens    int
		seen      bool
		arrow     bool
		arrowBody bool
	)
	peek := func(i int) byte {
		if i+1 < len(content) {
			return content[i+1]
		}
		return 0
	}

	for i := start; i < len(content); i++ {
		c := content[i]
		switch state {
		case scanSingle, scanDouble, scanTemplate:
			switch {
			case c == '\\':
				i++
			case state == scanSingle && c == '\'',
				state == scanDouble && c == '"',
				state == scanTemplate && c == '`':
				state = scanCode
			case c == '\n' && state != scanTemplate:
				state = scanCode
			}
			continue
		case scanBlockComment:
			if c == '*' && peek(i) == '/' {
				state = scanCode
				i++
			}
			continue
		case scanLineComment:
			if c != '\n' {
				continue
			}
			state = scanCode
		}

		if arrow && !seen {
			switch {
			case c == ' ', c == '\t', c == '\r', c == '\n', c == '{':
			case c == '/' && (peek(i) == '/' || peek(i) == '*'):
			default:
				arrowBody = true
			}
		}

		switch c {
		case '\'':
			state = scanSingle
		case '"':
			state = scanDouble
		case '`':
			state = scanTemplate
		case '/':
			switch peek(i) {
			case '/':
				state = scanLineComment
				i++
			case '*':
				state = scanBlockComment
				i++
			}
		case '(':
			parens++
		case ')':
			parens--
		case '{':
			if seen || parens <= 0 {
				depth++
				seen = true
			}
		case '}':
			if !seen {
				continue
			}
			depth--
			if depth == 0 {
				return i + 1, content[start : i+1]
			}
		case ';':
			if !seen && parens <= 0 {
				return i + 1, content[start : i+1]
			}
		case '=':
			if !seen && peek(i) == '>' {
				arrow, arrowBody = true, false
				i++
			}
		case '\n':
			if arrow && arrowBody && !seen && parens <= 0 {
				return i, content[start:i]
			}
		}
	}
	return len(content), content[start:]
}
