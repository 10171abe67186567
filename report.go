package codetext

import (
	"fmt"
	"strings"
	"time"

	"github.com/jward/codetext/internal/store"
)

// Stats summarizes the file phase of a run.
type Stats struct {
	Root           string
	FilesFound     int
	FilesProcessed int
	FilesMatched   int
	MatchedFiles   []string // sorted paths of files with keyword matches
	Elements       int
	Failures       []*FileError
	Duration       time.Duration
	CacheHitRatio  float64
}

// Result is the outcome of one extraction: the traced tree, or nil when
// the keyword matched nothing, plus run statistics. Aborted holds
// ErrCancelled or ErrTimeout when the trace stopped early; Element is then
// the partial tree, possibly nil.
type Result struct {
	Keyword string
	Element *store.CodeElement
	Stats   Stats
	Aborted error

	fullDepth int
}

// Found reports whether the keyword matched an element.
func (r *Result) Found() bool {
	return r.Element != nil
}

// Header returns the run summary that precedes the body.
func (r *Result) Header() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Searching for '%s' in directory: %s\n\n", r.Keyword, r.Stats.Root)
	fmt.Fprintf(&b, "Found %d potentially relevant files\n\n", r.Stats.FilesFound)
	for _, p := range r.Stats.MatchedFiles {
		fmt.Fprintf(&b, "Found relevant elements in file: %s\n", p)
	}
	fmt.Fprintf(&b, "Analysis completed in %s\n\n", r.Stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Files processed: %d\n\n", r.Stats.FilesProcessed)
	return b.String()
}

// Body returns the traced tree, or the not-found message. An aborted
// trace never reports not found: it renders the partial tree followed by
// the abort line, or the abort line alone.
func (r *Result) Body() string {
	if r.Element == nil {
		if r.Aborted != nil {
			return AbortedMessage(r.Keyword, r.Aborted)
		}
		return NotFoundMessage(r.Keyword)
	}
	body := fmt.Sprintf("Found and traced element: %s\n\n", r.Keyword) + FormatElement(r.Element, r.fullDepth)
	if r.Aborted != nil {
		body += "\n" + AbortedMessage(r.Keyword, r.Aborted)
	}
	return body
}

// String returns the full report.
func (r *Result) String() string {
	return r.Header() + r.Body()
}

// NotFoundMessage is the report body for a keyword that matches nothing.
func NotFoundMessage(keyword string) string {
	return fmt.Sprintf("Element '%s' not found in the codebase.\n", keyword)
}

// AbortedMessage is the report line for a trace stopped by err.
func AbortedMessage(keyword string, err error) string {
	return fmt.Sprintf("Tracing '%s' stopped early: %v\n", keyword, err)
}
