package main

import (
	"time"

	"github.com/jward/codetext"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIElement is a JSON-friendly traced element. Lines are 1-based.
type CLIElement struct {
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	File      string       `json:"file"`
	Language  string       `json:"language"`
	StartLine int          `json:"start_line"`
	EndLine   int          `json:"end_line"`
	Imports   []string     `json:"imports,omitempty"`
	Content   string       `json:"content"`
	Nested    []CLIElement `json:"nested,omitempty"`
}

// CLIFailure is a file that could not be processed.
type CLIFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// CLITrace is the JSON form of a trace report.
type CLITrace struct {
	Keyword        string       `json:"keyword"`
	Root           string       `json:"root"`
	Found          bool         `json:"found"`
	FilesFound     int          `json:"files_found"`
	FilesProcessed int          `json:"files_processed"`
	FilesMatched   int          `json:"files_matched"`
	MatchedFiles   []string     `json:"matched_files,omitempty"`
	Elements       int          `json:"elements"`
	DurationMS     int64        `json:"duration_ms"`
	Element        *CLIElement  `json:"element,omitempty"`
	Failures       []CLIFailure `json:"failures,omitempty"`
	Aborted        string       `json:"aborted,omitempty"`
}

// CLISymbol is a JSON-friendly symbol table entry.
type CLISymbol struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Language  string `json:"language"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Nested    int    `json:"nested"`
}

// CLIRun is a JSON-friendly snapshot run.
type CLIRun struct {
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	Elements  int       `json:"elements"`
	CreatedAt time.Time `json:"created_at"`
}

func toCLIElement(el *codetext.CodeElement) CLIElement {
	out := CLIElement{
		Name:      el.Name,
		Type:      el.ElementType,
		File:      el.FilePath,
		Language:  el.Language,
		StartLine: el.StartLine,
		EndLine:   el.EndLine,
		Imports:   el.Imports,
		Content:   el.Content,
	}
	for _, n := range el.NestedElements {
		out.Nested = append(out.Nested, toCLIElement(n))
	}
	return out
}

func toCLITrace(res *codetext.Result) CLITrace {
	out := CLITrace{
		Keyword:        res.Keyword,
		Root:           res.Stats.Root,
		Found:          res.Found(),
		FilesFound:     res.Stats.FilesFound,
		FilesProcessed: res.Stats.FilesProcessed,
		FilesMatched:   res.Stats.FilesMatched,
		MatchedFiles:   res.Stats.MatchedFiles,
		Elements:       res.Stats.Elements,
		DurationMS:     res.Stats.Duration.Milliseconds(),
	}
	if res.Aborted != nil {
		out.Aborted = res.Aborted.Error()
	}
	if res.Element != nil {
		el := toCLIElement(res.Element)
		out.Element = &el
	}
	for _, f := range res.Stats.Failures {
		out.Failures = append(out.Failures, CLIFailure{File: f.Path, Error: f.Err.Error()})
	}
	return out
}

func toCLISymbol(el *codetext.CodeElement) CLISymbol {
	return CLISymbol{
		Name:      el.Name,
		Type:      el.ElementType,
		Language:  el.Language,
		File:      el.FilePath,
		StartLine: el.StartLine,
		EndLine:   el.EndLine,
		Nested:    len(el.NestedElements),
	}
}

func toCLIRun(r *codetext.Run) CLIRun {
	return CLIRun{
		ID:        r.ID,
		Root:      r.Root,
		Elements:  r.ElementCount,
		CreatedAt: r.CreatedAt,
	}
}
