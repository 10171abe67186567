// Package codetext extracts a semantic slice of a multi-language source
// tree around a keyword. It finds the function, method, class, struct or
// impl block the keyword names, then follows that element's references
// through the rest of the tree to build a bounded logic chain, rendered as
// an indented plain-text report for downstream tools such as LLM prompts.
//
// # Pipeline
//
//  1. Discover: a [Lister] enumerates candidate files, skipping hidden
//     entries, dependency and build directories, and ignore globs.
//
//  2. Process: a worker pool parses each Python, Rust or JavaScript file
//     with regex heuristics into code elements and merges them into one
//     shared symbol table. Duplicate names are last-write-wins.
//
//  3. Trace: the root element is found by exact name, then "Owner.keyword"
//     suffix, then substring. Its references are expanded recursively,
//     bounded by depth, a wall-clock deadline, a visited set and a
//     cooperative [CancelFlag].
//
//  4. Format: [FormatElement] renders the traced tree.
//
// # Usage
//
//	report, err := codetext.ExtractCodeContext(ctx, "handle_request",
//		codetext.WithTimeout(time.Minute),
//		codetext.WithMaxDepth(5),
//	)
//
// For repeated runs, keep an [Engine]; its parse cache skips unchanged
// files. [Engine.SaveSnapshot] and [Engine.LoadSnapshot] persist the symbol
// table to SQLite so later traces can skip parsing.
//
// # Errors
//
// A keyword that matches nothing is a normal result. [ErrCancelled],
// [ErrTimeout] and [ErrTablePoisoned] abort a run. Unreadable files are
// reported as [FileError] values in [Stats] and never abort it.
package codetext
