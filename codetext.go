package codetext

import (
	"context"
	"fmt"
	"os"
)

// ExtractCodeContext traces keyword through the source tree rooted at the
// working directory and returns the full report. Defaults are a 300 s
// timeout and depth 20; opts override them. A keyword that matches nothing
// is not an error: the report body says so.
func ExtractCodeContext(ctx context.Context, keyword string, opts ...Option) (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("codetext: working directory: %w", err)
	}
	return ExtractCodeContextIn(ctx, root, keyword, opts...)
}

// ExtractCodeContextIn is ExtractCodeContext for an explicit root.
func ExtractCodeContextIn(ctx context.Context, root, keyword string, opts ...Option) (string, error) {
	e, err := New(opts...)
	if err != nil {
		return "", err
	}
	defer e.Close()

	res, err := e.Extract(ctx, root, keyword)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}
