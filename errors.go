package codetext

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Fatal conditions. Each aborts the whole operation and is distinct from a
// keyword that matches nothing, which is reported in the result text.
var (
	ErrCancelled     = errors.New("codetext: operation cancelled")
	ErrTimeout       = errors.New("codetext: operation timed out")
	ErrTablePoisoned = errors.New("codetext: symbol table poisoned")
)

// FileError records a file that could not be processed. File errors are
// collected per run and never abort it.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("codetext: %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// abortCause reports why work should stop, or nil to keep going. The
// cancel flag wins over the context, and the context over the deadline.
func abortCause(ctx context.Context, flag *CancelFlag, deadline time.Time) error {
	if flag.IsCancelled() {
		return ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrCancelled
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		return ErrTimeout
	}
	return nil
}
