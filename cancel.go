package codetext

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync/atomic"
)

// CancelFlag is a cooperative cancellation signal shared by every worker
// and the tracer. Any goroutine may set it; the engine only reads it. A nil
// flag is never cancelled.
type CancelFlag struct {
	set atomic.Bool
}

// NewCancelFlag returns an unset flag.
func NewCancelFlag() *CancelFlag {
	return &CancelFlag{}
}

// Cancel sets the flag. It is safe to call more than once.
func (f *CancelFlag) Cancel() {
	if f != nil {
		f.set.Store(true)
	}
}

// IsCancelled reports whether Cancel has been called.
func (f *CancelFlag) IsCancelled() bool {
	return f != nil && f.set.Load()
}

// QuitCommand is the input line that ListenForQuit treats as a cancel
// request.
const QuitCommand = "q"

// ListenForQuit reads lines from r and sets flag when a line equal to
// QuitCommand arrives. It returns true if it cancelled, false when r is
// exhausted or ctx is done first. The reading goroutine may outlive the
// call while blocked in r.
func ListenForQuit(ctx context.Context, r io.Reader, flag *CancelFlag) bool {
	quit := make(chan bool, 1)
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) == QuitCommand {
				quit <- true
				return
			}
		}
		quit <- false
	}()

	select {
	case q := <-quit:
		if q {
			flag.Cancel()
		}
		return q
	case <-ctx.Done():
		return false
	}
}
