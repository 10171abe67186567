package codetext

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jward/codetext/internal/store"
)

// processStats is the outcome of the file phase.
type processStats struct {
	processed    int
	matchedFiles []string
	failures     []*FileError
}

// processFiles runs processFile over paths on a bounded worker pool. Each
// task checks for cancellation on entry and becomes a no-op once it is
// set. Per-file failures are collected, not returned; only a poisoned
// table aborts the batch.
func (e *Engine) processFiles(ctx context.Context, table *store.Table, keyword string, paths []string) (processStats, error) {
	var (
		total     = len(paths)
		processed atomic.Int64

		mu       sync.Mutex
		matched  []string
		failures []*FileError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount(total))
	for _, path := range paths {
		g.Go(func() error {
			if abortCause(gctx, e.cancel, time.Time{}) != nil {
				return nil
			}

			found, err := e.processFile(gctx, table, path, keyword)
			if errors.Is(err, ErrTablePoisoned) {
				return err
			}
			if err != nil {
				var fe *FileError
				if !errors.As(err, &fe) {
					fe = &FileError{Path: path, Err: err}
				}
				mu.Lock()
				failures = append(failures, fe)
				mu.Unlock()
				e.logger.Warn("error processing file", "path", path, "error", fe.Err)
				e.progress.OnFileFailed(path, fe.Err)
			} else if len(found) > 0 {
				mu.Lock()
				matched = append(matched, path)
				mu.Unlock()
				e.logger.Debug("found relevant elements in file", "path", path, "matches", len(found))
				e.progress.OnFileMatched(path, len(found))
			}

			n := int(processed.Add(1))
			if n%e.progressEvery == 0 || n == total {
				e.progress.OnFileProcessed(n, total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return processStats{}, err
	}

	sort.Strings(matched)
	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	return processStats{
		processed:    int(processed.Load()),
		matchedFiles: matched,
		failures:     failures,
	}, nil
}

// workerCount returns the pool size for n files.
func (e *Engine) workerCount(n int) int {
	w := e.workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	return max(1, min(w, n))
}
