package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jward/codetext"
	"github.com/schollz/progressbar/v3"
)

// barProgress renders the file phase as a progress bar with styled status
// lines around it. Callbacks arrive from worker goroutines.
type barProgress struct {
	w io.Writer

	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	matched  int
	failures int
}

func newBarProgress(w io.Writer) *barProgress {
	return &barProgress{w: w}
}

func (p *barProgress) OnDiscoveryComplete(files int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, styles.Muted.Render(fmt.Sprintf("Found %d potentially relevant files", files)))
	if files == 0 {
		return
	}
	p.bar = progressbar.NewOptions(files,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Processing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.w)
		}),
	)
}

func (p *barProgress) OnPhase(phase string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch phase {
	case codetext.PhaseDiscovery:
		fmt.Fprintln(p.w, styles.Phase.Render("Discovering files..."))
	case codetext.PhaseTracing:
		fmt.Fprintln(p.w, styles.Phase.Render(fmt.Sprintf("Tracing logic chain (%d matching files, %d failed)...", p.matched, p.failures)))
	case codetext.PhaseDone:
		fmt.Fprintln(p.w, styles.Success.Render("Done"))
	}
}

func (p *barProgress) OnFileProcessed(processed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Set(processed)
	}
}

func (p *barProgress) OnFileMatched(path string, matches int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.matched++
}

func (p *barProgress) OnFileFailed(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures++
	if p.bar != nil {
		_ = p.bar.Clear()
	}
	fmt.Fprintln(p.w, styles.Warning.Render(fmt.Sprintf("skipped %s: %v", path, err)))
}
