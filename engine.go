package codetext

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jward/codetext/internal/config"
	"github.com/jward/codetext/internal/runtime"
	"github.com/jward/codetext/internal/store"
)

// Defaults for a new Engine.
const (
	DefaultTimeout       = 300 * time.Second
	DefaultMaxDepth      = 20
	DefaultProgressEvery = 5
	DefaultCacheSize     = 10_000
)

// Engine runs the codetext pipeline: file discovery, concurrent parsing
// into a shared symbol table, and logic-chain tracing. An Engine keeps the
// table of its most recent run and a parse cache across runs. Runs on one
// Engine must not overlap.
type Engine struct {
	timeout       time.Duration
	maxDepth      int
	fullDepth     int
	match         MatchPolicy
	workers       int
	progressEvery int
	cacheSize     int
	useGit        bool
	ignore        []string

	cancel   *CancelFlag
	logger   *slog.Logger
	progress ProgressReporter
	lister   Lister
	cache    *parseCache

	// Reference scripts. runtime is nil unless refScript is set.
	scriptsDir string
	scriptsFS  fs.FS
	refScript  string
	runtime    *runtime.Runtime

	mu    sync.Mutex
	table *store.Table
	stats Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds a whole run by wall-clock time. Zero disables the
// deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithMaxDepth sets the deepest level the tracer expands. Elements at that
// depth are returned without children; 0 yields the root alone.
func WithMaxDepth(n int) Option {
	return func(e *Engine) { e.maxDepth = n }
}

// WithFullDepth sets how many nested levels the report renders with full
// content.
func WithFullDepth(n int) Option {
	return func(e *Engine) { e.fullDepth = n }
}

// WithMatchPolicy selects how parsed elements are matched against the
// keyword during file processing.
func WithMatchPolicy(m MatchPolicy) Option {
	return func(e *Engine) { e.match = m }
}

// WithCancelFlag installs a cancellation flag checked by every file task
// and every trace step.
func WithCancelFlag(f *CancelFlag) Option {
	return func(e *Engine) { e.cancel = f }
}

// WithLogger sets the structured logger. Nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithProgress sets the progress sink.
func WithProgress(p ProgressReporter) Option {
	return func(e *Engine) { e.progress = p }
}

// WithWorkers caps concurrent file tasks. Zero or less means one per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithProgressEvery reports progress every n processed files.
func WithProgressEvery(n int) Option {
	return func(e *Engine) { e.progressEvery = n }
}

// WithCacheSize sizes the parse cache in files. Zero disables it.
func WithCacheSize(n int) Option {
	return func(e *Engine) { e.cacheSize = n }
}

// WithLister replaces the default DirLister.
func WithLister(l Lister) Option {
	return func(e *Engine) { e.lister = l }
}

// WithGit controls whether the default lister asks git for the file list.
func WithGit(useGit bool) Option {
	return func(e *Engine) { e.useGit = useGit }
}

// WithIgnore adds glob patterns the default lister skips.
func WithIgnore(patterns ...string) Option {
	return func(e *Engine) { e.ignore = append(e.ignore, patterns...) }
}

// WithReferenceScript enables a Risor script whose returned names are
// added to every reference set. The path is resolved against the scripts
// filesystem or directory.
func WithReferenceScript(path string) Option {
	return func(e *Engine) { e.refScript = path }
}

// WithScriptsFS loads reference scripts from fsys, typically the embedded
// scripts.FS.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) { e.scriptsFS = fsys }
}

// WithScriptsDir loads reference scripts from a directory on disk. It is
// ignored when WithScriptsFS is set.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) { e.scriptsDir = dir }
}

// WithConfig applies a loaded configuration. Options after it override
// individual settings.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		e.timeout = cfg.Trace.Timeout
		e.maxDepth = cfg.Trace.MaxDepth
		e.fullDepth = cfg.Trace.FullDepth
		if m, err := ParseMatchPolicy(cfg.Trace.MatchPolicy); err == nil {
			e.match = m
		}
		e.workers = cfg.Scan.Workers
		e.progressEvery = cfg.Scan.ProgressEvery
		e.useGit = cfg.Scan.UseGit
		e.ignore = append([]string(nil), cfg.Scan.Ignore...)
		e.cacheSize = cfg.Cache.Size
		e.refScript = cfg.Scripts.References
	}
}

// New creates an Engine. Without options it traces with a 300 s timeout,
// depth 20, substring matching, and a git-aware directory lister.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		timeout:       DefaultTimeout,
		maxDepth:      DefaultMaxDepth,
		fullDepth:     DefaultFullDepth,
		match:         MatchSubstring,
		progressEvery: DefaultProgressEvery,
		cacheSize:     DefaultCacheSize,
		useGit:        true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.progress == nil {
		e.progress = NoOpProgress{}
	}
	if e.progressEvery < 1 {
		e.progressEvery = 1
	}
	if e.lister == nil {
		l, err := NewDirLister(e.useGit, e.ignore...)
		if err != nil {
			return nil, err
		}
		e.lister = l
	}

	cache, err := newParseCache(e.cacheSize)
	if err != nil {
		return nil, err
	}
	e.cache = cache

	if e.refScript != "" {
		rtOpts := []runtime.RuntimeOption{runtime.WithLogger(e.logger)}
		if e.scriptsFS != nil {
			rtOpts = append(rtOpts, runtime.WithRuntimeFS(e.scriptsFS))
		}
		e.runtime = runtime.NewRuntime(e.scriptsDir, rtOpts...)
		if _, err := e.runtime.LoadScript(e.refScript); err != nil {
			e.cache.close()
			return nil, fmt.Errorf("codetext: load reference script: %w", err)
		}
	}
	return e, nil
}

// Close releases the parse cache.
func (e *Engine) Close() error {
	e.cache.close()
	return nil
}

// Table returns the symbol table of the most recent Scan, Extract or
// LoadSnapshot, or nil before the first one.
func (e *Engine) Table() *store.Table {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table
}

// Stats returns the statistics of the most recent file phase.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Engine) setTable(t *store.Table, s Stats) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table = t
	e.stats = s
}

// deadline returns the run deadline for a run started at start, or the
// zero time when no timeout is set.
func (e *Engine) deadline(start time.Time) time.Time {
	if e.timeout <= 0 {
		return time.Time{}
	}
	return start.Add(e.timeout)
}

// Extract runs the whole pipeline over root and traces keyword. A keyword
// that matches nothing is a successful Result whose Body is the not-found
// message. On cancellation or timeout during tracing the partial Result is
// returned along with ErrCancelled or ErrTimeout.
func (e *Engine) Extract(ctx context.Context, root, keyword string) (*Result, error) {
	start := time.Now()
	deadline := e.deadline(start)
	e.logger.Info("starting code context extraction", "keyword", keyword, "root", root)

	stats, err := e.scan(ctx, root, keyword)
	if err != nil {
		return nil, err
	}
	if err := abortCause(ctx, e.cancel, deadline); err != nil {
		return nil, err
	}

	return e.traceReport(ctx, keyword, start, deadline, stats)
}

// Scan discovers and parses every candidate file under root into a fresh
// symbol table without tracing. Elements matching keyword are linked to
// their references; an empty keyword links nothing.
func (e *Engine) Scan(ctx context.Context, root, keyword string) (Stats, error) {
	start := time.Now()
	stats, err := e.scan(ctx, root, keyword)
	if err != nil {
		return stats, err
	}
	if err := abortCause(ctx, e.cancel, e.deadline(start)); err != nil {
		return stats, err
	}
	return stats, nil
}

// Trace traces keyword against the table of the most recent Scan or
// LoadSnapshot.
func (e *Engine) Trace(ctx context.Context, keyword string) (*Result, error) {
	if e.Table() == nil {
		return nil, errors.New("codetext: no symbol table, run Scan or LoadSnapshot first")
	}
	start := time.Now()
	return e.traceReport(ctx, keyword, start, e.deadline(start), e.Stats())
}

func (e *Engine) traceReport(ctx context.Context, keyword string, start, deadline time.Time, stats Stats) (*Result, error) {
	e.progress.OnPhase(PhaseTracing)
	el, err := e.traceTable(ctx, e.Table(), keyword, deadline)
	stats.Duration = time.Since(start)
	res := &Result{
		Keyword:   keyword,
		Element:   el,
		Stats:     stats,
		fullDepth: e.fullDepth,
	}
	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, ErrTimeout) {
			res.Aborted = err
		}
		return res, err
	}
	if el == nil {
		e.logger.Info("element not found", "keyword", keyword)
	} else {
		e.logger.Info("found and traced element", "keyword", keyword, "name", el.Name, "duration", stats.Duration)
	}
	e.progress.OnPhase(PhaseDone)
	return res, nil
}

// scan lists and processes the files under root into a new table, which
// becomes the Engine's table once every file has been handled.
func (e *Engine) scan(ctx context.Context, root, keyword string) (Stats, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Stats{}, fmt.Errorf("codetext: resolve root: %w", err)
	}
	if info, err := os.Stat(abs); err != nil {
		return Stats{}, fmt.Errorf("codetext: %w", err)
	} else if !info.IsDir() {
		return Stats{}, fmt.Errorf("codetext: %s is not a directory", abs)
	}

	e.progress.OnPhase(PhaseDiscovery)
	paths, err := e.lister.ListFiles(abs)
	if err != nil {
		return Stats{}, fmt.Errorf("codetext: list files: %w", err)
	}
	e.progress.OnDiscoveryComplete(len(paths))
	e.logger.Info("found potentially relevant files", "files", len(paths))

	table := store.NewTable()
	e.progress.OnPhase(PhaseProcessing)
	ps, err := e.processFiles(ctx, table, keyword, paths)
	if err != nil {
		return Stats{}, err
	}

	n, err := table.Len()
	if err != nil {
		return Stats{}, poisoned(err)
	}
	stats := Stats{
		Root:           abs,
		FilesFound:     len(paths),
		FilesProcessed: ps.processed,
		FilesMatched:   len(ps.matchedFiles),
		MatchedFiles:   ps.matchedFiles,
		Elements:       n,
		Failures:       ps.failures,
		CacheHitRatio:  e.cache.hitRatio(),
	}
	e.logger.Info("symbol table built", "elements", n, "files", ps.processed, "failures", len(ps.failures))
	e.setTable(table, stats)
	return stats, nil
}
