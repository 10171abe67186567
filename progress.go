package codetext

import "log/slog"

// Phase names passed to ProgressReporter.OnPhase.
const (
	PhaseDiscovery  = "discovery"
	PhaseProcessing = "processing"
	PhaseTracing    = "tracing"
	PhaseDone       = "done"
)

// ProgressReporter observes a run. It is purely informational; the engine
// never consumes anything from it. Implementations must be safe for
// concurrent use because file callbacks arrive from worker goroutines.
type ProgressReporter interface {
	// OnDiscoveryComplete is called once with the number of candidate files.
	OnDiscoveryComplete(files int)
	// OnPhase is called when the run enters a new phase.
	OnPhase(phase string)
	// OnFileProcessed is called every Nth processed file and on completion.
	OnFileProcessed(processed, total int)
	// OnFileMatched is called for a file with elements matching the keyword.
	OnFileMatched(path string, matches int)
	// OnFileFailed is called for a file that could not be processed.
	OnFileFailed(path string, err error)
}

// NoOpProgress discards all progress.
type NoOpProgress struct{}

func (NoOpProgress) OnDiscoveryComplete(int)    {}
func (NoOpProgress) OnPhase(string)             {}
func (NoOpProgress) OnFileProcessed(int, int)   {}
func (NoOpProgress) OnFileMatched(string, int)  {}
func (NoOpProgress) OnFileFailed(string, error) {}

// LogProgress writes progress as structured log records.
type LogProgress struct {
	Logger *slog.Logger
}

// NewLogProgress returns a reporter writing to logger, or slog.Default when
// logger is nil.
func NewLogProgress(logger *slog.Logger) *LogProgress {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgress{Logger: logger}
}

func (p *LogProgress) OnDiscoveryComplete(files int) {
	p.Logger.Info("found potentially relevant files", "files", files)
}

func (p *LogProgress) OnPhase(phase string) {
	p.Logger.Info("phase", "phase", phase)
}

func (p *LogProgress) OnFileProcessed(processed, total int) {
	p.Logger.Info("processed files", "processed", processed, "total", total)
}

func (p *LogProgress) OnFileMatched(path string, matches int) {
	p.Logger.Info("found relevant elements in file", "path", path, "matches", matches)
}

func (p *LogProgress) OnFileFailed(path string, err error) {
	p.Logger.Warn("error processing file", "path", path, "error", err)
}
