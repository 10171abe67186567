package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidTimeout indicates a non-positive trace timeout
	ErrInvalidTimeout = errors.New("invalid trace timeout")

	// ErrInvalidDepth indicates a negative depth setting
	ErrInvalidDepth = errors.New("invalid depth")

	// ErrInvalidMatchPolicy indicates an unknown keyword match policy
	ErrInvalidMatchPolicy = errors.New("invalid match policy")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidProgress indicates a non-positive progress interval
	ErrInvalidProgress = errors.New("invalid progress interval")

	// ErrInvalidIgnore indicates an ignore pattern that does not compile
	ErrInvalidIgnore = errors.New("invalid ignore pattern")

	// ErrInvalidCacheSize indicates a negative cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrEmptySnapshotPath indicates a missing snapshot database path
	ErrEmptySnapshotPath = errors.New("empty snapshot path")
)

// Validate checks that the configuration is valid and complete. All
// problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateTrace(&cfg.Trace); err != nil {
		errs = append(errs, err)
	}
	if err := validateScan(&cfg.Scan); err != nil {
		errs = append(errs, err)
	}
	if cfg.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("%w: size must be >= 0, got %d", ErrInvalidCacheSize, cfg.Cache.Size))
	}
	if strings.TrimSpace(cfg.Snapshot.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: snapshot.path is required", ErrEmptySnapshotPath))
	}

	return errors.Join(errs...)
}

func validateTrace(cfg *TraceConfig) error {
	var errs []error

	if cfg.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, cfg.Timeout))
	}
	if cfg.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: max_depth must be >= 0, got %d", ErrInvalidDepth, cfg.MaxDepth))
	}
	if cfg.FullDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: full_depth must be >= 0, got %d", ErrInvalidDepth, cfg.FullDepth))
	}
	switch strings.ToLower(cfg.MatchPolicy) {
	case MatchSubstring, MatchExact, MatchPrefix:
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'substring', 'exact' or 'prefix', got '%s'", ErrInvalidMatchPolicy, cfg.MatchPolicy))
	}

	return errors.Join(errs...)
}

func validateScan(cfg *ScanConfig) error {
	var errs []error

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidWorkers, cfg.Workers))
	}
	if cfg.ProgressEvery <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidProgress, cfg.ProgressEvery))
	}
	for _, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidIgnore, pattern, err))
		}
	}

	return errors.Join(errs...)
}
