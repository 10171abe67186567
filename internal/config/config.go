// Package config loads codetext settings from defaults, an optional
// .codetext/config.yaml, and CODETEXT_* environment variables.
package config

import "time"

// Match policies accepted by trace.match_policy.
const (
	MatchSubstring = "substring"
	MatchExact     = "exact"
	MatchPrefix    = "prefix"
)

// Config represents the complete codetext configuration.
type Config struct {
	Trace    TraceConfig    `yaml:"trace" mapstructure:"trace"`
	Scan     ScanConfig     `yaml:"scan" mapstructure:"scan"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Snapshot SnapshotConfig `yaml:"snapshot" mapstructure:"snapshot"`
	Scripts  ScriptsConfig  `yaml:"scripts" mapstructure:"scripts"`
}

// TraceConfig bounds the logic-chain trace and shapes its report.
type TraceConfig struct {
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`           // wall-clock budget for a whole run
	MaxDepth    int           `yaml:"max_depth" mapstructure:"max_depth"`       // deepest expanded level
	MatchPolicy string        `yaml:"match_policy" mapstructure:"match_policy"` // "substring", "exact" or "prefix"
	FullDepth   int           `yaml:"full_depth" mapstructure:"full_depth"`     // levels rendered with full content
}

// ScanConfig controls file discovery and the worker pool.
type ScanConfig struct {
	Workers       int      `yaml:"workers" mapstructure:"workers"`               // 0 means one per CPU
	ProgressEvery int      `yaml:"progress_every" mapstructure:"progress_every"` // report every N processed files
	Ignore        []string `yaml:"ignore" mapstructure:"ignore"`                 // glob patterns to skip
	UseGit        bool     `yaml:"use_git" mapstructure:"use_git"`               // list files with git ls-files when possible
}

// CacheConfig sizes the in-memory parse cache.
type CacheConfig struct {
	Size int `yaml:"size" mapstructure:"size"` // max cached files, 0 disables
}

// SnapshotConfig locates the SQLite snapshot database.
type SnapshotConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ScriptsConfig selects an optional Risor reference script.
type ScriptsConfig struct {
	References string `yaml:"references" mapstructure:"references"` // empty disables scripted references
}

// Default returns a configuration with the engine's documented defaults.
func Default() *Config {
	return &Config{
		Trace: TraceConfig{
			Timeout:     300 * time.Second,
			MaxDepth:    20,
			MatchPolicy: MatchSubstring,
			FullDepth:   2,
		},
		Scan: ScanConfig{
			Workers:       0,
			ProgressEvery: 5,
			Ignore:        []string{},
			UseGit:        true,
		},
		Cache: CacheConfig{
			Size: 10_000,
		},
		Snapshot: SnapshotConfig{
			Path: ".codetext/snapshots.db",
		},
	}
}
