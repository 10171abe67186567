package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a configuration loader that looks for
// .codetext/config.yaml under rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// NewFileLoader creates a loader that reads an explicit config file.
func NewFileLoader(path string) Loader {
	return &loader{configFile: path}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CODETEXT_*)
// 2. Config file (.codetext/config.yaml or an explicit file)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".codetext"))
	}

	v.SetEnvPrefix("CODETEXT")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., CODETEXT_TRACE_MAX_DEPTH)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"trace.timeout",
		"trace.max_depth",
		"trace.match_policy",
		"trace.full_depth",
		"scan.workers",
		"scan.progress_every",
		"scan.ignore",
		"scan.use_git",
		"cache.size",
		"snapshot.path",
		"scripts.references",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine when searching; an explicit file
		// must exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("trace.timeout", defaults.Trace.Timeout)
	v.SetDefault("trace.max_depth", defaults.Trace.MaxDepth)
	v.SetDefault("trace.match_policy", defaults.Trace.MatchPolicy)
	v.SetDefault("trace.full_depth", defaults.Trace.FullDepth)

	v.SetDefault("scan.workers", defaults.Scan.Workers)
	v.SetDefault("scan.progress_every", defaults.Scan.ProgressEvery)
	v.SetDefault("scan.ignore", defaults.Scan.Ignore)
	v.SetDefault("scan.use_git", defaults.Scan.UseGit)

	v.SetDefault("cache.size", defaults.Cache.Size)
	v.SetDefault("snapshot.path", defaults.Snapshot.Path)
	v.SetDefault("scripts.references", defaults.Scripts.References)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
