package codetext

import (
	"bytes"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Lister enumerates candidate source files under a root directory.
type Lister interface {
	ListFiles(root string) ([]string, error)
}

// skipDirs are dependency, build and VCS directories never worth scanning.
var skipDirs = map[string]bool{
	".git":         true,
	"__pycache__":  true,
	"node_modules": true,
	"target":       true,
	"venv":         true,
	".venv":        true,
	"env":          true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// compiledPattern holds both the pattern string and compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// DirLister is the default Lister. It prefers git ls-files, which respects
// .gitignore, and falls back to walking the tree. Either way hidden entries,
// skipDirs and the ignore globs are excluded. Paths are returned sorted.
type DirLister struct {
	useGit bool
	ignore []compiledPattern
}

// NewDirLister compiles the ignore globs. Patterns are matched against
// slash-separated paths relative to the root.
func NewDirLister(useGit bool, ignore ...string) (*DirLister, error) {
	l := &DirLister{useGit: useGit}
	for _, p := range ignore {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("codetext: ignore pattern %q: %w", p, err)
		}
		l.ignore = append(l.ignore, compiledPattern{pattern: p, glob: g})
	}
	return l, nil
}

// ListFiles returns every candidate file under root.
func (l *DirLister) ListFiles(root string) ([]string, error) {
	var (
		paths []string
		err   error
	)
	if l.useGit {
		paths, err = l.gitListFiles(root)
	}
	if !l.useGit || err != nil {
		// Not a git repo or git not available.
		paths, err = l.walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root.
func (l *DirLister) gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		rel := strings.TrimSpace(line)
		if rel == "" || l.skipped(rel) {
			continue
		}
		paths = append(paths, filepath.Join(root, filepath.FromSlash(rel)))
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem.
func (l *DirLister) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if hidden(d.Name()) || skipDirs[d.Name()] || l.ignored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden(d.Name()) || l.ignored(rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// skipped applies the walk's exclusions to a relative file path produced
// by git.
func (l *DirLister) skipped(rel string) bool {
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		if hidden(part) {
			return true
		}
		if i < len(parts)-1 && skipDirs[part] {
			return true
		}
	}
	return l.ignored(rel)
}

// ignored reports whether rel matches an ignore glob. A directory path
// (trailing slash) also matches patterns like "gen/**".
func (l *DirLister) ignored(rel string) bool {
	if strings.HasSuffix(rel, "/") {
		dir := strings.TrimSuffix(rel, "/")
		return l.matchesAny(dir) || l.matchesAny(dir+"/**")
	}
	return l.matchesAny(rel)
}

func (l *DirLister) matchesAny(path string) bool {
	for _, cp := range l.ignore {
		if cp.glob.Match(path) {
			return true
		}
	}

	// A root-level path also matches "**/x" patterns with the prefix removed.
	if !strings.Contains(path, "/") {
		for _, cp := range l.ignore {
			if simplified, ok := strings.CutPrefix(cp.pattern, "**/"); ok {
				if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}
	return false
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
