// Package runtime embeds a Risor VM that runs user-supplied reference
// scripts. A reference script receives a code element's content and
// language and returns extra names the element refers to, extending the
// built-in regex heuristics without recompiling.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
)

// Runtime loads and evaluates Risor scripts with the host functions
// reference scripts rely on.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
	patterns   *patternCache

	mu      sync.Mutex
	sources map[string]string
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger sets the logger behind the scripts' log global.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRuntime creates a Runtime that resolves relative script paths against
// scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     slog.Default(),
		patterns:   newPatternCache(),
		sources:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads and executes a Risor script with all standard globals
// plus any extra globals provided by the caller, returning the value of the
// script's final expression.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) (object.Object, error) {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource executes Risor source code directly with all standard globals
// plus any extra globals. Useful for testing without script files.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) (object.Object, error) {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

// References runs a reference script against one element. The script sees
// the globals content and language and must evaluate to a list of strings.
// The result is deduplicated and sorted.
func (r *Runtime) References(ctx context.Context, scriptPath, content, language string) ([]string, error) {
	result, err := r.RunScript(ctx, scriptPath, map[string]any{
		"content":  content,
		"language": language,
	})
	if err != nil {
		return nil, err
	}
	refs, err := stringList(result)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", scriptPath, err)
	}
	return refs, nil
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) (object.Object, error) {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	result, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return result, nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code. Sources are
// cached per path for the life of the Runtime, since a reference script
// runs once per traced element.
func (r *Runtime) LoadScript(path string) (string, error) {
	r.mu.Lock()
	src, ok := r.sources[path]
	r.mu.Unlock()
	if ok {
		return src, nil
	}

	src, err := r.readScript(path)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.sources[path] = src
	r.mu.Unlock()
	return src, nil
}

func (r *Runtime) readScript(path string) (string, error) {
	if r.fsys != nil {
		// For fs.FS, strip any leading path separator so the path is
		// relative within the FS.
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// ReferenceScriptPath returns the path of a named reference script.
func ReferenceScriptPath(name string) string {
	return filepath.Join("references", name+".risor")
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"find_all": makeFindAllFn(r.patterns),
		"log":      mustProxy(&logObject{logger: r.logger.With("component", "script")}),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

// stringList converts a script result into sorted, unique strings. A nil
// result is an empty list.
func stringList(obj object.Object) ([]string, error) {
	if obj == nil || obj == object.Nil {
		return nil, nil
	}
	list, ok := obj.(*object.List)
	if !ok {
		return nil, fmt.Errorf("expected a list result, got %s", obj.Type())
	}
	seen := make(map[string]bool)
	var out []string
	for _, item := range list.Value() {
		s, ok := item.(*object.String)
		if !ok {
			return nil, fmt.Errorf("expected list of strings, got %s item", item.Type())
		}
		if v := s.Value(); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
