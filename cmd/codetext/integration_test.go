package main_test

import (
	"database/sql"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildBinary compiles the codetext binary and returns the path.
// The binary is placed in t.TempDir() so it's cleaned up automatically.
func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "codetext"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	bin := filepath.Join(t.TempDir(), binName)
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Dir = filepath.Join(projectRoot(t), "cmd", "codetext")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", string(out))
	return bin
}

// projectRoot returns the root of the project by walking up from the test
// file's directory to find go.mod.
func projectRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, parent, dir, "could not find project root")
		dir = parent
	}
}

const fixtureApp = `import json


def handle_request(req):
    data = load(req)
    return render(data)


def load(req):
    return json.loads(req)


def render(data):
    return str(data)
`

// createPyFixture creates a temporary directory with a .git dir and a
// Python file. Returns the temp directory path.
func createPyFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// Create .git directory so findRepoRoot works.
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte(fixtureApp), 0o644))
	return dir
}

// run executes the binary in dir and returns stdout. --no-git and --no-input
// are the caller's business.
func run(t *testing.T, bin, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	require.NoError(t, err, "%v failed: %s", args, stderr.String())
	return string(out)
}

func openDB(t *testing.T, dbPath string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query).Scan(&n))
	return n
}

func TestTrace_TextReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createPyFixture(t)

	out := run(t, bin, fixture, "trace", "handle_request", fixture, "--no-input", "--no-git", "-q")

	assert.Contains(t, out, "Searching for 'handle_request' in directory: "+fixture)
	assert.Contains(t, out, "Found 1 potentially relevant files")
	assert.Contains(t, out, "Found and traced element: handle_request")
	assert.Contains(t, out, "Element: handle_request")
	assert.Contains(t, out, "Element: load")
	assert.Contains(t, out, "Element: render")
}

func TestTrace_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createPyFixture(t)

	out := run(t, bin, fixture, "trace", "does_not_exist", "--no-input", "--no-git", "-q")
	assert.Contains(t, out, "Element 'does_not_exist' not found in the codebase.")
}

func TestTrace_JSONAndDOT(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createPyFixture(t)
	dotPath := filepath.Join(t.TempDir(), "chain.dot")

	out := run(t, bin, fixture, "trace", "handle_request", "--no-input", "--no-git", "-q",
		"--format", "json", "--dot", dotPath)

	var result struct {
		Command string `json:"command"`
		Results struct {
			Found   bool `json:"found"`
			Element struct {
				Name   string `json:"name"`
				Nested []struct {
					Name string `json:"name"`
				} `json:"nested"`
			} `json:"element"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "trace", result.Command)
	assert.True(t, result.Results.Found)
	assert.Equal(t, "handle_request", result.Results.Element.Name)
	var nested []string
	for _, n := range result.Results.Element.Nested {
		nested = append(nested, n.Name)
	}
	assert.ElementsMatch(t, []string{"load", "render"}, nested)

	dot, err := os.ReadFile(dotPath)
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"handle_request" -> "load"`)
	assert.Contains(t, string(dot), `"handle_request" -> "render"`)
}

func TestTrace_MaxDepthZero(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createPyFixture(t)

	out := run(t, bin, fixture, "trace", "handle_request", "--no-input", "--no-git", "-q", "--max-depth", "0")
	assert.Contains(t, out, "Element: handle_request")
	assert.NotContains(t, out, "Element: load")
}

func TestIndex_CreatesSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createPyFixture(t)

	run(t, bin, fixture, "index", fixture, "--no-git", "-q")

	dbPath := filepath.Join(fixture, ".codetext", "snapshots.db")
	_, err := os.Stat(dbPath)
	require.NoError(t, err, ".codetext/snapshots.db should exist")

	db := openDB(t, dbPath)
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM runs"))
	assert.Equal(t, 3, count(t, db, "SELECT COUNT(*) FROM elements"))
}

func TestIndex_Force_ClearsOldRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createPyFixture(t)
	dbPath := filepath.Join(fixture, ".codetext", "snapshots.db")

	run(t, bin, fixture, "index", "--no-git", "-q")
	run(t, bin, fixture, "index", "--no-git", "-q")
	db := openDB(t, dbPath)
	assert.Equal(t, 2, count(t, db, "SELECT COUNT(*) FROM runs"))
	db.Close()

	run(t, bin, fixture, "index", "--no-git", "-q", "--force")
	db = openDB(t, dbPath)
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM runs"))
}

func TestTrace_FromSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createPyFixture(t)

	run(t, bin, fixture, "index", "--no-git", "-q")

	// Remove the source: the snapshot alone must be enough to trace.
	require.NoError(t, os.Remove(filepath.Join(fixture, "app.py")))

	out := run(t, bin, fixture, "trace", "handle_request", "--from-snapshot", "--no-input", "-q")
	assert.Contains(t, out, "Found and traced element: handle_request")
	assert.Contains(t, out, "Element: load")
	assert.Contains(t, out, "Element: render")
}

func TestSymbolsAndRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createPyFixture(t)

	out := run(t, bin, fixture, "index", "--no-git", "-q", "--format", "json")
	var indexed struct {
		Results struct {
			ID       string `json:"id"`
			Elements int    `json:"elements"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &indexed))
	require.NotEmpty(t, indexed.Results.ID)
	assert.Equal(t, 3, indexed.Results.Elements)

	out = run(t, bin, fixture, "symbols", "--format", "json")
	var symbols struct {
		Results []struct {
			Name     string `json:"name"`
			Language string `json:"language"`
		} `json:"results"`
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &symbols))
	assert.Equal(t, 3, symbols.TotalCount)

	out = run(t, bin, fixture, "symbols", "load", "--match", "exact", "--run", indexed.Results.ID)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "load", strings.Fields(lines[1])[0])

	out = run(t, bin, fixture, "runs")
	assert.Contains(t, out, indexed.Results.ID)

	run(t, bin, fixture, "runs", "delete", indexed.Results.ID)
	out = run(t, bin, fixture, "runs", "--format", "json")
	assert.NotContains(t, out, indexed.Results.ID)
}

func TestSymbols_MissingDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createPyFixture(t)

	cmd := exec.Command(bin, "symbols", "--format", "json")
	cmd.Dir = fixture
	out, err := cmd.Output()
	require.Error(t, err)

	var result struct {
		Command string `json:"command"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t, "symbols", result.Command)
	assert.Contains(t, result.Error, "snapshot database not found")
}
