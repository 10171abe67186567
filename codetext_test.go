package codetext

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCodeContext_WorkingDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"main.py": pyFooBar})
	t.Chdir(root)

	out, err := ExtractCodeContext(context.Background(), "foo", WithGit(false), WithLogger(discardLogger()))
	require.NoError(t, err)
	assert.Contains(t, out, "Searching for 'foo' in directory: ")
	assert.Contains(t, out, "Found and traced element: foo\n\nElement: foo\n")
	assert.Contains(t, out, "  Element: bar\n")
}

func TestExtractCodeContextIn_NotFoundIsNotAnError(t *testing.T) {
	t.Parallel()
	root := writeTree(t, map[string]string{"main.py": pyFooBar})

	out, err := ExtractCodeContextIn(context.Background(), root, "missing", WithGit(false), WithLogger(discardLogger()))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "Element 'missing' not found in the codebase.\n"))
}

func TestExtractCodeContextIn_Cancelled(t *testing.T) {
	t.Parallel()
	root := writeTree(t, map[string]string{"main.py": pyFooBar})
	flag := NewCancelFlag()
	flag.Cancel()

	out, err := ExtractCodeContextIn(context.Background(), root, "foo",
		WithGit(false), WithLogger(discardLogger()), WithCancelFlag(flag))
	require.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, out)
}
