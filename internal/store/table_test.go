package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_LastWriteWins(t *testing.T) {
	t.Parallel()
	tbl := NewTable()

	first := testElement("util", TypeFunction)
	first.FilePath = "/src/a.py"
	second := testElement("util", TypeFunction)
	second.FilePath = "/src/b.py"

	require.NoError(t, tbl.Update(func(tx *Tx) error {
		tx.Insert(first)
		tx.Insert(second)
		return nil
	}))

	require.NoError(t, tbl.View(func(tx *Tx) error {
		assert.Equal(t, 1, tx.Len())
		got, ok := tx.Get("util")
		require.True(t, ok)
		assert.Equal(t, "/src/b.py", got.FilePath)
		return nil
	}))
}

func TestTable_PutSkipsNestedMethods(t *testing.T) {
	t.Parallel()
	tbl := NewTable()

	class := testElement("Repo", TypeClass)
	class.NestedElements = []*CodeElement{testElement("Repo.save", TypeMethod)}

	require.NoError(t, tbl.Update(func(tx *Tx) error {
		tx.Put(class)
		_, ok := tx.Get("Repo.save")
		assert.False(t, ok)
		return nil
	}))
}

func TestTable_ErrorPassesThrough(t *testing.T) {
	t.Parallel()
	tbl := NewTable()

	want := fmt.Errorf("boom")
	err := tbl.Update(func(tx *Tx) error { return want })
	assert.ErrorIs(t, err, want)

	// An ordinary error does not poison the table.
	n, err := tbl.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTable_PanicPoisons(t *testing.T) {
	t.Parallel()
	tbl := NewTable()

	err := tbl.Update(func(tx *Tx) error {
		tx.Insert(testElement("half", TypeFunction))
		panic("worker crashed")
	})
	require.ErrorIs(t, err, ErrPoisoned)
	assert.Contains(t, err.Error(), "worker crashed")

	_, err = tbl.Len()
	assert.ErrorIs(t, err, ErrPoisoned)
	_, err = tbl.Snapshot()
	assert.ErrorIs(t, err, ErrPoisoned)
	assert.ErrorIs(t, tbl.Commit(NewBatch("/x.py")), ErrPoisoned)
}

func TestTable_ConcurrentCommits(t *testing.T) {
	t.Parallel()
	tbl := NewTable()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := NewBatch(fmt.Sprintf("/src/f%d.py", i))
			b.Add(testElement(fmt.Sprintf("f%d", i), TypeFunction), testElement("shared", TypeFunction))
			assert.NoError(t, tbl.Commit(b))
		}(i)
	}
	wg.Wait()

	n, err := tbl.Len()
	require.NoError(t, err)
	assert.Equal(t, 17, n)
}

func TestTable_SnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()
	tbl := NewTable()
	require.NoError(t, tbl.Update(func(tx *Tx) error {
		tx.Insert(testElement("alpha", TypeFunction))
		return nil
	}))

	snap, err := tbl.Snapshot()
	require.NoError(t, err)
	snap[0].Imports[0] = "mutated"

	require.NoError(t, tbl.View(func(tx *Tx) error {
		el, _ := tx.Get("alpha")
		assert.Equal(t, "import os", el.Imports[0])
		return nil
	}))
}

func TestCodeElement_Owner(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Service", testElement("Service.run", TypeMethod).Owner())
	assert.Equal(t, "a.B", testElement("a.B.run", TypeMethod).Owner())
	assert.Empty(t, testElement("run", TypeFunction).Owner())
	assert.Empty(t, testElement("run", TypeMethod).Owner())
}
