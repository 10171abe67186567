package codetext

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jward/codetext/internal/store"
)

// OpenStore opens (creating if needed) the snapshot database at path and
// applies the schema.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("codetext: create snapshot dir: %w", err)
		}
	}
	s, err := store.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("codetext: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("codetext: migrate: %w", err)
	}
	return s, nil
}

// SaveSnapshot persists the current symbol table as a new run.
func (e *Engine) SaveSnapshot(s *Store) (*Run, error) {
	table := e.Table()
	if table == nil {
		return nil, errors.New("codetext: no symbol table to save")
	}
	elements, err := table.Snapshot()
	if err != nil {
		return nil, poisoned(err)
	}
	run, err := s.SaveSnapshot(e.Stats().Root, elements)
	if err != nil {
		return nil, fmt.Errorf("codetext: %w", err)
	}
	e.logger.Info("saved snapshot", "run", run.ID, "elements", run.ElementCount)
	return run, nil
}

// LoadSnapshot replaces the Engine's symbol table with a saved run. An
// empty runID loads the most recent run.
func (e *Engine) LoadSnapshot(s *Store, runID string) (*Run, error) {
	var (
		run *Run
		err error
	)
	if runID == "" {
		run, err = s.LatestRun()
	} else {
		run, err = s.RunByID(runID)
	}
	if err != nil {
		return nil, fmt.Errorf("codetext: %w", err)
	}

	elements, err := s.LoadSnapshot(run.ID)
	if err != nil {
		return nil, fmt.Errorf("codetext: %w", err)
	}
	batch := store.NewBatch(run.Root)
	batch.Add(elements...)
	table := store.NewTable()
	if err := table.Commit(batch); err != nil {
		return nil, poisoned(err)
	}

	n, err := table.Len()
	if err != nil {
		return nil, poisoned(err)
	}
	e.setTable(table, Stats{Root: run.Root, Elements: n})
	e.logger.Info("loaded snapshot", "run", run.ID, "elements", n)
	return run, nil
}
