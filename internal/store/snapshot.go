package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNoSnapshot is returned when a requested run does not exist.
var ErrNoSnapshot = errors.New("no snapshot found")

// SaveSnapshot persists elements as a new run within a single transaction
// and returns the run. Each element's direct nested elements are stored
// with parent_name set so the one-level structure survives a reload.
func (s *Store) SaveSnapshot(root string, elements []*CodeElement) (*Run, error) {
	run := &Run{
		ID:           uuid.NewString(),
		Root:         root,
		ElementCount: len(elements),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, root, element_count, created_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Root, run.ElementCount, run.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("save snapshot: insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO elements
		(run_id, name, element_type, content, file_path, language, start_line, end_line, imports, parent_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("save snapshot: prepare: %w", err)
	}
	defer stmt.Close()

	insert := func(el *CodeElement, parent *string) error {
		_, err := stmt.Exec(run.ID, el.Name, el.ElementType, el.Content, el.FilePath,
			el.Language, el.StartLine, el.EndLine, marshalImports(el.Imports), parent)
		return err
	}
	for _, el := range elements {
		if err := insert(el, nil); err != nil {
			return nil, fmt.Errorf("save snapshot: element %q: %w", el.Name, err)
		}
		parent := el.Name
		for _, n := range el.NestedElements {
			if err := insert(n, &parent); err != nil {
				return nil, fmt.Errorf("save snapshot: nested element %q: %w", n.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("save snapshot: commit: %w", err)
	}
	return run, nil
}

// LoadSnapshot returns the top-level elements of a run, in insertion order,
// with their nested elements reattached.
func (s *Store) LoadSnapshot(runID string) ([]*CodeElement, error) {
	if _, err := s.RunByID(runID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT name, element_type, content, file_path, language,
		start_line, end_line, imports, parent_name
		FROM elements WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	var (
		top    []*CodeElement
		byName = make(map[string]*CodeElement)
	)
	for rows.Next() {
		el, parent, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: scan: %w", err)
		}
		if !parent.Valid {
			top = append(top, el)
			byName[el.Name] = el
			continue
		}
		if p, ok := byName[parent.String]; ok {
			p.NestedElements = append(p.NestedElements, el)
		}
	}
	return top, rows.Err()
}

// ElementsByNames returns the top-level elements of a run matching any of
// names.
func (s *Store) ElementsByNames(runID string, names []string) ([]*CodeElement, error) {
	if len(names) == 0 {
		return nil, nil
	}
	args := append([]any{runID}, stringsToArgs(names)...)
	rows, err := s.db.Query(`SELECT name, element_type, content, file_path, language,
		start_line, end_line, imports, parent_name
		FROM elements WHERE run_id = ? AND parent_name IS NULL AND name IN (`+placeholderList(len(names))+`)
		ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("elements by names: %w", err)
	}
	defer rows.Close()

	var out []*CodeElement
	for rows.Next() {
		el, _, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("elements by names: scan: %w", err)
		}
		out = append(out, el)
	}
	return out, rows.Err()
}

// RunByID returns a run, or ErrNoSnapshot.
func (s *Store) RunByID(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT id, root, element_count, created_at FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNoSnapshot)
	}
	return run, err
}

// LatestRun returns the most recent run, or ErrNoSnapshot if the database
// holds none.
func (s *Store) LatestRun() (*Run, error) {
	row := s.db.QueryRow(`SELECT id, root, element_count, created_at FROM runs
		ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	return run, err
}

// Runs lists all runs, newest first.
func (s *Store) Runs() ([]*Run, error) {
	rows, err := s.db.Query(`SELECT id, root, element_count, created_at FROM runs
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its elements.
func (s *Store) DeleteRun(runID string) error {
	if _, err := s.db.Exec(`DELETE FROM elements WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete run elements: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (*Run, error) {
	var run Run
	if err := r.Scan(&run.ID, &run.Root, &run.ElementCount, &run.CreatedAt); err != nil {
		return nil, err
	}
	return &run, nil
}

func scanElement(r rowScanner) (*CodeElement, sql.NullString, error) {
	var (
		el      CodeElement
		imports string
		parent  sql.NullString
	)
	err := r.Scan(&el.Name, &el.ElementType, &el.Content, &el.FilePath, &el.Language,
		&el.StartLine, &el.EndLine, &imports, &parent)
	if err != nil {
		return nil, parent, err
	}
	el.Imports = unmarshalImports(imports)
	return &el, parent, nil
}
