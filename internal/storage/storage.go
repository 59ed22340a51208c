// Package storage keeps labeled training instances in a SQLite corpus
// database and imports them from JSONL.
package storage

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/happyhackingspace/percept/perceptron"
)

// Instance is one labeled training example. Either Features (pre-hashed) or
// Attrs (raw attributes, hashed at training time) must be present.
type Instance struct {
	Label    int                  `json:"label"`
	Costs    []float64            `json:"costs,omitempty"`
	Features []perceptron.Feature `json:"features,omitempty"`
	Attrs    map[string]any       `json:"attrs,omitempty"`
}

// Store wraps the corpus database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the corpus database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS instances (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label INTEGER NOT NULL,
		doc TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init corpus schema: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA synchronous = NORMAL;`); err != nil {
		slog.Warn("Failed to set corpus PRAGMA", "error", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ImportJSONL reads one JSON instance per line and inserts them in a single
// transaction. Lines that fail to parse or validate abort the import, so a
// corpus never ends up half-written.
func (s *Store) ImportJSONL(r io.Reader) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare("INSERT INTO instances (label, doc) VALUES (?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	count := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var inst Instance
		if err := json.Unmarshal(raw, &inst); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		if err := validate(inst); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := stmt.Exec(inst.Label, string(raw)); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func validate(inst Instance) error {
	if inst.Label < 0 {
		return fmt.Errorf("negative label %d", inst.Label)
	}
	if len(inst.Features) == 0 && len(inst.Attrs) == 0 {
		return fmt.Errorf("instance has neither features nor attrs")
	}
	if inst.Costs != nil && inst.Label >= len(inst.Costs) {
		return fmt.Errorf("label %d not covered by %d costs", inst.Label, len(inst.Costs))
	}
	return nil
}

// Instances returns every stored instance in insertion order.
func (s *Store) Instances() ([]Instance, error) {
	rows, err := s.db.Query("SELECT doc FROM instances ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Instance
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var inst Instance
		if err := json.Unmarshal([]byte(doc), &inst); err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// Count returns the number of stored instances.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM instances").Scan(&n)
	return n, err
}

// LabelCounts returns the number of instances per label.
func (s *Store) LabelCounts() (map[int]int, error) {
	rows, err := s.db.Query("SELECT label, COUNT(*) FROM instances GROUP BY label ORDER BY label")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[int]int)
	for rows.Next() {
		var label, n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}
