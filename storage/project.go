// Package storage provides the SQLite-backed project store.
//
// Information Hiding:
// - SQLite connection management hidden behind the store
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoCurrentProject is returned when no project has been set.
var ErrNoCurrentProject = errors.New("no current project set")

// Store holds the writer's session state that outlives a process: the
// current project path (the default save directory) and a log of tool
// runs. Thread-safe: sql.DB handles connection pooling.
type Store struct {
	db *sql.DB
}

// Open opens or creates the store at path, creating parent directories
// as needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	store := &Store{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// OpenInMemory creates an in-memory store (useful for testing).
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}

	store := &Store{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			tool_id TEXT NOT NULL,
			output_paths TEXT NOT NULL,
			prompt_tokens INTEGER NOT NULL,
			response_tokens INTEGER NOT NULL,
			elapsed_seconds REAL NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_tool
		ON runs(tool_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CurrentProject returns the current project path, the process-wide
// default save directory.
func (s *Store) CurrentProject() (string, error) {
	var path string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = 'current_project'`).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoCurrentProject
	}
	if err != nil {
		return "", fmt.Errorf("failed to read current project: %w", err)
	}
	return path, nil
}

// SetCurrentProject records path as the current project.
func (s *Store) SetCurrentProject(path string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES ('current_project', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, path)
	if err != nil {
		return fmt.Errorf("failed to set current project: %w", err)
	}
	return nil
}

// RunRecord is one logged tool run.
type RunRecord struct {
	RunID          string
	ToolID         string
	OutputPaths    []string
	PromptTokens   int
	ResponseTokens int
	ElapsedSeconds float64
	CreatedAt      time.Time
}

// RecordRun appends rec to the run log.
func (s *Store) RecordRun(rec RunRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, tool_id, output_paths, prompt_tokens, response_tokens, elapsed_seconds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.ToolID, strings.Join(rec.OutputPaths, "\n"),
		rec.PromptTokens, rec.ResponseTokens, rec.ElapsedSeconds,
		rec.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RunsFor returns the logged runs for toolID, newest first.
func (s *Store) RunsFor(toolID string) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, tool_id, output_paths, prompt_tokens, response_tokens, elapsed_seconds, created_at
		 FROM runs WHERE tool_id = ? ORDER BY created_at DESC`, toolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var paths, createdAt string
		if err := rows.Scan(&rec.RunID, &rec.ToolID, &paths, &rec.PromptTokens,
			&rec.ResponseTokens, &rec.ElapsedSeconds, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if paths != "" {
			rec.OutputPaths = strings.Split(paths, "\n")
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}
