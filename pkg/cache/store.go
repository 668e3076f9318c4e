package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

const resultSchema = `
CREATE TABLE IF NOT EXISTS evaluation_results (
	skill_path TEXT NOT NULL,
	signature  TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (skill_path, signature)
);
`

// ResultStore persists evaluation results in SQLite keyed by skill path and
// directory signature, so unchanged skills survive process restarts without
// re-evaluation. It is an optional layer on top of the in-memory Manager.
type ResultStore struct {
	db *sqlx.DB
}

// DefaultStorePath returns the default on-disk location of the result cache
func DefaultStorePath() (string, error) {
	if base := os.Getenv("SKILLAUDIT_BASE_PATH"); base != "" {
		return filepath.Join(base, "results.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".skillaudit", "results.db"), nil
}

// OpenResultStore opens or creates the SQLite result cache at dbPath
func OpenResultStore(ctx context.Context, dbPath string) (*ResultStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create cache directory")
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open result cache")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping result cache")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, resultSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create result cache schema")
	}

	return &ResultStore{db: db}, nil
}

// Get returns the stored result for (skillPath, signature), or nil if none
func (s *ResultStore) Get(ctx context.Context, skillPath, signature string) (*audit.EvaluationResult, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw,
		"SELECT result FROM evaluation_results WHERE skill_path = ? AND signature = ?",
		skillPath, signature)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query result cache")
	}

	var result audit.EvaluationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode cached result")
	}
	return &result, nil
}

// Put stores a result, replacing any prior entry for the same skill path
func (s *ResultStore) Put(ctx context.Context, signature string, result *audit.EvaluationResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}

	// One row per skill path: a new signature supersedes the old one
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM evaluation_results WHERE skill_path = ?;`, result.SkillPath)
	if err != nil {
		return errors.Wrap(err, "failed to evict stale result")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluation_results (skill_path, signature, result)
		VALUES (?, ?, ?)`, result.SkillPath, signature, string(raw))
	return errors.Wrap(err, "failed to store result")
}

// Clear removes every cached result
func (s *ResultStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM evaluation_results")
	return errors.Wrap(err, "failed to clear result cache")
}

// Count returns the number of cached results
func (s *ResultStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM evaluation_results")
	return n, errors.Wrap(err, "failed to count cached results")
}

// Close closes the underlying database
func (s *ResultStore) Close() error {
	return s.db.Close()
}
