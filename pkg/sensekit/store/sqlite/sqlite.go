package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/store"
	"github.com/cognicore/sensekit/pkg/sensekit/vocab"
)

// sqliteStore implements the ModelStore interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.ModelStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS models (
	name TEXT PRIMARY KEY,
	model_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	saved_at TEXT NOT NULL,
	features INTEGER NOT NULL,
	labels INTEGER NOT NULL,
	artifact BLOB NOT NULL,
	classifier BLOB
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveModel inserts or replaces a model
func (s *sqliteStore) SaveModel(ctx context.Context, name string, m *vocab.Model, classifier []byte) error {
	if name == "" || m == nil {
		return fmt.Errorf("%w: model name and model are required", internalerr.ErrInvalidInput)
	}
	artifact, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	info := store.Info(name, m, time.Now().UTC())

	_, err = s.db.ExecContext(ctx, `
INSERT INTO models (name, model_id, created_at, saved_at, features, labels, artifact, classifier)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	model_id=excluded.model_id,
	created_at=excluded.created_at,
	saved_at=excluded.saved_at,
	features=excluded.features,
	labels=excluded.labels,
	artifact=excluded.artifact,
	classifier=excluded.classifier;
`, info.Name, info.ModelID, info.Created.Format(time.RFC3339Nano), info.Saved.Format(time.RFC3339Nano),
		info.Features, info.Labels, artifact, classifier)
	return err
}

// LoadModel decodes the model saved under name
func (s *sqliteStore) LoadModel(ctx context.Context, name string) (*vocab.Model, []byte, error) {
	var artifact, classifier []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT artifact, classifier FROM models WHERE name = ?`, name,
	).Scan(&artifact, &classifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("model %q: %w", name, internalerr.ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}

	m, err := vocab.FromBytes(artifact)
	if err != nil {
		return nil, nil, err
	}
	return m, classifier, nil
}

// ListModels returns stored models sorted by name
func (s *sqliteStore) ListModels(ctx context.Context) ([]store.ModelInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, model_id, created_at, saved_at, features, labels
FROM models
ORDER BY name;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ModelInfo
	for rows.Next() {
		var info store.ModelInfo
		var created, saved string
		if err := rows.Scan(&info.Name, &info.ModelID, &created, &saved, &info.Features, &info.Labels); err != nil {
			return nil, err
		}
		if info.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, err
		}
		if info.Saved, err = time.Parse(time.RFC3339Nano, saved); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteModel removes the model saved under name
func (s *sqliteStore) DeleteModel(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("model %q: %w", name, internalerr.ErrNotFound)
	}
	return nil
}
