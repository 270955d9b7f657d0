package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"agentcoach/internal/modules/reflection/domain"
	reflectionout "agentcoach/internal/modules/reflection/port/out"
	"agentcoach/internal/platform/fsx"

	_ "modernc.org/sqlite"
)

// createdAtLayout is stored in UTC so lexical order is chronological order.
const createdAtLayout = time.RFC3339

// SQLiteHistoryProjector opens its database on first use, so constructing it never
// creates anything under the coach root. Only writes create the database file; reads
// against a missing file see an empty history.
type SQLiteHistoryProjector struct {
	dbPath string

	mu   sync.Mutex
	conn *sql.DB
}

func NewSQLiteHistoryProjector(dbPath string) *SQLiteHistoryProjector {
	return &SQLiteHistoryProjector{dbPath: dbPath}
}

var _ reflectionout.HistoryProjector = (*SQLiteHistoryProjector)(nil)

func (s *SQLiteHistoryProjector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// db returns the open handle. With create false and no database file yet it returns nil.
func (s *SQLiteHistoryProjector) db(ctx context.Context, create bool) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn, nil
	}
	if !create {
		if _, err := os.Stat(s.dbPath); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		} else if err != nil {
			return nil, fmt.Errorf("stat sqlite: %w", err)
		}
	}
	if err := fsx.EnsureDir(filepath.Dir(s.dbPath)); err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS reflections (
  id TEXT PRIMARY KEY,
  created_at TEXT NOT NULL,
  session_count INTEGER NOT NULL,
  skipped_count INTEGER NOT NULL,
  max_age_days INTEGER NOT NULL,
  max_count INTEGER NOT NULL,
  path TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS reflections_created_at ON reflections (created_at);
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create reflections table: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryProjector) Reset(ctx context.Context) error {
	db, err := s.db(ctx, true)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM reflections`); err != nil {
		return fmt.Errorf("reset reflections: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryProjector) UpsertRun(ctx context.Context, run domain.Run) error {
	const stmt = `
INSERT INTO reflections (id, created_at, session_count, skipped_count, max_age_days, max_count, path)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  created_at=excluded.created_at,
  session_count=excluded.session_count,
  skipped_count=excluded.skipped_count,
  max_age_days=excluded.max_age_days,
  max_count=excluded.max_count,
  path=excluded.path;
`
	db, err := s.db(ctx, true)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, stmt,
		run.ID,
		run.CreatedAt.UTC().Format(createdAtLayout),
		run.SessionCount,
		run.SkippedCount,
		run.MaxAgeDays,
		run.MaxCount,
		run.Path,
	)
	if err != nil {
		return fmt.Errorf("upsert reflection: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryProjector) ListRecent(ctx context.Context, limit int) ([]domain.Run, error) {
	const query = `
SELECT id, created_at, session_count, skipped_count, max_age_days, max_count, path
FROM reflections
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	db, err := s.db(ctx, false)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return []domain.Run{}, nil
	}
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query reflections: %w", err)
	}
	defer rows.Close()

	out := []domain.Run{}
	for rows.Next() {
		var (
			run       domain.Run
			createdAt string
		)
		if err := rows.Scan(&run.ID, &createdAt, &run.SessionCount, &run.SkippedCount, &run.MaxAgeDays, &run.MaxCount, &run.Path); err != nil {
			return nil, fmt.Errorf("scan reflection: %w", err)
		}
		if run.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", run.ID, err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reflections: %w", err)
	}
	return out, nil
}
