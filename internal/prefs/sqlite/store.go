// Package sqlite provides a SQLite-backed preferences store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/usstm/unionclient/internal/platform/storage/sqlitemigrate"
	"github.com/usstm/unionclient/internal/prefs"
	"github.com/usstm/unionclient/internal/prefs/sqlite/migrations"
)

// Store persists client preferences in a local SQLite file.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite preferences store and applies embedded migrations.
// The now parameter is injectable for tests; nil uses the wall clock.
func Open(path string, now func() time.Time) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if now == nil {
		now = time.Now
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get returns the saved preferences, or prefs.ErrNotFound when the user has
// never saved any.
func (s *Store) Get(ctx context.Context) (prefs.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return prefs.Preferences{}, err
	}
	if s == nil || s.sqlDB == nil {
		return prefs.Preferences{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT locale, theme FROM preferences WHERE id = 1`)

	var p prefs.Preferences
	if err := row.Scan(&p.Locale, &p.Theme); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return prefs.Preferences{}, prefs.ErrNotFound
		}
		return prefs.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

// Put saves the preferences, replacing any previous row. Input must already
// be normalized and validated.
func (s *Store) Put(ctx context.Context, p prefs.Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := prefs.Validate(p); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO preferences (id, locale, theme, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   locale = excluded.locale,
		   theme = excluded.theme,
		   updated_at = excluded.updated_at`,
		p.Locale,
		p.Theme,
		s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put preferences: %w", err)
	}
	return nil
}

var _ prefs.Store = (*Store)(nil)
