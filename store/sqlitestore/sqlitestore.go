// Package sqlitestore is a node.Store backed by a single SQLite table.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"ocm-mapper/node"
	"ocm-mapper/store"
	"ocm-mapper/store/sqlitestore/migrations"
)

// Store persists nodes in SQLite. Properties are kept as the typed JSON of
// node.EncodeProperties.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open opens the SQLite database at path and applies the embedded
// migrations. The path ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if path == ":memory:" {
		// every pooled connection would otherwise get its own database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Fetch implements node.Resolver.
func (s *Store) Fetch(ctx context.Context, path string) (*node.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		tag     string
		props   string
		version int64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT type_tag, properties, version FROM nodes WHERE path = ?`, path,
	).Scan(&tag, &props, &version)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("fetch %s: %w", path, node.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	properties, err := node.DecodeProperties([]byte(props))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	return &node.Node{Path: path, TypeTag: tag, Properties: properties, Version: version}, nil
}

// Save implements node.Writer. The row is written only if its version is
// still the one read, so concurrent saves of one path fail with
// node.ErrConflict. Busy databases are retried a bounded number of times.
func (s *Store) Save(ctx context.Context, n *node.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := store.Prepare(n)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	props, err := node.EncodeProperties(c.Properties)
	if err != nil {
		return fmt.Errorf("save %s: %w", c.Path, err)
	}

	var version int64

	for attempt := 1; ; attempt++ {
		version, err = s.write(ctx, c, string(props))
		if err == nil || !isBusy(err) || attempt == maxBusyAttempts {
			break
		}

		s.logger.Warn("sqlite busy, retrying save", "path", c.Path, "attempt", attempt)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * busyBackoff):
		}
	}

	if err != nil {
		return fmt.Errorf("save %s: %w", c.Path, err)
	}

	n.Version = version

	s.logger.Debug("saved node", "path", c.Path, "version", version)

	return nil
}

const (
	maxBusyAttempts = 5
	busyBackoff     = 20 * time.Millisecond
)

// write reads the stored version of c.Path and writes c as the next one.
func (s *Store) write(ctx context.Context, c *node.Node, props string) (int64, error) {
	var current int64

	err := s.db.QueryRowContext(ctx, `SELECT version FROM nodes WHERE path = ?`, c.Path).Scan(&current)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = 0
	case err != nil:
		return 0, err
	}

	return s.writeVersion(ctx, c, props, current)
}

// writeVersion stores c as version current+1. current 0 means the path must
// not exist yet.
func (s *Store) writeVersion(ctx context.Context, c *node.Node, props string, current int64) (int64, error) {
	now := time.Now().UTC().UnixMilli()

	if current == 0 {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO nodes (path, type_tag, properties, version, updated_at) VALUES (?, ?, ?, 1, ?)`,
			c.Path, c.TypeTag, props, now)
		if isConstraint(err) {
			return 0, fmt.Errorf("%w: %s was created concurrently", node.ErrConflict, c.Path)
		}

		if err != nil {
			return 0, err
		}

		return 1, nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET type_tag = ?, properties = ?, version = ?, updated_at = ?
		 WHERE path = ? AND version = ?`,
		c.TypeTag, props, current+1, now, c.Path, current)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if affected == 0 {
		return 0, fmt.Errorf("%w: %s changed after version %d was read", node.ErrConflict, c.Path, current)
	}

	return current + 1, nil
}

// Remove implements node.Writer.
func (s *Store) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	if affected == 0 {
		return fmt.Errorf("remove %s: %w", path, node.ErrNotFound)
	}

	return nil
}

// List implements node.Store.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := `SELECT path FROM nodes ORDER BY path`
	args := []any{}

	if p := strings.TrimSpace(prefix); p != "" && p != node.Root {
		query = `SELECT path FROM nodes WHERE path = ? OR substr(path, 1, ?) = ? ORDER BY path`
		args = append(args, p, utf8.RuneCountInString(p)+1, p+"/")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer rows.Close()

	var paths []string

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}

		paths = append(paths, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	return paths, nil
}

// TypeCounts returns the number of stored nodes per type tag.
func (s *Store) TypeCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type_tag, COUNT(*) FROM nodes GROUP BY type_tag`)
	if err != nil {
		return nil, fmt.Errorf("count types: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)

	for rows.Next() {
		var (
			tag   string
			count int
		)

		if err := rows.Scan(&tag, &count); err != nil {
			return nil, fmt.Errorf("count types: %w", err)
		}

		counts[tag] = count
	}

	return counts, rows.Err()
}

func isBusy(err error) bool {
	switch primaryCode(err) {
	case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
		return true
	default:
		return false
	}
}

func isConstraint(err error) bool {
	return primaryCode(err) == sqlite3lib.SQLITE_CONSTRAINT
}

// primaryCode returns the primary result code of a SQLite error, or 0.
func primaryCode(err error) int {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() & 0xff
	}

	return 0
}

var _ node.Store = (*Store)(nil)
