// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/sysroute/sysroute/lib/topology"
)

// DefaultRetain is the number of rows kept when Config.Retain is zero.
const DefaultRetain = 1000

// poolSize is fixed: one writer (the watcher) and a few concurrent
// status readers.
const poolSize = 4

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	fingerprint  TEXT    NOT NULL,
	source       TEXT    NOT NULL,
	loaded_at    INTEGER NOT NULL,
	subnets      INTEGER NOT NULL,
	ranges       INTEGER NOT NULL,
	signing_keys INTEGER NOT NULL,
	issues       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_fingerprint ON snapshots (fingerprint);
`

// Config configures a history Store.
type Config struct {
	// Path is the database file. Its parent directory must exist.
	Path string

	// Retain is the number of most recent rows kept. Zero means
	// DefaultRetain.
	Retain int

	// Logger receives open and close messages. Nil discards them.
	Logger *slog.Logger
}

// Entry is one recorded snapshot.
type Entry struct {
	ID          int64
	Fingerprint topology.Fingerprint
	Source      string
	LoadedAt    time.Time
	Subnets     int
	Ranges      int
	SigningKeys int
	Issues      int
}

// Store is a snapshot history database. It is safe for concurrent use.
type Store struct {
	pool   *sqlitex.Pool
	retain int
	path   string
	logger *slog.Logger
}

// Open opens or creates the database at cfg.Path.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("history: path is required")
	}
	if cfg.Retain < 0 {
		return nil, fmt.Errorf("history: retain must not be negative, got %d", cfg.Retain)
	}
	retain := cfg.Retain
	if retain == 0 {
		retain = DefaultRetain
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("history: opening %s: %w", cfg.Path, err)
	}
	logger.Info("snapshot history opened", "path", cfg.Path, "retain", retain)

	return &Store{
		pool:   pool,
		retain: retain,
		path:   cfg.Path,
		logger: logger,
	}, nil
}

// Close closes every connection. It blocks until borrowed connections
// are returned.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("history: closing %s: %w", s.path, err)
	}
	s.logger.Info("snapshot history closed", "path", s.path)
	return nil
}

// NewEntry summarizes snapshot as a history row.
func NewEntry(snapshot *topology.Snapshot) Entry {
	network := snapshot.Topology
	return Entry{
		Fingerprint: snapshot.Fingerprint,
		Source:      snapshot.Source,
		LoadedAt:    snapshot.LoadedAt,
		Subnets:     len(network.Subnets),
		Ranges:      network.RoutingTable.Len(),
		SigningKeys: len(network.SigningKeys()),
		Issues:      len(network.Check()),
	}
}

// Record appends snapshot to the history and prunes rows beyond the
// retention limit, in one transaction.
func (s *Store) Record(ctx context.Context, snapshot *topology.Snapshot) (err error) {
	if snapshot == nil {
		return errors.New("history: nil snapshot")
	}
	entry := NewEntry(snapshot)

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("history: take: %w", err)
	}
	defer s.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer endFn(&err)

	err = sqlitex.Execute(conn, `
		INSERT INTO snapshots (fingerprint, source, loaded_at, subnets, ranges, signing_keys, issues)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			entry.Fingerprint.String(),
			entry.Source,
			entry.LoadedAt.UnixNano(),
			int64(entry.Subnets),
			int64(entry.Ranges),
			int64(entry.SigningKeys),
			int64(entry.Issues),
		}},
	)
	if err != nil {
		return fmt.Errorf("history: inserting %s: %w", entry.Fingerprint.Short(), err)
	}

	// With fewer rows than the limit the subquery is NULL and nothing
	// matches.
	err = sqlitex.Execute(conn, `
		DELETE FROM snapshots
		WHERE id <= (SELECT id FROM snapshots ORDER BY id DESC LIMIT 1 OFFSET ?)`,
		&sqlitex.ExecOptions{Args: []any{int64(s.retain)}},
	)
	if err != nil {
		return fmt.Errorf("history: pruning: %w", err)
	}
	return nil
}

// Recent returns up to limit rows, newest first. A limit of zero or
// less returns every retained row.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.retain
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("history: take: %w", err)
	}
	defer s.pool.Put(conn)

	var entries []Entry
	err = sqlitex.Execute(conn, `
		SELECT id, fingerprint, source, loaded_at, subnets, ranges, signing_keys, issues
		FROM snapshots
		ORDER BY id DESC
		LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{int64(limit)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				entry := Entry{
					ID:          stmt.ColumnInt64(0),
					Source:      stmt.ColumnText(2),
					LoadedAt:    time.Unix(0, stmt.ColumnInt64(3)),
					Subnets:     stmt.ColumnInt(4),
					Ranges:      stmt.ColumnInt(5),
					SigningKeys: stmt.ColumnInt(6),
					Issues:      stmt.ColumnInt(7),
				}
				if err := entry.Fingerprint.UnmarshalText([]byte(stmt.ColumnText(1))); err != nil {
					return fmt.Errorf("row %d: %w", entry.ID, err)
				}
				entries = append(entries, entry)
				return nil
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("history: querying: %w", err)
	}
	return entries, nil
}

// prepareConnection applies the pragmas and schema once per pooled
// connection.
func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("history: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("history: creating schema: %w", err)
	}
	return nil
}
