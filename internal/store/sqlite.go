package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/lox/pokerrooms/internal/room"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	code       TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	version    INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS rooms_expires_at ON rooms (expires_at);
`

// SQLite stores rooms in a single table. Timestamps are unix milliseconds
// taken from the store's clock, not from SQLite, so expiry follows the same
// clock as the rest of the server.
type SQLite struct {
	db   *sql.DB
	opts Options
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string, opts Options) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one writer at a time; sqlite serializes them anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, opts: opts.withDefaults()}, nil
}

func (s *SQLite) nowMillis() int64 {
	return s.opts.Clock.Now().UnixMilli()
}

func (s *SQLite) Create(ctx context.Context, r *room.Room) error {
	now := s.nowMillis()
	r.Version = 1
	data, err := encode(r)
	if err != nil {
		r.Version = 0
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		r.Version = 0
		return err
	}
	defer tx.Rollback()

	// an expired room no longer owns its code
	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE code = ? AND expires_at <= ?`, r.Code, now); err != nil {
		r.Version = 0
		return fmt.Errorf("create room %s: %w", r.Code, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rooms (code, state, version, created_at, updated_at, expires_at)
		VALUES (?, ?, 1, ?, ?, ?)
	`, r.Code, string(data), now, now, now+s.opts.TTL.Milliseconds())
	if err != nil {
		r.Version = 0
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrCodeTaken
		}
		return fmt.Errorf("create room %s: %w", r.Code, err)
	}
	if err := tx.Commit(); err != nil {
		r.Version = 0
		return err
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, code string) (*room.Room, error) {
	var state string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM rooms WHERE code = ? AND expires_at > ?`, code, s.nowMillis(),
	).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", code, err)
	}
	return decode([]byte(state))
}

func (s *SQLite) Save(ctx context.Context, r *room.Room) error {
	now := s.nowMillis()
	expected := r.Version

	r.Version++
	data, err := encode(r)
	if err != nil {
		r.Version = expected
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE rooms SET state = ?, version = ?, updated_at = ?, expires_at = ?
		WHERE code = ? AND version = ? AND expires_at > ?
	`, string(data), r.Version, now, now+s.opts.TTL.Milliseconds(), r.Code, expected, now)
	if err != nil {
		r.Version = expected
		return fmt.Errorf("save room %s: %w", r.Code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		r.Version = expected
		return fmt.Errorf("save room %s: %w", r.Code, err)
	}
	if n == 1 {
		return nil
	}

	r.Version = expected
	var stored int64
	err = s.db.QueryRowContext(ctx,
		`SELECT version FROM rooms WHERE code = ? AND expires_at > ?`, r.Code, now,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("save room %s: %w", r.Code, err)
	}
	return ErrConflict
}

func (s *SQLite) Delete(ctx context.Context, code string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE code = ?`, code); err != nil {
		return fmt.Errorf("delete room %s: %w", code, err)
	}
	return nil
}

func (s *SQLite) Sweep(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE expires_at <= ?`, s.nowMillis())
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLite) Run(ctx context.Context) error {
	return runJanitor(ctx, s.opts, s.Sweep)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
