package store // import "github.com/Xunop/library-tracker/internal/store"

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/log"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
		q:  db,
	}
}

func (s *Store) DBStats() sql.DBStats {
	return s.db.Stats()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

// WithTx runs fn against a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. A commit
// failure is returned to the caller.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

var savepointName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Savepoint runs fn inside a SAVEPOINT of the current transaction. When fn
// fails, only its own writes are undone and the transaction stays usable.
func (s *Store) Savepoint(ctx context.Context, name string, fn func() error) error {
	if s.tx == nil {
		return errors.New("savepoint outside of a transaction")
	}
	if !savepointName.MatchString(name) {
		return errors.Errorf("invalid savepoint name %q", name)
	}

	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return errors.Wrap(err, "failed to create savepoint")
	}
	if err := fn(); err != nil {
		if _, rbErr := s.tx.ExecContext(ctx, fmt.Sprintf("ROLLBACK TO %s; RELEASE %s", name, name)); rbErr != nil {
			return errors.Wrapf(rbErr, "failed to roll back savepoint after: %v", err)
		}
		return err
	}
	if _, err := s.tx.ExecContext(ctx, "RELEASE "+name); err != nil {
		return errors.Wrap(err, "failed to release savepoint")
	}
	return nil
}

func (s *Store) exec(ctx context.Context, stmt string, args ...any) (sql.Result, error) {
	log.SQL(stmt, args)
	return s.q.ExecContext(ctx, stmt, args...)
}

func (s *Store) query(ctx context.Context, stmt string, args ...any) (*sql.Rows, error) {
	log.SQL(stmt, args)
	return s.q.QueryContext(ctx, stmt, args...)
}

func (s *Store) queryRow(ctx context.Context, stmt string, args ...any) *sql.Row {
	log.SQL(stmt, args)
	return s.q.QueryRowContext(ctx, stmt, args...)
}

// nullString stores an empty string as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullInt32 stores 0 as NULL.
func nullInt32(v int32) sql.NullInt32 {
	return sql.NullInt32{Int32: v, Valid: v != 0}
}
