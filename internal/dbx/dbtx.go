// Package dbx holds the database plumbing the repositories are built on:
// the DBTX handle (satisfied by both *sql.DB and *sql.Tx), a commit-or-
// rollback transaction wrapper, and placeholder expansion for IN clauses.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the handle the repositories execute queries against. Services
// pass a *sql.DB for single-statement calls and a *sql.Tx when several
// statements must land together, so the repository code never knows which
// it is running under.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn against it, and commits on success
// or rolls back on error/panic. Panics are rethrown after the rollback.
// Queue resolution and request consumption both run through it:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := s.repos.Access(tx)
//	    // delete the request and insert the grant under one commit
//	    return nil
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
