// Package repomanager hands out repositories bound to a specific database
// handle. Services pass their *sql.DB for plain calls and a dbx.WithTx
// handle when several statements must commit or roll back together.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/ddanshin/guildvault/internal/dbx"
	"github.com/ddanshin/guildvault/internal/server/repositories/access"
	"github.com/ddanshin/guildvault/internal/server/repositories/accounts"
	"github.com/ddanshin/guildvault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Access(db dbx.DBTX) access.Repository
}
