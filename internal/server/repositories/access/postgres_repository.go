package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ddanshin/guildvault/internal/common"
	"github.com/ddanshin/guildvault/internal/dbx"
	"github.com/ddanshin/guildvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateRequest(ctx context.Context, req *models.AccessRequest) (*models.AccessRequest, error) {
	query :=
		`INSERT INTO access_requests (account_id, username, requested_by)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		req.AccountID, req.Username, req.RequestedBy).Scan(&req.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return req, nil
}

func (r *PostgresRepository) GetRequest(ctx context.Context, accountID int64, username string) (*models.AccessRequest, error) {
	query :=
		`SELECT id, account_id, username, requested_by FROM access_requests
		 WHERE account_id = $1 AND username = $2
		 `

	req := &models.AccessRequest{}
	err := r.db.QueryRowContext(ctx, query, accountID, username).Scan(
		&req.ID, &req.AccountID, &req.Username, &req.RequestedBy)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return req, nil
}

func (r *PostgresRepository) DeleteRequest(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM access_requests WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}

func (r *PostgresRepository) CreateGrant(ctx context.Context, g *models.AccessGrant) (*models.AccessGrant, error) {
	query :=
		`INSERT INTO access_grants (account_id, username, granted_by)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		g.AccountID, g.Username, g.GrantedBy).Scan(&g.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return g, nil
}

func (r *PostgresRepository) GrantExists(ctx context.Context, accountID int64, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM access_grants WHERE account_id = $1 AND username = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, accountID, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListRequestedAccountIDs(ctx context.Context, username string) ([]int64, error) {
	query :=
		`SELECT account_id FROM access_requests
		 WHERE username = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) State(ctx context.Context, accountID int64, username string) (models.RelationState, error) {
	// A grant and a request never coexist for a pair: confirmation deletes
	// the request in the same transaction that inserts the grant.
	granted, err := r.GrantExists(ctx, accountID, username)
	if err != nil {
		return models.NoRelation, err
	}
	if granted {
		return models.Granted, nil
	}

	query := `SELECT EXISTS (SELECT 1 FROM access_requests WHERE account_id = $1 AND username = $2)`
	var requested bool
	if err := r.db.QueryRowContext(ctx, query, accountID, username).Scan(&requested); err != nil {
		return models.NoRelation, fmt.Errorf("db error: %w", err)
	}
	if requested {
		return models.Requested, nil
	}

	return models.NoRelation, nil
}
