package users

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

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, passhash FROM users
		 WHERE username = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.Passhash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CreatePending(ctx context.Context, p *models.PendingUser) (*models.PendingUser, error) {
	query :=
		`INSERT INTO pending_users (username, passhash, requested_by)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.Username, p.Passhash, p.RequestedBy).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) PendingExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM pending_users WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListPending(ctx context.Context) ([]models.PendingUser, error) {
	query :=
		`SELECT id, username, passhash, requested_by, created_at FROM pending_users
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.PendingUser
	for rows.Next() {
		var p models.PendingUser
		if err := rows.Scan(&p.ID, &p.Username, &p.Passhash, &p.RequestedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) PromotePending(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	clause, args := dbx.InClause(ids)
	query := `INSERT INTO users (username, passhash)
		 SELECT username, passhash FROM pending_users WHERE id IN ` + clause

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeletePending(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	clause, args := dbx.InClause(ids)
	query := `DELETE FROM pending_users WHERE id IN ` + clause

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
