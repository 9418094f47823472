package accounts

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

func (r *PostgresRepository) GetOwned(ctx context.Context, id int64, uploader string) (*models.Account, error) {
	query :=
		`SELECT id, uploader_username, game, secret_username_hash, secret_password_hash
		 FROM game_accounts
		 WHERE id = $1 AND uploader_username = $2
		 `

	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, id, uploader).Scan(
		&a.ID, &a.UploaderUsername, &a.Game, &a.SecretUsernameHash, &a.SecretPasswordHash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) ListSharedWith(ctx context.Context, username string) ([]models.Account, error) {
	query :=
		`SELECT ga.id, ga.uploader_username, ga.game, ga.secret_username_hash, ga.secret_password_hash
		 FROM access_grants ag
		 JOIN game_accounts ga ON ga.id = ag.account_id
		 WHERE ag.username = $1
		 ORDER BY ga.id
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UploaderUsername, &a.Game, &a.SecretUsernameHash, &a.SecretPasswordHash); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) CreatePending(ctx context.Context, p *models.PendingAccount) (*models.PendingAccount, error) {
	query :=
		`INSERT INTO pending_game_accounts (uploader_username, game, secret_username_hash, secret_password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.UploaderUsername, p.Game, p.SecretUsernameHash, p.SecretPasswordHash).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) ListPending(ctx context.Context) ([]models.PendingAccount, error) {
	query :=
		`SELECT id, uploader_username, game, secret_username_hash, secret_password_hash, created_at
		 FROM pending_game_accounts
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.PendingAccount
	for rows.Next() {
		var p models.PendingAccount
		if err := rows.Scan(&p.ID, &p.UploaderUsername, &p.Game, &p.SecretUsernameHash, &p.SecretPasswordHash, &p.CreatedAt); err != nil {
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
	query := `INSERT INTO game_accounts (uploader_username, game, secret_username_hash, secret_password_hash)
		 SELECT uploader_username, game, secret_username_hash, secret_password_hash
		 FROM pending_game_accounts WHERE id IN ` + clause

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
	query := `DELETE FROM pending_game_accounts WHERE id IN ` + clause

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
