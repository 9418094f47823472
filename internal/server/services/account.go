package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ddanshin/guildvault/internal/common"
	"github.com/ddanshin/guildvault/internal/secret"
	"github.com/ddanshin/guildvault/internal/server/models"
	"github.com/ddanshin/guildvault/internal/server/repositories/repomanager"
)

// AccountService handles uploads into the moderation queue and the
// shared-accounts listing.
type AccountService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hasher *secret.Hasher
}

func NewAccountService(db *sql.DB, repos repomanager.RepositoryManager, hasher *secret.Hasher) *AccountService {
	return &AccountService{db: db, repos: repos, hasher: hasher}
}

// Upload hashes both halves of the secret pair and enqueues the account for
// moderator approval. The plaintext is dropped on return.
func (s *AccountService) Upload(ctx context.Context, session models.Session, game, secretUsername, secretPassword string) error {
	usernameHash, err := s.hasher.Hash(secretUsername)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	passwordHash, err := s.hasher.Hash(secretPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	repo := s.repos.Accounts(s.db)
	if _, err := repo.CreatePending(ctx, &models.PendingAccount{
		UploaderUsername:   session.Username,
		Game:               game,
		SecretUsernameHash: usernameHash,
		SecretPasswordHash: passwordHash,
	}); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return nil
}

// ListShared returns the accounts the session's identity holds a confirmed
// grant for.
func (s *AccountService) ListShared(ctx context.Context, session models.Session) ([]models.Account, error) {
	repo := s.repos.Accounts(s.db)

	list, err := repo.ListSharedWith(ctx, session.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return list, nil
}
