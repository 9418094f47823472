// Package services contains server-side business logic: registration and
// login, account uploads, the access-grant handshake, and the moderation
// queues. Services hold a *sql.DB plus a repository manager; repositories
// are bound per call so transactional paths can rebind them to a dbx tx.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ddanshin/guildvault/internal/common"
	"github.com/ddanshin/guildvault/internal/secret"
	"github.com/ddanshin/guildvault/internal/server/models"
	"github.com/ddanshin/guildvault/internal/server/repositories/repomanager"
	"github.com/ddanshin/guildvault/internal/server/sessions"
)

var (
	// ErrUsernameTaken means an approved identity already holds the name.
	ErrUsernameTaken = fmt.Errorf("%w: username already registered", common.ErrorDuplicate)
	// ErrRegistrationPending means the name is already sitting in the queue.
	ErrRegistrationPending = fmt.Errorf("%w: registration already pending approval", common.ErrorDuplicate)
	// ErrUnknownIdentity means no approved identity matches the login name.
	ErrUnknownIdentity = fmt.Errorf("%w: no approved identity", common.ErrorNotFound)
)

// UserService handles registration, login, and logout.
type UserService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	hasher   *secret.Hasher
	registry *sessions.Registry
}

func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, hasher *secret.Hasher, registry *sessions.Registry) *UserService {
	return &UserService{db: db, repos: repos, hasher: hasher, registry: registry}
}

// Register enqueues a registration for moderator approval. The username
// must be free both among approved identities and in the pending queue.
func (s *UserService) Register(ctx context.Context, actorID, username, password string) error {
	repo := s.repos.Users(s.db)

	exists, err := repo.Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if exists {
		return ErrUsernameTaken
	}

	pending, err := repo.PendingExists(ctx, username)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if pending {
		return ErrRegistrationPending
	}

	passhash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if _, err := repo.CreatePending(ctx, &models.PendingUser{
		Username:    username,
		Passhash:    passhash,
		RequestedBy: actorID,
	}); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return nil
}

// Login verifies the password against the approved identity's hash and, on
// success, creates a session for the actor. Unknown identities report
// ErrUnknownIdentity; a wrong password reports common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, actorID, username, password string) (models.Session, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Session{}, ErrUnknownIdentity
		}
		return models.Session{}, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(password, user.Passhash) {
		return models.Session{}, common.ErrorUnauthorized
	}

	return s.registry.Login(actorID, user.Username), nil
}

// Logout drops the actor's session, if any.
func (s *UserService) Logout(actorID string) {
	s.registry.Logout(actorID)
}
