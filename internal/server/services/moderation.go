package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ddanshin/guildvault/internal/common"
	"github.com/ddanshin/guildvault/internal/dbx"
	"github.com/ddanshin/guildvault/internal/server/models"
	"github.com/ddanshin/guildvault/internal/server/repositories/repomanager"
)

// ModerationService drives the two review queues. Listing is read-only;
// each resolve call is one transaction, so a batch either lands completely
// or not at all.
type ModerationService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewModerationService(db *sql.DB, repos repomanager.RepositoryManager) *ModerationService {
	return &ModerationService{db: db, repos: repos}
}

// ListPendingRegistrations returns queued registrations, oldest first.
func (s *ModerationService) ListPendingRegistrations(ctx context.Context) ([]models.PendingUser, error) {
	return s.repos.Users(s.db).ListPending(ctx)
}

// ListPendingAccounts returns queued account uploads, oldest first.
func (s *ModerationService) ListPendingAccounts(ctx context.Context) ([]models.PendingAccount, error) {
	return s.repos.Accounts(s.db).ListPending(ctx)
}

// ResolveRegistrations promotes every approved pending registration into an
// identity and deletes the union of both sets from the queue, atomically.
// An id in both sets is a validation error and nothing is touched. Empty
// sets are a valid no-op.
func (s *ModerationService) ResolveRegistrations(ctx context.Context, approve, reject []int64) error {
	if err := checkDisjoint(approve, reject); err != nil {
		return err
	}
	if len(approve) == 0 && len(reject) == 0 {
		return nil
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)
		if err := repo.PromotePending(ctx, approve); err != nil {
			return err
		}
		if err := repo.DeletePending(ctx, approve); err != nil {
			return err
		}
		return repo.DeletePending(ctx, reject)
	})
}

// ResolveAccounts is the identical contract over the upload queue.
func (s *ModerationService) ResolveAccounts(ctx context.Context, approve, reject []int64) error {
	if err := checkDisjoint(approve, reject); err != nil {
		return err
	}
	if len(approve) == 0 && len(reject) == 0 {
		return nil
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Accounts(tx)
		if err := repo.PromotePending(ctx, approve); err != nil {
			return err
		}
		if err := repo.DeletePending(ctx, approve); err != nil {
			return err
		}
		return repo.DeletePending(ctx, reject)
	})
}

func checkDisjoint(approve, reject []int64) error {
	seen := make(map[int64]struct{}, len(approve))
	for _, id := range approve {
		seen[id] = struct{}{}
	}
	for _, id := range reject {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: id %d is in both approve and reject sets", common.ErrorValidation, id)
		}
	}
	return nil
}
