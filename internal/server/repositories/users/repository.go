// Package users persists approved identities and the pending-registration
// moderation queue.
package users

import (
	"context"

	"github.com/ddanshin/guildvault/internal/server/models"
)

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, username string) (bool, error)

	CreatePending(ctx context.Context, p *models.PendingUser) (*models.PendingUser, error)
	PendingExists(ctx context.Context, username string) (bool, error)
	// ListPending returns the queue ordered by submission time ascending.
	ListPending(ctx context.Context) ([]models.PendingUser, error)
	// PromotePending copies the given pending rows into users. It does not
	// delete them; the caller pairs it with DeletePending in one transaction.
	PromotePending(ctx context.Context, ids []int64) error
	DeletePending(ctx context.Context, ids []int64) error
}
