// Package accounts persists promoted game accounts and the pending-upload
// moderation queue.
package accounts

import (
	"context"

	"github.com/ddanshin/guildvault/internal/server/models"
)

type Repository interface {
	// GetOwned returns the account only when it exists and is owned by
	// uploader; otherwise common.ErrorNotFound. Ownership checks come for
	// free with the lookup, matching the access-control rule that every
	// protected operation on an account is an uploader-only operation.
	GetOwned(ctx context.Context, id int64, uploader string) (*models.Account, error)
	// ListSharedWith returns accounts the user holds an access grant for.
	ListSharedWith(ctx context.Context, username string) ([]models.Account, error)

	CreatePending(ctx context.Context, p *models.PendingAccount) (*models.PendingAccount, error)
	// ListPending returns the queue ordered by submission time ascending.
	ListPending(ctx context.Context) ([]models.PendingAccount, error)
	PromotePending(ctx context.Context, ids []int64) error
	DeletePending(ctx context.Context, ids []int64) error
}
