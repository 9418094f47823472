// Package access persists the request→grant handshake rows for the
// sharing protocol.
package access

import (
	"context"

	"github.com/ddanshin/guildvault/internal/server/models"
)

type Repository interface {
	CreateRequest(ctx context.Context, r *models.AccessRequest) (*models.AccessRequest, error)
	// GetRequest returns the live invitation for the pair, or
	// common.ErrorNotFound.
	GetRequest(ctx context.Context, accountID int64, username string) (*models.AccessRequest, error)
	// DeleteRequest removes a request row by id and reports how many rows
	// went away. Confirmation relies on the count to stay exactly-once:
	// of two racing confirms, only one observes 1 here.
	DeleteRequest(ctx context.Context, id int64) (int64, error)

	CreateGrant(ctx context.Context, g *models.AccessGrant) (*models.AccessGrant, error)
	GrantExists(ctx context.Context, accountID int64, username string) (bool, error)

	// ListRequestedAccountIDs returns account ids with an outstanding
	// invitation for the user, oldest first.
	ListRequestedAccountIDs(ctx context.Context, username string) ([]int64, error)

	// State reports the explicit relation state of one (account, user) pair.
	State(ctx context.Context, accountID int64, username string) (models.RelationState, error)
}
