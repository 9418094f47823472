package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ddanshin/guildvault/internal/common"
	"github.com/ddanshin/guildvault/internal/dbx"
	"github.com/ddanshin/guildvault/internal/logging"
	"github.com/ddanshin/guildvault/internal/server/models"
	"github.com/ddanshin/guildvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ErrRecipientUnreachable is returned by DirectMessenger implementations
// when the grantee cannot be resolved to a deliverable private channel.
var ErrRecipientUnreachable = errors.New("recipient unreachable")

// DirectMessenger delivers a message to a user over a private out-of-band
// channel. Disclosure depends on it; nothing sent through it is persisted.
type DirectMessenger interface {
	SendDirect(ctx context.Context, username, message string) error
}

// GranteeOutcome is the per-grantee result of a Request call.
type GranteeOutcome int

const (
	OutcomeRequested GranteeOutcome = iota
	OutcomeAlreadyRequested
	OutcomeAlreadyGranted
	OutcomeUnknownUser
)

// GranteeResult reports what happened for one grantee inside a Request
// call. Request succeeds partially: one bad grantee never blocks the rest.
type GranteeResult struct {
	Username string
	Outcome  GranteeOutcome
}

// AccessService runs the three-phase handshake that gates disclosure:
// the owner invites (Request), the grantee confirms (Confirm), and only
// then may the owner disclose (Disclose).
type AccessService struct {
	db        *sql.DB
	repos     repomanager.RepositoryManager
	messenger DirectMessenger
	logger    logging.Logger
}

func NewAccessService(db *sql.DB, repos repomanager.RepositoryManager, messenger DirectMessenger, logger logging.Logger) *AccessService {
	return &AccessService{
		db:        db,
		repos:     repos,
		messenger: messenger,
		logger:    logger.With("module", "access_service"),
	}
}

// Request creates invitations for the given grantees on an account the
// session's identity uploaded. Unknown usernames, pairs already invited,
// and pairs already granted are skipped and reported per grantee; only
// ownership and an empty grantee list fail the call as a whole.
func (s *AccessService) Request(ctx context.Context, session models.Session, accountID int64, grantees []string) ([]GranteeResult, error) {
	if len(grantees) == 0 {
		return nil, fmt.Errorf("%w: no grantees given", common.ErrorValidation)
	}

	if _, err := s.repos.Accounts(s.db).GetOwned(ctx, accountID, session.Username); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotOwner
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
}

	usersRepo := s.repos.Users(s.db)
	accessRepo := s.repos.Access(s.db)

	results := make([]GranteeResult, 0, len(grantees))
	for _, grantee := range grantees {
		known, err := usersRepo.Exists(ctx, grantee)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
		if !known {
			results = append(results, GranteeResult{Username: grantee, Outcome: OutcomeUnknownUser})
			continue
		}

		state, err := accessRepo.State(ctx, accountID, grantee)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
		if state == models.Granted {
			results = append(results, GranteeResult{Username: grantee, Outcome: OutcomeAlreadyGranted})
			continue
		}
		if state == models.Requested {
			results = append(results, GranteeResult{Username: grantee, Outcome: OutcomeAlreadyRequested})
			continue
		}

		if err := state.Transition(models.Requested); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
		if _, err := accessRepo.CreateRequest(ctx, &models.AccessRequest{
			AccountID:   accountID,
			Username:    grantee,
			RequestedBy: session.Username,
		}); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
		results = append(results, GranteeResult{Username: grantee, Outcome: OutcomeRequested})
	}

	return results, nil
}

// Confirm consumes the session identity's invitation for the account and
// records the grant, attributed to whoever invited. The delete and insert
// share one transaction, and the insert only happens when the delete
// removed a row, so a racing duplicate confirm loses with ErrorNotFound.
func (s *AccessService) Confirm(ctx context.Context, session models.Session, accountID int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Access(tx)

		req, err := repo.GetRequest(ctx, accountID, session.Username)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

		if err := models.Requested.Transition(models.Granted); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

		affected, err := repo.DeleteRequest(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
		if affected == 0 {
			// another confirm consumed the request first
			return common.ErrorNotFound
		}

		if _, err := repo.CreateGrant(ctx, &models.AccessGrant{
			AccountID: accountID,
			Username:  session.Username,
			GrantedBy: req.RequestedBy,
		}); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

		return nil
	})
}

// Disclose hands the caller-supplied plaintext secret pair to the grantee
// over the private channel and returns a delivery id for the audit log.
//
// The plaintext is taken at face value: it is not persisted and not checked
// against the hashes stored at upload time. The stored hashes act as an
// upload-time audit artifact only; whether disclosure should be bound to
// them is an open product question, so the historical behavior stands.
func (s *AccessService) Disclose(ctx context.Context, session models.Session, accountID int64, grantee, secretUsername, secretPassword string) (string, error) {
	account, err := s.repos.Accounts(s.db).GetOwned(ctx, accountID, session.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotOwner
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
}

	granted, err := s.repos.Access(s.db).GrantExists(ctx, accountID, grantee)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
}
	if !granted {
		return "", common.ErrorNotFound
	}

	deliveryID := uuid.NewString()
	message := fmt.Sprintf("Shared %s account from %s:\nUsername: %s\nPassword: %s",
		account.Game, session.Username, secretUsername, secretPassword)

	if err := s.messenger.SendDirect(ctx, grantee, message); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "account disclosed",
		"delivery_id", deliveryID, "account_id", accountID, "grantee", grantee)

	return deliveryID, nil
}

// PendingFor lists account ids with an outstanding invitation for the
// session's identity, so a grantee can discover what needs confirming.
func (s *AccessService) PendingFor(ctx context.Context, session models.Session) ([]int64, error) {
	ids, err := s.repos.Access(s.db).ListRequestedAccountIDs(ctx, session.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
}
	return ids, nil
}
