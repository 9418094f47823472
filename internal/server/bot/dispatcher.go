// Package bot turns inbound chat messages into service calls and renders
// the textual replies. It knows nothing about the transport: the gateway
// feeds it (actor id, message content) pairs and sends back whatever string
// it returns.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ddanshin/guildvault/internal/common"
	"github.com/ddanshin/guildvault/internal/logging"
	"github.com/ddanshin/guildvault/internal/server/models"
	"github.com/ddanshin/guildvault/internal/server/services"
)

// userOps is the slice of UserService the dispatcher needs. The concrete
// service satisfies it; tests can provide a lightweight stub.
type userOps interface {
	Register(ctx context.Context, actorID, username, password string) error
	Login(ctx context.Context, actorID, username, password string) (models.Session, error)
	Logout(actorID string)
}

type accountOps interface {
	Upload(ctx context.Context, session models.Session, game, secretUsername, secretPassword string) error
	ListShared(ctx context.Context, session models.Session) ([]models.Account, error)
}

type accessOps interface {
	Request(ctx context.Context, session models.Session, accountID int64, grantees []string) ([]services.GranteeResult, error)
	Confirm(ctx context.Context, session models.Session, accountID int64) error
	Disclose(ctx context.Context, session models.Session, accountID int64, grantee, secretUsername, secretPassword string) (string, error)
	PendingFor(ctx context.Context, session models.Session) ([]int64, error)
}

type sessionGate interface {
	Require(actorID string) (models.Session, error)
}

// Dispatcher parses one command per message and produces one textual reply.
type Dispatcher struct {
	prefix   string
	users    userOps
	accounts accountOps
	access   accessOps
	gate     sessionGate
	logger   logging.Logger
}

func NewDispatcher(prefix string, users userOps, accounts accountOps, access accessOps, gate sessionGate, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		prefix:   prefix,
		users:    users,
		accounts: accounts,
		access:   access,
		gate:     gate,
		logger:   logger.With("module", "dispatcher"),
	}
}

// Dispatch handles a single message. The second return value reports
// whether the message was a command at all (prefix matched); non-commands
// are ignored by the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, actorID, content string) (string, bool) {
	if !strings.HasPrefix(content, d.prefix) {
		return "", false
	}

	parts := strings.Fields(strings.TrimPrefix(content, d.prefix))
	if len(parts) == 0 {
		return "", false
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "help":
		return d.help(), true

	case "register":
		return d.register(ctx, actorID, args), true

	case "login":
		return d.login(ctx, actorID, args), true

	case "logout":
		d.users.Logout(actorID)
		return "Logged out.", true

	case "upload_account":
		return d.protected(actorID, func(s models.Session) string {
			return d.uploadAccount(ctx, s, args)
		}), true

	case "list_accounts":
		return d.protected(actorID, func(s models.Session) string {
			return d.listAccounts(ctx, s)
		}), true

	case "grant_access":
		return d.protected(actorID, func(s models.Session) string {
			return d.grantAccess(ctx, s, args)
		}), true

	case "confirm_access":
		return d.protected(actorID, func(s models.Session) string {
			return d.confirmAccess(ctx, s, args)
		}), true

	case "share_account":
		return d.protected(actorID, func(s models.Session) string {
			return d.shareAccount(ctx, s, args)
		}), true

	case "pending_access":
		return d.protected(actorID, func(s models.Session) string {
			return d.pendingAccess(ctx, s)
		}), true

	default:
		return "Unknown command: " + cmd, true
	}
}

// protected resolves the actor's session first and short-circuits with the
// login prompt when there is none.
func (d *Dispatcher) protected(actorID string, fn func(models.Session) string) string {
	session, err := d.gate.Require(actorID)
	if err != nil {
		return "Please login first."
	}
	return fn(session)
}

func (d *Dispatcher) help() string {
	return "Commands: " + strings.Join([]string{
		d.prefix + "register <username> <password>",
		d.prefix + "login <username> <password>",
		d.prefix + "logout",
		d.prefix + "upload_account <game> <username> <password>",
		d.prefix + "list_accounts",
		d.prefix + "grant_access <account_id> <username>...",
		d.prefix + "confirm_access <account_id>",
		d.prefix + "share_account <account_id> <username> <account_username> <account_password>",
		d.prefix + "pending_access",
	}, "\n")
}

func (d *Dispatcher) register(ctx context.Context, actorID string, args []string) string {
	if len(args) != 2 {
		return fmt.Sprintf("Usage: %sregister <username> <password>", d.prefix)
	}
	err := d.users.Register(ctx, actorID, args[0], args[1])
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		return "Username already registered."
	case errors.Is(err, services.ErrRegistrationPending):
		return "Registration already pending approval."
	case err != nil:
		return d.failure(ctx, "register", err)
	}
	return "Registration submitted for approval."
}

func (d *Dispatcher) login(ctx context.Context, actorID string, args []string) string {
	if len(args) != 2 {
		return fmt.Sprintf("Usage: %slogin <username> <password>", d.prefix)
	}
	_, err := d.users.Login(ctx, actorID, args[0], args[1])
	switch {
	case errors.Is(err, services.ErrUnknownIdentity):
		return "No approved account found."
	case errors.Is(err, common.ErrorUnauthorized):
		return "Invalid credentials."
	case err != nil:
		return d.failure(ctx, "login", err)
	}
	return "Login successful."
}

func (d *Dispatcher) uploadAccount(ctx context.Context, session models.Session, args []string) string {
	if len(args) != 3 {
		return fmt.Sprintf("Usage: %supload_account <game> <username> <password>", d.prefix)
	}
	if err := d.accounts.Upload(ctx, session, args[0], args[1], args[2]); err != nil {
		return d.failure(ctx, "upload_account", err)
	}
	return "Game account upload submitted for approval."
}

func (d *Dispatcher) listAccounts(ctx context.Context, session models.Session) string {
	list, err := d.accounts.ListShared(ctx, session)
	if err != nil {
		return d.failure(ctx, "list_accounts", err)
	}
	if len(list) == 0 {
		return "No shared accounts found."
	}
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, "Shared accounts:")
	for _, a := range list {
		lines = append(lines, fmt.Sprintf("ID %d: %s", a.ID, a.Game))
	}
	return strings.Join(lines, "\n")
}

func (d *Dispatcher) grantAccess(ctx context.Context, session models.Session, args []string) string {
	if len(args) < 2 {
		return fmt.Sprintf("Usage: %sgrant_access <account_id> <username>...", d.prefix)
	}
	accountID, ok := parseID(args[0])
	if !ok {
		return "Account id must be a number."
	}

	results, err := d.access.Request(ctx, session, accountID, args[1:])
	switch {
	case errors.Is(err, common.ErrorNotOwner):
		return "Account not found or not owned by you."
	case errors.Is(err, common.ErrorValidation):
		return "Provide at least one username to grant access."
	case err != nil:
		return d.failure(ctx, "grant_access", err)
	}

	var lines []string
	requested := 0
	for _, r := range results {
		switch r.Outcome {
		case services.OutcomeRequested:
			requested++
		case services.OutcomeAlreadyRequested:
			lines = append(lines, fmt.Sprintf("User %s was already invited.", r.Username))
		case services.OutcomeAlreadyGranted:
			lines = append(lines, fmt.Sprintf("User %s already has confirmed access.", r.Username))
		case services.OutcomeUnknownUser:
			lines = append(lines, fmt.Sprintf("User %s is not registered.", r.Username))
		}
	}
	if requested > 0 {
		lines = append(lines, fmt.Sprintf("Access requests sent. Users must confirm with %sconfirm_access.", d.prefix))
	}
	return strings.Join(lines, "\n")
}

func (d *Dispatcher) confirmAccess(ctx context.Context, session models.Session, args []string) string {
	if len(args) != 1 {
		return fmt.Sprintf("Usage: %sconfirm_access <account_id>", d.prefix)
	}
	accountID, ok := parseID(args[0])
	if !ok {
		return "Account id must be a number."
	}

	err := d.access.Confirm(ctx, session, accountID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return "No pending access request found."
	case err != nil:
		return d.failure(ctx, "confirm_access", err)
	}
	return "Access confirmed. Ask the uploader to share the account details."
}

func (d *Dispatcher) shareAccount(ctx context.Context, session models.Session, args []string) string {
	if len(args) != 4 {
		return fmt.Sprintf("Usage: %sshare_account <account_id> <username> <account_username> <account_password>", d.prefix)
	}
	accountID, ok := parseID(args[0])
	if !ok {
		return "Account id must be a number."
	}

	_, err := d.access.Disclose(ctx, session, accountID, args[1], args[2], args[3])
	switch {
	case errors.Is(err, common.ErrorNotOwner):
		return "Account not found or not owned by you."
	case errors.Is(err, common.ErrorNotFound):
		return "User does not have confirmed access."
	case errors.Is(err, services.ErrRecipientUnreachable):
		return "Recipient not found in this server."
	case err != nil:
		return d.failure(ctx, "share_account", err)
	}
	return "Account details shared via DM."
}

func (d *Dispatcher) pendingAccess(ctx context.Context, session models.Session) string {
	ids, err := d.access.PendingFor(ctx, session)
	if err != nil {
		return d.failure(ctx, "pending_access", err)
	}
	if len(ids) == 0 {
		return "No pending access requests."
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "Pending access requests for account IDs: " + strings.Join(parts, ", ")
}

// failure logs the underlying error and hides it from the user; no error
// reaching here is something the caller can act on.
func (d *Dispatcher) failure(ctx context.Context, cmd string, err error) string {
	d.logger.Error(ctx, "command failed", "command", cmd, "error", err.Error())
	return "Something went wrong. Please try again later."
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
