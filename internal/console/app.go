// Package console implements the interactive moderation tool. A moderator
// proves knowledge of the master password, reviews the two pending queues
// (registrations and account uploads) and approves or rejects entries by id.
package console

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ddanshin/guildvault/internal/console/config"
	"github.com/ddanshin/guildvault/internal/secret"
	"github.com/ddanshin/guildvault/internal/server/models"
	"github.com/ddanshin/guildvault/internal/server/repositories/repomanager"
	"github.com/ddanshin/guildvault/internal/server/services"
)

// ErrInvalidMasterPassword is returned by Run when the entered password
// does not match the configured hash.
var ErrInvalidMasterPassword = errors.New("invalid master password")

// moderationOps is the slice of ModerationService the console needs.
// The concrete service satisfies it; tests can provide a stub.
type moderationOps interface {
	ListPendingRegistrations(ctx context.Context) ([]models.PendingUser, error)
	ListPendingAccounts(ctx context.Context) ([]models.PendingAccount, error)
	ResolveRegistrations(ctx context.Context, approve, reject []int64) error
	ResolveAccounts(ctx context.Context, approve, reject []int64) error
}

type App struct {
	config     *config.Config
	db         *sql.DB
	moderation moderationOps
	hasher     *secret.Hasher
	in         *bufio.Reader
	out        io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	ms := services.NewModerationService(db, rm)

	return &App{
		config:     c,
		db:         db,
		moderation: ms,
		hasher:     secret.NewHasher(),
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}, nil
}

// Run drives one complete moderation pass: master password check, then
// the registration queue, then the account queue.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	if err := app.verifyMasterPassword(); err != nil {
		return err
	}
	if err := app.reviewRegistrations(ctx); err != nil {
		return err
	}
	return app.reviewAccounts(ctx)
}

func (app *App) verifyMasterPassword() error {
	pw, err := getPassword(app.out, "Master password: ")
	if err != nil {
		return err
	}
	if !app.hasher.Verify(string(pw), []byte(app.config.MasterPasswordHash)) {
		return ErrInvalidMasterPassword
	}
	return nil
}

func (app *App) reviewRegistrations(ctx context.Context) error {
	pending, err := app.moderation.ListPendingRegistrations(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(app.out, "No pending user registrations.")
		return nil
	}

	fmt.Fprintln(app.out, "Pending user registrations:")
	for _, p := range pending {
		fmt.Fprintf(app.out, "  ID %d: %s requested by %s\n", p.ID, p.Username, p.RequestedBy)
	}

	approve, err := promptIDs(app.in, app.out, "Approve user IDs (comma-separated): ")
	if err != nil {
		return err
	}
	reject, err := promptIDs(app.in, app.out, "Reject user IDs (comma-separated): ")
	if err != nil {
		return err
	}

	return app.moderation.ResolveRegistrations(ctx, approve, reject)
}

func (app *App) reviewAccounts(ctx context.Context) error {
	pending, err := app.moderation.ListPendingAccounts(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(app.out, "No pending game account uploads.")
		return nil
	}

	fmt.Fprintln(app.out, "Pending game account uploads:")
	for _, p := range pending {
		fmt.Fprintf(app.out, "  ID %d: %s uploaded by %s\n", p.ID, p.Game, p.UploaderUsername)
	}

	approve, err := promptIDs(app.in, app.out, "Approve account IDs (comma-separated): ")
	if err != nil {
		return err
	}
	reject, err := promptIDs(app.in, app.out, "Reject account IDs (comma-separated): ")
	if err != nil {
		return err
	}

	return app.moderation.ResolveAccounts(ctx, approve, reject)
}
