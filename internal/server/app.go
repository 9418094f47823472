// Package server initializes and runs the GuildVault server. It opens the
// database, applies migrations, wires the services to the session registry
// and the Discord gateway, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ddanshin/guildvault/internal/logging"
	"github.com/ddanshin/guildvault/internal/secret"
	"github.com/ddanshin/guildvault/internal/server/auth"
	"github.com/ddanshin/guildvault/internal/server/bot"
	"github.com/ddanshin/guildvault/internal/server/config"
	"github.com/ddanshin/guildvault/internal/server/discord"
	"github.com/ddanshin/guildvault/internal/server/repositories/repomanager"
	"github.com/ddanshin/guildvault/internal/server/services"
	"github.com/ddanshin/guildvault/internal/server/sessions"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	gateway    *discord.Gateway
	dispatcher *bot.Dispatcher
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	if c.DiscordToken == "" {
		return nil, fmt.Errorf("discord token is not configured")
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	gw, err := discord.NewGateway(c.DiscordToken, logger)
	if err != nil {
		return nil, fmt.Errorf("gateway init error: %w", err)
	}

	registry := sessions.NewRegistry(c.SessionTTL)
	gate := auth.NewGate(registry)
	hasher := secret.NewHasher()

	us := services.NewUserService(db, rm, hasher, registry)
	as := services.NewAccountService(db, rm, hasher)
	xs := services.NewAccessService(db, rm, gw, logger)

	d := bot.NewDispatcher(c.CommandPrefix, us, as, xs, gate, logger)

	return &App{config: c, logger: logger, db: db, gateway: gw, dispatcher: d}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGateway(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.gateway.Run(ctx, app.dispatcher); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGateway(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
