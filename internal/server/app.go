// Package server initializes and runs the authentication server: it loads
// key material, opens the database and applies migrations, wires the auth
// components together, and owns the process lifecycle.
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
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/osavchuk/authsvc/internal/logging"
	"github.com/osavchuk/authsvc/internal/server/config"
	"github.com/osavchuk/authsvc/internal/server/httpapi"
	"github.com/osavchuk/authsvc/internal/server/keys"
	"github.com/osavchuk/authsvc/internal/server/password"
	"github.com/osavchuk/authsvc/internal/server/repositories/repomanager"
	"github.com/osavchuk/authsvc/internal/server/services"
	"github.com/osavchuk/authsvc/internal/server/token"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
	httpServer  *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	keySet, err := loadKeys(cfg)
	if err != nil {
		return nil, fmt.Errorf("key material error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	issuer, err := token.NewIssuer(
		keySet,
		[]byte(cfg.RefreshTokenSecret),
		cfg.TokenIssuer,
		cfg.AccessTokenValidityDuration,
		cfg.RefreshTokenValidityDuration,
	)
	if err != nil {
		return nil, fmt.Errorf("token issuer error: %w", err)
	}
	verifier := token.NewVerifier(keySet, []byte(cfg.RefreshTokenSecret), cfg.TokenIssuer)

	authService := services.NewAuthService(
		db,
		repos,
		password.NewHasher(password.DefaultCost),
		issuer,
		verifier,
		logger,
	)

	httpServer := httpapi.NewServer(
		cfg.EndpointAddr,
		authService,
		verifier,
		keySet,
		logger,
		httpapi.CookieConfig{
			Domain:     cfg.CookieDomain,
			AccessTTL:  cfg.AccessTokenValidityDuration,
			RefreshTTL: cfg.RefreshTokenValidityDuration,
		},
	)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		authService: authService,
		httpServer:  httpServer,
	}, nil
}

func loadKeys(cfg *config.Config) (*keys.Set, error) {
	switch cfg.KeySource {
	case config.KeySourceS3:
		return keys.NewSetFromS3(context.Background(), keys.S3Config{
			Bucket:           cfg.S3Bucket,
			Region:           cfg.S3Region,
			RootUser:         cfg.S3RootUser,
			RootPassword:     cfg.S3RootPassword,
			BaseEndpoint:     cfg.S3BaseEndpoint,
			PrivateKeyObject: cfg.S3PrivateKeyObject,
			PublicKeyPrefix:  cfg.S3PublicKeyPrefix,
		})
	case config.KeySourceFile:
		return keys.NewSetFromFiles(cfg.PrivateKeyPath, cfg.RetiredPublicKeyPaths...)
	default:
		return nil, fmt.Errorf("unknown key source %q", cfg.KeySource)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// startSweepLoop periodically deletes expired refresh-token records so
// abandoned sessions do not accumulate forever.
func (app *App) startSweepLoop(ctx context.Context) {
	interval := app.config.RefreshTokenCleanupInterval
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := app.authService.SweepExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "refresh token sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				app.logger.Info(ctx, "expired refresh tokens deleted", "count", deleted)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSweepLoop(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server stopped", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
