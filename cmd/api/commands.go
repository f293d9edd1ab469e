package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/directory"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-shelter-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-shelter-go/pkg/database"
)

// backend is an opened record store plus its lifecycle hooks.
type backend struct {
	store store.Store
	ping  func(context.Context) error
	close func() error
}

func openBackend(ctx context.Context, cfg config.Config, migrate bool, logger *zap.SugaredLogger) (*backend, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory store; records are lost on exit")
		ms := store.NewMemoryStore().WithUnique(cfg.Collections.Users, "username")
		return &backend{store: ms, close: func() error { return nil }}, nil
	}

	sqlDB, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	b, err := postgresBackend(ctx, sqlDB, cfg, migrate)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return b, nil
}

// postgresBackend prepares an open connection: migrations, then the unique
// username index for the configured users collection.
func postgresBackend(ctx context.Context, sqlDB *sql.DB, cfg config.Config, migrate bool) (*backend, error) {
	if migrate {
		if err := database.Migrate(ctx, sqlDB); err != nil {
			return nil, err
		}
	}
	// wrap with sqlx for the document store
	db := sqlx.NewDb(sqlDB, "postgres")
	ps := store.NewPostgresStore(db)
	if err := ps.EnsureUnique(ctx, cfg.Collections.Users, "username"); err != nil {
		return nil, err
	}
	return &backend{store: ps, ping: db.PingContext, close: db.Close}, nil
}

type services struct {
	users  *user.UserService
	authn  *auth.Authenticator
	tokens *auth.Tokens
}

func buildServices(cfg config.Config, b *backend, logger *zap.SugaredLogger) (*services, error) {
	hasher, err := auth.NewBcryptHasher(cfg.Auth.HashCost)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokens(auth.TokenConfig{
		Secret: []byte(cfg.Auth.SigningSecret),
		Issuer: cfg.Auth.TokenIssuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, err
	}
	repo := userrepo.NewUserRepo(b.store, cfg.Collections.Users)
	return &services{
		users:  user.NewUserService(repo, hasher, logger),
		authn:  auth.NewAuthenticator(auth.NewLocalVerifier(repo.Collection(), hasher), tokens, logger),
		tokens: tokens,
	}, nil
}

func serveCmd(logger *zap.SugaredLogger) *cli.Command {
	var skipMigrate bool
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "skip-migrate",
				Usage:       "Do not apply pending migrations on start",
				EnvVars:     []string{"SKIP_MIGRATE"},
				Destination: &skipMigrate,
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			b, err := openBackend(c.Context, cfg, !skipMigrate, logger)
			if err != nil {
				return err
			}
			defer b.close()
			svc, err := buildServices(cfg, b, logger)
			if err != nil {
				return err
			}

			handler := router.RegisterRoutes(logger, router.Deps{
				Store:  b.store,
				Users:  svc.users,
				Auth:   svc.authn,
				Tokens: svc.tokens,
				Directory: directory.Collections{
					Shelters:   cfg.Collections.Shelters,
					Services:   cfg.Collections.Services,
					BedAmounts: cfg.Collections.BedAmounts,
				},
				HealthCheck: b.ping,
			})
			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Infow("http server listening", "addr", cfg.HTTP.Addr, "store", cfg.StoreDriver)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server failed: %w", err)
				}
				return nil
			case <-c.Context.Done():
			}

			logger.Info("shutting down")
			doneCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(doneCtx); err != nil {
				logger.Warnf("http server shutdown failed: %v", err)
			}
			logger.Info("goodbye")
			return nil
		},
	}
}

func migrateCmd(logger *zap.SugaredLogger) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations and exit",
		Action: func(c *cli.Context) error {
			sqlDB, err := database.Connect(database.ConfigFromEnv())
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer sqlDB.Close()
			if err := database.Migrate(c.Context, sqlDB); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

func seedAdminCmd(logger *zap.SugaredLogger) *cli.Command {
	return &cli.Command{
		Name:  "seed-admin",
		Usage: "Create the first admin identity from ADMIN_* variables",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Admin.Password == "" {
				return errors.New("ADMIN_PASSWORD is required")
			}
			if cfg.StoreDriver == config.StoreMemory {
				return errors.New("seed-admin needs a persistent store, set STORE_DRIVER=postgres")
			}
			b, err := openBackend(c.Context, cfg, true, logger)
			if err != nil {
				return err
			}
			defer b.close()
			svc, err := buildServices(cfg, b, logger)
			if err != nil {
				return err
			}
			email := cfg.Admin.Email
			if email == "" {
				email = cfg.Admin.Username + "@localhost"
			}
			u, err := svc.users.CreateAdmin(c.Context, user.SignupInput{
				FirstName: cfg.Admin.FirstName,
				LastName:  cfg.Admin.LastName,
				Email:     email,
				Username:  cfg.Admin.Username,
				Password:  cfg.Admin.Password,
			})
			if errors.Is(err, user.ErrUsernameTaken) {
				logger.Infow("admin already exists", "username", cfg.Admin.Username)
				return nil
			}
			if err != nil {
				return err
			}
			logger.Infow("admin created", "user_id", u.ID, "username", cfg.Admin.Username)
			return nil
		},
	}
}
