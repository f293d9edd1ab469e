package main

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/user"
)

func memoryConfig() config.Config {
	return config.Config{
		Auth:        config.AuthConfig{SigningSecret: "cmd-secret", HashCost: 4, TokenTTL: time.Hour, TokenIssuer: "shelter-directory"},
		StoreDriver: config.StoreMemory,
		Collections: config.Collections{Users: "users", Shelters: "shelters", Services: "services", BedAmounts: "bed_amounts"},
	}
}

func TestBuildServices_Memory(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop().Sugar()
	cfg := memoryConfig()

	b, err := openBackend(ctx, cfg, true, logger)
	require.NoError(t, err)
	defer b.close()
	svc, err := buildServices(cfg, b, logger)
	require.NoError(t, err)

	in := user.SignupInput{FirstName: "Super", LastName: "Admin", Email: "root@localhost", Username: "SuperAdmin", Password: "change-me"}
	u, err := svc.users.CreateAdmin(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, user.AdminMarker, u.Admin)

	// the memory backend enforces username uniqueness
	_, err = svc.users.CreateAdmin(ctx, in)
	assert.ErrorIs(t, err, user.ErrUsernameTaken)

	res, err := svc.authn.Authenticate(ctx, "SuperAdmin", "change-me")
	require.NoError(t, err)
	require.True(t, res.Matched)
	p, err := svc.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, p.Roles)
}

func TestBuildServices_BadCost(t *testing.T) {
	cfg := memoryConfig()
	cfg.Auth.HashCost = 99

	_, err := buildServices(cfg, &backend{}, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestSeedAdmin_RequiresPassword(t *testing.T) {
	t.Setenv("SIGNING_SECRET", "cmd-secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ADMIN_PASSWORD", "")

	app := &cli.App{Commands: []*cli.Command{seedAdminCmd(zap.NewNop().Sugar())}}
	err := app.Run([]string{"service-shelter", "seed-admin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD is required")
}

func TestPostgresBackend_IndexesConfiguredUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	cfg := memoryConfig()
	cfg.StoreDriver = config.StorePostgres
	cfg.Collections.Users = "people"

	mock.ExpectExec(regexp.QuoteMeta(`ON documents ((body->>'username')) WHERE collection = 'people'`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	b, err := postgresBackend(context.Background(), db, cfg, false)
	require.NoError(t, err)
	assert.NotNil(t, b.store)
	require.NoError(t, mock.ExpectationsWereMet())
}
