package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"HTTP_ADDR", "HTTP_SHUTDOWN_TIMEOUT_SEC", "SIGNING_SECRET", "HASH_COST", "TOKEN_TTL_SECONDS",
	"TOKEN_ISSUER", "STORE_DRIVER", "USER_COLLECTION", "SHELTER_COLLECTION", "SERVICE_COLLECTION",
	"BED_AMOUNT_COLLECTION", "ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_EMAIL",
	"ADMIN_FIRST_NAME", "ADMIN_LAST_NAME",
}

// clearEnv unsets every key Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Setenv("HTTP_ADDR", "0.0.0.0:8431")
	t.Setenv("TOKEN_ISSUER", "shelter-directory")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("USER_COLLECTION", "users")
	t.Setenv("SHELTER_COLLECTION", "shelters")
	t.Setenv("SERVICE_COLLECTION", "services")
	t.Setenv("BED_AMOUNT_COLLECTION", "bed_amounts")
	t.Setenv("ADMIN_USERNAME", "SuperAdmin")
	t.Setenv("ADMIN_FIRST_NAME", "Super")
	t.Setenv("ADMIN_LAST_NAME", "Admin")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGNING_SECRET", "s3cr3t")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8431", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "s3cr3t", cfg.Auth.SigningSecret)
	assert.Equal(t, 10, cfg.Auth.HashCost)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "shelter-directory", cfg.Auth.TokenIssuer)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, Collections{Users: "users", Shelters: "shelters", Services: "services", BedAmounts: "bed_amounts"}, cfg.Collections)
	assert.Equal(t, "SuperAdmin", cfg.Admin.Username)
	assert.Empty(t, cfg.Admin.Password)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGNING_SECRET", "s3cr3t")
	t.Setenv("HASH_COST", "12")
	t.Setenv("TOKEN_TTL_SECONDS", "60")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("USER_COLLECTION", "User")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Auth.HashCost)
	assert.Equal(t, time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "User", cfg.Collections.Users)
}

func TestLoad_MissingSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SIGNING_SECRET is required")
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGNING_SECRET", "s3cr3t")
	t.Setenv("HASH_COST", "abc")
	t.Setenv("TOKEN_TTL_SECONDS", "0")
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HASH_COST must be an integer")
	assert.Contains(t, err.Error(), "TOKEN_TTL_SECONDS must be between 1 and")
	assert.Contains(t, err.Error(), "STORE_DRIVER")

	t.Setenv("HASH_COST", "3")
	t.Setenv("TOKEN_TTL_SECONDS", "60")
	t.Setenv("STORE_DRIVER", "memory")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HASH_COST must be between")
}

func TestLoad_DurationsBoundedBeforeConversion(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGNING_SECRET", "s3cr3t")
	// 9223372036 * time.Second overflows int64 and wraps to a positive value
	t.Setenv("TOKEN_TTL_SECONDS", "9223372036")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT_SEC", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_TTL_SECONDS must be between 1 and 2592000")
	assert.Contains(t, err.Error(), "HTTP_SHUTDOWN_TIMEOUT_SEC must be between 1 and 600")

	t.Setenv("TOKEN_TTL_SECONDS", "2592000")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT_SEC", "600")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.HTTP.ShutdownTimeout)
}
