// Package config loads process configuration from the environment. A .env
// file, when present, is loaded by main before Load is called.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Upper bounds for the duration settings.
const (
	maxTokenTTLSeconds = 30 * 24 * 3600
	maxShutdownSeconds = 600
)

type Config struct {
	HTTP        HTTPConfig
	Auth        AuthConfig
	StoreDriver string
	Collections Collections
	Admin       AdminConfig
}

type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type AuthConfig struct {
	SigningSecret string
	HashCost      int
	TokenTTL      time.Duration
	TokenIssuer   string
}

// Collections names the store collection of each record type.
type Collections struct {
	Users      string
	Shelters   string
	Services   string
	BedAmounts string
}

// AdminConfig seeds the first administrative identity.
type AdminConfig struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

func Load() (Config, error) {
	var errs []error
	intEnv := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be an integer: %w", key, err))
			return def
		}
		return n
	}
	// seconds bounds the value before it becomes a time.Duration.
	seconds := func(key string, def, limit int) time.Duration {
		n := intEnv(key, def)
		if n <= 0 || n > limit {
			errs = append(errs, fmt.Errorf("%s must be between 1 and %d", key, limit))
			return 0
		}
		return time.Duration(n) * time.Second
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", "0.0.0.0:8431"),
			ShutdownTimeout: seconds("HTTP_SHUTDOWN_TIMEOUT_SEC", 5, maxShutdownSeconds),
		},
		Auth: AuthConfig{
			SigningSecret: os.Getenv("SIGNING_SECRET"),
			HashCost:      intEnv("HASH_COST", 10),
			TokenTTL:      seconds("TOKEN_TTL_SECONDS", 3600, maxTokenTTLSeconds),
			TokenIssuer:   getEnv("TOKEN_ISSUER", "shelter-directory"),
		},
		StoreDriver: getEnv("STORE_DRIVER", StorePostgres),
		Collections: Collections{
			Users:      getEnv("USER_COLLECTION", "users"),
			Shelters:   getEnv("SHELTER_COLLECTION", "shelters"),
			Services:   getEnv("SERVICE_COLLECTION", "services"),
			BedAmounts: getEnv("BED_AMOUNT_COLLECTION", "bed_amounts"),
		},
		Admin: AdminConfig{
			Username:  getEnv("ADMIN_USERNAME", "SuperAdmin"),
			Password:  os.Getenv("ADMIN_PASSWORD"),
			Email:     os.Getenv("ADMIN_EMAIL"),
			FirstName: getEnv("ADMIN_FIRST_NAME", "Super"),
			LastName:  getEnv("ADMIN_LAST_NAME", "Admin"),
		},
	}

	if cfg.HTTP.Addr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must not be empty"))
	}
	if cfg.Auth.SigningSecret == "" {
		errs = append(errs, errors.New("SIGNING_SECRET is required"))
	}
	if cfg.Auth.HashCost < bcrypt.MinCost || cfg.Auth.HashCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("HASH_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	switch cfg.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q", StorePostgres, StoreMemory))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
