package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used when none is configured.
const DefaultHashCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// bcrypt hashes look like $2a$10$<22 char salt><31 char checksum>; the salt
// is everything up to and including the 22 salt characters.
const bcryptSaltLen = 29

// Credential is the salt/hash pair stored on an identity record.
type Credential struct {
	Salt string
	Hash string
}

// PasswordHasher derives and checks salted password hashes.
type PasswordHasher interface {
	HashPassword(ctx context.Context, plaintext string) (Credential, error)
	VerifyPassword(ctx context.Context, plaintext, storedHash string) (bool, error)
}

// BcryptHasher implementation. Hash computations run off the calling
// goroutine, bounded by a semaphore, so a cancelled caller stops waiting.
type BcryptHasher struct {
	cost int
	sem  chan struct{}
}

// NewBcryptHasher validates cost (0 selects DefaultHashCost).
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = DefaultHashCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("hash cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost, sem: make(chan struct{}, runtime.GOMAXPROCS(0))}, nil
}

// Cost returns the configured work factor.
func (b *BcryptHasher) Cost() int { return b.cost }

func (b *BcryptHasher) HashPassword(ctx context.Context, plaintext string) (Credential, error) {
	var h []byte
	err := b.run(ctx, func() error {
		var err error
		h, err = bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return Credential{}, err
		}
		return Credential{}, fmt.Errorf("%w: %v", ErrHashing, err)
	}
	hash := string(h)
	return Credential{Salt: hash[:bcryptSaltLen], Hash: hash}, nil
}

// VerifyPassword reports whether plaintext matches storedHash. A wrong
// password is (false, nil); only a malformed storedHash is an error.
func (b *BcryptHasher) VerifyPassword(ctx context.Context, plaintext, storedHash string) (bool, error) {
	// bcrypt only reads the first 72 bytes; a longer input can never have been stored.
	if len(plaintext) > MaxPasswordBytes {
		return false, nil
	}
	var cmpErr error
	err := b.run(ctx, func() error {
		cmpErr = bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
		return nil
	})
	if err != nil {
		return false, err
	}
	switch {
	case cmpErr == nil:
		return true, nil
	case errors.Is(cmpErr, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrHashing, cmpErr)
	}
}

// run executes fn on a worker goroutine and waits for it or for ctx.
func (b *BcryptHasher) run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	done := make(chan error, 1)
	go func() {
		defer func() { <-b.sem }()
		done <- fn()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
