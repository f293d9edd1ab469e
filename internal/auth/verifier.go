package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/user/entity"
)

// IdentityFinder looks up identity records. *store.Collection[entity.User]
// satisfies it.
type IdentityFinder interface {
	FindFirst(ctx context.Context, filter store.Filter) (*entity.User, bool, error)
}

// FailureReason tells apart the internal causes of a failed verification.
// It is for logging only; callers outside this package see one outcome.
type FailureReason int

const (
	ReasonNone FailureReason = iota
	ReasonUnknownUser
	ReasonNoCredentials
	ReasonBadPassword
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonUnknownUser:
		return "unknown user"
	case ReasonNoCredentials:
		return "no credentials"
	case ReasonBadPassword:
		return "bad password"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Outcome is the result of a local credential check. Identity is set only
// when Matched. Ambiguous marks a lookup that found more than one record
// for the username; the first one was used.
type Outcome struct {
	Matched   bool
	Identity  *entity.User
	Reason    FailureReason
	Ambiguous bool
}

// LocalVerifier checks a username/password pair against stored identities.
type LocalVerifier struct {
	users  IdentityFinder
	hasher PasswordHasher
}

func NewLocalVerifier(users IdentityFinder, hasher PasswordHasher) *LocalVerifier {
	return &LocalVerifier{users: users, hasher: hasher}
}

// NormalizeUsername is applied to usernames both when they are stored and
// when they are looked up.
func NormalizeUsername(s string) string { return strings.TrimSpace(s) }

// VerifyLocal never fails for an unknown user or a wrong password; errors
// are store or hashing failures only.
func (v *LocalVerifier) VerifyLocal(ctx context.Context, username, password string) (Outcome, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return Outcome{Reason: ReasonUnknownUser}, nil
	}
	u, more, err := v.users.FindFirst(ctx, store.Filter{"username": username})
	if err != nil {
		return Outcome{}, fmt.Errorf("lookup identity: %w", err)
	}
	if u == nil {
		return Outcome{Reason: ReasonUnknownUser}, nil
	}
	if !u.HasCredentials() {
		return Outcome{Reason: ReasonNoCredentials, Ambiguous: more}, nil
	}
	ok, err := v.hasher.VerifyPassword(ctx, password, *u.PasswordHash)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Reason: ReasonBadPassword, Ambiguous: more}, nil
	}
	return Outcome{Matched: true, Identity: u, Ambiguous: more}, nil
}
