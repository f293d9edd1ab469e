package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Result of an authentication attempt. Token fields are set only when Matched.
type Result struct {
	Matched   bool
	Token     string
	ExpiresAt time.Time
	Principal *Principal
}

// Authenticator runs local verification and, on success, issues a token.
type Authenticator struct {
	verifier *LocalVerifier
	tokens   *Tokens
	logger   *zap.SugaredLogger
}

func NewAuthenticator(verifier *LocalVerifier, tokens *Tokens, logger *zap.SugaredLogger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Authenticator{verifier: verifier, tokens: tokens, logger: logger}
}

// Authenticate returns Matched=false with a nil error for any credential
// mismatch; errors are reserved for store, hashing and signing failures.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (Result, error) {
	out, err := a.verifier.VerifyLocal(ctx, username, password)
	if err != nil {
		return Result{}, err
	}
	if out.Ambiguous {
		a.logger.Warnw("multiple identities share a username, using the first", "username", username)
	}
	if !out.Matched {
		a.logger.Debugw("authentication failed", "username", username, "reason", out.Reason.String())
		return Result{}, nil
	}
	p := PrincipalFor(out.Identity)
	tok, err := a.tokens.Issue(p)
	if err != nil {
		return Result{}, err
	}
	a.logger.Debugw("authenticated", "user_id", p.ID, "jti", tok.ID)
	return Result{Matched: true, Token: tok.Value, ExpiresAt: tok.ExpiresAt, Principal: &p}, nil
}

// VerifyRequestToken is the gate used before protected operations.
func (a *Authenticator) VerifyRequestToken(token string) (*Principal, error) {
	return a.tokens.Verify(token)
}
