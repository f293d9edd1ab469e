package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-shelter-go/pkg/utilities"
)

// DefaultTokenTTL is used when TokenConfig.TTL is zero.
const DefaultTokenTTL = time.Hour

// Principal is the sanitized identity carried in a token.
type Principal struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
}

// PrincipalFor projects an identity record down to what may go into a token.
func PrincipalFor(u *entity.User) Principal {
	p := Principal{ID: u.ID, Roles: u.Roles()}
	if u.Username != nil {
		p.Username = *u.Username
	}
	return p
}

// Claims is the token claim set.
type Claims struct {
	jwt.RegisteredClaims
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
}

// TokenConfig holds configuration for token issuance and verification.
type TokenConfig struct {
	// Secret is the HMAC signing key. Required.
	Secret []byte
	// Issuer is written to and required in the iss claim when set.
	Issuer string
	// TTL is the token lifetime.
	TTL time.Duration
}

// Token is a signed bearer token.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Tokens issues and verifies HS256 bearer tokens. It holds no state beyond
// its immutable configuration.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(cfg TokenConfig) (*Tokens, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &Tokens{secret: secret, issuer: cfg.Issuer, ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured token lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for p that expires after the configured TTL.
func (t *Tokens) Issue(p Principal) (Token, error) {
	if p.ID == "" || p.Username == "" {
		return Token{}, errors.New("issue token: principal needs id and username")
	}
	now := t.now()
	exp := now.Add(t.ttl)
	jti := utilities.NewTokenID()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
		Username: p.Username,
		Roles:    p.Roles,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ID: jti, ExpiresAt: time.Unix(exp.Unix(), 0)}, nil
}

// Verify checks the signature and expiry of token and returns its principal.
// Rejections are ErrInvalidToken or ErrTokenExpired.
func (t *Tokens) Verify(token string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return &Principal{ID: claims.Subject, Username: claims.Username, Roles: claims.Roles}, nil
}
