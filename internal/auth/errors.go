package auth

import "errors"

var (
	// ErrHashing means the random source or the hashing primitive failed, or a
	// stored hash is malformed. Fatal to the current operation.
	ErrHashing = errors.New("password hashing failure")

	// ErrBadCredentials is the single outward signal for a failed login; it
	// does not reveal whether the username exists.
	ErrBadCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates the token is malformed or has an invalid signature.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingSecret is returned when the signing secret is not configured.
	ErrMissingSecret = errors.New("signing secret is required")
)
