// Package common defines shared sentinel errors used across the service
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential errors. ErrorInvalidCredentials is deliberately shared by the
	// "unknown email" and "wrong password" paths so login failures are
	// indistinguishable to the caller.
	ErrorEmailExists        = errors.New("email is already present")
	ErrorInvalidCredentials = errors.New("email or password does not match")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Key material errors (fatal at startup).
	ErrKeyMaterial = errors.New("invalid key material")
)
