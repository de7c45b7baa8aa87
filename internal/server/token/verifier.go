package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/osavchuk/authsvc/internal/common"
	"github.com/osavchuk/authsvc/internal/server/keys"
)

// Verifier validates token signatures and claims. Every failure wraps
// common.ErrInvalidToken; the wrapped detail is for server-side logs only and
// must never reach a client.
type Verifier struct {
	keys          keys.Provider
	refreshSecret []byte
	issuer        string
}

func NewVerifier(provider keys.Provider, refreshSecret []byte, issuer string) *Verifier {
	return &Verifier{keys: provider, refreshSecret: refreshSecret, issuer: issuer}
}

// VerifyAccess checks the access token's structure, key id, signature, expiry
// and issuer, in that order; the first failing step wins.
func (v *Verifier) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	t, err := jwt.ParseWithClaims(tokenStr, claims, v.resolveKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// VerifyRefresh checks a refresh token against the shared secret. Store-level
// checks (record existence, record expiry) are the caller's job.
func (v *Verifier) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}

	t, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) { return v.refreshSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// resolveKey selects the verification key named by the token's kid header.
func (v *Verifier) resolveKey(t *jwt.Token) (any, error) {
	kid, ok := t.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, fmt.Errorf("missing kid header")
	}

	pub, ok := v.keys.VerificationKeys()[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return pub, nil
}
