package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/osavchuk/authsvc/internal/common"
	"github.com/osavchuk/authsvc/internal/server/keys"
	"github.com/osavchuk/authsvc/internal/server/models"
)

// Issuer signs access and refresh tokens. Access tokens are RS256-signed with
// the provider's current key and carry its key id in the header; refresh
// tokens are HS256-signed with a long-lived secret.
type Issuer struct {
	keys          keys.Provider
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer validates its inputs once so a misconfigured service fails at
// startup instead of at the first login.
func NewIssuer(provider keys.Provider, refreshSecret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if provider == nil || provider.SigningKey() == nil {
		return nil, fmt.Errorf("%w: no signing key", common.ErrKeyMaterial)
	}
	if len(refreshSecret) == 0 {
		return nil, fmt.Errorf("%w: empty refresh token secret", common.ErrKeyMaterial)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("invalid token TTL configuration")
	}
	return &Issuer{
		keys:          provider,
		refreshSecret: refreshSecret,
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssueAccess signs a new access token for the user.
func (i *Issuer) IssueAccess(userID int64, role models.Role) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	t.Header["kid"] = i.keys.KeyID()

	signed, err := t.SignedString(i.keys.SigningKey())
	if err != nil {
		return "", fmt.Errorf("error signing access token: %w", err)
	}
	return signed, nil
}

// IssueRefresh signs a new refresh token referencing the persisted record.
// The record must already exist; callers persist first, then sign.
func (i *Issuer) IssueRefresh(userID int64, role models.Role, recordID int64) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		Role:     role,
		RecordID: strconv.FormatInt(recordID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("error signing refresh token: %w", err)
	}
	return signed, nil
}

// AccessTTL returns the configured access token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }
