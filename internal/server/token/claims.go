// Package token issues and verifies the two token kinds of the service:
// RS256 access tokens carrying the signing key id, and HS256 refresh tokens
// carrying the id of their persisted store record.
package token

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/osavchuk/authsvc/internal/common"
	"github.com/osavchuk/authsvc/internal/server/models"
)

// AccessClaims are the claims of a short-lived access token.
type AccessClaims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims are the claims of a long-lived refresh token. RecordID names
// the persisted refresh-token row, making the token individually revocable.
type RefreshClaims struct {
	Role     models.Role `json:"role"`
	RecordID string      `json:"id"`
	jwt.RegisteredClaims
}

// UserID decodes the numeric identity id from the subject claim.
func (c *AccessClaims) UserID() (int64, error) {
	return parseSubject(c.Subject)
}

// UserID decodes the numeric identity id from the subject claim.
func (c *RefreshClaims) UserID() (int64, error) {
	return parseSubject(c.Subject)
}

// StoreRecordID decodes the numeric refresh-record id.
func (c *RefreshClaims) StoreRecordID() (int64, error) {
	id, err := strconv.ParseInt(c.RecordID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed record id %q", common.ErrInvalidToken, c.RecordID)
	}
	return id, nil
}

func parseSubject(sub string) (int64, error) {
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed subject %q", common.ErrInvalidToken, sub)
	}
	return id, nil
}
