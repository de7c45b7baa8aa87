package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osavchuk/authsvc/internal/common"
	"github.com/osavchuk/authsvc/internal/server/keys"
	"github.com/osavchuk/authsvc/internal/server/models"
)

const testIssuer = "auth-service"

var testSecret = []byte("refresh-secret")

func newKeySet(t *testing.T, retired ...[]byte) *keys.Set {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	raw := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	set, err := keys.NewSet(raw, retired...)
	require.NoError(t, err)
	return set
}

func newIssuerVerifier(t *testing.T, set *keys.Set) (*Issuer, *Verifier) {
	t.Helper()
	iss, err := NewIssuer(set, testSecret, testIssuer, time.Hour, 365*24*time.Hour)
	require.NoError(t, err)
	return iss, NewVerifier(set, testSecret, testIssuer)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	set := newKeySet(t)
	iss, ver := newIssuerVerifier(t, set)

	signed, err := iss.IssueAccess(42, models.RoleCustomer)
	require.NoError(t, err)

	claims, err := ver.VerifyAccess(signed)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, models.RoleCustomer, claims.Role)
	assert.Equal(t, testIssuer, claims.Issuer)
}

func TestAccessToken_CarriesKeyID(t *testing.T) {
	set := newKeySet(t)
	iss, _ := newIssuerVerifier(t, set)

	signed, err := iss.IssueAccess(1, models.RoleCustomer)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(signed, &AccessClaims{})
	require.NoError(t, err)
	assert.Equal(t, set.KeyID(), parsed.Header["kid"])
	assert.Equal(t, "RS256", parsed.Header["alg"])
}

func TestVerifyAccess_IsIdempotent(t *testing.T) {
	set := newKeySet(t)
	iss, ver := newIssuerVerifier(t, set)

	signed, err := iss.IssueAccess(7, models.RoleAdmin)
	require.NoError(t, err)

	first, err := ver.VerifyAccess(signed)
	require.NoError(t, err)
	second, err := ver.VerifyAccess(signed)
	require.NoError(t, err)

	assert.Equal(t, first.Subject, second.Subject)
	assert.Equal(t, first.Role, second.Role)
}

func TestVerifyAccess_UnknownKey(t *testing.T) {
	issuerSet := newKeySet(t)
	verifierSet := newKeySet(t) // different key material, different kid

	iss, err := NewIssuer(issuerSet, testSecret, testIssuer, time.Hour, time.Hour)
	require.NoError(t, err)
	ver := NewVerifier(verifierSet, testSecret, testIssuer)

	signed, err := iss.IssueAccess(1, models.RoleCustomer)
	require.NoError(t, err)

	_, err = ver.VerifyAccess(signed)
	assert.True(t, errors.Is(err, common.ErrInvalidToken), "got %v", err)
}

func TestVerifyAccess_RetiredKeyStillVerifies(t *testing.T) {
	oldSet := newKeySet(t)
	oldIss, err := NewIssuer(oldSet, testSecret, testIssuer, time.Hour, time.Hour)
	require.NoError(t, err)

	signed, err := oldIss.IssueAccess(1, models.RoleCustomer)
	require.NoError(t, err)

	// rotate: new signing key, old public key kept in the verification set
	oldPub := &oldSet.SigningKey().PublicKey
	der, err := x509.MarshalPKIXPublicKey(oldPub)
	require.NoError(t, err)
	retired := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	newSet := newKeySet(t, retired)
	ver := NewVerifier(newSet, testSecret, testIssuer)

	_, err = ver.VerifyAccess(signed)
	assert.NoError(t, err)
}

func TestVerifyAccess_Expired(t *testing.T) {
	set := newKeySet(t)
	iss, err := NewIssuer(set, testSecret, testIssuer, time.Nanosecond, time.Hour)
	require.NoError(t, err)
	ver := NewVerifier(set, testSecret, testIssuer)

	signed, err := iss.IssueAccess(1, models.RoleCustomer)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = ver.VerifyAccess(signed)
	assert.True(t, errors.Is(err, common.ErrInvalidToken), "got %v", err)
}

func TestVerifyAccess_Malformed(t *testing.T) {
	set := newKeySet(t)
	_, ver := newIssuerVerifier(t, set)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := ver.VerifyAccess(tok)
		assert.True(t, errors.Is(err, common.ErrInvalidToken), "token %q: got %v", tok, err)
	}
}

func TestVerifyAccess_RejectsRefreshTokenAlg(t *testing.T) {
	set := newKeySet(t)
	iss, ver := newIssuerVerifier(t, set)

	// an HS256 refresh token must never pass the access gate
	signed, err := iss.IssueRefresh(1, models.RoleCustomer, 5)
	require.NoError(t, err)

	_, err = ver.VerifyAccess(signed)
	assert.True(t, errors.Is(err, common.ErrInvalidToken), "got %v", err)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	set := newKeySet(t)
	iss, ver := newIssuerVerifier(t, set)

	signed, err := iss.IssueRefresh(42, models.RoleCustomer, 17)
	require.NoError(t, err)

	claims, err := ver.VerifyRefresh(signed)
	require.NoError(t, err)

	recordID, err := claims.StoreRecordID()
	require.NoError(t, err)
	assert.Equal(t, int64(17), recordID)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyRefresh_WrongSecret(t *testing.T) {
	set := newKeySet(t)
	iss, _ := newIssuerVerifier(t, set)
	other := NewVerifier(set, []byte("different-secret"), testIssuer)

	signed, err := iss.IssueRefresh(1, models.RoleCustomer, 1)
	require.NoError(t, err)

	_, err = other.VerifyRefresh(signed)
	assert.True(t, errors.Is(err, common.ErrInvalidToken), "got %v", err)
}

func TestNewIssuer_Validation(t *testing.T) {
	set := newKeySet(t)

	_, err := NewIssuer(nil, testSecret, testIssuer, time.Hour, time.Hour)
	assert.True(t, errors.Is(err, common.ErrKeyMaterial), "got %v", err)

	_, err = NewIssuer(set, nil, testIssuer, time.Hour, time.Hour)
	assert.True(t, errors.Is(err, common.ErrKeyMaterial), "got %v", err)

	_, err = NewIssuer(set, testSecret, testIssuer, 0, time.Hour)
	assert.Error(t, err)
}
