package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/osavchuk/authsvc/internal/server/services"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// CookieConfig controls the attributes of the token cookies.
type CookieConfig struct {
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *Server) setAuthCookies(w http.ResponseWriter, pair *services.TokenPair) {
	http.SetCookie(w, s.tokenCookie(accessTokenCookie, pair.AccessToken, s.cookies.AccessTTL))
	http.SetCookie(w, s.tokenCookie(refreshTokenCookie, pair.RefreshToken, s.cookies.RefreshTTL))
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.tokenCookie(accessTokenCookie, "", -time.Second))
	http.SetCookie(w, s.tokenCookie(refreshTokenCookie, "", -time.Second))
}

func (s *Server) tokenCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   s.cookies.Domain,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// extractAccessToken locates the bearer credential: the access cookie first,
// then the Authorization header.
func extractAccessToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}

	authz := r.Header.Get("Authorization")
	if parts := strings.Fields(authz); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1], true
	}

	return "", false
}

func extractRefreshToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(refreshTokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}
