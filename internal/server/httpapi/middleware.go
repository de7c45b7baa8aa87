package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/osavchuk/authsvc/internal/server/models"
)

type ctxKey string

const (
	subjectKey   ctxKey = "auth_subject"
	requestIDKey ctxKey = "request_id"
)

// Subject is the authenticated identity attached to a request after the gate
// accepted its access token.
type Subject struct {
	UserID int64
	Role   models.Role
}

// SubjectFromContext returns the authenticated subject, if any.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	sub, ok := ctx.Value(subjectKey).(Subject)
	return sub, ok
}

// requestIDMiddleware tags every request with an id for log correlation.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), requestIDKey, uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate is the request gate. Extraction, parsing, key resolution and
// claim validation failures are logged with their real reason but all produce
// the same 401 so a caller cannot learn which check failed.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, ok := extractAccessToken(r)
		if !ok {
			s.logger.Debug(ctx, "request gate: no bearer credential", "path", r.URL.Path)
			s.writeUnauthenticated(w)
			return
		}

		claims, err := s.verifier.VerifyAccess(tokenStr)
		if err != nil {
			s.logger.Warn(ctx, "request gate: token rejected", "path", r.URL.Path, "reason", err)
			s.writeUnauthenticated(w)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			s.logger.Warn(ctx, "request gate: bad subject claim", "reason", err)
			s.writeUnauthenticated(w)
			return
		}

		ctx = context.WithValue(ctx, subjectKey, Subject{UserID: userID, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
