// Package httpapi exposes the authentication flows over HTTP: register,
// login, self, refresh rotation, logout, and the JWKS document for relying
// parties. Tokens travel in http-only cookies; the request gate also accepts
// an Authorization bearer header for non-browser clients.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/osavchuk/authsvc/internal/logging"
	"github.com/osavchuk/authsvc/internal/server/keys"
	"github.com/osavchuk/authsvc/internal/server/services"
	"github.com/osavchuk/authsvc/internal/server/token"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	addr     string
	auth     *services.AuthService
	verifier *token.Verifier
	keys     keys.Provider
	logger   logging.Logger
	cookies  CookieConfig

	httpServer *http.Server
}

func NewServer(
	addr string,
	auth *services.AuthService,
	verifier *token.Verifier,
	keysProvider keys.Provider,
	logger logging.Logger,
	cookies CookieConfig,
) *Server {
	s := &Server{
		addr:     addr,
		auth:     auth,
		verifier: verifier,
		keys:     keysProvider,
		logger:   logger,
		cookies:  cookies,
	}
	s.httpServer = &http.Server{Addr: addr, Handler: s.Router()}
	return s
}

// Router builds the route table. Exposed separately so tests can drive the
// handlers through httptest without opening a socket.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware)

	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	r.Handle("/auth/self", s.authenticate(http.HandlerFunc(s.handleSelf))).Methods(http.MethodGet)

	r.HandleFunc("/.well-known/jwks.json", s.handleJWKS).Methods(http.MethodGet)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully so in-flight
// requests can complete.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
