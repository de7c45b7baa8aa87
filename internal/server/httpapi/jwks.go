package httpapi

import (
	"net/http"

	"github.com/osavchuk/authsvc/internal/server/keys"
)

// handleJWKS publishes the verification key set for relying parties that
// validate access tokens on their own. The set is re-read from the provider
// on every request so a rotation shows up without a restart.
func (s *Server) handleJWKS(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, keys.JWKS(s.keys))
}
