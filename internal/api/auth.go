package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/agentethos/ethos/internal/ledger"
)

type contextKey struct{}

var agentKey contextKey

// requireAgent authenticates the bearer credential and stores the resolved
// agent in the request context. Missing, malformed, or unmatched
// credentials get a 401; the distinction is never leaked to the caller.
func (s *Server) requireAgent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeLedgerError(w, ledger.NewUnauthorizedError())
			return
		}

		agent, err := s.eng.Authenticate(r.Context(), raw)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), agentKey, agent)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentAgent returns the agent stored by requireAgent. Only valid on
// routes behind that middleware.
func currentAgent(r *http.Request) *ledger.Agent {
	return r.Context().Value(agentKey).(*ledger.Agent)
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
