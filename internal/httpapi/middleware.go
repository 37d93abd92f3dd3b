package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
)

type contextKey string

const userKey contextKey = "user"

func currentUser(r *http.Request) *model.User {
	if u, ok := r.Context().Value(userKey).(*model.User); ok {
		return u
	}
	return nil
}

// withAuth resolves the bearer token to a user and stores it on the
// request context. Identity issuance is external; this only checks
// the token against the user table.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if token == "" {
			writeError(w, apperr.New(apperr.Unauthenticated, "missing bearer token"))
			return
		}
		user, err := s.users.FindByToken(r.Context(), token)
		if err != nil {
			writeError(w, apperr.New(apperr.Unauthenticated, "invalid token"))
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
