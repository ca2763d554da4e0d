// Package middleware provides HTTP middlewares for session authentication,
// role gating and request logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/otaviobp/agendasync/internal/models"
	"github.com/otaviobp/agendasync/internal/session"
)

type ctxKey string

const sessaoKey ctxKey = "sessao"

// CookieName is the session cookie.
const CookieName = "sessao"

// SessionAuth resolves the session cookie to a live session and stores it in
// the request context. Requests without a valid session get 401 before any
// handler runs.
func SessionAuth(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := ResolverSessao(store, r)
			if !ok {
				rejeitar(w, http.StatusUnauthorized, "Não autenticado. Faça login primeiro.")
				return
			}
			ctx := context.WithValue(r.Context(), sessaoKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects requests whose session role is not admin. It must run
// after SessionAuth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSessaoFromContext(r.Context())
		if sess == nil || sess.Role != models.RoleAdmin {
			rejeitar(w, http.StatusForbidden, "Acesso negado. Apenas administradores.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ResolverSessao reads and verifies the session cookie, returning the live
// session if any. Exposed so the unauthenticated session-check endpoint can
// share the exact cookie handling.
func ResolverSessao(store *session.Store, r *http.Request) (*session.Sessao, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	token, ok := store.Verificar(cookie.Value)
	if !ok {
		return nil, false
	}
	return store.Buscar(token)
}

// GetSessaoFromContext extracts the session stored by SessionAuth. Returns
// nil if not found.
func GetSessaoFromContext(ctx context.Context) *session.Sessao {
	sess, _ := ctx.Value(sessaoKey).(*session.Sessao)
	return sess
}

func rejeitar(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
