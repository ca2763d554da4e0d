package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/otaviobp/agendasync/internal/middleware"
	"github.com/otaviobp/agendasync/internal/models"
	"github.com/otaviobp/agendasync/internal/service"
	"github.com/otaviobp/agendasync/internal/session"
	"go.uber.org/zap"
)

// AuthService defines the authentication operation required by the HTTP
// handlers.
type AuthService interface {
	// Login resolves the identity and verifies the secret, returning the
	// credential record on success.
	Login(ctx context.Context, login, senha string) (*models.Credencial, error)
}

// AuthHandler handles login, logout and session checks.
type AuthHandler struct {
	Auth     AuthService
	Sessions *session.Store
	// Secure marks the session cookie Secure; set in production.
	Secure bool
	Log    *zap.Logger
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Email string `json:"email" validate:"required"`
	Senha string `json:"senha" validate:"required"`
}

// usuarioLogado is the session owner as exposed to the frontend.
type usuarioLogado struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login authenticates the payload against the configured credential source
// and, on success, issues the signed session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "E-mail e senha são obrigatórios")
		return
	}

	cred, err := h.Auth.Login(r.Context(), req.Email, req.Senha)
	if errors.Is(err, service.ErrCredenciaisInvalidas) {
		writeError(w, http.StatusUnauthorized, "E-mail ou senha incorretos")
		return
	}
	if err != nil {
		h.Log.Error("falha no login", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao verificar credenciais")
		return
	}

	sess := h.Sessions.Criar(cred.Email, cred.Email, cred.Nome, cred.Role)
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    h.Sessions.Assinar(sess.Token),
		Path:     "/",
		MaxAge:   int(session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login realizado com sucesso",
		"usuario": usuarioLogado{Nome: cred.Nome, Email: cred.Email, Role: cred.Role},
	})
}

// Logout destroys the session and expires the cookie. Requests without a
// session never reach here; the auth middleware rejects them first.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.GetSessaoFromContext(r.Context()); sess != nil {
		h.Sessions.Destruir(sess.Token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout realizado com sucesso"})
}

// VerificarSessao reports whether the caller holds a live session. Always
// 200 so the frontend can poll it without tripping error handling.
func (h *AuthHandler) VerificarSessao(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.ResolverSessao(h.Sessions, r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"autenticado": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"autenticado": true,
		"usuario":     usuarioLogado{Nome: sess.Nome, Email: sess.Username, Role: sess.Role},
	})
}
