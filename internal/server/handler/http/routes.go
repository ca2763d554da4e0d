package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/otaviobp/agendasync/internal/middleware"
	"github.com/otaviobp/agendasync/internal/session"
	"go.uber.org/zap"
)

// NewRouter constructs the HTTP handler serving the scheduling API.
//
// Routes:
//
//	POST /api/login                  → login, issues the session cookie
//	GET  /api/verificar-sessao       → session check, always 200
//	POST /api/logout                 → destroys the session (auth)
//	GET  /api/clientes               → list client records (auth)
//	POST /api/clientes               → create client record (auth)
//	GET  /api/clientes/{id}          → fetch one record (auth)
//	PUT  /api/clientes/{id}          → update record (auth)
//	PUT  /api/clientes/{id}/status   → move record in the contact flow (auth)
//	DELETE /api/clientes/{id}        → remove record (auth)
//	GET  /api/estatisticas           → counts per status (auth)
//	POST /api/importar-planilha      → append-only import (auth)
//	POST /api/sincronizar-planilha   → full reconciliation (auth)
//	GET  /api/usuarios-planilha      → access-sheet logins, no secrets (auth)
//	POST /api/usuarios               → create local user (admin)
//	GET  /api/usuarios               → list local users (admin)
func NewRouter(
	authHandler *AuthHandler,
	clienteHandler *ClienteHandler,
	syncHandler *SyncHandler,
	usuarioHandler *UsuarioHandler,
	store *session.Store,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/login", authHandler.Login)
		r.Get("/verificar-sessao", authHandler.VerificarSessao)

		// Protected group: requires a live session
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(store))

			r.Post("/logout", authHandler.Logout)

			r.Route("/clientes", func(r chi.Router) {
				r.Get("/", clienteHandler.List)
				r.Post("/", clienteHandler.Create)
				r.Get("/{id}", clienteHandler.Get)
				r.Put("/{id}", clienteHandler.Update)
				r.Put("/{id}/status", clienteHandler.UpdateStatus)
				r.Delete("/{id}", clienteHandler.Delete)
			})

			r.Get("/estatisticas", clienteHandler.Estatisticas)
			r.Post("/importar-planilha", syncHandler.Importar)
			r.Post("/sincronizar-planilha", syncHandler.Sincronizar)
			r.Get("/usuarios-planilha", syncHandler.UsuariosPlanilha)

			// Admin group
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/usuarios", usuarioHandler.Create)
				r.Get("/usuarios", usuarioHandler.List)
			})
		})
	})

	return r
}
