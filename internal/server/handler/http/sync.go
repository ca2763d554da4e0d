package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/otaviobp/agendasync/internal/models"
	"github.com/otaviobp/agendasync/internal/service"
	"go.uber.org/zap"
)

// SyncService defines the spreadsheet operations the HTTP handlers can
// trigger. The hard reset is deliberately absent: only the nightly timer
// runs it.
type SyncService interface {
	Sincronizar(ctx context.Context) (*service.ResultadoSync, error)
	Importar(ctx context.Context) (*service.ResultadoImport, error)
}

// CredencialLister fetches the access-sheet rows.
type CredencialLister interface {
	FetchCredenciais(ctx context.Context) ([]models.Credencial, error)
}

// SyncHandler handles manual spreadsheet sync triggers.
type SyncHandler struct {
	Service SyncService
	Sheets  CredencialLister
	Log     *zap.Logger
}

// Sincronizar runs a full reconciliation against the spreadsheet. A run
// already in flight yields 409.
func (h *SyncHandler) Sincronizar(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Sincronizar(r.Context())
	if errors.Is(err, service.ErrSyncEmAndamento) {
		writeError(w, http.StatusConflict, "Sincronização já em andamento")
		return
	}
	if err != nil {
		h.Log.Error("falha na sincronização manual", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao sincronizar com a planilha")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mensagem":  "Sincronização concluída",
		"resultado": res,
	})
}

// Importar appends every spreadsheet row as a new record. No matching, no
// removal; repeating it duplicates records.
func (h *SyncHandler) Importar(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Importar(r.Context())
	if err != nil {
		h.Log.Error("falha na importação", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao importar da planilha")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mensagem":  "Importação concluída",
		"resultado": res,
	})
}

// usuarioPlanilha is an access-sheet row with the secret stripped.
type usuarioPlanilha struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

// UsuariosPlanilha lists who can log in via the access sheet. Secrets never
// leave the server.
func (h *SyncHandler) UsuariosPlanilha(w http.ResponseWriter, r *http.Request) {
	creds, err := h.Sheets.FetchCredenciais(r.Context())
	if err != nil {
		h.Log.Error("falha ao buscar usuários da planilha", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao buscar usuários da planilha")
		return
	}
	usuarios := make([]usuarioPlanilha, 0, len(creds))
	for _, c := range creds {
		usuarios = append(usuarios, usuarioPlanilha{Nome: c.Nome, Email: c.Email})
	}
	writeJSON(w, http.StatusOK, usuarios)
}
