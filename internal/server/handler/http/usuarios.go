package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/otaviobp/agendasync/internal/models"
	"github.com/otaviobp/agendasync/internal/repository"
	"github.com/otaviobp/agendasync/internal/service"
	"go.uber.org/zap"
)

// UsuarioRepository defines the local user operations required by the HTTP
// handlers.
type UsuarioRepository interface {
	Create(ctx context.Context, u *models.Usuario, senhaHash string) (int64, error)
	List(ctx context.Context) ([]models.Usuario, error)
}

// UsuarioHandler handles local user administration. Admin only.
type UsuarioHandler struct {
	Repo UsuarioRepository
	Log  *zap.Logger
}

// UsuarioRequest represents the JSON payload for creating a local user.
type UsuarioRequest struct {
	Username     string `json:"username" validate:"required"`
	Senha        string `json:"senha" validate:"required,min=6"`
	NomeCompleto string `json:"nome_completo"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

// Create registers a local user. The password is stored as a bcrypt hash.
func (h *UsuarioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req UsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Campos obrigatórios faltando")
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleOperador
	}
	if role != models.RoleAdmin && role != models.RoleOperador {
		writeError(w, http.StatusBadRequest, "Role inválida")
		return
	}

	hash, err := service.HashSenha(req.Senha)
	if err != nil {
		h.Log.Error("falha ao gerar hash de senha", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao criar usuário")
		return
	}

	u := &models.Usuario{
		Username:     req.Username,
		NomeCompleto: req.NomeCompleto,
		Email:        req.Email,
		Role:         role,
		Ativo:        true,
	}
	id, err := h.Repo.Create(r.Context(), u, hash)
	if errors.Is(err, repository.ErrUsuarioExiste) {
		writeError(w, http.StatusConflict, "Usuário já existe")
		return
	}
	if err != nil {
		h.Log.Error("falha ao criar usuário", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao criar usuário")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"message": "Usuário criado com sucesso",
	})
}

// List returns every local user, without password hashes.
func (h *UsuarioHandler) List(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.Repo.List(r.Context())
	if err != nil {
		h.Log.Error("falha ao listar usuários", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao buscar usuários")
		return
	}
	if usuarios == nil {
		usuarios = []models.Usuario{}
	}
	writeJSON(w, http.StatusOK, usuarios)
}
