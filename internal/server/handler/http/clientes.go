package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/otaviobp/agendasync/internal/models"
	"github.com/otaviobp/agendasync/internal/repository"
	"go.uber.org/zap"
)

// ClienteService defines the client record operations required by the HTTP
// handlers.
type ClienteService interface {
	Listar(ctx context.Context, f repository.ListFilter) ([]models.Cliente, error)
	Buscar(ctx context.Context, id int64) (*models.Cliente, error)
	Criar(ctx context.Context, c *models.Cliente) (int64, error)
	Atualizar(ctx context.Context, id int64, c *models.Cliente) error
	AtualizarStatus(ctx context.Context, id int64, status models.Status) error
	Deletar(ctx context.Context, id int64) error
	Estatisticas(ctx context.Context) (map[string]int, error)
}

// ClienteHandler handles CRUD over client records.
type ClienteHandler struct {
	Service ClienteService
	Log     *zap.Logger
}

// ClienteRequest represents the JSON payload for creating or updating a
// client record. Status and observações ride along on updates only.
type ClienteRequest struct {
	SA          string `json:"sa"`
	Nome        string `json:"nome" validate:"required"`
	Telefone    string `json:"telefone"`
	Endereco    string `json:"endereco"`
	TipoServico string `json:"tipo_servico"`
	MicroTerr   string `json:"micro_terr"`
	Plano       string `json:"plano"`
	Verificador string `json:"verificador"`
	Cidade      string `json:"cidade"`
	Status      string `json:"status"`
	Observacoes string `json:"observacoes"`
}

func (req *ClienteRequest) cliente() *models.Cliente {
	return &models.Cliente{
		SA:          req.SA,
		Nome:        req.Nome,
		Telefone:    req.Telefone,
		Endereco:    req.Endereco,
		TipoServico: req.TipoServico,
		MicroTerr:   req.MicroTerr,
		Plano:       req.Plano,
		Verificador: req.Verificador,
		Cidade:      req.Cidade,
		Status:      models.Status(req.Status),
		Observacoes: req.Observacoes,
	}
}

// List returns client records, optionally filtered by the busca, status,
// data_inicio and data_fim query parameters.
func (h *ClienteHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientes, err := h.Service.Listar(r.Context(), repository.ListFilter{
		Busca:      q.Get("busca"),
		Status:     q.Get("status"),
		DataInicio: q.Get("data_inicio"),
		DataFim:    q.Get("data_fim"),
	})
	if err != nil {
		h.Log.Error("falha ao listar clientes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao buscar clientes")
		return
	}
	if clientes == nil {
		clientes = []models.Cliente{}
	}
	writeJSON(w, http.StatusOK, clientes)
}

// Get returns a single client record by id.
func (h *ClienteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	cliente, err := h.Service.Buscar(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}
	if err != nil {
		h.Log.Error("falha ao buscar cliente", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao buscar cliente")
		return
	}
	writeJSON(w, http.StatusOK, cliente)
}

// Create inserts a manually entered client record.
func (h *ClienteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Nome do cliente é obrigatório")
		return
	}

	id, err := h.Service.Criar(r.Context(), req.cliente())
	if err != nil {
		h.Log.Error("falha ao criar cliente", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao criar cliente")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"message": "Cliente criado com sucesso",
	})
}

// Update rewrites an operator-edited record.
func (h *ClienteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req ClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Nome do cliente é obrigatório")
		return
	}

	err := h.Service.Atualizar(r.Context(), id, req.cliente())
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}
	if err != nil {
		h.Log.Error("falha ao atualizar cliente", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao atualizar cliente")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cliente atualizado com sucesso"})
}

// StatusRequest represents the JSON payload for a status change.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus moves a record to a new contact-flow status.
func (h *ClienteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	status := models.Status(req.Status)
	if validate.Struct(req) != nil || !status.Valid() {
		writeError(w, http.StatusBadRequest, "Status inválido")
		return
	}

	err := h.Service.AtualizarStatus(r.Context(), id, status)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}
	if err != nil {
		h.Log.Error("falha ao atualizar status", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao atualizar status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Status atualizado com sucesso"})
}

// Delete removes a client record.
func (h *ClienteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	err := h.Service.Deletar(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}
	if err != nil {
		h.Log.Error("falha ao remover cliente", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao remover cliente")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cliente removido com sucesso"})
}

// Estatisticas returns record counts per status plus the total.
func (h *ClienteHandler) Estatisticas(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Estatisticas(r.Context())
	if err != nil {
		h.Log.Error("falha ao calcular estatísticas", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao buscar estatísticas")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ClienteHandler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "ID inválido")
		return 0, false
	}
	return id, true
}
