package service

import (
	"context"
	"fmt"

	"github.com/otaviobp/agendasync/internal/models"
	"github.com/otaviobp/agendasync/internal/repository"
	"go.uber.org/zap"
)

// ClienteRepository defines the persistence operations needed by the
// ClienteService.
type ClienteRepository interface {
	List(ctx context.Context, f repository.ListFilter) ([]models.Cliente, error)
	GetByID(ctx context.Context, id int64) (*models.Cliente, error)
	Create(ctx context.Context, c *models.Cliente) (int64, error)
	Update(ctx context.Context, id int64, c *models.Cliente) error
	UpdateStatus(ctx context.Context, id int64, status models.Status) error
	Delete(ctx context.Context, id int64) error
	CountPorStatus(ctx context.Context) (map[string]int, error)
}

// ClienteService implements interactive CRUD over client records.
type ClienteService struct {
	repo ClienteRepository
	log  *zap.Logger
}

// NewClienteService constructs a ClienteService.
func NewClienteService(repo ClienteRepository, log *zap.Logger) *ClienteService {
	return &ClienteService{repo: repo, log: log}
}

// Listar returns client records honoring the filter.
func (s *ClienteService) Listar(ctx context.Context, f repository.ListFilter) ([]models.Cliente, error) {
	return s.repo.List(ctx, f)
}

// Buscar fetches one record by id.
func (s *ClienteService) Buscar(ctx context.Context, id int64) (*models.Cliente, error) {
	return s.repo.GetByID(ctx, id)
}

// Criar inserts a manually entered record and returns its id.
func (s *ClienteService) Criar(ctx context.Context, c *models.Cliente) (int64, error) {
	return s.repo.Create(ctx, c)
}

// Atualizar rewrites an operator-edited record.
func (s *ClienteService) Atualizar(ctx context.Context, id int64, c *models.Cliente) error {
	return s.repo.Update(ctx, id, c)
}

// AtualizarStatus moves a record to a new status. Transitions outside the
// contact flow are logged but not rejected; the table documents the flow,
// it does not enforce it.
func (s *ClienteService) AtualizarStatus(ctx context.Context, id int64, status models.Status) error {
	atual, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !models.CanTransition(atual.Status, status) {
		s.log.Warn("transição de status fora do fluxo",
			zap.Int64("id", id),
			zap.String("de", string(atual.Status)),
			zap.String("para", string(status)),
		)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// Deletar removes a record by id.
func (s *ClienteService) Deletar(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Estatisticas aggregates record counts by status plus the total.
func (s *ClienteService) Estatisticas(ctx context.Context) (map[string]int, error) {
	counts, err := s.repo.CountPorStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("contar por status: %w", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	stats := make(map[string]int, len(counts)+1)
	for status, n := range counts {
		stats[status] = n
	}
	stats["total"] = total
	return stats, nil
}
