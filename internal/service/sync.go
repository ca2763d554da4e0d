package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/otaviobp/agendasync/internal/models"
	"github.com/otaviobp/agendasync/internal/repository"
	"go.uber.org/zap"
)

// ErrSyncEmAndamento is returned when a reconciliation is triggered while
// another one is still running. Concurrent triggers are rejected, not queued.
var ErrSyncEmAndamento = errors.New("sincronização já em andamento")

// ClienteSyncRepository defines the persistence operations needed by the
// reconciliation engine.
type ClienteSyncRepository interface {
	// ListSAs maps every non-empty spreadsheet key to its local id.
	ListSAs(ctx context.Context) (map[string]int64, error)
	// FindBySA fetches the record carrying the given key, or
	// repository.ErrNotFound.
	FindBySA(ctx context.Context, sa string) (*models.Cliente, error)
	// UpdateFromSheet rewrites only spreadsheet-sourced fields.
	UpdateFromSheet(ctx context.Context, id int64, s models.SheetCliente) error
	// InsertFromSheet inserts a new record with the default status.
	InsertFromSheet(ctx context.Context, s models.SheetCliente) error
	// Delete removes a record by id.
	Delete(ctx context.Context, id int64) error
	// DeleteAll clears the table. Only the hard reset uses this.
	DeleteAll(ctx context.Context) error
}

// SheetSource fetches the current client rows from the spreadsheet.
type SheetSource interface {
	FetchClientes(ctx context.Context) ([]models.SheetCliente, error)
}

// SyncService merges the spreadsheet dataset into the local store. The
// spreadsheet owns the descriptive fields; status and observacoes are owned
// locally and survive every reconciliation.
type SyncService struct {
	repo   ClienteSyncRepository
	source SheetSource
	log    *zap.Logger

	// mu makes reconciliation single-flight: the 5-minute timer and a
	// manual trigger must not interleave per-record writes.
	mu sync.Mutex
}

// NewSyncService constructs a SyncService.
func NewSyncService(repo ClienteSyncRepository, source SheetSource, log *zap.Logger) *SyncService {
	return &SyncService{repo: repo, source: source, log: log}
}

// ResultadoSync reports what a reconciliation changed.
type ResultadoSync struct {
	Novos       int `json:"novos"`
	Atualizados int `json:"atualizados"`
	Removidos   int `json:"removidos"`
	Erros       int `json:"erros"`
	Total       int `json:"total"`
}

// ResultadoImport reports what an append-only import inserted.
type ResultadoImport struct {
	Importados int `json:"importados"`
	Erros      int `json:"erros"`
	Total      int `json:"total"`
}

// Sincronizar performs a full reconciliation: fetch the spreadsheet, update
// or insert each row keyed by sa, then remove local keyed records whose key
// vanished upstream. Keyless local records are manually created and are
// never removed. A failed fetch aborts before any mutation; a failure on a
// single record is logged and counted without stopping the batch.
func (s *SyncService) Sincronizar(ctx context.Context) (*ResultadoSync, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncEmAndamento
	}
	defer s.mu.Unlock()

	registros, err := s.source.FetchClientes(ctx)
	if err != nil {
		return nil, fmt.Errorf("buscar planilha: %w", err)
	}

	chaves := make(map[string]struct{}, len(registros))
	for _, r := range registros {
		if r.SA != "" {
			chaves[r.SA] = struct{}{}
		}
	}

	res := &ResultadoSync{Total: len(registros)}
	for _, r := range registros {
		if r.SA == "" {
			// Keyless spreadsheet rows cannot be matched on re-sync;
			// inserting them every pass would duplicate endlessly.
			s.log.Debug("linha sem SA ignorada na sincronização", zap.String("nome", r.Nome))
			continue
		}

		existente, err := s.repo.FindBySA(ctx, r.SA)
		switch {
		case err == nil:
			if err := s.repo.UpdateFromSheet(ctx, existente.ID, r); err != nil {
				s.log.Error("falha ao atualizar cliente", zap.String("sa", r.SA), zap.Error(err))
				res.Erros++
				continue
			}
			res.Atualizados++
		case errors.Is(err, repository.ErrNotFound):
			if err := s.repo.InsertFromSheet(ctx, r); err != nil {
				s.log.Error("falha ao inserir cliente", zap.String("sa", r.SA), zap.Error(err))
				res.Erros++
				continue
			}
			res.Novos++
		default:
			s.log.Error("falha ao consultar cliente", zap.String("sa", r.SA), zap.Error(err))
			res.Erros++
		}
	}

	locais, err := s.repo.ListSAs(ctx)
	if err != nil {
		return res, fmt.Errorf("listar chaves locais: %w", err)
	}
	for sa, id := range locais {
		if _, ok := chaves[sa]; ok {
			continue
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			s.log.Error("falha ao remover cliente", zap.String("sa", sa), zap.Error(err))
			res.Erros++
			continue
		}
		res.Removidos++
	}

	s.log.Info("sincronização concluída",
		zap.Int("novos", res.Novos),
		zap.Int("atualizados", res.Atualizados),
		zap.Int("removidos", res.Removidos),
		zap.Int("erros", res.Erros),
		zap.Int("total", res.Total),
	)
	return res, nil
}

// Importar inserts every spreadsheet row as a new record, no matching, no
// removal. Running it twice yields duplicates; that is its contract.
func (s *SyncService) Importar(ctx context.Context) (*ResultadoImport, error) {
	registros, err := s.source.FetchClientes(ctx)
	if err != nil {
		return nil, fmt.Errorf("buscar planilha: %w", err)
	}

	res := &ResultadoImport{Total: len(registros)}
	for _, r := range registros {
		if err := s.repo.InsertFromSheet(ctx, r); err != nil {
			s.log.Error("falha ao importar cliente", zap.String("sa", r.SA), zap.Error(err))
			res.Erros++
			continue
		}
		res.Importados++
	}
	return res, nil
}

// HardReset clears the local table and reimports the spreadsheet, discarding
// every locally-entered status and observação. Deprecated behavior kept for
// the nightly reset; nothing else should call it. The fetch happens before
// the clear so a spreadsheet failure leaves the table untouched.
func (s *SyncService) HardReset(ctx context.Context) (*ResultadoImport, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncEmAndamento
	}
	defer s.mu.Unlock()

	registros, err := s.source.FetchClientes(ctx)
	if err != nil {
		return nil, fmt.Errorf("buscar planilha: %w", err)
	}

	if err := s.repo.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("limpar tabela: %w", err)
	}

	res := &ResultadoImport{Total: len(registros)}
	for _, r := range registros {
		if err := s.repo.InsertFromSheet(ctx, r); err != nil {
			s.log.Error("falha ao reinserir cliente", zap.String("sa", r.SA), zap.Error(err))
			res.Erros++
			continue
		}
		res.Importados++
	}

	s.log.Warn("hard reset executado",
		zap.Int("importados", res.Importados),
		zap.Int("erros", res.Erros),
	)
	return res, nil
}
