// Package repository provides persistence implementations for client records
// and local users using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/otaviobp/agendasync/internal/models"
)

// ErrNotFound is returned when a row keyed by the requested identifier does
// not exist.
var ErrNotFound = errors.New("registro não encontrado")

// clienteColumns is the scan order shared by every SELECT over clientes.
const clienteColumns = `id, sa, nome, telefone, endereco, tipo_servico, micro_terr, plano, verificador, cidade, status, observacoes, criado_em, atualizado_em`

// PostgresClienteRepository implements client record persistence against a
// PostgreSQL database.
type PostgresClienteRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresClienteRepository creates a repository using the provided *sql.DB.
func NewPostgresClienteRepository(db *sql.DB) *PostgresClienteRepository {
	return &PostgresClienteRepository{DB: db}
}

// ListFilter narrows List results. Zero values mean "no restriction".
type ListFilter struct {
	// Busca matches nome or telefone, substring, case-insensitive.
	Busca string
	// Status matches exactly.
	Status string
	// DataInicio and DataFim bound criado_em (inclusive), as YYYY-MM-DD.
	DataInicio string
	DataFim    string
}

// List returns up to 1000 client records, newest first, honoring the filter.
func (r *PostgresClienteRepository) List(ctx context.Context, f ListFilter) ([]models.Cliente, error) {
	query := `SELECT ` + clienteColumns + ` FROM clientes WHERE 1=1`
	var args []any

	if f.Busca != "" {
		args = append(args, "%"+f.Busca+"%")
		query += fmt.Sprintf(" AND (nome ILIKE $%d OR telefone ILIKE $%d)", len(args), len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.DataInicio != "" {
		args = append(args, f.DataInicio)
		query += fmt.Sprintf(" AND criado_em >= $%d::date", len(args))
	}
	if f.DataFim != "" {
		args = append(args, f.DataFim)
		query += fmt.Sprintf(" AND criado_em < $%d::date + 1", len(args))
	}
	query += ` ORDER BY criado_em DESC LIMIT 1000`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var clientes []models.Cliente
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		clientes = append(clientes, c)
	}
	return clientes, rows.Err()
}

// GetByID fetches a single client record. Returns ErrNotFound when absent.
func (r *PostgresClienteRepository) GetByID(ctx context.Context, id int64) (*models.Cliente, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+clienteColumns+` FROM clientes WHERE id = $1`, id)
	c, err := scanCliente(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &c, nil
}

// Create inserts a manually entered record and returns its id. An empty
// status falls back to the schema default.
func (r *PostgresClienteRepository) Create(ctx context.Context, c *models.Cliente) (int64, error) {
	status := c.Status
	if status == "" {
		status = models.StatusPendente
	}
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO clientes (sa, nome, telefone, endereco, tipo_servico, micro_terr, plano, verificador, cidade, status, observacoes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, c.SA, c.Nome, c.Telefone, c.Endereco, c.TipoServico, c.MicroTerr, c.Plano, c.Verificador, c.Cidade, status, c.Observacoes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}

// Update rewrites the descriptive fields and observacoes of a record edited
// by an operator. Returns ErrNotFound when the id does not exist.
func (r *PostgresClienteRepository) Update(ctx context.Context, id int64, c *models.Cliente) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE clientes
		SET sa = $1, nome = $2, telefone = $3, endereco = $4, tipo_servico = $5,
		    micro_terr = $6, plano = $7, verificador = $8, cidade = $9,
		    observacoes = $10, atualizado_em = now()
		WHERE id = $11
	`, c.SA, c.Nome, c.Telefone, c.Endereco, c.TipoServico, c.MicroTerr, c.Plano, c.Verificador, c.Cidade, c.Observacoes, id)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireRow(res)
}

// UpdateStatus changes only the status column, refreshing atualizado_em.
func (r *PostgresClienteRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE clientes SET status = $1, atualizado_em = now() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	return requireRow(res)
}

// Delete removes a record by id. Returns ErrNotFound when absent.
func (r *PostgresClienteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return requireRow(res)
}

// CountPorStatus returns the record count per status.
func (r *PostgresClienteRepository) CountPorStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM clientes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("CountPorStatus: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// ListSAs maps every non-empty spreadsheet key to its local id. Records
// without a key are manually created and are deliberately absent from the
// result, keeping them out of the reconciliation removal pass.
func (r *PostgresClienteRepository) ListSAs(ctx context.Context) (map[string]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, sa FROM clientes WHERE sa <> ''`)
	if err != nil {
		return nil, fmt.Errorf("ListSAs: %w", err)
	}
	defer rows.Close()

	sas := make(map[string]int64)
	for rows.Next() {
		var id int64
		var sa string
		if err := rows.Scan(&id, &sa); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		sas[sa] = id
	}
	return sas, rows.Err()
}

// FindBySA fetches the record carrying the given spreadsheet key. With
// duplicate keys (possible after an append-only import) the oldest wins.
// Returns ErrNotFound when no record has the key.
func (r *PostgresClienteRepository) FindBySA(ctx context.Context, sa string) (*models.Cliente, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+clienteColumns+` FROM clientes WHERE sa = $1 ORDER BY id LIMIT 1`, sa)
	c, err := scanCliente(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindBySA: %w", err)
	}
	return &c, nil
}

// UpdateFromSheet rewrites only the spreadsheet-sourced fields of a record.
// status and observacoes are owned locally and must survive re-sync, so the
// statement never touches them.
func (r *PostgresClienteRepository) UpdateFromSheet(ctx context.Context, id int64, s models.SheetCliente) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE clientes
		SET nome = $1, telefone = $2, endereco = $3, tipo_servico = $4,
		    micro_terr = $5, plano = $6, verificador = $7, cidade = $8,
		    atualizado_em = now()
		WHERE id = $9
	`, s.Nome, s.Telefone, s.Endereco, s.TipoServico, s.MicroTerr, s.Plano, s.Verificador, s.Cidade, id)
	if err != nil {
		return fmt.Errorf("UpdateFromSheet: %w", err)
	}
	return requireRow(res)
}

// InsertFromSheet inserts a record freshly arrived from the spreadsheet with
// the default status and empty observacoes.
func (r *PostgresClienteRepository) InsertFromSheet(ctx context.Context, s models.SheetCliente) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO clientes (sa, nome, telefone, endereco, tipo_servico, micro_terr, plano, verificador, cidade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.SA, s.Nome, s.Telefone, s.Endereco, s.TipoServico, s.MicroTerr, s.Plano, s.Verificador, s.Cidade)
	if err != nil {
		return fmt.Errorf("InsertFromSheet: %w", err)
	}
	return nil
}

// DeleteAll clears the clientes table. Only the hard-reset path calls this.
func (r *PostgresClienteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM clientes`); err != nil {
		return fmt.Errorf("DeleteAll: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCliente(row scanner) (models.Cliente, error) {
	var c models.Cliente
	err := row.Scan(
		&c.ID, &c.SA, &c.Nome, &c.Telefone, &c.Endereco, &c.TipoServico,
		&c.MicroTerr, &c.Plano, &c.Verificador, &c.Cidade, &c.Status,
		&c.Observacoes, &c.CriadoEm, &c.AtualizadoEm,
	)
	return c, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
