package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/otaviobp/agendasync/internal/models"
)

func setupClienteMock(t *testing.T) (*PostgresClienteRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresClienteRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

var clienteCols = []string{
	"id", "sa", "nome", "telefone", "endereco", "tipo_servico", "micro_terr",
	"plano", "verificador", "cidade", "status", "observacoes", "criado_em", "atualizado_em",
}

func addClienteRow(rows *sqlmock.Rows, id int64, sa, nome, status string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, sa, nome, "", "", "", "", "", "", "", status, "", now, now)
}

func TestList_NoFilter(t *testing.T) {
	repo, mock, cleanup := setupClienteMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(clienteCols)
	addClienteRow(rows, 1, "SA1", "Maria", "Pendente")
	addClienteRow(rows, 2, "", "José", "Confirmado")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, sa, nome, telefone, endereco, tipo_servico, micro_terr, plano, verificador, cidade, status, observacoes, criado_em, atualizado_em FROM clientes WHERE 1=1 ORDER BY criado_em DESC LIMIT 1000`)).
		WillReturnRows(rows)

	clientes, err := repo.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clientes) != 2 {
		t.Fatalf("expected 2 clientes, got %d", len(clientes))
	}
	if clientes[0].SA != "SA1" || clientes[1].Nome != "José" {
		t.Errorf("unexpected clientes: %+v", clientes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestList_AllFilters(t *testing.T) {
	repo, mock, cleanup := setupClienteMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(clienteCols)
	addClienteRow(rows, 1, "SA1", "Maria", "Confirmado")

	mock.ExpectQuery(regexp.QuoteMeta(`AND (nome ILIKE $1 OR telefone ILIKE $1) AND status = $2 AND criado_em >= $3::date AND criado_em < $4::date + 1`)).
		WithArgs("%mar%", "Confirmado", "2026-01-01", "2026-01-31").
		WillReturnRows(rows)

	clientes, err := repo.List(context.Background(), ListFilter{
		Busca:      "mar",
		Status:     "Confirmado",
		DataInicio: "2026-01-01",
		DataFim:    "2026-01-31",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clientes) != 1 {
		t.Fatalf("expected 1 cliente, got %d", len(clientes))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupClienteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM clientes WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(clienteCols))

	_, err := repo.GetByID(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_DefaultStatus(t *testing.T) {
	repo, mock, cleanup := setupClienteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO clientes (sa, nome, telefone, endereco, tipo_servico, micro_terr, plano, verificador, cidade, status, observacoes)`)).
		WithArgs("", "Maria", "", "", "", "", "", "", "", "Pendente", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.Create(context.Background(), &models.Cliente{Nome: "Maria"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Errorf("expected id 7, got %d", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo, mock, cleanup := setupClienteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE clientes SET status = $1, atualizado_em = now() WHERE id = $2`)).
		WithArgs("Confirmado", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 9, models.StatusConfirmado)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFromSheet_PreservesLocalFields(t *testing.T) {
	repo, mock, cleanup := setupClienteMock(t)
	defer cleanup()

	// The statement rewrites only spreadsheet-sourced columns; status and
	// observacoes never appear in the SET clause.
	mock.ExpectExec(regexp.QuoteMeta(`SET nome = $1, telefone = $2, endereco = $3, tipo_servico = $4,
		    micro_terr = $5, plano = $6, verificador = $7, cidade = $8,
		    atualizado_em = now()`)).
		WithArgs("Maria", "11999990000", "Rua A", "Instalação", "MT1", "500MB", "V1", "SP", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateFromSheet(context.Background(), 3, models.SheetCliente{
		Nome: "Maria", Telefone: "11999990000", Endereco: "Rua A", TipoServico: "Instalação",
		MicroTerr: "MT1", Plano: "500MB", Verificador: "V1", Cidade: "SP",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListSAs_SkipsKeyless(t *testing.T) {
	repo, mock, cleanup := setupClienteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, sa FROM clientes WHERE sa <> ''`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sa"}).
			AddRow(int64(1), "SA1").
			AddRow(int64(2), "SA2"))

	sas, err := repo.ListSAs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sas) != 2 || sas["SA1"] != 1 || sas["SA2"] != 2 {
		t.Errorf("unexpected sa map: %v", sas)
	}
}

func TestCountPorStatus(t *testing.T) {
	repo, mock, cleanup := setupClienteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, COUNT(*) FROM clientes GROUP BY status`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("Pendente", 3).
			AddRow("Confirmado", 2))

	counts, err := repo.CountPorStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["Pendente"] != 3 || counts["Confirmado"] != 2 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, cleanup := setupClienteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM clientes WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
