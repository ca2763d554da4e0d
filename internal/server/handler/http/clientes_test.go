package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/otaviobp/agendasync/internal/models"
	"github.com/otaviobp/agendasync/internal/repository"
	handler "github.com/otaviobp/agendasync/internal/server/handler/http"
	"go.uber.org/zap"
)

// fakeClienteService records calls and returns preconfigured results.
type fakeClienteService struct {
	clientes []models.Cliente
	cliente  *models.Cliente
	stats    map[string]int
	err      error

	receivedFilter repository.ListFilter
	receivedID     int64
	receivedStatus models.Status
	received       *models.Cliente
}

func (f *fakeClienteService) Listar(ctx context.Context, filter repository.ListFilter) ([]models.Cliente, error) {
	f.receivedFilter = filter
	return f.clientes, f.err
}

func (f *fakeClienteService) Buscar(ctx context.Context, id int64) (*models.Cliente, error) {
	f.receivedID = id
	return f.cliente, f.err
}

func (f *fakeClienteService) Criar(ctx context.Context, c *models.Cliente) (int64, error) {
	f.received = c
	return 7, f.err
}

func (f *fakeClienteService) Atualizar(ctx context.Context, id int64, c *models.Cliente) error {
	f.receivedID = id
	f.received = c
	return f.err
}

func (f *fakeClienteService) AtualizarStatus(ctx context.Context, id int64, status models.Status) error {
	f.receivedID = id
	f.receivedStatus = status
	return f.err
}

func (f *fakeClienteService) Deletar(ctx context.Context, id int64) error {
	f.receivedID = id
	return f.err
}

func (f *fakeClienteService) Estatisticas(ctx context.Context) (map[string]int, error) {
	return f.stats, f.err
}

func newClienteHandler(fake *fakeClienteService) *handler.ClienteHandler {
	return &handler.ClienteHandler{Service: fake, Log: zap.NewNop()}
}

// withURLParam injects a chi route parameter the way the router would.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestClienteList_RepassaFiltros(t *testing.T) {
	fake := &fakeClienteService{clientes: []models.Cliente{{ID: 1, Nome: "Ana"}}}
	h := newClienteHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/clientes?busca=ana&status=Pendente&data_inicio=2026-01-01&data_fim=2026-01-31", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	want := repository.ListFilter{Busca: "ana", Status: "Pendente", DataInicio: "2026-01-01", DataFim: "2026-01-31"}
	if fake.receivedFilter != want {
		t.Errorf("filter = %+v; want %+v", fake.receivedFilter, want)
	}
}

func TestClienteList_SemRegistrosRetornaListaVazia(t *testing.T) {
	h := newClienteHandler(&fakeClienteService{})
	req := httptest.NewRequest(http.MethodGet, "/api/clientes", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("body = %q; want empty JSON array", body)
	}
}

func TestClienteGet_NaoEncontrado(t *testing.T) {
	h := newClienteHandler(&fakeClienteService{err: repository.ErrNotFound})
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/clientes/42", nil), "id", "42")
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", w.Code, http.StatusNotFound)
	}
}

func TestClienteGet_IDInvalido(t *testing.T) {
	h := newClienteHandler(&fakeClienteService{})
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/clientes/abc", nil), "id", "abc")
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}

func TestClienteCreate_NomeObrigatorio(t *testing.T) {
	fake := &fakeClienteService{}
	h := newClienteHandler(fake)

	b, _ := json.Marshal(map[string]string{"telefone": "11999990000"})
	req := httptest.NewRequest(http.MethodPost, "/api/clientes", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
	if fake.received != nil {
		t.Error("service must not be called for an invalid payload")
	}
}

func TestClienteCreate_Sucesso(t *testing.T) {
	fake := &fakeClienteService{}
	h := newClienteHandler(fake)

	b, _ := json.Marshal(map[string]string{"nome": "Bruno", "telefone": "11999990000"})
	req := httptest.NewRequest(http.MethodPost, "/api/clientes", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusCreated)
	}
	var resp struct {
		ID      int64  `json:"id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != 7 || resp.Message != "Cliente criado com sucesso" {
		t.Errorf("resp = %+v", resp)
	}
	if fake.received == nil || fake.received.Nome != "Bruno" {
		t.Errorf("cliente repassado = %+v", fake.received)
	}
}

func TestClienteUpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantCalled bool
	}{
		{name: "status válido", body: `{"status":"Confirmado"}`, wantCode: http.StatusOK, wantCalled: true},
		{name: "status desconhecido", body: `{"status":"Inventado"}`, wantCode: http.StatusBadRequest},
		{name: "status vazio", body: `{}`, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeClienteService{}
			h := newClienteHandler(fake)
			req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/clientes/3/status", bytes.NewBufferString(tt.body)), "id", "3")
			w := httptest.NewRecorder()
			h.UpdateStatus(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d; want %d", w.Code, tt.wantCode)
			}
			if tt.wantCalled && (fake.receivedID != 3 || fake.receivedStatus != models.StatusConfirmado) {
				t.Errorf("service called with id=%d status=%q", fake.receivedID, fake.receivedStatus)
			}
			if !tt.wantCalled && fake.receivedStatus != "" {
				t.Error("service must not be called for an invalid status")
			}
		})
	}
}

func TestClienteDelete_Sucesso(t *testing.T) {
	fake := &fakeClienteService{}
	h := newClienteHandler(fake)
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/clientes/9", nil), "id", "9")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if fake.receivedID != 9 {
		t.Errorf("id repassado = %d; want 9", fake.receivedID)
	}
}

func TestEstatisticas(t *testing.T) {
	fake := &fakeClienteService{stats: map[string]int{"Pendente": 2, "Instalado": 1, "total": 3}}
	h := newClienteHandler(fake)
	req := httptest.NewRequest(http.MethodGet, "/api/estatisticas", nil)
	w := httptest.NewRecorder()
	h.Estatisticas(w, req)

	var got map[string]int
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got["total"] != 3 || got["Pendente"] != 2 {
		t.Errorf("stats = %v", got)
	}
}
