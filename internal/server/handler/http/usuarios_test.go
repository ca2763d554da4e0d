package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/otaviobp/agendasync/internal/models"
	"github.com/otaviobp/agendasync/internal/repository"
	handler "github.com/otaviobp/agendasync/internal/server/handler/http"
	"github.com/otaviobp/agendasync/internal/service"
	"go.uber.org/zap"
)

// fakeUsuarioRepo records the created user and hash.
type fakeUsuarioRepo struct {
	usuarios     []models.Usuario
	err          error
	received     *models.Usuario
	receivedHash string
}

func (f *fakeUsuarioRepo) Create(ctx context.Context, u *models.Usuario, senhaHash string) (int64, error) {
	f.received = u
	f.receivedHash = senhaHash
	return 5, f.err
}

func (f *fakeUsuarioRepo) List(ctx context.Context) ([]models.Usuario, error) {
	return f.usuarios, f.err
}

func usuarioBody(t *testing.T, fields map[string]string) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(fields)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(b)
}

func TestUsuarioCreate_CamposObrigatorios(t *testing.T) {
	fake := &fakeUsuarioRepo{}
	h := &handler.UsuarioHandler{Repo: fake, Log: zap.NewNop()}

	req := httptest.NewRequest(http.MethodPost, "/api/usuarios", usuarioBody(t, map[string]string{"username": "carlos"}))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
	if fake.received != nil {
		t.Error("repo must not be called for an invalid payload")
	}
}

func TestUsuarioCreate_SenhaCurta(t *testing.T) {
	h := &handler.UsuarioHandler{Repo: &fakeUsuarioRepo{}, Log: zap.NewNop()}
	req := httptest.NewRequest(http.MethodPost, "/api/usuarios",
		usuarioBody(t, map[string]string{"username": "carlos", "senha": "123"}))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUsuarioCreate_Duplicado(t *testing.T) {
	h := &handler.UsuarioHandler{Repo: &fakeUsuarioRepo{err: repository.ErrUsuarioExiste}, Log: zap.NewNop()}
	req := httptest.NewRequest(http.MethodPost, "/api/usuarios",
		usuarioBody(t, map[string]string{"username": "carlos", "senha": "senha-forte"}))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusConflict)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] != "Usuário já existe" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestUsuarioCreate_Sucesso(t *testing.T) {
	fake := &fakeUsuarioRepo{}
	h := &handler.UsuarioHandler{Repo: fake, Log: zap.NewNop()}
	req := httptest.NewRequest(http.MethodPost, "/api/usuarios", usuarioBody(t, map[string]string{
		"username":      "carlos",
		"senha":         "senha-forte",
		"nome_completo": "Carlos Silva",
	}))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusCreated)
	}
	if fake.received == nil || fake.received.Username != "carlos" {
		t.Fatalf("usuario repassado = %+v", fake.received)
	}
	if fake.received.Role != models.RoleOperador {
		t.Errorf("role padrão = %q; want operador", fake.received.Role)
	}
	if !fake.received.Ativo {
		t.Error("new users must start active")
	}
	if fake.receivedHash == "senha-forte" {
		t.Fatal("password must be stored hashed")
	}
	if !service.VerificarSenha("senha-forte", fake.receivedHash) {
		t.Error("stored hash must verify against the original password")
	}
}

func TestUsuarioCreate_RoleInvalida(t *testing.T) {
	h := &handler.UsuarioHandler{Repo: &fakeUsuarioRepo{}, Log: zap.NewNop()}
	req := httptest.NewRequest(http.MethodPost, "/api/usuarios", usuarioBody(t, map[string]string{
		"username": "carlos",
		"senha":    "senha-forte",
		"role":     "superusuario",
	}))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUsuarioList(t *testing.T) {
	fake := &fakeUsuarioRepo{usuarios: []models.Usuario{
		{ID: 1, Username: "admin", Role: models.RoleAdmin, Ativo: true},
	}}
	h := &handler.UsuarioHandler{Repo: fake, Log: zap.NewNop()}
	req := httptest.NewRequest(http.MethodGet, "/api/usuarios", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	var usuarios []models.Usuario
	if err := json.NewDecoder(w.Body).Decode(&usuarios); err != nil {
		t.Fatal(err)
	}
	if len(usuarios) != 1 || usuarios[0].Username != "admin" {
		t.Errorf("usuarios = %+v", usuarios)
	}
}
