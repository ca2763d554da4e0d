// Package models defines the core data structures for clientes, usuários e credenciais.
package models

import "time"

// Cliente represents a client record tracked locally. The descriptive fields
// mirror the spreadsheet columns; Status and Observacoes are owned locally
// and are never supplied by the spreadsheet.
type Cliente struct {
	// ID is the local surrogate key.
	ID int64 `json:"id"`
	// SA is the identifier assigned by the spreadsheet. Empty for records
	// created by hand, which have no external counterpart.
	SA string `json:"sa"`
	// Nome is the client name. Always non-empty.
	Nome        string `json:"nome"`
	Telefone    string `json:"telefone"`
	Endereco    string `json:"endereco"`
	TipoServico string `json:"tipo_servico"`
	MicroTerr   string `json:"micro_terr"`
	Plano       string `json:"plano"`
	Verificador string `json:"verificador"`
	Cidade      string `json:"cidade"`
	// Status is the current position in the contact flow.
	Status Status `json:"status"`
	// Observacoes holds free-text notes entered by operators.
	Observacoes string `json:"observacoes"`
	// CriadoEm is set once at insert.
	CriadoEm time.Time `json:"criado_em"`
	// AtualizadoEm is refreshed on every mutation, including sync updates.
	AtualizadoEm time.Time `json:"atualizado_em"`
}

// SheetCliente is one spreadsheet row mapped by its fixed column order
// (SA, Nome, Telefone, Endereço, Tipo serviço, MICRO TERR., Plano,
// VERIFICADOR, CIDADE).
type SheetCliente struct {
	SA          string `json:"sa"`
	Nome        string `json:"nome"`
	Telefone    string `json:"telefone"`
	Endereco    string `json:"endereco"`
	TipoServico string `json:"tipo_servico"`
	MicroTerr   string `json:"micro_terr"`
	Plano       string `json:"plano"`
	Verificador string `json:"verificador"`
	Cidade      string `json:"cidade"`
}

// Credencial is a login record resolved from a credential source.
// Senha may be a bcrypt hash or plain text; see service.VerificarSenha.
type Credencial struct {
	Nome  string
	Email string
	Senha string
	Role  string
}

// Usuario is a credential record persisted in the local usuarios table.
type Usuario struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Senha        string    `json:"-"`
	NomeCompleto string    `json:"nome_completo"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Ativo        bool      `json:"ativo"`
	CriadoEm     time.Time `json:"criado_em"`
}

// User roles.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
)

// Status identifies a step in the contact flow of a Cliente.
type Status string

// Contact flow statuses. Pendente is the default for new records.
const (
	StatusPendente     Status = "Pendente"
	StatusWhatsEnviado Status = "Whats Enviado"
	StatusConfirmado   Status = "Confirmado"
	StatusInstalado    Status = "Instalado"
	StatusCancelado    Status = "Cancelado"
)

// transitions defines the expected forward flow. Cancelado is reachable from
// any non-terminal status. The table documents the flow; handlers log
// transitions outside it but do not reject them.
var transitions = map[Status][]Status{
	StatusPendente:     {StatusWhatsEnviado, StatusConfirmado, StatusCancelado},
	StatusWhatsEnviado: {StatusConfirmado, StatusCancelado},
	StatusConfirmado:   {StatusInstalado, StatusCancelado},
	StatusInstalado:    {},
	StatusCancelado:    {StatusPendente},
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether moving from one status to another follows
// the expected contact flow.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
