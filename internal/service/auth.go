package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/otaviobp/agendasync/internal/models"
	"github.com/otaviobp/agendasync/internal/repository"
	"go.uber.org/zap"
)

// ErrCredenciaisInvalidas is returned for any login failure. Unknown login
// and wrong password are deliberately indistinguishable.
var ErrCredenciaisInvalidas = errors.New("e-mail ou senha incorretos")

// CredentialSource resolves a login handle to a credential record.
// Implementations return (nil, nil) when the login is unknown.
type CredentialSource interface {
	FindByLogin(ctx context.Context, login string) (*models.Credencial, error)
}

// AuthService performs logins against a configured credential source.
type AuthService struct {
	source CredentialSource
	log    *zap.Logger
}

// NewAuthService constructs an AuthService using the provided source.
func NewAuthService(source CredentialSource, log *zap.Logger) *AuthService {
	return &AuthService{source: source, log: log}
}

// Login resolves the identity and verifies the secret. On success it returns
// the credential record (name, role) for session creation.
func (s *AuthService) Login(ctx context.Context, login, senha string) (*models.Credencial, error) {
	cred, err := s.source.FindByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("resolver credencial: %w", err)
	}
	if cred == nil {
		return nil, ErrCredenciaisInvalidas
	}
	if !VerificarSenha(senha, cred.Senha) {
		return nil, ErrCredenciaisInvalidas
	}
	return cred, nil
}

// SheetsCredentialLookup is the part of the sheets client the spreadsheet
// credential source needs.
type SheetsCredentialLookup interface {
	FindCredencialPorEmail(ctx context.Context, email string) (*models.Credencial, error)
}

// SheetsCredentialSource resolves logins against the access sheet. Every
// lookup fetches fresh rows; nothing is cached locally. Spreadsheet logins
// always carry the operador role.
type SheetsCredentialSource struct {
	Sheets SheetsCredentialLookup
}

// FindByLogin implements CredentialSource.
func (s *SheetsCredentialSource) FindByLogin(ctx context.Context, login string) (*models.Credencial, error) {
	cred, err := s.Sheets.FindCredencialPorEmail(ctx, login)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, nil
	}
	cred.Role = models.RoleOperador
	return cred, nil
}

// UsuarioFinder is the part of the usuario repository the local credential
// source needs.
type UsuarioFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.Usuario, error)
}

// LocalCredentialSource resolves logins against the usuarios table.
// Deactivated users do not resolve.
type LocalCredentialSource struct {
	Repo UsuarioFinder
}

// FindByLogin implements CredentialSource.
func (s *LocalCredentialSource) FindByLogin(ctx context.Context, login string) (*models.Credencial, error) {
	u, err := s.Repo.FindByUsername(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.Ativo {
		return nil, nil
	}
	return &models.Credencial{
		Nome:  u.NomeCompleto,
		Email: u.Username,
		Senha: u.Senha,
		Role:  u.Role,
	}, nil
}
