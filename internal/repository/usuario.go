package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/otaviobp/agendasync/internal/models"
)

// ErrUsuarioExiste is returned when creating a user whose username is taken.
var ErrUsuarioExiste = errors.New("usuário já existe")

// uniqueViolation is the postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresUsuarioRepository implements local credential persistence against a
// PostgreSQL database.
type PostgresUsuarioRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUsuarioRepository creates a repository using the provided *sql.DB.
func NewPostgresUsuarioRepository(db *sql.DB) *PostgresUsuarioRepository {
	return &PostgresUsuarioRepository{DB: db}
}

// Create inserts a user with an already-hashed password and returns its id.
// Returns ErrUsuarioExiste when the username is taken.
func (r *PostgresUsuarioRepository) Create(ctx context.Context, u *models.Usuario, senhaHash string) (int64, error) {
	role := u.Role
	if role == "" {
		role = models.RoleOperador
	}
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO usuarios (username, password, nome_completo, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.Username, senhaHash, u.NomeCompleto, u.Email, role).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, ErrUsuarioExiste
		}
		return 0, fmt.Errorf("Create usuario: %w", err)
	}
	return id, nil
}

// List returns every local user without the password column.
func (r *PostgresUsuarioRepository) List(ctx context.Context) ([]models.Usuario, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, username, nome_completo, email, role, ativo, criado_em FROM usuarios ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("List usuarios: %w", err)
	}
	defer rows.Close()

	var usuarios []models.Usuario
	for rows.Next() {
		var u models.Usuario
		if err := rows.Scan(&u.ID, &u.Username, &u.NomeCompleto, &u.Email, &u.Role, &u.Ativo, &u.CriadoEm); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, rows.Err()
}

// FindByUsername fetches a user with its password hash for login checks.
// Returns ErrNotFound when absent.
func (r *PostgresUsuarioRepository) FindByUsername(ctx context.Context, username string) (*models.Usuario, error) {
	var u models.Usuario
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password, nome_completo, email, role, ativo, criado_em
		FROM usuarios WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Senha, &u.NomeCompleto, &u.Email, &u.Role, &u.Ativo, &u.CriadoEm)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindByUsername: %w", err)
	}
	return &u, nil
}
