// Package db opens the PostgreSQL connection and applies schema migrations.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// migrations holds every schema version in order. The applied version is
// tracked in schema_migrations; columns are never patched at runtime.
var migrations = []string{
	// 1: canonical schema. sa is the spreadsheet key; it is empty for
	// manually created records and is intentionally not unique, since the
	// append-only import may produce duplicate keys.
	`
CREATE TABLE IF NOT EXISTS clientes (
    id            BIGSERIAL PRIMARY KEY,
    sa            TEXT NOT NULL DEFAULT '',
    nome          TEXT NOT NULL,
    telefone      TEXT NOT NULL DEFAULT '',
    endereco      TEXT NOT NULL DEFAULT '',
    tipo_servico  TEXT NOT NULL DEFAULT '',
    micro_terr    TEXT NOT NULL DEFAULT '',
    plano         TEXT NOT NULL DEFAULT '',
    verificador   TEXT NOT NULL DEFAULT '',
    cidade        TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'Pendente',
    observacoes   TEXT NOT NULL DEFAULT '',
    criado_em     TIMESTAMPTZ NOT NULL DEFAULT now(),
    atualizado_em TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS clientes_sa_idx ON clientes (sa) WHERE sa <> '';
CREATE INDEX IF NOT EXISTS clientes_status_idx ON clientes (status);

CREATE TABLE IF NOT EXISTS usuarios (
    id             BIGSERIAL PRIMARY KEY,
    username       TEXT UNIQUE NOT NULL,
    password       TEXT NOT NULL,
    nome_completo  TEXT NOT NULL,
    email          TEXT NOT NULL DEFAULT '',
    role           TEXT NOT NULL DEFAULT 'operador',
    ativo          BOOLEAN NOT NULL DEFAULT TRUE,
    criado_em      TIMESTAMPTZ NOT NULL DEFAULT now()
);
`,
}

// InitPostgres opens the database, verifies the connection and brings the
// schema up to the current version, seeding the default admin user.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	if err := seedAdmin(db); err != nil {
		return nil, err
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INT PRIMARY KEY, aplicado_em TIMESTAMPTZ NOT NULL DEFAULT now())`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("record migration %d: %w", version, err)
		}
	}
	return nil
}

// seedAdmin guarantees the default admin login exists (senha: admin123).
func seedAdmin(db *sql.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO usuarios (username, password, nome_completo, role)
		VALUES ('admin', $1, 'Administrador', 'admin')
		ON CONFLICT (username) DO NOTHING
	`, string(hash))
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}
