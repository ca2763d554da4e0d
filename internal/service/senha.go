// Package service provides business logic for authentication, client records
// and spreadsheet reconciliation, delegating persistence to repository
// interfaces.
package service

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// VerificarSenha compares a submitted password against the stored secret.
// Secrets starting with a bcrypt prefix are verified through bcrypt;
// anything else is compared as plain text. The plain path is a compatibility
// shim for credentials kept unhashed in the access spreadsheet.
func VerificarSenha(informada, armazenada string) bool {
	if strings.HasPrefix(armazenada, "$2a$") || strings.HasPrefix(armazenada, "$2b$") {
		return bcrypt.CompareHashAndPassword([]byte(armazenada), []byte(informada)) == nil
	}
	return informada == armazenada
}

// HashSenha hashes a password for storage in the usuarios table.
func HashSenha(senha string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
