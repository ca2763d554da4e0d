// Package session holds server-side login state. Sessions live in process
// memory keyed by an opaque token; restarting the process invalidates all of
// them. The cookie carries the token plus an HMAC signature so a tampered
// cookie never reaches the store.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TTL is the fixed session lifetime.
const TTL = 24 * time.Hour

// Sessao is the authenticated context attached to a request.
type Sessao struct {
	Token    string
	UserID   string
	Username string
	Nome     string
	Role     string
	ExpiraEm time.Time
}

// Store keeps sessions in memory.
type Store struct {
	mu      sync.RWMutex
	sessoes map[string]*Sessao
	secret  []byte
	log     *zap.Logger
}

// NewStore creates a Store signing cookies with the given secret.
func NewStore(secret string, log *zap.Logger) *Store {
	return &Store{
		sessoes: make(map[string]*Sessao),
		secret:  []byte(secret),
		log:     log,
	}
}

// Criar registers a new session and returns it.
func (s *Store) Criar(userID, username, nome, role string) *Sessao {
	sess := &Sessao{
		Token:    uuid.NewString(),
		UserID:   userID,
		Username: username,
		Nome:     nome,
		Role:     role,
		ExpiraEm: time.Now().Add(TTL),
	}
	s.mu.Lock()
	s.sessoes[sess.Token] = sess
	s.mu.Unlock()
	return sess
}

// Buscar returns the live session for a token. Expired sessions are evicted
// on access.
func (s *Store) Buscar(token string) (*Sessao, bool) {
	s.mu.RLock()
	sess, ok := s.sessoes[token]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(sess.ExpiraEm) {
		s.Destruir(token)
		return nil, false
	}
	return sess, true
}

// Destruir removes a session.
func (s *Store) Destruir(token string) {
	s.mu.Lock()
	delete(s.sessoes, token)
	s.mu.Unlock()
}

// Assinar produces the cookie value for a token: "token.signature".
func (s *Store) Assinar(token string) string {
	return token + "." + s.assinatura(token)
}

// Verificar validates a cookie value and returns the embedded token.
func (s *Store) Verificar(valor string) (string, bool) {
	i := strings.LastIndex(valor, ".")
	if i < 0 {
		return "", false
	}
	token, sig := valor[:i], valor[i+1:]
	if !hmac.Equal([]byte(sig), []byte(s.assinatura(token))) {
		return "", false
	}
	return token, true
}

func (s *Store) assinatura(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// IniciarLimpeza sweeps expired sessions on an interval until ctx is done.
func (s *Store) IniciarLimpeza(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.limparExpiradas(); n > 0 {
					s.log.Info("sessões expiradas removidas", zap.Int("removidas", n))
				}
			}
		}
	}()
}

func (s *Store) limparExpiradas() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, sess := range s.sessoes {
		if now.After(sess.ExpiraEm) {
			delete(s.sessoes, token)
			removed++
		}
	}
	return removed
}
