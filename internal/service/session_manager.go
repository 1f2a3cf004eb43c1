package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

// ErrPersistence envuelve cualquier falla del store al guardar una sesión.
var ErrPersistence = errors.New("failed to save session to database")

const defaultSessionTTL = 10 * 24 * time.Hour

var sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "taskmanager_sessions_created_total",
	Help: "Total number of refresh sessions persisted",
})

// SessionManager crea sesiones de refresh token dentro del documento de usuario
// y decide si una sesión sigue vigente.
type SessionManager struct {
	logger       *zap.Logger
	users        repository.UserRepository
	tokens       *TokenIssuer
	ttl          time.Duration
	pruneExpired bool
	now          func() time.Time
}

func NewSessionManager(logger *zap.Logger, users repository.UserRepository, tokens *TokenIssuer, ttl time.Duration, pruneExpired bool) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		logger:       logger,
		users:        users,
		tokens:       tokens,
		ttl:          ttl,
		pruneExpired: pruneExpired,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession agrega una sesión nueva al usuario y devuelve su refresh token.
// Si el store falla el token se descarta.
func (m *SessionManager) CreateSession(ctx context.Context, user domain.User) (string, error) {
	token, err := m.tokens.IssueRefreshToken()
	if err != nil {
		return "", err
	}
	now := m.now()
	session := domain.Session{
		Token:     token,
		ExpiresAt: now.Add(m.ttl).Unix(),
	}

	var pruneBefore int64
	if m.pruneExpired {
		pruneBefore = now.Unix()
	}
	if err := m.users.AppendSession(ctx, user.ID, session, pruneBefore); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	sessionsCreatedTotal.Inc()
	m.logger.Debug("session created", zap.String("user_id", user.ID), zap.Int64("expires_at", session.ExpiresAt))
	return token, nil
}

// IsSessionValid indica si alguna sesión coincide con el token y no expiró.
// Las sesiones vencidas no se eliminan aquí.
func (m *SessionManager) IsSessionValid(user domain.User, refreshToken string) bool {
	if refreshToken == "" {
		return false
	}
	for _, s := range user.Sessions {
		if s.Token == refreshToken && !m.HasExpired(s.ExpiresAt) {
			return true
		}
	}
	return false
}

// HasExpired compara contra el reloj en segundos: expiresAt <= now.
func (m *SessionManager) HasExpired(expiresAt int64) bool {
	return expiresAt <= m.now().Unix()
}
