package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

const (
	// minPasswordLength cuenta caracteres; maxPasswordLength cuenta bytes (límite de bcrypt).
	minPasswordLength = 8
	maxPasswordLength = 72
)

var emailValidate = validator.New()

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthResult agrupa al usuario autenticado con el par de tokens recién emitido.
type AuthResult struct {
	User         domain.User
	AccessToken  string
	RefreshToken string
}

// UserService coordina registro, login y búsqueda de usuarios por sesión.
type UserService struct {
	logger     *zap.Logger
	users      repository.UserRepository
	sessions   *SessionManager
	tokens     *TokenIssuer
	limiter    LoginRateLimiter
	bcryptCost int
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, sessions *SessionManager, tokens *TokenIssuer, limiter LoginRateLimiter, bcryptCost int) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = 10
	}
	return &UserService{
		logger:     logger,
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		limiter:    limiter,
		bcryptCost: bcryptCost,
	}
}

// SignUp crea el usuario, abre su primera sesión y emite el access token.
func (s *UserService) SignUp(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	emailAddr = normalizeEmail(emailAddr)
	if !isValidEmail(emailAddr) {
		return AuthResult{}, ErrInvalidEmail
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return AuthResult{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: hash,
		Sessions:     []domain.Session{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, err
	}

	return s.openSession(ctx, user)
}

// Login valida credenciales, aplica el rate limit por email y abre una sesión nueva.
func (s *UserService) Login(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	key := normalizeEmail(emailAddr)
	if s.limiter != nil && key != "" && !s.limiter.Allow(ctx, key) {
		return AuthResult{}, ErrRateLimited
	}
	user, err := s.FindByCredentials(ctx, emailAddr, password)
	if err != nil {
		return AuthResult{}, err
	}
	return s.openSession(ctx, user)
}

// FindByCredentials no distingue entre usuario inexistente y password incorrecto.
func (s *UserService) FindByCredentials(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// FindByIDAndToken busca al usuario dueño de la sesión; no revisa expiración.
func (s *UserService) FindByIDAndToken(ctx context.Context, userID, refreshToken string) (domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || refreshToken == "" {
		return domain.User{}, ErrUserNotFound
	}
	user, err := s.users.GetByIDAndToken(ctx, userID, refreshToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) openSession(ctx context.Context, user domain.User) (AuthResult, error) {
	refreshToken, err := s.sessions.CreateSession(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	accessToken, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// hashPassword es el único punto donde un password en texto plano pasa a hash.
func (s *UserService) hashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isValidEmail aplica la misma regla que el tag `binding:"email"` de gin.
func isValidEmail(email string) bool {
	return email != "" && emailValidate.Var(email, "email") == nil
}
