package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenType   = "access"
	refreshTokenBytes = 64
)

var (
	ErrSigning      = errors.New("could not sign token")
	ErrInvalidToken = errors.New("invalid token")
	ErrEntropy      = errors.New("could not read random bytes")
)

// TokenIssuer emite access tokens JWT firmados y refresh tokens opacos.
type TokenIssuer struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	entropy   io.Reader
	now       func() time.Time
}

// Claims son los claims del access token; UserID viaja como "_id".
type Claims struct {
	UserID    string `json:"_id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func NewTokenIssuer(secret, issuer string, accessTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "task-manager"
	}
	return &TokenIssuer{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		entropy:   rand.Reader,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AccessTTL expone la vigencia configurada de los access tokens.
func (s *TokenIssuer) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenIssuer) IssueAccessToken(userID string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(userID) == "" {
		return "", ErrSigning
	}
	now := s.now()
	claims := Claims{
		UserID:    userID,
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, nil
}

// VerifyAccessToken devuelve el id del usuario. Firma inválida y expiración
// se reportan igual, como ErrInvalidToken.
func (s *TokenIssuer) VerifyAccessToken(accessToken string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(accessToken) == "" {
		return "", ErrInvalidToken
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(accessToken, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.TokenType != accessTokenType || !s.isValidClaims(claims) {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// IssueRefreshToken genera 64 bytes aleatorios codificados en hex (128 caracteres).
func (s *TokenIssuer) IssueRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := io.ReadFull(s.entropy, buf); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEntropy, err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *TokenIssuer) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
