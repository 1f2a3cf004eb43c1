package http

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

func TestAccessTokenMiddleware_AllowsValidAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenIssuer(testSecret, "task-manager", 15*time.Minute)
	token, err := tokens.IssueAccessToken("u1")
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	r := gin.New()
	r.GET("/protected", AccessTokenMiddleware(tokens), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok || userID != "u1" {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := performRequest(r, http.MethodGet, "/protected", nil, map[string]string{headerAccessToken: token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccessTokenMiddleware_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenIssuer(testSecret, "task-manager", 15*time.Minute)

	r := gin.New()
	r.GET("/protected", AccessTokenMiddleware(tokens), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := performRequest(r, http.MethodGet, "/protected", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAccessTokenMiddleware_RejectsExpiredToken(t *testing.T) {
	srv := newTestServer(t)
	issuedAt := time.Now().UTC().Add(-time.Hour)
	claims := service.Claims{
		UserID:    "u1",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "task-manager",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(15 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rec := performRequest(srv.router, http.MethodGet, "/lists", nil, map[string]string{headerAccessToken: signed})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
	body := decodeJSON[map[string]string](t, rec)
	if body["error"] != service.ErrInvalidToken.Error() {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestSessionMiddleware_IssuesAccessTokenForValidSession(t *testing.T) {
	srv := newTestServer(t)
	userID, _, refreshToken := srv.signUp(t, "a@b.com")

	rec := performRequest(srv.router, http.MethodGet, "/users/me/access-token", nil, map[string]string{
		headerRefreshToken: refreshToken,
		headerUserID:       userID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeJSON[map[string]string](t, rec)
	if body["accessToken"] == "" || body["accessToken"] != rec.Header().Get(headerAccessToken) {
		t.Fatalf("expected accessToken in body and header, got %+v", body)
	}
	gotID, err := srv.tokens.VerifyAccessToken(body["accessToken"])
	if err != nil || gotID != userID {
		t.Fatalf("expected token for %s, got %q (%v)", userID, gotID, err)
	}
}

func TestSessionMiddleware_UserNotFound(t *testing.T) {
	srv := newTestServer(t)
	userID, _, _ := srv.signUp(t, "a@b.com")

	rec := performRequest(srv.router, http.MethodGet, "/users/me/access-token", nil, map[string]string{
		headerRefreshToken: "not-a-session",
		headerUserID:       userID,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := decodeJSON[map[string]string](t, rec)
	if body["error"] != "User not found" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestSessionMiddleware_ExpiredSession(t *testing.T) {
	srv := newTestServer(t)
	userID, _, _ := srv.signUp(t, "a@b.com")
	expired := domain.Session{Token: "expired-token", ExpiresAt: time.Now().Add(-time.Minute).Unix()}
	if err := srv.users.AppendSession(context.Background(), userID, expired, 0); err != nil {
		t.Fatalf("seed expired session: %v", err)
	}

	rec := performRequest(srv.router, http.MethodGet, "/users/me/access-token", nil, map[string]string{
		headerRefreshToken: expired.Token,
		headerUserID:       userID,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := decodeJSON[map[string]string](t, rec)
	if body["error"] != "Refresh token expired or the session is not valid" {
		t.Fatalf("unexpected error body: %+v", body)
	}

	stored, err := srv.users.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(stored.Sessions) != 2 {
		t.Fatalf("expired session must not be removed on check, got %d sessions", len(stored.Sessions))
	}
}

type failingLookupUserRepo struct {
	*repository.MemoryUserRepository
}

func (r *failingLookupUserRepo) GetByIDAndToken(context.Context, string, string) (domain.User, error) {
	return domain.User{}, errors.New("connection reset")
}

func TestSessionMiddleware_StoreFailureIsNotUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	users := &failingLookupUserRepo{MemoryUserRepository: repository.NewMemoryUserRepository()}
	tokens := service.NewTokenIssuer(testSecret, "task-manager", 15*time.Minute)
	sessions := service.NewSessionManager(logger, users, tokens, 0, true)
	userSvc := service.NewUserService(logger, users, sessions, tokens, nil, bcrypt.MinCost)

	r := gin.New()
	r.GET("/refresh", SessionMiddleware(logger, userSvc, sessions), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := performRequest(r, http.MethodGet, "/refresh", nil, map[string]string{
		headerRefreshToken: "token",
		headerUserID:       "u1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on store failure, got %d", rec.Code)
	}
	body := decodeJSON[map[string]string](t, rec)
	if body["error"] == "User not found" {
		t.Fatalf("store failure must not be reported as a missing user")
	}
}
