package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"task-manager/internal/repository"
	"task-manager/internal/service"
)

const testSecret = "secret"

type testServer struct {
	router   *gin.Engine
	users    *repository.MemoryUserRepository
	lists    *repository.MemoryListRepository
	tasks    *repository.MemoryTaskRepository
	tokens   *service.TokenIssuer
	sessions *service.SessionManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := repository.NewMemoryUserRepository()
	lists := repository.NewMemoryListRepository()
	tasks := repository.NewMemoryTaskRepository()

	tokens := service.NewTokenIssuer(testSecret, "task-manager", 15*time.Minute)
	sessions := service.NewSessionManager(logger, users, tokens, 0, true)
	userSvc := service.NewUserService(logger, users, sessions, tokens, service.NewLoginRateLimiter(time.Minute, 100), bcrypt.MinCost)
	listSvc := service.NewListService(logger, lists, tasks)
	taskSvc := service.NewTaskService(listSvc, tasks)

	router := NewRouter(logger, Deps{
		Users:       NewUserHandler(logger, userSvc, tokens),
		Lists:       NewListHandler(logger, listSvc),
		Tasks:       NewTaskHandler(logger, taskSvc),
		Health:      NewHealthHandler(logger, nil),
		Tokens:      tokens,
		UserService: userSvc,
		Sessions:    sessions,
		AllowOrigin: "*",
	})

	return &testServer{
		router:   router,
		users:    users,
		lists:    lists,
		tasks:    tasks,
		tokens:   tokens,
		sessions: sessions,
	}
}

func performRequest(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// signUp registra un usuario y devuelve id, access token y refresh token.
func (s *testServer) signUp(t *testing.T, email string) (string, string, string) {
	t.Helper()
	rec := performRequest(s.router, http.MethodPost, "/users", map[string]string{
		"email":    email,
		"password": "12345678",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign up %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode sign up body: %v", err)
	}
	id, _ := body["_id"].(string)
	return id, rec.Header().Get(headerAccessToken), rec.Header().Get(headerRefreshToken)
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}
