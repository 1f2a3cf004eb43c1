package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"task-manager/internal/service"
)

// Deps agrupa handlers y servicios que el router necesita para montar las rutas.
type Deps struct {
	Users       *UserHandler
	Lists       *ListHandler
	Tasks       *TaskHandler
	Health      *HealthHandler
	Tokens      *service.TokenIssuer
	UserService *service.UserService
	Sessions    *service.SessionManager
	AllowOrigin string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, deps Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		requestIDMiddleware(),
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		corsMiddleware(deps.AllowOrigin),
		metricsMiddleware(),
		jsonContentTypeMiddleware(),
	)

	r.GET("/healthz", deps.Health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := r.Group("/users")
	users.POST("", deps.Users.SignUp)
	users.POST("/login", deps.Users.Login)
	users.GET("/me/access-token", SessionMiddleware(logger, deps.UserService, deps.Sessions), deps.Users.AccessToken)

	lists := r.Group("/lists", AccessTokenMiddleware(deps.Tokens))
	lists.GET("", deps.Lists.GetLists)
	lists.POST("", deps.Lists.CreateList)
	lists.PATCH("/:listId", deps.Lists.UpdateList)
	lists.DELETE("/:listId", deps.Lists.DeleteList)

	lists.GET("/:listId/tasks", deps.Tasks.GetTasks)
	lists.POST("/:listId/tasks", deps.Tasks.CreateTask)
	lists.PATCH("/:listId/tasks/:taskId", deps.Tasks.UpdateTask)
	lists.DELETE("/:listId/tasks/:taskId", deps.Tasks.DeleteTask)

	return r
}
