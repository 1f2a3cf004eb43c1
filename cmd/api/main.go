package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/db"
	apihttp "task-manager/internal/http"
	"task-manager/internal/repository"
	"task-manager/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		userRepo repository.UserRepository
		listRepo repository.ListRepository
		taskRepo repository.TaskRepository
		pinger   apihttp.Pinger
		pool     *pgxpool.Pool
	)
	if cfg.UsesPostgres() {
		pool, err = db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()

		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		userRepo = repository.NewPgUserRepository(pool)
		listRepo = repository.NewPgListRepository(pool)
		taskRepo = repository.NewPgTaskRepository(pool)
		pinger = pool
	} else {
		logger.Warn("DATABASE_URL not configured, using in-memory store")
		userRepo = repository.NewMemoryUserRepository()
		listRepo = repository.NewMemoryListRepository()
		taskRepo = repository.NewMemoryTaskRepository()
	}

	loginLimiter := service.NewLoginRateLimiter(cfg.LoginRateWindow, cfg.LoginRateMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory login limiter", zap.Error(err))
		} else {
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, cfg.LoginRateWindow, cfg.LoginRateMax)
		}
		cancel()
	}

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL)
	sessions := service.NewSessionManager(logger, userRepo, tokens, cfg.SessionTTL, cfg.SessionPruneExpired)
	userSvc := service.NewUserService(logger, userRepo, sessions, tokens, loginLimiter, cfg.BcryptCost)
	listSvc := service.NewListService(logger, listRepo, taskRepo)
	taskSvc := service.NewTaskService(listSvc, taskRepo)

	router := apihttp.NewRouter(logger, apihttp.Deps{
		Users:       apihttp.NewUserHandler(logger, userSvc, tokens),
		Lists:       apihttp.NewListHandler(logger, listSvc),
		Tasks:       apihttp.NewTaskHandler(logger, taskSvc),
		Health:      apihttp.NewHealthHandler(logger, pinger),
		Tokens:      tokens,
		UserService: userSvc,
		Sessions:    sessions,
		AllowOrigin: cfg.CORSAllowOrigin,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
