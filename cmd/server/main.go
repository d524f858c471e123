package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/config"
	"github.com/evalhub/evalhub-backend/internal/database"
	"github.com/evalhub/evalhub-backend/internal/handler"
	"github.com/evalhub/evalhub-backend/internal/logger"
	"github.com/evalhub/evalhub-backend/internal/repository"
	"github.com/evalhub/evalhub-backend/internal/router"
	"github.com/evalhub/evalhub-backend/internal/service"
	"github.com/evalhub/evalhub-backend/internal/validator"
	"github.com/evalhub/evalhub-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting EvalHub Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	monitorRepo := repository.NewMonitorRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, userRepo)
	userService := service.NewUserService(userRepo, authService, log)
	examService := service.NewExamService(examRepo, questionRepo, rdb, log)
	questionService := service.NewQuestionService(questionRepo, log)
	resultService := service.NewResultService(resultRepo, examRepo, userRepo, log)
	sessionService := service.NewSessionService(examService, resultService, rdb, log)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	monitorService := service.NewMonitorService(monitorRepo)
	aiService := service.NewAIService(cfg, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService),
		User:      handler.NewUserHandler(userService, authService),
		Exam:      handler.NewExamHandler(examService),
		Question:  handler.NewQuestionHandler(questionService),
		Session:   handler.NewSessionHandler(examService, sessionService),
		Result:    handler.NewResultHandler(resultService, examService),
		Analytics: handler.NewAnalyticsHandler(analyticsService, examService),
		AI:        handler.NewAIHandler(aiService, resultService, examService),
		Monitor:   handler.NewMonitorHandler(monitorService, examService, rdb, log),
		WS:        handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	answerWorker := worker.NewAnswerWorker(pool, rdb, log)
	eventWorker := worker.NewEventWorker(pool, rdb, log)

	go answerWorker.Start(workerCtx)
	go eventWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load all published exams into Redis BEFORE accepting traffic.
	// This avoids race conditions from lazy loading under thundering herd.
	if err := examService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop live session timers so no forced submit fires mid-shutdown.
	sessionService.CloseAll()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
