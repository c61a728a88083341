package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizserver/internal/auth"
	"quizserver/internal/config"
	"quizserver/internal/http_server/handlers/login"
	"quizserver/internal/http_server/handlers/logout"
	"quizserver/internal/http_server/handlers/profile"
	quizhandlers "quizserver/internal/http_server/handlers/quiz"
	"quizserver/internal/http_server/handlers/refresh"
	"quizserver/internal/http_server/handlers/signup"
	"quizserver/internal/lib/jwt"
	sl "quizserver/internal/lib/logger"
	"quizserver/internal/middleware/authjwt"
	rateLimit "quizserver/internal/middleware/ratelimit"
	"quizserver/internal/quiz"
	"quizserver/internal/rabbitmq"
	"quizserver/internal/storage/postgres"
	"quizserver/internal/users"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting quiz server", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", sl.Err(err))
		os.Exit(1)
	}
	defer storage.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", sl.Err(err))
		os.Exit(1)
	}
	defer msgBroker.Close()

	tokenManager := jwt.NewTokenManager(cfg.Tokens.Secret, cfg.Tokens.AccessTokenTTL)

	authService := auth.New(log, storage, storage, tokenManager, cfg.Tokens.RefreshTokenTTL)
	userService := users.New(log, storage)
	quizService := quiz.New(log, storage)

	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		log.Error("failed to ensure admin user", sl.Err(err))
		os.Exit(1)
	}

	router := setupRouter(log, tokenManager, authService, userService, quizService, msgBroker)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", sl.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Quiz server stopped")
}

func setupRouter(
	log *slog.Logger,
	tokenManager *jwt.TokenManager,
	authService *auth.Auth,
	userService *users.Service,
	quizService *quiz.Service,
	msgBroker *rabbitmq.RabbitMQClient,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	validate := validator.New()

	r.Route("/api/auth", func(r chi.Router) {
		r.With(rateLimit.Signup()).Post("/signup",
			signup.New(log, validate, authService, msgBroker),
		)
		r.With(rateLimit.Login()).Post("/login",
			login.New(log, validate, authService),
		)
		r.With(rateLimit.Refresh()).Post("/refresh",
			refresh.New(log, validate, authService),
		)
		r.With(rateLimit.Logout()).Post("/logout",
			logout.New(log, validate, authService),
		)
	})

	authorized := authjwt.New(log, tokenManager)
	adminOnly := authjwt.RequireAdmin(log)

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authorized)
		r.Get("/profile", profile.NewGet(log, userService))
		r.Put("/profile", profile.NewUpdate(log, validate, userService))
	})

	r.Route("/api/test", func(r chi.Router) {
		r.Use(authorized)
		r.With(adminOnly).Post("/create", quizhandlers.NewCreateTest(log, validate, quizService))
		r.With(adminOnly).Post("/question", quizhandlers.NewAddQuestion(log, validate, quizService))
		r.Get("/", quizhandlers.NewListTests(log, quizService))
		r.Get("/{id}", quizhandlers.NewGetTest(log, quizService))
		r.Post("/submit-test", quizhandlers.NewSubmit(log, validate, quizService))
		r.With(adminOnly).Get("/test-results", quizhandlers.NewResults(log, quizService))
		r.Get("/test-results/{userID}", quizhandlers.NewResultsByUser(log, quizService))
	})

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
