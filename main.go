// Command todoapp is the entry point of the todo backend. It initializes
// configuration, the database pool, services and handlers, sets up the HTTP
// router and middleware, and starts the server with graceful shutdown.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/user/todoapp-go/apperror"
	"github.com/user/todoapp-go/auth"
	"github.com/user/todoapp-go/config"
	"github.com/user/todoapp-go/db"
	"github.com/user/todoapp-go/tasks"
	"github.com/user/todoapp-go/users"
)

func main() {
	// .env is a development convenience; in production the variables are set
	// directly in the environment.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	// A missing JWT_SECRET (or any other config error) fails startup here.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		logger.Fatal("failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := db.EnsureSchema(pool); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	// Manual dependency injection: every service receives its collaborators
	// through its constructor, all rooted in the immutable config.
	hasher := auth.NewPasswordHasher()
	tokenService := auth.NewTokenService(*cfg.Auth)
	userStore := auth.NewPgxUserStore(pool)
	authService := auth.NewService(userStore, hasher, tokenService, logger)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewService(userStore, logger)
	userHandlers := users.NewHandlers(userService)

	taskStore := tasks.NewPgxStore(pool)
	taskService := tasks.NewService(taskStore, logger)
	taskHandler := tasks.NewHandler(taskService)

	r := chi.NewRouter()

	// Global middleware. Chi requires all middleware to be registered before
	// any routes.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Panic recovery that keeps the error response in the standard JSON
	// shape instead of an empty 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic while handling request", zap.Any("panic", rvr))
					writeError(w, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(w, r)
		})
	})

	// Health check.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Todo App Backend API",
			"status":  "running",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes.
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())

		// Everything below requires a verified bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware(tokenService))

			r.Get("/me", userHandlers.HandleGetCurrentUser())

			// Task routes additionally require the path user id to match
			// the token identity.
			r.Route("/{userID}/tasks", func(r chi.Router) {
				r.Use(auth.RequireOwner("userID"))
				taskHandler.RegisterRoutes(r)
			})
		})
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}

// requestLogger logs every request with method, path, status and duration.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// writeError is a local helper for the panic recovery middleware; it keeps
// panics in the same error shape as the apperror system.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
