package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/memberboard/memberboard-go/internal/config"
	"github.com/memberboard/memberboard-go/internal/handler"
	"github.com/memberboard/memberboard-go/internal/middleware"
	"github.com/memberboard/memberboard-go/internal/repository"
	"github.com/memberboard/memberboard-go/internal/service"
	"github.com/memberboard/memberboard-go/internal/session"
	"github.com/memberboard/memberboard-go/internal/view"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	store, err := session.NewRedisStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Error("session store connection failed", "error", err)
		os.Exit(1)
	}

	render, err := view.NewRenderer()
	if err != nil {
		slog.Error("template parsing failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	sessions := session.NewManager(store, userRepo, cfg.SessionSecret, cfg.SessionTTL)
	authService := service.NewAuthService(userRepo)
	memberService := service.NewMemberService(userRepo, cfg.MemberSecret)
	messageService := service.NewMessageService(messageRepo)

	authHandler := handler.NewAuthHandler(authService, sessions, render)
	memberHandler := handler.NewMemberHandler(memberService, render)
	messageHandler := handler.NewMessageHandler(messageService, render)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.CurrentUser(sessions, render))
	r.NotFound(handler.NotFound(render))

	r.Get("/", messageHandler.HandleHome)
	r.Get("/sign-up", authHandler.ShowSignUp)
	r.Post("/sign-up", authHandler.HandleSignUp)
	r.Get("/login", authHandler.ShowLogin)
	r.Post("/login", authHandler.HandleLogin)
	r.Get("/logout", authHandler.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/join", memberHandler.ShowJoin)
		r.Post("/join", memberHandler.HandleJoin)
		r.Get("/new", messageHandler.ShowNew)
		r.Post("/new", messageHandler.HandleNew)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	if err := store.Close(); err != nil {
		slog.Error("closing session store", "error", err)
	}
	if err := db.Close(); err != nil {
		slog.Error("closing database", "error", err)
	}

	slog.Info("server stopped")
}
