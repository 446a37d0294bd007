package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account_service/internal/auth"
	"account_service/internal/catalog"
	"account_service/internal/config"
	"account_service/internal/http_server/handlers/countries"
	"account_service/internal/http_server/handlers/currentuser"
	"account_service/internal/http_server/handlers/login"
	"account_service/internal/http_server/handlers/logout"
	"account_service/internal/http_server/handlers/profile"
	"account_service/internal/http_server/handlers/register"
	"account_service/internal/http_server/handlers/resend"
	"account_service/internal/http_server/handlers/verify"
	"account_service/internal/http_server/handlers/weblogin"
	"account_service/internal/http_server/middleware/authn"
	rateLimit "account_service/internal/http_server/middleware/ratelimit"
	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"
	"account_service/internal/rabbitmq"
	"account_service/internal/storage/postgres"
	redisstore "account_service/internal/storage/redis"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := sl.Setup(cfg.Env)

	log.Info("starting account service", slog.String("env", cfg.Env))

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

	if err := storage.Migrate(ctx); err != nil {
		log.Error("failed to run migrations", sl.Err(err))
		os.Exit(1)
	}

	sessions, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Error("failed to connect redis", sl.Err(err))
		os.Exit(1)
	}
	defer sessions.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", sl.Err(err))
		os.Exit(1)
	}
	defer msgBroker.Close()

	authService := auth.New(log, storage, storage, storage)
	catalogService := catalog.New(log, storage)

	router := setupRouter(log, cfg, authService, catalogService, sessions, msgBroker)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("addr", cfg.HTTPServer.Address))
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
}

func setupRouter(
	log *slog.Logger,
	cfg *config.Config,
	authService *auth.Auth,
	catalogService *catalog.Catalog,
	sessions *redisstore.RedisRepo,
	msgBroker *rabbitmq.RabbitMQClient,
) *chi.Mux {
	validate := resp.NewValidator()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Cookie-session login, served outside the /api prefix.
	r.With(rateLimit.Login()).Post("/login",
		weblogin.New(log, validate, authService, sessions, cfg.Redis.SessionTTL),
	)

	r.Route("/api", func(api chi.Router) {
		api.With(rateLimit.Register()).Post("/register",
			register.New(log, validate, authService, msgBroker,
				cfg.Tokens.VerificationTokenTTL, cfg.Tokens.VerificationTokenSecret, cfg.HTTPServer.BaseURL),
		)
		api.With(rateLimit.Login()).Post("/login",
			login.New(log, validate, authService),
		)
		api.With(rateLimit.Verify()).Get("/verify",
			verify.New(log, authService, cfg.Tokens.VerificationTokenSecret),
		)
		api.With(rateLimit.ResendVerificationEmail()).Post("/verify/resend",
			resend.New(log, validate, authService, msgBroker,
				cfg.Tokens.VerificationTokenTTL, cfg.Tokens.VerificationTokenSecret, cfg.HTTPServer.BaseURL),
		)

		api.Get("/countries", countries.List(log, catalogService))
		api.Get("/countries/{id}/languages", countries.Languages(log, catalogService))

		api.Group(func(private chi.Router) {
			private.Use(authn.New(log, authService))

			private.With(rateLimit.Logout()).Post("/logout", logout.New(log, authService))
			private.Get("/profile", profile.New(log))
			private.Get("/user", currentuser.New())
		})
	})

	return r
}
