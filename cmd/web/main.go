package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"

	"salescope/internal/auth"
	"salescope/internal/config"
	"salescope/internal/middleware"
	"salescope/internal/observability"
	"salescope/internal/server"
	"salescope/internal/store"
	"salescope/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	storeOpenLimit = 30 * time.Second
)

func pageHandler(build func(r *http.Request) templ.Component) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		if err := build(r).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newPageHandlers() *server.PageHandlers {
	return &server.PageHandlers{
		Index:    pageHandler(func(r *http.Request) templ.Component { return templates.Index() }),
		Login:    pageHandler(func(r *http.Request) templ.Component { return templates.Login() }),
		Register: pageHandler(func(r *http.Request) templ.Component { return templates.Register() }),
		Results: pageHandler(func(r *http.Request) templ.Component {
			return templates.Results(r.PathValue("id"))
		}),
		History: pageHandler(func(r *http.Request) templ.Component { return templates.History() }),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"database_driver", cfg.Database.Driver,
	)

	ctx, cancel := context.WithTimeout(context.Background(), storeOpenLimit)
	defer cancel()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	srv := server.NewServer(st, tokens, cfg, logger, newPageHandlers())

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("closing store")
		return st.Close()
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
