package server

import (
	"log/slog"
	"net/http"

	"salescope/internal/auth"
	"salescope/internal/config"
	"salescope/internal/handlers"
	"salescope/internal/middleware"
	"salescope/internal/store"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger

	authHandlers   *handlers.AuthHandlers
	uploadHandlers *handlers.UploadHandlers
	apiHandlers    *handlers.APIHandlers
	sseHandlers    *handlers.SSEHandlers
	reportHandlers *handlers.ReportHandlers
}

// PageHandlers are the HTML page renderers, supplied by the caller so the
// routing layer stays independent of the template package.
type PageHandlers struct {
	Index    http.HandlerFunc
	Login    http.HandlerFunc
	Register http.HandlerFunc
	Results  http.HandlerFunc
	History  http.HandlerFunc
}

func NewServer(st store.Store, tokens *auth.TokenManager, cfg *config.Config, logger *slog.Logger, pages *PageHandlers) *Server {
	s := &Server{
		mux:            http.NewServeMux(),
		logger:         logger,
		authHandlers:   handlers.NewAuthHandlers(st, tokens, cfg.Auth.BcryptCost, logger),
		uploadHandlers: handlers.NewUploadHandlers(st, cfg.Upload, logger),
		apiHandlers:    handlers.NewAPIHandlers(st, logger),
		sseHandlers:    handlers.NewSSEHandlers(st, logger),
		reportHandlers: handlers.NewReportHandlers(st, logger),
	}
	s.setupRoutes(tokens, pages)
	return s
}

func (s *Server) setupRoutes(tokens *auth.TokenManager, pages *PageHandlers) {
	requireAuth := middleware.RequireAuth(tokens, s.logger)
	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	// Public pages and account endpoints
	s.mux.HandleFunc("GET /login", pages.Login)
	s.mux.HandleFunc("GET /register", pages.Register)
	s.mux.HandleFunc("POST /login", s.authHandlers.HandleLogin)
	s.mux.HandleFunc("POST /register", s.authHandlers.HandleRegister)
	s.mux.HandleFunc("POST /logout", s.authHandlers.HandleLogout)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /static/app.css", handleStylesheet)

	// Pages behind a session
	s.mux.Handle("GET /{$}", protected(pages.Index))
	s.mux.Handle("GET /history", protected(pages.History))
	s.mux.Handle("GET /analyses/{id}", protected(pages.Results))
	s.mux.Handle("GET /analyses/{id}/report.pdf", protected(s.reportHandlers.HandleDownload))
	s.mux.Handle("POST /upload", protected(s.uploadHandlers.HandleUpload))

	// REST API endpoints
	s.mux.Handle("GET /api/analyses", protected(s.apiHandlers.HandleHistory))
	s.mux.Handle("GET /api/analyses/{id}", protected(s.apiHandlers.HandleAnalysis))
	s.mux.Handle("GET /admin/stats", protected(s.apiHandlers.HandleStats))

	// Datastar SSE endpoints
	s.mux.Handle("GET /sse/analyses/{id}", protected(s.sseHandlers.HandleResults))
	s.mux.Handle("GET /sse/history", protected(s.sseHandlers.HandleHistory))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

const stylesheet = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1c2733}
.topbar{display:flex;justify-content:space-between;align-items:center;padding:0.75rem 1.5rem;background:#13283f;color:#fff}
.topbar a{color:#fff;text-decoration:none;margin-left:1rem}
.brand{font-weight:700;font-size:1.1rem;margin-left:0}
.inline{display:inline}
main{max-width:960px;margin:2rem auto;padding:0 1rem}
.card{background:#fff;border-radius:8px;padding:1.5rem;box-shadow:0 1px 3px rgba(0,0,0,.08);margin-bottom:1.5rem}
.card.narrow{max-width:420px;margin:2rem auto}
label{display:block;margin:.75rem 0}
input{display:block;width:100%;padding:.5rem;margin-top:.25rem;border:1px solid #cbd5e1;border-radius:4px}
button{background:#1d63b8;color:#fff;border:0;border-radius:4px;padding:.5rem 1.25rem;cursor:pointer}
.modern-table{width:100%;border-collapse:collapse;margin:1rem 0}
.modern-table th,.modern-table td{text-align:left;padding:.5rem .75rem;border-bottom:1px solid #e2e8f0}
.error-banner{background:#fde8e8;color:#9b1c1c;padding:.75rem 1rem;border-radius:4px;margin:.5rem 0}
`

func handleStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write([]byte(stylesheet))
}
