package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salescope/internal/auth"
	"salescope/internal/config"
	"salescope/internal/store"
)

func newTestServer(t *testing.T) (*Server, *auth.TokenManager) {
	t.Helper()

	st, err := store.Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tokens := auth.NewTokenManager("route-test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{}
	cfg.Auth.BcryptCost = 4
	cfg.Upload = config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20}

	stub := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(name))
		}
	}
	pages := &PageHandlers{
		Index:    stub("index"),
		Login:    stub("login"),
		Register: stub("register"),
		Results:  stub("results"),
		History:  stub("history"),
	}

	return NewServer(st, tokens, cfg, logger, pages), tokens
}

func TestRoutes_PublicPages(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/login", "/register", "/health", "/static/app.css"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != http.StatusOK {
				t.Errorf("GET %s = %d, want 200", path, w.Code)
			}
		})
	}
}

func TestRoutes_ProtectedPagesRedirectAnonymous(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/", "/history", "/analyses/abc"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != http.StatusSeeOther {
				t.Errorf("GET %s = %d, want 303", path, w.Code)
			}
		})
	}
}

func TestRoutes_ProtectedAPIRejectsAnonymous(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/analyses", "/api/analyses/abc", "/sse/history"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("GET %s = %d, want 401", path, w.Code)
			}
		})
	}
}

func TestRoutes_SessionGrantsAccess(t *testing.T) {
	srv, tokens := newTestServer(t)

	token, err := tokens.Issue("user-1", "Ada")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET / with session = %d, want 200", w.Code)
	}
	if w.Body.String() != "index" {
		t.Errorf("body = %q, want index page", w.Body.String())
	}
}
