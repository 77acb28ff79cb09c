package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"salescope/internal/auth"
	"salescope/internal/config"
	"salescope/internal/middleware"
	"salescope/internal/server"
	"salescope/internal/store"
)

func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{}
	cfg.Auth.BcryptCost = 4
	cfg.Upload = config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20}
	cfg.Security = config.SecurityConfig{
		EnableRateLimit: false,
		RateLimitRPS:    100,
		RateLimitBurst:  10,
	}

	tokens := auth.NewTokenManager("integration-secret", time.Hour)
	srv := server.NewServer(st, tokens, cfg, logger, newPageHandlers())

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.SecurityHeaders(),
		middleware.RateLimit(middleware.NewRateLimiter(cfg.Security), logger),
	)
	return chain(srv)
}

func registerAndSignIn(t *testing.T, app http.Handler) *http.Cookie {
	t.Helper()

	form := url.Values{
		"name":     {"Integration User"},
		"email":    {"flow@example.com"},
		"password": {"password123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie after registration")
	return nil
}

func TestApp_PublicPages(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/login", "/register", "/health"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != http.StatusOK {
				t.Errorf("GET %s = %d, want 200", path, w.Code)
			}
		})
	}
}

func TestApp_LoginPageRendersForm(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	body := w.Body.String()
	if !strings.Contains(body, "Salescope") {
		t.Error("login page should carry the site title")
	}
	if !strings.Contains(body, `action="/login"`) {
		t.Error("login page should contain the sign-in form")
	}
}

func TestApp_UploadFlow(t *testing.T) {
	app := newTestApp(t)
	session := registerAndSignIn(t, app)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "sales.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("date,item,amount\n2024-03-10,Widget,50\n2024-03-11,Gadget,30\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(session)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/analyses/") {
		t.Fatalf("Location = %q, want /analyses/{id}", loc)
	}

	// The results page renders for the owner.
	pageReq := httptest.NewRequest(http.MethodGet, loc, nil)
	pageReq.AddCookie(session)
	pageW := httptest.NewRecorder()
	app.ServeHTTP(pageW, pageReq)

	if pageW.Code != http.StatusOK {
		t.Fatalf("results page status = %d", pageW.Code)
	}
	if !strings.Contains(pageW.Body.String(), "/sse"+loc) {
		t.Error("results page should point at its SSE stream")
	}

	// The API returns the stored metrics.
	id := strings.TrimPrefix(loc, "/analyses/")
	apiReq := httptest.NewRequest(http.MethodGet, "/api/analyses/"+id, nil)
	apiReq.AddCookie(session)
	apiW := httptest.NewRecorder()
	app.ServeHTTP(apiW, apiReq)

	if apiW.Code != http.StatusOK {
		t.Fatalf("api status = %d: %s", apiW.Code, apiW.Body.String())
	}

	var response map[string]interface{}
	if err := json.NewDecoder(apiW.Body).Decode(&response); err != nil {
		t.Fatalf("decode api response: %v", err)
	}
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected analysis in data field")
	}
	metrics, _ := data["metrics"].(map[string]interface{})
	if total, _ := metrics["total_sales"].(float64); total != 80 {
		t.Errorf("total_sales = %v, want 80", total)
	}
}

func TestApp_AnonymousIsRedirected(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestApp_MethodNotAllowed(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		method string
		path   string
	}{
		{"DELETE", "/health"},
		{"PUT", "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", w.Code)
			}
		})
	}
}
