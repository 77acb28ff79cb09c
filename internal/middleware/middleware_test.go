package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salescope/internal/auth"
	"salescope/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func protectedHandler(t *testing.T, wantUserID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := observability.GetUserID(r.Context()); got != wantUserID {
			t.Errorf("user ID in context = %q, want %q", got, wantUserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_ValidCookie(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Issue("user-7", "Ada")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	handler := RequireAuth(tokens, testLogger())(protectedHandler(t, "user-7"))

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAuth_MissingCookieRedirectsBrowser(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	handler := RequireAuth(tokens, testLogger())(protectedHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestRequireAuth_APIGetsJSON401(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	handler := RequireAuth(tokens, testLogger())(protectedHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/analyses", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "tampered"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(mk("outer"), mk("inner"))(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"outer", "inner", "handler"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if observability.GetRequestID(r.Context()) == "" {
			t.Error("request ID missing from context")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}
