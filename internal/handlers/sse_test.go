package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSSEHandlers_HandleResults(t *testing.T) {
	st := newHandlerStore(t)
	user := createTestUser(t, st, "sse@example.com")
	a := saveTestAnalysis(t, st, user.ID, "report.csv")
	h := NewSSEHandlers(st, newTestLogger())

	req := authedRequest(http.MethodGet, "/sse/analyses/"+a.ID, nil, user.ID)
	req.SetPathValue("id", a.ID)
	w := httptest.NewRecorder()
	h.HandleResults(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected SSE content type, got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "top-items-content") {
		t.Error("expected top items table patch in stream")
	}
	if !strings.Contains(body, "Widget") {
		t.Error("expected item name in rendered table")
	}
	if !strings.Contains(body, "monthlyData") {
		t.Error("expected chart signals in stream")
	}
}

func TestSSEHandlers_HandleResults_NotFound(t *testing.T) {
	st := newHandlerStore(t)
	user := createTestUser(t, st, "sse@example.com")
	h := NewSSEHandlers(st, newTestLogger())

	req := authedRequest(http.MethodGet, "/sse/analyses/missing", nil, user.ID)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.HandleResults(w, req)

	if !strings.Contains(w.Body.String(), "Analysis not found") {
		t.Error("expected not-found banner in stream")
	}
}

func TestSSEHandlers_HandleResults_ScopedToOwner(t *testing.T) {
	st := newHandlerStore(t)
	owner := createTestUser(t, st, "owner@example.com")
	other := createTestUser(t, st, "other@example.com")
	a := saveTestAnalysis(t, st, owner.ID, "private.csv")
	h := NewSSEHandlers(st, newTestLogger())

	req := authedRequest(http.MethodGet, "/sse/analyses/"+a.ID, nil, other.ID)
	req.SetPathValue("id", a.ID)
	w := httptest.NewRecorder()
	h.HandleResults(w, req)

	if strings.Contains(w.Body.String(), "Widget") {
		t.Error("another user's analysis must not be streamed")
	}
	if !strings.Contains(w.Body.String(), "Analysis not found") {
		t.Error("expected not-found banner in stream")
	}
}

func TestSSEHandlers_HandleHistory(t *testing.T) {
	st := newHandlerStore(t)
	user := createTestUser(t, st, "history@example.com")
	saveTestAnalysis(t, st, user.ID, "first.csv")
	saveTestAnalysis(t, st, user.ID, "second.csv")
	h := NewSSEHandlers(st, newTestLogger())

	req := authedRequest(http.MethodGet, "/sse/history", nil, user.ID)
	w := httptest.NewRecorder()
	h.HandleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "history-content") {
		t.Error("expected history table patch in stream")
	}
	if !strings.Contains(body, "first.csv") || !strings.Contains(body, "second.csv") {
		t.Error("expected both filenames in rendered table")
	}
}

func TestSSEHandlers_HandleHistory_Empty(t *testing.T) {
	st := newHandlerStore(t)
	user := createTestUser(t, st, "empty@example.com")
	h := NewSSEHandlers(st, newTestLogger())

	req := authedRequest(http.MethodGet, "/sse/history", nil, user.ID)
	w := httptest.NewRecorder()
	h.HandleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "history-content") {
		t.Error("expected empty history table patch in stream")
	}
}
