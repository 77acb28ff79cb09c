package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salescope/internal/auth"
	"salescope/internal/config"
	"salescope/internal/models"
	"salescope/internal/observability"
	"salescope/internal/store"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandlerStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    ":memory:",
	})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestTokens() *auth.TokenManager {
	return auth.NewTokenManager("handler-test-secret", time.Hour)
}

func createTestUser(t *testing.T, st store.Store, email string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{Name: "Test User", Email: email, PasswordHash: hash}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

func saveTestAnalysis(t *testing.T, st store.Store, userID, filename string) *models.Analysis {
	t.Helper()
	a := &models.Analysis{
		UserID:   userID,
		Filename: filename,
		Columns:  models.RoleMap{Date: "date", Item: "item", Amount: "amount"},
		Metrics: models.MetricsRecord{
			TotalSales:   250.50,
			TotalRecords: 5,
			PeakDay:      "Tuesday",
			TopItems:     []models.ItemSales{{Item: "Widget", Sales: 250.50}},
			MonthlySales: []models.MonthSales{{Month: "2024-03", Sales: 250.50}},
			DailySales:   []models.DaySales{{Date: "2024-03-12", Sales: 250.50}},
			DayOfWeekSales: []models.WeekdaySales{
				{Day: "Monday"}, {Day: "Tuesday", Sales: 250.50}, {Day: "Wednesday"},
				{Day: "Thursday"}, {Day: "Friday"}, {Day: "Saturday"}, {Day: "Sunday"},
			},
		},
	}
	if err := st.SaveAnalysis(context.Background(), a); err != nil {
		t.Fatalf("save test analysis: %v", err)
	}
	return a
}

// authedRequest carries the user through the context the way the auth
// middleware would.
func authedRequest(method, target string, body io.Reader, userID string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(observability.WithUserID(req.Context(), userID))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	response := decodeEnvelope(t, w)
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", response)
	}
	code, _ := errObj["code"].(string)
	return code
}
