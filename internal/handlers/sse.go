package handlers

import (
	"encoding/json"
	stderrors "errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"salescope/internal/models"
	"salescope/internal/observability"
	"salescope/internal/store"
)

const maxHistoryRows = 50

var topItemsTemplate = template.Must(template.New("topItems").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`
<div id="top-items-content">
<table class="modern-table">
<thead><tr><th>#</th><th>Item</th><th>Sales</th></tr></thead>
<tbody>
{{range $i, $item := .}}<tr>
<td>{{inc $i}}</td>
<td>{{.Item}}</td>
<td><strong>{{printf "%.2f" .Sales}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var historyTemplate = template.Must(template.New("history").Parse(`
<div id="history-content">
<table class="modern-table">
<thead><tr><th>File</th><th>Total Sales</th><th>Records</th><th>Uploaded</th><th></th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Filename}}</td>
<td><strong>{{printf "%.2f" .Metrics.TotalSales}}</strong></td>
<td>{{.Metrics.TotalRecords}}</td>
<td>{{.CreatedAt.Format "2006-01-02 15:04"}}</td>
<td><a href="/analyses/{{.ID}}">View</a></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	store  store.AnalysisStore
	logger *slog.Logger
}

func NewSSEHandlers(st store.AnalysisStore, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		store:  st,
		logger: logger,
	}
}

// HandleResults streams the chart data and top-items table for one analysis.
func (h *SSEHandlers) HandleResults(w http.ResponseWriter, r *http.Request) {
	userID := observability.GetUserID(r.Context())

	a, err := h.store.AnalysisByID(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		h.writeSSEError(w, r, err)
		return
	}

	sse := datastar.NewSSE(w, r)

	signals, err := json.Marshal(map[string]any{
		"monthlyData": a.Metrics.MonthlySales,
		"dailyData":   a.Metrics.DailySales,
		"weekdayData": a.Metrics.DayOfWeekSales,
	})
	if err != nil {
		h.logger.Error("marshal results signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	html, err := renderTopItems(a.Metrics.TopItems)
	if err != nil {
		h.logger.Error("render top items table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleHistory streams the user's recent analyses as a table.
func (h *SSEHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID := observability.GetUserID(r.Context())

	list, err := h.store.AnalysesByUser(r.Context(), userID, maxHistoryRows)
	if err != nil {
		h.writeSSEError(w, r, err)
		return
	}

	sse := datastar.NewSSE(w, r)

	html, err := renderHistory(list)
	if err != nil {
		h.logger.Error("render history table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) writeSSEError(w http.ResponseWriter, r *http.Request, err error) {
	sse := datastar.NewSSE(w, r)
	msg := "Could not load data"
	if stderrors.Is(err, store.ErrNotFound) {
		msg = "Analysis not found"
	} else {
		h.logger.Error("sse data load failed", "error", err)
	}
	sse.PatchElements(`<div id="sse-error" class="error-banner">` + template.HTMLEscapeString(msg) + `</div>`)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func renderTopItems(items []models.ItemSales) (string, error) {
	var buf strings.Builder
	err := topItemsTemplate.Execute(&buf, items)
	return buf.String(), err
}

func renderHistory(list []*models.Analysis) (string, error) {
	var buf strings.Builder
	err := historyTemplate.Execute(&buf, list)
	return buf.String(), err
}
