// Package report renders a stored analysis as a downloadable PDF summary.
package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"salescope/internal/models"
)

const (
	labelWidth = 70
	valueWidth = 60
	rowHeight  = 7
)

// Write renders the analysis as a single-document PDF to w.
func Write(w io.Writer, a *models.Analysis) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sales Analysis Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Sales Analysis Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, fmt.Sprintf("File: %s", a.Filename), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", a.CreatedAt.Format("2006-01-02 15:04 UTC")), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	writeColumns(pdf, a.Columns)
	writeSummary(pdf, &a.Metrics)
	writeItemTable(pdf, a.Metrics.TopItems)
	writeMonthTable(pdf, a.Metrics.MonthlySales)
	writeWeekdayTable(pdf, a.Metrics.DayOfWeekSales)

	return pdf.Output(w)
}

func sectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func metricRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(labelWidth, rowHeight, label, "B", 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, rowHeight, value, "B", 1, "R", false, 0, "")
}

func writeColumns(pdf *fpdf.Fpdf, roles models.RoleMap) {
	sectionHeader(pdf, "Detected Columns")
	rows := []struct{ label, value string }{
		{"Date", roles.Date},
		{"Item", roles.Item},
		{"Quantity", roles.Qty},
		{"Rate", roles.Rate},
		{"Amount", roles.Amount},
	}
	for _, r := range rows {
		v := r.value
		if v == "" {
			v = "(not detected)"
		}
		metricRow(pdf, r.label, v)
	}
	pdf.Ln(4)
}

func writeSummary(pdf *fpdf.Fpdf, m *models.MetricsRecord) {
	sectionHeader(pdf, "Summary")
	metricRow(pdf, "Total Sales", money(m.TotalSales))
	metricRow(pdf, "Last 7 Days", money(m.Last7DaysSales))
	metricRow(pdf, "Last 30 Days", money(m.Last30DaysSales))
	metricRow(pdf, "Avg / Day (Week)", money(m.AvgSalesPerDayWeek))
	metricRow(pdf, "Avg / Day (Month)", money(m.AvgSalesPerDayMonth))
	metricRow(pdf, "Growth Rate (Week)", fmt.Sprintf("%.2f%%", m.GrowthRateWeek))
	metricRow(pdf, "Growth Rate (Month)", fmt.Sprintf("%.2f%%", m.GrowthRateMonth))
	metricRow(pdf, "Avg Transaction Value", money(m.AvgTransactionValue))
	if m.TotalQuantity != nil {
		metricRow(pdf, "Total Quantity", fmt.Sprintf("%.2f", *m.TotalQuantity))
	}
	metricRow(pdf, "Records Analyzed", fmt.Sprintf("%d", m.TotalRecords))
	metricRow(pdf, "Peak Sales Day", m.PeakDay)
	pdf.Ln(4)
}

func writeItemTable(pdf *fpdf.Fpdf, items []models.ItemSales) {
	if len(items) == 0 {
		return
	}
	sectionHeader(pdf, "Top Items")
	for i, it := range items {
		metricRow(pdf, fmt.Sprintf("%d. %s", i+1, it.Item), money(it.Sales))
	}
	pdf.Ln(4)
}

func writeMonthTable(pdf *fpdf.Fpdf, months []models.MonthSales) {
	if len(months) == 0 {
		return
	}
	sectionHeader(pdf, "Monthly Sales")
	for _, m := range months {
		metricRow(pdf, m.Month, money(m.Sales))
	}
	pdf.Ln(4)
}

func writeWeekdayTable(pdf *fpdf.Fpdf, days []models.WeekdaySales) {
	if len(days) == 0 {
		return
	}
	sectionHeader(pdf, "Sales by Day of Week")
	for _, d := range days {
		metricRow(pdf, d.Day, money(d.Sales))
	}
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
