package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salescope/internal/models"
)

// analysisColumns is the select list shared by both backends; the scan
// order in scanAnalysis must match.
const analysisColumns = `id, user_id, filename,
	date_column, item_column, qty_column, rate_column, amount_column,
	total_sales, last_7_days_sales, last_30_days_sales,
	avg_sales_per_day_week, avg_sales_per_day_month,
	growth_rate_week, growth_rate_month, avg_transaction_value,
	total_quantity, total_records, peak_day,
	top_items, monthly_sales, daily_sales, day_of_week_sales, created_at`

// prepareAnalysis fills in the store-assigned fields and serializes the
// breakdown lists for insertion.
func prepareAnalysis(a *models.Analysis) (topItems, monthly, daily, weekday []byte, err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if topItems, err = json.Marshal(a.Metrics.TopItems); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal top items: %w", err)
	}
	if monthly, err = json.Marshal(a.Metrics.MonthlySales); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal monthly sales: %w", err)
	}
	if daily, err = json.Marshal(a.Metrics.DailySales); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal daily sales: %w", err)
	}
	if weekday, err = json.Marshal(a.Metrics.DayOfWeekSales); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal day-of-week sales: %w", err)
	}
	return topItems, monthly, daily, weekday, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var (
		a                          models.Analysis
		dateCol, itemCol           sql.NullString
		qtyCol, rateCol, amountCol sql.NullString
		totalQty                   sql.NullFloat64
		topItems, monthly          []byte
		daily, weekday             []byte
		createdAt                  string
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.Filename,
		&dateCol, &itemCol, &qtyCol, &rateCol, &amountCol,
		&a.Metrics.TotalSales, &a.Metrics.Last7DaysSales, &a.Metrics.Last30DaysSales,
		&a.Metrics.AvgSalesPerDayWeek, &a.Metrics.AvgSalesPerDayMonth,
		&a.Metrics.GrowthRateWeek, &a.Metrics.GrowthRateMonth, &a.Metrics.AvgTransactionValue,
		&totalQty, &a.Metrics.TotalRecords, &a.Metrics.PeakDay,
		&topItems, &monthly, &daily, &weekday, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	a.Columns = models.RoleMap{
		Date:   dateCol.String,
		Item:   itemCol.String,
		Qty:    qtyCol.String,
		Rate:   rateCol.String,
		Amount: amountCol.String,
	}
	if totalQty.Valid {
		v := totalQty.Float64
		a.Metrics.TotalQuantity = &v
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	a.CreatedAt = ts.UTC()

	if err := json.Unmarshal(topItems, &a.Metrics.TopItems); err != nil {
		return nil, fmt.Errorf("unmarshal top items: %w", err)
	}
	if err := json.Unmarshal(monthly, &a.Metrics.MonthlySales); err != nil {
		return nil, fmt.Errorf("unmarshal monthly sales: %w", err)
	}
	if err := json.Unmarshal(daily, &a.Metrics.DailySales); err != nil {
		return nil, fmt.Errorf("unmarshal daily sales: %w", err)
	}
	if err := json.Unmarshal(weekday, &a.Metrics.DayOfWeekSales); err != nil {
		return nil, fmt.Errorf("unmarshal day-of-week sales: %w", err)
	}
	return &a, nil
}
