package models

import "time"

type ItemSales struct {
	Item  string  `json:"item"`
	Sales float64 `json:"sales"`
}

type MonthSales struct {
	Month string  `json:"month"` // "2006-01"
	Sales float64 `json:"sales"`
}

type DaySales struct {
	Date  string  `json:"date"` // "2006-01-02"
	Sales float64 `json:"sales"`
}

type WeekdaySales struct {
	Day   string  `json:"day"` // "Monday" ... "Sunday"
	Sales float64 `json:"sales"`
}

// MetricsRecord is the computed output of one analysis. All monetary values
// are rounded to two decimals; breakdown lists are deterministically sorted.
type MetricsRecord struct {
	TotalSales          float64  `json:"total_sales"`
	Last7DaysSales      float64  `json:"last_7_days_sales"`
	Last30DaysSales     float64  `json:"last_30_days_sales"`
	AvgSalesPerDayWeek  float64  `json:"avg_sales_per_day_week"`
	AvgSalesPerDayMonth float64  `json:"avg_sales_per_day_month"`
	GrowthRateWeek      float64  `json:"growth_rate_week"`
	GrowthRateMonth     float64  `json:"growth_rate_month"`
	AvgTransactionValue float64  `json:"avg_transaction_value"`
	TotalQuantity       *float64 `json:"total_quantity,omitempty"` // nil when no qty column or no parsable values
	TotalRecords        int      `json:"total_records"`
	PeakDay             string   `json:"peak_day"`

	TopItems       []ItemSales    `json:"top_items"`
	MonthlySales   []MonthSales   `json:"monthly_sales"`
	DailySales     []DaySales     `json:"daily_sales"`
	DayOfWeekSales []WeekdaySales `json:"day_of_week_sales"`
}

// Analysis is a persisted metrics record together with its upload context.
type Analysis struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Filename  string        `json:"filename"`
	Columns   RoleMap       `json:"columns"`
	Metrics   MetricsRecord `json:"metrics"`
	CreatedAt time.Time     `json:"created_at"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
