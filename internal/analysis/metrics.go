package analysis

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"salescope/internal/models"
)

const topItemLimit = 10

var (
	// ErrMissingRequiredColumns means the date or amount role is unassigned;
	// these two are mandatory, all others are optional.
	ErrMissingRequiredColumns = errors.New("required date and amount columns not detected")

	// ErrNoValidRows means coercion and the joint date+amount filter left
	// nothing to aggregate.
	ErrNoValidRows = errors.New("no valid rows after cleaning")

	// ErrUnparseableDates is the sub-case of ErrNoValidRows where not a
	// single date cell parsed.
	ErrUnparseableDates = fmt.Errorf("%w: no parseable dates", ErrNoValidRows)
)

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// mondayIndex maps time.Weekday (Sunday=0) onto Monday=0..Sunday=6.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// cleanedRow is a dataset row that survived date+amount coercion.
type cleanedRow struct {
	day     time.Time // calendar date, UTC midnight
	amount  float64
	item    string
	qty     float64
	hasQty  bool
	rate    float64
	hasRate bool
}

// Compute derives the full metrics bundle from a dataset and a role map.
// The anchor is the reference instant for all recent-window calculations;
// callers evaluate it once (date precision) and pass it in so results are
// reproducible. The dataset is not retained after the call returns.
func Compute(ds *models.Dataset, roles models.RoleMap, anchor time.Time) (*models.MetricsRecord, error) {
	if !roles.HasRequired() {
		return nil, ErrMissingRequiredColumns
	}
	dateIdx := ds.ColumnIndex(roles.Date)
	amountIdx := ds.ColumnIndex(roles.Amount)
	if dateIdx < 0 || amountIdx < 0 {
		return nil, ErrMissingRequiredColumns
	}
	itemIdx := -1
	if roles.Item != "" {
		itemIdx = ds.ColumnIndex(roles.Item)
	}
	qtyIdx := -1
	if roles.Qty != "" {
		qtyIdx = ds.ColumnIndex(roles.Qty)
	}
	rateIdx := -1
	if roles.Rate != "" {
		rateIdx = ds.ColumnIndex(roles.Rate)
	}

	cleaned := make([]cleanedRow, 0, len(ds.Rows))
	validDates := 0
	for i := range ds.Rows {
		d, dateOK := parseDate(ds.Cell(i, dateIdx))
		if dateOK {
			validDates++
		}
		amt, amtOK := parseNumber(ds.Cell(i, amountIdx))
		if !dateOK || !amtOK {
			continue
		}
		row := cleanedRow{day: dateOnly(d), amount: amt}
		if itemIdx >= 0 {
			row.item = ds.Cell(i, itemIdx).Text()
		}
		if qtyIdx >= 0 {
			// qty failures do not drop the row, the field is just unavailable.
			row.qty, row.hasQty = parseNumber(ds.Cell(i, qtyIdx))
		}
		if rateIdx >= 0 {
			row.rate, row.hasRate = parseNumber(ds.Cell(i, rateIdx))
		}
		cleaned = append(cleaned, row)
	}

	if len(cleaned) == 0 {
		if validDates == 0 {
			return nil, ErrUnparseableDates
		}
		return nil, ErrNoValidRows
	}

	anchorDay := dateOnly(anchor)
	last7Start := anchorDay.AddDate(0, 0, -7)
	last30Start := anchorDay.AddDate(0, 0, -30)
	prev7Start := anchorDay.AddDate(0, 0, -14)
	prev30Start := anchorDay.AddDate(0, 0, -60)

	inWindow := func(day, start time.Time) bool {
		return !day.Before(start) && !day.After(anchorDay)
	}

	var (
		total, last7, last30, prev7, prev30 float64
		last7Days                           = map[time.Time]struct{}{}
		last30Days                          = map[time.Time]struct{}{}
		itemSums                            = map[string]float64{}
		itemOrder                           []string
		monthSums                           = map[string]float64{}
		dailySums                           = map[string]float64{}
		weekdaySums                         [7]float64
		qtySum                              float64
		qtySeen                             bool
	)

	for _, row := range cleaned {
		total += row.amount
		weekdaySums[mondayIndex(row.day.Weekday())] += row.amount
		monthSums[row.day.Format("2006-01")] += row.amount

		if inWindow(row.day, last7Start) {
			last7 += row.amount
			last7Days[row.day] = struct{}{}
		} else if inWindow(row.day, prev7Start) {
			prev7 += row.amount
		}
		if inWindow(row.day, last30Start) {
			last30 += row.amount
			last30Days[row.day] = struct{}{}
			dailySums[row.day.Format("2006-01-02")] += row.amount
		} else if inWindow(row.day, prev30Start) {
			prev30 += row.amount
		}

		if itemIdx >= 0 && row.item != "" {
			if _, seen := itemSums[row.item]; !seen {
				itemOrder = append(itemOrder, row.item)
			}
			itemSums[row.item] += row.amount
		}
		if row.hasQty {
			qtySum += row.qty
			qtySeen = true
		}
	}

	rec := &models.MetricsRecord{
		TotalSales:          round2(total),
		Last7DaysSales:      round2(last7),
		Last30DaysSales:     round2(last30),
		AvgSalesPerDayWeek:  round2(safeDiv(last7, float64(len(last7Days)))),
		AvgSalesPerDayMonth: round2(safeDiv(last30, float64(len(last30Days)))),
		GrowthRateWeek:      round2(growthRate(last7, prev7)),
		GrowthRateMonth:     round2(growthRate(last30, prev30)),
		AvgTransactionValue: round2(safeDiv(total, float64(len(cleaned)))),
		TotalRecords:        len(cleaned),
		PeakDay:             peakDay(weekdaySums),
		TopItems:            topItems(itemSums, itemOrder),
		MonthlySales:        sortedMonths(monthSums),
		DailySales:          sortedDays(dailySums),
		DayOfWeekSales:      weekdayBreakdown(weekdaySums),
	}
	if qtySeen {
		q := round2(qtySum)
		rec.TotalQuantity = &q
	}
	return rec, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// growthRate is 0 when the previous window is empty; it never yields an
// infinite or undefined value.
func growthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// peakDay picks the weekday with the highest total, ties going to the
// earliest day in Monday..Sunday order.
func peakDay(sums [7]float64) string {
	best := 0
	for i := 1; i < 7; i++ {
		if sums[i] > sums[best] {
			best = i
		}
	}
	return weekdayNames[best]
}

// topItems sorts descending by summed amount, ties keeping first-encountered
// group order, and truncates to the top 10.
func topItems(sums map[string]float64, order []string) []models.ItemSales {
	out := make([]models.ItemSales, 0, len(order))
	for _, item := range order {
		out = append(out, models.ItemSales{Item: item, Sales: sums[item]})
	}
	slices.SortStableFunc(out, func(a, b models.ItemSales) int {
		if a.Sales > b.Sales {
			return -1
		}
		if a.Sales < b.Sales {
			return 1
		}
		return 0
	})
	if len(out) > topItemLimit {
		out = out[:topItemLimit]
	}
	for i := range out {
		out[i].Sales = round2(out[i].Sales)
	}
	return out
}

func sortedMonths(sums map[string]float64) []models.MonthSales {
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]models.MonthSales, len(keys))
	for i, k := range keys {
		out[i] = models.MonthSales{Month: k, Sales: round2(sums[k])}
	}
	return out
}

func sortedDays(sums map[string]float64) []models.DaySales {
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]models.DaySales, len(keys))
	for i, k := range keys {
		out[i] = models.DaySales{Date: k, Sales: round2(sums[k])}
	}
	return out
}

// weekdayBreakdown always emits all seven entries in Monday..Sunday order,
// zero for days with no rows.
func weekdayBreakdown(sums [7]float64) []models.WeekdaySales {
	out := make([]models.WeekdaySales, 7)
	for i := range sums {
		out[i] = models.WeekdaySales{Day: weekdayNames[i], Sales: round2(sums[i])}
	}
	return out
}
