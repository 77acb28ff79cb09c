// Package analysis holds the column-inference and metrics-computation
// engine. It is pure: no I/O, no clocks, no retained references to the
// dataset, and safe for concurrent independent calls.
package analysis

import (
	"strings"

	"salescope/internal/models"
)

// Keyword lists per role, in priority order. Matching is case-insensitive
// substring containment against the column name.
var (
	dateKeywords   = []string{"date", "datetime", "order_date", "sale_date", "transaction_date", "time"}
	itemKeywords   = []string{"item", "product", "name", "item_name", "product_name", "description"}
	qtyKeywords    = []string{"qty", "quantity", "units", "count", "qty_sold"}
	rateKeywords   = []string{"rate", "price", "unit_price", "cost", "unit_cost"}
	amountKeywords = []string{"amount", "total", "sales", "revenue", "value", "total_amount", "sales_amount"}
)

// InferColumns maps each semantic role to at most one column. For a role,
// the first keyword that matches any column wins, and within that keyword
// the first matching column in dataset order is taken. A column claimed by
// one role stays eligible for later roles; roles with no match stay
// unassigned. Never fails.
func InferColumns(columns []string) models.RoleMap {
	lower := make([]string, len(columns))
	for i, c := range columns {
		lower[i] = strings.ToLower(c)
	}

	pick := func(keywords []string) string {
		for _, kw := range keywords {
			for i, low := range lower {
				if strings.Contains(low, kw) {
					return columns[i]
				}
			}
		}
		return ""
	}

	return models.RoleMap{
		Date:   pick(dateKeywords),
		Item:   pick(itemKeywords),
		Qty:    pick(qtyKeywords),
		Rate:   pick(rateKeywords),
		Amount: pick(amountKeywords),
	}
}
