package analysis

import (
	"testing"

	"salescope/internal/models"
)

func TestInferColumns_StandardHeader(t *testing.T) {
	cols := []string{"Sale_Date", "Product", "Qty", "Rate", "Revenue"}
	got := InferColumns(cols)

	want := models.RoleMap{
		Date:   "Sale_Date",
		Item:   "Product",
		Qty:    "Qty",
		Rate:   "Rate",
		Amount: "Revenue",
	}
	if got != want {
		t.Errorf("InferColumns() = %+v, want %+v", got, want)
	}
}

func TestInferColumns_Deterministic(t *testing.T) {
	cols := []string{"order_date", "item_name", "quantity", "unit_price", "total_amount"}
	first := InferColumns(cols)
	for i := 0; i < 5; i++ {
		if got := InferColumns(cols); got != first {
			t.Fatalf("InferColumns() not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestInferColumns_NoMatches(t *testing.T) {
	got := InferColumns([]string{"alpha", "beta", "gamma"})
	if got != (models.RoleMap{}) {
		t.Errorf("expected all roles unassigned, got %+v", got)
	}
}

func TestInferColumns_KeywordPriorityOverColumnOrder(t *testing.T) {
	// "datetime" appears before any "date" match in dataset order, but the
	// "date" keyword has higher priority and matches "datetime" by substring
	// containment anyway; with a column that only matches a later keyword the
	// earlier keyword still wins.
	got := InferColumns([]string{"timestamp", "created_date"})
	if got.Date != "created_date" {
		t.Errorf("date = %q, want created_date (keyword priority over column order)", got.Date)
	}
}

func TestInferColumns_FirstColumnWinsWithinKeyword(t *testing.T) {
	got := InferColumns([]string{"date_a", "date_b"})
	if got.Date != "date_a" {
		t.Errorf("date = %q, want date_a (first matching column in dataset order)", got.Date)
	}
}

func TestInferColumns_CrossRoleReuse(t *testing.T) {
	// A single column may be claimed by several roles: "total_price"
	// contains both "price" (rate) and "total" (amount). The source
	// heuristic does not enforce mutual exclusion and neither do we.
	got := InferColumns([]string{"order_date", "total_price"})
	if got.Rate != "total_price" {
		t.Errorf("rate = %q, want total_price", got.Rate)
	}
	if got.Amount != "total_price" {
		t.Errorf("amount = %q, want total_price", got.Amount)
	}
}

func TestInferColumns_CaseInsensitive(t *testing.T) {
	got := InferColumns([]string{"TRANSACTION_DATE", "PRODUCT_NAME", "QUANTITY", "UNIT_COST", "SALES_AMOUNT"})
	if got.Date != "TRANSACTION_DATE" || got.Amount != "SALES_AMOUNT" {
		t.Errorf("case-insensitive match failed: %+v", got)
	}
}
