package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/freedaysapp/ledger_client/models"
)

func seed(t *testing.T, fx fixture, typ models.TransactionType, amount, category, date string) {
	t.Helper()
	in := input(amount, category, date)
	in.Type = typ
	if _, err := fx.gateway.CreateTransaction(context.Background(), in); err != nil {
		t.Fatalf("seed %s %s: %v", category, date, err)
	}
}

func TestMonthlyStats_BoundariesInclusive(t *testing.T) {
	fx := newFixture(t, false)
	ctx := context.Background()

	// first and last day of March, plus neighbors just outside
	seed(t, fx, models.TransactionTypeExpense, "10.00", "food", "2025-02-28")
	seed(t, fx, models.TransactionTypeExpense, "20.00", "food", "2025-03-01")
	seed(t, fx, models.TransactionTypeExpense, "30.00", "food", "2025-03-31")
	seed(t, fx, models.TransactionTypeExpense, "40.00", "food", "2025-04-01")
	seed(t, fx, models.TransactionTypeIncome, "100.00", "salary", "2025-03-15")

	stats, err := fx.gateway.GetMonthlyStats(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("monthly stats: %v", err)
	}
	if stats.Summary.Expense != "50.00" {
		t.Fatalf("expense: got %s want 50.00", stats.Summary.Expense)
	}
	if stats.Summary.Income != "100.00" {
		t.Fatalf("income: got %s want 100.00", stats.Summary.Income)
	}
	if stats.Summary.Balance != "50.00" {
		t.Fatalf("balance: got %s want 50.00", stats.Summary.Balance)
	}
}

func TestMonthlyStats_InvalidMonth(t *testing.T) {
	fx := newFixture(t, false)
	if _, err := fx.gateway.GetMonthlyStats(context.Background(), 2025, 13); err == nil {
		t.Fatal("month 13 must be rejected")
	}
	if _, err := fx.gateway.GetMonthlyStats(context.Background(), 2025, 0); err == nil {
		t.Fatal("month 0 must be rejected")
	}
}

func TestYearlyStats_EmptyMonthsGetZeroRows(t *testing.T) {
	fx := newFixture(t, false)
	ctx := context.Background()

	seed(t, fx, models.TransactionTypeIncome, "100.00", "salary", "2025-01-10")
	seed(t, fx, models.TransactionTypeExpense, "25.50", "food", "2025-06-15")

	stats, err := fx.gateway.GetYearlyStats(ctx, 2025)
	if err != nil {
		t.Fatalf("yearly stats: %v", err)
	}
	if len(stats.Months) != 12 {
		t.Fatalf("expected 12 month rows, got %d", len(stats.Months))
	}
	if stats.Months[0].Summary.Income != "100.00" {
		t.Fatalf("january income: got %s", stats.Months[0].Summary.Income)
	}
	if stats.Months[5].Summary.Expense != "25.50" {
		t.Fatalf("june expense: got %s", stats.Months[5].Summary.Expense)
	}
	for m := range stats.Months {
		if m == 0 || m == 5 {
			continue
		}
		if s := stats.Months[m].Summary; s.Income != "0.00" || s.Expense != "0.00" {
			t.Fatalf("month %d should be zero, got %+v", m+1, s)
		}
	}
	if stats.Summary.Balance != "74.50" {
		t.Fatalf("year balance: got %s want 74.50", stats.Summary.Balance)
	}
}

func TestRangeStats_GroupByTypeOrderAndTotals(t *testing.T) {
	fx := newFixture(t, false)
	ctx := context.Background()

	seed(t, fx, models.TransactionTypeExpense, "25.50", "food", "2025-03-01")
	seed(t, fx, models.TransactionTypeExpense, "15.00", "transport", "2025-03-02")
	seed(t, fx, models.TransactionTypeIncome, "5000.00", "salary", "2025-03-03")

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	stats, err := fx.gateway.GetRangeStats(ctx, start, end, models.GroupByType)
	if err != nil {
		t.Fatalf("range stats: %v", err)
	}
	if len(stats.Groups) != 2 {
		t.Fatalf("expected 2 type groups, got %d", len(stats.Groups))
	}
	if stats.Groups[0].Key != "income" || stats.Groups[1].Key != "expense" {
		t.Fatalf("type group order: %s, %s", stats.Groups[0].Key, stats.Groups[1].Key)
	}
	if stats.Groups[0].Summary.Income != "5000.00" {
		t.Fatalf("income group: got %s", stats.Groups[0].Summary.Income)
	}
	if stats.Groups[1].Summary.Expense != "40.50" {
		t.Fatalf("expense group: got %s", stats.Groups[1].Summary.Expense)
	}
	if stats.Summary.Balance != "4959.50" {
		t.Fatalf("range balance: got %s", stats.Summary.Balance)
	}
}

func TestRangeStats_GroupByCategoryAndMonth(t *testing.T) {
	fx := newFixture(t, false)
	ctx := context.Background()

	seed(t, fx, models.TransactionTypeExpense, "10.00", "food", "2025-03-01")
	seed(t, fx, models.TransactionTypeExpense, "20.00", "food", "2025-04-01")
	seed(t, fx, models.TransactionTypeExpense, "5.00", "transport", "2025-03-15")

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	byCat, err := fx.gateway.GetRangeStats(ctx, start, end, models.GroupByCategory)
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(byCat.Groups) != 2 || byCat.Groups[0].Key != "food" || byCat.Groups[1].Key != "transport" {
		t.Fatalf("category groups: %+v", byCat.Groups)
	}
	if byCat.Groups[0].Summary.Expense != "30.00" {
		t.Fatalf("food total: got %s", byCat.Groups[0].Summary.Expense)
	}

	byMonth, err := fx.gateway.GetRangeStats(ctx, start, end, models.GroupByMonth)
	if err != nil {
		t.Fatalf("by month: %v", err)
	}
	if len(byMonth.Groups) != 2 || byMonth.Groups[0].Key != "2025-03" || byMonth.Groups[1].Key != "2025-04" {
		t.Fatalf("month groups: %+v", byMonth.Groups)
	}
	if byMonth.Groups[0].Summary.Expense != "15.00" {
		t.Fatalf("march total: got %s", byMonth.Groups[0].Summary.Expense)
	}
}

func TestRangeStats_Validation(t *testing.T) {
	fx := newFixture(t, false)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := fx.gateway.GetRangeStats(ctx, end, start, "week"); err == nil {
		t.Fatal("unknown groupBy must be rejected")
	}
	if _, err := fx.gateway.GetRangeStats(ctx, start, end, models.GroupByType); err == nil {
		t.Fatal("end before start must be rejected")
	}
}

func TestStats_TombstonesExcluded(t *testing.T) {
	fx := newFixture(t, false)
	ctx := context.Background()

	seed(t, fx, models.TransactionTypeExpense, "10.00", "food", "2025-03-01")
	seed(t, fx, models.TransactionTypeExpense, "20.00", "food", "2025-03-02")

	page, _ := fx.gateway.ListTransactions(ctx, models.ListFilter{})
	if err := fx.gateway.DeleteTransaction(ctx, page.Items[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	stats, err := fx.gateway.GetMonthlyStats(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("monthly stats: %v", err)
	}
	if stats.Summary.Expense != "10.00" {
		t.Fatalf("tombstone leaked into totals: got %s want 10.00", stats.Summary.Expense)
	}
}
