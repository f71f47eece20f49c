package gateway

import (
	"context"
	"sort"
	"time"

	"github.com/freedaysapp/ledger_client/models"
	"github.com/freedaysapp/ledger_client/utils"
	"github.com/shopspring/decimal"
)

// GetMonthlyStats aggregates one calendar month. The local fallback must
// reproduce the server's grouping exactly: inclusive on both month boundaries,
// so records on the last and first day of adjacent months never cross over.
func (g *Gateway) GetMonthlyStats(ctx context.Context, year int, month int) (models.MonthlyStats, error) {
	if month < 1 || month > 12 {
		return models.MonthlyStats{}, &utils.ValidationError{Field: "month", Message: "must be 1..12"}
	}

	if g.session.IsOnline() {
		if stats, err := g.remote.MonthlyStats(ctx, year, month); err == nil {
			return stats, nil
		}
	}

	start, end := utils.MonthRange(year, time.Month(month))
	income, expense, err := g.localTotals(start, end)
	if err != nil {
		return models.MonthlyStats{}, err
	}
	return models.MonthlyStats{Year: year, Month: month, Summary: summaryFrom(income, expense)}, nil
}

// GetYearlyStats aggregates a full year with a per-month breakdown. Empty
// months still get a zero row.
func (g *Gateway) GetYearlyStats(ctx context.Context, year int) (models.YearlyStats, error) {
	if g.session.IsOnline() {
		if stats, err := g.remote.YearlyStats(ctx, year); err == nil {
			return stats, nil
		}
	}

	recs, err := g.localRange(utils.YearRange(year))
	if err != nil {
		return models.YearlyStats{}, err
	}

	type pair struct{ income, expense decimal.Decimal }
	months := make([]pair, 13)
	var yearTotal pair
	for _, rec := range recs {
		m := int(rec.Date.Month())
		if rec.Type == models.TransactionTypeIncome {
			months[m].income = months[m].income.Add(rec.Amount)
			yearTotal.income = yearTotal.income.Add(rec.Amount)
		} else {
			months[m].expense = months[m].expense.Add(rec.Amount)
			yearTotal.expense = yearTotal.expense.Add(rec.Amount)
		}
	}

	out := models.YearlyStats{Year: year, Summary: summaryFrom(yearTotal.income, yearTotal.expense)}
	for m := 1; m <= 12; m++ {
		out.Months = append(out.Months, models.MonthStat{
			Month:   m,
			Summary: summaryFrom(months[m].income, months[m].expense),
		})
	}
	return out, nil
}

// GetRangeStats aggregates an inclusive date range grouped by type, category
// or month.
func (g *Gateway) GetRangeStats(ctx context.Context, start, end time.Time, groupBy models.GroupBy) (models.RangeStats, error) {
	if !groupBy.Valid() {
		return models.RangeStats{}, &utils.ValidationError{Field: "groupBy", Message: "must be type, category or month"}
	}
	if end.Before(start) {
		return models.RangeStats{}, &utils.ValidationError{Field: "dateRange", Message: "end before start"}
	}

	if g.session.IsOnline() {
		if stats, err := g.remote.RangeStats(ctx, start, end, groupBy); err == nil {
			return stats, nil
		}
	}

	recs, err := g.localRange(start, end)
	if err != nil {
		return models.RangeStats{}, err
	}

	type pair struct{ income, expense decimal.Decimal }
	groups := map[string]*pair{}
	var total pair
	for _, rec := range recs {
		var key string
		switch groupBy {
		case models.GroupByType:
			key = string(rec.Type)
		case models.GroupByCategory:
			key = rec.CategoryId
		case models.GroupByMonth:
			key = rec.Date.Format("2006-01")
		}
		bucket := groups[key]
		if bucket == nil {
			bucket = &pair{}
			groups[key] = bucket
		}
		if rec.Type == models.TransactionTypeIncome {
			bucket.income = bucket.income.Add(rec.Amount)
			total.income = total.income.Add(rec.Amount)
		} else {
			bucket.expense = bucket.expense.Add(rec.Amount)
			total.expense = total.expense.Add(rec.Amount)
		}
	}

	out := models.RangeStats{
		Start:   utils.FormatDate(start),
		End:     utils.FormatDate(end),
		GroupBy: groupBy,
		Summary: summaryFrom(total.income, total.expense),
	}
	for _, key := range sortedGroupKeys(groups, groupBy) {
		bucket := groups[key]
		out.Groups = append(out.Groups, models.StatsGroup{
			Key:     key,
			Summary: summaryFrom(bucket.income, bucket.expense),
		})
	}
	return out, nil
}

// sortedGroupKeys fixes group order: income before expense for the type axis,
// ascending keys otherwise.
func sortedGroupKeys[V any](groups map[string]V, groupBy models.GroupBy) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	if groupBy == models.GroupByType {
		sort.Slice(keys, func(i, j int) bool {
			return keys[i] == string(models.TransactionTypeIncome) && keys[j] != string(models.TransactionTypeIncome)
		})
		return keys
	}
	sort.Strings(keys)
	return keys
}

func (g *Gateway) localRange(start, end time.Time) ([]models.Transaction, error) {
	recs, err := g.local.List()
	if err != nil {
		return nil, err
	}
	out := recs[:0]
	for _, rec := range recs {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (g *Gateway) localTotals(start, end time.Time) (income, expense decimal.Decimal, err error) {
	recs, err := g.localRange(start, end)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	for _, rec := range recs {
		if rec.Type == models.TransactionTypeIncome {
			income = income.Add(rec.Amount)
		} else {
			expense = expense.Add(rec.Amount)
		}
	}
	return income, expense, nil
}

func summaryFrom(income, expense decimal.Decimal) models.StatsSummary {
	return models.StatsSummary{
		Income:  utils.FormatAmount(income),
		Expense: utils.FormatAmount(expense),
		Balance: utils.FormatAmount(income.Sub(expense)),
	}
}
