package models

// GroupBy selects the grouping axis for range statistics.
type GroupBy string

const (
	GroupByType     GroupBy = "type"
	GroupByCategory GroupBy = "category"
	GroupByMonth    GroupBy = "month"
)

func (g GroupBy) Valid() bool {
	return g == GroupByType || g == GroupByCategory || g == GroupByMonth
}

// StatsSummary carries aggregated amounts as two-decimal strings, ready for
// display. Balance is income minus expense.
type StatsSummary struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

// MonthlyStats is the result of the monthly aggregation.
type MonthlyStats struct {
	Year    int          `json:"year"`
	Month   int          `json:"month"`
	Summary StatsSummary `json:"summary"`
}

// YearlyStats breaks a year down by month. Months with no records still get a
// zero row so chart rendering stays simple.
type YearlyStats struct {
	Year    int          `json:"year"`
	Summary StatsSummary `json:"summary"`
	Months  []MonthStat  `json:"months"`
}

type MonthStat struct {
	Month   int          `json:"month"`
	Summary StatsSummary `json:"summary"`
}

// RangeStats is a grouped aggregation over an inclusive date range.
type RangeStats struct {
	Start   string       `json:"startDate"`
	End     string       `json:"endDate"`
	GroupBy GroupBy      `json:"groupBy"`
	Summary StatsSummary `json:"summary"`
	Groups  []StatsGroup `json:"groups"`
}

// StatsGroup is one bucket of a grouped aggregation. Key is the group value:
// a transaction type, a category id, or a YYYY-MM month.
type StatsGroup struct {
	Key     string       `json:"key"`
	Summary StatsSummary `json:"summary"`
}
