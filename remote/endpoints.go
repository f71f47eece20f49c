package remote

// API endpoint paths, relative to the configured base URL.
const (
	endpointLogin        = "/auth/login"
	endpointTransactions = "/transactions"
	endpointMonthlyStats = "/statistics/monthly"
	endpointYearlyStats  = "/statistics/yearly"
	endpointRangeStats   = "/statistics/range"
	endpointCategories   = "/categories"
	endpointIncremental  = "/sync/incremental"
)

func endpointTransaction(id string) string {
	return endpointTransactions + "/" + id
}
