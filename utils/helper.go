package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/freedaysapp/ledger_client/appctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// NewLocalID builds a temporary id for records created while offline. The
// millisecond prefix keeps ids roughly ordered; the uuid suffix avoids
// collisions across rapid calls.
func NewLocalID() string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), strings.Split(uuid.NewString(), "-")[0])
}

// ParseDate parses a calendar date (no time component).
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatAmount renders an amount for display with two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// MonthRange returns the first and last day of a month, both inclusive.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// YearRange returns Jan 1 and Dec 31 of a year, both inclusive.
func YearRange(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func SetCorrelationIdInContext(ctx context.Context, id string) context.Context {
	return appctx.Set(ctx, appctx.ContextKeyCorrelationId, id)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, appctx.ContextKeyCorrelationId)
}

func CorrelationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
