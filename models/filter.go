package models

import "time"

// ListFilter selects a page of transactions, optionally bounded to a date
// range. Both range ends are inclusive.
type ListFilter struct {
	Page     int
	PageSize int
	Start    *time.Time
	End      *time.Time
}

const DefaultPageSize = 10

func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	return f
}

// Matches reports whether t falls inside the filter's date range.
func (f ListFilter) Matches(t Transaction) bool {
	if f.Start != nil && t.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && t.Date.After(*f.End) {
		return false
	}
	return true
}

// TransactionPage is the list result shape: one page of live records plus the
// total count of records matching the filter.
type TransactionPage struct {
	Items []Transaction `json:"items"`
	Total int           `json:"total"`
}
