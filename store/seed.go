package store

import (
	"time"

	"github.com/freedaysapp/ledger_client/models"
	"github.com/freedaysapp/ledger_client/utils"
	"github.com/shopspring/decimal"
)

// SeedSampleData inserts the starter records a fresh install shows, so the
// first screen is not empty. No-op when the ledger already has rows
// (tombstones count: a purged-then-reseeded ledger would resurrect data).
func (s *LocalStore) SeedSampleData() (int, error) {
	var count int64
	if err := s.db.Model(&models.Transaction{}).Count(&count).Error; err != nil {
		return 0, &utils.LocalStoreError{Op: "seed", Err: err}
	}
	if count > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	samples := []models.Transaction{
		{
			ID:         utils.NewLocalID(),
			Type:       models.TransactionTypeExpense,
			Amount:     decimal.RequireFromString("25.50"),
			CategoryId: "food",
			Note:       "Breakfast",
			Date:       today,
			CreateTime: now,
		},
		{
			ID:         utils.NewLocalID(),
			Type:       models.TransactionTypeIncome,
			Amount:     decimal.NewFromInt(5000),
			CategoryId: "salary",
			Note:       "Salary",
			Date:       today,
			CreateTime: now,
		},
		{
			ID:         utils.NewLocalID(),
			Type:       models.TransactionTypeExpense,
			Amount:     decimal.RequireFromString("15.00"),
			CategoryId: "transport",
			Note:       "Metro",
			Date:       yesterday,
			CreateTime: now,
		},
	}

	for _, rec := range samples {
		if err := s.Upsert(rec); err != nil {
			return 0, err
		}
	}
	return len(samples), nil
}
