package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is one income/expense record of the ledger.
//
// Sync-state invariant: a record is either clean (no flags), pending
// (PendingSync), or tombstoned (Deleted + PendingSync). Deleted never appears
// without PendingSync: a deletion is itself a pending mutation until the
// server confirms it and the row is purged.
type Transaction struct {
	ID         string          `gorm:"primaryKey;size:64" json:"id"`
	Type       TransactionType `gorm:"size:16;not null" json:"type"`
	Amount     decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	CategoryId string          `gorm:"size:64;index" json:"categoryId"`
	Note       string          `gorm:"size:255" json:"note"`
	// Date is the transaction's effective calendar day, distinct from CreateTime.
	Date       time.Time `gorm:"index;not null" json:"date"`
	CreateTime time.Time `json:"createTime"`

	// PendingSync marks a local mutation not yet confirmed by the server.
	PendingSync bool `gorm:"column:pending_sync;index" json:"_pendingSync"`
	// Deleted is the tombstone flag. Tombstoned rows are invisible to readers
	// but stay in the store until the remote deletion is confirmed.
	Deleted bool `gorm:"column:deleted;index" json:"_deleted"`
	// RemoteConfirmed records whether the server has ever acknowledged this id.
	// It decides create-vs-update when pending records are replayed.
	RemoteConfirmed bool `gorm:"column:remote_confirmed" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// TransactionInput is the caller-supplied shape for create/update.
type TransactionInput struct {
	Type       TransactionType `json:"type" validate:"required,oneof=income expense"`
	// Amount must be >= 0; zero is a legal amount so the check is explicit
	// in Validate rather than a `required` tag.
	Amount     decimal.Decimal `json:"amount"`
	CategoryId string          `json:"categoryId" validate:"required"`
	Note       string          `json:"note" validate:"max=255"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
}

// ParsedDate returns the input's calendar day. Call after validation.
func (in TransactionInput) ParsedDate() (time.Time, error) {
	return time.Parse("2006-01-02", in.Date)
}

// TransactionPatch is a partial update; nil fields keep their stored value.
type TransactionPatch struct {
	Type       *TransactionType `json:"type,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	CategoryId *string          `json:"categoryId,omitempty"`
	Note       *string          `json:"note,omitempty"`
	Date       *string          `json:"date,omitempty"`
}

// Apply returns a copy of t with the patch's non-nil fields applied. The
// parsed date is trusted; validate the patch first.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.CategoryId != nil {
		t.CategoryId = *p.CategoryId
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	if p.Date != nil {
		if d, err := time.Parse("2006-01-02", *p.Date); err == nil {
			t.Date = d
		}
	}
	return t
}

