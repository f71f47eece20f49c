package store

import (
	"errors"
	"sync"
	"time"

	"github.com/freedaysapp/ledger_client/models"
	"github.com/freedaysapp/ledger_client/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LocalStore is the durable client-side copy of the ledger. It holds the
// transaction collection (including tombstones) plus the settings rows that
// make up the rest of the durable footprint (token, online flag, watermark).
//
// Mutations are serialized with a mutex: gorm handles are safe for concurrent
// use, but multi-statement operations here must not interleave.
type LocalStore struct {
	db     *gorm.DB
	logger *logrus.Logger
	mu     sync.Mutex
}

func New(db *gorm.DB, logger *logrus.Logger) (*LocalStore, error) {
	if err := db.AutoMigrate(&models.Transaction{}, &Setting{}); err != nil {
		return nil, &utils.LocalStoreError{Op: "migrate", Err: err}
	}
	return &LocalStore{db: db, logger: logger}, nil
}

// Patch is a partial update. Nil fields are left untouched, which is what
// preserves flags set by other write paths when two paths race on a record.
type Patch struct {
	Type            *models.TransactionType
	Amount          *decimal.Decimal
	CategoryId      *string
	Note            *string
	Date            *time.Time
	CreateTime      *time.Time
	PendingSync     *bool
	Deleted         *bool
	RemoteConfirmed *bool
}

func (p Patch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Type != nil {
		cols["type"] = *p.Type
	}
	if p.Amount != nil {
		cols["amount"] = *p.Amount
	}
	if p.CategoryId != nil {
		cols["category_id"] = *p.CategoryId
	}
	if p.Note != nil {
		cols["note"] = *p.Note
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.CreateTime != nil {
		cols["create_time"] = *p.CreateTime
	}
	if p.PendingSync != nil {
		cols["pending_sync"] = *p.PendingSync
	}
	if p.Deleted != nil {
		cols["deleted"] = *p.Deleted
	}
	if p.RemoteConfirmed != nil {
		cols["remote_confirmed"] = *p.RemoteConfirmed
	}
	return cols
}

// List returns all live records in storage order. Tombstoned rows never leave
// this method; ordering beyond insertion order is the caller's concern.
func (s *LocalStore) List() ([]models.Transaction, error) {
	var recs []models.Transaction
	err := s.db.Where("deleted = ?", false).Order("rowid").Find(&recs).Error
	if err != nil {
		return nil, &utils.LocalStoreError{Op: "list", Err: err}
	}
	return recs, nil
}

// ListPending returns every record awaiting sync, tombstones included, in
// storage order.
func (s *LocalStore) ListPending() ([]models.Transaction, error) {
	var recs []models.Transaction
	err := s.db.Where("pending_sync = ?", true).Order("rowid").Find(&recs).Error
	if err != nil {
		return nil, &utils.LocalStoreError{Op: "listPending", Err: err}
	}
	return recs, nil
}

// Get returns a live record by id. Tombstoned records read as not found.
func (s *LocalStore) Get(id string) (*models.Transaction, error) {
	rec, err := s.getAny(id)
	if err != nil {
		return nil, err
	}
	if rec.Deleted {
		return nil, utils.ErrorRecordNotFound
	}
	return rec, nil
}

// GetIncludingDeleted returns a record by id regardless of tombstone state.
// Used by the reconciler and by merge paths that must see flags.
func (s *LocalStore) GetIncludingDeleted(id string) (*models.Transaction, error) {
	return s.getAny(id)
}

func (s *LocalStore) getAny(id string) (*models.Transaction, error) {
	var rec models.Transaction
	err := s.db.Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, &utils.LocalStoreError{Op: "get", Err: err}
	}
	return &rec, nil
}

// Upsert inserts rec if its id is unseen, otherwise replaces the stored row.
// Callers that must preserve existing fields use Merge instead.
func (s *LocalStore) Upsert(rec models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("id = ?", rec.ID).Count(&count).Error; err != nil {
		return &utils.LocalStoreError{Op: "upsert", Err: err}
	}
	if count == 0 {
		if err := s.db.Create(&rec).Error; err != nil {
			return &utils.LocalStoreError{Op: "upsert", Err: err}
		}
		return nil
	}
	// Full-row update keeps the rowid, so storage order is stable across edits.
	err := s.db.Model(&models.Transaction{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
		"type":             rec.Type,
		"amount":           rec.Amount,
		"category_id":      rec.CategoryId,
		"note":             rec.Note,
		"date":             rec.Date,
		"create_time":      rec.CreateTime,
		"pending_sync":     rec.PendingSync,
		"deleted":          rec.Deleted,
		"remote_confirmed": rec.RemoteConfirmed,
	}).Error
	if err != nil {
		return &utils.LocalStoreError{Op: "upsert", Err: err}
	}
	return nil
}

// Merge shallow-merges the patch onto the stored record.
func (s *LocalStore) Merge(id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols := p.columns()
	if len(cols) == 0 {
		return nil
	}
	res := s.db.Model(&models.Transaction{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return &utils.LocalStoreError{Op: "merge", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// SoftDelete tombstones a record: deleted + pending in one write. Missing ids
// are a no-op, matching delete-of-already-gone semantics.
func (s *LocalStore) SoftDelete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Model(&models.Transaction{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted":      true,
		"pending_sync": true,
	}).Error
	if err != nil {
		return &utils.LocalStoreError{Op: "softDelete", Err: err}
	}
	return nil
}

// Purge physically removes a record. Only the reconciler calls this, after the
// server has confirmed the deletion (or replaced the record under a new id).
func (s *LocalStore) Purge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Where("id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
		return &utils.LocalStoreError{Op: "purge", Err: err}
	}
	return nil
}

func (s *LocalStore) MarkPending(id string) error {
	return s.setPending(id, true)
}

func (s *LocalStore) ClearPending(id string) error {
	return s.setPending(id, false)
}

func (s *LocalStore) setPending(id string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Model(&models.Transaction{}).Where("id = ?", id).
		Update("pending_sync", v).Error
	if err != nil {
		return &utils.LocalStoreError{Op: "setPending", Err: err}
	}
	return nil
}
