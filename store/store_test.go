package store

import (
	"errors"
	"testing"
	"time"

	"github.com/freedaysapp/ledger_client/config"
	"github.com/freedaysapp/ledger_client/models"
	"github.com/freedaysapp/ledger_client/utils"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	db, err := config.OpenMemoryDatabase()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	s, err := New(db, config.GetLogger())
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}

func testRecord(id string, date time.Time) models.Transaction {
	return models.Transaction{
		ID:         id,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.RequireFromString("25.50"),
		CategoryId: "food",
		Date:       date,
		CreateTime: time.Now().UTC(),
	}
}

func TestUpsert_InsertThenReplace(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := s.Upsert(testRecord("a", day)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	rec := testRecord("a", day)
	rec.Note = "edited"
	if err := s.Upsert(rec); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Note != "edited" {
		t.Fatalf("expected replaced note, got %q", got.Note)
	}
	recs, _ := s.List()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record after replace, got %d", len(recs))
	}
}

func TestMerge_PreservesUnpatchedFields(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Upsert(testRecord("a", day)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	note := "only the note"
	if err := s.Merge("a", Patch{Note: &note}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Note != note {
		t.Fatalf("note not merged: %q", got.Note)
	}
	if !got.Amount.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("amount clobbered: %s", got.Amount)
	}
	if got.CategoryId != "food" {
		t.Fatalf("category clobbered: %q", got.CategoryId)
	}
}

func TestMerge_MissingRecord(t *testing.T) {
	s := newTestStore(t)
	note := "x"
	err := s.Merge("nope", Patch{Note: &note})
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestSoftDelete_TombstoneInvisibleButRetained(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Upsert(testRecord("a", day)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.SoftDelete("a"); err != nil {
		t.Fatalf("softDelete: %v", err)
	}

	if recs, _ := s.List(); len(recs) != 0 {
		t.Fatalf("tombstoned record leaked into List: %d", len(recs))
	}
	if _, err := s.Get("a"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("Get should treat tombstone as not found, got %v", err)
	}

	rec, err := s.GetIncludingDeleted("a")
	if err != nil {
		t.Fatalf("tombstone must survive until purge: %v", err)
	}
	if !rec.Deleted || !rec.PendingSync {
		t.Fatalf("tombstone must be deleted+pending, got deleted=%v pending=%v", rec.Deleted, rec.PendingSync)
	}

	// missing id is a no-op, not an error
	if err := s.SoftDelete("ghost"); err != nil {
		t.Fatalf("softDelete of missing id: %v", err)
	}
}

func TestPurge_RemovesRow(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Upsert(testRecord("a", day)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Purge("a"); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if _, err := s.GetIncludingDeleted("a"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected purge to remove row, got %v", err)
	}
}

func TestPendingFlagToggles(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Upsert(testRecord("a", day)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.MarkPending("a"); err != nil {
		t.Fatalf("markPending: %v", err)
	}
	pending, _ := s.ListPending()
	if len(pending) != 1 || pending[0].ID != "a" {
		t.Fatalf("expected one pending record, got %v", pending)
	}

	if err := s.ClearPending("a"); err != nil {
		t.Fatalf("clearPending: %v", err)
	}
	pending, _ = s.ListPending()
	if len(pending) != 0 {
		t.Fatalf("expected no pending records, got %d", len(pending))
	}
}

func TestList_StorageOrderStableAcrossEdits(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"first", "second", "third"} {
		if err := s.Upsert(testRecord(id, day)); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	// editing a row must not move it to the end
	rec := testRecord("first", day)
	rec.Note = "edited"
	if err := s.Upsert(rec); err != nil {
		t.Fatalf("edit: %v", err)
	}

	recs, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if recs[i].ID != id {
			t.Fatalf("storage order broken at %d: got %s want %s", i, recs[i].ID, id)
		}
	}
}

func TestSettings_TokenOnlineFlagWatermark(t *testing.T) {
	s := newTestStore(t)

	if tok, _ := s.Token(); tok != "" {
		t.Fatalf("fresh store should have no token, got %q", tok)
	}
	if err := s.SetToken("abc"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if tok, _ := s.Token(); tok != "abc" {
		t.Fatalf("token roundtrip: %q", tok)
	}
	if err := s.ClearToken(); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if tok, _ := s.Token(); tok != "" {
		t.Fatalf("token not cleared: %q", tok)
	}

	if on, _ := s.OnlineFlag(); on {
		t.Fatal("online flag should default to false")
	}
	if err := s.SetOnlineFlag(true); err != nil {
		t.Fatalf("set online: %v", err)
	}
	if on, _ := s.OnlineFlag(); !on {
		t.Fatal("online flag roundtrip failed")
	}

	if ts, _ := s.LastSyncTime(); !ts.IsZero() {
		t.Fatalf("fresh watermark should be zero, got %v", ts)
	}
	now := time.Now().UTC().Truncate(time.Second)
	if err := s.SetLastSyncTime(now); err != nil {
		t.Fatalf("set watermark: %v", err)
	}
	if ts, _ := s.LastSyncTime(); !ts.Equal(now) {
		t.Fatalf("watermark roundtrip: got %v want %v", ts, now)
	}
}

func TestSeedSampleData_OnlyOnEmptyLedger(t *testing.T) {
	s := newTestStore(t)

	n, err := s.SeedSampleData()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 samples, got %d", n)
	}

	n, err = s.SeedSampleData()
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n != 0 {
		t.Fatalf("second seed must be a no-op, inserted %d", n)
	}
}
