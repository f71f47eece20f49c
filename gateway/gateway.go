// Package gateway is the dual-mode data access layer: every read and write of
// transaction data goes through here, remote-first when the session is
// online, with the local store as fallback and system of record for pending
// work.
package gateway

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/freedaysapp/ledger_client/models"
	"github.com/freedaysapp/ledger_client/reconcile"
	"github.com/freedaysapp/ledger_client/session"
	"github.com/freedaysapp/ledger_client/store"
	"github.com/freedaysapp/ledger_client/utils"
	"github.com/sirupsen/logrus"
)

// RemoteAPI is the remote surface the gateway consumes. *remote.Client
// implements it; tests substitute fakes.
type RemoteAPI interface {
	reconcile.RemoteStore
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	ListTransactions(ctx context.Context, filter models.ListFilter) (models.TransactionPage, error)
	MonthlyStats(ctx context.Context, year int, month int) (models.MonthlyStats, error)
	YearlyStats(ctx context.Context, year int) (models.YearlyStats, error)
	RangeStats(ctx context.Context, start, end time.Time, groupBy models.GroupBy) (models.RangeStats, error)
	Categories(ctx context.Context, t models.TransactionType) (models.CategoryCatalog, error)
}

type Gateway struct {
	session    *session.Session
	remote     RemoteAPI
	local      *store.LocalStore
	reconciler *reconcile.Reconciler
	logger     *logrus.Logger
}

func New(sess *session.Session, rc RemoteAPI, local *store.LocalStore) *Gateway {
	return &Gateway{
		session:    sess,
		remote:     rc,
		local:      local,
		reconciler: reconcile.New(sess, rc, local),
		logger:     sess.Logger(),
	}
}

// CreateTransaction records a new transaction. Online, the server assigns the
// id and the local store mirrors the confirmed record; on any recoverable
// remote failure (or offline) the record is written locally under a temporary
// id with the pending flag set. The call fails only on invalid input or a
// local store failure: local-first durability is the fallback contract.
func (g *Gateway) CreateTransaction(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	if err := validateInput(in); err != nil {
		return models.Transaction{}, err
	}

	if g.session.IsOnline() {
		rec, err := g.remote.CreateTransaction(ctx, in)
		if err == nil {
			rec.PendingSync = false
			if lerr := g.local.Upsert(rec); lerr != nil {
				return models.Transaction{}, lerr
			}
			return rec, nil
		}
		if utils.IsRejectedInput(err) {
			// The server rejected the payload itself; a local fallback would
			// only park a record reconciliation is bound to reject again.
			return models.Transaction{}, err
		}
	}

	date, _ := in.ParsedDate()
	rec := models.Transaction{
		ID:          utils.NewLocalID(),
		Type:        in.Type,
		Amount:      in.Amount,
		CategoryId:  in.CategoryId,
		Note:        in.Note,
		Date:        date,
		CreateTime:  time.Now().UTC(),
		PendingSync: true,
	}
	if err := g.local.Upsert(rec); err != nil {
		return models.Transaction{}, err
	}
	return rec, nil
}

// UpdateTransaction merges a partial patch onto a record. Fields absent from
// the patch keep their stored values on both the online and offline paths.
// The remote replay always carries a full record, so the merge base must be
// the record's current state: the local mirror when one exists, otherwise a
// fresh remote read. A tombstoned row is not updatable; the pending deletion
// stays queued.
func (g *Gateway) UpdateTransaction(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error) {
	if err := validatePatch(patch); err != nil {
		return models.Transaction{}, err
	}

	existing, err := g.local.Get(id)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		return models.Transaction{}, err
	}
	if existing == nil {
		if tomb, terr := g.local.GetIncludingDeleted(id); terr == nil && tomb.Deleted {
			return models.Transaction{}, utils.ErrorRecordNotFound
		}
	}

	if g.session.IsOnline() {
		base := models.Transaction{}
		haveBase := existing != nil
		if haveBase {
			base = *existing
		} else if cur, gerr := g.remote.GetTransaction(ctx, id); gerr == nil {
			base = cur
			haveBase = true
		}
		if haveBase {
			merged := patch.Apply(base)
			merged.ID = id
			confirmed, rerr := g.remote.UpdateTransaction(ctx, id, merged)
			if rerr == nil {
				confirmed.PendingSync = false
				if lerr := g.local.Upsert(confirmed); lerr != nil {
					return models.Transaction{}, lerr
				}
				return confirmed, nil
			}
			if utils.IsRejectedInput(rerr) {
				return models.Transaction{}, rerr
			}
		}
	}

	if existing == nil {
		return models.Transaction{}, utils.ErrorRecordNotFound
	}
	sp := storePatch(patch)
	pending := true
	sp.PendingSync = &pending
	if err := g.local.Merge(id, sp); err != nil {
		return models.Transaction{}, err
	}
	updated, err := g.local.Get(id)
	if err != nil {
		return models.Transaction{}, err
	}
	return *updated, nil
}

// DeleteTransaction removes a record. Only a confirmed remote deletion purges
// the local row; anything less leaves a tombstone, because a hard purge before
// confirmation risks losing the record if an ambiguous failure actually
// succeeded server-side.
func (g *Gateway) DeleteTransaction(ctx context.Context, id string) error {
	if g.session.IsOnline() {
		if err := g.remote.DeleteTransaction(ctx, id); err == nil {
			return g.local.Purge(id)
		}
	}
	return g.local.SoftDelete(id)
}

// GetTransaction reads one record, remote-first, local on any remote failure.
func (g *Gateway) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	if g.session.IsOnline() {
		if rec, err := g.remote.GetTransaction(ctx, id); err == nil {
			return rec, nil
		}
	}
	rec, err := g.local.Get(id)
	if err != nil {
		return models.Transaction{}, err
	}
	return *rec, nil
}

// ListTransactions returns one page. Remote results are returned as-is and
// never written back wholesale, so unsynced local records are not clobbered.
// The local ordering policy: date descending, equal dates keep storage order.
func (g *Gateway) ListTransactions(ctx context.Context, filter models.ListFilter) (models.TransactionPage, error) {
	filter = filter.Normalize()

	if g.session.IsOnline() {
		if page, err := g.remote.ListTransactions(ctx, filter); err == nil {
			return page, nil
		}
	}

	recs, err := g.local.List()
	if err != nil {
		return models.TransactionPage{}, err
	}

	matched := make([]models.Transaction, 0, len(recs))
	for _, rec := range recs {
		if filter.Matches(rec) {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return models.TransactionPage{Items: matched[start:end], Total: total}, nil
}

// ListCategories returns the category catalog, narrowed to one type when t is
// set. The built-in defaults make this operation total: it never fails.
func (g *Gateway) ListCategories(ctx context.Context, t models.TransactionType) models.CategoryCatalog {
	catalog := models.CategoryCatalog{}
	fetched := false
	if g.session.IsOnline() {
		if remoteCatalog, err := g.remote.Categories(ctx, t); err == nil {
			catalog = remoteCatalog
			fetched = true
		}
	}
	if !fetched {
		catalog = models.DefaultCategories()
	}
	switch t {
	case models.TransactionTypeIncome:
		catalog.Expense = nil
	case models.TransactionTypeExpense:
		catalog.Income = nil
	}
	return catalog
}

// SyncPending drains pending local mutations against the remote store.
func (g *Gateway) SyncPending(ctx context.Context) (reconcile.Result, error) {
	return g.reconciler.Run(ctx)
}

// PullIncremental mirrors server-side changes since the last watermark.
func (g *Gateway) PullIncremental(ctx context.Context) (int, error) {
	return g.reconciler.PullIncremental(ctx)
}

func validateInput(in models.TransactionInput) error {
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}
	if in.Amount.IsNegative() {
		return &utils.ValidationError{Field: "amount", Message: "must not be negative"}
	}
	return nil
}

func validatePatch(p models.TransactionPatch) error {
	if p.Type != nil && !p.Type.Valid() {
		return &utils.ValidationError{Field: "type", Message: "must be income or expense"}
	}
	if p.Amount != nil && p.Amount.IsNegative() {
		return &utils.ValidationError{Field: "amount", Message: "must not be negative"}
	}
	if p.Date != nil {
		if _, err := utils.ParseDate(*p.Date); err != nil {
			return &utils.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
		}
	}
	return nil
}

func storePatch(p models.TransactionPatch) store.Patch {
	sp := store.Patch{
		Type:       p.Type,
		Amount:     p.Amount,
		CategoryId: p.CategoryId,
		Note:       p.Note,
	}
	if p.Date != nil {
		if d, err := utils.ParseDate(*p.Date); err == nil {
			sp.Date = &d
		}
	}
	return sp
}
