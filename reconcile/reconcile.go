// Package reconcile drains locally-pending mutations against the remote
// store. It runs after the client comes online, or on explicit trigger.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/freedaysapp/ledger_client/config"
	"github.com/freedaysapp/ledger_client/models"
	"github.com/freedaysapp/ledger_client/session"
	"github.com/freedaysapp/ledger_client/store"
	"github.com/freedaysapp/ledger_client/utils"
	"github.com/sirupsen/logrus"
)

// RemoteStore is the slice of the remote API the reconciler replays against.
// *remote.Client implements it; tests substitute fakes.
type RemoteStore interface {
	CreateTransaction(ctx context.Context, in models.TransactionInput) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, rec models.Transaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	Incremental(ctx context.Context, since time.Time) ([]models.Transaction, time.Time, error)
}

type Reconciler struct {
	session *session.Session
	remote  RemoteStore
	local   *store.LocalStore
	logger  *logrus.Logger
}

func New(sess *session.Session, rc RemoteStore, local *store.LocalStore) *Reconciler {
	return &Reconciler{
		session: sess,
		remote:  rc,
		local:   local,
		logger:  sess.Logger(),
	}
}

// Failure pairs the record that could not be replayed with the reason.
type Failure struct {
	Record models.Transaction `json:"record"`
	Error  string             `json:"error"`
}

// Result partitions one reconciliation pass. Records in Success are
// confirmed; records in Failed are still pending for the next run.
type Result struct {
	Success []models.Transaction `json:"success"`
	Failed  []Failure            `json:"failed"`
}

// Run replays every pending record against the remote store, each one
// independently: one rejection never aborts the batch. The pass is not
// transactional; an interrupted run leaves confirmed records confirmed and
// the rest pending, which the next run picks up (at-least-once, the server
// upserts by id).
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	result := Result{Success: []models.Transaction{}, Failed: []Failure{}}

	// one correlation id spans the whole pass
	cid := utils.CorrelationIdFromContextOrNew(ctx)
	ctx = utils.SetCorrelationIdInContext(ctx, cid)

	pending, err := r.local.ListPending()
	if err != nil {
		return result, err
	}
	if len(pending) == 0 {
		return result, nil
	}

	for _, rec := range pending {
		var confirmed *models.Transaction
		var recErr error
		if rec.Deleted {
			recErr = r.drainDelete(ctx, rec)
		} else {
			confirmed, recErr = r.drainUpsert(ctx, rec)
		}
		if recErr != nil {
			config.LogError(r.logger, "reconcile", "Run", "replay record",
				map[string]string{"record": rec.ID, "correlationId": cid}, recErr)
			// A local store failure has no fallback behind it; the remote
			// classes stay per-record.
			var lse *utils.LocalStoreError
			if errors.As(recErr, &lse) {
				return result, recErr
			}
			result.Failed = append(result.Failed, Failure{Record: rec, Error: recErr.Error()})
			continue
		}
		if confirmed != nil {
			result.Success = append(result.Success, *confirmed)
		} else {
			result.Success = append(result.Success, rec)
		}
	}

	if len(result.Failed) == 0 {
		if err := r.local.SetLastSyncTime(time.Now().UTC()); err != nil {
			config.LogError(r.logger, "reconcile", "Run", "record watermark", nil, err)
		}
	}
	return result, nil
}

// drainUpsert replays a pending create or update. Records the server has
// never acknowledged are created (and re-keyed to the server-assigned id);
// acknowledged ones are updated in place.
func (r *Reconciler) drainUpsert(ctx context.Context, rec models.Transaction) (*models.Transaction, error) {
	if rec.RemoteConfirmed {
		confirmed, err := r.remote.UpdateTransaction(ctx, rec.ID, rec)
		if err != nil {
			return nil, err
		}
		confirmed.PendingSync = false
		if err := r.local.Upsert(confirmed); err != nil {
			return nil, err
		}
		return &confirmed, nil
	}

	confirmed, err := r.remote.CreateTransaction(ctx, models.TransactionInput{
		Type:       rec.Type,
		Amount:     rec.Amount,
		CategoryId: rec.CategoryId,
		Note:       rec.Note,
		Date:       utils.FormatDate(rec.Date),
	})
	if err != nil {
		return nil, err
	}
	confirmed.PendingSync = false
	// The server assigned its own id; retire the temporary local row first so
	// id uniqueness holds across the swap.
	if err := r.local.Purge(rec.ID); err != nil {
		return nil, err
	}
	if err := r.local.Upsert(confirmed); err != nil {
		return nil, err
	}
	return &confirmed, nil
}

// drainDelete replays a tombstone. A record the server never acknowledged has
// nothing to delete remotely; "already gone" answers count as confirmation.
func (r *Reconciler) drainDelete(ctx context.Context, rec models.Transaction) error {
	if rec.RemoteConfirmed {
		err := r.remote.DeleteTransaction(ctx, rec.ID)
		if err != nil && !isRemoteNotFound(err) {
			return err
		}
	}
	return r.local.Purge(rec.ID)
}

func isRemoteNotFound(err error) bool {
	var he *utils.HttpError
	if errors.As(err, &he) && he.StatusCode == 404 {
		return true
	}
	var be *utils.BusinessError
	return errors.As(err, &be) && be.Code == 404
}

// PullIncremental fetches records the server changed since the stored
// watermark and mirrors them locally. Rows with unsynced local mutations are
// left alone so a pull never clobbers pending work.
func (r *Reconciler) PullIncremental(ctx context.Context) (int, error) {
	since, err := r.local.LastSyncTime()
	if err != nil {
		return 0, err
	}
	recs, serverTime, err := r.remote.Incremental(ctx, since)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, rec := range recs {
		existing, err := r.local.GetIncludingDeleted(rec.ID)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			return applied, err
		}
		if existing != nil && existing.PendingSync {
			continue
		}
		if rec.Deleted {
			// deleted server-side: mirror by removing the local row
			if existing == nil {
				continue
			}
			if err := r.local.Purge(rec.ID); err != nil {
				return applied, err
			}
			applied++
			continue
		}
		rec.PendingSync = false
		if err := r.local.Upsert(rec); err != nil {
			return applied, err
		}
		applied++
	}

	if err := r.local.SetLastSyncTime(serverTime); err != nil {
		return applied, err
	}
	return applied, nil
}
