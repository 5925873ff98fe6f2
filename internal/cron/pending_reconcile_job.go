package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rsinghdev/storekhata-backend/internal/ledger"
	"github.com/rsinghdev/storekhata-backend/pkg/db/models"
	"github.com/rsinghdev/storekhata-backend/pkg/enums"
	pkgerrors "github.com/rsinghdev/storekhata-backend/pkg/errors"
	"github.com/rsinghdev/storekhata-backend/pkg/logger"
	"github.com/rsinghdev/storekhata-backend/pkg/metrics"
)

const defaultPromotionWindow = 24 * time.Hour

type pendingReconcileRepo interface {
	ListAll(ctx context.Context) ([]models.PendingLedgerEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type remoteReader interface {
	History(ctx context.Context, accountID string) ([]ledger.RawRecord, error)
}

// PendingReconcileJobParams configure the promotion sweep.
type PendingReconcileJobParams struct {
	Logger          *logger.Logger
	Repository      pendingReconcileRepo
	Remote          remoteReader
	Metrics         *metrics.LedgerMetrics
	PromotionWindow time.Duration
	Clock           func() time.Time
}

// NewPendingReconcileJob clears queued rows once the remote ledger holds a
// matching entry, so a replayed or independently synced write is not counted
// twice.
func NewPendingReconcileJob(params PendingReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("pending repository required")
	}
	if params.Remote == nil {
		return nil, fmt.Errorf("remote reader required")
	}
	window := params.PromotionWindow
	if window <= 0 {
		window = defaultPromotionWindow
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &pendingReconcileJob{
		logg:    params.Logger,
		repo:    params.Repository,
		remote:  params.Remote,
		metrics: params.Metrics,
		window:  window,
		clock:   clock,
	}, nil
}

type pendingReconcileJob struct {
	logg    *logger.Logger
	repo    pendingReconcileRepo
	remote  remoteReader
	metrics *metrics.LedgerMetrics
	window  time.Duration
	clock   func() time.Time
}

func (j *pendingReconcileJob) Name() string { return "pending-reconcile" }

func (j *pendingReconcileJob) Run(ctx context.Context) error {
	rows, err := j.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list pending rows: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	byAccount := make(map[string][]models.PendingLedgerEntry)
	for _, row := range rows {
		byAccount[row.AccountID] = append(byAccount[row.AccountID], row)
	}

	var promoted int
	for accountID, accountRows := range byAccount {
		raw, err := j.remote.History(ctx, accountID)
		if err != nil {
			if pkgerrors.IsUnauthorized(err) {
				return fmt.Errorf("reconcile aborted, session invalid: %w", err)
			}
			j.logg.Warn(j.logg.WithAccountID(ctx, accountID), "remote history unavailable, skipping account")
			continue
		}
		remoteEntries, _ := ledger.NormalizeAll(raw, enums.EntryOriginRemote, j.clock())

		for _, row := range accountRows {
			if !j.matchedRemotely(row, remoteEntries) {
				continue
			}
			if err := j.repo.Delete(ctx, row.ID); err != nil {
				j.logg.Error(ctx, "clear promoted pending row failed", err)
				continue
			}
			promoted++
			if j.metrics != nil {
				j.metrics.IncPendingCleared()
			}
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"pending":  len(rows),
		"promoted": promoted,
	})
	j.logg.Info(logCtx, "pending reconcile pass complete")
	return nil
}

// matchedRemotely reports whether the remote ledger already holds this queued
// entry: same account, type and amount, references equal when both sides carry
// one, and dated within the promotion window.
func (j *pendingReconcileJob) matchedRemotely(row models.PendingLedgerEntry, remote []ledger.Entry) bool {
	for _, entry := range remote {
		if entry.Type != row.Type {
			continue
		}
		if !entry.Amount.Equal(row.Amount.Abs()) {
			continue
		}
		if entry.Reference != "" && row.Reference != "" && entry.Reference != row.Reference {
			continue
		}
		gap := entry.OccurredAt.Sub(row.OccurredAt)
		if gap < 0 {
			gap = -gap
		}
		if gap <= j.window {
			return true
		}
	}
	return false
}
