package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rsinghdev/storekhata-backend/internal/ledger"
	"github.com/rsinghdev/storekhata-backend/pkg/db/models"
	pkgerrors "github.com/rsinghdev/storekhata-backend/pkg/errors"
	"github.com/rsinghdev/storekhata-backend/pkg/logger"
	"github.com/rsinghdev/storekhata-backend/pkg/metrics"
)

const (
	defaultRetryBatchSize   = 50
	defaultRetryMaxAttempts = 10
)

type pendingRetryRepo interface {
	FetchBatch(ctx context.Context, limit int) ([]models.PendingLedgerEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkAttempt(ctx context.Context, id uuid.UUID, attemptErr error) error
}

type remoteAdder interface {
	Add(ctx context.Context, accountID string, input ledger.AddTransaction) (ledger.RawRecord, error)
}

// PendingRetryJobParams configure the queue drain job.
type PendingRetryJobParams struct {
	Logger      *logger.Logger
	Repository  pendingRetryRepo
	Remote      remoteAdder
	Metrics     *metrics.LedgerMetrics
	BatchSize   int
	MaxAttempts int
}

// NewPendingRetryJob replays queued entries against the remote ledger.
func NewPendingRetryJob(params PendingRetryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("pending repository required")
	}
	if params.Remote == nil {
		return nil, fmt.Errorf("remote writer required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultRetryBatchSize
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryMaxAttempts
	}
	return &pendingRetryJob{
		logg:        params.Logger,
		repo:        params.Repository,
		remote:      params.Remote,
		metrics:     params.Metrics,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}, nil
}

type pendingRetryJob struct {
	logg        *logger.Logger
	repo        pendingRetryRepo
	remote      remoteAdder
	metrics     *metrics.LedgerMetrics
	batchSize   int
	maxAttempts int
}

func (j *pendingRetryJob) Name() string { return "pending-retry" }

func (j *pendingRetryJob) Run(ctx context.Context) error {
	rows, err := j.repo.FetchBatch(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("fetch pending batch: %w", err)
	}

	var replayed, failed, exhausted int
	for _, row := range rows {
		if row.AttemptCount >= j.maxAttempts {
			// Exhausted rows stay queued and visible; they need operator
			// attention, not more retries.
			exhausted++
			continue
		}

		_, addErr := j.remote.Add(ctx, row.AccountID, transactionFromRow(row))
		if addErr != nil {
			if pkgerrors.IsUnauthorized(addErr) {
				return fmt.Errorf("replay aborted, session invalid: %w", addErr)
			}
			failed++
			if markErr := j.repo.MarkAttempt(ctx, row.ID, addErr); markErr != nil {
				j.logg.Error(ctx, "mark pending attempt failed", markErr)
			}
			continue
		}

		if delErr := j.repo.Delete(ctx, row.ID); delErr != nil {
			// The remote ledger holds the entry now; a leftover row is cleaned
			// up by the reconcile pass.
			j.logg.Error(ctx, "clear replayed pending row failed", delErr)
			continue
		}
		replayed++
		if j.metrics != nil {
			j.metrics.IncPendingCleared()
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"batch":     len(rows),
		"replayed":  replayed,
		"failed":    failed,
		"exhausted": exhausted,
	})
	j.logg.Info(logCtx, "pending replay pass complete")
	return nil
}

// transactionFromRow reshapes a queued row into the remote write payload. The
// business date travels only when it was valid at queue time.
func transactionFromRow(row models.PendingLedgerEntry) ledger.AddTransaction {
	input := ledger.AddTransaction{
		Type:        string(row.Type),
		Amount:      row.Amount.Abs(),
		Reference:   row.Reference,
		Description: row.Description,
	}
	if row.DateValid && !row.OccurredAt.IsZero() {
		input.Date = row.OccurredAt.UTC().Format(time.DateOnly)
	}
	return input
}
