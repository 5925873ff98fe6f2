package pending

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsinghdev/storekhata-backend/pkg/db/models"
)

// Repository manages persistence for the pending ledger entry queue.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.PendingLedgerEntry) error
	ListByAccount(ctx context.Context, accountID string) ([]models.PendingLedgerEntry, error)
	ListAll(ctx context.Context) ([]models.PendingLedgerEntry, error)
	FetchBatch(ctx context.Context, limit int) ([]models.PendingLedgerEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkAttempt(ctx context.Context, id uuid.UUID, attemptErr error) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pending queue repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.PendingLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByAccount(ctx context.Context, accountID string) ([]models.PendingLedgerEntry, error) {
	var rows []models.PendingLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.PendingLedgerEntry, error) {
	var rows []models.PendingLedgerEntry
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchBatch returns the oldest pending rows for a retry pass. Ordering on
// created_at then id keeps the pass deterministic across runs.
func (r *repository) FetchBatch(ctx context.Context, limit int) ([]models.PendingLedgerEntry, error) {
	var rows []models.PendingLedgerEntry
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.PendingLedgerEntry{}).Error
}

func (r *repository) MarkAttempt(ctx context.Context, id uuid.UUID, attemptErr error) error {
	updates := map[string]any{
		"attempt_count": gorm.Expr("attempt_count + 1"),
	}
	if attemptErr != nil {
		updates["last_error"] = attemptErr.Error()
	}
	return r.db.WithContext(ctx).
		Model(&models.PendingLedgerEntry{}).
		Where("id = ?", id).
		Updates(updates).Error
}
