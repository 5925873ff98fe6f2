package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/pkg/enums"
)

// PendingLedgerEntry is an append-only row queued when a remote ledger write
// failed. Rows survive process crashes and are retained until a reconcile pass
// confirms the remote ledger holds a matching entry.
type PendingLedgerEntry struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	AccountID    string          `gorm:"column:account_id;not null;index"`
	Type         enums.EntryType `gorm:"column:type;not null"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	OccurredAt   time.Time       `gorm:"column:occurred_at"`
	DateValid    bool            `gorm:"column:date_valid;not null;default:true"`
	Reference    string          `gorm:"column:reference"`
	Description  string          `gorm:"column:description"`
	AttemptCount int             `gorm:"column:attempt_count;not null;default:0"`
	LastError    *string         `gorm:"column:last_error"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the explicit plural the migrations create.
func (PendingLedgerEntry) TableName() string {
	return "pending_ledger_entries"
}
