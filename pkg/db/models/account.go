package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rsinghdev/storekhata-backend/pkg/enums"
)

// Account is a ledgerable party: a customer running a credit khata or a
// distributor we owe for purchase orders.
type Account struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string            `gorm:"column:name;not null" json:"name"`
	Kind      enums.AccountKind `gorm:"column:kind;not null;index" json:"kind"`
	Phone     string            `gorm:"column:phone" json:"phone,omitempty"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
