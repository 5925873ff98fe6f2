package pending

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rsinghdev/storekhata-backend/internal/ledger"
	"github.com/rsinghdev/storekhata-backend/pkg/db/models"
	"github.com/rsinghdev/storekhata-backend/pkg/enums"
)

// localIDPrefix marks entry ids minted on this side of the ledger so they can
// never collide with remote row ids.
const localIDPrefix = "local-"

// Store exposes the pending queue as the reconciliation engine's local source.
type Store interface {
	ledger.PendingStore
}

type store struct {
	repo Repository
}

// NewStore wraps a repository as a ledger pending store.
func NewStore(repo Repository) (Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	return &store{repo: repo}, nil
}

func (s *store) Append(ctx context.Context, entry ledger.Entry) error {
	row := ModelFromEntry(entry)
	return s.repo.Create(ctx, &row)
}

func (s *store) List(ctx context.Context, accountID string) ([]ledger.Entry, error) {
	var (
		rows []models.PendingLedgerEntry
		err  error
	)
	if accountID == "" {
		rows, err = s.repo.ListAll(ctx)
	} else {
		rows, err = s.repo.ListByAccount(ctx, accountID)
	}
	if err != nil {
		return nil, err
	}
	entries := make([]ledger.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, EntryFromModel(row))
	}
	return entries, nil
}

// EntryFromModel maps a stored row back into the engine's entry shape.
func EntryFromModel(row models.PendingLedgerEntry) ledger.Entry {
	return ledger.Entry{
		ID:          localIDPrefix + row.ID.String(),
		AccountID:   row.AccountID,
		Type:        row.Type,
		Amount:      row.Amount.Abs(),
		OccurredAt:  row.OccurredAt,
		DateValid:   row.DateValid,
		Reference:   row.Reference,
		Description: row.Description,
		Origin:      enums.EntryOriginLocalPending,
	}
}

// ModelFromEntry maps an engine entry onto a storable row. Ids minted by the
// writer carry the local prefix around a uuid; anything else gets a fresh one.
func ModelFromEntry(entry ledger.Entry) models.PendingLedgerEntry {
	id, err := uuid.Parse(strings.TrimPrefix(entry.ID, localIDPrefix))
	if err != nil {
		id = uuid.New()
	}
	return models.PendingLedgerEntry{
		ID:          id,
		AccountID:   entry.AccountID,
		Type:        entry.Type,
		Amount:      entry.Amount.Abs(),
		OccurredAt:  entry.OccurredAt,
		DateValid:   entry.DateValid,
		Reference:   entry.Reference,
		Description: entry.Description,
	}
}
