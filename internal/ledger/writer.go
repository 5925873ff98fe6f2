package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/pkg/enums"
	pkgerrors "github.com/rsinghdev/storekhata-backend/pkg/errors"
	"github.com/rsinghdev/storekhata-backend/pkg/logger"
)

// AddTransaction is the write-path input collected from the UI form.
type AddTransaction struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description,omitempty"`
}

// RemoteWriter is the authoritative ledger's write surface.
type RemoteWriter interface {
	Add(ctx context.Context, accountID string, input AddTransaction) (RawRecord, error)
}

// WriteResult reports where the entry ended up and the recomputed view.
type WriteResult struct {
	Entry  Entry `json:"entry"`
	Queued bool  `json:"queued"`
	View   *View `json:"view,omitempty"`
}

// Writer attempts remote writes and falls back to the local pending queue so
// an entry is never lost. Either path ends with a recomputation pass so the
// balance the UI shows reflects the latest known state.
type Writer struct {
	remote  RemoteWriter
	pending PendingStore
	views   ViewService
	logg    *logger.Logger
	clock   func() time.Time
}

// WriterParams wires a ledger writer.
type WriterParams struct {
	Remote  RemoteWriter
	Pending PendingStore
	Views   ViewService
	Logger  *logger.Logger
	Clock   func() time.Time
}

// NewWriter builds a ledger writer.
func NewWriter(params WriterParams) (*Writer, error) {
	if params.Remote == nil {
		return nil, fmt.Errorf("remote writer required")
	}
	if params.Pending == nil {
		return nil, fmt.Errorf("pending store required")
	}
	if params.Views == nil {
		return nil, fmt.Errorf("view service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Writer{
		remote:  params.Remote,
		pending: params.Pending,
		views:   params.Views,
		logg:    params.Logger,
		clock:   clock,
	}, nil
}

// Write records a transaction. Auth failures propagate untouched; every other
// remote failure queues the entry locally and reports degraded mode.
func (w *Writer) Write(ctx context.Context, accountID string, input AddTransaction) (*WriteResult, error) {
	if accountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	entryType, err := enums.ParseEntryType(input.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry type")
	}
	if input.Amount.IsNegative() || input.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	ctx = w.logg.WithAccountID(ctx, accountID)
	result := &WriteResult{}

	raw, remoteErr := w.remote.Add(ctx, accountID, input)
	switch {
	case remoteErr == nil:
		entry, _ := Normalize(raw, enums.EntryOriginRemote, w.clock())
		result.Entry = entry
	case pkgerrors.IsUnauthorized(remoteErr):
		return nil, remoteErr
	default:
		w.logg.Warn(w.logg.WithField(ctx, "error", remoteErr.Error()), "remote write failed, queuing locally")
		entry := w.localEntry(accountID, entryType, input)
		if appendErr := w.pending.Append(ctx, entry); appendErr != nil {
			// Both the remote and the local queue failed; nothing held the
			// entry, so this one is fatal to the write.
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, appendErr, "queue entry locally")
		}
		result.Entry = entry
		result.Queued = true
	}

	view, viewErr := w.views.AccountView(ctx, accountID)
	if viewErr != nil {
		if pkgerrors.IsUnauthorized(viewErr) {
			return nil, viewErr
		}
		w.logg.Error(ctx, "post-write recompute failed", viewErr)
	} else {
		result.View = view
	}
	return result, nil
}

// localEntry shapes the queued entry exactly as the pending store will
// resurface it, so the optimistic UI and the stored row agree.
func (w *Writer) localEntry(accountID string, entryType enums.EntryType, input AddTransaction) Entry {
	now := w.clock()
	occurredAt, valid := parseDate(input.Date)
	if !valid {
		// No parseable business date: the write moment stands in, but only an
		// absent date counts as valid.
		occurredAt = now
		valid = input.Date == ""
	}
	return Entry{
		ID:          "local-" + uuid.NewString(),
		AccountID:   accountID,
		Type:        entryType,
		Amount:      input.Amount.Abs(),
		OccurredAt:  occurredAt,
		DateValid:   valid,
		Reference:   input.Reference,
		Description: input.Description,
		Origin:      enums.EntryOriginLocalPending,
	}
}
