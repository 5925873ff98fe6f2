package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/pkg/enums"
)

// Entry is the canonical shape every ledger source normalizes into. Amount is
// always a non-negative magnitude; the sign is derived from Type.
type Entry struct {
	ID          string            `json:"id"`
	AccountID   string            `json:"account_id"`
	Type        enums.EntryType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	OccurredAt  time.Time         `json:"occurred_at"`
	DateValid   bool              `json:"date_valid"`
	Reference   string            `json:"reference,omitempty"`
	Description string            `json:"description,omitempty"`
	Origin      enums.EntryOrigin `json:"origin"`

	// ComputedBalance is output only: the running balance immediately after
	// this entry is applied, in chronological order, for its account. It is
	// recomputed from scratch on every merge and never persisted.
	ComputedBalance decimal.Decimal `json:"computed_balance"`
}

// SignedAmount applies the sign convention: payments reduce the balance owed,
// everything else increases it.
func (e Entry) SignedAmount() decimal.Decimal {
	magnitude := e.Amount.Abs()
	if e.Type == enums.EntryTypePayment {
		return magnitude.Neg()
	}
	return magnitude
}

// IdentityKey is the dedup identity: the id when the source assigned one,
// otherwise a composite of account, reference, amount and date.
func (e Entry) IdentityKey() string {
	if id := strings.TrimSpace(e.ID); id != "" {
		return "id:" + id
	}
	return e.CompositeKey()
}

// CompositeKey builds the fallback identity used both for id-less entries and
// for matching a locally queued entry against the remote row the server later
// assigned its own id to.
func (e Entry) CompositeKey() string {
	date := "-"
	if e.DateValid {
		date = e.OccurredAt.UTC().Format("2006-01-02")
	}
	return strings.Join([]string{
		"cmp",
		e.AccountID,
		string(e.Type),
		e.Amount.Abs().String(),
		strings.TrimSpace(e.Reference),
		date,
	}, "|")
}

// DerivedOrderEntryID builds the deterministic id for an entry projected from
// a purchase order, so repeated projection never duplicates.
func DerivedOrderEntryID(orderID string) string {
	return "po-" + orderID
}
