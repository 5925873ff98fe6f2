package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/pkg/enums"
)

// OrderItem is one purchase order line used when the header totals are absent.
type OrderItem struct {
	Quantity  decimal.Decimal `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

// ConfirmedOrder is an explicit snapshot of a purchase order, taken at fetch
// time. The projector only ever sees this snapshot, never live UI state.
type ConfirmedOrder struct {
	ID            string                    `json:"id"`
	DistributorID string                    `json:"distributor_id"`
	Status        enums.PurchaseOrderStatus `json:"status"`
	TaxableValue  decimal.Decimal           `json:"taxable_value"`
	TaxAmount     decimal.Decimal           `json:"tax_amount"`
	Total         decimal.Decimal           `json:"total"`
	OrderedAt     time.Time                 `json:"ordered_at"`
	Reference     string                    `json:"reference,omitempty"`
	Items         []OrderItem               `json:"items,omitempty"`
}

// Amount resolves the order's financial value through a deterministic fallback
// chain: taxable value + tax, then the header total, then the line items.
func (o ConfirmedOrder) Amount() decimal.Decimal {
	headerValue := o.TaxableValue.Add(o.TaxAmount)
	if headerValue.IsPositive() {
		return headerValue
	}
	if o.Total.IsPositive() {
		return o.Total
	}
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Quantity.Mul(item.Rate)).Add(item.TaxAmount)
	}
	return sum
}

// Project synthesizes ledger entries for financially-final orders that have no
// explicit ledger row yet. Ids are deterministic, so projecting the same
// snapshot twice yields the same entries, and any id already present in
// existing is skipped to prevent double counting.
func Project(orders []ConfirmedOrder, existing map[string]struct{}) []Entry {
	entries := make([]Entry, 0, len(orders))
	for _, order := range orders {
		if !order.Status.IsFinanciallyFinal() {
			continue
		}
		id := DerivedOrderEntryID(order.ID)
		if _, ok := existing[id]; ok {
			continue
		}
		reference := strings.TrimSpace(order.Reference)
		if reference == "" {
			reference = fmt.Sprintf("PO-%s", order.ID)
		}
		entries = append(entries, Entry{
			ID:          id,
			AccountID:   order.DistributorID,
			Type:        enums.EntryTypeGiven,
			Amount:      order.Amount(),
			OccurredAt:  order.OrderedAt,
			DateValid:   !order.OrderedAt.IsZero(),
			Reference:   reference,
			Description: fmt.Sprintf("purchase order %s (%s)", order.ID, order.Status),
			Origin:      enums.EntryOriginDerived,
		})
	}
	return entries
}
