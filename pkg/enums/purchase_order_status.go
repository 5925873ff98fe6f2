package enums

import "strings"

// PurchaseOrderStatus mirrors the distributor purchase order lifecycle.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "confirmed"
	PurchaseOrderStatusShipped   PurchaseOrderStatus = "shipped"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// financiallyFinalStatuses is the allow-list of states whose orders count as
// committed spend and may be projected into the ledger.
var financiallyFinalStatuses = []PurchaseOrderStatus{
	PurchaseOrderStatusConfirmed,
	PurchaseOrderStatusShipped,
	PurchaseOrderStatusReceived,
}

// IsFinanciallyFinal reports whether an order in this status represents money
// owed regardless of what happens next.
func (s PurchaseOrderStatus) IsFinanciallyFinal() bool {
	normalized := PurchaseOrderStatus(strings.ToLower(strings.TrimSpace(string(s))))
	for _, candidate := range financiallyFinalStatuses {
		if candidate == normalized {
			return true
		}
	}
	return false
}
