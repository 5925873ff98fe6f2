package ledger

import (
	"github.com/shopspring/decimal"
)

// Summary is the headline balance the UI renders above the entry list.
type Summary struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Summarize reduces computed entries to a headline figure. With an accountID
// the value is that account's balance after its chronologically last entry.
// Without one it is the sum of each distinct account's final balance. Summing
// over entries instead would double count multi-entry accounts.
func Summarize(entries []Entry, accountID string) Summary {
	latest := latestPerAccount(entries)

	if accountID != "" {
		summary := Summary{Label: "Balance", Value: decimal.Zero}
		if entry, ok := latest[accountID]; ok {
			summary.Value = entry.ComputedBalance
		}
		return summary
	}

	total := decimal.Zero
	for _, entry := range latest {
		total = total.Add(entry.ComputedBalance)
	}
	return Summary{Label: "Net balance", Value: total}
}

// latestPerAccount picks each account's chronologically last entry.
func latestPerAccount(entries []Entry) map[string]Entry {
	latest := make(map[string]Entry)
	for _, entry := range entries {
		current, ok := latest[entry.AccountID]
		if !ok || chronoLess(current, entry) {
			latest[entry.AccountID] = entry
		}
	}
	return latest
}
