package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// chronoLess orders entries for the balance walk: valid dates ascending,
// invalid dates after every valid one, id as the stable tie-break.
func chronoLess(a, b Entry) bool {
	if a.DateValid != b.DateValid {
		return a.DateValid
	}
	if a.DateValid && !a.OccurredAt.Equal(b.OccurredAt) {
		return a.OccurredAt.Before(b.OccurredAt)
	}
	return a.ID < b.ID
}

// ComputeBalances annotates every entry with the running balance of its
// account. Only (occurredAt, id) determine the walk order, so the result is
// independent of how the sources arrived. The returned list is sorted most
// recent first for display; the display order never feeds the math.
func ComputeBalances(entries []Entry) []Entry {
	byAccount := make(map[string][]Entry)
	for _, entry := range entries {
		byAccount[entry.AccountID] = append(byAccount[entry.AccountID], entry)
	}

	out := make([]Entry, 0, len(entries))
	for _, group := range byAccount {
		sort.SliceStable(group, func(i, j int) bool {
			return chronoLess(group[i], group[j])
		})
		running := decimal.Zero
		for i := range group {
			running = running.Add(group[i].SignedAmount())
			group[i].ComputedBalance = running
		}
		out = append(out, group...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return chronoLess(out[j], out[i])
	})
	return out
}
