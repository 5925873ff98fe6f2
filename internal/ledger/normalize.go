package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/pkg/enums"
)

// RawRecord is the loosely-typed row shape the remote ledger API returns.
// Older servers use transaction_type instead of type and return amounts as
// strings.
type RawRecord struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	Type            string `json:"type,omitempty"`
	TransactionType string `json:"transaction_type,omitempty"`
	Amount          any    `json:"amount"`
	Date            string `json:"date,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	Reference       string `json:"reference,omitempty"`
	Description     string `json:"description,omitempty"`
}

// dateLayouts are the strict formats accepted for business dates. Anything
// else counts as invalid and sorts last.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// Normalize converts a raw record into a canonical Entry. It never fails:
// malformed amounts coerce to zero and malformed dates fall back through
// created_at to now, each recorded as a warning the caller can count.
func Normalize(raw RawRecord, origin enums.EntryOrigin, now time.Time) (Entry, []string) {
	var warnings []string

	entry := Entry{
		ID:          strings.TrimSpace(raw.ID),
		AccountID:   strings.TrimSpace(raw.AccountID),
		Reference:   strings.TrimSpace(raw.Reference),
		Description: strings.TrimSpace(raw.Description),
		Origin:      origin,
	}

	rawType := raw.Type
	if rawType == "" {
		rawType = raw.TransactionType
	}
	entryType, err := enums.ParseEntryType(rawType)
	if err != nil {
		warnings = append(warnings, "unrecognized type "+strings.TrimSpace(rawType))
		entryType = enums.EntryTypeGiven
	}
	entry.Type = entryType

	amount, ok := coerceAmount(raw.Amount)
	if !ok {
		warnings = append(warnings, "malformed amount")
		amount = decimal.Zero
	}
	entry.Amount = amount.Abs()

	occurredAt, valid, warn := resolveDate(raw.Date, raw.CreatedAt, now)
	if warn != "" {
		warnings = append(warnings, warn)
	}
	entry.OccurredAt = occurredAt
	entry.DateValid = valid

	return entry, warnings
}

// NormalizeAll maps a batch of raw records, accumulating the warning count.
func NormalizeAll(raws []RawRecord, origin enums.EntryOrigin, now time.Time) ([]Entry, int) {
	entries := make([]Entry, 0, len(raws))
	warningCount := 0
	for _, raw := range raws {
		entry, warnings := Normalize(raw, origin, now)
		warningCount += len(warnings)
		entries = append(entries, entry)
	}
	return entries, warningCount
}

func coerceAmount(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, false
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case decimal.Decimal:
		return v, true
	}
	return decimal.Zero, false
}

func parseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveDate prefers the explicit business date over the record's creation
// timestamp, since entries may be backdated.
func resolveDate(date, createdAt string, now time.Time) (time.Time, bool, string) {
	if t, ok := parseDate(date); ok {
		return t, true, ""
	}
	warn := ""
	if strings.TrimSpace(date) != "" {
		warn = "unparsable date " + strings.TrimSpace(date)
	}
	if t, ok := parseDate(createdAt); ok {
		return t, true, warn
	}
	if warn == "" {
		warn = "record missing date"
	}
	return now, false, warn
}
