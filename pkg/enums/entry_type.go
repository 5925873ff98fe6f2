package enums

import (
	"fmt"
	"strings"
)

// EntryType classifies a ledger entry's effect on the balance owed.
type EntryType string

const (
	// EntryTypeGiven increases the amount owed by the account holder.
	EntryTypeGiven EntryType = "given"
	// EntryTypePayment decreases the amount owed.
	EntryTypePayment EntryType = "payment"
)

var validEntryTypes = []EntryType{
	EntryTypeGiven,
	EntryTypePayment,
}

// IsValid reports whether the value matches the canonical entry type enum.
func (t EntryType) IsValid() bool {
	for _, candidate := range validEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseEntryType converts raw input into EntryType. Matching is
// case-insensitive and "credit" is accepted as a synonym for given.
func ParseEntryType(value string) (EntryType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "given", "credit":
		return EntryTypeGiven, nil
	case "payment":
		return EntryTypePayment, nil
	}
	return "", fmt.Errorf("invalid entry type %q", value)
}
