package enums

import "fmt"

// AccountKind splits ledger accounts into customer khatas and distributor
// payable accounts.
type AccountKind string

const (
	AccountKindCustomer    AccountKind = "customer"
	AccountKindDistributor AccountKind = "distributor"
)

var validAccountKinds = []AccountKind{
	AccountKindCustomer,
	AccountKindDistributor,
}

// IsValid reports whether the value matches the canonical account kind enum.
func (k AccountKind) IsValid() bool {
	for _, candidate := range validAccountKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseAccountKind converts raw input into AccountKind.
func ParseAccountKind(value string) (AccountKind, error) {
	for _, candidate := range validAccountKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account kind %q", value)
}
