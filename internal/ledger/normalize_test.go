package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/pkg/enums"
)

var testNow = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeTypeSynonyms(t *testing.T) {
	cases := []struct {
		name string
		raw  RawRecord
		want enums.EntryType
	}{
		{name: "given", raw: RawRecord{Type: "given", Amount: "10", CreatedAt: testNow.Format(time.RFC3339)}, want: enums.EntryTypeGiven},
		{name: "credit synonym", raw: RawRecord{Type: "credit", Amount: "10", CreatedAt: testNow.Format(time.RFC3339)}, want: enums.EntryTypeGiven},
		{name: "uppercase", raw: RawRecord{Type: "PAYMENT", Amount: "10", CreatedAt: testNow.Format(time.RFC3339)}, want: enums.EntryTypePayment},
		{name: "legacy field", raw: RawRecord{TransactionType: "payment", Amount: "10", CreatedAt: testNow.Format(time.RFC3339)}, want: enums.EntryTypePayment},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry, warnings := Normalize(tc.raw, enums.EntryOriginRemote, testNow)
			if len(warnings) != 0 {
				t.Fatalf("unexpected warnings: %v", warnings)
			}
			if entry.Type != tc.want {
				t.Fatalf("type = %s, want %s", entry.Type, tc.want)
			}
		})
	}
}

func TestNormalizeUnknownTypeWarnsAndDefaults(t *testing.T) {
	entry, warnings := Normalize(RawRecord{Type: "debit", Amount: "5", CreatedAt: testNow.Format(time.RFC3339)}, enums.EntryOriginRemote, testNow)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want one", warnings)
	}
	if entry.Type != enums.EntryTypeGiven {
		t.Fatalf("unknown type should default to given, got %s", entry.Type)
	}
}

func TestNormalizeAmountCoercion(t *testing.T) {
	cases := []struct {
		name     string
		amount   any
		want     string
		warnings int
	}{
		{name: "string", amount: "250.50", want: "250.5"},
		{name: "float", amount: 99.0, want: "99"},
		{name: "negative magnitude", amount: "-40", want: "40"},
		{name: "garbage", amount: "12abc", want: "0", warnings: 1},
		{name: "missing", amount: nil, want: "0", warnings: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry, warnings := Normalize(RawRecord{Type: "given", Amount: tc.amount, CreatedAt: testNow.Format(time.RFC3339)}, enums.EntryOriginRemote, testNow)
			if len(warnings) != tc.warnings {
				t.Fatalf("warnings = %v, want %d", warnings, tc.warnings)
			}
			if entry.Amount.String() != tc.want {
				t.Fatalf("amount = %s, want %s", entry.Amount, tc.want)
			}
		})
	}
}

func TestNormalizeDatePriority(t *testing.T) {
	raw := RawRecord{
		Type:      "given",
		Amount:    "10",
		Date:      "2025-01-15",
		CreatedAt: "2025-07-01T09:30:00Z",
	}
	entry, _ := Normalize(raw, enums.EntryOriginRemote, testNow)
	if !entry.DateValid {
		t.Fatal("explicit date should be valid")
	}
	if entry.OccurredAt.Format("2006-01-02") != "2025-01-15" {
		t.Fatalf("occurredAt = %s, want the backdated business date", entry.OccurredAt)
	}
}

func TestNormalizeFallsBackToCreatedAt(t *testing.T) {
	raw := RawRecord{Type: "given", Amount: "10", CreatedAt: "2025-07-01T09:30:00Z"}
	entry, warnings := Normalize(raw, enums.EntryOriginRemote, testNow)
	if !entry.DateValid {
		t.Fatal("created_at fallback should still be a valid date")
	}
	if len(warnings) != 0 {
		t.Fatalf("missing explicit date alone is not a warning, got %v", warnings)
	}
	if entry.OccurredAt.Month() != time.July {
		t.Fatalf("occurredAt = %s", entry.OccurredAt)
	}
}

func TestNormalizeInvalidDateDoesNotFail(t *testing.T) {
	raw := RawRecord{Type: "given", Amount: "10", Date: "not-a-date"}
	entry, warnings := Normalize(raw, enums.EntryOriginRemote, testNow)
	if entry.DateValid {
		t.Fatal("unparsable date should be flagged invalid")
	}
	if !entry.OccurredAt.Equal(testNow) {
		t.Fatalf("invalid date should fall back to now, got %s", entry.OccurredAt)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning for the unparsable date")
	}
}

func TestNormalizeAllCountsWarnings(t *testing.T) {
	raws := []RawRecord{
		{Type: "given", Amount: "10", Date: "2025-01-01"},
		{Type: "bogus", Amount: "nope"},
	}
	entries, warnings := NormalizeAll(raws, enums.EntryOriginRemote, testNow)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (malformed records are kept)", len(entries))
	}
	if warnings != 3 {
		t.Fatalf("warnings = %d, want 3 (type, amount, date)", warnings)
	}
}

func TestCompositeKeyStableAcrossOrigins(t *testing.T) {
	base := Entry{
		AccountID:  "acct-1",
		Type:       enums.EntryTypeGiven,
		Amount:     decimal.NewFromInt(500),
		OccurredAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DateValid:  true,
		Reference:  "INV-9",
	}
	local := base
	local.ID = "local-abc"
	local.Origin = enums.EntryOriginLocalPending
	remote := base
	remote.ID = "srv-123"
	remote.Origin = enums.EntryOriginRemote

	if local.CompositeKey() != remote.CompositeKey() {
		t.Fatal("composite keys should match regardless of id and origin")
	}
	if local.IdentityKey() == remote.IdentityKey() {
		t.Fatal("identity keys differ when both sides have ids")
	}
}
