package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/pkg/enums"
)

func testEntry(id, accountID string, entryType enums.EntryType, amount int64, day int, origin enums.EntryOrigin) Entry {
	return Entry{
		ID:         id,
		AccountID:  accountID,
		Type:       entryType,
		Amount:     decimal.NewFromInt(amount),
		OccurredAt: time.Date(2025, 5, day, 0, 0, 0, 0, time.UTC),
		DateValid:  true,
		Origin:     origin,
	}
}

func TestMergeDedupIdempotence(t *testing.T) {
	remote := []Entry{testEntry("r1", "a", enums.EntryTypeGiven, 500, 1, enums.EntryOriginRemote)}
	pending := []Entry{testEntry("p1", "a", enums.EntryTypePayment, 200, 2, enums.EntryOriginLocalPending)}

	once := Merge(remote, pending, nil)
	twice := Merge(once, pending, nil)

	if len(once) != 2 || len(twice) != 2 {
		t.Fatalf("merge sizes = %d then %d, want 2 both times", len(once), len(twice))
	}

	seen := map[string]struct{}{}
	for _, entry := range twice {
		key := entry.IdentityKey()
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate identity %s survived merge", key)
		}
		seen[key] = struct{}{}
	}
}

func TestMergeSuppressesDerivedWhenRemotePresent(t *testing.T) {
	remote := []Entry{testEntry("r1", "dist-1", enums.EntryTypeGiven, 100, 1, enums.EntryOriginRemote)}
	derived := []Entry{
		testEntry("po-5", "dist-1", enums.EntryTypeGiven, 900, 2, enums.EntryOriginDerived),
		testEntry("po-6", "dist-2", enums.EntryTypeGiven, 300, 2, enums.EntryOriginDerived),
	}

	merged := Merge(remote, nil, derived)

	for _, entry := range merged {
		if entry.AccountID == "dist-1" && entry.Origin == enums.EntryOriginDerived {
			t.Fatal("derived entry for an account with remote data must be suppressed")
		}
	}
	// dist-2 has no remote rows, so its reconstruction survives.
	found := false
	for _, entry := range merged {
		if entry.ID == "po-6" {
			found = true
		}
	}
	if !found {
		t.Fatal("derived entry for a remote-less account should be kept")
	}
}

func TestMergeRemoteWinsOnIDCollision(t *testing.T) {
	remote := []Entry{testEntry("po-77", "dist-1", enums.EntryTypeGiven, 1200, 1, enums.EntryOriginRemote)}
	derived := []Entry{testEntry("po-77", "dist-1", enums.EntryTypeGiven, 1200, 1, enums.EntryOriginDerived)}

	merged := Merge(remote, nil, derived)
	if len(merged) != 1 {
		t.Fatalf("merged = %d, want 1", len(merged))
	}
	if merged[0].Origin != enums.EntryOriginRemote {
		t.Fatalf("origin = %s, want remote to win", merged[0].Origin)
	}
}

func TestMergePromotesPendingByCompositeMatch(t *testing.T) {
	// The server recorded the same transaction under its own id; the locally
	// queued copy must not double count.
	remote := Entry{
		ID:         "srv-42",
		AccountID:  "a",
		Type:       enums.EntryTypeGiven,
		Amount:     decimal.NewFromInt(500),
		OccurredAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		DateValid:  true,
		Reference:  "INV-1",
		Origin:     enums.EntryOriginRemote,
	}
	local := remote
	local.ID = "local-abc"
	local.Origin = enums.EntryOriginLocalPending

	merged := Merge([]Entry{remote}, []Entry{local}, nil)
	if len(merged) != 1 {
		t.Fatalf("merged = %d, want 1", len(merged))
	}
	if merged[0].ID != "srv-42" {
		t.Fatalf("kept id = %s, want the remote row", merged[0].ID)
	}
}

func TestMergeKeepsPendingWithoutRemoteTwin(t *testing.T) {
	remote := []Entry{testEntry("r1", "a", enums.EntryTypeGiven, 500, 1, enums.EntryOriginRemote)}
	pending := []Entry{testEntry("local-1", "a", enums.EntryTypePayment, 200, 3, enums.EntryOriginLocalPending)}

	merged := Merge(remote, pending, nil)
	if len(merged) != 2 {
		t.Fatalf("merged = %d, want 2: pending entries resurface until confirmed", len(merged))
	}
}

func TestMergeEmptyRemoteUsesPendingAndDerived(t *testing.T) {
	pending := []Entry{testEntry("local-1", "a", enums.EntryTypeGiven, 50, 1, enums.EntryOriginLocalPending)}
	derived := []Entry{testEntry("po-9", "a", enums.EntryTypeGiven, 200, 2, enums.EntryOriginDerived)}

	merged := Merge(nil, pending, derived)
	if len(merged) != 2 {
		t.Fatalf("merged = %d, want best-effort reconstruction of 2", len(merged))
	}
}
