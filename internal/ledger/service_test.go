package ledger

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/pkg/enums"
	pkgerrors "github.com/rsinghdev/storekhata-backend/pkg/errors"
	"github.com/rsinghdev/storekhata-backend/pkg/logger"
)

type fakeRemote struct {
	historyFn func(ctx context.Context, accountID string) ([]RawRecord, error)
	allFn     func(ctx context.Context, kind string) ([]RawRecord, error)
	ordersFn  func(ctx context.Context, distributorID string) ([]ConfirmedOrder, error)
}

func (f *fakeRemote) History(ctx context.Context, accountID string) ([]RawRecord, error) {
	if f.historyFn != nil {
		return f.historyFn(ctx, accountID)
	}
	return nil, nil
}

func (f *fakeRemote) All(ctx context.Context, kind string) ([]RawRecord, error) {
	if f.allFn != nil {
		return f.allFn(ctx, kind)
	}
	return nil, nil
}

func (f *fakeRemote) ConfirmedPurchaseOrders(ctx context.Context, distributorID string) ([]ConfirmedOrder, error) {
	if f.ordersFn != nil {
		return f.ordersFn(ctx, distributorID)
	}
	return nil, nil
}

type fakePending struct {
	mu        sync.Mutex
	entries   []Entry
	listErr   error
	appendErr error
	appended  []Entry
}

func (f *fakePending) Append(ctx context.Context, entry Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, entry)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakePending) List(ctx context.Context, accountID string) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if accountID == "" {
		return append([]Entry(nil), f.entries...), nil
	}
	var out []Entry
	for _, entry := range f.entries {
		if entry.AccountID == accountID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu     sync.Mutex
	views  map[string]*View
	writes int
}

func (f *fakeCache) GetView(ctx context.Context, scope string) (*View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.views == nil {
		return nil, nil
	}
	return f.views[scope], nil
}

func (f *fakeCache) SetView(ctx context.Context, scope string, view *View, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.views == nil {
		f.views = make(map[string]*View)
	}
	f.views[scope] = view
	f.writes++
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, remote RemoteSource, pending PendingStore, cache SnapshotCache) ViewService {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Remote:  remote,
		Pending: pending,
		Cache:   cache,
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestAccountViewHappyPath(t *testing.T) {
	remote := &fakeRemote{
		historyFn: func(ctx context.Context, accountID string) ([]RawRecord, error) {
			return []RawRecord{
				{ID: "r1", AccountID: accountID, Type: "given", Amount: "500", Date: "2025-05-01"},
				{ID: "r2", AccountID: accountID, Type: "payment", Amount: "200", Date: "2025-05-02"},
			}, nil
		},
	}
	cache := &fakeCache{}
	svc := newTestService(t, remote, &fakePending{}, cache)

	view, err := svc.AccountView(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("AccountView: %v", err)
	}
	if view.Degraded {
		t.Fatal("live remote read should not be degraded")
	}
	if view.Summary.Value.String() != "300" {
		t.Fatalf("summary = %s, want 300", view.Summary.Value)
	}
	if cache.writes != 1 {
		t.Fatalf("snapshot writes = %d, want 1", cache.writes)
	}
}

func TestAccountViewPropagatesAuthFailure(t *testing.T) {
	remote := &fakeRemote{
		historyFn: func(ctx context.Context, accountID string) ([]RawRecord, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
		},
	}
	svc := newTestService(t, remote, &fakePending{}, nil)

	_, err := svc.AccountView(context.Background(), "acct-1")
	if err == nil {
		t.Fatal("expected auth failure to propagate")
	}
	if !pkgerrors.IsUnauthorized(err) {
		t.Fatalf("error should stay typed unauthorized, got %v", err)
	}
}

func TestAccountViewDegradesToCachedAndLocal(t *testing.T) {
	cache := &fakeCache{views: map[string]*View{
		"account:acct-1": {
			Entries: []Entry{
				testEntry("r1", "acct-1", enums.EntryTypeGiven, 500, 1, enums.EntryOriginRemote),
				testEntry("stale-derived", "acct-1", enums.EntryTypeGiven, 999, 1, enums.EntryOriginDerived),
			},
		},
	}}
	pending := &fakePending{entries: []Entry{
		testEntry("local-1", "acct-1", enums.EntryTypePayment, 100, 3, enums.EntryOriginLocalPending),
	}}
	remote := &fakeRemote{
		historyFn: func(ctx context.Context, accountID string) ([]RawRecord, error) {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "connection refused")
		},
	}
	svc := newTestService(t, remote, pending, cache)

	view, err := svc.AccountView(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("degraded view should not error: %v", err)
	}
	if !view.Degraded || view.DegradedReason == "" {
		t.Fatal("view should be marked degraded with a reason")
	}
	// Cached remote entry + live pending entry; the snapshot's derived entry
	// is not replayed as remote data.
	if view.Summary.Value.String() != "400" {
		t.Fatalf("summary = %s, want 400 (500 cached - 100 pending)", view.Summary.Value)
	}
	writesBefore := cache.writes
	if writesBefore != 0 {
		t.Fatalf("degraded views must not overwrite the snapshot, writes = %d", writesBefore)
	}
}

func TestAccountViewProjectsOrdersWhenRemoteEmpty(t *testing.T) {
	remote := &fakeRemote{
		ordersFn: func(ctx context.Context, distributorID string) ([]ConfirmedOrder, error) {
			return []ConfirmedOrder{{
				ID:            "77",
				DistributorID: distributorID,
				Status:        enums.PurchaseOrderStatusConfirmed,
				Total:         decimal.NewFromInt(1200),
				OrderedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			}}, nil
		},
	}
	svc := newTestService(t, remote, &fakePending{}, nil)

	view, err := svc.AccountView(context.Background(), "dist-1")
	if err != nil {
		t.Fatalf("AccountView: %v", err)
	}
	if len(view.Entries) != 1 || view.Entries[0].ID != "po-77" {
		t.Fatalf("entries = %+v, want the single derived po-77", view.Entries)
	}
	if view.Summary.Value.String() != "1200" {
		t.Fatalf("summary = %s, want 1200", view.Summary.Value)
	}
}

func TestAccountViewRemoteRowSupersedesDerived(t *testing.T) {
	remote := &fakeRemote{
		historyFn: func(ctx context.Context, accountID string) ([]RawRecord, error) {
			return []RawRecord{
				{ID: "po-77", AccountID: accountID, Type: "given", Amount: "1200", Date: "2025-06-01"},
			}, nil
		},
		ordersFn: func(ctx context.Context, distributorID string) ([]ConfirmedOrder, error) {
			t.Fatal("orders must not be fetched when remote data exists")
			return nil, nil
		},
	}
	svc := newTestService(t, remote, &fakePending{}, nil)

	view, err := svc.AccountView(context.Background(), "dist-1")
	if err != nil {
		t.Fatalf("AccountView: %v", err)
	}
	if len(view.Entries) != 1 {
		t.Fatalf("entries = %d, want only the real ledger row", len(view.Entries))
	}
	if view.Entries[0].Origin != enums.EntryOriginRemote {
		t.Fatalf("origin = %s, want remote", view.Entries[0].Origin)
	}
}

func TestAllAccountsView(t *testing.T) {
	remote := &fakeRemote{
		allFn: func(ctx context.Context, kind string) ([]RawRecord, error) {
			return []RawRecord{
				{ID: "a1", AccountID: "a", Type: "given", Amount: "500", Date: "2025-05-01"},
				{ID: "a2", AccountID: "a", Type: "payment", Amount: "200", Date: "2025-05-02"},
				{ID: "b1", AccountID: "b", Type: "given", Amount: "100", Date: "2025-05-01"},
				{ID: "b2", AccountID: "b", Type: "payment", Amount: "150", Date: "2025-05-02"},
			}, nil
		},
	}
	svc := newTestService(t, remote, &fakePending{}, nil)

	view, err := svc.AllAccountsView(context.Background(), "")
	if err != nil {
		t.Fatalf("AllAccountsView: %v", err)
	}
	if view.Summary.Value.String() != "250" {
		t.Fatalf("net = %s, want 250", view.Summary.Value)
	}
}

func TestAccountViewPendingStoreFailureDegradesGracefully(t *testing.T) {
	remote := &fakeRemote{
		historyFn: func(ctx context.Context, accountID string) ([]RawRecord, error) {
			return []RawRecord{{ID: "r1", AccountID: accountID, Type: "given", Amount: "50", Date: "2025-05-01"}}, nil
		},
	}
	pending := &fakePending{listErr: errors.New("disk error")}
	svc := newTestService(t, remote, pending, nil)

	view, err := svc.AccountView(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("local storage corruption must not fail the view: %v", err)
	}
	if view.Summary.Value.String() != "50" {
		t.Fatalf("summary = %s, want 50", view.Summary.Value)
	}
}

func TestStaleResponseDoesNotOverwriteSnapshot(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var callCount int
	var mu sync.Mutex

	remote := &fakeRemote{
		historyFn: func(ctx context.Context, accountID string) ([]RawRecord, error) {
			mu.Lock()
			callCount++
			first := callCount == 1
			mu.Unlock()
			if first {
				close(started)
				<-release
				return []RawRecord{{ID: "old", AccountID: accountID, Type: "given", Amount: "1", Date: "2025-01-01"}}, nil
			}
			return []RawRecord{{ID: "new", AccountID: accountID, Type: "given", Amount: "2", Date: "2025-01-02"}}, nil
		},
	}
	cache := &fakeCache{}
	svc := newTestService(t, remote, &fakePending{}, cache)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.AccountView(context.Background(), "acct-1"); err != nil {
			t.Errorf("slow request: %v", err)
		}
	}()

	<-started
	if _, err := svc.AccountView(context.Background(), "acct-1"); err != nil {
		t.Fatalf("fast request: %v", err)
	}
	close(release)
	<-done

	if cache.writes != 1 {
		t.Fatalf("snapshot writes = %d, want only the newest request's", cache.writes)
	}
	snapshot, _ := cache.GetView(context.Background(), "account:acct-1")
	if snapshot == nil || len(snapshot.Entries) != 1 || snapshot.Entries[0].ID != "new" {
		t.Fatalf("snapshot should hold the newer result, got %+v", snapshot)
	}
}
