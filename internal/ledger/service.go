package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rsinghdev/storekhata-backend/pkg/enums"
	pkgerrors "github.com/rsinghdev/storekhata-backend/pkg/errors"
	"github.com/rsinghdev/storekhata-backend/pkg/logger"
	"github.com/rsinghdev/storekhata-backend/pkg/metrics"
)

// RemoteSource reads the authoritative ledger and the confirmed-order source.
type RemoteSource interface {
	History(ctx context.Context, accountID string) ([]RawRecord, error)
	All(ctx context.Context, kind string) ([]RawRecord, error)
	ConfirmedPurchaseOrders(ctx context.Context, distributorID string) ([]ConfirmedOrder, error)
}

// PendingStore is the durable local queue of entries awaiting a remote write.
type PendingStore interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, accountID string) ([]Entry, error)
}

// View is the computed, display-ready result of one reconciliation pass.
type View struct {
	Entries  []Entry `json:"entries"`
	Summary  Summary `json:"summary"`
	Warnings int     `json:"warnings,omitempty"`

	// Degraded marks a view built without a live remote read; the balance is
	// best-effort from cached and local data.
	Degraded       bool   `json:"degraded"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

// ViewService runs the fetch → merge → compute → summarize pipeline.
type ViewService interface {
	AccountView(ctx context.Context, accountID string) (*View, error)
	AllAccountsView(ctx context.Context, kind string) (*View, error)
}

// ServiceParams wires a view service.
type ServiceParams struct {
	Remote      RemoteSource
	Pending     PendingStore
	Cache       SnapshotCache
	Logger      *logger.Logger
	Metrics     *metrics.LedgerMetrics
	SnapshotTTL time.Duration
	Clock       func() time.Time
}

type service struct {
	remote      RemoteSource
	pending     PendingStore
	cache       SnapshotCache
	logg        *logger.Logger
	metrics     *metrics.LedgerMetrics
	snapshotTTL time.Duration
	clock       func() time.Time
	guard       *requestGuard
}

const defaultSnapshotTTL = 24 * time.Hour

// NewService builds the reconciliation view service.
func NewService(params ServiceParams) (ViewService, error) {
	if params.Remote == nil {
		return nil, fmt.Errorf("remote source required")
	}
	if params.Pending == nil {
		return nil, fmt.Errorf("pending store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := params.SnapshotTTL
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		remote:      params.Remote,
		pending:     params.Pending,
		cache:       params.Cache,
		logg:        params.Logger,
		metrics:     params.Metrics,
		snapshotTTL: ttl,
		clock:       clock,
		guard:       newRequestGuard(),
	}, nil
}

func (s *service) AccountView(ctx context.Context, accountID string) (*View, error) {
	if accountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	ctx = s.logg.WithAccountID(ctx, accountID)
	scope := "account:" + accountID

	fetch := func(ctx context.Context) ([]RawRecord, error) {
		return s.remote.History(ctx, accountID)
	}
	return s.buildView(ctx, scope, "account", accountID, fetch)
}

func (s *service) AllAccountsView(ctx context.Context, kind string) (*View, error) {
	scope := "all"
	if kind != "" {
		scope = "all:" + kind
	}
	fetch := func(ctx context.Context) ([]RawRecord, error) {
		return s.remote.All(ctx, kind)
	}
	return s.buildView(ctx, scope, "all", "", fetch)
}

// buildView runs one reconciliation pass. The fetch is the only suspension
// point; merge, balance and summary run synchronously once sources resolved.
func (s *service) buildView(
	ctx context.Context,
	scope, viewLabel, accountID string,
	fetchRemote func(ctx context.Context) ([]RawRecord, error),
) (*View, error) {
	token := s.guard.begin(scope)
	start := s.clock()

	rawRemote, remoteErr := fetchRemote(ctx)
	if remoteErr != nil {
		if pkgerrors.IsUnauthorized(remoteErr) {
			// Auth failures are never retried or degraded around: the caller
			// resets the session.
			return nil, remoteErr
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", remoteErr.Error()), "remote ledger unreachable, degrading")
	}

	view := s.reconcile(ctx, scope, accountID, rawRemote, remoteErr)

	if s.metrics != nil {
		s.metrics.ObserveCompute(viewLabel, s.clock().Sub(start))
		if view.Degraded {
			s.metrics.IncDegraded(viewLabel)
		}
	}

	if !s.guard.isCurrent(scope, token) {
		// A newer request for this scope started while we were fetching; its
		// result supersedes ours, so skip the snapshot write.
		if s.metrics != nil {
			s.metrics.IncStaleDiscard()
		}
		s.logg.Info(ctx, "discarding stale view result")
		return view, nil
	}

	if !view.Degraded {
		s.storeSnapshot(ctx, scope, view)
	}
	return view, nil
}

func (s *service) reconcile(ctx context.Context, scope, accountID string, rawRemote []RawRecord, remoteErr error) *View {
	now := s.clock()

	remoteEntries, warnings := NormalizeAll(rawRemote, enums.EntryOriginRemote, now)

	degradedReason := ""
	if remoteErr != nil {
		degradedReason = "remote ledger unreachable; showing cached and local data"
		remoteEntries = s.cachedRemoteEntries(ctx, scope)
	}

	pendingEntries, err := s.pending.List(ctx, accountID)
	if err != nil {
		// Local storage problems never block the view.
		s.logg.Error(ctx, "pending store read failed", err)
		pendingEntries = nil
	}

	var derived []Entry
	if len(remoteEntries) == 0 {
		orders, err := s.remote.ConfirmedPurchaseOrders(ctx, accountID)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "confirmed order fetch failed")
		} else {
			derived = Project(orders, ExistingIDs(remoteEntries, pendingEntries))
		}
	}

	merged := Merge(remoteEntries, pendingEntries, derived)
	computed := ComputeBalances(merged)
	summary := Summarize(computed, accountID)

	return &View{
		Entries:        computed,
		Summary:        summary,
		Warnings:       warnings,
		Degraded:       remoteErr != nil,
		DegradedReason: degradedReason,
	}
}

// cachedRemoteEntries recovers the remote-origin entries of the last good
// snapshot; with the live source down they are the best authoritative data we
// have.
func (s *service) cachedRemoteEntries(ctx context.Context, scope string) []Entry {
	if s.cache == nil {
		return nil
	}
	snapshot, err := s.cache.GetView(ctx, scope)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "snapshot read failed")
		return nil
	}
	if snapshot == nil {
		return nil
	}
	var remote []Entry
	for _, entry := range snapshot.Entries {
		if entry.Origin == enums.EntryOriginRemote {
			remote = append(remote, entry)
		}
	}
	return remote
}

func (s *service) storeSnapshot(ctx context.Context, scope string, view *View) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetView(ctx, scope, view, s.snapshotTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "snapshot write failed")
	}
}
