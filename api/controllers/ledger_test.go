package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/internal/ledger"
	pkgerrors "github.com/rsinghdev/storekhata-backend/pkg/errors"
	"github.com/rsinghdev/storekhata-backend/pkg/logger"
)

type testViewService struct {
	accountFn func(ctx context.Context, accountID string) (*ledger.View, error)
	allFn     func(ctx context.Context, kind string) (*ledger.View, error)
}

func (s *testViewService) AccountView(ctx context.Context, accountID string) (*ledger.View, error) {
	if s.accountFn != nil {
		return s.accountFn(ctx, accountID)
	}
	return &ledger.View{}, nil
}

func (s *testViewService) AllAccountsView(ctx context.Context, kind string) (*ledger.View, error) {
	if s.allFn != nil {
		return s.allFn(ctx, kind)
	}
	return &ledger.View{}, nil
}

type testRemoteWriter struct {
	err error
}

func (w *testRemoteWriter) Add(ctx context.Context, accountID string, input ledger.AddTransaction) (ledger.RawRecord, error) {
	if w.err != nil {
		return ledger.RawRecord{}, w.err
	}
	return ledger.RawRecord{
		ID:        "srv-1",
		AccountID: accountID,
		Type:      input.Type,
		Amount:    input.Amount.String(),
	}, nil
}

type testPendingStore struct {
	entries []ledger.Entry
}

func (p *testPendingStore) Append(ctx context.Context, entry ledger.Entry) error {
	p.entries = append(p.entries, entry)
	return nil
}

func (p *testPendingStore) List(ctx context.Context, accountID string) ([]ledger.Entry, error) {
	return p.entries, nil
}

func controllerTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withAccountParam(req *http.Request, accountID string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("accountID", accountID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func newTestWriter(t *testing.T, remote ledger.RemoteWriter, views ledger.ViewService) *ledger.Writer {
	t.Helper()
	writer, err := ledger.NewWriter(ledger.WriterParams{
		Remote:  remote,
		Pending: &testPendingStore{},
		Views:   views,
		Logger:  controllerTestLogger(),
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	return writer
}

func TestAccountLedgerReturnsView(t *testing.T) {
	svc := &testViewService{
		accountFn: func(ctx context.Context, accountID string) (*ledger.View, error) {
			if accountID != "acct-1" {
				t.Fatalf("accountID = %s", accountID)
			}
			return &ledger.View{Degraded: true, DegradedReason: "remote ledger unreachable; showing cached and local data"}, nil
		},
	}

	req := withAccountParam(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-1/ledger", nil), "acct-1")
	resp := httptest.NewRecorder()
	AccountLedger(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var envelope struct {
		Data ledger.View `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data.Degraded {
		t.Fatal("degraded flag should survive serialization")
	}
}

func TestAccountLedgerAuthFailureMapsTo401(t *testing.T) {
	svc := &testViewService{
		accountFn: func(ctx context.Context, accountID string) (*ledger.View, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
		},
	}

	req := withAccountParam(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-1/ledger", nil), "acct-1")
	resp := httptest.NewRecorder()
	AccountLedger(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 so the client resets its session", resp.Code)
	}
}

func TestAllLedgerRejectsUnknownKind(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger?kind=wholesale", nil)
	resp := httptest.NewRecorder()
	AllLedger(&testViewService{}, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestAddLedgerEntryCreated(t *testing.T) {
	writer := newTestWriter(t, &testRemoteWriter{}, &testViewService{})

	body := `{"type":"payment","amount":"75"}`
	req := withAccountParam(httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acct-1/ledger", strings.NewReader(body)), "acct-1")
	resp := httptest.NewRecorder()
	AddLedgerEntry(writer, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data ledger.WriteResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Queued {
		t.Fatal("remote success should not report queued")
	}
	if !envelope.Data.Entry.Amount.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("amount = %s", envelope.Data.Entry.Amount)
	}
}

func TestAddLedgerEntryQueuedReturnsAccepted(t *testing.T) {
	remote := &testRemoteWriter{err: pkgerrors.New(pkgerrors.CodeDependency, "gateway timeout")}
	writer := newTestWriter(t, remote, &testViewService{})

	body := `{"type":"given","amount":"120"}`
	req := withAccountParam(httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acct-1/ledger", strings.NewReader(body)), "acct-1")
	resp := httptest.NewRecorder()
	AddLedgerEntry(writer, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 for a locally queued entry", resp.Code)
	}
}

func TestAddLedgerEntryRejectsBadBody(t *testing.T) {
	writer := newTestWriter(t, &testRemoteWriter{}, &testViewService{})

	req := withAccountParam(httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acct-1/ledger", strings.NewReader(`{"type":`)), "acct-1")
	resp := httptest.NewRecorder()
	AddLedgerEntry(writer, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.Code)
	}
}

type testBalanceSource struct {
	balance decimal.Decimal
	err     error
}

func (s *testBalanceSource) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return s.balance, s.err
}

func TestAccountBalanceRemoteFigure(t *testing.T) {
	remote := &testBalanceSource{balance: decimal.NewFromInt(400)}

	req := withAccountParam(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-1/balance", nil), "acct-1")
	resp := httptest.NewRecorder()
	AccountBalance(remote, &testViewService{}, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var envelope struct {
		Data balancePayload `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data.Balance.Equal(decimal.NewFromInt(400)) || envelope.Data.Degraded {
		t.Fatalf("payload = %+v", envelope.Data)
	}
}

func TestAccountBalanceFallsBackToReconciledView(t *testing.T) {
	remote := &testBalanceSource{err: pkgerrors.New(pkgerrors.CodeDependency, "balance route missing")}
	svc := &testViewService{
		accountFn: func(ctx context.Context, accountID string) (*ledger.View, error) {
			return &ledger.View{Summary: ledger.Summary{Label: "Balance", Value: decimal.NewFromInt(250)}}, nil
		},
	}

	req := withAccountParam(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-1/balance", nil), "acct-1")
	resp := httptest.NewRecorder()
	AccountBalance(remote, svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var envelope struct {
		Data balancePayload `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data.Balance.Equal(decimal.NewFromInt(250)) || !envelope.Data.Degraded {
		t.Fatalf("payload = %+v", envelope.Data)
	}
}

func TestAccountBalanceAuthFailurePropagates(t *testing.T) {
	remote := &testBalanceSource{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "token expired")}

	req := withAccountParam(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-1/balance", nil), "acct-1")
	resp := httptest.NewRecorder()
	AccountBalance(remote, &testViewService{}, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 so the client resets its session", resp.Code)
	}
}
