package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/api/responses"
	"github.com/rsinghdev/storekhata-backend/api/validators"
	"github.com/rsinghdev/storekhata-backend/internal/ledger"
	pkgerrors "github.com/rsinghdev/storekhata-backend/pkg/errors"
	"github.com/rsinghdev/storekhata-backend/pkg/logger"
)

// AccountLedger returns the reconciled ledger view for one account.
func AccountLedger(views ledger.ViewService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if views == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		accountID := strings.TrimSpace(chi.URLParam(r, "accountID"))
		if accountID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "account id required"))
			return
		}

		view, err := views.AccountView(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// AllLedger returns the reconciled ledger view across every account.
func AllLedger(views ledger.ViewService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if views == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		kind, err := validators.ParseQueryEnum(r, "kind", "", "customer", "distributor")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := views.AllAccountsView(r.Context(), kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// BalanceSource exposes the remote ledger's own balance figure.
type BalanceSource interface {
	Balance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

type balancePayload struct {
	Balance  decimal.Decimal `json:"balance"`
	Degraded bool            `json:"degraded"`
}

// AccountBalance returns the remote ledger's balance for one account, falling
// back to the locally reconciled figure when the remote is unreachable. A 401
// from the remote still propagates so the session gets reset.
func AccountBalance(remote BalanceSource, views ledger.ViewService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if remote == nil || views == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		accountID := strings.TrimSpace(chi.URLParam(r, "accountID"))
		if accountID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "account id required"))
			return
		}

		balance, err := remote.Balance(r.Context(), accountID)
		if err == nil {
			responses.WriteSuccess(w, balancePayload{Balance: balance})
			return
		}
		if pkgerrors.IsUnauthorized(err) {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logg.Warn(logg.WithAccountID(r.Context(), accountID), "remote balance unavailable, serving reconciled figure")
		view, viewErr := views.AccountView(r.Context(), accountID)
		if viewErr != nil {
			responses.WriteError(r.Context(), logg, w, viewErr)
			return
		}
		responses.WriteSuccess(w, balancePayload{Balance: view.Summary.Value, Degraded: true})
	}
}

// AddLedgerEntry records a transaction, falling back to the local queue when
// the remote ledger is unreachable.
func AddLedgerEntry(writer *ledger.Writer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if writer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger writer unavailable"))
			return
		}

		accountID := strings.TrimSpace(chi.URLParam(r, "accountID"))
		if accountID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "account id required"))
			return
		}

		var input ledger.AddTransaction
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := writer.Write(r.Context(), accountID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Queued {
			// The entry is durably queued but not yet on the remote ledger.
			status = http.StatusAccepted
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
