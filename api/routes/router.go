package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rsinghdev/storekhata-backend/api/controllers"
	"github.com/rsinghdev/storekhata-backend/api/middleware"
	"github.com/rsinghdev/storekhata-backend/internal/accounts"
	"github.com/rsinghdev/storekhata-backend/internal/ledger"
	"github.com/rsinghdev/storekhata-backend/pkg/config"
	"github.com/rsinghdev/storekhata-backend/pkg/logger"
)

// RouterParams collects the services the HTTP surface exposes.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Accounts accounts.Service
	Views    ledger.ViewService
	Writer   *ledger.Writer
	Remote   controllers.BalanceSource
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", controllers.ListAccounts(params.Accounts, logg))
			r.Post("/", controllers.CreateAccount(params.Accounts, logg))
			r.Get("/{accountID}", controllers.GetAccount(params.Accounts, logg))
			r.Get("/{accountID}/ledger", controllers.AccountLedger(params.Views, logg))
			r.Get("/{accountID}/balance", controllers.AccountBalance(params.Remote, params.Views, logg))
			r.Post("/{accountID}/ledger", controllers.AddLedgerEntry(params.Writer, logg))
		})

		r.Get("/ledger", controllers.AllLedger(params.Views, logg))
	})

	return r
}
