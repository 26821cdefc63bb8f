package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fastprodman/betledger/internal/services/wagering"
)

// NewRouter constructs the chi router with all API endpoints registered.
// The three route params eventID/marketID/authority address a market; a bet
// adds betID/bettor.
func NewRouter(svc *wagering.Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/markets", h.CreateMarketHandler)

	r.Route("/markets/{eventID}/{marketID}/{authority}", func(r chi.Router) {
		r.Get("/", h.GetMarketHandler)
		r.Post("/open", h.OpenMarketHandler)
		r.Post("/close", h.CloseMarketHandler)
		r.Post("/odds", h.UpdateOddsHandler)
		r.Post("/settle", h.SettleMarketHandler)

		r.Post("/bets", h.PlaceBetHandler)
		r.Get("/bets/{betID}/{bettor}", h.GetBetHandler)
		r.Post("/bets/{betID}/{bettor}/settle", h.SettleBetHandler)
	})

	r.Get("/accounts/{address}/balance", h.GetBalanceHandler)

	return r
}
