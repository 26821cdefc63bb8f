package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/repos/accounts"
	"github.com/fastprodman/betledger/internal/repos/bets"
	"github.com/fastprodman/betledger/internal/repos/markets"
	"github.com/fastprodman/betledger/internal/services/wagering"
)

// callerHeader carries the caller's verified account address. The upstream
// gateway authenticates the request; this service only compares identities.
const callerHeader = "X-Account-Address"

// HandlerProvider wraps the wagering service and exposes HTTP handlers.
type HandlerProvider struct {
	svc *wagering.Service
}

// NewHandler returns a new handler provider.
func NewHandler(svc *wagering.Service) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Validation is
// 400, identity mismatch 403, unknown records 404, state-machine and funding
// conflicts 409. A short escrow on a declared win is a ledger-integrity
// failure and is reported as 500, never as a partial payout.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, betting.ErrInvalidOutcomes),
		errors.Is(err, betting.ErrInvalidOutcome),
		errors.Is(err, betting.ErrInvalidSelection),
		errors.Is(err, betting.ErrInvalidStake),
		errors.Is(err, betting.ErrInvalidOdds),
		errors.Is(err, betting.ErrInvalidLine),
		errors.Is(err, betting.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, betting.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "unauthorized")
	case errors.Is(err, markets.ErrNotFound):
		writeError(w, http.StatusNotFound, "market not found")
	case errors.Is(err, bets.ErrNotFound):
		writeError(w, http.StatusNotFound, "bet not found")
	case errors.Is(err, accounts.ErrNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, markets.ErrAlreadyExists),
		errors.Is(err, bets.ErrAlreadyExists),
		errors.Is(err, betting.ErrInvalidBetSequence),
		errors.Is(err, betting.ErrMarketClosed),
		errors.Is(err, betting.ErrMarketSettled),
		errors.Is(err, betting.ErrMarketOpen),
		errors.Is(err, betting.ErrMarketNotSettled),
		errors.Is(err, betting.ErrBetSettled),
		errors.Is(err, betting.ErrBetMismatch),
		errors.Is(err, betting.ErrStakeTooHigh),
		errors.Is(err, accounts.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, betting.ErrInsufficientEscrow):
		slog.Error("escrow cannot cover declared win", "error", err)
		writeError(w, http.StatusInternalServerError, "insufficient escrow")
	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func caller(r *http.Request) (betting.AccountID, error) {
	addr := r.Header.Get(callerHeader)
	if addr == "" {
		return "", fmt.Errorf("missing %s header", callerHeader)
	}

	return betting.AccountID(addr), nil
}

func parseUint32Param(r *http.Request, name string) (uint32, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}

	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}

	return uint32(v), nil
}

func marketKeyFromPath(r *http.Request) (betting.MarketKey, error) {
	eventID, err := parseUint32Param(r, "eventID")
	if err != nil {
		return betting.MarketKey{}, err
	}

	marketID, err := parseUint32Param(r, "marketID")
	if err != nil {
		return betting.MarketKey{}, err
	}

	authority := chi.URLParam(r, "authority")
	if authority == "" {
		return betting.MarketKey{}, fmt.Errorf("missing authority")
	}

	return betting.MarketKey{
		EventID:   eventID,
		MarketID:  marketID,
		Authority: betting.AccountID(authority),
	}, nil
}

func betKeyFromPath(r *http.Request) (betting.BetKey, error) {
	marketKey, err := marketKeyFromPath(r)
	if err != nil {
		return betting.BetKey{}, err
	}

	betID, err := parseUint32Param(r, "betID")
	if err != nil {
		return betting.BetKey{}, err
	}

	bettor := chi.URLParam(r, "bettor")
	if bettor == "" {
		return betting.BetKey{}, fmt.Errorf("missing bettor")
	}

	return betting.BetKey{
		EventID:  marketKey.EventID,
		MarketID: marketKey.MarketID,
		BetID:    betID,
		Bettor:   betting.AccountID(bettor),
	}, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}

		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// --- Response shapes ---

type marketResponse struct {
	EventID    uint32   `json:"eventId"`
	MarketID   uint32   `json:"marketId"`
	Authority  string   `json:"authority"`
	EventName  string   `json:"eventName"`
	MarketName string   `json:"marketName"`
	Outcomes   uint8    `json:"outcomes"`
	Line       *uint16  `json:"line,omitempty"`
	Labels     []string `json:"labels"`
	Odds       []uint32 `json:"odds"`
	Status     string   `json:"status"`
	Winner     uint8    `json:"winner,omitempty"`
	LastBetID  uint32   `json:"lastBetId"`
	MaxWin     int64    `json:"maxWin"`
	Escrow     int64    `json:"escrow"`
}

func toMarketResponse(m *betting.Market) marketResponse {
	return marketResponse{
		EventID:    m.EventID,
		MarketID:   m.MarketID,
		Authority:  string(m.Authority),
		EventName:  m.EventName,
		MarketName: m.MarketName,
		Outcomes:   m.Outcomes,
		Line:       m.Line,
		Labels:     m.Labels,
		Odds:       m.Odds,
		Status:     m.Status.String(),
		Winner:     uint8(m.Winner),
		LastBetID:  m.LastBetID,
		MaxWin:     m.MaxWin,
		Escrow:     m.Escrow,
	}
}

type betResponse struct {
	EventID        uint32 `json:"eventId"`
	MarketID       uint32 `json:"marketId"`
	BetID          uint32 `json:"betId"`
	Bettor         string `json:"bettor"`
	Authority      string `json:"authority"`
	Selection      uint8  `json:"selection"`
	Stake          uint64 `json:"stake"`
	Odds           uint32 `json:"odds"`
	ExpectedPayout int64  `json:"expectedPayout"`
	Settled        bool   `json:"settled"`
	Result         string `json:"result"`
}

func toBetResponse(b *betting.Bet) betResponse {
	return betResponse{
		EventID:        b.EventID,
		MarketID:       b.MarketID,
		BetID:          b.BetID,
		Bettor:         string(b.Bettor),
		Authority:      string(b.Authority),
		Selection:      uint8(b.Selection),
		Stake:          b.Stake,
		Odds:           b.Odds,
		ExpectedPayout: b.ExpectedPayout,
		Settled:        b.Settled,
		Result:         string(b.Result),
	}
}

// formatTokens renders a base-unit amount as whole tokens with nine decimals.
func formatTokens(baseUnits int64) string {
	return decimal.New(baseUnits, -9).StringFixed(9)
}

// --- Market handlers ---

type createMarketRequest struct {
	EventID    uint32   `json:"eventId"`
	MarketID   uint32   `json:"marketId"`
	EventName  string   `json:"eventName"`
	MarketName string   `json:"marketName"`
	Outcomes   uint8    `json:"outcomes"`
	Line       *uint16  `json:"line,omitempty"`
	Labels     []string `json:"labels"`
	Odds       []uint32 `json:"odds"`
}

// CreateMarketHandler handles POST /markets. The caller becomes the market
// authority.
func (h *HandlerProvider) CreateMarketHandler(w http.ResponseWriter, r *http.Request) {
	acct, err := caller(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req createMarketRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.svc.CreateMarket(r.Context(), acct, betting.MarketParams{
		EventID:    req.EventID,
		MarketID:   req.MarketID,
		EventName:  req.EventName,
		MarketName: req.MarketName,
		Outcomes:   req.Outcomes,
		Line:       req.Line,
		Labels:     req.Labels,
		Odds:       req.Odds,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMarketResponse(m))
}

// GetMarketHandler handles GET /markets/{eventID}/{marketID}/{authority}.
func (h *HandlerProvider) GetMarketHandler(w http.ResponseWriter, r *http.Request) {
	key, err := marketKeyFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.svc.GetMarket(r.Context(), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMarketResponse(m))
}

func (h *HandlerProvider) marketAction(
	w http.ResponseWriter,
	r *http.Request,
	act func(caller betting.AccountID, key betting.MarketKey) (*betting.Market, error),
) {
	acct, err := caller(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	key, err := marketKeyFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := act(acct, key)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMarketResponse(m))
}

// OpenMarketHandler handles POST .../open.
func (h *HandlerProvider) OpenMarketHandler(w http.ResponseWriter, r *http.Request) {
	h.marketAction(w, r, func(acct betting.AccountID, key betting.MarketKey) (*betting.Market, error) {
		return h.svc.OpenMarket(r.Context(), acct, key)
	})
}

// CloseMarketHandler handles POST .../close.
func (h *HandlerProvider) CloseMarketHandler(w http.ResponseWriter, r *http.Request) {
	h.marketAction(w, r, func(acct betting.AccountID, key betting.MarketKey) (*betting.Market, error) {
		return h.svc.CloseMarket(r.Context(), acct, key)
	})
}

type updateOddsRequest struct {
	Odds []uint32 `json:"odds"`
}

// UpdateOddsHandler handles POST .../odds.
func (h *HandlerProvider) UpdateOddsHandler(w http.ResponseWriter, r *http.Request) {
	var req updateOddsRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.marketAction(w, r, func(acct betting.AccountID, key betting.MarketKey) (*betting.Market, error) {
		return h.svc.UpdateOdds(r.Context(), acct, key, req.Odds)
	})
}

type settleMarketRequest struct {
	WinningOutcome uint8 `json:"winningOutcome"`
}

// SettleMarketHandler handles POST .../settle.
func (h *HandlerProvider) SettleMarketHandler(w http.ResponseWriter, r *http.Request) {
	var req settleMarketRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.marketAction(w, r, func(acct betting.AccountID, key betting.MarketKey) (*betting.Market, error) {
		return h.svc.SettleMarket(r.Context(), acct, key, betting.Outcome(req.WinningOutcome))
	})
}

// --- Bet handlers ---

type placeBetRequest struct {
	BetID     uint32 `json:"betId"`
	Selection uint8  `json:"selection"`
	Stake     uint64 `json:"stake"`
}

// PlaceBetHandler handles POST .../bets. The caller is the bettor.
func (h *HandlerProvider) PlaceBetHandler(w http.ResponseWriter, r *http.Request) {
	acct, err := caller(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	key, err := marketKeyFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req placeBetRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.svc.PlaceBet(r.Context(), acct, wagering.PlaceBetParams{
		Bettor:    acct,
		EventID:   key.EventID,
		MarketID:  key.MarketID,
		Authority: key.Authority,
		BetID:     req.BetID,
		Selection: betting.Outcome(req.Selection),
		Stake:     req.Stake,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBetResponse(b))
}

// GetBetHandler handles GET .../bets/{betID}/{bettor}.
func (h *HandlerProvider) GetBetHandler(w http.ResponseWriter, r *http.Request) {
	key, err := betKeyFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.svc.GetBet(r.Context(), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBetResponse(b))
}

// SettleBetHandler handles POST .../bets/{betID}/{bettor}/settle. The caller
// must be the market authority.
func (h *HandlerProvider) SettleBetHandler(w http.ResponseWriter, r *http.Request) {
	acct, err := caller(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	key, err := betKeyFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	authority := betting.AccountID(chi.URLParam(r, "authority"))

	b, err := h.svc.SettleBet(r.Context(), acct, authority, key)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBetResponse(b))
}

// --- Account handlers ---

// GetBalanceHandler handles GET /accounts/{address}/balance.
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), betting.AccountID(address))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address":          address,
		"balance":          formatTokens(balance),
		"balanceBaseUnits": balance,
	})
}
