package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"botdeck/internal/api/dto"
	"botdeck/internal/bot"
	"botdeck/internal/bot/service"
	"botdeck/internal/eventlog"
)

type Handler struct {
	Service *service.Service
	Events  *eventlog.Sink
	Logger  *zap.Logger
}

func NewHandler(svc *service.Service, events *eventlog.Sink, logger *zap.Logger) *Handler {
	return &Handler{
		Service: svc,
		Events:  events,
		Logger:  logger.Named("http"),
	}
}

// botView decorates a record with the display-only unrealized PnL,
// recomputed on every read.
type botView struct {
	bot.Bot
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	UnrealizedPct float64 `json:"unrealized_pnl_pct"`
}

func newBotView(b bot.Bot) botView {
	pnl, pct := b.Unrealized()
	return botView{Bot: b, UnrealizedPnL: pnl, UnrealizedPct: pct}
}

func (h *Handler) ListBots(w http.ResponseWriter, r *http.Request) {
	bots := h.Service.List(r.Context())
	views := make([]botView, 0, len(bots))
	for _, b := range bots {
		views = append(views, newBotView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) CreateBot(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.Service.Create(r.Context(), service.CreateInput{
		BotID:       req.BotID,
		AccountID:   req.AccountID,
		Symbol:      req.Symbol,
		Side:        futures.SideType(req.Side),
		Leverage:    req.Leverage,
		OrderAmount: req.OrderAmount,
		StopLoss:    req.StopLoss,
		TakeProfit:  req.TakeProfit,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrNoAccounts), errors.Is(err, service.ErrBotExists):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrAccountNotFound):
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusCreated, newBotView(created))
}

func (h *Handler) ToggleBot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.ToggleBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.Service.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		if errors.Is(err, service.ErrBotNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, newBotView(updated))
}

func (h *Handler) DeleteBot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.Service.Delete(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Webhook is the single externally reachable trigger for position
// transitions. The payload is strict: exactly bot_id, passphrase and
// action, unknown keys rejected. Auth failures answer with a uniform
// message so callers cannot probe which part of the payload was wrong.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req dto.WebhookRequest
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Service.Signal(r.Context(), req.BotID, req.Passphrase, service.Action(req.Action))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadPassphrase):
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		case errors.Is(err, service.ErrBotNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, service.ErrBotInactive):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, service.ErrInvalidAction):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	resp := map[string]interface{}{"status": "success", "applied": result.Applied}
	if result.Applied && req.Action == string(service.ActionExit) {
		resp["realized_pnl"] = result.Realized
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Stats(r.Context()))
}

// GetLogs returns the most recent 100 entries, newest first.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Events.List())
}

func (h *Handler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bot.FuturesSymbols)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
