package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"botdeck/internal/api/dto"
	botservice "botdeck/internal/bot/service"
	"botdeck/internal/settings"
)

type Handler struct {
	Store  *settings.Store
	Bots   *botservice.Service
	Logger *zap.Logger
}

func NewHandler(store *settings.Store, bots *botservice.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  store,
		Bots:   bots,
		Logger: logger.Named("settings-http"),
	}
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Store.Get())
}

// UpdateConfig shallow-merges the partial payload. When the accounts
// list is replaced, bots referencing removed accounts are deactivated.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	update := settings.Update{
		WebhookPassphrase: req.WebhookPassphrase,
		WebhookURL:        req.WebhookURL,
	}
	if req.Accounts != nil {
		accounts := make([]settings.ExchangeAccount, 0, len(*req.Accounts))
		for _, a := range *req.Accounts {
			if a.ID == "" {
				a.ID = "acc_" + uuid.NewString()[:8]
			}
			accounts = append(accounts, settings.ExchangeAccount{
				ID:        a.ID,
				Name:      a.Name,
				Exchange:  settings.Exchange(a.Exchange),
				APIKey:    a.APIKey,
				APISecret: a.APISecret,
			})
		}
		update.Accounts = &accounts
	}

	cfg, removed := h.Store.Apply(update)
	if n := h.Bots.DisableByAccounts(r.Context(), removed); n > 0 {
		h.Logger.Warn("deactivated bots after account removal", zap.Int("count", n))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}
