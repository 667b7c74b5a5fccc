package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"botdeck/internal/bot/repository"
	botservice "botdeck/internal/bot/service"
	"botdeck/internal/eventlog"
	"botdeck/internal/settings"
	"botdeck/internal/stats"
)

func newTestRouter(t *testing.T) (*chi.Mux, *settings.Store, *botservice.Service) {
	log := zaptest.NewLogger(t)
	events := eventlog.NewSink()
	store := settings.NewStore(settings.SystemConfig{
		Accounts: []settings.ExchangeAccount{
			{ID: "acc_1", Name: "Main", Exchange: settings.ExchangeBinance},
			{ID: "acc_2", Name: "Backup", Exchange: settings.ExchangeBybit},
		},
		WebhookPassphrase: "binance_secure",
		WebhookURL:        "http://localhost:8080/webhook",
	}, events, log)
	svc := botservice.New(repository.NewMemory(), store, events, stats.NewTracker(), log)
	h := NewHandler(store, svc, log)

	r := chi.NewRouter()
	r.Get("/config", h.GetConfig)
	r.Put("/config", h.UpdateConfig)
	return r, store, svc
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetConfig(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doJSON(r, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg settings.SystemConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Len(t, cfg.Accounts, 2)
	assert.Equal(t, "binance_secure", cfg.WebhookPassphrase)
}

func TestUpdateConfigPartial(t *testing.T) {
	r, store, _ := newTestRouter(t)

	rec := doJSON(r, http.MethodPut, "/config", `{"webhookPassphrase":"rotated"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cfg := store.Get()
	assert.Equal(t, "rotated", cfg.WebhookPassphrase)
	assert.Equal(t, "http://localhost:8080/webhook", cfg.WebhookURL)
	assert.Len(t, cfg.Accounts, 2)
}

func TestUpdateConfigCascadeDisablesBots(t *testing.T) {
	r, _, svc := newTestRouter(t)
	ctx := context.Background()

	kept, err := svc.Create(ctx, botservice.CreateInput{
		AccountID: "acc_1", Symbol: "BTCUSDT", Side: futures.SideTypeBuy, Leverage: 1, OrderAmount: 10,
	})
	require.NoError(t, err)
	orphaned, err := svc.Create(ctx, botservice.CreateInput{
		AccountID: "acc_2", Symbol: "ETHUSDT", Side: futures.SideTypeBuy, Leverage: 1, OrderAmount: 10,
	})
	require.NoError(t, err)

	rec := doJSON(r, http.MethodPut, "/config",
		`{"accounts":[{"id":"acc_1","name":"Main","exchange":"BINANCE"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	gotKept, _ := svc.Get(ctx, kept.ID)
	gotOrphaned, _ := svc.Get(ctx, orphaned.ID)
	assert.True(t, gotKept.IsActive)
	assert.False(t, gotOrphaned.IsActive)
}

func TestUpdateConfigValidation(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doJSON(r, http.MethodPut, "/config",
		`{"accounts":[{"id":"x","name":"Bad","exchange":"NASDAQ"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodPut, "/config", `{"accounts":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateConfigGeneratesAccountIDs(t *testing.T) {
	r, store, _ := newTestRouter(t)

	rec := doJSON(r, http.MethodPut, "/config",
		`{"accounts":[{"name":"NoID","exchange":"OKX"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cfg := store.Get()
	require.Len(t, cfg.Accounts, 1)
	assert.True(t, strings.HasPrefix(cfg.Accounts[0].ID, "acc_"))
}
