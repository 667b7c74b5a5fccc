package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"botdeck/internal/eventlog"
)

func newTestStore(t *testing.T) (*Store, *eventlog.Sink) {
	events := eventlog.NewSink()
	store := NewStore(SystemConfig{
		Accounts: []ExchangeAccount{
			{ID: "acc_1", Name: "Main", Exchange: ExchangeBinance},
			{ID: "acc_2", Name: "Backup", Exchange: ExchangeBybit},
		},
		WebhookPassphrase: "binance_secure",
		WebhookURL:        "http://localhost:8080/webhook",
	}, events, zaptest.NewLogger(t))
	return store, events
}

func TestApplyShallowMerge(t *testing.T) {
	store, _ := newTestStore(t)

	newPassphrase := "rotated"
	cfg, removed := store.Apply(Update{WebhookPassphrase: &newPassphrase})

	assert.Empty(t, removed)
	assert.Equal(t, "rotated", cfg.WebhookPassphrase)
	// Absent fields stay untouched.
	assert.Equal(t, "http://localhost:8080/webhook", cfg.WebhookURL)
	assert.Len(t, cfg.Accounts, 2)
}

func TestApplyReplacesAccountsWholesale(t *testing.T) {
	store, events := newTestStore(t)

	accounts := []ExchangeAccount{{ID: "acc_3", Name: "Fresh", Exchange: ExchangeOKX}}
	cfg, removed := store.Apply(Update{Accounts: &accounts})

	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "acc_3", cfg.Accounts[0].ID)
	assert.ElementsMatch(t, []string{"acc_1", "acc_2"}, removed)

	// Update always writes an INFO entry.
	entries := events.List()
	require.NotEmpty(t, entries)
	assert.Equal(t, eventlog.LevelInfo, entries[0].Level)
}

func TestGetReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t)

	cfg := store.Get()
	cfg.Accounts[0].Name = "mutated"

	assert.Equal(t, "Main", store.Get().Accounts[0].Name)
}

func TestAccountLookup(t *testing.T) {
	store, _ := newTestStore(t)

	acc, ok := store.FindAccount("acc_2")
	require.True(t, ok)
	assert.Equal(t, "Backup", acc.Name)

	_, ok = store.FindAccount("missing")
	assert.False(t, ok)

	first, ok := store.FirstAccount()
	require.True(t, ok)
	assert.Equal(t, "acc_1", first.ID)
	assert.True(t, store.HasAccounts())
}

func TestCheckPassphrase(t *testing.T) {
	store, _ := newTestStore(t)

	assert.True(t, store.CheckPassphrase("binance_secure"))
	assert.False(t, store.CheckPassphrase("wrong"))
	assert.False(t, store.CheckPassphrase(""))
}
