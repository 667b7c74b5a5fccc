package settings

import (
	"crypto/subtle"
	"sync"

	"go.uber.org/zap"

	"botdeck/internal/eventlog"
)

// Store owns the system configuration singleton. It is constructed at
// startup and passed into the services that need it.
type Store struct {
	mu     sync.RWMutex
	cfg    SystemConfig
	events *eventlog.Sink
	logger *zap.Logger
}

func NewStore(initial SystemConfig, events *eventlog.Sink, logger *zap.Logger) *Store {
	return &Store{
		cfg:    cloneConfig(initial),
		events: events,
		logger: logger.Named("settings"),
	}
}

func (s *Store) Get() SystemConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConfig(s.cfg)
}

// Apply shallow-merges the update over the current configuration and
// returns the result plus the ids of accounts removed by an accounts
// replacement. Callers decide what to do with bots referencing them.
func (s *Store) Apply(update Update) (SystemConfig, []string) {
	s.mu.Lock()

	var removed []string
	if update.Accounts != nil {
		next := make(map[string]struct{}, len(*update.Accounts))
		for _, acc := range *update.Accounts {
			next[acc.ID] = struct{}{}
		}
		for _, acc := range s.cfg.Accounts {
			if _, ok := next[acc.ID]; !ok {
				removed = append(removed, acc.ID)
			}
		}
		s.cfg.Accounts = append([]ExchangeAccount(nil), *update.Accounts...)
	}
	if update.WebhookPassphrase != nil {
		s.cfg.WebhookPassphrase = *update.WebhookPassphrase
	}
	if update.WebhookURL != nil {
		s.cfg.WebhookURL = *update.WebhookURL
	}
	result := cloneConfig(s.cfg)
	s.mu.Unlock()

	s.events.Append(eventlog.LevelInfo, "Exchange API settings updated.")
	s.logger.Info("configuration updated",
		zap.Int("accounts", len(result.Accounts)),
		zap.Strings("removed_accounts", removed),
	)
	return result, removed
}

func (s *Store) HasAccounts() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cfg.Accounts) > 0
}

func (s *Store) FindAccount(id string) (ExchangeAccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.cfg.Accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return ExchangeAccount{}, false
}

// FirstAccount returns the default account used when a bot is created
// without an explicit account reference.
func (s *Store) FirstAccount() (ExchangeAccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.cfg.Accounts) == 0 {
		return ExchangeAccount{}, false
	}
	return s.cfg.Accounts[0], true
}

// CheckPassphrase compares in constant time.
func (s *Store) CheckPassphrase(passphrase string) bool {
	s.mu.RLock()
	expected := s.cfg.WebhookPassphrase
	s.mu.RUnlock()
	return subtle.ConstantTimeCompare([]byte(expected), []byte(passphrase)) == 1
}

func cloneConfig(cfg SystemConfig) SystemConfig {
	out := cfg
	out.Accounts = append([]ExchangeAccount(nil), cfg.Accounts...)
	return out
}
