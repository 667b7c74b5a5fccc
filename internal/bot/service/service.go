package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"botdeck/internal/bot"
	"botdeck/internal/bot/repository"
	"botdeck/internal/eventlog"
	"botdeck/internal/metrics"
	"botdeck/internal/settings"
	"botdeck/internal/stats"
)

var (
	ErrBotNotFound     = repository.ErrNotFound
	ErrBotExists       = repository.ErrExists
	ErrNoAccounts      = errors.New("no exchange account configured")
	ErrAccountNotFound = errors.New("exchange account not found")
	ErrBotInactive     = errors.New("bot is inactive")
	ErrBadPassphrase   = errors.New("invalid webhook credentials")
	ErrInvalidAction   = errors.New("unknown signal action")
)

// Service owns the bot registry and is the single write path for
// position state, regardless of whether a signal arrived over the
// webhook or from a manual dashboard action.
type Service struct {
	repo     *repository.Memory
	settings *settings.Store
	events   *eventlog.Sink
	stats    *stats.Tracker
	logger   *zap.Logger
	now      func() time.Time
	randFn   func() float64
}

func New(repo *repository.Memory, store *settings.Store, events *eventlog.Sink, tracker *stats.Tracker, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		settings: store,
		events:   events,
		stats:    tracker,
		logger:   logger.Named("bots"),
		now:      func() time.Time { return time.Now().UTC() },
		randFn:   defaultRand,
	}
}

// WithNow injects deterministic time for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithRand injects a deterministic price-drift source for tests.
func (s *Service) WithRand(fn func() float64) *Service {
	s.randFn = fn
	return s
}

// CreateInput carries the strategy parameters for a new bot. BotID and
// AccountID are optional; missing values are generated and defaulted to
// the first configured account respectively.
type CreateInput struct {
	BotID       string
	AccountID   string
	Symbol      string
	Side        futures.SideType
	Leverage    int
	OrderAmount float64
	StopLoss    float64
	TakeProfit  float64
}

// Create registers a new bot in the flat state with zeroed runtime fields.
func (s *Service) Create(ctx context.Context, input CreateInput) (bot.Bot, error) {
	if !s.settings.HasAccounts() {
		return bot.Bot{}, ErrNoAccounts
	}

	var account settings.ExchangeAccount
	if strings.TrimSpace(input.AccountID) == "" {
		account, _ = s.settings.FirstAccount()
	} else {
		var ok bool
		account, ok = s.settings.FindAccount(input.AccountID)
		if !ok {
			return bot.Bot{}, ErrAccountNotFound
		}
	}

	id := strings.TrimSpace(input.BotID)
	if id == "" {
		id = newBotID()
	}

	now := s.now()
	b := bot.Bot{
		ID:          id,
		AccountID:   account.ID,
		AccountName: account.Name,
		Symbol:      input.Symbol,
		Side:        input.Side,
		OrderType:   futures.OrderTypeMarket,
		Leverage:    input.Leverage,
		OrderAmount: input.OrderAmount,
		StopLoss:    input.StopLoss,
		TakeProfit:  input.TakeProfit,
		IsActive:    true,
		CreatedAt:   now,
	}

	if err := s.repo.Insert(ctx, b); err != nil {
		return bot.Bot{}, err
	}

	metrics.BotsConfigured.Inc()
	s.events.Appendf(eventlog.LevelSuccess, "Bot deployed: %s (%s)", b.Symbol, b.ID)
	s.logger.Info("bot created",
		zap.String("bot_id", b.ID),
		zap.String("symbol", b.Symbol),
		zap.String("side", string(b.Side)),
	)
	return b, nil
}

// List returns all bots. Reads are side-effect-free; price movement is
// applied by the drift ticker, not here.
func (s *Service) List(ctx context.Context) []bot.Bot {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (bot.Bot, error) {
	return s.repo.Get(ctx, id)
}

// SetActive toggles the activation flag. Intentionally writes no event
// log entry, unlike create and delete.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (bot.Bot, error) {
	return s.repo.Update(ctx, id, func(b *bot.Bot) error {
		b.IsActive = active
		return nil
	})
}

// Delete removes the bot. Idempotent: unknown ids are a no-op, but the
// warning entry is appended either way. A still-open position releases
// its slot in the open-positions gauge.
func (s *Service) Delete(ctx context.Context, id string) {
	if removed, ok := s.repo.Delete(ctx, id); ok {
		metrics.BotsConfigured.Dec()
		if removed.HasOpenPosition {
			metrics.OpenPositions.Dec()
		}
	}
	s.events.Appendf(eventlog.LevelWarning, "Bot removed: %s", id)
	s.logger.Info("bot deleted", zap.String("bot_id", id))
}

// DisableByAccounts deactivates every active bot referencing one of the
// given account ids. Invoked when accounts are removed from the system
// configuration so bots never keep trading against a dangling reference.
func (s *Service) DisableByAccounts(ctx context.Context, accountIDs []string) int {
	if len(accountIDs) == 0 {
		return 0
	}
	removed := make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		removed[id] = struct{}{}
	}

	var disabled []string
	s.repo.UpdateAll(ctx, func(b *bot.Bot) bool {
		if _, gone := removed[b.AccountID]; !gone || !b.IsActive {
			return false
		}
		b.IsActive = false
		disabled = append(disabled, b.ID)
		return true
	})

	for _, id := range disabled {
		s.events.Appendf(eventlog.LevelWarning, "Bot deactivated, account removed: %s", id)
	}
	if len(disabled) > 0 {
		s.logger.Warn("bots deactivated after account removal", zap.Strings("bot_ids", disabled))
	}
	return len(disabled)
}

// Stats derives the aggregate dashboard payload. active_bots is
// recomputed on every call.
func (s *Service) Stats(ctx context.Context) stats.Stats {
	return s.stats.Snapshot(s.repo.ActiveCount(ctx))
}

// Seed inserts a pre-provisioned record without emitting events. Used
// only for demo data at startup.
func (s *Service) Seed(ctx context.Context, b bot.Bot) error {
	if err := s.repo.Insert(ctx, b); err != nil {
		return fmt.Errorf("seed bot %s: %w", b.ID, err)
	}
	metrics.BotsConfigured.Inc()
	if b.HasOpenPosition {
		metrics.OpenPositions.Inc()
	}
	return nil
}

func newBotID() string {
	return "BIN_" + strings.ToUpper(uuid.NewString()[:8])
}
