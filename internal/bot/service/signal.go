package service

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"botdeck/internal/bot"
	"botdeck/internal/eventlog"
	"botdeck/internal/metrics"
)

// Action is the signal verb carried by a webhook payload.
type Action string

const (
	ActionEntry Action = "entry"
	ActionExit  Action = "exit"
)

const (
	// Fallback entry price when a bot has never seen a quote.
	defaultEntryPrice = 65000.0
	// Lot size precision of the simulated venue.
	lotStepPlaces = 3
)

// SignalResult reports what a processed signal did.
type SignalResult struct {
	Bot      bot.Bot
	Applied  bool
	Realized float64
}

// Signal is the single code path for entry/exit transitions. Both the
// webhook endpoint and the dashboard quick actions funnel through here.
// The passphrase is checked before any bot state is touched; a repeated
// entry while open or exit while flat is a silent no-op.
func (s *Service) Signal(ctx context.Context, botID, passphrase string, action Action) (SignalResult, error) {
	if !s.settings.CheckPassphrase(passphrase) {
		metrics.SignalsTotal.WithLabelValues(string(action), "rejected").Inc()
		s.logger.Warn("signal rejected: bad passphrase", zap.String("bot_id", botID))
		return SignalResult{}, ErrBadPassphrase
	}
	if action != ActionEntry && action != ActionExit {
		metrics.SignalsTotal.WithLabelValues(string(action), "rejected").Inc()
		return SignalResult{}, ErrInvalidAction
	}

	var (
		applied  bool
		realized float64
		notional float64
		logLine  string
	)
	updated, err := s.repo.Update(ctx, botID, func(b *bot.Bot) error {
		applied = false
		switch action {
		case ActionEntry:
			if b.HasOpenPosition {
				return nil
			}
			if !b.IsActive {
				return ErrBotInactive
			}
			now := s.now()
			price := b.CurrentPrice
			if price <= 0 {
				price = defaultEntryPrice
			}
			qty := roundLot(b.OrderAmount * float64(b.Leverage) / price)
			b.HasOpenPosition = true
			b.EntryPrice = price
			b.CurrentPrice = price
			b.LastOrderInfo = &bot.OrderInfo{
				Symbol:   b.Symbol,
				Side:     b.Side,
				Quantity: qty,
				Price:    price,
				OrderID:  newOrderID(),
				Time:     now,
			}
			b.SignalCount++
			b.TotalOrders++
			b.LastSignalTime = &now

			applied = true
			notional = b.OrderAmount * float64(b.Leverage)
			verb := "BUY"
			if b.Side == futures.SideTypeSell {
				verb = "SELL"
			}
			logLine = fmt.Sprintf("MARKET %s: %s @ %.2f [order filled]", verb, b.Symbol, price)

		case ActionExit:
			if !b.HasOpenPosition {
				return nil
			}
			now := s.now()
			qty := 0.0
			if b.LastOrderInfo != nil {
				qty = b.LastOrderInfo.Quantity
			}
			delta := (b.CurrentPrice - b.EntryPrice) * qty
			if b.Side == futures.SideTypeSell {
				delta = -delta
			}
			b.TotalRealizedPnL += delta
			b.LastClosedTrade = &bot.ClosedTrade{
				Symbol:      b.Symbol,
				Side:        b.Side,
				Quantity:    qty,
				EntryPrice:  b.EntryPrice,
				ExitPrice:   b.CurrentPrice,
				RealizedPnL: delta,
				ClosedAt:    now,
			}
			b.HasOpenPosition = false
			b.EntryPrice = 0
			b.LastOrderInfo = nil
			b.SignalCount++
			b.TotalOrders++
			b.LastSignalTime = &now

			applied = true
			realized = delta
			logLine = fmt.Sprintf("MARKET CLOSE: %s PnL: $%.2f [position closed]", b.Symbol, delta)
		}
		return nil
	})
	if err != nil {
		metrics.SignalsTotal.WithLabelValues(string(action), "rejected").Inc()
		return SignalResult{}, err
	}

	if !applied {
		metrics.SignalsTotal.WithLabelValues(string(action), "noop").Inc()
		return SignalResult{Bot: updated, Applied: false}, nil
	}

	metrics.SignalsTotal.WithLabelValues(string(action), "applied").Inc()
	s.events.Append(eventlog.LevelSuccess, logLine)
	switch action {
	case ActionEntry:
		metrics.OpenPositions.Inc()
		s.stats.RecordFill(notional)
	case ActionExit:
		metrics.OpenPositions.Dec()
		s.stats.RecordRealized(realized)
	}
	s.logger.Info("signal applied",
		zap.String("bot_id", botID),
		zap.String("action", string(action)),
		zap.Float64("realized", realized),
	)
	return SignalResult{Bot: updated, Applied: true, Realized: realized}, nil
}

// roundLot snaps a quantity to the venue's 0.001 lot step.
func roundLot(qty float64) float64 {
	return decimal.NewFromFloat(qty).Round(lotStepPlaces).InexactFloat64()
}

func newOrderID() string {
	return uuid.NewString()
}
