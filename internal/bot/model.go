package bot

import (
	"time"

	"github.com/adshao/go-binance/v2/futures"
)

// Bot is one trading strategy instance on the simulated venue.
//
// Runtime state is mutated only by the signal processor and the price
// drift ticker; strategy parameters are fixed at creation except where
// the settings surface allows edits.
type Bot struct {
	ID          string `json:"bot_id"`
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name,omitempty"`

	Symbol      string            `json:"symbol"`
	Side        futures.SideType  `json:"side"`
	OrderType   futures.OrderType `json:"order_type"`
	Leverage    int               `json:"leverage"`
	OrderAmount float64           `json:"order_amount"`
	StopLoss    float64           `json:"stop_loss"`
	TakeProfit  float64           `json:"take_profit"`

	HasOpenPosition  bool    `json:"has_open_position"`
	EntryPrice       float64 `json:"entry_price"`
	CurrentPrice     float64 `json:"current_price"`
	TotalRealizedPnL float64 `json:"total_realized_pnl"`

	IsActive        bool         `json:"is_active"`
	LastSignalTime  *time.Time   `json:"last_signal_time"`
	SignalCount     int          `json:"signal_count"`
	TotalOrders     int          `json:"total_orders"`
	LastOrderInfo   *OrderInfo   `json:"last_order_info"`
	LastClosedTrade *ClosedTrade `json:"last_closed_trade,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// OrderInfo is a snapshot of the most recent simulated fill.
type OrderInfo struct {
	Symbol   string           `json:"symbol"`
	Side     futures.SideType `json:"side"`
	Quantity float64          `json:"quantity"`
	Price    float64          `json:"price"`
	OrderID  string           `json:"order_id"`
	Time     time.Time        `json:"time"`
}

// ClosedTrade records the last position that was closed. Entry fields on
// the bot itself are cleared on exit, so this is the only place the
// previous trade survives.
type ClosedTrade struct {
	Symbol      string           `json:"symbol"`
	Side        futures.SideType `json:"side"`
	Quantity    float64          `json:"quantity"`
	EntryPrice  float64          `json:"entry_price"`
	ExitPrice   float64          `json:"exit_price"`
	RealizedPnL float64          `json:"realized_pnl"`
	ClosedAt    time.Time        `json:"closed_at"`
}

// Unrealized derives the open-position PnL and its leveraged percentage.
// Returns zeros when the bot is flat. Never stored; recompute per read.
func (b Bot) Unrealized() (pnl, pct float64) {
	if !b.HasOpenPosition || b.EntryPrice <= 0 || b.LastOrderInfo == nil {
		return 0, 0
	}
	diff := b.CurrentPrice - b.EntryPrice
	if b.Side == futures.SideTypeSell {
		diff = -diff
	}
	pnl = diff * b.LastOrderInfo.Quantity
	pct = diff / b.EntryPrice * 100 * float64(b.Leverage)
	return pnl, pct
}

// Clone deep-copies the record so callers can hand it out without
// aliasing the repository's state.
func (b Bot) Clone() Bot {
	out := b
	if b.LastSignalTime != nil {
		t := *b.LastSignalTime
		out.LastSignalTime = &t
	}
	if b.LastOrderInfo != nil {
		o := *b.LastOrderInfo
		out.LastOrderInfo = &o
	}
	if b.LastClosedTrade != nil {
		c := *b.LastClosedTrade
		out.LastClosedTrade = &c
	}
	return out
}

// FuturesSymbols is the tradable universe of the simulated venue, sorted.
var FuturesSymbols = []string{
	"ADAUSDT", "AVAXUSDT", "BCHUSDT", "BNBUSDT", "BTCUSDT", "DOTUSDT",
	"ETCUSDT", "ETHUSDT", "LINKUSDT", "LTCUSDT", "MATICUSDT", "SOLUSDT",
	"TRXUSDT", "XRPUSDT",
}
