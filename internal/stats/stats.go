package stats

import (
	"sync"
	"time"
)

type ServerStatus string

const (
	StatusHealthy  ServerStatus = "HEALTHY"
	StatusDegraded ServerStatus = "DEGRADED"
	StatusDown     ServerStatus = "DOWN"
)

// Stats is the aggregate payload served to the dashboard. It is derived
// on every read and never stored as a whole.
type Stats struct {
	PnL24h       float64      `json:"pnl_24h"`
	PnLAllTime   float64      `json:"pnl_all_time"`
	ActiveBots   int          `json:"active_bots"`
	TotalVolume  float64      `json:"total_volume"`
	Uptime       string       `json:"uptime,omitempty"`
	ServerStatus ServerStatus `json:"server_status,omitempty"`
}

type sample struct {
	at  time.Time
	pnl float64
}

// Tracker accumulates process-wide trading totals. Realized PnL deltas
// are kept in a rolling window so the 24h figure decays as fills age out.
type Tracker struct {
	mu      sync.Mutex
	allTime float64
	volume  float64
	window  []sample
	started time.Time
	now     func() time.Time
}

func NewTracker() *Tracker {
	now := func() time.Time { return time.Now().UTC() }
	return &Tracker{
		started: now(),
		now:     now,
	}
}

// WithNow injects deterministic time for tests.
func (t *Tracker) WithNow(now func() time.Time) *Tracker {
	t.now = now
	t.started = now()
	return t
}

// RecordFill adds an executed fill's notional to the volume total.
func (t *Tracker) RecordFill(notional float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.volume += notional
}

// RecordRealized adds a realized PnL delta to the all-time total and the
// 24h window.
func (t *Tracker) RecordRealized(delta float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allTime += delta
	t.window = append(t.window, sample{at: t.now(), pnl: delta})
}

// Seed preloads demo totals.
func (t *Tracker) Seed(pnl24h, allTime, volume float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allTime = allTime
	t.volume = volume
	t.window = []sample{{at: t.now(), pnl: pnl24h}}
}

func (t *Tracker) Snapshot(activeBots int) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-24 * time.Hour)
	kept := t.window[:0]
	var pnl24h float64
	for _, s := range t.window {
		if s.at.After(cutoff) {
			kept = append(kept, s)
			pnl24h += s.pnl
		}
	}
	t.window = kept

	return Stats{
		PnL24h:       pnl24h,
		PnLAllTime:   t.allTime,
		ActiveBots:   activeBots,
		TotalVolume:  t.volume,
		Uptime:       t.now().Sub(t.started).Truncate(time.Second).String(),
		ServerStatus: StatusHealthy,
	}
}
