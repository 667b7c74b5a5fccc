package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerAccumulates(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordFill(1000)
	tracker.RecordFill(500)
	tracker.RecordRealized(50)
	tracker.RecordRealized(-20)

	snap := tracker.Snapshot(3)
	assert.InDelta(t, 1500, snap.TotalVolume, 1e-9)
	assert.InDelta(t, 30, snap.PnLAllTime, 1e-9)
	assert.InDelta(t, 30, snap.PnL24h, 1e-9)
	assert.Equal(t, 3, snap.ActiveBots)
	assert.Equal(t, StatusHealthy, snap.ServerStatus)
}

func TestTrackerPrunes24hWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker().WithNow(func() time.Time { return now })

	tracker.RecordRealized(100)

	// 25 hours later the delta ages out of the window but stays in the
	// all-time total.
	now = now.Add(25 * time.Hour)
	tracker.RecordRealized(7)

	snap := tracker.Snapshot(0)
	assert.InDelta(t, 7, snap.PnL24h, 1e-9)
	assert.InDelta(t, 107, snap.PnLAllTime, 1e-9)
}

func TestTrackerSeed(t *testing.T) {
	tracker := NewTracker()
	tracker.Seed(12.40, 245.80, 85400)

	snap := tracker.Snapshot(1)
	assert.InDelta(t, 12.40, snap.PnL24h, 1e-9)
	assert.InDelta(t, 245.80, snap.PnLAllTime, 1e-9)
	assert.InDelta(t, 85400, snap.TotalVolume, 1e-9)
}

func TestTrackerUptime(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker().WithNow(func() time.Time { return now })

	now = now.Add(90 * time.Second)
	snap := tracker.Snapshot(0)
	assert.Equal(t, "1m30s", snap.Uptime)
}
