// Command monitor polls the dashboard API on a fixed interval and prints
// a terminal summary. A failed fetch keeps the last-known state; repeated
// consecutive failures flip the displayed status to DEGRADED.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"botdeck/internal/bot"
	"botdeck/internal/eventlog"
	"botdeck/internal/logger"
	"botdeck/internal/stats"
	"botdeck/pkg/client"
)

const degradedThreshold = 3

type snapshot struct {
	bots  []bot.Bot
	logs  []eventlog.Entry
	stats stats.Stats
}

type poller struct {
	api      *client.Client
	logger   *zap.Logger
	last     snapshot
	failures int
}

// poll fetches bots, logs and stats. Each fetch degrades independently:
// any failure keeps the previous snapshot for that section.
func (p *poller) poll(ctx context.Context) {
	failed := false

	if bots, err := p.api.Bots(ctx); err != nil {
		failed = true
		p.logFetchError("bots", err)
	} else {
		p.last.bots = bots
	}
	if logs, err := p.api.Logs(ctx); err != nil {
		failed = true
		p.logFetchError("logs", err)
	} else {
		p.last.logs = logs
	}
	if st, err := p.api.Stats(ctx); err != nil {
		failed = true
		p.logFetchError("stats", err)
	} else {
		p.last.stats = st
	}

	if failed {
		p.failures++
		if p.failures == degradedThreshold {
			p.logger.Warn("consecutive poll failures, marking degraded",
				zap.Int("failures", p.failures))
		}
	} else {
		if p.failures >= degradedThreshold {
			p.logger.Info("polling recovered", zap.Int("failures", p.failures))
		}
		p.failures = 0
	}
}

func (p *poller) logFetchError(section string, err error) {
	var transient *client.TransientError
	if errors.As(err, &transient) {
		p.logger.Warn("fetch failed, keeping previous state",
			zap.String("section", section), zap.Error(err))
		return
	}
	p.logger.Error("fetch rejected", zap.String("section", section), zap.Error(err))
}

func (p *poller) render() {
	status := p.last.stats.ServerStatus
	if p.failures >= degradedThreshold {
		status = stats.StatusDegraded
	}

	fmt.Printf("\n=== botdeck %s | active bots: %d | pnl 24h: %.2f | pnl all time: %.2f | volume: %.0f ===\n",
		status, p.last.stats.ActiveBots, p.last.stats.PnL24h, p.last.stats.PnLAllTime, p.last.stats.TotalVolume)

	for _, b := range p.last.bots {
		state := "FLAT"
		if b.HasOpenPosition {
			state = "OPEN"
		}
		pnl, pct := b.Unrealized()
		fmt.Printf("%-20s %-10s %-4s x%-3d %-4s price %.2f realized %.2f unrealized %.2f (%.2f%%)\n",
			b.ID, b.Symbol, b.Side, b.Leverage, state, b.CurrentPrice, b.TotalRealizedPnL, pnl, pct)
	}

	// Log sink is newest-first; show the three most recent lines.
	n := len(p.last.logs)
	if n > 3 {
		n = 3
	}
	for i := 0; i < n; i++ {
		e := p.last.logs[i]
		fmt.Printf("  [%s] %s %s\n", e.Level, e.Timestamp.Format(time.TimeOnly), e.Message)
	}
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "dashboard API base URL")
	interval := flag.Duration("interval", 4*time.Second, "poll interval")
	flag.Parse()

	log, err := logger.New("info")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := &poller{
		api:    client.New(*addr),
		logger: log.Named("monitor"),
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	p.poll(ctx)
	p.render()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
			p.render()
		}
	}
}
