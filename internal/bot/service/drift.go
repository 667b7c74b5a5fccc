package service

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"botdeck/internal/bot"
	"botdeck/internal/metrics"
)

const (
	// Drift magnitude and skew of the simulated tape: a uniform draw on
	// [0,1) shifted by 0.48 and scaled by 50 gives roughly +-25 price
	// units per tick with a slight downward bias.
	driftScale = 50.0
	driftSkew  = 0.48
)

func defaultRand() float64 {
	return rand.Float64()
}

// DriftTick perturbs the current price of every bot with an open
// position. Returns how many bots were touched.
func (s *Service) DriftTick(ctx context.Context) int {
	touched := s.repo.UpdateAll(ctx, func(b *bot.Bot) bool {
		if !b.HasOpenPosition {
			return false
		}
		b.CurrentPrice += (s.randFn() - driftSkew) * driftScale
		return true
	})
	if touched > 0 {
		metrics.DriftTicksTotal.Inc()
	}
	return touched
}

// RunDrift drives the price simulation from an explicit scheduler tick
// so registry reads stay side-effect-free. Blocks until ctx is done.
func (s *Service) RunDrift(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("price drift ticker started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("price drift ticker stopped")
			return
		case <-ticker.C:
			s.DriftTick(ctx)
		}
	}
}
