package services

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

type postGenerator interface {
	GeneratePost(ctx context.Context, language string) (*GeneratedPost, error)
}

// AutoPoster publishes a generated post at random intervals between min and max.
type AutoPoster struct {
	generator     postGenerator
	minInterval   time.Duration
	maxInterval   time.Duration
	checkInterval time.Duration
	logger        *zap.Logger

	next   time.Time
	now    func() time.Time
	int64n func(n int64) int64
}

func NewAutoPoster(generator postGenerator, minInterval, maxInterval, checkInterval time.Duration, logger *zap.Logger) *AutoPoster {
	if maxInterval < minInterval {
		maxInterval = minInterval
	}
	return &AutoPoster{
		generator:     generator,
		minInterval:   minInterval,
		maxInterval:   maxInterval,
		checkInterval: checkInterval,
		logger:        logger,
		now:           time.Now,
		int64n:        rand.Int64N,
	}
}

func (a *AutoPoster) nextInterval() time.Duration {
	spread := int64(a.maxInterval - a.minInterval)
	if spread <= 0 {
		return a.minInterval
	}
	return a.minInterval + time.Duration(a.int64n(spread+1))
}

// tick posts if the scheduled time has passed and reports whether it did.
func (a *AutoPoster) tick(ctx context.Context) bool {
	now := a.now()
	if now.Before(a.next) {
		return false
	}
	if _, err := a.generator.GeneratePost(ctx, ""); err != nil {
		a.logger.Error("Auto post failed", zap.Error(err))
	}
	a.next = now.Add(a.nextInterval())
	a.logger.Info("Next auto post scheduled", zap.Time("at", a.next))
	return true
}

// Start blocks until ctx is cancelled.
func (a *AutoPoster) Start(ctx context.Context) {
	a.next = a.now().Add(a.nextInterval())
	a.logger.Info("Starting auto poster",
		zap.Duration("min_interval", a.minInterval),
		zap.Duration("max_interval", a.maxInterval),
		zap.Time("first_post_at", a.next),
	)

	ticker := time.NewTicker(a.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Auto poster stopped")
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}
