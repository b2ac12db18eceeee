package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingGenerator struct{ calls int }

func (g *countingGenerator) GeneratePost(context.Context, string) (*GeneratedPost, error) {
	g.calls++
	return &GeneratedPost{}, nil
}

func TestAutoPoster_NextIntervalWithinBounds(t *testing.T) {
	a := NewAutoPoster(&countingGenerator{}, 10*time.Minute, 30*time.Minute, time.Minute, zap.NewNop())

	a.int64n = func(int64) int64 { return 0 }
	assert.Equal(t, 10*time.Minute, a.nextInterval())

	a.int64n = func(n int64) int64 { return n - 1 }
	assert.Equal(t, 30*time.Minute, a.nextInterval())

	a.int64n = func(n int64) int64 { return n / 2 }
	got := a.nextInterval()
	assert.GreaterOrEqual(t, got, 10*time.Minute)
	assert.LessOrEqual(t, got, 30*time.Minute)
}

func TestAutoPoster_InvertedBoundsCollapse(t *testing.T) {
	a := NewAutoPoster(&countingGenerator{}, time.Hour, time.Minute, time.Minute, zap.NewNop())
	assert.Equal(t, time.Hour, a.nextInterval())
}

func TestAutoPoster_TickOnlyWhenDue(t *testing.T) {
	gen := &countingGenerator{}
	a := NewAutoPoster(gen, 10*time.Minute, 10*time.Minute, time.Minute, zap.NewNop())

	clock := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }
	a.next = clock.Add(10 * time.Minute)

	clock = clock.Add(5 * time.Minute)
	assert.False(t, a.tick(context.Background()))
	assert.Equal(t, 0, gen.calls)

	clock = clock.Add(5 * time.Minute)
	assert.True(t, a.tick(context.Background()))
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, clock.Add(10*time.Minute), a.next)
}

func TestAutoPoster_StartStopsOnCancel(t *testing.T) {
	a := NewAutoPoster(&countingGenerator{}, time.Hour, time.Hour, 10*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		a.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("auto poster did not stop")
	}
}
