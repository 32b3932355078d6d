package httputil

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of concurrently running operations. Excess callers
// wait in FIFO order and are admitted as slots free up. When minDelay is set,
// a finished operation keeps its slot for that long, spacing out completions.
//
// A nil *Gate admits everything immediately.
type Gate struct {
	sem      *semaphore.Weighted
	minDelay time.Duration
	queued   atomic.Int64
	running  atomic.Int64
}

// GateStats is a snapshot of a gate's occupancy.
type GateStats struct {
	Queued  int
	Running int
}

// NewGate creates a gate admitting at most maxConcurrent operations at once.
// maxConcurrent below 1 is treated as 1.
func NewGate(maxConcurrent int, minDelay time.Duration) *Gate {
	return &Gate{
		sem:      semaphore.NewWeighted(int64(max(maxConcurrent, 1))),
		minDelay: max(minDelay, 0),
	}
}

// Do waits for a slot and runs fn. It returns ctx.Err() without running fn
// if the context is cancelled while queued.
func (g *Gate) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if g == nil {
		return fn(ctx)
	}

	g.queued.Add(1)
	err := g.sem.Acquire(ctx, 1)
	g.queued.Add(-1)
	if err != nil {
		return err
	}

	g.running.Add(1)
	defer g.release()
	return fn(ctx)
}

func (g *Gate) release() {
	if g.minDelay <= 0 {
		g.running.Add(-1)
		g.sem.Release(1)
		return
	}
	time.AfterFunc(g.minDelay, func() {
		g.running.Add(-1)
		g.sem.Release(1)
	})
}

// Stats reports how many callers are waiting and how many slots are taken.
// Slots held for the post-completion delay count as running.
func (g *Gate) Stats() GateStats {
	if g == nil {
		return GateStats{}
	}
	return GateStats{
		Queued:  int(g.queued.Load()),
		Running: int(g.running.Load()),
	}
}
