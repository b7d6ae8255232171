package routing

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/powerfleet/core/events"
	"github.com/kilianp07/powerfleet/core/logger"
	"github.com/kilianp07/powerfleet/internal/eventbus"
)

// DefaultConcurrency bounds the number of in-flight provider queries.
const DefaultConcurrency = 10

// BuildStats summarises a matrix build.
type BuildStats struct {
	Requested int
	Failed    int
	Elapsed   time.Duration
}

// MatrixBuilder queries a Provider for every ordered pair of locations.
type MatrixBuilder struct {
	provider    Provider
	concurrency int
	log         logger.Logger
	bus         eventbus.EventBus
}

// NewMatrixBuilder returns a builder using p with at most concurrency queries in
// flight. bus may be nil.
func NewMatrixBuilder(p Provider, concurrency int, log logger.Logger, bus eventbus.EventBus) *MatrixBuilder {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &MatrixBuilder{provider: p, concurrency: concurrency, log: logger.OrNop(log), bus: bus}
}

// Build fills a Matrix for the registry. A failing pair never aborts the
// others: it keeps SentinelHours and an empty path and is counted in
// BuildStats.Failed. Pairs still pending when ctx is cancelled fail the same
// way.
func (b *MatrixBuilder) Build(ctx context.Context, reg *Registry) (*Matrix, BuildStats) {
	start := time.Now()
	m := NewMatrix(reg)
	n := reg.Len()
	stats := BuildStats{Requested: n * (n - 1)}
	if n < 2 {
		stats.Elapsed = time.Since(start)
		return m, stats
	}

	var failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			from, to := reg.locs[i], reg.locs[j]
			i, j := i, j
			g.Go(func() error {
				leg, err := b.query(ctx, from.Point(), to.Point())
				if err != nil {
					failed.Add(1)
					m.fail(i, j)
					b.log.Warnf("route %s -> %s failed, using %.0fh: %v", from.ID, to.ID, SentinelHours, err)
					if b.bus != nil {
						b.bus.Publish(events.MatrixEvent{From: from.ID, To: to.ID, Err: err})
					}
					return nil
				}
				m.set(i, j, leg.Hours(), leg.Path)
				return nil
			})
		}
	}
	_ = g.Wait()

	stats.Failed = int(failed.Load())
	stats.Elapsed = time.Since(start)
	b.log.Debugw("travel matrix built", map[string]any{
		"locations": n,
		"requested": stats.Requested,
		"failed":    stats.Failed,
		"elapsed":   stats.Elapsed.String(),
	})
	return m, stats
}

func (b *MatrixBuilder) query(ctx context.Context, from, to orb.Point) (Leg, error) {
	if err := ctx.Err(); err != nil {
		return Leg{}, err
	}
	leg, err := b.provider.Route(ctx, from, to)
	if err != nil {
		return Leg{}, err
	}
	if math.IsNaN(leg.DurationSeconds) || leg.DurationSeconds < 0 {
		return Leg{}, fmt.Errorf("invalid duration %v", leg.DurationSeconds)
	}
	return leg, nil
}
