package spawn

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/tomz197/twinorbit/internal/spawn"

// Skip reasons reported on spawner.placement.skipped.
const (
	skipCapacity  = "capacity"
	skipExhausted = "exhausted"
)

// Metrics holds the spawner's counters. A nil *Metrics records nothing.
type Metrics struct {
	spawned   metric.Int64Counter
	skipped   metric.Int64Counter
	despawned metric.Int64Counter
}

// NewMetrics creates counters on the global OTel meter (no-op if not configured).
func NewMetrics() (*Metrics, error) {
	m := otel.Meter(instrumentationName)

	var (
		mt  Metrics
		err error
	)
	mt.spawned, err = m.Int64Counter(
		"spawner.obstacles.spawned",
		metric.WithDescription("Obstacles placed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating spawned counter: %w", err)
	}

	mt.skipped, err = m.Int64Counter(
		"spawner.placement.skipped",
		metric.WithDescription("Placement sequences that ended without a spawn"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}

	mt.despawned, err = m.Int64Counter(
		"spawner.obstacles.despawned",
		metric.WithDescription("Obstacles returned to the pool"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating despawned counter: %w", err)
	}

	return &mt, nil
}

func (m *Metrics) recordSpawn(reused bool) {
	if m == nil {
		return
	}
	m.spawned.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("reused", reused)))
}

func (m *Metrics) recordSkip(reason string) {
	if m == nil {
		return
	}
	m.skipped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) recordDespawn(n int) {
	if m == nil || n == 0 {
		return
	}
	m.despawned.Add(context.Background(), int64(n))
}
