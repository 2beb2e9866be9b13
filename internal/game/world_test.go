package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/twinorbit/internal/config"
	"github.com/tomz197/twinorbit/internal/orbit"
	"github.com/tomz197/twinorbit/internal/physics"
	"github.com/tomz197/twinorbit/internal/spawn"
)

func testSettings() config.Settings {
	return config.Settings{
		Orbit: config.OrbitSettings{
			Distance:            3,
			AngularSpeed:        90,
			BeamThickness:       0.15,
			BeamBaseLength:      1,
			MatchBeamToDistance: true,
		},
		Spawner: config.SpawnerSettings{
			Interval:     time.Second,
			MaxAlive:     10,
			Radius:       6,
			MaxAttempts:  4,
			OrbitEpsilon: 0.001,
		},
		Game: config.GameSettings{
			InitialLives:    1,
			ExplodeDuration: 600 * time.Millisecond,
			BodyRadius:      0.45,
			ObstacleRadius:  0.4,
			ScorePerSecond:  10,
		},
		View: config.ViewSettings{Width: 24, Height: 16, Margin: 1},
	}
}

// fixed always samples the same point.
func fixed(x, y float64) spawn.Sampler {
	return func(float64) (float64, float64) { return x, y }
}

type radiusFunc func() (float64, bool)

func (f radiusFunc) SpawnRadius() (float64, bool) { return f() }

func newTestWorld(t *testing.T, s config.Settings, opts ...Option) *World {
	t.Helper()
	w, err := NewWorld(s, append([]Option{WithoutMetrics()}, opts...)...)
	require.NoError(t, err)
	return w
}

func assertVec(t *testing.T, want, got physics.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-6, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, 1e-6, msgAndArgs...)
}

func TestNewWorld_Layout(t *testing.T) {
	w := newTestWorld(t, testSettings())

	assertVec(t, physics.Vec3{}, w.Orbit().Primary())
	assertVec(t, physics.Vec3{X: 3}, w.Orbit().Secondary())
	assert.Equal(t, StateInit, w.Manager().State())

	w.Update(time.Second, false)
	assertVec(t, physics.Vec3{X: 3}, w.Orbit().Secondary(), "init state does not move")
}

func TestNewWorld_WithMetrics(t *testing.T) {
	_, err := NewWorld(testSettings())
	require.NoError(t, err)
}

func TestWorld_OrbitRunsInReady(t *testing.T) {
	w := newTestWorld(t, testSettings())
	w.Reset()
	require.Equal(t, StateReady, w.Manager().State())

	w.Update(time.Second, false)
	assertVec(t, physics.Vec3{Y: 3}, w.Orbit().Secondary())
	assert.Zero(t, w.Spawner().LiveCount(), "no timed spawns before play")
	assert.Zero(t, w.Manager().Elapsed())
}

func TestWorld_TapStartsThenToggles(t *testing.T) {
	w := newTestWorld(t, testSettings())
	w.Reset()

	w.Update(0, true)
	require.Equal(t, StatePlaying, w.Manager().State())
	assert.Equal(t, orbit.CenteredOnPrimary, w.Orbit().Center())

	w.Update(0, true)
	assert.Equal(t, orbit.CenteredOnSecondary, w.Orbit().Center())
}

func TestWorld_SpawnSeesThisFrameCenter(t *testing.T) {
	w := newTestWorld(t, testSettings(), WithSpawnerOptions(spawn.WithSampler(fixed(0, 0))))
	w.Reset()
	w.Update(0, true)

	// The toggle happens before the spawner ticks, so the origin is now outside
	// the forbidden zone around the secondary body.
	w.Update(time.Second, true)
	assertVec(t, physics.Vec3{X: 3, Y: -3}, w.Orbit().Primary())
	assert.Equal(t, 1, w.Spawner().LiveCount())
	assert.Equal(t, StatePlaying, w.Manager().State())
}

func TestWorld_SpawnRejectedInsideOrbit(t *testing.T) {
	w := newTestWorld(t, testSettings(), WithSpawnerOptions(spawn.WithSampler(fixed(0, 0))))
	w.Reset()
	w.Update(0, true)

	w.Update(time.Second, false)
	assert.Zero(t, w.Spawner().LiveCount())
}

func TestWorld_CollisionExplodesAndEndsRound(t *testing.T) {
	var over []Result
	w := newTestWorld(t, testSettings(),
		WithSpawnerOptions(spawn.WithSampler(fixed(3, 0))),
		WithEvents(Events{GameOver: func(r Result) { over = append(over, r) }}),
	)
	w.Reset()
	w.Update(0, true)

	_, ok := w.Spawner().TrySpawn()
	require.True(t, ok)

	w.Update(time.Millisecond, false)
	assert.Equal(t, StateGameOver, w.Manager().State())
	assert.Equal(t, 0, w.Manager().Lives())
	assert.Equal(t, 1, w.ObstaclesExploding())
	assert.Equal(t, explosionParticles, w.Effects().Len())
	assert.Len(t, over, 1)

	// Explosion finishes while the round is over.
	w.Update(600*time.Millisecond, false)
	assert.Zero(t, w.Spawner().LiveCount())
	assert.Equal(t, 1, w.Spawner().Stats().Pooled)

	// A tap retries.
	w.Update(0, true)
	assert.Equal(t, StatePlaying, w.Manager().State())
	assert.Equal(t, 1, w.Manager().Lives())
	assert.Zero(t, w.Effects().Len())
}

func TestWorld_ExplodingObstacleHitsOnce(t *testing.T) {
	s := testSettings()
	s.Game.InitialLives = 3
	w := newTestWorld(t, s, WithSpawnerOptions(spawn.WithSampler(fixed(3, 0))))
	w.Reset()
	w.Update(0, true)
	_, ok := w.Spawner().TrySpawn()
	require.True(t, ok)

	w.Update(time.Millisecond, false)
	w.Update(time.Millisecond, false)
	assert.Equal(t, 2, w.Manager().Lives())
}

func TestWorld_PausedFreezes(t *testing.T) {
	w := newTestWorld(t, testSettings())
	w.Reset()
	w.Update(0, true)
	w.Manager().PauseGame()

	before := w.Orbit().Secondary()
	w.Update(time.Second, true)
	assert.Equal(t, before, w.Orbit().Secondary())
	assert.Equal(t, StatePaused, w.Manager().State())
	assert.Zero(t, w.Manager().Elapsed())
}

func TestWorld_ScoreAccruesWhilePlaying(t *testing.T) {
	w := newTestWorld(t, testSettings(), WithSpawnerOptions(spawn.WithSampler(fixed(0, 0))))
	w.Reset()
	w.Update(0, true)

	for range 3 {
		w.Update(time.Second, false)
	}
	assert.Equal(t, 30, w.Manager().Score())
}

func TestWorld_RadiusSourceOverride(t *testing.T) {
	var seen []float64
	sampler := func(r float64) (float64, float64) {
		seen = append(seen, r)
		return 5, 0
	}
	w := newTestWorld(t, testSettings(),
		WithRadiusSource(radiusFunc(func() (float64, bool) { return 4.5, true })),
		WithSpawnerOptions(spawn.WithSampler(sampler)),
	)
	w.Reset()
	w.Update(0, true)
	w.Spawner().TrySpawn()

	require.NotEmpty(t, seen)
	assert.Equal(t, 4.5, seen[0])
}

func TestWorld_ViewportIsDefaultRadiusSource(t *testing.T) {
	var seen float64
	w := newTestWorld(t, testSettings(), WithSpawnerOptions(spawn.WithSampler(func(r float64) (float64, float64) {
		seen = r
		return 5, 0
	})))
	w.Reset()
	w.Spawner().TrySpawn()
	assert.Equal(t, 7.0, seen)
}

func TestWorld_DegenerateRightFallsBack(t *testing.T) {
	s := testSettings()
	s.Orbit.Right = []float64{0, 0, 0}
	w := newTestWorld(t, s)
	assertVec(t, physics.Vec3{X: 3}, w.Orbit().Secondary())
}

func TestFindHits(t *testing.T) {
	bodies := []Collidable{
		{Kind: KindBody, X: 0, Y: 0, Radius: 0.5},
		{Kind: KindBody, X: 1, Y: 0, Radius: 0.5},
	}
	obstacles := []Collidable{
		{Kind: KindObstacle, X: 0.5, Y: 0, Radius: 0.1}, // touches both
		{Kind: KindObstacle, X: 5, Y: 5, Radius: 0.1},
		{Kind: KindObstacle, X: 1, Y: 0.55, Radius: 0.1},
	}

	hits := findHits(bodies, obstacles, nil)
	require.Len(t, hits, 2)
	assert.Equal(t, obstacles[0], hits[0].Obstacle)
	assert.Equal(t, bodies[0], hits[0].Body)
	assert.Equal(t, obstacles[2], hits[1].Obstacle)
	assert.Equal(t, bodies[1], hits[1].Body)
}

func TestOverlaps_TouchingIsNotOverlap(t *testing.T) {
	a := Collidable{X: 0, Y: 0, Radius: 1}
	b := Collidable{X: 2, Y: 0, Radius: 1}
	assert.False(t, Overlaps(a, b))
	b.X = 1.999
	assert.True(t, Overlaps(a, b))
}

func TestOrbitConfig_AxisFallback(t *testing.T) {
	cfg := OrbitConfig(config.OrbitSettings{Axis: []float64{1, 2}, Right: []float64{0, 1, 0}})
	assert.Equal(t, physics.Forward, cfg.Axis)
	assert.Equal(t, physics.Vec3{Y: 1}, cfg.Right)
}
