// Package spawn places obstacles around the orbit by rejection sampling and keeps
// them in a generation-counted pool.
package spawn

import (
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/twinorbit/internal/physics"
)

// Config holds the spawner tunables.
type Config struct {
	Interval            time.Duration // Time between timed placement sequences
	MaxAlive            int           // Cap on live obstacles
	SpawnRadius         float64       // Disk radius used when no RadiusSource is available
	InitialCount        int           // Placement sequences run by Initialize
	MinSeparation       float64       // Minimum distance between obstacles
	MaxAttempts         int           // Random draws per placement sequence
	OrbitEpsilon        float64       // Shrinks the forbidden zone to avoid boundary flicker
	InitialIgnoresOrbit bool          // Initial batch skips the forbidden-zone rule
	ObstacleRadius      float64       // Collision radius of spawned obstacles
}

// CenterSource supplies the forbidden zone: the orbit center and radius.
type CenterSource interface {
	CurrentCenterPosition() physics.Vec3
	CurrentDistance() float64
}

// RadiusSource supplies a spawn radius derived from the visible area.
// ok is false when no usable value is available.
type RadiusSource interface {
	SpawnRadius() (radius float64, ok bool)
}

// Sampler draws a candidate position inside a disk of the given radius.
type Sampler func(radius float64) (x, y float64)

// Option configures a Spawner.
type Option func(*Spawner)

// WithCenterSource sets the forbidden-zone source, usually the orbit controller.
func WithCenterSource(c CenterSource) Option {
	return func(s *Spawner) { s.center = c }
}

// WithRadiusSource sets the viewport-based radius source.
func WithRadiusSource(r RadiusSource) Option {
	return func(s *Spawner) { s.radius = r }
}

// WithSampler replaces the uniform disk sampler.
func WithSampler(fn Sampler) Option {
	return func(s *Spawner) { s.sample = fn }
}

// WithRand sets the random source used for sampling and obstacle outlines.
func WithRand(r *rand.Rand) Option {
	return func(s *Spawner) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Spawner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics enables spawn counters.
func WithMetrics(m *Metrics) Option {
	return func(s *Spawner) { s.metrics = m }
}

// WithArena makes the spawner use an existing arena.
func WithArena(a *Arena) Option {
	return func(s *Spawner) {
		if a != nil {
			s.arena = a
		}
	}
}

// Spawner owns the live obstacle list and the pool behind it.
// It is not safe for concurrent use; drive it from the frame loop after the
// orbit controller has ticked.
type Spawner struct {
	cfg     Config
	running bool
	timer   time.Duration
	live    []Handle

	arena   *Arena
	center  CenterSource
	radius  RadiusSource
	sample  Sampler
	rng     *rand.Rand
	logger  *log.Logger
	metrics *Metrics

	grid *physics.SpatialGrid
}

// New creates a stopped spawner.
func New(cfg Config, opts ...Option) *Spawner {
	s := &Spawner{
		cfg:    cfg,
		arena:  NewArena(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: log.Default(),
		grid:   physics.NewSpatialGrid(0, 0, 1, 1, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sample == nil {
		s.sample = s.uniformDisk
	}
	return s
}

// Initialize clears the field and seeds it, then starts the timer.
// Live obstacles go back to the pool; obstacles the arena still hands out but the
// spawner no longer tracks are destroyed.
func (s *Spawner) Initialize() {
	cleared := s.releaseLive()
	s.metrics.recordDespawn(cleared)

	var orphans []Handle
	s.arena.EachLive(func(h Handle) { orphans = append(orphans, h) })
	for _, h := range orphans {
		s.arena.Destroy(h)
	}
	if len(orphans) > 0 {
		s.logger.Debug("removed untracked obstacles", "count", len(orphans))
	}

	s.timer = 0
	spawned := 0
	for range s.cfg.InitialCount {
		if s.placeOne(s.cfg.InitialIgnoresOrbit) {
			spawned++
		}
	}
	s.running = true

	s.logger.Debug("spawner initialized", "cleared", cleared, "seeded", spawned, "requested", s.cfg.InitialCount)
}

// releaseLive pools every tracked obstacle and reports how many were actually
// released. Handles invalidated behind the spawner's back are not counted.
func (s *Spawner) releaseLive() int {
	released := 0
	for _, h := range s.live {
		if s.arena.Release(h) {
			released++
		}
	}
	s.live = s.live[:0]
	return released
}

// Begin resumes timed spawning without touching anything else.
func (s *Spawner) Begin() {
	s.running = true
	s.logger.Debug("spawner started")
}

// Stop halts timed spawning. Live obstacles stay where they are.
func (s *Spawner) Stop() {
	s.running = false
	s.logger.Debug("spawner stopped", "live", len(s.live))
}

// Running reports whether timed spawning is active.
func (s *Spawner) Running() bool {
	return s.running
}

// Tick advances the spawn timer and runs one placement sequence when it fires.
func (s *Spawner) Tick(dt time.Duration) {
	if !s.running {
		return
	}
	s.timer += dt
	if s.timer >= s.cfg.Interval {
		s.timer = 0
		s.placeOne(false)
	}
}

// TrySpawn runs a single placement sequence immediately, honoring the forbidden zone.
func (s *Spawner) TrySpawn() (Handle, bool) {
	if !s.placeOne(false) {
		return Handle{}, false
	}
	return s.live[len(s.live)-1], true
}

// Despawn returns an obstacle to the pool. Unknown or stale handles are ignored.
func (s *Spawner) Despawn(h Handle) {
	i := slices.Index(s.live, h)
	if i < 0 {
		return
	}
	s.live = slices.Delete(s.live, i, i+1)
	if s.arena.Release(h) {
		s.metrics.recordDespawn(1)
	}
}

// NotifyDestroyed forgets an obstacle that was removed by something other than the
// pool. The slot is dropped rather than pooled.
func (s *Spawner) NotifyDestroyed(h Handle) {
	if i := slices.Index(s.live, h); i >= 0 {
		s.live = slices.Delete(s.live, i, i+1)
	}
	s.arena.Destroy(h)
}

// Live returns the live handles. The slice is owned by the spawner and is only
// valid until the next mutating call.
func (s *Spawner) Live() []Handle {
	return s.live
}

// LiveCount returns the number of live obstacles.
func (s *Spawner) LiveCount() int {
	return len(s.live)
}

// Get returns the obstacle behind a live handle.
func (s *Spawner) Get(h Handle) (*Obstacle, bool) {
	return s.arena.Get(h)
}

// Stats returns the underlying pool usage.
func (s *Spawner) Stats() ArenaStats {
	return s.arena.Stats()
}

// placeOne runs one placement sequence: prune, capacity check, then up to
// MaxAttempts random draws. The first acceptable draw is spawned.
func (s *Spawner) placeOne(ignoreOrbit bool) bool {
	s.prune()

	if len(s.live) >= s.cfg.MaxAlive {
		s.metrics.recordSkip(skipCapacity)
		return false
	}

	radius := s.spawnRadius()
	s.rebuildGrid(radius)

	for range s.cfg.MaxAttempts {
		x, y := s.sample(radius)
		if !s.canPlace(x, y, ignoreOrbit) {
			continue
		}
		s.spawnAt(x, y)
		return true
	}

	s.metrics.recordSkip(skipExhausted)
	s.logger.Debug("placement exhausted", "attempts", s.cfg.MaxAttempts, "live", len(s.live))
	return false
}

// prune drops handles that were invalidated behind the spawner's back.
func (s *Spawner) prune() {
	s.live = slices.DeleteFunc(s.live, func(h Handle) bool {
		return !s.arena.Valid(h)
	})
}

// spawnRadius prefers the viewport-derived radius and falls back to the configured one.
func (s *Spawner) spawnRadius() float64 {
	if s.radius != nil {
		if r, ok := s.radius.SpawnRadius(); ok && r > 0 {
			return r
		}
	}
	return math.Max(0, s.cfg.SpawnRadius)
}

// forbiddenZone returns the current orbit center and the shrunk exclusion radius.
// Without a center source the zone is empty.
func (s *Spawner) forbiddenZone() (physics.Vec3, float64) {
	if s.center == nil {
		return physics.Vec3{}, 0
	}
	return s.center.CurrentCenterPosition(), s.center.CurrentDistance() - s.cfg.OrbitEpsilon
}

// rebuildGrid indexes live obstacle positions for the separation check.
// The grid indexes into s.live.
func (s *Spawner) rebuildGrid(radius float64) {
	if s.cfg.MinSeparation <= 0 {
		return
	}
	half := radius + s.cfg.MinSeparation
	s.grid.Reset(-half, -half, 2*half, 2*half, s.cfg.MinSeparation)
	for i, h := range s.live {
		if o, ok := s.arena.Get(h); ok {
			s.grid.Insert(o.X, o.Y, i)
		}
	}
}

// canPlace checks a draw against the forbidden zone and the separation rule.
// rebuildGrid must have run since the live list last changed.
func (s *Spawner) canPlace(x, y float64, ignoreOrbit bool) bool {
	if !ignoreOrbit {
		c, r := s.forbiddenZone()
		if physics.InsideRadius(x, y, c.X, c.Y, r) {
			return false
		}
	}

	sep := s.cfg.MinSeparation
	if sep <= 0 {
		return true
	}
	sepSq := sep * sep
	blocked := false
	s.grid.QueryAround(x, y, func(i int) bool {
		o, ok := s.arena.Get(s.live[i])
		if ok && physics.DistanceSquared(x, y, o.X, o.Y) < sepSq {
			blocked = true
		}
		return blocked
	})
	return !blocked
}

func (s *Spawner) spawnAt(x, y float64) {
	h, o, reused := s.arena.Acquire()
	o.resetForSpawn(s, x, y, s.cfg.ObstacleRadius, s.rng)
	s.live = append(s.live, h)

	s.metrics.recordSpawn(reused)
	s.logger.Debug("obstacle spawned", "x", x, "y", y, "reused", reused, "live", len(s.live))
}

// uniformDisk samples uniformly by area inside a disk centered at the world origin.
func (s *Spawner) uniformDisk(radius float64) (float64, float64) {
	r := radius * math.Sqrt(s.rng.Float64())
	a := s.rng.Float64() * 2 * math.Pi
	return r * math.Cos(a), r * math.Sin(a)
}
