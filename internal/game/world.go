package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/twinorbit/internal/config"
	"github.com/tomz197/twinorbit/internal/object"
	"github.com/tomz197/twinorbit/internal/orbit"
	"github.com/tomz197/twinorbit/internal/physics"
	"github.com/tomz197/twinorbit/internal/spawn"
)

// World owns one round: the orbit, the obstacles and their effects.
type World struct {
	orbit   *orbit.Controller
	spawner *spawn.Spawner
	manager *Manager
	effects object.Effects
	view    object.Viewport
	cfg     config.GameSettings
	style   object.BodyStyle
	logger  *log.Logger

	// Per-frame scratch
	bodies    []Collidable
	obstacles []Collidable
	hits      []Hit
	handles   []spawn.Handle
}

type worldOptions struct {
	logger       *log.Logger
	rng          *rand.Rand
	events       Events
	radiusSource spawn.RadiusSource
	spawnOpts    []spawn.Option
	metrics      bool
}

// Option configures a World.
type Option func(*worldOptions)

// WithLogger sets the logger shared by the world's components.
func WithLogger(l *log.Logger) Option {
	return func(o *worldOptions) { o.logger = l }
}

// WithRand seeds obstacle placement.
func WithRand(r *rand.Rand) Option {
	return func(o *worldOptions) { o.rng = r }
}

// WithEvents subscribes to round events.
func WithEvents(e Events) Option {
	return func(o *worldOptions) { o.events = e }
}

// WithRadiusSource overrides the viewport as spawn radius source.
func WithRadiusSource(r spawn.RadiusSource) Option {
	return func(o *worldOptions) { o.radiusSource = r }
}

// WithSpawnerOptions passes extra options to the spawner. They run last.
func WithSpawnerOptions(opts ...spawn.Option) Option {
	return func(o *worldOptions) { o.spawnOpts = append(o.spawnOpts, opts...) }
}

// WithoutMetrics skips the spawn counters.
func WithoutMetrics() Option {
	return func(o *worldOptions) { o.metrics = false }
}

// NewWorld builds a world from settings. The primary body starts at the origin
// and the secondary on the right axis at the orbit distance.
func NewWorld(s config.Settings, opts ...Option) (*World, error) {
	o := worldOptions{metrics: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}

	ocfg := OrbitConfig(s.Orbit)
	right := ocfg.Right
	if right.IsDegenerate() {
		right = physics.Right
	}
	secondary := right.Normalized().Scale(max(0, ocfg.Distance))
	ctrl := orbit.NewController(ocfg, physics.Vec3{}, secondary,
		orbit.WithLogger(o.logger.WithPrefix("orbit")))
	ctrl.Settle()

	view := Viewport(s.View)
	var radius spawn.RadiusSource = view
	if o.radiusSource != nil {
		radius = o.radiusSource
	}

	spawnOpts := []spawn.Option{
		spawn.WithCenterSource(ctrl),
		spawn.WithRadiusSource(radius),
		spawn.WithLogger(o.logger.WithPrefix("spawner")),
		spawn.WithRand(o.rng),
	}
	if o.metrics {
		m, err := spawn.NewMetrics()
		if err != nil {
			return nil, fmt.Errorf("spawner metrics: %w", err)
		}
		spawnOpts = append(spawnOpts, spawn.WithMetrics(m))
	}
	spawnOpts = append(spawnOpts, o.spawnOpts...)
	sp := spawn.New(SpawnConfig(s), spawnOpts...)

	mgr := NewManager(ManagerConfig{
		InitialLives:   s.Game.InitialLives,
		ScorePerSecond: s.Game.ScorePerSecond,
	}, sp, ctrl, o.events, o.logger.WithPrefix("game"))

	return &World{
		orbit:   ctrl,
		spawner: sp,
		manager: mgr,
		view:    view,
		cfg:     s.Game,
		style: object.BodyStyle{
			Radius:         s.Game.BodyRadius,
			BeamBaseLength: ocfg.BeamBaseLength,
			ShowGuide:      true,
		},
		logger: o.logger,
	}, nil
}

// Orbit returns the orbit controller.
func (w *World) Orbit() *orbit.Controller { return w.orbit }

// Spawner returns the obstacle spawner.
func (w *World) Spawner() *spawn.Spawner { return w.spawner }

// Manager returns the round state machine.
func (w *World) Manager() *Manager { return w.manager }

// View returns the visible area.
func (w *World) View() object.Viewport { return w.view }

// Effects returns the particle effects.
func (w *World) Effects() *object.Effects { return &w.effects }

// Reset clears effects and puts the round back in StateReady.
func (w *World) Reset() {
	w.effects.Reset()
	w.manager.ToReady()
}

// Tap handles the single game input: it starts a round from Ready or
// GameOver and swaps the orbit center while playing.
func (w *World) Tap() {
	switch w.manager.State() {
	case StateInit, StateReady, StateGameOver:
		if w.manager.State() != StateReady {
			w.effects.Reset()
		}
		w.manager.StartGame()
	case StatePlaying:
		w.orbit.ToggleCenter()
	}
}

// Update advances one frame. The orbit moves before the spawner ticks so new
// placements respect this frame's forbidden zone.
func (w *World) Update(dt time.Duration, tap bool) {
	if w.manager.State() == StatePaused {
		return
	}
	if tap {
		w.Tap()
	}
	st := w.manager.State()
	if st == StateInit {
		return
	}

	if st == StateReady || st == StatePlaying {
		w.orbit.Tick(dt)
	}
	if st == StatePlaying {
		w.spawner.Tick(dt)
		w.checkCollisions()
		w.manager.Tick(dt)
	}

	w.updateObstacles(dt)
	w.effects.Update(dt)
}

// updateObstacles spins obstacles and returns finished explosions to the pool.
func (w *World) updateObstacles(dt time.Duration) {
	w.handles = append(w.handles[:0], w.spawner.Live()...)
	for _, h := range w.handles {
		o, ok := w.spawner.Get(h)
		if !ok {
			continue
		}
		if o.Update(dt) {
			o.Resolve()
		}
	}
}

// Draw renders bodies, obstacles and effects.
func (w *World) Draw(ctx object.DrawContext) {
	for _, h := range w.spawner.Live() {
		if o, ok := w.spawner.Get(h); ok {
			object.DrawObstacle(ctx, o)
		}
	}
	object.DrawBodies(ctx, w.orbit, w.style)
	w.effects.Draw(ctx)
}

// ObstaclesExploding reports how many obstacles are still mid-explosion.
func (w *World) ObstaclesExploding() int {
	n := 0
	for _, h := range w.spawner.Live() {
		if o, ok := w.spawner.Get(h); ok && o.Exploding {
			n++
		}
	}
	return n
}
