package object

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/twinorbit/internal/draw"
	"github.com/tomz197/twinorbit/internal/orbit"
	"github.com/tomz197/twinorbit/internal/physics"
	"github.com/tomz197/twinorbit/internal/spawn"
)

func TestViewportToCanvas(t *testing.T) {
	v := Viewport{Width: 24, Height: 16}

	assert.Equal(t, draw.Point{X: 12, Y: 8}, v.ToCanvas(0, 0))
	assert.Equal(t, draw.Point{X: 15, Y: 6}, v.ToCanvas(3, 2))
	assert.Equal(t, draw.Point{X: 0, Y: 16}, v.ToCanvas(-12, -8))
}

func TestViewportSpawnRadius(t *testing.T) {
	r, ok := Viewport{Width: 24, Height: 16, Margin: 1}.SpawnRadius()
	require.True(t, ok)
	assert.Equal(t, 7.0, r)

	_, ok = Viewport{Width: 2, Height: 2, Margin: 1}.SpawnRadius()
	assert.False(t, ok)
}

func TestViewportImplementsRadiusSource(t *testing.T) {
	var _ spawn.RadiusSource = Viewport{}
}

func TestViewportContains(t *testing.T) {
	v := Viewport{Width: 24, Height: 16}
	assert.True(t, v.Contains(0, 0, 0))
	assert.True(t, v.Contains(12.3, 0, 0.5))
	assert.False(t, v.Contains(13, 0, 0.5))
}

func TestEffectsLifecycle(t *testing.T) {
	var e Effects
	e.SpawnExplosion(1, 1, 10, 5, 0.5)
	require.Equal(t, 10, e.Len())

	e.Update(100 * time.Millisecond)
	assert.Equal(t, 10, e.Len())

	e.Update(time.Second)
	assert.Equal(t, 0, e.Len())

	e.SpawnExplosion(0, 0, 3, 5, 1)
	e.Reset()
	assert.Equal(t, 0, e.Len())
}

func TestParticleMovesAndFades(t *testing.T) {
	p := NewParticle(0, 0, 10, 0, 1)
	p.Drag = 1

	assert.False(t, p.Update(100*time.Millisecond))
	assert.InDelta(t, 1, p.X, 1e-9)
	assert.InDelta(t, 0.9, p.Lifetime, 1e-9)
	assert.True(t, p.Update(time.Second))
}

func newCanvas() *draw.Canvas {
	// 24x16 world onto 48 columns x 16 rows (48x32 pixels): 2 pixels per unit.
	return draw.NewScaledCanvas(48, 16, 24, 16)
}

func rendered(c *draw.Canvas) string {
	var sb strings.Builder
	c.Render(&sb)
	return sb.String()
}

func TestDrawBodies(t *testing.T) {
	ctrl := orbit.NewController(orbit.Config{
		Distance:            3,
		AngularSpeed:        90,
		BeamThickness:       0.15,
		BeamBaseLength:      1,
		MatchBeamToDistance: true,
	}, physics.Vec3{}, physics.Vec3{X: 3}, orbit.WithLogger(log.New(io.Discard)))

	canvas := newCanvas()
	ctx := DrawContext{Canvas: canvas, View: Viewport{Width: 24, Height: 16}}
	DrawBodies(ctx, ctrl, BodyStyle{Radius: 0.45, BeamBaseLength: 1, ShowGuide: true})

	out := rendered(canvas)
	assert.True(t, strings.ContainsAny(out, "▀▄█"))
}

func TestDrawObstacleSkipsExploding(t *testing.T) {
	s := spawn.New(spawn.Config{
		MaxAlive:       1,
		SpawnRadius:    1,
		MaxAttempts:    1,
		ObstacleRadius: 0.4,
	}, spawn.WithSampler(func(float64) (float64, float64) { return 0, 0 }), spawn.WithLogger(log.New(io.Discard)))
	h, ok := s.TrySpawn()
	require.True(t, ok)
	o, _ := s.Get(h)

	canvas := newCanvas()
	ctx := DrawContext{Canvas: canvas, View: Viewport{Width: 24, Height: 16}}
	rendered(canvas) // settle the initial full redraw

	DrawObstacle(ctx, o)
	assert.NotEmpty(t, rendered(canvas))

	canvas.Clear()
	rendered(canvas)
	o.Explode(time.Second)
	DrawObstacle(ctx, o)
	assert.Empty(t, rendered(canvas))
}

func TestBodyLabel(t *testing.T) {
	name, _ := BodyLabel(orbit.CenteredOnPrimary)
	assert.Equal(t, "EARTH", name)
	name, _ = BodyLabel(orbit.CenteredOnSecondary)
	assert.Equal(t, "SUN", name)
}
