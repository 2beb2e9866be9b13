// Package orbit implements the twin-body orbit: one body stays fixed as the center
// while the other circles it at a fixed distance, and a tap swaps the roles.
package orbit

import (
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/twinorbit/internal/physics"
)

// Center selects which body is currently fixed.
type Center int

const (
	CenteredOnPrimary Center = iota
	CenteredOnSecondary
)

func (c Center) String() string {
	if c == CenteredOnSecondary {
		return "secondary"
	}
	return "primary"
}

// Body is a point body. It has no lifecycle of its own.
type Body struct {
	Position physics.Vec3
}

// Config holds the tunables of a Controller.
type Config struct {
	Distance     float64      // Satellite distance from the center (world units)
	AngularSpeed float64      // Degrees per second
	Axis         physics.Vec3 // Rotation axis; zero means Forward (XY plane)
	Right        physics.Vec3 // Fallback direction when the bodies coincide

	BeamThickness       float64 // Segment X scale
	BeamBaseLength      float64 // Unscaled segment length
	MatchBeamToDistance bool    // Scale the segment length to the body separation
}

// Controller owns both bodies and the orbit state machine.
type Controller struct {
	primary   Body
	secondary Body
	center    Center

	distance     float64
	angularSpeed float64
	axis         physics.Vec3
	right        physics.Vec3

	segment        Segment
	beamThickness  float64
	beamBaseLength float64
	matchBeam      bool

	logger *log.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for toggle diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller centered on the primary body.
func NewController(cfg Config, primary, secondary physics.Vec3, opts ...Option) *Controller {
	axis := cfg.Axis
	if axis.IsDegenerate() {
		axis = physics.Forward
	}
	right := cfg.Right
	if right.IsDegenerate() {
		right = physics.Right
	}
	base := cfg.BeamBaseLength
	if base <= 0 {
		base = 1
	}

	c := &Controller{
		primary:        Body{Position: primary},
		secondary:      Body{Position: secondary},
		center:         CenteredOnPrimary,
		distance:       math.Max(0, cfg.Distance),
		angularSpeed:   cfg.AngularSpeed,
		axis:           axis.Normalized(),
		right:          right.Normalized(),
		beamThickness:  cfg.BeamThickness,
		beamBaseLength: base,
		matchBeam:      cfg.MatchBeamToDistance,
		segment:        Segment{LengthScale: 1},
		logger:         log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.updateSegment()
	return c
}

// Settle snaps the satellite to exactly Distance from the center without rotating it.
// Call once after placing the bodies.
func (c *Controller) Settle() {
	center, satellite := c.bodies()
	satellite.Position = c.project(center.Position, satellite.Position.Sub(center.Position))
	c.updateSegment()
}

// Tick advances the orbit by dt. The satellite is rotated around the center and
// re-projected to Distance, so drift never accumulates.
func (c *Controller) Tick(dt time.Duration) {
	center, satellite := c.bodies()

	rel := satellite.Position.Sub(center.Position)
	if rel.IsDegenerate() {
		rel = c.right
	}
	rel = rel.RotateAroundAxis(c.axis, c.angularSpeed*dt.Seconds())
	satellite.Position = c.project(center.Position, rel)

	c.updateSegment()
}

// ToggleCenter swaps which body is fixed. Positions are untouched.
func (c *Controller) ToggleCenter() {
	if c.center == CenteredOnPrimary {
		c.center = CenteredOnSecondary
	} else {
		c.center = CenteredOnPrimary
	}
	c.logger.Debug("orbit center toggled", "center", c.center)
}

// Center returns the current orbit state.
func (c *Controller) Center() Center {
	return c.center
}

// CurrentCenterPosition returns the position of the fixed body.
func (c *Controller) CurrentCenterPosition() physics.Vec3 {
	center, _ := c.bodies()
	return center.Position
}

// CurrentDistance returns the orbit radius.
func (c *Controller) CurrentDistance() float64 {
	return c.distance
}

// SetDistance changes the orbit radius. Negative values clamp to zero.
// The satellite snaps to the new radius on the next Tick.
func (c *Controller) SetDistance(d float64) {
	c.distance = math.Max(0, d)
}

// Primary returns the primary body's position.
func (c *Controller) Primary() physics.Vec3 {
	return c.primary.Position
}

// Secondary returns the secondary body's position.
func (c *Controller) Secondary() physics.Vec3 {
	return c.secondary.Position
}

// Satellite returns the position of the orbiting body.
func (c *Controller) Satellite() physics.Vec3 {
	_, satellite := c.bodies()
	return satellite.Position
}

// Segment returns the link segment computed on the last update.
func (c *Controller) Segment() Segment {
	return c.segment
}

// OrbitPath returns a closed ring of points (first == last) around the current
// center at Distance, lying in the plane perpendicular to the rotation axis.
// Returns nil when the distance is zero.
func (c *Controller) OrbitPath(segments int) []physics.Vec3 {
	if c.distance <= 0 {
		return nil
	}
	segments = min(max(segments, 12), 256)

	u, w := physics.PlaneBasis(c.axis)
	center := c.CurrentCenterPosition()
	step := 2 * math.Pi / float64(segments)

	points := make([]physics.Vec3, segments+1)
	for i := range points {
		a := step * float64(i)
		offset := u.Scale(math.Cos(a)).Add(w.Scale(math.Sin(a))).Scale(c.distance)
		points[i] = center.Add(offset)
	}
	return points
}

// bodies returns (center, satellite) according to the current state.
func (c *Controller) bodies() (*Body, *Body) {
	if c.center == CenteredOnPrimary {
		return &c.primary, &c.secondary
	}
	return &c.secondary, &c.primary
}

// project places a point at exactly Distance from center along rel.
func (c *Controller) project(center, rel physics.Vec3) physics.Vec3 {
	if rel.IsDegenerate() {
		rel = c.right
	}
	return center.Add(rel.Normalized().Scale(c.distance))
}

func (c *Controller) updateSegment() {
	c.segment = computeSegment(c.segment, c.primary.Position, c.secondary.Position,
		c.beamThickness, c.beamBaseLength, c.matchBeam)
}
