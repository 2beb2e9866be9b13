package object

import (
	"github.com/tomz197/twinorbit/internal/draw"
	"github.com/tomz197/twinorbit/internal/orbit"
	"github.com/tomz197/twinorbit/internal/physics"
)

// orbitGuideSegments is the number of dots in the orbit ring.
const orbitGuideSegments = 48

// BodyStyle sets how the twin bodies are drawn.
type BodyStyle struct {
	Radius         float64 // Body radius (world units)
	BeamBaseLength float64 // Unscaled link length
	ShowGuide      bool    // Draw the orbit ring around the center
}

// DrawBodies draws the orbit guide, the link between the bodies and the bodies.
// The fixed body is filled; the orbiting one is an outline.
func DrawBodies(ctx DrawContext, c *orbit.Controller, style BodyStyle) {
	if style.ShowGuide {
		for _, p := range c.OrbitPath(orbitGuideSegments) {
			pt := ctx.View.ToCanvas(p.X, p.Y)
			ctx.Canvas.SetFloat(pt.X, pt.Y)
		}
	}

	drawLink(ctx, c.Segment(), style.BeamBaseLength)

	center := c.CurrentCenterPosition()
	satellite := c.Satellite()
	ctx.Canvas.DrawCircle(ctx.View.ToCanvas(center.X, center.Y), style.Radius, true)
	ctx.Canvas.DrawCircle(ctx.View.ToCanvas(satellite.X, satellite.Y), style.Radius, false)
}

// drawLink draws the link as up to three parallel lines spanning its thickness.
func drawLink(ctx DrawContext, seg orbit.Segment, baseLength float64) {
	if seg.Hidden {
		return
	}
	a, b := seg.Endpoints(baseLength)
	line(ctx, a, b)

	if seg.Thickness <= 0 {
		return
	}
	// Perpendicular to the link in the XY plane.
	n := physics.Vec3{X: -seg.Direction.Y, Y: seg.Direction.X}.Scale(seg.Thickness / 2)
	line(ctx, a.Add(n), b.Add(n))
	line(ctx, a.Sub(n), b.Sub(n))
}

func line(ctx DrawContext, a, b physics.Vec3) {
	ctx.Canvas.DrawLine(ctx.View.ToCanvas(a.X, a.Y), ctx.View.ToCanvas(b.X, b.Y))
}

// BodyLabel returns the display name and HUD color of a center.
func BodyLabel(c orbit.Center) (name, color string) {
	if c == orbit.CenteredOnSecondary {
		return "SUN", draw.ColorBrightYellow
	}
	return "EARTH", draw.ColorBrightCyan
}
