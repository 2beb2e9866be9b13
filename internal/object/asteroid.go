package object

import (
	"math"

	"github.com/tomz197/twinorbit/internal/draw"
	"github.com/tomz197/twinorbit/internal/spawn"
)

// DrawObstacle draws an obstacle as an irregular polygon. Exploding obstacles are
// represented by their particles only.
func DrawObstacle(ctx DrawContext, o *spawn.Obstacle) {
	if o.Exploding || len(o.Vertices) < 3 {
		return
	}
	if !ctx.View.Contains(o.X, o.Y, o.Radius) {
		return
	}

	center := ctx.View.ToCanvas(o.X, o.Y)
	n := len(o.Vertices)
	points := ctx.Canvas.BorrowPoints(n)
	for i, dist := range o.Vertices {
		a := o.Angle + float64(i)*2*math.Pi/float64(n)
		// World Y is flipped on the canvas.
		points[i] = draw.Point{
			X: center.X + math.Cos(a)*dist,
			Y: center.Y - math.Sin(a)*dist,
		}
	}
	ctx.Canvas.DrawPolygon(points, false)
}
