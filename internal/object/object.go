// Package object renders the game world onto a draw.Canvas.
package object

import (
	"math"
	"time"

	"github.com/tomz197/twinorbit/internal/draw"
)

// Object is a short-lived world entity owned by the renderer side (effects).
type Object interface {
	// Update advances the object. Returns true if it should be removed.
	Update(dt time.Duration) (remove bool)
	// Draw draws the object onto the canvas.
	Draw(ctx DrawContext)
}

// DrawContext provides drawing resources for one frame.
type DrawContext struct {
	Canvas *draw.Canvas      // Logical size matches View
	Writer *draw.ChunkWriter // Text overlays
	View   Viewport
}

// Viewport is the visible world rectangle, centered on the world origin.
// World Y grows upward; canvas Y grows downward.
type Viewport struct {
	Width  float64 // World units
	Height float64 // World units
	Margin float64 // Kept free of spawns at the edges
}

// ToCanvas converts world coordinates to canvas logical coordinates.
func (v Viewport) ToCanvas(x, y float64) draw.Point {
	return draw.Point{X: x + v.Width/2, Y: v.Height/2 - y}
}

// Contains reports whether a circle at (x,y) is at least partly visible.
func (v Viewport) Contains(x, y, radius float64) bool {
	return math.Abs(x) <= v.Width/2+radius && math.Abs(y) <= v.Height/2+radius
}

// SpawnRadius derives the spawn disk from the visible half-extent minus the margin.
// It reports false when the viewport is too small to leave any room.
func (v Viewport) SpawnRadius() (float64, bool) {
	r := math.Min(v.Width, v.Height)/2 - v.Margin
	if r <= 0 {
		return 0, false
	}
	return r, true
}
