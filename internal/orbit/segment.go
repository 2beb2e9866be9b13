package orbit

import (
	"math"

	"github.com/tomz197/twinorbit/internal/physics"
)

// segmentMinLength is the length at or below which the link is hidden.
const segmentMinLength = 1e-6

// Segment is the visual link between the two bodies. It is derived state:
// every field is recomputed from the body positions.
type Segment struct {
	Midpoint  physics.Vec3
	Direction physics.Vec3 // Unit vector from primary to secondary
	Length    float64
	Angle     float64 // Radians taking +Y onto Direction in the XY plane
	Hidden    bool    // Bodies coincide; orientation is undefined

	Thickness   float64 // X scale
	LengthScale float64 // Y scale
}

// computeSegment derives the link from a (primary) to b (secondary).
// prev supplies the Y scale kept when length matching is disabled or the link is hidden.
func computeSegment(prev Segment, a, b physics.Vec3, thickness, baseLength float64, match bool) Segment {
	ab := b.Sub(a)
	length := ab.Length()
	if length <= segmentMinLength {
		prev.Hidden = true
		prev.Length = length
		return prev
	}

	dir := ab.Scale(1 / length)
	s := Segment{
		Midpoint:    a.Add(ab.Scale(0.5)),
		Direction:   dir,
		Length:      length,
		Angle:       math.Atan2(-dir.X, dir.Y),
		Thickness:   thickness,
		LengthScale: prev.LengthScale,
	}
	if match {
		s.LengthScale = length / baseLength
	}
	return s
}

// Endpoints returns the two ends of the link as drawn: the midpoint plus or minus
// half the scaled length along the direction.
func (s Segment) Endpoints(baseLength float64) (physics.Vec3, physics.Vec3) {
	half := s.Direction.Scale(s.LengthScale * baseLength / 2)
	return s.Midpoint.Sub(half), s.Midpoint.Add(half)
}
