package spawn

import (
	"math"
	"math/rand"
	"time"
)

// Obstacle is a pooled asteroid. Its fields are owned by the Spawner; callers
// read them and use Explode/Resolve to drive its lifecycle.
type Obstacle struct {
	handle Handle
	owner  *Spawner

	X, Y     float64   // Position
	Angle    float64   // Orientation (radians)
	Spin     float64   // Rotation speed (radians/sec)
	Radius   float64   // Collision radius
	Vertices []float64 // Vertex distances from center (irregular outline)

	Alive       bool          // Collidable
	Exploding   bool          // Playing the explode sequence
	ExplodeLeft time.Duration // Remaining explode time
}

// Handle returns the obstacle's current handle.
func (o *Obstacle) Handle() Handle {
	return o.handle
}

// resetForSpawn places the obstacle and regenerates its outline, reusing the
// vertex slice of a pooled obstacle.
func (o *Obstacle) resetForSpawn(owner *Spawner, x, y, radius float64, rng *rand.Rand) {
	o.owner = owner
	o.X, o.Y = x, y
	o.Angle = rng.Float64() * 2 * math.Pi
	o.Spin = (rng.Float64() - 0.5) * 2.0
	o.Radius = radius
	o.Alive = true
	o.Exploding = false
	o.ExplodeLeft = 0

	n := 8 + rng.Intn(5)
	if cap(o.Vertices) < n {
		o.Vertices = make([]float64, n)
	}
	o.Vertices = o.Vertices[:n]
	for i := range o.Vertices {
		o.Vertices[i] = radius * (0.7 + rng.Float64()*0.6)
	}
}

// Explode starts the explode sequence. The obstacle stops being collidable
// immediately. Exploding twice is a no-op.
func (o *Obstacle) Explode(d time.Duration) {
	if o.Exploding || !o.Alive {
		return
	}
	o.Alive = false
	o.Exploding = true
	o.ExplodeLeft = d
}

// Update advances rotation and the explode timer. It returns true once the
// explode sequence has finished and the obstacle should be resolved.
func (o *Obstacle) Update(dt time.Duration) bool {
	o.Angle += o.Spin * dt.Seconds()
	if !o.Exploding {
		return false
	}
	o.ExplodeLeft -= dt
	return o.ExplodeLeft <= 0
}

// Resolve hands the obstacle back to its owner's pool.
func (o *Obstacle) Resolve() {
	if o.owner != nil {
		o.owner.Despawn(o.handle)
	}
}
