package game

import (
	"github.com/tomz197/twinorbit/internal/physics"
	"github.com/tomz197/twinorbit/internal/spawn"
)

// Kind tags what a Collidable stands for.
type Kind int

const (
	KindBody Kind = iota
	KindObstacle
)

// Collidable is a circle taking part in collision checks.
type Collidable struct {
	Kind   Kind
	X, Y   float64
	Radius float64
	Handle spawn.Handle // Set for obstacles
}

// Overlaps reports whether two collidables touch.
func Overlaps(a, b Collidable) bool {
	return physics.CirclesOverlap(a.X, a.Y, a.Radius, b.X, b.Y, b.Radius)
}

// Hit is a body touching a live obstacle.
type Hit struct {
	Body     Collidable
	Obstacle Collidable
}

// explosionParticles is the particle count of an obstacle burst.
const explosionParticles = 12

// collectCollidables fills the world's scratch slices with both bodies and
// every live, non-exploding obstacle.
func (w *World) collectCollidables() {
	w.bodies = w.bodies[:0]
	w.obstacles = w.obstacles[:0]

	for _, p := range []physics.Vec3{w.orbit.Primary(), w.orbit.Secondary()} {
		w.bodies = append(w.bodies, Collidable{Kind: KindBody, X: p.X, Y: p.Y, Radius: w.cfg.BodyRadius})
	}
	for _, h := range w.spawner.Live() {
		o, ok := w.spawner.Get(h)
		if !ok || !o.Alive {
			continue
		}
		w.obstacles = append(w.obstacles, Collidable{Kind: KindObstacle, X: o.X, Y: o.Y, Radius: o.Radius, Handle: h})
	}
}

// findHits returns every body/obstacle contact. An obstacle is reported once
// even when both bodies touch it.
func findHits(bodies, obstacles []Collidable, hits []Hit) []Hit {
	hits = hits[:0]
	for _, ob := range obstacles {
		for _, b := range bodies {
			if Overlaps(b, ob) {
				hits = append(hits, Hit{Body: b, Obstacle: ob})
				break
			}
		}
	}
	return hits
}

// checkCollisions explodes every obstacle touching a body and charges a life per hit.
func (w *World) checkCollisions() {
	w.collectCollidables()
	w.hits = findHits(w.bodies, w.obstacles, w.hits)

	for _, hit := range w.hits {
		if w.manager.State() != StatePlaying {
			return
		}
		o, ok := w.spawner.Get(hit.Obstacle.Handle)
		if !ok || !o.Alive {
			continue
		}
		o.Explode(w.cfg.ExplodeDuration)
		w.effects.SpawnExplosion(o.X, o.Y, explosionParticles, 4, 0.5)
		w.logger.Debug("obstacle hit", "x", o.X, "y", o.Y)
		w.manager.LoseLife(1)
	}
}
