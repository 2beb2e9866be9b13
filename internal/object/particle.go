package object

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// particlePool reuses Particle values across explosions.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived visual effect in world space.
type Particle struct {
	X, Y        float64 // Position
	VX, VY      float64 // Velocity (world units/sec)
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64 // Initial lifetime (for fade)
	Drag        float64 // Velocity kept per 1/60 s (1.0 = no drag)
}

// NewParticle takes a particle from the pool.
func NewParticle(x, y, vx, vy, lifetime float64) *Particle {
	p := particlePool.Get().(*Particle)
	*p = Particle{
		X:           x,
		Y:           y,
		VX:          vx,
		VY:          vy,
		Lifetime:    lifetime,
		MaxLifetime: lifetime,
		Drag:        0.95,
	}
	return p
}

// Release returns the particle to the pool.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// Update moves the particle. Returns true once its lifetime is over.
func (p *Particle) Update(dt time.Duration) bool {
	s := dt.Seconds()
	p.Lifetime -= s
	if p.Lifetime <= 0 {
		return true
	}
	drag := math.Pow(p.Drag, s*60)
	p.VX *= drag
	p.VY *= drag
	p.X += p.VX * s
	p.Y += p.VY * s
	return false
}

// Draw plots the particle; it disappears during the last quarter of its life.
func (p *Particle) Draw(ctx DrawContext) {
	if p.MaxLifetime > 0 && p.Lifetime/p.MaxLifetime < 0.25 {
		return
	}
	pt := ctx.View.ToCanvas(p.X, p.Y)
	ctx.Canvas.SetFloat(pt.X, pt.Y)
}

// Effects owns the live particles of one world.
type Effects struct {
	objects []Object
}

// SpawnExplosion adds a circular burst of particles at (x,y).
func (e *Effects) SpawnExplosion(x, y float64, count int, speed, lifetime float64) {
	for range count {
		angle := rand.Float64() * 2 * math.Pi
		spd := speed * (0.5 + rand.Float64())
		life := lifetime * (0.5 + rand.Float64()*0.5)
		e.objects = append(e.objects, NewParticle(x, y, math.Cos(angle)*spd, math.Sin(angle)*spd, life))
	}
}

// Update advances all effects and releases finished ones.
func (e *Effects) Update(dt time.Duration) {
	kept := e.objects[:0]
	for _, obj := range e.objects {
		if obj.Update(dt) {
			release(obj)
			continue
		}
		kept = append(kept, obj)
	}
	clear(e.objects[len(kept):])
	e.objects = kept
}

// Draw draws all effects.
func (e *Effects) Draw(ctx DrawContext) {
	for _, obj := range e.objects {
		obj.Draw(ctx)
	}
}

// Len returns the number of live effects.
func (e *Effects) Len() int {
	return len(e.objects)
}

// Reset drops all effects.
func (e *Effects) Reset() {
	for _, obj := range e.objects {
		release(obj)
	}
	clear(e.objects)
	e.objects = e.objects[:0]
}

// release returns pooled objects to their pool.
func release(obj Object) {
	if p, ok := obj.(*Particle); ok {
		p.Release()
	}
}
