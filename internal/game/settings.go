package game

import (
	"github.com/tomz197/twinorbit/internal/config"
	"github.com/tomz197/twinorbit/internal/object"
	"github.com/tomz197/twinorbit/internal/orbit"
	"github.com/tomz197/twinorbit/internal/physics"
	"github.com/tomz197/twinorbit/internal/spawn"
)

// OrbitConfig maps orbit settings onto the controller config.
func OrbitConfig(s config.OrbitSettings) orbit.Config {
	return orbit.Config{
		Distance:            s.Distance,
		AngularSpeed:        s.AngularSpeed,
		Axis:                vec3(s.Axis, physics.Forward),
		Right:               vec3(s.Right, physics.Right),
		BeamThickness:       s.BeamThickness,
		BeamBaseLength:      s.BeamBaseLength,
		MatchBeamToDistance: s.MatchBeamToDistance,
	}
}

// SpawnConfig maps spawner and game settings onto the spawner config.
func SpawnConfig(s config.Settings) spawn.Config {
	return spawn.Config{
		Interval:            s.Spawner.Interval,
		MaxAlive:            s.Spawner.MaxAlive,
		SpawnRadius:         s.Spawner.Radius,
		InitialCount:        s.Spawner.InitialCount,
		MinSeparation:       s.Spawner.MinSeparation,
		MaxAttempts:         s.Spawner.MaxAttempts,
		OrbitEpsilon:        s.Spawner.OrbitEpsilon,
		InitialIgnoresOrbit: s.Spawner.InitialIgnoresOrbit,
		ObstacleRadius:      s.Game.ObstacleRadius,
	}
}

// Viewport maps view settings onto the render viewport.
func Viewport(s config.ViewSettings) object.Viewport {
	return object.Viewport{Width: s.Width, Height: s.Height, Margin: s.Margin}
}

func vec3(v []float64, fallback physics.Vec3) physics.Vec3 {
	if len(v) != 3 {
		return fallback
	}
	return physics.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
