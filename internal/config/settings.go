package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every settings key when read from the environment,
// e.g. TWINORBIT_SPAWNER_MAXALIVE.
const EnvPrefix = "TWINORBIT"

// FileName is the settings file looked up in the config directory (without extension).
const FileName = "twinorbit"

// OrbitSettings configures the twin-body orbit.
type OrbitSettings struct {
	Distance            float64   `mapstructure:"distance"`
	AngularSpeed        float64   `mapstructure:"angularSpeed"` // Degrees per second
	Axis                []float64 `mapstructure:"axis"`
	Right               []float64 `mapstructure:"right"`
	BeamThickness       float64   `mapstructure:"beamThickness"`
	BeamBaseLength      float64   `mapstructure:"beamBaseLength"`
	MatchBeamToDistance bool      `mapstructure:"matchBeamToDistance"`
}

// SpawnerSettings configures obstacle placement.
type SpawnerSettings struct {
	Interval            time.Duration `mapstructure:"interval"`
	MaxAlive            int           `mapstructure:"maxAlive"`
	Radius              float64       `mapstructure:"radius"`
	InitialCount        int           `mapstructure:"initialCount"`
	MinSeparation       float64       `mapstructure:"minSeparation"`
	MaxAttempts         int           `mapstructure:"maxAttempts"`
	OrbitEpsilon        float64       `mapstructure:"orbitEpsilon"`
	InitialIgnoresOrbit bool          `mapstructure:"initialIgnoresOrbit"`
}

// GameSettings configures scoring, lives and collision sizes.
type GameSettings struct {
	InitialLives    int           `mapstructure:"initialLives"`
	ExplodeDuration time.Duration `mapstructure:"explodeDuration"`
	BodyRadius      float64       `mapstructure:"bodyRadius"`
	ObstacleRadius  float64       `mapstructure:"obstacleRadius"`
	ScorePerSecond  int           `mapstructure:"scorePerSecond"`
}

// ViewSettings describes the visible world area.
type ViewSettings struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	Margin float64 `mapstructure:"margin"`
}

// StorageSettings selects the ranking backend. An empty driver disables ranking.
type StorageSettings struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres | ""
	DSN    string `mapstructure:"dsn"`
}

// LogSettings configures logging.
type LogSettings struct {
	Level string `mapstructure:"level"`
}

// Settings is the full set of tunables.
type Settings struct {
	Orbit   OrbitSettings   `mapstructure:"orbit"`
	Spawner SpawnerSettings `mapstructure:"spawner"`
	Game    GameSettings    `mapstructure:"game"`
	View    ViewSettings    `mapstructure:"view"`
	Storage StorageSettings `mapstructure:"storage"`
	Log     LogSettings     `mapstructure:"log"`
}

func setDefaults() {
	viper.SetDefault("orbit.distance", 3.0)
	viper.SetDefault("orbit.angularSpeed", 90.0)
	viper.SetDefault("orbit.axis", []float64{0, 0, 1})
	viper.SetDefault("orbit.right", []float64{1, 0, 0})
	viper.SetDefault("orbit.beamThickness", 0.15)
	viper.SetDefault("orbit.beamBaseLength", 1.0)
	viper.SetDefault("orbit.matchBeamToDistance", true)

	viper.SetDefault("spawner.interval", "1s")
	viper.SetDefault("spawner.maxAlive", 50)
	viper.SetDefault("spawner.radius", 6.0)
	viper.SetDefault("spawner.initialCount", 8)
	viper.SetDefault("spawner.minSeparation", 0.5)
	viper.SetDefault("spawner.maxAttempts", 24)
	viper.SetDefault("spawner.orbitEpsilon", 0.001)
	viper.SetDefault("spawner.initialIgnoresOrbit", false)

	viper.SetDefault("game.initialLives", 1)
	viper.SetDefault("game.explodeDuration", "600ms")
	viper.SetDefault("game.bodyRadius", 0.45)
	viper.SetDefault("game.obstacleRadius", 0.4)
	viper.SetDefault("game.scorePerSecond", 10)

	viper.SetDefault("view.width", 24.0)
	viper.SetDefault("view.height", 16.0)
	viper.SetDefault("view.margin", 1.0)

	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.dsn", "twinorbit.db")

	viper.SetDefault("log.level", "info")
}

// Load reads settings from defaults, an optional twinorbit.yaml in configDir and
// TWINORBIT_* environment variables, in increasing priority.
// A missing file is fine; an unreadable or malformed one is an error.
func Load(configDir string) (Settings, error) {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// Validate rejects settings the game cannot run with.
func (s Settings) Validate() error {
	switch {
	case s.Orbit.Distance < 0:
		return errors.New("orbit.distance must not be negative")
	case len(s.Orbit.Axis) != 0 && len(s.Orbit.Axis) != 3:
		return errors.New("orbit.axis must have 3 components")
	case len(s.Orbit.Right) != 0 && len(s.Orbit.Right) != 3:
		return errors.New("orbit.right must have 3 components")
	case s.Spawner.Interval <= 0:
		return errors.New("spawner.interval must be positive")
	case s.Spawner.MaxAlive < 0:
		return errors.New("spawner.maxAlive must not be negative")
	case s.Spawner.MaxAttempts < 1:
		return errors.New("spawner.maxAttempts must be at least 1")
	case s.Spawner.MinSeparation < 0:
		return errors.New("spawner.minSeparation must not be negative")
	case s.Game.InitialLives < 1:
		return errors.New("game.initialLives must be at least 1")
	case s.View.Width <= 0 || s.View.Height <= 0:
		return errors.New("view size must be positive")
	}

	switch s.Storage.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage.driver %q", s.Storage.Driver)
	}
	return nil
}
