// Package game ties the orbit and the spawner into a playable round: the state
// machine, scoring, lives and per-frame world update.
package game

import (
	"time"

	"github.com/charmbracelet/log"
)

// State is the phase of a round.
type State int

const (
	StateInit State = iota
	StateReady
	StatePlaying
	StatePaused
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game over"
	}
	return "unknown"
}

// Spawner is the lifecycle surface of the obstacle spawner.
type Spawner interface {
	Initialize()
	Begin()
	Stop()
}

// DistanceSetter adjusts the orbit radius.
type DistanceSetter interface {
	SetDistance(d float64)
}

// Result summarizes a finished round.
type Result struct {
	Score   int
	Elapsed time.Duration
}

// Events are optional callbacks fired synchronously on changes.
type Events struct {
	StateChanged func(State)
	ScoreChanged func(score int)
	LivesChanged func(lives int)
	GameStarted  func()
	GameOver     func(Result)
}

// ManagerConfig holds round rules.
type ManagerConfig struct {
	InitialLives   int
	ScorePerSecond int
}

// Manager is the round state machine.
type Manager struct {
	cfg     ManagerConfig
	state   State
	score   int
	lives   int
	elapsed time.Duration
	scored  int64 // Whole seconds already turned into score

	spawner Spawner
	orbit   DistanceSetter
	events  Events
	logger  *log.Logger
}

// NewManager creates a manager in StateInit. spawner and orbit may be nil.
func NewManager(cfg ManagerConfig, spawner Spawner, orbit DistanceSetter, events Events, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		cfg:     cfg,
		state:   StateInit,
		lives:   max(0, cfg.InitialLives),
		spawner: spawner,
		orbit:   orbit,
		events:  events,
		logger:  logger,
	}
}

// State returns the current phase.
func (m *Manager) State() State { return m.state }

// Score returns the current score.
func (m *Manager) Score() int { return m.score }

// Lives returns the remaining lives.
func (m *Manager) Lives() int { return m.lives }

// Elapsed returns the play time of the current round.
func (m *Manager) Elapsed() time.Duration { return m.elapsed }

// ToReady resets the round and re-seeds the field.
func (m *Manager) ToReady() {
	m.elapsed = 0
	m.scored = 0
	m.score = 0
	m.lives = max(0, m.cfg.InitialLives)
	m.emitScore()
	m.emitLives()

	if m.spawner != nil {
		m.spawner.Initialize()
	}
	m.setState(StateReady)
}

// StartGame enters StatePlaying. From Init or GameOver the round is reset first.
// It reports false when already playing or paused.
func (m *Manager) StartGame() bool {
	switch m.state {
	case StatePlaying, StatePaused:
		return false
	case StateInit, StateGameOver:
		m.ToReady()
	}

	m.elapsed = 0
	m.scored = 0
	m.setState(StatePlaying)
	if m.spawner != nil {
		m.spawner.Begin()
	}
	return true
}

// PauseGame freezes a running round.
func (m *Manager) PauseGame() {
	if m.state != StatePlaying {
		return
	}
	m.setState(StatePaused)
}

// ResumeGame continues a paused round.
func (m *Manager) ResumeGame() {
	if m.state != StatePaused {
		return
	}
	m.setState(StatePlaying)
}

// TogglePause pauses or resumes.
func (m *Manager) TogglePause() {
	if m.state == StatePaused {
		m.ResumeGame()
	} else {
		m.PauseGame()
	}
}

// EndGame finishes the round and stops spawning.
func (m *Manager) EndGame() {
	if m.state == StateGameOver {
		return
	}
	m.setState(StateGameOver)
	if m.spawner != nil {
		m.spawner.Stop()
	}

	res := Result{Score: m.score, Elapsed: m.elapsed}
	m.logger.Info("game over", "score", res.Score, "elapsed", res.Elapsed.Round(time.Millisecond))
	if m.events.GameOver != nil {
		m.events.GameOver(res)
	}
}

// Tick advances play time and awards ScorePerSecond for every whole second played.
func (m *Manager) Tick(dt time.Duration) {
	if m.state != StatePlaying {
		return
	}
	m.elapsed += dt
	if whole := int64(m.elapsed / time.Second); whole > m.scored {
		m.AddScore(int(whole-m.scored) * m.cfg.ScorePerSecond)
		m.scored = whole
	}
}

// AddScore changes the score; it never drops below zero.
func (m *Manager) AddScore(amount int) {
	if amount == 0 {
		return
	}
	m.score = max(0, m.score+amount)
	m.emitScore()
}

// LoseLife removes lives and ends the round at zero.
func (m *Manager) LoseLife(amount int) {
	if amount <= 0 {
		return
	}
	m.lives = max(0, m.lives-amount)
	m.emitLives()
	if m.lives == 0 {
		m.EndGame()
	}
}

// GainLife adds lives.
func (m *Manager) GainLife(amount int) {
	if amount <= 0 {
		return
	}
	m.lives += amount
	m.emitLives()
}

// SetPlayerDistance changes the orbit radius, clamped at zero.
func (m *Manager) SetPlayerDistance(d float64) {
	if m.orbit == nil {
		return
	}
	m.orbit.SetDistance(max(0, d))
}

func (m *Manager) setState(next State) {
	if m.state == next {
		return
	}
	prev := m.state
	m.state = next
	m.logger.Debug("state changed", "from", prev, "to", next)

	if m.events.StateChanged != nil {
		m.events.StateChanged(next)
	}
	if next == StatePlaying && prev != StatePaused && m.events.GameStarted != nil {
		m.events.GameStarted()
	}
}

func (m *Manager) emitScore() {
	if m.events.ScoreChanged != nil {
		m.events.ScoreChanged(m.score)
	}
}

func (m *Manager) emitLives() {
	if m.events.LivesChanged != nil {
		m.events.LivesChanged(m.lives)
	}
}
