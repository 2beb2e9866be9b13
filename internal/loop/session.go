package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/tomz197/twinorbit/internal/config"
	"github.com/tomz197/twinorbit/internal/draw"
	"github.com/tomz197/twinorbit/internal/game"
	"github.com/tomz197/twinorbit/internal/input"
	"github.com/tomz197/twinorbit/internal/ranking"
)

// Ranking is the leaderboard used by a session. *ranking.Store implements it.
type Ranking interface {
	Submit(ctx context.Context, name string, score int, elapsed time.Duration) (ranking.Entry, error)
	Top(ctx context.Context, n int) ([]ranking.Entry, error)
	Place(ctx context.Context, score int) (int, error)
}

var _ Ranking = (*ranking.Store)(nil)

// SessionOptions configures a session.
type SessionOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Settings     config.Settings
	Ranking      Ranking // Optional
	Hub          *Hub    // Optional
	Logger       *log.Logger
	WorldOptions []game.Option
}

// roundSummary is what the game over screen shows.
type roundSummary struct {
	game.Result
	Place int // 0 when the score was not ranked
}

// Session runs one player's game on one terminal.
type Session struct {
	world        *game.World
	hub          *Hub
	handle       *Handle
	ranking      Ranking
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	username     string
	logger       *log.Logger

	running      bool
	lastInput    time.Time
	isInactive   bool
	shutdown     bool
	shutdownLeft time.Duration

	// Full clear on screen transitions
	prevState   game.State
	wasInactive bool
	wasShutdown bool

	top     []ranking.Entry
	last    *roundSummary
	pending *game.Result
}

// NewSession creates a session reading keys from r and drawing to w.
func NewSession(r *bufio.Reader, w io.Writer, opts SessionOptions) (*Session, error) {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	username := sanitizeUsername(opts.Username)
	logger = logger.With("user", username)

	s := &Session{
		hub:          opts.Hub,
		ranking:      opts.Ranking,
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		username:     username,
		logger:       logger,
		running:      true,
		lastInput:    time.Now(),
	}

	worldOpts := append([]game.Option{game.WithLogger(logger)}, opts.WorldOptions...)
	worldOpts = append(worldOpts, game.WithEvents(game.Events{
		GameOver: func(r game.Result) { s.pending = &r },
	}))
	world, err := game.NewWorld(opts.Settings, worldOpts...)
	if err != nil {
		return nil, fmt.Errorf("create world: %w", err)
	}
	world.Reset()
	s.world = world
	s.prevState = world.Manager().State()

	termWidth, termHeight, err := termSizeFunc()
	if err != nil {
		termWidth, termHeight = 80, 24
	}
	renderWidth, renderHeight, offsetCol, offsetRow := draw.ClampTermSize(termWidth, termHeight, MaxTermWidth, MaxTermHeight)
	view := world.View()
	s.canvas = draw.NewScaledCanvas(renderWidth, renderHeight, view.Width, view.Height)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.chunkWriter = draw.NewChunkWriter(w, offsetCol, offsetRow)

	if s.hub != nil {
		s.handle = s.hub.Register(username)
	}
	return s, nil
}

// World returns the session's world.
func (s *Session) World() *game.World { return s.world }

// Run starts the frame loop. It blocks until the player quits, the connection
// drops, the session idles out, the hub shuts down or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	draw.HideCursor(s.writer)
	defer draw.ShowCursor(s.writer)
	draw.ClearScreen(s.writer)
	defer s.close()

	s.refreshTop(ctx)
	s.logger.Info("session started")

	lastTime := time.Now()
	for s.running {
		if ctx.Err() != nil {
			break
		}

		frameStart := time.Now()
		delta := frameStart.Sub(lastTime)
		lastTime = frameStart

		in := input.ReadInput(s.inputStream)
		s.processInput(in, frameStart)
		s.processHubEvents()
		s.updateScreen()
		s.update(ctx, delta, in)

		if err := s.drawFrame(); err != nil {
			return fmt.Errorf("draw frame: %w", err)
		}

		elapsed := time.Since(frameStart)
		if elapsed < TargetFrameTime {
			time.Sleep(TargetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(s.writer)
	s.logger.Info("session ended", "score", s.world.Manager().Score())
	return nil
}

func (s *Session) close() {
	if s.hub != nil && s.handle != nil {
		s.hub.Unregister(s.handle.ID)
	}
}

// processInput tracks activity and quitting.
func (s *Session) processInput(in input.Input, now time.Time) {
	switch idle := now.Sub(s.lastInput); {
	case len(in.Pressed) > 0:
		s.lastInput = now
		s.isInactive = false
	case idle > InactivityDisconnectUser:
		s.logger.Info("disconnecting idle session")
		s.running = false
	case idle > InactivityWarnUser:
		s.isInactive = true
	}

	if in.Quit || in.Closed {
		s.running = false
	}
}

// processHubEvents drains hub notifications.
func (s *Session) processHubEvents() {
	if s.handle == nil {
		return
	}
	for {
		select {
		case event, ok := <-s.handle.Events:
			if !ok {
				s.running = false
				return
			}
			if event.Type == EventServerShutdown && !s.shutdown {
				s.shutdown = true
				s.shutdownLeft = ShutdownDisplayTime
				s.world.Manager().PauseGame()
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to the max render area.
func (s *Session) updateScreen() {
	termWidth, termHeight, err := s.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := draw.ClampTermSize(termWidth, termHeight, MaxTermWidth, MaxTermHeight)

	if renderWidth != s.canvas.TerminalWidth() || renderHeight != s.canvas.TerminalHeight() ||
		offsetCol != s.canvas.OffsetCol() || offsetRow != s.canvas.OffsetRow() {
		s.chunkWriter.ClearScreen()
	}

	s.canvas.Resize(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// update applies keys to the round and advances the world by dt.
func (s *Session) update(ctx context.Context, dt time.Duration, in input.Input) {
	if s.shutdown {
		s.shutdownLeft -= dt
		if s.shutdownLeft <= 0 {
			s.running = false
		}
		return
	}

	mgr := s.world.Manager()
	if s.isInactive {
		mgr.PauseGame()
	}

	tap := in.Tap
	switch mgr.State() {
	case game.StatePlaying:
		if in.Pause {
			mgr.PauseGame()
			tap = false
		}
	case game.StatePaused:
		if in.Pause || in.Tap {
			mgr.ResumeGame()
			input.ResetKeyInput(s.inputStream)
		}
		tap = false
	case game.StateReady, game.StateGameOver:
		tap = tap || in.Enter
	}

	s.world.Update(dt, tap)

	if s.pending != nil {
		res := *s.pending
		s.pending = nil
		s.recordResult(ctx, res)
	}
}

// recordResult submits a finished round. Ranking failures are logged and the
// game continues.
func (s *Session) recordResult(ctx context.Context, res game.Result) {
	s.last = &roundSummary{Result: res}
	if s.ranking == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, rankingTimeout)
	defer cancel()

	entry, err := s.ranking.Submit(ctx, s.username, res.Score, res.Elapsed)
	if err != nil {
		s.logger.Error("failed to submit score", "err", err)
		return
	}
	place, err := s.ranking.Place(ctx, entry.Score)
	if err != nil {
		s.logger.Warn("failed to rank score", "err", err)
	} else {
		s.last.Place = place
	}
	s.logger.Info("score submitted", "score", entry.Score, "place", place)
	s.refreshTop(ctx)
}

// refreshTop reloads the leaderboard shown on the title and game over screens.
func (s *Session) refreshTop(ctx context.Context) {
	if s.ranking == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, rankingTimeout)
	defer cancel()

	top, err := s.ranking.Top(ctx, TopScoresShown)
	if err != nil {
		s.logger.Warn("failed to load ranking", "err", err)
		return
	}
	s.top = top
}

// sanitizeUsername strips control bytes and limits the display length.
func sanitizeUsername(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if utf8.RuneCountInString(name) > MaxUsernameLength {
		name = string([]rune(name)[:MaxUsernameLength])
	}
	if name == "" {
		return "anonymous"
	}
	return name
}
