package loop

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/twinorbit/internal/config"
	"github.com/tomz197/twinorbit/internal/game"
	"github.com/tomz197/twinorbit/internal/input"
	"github.com/tomz197/twinorbit/internal/logging"
	"github.com/tomz197/twinorbit/internal/ranking"
)

type submission struct {
	name    string
	score   int
	elapsed time.Duration
}

type fakeRanking struct {
	submitted []submission
	top       []ranking.Entry
	place     int
	err       error
}

func (f *fakeRanking) Submit(_ context.Context, name string, score int, elapsed time.Duration) (ranking.Entry, error) {
	if f.err != nil {
		return ranking.Entry{}, f.err
	}
	f.submitted = append(f.submitted, submission{name, score, elapsed})
	return ranking.Entry{Name: name, Score: score, Seconds: elapsed.Seconds()}, nil
}

func (f *fakeRanking) Top(context.Context, int) ([]ranking.Entry, error) {
	return f.top, f.err
}

func (f *fakeRanking) Place(context.Context, int) (int, error) {
	return f.place, f.err
}

func testSettings(t *testing.T) config.Settings {
	t.Helper()
	t.Cleanup(viper.Reset)
	s, err := config.Load(t.TempDir())
	require.NoError(t, err)
	s.Spawner.InitialCount = 0
	return s
}

func newTestSession(t *testing.T, out io.Writer, in string, opts SessionOptions) *Session {
	t.Helper()
	opts.Settings = testSettings(t)
	opts.Logger = logging.New(io.Discard, "error", "")
	opts.TermSizeFunc = func() (int, int, error) { return 100, 40, nil }
	opts.WorldOptions = append(opts.WorldOptions, game.WithRand(rand.New(rand.NewSource(1))), game.WithoutMetrics())

	s, err := NewSession(bufio.NewReader(strings.NewReader(in)), out, opts)
	require.NoError(t, err)
	return s
}

func TestSession_StartsReadyAndRegisters(t *testing.T) {
	hub := NewHub(nil)
	s := newTestSession(t, io.Discard, "", SessionOptions{Hub: hub, Username: "  pilot\x1b  "})

	assert.Equal(t, game.StateReady, s.World().Manager().State())
	assert.Equal(t, 1, hub.Count())
	assert.Equal(t, "pilot", s.handle.Username)

	s.close()
	assert.Zero(t, hub.Count())
}

func TestSession_TapPauseResume(t *testing.T) {
	s := newTestSession(t, io.Discard, "", SessionOptions{})
	ctx := context.Background()
	mgr := s.World().Manager()

	s.update(ctx, 0, input.Input{Tap: true})
	require.Equal(t, game.StatePlaying, mgr.State())

	s.update(ctx, 0, input.Input{Pause: true})
	assert.Equal(t, game.StatePaused, mgr.State())

	s.update(ctx, time.Second, input.Input{})
	assert.Zero(t, mgr.Elapsed())

	s.update(ctx, 0, input.Input{Tap: true})
	assert.Equal(t, game.StatePlaying, mgr.State())
	assert.Equal(t, "primary", s.World().Orbit().Center().String(), "resume tap does not toggle")
}

func TestSession_EnterStartsRound(t *testing.T) {
	s := newTestSession(t, io.Discard, "", SessionOptions{})
	s.update(context.Background(), 0, input.Input{Enter: true})
	assert.Equal(t, game.StatePlaying, s.World().Manager().State())
}

func TestSession_GameOverSubmitsScore(t *testing.T) {
	rk := &fakeRanking{place: 3, top: []ranking.Entry{{Name: "ace", Score: 900}}}
	s := newTestSession(t, io.Discard, "", SessionOptions{Ranking: rk, Username: "pilot"})
	ctx := context.Background()

	s.update(ctx, 0, input.Input{Tap: true})
	s.World().Manager().AddScore(40)
	s.World().Manager().LoseLife(1)
	s.update(ctx, 0, input.Input{})

	require.Len(t, rk.submitted, 1)
	assert.Equal(t, "pilot", rk.submitted[0].name)
	assert.Equal(t, 40, rk.submitted[0].score)
	require.NotNil(t, s.last)
	assert.Equal(t, 3, s.last.Place)
	assert.Equal(t, rk.top, s.top)
	assert.Nil(t, s.pending)
}

func TestSession_RankingFailureKeepsPlaying(t *testing.T) {
	rk := &fakeRanking{err: errors.New("db down")}
	s := newTestSession(t, io.Discard, "", SessionOptions{Ranking: rk})
	ctx := context.Background()

	s.update(ctx, 0, input.Input{Tap: true})
	s.World().Manager().LoseLife(1)
	s.update(ctx, 0, input.Input{})
	require.NotNil(t, s.last)
	assert.Zero(t, s.last.Place)

	s.update(ctx, 0, input.Input{Tap: true})
	assert.Equal(t, game.StatePlaying, s.World().Manager().State())
	assert.True(t, s.running)
}

func TestSession_Inactivity(t *testing.T) {
	s := newTestSession(t, io.Discard, "", SessionOptions{})
	now := s.lastInput

	s.processInput(input.Input{}, now.Add(InactivityWarnUser+time.Second))
	assert.True(t, s.isInactive)
	assert.True(t, s.running)

	s.processInput(input.Input{Pressed: []byte{'x'}}, now.Add(InactivityWarnUser+2*time.Second))
	assert.False(t, s.isInactive)

	s.processInput(input.Input{}, s.lastInput.Add(InactivityDisconnectUser+time.Second))
	assert.False(t, s.running)
}

func TestSession_InactivityPausesRound(t *testing.T) {
	s := newTestSession(t, io.Discard, "", SessionOptions{})
	ctx := context.Background()
	s.update(ctx, 0, input.Input{Tap: true})

	s.isInactive = true
	s.update(ctx, time.Second, input.Input{})
	assert.Equal(t, game.StatePaused, s.World().Manager().State())
}

func TestSession_QuitAndClosedStop(t *testing.T) {
	s := newTestSession(t, io.Discard, "", SessionOptions{})
	s.processInput(input.Input{Quit: true}, time.Now())
	assert.False(t, s.running)

	s = newTestSession(t, io.Discard, "", SessionOptions{})
	s.processInput(input.Input{Closed: true}, time.Now())
	assert.False(t, s.running)
}

func TestSession_ShutdownCountdown(t *testing.T) {
	hub := NewHub(nil)
	s := newTestSession(t, io.Discard, "", SessionOptions{Hub: hub})
	ctx := context.Background()
	s.update(ctx, 0, input.Input{Tap: true})

	s.handle.Events <- Event{Type: EventServerShutdown}
	s.processHubEvents()
	require.True(t, s.shutdown)
	assert.Equal(t, game.StatePaused, s.World().Manager().State())

	s.update(ctx, ShutdownDisplayTime/2, input.Input{})
	assert.True(t, s.running)
	s.update(ctx, ShutdownDisplayTime/2, input.Input{})
	assert.False(t, s.running)
}

func TestSession_DrawScreens(t *testing.T) {
	var out bytes.Buffer
	rk := &fakeRanking{top: []ranking.Entry{{Name: "ace", Score: 900, Seconds: 65.3}}}
	s := newTestSession(t, &out, "", SessionOptions{Ranking: rk})
	ctx := context.Background()
	s.refreshTop(ctx)

	require.NoError(t, s.drawFrame())
	assert.Contains(t, out.String(), "Swap center")
	assert.Contains(t, out.String(), "ace")
	assert.Contains(t, out.String(), "1:05.3")

	out.Reset()
	s.update(ctx, 0, input.Input{Tap: true})
	require.NoError(t, s.drawFrame())
	assert.Contains(t, out.String(), "\033[H\033[2J", "state change clears the screen")
	assert.Contains(t, out.String(), "Score: 0")
	assert.Contains(t, out.String(), "EARTH")

	out.Reset()
	s.World().Manager().LoseLife(1)
	s.update(ctx, 0, input.Input{})
	require.NoError(t, s.drawFrame())
	assert.Contains(t, out.String(), "Score: 0   Time: 0:00.0")
}

func TestSession_RunStopsOnClosedInput(t *testing.T) {
	hub := NewHub(nil)
	var out bytes.Buffer
	s := newTestSession(t, &out, "", SessionOptions{Hub: hub})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after input closed")
	}
	assert.Zero(t, hub.Count())
	assert.Contains(t, out.String(), "\033[?25h")
}

func TestSession_RunStopsOnCancel(t *testing.T) {
	s := newTestSession(t, io.Discard, "", SessionOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx))
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "anonymous", sanitizeUsername("   "))
	assert.Equal(t, "bob", sanitizeUsername("b\x00o\tb"))
	assert.Equal(t, strings.Repeat("x", MaxUsernameLength), sanitizeUsername(strings.Repeat("x", 40)))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0:00.0", formatElapsed(0))
	assert.Equal(t, "1:05.3", formatElapsed(65300*time.Millisecond))
	assert.Equal(t, "0:00.0", formatElapsed(-time.Second))
}
