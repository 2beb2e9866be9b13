package loop

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomz197/twinorbit/internal/draw"
	"github.com/tomz197/twinorbit/internal/game"
	"github.com/tomz197/twinorbit/internal/object"
)

// drawFrame draws the world and the overlay for the current screen.
func (s *Session) drawFrame() error {
	state := s.world.Manager().State()
	if state != s.prevState || s.isInactive != s.wasInactive || s.shutdown != s.wasShutdown {
		s.chunkWriter.ClearScreen()
		s.canvas.ForceRedraw()
		s.prevState = state
		s.wasInactive = s.isInactive
		s.wasShutdown = s.shutdown
	}

	s.canvas.Clear()
	s.world.Draw(object.DrawContext{
		Canvas: s.canvas,
		Writer: s.chunkWriter,
		View:   s.world.View(),
	})
	s.canvas.Render(s.chunkWriter)
	s.canvas.RenderBorder(s.chunkWriter)

	s.drawUI()
	return s.chunkWriter.Flush()
}

// drawUI draws the text overlay.
func (s *Session) drawUI() {
	termWidth := s.canvas.TerminalWidth()
	termHeight := s.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if s.shutdown {
		s.drawShutdownScreen(centerX, centerY)
		return
	}
	if s.isInactive {
		s.drawInactivityScreen(centerX, centerY)
		return
	}

	switch s.world.Manager().State() {
	case game.StateReady:
		s.drawStartScreen(centerX, centerY)
	case game.StatePlaying:
		s.drawPlayingHUD(termWidth, termHeight)
	case game.StatePaused:
		s.drawPlayingHUD(termWidth, termHeight)
		s.drawPausedScreen(centerX, centerY)
	case game.StateGameOver:
		s.drawGameOverScreen(centerX, centerY)
	}
}

// text writes s at a 1-based canvas position and marks the cells so the
// canvas repaints them once the text is gone.
func (s *Session) text(col, row int, str string) {
	s.chunkWriter.WriteAt(col, row, str)
	s.canvas.MarkTextDirty(col, row, utf8.RuneCountInString(str))
}

// centered writes str centered on centerX.
func (s *Session) centered(centerX, row int, str string) {
	s.text(centerX-utf8.RuneCountInString(str)/2, row, str)
}

// colored writes str in color without counting escape bytes as cells.
func (s *Session) colored(col, row int, color, str string) {
	s.chunkWriter.WriteAt(col, row, draw.Colorize(color, str))
	s.canvas.MarkTextDirty(col, row, utf8.RuneCountInString(str))
}

// blinkOn alternates every 600ms.
func blinkOn() bool {
	return time.Now().UnixMilli()/600%2 == 0
}

// drawStartScreen draws the title, controls and leaderboard.
func (s *Session) drawStartScreen(centerX, centerY int) {
	titleArt := []string{
		` _______      _____ _  _    ___  ___ ___ ___ _____ `,
		`|_   _\ \    / /_ _| \| |  / _ \| _ \ _ )_ _|_   _|`,
		`  | |  \ \/\/ / | || .' | | (_) |   / _ \| |  | |  `,
		`  |_|   \_/\_/ |___|_|\_|  \___/|_|_\___/___| |_|  `,
	}
	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	titleStartY := centerY - 8
	for i, line := range titleArt {
		s.text(centerX-titleWidth/2, titleStartY+i, line)
	}

	subtitleY := titleStartY + len(titleArt) + 1
	s.centered(centerX, subtitleY, "~ Keep the orbit clear ~")

	controlsY := subtitleY + 2
	controls := []string{
		"SPACE  . . Swap center",
		"P  . . . . . . . Pause",
		"Q  . . . . . . .  Quit",
	}
	for i, line := range controls {
		s.centered(centerX, controlsY+i, line)
	}

	promptY := controlsY + len(controls) + 1
	prompt := ">>  Press SPACE to Start  <<"
	if blinkOn() {
		s.centered(centerX, promptY, prompt)
	} else {
		s.centered(centerX, promptY, strings.Repeat(" ", len(prompt)))
	}

	s.drawTopScores(centerX, promptY+2)
}

// drawTopScores draws the leaderboard starting at row.
func (s *Session) drawTopScores(centerX, row int) {
	if len(s.top) == 0 {
		return
	}
	s.centered(centerX, row, "Top scores")
	for i, e := range s.top {
		line := fmt.Sprintf("%d. %-*s %6d  %s", i+1, MaxUsernameLength, e.Name, e.Score, formatElapsed(time.Duration(e.Seconds*float64(time.Second))))
		s.centered(centerX, row+1+i, line)
	}
}

// drawPlayingHUD draws score, lives, play time and the current center.
// Fixed-width fields keep shrinking values from leaving stale characters.
func (s *Session) drawPlayingHUD(termWidth, termHeight int) {
	mgr := s.world.Manager()

	s.text(2, 1, fmt.Sprintf("Score: %-8d", mgr.Score()))

	livesText := fmt.Sprintf("Lives: %-3d", mgr.Lives())
	s.text(termWidth-len(livesText)-1, 1, livesText)

	s.text(2, termHeight, fmt.Sprintf("Time: %-8s", formatElapsed(mgr.Elapsed())))

	name, color := object.BodyLabel(s.world.Orbit().Center())
	label := fmt.Sprintf("Center: %-5s", name)
	col := termWidth - len(label) - 1
	s.text(col, termHeight, "Center: ")
	s.colored(col+len("Center: "), termHeight, color, fmt.Sprintf("%-5s", name))
}

// drawPausedScreen draws the pause banner over the HUD.
func (s *Session) drawPausedScreen(centerX, centerY int) {
	s.centered(centerX, centerY-1, "P A U S E D")
	if blinkOn() {
		s.centered(centerX, centerY+1, "Press P or SPACE to resume")
	} else {
		s.centered(centerX, centerY+1, strings.Repeat(" ", 26))
	}
}

// drawGameOverScreen draws the final score, its rank and the leaderboard.
func (s *Session) drawGameOverScreen(centerX, centerY int) {
	titleArt := []string{
		`   ___   _   __  __ ___    _____   _____ ___  `,
		`  / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \ `,
		` | (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   / `,
		`  \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\ `,
	}
	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	titleStartY := centerY - 8
	for i, line := range titleArt {
		s.colored(centerX-titleWidth/2, titleStartY+i, draw.ColorRed, line)
	}

	row := titleStartY + len(titleArt) + 1
	score, elapsed := s.world.Manager().Score(), s.world.Manager().Elapsed()
	if s.last != nil {
		score, elapsed = s.last.Score, s.last.Elapsed
	}
	s.centered(centerX, row, fmt.Sprintf("Score: %d   Time: %s", score, formatElapsed(elapsed)))
	if s.last != nil && s.last.Place > 0 {
		s.centered(centerX, row+1, fmt.Sprintf("Ranked #%d", s.last.Place))
	}

	prompt := ">>  Press SPACE to Restart  <<"
	if blinkOn() {
		s.centered(centerX, row+3, prompt)
	} else {
		s.centered(centerX, row+3, strings.Repeat(" ", len(prompt)))
	}

	s.drawTopScores(centerX, row+5)
}

// drawInactivityScreen draws the idle warning.
func (s *Session) drawInactivityScreen(centerX, centerY int) {
	s.centered(centerX, centerY-2, "INACTIVITY WARNING")

	left := max(0, InactivityDisconnectUser-time.Since(s.lastInput))
	msg := fmt.Sprintf("You have been inactive for too long. You will be disconnected in %d seconds.", int(left.Seconds()))
	s.centered(centerX, centerY, msg)

	s.centered(centerX, centerY+2, "Press any key to continue")
}

// drawShutdownScreen draws the server shutdown notice.
func (s *Session) drawShutdownScreen(centerX, centerY int) {
	s.centered(centerX, centerY-3, "SERVER SHUTTING DOWN")
	s.centered(centerX, centerY-1, "The server is restarting for maintenance.")
	s.centered(centerX, centerY, "Please reconnect in a moment.")

	remaining := int(s.shutdownLeft.Seconds()) + 1
	s.centered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	s.centered(centerX, centerY+4, "Press Q to disconnect now")
}

// formatElapsed renders a duration as m:ss.t.
func formatElapsed(d time.Duration) string {
	d = max(0, d)
	m := int(d / time.Minute)
	sec := (d % time.Minute).Seconds()
	return fmt.Sprintf("%d:%04.1f", m, sec)
}
