package loop

import "time"

// Session tunables that are not exposed through settings.

// Rendering
const (
	TargetFPS       = 60
	TargetFrameTime = time.Second / TargetFPS

	MaxTermWidth  = 160 // Larger terminals get a centered, bordered render area
	MaxTermHeight = 50
)

// Text
const (
	MaxUsernameLength = 16
	TopScoresShown    = 5
)

// Shutdown
const (
	ShutdownDisplayTime = 10 * time.Second // Shutdown message shown before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90 * time.Second
	InactivityDisconnectUser = 120 * time.Second
)

// rankingTimeout bounds every ranking call made from the frame loop.
const rankingTimeout = 2 * time.Second
