// Package draw renders to ANSI terminals using half-block characters.
package draw

// Point is a 2D coordinate in canvas logical space.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockLight     = '░'
	BlockMedium    = '▒'
	BlockDark      = '▓'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// SGR color sequences for text overlays.
const (
	ColorReset        = "\033[0m"
	ColorBold         = "\033[1m"
	ColorRed          = "\033[31m"
	ColorYellow       = "\033[33m"
	ColorBrightCyan   = "\033[96m"
	ColorBrightYellow = "\033[93m"
)

// Colorize wraps s in the given color and a reset.
func Colorize(color, s string) string {
	return color + s + ColorReset
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
