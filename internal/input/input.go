// Package input turns a raw terminal byte stream into per-frame key state.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report key repeats, so holds are inferred from recency.
const keyHoldDuration = 30 * time.Millisecond

// Input is the state of the keyboard for one frame.
type Input struct {
	Quit   bool // q
	Tap    bool // Space pressed during this frame; one edge per press
	Space  bool // Space held
	Pause  bool // p, edge
	Enter  bool // Enter, edge
	Escape bool
	Closed bool // The stream ended (connection dropped)

	Pressed []byte // Raw bytes received this frame
}

// keyState tracks the last time each held key was seen.
type keyState struct {
	quit   time.Time
	space  time.Time
	escape time.Time
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
	buf    []byte
}

// StartStream spawns a goroutine that reads from r until it fails.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all pending bytes without blocking and builds this frame's Input.
func ReadInput(s *Stream) Input {
	s.buf = s.buf[:0]
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			s.buf = append(s.buf, b)
		default:
			break drain
		}
	}

	in := s.parse(s.buf, time.Now())
	in.Closed = s.closed
	return in
}

// ResetKeyInput forgets held keys so a press that started a screen
// does not leak into the next one.
func ResetKeyInput(s *Stream) {
	s.state = keyState{}
}

// parse applies the bytes received this frame.
func (s *Stream) parse(buf []byte, now time.Time) Input {
	var in Input
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// Skip CSI sequences (arrow keys etc.) so their bytes are not read as letters.
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			i += 2
			continue
		}

		switch b {
		case 'q', 'Q':
			s.state.quit = now
		case ' ':
			s.state.space = now
			in.Tap = true
		case 'p', 'P':
			in.Pause = true
		case '\n', '\r':
			in.Enter = true
		case '\x1b':
			s.state.escape = now
		}
	}

	in.Quit = now.Sub(s.state.quit) < keyHoldDuration
	in.Space = now.Sub(s.state.space) < keyHoldDuration
	in.Escape = now.Sub(s.state.escape) < keyHoldDuration
	in.Pressed = buf
	return in
}
