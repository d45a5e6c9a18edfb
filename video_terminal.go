// video_terminal.go - ANSI half-block renderer and stdin keypad source

/*
okto8 - a CHIP-8 virtual machine

License: GPLv3 or later
*/

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const (
	// terminalKeyHold is how long a received key byte counts as "held".
	// Terminals only report presses, never releases, so held state decays.
	terminalKeyHold = 150 * time.Millisecond

	terminalPixelOn   = 0x80 // red-channel threshold for a lit pixel
	terminalPressQCap = 8
)

// terminalKeypad maps input bytes to CHIP-8 key values, mirroring the
// physical layout used by the ebiten backend.
var terminalKeypad = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// TerminalOutput renders the framebuffer on the controlling terminal with
// half-block characters (two pixel rows per text row) and sources keypad
// events from raw-mode stdin. ESC quits.
type TerminalOutput struct {
	running  bool
	width    int
	height   int
	origTerm unix.Termios
	out      *bufio.Writer

	done     chan struct{}
	stopOnce sync.Once

	inputMutex sync.Mutex
	lastPress  [NUM_KEYS]time.Time
	pressQueue []uint8
}

func NewTerminalOutput() (VideoOutput, error) {
	return &TerminalOutput{
		width:  DISPLAY_WIDTH,
		height: DISPLAY_HEIGHT,
		out:    bufio.NewWriterSize(os.Stdout, 8192),
		done:   make(chan struct{}),
	}, nil
}

func (to *TerminalOutput) SetDisplayConfig(config DisplayConfig) error {
	if config.Width > 0 {
		to.width = config.Width
	}
	if config.Height > 0 {
		to.height = config.Height
	}
	// Scale and title have no meaning on a character terminal.
	return nil
}

func (to *TerminalOutput) Start() error {
	if to.running {
		return nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return &VideoError{Operation: "terminal start", Details: "stdin is not a terminal"}
	}
	if cols, rows, err := term.GetSize(fd); err == nil {
		if cols < to.width || rows < to.height/2 {
			return &VideoError{
				Operation: "terminal start",
				Details:   fmt.Sprintf("terminal %dx%d smaller than %dx%d display", cols, rows, to.width, to.height/2),
			}
		}
	}

	if err := termios.Tcgetattr(os.Stdin.Fd(), &to.origTerm); err != nil {
		return &VideoError{Operation: "terminal start", Details: "reading terminal attributes", Err: err}
	}
	raw := to.origTerm
	raw.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(os.Stdin.Fd(), termios.TCSANOW, &raw); err != nil {
		return &VideoError{Operation: "terminal start", Details: "enabling raw mode", Err: err}
	}

	// Hide cursor, clear once; frames repaint in place from the home
	// position.
	to.out.WriteString("\x1b[?25l\x1b[2J\x1b[H")
	to.out.Flush()

	to.running = true
	go to.readKeys()
	return nil
}

func (to *TerminalOutput) Stop() error {
	to.stopOnce.Do(func() {
		to.running = false
		termios.Tcsetattr(os.Stdin.Fd(), termios.TCSANOW, &to.origTerm)
		to.out.WriteString("\x1b[?25h\x1b[0m\n")
		to.out.Flush()
		close(to.done)
	})
	return nil
}

func (to *TerminalOutput) IsStarted() bool {
	return to.running
}

func (to *TerminalOutput) Done() <-chan struct{} {
	return to.done
}

// readKeys pumps raw stdin bytes into keypad state until ESC or stop.
func (to *TerminalOutput) readKeys() {
	buf := make([]byte, 1)
	for to.running {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		b := buf[0]
		if b == 0x1B {
			to.Stop()
			return
		}
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		key, ok := terminalKeypad[b]
		if !ok {
			continue
		}
		to.inputMutex.Lock()
		to.lastPress[key] = time.Now()
		if len(to.pressQueue) < terminalPressQCap {
			to.pressQueue = append(to.pressQueue, key)
		}
		to.inputMutex.Unlock()
	}
}

// KeyHeld implements KeyInput with press-time decay.
func (to *TerminalOutput) KeyHeld(key uint8) bool {
	if key >= NUM_KEYS {
		return false
	}
	to.inputMutex.Lock()
	defer to.inputMutex.Unlock()
	return time.Since(to.lastPress[key]) < terminalKeyHold
}

// PollKey implements KeyInput: pops the oldest buffered key press.
func (to *TerminalOutput) PollKey() (uint8, bool) {
	to.inputMutex.Lock()
	defer to.inputMutex.Unlock()
	if len(to.pressQueue) == 0 {
		return 0, false
	}
	key := to.pressQueue[0]
	to.pressQueue = to.pressQueue[1:]
	return key, true
}

// UpdateFrame repaints the whole grid. Two vertically adjacent pixels
// share one character cell via the upper half block.
func (to *TerminalOutput) UpdateFrame(buffer []byte) error {
	if len(buffer) < to.width*to.height*4 {
		return &VideoError{Operation: "terminal frame", Details: "short frame buffer"}
	}

	var sb strings.Builder
	sb.Grow(to.width*to.height/2 + 64)
	sb.WriteString("\x1b[H")
	for y := 0; y < to.height; y += 2 {
		for x := 0; x < to.width; x++ {
			upper := buffer[(y*to.width+x)*4] >= terminalPixelOn
			lower := buffer[((y+1)*to.width+x)*4] >= terminalPixelOn
			switch {
			case upper && lower:
				sb.WriteRune('█')
			case upper:
				sb.WriteRune('▀')
			case lower:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	to.out.WriteString(sb.String())
	return to.out.Flush()
}
