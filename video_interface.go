// video_interface.go - display backend interface for the okto8 frontend

/*
okto8 - a CHIP-8 virtual machine

License: GPLv3 or later
*/

package main

import "fmt"

// VideoError provides detailed error context for video operations
type VideoError struct {
	Operation string // What operation was being attempted
	Details   string // Additional error context
	Err       error  // Underlying error if any
}

func (e *VideoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("video %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("video %s failed: %s", e.Operation, e.Details)
}

// DisplayConfig contains backend-independent display configuration.
type DisplayConfig struct {
	Width  int    // Logical framebuffer width in pixels
	Height int    // Logical framebuffer height in pixels
	Scale  int    // Integer scaling factor for output
	Title  string // Window title where applicable
}

// VideoOutput is the minimal contract a display backend implements. The
// host loop pushes raw RGBA frames; the backend owns presentation, pixel
// scaling and window lifetime. Backends that also source keypad events
// additionally implement KeyInput.
type VideoOutput interface {
	Start() error
	Stop() error
	IsStarted() bool

	SetDisplayConfig(config DisplayConfig) error
	UpdateFrame(buffer []byte) error // Takes raw RGBA pixels only

	// Done is closed when the user asks the frontend to quit (window
	// close, ESC in the terminal).
	Done() <-chan struct{}
}

// StatusReporter is implemented by backends that can show a host-supplied
// status line alongside the display.
type StatusReporter interface {
	SetStatusFunc(fn func() string)
}

// Predefined video backend types
const (
	VIDEO_BACKEND_EBITEN   = iota // Pure Go Ebiten window backend
	VIDEO_BACKEND_TERMINAL        // ANSI half-block renderer on the controlling terminal
)

const (
	MIN_SCALE     = 1
	MAX_SCALE     = 32
	DEFAULT_SCALE = 10
)

// ClampScale bounds a requested integer scaling factor, mapping zero and
// negative values to the default.
func ClampScale(scale int) int {
	if scale <= 0 {
		return DEFAULT_SCALE
	}
	if scale < MIN_SCALE {
		return MIN_SCALE
	}
	if scale > MAX_SCALE {
		return MAX_SCALE
	}
	return scale
}

// NewVideoOutput creates a new video output instance using the specified backend
func NewVideoOutput(backend int) (VideoOutput, error) {
	switch backend {
	case VIDEO_BACKEND_EBITEN:
		return NewEbitenOutput()
	case VIDEO_BACKEND_TERMINAL:
		return NewTerminalOutput()
	}
	return nil, &VideoError{
		Operation: "backend creation",
		Details:   fmt.Sprintf("unknown backend type: %d", backend),
	}
}
