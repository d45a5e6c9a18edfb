//go:build !headless

// video_backend_ebiten.go - Ebiten window backend and keypad source

/*
okto8 - a CHIP-8 virtual machine

License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// keypadKeys maps each CHIP-8 key value 0-F to its physical key in the
// conventional COSMAC VIP layout:
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   ->   Q W E R
//	7 8 9 E        A S D F
//	A 0 B F        Z X C V
var keypadKeys = [NUM_KEYS]ebiten.Key{
	0x0: ebiten.KeyX,
	0x1: ebiten.KeyDigit1,
	0x2: ebiten.KeyDigit2,
	0x3: ebiten.KeyDigit3,
	0x4: ebiten.KeyQ,
	0x5: ebiten.KeyW,
	0x6: ebiten.KeyE,
	0x7: ebiten.KeyA,
	0x8: ebiten.KeyS,
	0x9: ebiten.KeyD,
	0xA: ebiten.KeyZ,
	0xB: ebiten.KeyC,
	0xC: ebiten.KeyDigit4,
	0xD: ebiten.KeyR,
	0xE: ebiten.KeyF,
	0xF: ebiten.KeyV,
}

const pressQueueCap = 8

type EbitenOutput struct {
	running     bool
	width       int
	height      int
	scale       int
	title       string
	frame       *ebiten.Image
	frameBuffer []byte
	bufferMutex sync.RWMutex
	frameCount  uint64
	fullscreen  bool

	vsyncChan chan struct{}
	done      chan struct{}

	inputMutex sync.Mutex
	held       [NUM_KEYS]bool
	pressQueue []uint8

	showStatusBar bool
	statusFunc    func() string
}

func NewEbitenOutput() (VideoOutput, error) {
	return &EbitenOutput{
		width:         DISPLAY_WIDTH,
		height:        DISPLAY_HEIGHT,
		scale:         10,
		title:         "okto8",
		frameBuffer:   make([]byte, DISPLAY_WIDTH*DISPLAY_HEIGHT*4),
		vsyncChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		showStatusBar: true,
	}, nil
}

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()

	if config.Width > 0 {
		eo.width = config.Width
	}
	if config.Height > 0 {
		eo.height = config.Height
	}
	eo.scale = ClampScale(config.Scale)
	if config.Title != "" {
		eo.title = config.Title
	}
	newSize := eo.width * eo.height * 4
	if len(eo.frameBuffer) != newSize {
		eo.frameBuffer = make([]byte, newSize)
	}
	if eo.frame != nil {
		eo.frame.Dispose()
		eo.frame = nil
	}
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Width:  eo.width,
		Height: eo.height,
		Scale:  eo.scale,
		Title:  eo.title,
	}
}

// SetStatusFunc installs the callback supplying the status bar text.
func (eo *EbitenOutput) SetStatusFunc(fn func() string) {
	eo.bufferMutex.Lock()
	eo.statusFunc = fn
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) Start() error {
	if eo.running {
		return nil
	}
	eo.running = true
	ebiten.SetWindowSize(eo.width*eo.scale, eo.height*eo.scale)
	ebiten.SetWindowTitle(eo.title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetScreenClearedEveryFrame(false)

	go func() {
		defer func() {
			eo.running = false
			select {
			case <-eo.done:
			default:
				close(eo.done)
			}
		}()
		if err := ebiten.RunGame(eo); err != nil && err != ebiten.Termination {
			fmt.Printf("Ebiten error: %v\n", err)
		}
	}()

	// Wait for first Draw call to ensure Ebiten is ready
	<-eo.vsyncChan
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running = false
	return nil
}

func (eo *EbitenOutput) IsStarted() bool {
	return eo.running
}

func (eo *EbitenOutput) Done() <-chan struct{} {
	return eo.done
}

func (eo *EbitenOutput) UpdateFrame(buffer []byte) error {
	eo.bufferMutex.Lock()
	copy(eo.frameBuffer, buffer)
	eo.bufferMutex.Unlock()
	return nil
}

// KeyHeld implements KeyInput over the state sampled in Update.
func (eo *EbitenOutput) KeyHeld(key uint8) bool {
	if key >= NUM_KEYS {
		return false
	}
	eo.inputMutex.Lock()
	defer eo.inputMutex.Unlock()
	return eo.held[key]
}

// PollKey implements KeyInput: pops the oldest buffered key press.
func (eo *EbitenOutput) PollKey() (uint8, bool) {
	eo.inputMutex.Lock()
	defer eo.inputMutex.Unlock()
	if len(eo.pressQueue) == 0 {
		return 0, false
	}
	key := eo.pressQueue[0]
	eo.pressQueue = eo.pressQueue[1:]
	return key, true
}

func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() || !eo.running {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		eo.fullscreen = !eo.fullscreen
		ebiten.SetFullscreen(eo.fullscreen)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		eo.bufferMutex.Lock()
		eo.showStatusBar = !eo.showStatusBar
		eo.bufferMutex.Unlock()
	}

	eo.inputMutex.Lock()
	for key, phys := range keypadKeys {
		eo.held[key] = ebiten.IsKeyPressed(phys)
		if inpututil.IsKeyJustPressed(phys) && len(eo.pressQueue) < pressQueueCap {
			eo.pressQueue = append(eo.pressQueue, uint8(key))
		}
	}
	eo.inputMutex.Unlock()
	return nil
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	if eo.frame == nil {
		eo.frame = ebiten.NewImage(eo.width, eo.height)
	}

	eo.bufferMutex.RLock()
	eo.frame.WritePixels(eo.frameBuffer)
	showStatusBar := eo.showStatusBar
	statusFunc := eo.statusFunc
	eo.bufferMutex.RUnlock()

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(eo.scale), float64(eo.scale))
	screen.DrawImage(eo.frame, opts)

	if showStatusBar {
		eo.drawStatusBar(screen, statusFunc)
	}

	eo.frameCount++
	select {
	case eo.vsyncChan <- struct{}{}:
	default:
	}
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	return eo.width * eo.scale, eo.height * eo.scale
}

func (eo *EbitenOutput) drawStatusBar(screen *ebiten.Image, statusFunc func() string) {
	barHeight := 16
	w := eo.width * eo.scale
	h := eo.height * eo.scale
	if barHeight >= h {
		return
	}
	y := h - barHeight
	ebitenutil.DrawRect(screen, 0, float64(y), float64(w), float64(barHeight), color.RGBA{0, 0, 0, 180})

	face := basicfont.Face7x13
	status := fmt.Sprintf("FPS %0.1f", ebiten.CurrentFPS())
	if statusFunc != nil {
		if extra := statusFunc(); extra != "" {
			status += "  " + extra
		}
	}
	text.Draw(screen, status, face, 6, y+12, color.RGBA{190, 190, 190, 255})

	legend := "ESC Quit  F11 Fullscreen  F12 Status Bar"
	legendX := w - text.BoundString(face, legend).Dx() - 6
	if legendX < 6 {
		legendX = 6
	}
	text.Draw(screen, legend, face, legendX, y+12, color.RGBA{160, 160, 160, 255})
}
