//go:build !headless

// audio_backend_oto.go - OTO v3 beeper for the sound timer

/*
okto8 - a CHIP-8 virtual machine

License: GPLv3 or later
*/

package main

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	SAMPLE_RATE    = 48000
	BEEP_FREQUENCY = 440.0
	BEEP_AMPLITUDE = 0.25
)

// Beeper turns the machine's sound-timer signal into a square-wave tone.
// The CHIP-8 has a single fixed buzzer; pitch and volume are host choices.
type Beeper struct {
	ctx     *oto.Context
	player  *oto.Player
	beeping atomic.Bool
	phase   float64
	started bool
	mutex   sync.Mutex
}

func NewBeeper() (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SAMPLE_RATE,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	bp := &Beeper{ctx: ctx}
	bp.player = ctx.NewPlayer(bp)
	return bp, nil
}

// SetBeeping switches tone generation on or off. Safe to call from the
// host loop while the audio goroutine is pulling samples.
func (bp *Beeper) SetBeeping(on bool) {
	bp.beeping.Store(on)
}

// Read generates float32 mono samples on demand for the oto player.
func (bp *Beeper) Read(p []byte) (n int, err error) {
	numSamples := len(p) / 4
	step := BEEP_FREQUENCY / SAMPLE_RATE
	beeping := bp.beeping.Load()

	for i := 0; i < numSamples; i++ {
		var sample float32
		if beeping {
			if bp.phase < 0.5 {
				sample = BEEP_AMPLITUDE
			} else {
				sample = -BEEP_AMPLITUDE
			}
			bp.phase += step
			if bp.phase >= 1.0 {
				bp.phase -= 1.0
			}
		}
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(sample))
	}
	return numSamples * 4, nil
}

func (bp *Beeper) Start() {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	if !bp.started && bp.player != nil {
		bp.player.Play()
		bp.started = true
	}
}

func (bp *Beeper) Stop() {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	if bp.started && bp.player != nil {
		bp.player.Pause()
		bp.started = false
	}
}

func (bp *Beeper) Close() {
	bp.Stop()
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	if bp.player != nil {
		bp.player.Close()
		bp.player = nil
	}
}

func (bp *Beeper) IsStarted() bool {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()
	return bp.started
}
