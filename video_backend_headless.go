//go:build headless

package main

import "sync/atomic"

// HeadlessVideoOutput satisfies VideoOutput without a display so the core
// and host loop are testable in CI.
type HeadlessVideoOutput struct {
	started    bool
	config     DisplayConfig
	frameCount uint64
	done       chan struct{}
}

func NewEbitenOutput() (VideoOutput, error) {
	return &HeadlessVideoOutput{done: make(chan struct{})}, nil
}

func (h *HeadlessVideoOutput) Start() error {
	h.started = true
	return nil
}

func (h *HeadlessVideoOutput) Stop() error {
	h.started = false
	select {
	case <-h.done:
	default:
		close(h.done)
	}
	return nil
}

func (h *HeadlessVideoOutput) IsStarted() bool {
	return h.started
}

func (h *HeadlessVideoOutput) Done() <-chan struct{} {
	return h.done
}

func (h *HeadlessVideoOutput) SetDisplayConfig(config DisplayConfig) error {
	h.config = config
	return nil
}

func (h *HeadlessVideoOutput) GetDisplayConfig() DisplayConfig {
	return h.config
}

func (h *HeadlessVideoOutput) UpdateFrame(buffer []byte) error {
	atomic.AddUint64(&h.frameCount, 1)
	return nil
}

func (h *HeadlessVideoOutput) GetFrameCount() uint64 {
	return atomic.LoadUint64(&h.frameCount)
}
