//go:build headless

package main

type Beeper struct {
	started bool
	beeping bool
}

func NewBeeper() (*Beeper, error) {
	return &Beeper{}, nil
}

func (bp *Beeper) SetBeeping(on bool) {
	bp.beeping = on
}

func (bp *Beeper) Read(p []byte) (n int, err error) {
	return len(p), nil
}

func (bp *Beeper) Start() {
	bp.started = true
}

func (bp *Beeper) Stop() {
	bp.started = false
}

func (bp *Beeper) Close() {
	bp.started = false
}

func (bp *Beeper) IsStarted() bool {
	return bp.started
}
