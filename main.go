// main.go - Main entry point for the okto8 CHIP-8 virtual machine

/*
 ██████  ██   ██ ████████  ██████   █████
██    ██ ██  ██     ██    ██    ██ ██   ██
██    ██ █████      ██    ██    ██  █████
██    ██ ██  ██     ██    ██    ██ ██   ██
 ██████  ██   ██    ██     ██████   █████

okto8 - a CHIP-8 virtual machine

License: GPLv3 or later
*/

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	// FRAME_RATE is the timer and repaint cadence in frames per second.
	FRAME_RATE = 60

	// DEFAULT_CYCLES_PER_SECOND matches the pacing most historical
	// programs were written against.
	DEFAULT_CYCLES_PER_SECOND = 700

	PIXEL_ON_COLOR  = 0xFF8CE0A0 // 0xAABBGGRR
	PIXEL_OFF_COLOR = 0xFF201818
)

type options struct {
	cycles     int
	scale      int
	terminal   bool
	shiftVY    bool
	stackLimit int
	seed       int64
	debug      bool
	quiet      bool
	rom        string
}

func boilerPlate() {
	fmt.Println("\n\033[38;2;140;224;160m ██████  ██   ██ ████████  ██████   █████ \033[0m")
	fmt.Println("\033[38;2;150;224;170m██    ██ ██  ██     ██    ██    ██ ██   ██\033[0m")
	fmt.Println("\033[38;2;160;224;180m██    ██ █████      ██    ██    ██  █████ \033[0m")
	fmt.Println("\033[38;2;170;224;190m██    ██ ██  ██     ██    ██    ██ ██   ██\033[0m")
	fmt.Println("\033[38;2;180;224;200m ██████  ██   ██    ██     ██████   █████ \033[0m")
	fmt.Println("\nA CHIP-8 virtual machine.")
	fmt.Println("License: GPLv3 or later")
	fmt.Println()
}

func parseFlags() (options, error) {
	var opts options

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.IntVar(&opts.cycles, "cycles", DEFAULT_CYCLES_PER_SECOND, "instruction cycles per second")
	flagSet.IntVar(&opts.scale, "scale", DEFAULT_SCALE, "window pixel scale factor")
	flagSet.BoolVar(&opts.terminal, "term", false, "render on the terminal instead of a window")
	flagSet.BoolVar(&opts.shiftVY, "shift-vy", false, "shift instructions read VY (later hardware revisions)")
	flagSet.IntVar(&opts.stackLimit, "stack-limit", DEFAULT_STACK_LIMIT, "call stack depth cap")
	flagSet.Int64Var(&opts.seed, "seed", 0, "fixed random seed (0 = random)")
	flagSet.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flagSet.BoolVar(&opts.quiet, "q", false, "errors only")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: okto8 [options] program.ch8")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return opts, err
	}
	opts.rom = flagSet.Arg(0)
	if opts.rom == "" {
		flagSet.Usage()
		return opts, errors.New("no program file given")
	}
	if opts.cycles <= 0 {
		return opts, fmt.Errorf("invalid cycle rate %d", opts.cycles)
	}
	return opts, nil
}

func createLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	logger := createLogger(opts.debug, opts.quiet)

	if !opts.quiet && !opts.terminal {
		boilerPlate()
	}

	backend := VIDEO_BACKEND_EBITEN
	if opts.terminal {
		backend = VIDEO_BACKEND_TERMINAL
	}
	video, err := NewVideoOutput(backend)
	if err != nil {
		logger.Fatal("Initializing video failed", log.Err(err))
	}
	if err := video.SetDisplayConfig(DisplayConfig{
		Width:  DISPLAY_WIDTH,
		Height: DISPLAY_HEIGHT,
		Scale:  ClampScale(opts.scale),
		Title:  "okto8 - " + filepath.Base(opts.rom),
	}); err != nil {
		logger.Fatal("Configuring video failed", log.Err(err))
	}

	input, _ := video.(KeyInput)
	machine := NewMachine(input, Config{
		ShiftSourceY: opts.shiftVY,
		StackLimit:   opts.stackLimit,
		Seed:         opts.seed,
	})

	program, err := os.ReadFile(opts.rom)
	if err != nil {
		logger.Fatal("Reading program failed", log.Err(err))
	}
	if err := machine.Load(PROGRAM_START, program); err != nil {
		logger.Fatal("Loading program failed", log.Err(err))
	}
	logger.Info("Program loaded",
		log.String("file", opts.rom),
		log.Int("bytes", len(program)),
		log.Int("cycles_per_second", opts.cycles))

	beeper, err := NewBeeper()
	if err != nil {
		// Sound is a nice-to-have; run silent rather than refuse to start.
		logger.Error("Initializing audio failed, running silent", log.Err(err))
		beeper = nil
	}

	if err := video.Start(); err != nil {
		logger.Fatal("Starting video failed", log.Err(err))
	}
	if beeper != nil {
		beeper.Start()
	}

	var executed atomic.Uint64
	if sr, ok := video.(StatusReporter); ok {
		sr.SetStatusFunc(func() string {
			return fmt.Sprintf("%s  %d cyc/s  %d instructions",
				filepath.Base(opts.rom), opts.cycles, executed.Load())
		})
	}

	go runMachine(logger, machine, video, beeper, opts, &executed)

	<-video.Done()
	if beeper != nil {
		beeper.Close()
	}
	video.Stop()
	logger.Debug("Shut down", log.Int("instructions", int(executed.Load())))
}

// runMachine drives the machine at a fixed frame cadence: a slice of the
// configured cycle budget, then one timer tick and at most one repaint per
// frame. Step and timer rates are independent on purpose; programs rely on
// timers counting at the frame rate no matter how fast the core runs.
func runMachine(logger *log.Logger, machine *Machine, video VideoOutput, beeper *Beeper, opts options, executed *atomic.Uint64) {
	frame := make([]byte, DISPLAY_WIDTH*DISPLAY_HEIGHT*4)
	cyclesPerFrame := opts.cycles / FRAME_RATE
	if cyclesPerFrame < 1 {
		cyclesPerFrame = 1
	}

	ticker := time.NewTicker(time.Second / FRAME_RATE)
	defer ticker.Stop()

	for {
		select {
		case <-video.Done():
			return
		case <-ticker.C:
		}

		for i := 0; i < cyclesPerFrame; i++ {
			if opts.debug {
				logger.Debug("Step",
					log.Uint16("pc", machine.PC()),
					log.String("instr", machine.Disassemble(machine.PC())))
			}
			result, err := machine.Step()
			if err != nil {
				logger.Error("Machine halted", log.Err(err))
				video.Stop()
				return
			}
			if result == StepWaitingForKey {
				// Parked on wait-for-key; let the frame finish so the
				// frontend can deliver a press before the retry.
				break
			}
			executed.Add(1)
		}

		machine.TickTimers()
		if beeper != nil {
			beeper.SetBeeping(machine.SoundActive())
		}

		if machine.FrameBuffer().TakeDirty() {
			machine.FrameBuffer().RenderRGBA(frame, PIXEL_ON_COLOR, PIXEL_OFF_COLOR)
			if err := video.UpdateFrame(frame); err != nil {
				logger.Error("Presenting frame failed", log.Err(err))
			}
		}
	}
}
