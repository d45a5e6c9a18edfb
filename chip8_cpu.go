// chip8_cpu.go - CHIP-8 machine state and instruction execution

/*
okto8 - a CHIP-8 virtual machine

License: GPLv3 or later
*/

package main

import (
	"fmt"
	"math/rand"
)

const (
	MEMORY_SIZE       = 4096
	PROGRAM_START     = 0x200
	INSTRUCTION_WIDTH = 2
	NUM_REGISTERS     = 16
	NUM_KEYS          = 16

	// V15 doubles as the carry/borrow/collision flag.
	FLAG_REGISTER = 0xF

	DEFAULT_STACK_LIMIT = 64
)

// StepResult distinguishes the non-fatal outcomes of a single cycle.
type StepResult int

const (
	// StepExecuted means one instruction ran to completion.
	StepExecuted StepResult = iota
	// StepWaitingForKey means the machine is parked on a wait-for-key
	// instruction; the program counter has not advanced and the next Step
	// retries it. The host keeps repainting and feeding input meanwhile.
	StepWaitingForKey
)

// Config carries the host-tunable knobs of a machine instance.
type Config struct {
	// ShiftSourceY selects the hardware revision where 8xy6/8xyE read
	// their operand from V[y] instead of V[x]. Off is the canonical
	// base behavior.
	ShiftSourceY bool
	// StackLimit caps call-stack depth to keep runaway recursion from
	// growing without bound. Zero selects DEFAULT_STACK_LIMIT.
	StackLimit int
	// Seed fixes the random byte sequence of the Cxkk instruction.
	// Zero seeds from the generator's default source.
	Seed int64
}

// LoadError reports a program image that does not fit the address space.
type LoadError struct {
	Offset uint16
	Size   int
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("program of %d bytes at %03X exceeds %d-byte address space", e.Size, e.Offset, MEMORY_SIZE)
}

// StackError reports a call-stack fault. Both directions are fatal: an
// underflow means a return without a call, an overflow means recursion
// past the configured depth cap.
type StackError struct {
	Addr     uint16
	Depth    int
	Overflow bool
}

func (e *StackError) Error() string {
	if e.Overflow {
		return fmt.Sprintf("call stack overflow at %03X (depth %d)", e.Addr, e.Depth)
	}
	return fmt.Sprintf("call stack underflow at %03X", e.Addr)
}

// Machine is one CHIP-8 instance: 4KB of memory with the font blob in the
// reserved interpreter region, sixteen 8-bit registers, the 12-bit index
// register, program counter, call stack and the two countdown timers.
// A Machine is exclusively owned by its host loop; nothing here locks.
type Machine struct {
	memory [MEMORY_SIZE]byte
	v      [NUM_REGISTERS]uint8
	index  uint16
	pc     uint16
	stack  []uint16

	delayTimer uint8
	soundTimer uint8

	fb     FrameBuffer
	input  KeyInput
	rng    *rand.Rand
	config Config
}

// NewMachine constructs a machine with zeroed memory (except the font
// region), the program counter at PROGRAM_START and the given keypad
// capability. A nil input behaves as a keypad with no keys.
func NewMachine(input KeyInput, config Config) *Machine {
	if input == nil {
		input = NullKeyInput{}
	}
	if config.StackLimit <= 0 {
		config.StackLimit = DEFAULT_STACK_LIMIT
	}
	seed := config.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	m := &Machine{
		pc:     PROGRAM_START,
		stack:  make([]uint16, 0, config.StackLimit),
		input:  input,
		rng:    rand.New(rand.NewSource(seed)),
		config: config,
	}
	copy(m.memory[FONT_START:], fontSprites[:])
	return m
}

// Load copies a program image into memory at the given offset
// (conventionally PROGRAM_START) and rejects images that would spill past
// the end of the address space or overwrite the font region.
func (m *Machine) Load(offset uint16, data []byte) error {
	if offset < PROGRAM_START || int(offset)+len(data) > MEMORY_SIZE {
		return &LoadError{Offset: offset, Size: len(data)}
	}
	copy(m.memory[offset:], data)
	return nil
}

// FrameBuffer exposes the display grid for rendering.
func (m *Machine) FrameBuffer() *FrameBuffer { return &m.fb }

// Pixel reports the display bit at (x, y).
func (m *Machine) Pixel(x, y int) bool { return m.fb.Pixel(x, y) }

// SoundActive reports whether the host should be producing a tone.
func (m *Machine) SoundActive() bool { return m.soundTimer > 0 }

// TickTimers decrements the delay and sound timers, floored at zero. The
// host invokes it on its own fixed cadence (conventionally 60Hz),
// independent of how often it calls Step.
func (m *Machine) TickTimers() {
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
	}
}

// Step performs one fetch-decode-execute cycle. Fatal faults (illegal
// encodings, call stack faults) leave the program counter on the faulting
// instruction and return the error; register and memory indices taken from
// the instruction stream are trusted and fail hard by panicking instead.
func (m *Machine) Step() (StepResult, error) {
	fetchPC := m.pc
	word := instructionWord(uint16(m.memory[fetchPC])<<8 | uint16(m.memory[fetchPC+1]))
	op, err := DecodeInstruction(word)
	if err != nil {
		err.(*DecodeError).Addr = fetchPC
		return StepExecuted, err
	}

	// The skip instructions only ever add another instruction width.
	m.pc += INSTRUCTION_WIDTH

	switch op.Kind {
	case OpNoop:
		// SYS addr: ignored.

	case OpClearScreen:
		m.fb.Clear()

	case OpReturn:
		if len(m.stack) == 0 {
			m.pc = fetchPC
			return StepExecuted, &StackError{Addr: fetchPC}
		}
		m.pc = m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]

	case OpJump:
		m.pc = op.NNN

	case OpCall:
		if len(m.stack) >= m.config.StackLimit {
			m.pc = fetchPC
			return StepExecuted, &StackError{Addr: fetchPC, Depth: len(m.stack), Overflow: true}
		}
		m.stack = append(m.stack, m.pc)
		m.pc = op.NNN

	case OpSkipEqByte:
		if m.v[op.X] == op.KK {
			m.pc += INSTRUCTION_WIDTH
		}

	case OpSkipNeByte:
		if m.v[op.X] != op.KK {
			m.pc += INSTRUCTION_WIDTH
		}

	case OpSkipEqReg:
		if m.v[op.X] == m.v[op.Y] {
			m.pc += INSTRUCTION_WIDTH
		}

	case OpSkipNeReg:
		if m.v[op.X] != m.v[op.Y] {
			m.pc += INSTRUCTION_WIDTH
		}

	case OpLoadByte:
		m.v[op.X] = op.KK

	case OpAddByte:
		m.v[op.X] += op.KK // wraps, no flag

	case OpLoadReg:
		m.v[op.X] = m.v[op.Y]

	case OpOr:
		m.v[op.X] |= m.v[op.Y]

	case OpAnd:
		m.v[op.X] &= m.v[op.Y]

	case OpXor:
		m.v[op.X] ^= m.v[op.Y]

	case OpAddReg:
		sum := uint16(m.v[op.X]) + uint16(m.v[op.Y])
		m.v[op.X] = uint8(sum)
		m.v[FLAG_REGISTER] = btou8(sum > 0xFF)

	case OpSubReg:
		noBorrow := m.v[op.X] > m.v[op.Y]
		m.v[op.X] -= m.v[op.Y]
		m.v[FLAG_REGISTER] = btou8(noBorrow)

	case OpSubReverse:
		noBorrow := m.v[op.Y] > m.v[op.X]
		m.v[op.X] = m.v[op.Y] - m.v[op.X]
		m.v[FLAG_REGISTER] = btou8(noBorrow)

	case OpShiftRight:
		val := m.shiftOperand(op)
		m.v[op.X] = val >> 1
		m.v[FLAG_REGISTER] = val & 0x01

	case OpShiftLeft:
		val := m.shiftOperand(op)
		m.v[op.X] = val << 1
		m.v[FLAG_REGISTER] = val >> 7

	case OpLoadIndex:
		m.index = op.NNN

	case OpJumpOffset:
		m.pc = op.NNN + uint16(m.v[0])

	case OpRandom:
		m.v[op.X] = uint8(m.rng.Intn(256)) & op.KK

	case OpDraw:
		collision := m.fb.DrawSprite(m.v[op.X], m.v[op.Y], m.memory[m.index:m.index+uint16(op.N)])
		m.v[FLAG_REGISTER] = btou8(collision)

	case OpSkipKeyHeld:
		if m.input.KeyHeld(m.v[op.X]) {
			m.pc += INSTRUCTION_WIDTH
		}

	case OpSkipKeyNotHeld:
		if !m.input.KeyHeld(m.v[op.X]) {
			m.pc += INSTRUCTION_WIDTH
		}

	case OpLoadDelayTimer:
		m.v[op.X] = m.delayTimer

	case OpWaitKey:
		key, ok := m.input.PollKey()
		if !ok {
			// Park on this instruction; the host loop retries after it
			// has pumped input and repainted.
			m.pc = fetchPC
			return StepWaitingForKey, nil
		}
		m.v[op.X] = key

	case OpSetDelayTimer:
		m.delayTimer = m.v[op.X]

	case OpSetSoundTimer:
		m.soundTimer = m.v[op.X]

	case OpAddIndex:
		m.index += uint16(m.v[op.X])

	case OpLoadGlyph:
		m.index = FONT_START + uint16(m.v[op.X]&0x0F)*FONT_GLYPH_SIZE

	case OpStoreBCD:
		val := m.v[op.X]
		m.memory[m.index] = val / 100
		m.memory[m.index+1] = val / 10 % 10
		m.memory[m.index+2] = val % 10

	case OpStoreRegisters:
		copy(m.memory[m.index:], m.v[:op.X+1])

	case OpLoadRegisters:
		copy(m.v[:op.X+1], m.memory[m.index:])
	}

	return StepExecuted, nil
}

// shiftOperand picks the shift source register: V[x] on the canonical base
// hardware, V[y] when the revision quirk is enabled.
func (m *Machine) shiftOperand(op Opcode) uint8 {
	if m.config.ShiftSourceY {
		return m.v[op.Y]
	}
	return m.v[op.X]
}

func btou8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
