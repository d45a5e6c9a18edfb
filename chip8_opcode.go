// chip8_opcode.go - CHIP-8 instruction word decoding

package main

import "fmt"

// instructionWord is one 16-bit word from the program stream, stored
// big-endian in memory (high byte at the lower address).
type instructionWord uint16

func (w instructionWord) op() uint8   { return uint8(w >> 12) }
func (w instructionWord) x() uint8    { return uint8(w>>8) & 0x0F }
func (w instructionWord) y() uint8    { return uint8(w>>4) & 0x0F }
func (w instructionWord) n() uint8    { return uint8(w) & 0x0F }
func (w instructionWord) kk() uint8   { return uint8(w) }
func (w instructionWord) nnn() uint16 { return uint16(w) & 0x0FFF }

// OpcodeKind identifies one of the 35 instruction variants of the base
// CHIP-8 instruction set.
type OpcodeKind uint8

const (
	OpNoop          OpcodeKind = iota // 0nnn (other than 00E0/00EE)
	OpClearScreen                     // 00E0
	OpReturn                          // 00EE
	OpJump                            // 1nnn
	OpCall                            // 2nnn
	OpSkipEqByte                      // 3xkk
	OpSkipNeByte                      // 4xkk
	OpSkipEqReg                       // 5xy0
	OpLoadByte                        // 6xkk
	OpAddByte                         // 7xkk
	OpLoadReg                         // 8xy0
	OpOr                              // 8xy1
	OpAnd                             // 8xy2
	OpXor                             // 8xy3
	OpAddReg                          // 8xy4
	OpSubReg                          // 8xy5
	OpShiftRight                      // 8xy6
	OpSubReverse                      // 8xy7
	OpShiftLeft                       // 8xyE
	OpSkipNeReg                       // 9xy0
	OpLoadIndex                       // Annn
	OpJumpOffset                      // Bnnn
	OpRandom                          // Cxkk
	OpDraw                            // Dxyn
	OpSkipKeyHeld                     // Ex9E
	OpSkipKeyNotHeld                  // ExA1
	OpLoadDelayTimer                  // Fx07
	OpWaitKey                         // Fx0A
	OpSetDelayTimer                   // Fx15
	OpSetSoundTimer                   // Fx18
	OpAddIndex                        // Fx1E
	OpLoadGlyph                       // Fx29
	OpStoreBCD                        // Fx33
	OpStoreRegisters                  // Fx55
	OpLoadRegisters                   // Fx65
)

// Opcode is a decoded instruction. Only the fields the variant actually
// encodes are meaningful; the rest are zero.
type Opcode struct {
	Kind OpcodeKind
	X    uint8
	Y    uint8
	N    uint8
	KK   uint8
	NNN  uint16
}

// DecodeError reports a 16-bit word outside the legal encoding table.
// Addr is the memory address the word was fetched from; it is zero when
// the word was decoded outside a fetch cycle.
type DecodeError struct {
	Addr uint16
	Word uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("illegal instruction %04X at %03X", e.Word, e.Addr)
}

// DecodeInstruction maps a 16-bit word to its instruction variant. It is a
// pure function: the same word always yields the same Opcode. Words outside
// the legal encoding table return a *DecodeError.
func DecodeInstruction(w instructionWord) (Opcode, error) {
	switch w.op() {
	case 0x0:
		switch uint16(w) {
		case 0x00E0:
			return Opcode{Kind: OpClearScreen}, nil
		case 0x00EE:
			return Opcode{Kind: OpReturn}, nil
		default:
			// 0nnn (SYS addr) calls native RCA 1802 routines on real
			// hardware; interpreters treat it as a no-op.
			return Opcode{Kind: OpNoop, NNN: w.nnn()}, nil
		}
	case 0x1:
		return Opcode{Kind: OpJump, NNN: w.nnn()}, nil
	case 0x2:
		return Opcode{Kind: OpCall, NNN: w.nnn()}, nil
	case 0x3:
		return Opcode{Kind: OpSkipEqByte, X: w.x(), KK: w.kk()}, nil
	case 0x4:
		return Opcode{Kind: OpSkipNeByte, X: w.x(), KK: w.kk()}, nil
	case 0x5:
		if w.n() != 0 {
			return Opcode{}, &DecodeError{Word: uint16(w)}
		}
		return Opcode{Kind: OpSkipEqReg, X: w.x(), Y: w.y()}, nil
	case 0x6:
		return Opcode{Kind: OpLoadByte, X: w.x(), KK: w.kk()}, nil
	case 0x7:
		return Opcode{Kind: OpAddByte, X: w.x(), KK: w.kk()}, nil
	case 0x8:
		kind, ok := alu8Kind(w.n())
		if !ok {
			return Opcode{}, &DecodeError{Word: uint16(w)}
		}
		return Opcode{Kind: kind, X: w.x(), Y: w.y()}, nil
	case 0x9:
		if w.n() != 0 {
			return Opcode{}, &DecodeError{Word: uint16(w)}
		}
		return Opcode{Kind: OpSkipNeReg, X: w.x(), Y: w.y()}, nil
	case 0xA:
		return Opcode{Kind: OpLoadIndex, NNN: w.nnn()}, nil
	case 0xB:
		return Opcode{Kind: OpJumpOffset, NNN: w.nnn()}, nil
	case 0xC:
		return Opcode{Kind: OpRandom, X: w.x(), KK: w.kk()}, nil
	case 0xD:
		return Opcode{Kind: OpDraw, X: w.x(), Y: w.y(), N: w.n()}, nil
	case 0xE:
		switch w.kk() {
		case 0x9E:
			return Opcode{Kind: OpSkipKeyHeld, X: w.x()}, nil
		case 0xA1:
			return Opcode{Kind: OpSkipKeyNotHeld, X: w.x()}, nil
		}
		return Opcode{}, &DecodeError{Word: uint16(w)}
	case 0xF:
		kind, ok := miscFKind(w.kk())
		if !ok {
			return Opcode{}, &DecodeError{Word: uint16(w)}
		}
		return Opcode{Kind: kind, X: w.x()}, nil
	}
	return Opcode{}, &DecodeError{Word: uint16(w)}
}

// alu8Kind selects the 8xyN sub-operation by its low nibble.
func alu8Kind(n uint8) (OpcodeKind, bool) {
	switch n {
	case 0x0:
		return OpLoadReg, true
	case 0x1:
		return OpOr, true
	case 0x2:
		return OpAnd, true
	case 0x3:
		return OpXor, true
	case 0x4:
		return OpAddReg, true
	case 0x5:
		return OpSubReg, true
	case 0x6:
		return OpShiftRight, true
	case 0x7:
		return OpSubReverse, true
	case 0xE:
		return OpShiftLeft, true
	}
	return 0, false
}

// miscFKind selects the FxKK sub-operation by its low byte.
func miscFKind(kk uint8) (OpcodeKind, bool) {
	switch kk {
	case 0x07:
		return OpLoadDelayTimer, true
	case 0x0A:
		return OpWaitKey, true
	case 0x15:
		return OpSetDelayTimer, true
	case 0x18:
		return OpSetSoundTimer, true
	case 0x1E:
		return OpAddIndex, true
	case 0x29:
		return OpLoadGlyph, true
	case 0x33:
		return OpStoreBCD, true
	case 0x55:
		return OpStoreRegisters, true
	case 0x65:
		return OpLoadRegisters, true
	}
	return 0, false
}
