// chip8_disasm.go - canonical mnemonic rendering for trace logging

/*
okto8 - a CHIP-8 virtual machine

License: GPLv3 or later
*/

package main

import "fmt"

// Disassemble renders a decoded instruction in the canonical mnemonic
// syntax that chip8asm accepts.
func Disassemble(op Opcode) string {
	switch op.Kind {
	case OpNoop:
		return fmt.Sprintf("SYS 0x%03X", op.NNN)
	case OpClearScreen:
		return "CLS"
	case OpReturn:
		return "RET"
	case OpJump:
		return fmt.Sprintf("JP 0x%03X", op.NNN)
	case OpCall:
		return fmt.Sprintf("CALL 0x%03X", op.NNN)
	case OpSkipEqByte:
		return fmt.Sprintf("SE V%X, 0x%02X", op.X, op.KK)
	case OpSkipNeByte:
		return fmt.Sprintf("SNE V%X, 0x%02X", op.X, op.KK)
	case OpSkipEqReg:
		return fmt.Sprintf("SE V%X, V%X", op.X, op.Y)
	case OpSkipNeReg:
		return fmt.Sprintf("SNE V%X, V%X", op.X, op.Y)
	case OpLoadByte:
		return fmt.Sprintf("LD V%X, 0x%02X", op.X, op.KK)
	case OpAddByte:
		return fmt.Sprintf("ADD V%X, 0x%02X", op.X, op.KK)
	case OpLoadReg:
		return fmt.Sprintf("LD V%X, V%X", op.X, op.Y)
	case OpOr:
		return fmt.Sprintf("OR V%X, V%X", op.X, op.Y)
	case OpAnd:
		return fmt.Sprintf("AND V%X, V%X", op.X, op.Y)
	case OpXor:
		return fmt.Sprintf("XOR V%X, V%X", op.X, op.Y)
	case OpAddReg:
		return fmt.Sprintf("ADD V%X, V%X", op.X, op.Y)
	case OpSubReg:
		return fmt.Sprintf("SUB V%X, V%X", op.X, op.Y)
	case OpSubReverse:
		return fmt.Sprintf("SUBN V%X, V%X", op.X, op.Y)
	case OpShiftRight:
		return fmt.Sprintf("SHR V%X, V%X", op.X, op.Y)
	case OpShiftLeft:
		return fmt.Sprintf("SHL V%X, V%X", op.X, op.Y)
	case OpLoadIndex:
		return fmt.Sprintf("LD I, 0x%03X", op.NNN)
	case OpJumpOffset:
		return fmt.Sprintf("JP V0, 0x%03X", op.NNN)
	case OpRandom:
		return fmt.Sprintf("RND V%X, 0x%02X", op.X, op.KK)
	case OpDraw:
		return fmt.Sprintf("DRW V%X, V%X, %d", op.X, op.Y, op.N)
	case OpSkipKeyHeld:
		return fmt.Sprintf("SKP V%X", op.X)
	case OpSkipKeyNotHeld:
		return fmt.Sprintf("SKNP V%X", op.X)
	case OpLoadDelayTimer:
		return fmt.Sprintf("LD V%X, DT", op.X)
	case OpWaitKey:
		return fmt.Sprintf("LD V%X, K", op.X)
	case OpSetDelayTimer:
		return fmt.Sprintf("LD DT, V%X", op.X)
	case OpSetSoundTimer:
		return fmt.Sprintf("LD ST, V%X", op.X)
	case OpAddIndex:
		return fmt.Sprintf("ADD I, V%X", op.X)
	case OpLoadGlyph:
		return fmt.Sprintf("LD F, V%X", op.X)
	case OpStoreBCD:
		return fmt.Sprintf("LD B, V%X", op.X)
	case OpStoreRegisters:
		return fmt.Sprintf("LD [I], V%X", op.X)
	case OpLoadRegisters:
		return fmt.Sprintf("LD V%X, [I]", op.X)
	}
	return "???"
}

// PC exposes the current program counter for tracing.
func (m *Machine) PC() uint16 { return m.pc }

// Disassemble renders the instruction stored at addr. Illegal encodings
// render as their raw word.
func (m *Machine) Disassemble(addr uint16) string {
	if int(addr)+1 >= MEMORY_SIZE {
		return fmt.Sprintf("0x%03X out of range", addr)
	}
	word := instructionWord(uint16(m.memory[addr])<<8 | uint16(m.memory[addr+1]))
	op, err := DecodeInstruction(word)
	if err != nil {
		return fmt.Sprintf("DW 0x%04X", uint16(word))
	}
	return Disassemble(op)
}
