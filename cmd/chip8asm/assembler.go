// assembler.go - two-pass CHIP-8 assembler

/*
okto8 - a CHIP-8 virtual machine

License: GPLv3 or later
*/

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

const (
	programStart = 0x200
	memorySize   = 4096
)

// Grammar is defined as Go structs with participle tags. One source line is
// an optional label, an optional instruction or directive, and a newline.

type Program struct {
	Lines []*Line `parser:"@@*"`
}

type Line struct {
	Pos   lexer.Position
	Label *string      `parser:"(@Ident \":\")?"`
	Instr *Instruction `parser:"@@? EOL"`
}

type Instruction struct {
	Pos      lexer.Position
	Mnemonic string     `parser:"@Ident"`
	Operands []*Operand `parser:"(@@ (\",\" @@)*)?"`
}

type Operand struct {
	Pos        lexer.Position
	IndexDeref bool    `parser:"  @(\"[\" \"I\" \"]\")"`
	Reg        *string `parser:"| @Reg"`
	Num        *string `parser:"| @(Hex | Number)"`
	Sym        *string `parser:"| @Ident"`
}

var asmLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "Hex", Pattern: `0[xX][0-9a-fA-F]+`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Reg", Pattern: `[Vv][0-9a-fA-F]\b`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[\[\],:]`},
})

var asmParser = participle.MustBuild[Program](
	participle.Lexer(asmLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// AssembleError points at the offending source line.
type AssembleError struct {
	Line int
	Msg  string
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func errAt(pos lexer.Position, format string, args ...any) error {
	return &AssembleError{Line: pos.Line, Msg: fmt.Sprintf(format, args...)}
}

// Assemble translates source text into a binary program image that loads at
// the conventional program start address. Two passes: the first sizes each
// line and records label addresses, the second emits code.
func Assemble(source string) ([]byte, error) {
	// The grammar requires a newline terminator on every line.
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	prog, err := asmParser.ParseString("", source)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]uint16)
	addr := uint16(programStart)
	for _, line := range prog.Lines {
		if line.Label != nil {
			name := strings.ToUpper(*line.Label)
			if _, dup := labels[name]; dup {
				return nil, errAt(line.Pos, "duplicate label %q", *line.Label)
			}
			labels[name] = addr
		}
		size, err := instructionSize(line.Instr)
		if err != nil {
			return nil, err
		}
		addr += size
		if int(addr) > memorySize {
			return nil, errAt(line.Pos, "program exceeds %d-byte address space", memorySize)
		}
	}

	enc := &encoder{labels: labels}
	for _, line := range prog.Lines {
		if line.Instr == nil {
			continue
		}
		if err := enc.encode(line.Instr); err != nil {
			return nil, err
		}
	}
	return enc.out, nil
}

func instructionSize(in *Instruction) (uint16, error) {
	if in == nil {
		return 0, nil
	}
	switch strings.ToUpper(in.Mnemonic) {
	case "DB":
		return uint16(len(in.Operands)), nil
	case "DW":
		return uint16(2 * len(in.Operands)), nil
	default:
		return 2, nil
	}
}

type encoder struct {
	labels map[string]uint16
	out    []byte
}

func (enc *encoder) emit(word uint16) {
	enc.out = append(enc.out, byte(word>>8), byte(word))
}

// encode emits one instruction or data directive. Operand shapes select
// among encodings that share a mnemonic, most visibly for LD and ADD.
func (enc *encoder) encode(in *Instruction) error {
	m := strings.ToUpper(in.Mnemonic)
	ops := in.Operands

	switch m {
	case "DB":
		for _, op := range ops {
			b, err := enc.value(op, 0xFF)
			if err != nil {
				return err
			}
			enc.out = append(enc.out, byte(b))
		}
		return nil
	case "DW":
		for _, op := range ops {
			w, err := enc.value(op, 0xFFFF)
			if err != nil {
				return err
			}
			enc.emit(w)
		}
		return nil
	}

	switch {
	case m == "CLS" && len(ops) == 0:
		enc.emit(0x00E0)
	case m == "RET" && len(ops) == 0:
		enc.emit(0x00EE)

	case m == "SYS" && len(ops) == 1:
		return enc.emitNNN(0x0000, ops[0])
	case m == "JP" && len(ops) == 1:
		return enc.emitNNN(0x1000, ops[0])
	case m == "JP" && len(ops) == 2 && isReg(ops[0], 0x0):
		return enc.emitNNN(0xB000, ops[1])
	case m == "CALL" && len(ops) == 1:
		return enc.emitNNN(0x2000, ops[0])

	case m == "SE" && len(ops) == 2 && ops[1].Reg != nil:
		return enc.emitXY(0x5000, ops[0], ops[1])
	case m == "SE" && len(ops) == 2:
		return enc.emitXKK(0x3000, ops[0], ops[1])
	case m == "SNE" && len(ops) == 2 && ops[1].Reg != nil:
		return enc.emitXY(0x9000, ops[0], ops[1])
	case m == "SNE" && len(ops) == 2:
		return enc.emitXKK(0x4000, ops[0], ops[1])

	case m == "LD" && len(ops) == 2:
		return enc.encodeLoad(in, ops[0], ops[1])

	case m == "ADD" && len(ops) == 2 && isSym(ops[0], "I"):
		return enc.emitFX(0xF01E, ops[1])
	case m == "ADD" && len(ops) == 2 && ops[1].Reg != nil:
		return enc.emitXY(0x8004, ops[0], ops[1])
	case m == "ADD" && len(ops) == 2:
		return enc.emitXKK(0x7000, ops[0], ops[1])

	case m == "OR" && len(ops) == 2:
		return enc.emitXY(0x8001, ops[0], ops[1])
	case m == "AND" && len(ops) == 2:
		return enc.emitXY(0x8002, ops[0], ops[1])
	case m == "XOR" && len(ops) == 2:
		return enc.emitXY(0x8003, ops[0], ops[1])
	case m == "SUB" && len(ops) == 2:
		return enc.emitXY(0x8005, ops[0], ops[1])
	case m == "SUBN" && len(ops) == 2:
		return enc.emitXY(0x8007, ops[0], ops[1])

	// The second register of the shifts is conventional and ignored by
	// the encoding; SHR V1 and SHR V1, V2 assemble identically.
	case m == "SHR" && (len(ops) == 1 || len(ops) == 2):
		y := ops[0]
		if len(ops) == 2 {
			y = ops[1]
		}
		return enc.emitXY(0x8006, ops[0], y)
	case m == "SHL" && (len(ops) == 1 || len(ops) == 2):
		y := ops[0]
		if len(ops) == 2 {
			y = ops[1]
		}
		return enc.emitXY(0x800E, ops[0], y)

	case m == "RND" && len(ops) == 2:
		return enc.emitXKK(0xC000, ops[0], ops[1])

	case m == "DRW" && len(ops) == 3:
		x, err := regIndex(ops[0])
		if err != nil {
			return err
		}
		y, err := regIndex(ops[1])
		if err != nil {
			return err
		}
		n, err := enc.value(ops[2], 0xF)
		if err != nil {
			return err
		}
		enc.emit(0xD000 | uint16(x)<<8 | uint16(y)<<4 | n)

	case m == "SKP" && len(ops) == 1:
		return enc.emitFX(0xE09E, ops[0])
	case m == "SKNP" && len(ops) == 1:
		return enc.emitFX(0xE0A1, ops[0])

	default:
		return errAt(in.Pos, "unknown instruction %q with %d operands", in.Mnemonic, len(ops))
	}
	return nil
}

// encodeLoad disambiguates the LD family by its destination and source.
func (enc *encoder) encodeLoad(in *Instruction, dst, src *Operand) error {
	switch {
	case isSym(dst, "I"):
		return enc.emitNNN(0xA000, src)
	case isSym(dst, "DT"):
		return enc.emitFX(0xF015, src)
	case isSym(dst, "ST"):
		return enc.emitFX(0xF018, src)
	case isSym(dst, "F"):
		return enc.emitFX(0xF029, src)
	case isSym(dst, "B"):
		return enc.emitFX(0xF033, src)
	case dst.IndexDeref:
		return enc.emitFX(0xF055, src)
	case dst.Reg != nil && isSym(src, "DT"):
		return enc.emitFX(0xF007, dst)
	case dst.Reg != nil && isSym(src, "K"):
		return enc.emitFX(0xF00A, dst)
	case dst.Reg != nil && src.IndexDeref:
		return enc.emitFX(0xF065, dst)
	case dst.Reg != nil && src.Reg != nil:
		return enc.emitXY(0x8000, dst, src)
	case dst.Reg != nil:
		return enc.emitXKK(0x6000, dst, src)
	}
	return errAt(in.Pos, "unsupported LD operands")
}

func (enc *encoder) emitNNN(base uint16, op *Operand) error {
	nnn, err := enc.value(op, 0xFFF)
	if err != nil {
		return err
	}
	enc.emit(base | nnn)
	return nil
}

func (enc *encoder) emitXKK(base uint16, reg, imm *Operand) error {
	x, err := regIndex(reg)
	if err != nil {
		return err
	}
	kk, err := enc.value(imm, 0xFF)
	if err != nil {
		return err
	}
	enc.emit(base | uint16(x)<<8 | kk)
	return nil
}

func (enc *encoder) emitXY(base uint16, rx, ry *Operand) error {
	x, err := regIndex(rx)
	if err != nil {
		return err
	}
	y, err := regIndex(ry)
	if err != nil {
		return err
	}
	enc.emit(base | uint16(x)<<8 | uint16(y)<<4)
	return nil
}

func (enc *encoder) emitFX(base uint16, reg *Operand) error {
	x, err := regIndex(reg)
	if err != nil {
		return err
	}
	enc.emit(base | uint16(x)<<8)
	return nil
}

// value resolves a numeric literal or label reference, bounds-checked.
func (enc *encoder) value(op *Operand, max uint16) (uint16, error) {
	switch {
	case op.Num != nil:
		n, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(*op.Num, "0x"), "0X"), numericBase(*op.Num), 16)
		if err != nil {
			return 0, errAt(op.Pos, "bad number %q", *op.Num)
		}
		if n > uint64(max) {
			return 0, errAt(op.Pos, "value %d out of range (max %d)", n, max)
		}
		return uint16(n), nil
	case op.Sym != nil:
		addr, ok := enc.labels[strings.ToUpper(*op.Sym)]
		if !ok {
			return 0, errAt(op.Pos, "undefined label %q", *op.Sym)
		}
		if addr > max {
			return 0, errAt(op.Pos, "label %q address %03X out of range", *op.Sym, addr)
		}
		return addr, nil
	}
	return 0, errAt(op.Pos, "expected a number or label")
}

func numericBase(s string) int {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return 16
	}
	return 10
}

func regIndex(op *Operand) (uint8, error) {
	if op.Reg == nil {
		return 0, errAt(op.Pos, "expected a register")
	}
	n, err := strconv.ParseUint((*op.Reg)[1:], 16, 8)
	if err != nil {
		return 0, errAt(op.Pos, "bad register %q", *op.Reg)
	}
	return uint8(n), nil
}

func isReg(op *Operand, index uint8) bool {
	n, err := regIndex(op)
	return err == nil && n == index
}

func isSym(op *Operand, name string) bool {
	return op.Sym != nil && strings.EqualFold(*op.Sym, name)
}
