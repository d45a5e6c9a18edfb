package main

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// TestAssembleBasicInstructions verifies the encoding of each mnemonic
// family with literal operands.
func TestAssembleBasicInstructions(t *testing.T) {
	source := `
	CLS
	LD V0, 0x42
	LD V1, V0
	ADD V0, 1
	ADD V0, V1
	OR V2, V3
	AND V2, V3
	XOR V2, V3
	SUB V2, V3
	SUBN V2, V3
	SHR V4
	SHL V4, V5
	SE V0, 0x10
	SE V0, V1
	SNE V0, 0x10
	SNE V0, V1
	JP 0x300
	JP V0, 0x300
	CALL 0x400
	RND V6, 0x0F
	DRW VA, VB, 6
	SKP V1
	SKNP V2
	RET
`
	program, err := Assemble(source)
	assert.NoError(t, err)

	want := []byte{
		0x00, 0xE0,
		0x60, 0x42,
		0x81, 0x00,
		0x70, 0x01,
		0x80, 0x14,
		0x82, 0x31,
		0x82, 0x32,
		0x82, 0x33,
		0x82, 0x35,
		0x82, 0x37,
		0x84, 0x46,
		0x84, 0x5E,
		0x30, 0x10,
		0x50, 0x10,
		0x40, 0x10,
		0x90, 0x10,
		0x13, 0x00,
		0xB3, 0x00,
		0x24, 0x00,
		0xC6, 0x0F,
		0xDA, 0xB6,
		0xE1, 0x9E,
		0xE2, 0xA1,
		0x00, 0xEE,
	}
	assert.Equal(t, want, program)
}

// TestAssembleLoadFamily verifies the LD variants that address the index
// register, timers, keypad and memory.
func TestAssembleLoadFamily(t *testing.T) {
	source := `
	LD I, 0x2EA
	LD V0, DT
	LD DT, V1
	LD ST, V2
	LD V3, K
	LD F, V4
	LD B, V5
	LD [I], V6
	LD V7, [I]
`
	program, err := Assemble(source)
	assert.NoError(t, err)

	want := []byte{
		0xA2, 0xEA,
		0xF0, 0x07,
		0xF1, 0x15,
		0xF2, 0x18,
		0xF3, 0x0A,
		0xF4, 0x29,
		0xF5, 0x33,
		0xF6, 0x55,
		0xF7, 0x65,
	}
	assert.Equal(t, want, program)
}

// TestAssembleLabels verifies forward and backward label references resolve
// to addresses relative to the program start.
func TestAssembleLabels(t *testing.T) {
	source := `
start:
	LD V0, 0
loop:
	ADD V0, 1
	SE V0, 10
	JP loop
	CALL done
	JP start
done:
	RET
`
	program, err := Assemble(source)
	assert.NoError(t, err)

	// start=0x200, loop=0x202, done=0x20C.
	want := []byte{
		0x60, 0x00,
		0x70, 0x01,
		0x30, 0x0A,
		0x12, 0x02,
		0x22, 0x0C,
		0x12, 0x00,
		0x00, 0xEE,
	}
	assert.Equal(t, want, program)
}

// TestAssembleDataDirectives verifies DB and DW emission and label
// addressing into data.
func TestAssembleDataDirectives(t *testing.T) {
	source := `
	LD I, sprite
	DRW V0, V1, 2
sprite:
	DB 0xF0, 0x90
	DW 0x1234
`
	program, err := Assemble(source)
	assert.NoError(t, err)

	want := []byte{
		0xA2, 0x04, // sprite = 0x204
		0xD0, 0x12,
		0xF0, 0x90,
		0x12, 0x34,
	}
	assert.Equal(t, want, program)
}

// TestAssembleCommentsAndCase verifies comments are ignored and mnemonics,
// registers and labels are case-insensitive.
func TestAssembleCommentsAndCase(t *testing.T) {
	source := `
	; full line comment
Main:
	cls            ; trailing comment
	ld vA, 0x01
	jp MAIN
`
	program, err := Assemble(source)
	assert.NoError(t, err)

	want := []byte{
		0x00, 0xE0,
		0x6A, 0x01,
		0x12, 0x00,
	}
	assert.Equal(t, want, program)
}

// TestAssembleErrors verifies the failure modes a programmer hits most:
// unknown mnemonics, bad ranges, undefined and duplicate labels.
func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unknown mnemonic", "FOO V0, V1\n"},
		{"byte out of range", "LD V0, 0x100\n"},
		{"nibble out of range", "DRW V0, V1, 16\n"},
		{"address out of range", "JP 0x1000\n"},
		{"undefined label", "JP nowhere\n"},
		{"duplicate label", "x:\nCLS\nx:\nCLS\n"},
		{"register expected", "ADD 5, V0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.source)
			assert.Error(t, err)
		})
	}
}

// TestAssembleMissingFinalNewline verifies a source without a trailing
// newline still assembles.
func TestAssembleMissingFinalNewline(t *testing.T) {
	program, err := Assemble("CLS")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xE0}, program)
}
