package main

import "testing"

// TestDisassembleRendering verifies representative renderings of each
// operand shape.
func TestDisassembleRendering(t *testing.T) {
	tests := []struct {
		word uint16
		want string
	}{
		{0x00E0, "CLS"},
		{0x00EE, "RET"},
		{0x0123, "SYS 0x123"},
		{0x1ABC, "JP 0xABC"},
		{0x22D4, "CALL 0x2D4"},
		{0x3A42, "SE VA, 0x42"},
		{0x6CFF, "LD VC, 0xFF"},
		{0x8120, "LD V1, V2"},
		{0x8344, "ADD V3, V4"},
		{0xA123, "LD I, 0x123"},
		{0xB456, "JP V0, 0x456"},
		{0xC70F, "RND V7, 0x0F"},
		{0xDAB6, "DRW VA, VB, 6"},
		{0xE19E, "SKP V1"},
		{0xE2A1, "SKNP V2"},
		{0xF40A, "LD V4, K"},
		{0xF933, "LD B, V9"},
		{0xFA55, "LD [I], VA"},
		{0xFB65, "LD VB, [I]"},
	}

	for _, tt := range tests {
		op, err := DecodeInstruction(instructionWord(tt.word))
		if err != nil {
			t.Fatalf("decode %04X failed: %v", tt.word, err)
		}
		if got := Disassemble(op); got != tt.want {
			t.Fatalf("disassemble %04X = %q, expected %q", tt.word, got, tt.want)
		}
	}
}

// TestMachineDisassemble verifies rendering straight out of machine memory,
// including the raw-word fallback for illegal encodings.
func TestMachineDisassemble(t *testing.T) {
	m := NewMachine(nil, Config{})
	program := []byte{
		0x60, 0x42, // LD V0, 0x42
		0xF0, 0xFF, // illegal
	}
	if err := m.Load(PROGRAM_START, program); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := m.Disassemble(PROGRAM_START); got != "LD V0, 0x42" {
		t.Fatalf("disassemble at %03X = %q", PROGRAM_START, got)
	}
	if got := m.Disassemble(PROGRAM_START + 2); got != "DW 0xF0FF" {
		t.Fatalf("illegal word rendered as %q, expected DW 0xF0FF", got)
	}
	if got := m.Disassemble(MEMORY_SIZE - 1); got == "" {
		t.Fatal("end-of-memory address rendered as empty string")
	}
}
