// input_interface.go - keypad capability consumed by the CHIP-8 core

package main

// KeyInput is the 16-key hexadecimal keypad capability. The core queries
// it; it never owns key state itself. KeyHeld answers "is key k (0-15)
// currently held". PollKey pops the next buffered key press without
// blocking; the second result is false when none is pending.
type KeyInput interface {
	KeyHeld(key uint8) bool
	PollKey() (uint8, bool)
}

// NullKeyInput is the keypad of a machine with nothing attached.
type NullKeyInput struct{}

func (NullKeyInput) KeyHeld(uint8) bool     { return false }
func (NullKeyInput) PollKey() (uint8, bool) { return 0, false }
