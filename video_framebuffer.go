// video_framebuffer.go - monochrome 64x32 framebuffer with XOR sprite blit

package main

import "math/bits"

const (
	DISPLAY_WIDTH  = 64
	DISPLAY_HEIGHT = 32
)

// FrameBuffer is the 64x32 single-bit pixel grid. Each row is one uint64
// with column 0 in the most significant bit, so a sprite blit is a rotate
// and an XOR per row. Only the draw and clear instructions mutate it;
// everything outside the core reads it through Pixel or RenderRGBA.
type FrameBuffer struct {
	rows  [DISPLAY_HEIGHT]uint64
	dirty bool
}

// Clear zero-fills the grid.
func (fb *FrameBuffer) Clear() {
	fb.rows = [DISPLAY_HEIGHT]uint64{}
	fb.dirty = true
}

// Pixel reports whether the pixel at (x, y) is set. x in [0,64), y in [0,32).
func (fb *FrameBuffer) Pixel(x, y int) bool {
	return fb.rows[y]>>(DISPLAY_WIDTH-1-x)&1 != 0
}

// DrawSprite XOR-blits an 8-pixel-wide sprite with its origin at (x, y).
// Each byte of sprite is one row, most significant bit leftmost. Both axes
// wrap independently: column (x+i) mod 64, row (y+j) mod 32. Returns true
// if the blit turned any previously-set pixel off.
func (fb *FrameBuffer) DrawSprite(x, y uint8, sprite []byte) bool {
	collision := false
	shift := int(x) % DISPLAY_WIDTH
	for i, b := range sprite {
		row := (int(y) + i) % DISPLAY_HEIGHT
		// Place the 8 sprite bits at the origin column; rotating instead
		// of shifting wraps the overhang back to column 0.
		mask := bits.RotateLeft64(uint64(b)<<(DISPLAY_WIDTH-8), -shift)
		if fb.rows[row]&mask != 0 {
			collision = true
		}
		fb.rows[row] ^= mask
	}
	fb.dirty = true
	return collision
}

// TakeDirty reports whether the buffer changed since the last call and
// resets the flag. Hosts use it to skip redundant repaints.
func (fb *FrameBuffer) TakeDirty() bool {
	d := fb.dirty
	fb.dirty = false
	return d
}

// RenderRGBA expands the bit grid into a 64x32 RGBA byte buffer using the
// given 0xAABBGGRR colors for set and cleared pixels. dst must hold
// DISPLAY_WIDTH*DISPLAY_HEIGHT*4 bytes.
func (fb *FrameBuffer) RenderRGBA(dst []byte, on, off uint32) {
	i := 0
	for y := 0; y < DISPLAY_HEIGHT; y++ {
		row := fb.rows[y]
		for x := 0; x < DISPLAY_WIDTH; x++ {
			color := off
			if row&(1<<(DISPLAY_WIDTH-1-x)) != 0 {
				color = on
			}
			dst[i] = byte(color)
			dst[i+1] = byte(color >> 8)
			dst[i+2] = byte(color >> 16)
			dst[i+3] = byte(color >> 24)
			i += 4
		}
	}
}
