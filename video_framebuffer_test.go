package main

import "testing"

// TestDrawSpriteXOR verifies set, collision and erase semantics of the XOR
// blit.
func TestDrawSpriteXOR(t *testing.T) {
	var fb FrameBuffer

	if fb.DrawSprite(10, 5, []byte{0b10100000}) {
		t.Fatal("collision reported on a blank screen")
	}
	if !fb.Pixel(10, 5) || fb.Pixel(11, 5) || !fb.Pixel(12, 5) {
		t.Fatal("sprite bits landed on the wrong columns")
	}

	if !fb.DrawSprite(10, 5, []byte{0b10000000}) {
		t.Fatal("no collision reported when erasing a set pixel")
	}
	if fb.Pixel(10, 5) {
		t.Fatal("pixel survived an XOR erase")
	}
	if !fb.Pixel(12, 5) {
		t.Fatal("unrelated pixel cleared")
	}
}

// TestDrawSpriteOverlapPartial verifies that a single overlapping pixel is
// enough to set the collision result.
func TestDrawSpriteOverlapPartial(t *testing.T) {
	var fb FrameBuffer
	fb.DrawSprite(0, 0, []byte{0b00010000})

	if !fb.DrawSprite(0, 0, []byte{0b11111111}) {
		t.Fatal("one-pixel overlap not reported as a collision")
	}
	if fb.Pixel(3, 0) {
		t.Fatal("overlapping pixel still set")
	}
	if !fb.Pixel(0, 0) || !fb.Pixel(7, 0) {
		t.Fatal("non-overlapping pixels not set")
	}
}

// TestDrawSpriteWrapsHorizontally verifies that columns past the right edge
// reappear on the left.
func TestDrawSpriteWrapsHorizontally(t *testing.T) {
	var fb FrameBuffer
	fb.DrawSprite(62, 0, []byte{0b11110000})

	if !fb.Pixel(62, 0) || !fb.Pixel(63, 0) {
		t.Fatal("right-edge pixels not set")
	}
	if !fb.Pixel(0, 0) || !fb.Pixel(1, 0) {
		t.Fatal("wrapped pixels not set on the left edge")
	}
	if fb.Pixel(2, 0) {
		t.Fatal("pixel set past the sprite width")
	}
}

// TestDrawSpriteWrapsVertically verifies that rows past the bottom edge
// reappear at the top.
func TestDrawSpriteWrapsVertically(t *testing.T) {
	var fb FrameBuffer
	fb.DrawSprite(0, 31, []byte{0x80, 0x80})

	if !fb.Pixel(0, 31) {
		t.Fatal("bottom-edge pixel not set")
	}
	if !fb.Pixel(0, 0) {
		t.Fatal("wrapped pixel not set on the top row")
	}
}

// TestDrawSpriteOriginWraps verifies that an origin beyond the display is
// reduced modulo the display size before drawing.
func TestDrawSpriteOriginWraps(t *testing.T) {
	var fb FrameBuffer
	fb.DrawSprite(64+3, 32+2, []byte{0b10000000})

	if !fb.Pixel(3, 2) {
		t.Fatal("out-of-range origin not wrapped to (3,2)")
	}
}

// TestClear verifies that Clear zero-fills every pixel.
func TestClear(t *testing.T) {
	var fb FrameBuffer
	fb.DrawSprite(0, 0, []byte{0xFF, 0xFF})
	fb.Clear()

	for y := 0; y < DISPLAY_HEIGHT; y++ {
		for x := 0; x < DISPLAY_WIDTH; x++ {
			if fb.Pixel(x, y) {
				t.Fatalf("pixel (%d,%d) set after clear", x, y)
			}
		}
	}
}

// TestTakeDirty verifies the dirty flag is set by mutations and consumed by
// the read.
func TestTakeDirty(t *testing.T) {
	var fb FrameBuffer
	if fb.TakeDirty() {
		t.Fatal("fresh framebuffer reported dirty")
	}

	fb.DrawSprite(0, 0, []byte{0xFF})
	if !fb.TakeDirty() {
		t.Fatal("draw did not mark the buffer dirty")
	}
	if fb.TakeDirty() {
		t.Fatal("dirty flag not consumed by the read")
	}

	fb.Clear()
	if !fb.TakeDirty() {
		t.Fatal("clear did not mark the buffer dirty")
	}
}

// TestRenderRGBA verifies pixel expansion with the configured colors and
// byte order.
func TestRenderRGBA(t *testing.T) {
	var fb FrameBuffer
	fb.DrawSprite(1, 0, []byte{0b10000000})

	dst := make([]byte, DISPLAY_WIDTH*DISPLAY_HEIGHT*4)
	fb.RenderRGBA(dst, 0xFF20FF40, 0xFF000000)

	// Pixel (1,0) is on: R=0x40 G=0xFF B=0x20 A=0xFF.
	on := dst[4:8]
	if on[0] != 0x40 || on[1] != 0xFF || on[2] != 0x20 || on[3] != 0xFF {
		t.Fatalf("on pixel bytes % X, expected 40 FF 20 FF", on)
	}
	off := dst[0:4]
	if off[0] != 0x00 || off[3] != 0xFF {
		t.Fatalf("off pixel bytes % X, expected 00 .. .. FF", off)
	}
}

// BenchmarkDrawSprite measures the blit cost of a full-height sprite.
func BenchmarkDrawSprite(b *testing.B) {
	var fb FrameBuffer
	sprite := make([]byte, 15)
	for i := range sprite {
		sprite[i] = 0xA5
	}

	for i := 0; i < b.N; i++ {
		fb.DrawSprite(uint8(i)&63, uint8(i)&31, sprite)
	}
}
