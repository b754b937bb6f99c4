package renderer

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Buffer is the pixel half of a Surface: a fixed-size RGBA canvas with the
// paint, snapshot, restore and clear operations. Text drawing is left to the
// embedding surface.
type Buffer struct {
	img *image.RGBA
}

// NewBuffer allocates a transparent buffer of the given size.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (b *Buffer) Bounds() image.Rectangle { return b.img.Bounds() }

func (b *Buffer) Image() *image.RGBA { return b.img }

// Paint composites img over the buffer. Images of another size are rejected.
func (b *Buffer) Paint(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrBadFrame)
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba == nil {
		return fmt.Errorf("%w: nil image", ErrBadFrame)
	}
	if img.Bounds() != b.img.Bounds() {
		return fmt.Errorf("%w: bounds %v, surface %v", ErrBadFrame, img.Bounds(), b.img.Bounds())
	}
	draw.Draw(b.img, b.img.Bounds(), img, image.Point{}, draw.Over)
	return nil
}

func (b *Buffer) Snapshot() *image.RGBA {
	snap := image.NewRGBA(b.img.Bounds())
	copy(snap.Pix, b.img.Pix)
	return snap
}

// Restore copies snap back. A snapshot of another size is ignored.
func (b *Buffer) Restore(snap *image.RGBA) {
	if snap == nil || snap.Bounds() != b.img.Bounds() {
		return
	}
	copy(b.img.Pix, snap.Pix)
}

func (b *Buffer) Clear() {
	clear(b.img.Pix)
}

// Composite draws a layer over the buffer, e.g. rasterized text.
func (b *Buffer) Composite(layer image.Image) {
	draw.Draw(b.img, b.img.Bounds(), layer, image.Point{}, draw.Over)
}
