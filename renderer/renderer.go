package renderer

import (
	"errors"
	"image"

	"github.com/Elitezen/text-on-gif/layout"
)

// ErrBadFrame is returned by Paint for frame buffers that cannot be drawn.
var ErrBadFrame = errors.New("renderer: frame cannot be painted")

// Surface 是合成器使用的二维绘制表面：承载当前帧像素，并能测量、描边与填充文本。
// 字体、颜色与描边宽度在创建表面时绑定。
type Surface interface {
	layout.Measurer

	// Paint composites img over the surface at the origin.
	Paint(img image.Image) error
	// Snapshot copies the current pixels.
	Snapshot() *image.RGBA
	// Restore replaces the current pixels with snap.
	Restore(snap *image.RGBA)
	// Clear resets every pixel to transparent.
	Clear()

	StrokeText(s string, x, y float64, h layout.HAlign, b layout.Baseline)
	FillText(s string, x, y float64, h layout.HAlign, b layout.Baseline)

	// Image exposes the current pixels without copying.
	Image() *image.RGBA
}
