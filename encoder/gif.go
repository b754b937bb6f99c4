package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/draw"

	"github.com/Elitezen/text-on-gif/frames"
)

// tracer writes to trace with key 'textongif.encoder'
func tracer() tracing.Trace {
	return tracing.Select("textongif.encoder")
}

var (
	// ErrFinished is returned when frames are added, or Finish is called, after Finish.
	ErrFinished = errors.New("encoder: already finished")
	// ErrFrameSize is returned for frames whose size differs from the animation's.
	ErrFrameSize = errors.New("encoder: frame size mismatch")
)

// Quantizer reduces full-color frames to a palette.
type Quantizer struct {
	Name    string
	Palette color.Palette
	Drawer  draw.Drawer
}

// ParseQuantization resolves a strategy name: plan9, websafe, plan9-dither or
// websafe-dither. Unknown names use plan9-dither.
func ParseQuantization(name string) Quantizer {
	n := strings.ToLower(strings.TrimSpace(name))
	q := Quantizer{Name: n, Palette: palette.Plan9, Drawer: draw.Src}
	if strings.HasPrefix(n, "websafe") {
		q.Palette = palette.WebSafe
	}
	switch n {
	case "plan9", "websafe":
	case "websafe-dither":
		q.Drawer = draw.FloydSteinberg
	default:
		q.Name = "plan9-dither"
		q.Palette = palette.Plan9
		q.Drawer = draw.FloydSteinberg
	}
	return q
}

// Options initialize an encoder.
type Options struct {
	Width        int
	Height       int
	Quantization string
	Transparent  bool
	FrameCount   int
}

// GIF accumulates composited frames into one GIF animation. Calls must follow
// frame order: SetDelay, SetDispose, AddFrame per frame, then Finish once.
type GIF struct {
	opts     Options
	quant    Quantizer
	palette  color.Palette
	transIdx int
	anim     gif.GIF
	delayMs  int
	disposal frames.Disposal
	finished bool
}

// New creates an encoder for width×height frames.
func New(opts Options) *GIF {
	q := ParseQuantization(opts.Quantization)
	pal := q.Palette
	transIdx := -1
	if opts.Transparent {
		// 索引 255 固定留给透明色，较小的调色板用最后一色补齐
		pal = make(color.Palette, 0, 256)
		pal = append(pal, q.Palette[:min(len(q.Palette), 255)]...)
		for len(pal) < 255 {
			pal = append(pal, pal[len(pal)-1])
		}
		transIdx = len(pal)
		pal = append(pal, color.Transparent)
	}
	e := &GIF{
		opts:     opts,
		quant:    q,
		palette:  pal,
		transIdx: transIdx,
	}
	e.anim.Config = image.Config{Width: opts.Width, Height: opts.Height}
	e.anim.Image = make([]*image.Paletted, 0, opts.FrameCount)
	e.anim.Delay = make([]int, 0, opts.FrameCount)
	e.anim.Disposal = make([]byte, 0, opts.FrameCount)
	return e
}

// SetRepeat sets the loop metadata: -1 plays once, 0 loops forever, n>0 loops n times.
func (e *GIF) SetRepeat(n int) {
	if n < -1 {
		n = -1
	}
	e.anim.LoopCount = n
}

// SetDelay sets the delay, in milliseconds, of the next frame.
func (e *GIF) SetDelay(ms int) { e.delayMs = max(ms, 0) }

// SetDispose sets the disposal method of the next frame.
func (e *GIF) SetDispose(d frames.Disposal) { e.disposal = d }

// AddFrame quantizes img and appends it with the pending delay and disposal.
func (e *GIF) AddFrame(img image.Image) error {
	if e.finished {
		return ErrFinished
	}
	b := img.Bounds()
	if b.Dx() != e.opts.Width || b.Dy() != e.opts.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, b.Dx(), b.Dy(), e.opts.Width, e.opts.Height)
	}

	rect := image.Rect(0, 0, e.opts.Width, e.opts.Height)
	p := image.NewPaletted(rect, e.palette)
	e.quant.Drawer.Draw(p, rect, img, b.Min)
	if e.transIdx >= 0 {
		e.punchTransparency(p, img)
	}

	e.anim.Image = append(e.anim.Image, p)
	e.anim.Delay = append(e.anim.Delay, (e.delayMs+5)/10)
	e.anim.Disposal = append(e.anim.Disposal, byte(e.disposal))
	return nil
}

// punchTransparency 把源图中 alpha 低于一半的像素映射到透明索引。
func (e *GIF) punchTransparency(p *image.Paletted, img image.Image) {
	b := img.Bounds()
	for y := 0; y < e.opts.Height; y++ {
		for x := 0; x < e.opts.Width; x++ {
			if _, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA(); a < 0x8000 {
				p.SetColorIndex(x, y, uint8(e.transIdx))
			}
		}
	}
}

// Len returns the number of frames added so far.
func (e *GIF) Len() int { return len(e.anim.Image) }

// Finish encodes the accumulated frames and returns the GIF bytes. It may be
// called exactly once.
func (e *GIF) Finish() ([]byte, error) {
	if e.finished {
		return nil, ErrFinished
	}
	e.finished = true
	if len(e.anim.Image) == 0 {
		return nil, nil
	}
	if e.opts.FrameCount > 0 && e.opts.FrameCount != len(e.anim.Image) {
		tracer().Infof("expected %d frames, encoded %d", e.opts.FrameCount, len(e.anim.Image))
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, &e.anim); err != nil {
		return nil, fmt.Errorf("编码 GIF 失败: %w", err)
	}
	tracer().Debugf("encoded %d frames, %d bytes", len(e.anim.Image), buf.Len())
	return buf.Bytes(), nil
}
