package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/npillmayer/schuko/tracing"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/Elitezen/text-on-gif/layout"
	"github.com/Elitezen/text-on-gif/renderer"
)

// tracer writes to trace with key 'textongif.canvas'
func tracer() tracing.Trace {
	return tracing.Select("textongif.canvas")
}

// resolution maps one canvas millimetre to one frame pixel.
var resolution = canvas.DPMM(1.0)

// Surface draws text onto frame pixels via github.com/tdewolff/canvas.
// 像素操作由内嵌的 renderer.Buffer 完成；文本先栅格化成透明图层再叠加，
// 同一行在每帧位置相同，因此图层按行缓存，只栅格化一次。
type Surface struct {
	*renderer.Buffer

	face        *canvas.FontFace
	fill        color.Color
	stroke      color.Color
	strokeWidth float64
	width       float64
	height      float64

	layers map[layerKey]*image.RGBA
}

var _ renderer.Surface = (*Surface)(nil)

type layerKey struct {
	text   string
	x, y   float64
	h      layout.HAlign
	b      layout.Baseline
	stroke bool
}

// NewSurface creates a width×height surface with the font and colors of cfg bound.
// Style values are not validated: an unknown family falls back to a built-in face
// and an unknown color draws black.
func NewSurface(width, height int, cfg layout.Config, reg *Fonts) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("无效的画布尺寸 %dx%d", width, height)
	}
	if reg == nil {
		reg = NewFonts()
	}
	family, err := reg.Family(cfg.FontFamily)
	if err != nil {
		return nil, err
	}
	fill := parseColor(cfg.FontColor)
	// 字号以像素给出；1px = 1mm，创建字体面需要 pt。
	sizePt := layout.FontSizePx(cfg.FontSize) * layout.MmToPt
	face := family.Face(sizePt, fill, canvas.FontRegular, canvas.FontNormal)

	return &Surface{
		Buffer:      renderer.NewBuffer(width, height),
		face:        face,
		fill:        fill,
		stroke:      parseColor(cfg.StrokeColor),
		strokeWidth: cfg.StrokeWidth,
		width:       float64(width),
		height:      float64(height),
		layers:      map[layerKey]*image.RGBA{},
	}, nil
}

// TextWidth implements layout.Measurer; the result is in pixels.
func (s *Surface) TextWidth(str string) float64 {
	return s.face.TextWidth(str)
}

func (s *Surface) StrokeText(str string, x, y float64, h layout.HAlign, b layout.Baseline) {
	s.drawText(layerKey{text: str, x: x, y: y, h: h, b: b, stroke: true})
}

func (s *Surface) FillText(str string, x, y float64, h layout.HAlign, b layout.Baseline) {
	s.drawText(layerKey{text: str, x: x, y: y, h: h, b: b})
}

func (s *Surface) drawText(key layerKey) {
	if key.text == "" {
		return
	}
	layer, ok := s.layers[key]
	if !ok {
		layer = s.rasterize(key)
		s.layers[key] = layer
	}
	if layer != nil {
		s.Composite(layer)
	}
}

// rasterize 在与画布同尺寸的透明图层上绘制一行文本的轮廓或填充。
// canvas 的坐标原点在左下角，这里在边界处把像素坐标（左上角原点）翻转过去。
func (s *Surface) rasterize(key layerKey) *image.RGBA {
	path, _, err := s.face.ToPath(key.text)
	if err != nil {
		tracer().Errorf("text %q cannot be converted to glyph outlines: %v", key.text, err)
		return nil
	}

	x := key.x
	switch key.h {
	case layout.AlignCenter:
		x -= s.face.TextWidth(key.text) / 2
	case layout.AlignRight:
		x -= s.face.TextWidth(key.text)
	}
	baseline := s.baseline(key.y, key.b)

	c := canvas.New(s.width, s.height)
	ctx := canvas.NewContext(c)
	if key.stroke {
		ctx.SetFillColor(color.RGBA{})
		ctx.SetStrokeColor(s.stroke)
		ctx.SetStrokeWidth(s.strokeWidth)
	} else {
		ctx.SetFillColor(s.fill)
		ctx.SetStrokeColor(color.RGBA{})
	}
	ctx.DrawPath(x, s.height-baseline, path)
	return rasterizer.Draw(c, resolution, canvas.DefaultColorSpace)
}

// baseline converts y under the given baseline mode into the glyph baseline, in
// pixels from the top edge.
func (s *Surface) baseline(y float64, b layout.Baseline) float64 {
	m := s.face.Metrics()
	ascent, descent := math.Abs(m.Ascent), math.Abs(m.Descent)
	switch b {
	case layout.BaselineTop, layout.BaselineHanging:
		return y + ascent
	case layout.BaselineMiddle:
		return y + (ascent-descent)/2
	default:
		return y - descent
	}
}
