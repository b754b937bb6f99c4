package canvasrenderer

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/colornames"
)

// parseColor 解析颜色字符串：transparent、#rgb/#rrggbb/#rrggbbaa、rgb()/rgba()、
// 以及 CSS 颜色名。不做校验：无法识别的值按黑色处理，输出可能不符合预期但不会失败。
func parseColor(s string) color.Color {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "" || v == "transparent" || v == "none":
		return color.RGBA{}
	case strings.HasPrefix(v, "#"):
		return parseHex(v)
	case strings.HasPrefix(v, "rgb"):
		return parseRGBFunc(v)
	}
	if c, ok := colornames.Map[strings.ReplaceAll(v, " ", "")]; ok {
		return c
	}
	tracer().Debugf("unrecognized color %q", s)
	return color.RGBA{A: 255}
}

func parseHex(v string) color.Color {
	h := strings.TrimPrefix(v, "#")
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	}
	if _, err := strconv.ParseUint(h, 16, 32); err != nil || (len(h) != 6 && len(h) != 8) {
		return color.RGBA{A: 255}
	}
	if len(h) == 8 {
		a, _ := strconv.ParseUint(h[6:], 16, 8)
		c := canvas.Hex("#" + h[:6])
		return premultiply(c.R, c.G, c.B, uint8(a))
	}
	return canvas.Hex("#" + h)
}

func parseRGBFunc(v string) color.Color {
	start, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if start < 0 || end < start {
		return color.RGBA{A: 255}
	}
	parts := strings.Split(v[start+1:end], ",")
	if len(parts) < 3 {
		return color.RGBA{A: 255}
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, _ := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		ch[i] = clamp8(n)
	}
	alpha := uint8(255)
	if len(parts) > 3 {
		a, _ := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		alpha = clamp8(a * 255)
	}
	return premultiply(ch[0], ch[1], ch[2], alpha)
}

func premultiply(r, g, b, a uint8) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(r) * uint16(a) / 255),
		G: uint8(uint16(g) * uint16(a) / 255),
		B: uint8(uint16(b) * uint16(a) / 255),
		A: a,
	}
}

func clamp8(n float64) uint8 {
	switch {
	case n <= 0:
		return 0
	case n >= 255:
		return 255
	default:
		return uint8(n + 0.5)
	}
}
