package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NoStroke is the stroke color value that disables outline drawing.
const NoStroke = "transparent"

// ErrUnknownKey is returned by Set for keys that are not style options.
var ErrUnknownKey = errors.New("layout: unknown style key")

// Position is an optional explicit pixel coordinate. When Valid, the alignment and
// offset of that axis are ignored.
type Position struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Config is the immutable style/alignment snapshot used by one render.
// It is a comparable value so renders can be keyed on it.
type Config struct {
	FontSize     string   `json:"fontSize"`
	FontFamily   string   `json:"fontFamily"`
	FontColor    string   `json:"fontColor"`
	StrokeColor  string   `json:"strokeColor"`
	StrokeWidth  float64  `json:"strokeWidth"`
	AlignX       HAlign   `json:"alignX"`
	AlignY       VAlign   `json:"alignY"`
	PositionX    Position `json:"positionX"`
	PositionY    Position `json:"positionY"`
	OffsetX      float64  `json:"offsetX"`
	OffsetY      float64  `json:"offsetY"`
	RowGap       float64  `json:"rowGap"`
	MaxWidth     float64  `json:"maxWidth"` // 0: canvas width minus both horizontal offsets, or minus an explicit x
	Repeat       int      `json:"repeat"`   // -1 once, 0 forever, n>0 n loops
	Transparent  bool     `json:"transparent"`
	Retain       bool     `json:"retain"` // experimental cumulative text
	Quantization string   `json:"quantization"`
}

// Defaults returns the configuration every render starts from.
func Defaults() Config {
	return Config{
		FontSize:     "32px",
		FontFamily:   "calibri",
		FontColor:    "white",
		StrokeColor:  NoStroke,
		StrokeWidth:  1,
		AlignX:       AlignCenter,
		AlignY:       AlignBottom,
		OffsetX:      10,
		OffsetY:      10,
		RowGap:       5,
		Repeat:       0,
		Quantization: "plan9-dither",
	}
}

// Option overrides part of a Config.
type Option func(*Config)

// Build applies opts over Defaults in order; the last write to a key wins.
func Build(opts ...Option) Config {
	cfg := Defaults()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// HasStroke reports whether the outline pass should run.
func (c Config) HasStroke() bool {
	return !strings.EqualFold(strings.TrimSpace(c.StrokeColor), NoStroke)
}

// WrapWidth resolves the maximum row width for a canvas of the given width.
func (c Config) WrapWidth(canvasWidth float64) float64 {
	if c.MaxWidth > 0 {
		return c.MaxWidth
	}
	w := canvasWidth - 2*c.OffsetX
	if c.PositionX.Valid {
		// 显式坐标时忽略 offset-x
		w = canvasWidth - c.PositionX.Value
	}
	if w < 1 {
		w = 1
	}
	return w
}

func WithFontSize(size string) Option { return func(c *Config) { c.FontSize = size } }
func WithFontFamily(name string) Option { return func(c *Config) { c.FontFamily = name } }
func WithFontColor(col string) Option { return func(c *Config) { c.FontColor = col } }
func WithStrokeColor(col string) Option { return func(c *Config) { c.StrokeColor = col } }
func WithStrokeWidth(w float64) Option { return func(c *Config) { c.StrokeWidth = w } }
func WithAlignX(a HAlign) Option { return func(c *Config) { c.AlignX = a } }
func WithAlignY(a VAlign) Option { return func(c *Config) { c.AlignY = a } }
func WithOffset(x, y float64) Option { return func(c *Config) { c.OffsetX, c.OffsetY = x, y } }
func WithRowGap(gap float64) Option { return func(c *Config) { c.RowGap = gap } }
func WithMaxWidth(w float64) Option { return func(c *Config) { c.MaxWidth = w } }
func WithRepeat(n int) Option { return func(c *Config) { c.Repeat = n } }
func WithTransparent(on bool) Option { return func(c *Config) { c.Transparent = on } }
func WithRetain(on bool) Option { return func(c *Config) { c.Retain = on } }
func WithQuantization(name string) Option { return func(c *Config) { c.Quantization = name } }

// WithPositionX pins the anchor to an explicit x coordinate.
func WithPositionX(x float64) Option {
	return func(c *Config) { c.PositionX = Position{Value: x, Valid: true} }
}

// WithPositionY pins the anchor to an explicit y coordinate.
func WithPositionY(y float64) Option {
	return func(c *Config) { c.PositionY = Position{Value: y, Valid: true} }
}

// Set builds an Option from a string key/value pair, as written in style
// declarations, YAML files or on the command line. Only the key is validated;
// malformed numbers fall back to zero and strings pass through untouched.
func Set(key, value string) (Option, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, "_", "-")
	v := strings.TrimSpace(value)
	switch k {
	case "font-size", "size":
		return WithFontSize(v), nil
	case "font-family", "font":
		return WithFontFamily(v), nil
	case "font-color", "color":
		return WithFontColor(v), nil
	case "stroke-color", "stroke":
		return WithStrokeColor(v), nil
	case "stroke-width":
		return WithStrokeWidth(ParseLength(v).Px()), nil
	case "align-x", "align":
		return WithAlignX(parseHAlign(v)), nil
	case "align-y", "valign":
		return WithAlignY(parseVAlign(v)), nil
	case "position-x", "x":
		if unset(v) {
			return func(c *Config) { c.PositionX = Position{} }, nil
		}
		return WithPositionX(ParseLength(v).Px()), nil
	case "position-y", "y":
		if unset(v) {
			return func(c *Config) { c.PositionY = Position{} }, nil
		}
		return WithPositionY(ParseLength(v).Px()), nil
	case "offset-x":
		off := ParseLength(v).Px()
		return func(c *Config) { c.OffsetX = off }, nil
	case "offset-y":
		off := ParseLength(v).Px()
		return func(c *Config) { c.OffsetY = off }, nil
	case "row-gap":
		return WithRowGap(ParseLength(v).Px()), nil
	case "max-width":
		return WithMaxWidth(ParseLength(v).Px()), nil
	case "repeat":
		n, _ := strconv.Atoi(v)
		return WithRepeat(n), nil
	case "transparent":
		return WithTransparent(parseBool(v)), nil
	case "retain":
		return WithRetain(parseBool(v)), nil
	case "quantization":
		return WithQuantization(v), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
}

func parseHAlign(v string) HAlign {
	switch strings.ToLower(v) {
	case "left", "start":
		return AlignLeft
	case "right", "end":
		return AlignRight
	default:
		return AlignCenter
	}
}

func parseVAlign(v string) VAlign {
	switch strings.ToLower(v) {
	case "top":
		return AlignTop
	case "middle", "center":
		return AlignMiddle
	default:
		return AlignBottom
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return v == "yes" || v == "on"
	}
	return b
}

func unset(v string) bool {
	switch strings.ToLower(v) {
	case "", "auto", "none", "unset":
		return true
	}
	return false
}
