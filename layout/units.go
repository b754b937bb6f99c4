package layout

import (
	"strconv"
	"strings"
)

// Unit represents the unit a size was written with in a style value.
type Unit int

const (
	UnitNone Unit = iota // bare numbers, read as pixels
	UnitPX
	UnitPT
	UnitEM
)

// Conversion constants. Frames are rasterized at one pixel per canvas millimetre,
// so pixel sizes double as millimetres when talking to the font system.
const (
	PtToPx = 96.0 / 72.0
	PxToPt = 72.0 / 96.0

	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm

	// emBase is the pixel size of 1em; there is no parent font to inherit from.
	emBase = 16.0
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitEM:
		return "em"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// Px converts the length to pixels.
func (l Length) Px() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitEM:
		return l.Value * emBase
	default:
		return l.Value
	}
}

// ParseLength parses a size such as "32px", "24pt", "2em" or "18".
// 无法解析的值返回零长度，不报错：样式值不做校验，渲染结果可能退化。
func ParseLength(value string) Length {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"em", UnitEM}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}

// FontSizePx is a shorthand for ParseLength(size).Px().
func FontSizePx(size string) float64 { return ParseLength(size).Px() }
