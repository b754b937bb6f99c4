package frames

import (
	"image"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'textongif.frames'
func tracer() tracing.Trace {
	return tracing.Select("textongif.frames")
}

// Disposal is a frame's disposal method, with the GIF wire values.
type Disposal byte

const (
	DisposalUnspecified Disposal = 0
	DisposalNone        Disposal = 1 // do not dispose
	DisposalBackground  Disposal = 2 // restore to background
	DisposalPrevious    Disposal = 3 // restore to previous
)

func (d Disposal) String() string {
	switch d {
	case DisposalNone:
		return "none"
	case DisposalBackground:
		return "background"
	case DisposalPrevious:
		return "previous"
	default:
		return "unspecified"
	}
}

// ClearsToBackground reports whether the frame's area is cleared after display.
// The other three methods are treated alike.
func (d Disposal) ClearsToBackground() bool { return d == DisposalBackground }

// Frame is one decoded animation frame. Pixels always covers the full canvas.
type Frame struct {
	Index    int
	Pixels   *image.RGBA
	DelayMs  int
	Disposal Disposal
}

// Dimensions are published as soon as the container header and frame table are known.
type Dimensions struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	Frames    int `json:"frames"`
	LoopCount int `json:"loopCount"`
}
