// Package compositor draws laid-out text onto every frame of an animation while
// keeping each frame's background intact for the next one.
//
// For every frame, in decode order:
//
//  1. paint the frame's pixels onto the working surface
//  2. snapshot the surface unless the frame restores to background
//  3. draw each row, outline first when a stroke color is set
//  4. hand the surface, delay and disposal to the sink
//  5. in cumulative mode, keep the composite as the next frame's base
//  6. clear the surface (restore to background) or restore the snapshot
//
// A frame whose pixels cannot be painted is logged and still goes through
// steps 2 to 6; it never aborts the run.
package compositor

import (
	"context"
	"image"

	"github.com/npillmayer/schuko/tracing"

	"github.com/Elitezen/text-on-gif/frames"
	"github.com/Elitezen/text-on-gif/layout"
	"github.com/Elitezen/text-on-gif/renderer"
)

// tracer writes to trace with key 'textongif.compositor'
func tracer() tracing.Trace {
	return tracing.Select("textongif.compositor")
}

// Mode selects how frames are based.
type Mode int

const (
	// Fresh draws the text onto each frame's own pixels.
	Fresh Mode = iota
	// Cumulative feeds frame i's composite as frame i+1's base and writes it
	// back into the frame store. Experimental: repeated runs over the same store
	// accumulate again.
	Cumulative
)

// Sink receives composited frames in order. encoder.GIF implements it.
type Sink interface {
	SetDelay(ms int)
	SetDispose(d frames.Disposal)
	AddFrame(img image.Image) error
}

// Hooks are optional progress callbacks.
type Hooks struct {
	// FrameStart fires as frame i of n begins processing.
	FrameStart func(i, n int)
	// FrameDone fires after frame i of n has been committed.
	FrameDone func(i, n int)
}

// Compositor runs the per-frame state machine over a surface.
type Compositor struct {
	surface renderer.Surface
	sink    Sink
	layout  *layout.Result
	stroke  bool
	mode    Mode
	hooks   Hooks

	carry *image.RGBA
}

// New creates a compositor. stroke enables the outline pass.
func New(surface renderer.Surface, sink Sink, res *layout.Result, stroke bool, mode Mode) *Compositor {
	return &Compositor{
		surface: surface,
		sink:    sink,
		layout:  res,
		stroke:  stroke,
		mode:    mode,
	}
}

// SetHooks installs progress callbacks.
func (c *Compositor) SetHooks(h Hooks) { c.hooks = h }

// Run composites every frame in order. Only sink failures and context
// cancellation stop it.
func (c *Compositor) Run(ctx context.Context, all []*frames.Frame) error {
	n := len(all)
	for i, f := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.hooks.FrameStart != nil {
			c.hooks.FrameStart(i, n)
		}
		if err := c.Frame(f); err != nil {
			return err
		}
		if c.hooks.FrameDone != nil {
			c.hooks.FrameDone(i, n)
		}
	}
	return nil
}

// Frame composites a single frame and commits it to the sink.
func (c *Compositor) Frame(f *frames.Frame) error {
	s := c.surface

	if c.mode == Cumulative && c.carry != nil {
		s.Restore(c.carry)
	}
	if err := s.Paint(f.Pixels); err != nil {
		tracer().Errorf("frame %d: cannot paint pixels, drawing text on current surface: %v", f.Index, err)
	}

	var withoutText *image.RGBA
	if !f.Disposal.ClearsToBackground() {
		withoutText = s.Snapshot()
	}

	c.drawText()

	c.sink.SetDelay(f.DelayMs)
	c.sink.SetDispose(f.Disposal)
	if err := c.sink.AddFrame(s.Image()); err != nil {
		return err
	}

	if c.mode == Cumulative {
		c.carry = s.Snapshot()
		f.Pixels = c.carry
	}

	if f.Disposal.ClearsToBackground() {
		s.Clear()
	} else {
		s.Restore(withoutText)
	}
	return nil
}

func (c *Compositor) drawText() {
	res := c.layout
	if res == nil {
		return
	}
	h, b := res.Anchor.Horizontal, res.Anchor.Baseline
	for _, i := range res.DrawOrder() {
		x, y := res.RowOrigin(i)
		row := res.Rows[i].Content
		if c.stroke {
			c.surface.StrokeText(row, x, y, h, b)
		}
		c.surface.FillText(row, x, y, h, b)
	}
}
