// Package caption sequences a captioning job: extraction, layout, the
// compositing loop, encoding and delivery of the result.
//
// A Caption is not safe for concurrent renders; callers serialize Configure,
// Render and the output accessors. Subscribe may be called from anywhere.
package caption

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/Elitezen/text-on-gif/compositor"
	"github.com/Elitezen/text-on-gif/encoder"
	"github.com/Elitezen/text-on-gif/frames"
	"github.com/Elitezen/text-on-gif/layout"
	canvasrenderer "github.com/Elitezen/text-on-gif/renderer/canvas"
)

// tracer writes to trace with key 'textongif.caption'
func tracer() tracing.Trace {
	return tracing.Select("textongif.caption")
}

// ErrNoOutput is returned when a render produced an empty buffer.
var ErrNoOutput = errors.New("caption: no output produced")

// Setting customizes a Caption at construction.
type Setting func(*Caption)

// WithExtractor replaces the GIF extractor.
func WithExtractor(x frames.Extractor) Setting { return func(c *Caption) { c.extractor = x } }

// WithFonts shares a font registry between captions.
func WithFonts(reg *canvasrenderer.Fonts) Setting { return func(c *Caption) { c.fonts = reg } }

type outputKey struct {
	text string
	cfg  layout.Config
	gen  int
}

// Caption overlays text onto every frame of one source animation.
type Caption struct {
	src       frames.Source
	extractor frames.Extractor
	store     *frames.Store
	fonts     *canvasrenderer.Fonts

	startOnce sync.Once
	group     errgroup.Group

	mu        sync.Mutex // listeners
	listeners map[int]Listener
	nextID    int

	text   string
	opts   []layout.Option
	layout *layout.Result

	out    []byte
	outKey outputKey
	hasOut bool
}

// New creates a caption job for src. Extraction starts with the first
// Configure, Dimensions or Render call.
func New(src frames.Source, settings ...Setting) *Caption {
	c := &Caption{
		src:       src,
		extractor: frames.GIFExtractor{},
		store:     frames.NewStore(),
		listeners: map[int]Listener{},
	}
	for _, s := range settings {
		s(c)
	}
	if c.fonts == nil {
		c.fonts = canvasrenderer.NewFonts()
	}
	return c
}

// Configure replaces the caption text and merges opts over the options given so
// far; later options win. The computed layout is dropped.
func (c *Caption) Configure(text string, opts ...layout.Option) {
	c.text = norm.NFC.String(text)
	c.opts = append(c.opts, opts...)
	c.layout = nil
	c.start()
}

// RegisterFont makes the font file at path available as family. It must be
// called before the render that uses the family.
func (c *Caption) RegisterFont(path, family string) error {
	if err := c.fonts.Register(path, family); err != nil {
		return err
	}
	c.layout = nil
	return nil
}

// Text returns the normalized caption text.
func (c *Caption) Text() string { return c.text }

// Config builds the configuration the next render will use.
func (c *Caption) Config() layout.Config { return layout.Build(c.opts...) }

// Layout returns the layout of the last render, or nil.
func (c *Caption) Layout() *layout.Result { return c.layout }

// Dimensions blocks until the animation size is known. It does not wait for
// the frames.
func (c *Caption) Dimensions(ctx context.Context) (frames.Dimensions, error) {
	c.start()
	return c.store.Dimensions(ctx)
}

// Wait blocks until extraction and its event delivery are over and returns the
// extraction error.
func (c *Caption) Wait() error {
	c.start()
	return c.group.Wait()
}

func (c *Caption) start() {
	c.startOnce.Do(func() {
		tracer().Debugf("extracting %s", c.src)
		c.group.Go(func() error {
			err := c.extractor.Extract(context.Background(), c.src, c.store)
			if err != nil {
				tracer().Errorf("extraction failed: %v", err)
			}
			c.store.Finish(err)
			return err
		})
		c.group.Go(func() error {
			select {
			case <-c.store.DimensionsReady():
				if d, err := c.store.Dimensions(context.Background()); err == nil {
					c.emit(Event{Kind: EventDimensions, Dimensions: d})
				}
			case <-c.store.Done():
			}
			if err := c.store.Wait(context.Background()); err == nil {
				c.emit(Event{Kind: EventExtracted})
			}
			return nil
		})
	})
}

// Render composites the current text onto every frame and returns the encoded
// animation. Every call renders from scratch; Buffer and WriteFile reuse the
// last output while text, options and fonts are unchanged.
func (c *Caption) Render(ctx context.Context) ([]byte, error) {
	c.start()
	if err := c.store.Wait(ctx); err != nil {
		return nil, err
	}
	dims, err := c.store.Dimensions(ctx)
	if err != nil {
		return nil, err
	}
	cfg := c.Config()

	surface, err := canvasrenderer.NewSurface(dims.Width, dims.Height, cfg, c.fonts)
	if err != nil {
		return nil, fmt.Errorf("创建绘制表面失败: %w", err)
	}
	if c.layout == nil {
		c.layout = layout.Compute(c.text, cfg, dims.Width, dims.Height, surface)
		tracer().Debugf("layout: %d rows, anchor (%.1f, %.1f)", len(c.layout.Rows), c.layout.Anchor.X, c.layout.Anchor.Y)
	}

	all := c.store.Frames()
	enc := encoder.New(encoder.Options{
		Width:        dims.Width,
		Height:       dims.Height,
		Quantization: cfg.Quantization,
		Transparent:  cfg.Transparent,
		FrameCount:   len(all),
	})
	enc.SetRepeat(cfg.Repeat)

	mode := compositor.Fresh
	if cfg.Retain {
		mode = compositor.Cumulative
	}
	comp := compositor.New(surface, enc, c.layout, cfg.HasStroke(), mode)
	comp.SetHooks(compositor.Hooks{
		FrameStart: func(i, n int) { c.emit(Event{Kind: EventFrame, Frame: i}) },
		FrameDone: func(i, n int) {
			c.emit(Event{Kind: EventProgress, Frame: i, Percent: (i + 1) * 100 / n})
		},
	})
	if err := comp.Run(ctx, all); err != nil {
		return nil, fmt.Errorf("合成帧失败: %w", err)
	}

	data, err := enc.Finish()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoOutput
	}
	tracer().Infof("rendered %d frames, %d bytes", len(all), len(data))
	c.emit(Event{Kind: EventFinished, Bytes: len(data)})
	return data, nil
}

// Buffer returns the encoded animation, rendering only if text, options or
// registered fonts changed since the last output.
func (c *Caption) Buffer(ctx context.Context) ([]byte, error) {
	key := outputKey{text: c.text, cfg: c.Config(), gen: c.fonts.Generation()}
	if c.hasOut && key == c.outKey {
		return c.out, nil
	}
	data, err := c.Render(ctx)
	if err != nil {
		return nil, err
	}
	c.out, c.outKey, c.hasOut = data, key, true
	return data, nil
}

// WriteFile writes the encoded animation to path, creating parent directories.
func (c *Caption) WriteFile(ctx context.Context, path string) error {
	data, err := c.Buffer(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 GIF 文件失败: %w", err)
	}
	return nil
}
