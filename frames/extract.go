package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/image/draw"
)

var (
	// ErrUnreadableSource means the source bytes could not be obtained.
	ErrUnreadableSource = errors.New("frames: source unreadable")
	// ErrUndecodable means the bytes are not a decodable animation.
	ErrUndecodable = errors.New("frames: source undecodable")
)

// Source describes where an animation comes from. Exactly one field is used,
// checked in the order Data, URL, Path.
type Source struct {
	Path string
	URL  string
	Data []byte
}

// ParseSource turns a command-line style argument into a Source.
func ParseSource(arg string) Source {
	lower := strings.ToLower(arg)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return Source{URL: arg}
	}
	return Source{Path: arg}
}

func (s Source) String() string {
	switch {
	case s.Data != nil:
		return fmt.Sprintf("<%d bytes>", len(s.Data))
	case s.URL != "":
		return s.URL
	default:
		return s.Path
	}
}

// Extractor decodes a source into a Store. It must publish dimensions before
// appending frames. The caller finishes the store with the returned error.
type Extractor interface {
	Extract(ctx context.Context, src Source, store *Store) error
}

// GIFExtractor extracts GIF animations.
type GIFExtractor struct {
	Client *http.Client // nil uses http.DefaultClient
}

var _ Extractor = GIFExtractor{}

// Extract reads and decodes src, then expands every frame onto a full-canvas buffer.
func (x GIFExtractor) Extract(ctx context.Context, src Source, store *Store) error {
	data, err := x.read(ctx, src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadableSource, src, err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUndecodable, src, err)
	}
	if len(g.Image) == 0 {
		return fmt.Errorf("%w: %s: no frames", ErrUndecodable, src)
	}

	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}
	store.SetDimensions(Dimensions{
		Width:     width,
		Height:    height,
		Frames:    len(g.Image),
		LoopCount: g.LoopCount,
	})

	canvas := image.Rect(0, 0, width, height)
	for i, p := range g.Image {
		if err := ctx.Err(); err != nil {
			return err
		}
		pixels := image.NewRGBA(canvas)
		draw.Draw(pixels, p.Bounds().Intersect(canvas), p, p.Bounds().Min, draw.Src)
		f := &Frame{Pixels: pixels}
		if i < len(g.Delay) {
			f.DelayMs = g.Delay[i] * 10
		}
		if i < len(g.Disposal) {
			f.Disposal = Disposal(g.Disposal[i])
		}
		store.Append(f)
	}
	tracer().Infof("extracted %d frames from %s", len(g.Image), src)
	return nil
}

func (x GIFExtractor) read(ctx context.Context, src Source) ([]byte, error) {
	switch {
	case src.Data != nil:
		return src.Data, nil
	case src.URL != "":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
		if err != nil {
			return nil, err
		}
		client := x.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	case src.Path != "":
		return os.ReadFile(src.Path)
	default:
		return nil, errors.New("empty source")
	}
}
