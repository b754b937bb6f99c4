package encoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/draw"

	"github.com/Elitezen/text-on-gif/frames"
)

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func encodeFrames(t *testing.T, opts Options, repeat int, delays []int, disposals []frames.Disposal) *gif.GIF {
	t.Helper()
	e := New(opts)
	e.SetRepeat(repeat)
	for i := range delays {
		e.SetDelay(delays[i])
		e.SetDispose(disposals[i])
		if err := e.AddFrame(filled(opts.Width, opts.Height, color.RGBA{uint8(40 * i), 0, 200, 255})); err != nil {
			t.Fatalf("AddFrame %d: %v", i, err)
		}
	}
	data, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return g
}

func TestRepeatMapping(t *testing.T) {
	for _, repeat := range []int{-1, 0, 5} {
		g := encodeFrames(t, Options{Width: 4, Height: 4}, repeat,
			[]int{100, 100}, []frames.Disposal{frames.DisposalNone, frames.DisposalNone})
		if g.LoopCount != repeat {
			t.Fatalf("repeat %d encoded as LoopCount %d", repeat, g.LoopCount)
		}
	}
}

func TestDelayAndDisposalPreserved(t *testing.T) {
	delays := []int{100, 150, 100}
	disposals := []frames.Disposal{frames.DisposalNone, frames.DisposalBackground, frames.DisposalPrevious}
	g := encodeFrames(t, Options{Width: 6, Height: 3, FrameCount: 3}, 0, delays, disposals)

	if len(g.Image) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(g.Image))
	}
	if diff := cmp.Diff([]int{10, 15, 10}, g.Delay); diff != "" {
		t.Fatalf("delay mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{1, 2, 3}, g.Disposal); diff != "" {
		t.Fatalf("disposal mismatch (-want +got):\n%s", diff)
	}
}

func TestTransparentFrames(t *testing.T) {
	e := New(Options{Width: 2, Height: 1, Transparent: true})
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(1, 0, color.RGBA{255, 255, 255, 255})
	if err := e.AddFrame(img); err != nil {
		t.Fatal(err)
	}
	data, err := e.Finish()
	if err != nil {
		t.Fatal(err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := g.Image[0].At(0, 0).RGBA(); a != 0 {
		t.Fatalf("expected transparent pixel, alpha=%d", a)
	}
	if _, _, _, a := g.Image[0].At(1, 0).RGBA(); a == 0 {
		t.Fatalf("expected opaque pixel")
	}
}

func TestTransparentIndexFixed(t *testing.T) {
	for _, quant := range []string{"plan9", "websafe", "websafe-dither"} {
		e := New(Options{Width: 2, Height: 1, Quantization: quant, Transparent: true})
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.SetRGBA(1, 0, color.RGBA{0, 0, 255, 255})
		if err := e.AddFrame(img); err != nil {
			t.Fatalf("%s: AddFrame: %v", quant, err)
		}
		data, err := e.Finish()
		if err != nil {
			t.Fatalf("%s: Finish: %v", quant, err)
		}
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%s: decode: %v", quant, err)
		}
		p := g.Image[0]
		if len(p.Palette) != 256 {
			t.Fatalf("%s: palette has %d entries, want 256", quant, len(p.Palette))
		}
		if _, _, _, a := p.Palette[255].RGBA(); a != 0 {
			t.Fatalf("%s: palette[255] alpha=%d, want 0", quant, a)
		}
		if idx := p.ColorIndexAt(0, 0); idx != 255 {
			t.Fatalf("%s: transparent pixel uses index %d, want 255", quant, idx)
		}
		if idx := p.ColorIndexAt(1, 0); idx == 255 {
			t.Fatalf("%s: opaque pixel mapped to the transparent index", quant)
		}
	}
}

func TestFinishOnce(t *testing.T) {
	e := New(Options{Width: 2, Height: 2})
	if err := e.AddFrame(filled(2, 2, color.RGBA{A: 255})); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Finish(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Finish(); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished on second Finish, got %v", err)
	}
	if err := e.AddFrame(filled(2, 2, color.RGBA{A: 255})); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished after Finish, got %v", err)
	}
}

func TestEmptyAndMismatchedFrames(t *testing.T) {
	e := New(Options{Width: 2, Height: 2})
	if err := e.AddFrame(filled(3, 2, color.RGBA{A: 255})); !errors.Is(err, ErrFrameSize) {
		t.Fatalf("expected ErrFrameSize, got %v", err)
	}
	data, err := e.Finish()
	if err != nil || len(data) != 0 {
		t.Fatalf("empty encoder should yield no bytes, got %d bytes err=%v", len(data), err)
	}
}

func TestParseQuantization(t *testing.T) {
	cases := []struct {
		in, want string
		dither   bool
	}{
		{"plan9", "plan9", false},
		{"websafe", "websafe", false},
		{"websafe-dither", "websafe-dither", true},
		{"", "plan9-dither", true},
		{"neuquant", "plan9-dither", true},
	}
	for _, c := range cases {
		q := ParseQuantization(c.in)
		if q.Name != c.want {
			t.Fatalf("ParseQuantization(%q).Name = %q, want %q", c.in, q.Name, c.want)
		}
		if dithers := q.Drawer == draw.FloydSteinberg; dithers != c.dither {
			t.Fatalf("ParseQuantization(%q) dithering = %v, want %v", c.in, dithers, c.dither)
		}
	}
}
