package canvasrenderer

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/Elitezen/text-on-gif/fonts"
	"github.com/Elitezen/text-on-gif/layout"
)

func newTestSurface(t *testing.T, opts ...layout.Option) *Surface {
	t.Helper()
	cfg := layout.Build(append([]layout.Option{layout.WithFontFamily("embed:go-mono"), layout.WithFontSize("20px")}, opts...)...)
	s, err := NewSurface(120, 60, cfg, NewFonts())
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	return s
}

func countOpaque(s *Surface) int {
	n := 0
	pix := s.Image().Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestTextWidthGrowsWithText(t *testing.T) {
	s := newTestSurface(t)
	w1 := s.TextWidth("A")
	w3 := s.TextWidth("A B")
	if w1 <= 0 {
		t.Fatalf("expected positive width, got %g", w1)
	}
	if w3 <= w1 {
		t.Fatalf("expected wider text for more glyphs: %g <= %g", w3, w1)
	}
	// 等宽字体：三个字符约为一个字符的三倍
	if diff := w3 - 3*w1; diff > 0.01 || diff < -0.01 {
		t.Fatalf("go-mono should be monospaced: w1=%g w3=%g", w1, w3)
	}
}

func TestFillTextDrawsInsideAnchoredArea(t *testing.T) {
	s := newTestSurface(t, layout.WithFontColor("red"))
	s.FillText("HI", 60, 50, layout.AlignCenter, layout.BaselineBottom)
	if countOpaque(s) == 0 {
		t.Fatalf("FillText drew nothing")
	}
	// 底部基线：文字位于 y=50 之上
	pix := s.Image()
	for y := 52; y < 60; y++ {
		for x := 0; x < 120; x++ {
			if pix.RGBAAt(x, y).A != 0 {
				t.Fatalf("found ink below the bottom anchor at (%d,%d)", x, y)
			}
		}
	}
	found := false
	for y := 0; y < 50 && !found; y++ {
		for x := 40; x < 80; x++ {
			if c := pix.RGBAAt(x, y); c.A > 200 && c.R > 200 && c.G < 60 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("no red ink found around the centered anchor")
	}
}

// inkRows 返回有像素的最上与最下一行，没有像素时返回 -1, -1。
func inkRows(s *Surface) (top, bottom int) {
	top, bottom = -1, -1
	img := s.Image()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A == 0 {
				continue
			}
			if top < 0 {
				top = y
			}
			bottom = y
			break
		}
	}
	return top, bottom
}

func TestFillTextHangingBaseline(t *testing.T) {
	hanging := newTestSurface(t)
	hanging.FillText("HI", 60, 10, layout.AlignCenter, layout.BaselineHanging)
	top, bottom := inkRows(hanging)
	if top < 0 {
		t.Fatalf("FillText drew nothing")
	}
	// 悬挂基线：文字整体位于 y=10 之下，且不超出一个字号的高度
	if top < 10 || bottom >= 10+2*20 {
		t.Fatalf("hanging text spans rows %d..%d, want it below y=10", top, bottom)
	}

	flat := newTestSurface(t)
	flat.FillText("HI", 60, 10, layout.AlignCenter, layout.BaselineTop)
	if !bytes.Equal(hanging.Image().Pix, flat.Image().Pix) {
		t.Fatalf("hanging and top baselines should place text identically")
	}
}

func TestFillTextMiddleBaseline(t *testing.T) {
	s := newTestSurface(t)
	s.FillText("HI", 60, 30, layout.AlignCenter, layout.BaselineMiddle)
	top, bottom := inkRows(s)
	if top < 0 {
		t.Fatalf("FillText drew nothing")
	}
	// 中线基线：文字跨越 y=30，上下各不超过一个字号
	if top >= 30 || bottom <= 30 {
		t.Fatalf("middle text spans rows %d..%d, want it to straddle y=30", top, bottom)
	}
	if top < 30-20 || bottom > 30+20 {
		t.Fatalf("middle text spans rows %d..%d, too far from y=30", top, bottom)
	}

	low := newTestSurface(t)
	low.FillText("HI", 60, 30, layout.AlignCenter, layout.BaselineBottom)
	if lowTop, _ := inkRows(low); lowTop >= top {
		t.Fatalf("bottom baseline should sit higher than middle: %d vs %d", lowTop, top)
	}
}

func TestStrokeAndSnapshotRestore(t *testing.T) {
	s := newTestSurface(t, layout.WithStrokeColor("#00ff00"), layout.WithStrokeWidth(2))
	before := s.Snapshot()
	s.StrokeText("Go", 10, 10, layout.AlignLeft, layout.BaselineTop)
	if bytes.Equal(before.Pix, s.Image().Pix) {
		t.Fatalf("StrokeText drew nothing")
	}
	s.Restore(before)
	if !bytes.Equal(before.Pix, s.Image().Pix) {
		t.Fatalf("Restore did not remove stroked text")
	}
	// 缓存的图层再次绘制得到相同像素
	s.StrokeText("Go", 10, 10, layout.AlignLeft, layout.BaselineTop)
	first := s.Snapshot()
	s.Clear()
	s.StrokeText("Go", 10, 10, layout.AlignLeft, layout.BaselineTop)
	if !bytes.Equal(first.Pix, s.Image().Pix) {
		t.Fatalf("cached layer produced different pixels")
	}
	if countOpaque(s) == 0 {
		t.Fatalf("expected stroke pixels after redraw")
	}
}

func TestUnknownFamilyFallsBack(t *testing.T) {
	cfg := layout.Build(layout.WithFontFamily("calibri"))
	s, err := NewSurface(50, 20, cfg, nil)
	if err != nil {
		t.Fatalf("NewSurface with unknown family: %v", err)
	}
	if s.TextWidth("abc") <= 0 {
		t.Fatalf("fallback face has no width")
	}
}

func TestRegisterFont(t *testing.T) {
	reg := NewFonts()
	data, err := fonts.Load("go-bold")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "bold.ttf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	gen := reg.Generation()
	if err := reg.Register(path, "My Bold"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Generation() != gen+1 {
		t.Fatalf("generation did not advance")
	}
	fam, err := reg.Family("my bold")
	if err != nil || fam == nil {
		t.Fatalf("registered family not resolved: %v", err)
	}

	if err := reg.Register(filepath.Join(t.TempDir(), "missing.ttf"), "x"); err == nil {
		t.Fatalf("expected error for missing font file")
	}
	if err := reg.Register(path, " "); err == nil {
		t.Fatalf("expected error for empty family")
	}
	bad := filepath.Join(t.TempDir(), "bad.ttf")
	os.WriteFile(bad, []byte("garbage"), 0o644)
	if err := reg.Register(bad, "bad"); err == nil {
		t.Fatalf("expected error for undecodable font")
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.RGBA{
		"white":               {255, 255, 255, 255},
		"Transparent":         {},
		"#f00":                {255, 0, 0, 255},
		"#0000ff":             {0, 0, 255, 255},
		"rgb(0, 128, 0)":      {0, 128, 0, 255},
		"rgba(255,255,255,0)": {},
		"not-a-color":         {0, 0, 0, 255},
		"#zzz":                {0, 0, 0, 255},
	}
	for in, want := range cases {
		r, g, b, a := parseColor(in).RGBA()
		got := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
		if got != want {
			t.Fatalf("parseColor(%q) = %+v, want %+v", in, got, want)
		}
	}
}
