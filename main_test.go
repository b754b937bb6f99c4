package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/Elitezen/text-on-gif/layout"
)

func writeGIF(t *testing.T, dir string) string {
	t.Helper()
	anim := &gif.GIF{Delay: []int{5, 5}, Disposal: []byte{gif.DisposalNone, gif.DisposalNone}}
	for i := 0; i < 2; i++ {
		p := image.NewPaletted(image.Rect(0, 0, 80, 40), palette.Plan9)
		for j := range p.Pix {
			p.Pix[j] = uint8(p.Palette.Index(color.RGBA{0, uint8(60 * i), 120, 255}))
		}
		anim.Image = append(anim.Image, p)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "in.gif")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFontFlags(t *testing.T) {
	var f fontFlags
	if err := f.Set("fonts/a.ttf=Brand Sans"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Set("b.ttf = Other "); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if f.String() != "fonts/a.ttf=Brand Sans,b.ttf=Other" {
		t.Fatalf("unexpected flag value %q", f.String())
	}
	for _, bad := range []string{"nofamily", "=x", "x="} {
		if err := f.Set(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.yaml")
	os.WriteFile(path, []byte("font-size: 18px\nalign-y: top\nrepeat: -1\ntransparent: true\noffset-x: 4\n"), 0o644)
	opts, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	cfg := layout.Build(opts...)
	if cfg.FontSize != "18px" || cfg.AlignY != layout.AlignTop || cfg.Repeat != -1 || !cfg.Transparent || cfg.OffsetX != 4 {
		t.Fatalf("config not applied: %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("colour: red\n"), 0o644)
	if _, err := loadConfig(bad); !errors.Is(err, layout.ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	o := options{
		input:     writeGIF(t, dir),
		output:    filepath.Join(dir, "out", "caption.gif"),
		text:      "hi ${name|there}",
		style:     "font-family: \"embed:go\"; font-size: 12px; stroke-color: black; repeat: 2",
		dataJSON:  `{"name":"gophers"}`,
		debugPath: filepath.Join(dir, "debug", "layout.json"),
		quiet:     true,
	}
	c, err := run(context.Background(), o)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.Text() != "hi gophers" {
		t.Fatalf("text not interpolated: %q", c.Text())
	}

	data, err := os.ReadFile(o.output)
	if err != nil {
		t.Fatal(err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output does not decode: %v", err)
	}
	if len(g.Image) != 2 || g.LoopCount != 2 {
		t.Fatalf("unexpected output: %d frames, loop %d", len(g.Image), g.LoopCount)
	}

	raw, err := os.ReadFile(o.debugPath)
	if err != nil {
		t.Fatalf("debug JSON missing: %v", err)
	}
	var dump struct {
		Layout struct {
			Rows []struct {
				Content string `json:"content"`
			} `json:"rows"`
		} `json:"layout"`
	}
	if err := json.Unmarshal(raw, &dump); err != nil {
		t.Fatal(err)
	}
	if len(dump.Layout.Rows) == 0 {
		t.Fatalf("debug JSON has no rows")
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(context.Background(), options{input: writeGIF(t, dir), output: filepath.Join(dir, "o.gif"), style: "nonsense: 1", quiet: true}); !errors.Is(err, layout.ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if _, err := run(context.Background(), options{input: writeGIF(t, dir), dataJSON: "{", quiet: true}); err == nil {
		t.Fatalf("expected JSON error")
	}
}
