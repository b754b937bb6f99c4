package canvasrenderer

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/Elitezen/text-on-gif/fonts"
)

// Fonts 维护字体族注册表：注册的字体文件、内置字体（embed:go 等）以及回退字体。
// 可在多个渲染间共享，并发安全。
type Fonts struct {
	mu         sync.Mutex
	files      map[string]string // family -> source path
	families   map[string]*canvas.FontFamily
	fallback   *canvas.FontFamily
	generation int
}

// NewFonts creates an empty registry.
func NewFonts() *Fonts {
	return &Fonts{
		files:    map[string]string{},
		families: map[string]*canvas.FontFamily{},
	}
}

// Register makes the font file at path available under family. The file is read
// immediately so a bad path fails here rather than at render time.
func (f *Fonts) Register(path, family string) error {
	key := familyKey(family)
	if key == "" {
		return fmt.Errorf("字体 %s 缺少 family 名称", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	ff := canvas.NewFontFamily(family)
	if err := ff.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return fmt.Errorf("加载字体 %s 失败: %w", path, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = path
	f.families[key] = ff
	f.generation++
	tracer().Infof("registered font %q from %s", family, path)
	return nil
}

// Generation increases on every successful Register; renders key their cache on it.
func (f *Fonts) Generation() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation
}

// Family resolves a family name: registered fonts first, then built-ins, then the
// fallback. Unknown names are not an error.
func (f *Fonts) Family(name string) (*canvas.FontFamily, error) {
	key := familyKey(name)
	f.mu.Lock()
	defer f.mu.Unlock()

	if ff, ok := f.families[key]; ok {
		return ff, nil
	}
	if fonts.Has(key) {
		data, _ := fonts.Load(key)
		ff := canvas.NewFontFamily(key)
		if err := ff.LoadFont(data, 0, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("加载内置字体 %s 失败: %w", key, err)
		}
		f.families[key] = ff
		return ff, nil
	}
	tracer().Debugf("font family %q not registered, using fallback", name)
	return f.fallbackFamily()
}

func (f *Fonts) fallbackFamily() (*canvas.FontFamily, error) {
	if f.fallback != nil {
		return f.fallback, nil
	}
	data, err := fonts.Load(fonts.Fallback)
	if err != nil {
		return nil, err
	}
	ff := canvas.NewFontFamily("textongif-fallback")
	if err := ff.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	f.fallback = ff
	return ff, nil
}

func familyKey(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "embed:")
	name = strings.Trim(name, `"'`)
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
