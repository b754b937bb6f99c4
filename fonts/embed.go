package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Fallback is the built-in used when a family cannot be resolved.
const Fallback = "go"

var builtins = map[string][]byte{
	"go":             goregular.TTF,
	"go-bold":        gobold.TTF,
	"go-italic":      goitalic.TTF,
	"go-bold-italic": gobolditalic.TTF,
	"go-medium":      gomedium.TTF,
	"go-mono":        gomono.TTF,
	"go-mono-bold":   gomonobold.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:go-mono" 或直接 "go-mono"，大小写不敏感。
func Load(name string) ([]byte, error) {
	key := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "embed:"))
	key = strings.ReplaceAll(key, " ", "-")
	data, ok := builtins[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", name)
	}
	return data, nil
}

// Has reports whether name resolves to a built-in font.
func Has(name string) bool {
	_, err := Load(name)
	return err == nil
}

// Names lists the built-in font names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
