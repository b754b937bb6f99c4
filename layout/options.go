package layout

import (
	"fmt"

	"github.com/Elitezen/text-on-gif/dsl"
)

// Measurer 提供文本宽度测量能力（像素），由绘制表面实现。
type Measurer interface {
	TextWidth(s string) float64
}

// FromStylesheet converts parsed declarations into options, preserving order.
func FromStylesheet(sheet *dsl.Stylesheet) ([]Option, error) {
	if sheet == nil {
		return nil, nil
	}
	var opts []Option
	for _, d := range sheet.Declarations {
		opt, err := Set(d.Key, d.Value.Raw())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Pos, err)
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

// ParseStyle parses declarations such as "font-size: 24px; align-y: top".
func ParseStyle(src string) ([]Option, error) {
	sheet, err := dsl.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("解析样式失败: %w", err)
	}
	return FromStylesheet(sheet)
}
