package layout

import (
	"strings"
)

// WrapText 使用贪心算法按宽度换行：逐词追加到预览行并测量，超出 maxWidth 时
// 提交追加前的行，并以当前词开始新行。单个超宽的词不会被拆分，独占一行。
// 显式换行符强制分行。结果至少包含一行，空文本得到一个空行。
func WrapText(text string, maxWidth float64, m Measurer) []TextRow {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var rows []TextRow
	for _, paragraph := range strings.Split(text, "\n") {
		rows = append(rows, wrapParagraph(paragraph, maxWidth, m)...)
	}
	if len(rows) == 0 {
		rows = []TextRow{{}}
	}
	return rows
}

func wrapParagraph(text string, maxWidth float64, m Measurer) []TextRow {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []TextRow{{}}
	}

	var rows []TextRow
	line := ""
	lineWidth := 0.0
	for _, word := range words {
		preview := word
		if line != "" {
			preview = line + " " + word
		}
		previewWidth := m.TextWidth(preview)
		if line != "" && previewWidth > maxWidth {
			rows = append(rows, TextRow{Content: line, Width: lineWidth})
			line = word
			lineWidth = m.TextWidth(word)
			continue
		}
		line = preview
		lineWidth = previewWidth
	}
	rows = append(rows, TextRow{Content: line, Width: lineWidth})
	return rows
}

// Words returns the word sequence of rows in reading order.
func Words(rows []TextRow) []string {
	var words []string
	for _, r := range rows {
		words = append(words, strings.Fields(r.Content)...)
	}
	return words
}
