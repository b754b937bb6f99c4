// Package binding fills ${...} placeholders in caption text from JSON data.
package binding

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Decode parses a JSON document for use with Interpolate. Empty input yields nil.
func Decode(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}

// Interpolate 将 ${a.b[0]} 替换为 data 中对应的值；${path|默认值} 在路径不存在时使用默认值。
// 既无值也无默认值的占位符保持原样。
func Interpolate(text string, data any) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		expr := placeholder.FindStringSubmatch(match)[1]
		path, fallback, hasFallback := strings.Cut(expr, "|")
		path = strings.TrimSpace(path)
		if path != "" && data != nil {
			if v, ok := lookup(data, path); ok {
				return format(v)
			}
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func lookup(data any, path string) (any, bool) {
	cur := data
	for _, segment := range strings.Split(path, ".") {
		key, indexes := splitIndexes(segment)
		if key != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = m[key]; !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			list, ok := cur.([]any)
			if !ok || idx < 0 || idx >= len(list) {
				return nil, false
			}
			cur = list[idx]
		}
	}
	return cur, true
}

// splitIndexes 拆分 "items[1][0]" 为 "items" 与 [1 0]；无法解析的下标记为 -1。
func splitIndexes(segment string) (string, []int) {
	key, rest, found := strings.Cut(segment, "[")
	if !found {
		return segment, nil
	}
	var indexes []int
	rest = "[" + rest
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			n = -1
		}
		indexes = append(indexes, n)
		rest = rest[end+1:]
	}
	return key, indexes
}
