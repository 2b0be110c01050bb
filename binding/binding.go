package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{\s*([^}]+?)\s*\}`)

// Interpolate 将单元格或段落文本中的 ${path} 替换为 data 中对应的值。
// data 通常来自 JSON 解码；路径不存在时保留原占位符，不报错。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholder.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		val, ok := Lookup(data, groups[1])
		if !ok || val == nil {
			return match
		}
		return format(val)
	})
}

// Lookup 按 "items[0].name" 形式的路径在 map/slice 组成的数据中取值。
func Lookup(data any, path string) (any, bool) {
	steps, ok := splitPath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, st := range steps {
		switch c := current.(type) {
		case map[string]any:
			if st.index >= 0 {
				return nil, false
			}
			v, found := c[st.key]
			if !found {
				return nil, false
			}
			current = v
		case []any:
			if st.index < 0 || st.index >= len(c) {
				return nil, false
			}
			current = c[st.index]
		default:
			return nil, false
		}
	}
	return current, true
}

type pathStep struct {
	key   string
	index int // -1 表示按键访问
}

// splitPath 把路径拆成键访问与下标访问的序列，例如 a.b[1][2] => a, b, [1], [2]。
func splitPath(path string) ([]pathStep, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	var steps []pathStep
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, pathStep{key: name, index: -1})
		}
		if rest == "" {
			if name == "" {
				return nil, false
			}
			continue
		}
		rest = "[" + rest
		for rest != "" {
			if rest[0] != '[' {
				return nil, false
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, false
			}
			idx, err := strconv.Atoi(rest[1:end])
			if err != nil {
				return nil, false
			}
			steps = append(steps, pathStep{index: idx})
			rest = rest[end+1:]
		}
	}
	return steps, len(steps) > 0
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
