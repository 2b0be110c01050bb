package model

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ColWidth 记录单元格跨越的每一列的像素宽度；nil 表示未设置。
// 单列单元格只有第一个元素有效。
type ColWidth []int

// ParseColWidth 解析逗号分隔的整数列表。非数字片段与非正数会被丢弃，结果为空时视为未设置。
func ParseColWidth(raw string) ColWidth {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out ColWidth
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// String 以逗号拼接；未设置时返回空串，调用方据此省略属性。
func (c ColWidth) String() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// First returns the authoritative width of a single-span cell.
func (c ColWidth) First() (int, bool) {
	if len(c) == 0 {
		return 0, false
	}
	return c[0], true
}

// Equal compares two widths, treating nil and empty as the same.
func (c ColWidth) Equal(other ColWidth) bool { return slices.Equal(c, other) }

// Clone returns an independent copy.
func (c ColWidth) Clone() ColWidth {
	if len(c) == 0 {
		return nil
	}
	return append(ColWidth(nil), c...)
}

// CellAttrs 是单元格属性的强类型表示，取代原先任意键值的属性包。
// 未识别的属性保存在 Extra 中，序列化时原样写回。
type CellAttrs struct {
	ColWidth    ColWidth
	Colspan     int
	Rowspan     int
	Background  string
	Border      string
	BorderTop   string
	BorderRight string
	BorderBot   string
	BorderLeft  string
	BorderStyle string
	BorderColor string
	BorderWidth string
	Style       string
	Extra       map[string]string
}

// 属性名与标记语言中的写法一一对应。
const (
	AttrColWidth    = "colwidth"
	AttrColspan     = "colspan"
	AttrRowspan     = "rowspan"
	AttrBackground  = "background"
	AttrBorder      = "border"
	AttrBorderTop   = "border-top"
	AttrBorderRight = "border-right"
	AttrBorderBot   = "border-bottom"
	AttrBorderLeft  = "border-left"
	AttrBorderStyle = "border-style"
	AttrBorderColor = "border-color"
	AttrBorderWidth = "border-width"
	AttrStyle       = "style"
)

// WithColWidth 返回只替换 colwidth 的副本，其余属性保持不变。
func (a CellAttrs) WithColWidth(widths ...int) CellAttrs {
	out := a.Clone()
	out.ColWidth = ColWidth(widths).Clone()
	return out
}

// Clone returns a deep copy.
func (a CellAttrs) Clone() CellAttrs {
	out := a
	out.ColWidth = a.ColWidth.Clone()
	if a.Extra != nil {
		out.Extra = maps.Clone(a.Extra)
	}
	return out
}

// Equal 比较两组属性。
func (a CellAttrs) Equal(b CellAttrs) bool {
	if !a.ColWidth.Equal(b.ColWidth) {
		return false
	}
	if a.Colspan != b.Colspan || a.Rowspan != b.Rowspan {
		return false
	}
	return slices.Equal(a.Pairs(), b.Pairs())
}

// Set 按标记语言中的属性名写入值。
func (a *CellAttrs) Set(key, value string) error {
	switch key {
	case AttrColWidth:
		a.ColWidth = ParseColWidth(value)
	case AttrColspan, AttrRowspan:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 {
			return fmt.Errorf("属性 %s 需要正整数，实际为 %q", key, value)
		}
		if key == AttrColspan {
			a.Colspan = n
		} else {
			a.Rowspan = n
		}
	case AttrBackground:
		a.Background = value
	case AttrBorder:
		a.Border = value
	case AttrBorderTop:
		a.BorderTop = value
	case AttrBorderRight:
		a.BorderRight = value
	case AttrBorderBot:
		a.BorderBot = value
	case AttrBorderLeft:
		a.BorderLeft = value
	case AttrBorderStyle:
		a.BorderStyle = value
	case AttrBorderColor:
		a.BorderColor = value
	case AttrBorderWidth:
		a.BorderWidth = value
	case AttrStyle:
		a.Style = value
	default:
		if a.Extra == nil {
			a.Extra = map[string]string{}
		}
		a.Extra[key] = value
	}
	return nil
}

// Pairs 以稳定顺序列出所有已设置的属性，供序列化使用。
func (a CellAttrs) Pairs() [][2]string {
	var out [][2]string
	add := func(k, v string) {
		if v != "" {
			out = append(out, [2]string{k, v})
		}
	}
	add(AttrColWidth, a.ColWidth.String())
	if a.Colspan > 1 {
		add(AttrColspan, strconv.Itoa(a.Colspan))
	}
	if a.Rowspan > 1 {
		add(AttrRowspan, strconv.Itoa(a.Rowspan))
	}
	add(AttrBackground, a.Background)
	add(AttrBorder, a.Border)
	add(AttrBorderTop, a.BorderTop)
	add(AttrBorderRight, a.BorderRight)
	add(AttrBorderBot, a.BorderBot)
	add(AttrBorderLeft, a.BorderLeft)
	add(AttrBorderStyle, a.BorderStyle)
	add(AttrBorderColor, a.BorderColor)
	add(AttrBorderWidth, a.BorderWidth)
	add(AttrStyle, a.Style)
	for _, k := range sortedKeys(a.Extra) {
		add(k, a.Extra[k])
	}
	return out
}

// WidthStyle 根据 colwidth 计算单元格的宽度样式。
// 所有列宽都已设置时输出 width；表头在部分设置时退化为 min-width。
func (a CellAttrs) WidthStyle(header bool) string {
	if len(a.ColWidth) == 0 {
		return ""
	}
	total := 0
	fixed := true
	for _, w := range a.ColWidth {
		if w <= 0 {
			fixed = false
			continue
		}
		total += w
	}
	switch {
	case total <= 0:
		return ""
	case fixed:
		return fmt.Sprintf("width: %dpx", total)
	case header:
		return fmt.Sprintf("min-width: %dpx", total)
	default:
		return ""
	}
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(m))
}
