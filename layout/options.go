package layout

import "github.com/ByLCY/colgrip/resize"

// 默认值，单位 px。
const (
	DefaultRowHeight     = 24.0
	DefaultHandleWidth   = 6.0
	DefaultPixelsPerCell = 8
	DefaultFontSize      = 13.0
	DefaultMargin        = "10mm"
	DefaultLineHeight    = "1.4"
	blockSpacing         = 12.0
	cellPadding          = 4.0
)

// Options 配置布局阶段。零值字段使用默认值。
type Options struct {
	RowHeight     float64 `json:"rowHeight"`
	HandleWidth   float64 `json:"handleWidth"`
	PixelsPerCell int     `json:"pixelsPerCell"` // 终端宿主中一个字符格对应的像素
	FontSize      float64 `json:"fontSize"`
	LineHeight    string  `json:"lineHeight"` // 倍数 "1.4" 或绝对值 "18px"
	Margin        string  `json:"margin"`     // 带单位的长度，例如 "10mm"
	FallbackWidth int     `json:"-"`

	// Typesetter 为空时每个段落占一行。
	Typesetter Typesetter `json:"-"`
}

// Typesetter 负责把文本按宽度拆成可绘制的行。参数与返回值单位均为 px。
type Typesetter interface {
	LayoutLines(content string, width, fontSize, lineHeight float64) ([]TextLine, error)
}

func (o Options) normalize() Options {
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.HandleWidth <= 0 {
		o.HandleWidth = DefaultHandleWidth
	}
	if o.PixelsPerCell <= 0 {
		o.PixelsPerCell = DefaultPixelsPerCell
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.LineHeight == "" {
		o.LineHeight = DefaultLineHeight
	}
	if o.Margin == "" {
		o.Margin = DefaultMargin
	}
	if o.FallbackWidth <= 0 {
		o.FallbackWidth = resize.DefaultFallbackWidth
	}
	return o
}
