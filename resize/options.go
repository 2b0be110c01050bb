package resize

const (
	// DefaultMinWidth 是拖拽时任一列允许的最小宽度（像素）。
	DefaultMinWidth = 25
	// DefaultFallbackWidth 是单元格缺少 colwidth 时使用的宽度（像素）。
	DefaultFallbackWidth = 50
)

// Options 配置列宽调整的约束。零值字段使用默认值。
type Options struct {
	MinWidth      int `json:"minWidth"`
	FallbackWidth int `json:"fallbackWidth"`
}

// DefaultOptions returns the stock constraints (25 / 50).
func DefaultOptions() Options {
	return Options{MinWidth: DefaultMinWidth, FallbackWidth: DefaultFallbackWidth}
}

func (o Options) normalize() Options {
	if o.MinWidth <= 0 {
		o.MinWidth = DefaultMinWidth
	}
	if o.FallbackWidth <= 0 {
		o.FallbackWidth = DefaultFallbackWidth
	}
	return o
}
