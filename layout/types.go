package layout

// 该文件定义布局结果，供 PDF 预览、终端宿主与调试 JSON 共用。所有坐标与尺寸单位均为 px。

// Result 保存整篇文档排版后的结果。
type Result struct {
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Margin     float64      `json:"margin"`
	Paragraphs []TextBox    `json:"paragraphs"`
	Tables     []TableBox   `json:"tables"`
	Meta       DocumentMeta `json:"meta"`
}

// ActiveTable 返回包含光标的表格。
func (r *Result) ActiveTable() (*TableBox, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.Tables {
		if r.Tables[i].Active {
			return &r.Tables[i], true
		}
	}
	return nil, false
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// TextBox 表示一个已经排好坐标的文本块。
type TextBox struct {
	Content    string     `json:"content"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	FontSize   float64    `json:"fontSize"`
	LineHeight float64    `json:"lineHeight"`
	Lines      []TextLine `json:"lines"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// TableBox 保存一个表格的几何信息。ColumnX[i] 为第 i 列左边界，长度比列数多 1。
type TableBox struct {
	Pos          int          `json:"pos"`
	Active       bool         `json:"active"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	Width        float64      `json:"width"`
	Height       float64      `json:"height"`
	ColumnWidths []float64    `json:"columnWidths"`
	ColumnX      []float64    `json:"columnX"`
	Rows         []TableRow   `json:"rows"`
	Handles      []HandleZone `json:"handles,omitempty"`
	BorderColor  Color        `json:"borderColor"`
}

// TableRow 记录每一行的高度与单元格。
type TableRow struct {
	Y        float64     `json:"y"`
	Height   float64     `json:"height"`
	IsHeader bool        `json:"isHeader"`
	Cells    []TableCell `json:"cells"`
}

// TableCell 记录单元格矩形与内容。
type TableCell struct {
	Pos    int     `json:"pos"`
	Column int     `json:"column"`
	Span   int     `json:"span"`
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
	Header bool    `json:"header"`
	Fill   *Color  `json:"fill,omitempty"`
	Text   TextBox `json:"text"`
}

// HandleZone 是内部列边界上的拖拽热区。
type HandleZone struct {
	Column int     `json:"column"`
	Anchor int     `json:"anchor"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Boundary 返回热区中心，即列的右边界。
func (h HandleZone) Boundary() float64 { return h.X + h.Width/2 }

// HandleAt 命中测试：返回 (x, y) 所在热区对应的列下标。
func (t *TableBox) HandleAt(x, y float64) (int, bool) {
	for _, h := range t.Handles {
		if x >= h.X && x < h.X+h.Width && y >= h.Y && y < h.Y+h.Height {
			return h.Column, true
		}
	}
	return 0, false
}

// DocumentMeta 保存文档信息，渲染 PDF 时写入元数据。
type DocumentMeta struct {
	Title   string `json:"title"`
	Version string `json:"version"`
	Creator string `json:"creator"`
}
