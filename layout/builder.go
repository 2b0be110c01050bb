package layout

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/colgrip/model"
	"github.com/ByLCY/colgrip/resize"
)

const minContentWidth = 480.0

// Build 根据文档树计算段落与表格的几何信息；selection 所在的表格标记为活动表格并生成手柄热区。
func Build(doc *model.Node, selection int, opts Options) (*Result, error) {
	if doc == nil || doc.Type != model.TypeDoc {
		return nil, fmt.Errorf("文档为空")
	}
	opts = opts.normalize()
	lh, ok := ParseLineHeight(opts.LineHeight)
	if !ok {
		return nil, fmt.Errorf("无法解析行高 %q", opts.LineHeight)
	}
	margin := ParseRawLengthStr(opts.Margin)
	if margin.Unit == UnitNone {
		return nil, fmt.Errorf("无法解析页边距 %q", opts.Margin)
	}

	ctx := &flowContext{
		opts:       opts,
		margin:     margin.ToPX(),
		lineHeight: lh.Resolve(Length{Value: opts.FontSize, Unit: UnitPX}, UnitPX),
	}
	ctx.cursorY = ctx.margin
	ctx.width = contentWidth(doc, opts.FallbackWidth)

	active, hasActive := resize.LocateTable(doc, selection)
	var err error
	doc.ForEachChild(-1, func(child *model.Node, pos, _ int) bool {
		switch child.Type {
		case model.TypeParagraph:
			err = ctx.paragraph(child)
		case model.TypeTable:
			var handles []resize.Handle
			if hasActive && active.Pos == pos {
				handles = resize.BuildHandles(doc, selection)
			}
			err = ctx.table(child, pos, hasActive && active.Pos == pos, handles)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	bottom := ctx.cursorY
	if len(ctx.paragraphs)+len(ctx.tables) > 0 {
		bottom -= blockSpacing
	}
	return &Result{
		Width:      ctx.width + 2*ctx.margin,
		Height:     bottom + ctx.margin,
		Margin:     ctx.margin,
		Paragraphs: ctx.paragraphs,
		Tables:     ctx.tables,
	}, nil
}

// contentWidth 取所有表格总宽与最小版心宽度中的较大者。
func contentWidth(doc *model.Node, fallback int) float64 {
	width := minContentWidth
	doc.ForEachChild(-1, func(child *model.Node, _, _ int) bool {
		if child.Type != model.TypeTable {
			return true
		}
		total := 0
		for _, w := range resize.ColumnWidths(child, fallback) {
			total += w
		}
		width = math.Max(width, float64(total))
		return true
	})
	return width
}

type flowContext struct {
	opts       Options
	margin     float64
	width      float64
	lineHeight float64
	cursorY    float64
	paragraphs []TextBox
	tables     []TableBox
}

func (ctx *flowContext) paragraph(p *model.Node) error {
	tb, err := ctx.textBox(p.TextContent(), ctx.margin, ctx.cursorY, ctx.width)
	if err != nil {
		return err
	}
	ctx.paragraphs = append(ctx.paragraphs, tb)
	ctx.cursorY += tb.Height + blockSpacing
	return nil
}

func (ctx *flowContext) table(n *model.Node, pos int, active bool, handles []resize.Handle) error {
	widths := resize.ColumnWidths(n, ctx.opts.FallbackWidth)
	if len(widths) == 0 {
		return fmt.Errorf("位置 %d 的表格没有单元格", pos)
	}
	table := TableBox{
		Pos:          pos,
		Active:       active,
		X:            ctx.margin,
		Y:            ctx.cursorY,
		ColumnWidths: make([]float64, len(widths)),
		ColumnX:      make([]float64, len(widths)+1),
		BorderColor:  Color{R: 200, G: 200, B: 200},
	}
	x := table.X
	for i, w := range widths {
		table.ColumnX[i] = x
		table.ColumnWidths[i] = float64(w)
		x += float64(w)
	}
	table.ColumnX[len(widths)] = x
	table.Width = x - table.X

	currentY := table.Y
	var err error
	n.ForEachChild(pos, func(row *model.Node, rowPos, _ int) bool {
		var tr TableRow
		tr, err = ctx.row(row, rowPos, &table, currentY)
		if err != nil {
			return false
		}
		table.Rows = append(table.Rows, tr)
		currentY += tr.Height
		return true
	})
	if err != nil {
		return err
	}
	table.Height = currentY - table.Y

	for _, h := range handles {
		boundary := table.ColumnX[h.ColumnIndex+1]
		table.Handles = append(table.Handles, HandleZone{
			Column: h.ColumnIndex,
			Anchor: h.Anchor,
			X:      boundary - ctx.opts.HandleWidth/2,
			Y:      table.Y,
			Width:  ctx.opts.HandleWidth,
			Height: table.Height,
		})
	}

	ctx.tables = append(ctx.tables, table)
	ctx.cursorY = currentY + blockSpacing
	return nil
}

// row 按第一行的列宽放置单元格；colspan 合并相邻列宽，超出第一行列数的部分使用回退宽度。
func (ctx *flowContext) row(row *model.Node, rowPos int, table *TableBox, y float64) (TableRow, error) {
	out := TableRow{Y: y, IsHeader: true}
	maxText := 0.0
	col := 0
	x := table.X
	var err error
	row.ForEachChild(rowPos, func(cell *model.Node, cellPos, _ int) bool {
		span := max(cell.Attrs.Colspan, 1)
		width := 0.0
		for i := col; i < col+span; i++ {
			if i < len(table.ColumnWidths) {
				width += table.ColumnWidths[i]
			} else {
				width += float64(ctx.opts.FallbackWidth)
			}
		}
		header := cell.Type == model.TypeHeader
		if !header {
			out.IsHeader = false
		}
		var tb TextBox
		tb, err = ctx.textBox(cellText(cell), x+cellPadding, y+cellPadding, math.Max(width-2*cellPadding, 0))
		if err != nil {
			return false
		}
		maxText = math.Max(maxText, tb.Height)
		out.Cells = append(out.Cells, TableCell{
			Pos:    cellPos,
			Column: col,
			Span:   span,
			X:      x,
			Width:  width,
			Header: header,
			Fill:   cellFill(cell),
			Text:   tb,
		})
		col += span
		x += width
		return true
	})
	if err != nil {
		return TableRow{}, err
	}
	out.Height = math.Max(ctx.opts.RowHeight, maxText+2*cellPadding)
	return out, nil
}

func (ctx *flowContext) textBox(content string, x, y, width float64) (TextBox, error) {
	lines, err := layoutLines(content, width, ctx.opts.FontSize, ctx.lineHeight, ctx.opts.Typesetter)
	if err != nil {
		return TextBox{}, fmt.Errorf("文本排版失败: %w", err)
	}
	height := 0.0
	for _, l := range lines {
		height += l.GapBefore + l.Height
	}
	return TextBox{
		Content:    content,
		X:          x,
		Y:          y,
		Width:      width,
		Height:     height,
		FontSize:   ctx.opts.FontSize,
		LineHeight: ctx.lineHeight,
		Lines:      lines,
	}, nil
}

// cellText 把单元格中的段落以换行拼接。
func cellText(cell *model.Node) string {
	parts := make([]string, 0, cell.ChildCount())
	for _, p := range cell.Content {
		parts = append(parts, p.TextContent())
	}
	return strings.Join(parts, "\n")
}

func cellFill(cell *model.Node) *Color {
	if cell.Attrs.Background != "" {
		if c, err := parseColor(cell.Attrs.Background); err == nil {
			return &c
		}
	}
	if cell.Type == model.TypeHeader {
		return &Color{R: 248, G: 248, B: 248}
	}
	return nil
}

func layoutLines(content string, width, fontSize, lineHeight float64, ts Typesetter) ([]TextLine, error) {
	if ts == nil {
		parts := strings.Split(content, "\n")
		out := make([]TextLine, 0, len(parts))
		leading := math.Max(lineHeight-fontSize, 0)
		for _, l := range parts {
			out = append(out, TextLine{
				Content:   l,
				Width:     math.Min(estimateTextWidth(l, fontSize), width),
				Height:    fontSize,
				GapBefore: leading,
			})
		}
		out[0].GapBefore = 0
		return out, nil
	}
	lines, err := ts.LayoutLines(content, width, fontSize, lineHeight)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Height: fontSize}}
	}
	lines[0].GapBefore = 0
	return lines, nil
}

func estimateTextWidth(content string, fontSize float64) float64 {
	return fontSize * 0.55 * float64(utf8.RuneCountInString(content))
}

func parseColor(value string) (Color, error) {
	if !strings.HasPrefix(value, "#") {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	value = strings.TrimPrefix(value, "#")
	for _, r := range value {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
		}
	}
	switch len(value) {
	case 3:
		return Color{
			R: mustHex(strings.Repeat(value[0:1], 2)),
			G: mustHex(strings.Repeat(value[1:2], 2)),
			B: mustHex(strings.Repeat(value[2:3], 2)),
		}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
	}
}

func mustHex(s string) int {
	var v int
	fmt.Sscanf(s, "%x", &v)
	return v
}
