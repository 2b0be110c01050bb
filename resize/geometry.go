package resize

import "github.com/ByLCY/colgrip/model"

// ColumnWidths 读取表格第一行，为每个单元格返回 colwidth[0]，未设置或不为正数时返回 fallback。
// 每次调用都重新计算，不做缓存，保证反映最新提交的宽度。
func ColumnWidths(table *model.Node, fallback int) []int {
	first := table.Child(0)
	if first == nil || first.ChildCount() == 0 {
		return nil
	}
	widths := make([]int, 0, first.ChildCount())
	for _, cell := range first.Content {
		if w, ok := cell.Attrs.ColWidth.First(); ok && w > 0 {
			widths = append(widths, w)
			continue
		}
		widths = append(widths, fallback)
	}
	return widths
}
