package resize

import "github.com/ByLCY/colgrip/model"

// WidthUpdate 是一次列宽写入请求。
type WidthUpdate struct {
	Column int
	Width  int
}

// CommitColumnWidth 是 CommitColumnWidths 的单列形式。
func CommitColumnWidth(doc *model.Node, ref TableRef, column, width int) (*model.Transaction, int) {
	return CommitColumnWidths(doc, ref, []WidthUpdate{{Column: column, Width: width}})
}

// CommitColumnWidths 为表格每一行中目标列的单元格写入 colwidth=[width]，其余属性保持不变。
// 所有写入收集到同一个事务里，调用方只需 dispatch 一次；返回值 rewrites 为改写的单元格数。
// 单元格数量不足的行会跳过对应列。
func CommitColumnWidths(doc *model.Node, ref TableRef, updates []WidthUpdate) (*model.Transaction, int) {
	tr := model.NewTransaction(doc)
	rewrites := 0
	ref.Node.ForEachChild(ref.Pos, func(row *model.Node, rowPos, _ int) bool {
		for _, u := range updates {
			cell := row.Child(u.Column)
			if cell == nil || !cell.Type.IsCell() {
				continue
			}
			tr.SetCellAttrs(row.ChildPos(rowPos, u.Column), cell.Attrs.WithColWidth(u.Width))
			rewrites++
		}
		return true
	})
	return tr, rewrites
}
