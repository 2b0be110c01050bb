package resize

import "github.com/ByLCY/colgrip/model"

// Handle 描述一个列宽调整手柄。手柄只存在于视图层，不写入文档，每次读取状态时重新生成。
type Handle struct {
	ColumnIndex int
	Anchor      int // 第一行对应单元格结束后的位置
	TablePos    int
}

// BuildHandles 为 selection 所在表格的每条内部列边界生成一个手柄，最后一列之后不生成。
// 位置总是从当前文档重新推导。
func BuildHandles(doc *model.Node, selection int) []Handle {
	ref, ok := LocateTable(doc, selection)
	if !ok {
		return nil
	}
	return handlesFor(ref)
}

func handlesFor(ref TableRef) []Handle {
	first := ref.Node.Child(0)
	if first == nil || first.ChildCount() <= 1 {
		return nil
	}
	rowPos := ref.Node.ChildPos(ref.Pos, 0)
	last := first.ChildCount() - 1
	handles := make([]Handle, 0, last)
	first.ForEachChild(rowPos, func(cell *model.Node, cellPos, i int) bool {
		if i >= last {
			return false
		}
		handles = append(handles, Handle{
			ColumnIndex: i,
			Anchor:      cellPos + cell.NodeSize(),
			TablePos:    ref.Pos,
		})
		return true
	})
	return handles
}
