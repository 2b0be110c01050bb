package resize

import "github.com/ByLCY/colgrip/model"

// TableRef 指向文档中的一个表格节点及其绝对位置。
type TableRef struct {
	Node *model.Node
	Pos  int
}

// End returns the position just after the table.
func (r TableRef) End() int { return r.Pos + r.Node.NodeSize() }

// LocateTable 查找包含 pos 的表格，区间为 [start, start+size]，返回第一个命中的表格。
// 表格不会嵌套，因此命中后不再进入其子树。未命中表示“没有手柄，也不能拖拽”。
func LocateTable(doc *model.Node, pos int) (TableRef, bool) {
	var ref TableRef
	found := false
	doc.Descendants(func(n *model.Node, at int) bool {
		if found {
			return false
		}
		if n.Type != model.TypeTable {
			return true
		}
		if pos >= at && pos <= at+n.NodeSize() {
			ref = TableRef{Node: n, Pos: at}
			found = true
		}
		return false
	})
	return ref, found
}
