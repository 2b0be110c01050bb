package model

import "unicode/utf8"

// 该文件定义文档树节点与位置大小的计算规则。

// NodeType 标识节点种类。
type NodeType string

const (
	TypeDoc       NodeType = "doc"
	TypeParagraph NodeType = "paragraph"
	TypeText      NodeType = "text"
	TypeTable     NodeType = "table"
	TypeRow       NodeType = "row"
	TypeCell      NodeType = "cell"
	TypeHeader    NodeType = "header"
)

// IsCell 判断节点类型是否为单元格（含表头单元格）。
func (t NodeType) IsCell() bool { return t == TypeCell || t == TypeHeader }

// Node 是文档树中的一个节点。节点创建后视为不可变，修改一律通过 Transaction 生成新树。
type Node struct {
	Type    NodeType
	Attrs   CellAttrs // 仅单元格使用
	Text    string    // 仅文本节点使用
	Content []*Node
}

// NewDoc 创建根节点。
func NewDoc(children ...*Node) *Node { return &Node{Type: TypeDoc, Content: children} }

// NewText 创建文本节点。
func NewText(text string) *Node { return &Node{Type: TypeText, Text: text} }

// NewParagraph 创建段落；text 为空时生成空段落。
func NewParagraph(text string) *Node {
	p := &Node{Type: TypeParagraph}
	if text != "" {
		p.Content = []*Node{NewText(text)}
	}
	return p
}

// NewTable 创建表格节点。
func NewTable(rows ...*Node) *Node { return &Node{Type: TypeTable, Content: rows} }

// NewRow 创建行节点。
func NewRow(cells ...*Node) *Node { return &Node{Type: TypeRow, Content: cells} }

// NewCell 创建普通单元格，内容包在一个段落里。
func NewCell(text string, attrs CellAttrs) *Node {
	return &Node{Type: TypeCell, Attrs: attrs, Content: []*Node{NewParagraph(text)}}
}

// NewHeader 创建表头单元格。
func NewHeader(text string, attrs CellAttrs) *Node {
	return &Node{Type: TypeHeader, Attrs: attrs, Content: []*Node{NewParagraph(text)}}
}

// IsText reports whether n is a text leaf.
func (n *Node) IsText() bool { return n != nil && n.Type == TypeText }

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.Content)
}

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Content) {
		return nil
	}
	return n.Content[i]
}

// ContentSize 是子节点大小之和。
func (n *Node) ContentSize() int {
	if n == nil {
		return 0
	}
	size := 0
	for _, c := range n.Content {
		size += c.NodeSize()
	}
	return size
}

// NodeSize 返回节点在线性寻址中占用的长度：文本为字符数，其余节点为内容加首尾两个边界。
func (n *Node) NodeSize() int {
	if n == nil {
		return 0
	}
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	return n.ContentSize() + 2
}

// TextContent 拼接节点下所有文本。
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.IsText() {
		return n.Text
	}
	out := ""
	for _, c := range n.Content {
		out += c.TextContent()
	}
	return out
}

// withContent 返回替换了子节点的浅拷贝。
func (n *Node) withContent(content []*Node) *Node {
	cp := *n
	cp.Content = content
	return &cp
}

// withAttrs 返回替换了属性的浅拷贝。
func (n *Node) withAttrs(attrs CellAttrs) *Node {
	cp := *n
	cp.Attrs = attrs.Clone()
	return &cp
}

// Equal 深度比较两棵树。
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Type != other.Type || n.Text != other.Text || !n.Attrs.Equal(other.Attrs) {
		return false
	}
	if len(n.Content) != len(other.Content) {
		return false
	}
	for i := range n.Content {
		if !n.Content[i].Equal(other.Content[i]) {
			return false
		}
	}
	return true
}
