package model

// 位置运算：子节点的绝对位置由父节点内容起点加上前面兄弟节点的大小累加得出。
// 根节点 doc 的内容从 0 开始；其他节点的内容从自身位置 +1 开始。

// ContentStart 返回节点内容的起始绝对位置。
func (n *Node) ContentStart(pos int) int {
	if n != nil && n.Type == TypeDoc {
		return 0
	}
	return pos + 1
}

// ChildOffsets 返回每个子节点相对于父节点内容起点的偏移。
func (n *Node) ChildOffsets() []int {
	if n == nil || len(n.Content) == 0 {
		return nil
	}
	offsets := make([]int, len(n.Content))
	acc := 0
	for i, c := range n.Content {
		offsets[i] = acc
		acc += c.NodeSize()
	}
	return offsets
}

// ChildPos 返回第 i 个子节点的绝对位置；pos 是 n 自身的绝对位置。越界返回 -1。
func (n *Node) ChildPos(pos, i int) int {
	if n == nil || i < 0 || i >= len(n.Content) {
		return -1
	}
	at := n.ContentStart(pos)
	for _, c := range n.Content[:i] {
		at += c.NodeSize()
	}
	return at
}

// ForEachChild 按顺序回调每个子节点及其绝对位置；回调返回 false 时停止。
func (n *Node) ForEachChild(pos int, fn func(child *Node, childPos, index int) bool) {
	if n == nil {
		return
	}
	at := n.ContentStart(pos)
	for i, c := range n.Content {
		if !fn(c, at, i) {
			return
		}
		at += c.NodeSize()
	}
}

// Descendants 先序遍历所有后代节点并给出绝对位置。
// fn 返回 false 表示不再进入该节点的子树（遍历仍会继续处理后续兄弟）。
func (n *Node) Descendants(fn func(node *Node, pos int) bool) {
	if n == nil {
		return
	}
	n.descend(n.ContentStart(-1), fn)
}

func (n *Node) descend(start int, fn func(node *Node, pos int) bool) {
	at := start
	for _, c := range n.Content {
		if fn(c, at) && !c.IsText() {
			c.descend(at+1, fn)
		}
		at += c.NodeSize()
	}
}

// NodeAt 返回恰好从 pos 开始的最外层节点以及从根到它的下标路径。
func (n *Node) NodeAt(pos int) (*Node, []int, bool) {
	if n == nil || pos < 0 {
		return nil, nil, false
	}
	node := n
	start := n.ContentStart(-1)
	var path []int
	for {
		at := start
		next := -1
		for i, c := range node.Content {
			size := c.NodeSize()
			if pos == at {
				return c, append(path, i), true
			}
			if pos > at && pos < at+size {
				next = i
				start = at + 1
				break
			}
			at += size
		}
		if next < 0 || node.Content[next].IsText() {
			return nil, nil, false
		}
		path = append(path, next)
		node = node.Content[next]
	}
}

// boundaryAt 把 pos 解析为某个父节点内容中的插入点（父路径与子下标），优先选择最浅的一层。
func (n *Node) boundaryAt(pos int) ([]int, int, bool) {
	if n == nil || pos < 0 {
		return nil, 0, false
	}
	node := n
	start := n.ContentStart(-1)
	var path []int
	for {
		at := start
		next := -1
		for i, c := range node.Content {
			if pos == at {
				return path, i, true
			}
			size := c.NodeSize()
			if pos > at && pos < at+size {
				next = i
				start = at + 1
				break
			}
			at += size
		}
		if next < 0 {
			if pos == at {
				return path, len(node.Content), true
			}
			return nil, 0, false
		}
		if node.Content[next].IsText() {
			return nil, 0, false
		}
		path = append(path, next)
		node = node.Content[next]
	}
}

// replaceAt 以写时复制的方式替换 path 指向的节点，返回新的根。
func replaceAt(root *Node, path []int, fn func(*Node) *Node) *Node {
	if len(path) == 0 {
		return fn(root)
	}
	i := path[0]
	content := make([]*Node, len(root.Content))
	copy(content, root.Content)
	content[i] = replaceAt(root.Content[i], path[1:], fn)
	return root.withContent(content)
}

// NodeByPath follows a child-index path from n.
func (n *Node) NodeByPath(path []int) *Node {
	node := n
	for _, i := range path {
		node = node.Child(i)
		if node == nil {
			return nil
		}
	}
	return node
}
