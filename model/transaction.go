package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNoNode 表示给定位置上没有节点。
	ErrNoNode = errors.New("model: no node at position")
	// ErrNotCell 表示目标节点不是单元格。
	ErrNotCell = errors.New("model: node is not a cell")
	// ErrOutOfRange 表示位置不是合法的插入点。
	ErrOutOfRange = errors.New("model: position out of range")
)

// StepKind 区分事务中的步骤类型。
type StepKind uint8

const (
	StepSetCellAttrs StepKind = iota
	StepInsert
	StepDelete
)

func (k StepKind) String() string {
	switch k {
	case StepSetCellAttrs:
		return "set-cell-attrs"
	case StepInsert:
		return "insert"
	case StepDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Step 是事务中的单个修改。每一步的位置都相对于前面步骤执行后的文档解释。
type Step struct {
	Kind  StepKind
	Pos   int
	Attrs CellAttrs // StepSetCellAttrs
	Node  *Node     // StepInsert
}

// Transaction 收集一组步骤，Apply 时整体生效或整体失败。
type Transaction struct {
	before *Node
	steps  []Step
}

// NewTransaction 以 doc 为起点创建事务。
func NewTransaction(doc *Node) *Transaction {
	return &Transaction{before: doc}
}

// Before returns the document the transaction starts from.
func (tr *Transaction) Before() *Node { return tr.before }

// SetCellAttrs 替换 pos 处单元格的全部属性。只改属性不会改变任何节点大小。
func (tr *Transaction) SetCellAttrs(pos int, attrs CellAttrs) *Transaction {
	tr.steps = append(tr.steps, Step{Kind: StepSetCellAttrs, Pos: pos, Attrs: attrs.Clone()})
	return tr
}

// Insert 在插入点 pos 放入一个节点。
func (tr *Transaction) Insert(pos int, node *Node) *Transaction {
	tr.steps = append(tr.steps, Step{Kind: StepInsert, Pos: pos, Node: node})
	return tr
}

// Delete 删除从 pos 开始的节点。
func (tr *Transaction) Delete(pos int) *Transaction {
	tr.steps = append(tr.steps, Step{Kind: StepDelete, Pos: pos})
	return tr
}

// Len returns the number of steps.
func (tr *Transaction) Len() int { return len(tr.steps) }

// Steps returns a copy of the recorded steps.
func (tr *Transaction) Steps() []Step { return append([]Step(nil), tr.steps...) }

// Apply 依次执行所有步骤并返回新文档与位置映射。原文档不会被修改。
func (tr *Transaction) Apply() (*Node, Mapping, error) {
	if tr.before == nil {
		return nil, nil, fmt.Errorf("事务缺少起始文档: %w", ErrNoNode)
	}
	doc := tr.before
	var mapping Mapping
	for i, st := range tr.steps {
		next, m, err := applyStep(doc, st)
		if err != nil {
			return nil, nil, fmt.Errorf("步骤 %d (%s @%d) 执行失败: %w", i, st.Kind, st.Pos, err)
		}
		doc = next
		if m.size != 0 {
			mapping = append(mapping, m)
		}
	}
	return doc, mapping, nil
}

func applyStep(doc *Node, st Step) (*Node, mapEntry, error) {
	switch st.Kind {
	case StepSetCellAttrs:
		node, path, ok := doc.NodeAt(st.Pos)
		if !ok {
			return nil, mapEntry{}, ErrNoNode
		}
		if !node.Type.IsCell() {
			return nil, mapEntry{}, ErrNotCell
		}
		return replaceAt(doc, path, func(n *Node) *Node { return n.withAttrs(st.Attrs) }), mapEntry{}, nil
	case StepInsert:
		if st.Node == nil {
			return nil, mapEntry{}, ErrNoNode
		}
		path, index, ok := doc.boundaryAt(st.Pos)
		if !ok {
			return nil, mapEntry{}, ErrOutOfRange
		}
		next := replaceAt(doc, path, func(parent *Node) *Node {
			content := make([]*Node, 0, len(parent.Content)+1)
			content = append(content, parent.Content[:index]...)
			content = append(content, st.Node)
			content = append(content, parent.Content[index:]...)
			return parent.withContent(content)
		})
		return next, mapEntry{pos: st.Pos, size: st.Node.NodeSize()}, nil
	case StepDelete:
		node, path, ok := doc.NodeAt(st.Pos)
		if !ok {
			return nil, mapEntry{}, ErrNoNode
		}
		parentPath, index := path[:len(path)-1], path[len(path)-1]
		next := replaceAt(doc, parentPath, func(parent *Node) *Node {
			content := make([]*Node, 0, len(parent.Content)-1)
			content = append(content, parent.Content[:index]...)
			content = append(content, parent.Content[index+1:]...)
			return parent.withContent(content)
		})
		return next, mapEntry{pos: st.Pos, size: -node.NodeSize()}, nil
	default:
		return nil, mapEntry{}, fmt.Errorf("未知步骤类型 %d", st.Kind)
	}
}

type mapEntry struct {
	pos  int
	size int // 正数为插入，负数为删除
}

// Mapping 记录结构性步骤造成的位置偏移，用于把旧位置（如选区）映射到新文档。
type Mapping []mapEntry

// Map 依次应用每个偏移。落在被删除区间内的位置收缩到删除点。
func (m Mapping) Map(pos int) int {
	for _, e := range m {
		switch {
		case e.size > 0:
			if pos >= e.pos {
				pos += e.size
			}
		case e.size < 0:
			end := e.pos - e.size
			if pos >= end {
				pos += e.size
			} else if pos > e.pos {
				pos = e.pos
			}
		}
	}
	return pos
}

// MapStart 映射一个节点的起始位置，并报告该节点是否仍然存在。
// 删除区间 [pos, end) 覆盖起点时视为节点已被删除；在起点处插入会把节点推后。
func (m Mapping) MapStart(start int) (int, bool) {
	for _, e := range m {
		switch {
		case e.size > 0:
			if start >= e.pos {
				start += e.size
			}
		case e.size < 0:
			end := e.pos - e.size
			if start >= e.pos && start < end {
				return e.pos, false
			}
			if start >= end {
				start += e.size
			}
		}
	}
	return start, true
}
