package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/ByLCY/colgrip/binding"
	"github.com/ByLCY/colgrip/dsl"
	"github.com/ByLCY/colgrip/model"
)

// Document 是加载后的标记文件：文件头信息加上文档树。
type Document struct {
	Name    string
	Version string
	Root    *model.Node
}

// LoadOptions 控制加载阶段的可选行为。
type LoadOptions struct {
	// Data 非空时，文本中的 ${path} 会按 binding.Interpolate 规则替换。
	Data any
}

// Load 解析标记文本并构建文档树。
func Load(r io.Reader, opts LoadOptions) (*Document, error) {
	ast, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析标记失败: %w", err)
	}
	return Build(ast, opts)
}

// LoadString 是 Load 的字符串版本。
func LoadString(input string, opts LoadOptions) (*Document, error) {
	return Load(strings.NewReader(input), opts)
}

// Build 把语法树转换为文档树。
func Build(ast *dsl.Document, opts LoadOptions) (*Document, error) {
	if ast == nil || ast.Body == nil {
		return nil, fmt.Errorf("文档为空")
	}
	b := builder{data: opts.Data}
	var children []*model.Node
	for _, st := range ast.Body.Statements {
		if st.Text != nil {
			children = append(children, model.NewParagraph(b.text(st.Text)))
			continue
		}
		n, err := b.block(st.Node)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return &Document{
		Name:    ast.Name,
		Version: ast.Version,
		Root:    model.NewDoc(children...),
	}, nil
}

type builder struct {
	data any
}

func (b builder) text(lit *dsl.TextLiteral) string {
	return binding.Interpolate(string(lit.Value), b.data)
}

// block 处理文档顶层允许出现的节点：段落与表格。
func (b builder) block(n *dsl.NodeDecl) (*model.Node, error) {
	switch model.NodeType(n.Kind) {
	case model.TypeParagraph:
		return b.paragraph(n)
	case model.TypeTable:
		return b.table(n)
	default:
		return nil, fmt.Errorf("%s: 顶层不支持节点 %q", n.Pos, n.Kind)
	}
}

func (b builder) paragraph(n *dsl.NodeDecl) (*model.Node, error) {
	if err := noAttrs(n); err != nil {
		return nil, err
	}
	var parts []string
	for _, st := range n.Children() {
		if st.Text == nil {
			return nil, fmt.Errorf("%s: paragraph 只能包含文本", n.Pos)
		}
		parts = append(parts, b.text(st.Text))
	}
	return model.NewParagraph(strings.Join(parts, "")), nil
}

func (b builder) table(n *dsl.NodeDecl) (*model.Node, error) {
	if err := noAttrs(n); err != nil {
		return nil, err
	}
	var rows []*model.Node
	for _, st := range n.Children() {
		if st.Node == nil || st.Node.Kind != string(model.TypeRow) {
			return nil, fmt.Errorf("%s: table 只能包含 row", n.Pos)
		}
		row, err := b.row(st.Node)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: table 至少需要一行", n.Pos)
	}
	return model.NewTable(rows...), nil
}

func (b builder) row(n *dsl.NodeDecl) (*model.Node, error) {
	if err := noAttrs(n); err != nil {
		return nil, err
	}
	var cells []*model.Node
	for _, st := range n.Children() {
		if st.Node == nil || !model.NodeType(st.Node.Kind).IsCell() {
			return nil, fmt.Errorf("%s: row 只能包含 cell 或 header", n.Pos)
		}
		cell, err := b.cell(st.Node)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("%s: row 中至少需要一个单元格", n.Pos)
	}
	return model.NewRow(cells...), nil
}

// cell 中的每个文本字面量成为一个段落；没有内容时放一个空段落。
func (b builder) cell(n *dsl.NodeDecl) (*model.Node, error) {
	var attrs model.CellAttrs
	for _, a := range n.Attrs {
		if err := attrs.Set(a.Key, string(a.Value)); err != nil {
			return nil, fmt.Errorf("%s: %w", a.Pos, err)
		}
	}
	var content []*model.Node
	for _, st := range n.Children() {
		switch {
		case st.Text != nil:
			content = append(content, model.NewParagraph(b.text(st.Text)))
		case st.Node != nil && st.Node.Kind == string(model.TypeParagraph):
			p, err := b.paragraph(st.Node)
			if err != nil {
				return nil, err
			}
			content = append(content, p)
		default:
			return nil, fmt.Errorf("%s: %s 只能包含文本或 paragraph", n.Pos, n.Kind)
		}
	}
	if len(content) == 0 {
		content = []*model.Node{model.NewParagraph("")}
	}
	return &model.Node{Type: model.NodeType(n.Kind), Attrs: attrs, Content: content}, nil
}

func noAttrs(n *dsl.NodeDecl) error {
	if len(n.Attrs) > 0 {
		return fmt.Errorf("%s: %s 不支持属性 %q", n.Attrs[0].Pos, n.Kind, n.Attrs[0].Key)
	}
	return nil
}
