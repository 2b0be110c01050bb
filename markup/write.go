package markup

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ByLCY/colgrip/model"
)

const indentUnit = "  "

// Write 把文档序列化为标记文本。colwidth 以逗号拼接的整数列表写出，未设置时省略该属性。
func Write(w io.Writer, doc *Document) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("文档为空")
	}
	name, version := doc.Name, doc.Version
	if name == "" {
		name = "Untitled"
	}
	if version == "" {
		version = "v1"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "doc %s %s {\n", name, version)
	for _, child := range doc.Root.Content {
		writeBlock(&sb, child, 1)
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// String 返回文档的标记文本，主要用于测试与调试。
func String(doc *Document) string {
	var sb strings.Builder
	if err := Write(&sb, doc); err != nil {
		return ""
	}
	return sb.String()
}

func writeBlock(sb *strings.Builder, n *model.Node, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	switch n.Type {
	case model.TypeParagraph:
		fmt.Fprintf(sb, "%sparagraph { %s }\n", indent, strconv.Quote(n.TextContent()))
	case model.TypeTable:
		fmt.Fprintf(sb, "%stable {\n", indent)
		for _, row := range n.Content {
			fmt.Fprintf(sb, "%srow {\n", indent+indentUnit)
			for _, cell := range row.Content {
				writeCell(sb, cell, depth+2)
			}
			fmt.Fprintf(sb, "%s}\n", indent+indentUnit)
		}
		fmt.Fprintf(sb, "%s}\n", indent)
	}
}

func writeCell(sb *strings.Builder, cell *model.Node, depth int) {
	sb.WriteString(strings.Repeat(indentUnit, depth))
	sb.WriteString(string(cell.Type))
	for _, kv := range cell.Attrs.Pairs() {
		fmt.Fprintf(sb, " %s=%s", kv[0], strconv.Quote(kv[1]))
	}
	sb.WriteString(" {")
	for i, p := range cell.Content {
		if i > 0 {
			sb.WriteString(";")
		}
		sb.WriteString(" ")
		sb.WriteString(strconv.Quote(p.TextContent()))
	}
	sb.WriteString(" }\n")
}
