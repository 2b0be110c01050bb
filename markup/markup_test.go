package markup

import (
	"strings"
	"testing"

	"github.com/ByLCY/colgrip/model"
)

const inventory = `doc Inventory v1 {
  paragraph { "Stock for ${site}" }
  table {
    row {
      header colwidth="120" background="#eee" { "Name" }
      header { "Qty" }
    }
    row {
      cell colwidth="120,x" data-sku="B-1" { "${items[0].name}" }
      cell { "4"; "boxes" }
    }
  }
}
`

func TestLoadBuildsTree(t *testing.T) {
	doc, err := LoadString(inventory, LoadOptions{Data: map[string]any{
		"site":  "North",
		"items": []any{map[string]any{"name": "Bolt"}},
	}})
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if doc.Name != "Inventory" || doc.Version != "v1" {
		t.Fatalf("文件头错误: %+v", doc)
	}
	root := doc.Root
	if root.ChildCount() != 2 {
		t.Fatalf("顶层节点数量错误: %d", root.ChildCount())
	}
	if got := root.Child(0).TextContent(); got != "Stock for North" {
		t.Fatalf("段落插值错误: %q", got)
	}
	table := root.Child(1)
	header := table.Child(0).Child(0)
	if header.Type != model.TypeHeader || !header.Attrs.ColWidth.Equal(model.ColWidth{120}) || header.Attrs.Background != "#eee" {
		t.Fatalf("表头属性错误: %+v", header.Attrs)
	}
	if table.Child(0).Child(1).Attrs.ColWidth != nil {
		t.Fatalf("未声明的 colwidth 应为 nil")
	}
	bolt := table.Child(1).Child(0)
	if !bolt.Attrs.ColWidth.Equal(model.ColWidth{120}) {
		t.Fatalf("非数字片段应被丢弃: %v", bolt.Attrs.ColWidth)
	}
	if bolt.Attrs.Extra["data-sku"] != "B-1" {
		t.Fatalf("未知属性应保存在 Extra: %+v", bolt.Attrs.Extra)
	}
	if got := bolt.TextContent(); got != "Bolt" {
		t.Fatalf("单元格插值错误: %q", got)
	}
	if n := table.Child(1).Child(1).ChildCount(); n != 2 {
		t.Fatalf("多个文本字面量应生成多个段落，got=%d", n)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	doc, err := LoadString(inventory, LoadOptions{})
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	out := String(doc)
	if !strings.Contains(out, `header colwidth="120" background="#eee" { "Name" }`) {
		t.Fatalf("表头序列化错误:\n%s", out)
	}
	if !strings.Contains(out, `header { "Qty" }`) {
		t.Fatalf("未设置的 colwidth 不应输出属性:\n%s", out)
	}
	if !strings.Contains(out, `cell { "4"; "boxes" }`) {
		t.Fatalf("多段落单元格序列化错误:\n%s", out)
	}
	again, err := LoadString(out, LoadOptions{})
	if err != nil {
		t.Fatalf("重新加载失败: %v\n%s", err, out)
	}
	if !again.Root.Equal(doc.Root) {
		t.Fatalf("往返后文档不一致:\n%s", out)
	}
}

func TestLoadRejectsInvalidStructure(t *testing.T) {
	cases := map[string]string{
		"顶层 row":      `doc X v1 { row { cell { "a" } } }`,
		"表格内文本":      `doc X v1 { table { "a" } }`,
		"空行":         `doc X v1 { table { row { } } }`,
		"行上属性":       `doc X v1 { table { row colwidth="1" { cell { "a" } } } }`,
		"非法 colspan": `doc X v1 { table { row { cell colspan="0" { "a" } } } }`,
		"语法错误":       `doc X v1 { table {`,
	}
	for name, src := range cases {
		if _, err := LoadString(src, LoadOptions{}); err == nil {
			t.Fatalf("%s: 应返回错误", name)
		}
	}
}

func TestEmptyCellGetsParagraph(t *testing.T) {
	doc, err := LoadString(`doc X v1 { table { row { cell } } }`, LoadOptions{})
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	cell := doc.Root.Child(0).Child(0).Child(0)
	if cell.ChildCount() != 1 || cell.Child(0).Type != model.TypeParagraph {
		t.Fatalf("空单元格应包含一个空段落")
	}
	if cell.NodeSize() != 4 {
		t.Fatalf("空单元格大小应为 4，got=%d", cell.NodeSize())
	}
}

func TestLoadDropsNonPositiveColWidth(t *testing.T) {
	doc, err := LoadString(`doc Sheet v1 {
  table {
    row { cell colwidth="-5" { "a" } cell colwidth="0,40" { "b" } }
  }
}
`, LoadOptions{})
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	row := doc.Root.Child(0).Child(0)
	if row.Child(0).Attrs.ColWidth != nil {
		t.Fatalf("负数宽度应视为未设置: %v", row.Child(0).Attrs.ColWidth)
	}
	if !row.Child(1).Attrs.ColWidth.Equal(model.ColWidth{40}) {
		t.Fatalf("0 应被丢弃: %v", row.Child(1).Attrs.ColWidth)
	}
	if out := String(doc); strings.Contains(out, `colwidth="-5"`) {
		t.Fatalf("无效宽度不应写回:\n%s", out)
	}
}
