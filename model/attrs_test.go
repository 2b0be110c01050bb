package model

import "testing"

func TestParseColWidth(t *testing.T) {
	cases := []struct {
		in   string
		want ColWidth
	}{
		{"120", ColWidth{120}},
		{"120,80", ColWidth{120, 80}},
		{" 120 , 80 ", ColWidth{120, 80}},
		{"120,abc,80", ColWidth{120, 80}},
		{"abc", nil},
		{"", nil},
		{",,", nil},
		{"0", nil},
		{"-5", nil},
		{"120,0,-5,80", ColWidth{120, 80}},
	}
	for _, tc := range cases {
		got := ParseColWidth(tc.in)
		if !got.Equal(tc.want) {
			t.Fatalf("ParseColWidth(%q) got=%v want=%v", tc.in, got, tc.want)
		}
		if tc.want == nil && got != nil {
			t.Fatalf("ParseColWidth(%q) 应返回 nil 表示未设置", tc.in)
		}
	}
}

func TestColWidthRoundTrip(t *testing.T) {
	raw := ColWidth{120}.String()
	if raw != "120" {
		t.Fatalf("序列化 [120] 应得到 \"120\"，got=%q", raw)
	}
	if got := ParseColWidth(raw); !got.Equal(ColWidth{120}) {
		t.Fatalf("往返后应为 [120]，got=%v", got)
	}
	var unset ColWidth
	if unset.String() != "" {
		t.Fatalf("未设置的 colwidth 不应输出属性值")
	}
	if ParseColWidth(unset.String()) != nil {
		t.Fatalf("空属性解析后应为 nil")
	}
}

func TestWithColWidthPreservesOtherAttrs(t *testing.T) {
	base := CellAttrs{Background: "#eee", BorderTop: "1px solid red", Extra: map[string]string{"data-x": "1"}}
	next := base.WithColWidth(90)
	if !next.ColWidth.Equal(ColWidth{90}) {
		t.Fatalf("colwidth 未更新: %v", next.ColWidth)
	}
	if next.Background != "#eee" || next.BorderTop != "1px solid red" || next.Extra["data-x"] != "1" {
		t.Fatalf("其他属性应保持不变: %+v", next)
	}
	next.Extra["data-x"] = "2"
	if base.Extra["data-x"] != "1" {
		t.Fatalf("WithColWidth 不应共享 Extra")
	}
}

func TestCellAttrsSetAndPairs(t *testing.T) {
	var a CellAttrs
	for _, kv := range [][2]string{
		{"colwidth", "100,50"},
		{"background", "#fff"},
		{"border-left", "1px solid"},
		{"data-note", "hi"},
		{"colspan", "2"},
	} {
		if err := a.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("Set(%s) 失败: %v", kv[0], err)
		}
	}
	if err := a.Set("rowspan", "zero"); err == nil {
		t.Fatalf("非法 rowspan 应报错")
	}
	pairs := a.Pairs()
	want := [][2]string{
		{"colwidth", "100,50"},
		{"colspan", "2"},
		{"background", "#fff"},
		{"border-left", "1px solid"},
		{"data-note", "hi"},
	}
	if len(pairs) != len(want) {
		t.Fatalf("属性对数量错误: %v", pairs)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Fatalf("属性对[%d] got=%v want=%v", i, pairs[i], want[i])
		}
	}
}

func TestWidthStyle(t *testing.T) {
	if got := (CellAttrs{ColWidth: ColWidth{100, 50}}).WidthStyle(false); got != "width: 150px" {
		t.Fatalf("固定宽度样式错误: %q", got)
	}
	partial := CellAttrs{ColWidth: ColWidth{100, 0}}
	if got := partial.WidthStyle(true); got != "min-width: 100px" {
		t.Fatalf("表头部分宽度应输出 min-width: %q", got)
	}
	if got := partial.WidthStyle(false); got != "" {
		t.Fatalf("普通单元格部分宽度不输出样式: %q", got)
	}
	if got := (CellAttrs{}).WidthStyle(true); got != "" {
		t.Fatalf("未设置宽度不输出样式: %q", got)
	}
}
