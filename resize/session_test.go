package resize

import (
	"errors"
	"testing"

	"github.com/ByLCY/colgrip/model"
)

// fakeSurface 记录引擎对宿主的所有调用。
type fakeSurface struct {
	doc *model.Node
	sel int

	dispatches int
	cleared    int
	resizing   bool
	captures   int
	releases   int
	handler    PointerHandler

	onDispatch func()
	reject     error
}

func (f *fakeSurface) Doc() *model.Node { return f.doc }
func (f *fakeSurface) Selection() int   { return f.sel }

func (f *fakeSurface) Dispatch(tr *model.Transaction) error {
	if f.reject != nil {
		return f.reject
	}
	next, mapping, err := tr.Apply()
	if err != nil {
		return err
	}
	f.doc = next
	f.sel = mapping.Map(f.sel)
	f.dispatches++
	if f.onDispatch != nil {
		f.onDispatch()
	}
	return nil
}

func (f *fakeSurface) SetResizing(on bool) { f.resizing = on }
func (f *fakeSurface) ClearSelection()     { f.cleared++ }

func (f *fakeSurface) Capture(h PointerHandler) func() {
	f.captures++
	f.handler = h
	return func() {
		f.releases++
		f.handler = nil
	}
}

func (f *fakeSurface) widths() []int {
	ref, ok := LocateTable(f.doc, f.sel)
	if !ok {
		return nil
	}
	return ColumnWidths(ref.Node, DefaultFallbackWidth)
}

func down(col, x int) PointerEvent {
	return PointerEvent{Type: PointerDown, ClientX: x, Handle: &HandleTarget{ColumnIndex: col}}
}

func move(x int) PointerEvent { return PointerEvent{Type: PointerMove, ClientX: x} }
func up(x int) PointerEvent   { return PointerEvent{Type: PointerUp, ClientX: x} }

func TestDragThreeByThree(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(3, 3), sel: tablePos + 2}
	c := NewController(f, Options{})

	if got := f.widths(); len(got) != 3 || got[0] != 50 || got[1] != 50 || got[2] != 50 {
		t.Fatalf("初始宽度错误: %v", got)
	}
	if hs := BuildHandles(f.doc, f.sel); len(hs) != 2 {
		t.Fatalf("应有 2 个手柄, got=%d", len(hs))
	}

	if !c.PointerDown(down(0, 200)) {
		t.Fatalf("按下手柄应开始拖拽")
	}
	if !f.resizing || f.captures != 1 || f.cleared == 0 {
		t.Fatalf("开始拖拽应设置指示状态并注册监听: %+v", f)
	}
	s, ok := c.Session()
	if !ok || s.StartWidth != 50 || s.NeighborStartWidth != 50 || !s.HasNeighbor {
		t.Fatalf("会话初始状态错误: %+v", s)
	}

	f.handler(move(230))
	f.handler(up(230))

	got := f.widths()
	if got[0] != 80 || got[1] != 25 || got[2] != 50 {
		t.Fatalf("期望 [80 25 50], got=%v", got)
	}
	if f.dispatches != 1 {
		t.Fatalf("一次 move 只应 dispatch 一次, got=%d", f.dispatches)
	}
	if f.resizing || f.releases != 1 || c.Dragging() {
		t.Fatalf("抬起后应复位并释放监听")
	}
	table := f.doc.Child(1)
	for r := 0; r < 3; r++ {
		for col, want := range []int{80, 25} {
			if w, _ := table.Child(r).Child(col).Attrs.ColWidth.First(); w != want {
				t.Fatalf("第 %d 行第 %d 列 got=%d want=%d", r, col, w, want)
			}
		}
		if table.Child(r).Child(2).Attrs.ColWidth != nil {
			t.Fatalf("第三列不应被写入")
		}
	}
}

// 当前列触底、右邻列按实际变化量放大。按 max(min, neighborStart-(new-start)) 计算，
// [100,100] 左拖 1000 得到 [25,175]，而不是两列都变为 25 的 [25,25]。
func TestDragLeftClampsActiveColumnOnly(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(2, 2, 100, 100), sel: tablePos}
	c := NewController(f, Options{})
	c.PointerDown(down(0, 1000))
	c.PointerMove(move(0))
	c.PointerUp(up(0))

	got := f.widths()
	if got[0] != DefaultMinWidth {
		t.Fatalf("当前列应截断到最小宽度, got=%v", got)
	}
	// 右邻列只按当前列实际变化量反向调整：100 - (25 - 100)。
	if got[1] != 175 {
		t.Fatalf("右邻列应为 175, got=%v", got)
	}
}

func TestDragRightClampsNeighbor(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(1, 2, 100, 100), sel: tablePos}
	c := NewController(f, Options{})
	c.PointerDown(down(0, 0))
	c.PointerMove(move(1000))
	if got := f.widths(); got[0] != 1100 || got[1] != DefaultMinWidth {
		t.Fatalf("期望 [1100 25], got=%v", got)
	}
}

func TestMovesAreRelativeToDragStart(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(2, 3, 100, 100, 100), sel: tablePos}
	c := NewController(f, Options{})
	c.PointerDown(down(1, 10))
	for _, x := range []int{20, 40, 5} {
		c.PointerMove(move(x))
	}
	got := f.widths()
	if got[0] != 100 || got[1] != 95 || got[2] != 105 {
		t.Fatalf("期望 [100 95 105], got=%v", got)
	}
	s, _ := c.Session()
	if s.Moves != 3 || f.dispatches != 3 {
		t.Fatalf("每次 move 应提交一次: moves=%d dispatches=%d", s.Moves, f.dispatches)
	}
}

func TestDragLastColumnHasNoNeighbor(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(2, 3), sel: tablePos}
	c := NewController(f, Options{})
	if !c.PointerDown(down(2, 0)) {
		t.Fatalf("最后一列也可以开始拖拽")
	}
	c.PointerMove(move(15))
	if got := f.widths(); got[0] != 50 || got[1] != 50 || got[2] != 65 {
		t.Fatalf("期望 [50 50 65], got=%v", got)
	}
}

func TestPointerDownIgnoredOutsideTable(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(2, 3), sel: 2}
	c := NewController(f, Options{})
	if c.PointerDown(down(0, 0)) {
		t.Fatalf("选区不在表格内时应忽略")
	}
	if f.captures != 0 || f.resizing || c.Dragging() {
		t.Fatalf("忽略的事件不应产生副作用")
	}
	if c.PointerDown(PointerEvent{Type: PointerDown}) {
		t.Fatalf("未命中手柄的按下不应被消费")
	}
	f.sel = tablePos
	if c.PointerDown(down(7, 0)) {
		t.Fatalf("越界列应被忽略")
	}
}

func TestReentrantMoveDropped(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(2, 2), sel: tablePos}
	c := NewController(f, Options{})
	nested := 0
	f.onDispatch = func() {
		nested++
		c.PointerMove(move(500))
	}
	c.PointerDown(down(0, 0))
	c.PointerMove(move(10))
	if f.dispatches != 1 || nested != 1 {
		t.Fatalf("提交期间的 move 应被丢弃: dispatches=%d", f.dispatches)
	}
	if got := f.widths(); got[0] != 60 {
		t.Fatalf("应只提交外层 move: %v", got)
	}
	f.onDispatch = nil
	c.PointerMove(move(20))
	if f.dispatches != 2 {
		t.Fatalf("提交结束后 move 应恢复处理")
	}
}

func TestDragAbortsWhenTableDeleted(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(2, 2), sel: tablePos}
	c := NewController(f, Options{})
	c.PointerDown(down(0, 0))

	next, mapping, err := model.NewTransaction(f.doc).Delete(tablePos).Apply()
	if err != nil {
		t.Fatalf("删除表格失败: %v", err)
	}
	f.doc, f.sel = next, mapping.Map(f.sel)
	c.Remap(mapping)

	c.PointerMove(move(40))
	if f.dispatches != 0 {
		t.Fatalf("表格消失后不应再提交")
	}
	if c.Dragging() || f.resizing || f.releases != 1 {
		t.Fatalf("会话应结束并释放监听: dragging=%v resizing=%v releases=%d", c.Dragging(), f.resizing, f.releases)
	}
	c.PointerUp(up(40))
	if f.releases != 1 {
		t.Fatalf("监听只能释放一次")
	}
}

// 两个相邻表格 [A][B]：B 在拖拽中被删除后，选区映射到 A 的末尾，仍能定位到 A，
// 但会话不能把宽度写进 A。
func TestDragAbortsWhenTableDeletedNextToAnother(t *testing.T) {
	a := tableDoc(2, 2).Child(1)
	b := tableDoc(2, 2).Child(1)
	posB := a.NodeSize()
	f := &fakeSurface{doc: model.NewDoc(a, b), sel: posB + 1}
	c := NewController(f, Options{})
	if !c.PointerDown(down(0, 0)) {
		t.Fatalf("应在表格 B 中开始拖拽")
	}

	next, mapping, err := model.NewTransaction(f.doc).Delete(posB).Apply()
	if err != nil {
		t.Fatalf("删除表格 B 失败: %v", err)
	}
	f.doc, f.sel = next, mapping.Map(f.sel)
	c.Remap(mapping)
	if ref, ok := LocateTable(f.doc, f.sel); !ok || ref.Pos != 0 {
		t.Fatalf("选区应落在表格 A 的末尾: %+v ok=%v", ref, ok)
	}

	c.PointerMove(move(30))
	if f.dispatches != 0 {
		t.Fatalf("不应向表格 A 提交, dispatches=%d", f.dispatches)
	}
	if got := f.widths(); got[0] != 50 || got[1] != 50 {
		t.Fatalf("表格 A 不应被修改: %v", got)
	}
	if c.Dragging() || f.resizing || f.releases != 1 {
		t.Fatalf("会话应结束并释放监听")
	}
}

func TestDragAbortsWhenSelectionMovesToAnotherTable(t *testing.T) {
	a := tableDoc(1, 2).Child(1)
	b := tableDoc(1, 2).Child(1)
	posB := a.NodeSize()
	f := &fakeSurface{doc: model.NewDoc(a, b), sel: posB + 1}
	c := NewController(f, Options{})
	c.PointerDown(down(0, 0))
	f.sel = 1
	c.PointerMove(move(30))
	if f.dispatches != 0 || c.Dragging() {
		t.Fatalf("选区移到其他表格后应结束会话")
	}
}

func TestDragFollowsMovedTable(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(2, 2), sel: tablePos + 1}
	c := NewController(f, Options{})
	c.PointerDown(down(0, 0))

	next, mapping, _ := model.NewTransaction(f.doc).Insert(0, model.NewParagraph("moved")).Apply()
	f.doc, f.sel = next, mapping.Map(f.sel)
	c.Remap(mapping)

	c.PointerMove(move(30))
	if f.dispatches != 1 {
		t.Fatalf("表格移动后应按新位置提交")
	}
	if got := f.widths(); got[0] != 80 || got[1] != 25 {
		t.Fatalf("期望 [80 25], got=%v", got)
	}
	s, _ := c.Session()
	if s.Table.Pos != tablePos+7 {
		t.Fatalf("会话应记录重新定位后的表格, got=%d", s.Table.Pos)
	}
}

func TestDragAbortsWhenColumnRemoved(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(1, 3), sel: tablePos}
	c := NewController(f, Options{})
	c.PointerDown(down(2, 0))
	f.doc = tableDoc(1, 2)
	c.PointerMove(move(10))
	if c.Dragging() || f.dispatches != 0 {
		t.Fatalf("目标列消失时应结束会话")
	}
}

func TestDragCommitsOnlyActiveColumnWhenNeighborRemoved(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(1, 2), sel: tablePos}
	c := NewController(f, Options{})
	c.PointerDown(down(0, 0))
	f.doc = tableDoc(1, 1)
	c.PointerMove(move(10))
	if f.dispatches != 1 {
		t.Fatalf("右邻列消失时仍应提交当前列")
	}
	if got := f.widths(); len(got) != 1 || got[0] != 60 {
		t.Fatalf("期望 [60], got=%v", got)
	}
}

func TestDispatchRejectedEndsSession(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(1, 2), sel: tablePos, reject: errors.New("read-only")}
	c := NewController(f, Options{})
	c.PointerDown(down(0, 0))
	c.PointerMove(move(10))
	if c.Dragging() || f.releases != 1 {
		t.Fatalf("dispatch 被拒绝时应结束会话")
	}
}

func TestSecondPointerDownReplacesSession(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(1, 3), sel: tablePos}
	c := NewController(f, Options{})
	c.PointerDown(down(0, 0))
	c.PointerDown(down(1, 0))
	if f.captures != 2 || f.releases != 1 {
		t.Fatalf("旧会话的监听应先释放: captures=%d releases=%d", f.captures, f.releases)
	}
	s, _ := c.Session()
	if s.ActiveColumn != 1 {
		t.Fatalf("应以新手柄开始会话")
	}
	c.Cancel()
	if f.releases != 2 || f.resizing {
		t.Fatalf("Cancel 应释放监听")
	}
}

func TestCustomMinWidth(t *testing.T) {
	f := &fakeSurface{doc: tableDoc(1, 2, 100, 100), sel: tablePos}
	c := NewController(f, Options{MinWidth: 40})
	c.PointerDown(down(0, 0))
	c.PointerMove(move(-90))
	if got := f.widths(); got[0] != 40 || got[1] != 160 {
		t.Fatalf("期望 [40 160], got=%v", got)
	}
}

// 两侧都未触底时，一对列的宽度之和保持不变；右邻列触底时总和只会增加，增量等于截断量。
// 每次 move 都相对按下位置计算，因此一串 move 之后的结果只取决于最后一次位移。
func FuzzDragConservesPairWidth(f *testing.F) {
	f.Add(100, 100, []byte{30})
	f.Add(50, 50, []byte{0x80, 0x10, 0xf0})
	f.Add(50, 50, []byte{0x7f, 0x7f, 0x7f, 0x7f})
	f.Add(10, 300, []byte{5, 250, 3})
	f.Fuzz(func(t *testing.T, a, b int, steps []byte) {
		a = 1 + mod(a, 1000)
		b = 1 + mod(b, 1000)
		if len(steps) > 16 {
			steps = steps[:16]
		}
		surface := &fakeSurface{doc: tableDoc(2, 2, a, b), sel: tablePos}
		c := NewController(surface, Options{})
		c.PointerDown(down(0, 0))
		dx := 0
		for _, step := range steps {
			// 每个字节是一次相对上一次位置的移动，范围 [-1280, 1270]。
			dx += int(int8(step)) * 10
			c.PointerMove(move(dx))
		}
		c.PointerUp(up(dx))
		if c.Dragging() || surface.releases != 1 {
			t.Fatalf("抬起后应结束会话")
		}
		if len(steps) == 0 {
			if surface.dispatches != 0 {
				t.Fatalf("没有 move 时不应提交")
			}
			return
		}
		if surface.dispatches != len(steps) {
			t.Fatalf("每次 move 应提交一次: %d != %d", surface.dispatches, len(steps))
		}

		got := surface.widths()
		w0, w1 := got[0], got[1]
		if w0 < DefaultMinWidth || w1 < DefaultMinWidth {
			t.Fatalf("宽度低于下限: %v", got)
		}
		rawNeighbor := b - (w0 - a)
		deficit := w1 - rawNeighbor
		if deficit < 0 {
			t.Fatalf("右邻列不应被放大: raw=%d got=%d", rawNeighbor, w1)
		}
		if w0+w1 != a+b+deficit {
			t.Fatalf("宽度和 %d 与起始 %d 的差应等于截断量 %d", w0+w1, a+b, deficit)
		}
	})
}

func mod(v, n int) int { return (v%n + n) % n }
