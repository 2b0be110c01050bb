package editor

import (
	"fmt"

	"github.com/ByLCY/colgrip/model"
	"github.com/ByLCY/colgrip/resize"
)

// DefaultHistoryLimit 是撤销栈的默认容量。
const DefaultHistoryLimit = 100

// Options 配置编辑器。HistoryLimit 为 0 时使用默认值，负数表示关闭撤销。
type Options struct {
	Resize       resize.Options `json:"resize"`
	HistoryLimit int            `json:"historyLimit"`
}

// State 是编辑器的可见状态：文档加上光标位置。
type State struct {
	Doc       *model.Node
	Selection int
}

// TextRange 是宿主层面的“原生”文本选区，与文档光标无关。拖拽开始时会被清除。
type TextRange struct {
	From, To int
}

// Editor 持有文档状态并实现 resize.Surface，是列宽调整引擎的参考宿主。
type Editor struct {
	state      State
	opt        Options
	ctrl       *resize.Controller
	resizing   bool
	textRange  *TextRange
	captures   map[int]resize.PointerHandler
	nextID     int
	hist       historyState
	dragMarked bool
	dispatches int
	version    int
}

var _ resize.Surface = (*Editor)(nil)

// New 创建编辑器，光标位于文档开头。
func New(doc *model.Node, opt Options) *Editor {
	if doc == nil {
		doc = model.NewDoc()
	}
	if opt.HistoryLimit == 0 {
		opt.HistoryLimit = DefaultHistoryLimit
	}
	e := &Editor{
		state:    State{Doc: doc},
		opt:      opt,
		captures: make(map[int]resize.PointerHandler),
	}
	e.ctrl = resize.NewController(e, opt.Resize)
	return e
}

// State returns the current document and selection.
func (e *Editor) State() State { return e.state }

// Doc implements resize.Surface.
func (e *Editor) Doc() *model.Node { return e.state.Doc }

// Selection implements resize.Surface.
func (e *Editor) Selection() int { return e.state.Selection }

// Controller exposes the resize controller bound to this editor.
func (e *Editor) Controller() *resize.Controller { return e.ctrl }

// Version 每次文档或选区变化时递增。
func (e *Editor) Version() int { return e.version }

// Dispatches returns how many transactions have been applied.
func (e *Editor) Dispatches() int { return e.dispatches }

// SetSelection 移动光标，越界时截断到文档范围内。
func (e *Editor) SetSelection(pos int) {
	pos = e.clamp(pos)
	if pos == e.state.Selection {
		return
	}
	e.state.Selection = pos
	e.version++
}

func (e *Editor) clamp(pos int) int {
	return min(max(pos, 0), e.state.Doc.ContentSize())
}

// Dispatch 原子地应用事务：任一步骤失败时状态保持不变。
// 拖拽期间的连续提交在撤销栈中合并为一条记录。
func (e *Editor) Dispatch(tr *model.Transaction) error {
	if tr == nil {
		return fmt.Errorf("事务为空")
	}
	if tr.Before() != e.state.Doc {
		return fmt.Errorf("事务基于过期的文档")
	}
	next, mapping, err := tr.Apply()
	if err != nil {
		return fmt.Errorf("应用事务失败: %w", err)
	}
	prev := e.state
	widthsOnly := attrsOnly(tr)
	if !e.resizing || !e.dragMarked || !widthsOnly {
		e.recordUndo(prev)
		e.dragMarked = e.resizing && widthsOnly
	}
	e.state = State{Doc: next, Selection: mapping.Map(prev.Selection)}
	e.state.Selection = e.clamp(e.state.Selection)
	e.dispatches++
	e.version++
	e.ctrl.Remap(mapping)
	return nil
}

// attrsOnly 判断事务是否只修改单元格属性。只有这类事务会并入拖拽的撤销记录。
func attrsOnly(tr *model.Transaction) bool {
	for _, st := range tr.Steps() {
		if st.Kind != model.StepSetCellAttrs {
			return false
		}
	}
	return true
}

// SetResizing implements resize.Surface. 调整期间宿主禁止原生文本选择。
func (e *Editor) SetResizing(on bool) {
	if on && !e.resizing {
		e.dragMarked = false
	}
	e.resizing = on
}

// Resizing reports whether a column drag is in progress.
func (e *Editor) Resizing() bool { return e.resizing }

// SelectionSuppressed 与 Resizing 一致：拖拽期间不接受新的原生文本选区。
func (e *Editor) SelectionSuppressed() bool { return e.resizing }

// SelectText 设置原生文本选区；拖拽期间被忽略。
func (e *Editor) SelectText(from, to int) bool {
	if e.SelectionSuppressed() {
		return false
	}
	from, to = e.clamp(from), e.clamp(to)
	if from > to {
		from, to = to, from
	}
	e.textRange = &TextRange{From: from, To: to}
	return true
}

// TextSelection returns the ambient text range, if any.
func (e *Editor) TextSelection() (TextRange, bool) {
	if e.textRange == nil {
		return TextRange{}, false
	}
	return *e.textRange, true
}

// ClearSelection implements resize.Surface.
func (e *Editor) ClearSelection() { e.textRange = nil }

// Capture implements resize.Surface.
func (e *Editor) Capture(h resize.PointerHandler) func() {
	id := e.nextID
	e.nextID++
	e.captures[id] = h
	released := false
	return func() {
		if released {
			return
		}
		released = true
		delete(e.captures, id)
	}
}

// Listeners returns the number of live global pointer captures.
func (e *Editor) Listeners() int { return len(e.captures) }

// Handles 每次调用都从当前状态重新生成手柄。
func (e *Editor) Handles() []resize.Handle {
	return resize.BuildHandles(e.state.Doc, e.state.Selection)
}

// ColumnWidths 返回光标所在表格的有效列宽。
func (e *Editor) ColumnWidths() []int {
	ref, ok := resize.LocateTable(e.state.Doc, e.state.Selection)
	if !ok {
		return nil
	}
	return resize.ColumnWidths(ref.Node, e.ctrl.Options().FallbackWidth)
}

// HandlePointer 路由一个指针事件：按下交给控制器；移动与抬起优先交给已捕获的全局监听。
// 返回事件是否被消费。
func (e *Editor) HandlePointer(ev resize.PointerEvent) bool {
	if ev.Type == resize.PointerDown {
		return e.ctrl.PointerDown(ev)
	}
	if len(e.captures) == 0 {
		return false
	}
	handlers := make([]resize.PointerHandler, 0, len(e.captures))
	for _, h := range e.captures {
		handlers = append(handlers, h)
	}
	for _, h := range handlers {
		h(ev)
	}
	return true
}

// Close 中止进行中的拖拽并释放所有监听。
func (e *Editor) Close() { e.ctrl.Cancel() }
