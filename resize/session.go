package resize

import (
	"errors"

	"github.com/ByLCY/colgrip/model"
)

var (
	// ErrNoActiveTable 表示当前选区不在任何表格内。
	ErrNoActiveTable = errors.New("resize: no table at selection")
	// ErrStaleSession 表示拖拽过程中表格或目标列已经消失。
	ErrStaleSession = errors.New("resize: session target is gone")
)

// PointerType 区分指针事件阶段。
type PointerType uint8

const (
	PointerDown PointerType = iota
	PointerMove
	PointerUp
)

// HandleTarget 表示事件命中了某一列的手柄。
type HandleTarget struct {
	ColumnIndex int
}

// PointerEvent 是宿主转交的原始指针事件。Handle 为 nil 表示没有命中手柄。
type PointerEvent struct {
	Type    PointerType
	ClientX int
	Handle  *HandleTarget
}

// PointerHandler receives captured pointer events.
type PointerHandler func(PointerEvent)

// Surface 是宿主编辑表面需要提供的能力。引擎只通过 Dispatch 修改文档，
// 除了切换“正在调整”标记和清除环境文本选区外不直接触碰视图。
type Surface interface {
	Doc() *model.Node
	Selection() int
	Dispatch(tr *model.Transaction) error
	SetResizing(on bool)
	ClearSelection()
	// Capture 注册全局 move/up 监听，返回的 release 必须且只会被调用一次。
	Capture(h PointerHandler) (release func())
}

// DragSession 是一次拖拽的临时状态，不写入文档，拖拽结束即丢弃。
type DragSession struct {
	ActiveColumn       int
	StartX             int
	StartWidth         int
	NeighborStartWidth int
	HasNeighbor        bool
	Table              TableRef
	Moves              int // 已提交的 move 次数

	busy      bool
	tableGone bool
	release   func()
}

// Controller 驱动 按下 → 移动 → 抬起 的状态机。
type Controller struct {
	surface Surface
	opts    Options
	session *DragSession
}

// NewController creates a controller bound to a host surface.
func NewController(surface Surface, opts Options) *Controller {
	return &Controller{surface: surface, opts: opts.normalize()}
}

// Options returns the effective constraints.
func (c *Controller) Options() Options { return c.opts }

// Dragging reports whether a session is active.
func (c *Controller) Dragging() bool { return c.session != nil }

// Session 返回当前会话的副本。
func (c *Controller) Session() (DragSession, bool) {
	if c.session == nil {
		return DragSession{}, false
	}
	s := *c.session
	s.release = nil
	return s, true
}

// PointerDown 在命中手柄时开始拖拽，返回事件是否被消费。
// 选区不在表格内时忽略该事件。
func (c *Controller) PointerDown(ev PointerEvent) bool {
	if ev.Type != PointerDown || ev.Handle == nil {
		return false
	}
	if c.session != nil {
		c.end()
	}
	ref, ok := LocateTable(c.surface.Doc(), c.surface.Selection())
	if !ok {
		debugLog.Printf("pointer-down on handle %d ignored: %v", ev.Handle.ColumnIndex, ErrNoActiveTable)
		return false
	}
	col := ev.Handle.ColumnIndex
	widths := ColumnWidths(ref.Node, c.opts.FallbackWidth)
	if col < 0 || col >= len(widths) {
		debugLog.Printf("pointer-down on handle %d ignored: table has %d columns", col, len(widths))
		return false
	}

	s := &DragSession{
		ActiveColumn: col,
		StartX:       ev.ClientX,
		StartWidth:   widths[col],
		Table:        ref,
	}
	if col+1 < len(widths) {
		s.HasNeighbor = true
		s.NeighborStartWidth = widths[col+1]
	}
	c.session = s
	c.surface.SetResizing(true)
	c.surface.ClearSelection()
	s.release = c.surface.Capture(c.handleCaptured)
	return true
}

// Remap 把会话记住的表格起点映射到新文档。宿主每应用一个事务都要调用一次，
// 否则表格被移动后会话会被当作过期而结束。
func (c *Controller) Remap(m model.Mapping) {
	s := c.session
	if s == nil || s.tableGone {
		return
	}
	pos, ok := m.MapStart(s.Table.Pos)
	if !ok {
		s.tableGone = true
		return
	}
	s.Table.Pos = pos
}

func (c *Controller) handleCaptured(ev PointerEvent) {
	switch ev.Type {
	case PointerMove:
		c.PointerMove(ev)
	case PointerUp:
		c.PointerUp(ev)
	}
}

// PointerMove 计算新宽度并以一个事务提交当前列与右邻列。
// 提交期间再次进入的 move 会被丢弃；表格或列消失时静默结束会话。
func (c *Controller) PointerMove(ev PointerEvent) {
	s := c.session
	if s == nil {
		return
	}
	if s.busy {
		debugLog.Printf("move dropped: commit for column %d still in flight", s.ActiveColumn)
		return
	}
	s.busy = true
	defer func() { s.busy = false }()

	c.surface.ClearSelection()

	if s.tableGone {
		debugLog.Printf("aborting drag: table deleted: %v", ErrStaleSession)
		c.end()
		return
	}
	ref, ok := LocateTable(c.surface.Doc(), c.surface.Selection())
	if !ok {
		debugLog.Printf("aborting drag: %v", ErrStaleSession)
		c.end()
		return
	}
	if ref.Pos != s.Table.Pos {
		debugLog.Printf("aborting drag: selection is in table @%d, session table @%d: %v", ref.Pos, s.Table.Pos, ErrStaleSession)
		c.end()
		return
	}
	columns := ref.Node.Child(0).ChildCount()
	if s.ActiveColumn >= columns {
		debugLog.Printf("aborting drag: column %d of %d: %v", s.ActiveColumn, columns, ErrStaleSession)
		c.end()
		return
	}
	s.Table = ref

	updates := c.widthsFor(ev.ClientX - s.StartX)
	if s.HasNeighbor && s.ActiveColumn+1 >= columns {
		debugLog.Printf("neighbor of column %d is gone, committing dragged column only", s.ActiveColumn)
		updates = updates[:1]
	}
	tr, _ := CommitColumnWidths(c.surface.Doc(), ref, updates)
	if err := c.surface.Dispatch(tr); err != nil {
		debugLog.Printf("aborting drag: dispatch rejected: %v", err)
		c.end()
		return
	}
	s.Moves++
}

// widthsFor 根据位移计算写入：当前列 max(min, start+dx)；右邻列反向变化同样的量并受同一下限约束。
// 两侧分别截断，因此一侧触底时总宽度不再守恒。
func (c *Controller) widthsFor(deltaX int) []WidthUpdate {
	s := c.session
	newWidth := max(c.opts.MinWidth, s.StartWidth+deltaX)
	updates := []WidthUpdate{{Column: s.ActiveColumn, Width: newWidth}}
	if s.HasNeighbor {
		grown := newWidth - s.StartWidth
		updates = append(updates, WidthUpdate{
			Column: s.ActiveColumn + 1,
			Width:  max(c.opts.MinWidth, s.NeighborStartWidth-grown),
		})
	}
	return updates
}

// PointerUp 结束拖拽。
func (c *Controller) PointerUp(PointerEvent) { c.end() }

// Cancel 中止当前拖拽（例如宿主卸载了表格）。
func (c *Controller) Cancel() { c.end() }

// end 在所有退出路径上释放监听并复位指示状态。
func (c *Controller) end() {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil
	if release := s.release; release != nil {
		s.release = nil
		release()
	}
	c.surface.SetResizing(false)
}
