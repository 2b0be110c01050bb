package terminal

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/colgrip/editor"
	"github.com/ByLCY/colgrip/layout"
	"github.com/ByLCY/colgrip/model"
	"github.com/ByLCY/colgrip/resize"
)

// Terminal coordinates: row 0 is the status line, the table's top border sits on
// tableTop and each document row takes one line below it.
const tableTop = 1

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHandle  = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue).Bold(true)
	styleHeader  = tcell.StyleDefault.Bold(true)
	styleStatus  = tcell.StyleDefault.Reverse(true)
)

// Host renders the table under the cursor and turns mouse drags on column
// boundaries into resize pointer events.
type Host struct {
	screen tcell.Screen
	ed     *editor.Editor
	opts   layout.Options

	grid    *grid
	pressed bool
	message string
}

// grid is the terminal projection of the active table.
type grid struct {
	table  *layout.TableBox
	widths []int // cells per column
	lefts  []int // x of the first text cell of each column
}

// boundary returns the x of the border right of column i.
func (g *grid) boundary(i int) int { return g.lefts[i] + g.widths[i] }

func (g *grid) bottom() int { return tableTop + len(g.table.Rows) + 1 }

// New creates a host bound to an initialized screen.
func New(screen tcell.Screen, ed *editor.Editor, opts layout.Options) *Host {
	if opts.PixelsPerCell <= 0 {
		opts.PixelsPerCell = layout.DefaultPixelsPerCell
	}
	return &Host{screen: screen, ed: ed, opts: opts}
}

// Run draws and processes events until the user quits.
func (h *Host) Run() error {
	h.screen.EnableMouse()
	defer h.screen.DisableMouse()
	defer h.ed.Close()
	for {
		if err := h.Draw(); err != nil {
			return err
		}
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if h.HandleEvent(ev) {
			return nil
		}
	}
}

// Draw re-derives the layout from the editor state and paints it.
func (h *Host) Draw() error {
	res, err := layout.Build(h.ed.Doc(), h.ed.Selection(), h.opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	h.screen.Clear()
	h.grid = nil
	if table, ok := res.ActiveTable(); ok {
		h.grid = h.project(table)
		h.drawTable(h.grid)
	} else {
		h.drawParagraphs(res)
	}
	h.drawStatus()
	h.screen.Show()
	return nil
}

func (h *Host) project(table *layout.TableBox) *grid {
	g := &grid{table: table}
	x := 1
	for _, w := range table.ColumnWidths {
		cells := max(1, int(math.Round(w/float64(h.opts.PixelsPerCell))))
		g.lefts = append(g.lefts, x)
		g.widths = append(g.widths, cells)
		x += cells + 1
	}
	return g
}

func (h *Host) drawTable(g *grid) {
	n := len(g.widths)
	right := g.boundary(n - 1)
	for x := 0; x <= right; x++ {
		h.screen.SetContent(x, tableTop, '─', nil, styleBorder)
		h.screen.SetContent(x, g.bottom(), '─', nil, styleBorder)
	}
	for r, row := range g.table.Rows {
		y := tableTop + 1 + r
		h.screen.SetContent(0, y, '│', nil, styleBorder)
		for _, cell := range row.Cells {
			last := min(cell.Column+cell.Span-1, n-1)
			if cell.Column >= n {
				continue
			}
			width := g.boundary(last) - g.lefts[cell.Column]
			style := styleDefault
			if cell.Header {
				style = styleHeader
			}
			text := cell.Text.Content
			if len(cell.Text.Lines) > 0 {
				text = cell.Text.Lines[0].Content
			}
			h.drawText(g.lefts[cell.Column], y, width, text, style)
		}
		for i := 0; i < n; i++ {
			ch, style := '│', styleBorder
			if i < n-1 {
				ch, style = '┃', styleHandle
			}
			h.screen.SetContent(g.boundary(i), y, ch, nil, style)
		}
	}
}

func (h *Host) drawParagraphs(res *layout.Result) {
	w, _ := h.screen.Size()
	for i, p := range res.Paragraphs {
		h.drawText(0, tableTop+i, w, p.Content, styleDefault)
	}
}

// drawText writes s clipped to width display cells.
func (h *Host) drawText(x, y, width int, s string, style tcell.Style) {
	if width <= 0 {
		return
	}
	s = runewidth.Truncate(s, width, "…")
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		h.screen.SetContent(x, y, r, nil, style)
		x += rw
	}
}

func (h *Host) drawStatus() {
	w, _ := h.screen.Size()
	status := h.message
	if status == "" {
		if widths := h.ed.ColumnWidths(); widths != nil {
			status = fmt.Sprintf("widths %v  edits %d", widths, h.ed.Dispatches())
		} else {
			status = "no table at cursor  (↑/↓ jump to a table)"
		}
		if h.ed.Resizing() {
			status = "resizing  " + status
		}
	}
	for x := 0; x < w; x++ {
		h.screen.SetContent(x, 0, ' ', nil, styleStatus)
	}
	h.drawText(0, 0, w, status, styleStatus)
}

// HandleEvent processes one screen event and reports whether to quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.handleKey(ev)
	case *tcell.EventMouse:
		h.handleMouse(ev)
	case *tcell.EventResize:
		h.screen.Sync()
	}
	return false
}

func (h *Host) handleKey(ev *tcell.EventKey) bool {
	h.message = ""
	switch ev.Key() {
	case tcell.KeyEsc, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		h.jumpTable(-1)
	case tcell.KeyDown:
		h.jumpTable(1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'u':
			if !h.ed.Undo() {
				h.message = "nothing to undo"
			}
		case 'r':
			if !h.ed.Redo() {
				h.message = "nothing to redo"
			}
		}
	}
	return false
}

// jumpTable moves the cursor into the previous or next table.
func (h *Host) jumpTable(dir int) {
	doc, sel := h.ed.Doc(), h.ed.Selection()
	var starts []int
	doc.ForEachChild(-1, func(child *model.Node, pos, _ int) bool {
		if child.Type == model.TypeTable {
			starts = append(starts, pos)
		}
		return true
	})
	current := -1
	if ref, ok := resize.LocateTable(doc, sel); ok {
		current = ref.Pos
	}
	target := -1
	if dir > 0 {
		for _, p := range starts {
			if p > current && (current >= 0 || p >= sel) {
				target = p
				break
			}
		}
	} else {
		for i := len(starts) - 1; i >= 0; i-- {
			if (current >= 0 && starts[i] < current) || (current < 0 && starts[i] < sel) {
				target = starts[i]
				break
			}
		}
	}
	if target < 0 {
		h.message = "no more tables"
		return
	}
	h.ed.SetSelection(target + 1)
}

func (h *Host) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	down := ev.Buttons()&tcell.Button1 != 0
	clientX := x * h.opts.PixelsPerCell

	switch {
	case down && !h.pressed:
		h.pressed = true
		if col, ok := h.handleAt(x, y); ok {
			h.ed.HandlePointer(resize.PointerEvent{
				Type:    resize.PointerDown,
				ClientX: clientX,
				Handle:  &resize.HandleTarget{ColumnIndex: col},
			})
			return
		}
		h.placeCursor(x, y)
	case down && h.pressed:
		h.ed.HandlePointer(resize.PointerEvent{Type: resize.PointerMove, ClientX: clientX})
	case !down && h.pressed:
		h.pressed = false
		h.ed.HandlePointer(resize.PointerEvent{Type: resize.PointerUp, ClientX: clientX})
	}
}

// handleAt hit-tests the internal column boundaries of the drawn table.
func (h *Host) handleAt(x, y int) (int, bool) {
	g := h.grid
	if g == nil || y <= tableTop || y >= g.bottom() {
		return 0, false
	}
	for i := 0; i < len(g.widths)-1; i++ {
		if x == g.boundary(i) {
			return i, true
		}
	}
	return 0, false
}

// placeCursor moves the document cursor into the clicked cell.
func (h *Host) placeCursor(x, y int) {
	g := h.grid
	if g == nil || y <= tableTop || y >= g.bottom() {
		return
	}
	row := g.table.Rows[y-tableTop-1]
	for _, cell := range row.Cells {
		if cell.Column >= len(g.widths) {
			continue
		}
		last := min(cell.Column+cell.Span-1, len(g.widths)-1)
		if x >= g.lefts[cell.Column] && x < g.boundary(last) {
			h.ed.SetSelection(cell.Pos + 1)
			return
		}
	}
}
