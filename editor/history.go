package editor

type historyState struct {
	undo []State
	redo []State
}

func (e *Editor) recordUndo(prev State) {
	limit := e.opt.HistoryLimit
	if limit <= 0 {
		return
	}
	e.hist.undo = append(e.hist.undo, prev)
	if len(e.hist.undo) > limit {
		e.hist.undo = e.hist.undo[len(e.hist.undo)-limit:]
	}
	e.hist.redo = nil
}

func (e *Editor) CanUndo() bool { return len(e.hist.undo) > 0 }

func (e *Editor) CanRedo() bool { return len(e.hist.redo) > 0 }

// Undo 恢复上一个状态。拖拽进行中时拒绝，避免会话指向被撤销的表格。
func (e *Editor) Undo() bool {
	if len(e.hist.undo) == 0 || e.resizing {
		return false
	}
	i := len(e.hist.undo) - 1
	prev := e.hist.undo[i]
	e.hist.undo = e.hist.undo[:i]
	e.hist.redo = append(e.hist.redo, e.state)
	e.state = prev
	e.version++
	return true
}

func (e *Editor) Redo() bool {
	if len(e.hist.redo) == 0 || e.resizing {
		return false
	}
	i := len(e.hist.redo) - 1
	next := e.hist.redo[i]
	e.hist.redo = e.hist.redo[:i]

	if limit := e.opt.HistoryLimit; limit > 0 {
		e.hist.undo = append(e.hist.undo, e.state)
		if len(e.hist.undo) > limit {
			e.hist.undo = e.hist.undo[len(e.hist.undo)-limit:]
		}
	}
	e.state = next
	e.version++
	return true
}
