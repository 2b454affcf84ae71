package canvas

import "github.com/novvoo/go-pdfsketch/pkg/sketch"

const (
	nudgeStep      = 1.0
	nudgeShiftStep = 10.0
)

// OnKeyDown 处理按键；编辑中的文本框优先接收。返回事件是否被处理
func (c *Canvas) OnKeyDown(ev sketch.KeyEvent) bool {
	if e := c.editing; e != nil {
		if ev.Key == sketch.KeyEscape {
			c.EndEditing()
			return true
		}
		e.OnKeyDown(ev)
		return true
	}

	switch ev.Key {
	case sketch.KeyBackspace, sketch.KeyDelete:
		if len(c.selection) == 0 {
			return false
		}
		c.DeleteSelection()
		return true
	case sketch.KeyEscape:
		c.ClearSelection()
		return true
	case sketch.KeyA:
		if ev.Mods&sketch.ModShortcut == 0 {
			return false
		}
		c.SelectAll()
		return true
	case sketch.KeyEnter:
		sel := c.Selection()
		if len(sel) != 1 {
			return false
		}
		e, ok := sel[0].(sketch.Editor)
		if !ok {
			return false
		}
		c.BeginEditing(e)
		return true
	case sketch.KeyLeft, sketch.KeyRight, sketch.KeyUp, sketch.KeyDown:
		if len(c.selection) == 0 {
			return false
		}
		step := nudgeStep
		if ev.Shift() {
			step = nudgeShiftStep
		}
		dx, dy := 0.0, 0.0
		switch ev.Key {
		case sketch.KeyLeft:
			dx = -step
		case sketch.KeyRight:
			dx = step
		case sketch.KeyUp:
			dy = -step
		case sketch.KeyDown:
			dy = step
		}
		c.MoveSelectionBy(dx, dy)
		return true
	}
	return false
}

// OnKeyText 输入文本，只在编辑状态下有效
func (c *Canvas) OnKeyText(text string, mods sketch.Modifiers) bool {
	e := c.editing
	if e == nil {
		return false
	}
	e.OnKeyText(text, mods)
	return true
}
