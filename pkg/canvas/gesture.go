package canvas

import (
	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/logging"
	"github.com/novvoo/go-pdfsketch/pkg/sketch"
	"github.com/novvoo/go-pdfsketch/pkg/undo"
)

// PointerEvent 指针事件，Point 为视图坐标
type PointerEvent struct {
	Point  geom.Point
	Mods   sketch.Modifiers
	Clicks int
}

type gestureKind int

const (
	gesturePlace gestureKind = iota + 1
	gestureResize
	gestureMove
	gestureText
)

func (k gestureKind) String() string {
	switch k {
	case gesturePlace:
		return "place"
	case gestureResize:
		return "resize"
	case gestureMove:
		return "move"
	case gestureText:
		return "text"
	}
	return "none"
}

// gesture 一次按下-拖动-抬起过程的状态
type gesture struct {
	kind   gestureKind
	target sketch.Annotation

	// 移动：按下时的页面、上一次的页面坐标、累计位移和参与移动的注释
	page   int
	last   geom.Point
	dx, dy float64
	moving []sketch.Annotation

	// 调整大小前的几何状态
	before sketch.Geometry
}

// OnPointerDown 按下：编辑中的文本框优先，其次是放置新注释（非箭头工具），
// 然后依次是已选中注释的控制点、命中的注释和背景
func (c *Canvas) OnPointerDown(ev PointerEvent) {
	c.drag = nil

	if e := c.editing; e != nil {
		p := c.ConvertPointToAnnotation(e.Page(), ev.Point)
		if e.Frame().Contains(p) && e.OnMouseDown(p) {
			c.drag = &gesture{kind: gestureText, target: e}
			return
		}
		c.EndEditing()
	}

	if c.tool != sketch.ToolArrow {
		c.beginPlace(ev)
		return
	}

	sel := c.Selection()
	for i := len(sel) - 1; i >= 0; i-- {
		a := sel[i]
		p := c.ConvertPointToAnnotation(a.Page(), ev.Point)
		knob := a.PointInKnob(p)
		if knob == sketch.KnobNone {
			continue
		}
		g := &gesture{kind: gestureResize, target: a, before: sketch.GeometryOf(a)}
		a.BeginResize(p, knob, c.constrain(a, ev.Mods))
		c.drag = g
		logging.Debugf("canvas: resize %s from knob %v\n", a.Kind(), knob)
		return
	}

	hit := c.HitTest(ev.Point)
	if hit == nil {
		if ev.Mods&sketch.ModShift == 0 {
			c.ClearSelection()
		}
		return
	}

	if ev.Clicks >= 2 && hit.Editable() {
		if e, ok := hit.(sketch.Editor); ok {
			c.BeginEditing(e)
			p := c.ConvertPointToAnnotation(e.Page(), ev.Point)
			if e.OnMouseDown(p) {
				c.drag = &gesture{kind: gestureText, target: e}
			}
			return
		}
	}

	if ev.Mods&sketch.ModShift != 0 {
		if c.IsSelected(hit) {
			c.Deselect(hit)
			return
		}
		c.Select(hit)
	} else if !c.IsSelected(hit) {
		c.SetSelection(hit)
	}

	c.drag = &gesture{
		kind:   gestureMove,
		target: hit,
		page:   hit.Page(),
		last:   c.ConvertPointToAnnotation(hit.Page(), ev.Point),
		moving: c.Selection(),
	}
}

func (c *Canvas) beginPlace(ev PointerEvent) {
	page := c.PageAt(ev.Point)
	if page < 0 {
		c.ClearSelection()
		return
	}
	a := sketch.NewForTool(c.tool)
	if a == nil {
		return
	}
	c.ClearSelection()
	p := c.ConvertPointToAnnotation(page, ev.Point)
	a.SetDelegate(c)
	a.Place(page, p, c.constrain(a, ev.Mods))
	if err := c.insertRaw(a, nil); err != nil {
		return
	}
	c.selectRaw(a)
	c.drag = &gesture{kind: gesturePlace, target: a}
	logging.Debugf("canvas: placing %s on page %d at %v\n", a.Kind(), page, p)
}

// OnPointerDrag 拖动：转交给放置/调整/文本选择，或者平移所有选中的注释
func (c *Canvas) OnPointerDrag(ev PointerEvent) {
	g := c.drag
	if g == nil {
		return
	}
	switch g.kind {
	case gestureText:
		e := g.target.(sketch.Editor)
		e.OnMouseDrag(c.ConvertPointToAnnotation(e.Page(), ev.Point))
	case gesturePlace:
		a := g.target
		a.PlaceUpdate(c.ConvertPointToAnnotation(a.Page(), ev.Point), c.constrain(a, ev.Mods))
	case gestureResize:
		a := g.target
		a.UpdateResize(c.ConvertPointToAnnotation(a.Page(), ev.Point), c.constrain(a, ev.Mods))
	case gestureMove:
		p := c.ConvertPointToAnnotation(g.page, ev.Point)
		d := p.Sub(g.last)
		if d.X == 0 && d.Y == 0 {
			return
		}
		g.last = p
		g.dx += d.X
		g.dy += d.Y
		for _, a := range g.moving {
			a.MoveBy(d.X, d.Y)
		}
	}
}

// OnPointerUp 抬起：结束手势，有实际变化时记录一个撤销条目
func (c *Canvas) OnPointerUp(ev PointerEvent) {
	g := c.drag
	if g == nil {
		return
	}
	c.OnPointerDrag(ev)
	c.drag = nil

	switch g.kind {
	case gestureText:
		g.target.(sketch.Editor).OnMouseUp()
	case gesturePlace:
		c.endPlace(g.target)
	case gestureResize:
		a := g.target
		a.EndResize()
		before := g.before
		if sketch.GeometryOf(a) != before {
			c.undo.AddClosure(func() { sketch.SetGeometryUndoable(a, c.undo, before) })
		}
	case gestureMove:
		if g.dx == 0 && g.dy == 0 {
			return
		}
		dx, dy := g.dx, g.dy
		agg := undo.NewScopedAggregator(c.undo)
		for _, a := range g.moving {
			a := a
			c.undo.AddClosure(func() { sketch.MoveByUndoable(a, c.undo, -dx, -dy) })
		}
		agg.Close()
	}
}

func (c *Canvas) endPlace(a sketch.Annotation) {
	if a.PlaceComplete() {
		logging.Debugf("canvas: discarding empty %s\n", a.Kind())
		if _, err := c.removeRaw(a); err != nil {
			logger.Warn("remove placed %s: %v", a.Kind(), err)
		}
		return
	}
	c.undo.AddClosure(c.removeLater(a))
	if e, ok := a.(sketch.Editor); ok {
		c.BeginEditing(e)
	}
}
