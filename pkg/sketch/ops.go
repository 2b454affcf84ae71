package sketch

import (
	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/undo"
)

// Geometry 注释的框架与镜像状态，调整大小前后各取一次用于撤销
type Geometry struct {
	Frame geom.Rect
	HFlip bool
	VFlip bool
}

// GeometryOf 读取注释当前的几何状态
func GeometryOf(a Annotation) Geometry {
	h, v := a.Flips()
	return Geometry{Frame: a.Frame(), HFlip: h, VFlip: v}
}

// MoveByUndoable 平移注释并记录反向平移。m 为 nil 时不记录
func MoveByUndoable(a Annotation, m *undo.Manager, dx, dy float64) {
	a.MoveBy(dx, dy)
	if m != nil {
		m.AddClosure(func() { MoveByUndoable(a, m, -dx, -dy) })
	}
}

// SetGeometryUndoable 把注释设为 g，并记录恢复到原状态的操作
func SetGeometryUndoable(a Annotation, m *undo.Manager, g Geometry) {
	old := GeometryOf(a)
	a.SetFrame(g.Frame)
	a.SetFlips(g.HFlip, g.VFlip)
	if m != nil {
		m.AddClosure(func() { SetGeometryUndoable(a, m, old) })
	}
}

// SetStyleUndoable 修改样式并记录旧样式
func SetStyleUndoable(a Annotation, m *undo.Manager, s Style) {
	old := a.Style()
	a.SetStyle(s)
	if m != nil {
		m.AddClosure(func() { SetStyleUndoable(a, m, old) })
	}
}
