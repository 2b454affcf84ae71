// Package sketch 实现叠加在 PDF 页面上的注释对象：矩形、圆、勾号、手绘线、文本框和图片。
//
// 所有类型共享 Base 中的框架、样式和放置/调整大小状态机；坐标均为页面坐标
// （原点在页面左上角，单位 point）。
package sketch

import (
	"errors"

	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/scene"
)

var (
	ErrUnknownKind   = errors.New("sketch: unknown annotation kind")
	ErrInvalidRecord = errors.New("sketch: invalid record")
)

// Kind 注释类型标签，用于序列化
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindCheckmark Kind = "checkmark"
	KindSquiggle  Kind = "squiggle"
	KindText      Kind = "text"
	KindImage     Kind = "image"
)

// Delegate 由画布实现：坐标转换与重绘请求。注释只持有非拥有引用
type Delegate interface {
	// ConvertPointToAnnotation 视图坐标 -> 页面坐标
	ConvertPointToAnnotation(page int, p geom.Point) geom.Point
	// ConvertPointFromAnnotation 页面坐标 -> 视图坐标
	ConvertPointFromAnnotation(page int, p geom.Point) geom.Point
	Zoom() float64
	SetNeedsDisplayInPageRect(page int, r geom.Rect)
}

// Annotation 所有注释类型的公共接口
type Annotation interface {
	Kind() Kind

	SceneHandle() scene.Handle
	SetSceneHandle(h scene.Handle)
	Delegate() Delegate
	SetDelegate(d Delegate)

	Page() int
	Frame() geom.Rect
	SetFrame(r geom.Rect)
	NaturalSize() geom.Size
	Flips() (h, v bool)
	SetFlips(h, v bool)
	Style() Style
	SetStyle(s Style)
	MoveBy(dx, dy float64)
	HitTest(p geom.Point) bool

	Knobs() Knob
	Place(page int, location geom.Point, constrain bool)
	PlaceUpdate(location geom.Point, constrain bool)
	PlaceComplete() bool
	BeginResize(location geom.Point, knob Knob, constrain bool)
	UpdateResize(location geom.Point, constrain bool)
	EndResize()
	ResizingKnob() Knob
	PointInKnob(location geom.Point) Knob
	KnobFrame(knob Knob) geom.Rect

	DrawingFrame() geom.Rect
	DrawingFrameWithKnobs() geom.Rect
	SetNeedsDisplay(withKnobs bool)
	Draw(ctx cairo.Context, selected bool)
	DrawKnobs(ctx cairo.Context)

	Editable() bool
	Serialize() Record
}

// Style 填充色、描边色和线宽
type Style struct {
	Fill      Color
	Stroke    Color
	LineWidth float64
}

var defaultStyle = Style{
	Fill:      Color{R: 0, G: 1, B: 0, A: 0.3},
	Stroke:    Black,
	LineWidth: 1,
}

// DefaultStyle 新建注释使用的样式
func DefaultStyle() Style {
	return defaultStyle
}

// SetDefaultStyle 修改新建注释的样式（来自配置文件）
func SetDefaultStyle(s Style) {
	defaultStyle = s
}

// Base 各类型共享的状态
type Base struct {
	handle   scene.Handle
	delegate Delegate

	frame       geom.Rect
	naturalSize geom.Size
	page        int
	style       Style
	hFlip       bool
	vFlip       bool

	knobs        Knob
	resizingKnob Knob
	// aspect 调整开始时记录的宽高比，0 表示不约束
	aspect float64
}

func newBase(knobs Knob) Base {
	return Base{
		frame: geom.R(30, 30, 10, 20),
		style: defaultStyle,
		knobs: knobs,
	}
}

func (b *Base) SceneHandle() scene.Handle     { return b.handle }
func (b *Base) SetSceneHandle(h scene.Handle) { b.handle = h }
func (b *Base) Delegate() Delegate            { return b.delegate }
func (b *Base) SetDelegate(d Delegate)        { b.delegate = d }

func (b *Base) Page() int              { return b.page }
func (b *Base) Frame() geom.Rect       { return b.frame }
func (b *Base) NaturalSize() geom.Size { return b.naturalSize }
func (b *Base) Flips() (h, v bool)     { return b.hFlip, b.vFlip }
func (b *Base) Style() Style           { return b.style }
func (b *Base) Knobs() Knob            { return b.knobs }
func (b *Base) ResizingKnob() Knob     { return b.resizingKnob }
func (b *Base) Editable() bool         { return false }

// SetFrame 替换框架并请求重绘新旧区域
func (b *Base) SetFrame(r geom.Rect) {
	b.SetNeedsDisplay(true)
	b.frame = r
	b.SetNeedsDisplay(true)
}

// SetFlips 设置镜像标志
func (b *Base) SetFlips(h, v bool) {
	b.hFlip, b.vFlip = h, v
	b.SetNeedsDisplay(false)
}

// SetStyle 设置样式
func (b *Base) SetStyle(s Style) {
	b.SetNeedsDisplay(true)
	b.style = s
	b.SetNeedsDisplay(true)
}

// MoveBy 平移框架
func (b *Base) MoveBy(dx, dy float64) {
	b.SetNeedsDisplay(true)
	b.frame = b.frame.TranslatedBy(dx, dy)
	b.SetNeedsDisplay(true)
}

// HitTest 点是否落在绘制区域内
func (b *Base) HitTest(p geom.Point) bool {
	return b.DrawingFrame().Contains(p)
}

// DrawingFrame 框架向外扩展半个线宽
func (b *Base) DrawingFrame() geom.Rect {
	return b.frame.InsetBy(-b.style.LineWidth / 2)
}

// DrawingFrameWithKnobs 绘制区域加上所有控制点
func (b *Base) DrawingFrameWithKnobs() geom.Rect {
	r := b.DrawingFrame()
	if b.delegate == nil {
		return r
	}
	for i := 0; i < knobCount; i++ {
		knob := Knob(1 << i)
		if !b.knobs.Has(knob) {
			continue
		}
		r = r.Union(b.KnobFrame(knob).InsetBy(-knobLineWidth / 2))
	}
	return r
}

// SetNeedsDisplay 请求重绘自身区域
func (b *Base) SetNeedsDisplay(withKnobs bool) {
	if b.delegate == nil {
		return
	}
	r := b.DrawingFrame()
	if withKnobs {
		r = b.DrawingFrameWithKnobs()
	}
	b.delegate.SetNeedsDisplayInPageRect(b.page, r)
}

func (b *Base) serializeBase(kind Kind) Record {
	return Record{
		Kind:        kind,
		Frame:       b.frame,
		NaturalSize: b.naturalSize,
		Page:        b.page,
		Fill:        b.style.Fill,
		Stroke:      b.style.Stroke,
		LineWidth:   b.style.LineWidth,
		HFlip:       b.hFlip,
		VFlip:       b.vFlip,
	}
}

func (b *Base) restoreBase(rec *Record) {
	b.frame = rec.Frame
	b.naturalSize = rec.NaturalSize
	b.page = rec.Page
	b.style = Style{Fill: rec.Fill, Stroke: rec.Stroke, LineWidth: rec.LineWidth}
	b.hFlip = rec.HFlip
	b.vFlip = rec.VFlip
}
