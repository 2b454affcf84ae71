package sketch

import (
	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
)

// Place 开始放置：框架缩为 location 处的一个点，激活右下角控制点
func (b *Base) Place(page int, location geom.Point, constrain bool) {
	b.page = page
	b.frame = geom.Rect{Origin: location}
	b.resizingKnob = KnobLowerRight
	b.captureAspect()
}

// PlaceUpdate 放置过程中拖动，等同于拖动激活的控制点
func (b *Base) PlaceUpdate(location geom.Point, constrain bool) {
	b.UpdateResize(location, constrain)
}

// PlaceComplete 结束放置；面积为 0 时返回 true，调用方应删除该注释
func (b *Base) PlaceComplete() bool {
	b.resizingKnob = KnobNone
	return b.frame.Size.Width == 0 || b.frame.Size.Height == 0
}

// BeginResize 抓住控制点并立即更新一次
func (b *Base) BeginResize(location geom.Point, knob Knob, constrain bool) {
	b.resizingKnob = knob
	b.captureAspect()
	b.UpdateResize(location, constrain)
}

// captureAspect 记录约束用的宽高比：优先固有尺寸，其次当前框架
func (b *Base) captureAspect() {
	b.aspect = 0
	switch {
	case b.naturalSize.Width > 0 && b.naturalSize.Height > 0:
		b.aspect = b.naturalSize.Width / b.naturalSize.Height
	case b.frame.Size.Width > 0 && b.frame.Size.Height > 0:
		b.aspect = b.frame.Size.Width / b.frame.Size.Height
	}
}

// UpdateResize 把激活控制点对应的边移动到 location。
// 边越过对边时翻转对应的镜像标志，并把激活控制点换成它的镜像
func (b *Base) UpdateResize(location geom.Point, constrain bool) {
	b.SetNeedsDisplay(true)

	knob := b.resizingKnob
	flipX, flipY := false, false
	switch {
	case knob.isUpper():
		flipY = b.frame.SetTopAbs(location.Y)
	case knob.isLower():
		flipY = b.frame.SetBottomAbs(location.Y)
	}
	switch {
	case knob.isLeft():
		flipX = b.frame.SetLeftAbs(location.X)
	case knob.isRight():
		flipX = b.frame.SetRightAbs(location.X)
	}

	if flipY {
		b.vFlip = !b.vFlip
		knob = knob.flippedY()
	}
	if flipX {
		b.hFlip = !b.hFlip
		knob = knob.flippedX()
	}
	b.resizingKnob = knob

	if constrain && b.aspect > 0 && knob.IsCorner() {
		width := b.frame.Size.Height * b.aspect
		if knob.isRight() {
			b.frame.SetRightAbs(b.frame.Left() + width)
		} else {
			b.frame.SetLeftAbs(b.frame.Right() - width)
		}
	}

	b.SetNeedsDisplay(true)
}

// EndResize 释放控制点
func (b *Base) EndResize() {
	b.resizingKnob = KnobNone
}

// knobCenter 控制点中心（页面坐标）
func (b *Base) knobCenter(knob Knob) geom.Point {
	c := b.frame.Origin
	switch knob {
	case KnobUpperMiddle, KnobLowerMiddle:
		c.X += b.frame.Size.Width / 2
	case KnobUpperRight, KnobMiddleRight, KnobLowerRight:
		c.X += b.frame.Size.Width
	}
	switch knob {
	case KnobMiddleLeft, KnobMiddleRight:
		c.Y += b.frame.Size.Height / 2
	case KnobLowerLeft, KnobLowerMiddle, KnobLowerRight:
		c.Y += b.frame.Size.Height
	}
	return c
}

// KnobFrame 控制点方块（页面坐标）。方块在视图中固定为 7x7 像素并对齐到整数像素
func (b *Base) KnobFrame(knob Knob) geom.Rect {
	if b.delegate == nil {
		return geom.Rect{}
	}
	center := b.delegate.ConvertPointFromAnnotation(b.page, b.knobCenter(knob)).Rounded()
	upperLeft := b.delegate.ConvertPointToAnnotation(b.page,
		center.TranslatedBy(-knobEdgeLength/2, -knobEdgeLength/2))
	lowerRight := b.delegate.ConvertPointToAnnotation(b.page,
		center.TranslatedBy(knobEdgeLength/2, knobEdgeLength/2))
	return geom.RectFromPoints(upperLeft, lowerRight)
}

// PointInKnob 返回 location 命中的控制点，只检查该类型启用的控制点
func (b *Base) PointInKnob(location geom.Point) Knob {
	if b.delegate == nil {
		return KnobNone
	}
	for i := 0; i < knobCount; i++ {
		knob := Knob(1 << i)
		if !b.knobs.Has(knob) {
			continue
		}
		if b.KnobFrame(knob).InsetBy(-0.5).Contains(location) {
			return knob
		}
	}
	return KnobNone
}

// DrawKnobs 绘制白底黑边的控制点，描边宽度固定为 1 个设备像素
func (b *Base) DrawKnobs(ctx cairo.Context) {
	if b.delegate == nil {
		return
	}
	zoom := b.delegate.Zoom()
	if zoom <= 0 {
		zoom = 1
	}
	ctx.Save()
	defer ctx.Restore()
	for i := 0; i < knobCount; i++ {
		knob := Knob(1 << i)
		if !b.knobs.Has(knob) {
			continue
		}
		r := b.KnobFrame(knob)
		ctx.NewPath()
		rectPath(ctx, r)
		White.SetSource(ctx)
		ctx.FillPreserve()
		Black.SetSource(ctx)
		ctx.SetLineWidth(knobLineWidth / zoom)
		ctx.Stroke()
	}
}

// rectPath 把矩形加入当前路径
func rectPath(ctx cairo.Context, r geom.Rect) {
	ctx.Rectangle(r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}
