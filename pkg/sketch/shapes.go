package sketch

import (
	"math"

	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
)

// Rectangle 填充并描边的矩形
type Rectangle struct {
	Base
}

// NewRectangle 创建矩形
func NewRectangle() *Rectangle {
	return &Rectangle{Base: newBase(KnobsAll)}
}

func (r *Rectangle) Kind() Kind { return KindRectangle }

func (r *Rectangle) Draw(ctx cairo.Context, selected bool) {
	ctx.Save()
	defer ctx.Restore()
	ctx.NewPath()
	rectPath(ctx, r.frame)
	r.style.Fill.SetSource(ctx)
	ctx.FillPreserve()
	r.style.Stroke.SetSource(ctx)
	ctx.SetLineWidth(r.style.LineWidth)
	ctx.Stroke()
}

func (r *Rectangle) Serialize() Record {
	return r.serializeBase(KindRectangle)
}

// Circle 内切于框架的椭圆
type Circle struct {
	Base
}

// NewCircle 创建椭圆
func NewCircle() *Circle {
	return &Circle{Base: newBase(KnobsAll)}
}

func (c *Circle) Kind() Kind { return KindCircle }

func (c *Circle) Draw(ctx cairo.Context, selected bool) {
	if c.frame.Size.Width <= 0 || c.frame.Size.Height <= 0 {
		return
	}
	ctx.Save()
	defer ctx.Restore()
	ctx.NewPath()
	// 在单位正方形里画圆，再缩放到框架
	ctx.Save()
	ctx.Translate(c.frame.Left(), c.frame.Top())
	ctx.Scale(c.frame.Size.Width, c.frame.Size.Height)
	ctx.Arc(0.5, 0.5, 0.5, 0, 2*math.Pi)
	ctx.Restore()
	c.style.Fill.SetSource(ctx)
	ctx.FillPreserve()
	c.style.Stroke.SetSource(ctx)
	ctx.SetLineWidth(c.style.LineWidth)
	ctx.Stroke()
}

func (c *Circle) Serialize() Record {
	return c.serializeBase(KindCircle)
}

// checkmarkSize 勾号放置时的固定尺寸
const checkmarkSize = 9.0

// Checkmark 画成 X 的勾号，放置时跟随指针居中而不是拖出大小
type Checkmark struct {
	Base
}

// NewCheckmark 创建勾号
func NewCheckmark() *Checkmark {
	return &Checkmark{Base: newBase(KnobsAll)}
}

func (c *Checkmark) Kind() Kind { return KindCheckmark }

func (c *Checkmark) Place(page int, location geom.Point, constrain bool) {
	c.page = page
	c.frame.Size = geom.Sz(checkmarkSize, checkmarkSize)
	c.PlaceUpdate(location, constrain)
}

func (c *Checkmark) PlaceUpdate(location geom.Point, constrain bool) {
	c.SetNeedsDisplay(false)
	c.frame.SetCenter(location)
	c.SetNeedsDisplay(false)
}

func (c *Checkmark) Draw(ctx cairo.Context, selected bool) {
	ctx.Save()
	defer ctx.Restore()
	ctx.NewPath()
	c.style.Stroke.SetSource(ctx)
	ctx.SetLineWidth(c.style.LineWidth)
	ul, lr := c.frame.UpperLeft(), c.frame.LowerRight()
	ur, ll := c.frame.UpperRight(), c.frame.LowerLeft()
	ctx.MoveTo(ul.X, ul.Y)
	ctx.LineTo(lr.X, lr.Y)
	ctx.MoveTo(ur.X, ur.Y)
	ctx.LineTo(ll.X, ll.Y)
	ctx.Stroke()
}

func (c *Checkmark) Serialize() Record {
	return c.serializeBase(KindCheckmark)
}
