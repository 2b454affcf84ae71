package canvas

import (
	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/sketch"
)

// backgroundGray 页面之外区域的灰度
const backgroundGray = 0.85

// Paint 重绘视图中的 dirty 区域（视图坐标）：背景、页面边框与白底、页面内容、
// 按绘制顺序的注释，以及选中注释的控制点
func (c *Canvas) Paint(ctx cairo.Context, dirty geom.Rect) {
	ctx.Save()
	defer ctx.Restore()

	ctx.NewPath()
	ctx.Rectangle(dirty.Origin.X, dirty.Origin.Y, dirty.Size.Width, dirty.Size.Height)
	ctx.Clip()
	ctx.SetSourceRGB(backgroundGray, backgroundGray, backgroundGray)
	ctx.Paint()

	ctx.Scale(c.zoom, c.zoom)
	docDirty := geom.RectFromPoints(dirty.UpperLeft().ScaledBy(1/c.zoom), dirty.LowerRight().ScaledBy(1/c.zoom))

	if c.layout.PageCount() == 0 {
		drawPlaceholder(ctx, geom.Sz(docDirty.Right(), docDirty.Bottom()))
		return
	}

	for i := 0; i < c.layout.PageCount(); i++ {
		pageRect := c.layout.PageRect(i)
		if !docDirty.Intersects(pageRect.InsetBy(-1)) {
			continue
		}
		c.paintPage(ctx, i, pageRect)
	}

	for _, a := range c.scene.PaintOrder() {
		selected := c.IsSelected(a)
		bounds := a.DrawingFrame()
		if selected {
			bounds = a.DrawingFrameWithKnobs()
		}
		origin := c.layout.PageRect(a.Page()).Origin
		if !docDirty.Intersects(bounds.TranslatedBy(origin.X, origin.Y)) {
			continue
		}
		ctx.Save()
		ctx.Translate(origin.X, origin.Y)
		a.Draw(ctx, selected)
		if selected {
			a.DrawKnobs(ctx)
		}
		ctx.Restore()
	}
}

func (c *Canvas) paintPage(ctx cairo.Context, i int, pageRect geom.Rect) {
	ctx.Save()
	defer ctx.Restore()

	ctx.SetSourceRGB(0, 0, 0)
	ctx.SetLineWidth(1)
	outline := pageRect.InsetBy(-0.5)
	ctx.NewPath()
	ctx.Rectangle(outline.Origin.X, outline.Origin.Y, outline.Size.Width, outline.Size.Height)
	ctx.Stroke()

	ctx.SetSourceRGB(1, 1, 1)
	ctx.Rectangle(pageRect.Origin.X, pageRect.Origin.Y, pageRect.Size.Width, pageRect.Size.Height)
	ctx.Fill()

	ctx.Translate(pageRect.Origin.X, pageRect.Origin.Y)
	if c.pages != nil {
		if err := c.pages.RenderPage(i, false, ctx); err != nil {
			logger.Warn("render page %d: %v", i, err)
		}
	}
}

// drawPlaceholder 没有文档时在 size 范围内画三个彩色方框
func drawPlaceholder(ctx cairo.Context, size geom.Size) {
	const border = 15.0
	ctx.SetLineWidth(2)
	ctx.SetLineJoin(cairo.LineJoinMiter)
	ctx.SetLineCap(cairo.LineCapSquare)
	colors := []sketch.Color{sketch.RGBA(1, 0, 0, 1), sketch.RGBA(0, 1, 0, 1), sketch.RGBA(0, 0, 1, 1)}
	for i, col := range colors {
		r := geom.R(0, float64(i)*size.Height/3, size.Width, size.Height/3).InsetBy(border + 1)
		col.SetSource(ctx)
		ctx.NewPath()
		ctx.Rectangle(r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
		ctx.Stroke()
	}
}
