package canvas

import (
	"math"

	"github.com/novvoo/go-pdfsketch/pkg/geom"
)

// DefaultSpacing 页面之间以及页面与文档边缘的间距（point）
const DefaultSpacing = 20.0

// Layout 未缩放的文档坐标中各页的位置：纵向排列，水平居中
type Layout struct {
	spacing float64
	sizes   []geom.Size
	origins []geom.Point
	docSize geom.Size
}

// NewLayout 根据页面尺寸计算布局；spacing <= 0 时使用 DefaultSpacing
func NewLayout(sizes []geom.Size, spacing float64) *Layout {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	l := &Layout{
		spacing: spacing,
		sizes:   append([]geom.Size(nil), sizes...),
		origins: make([]geom.Point, len(sizes)),
	}

	maxWidth := 0.0
	totalHeight := spacing
	for _, s := range sizes {
		maxWidth = math.Max(maxWidth, s.Width)
		totalHeight += s.Height + spacing
	}
	l.docSize = geom.Sz(maxWidth+2*spacing, totalHeight)

	y := spacing
	for i, s := range sizes {
		x := float64(int(l.docSize.Width/2 - s.Width/2))
		l.origins[i] = geom.Pt(x, y)
		y += s.Height + spacing
	}
	return l
}

// LayoutFor 读取页面提供者的尺寸并计算布局
func LayoutFor(pages PageProvider, spacing float64) *Layout {
	if pages == nil {
		return NewLayout(nil, spacing)
	}
	sizes := make([]geom.Size, pages.PageCount())
	for i := range sizes {
		sizes[i] = pages.PageSize(i)
	}
	return NewLayout(sizes, spacing)
}

// PageCount 页数
func (l *Layout) PageCount() int {
	return len(l.sizes)
}

// Spacing 页面间距
func (l *Layout) Spacing() float64 {
	return l.spacing
}

// DocSize 文档尺寸：最大页宽加两侧间距，总高包含所有间距
func (l *Layout) DocSize() geom.Size {
	return l.docSize
}

// PageRect 第 i 页在文档中的矩形；越界时返回空矩形
func (l *Layout) PageRect(i int) geom.Rect {
	if i < 0 || i >= len(l.sizes) {
		return geom.Rect{}
	}
	return geom.Rect{Origin: l.origins[i], Size: l.sizes[i]}
}

// PageSize 第 i 页尺寸
func (l *Layout) PageSize(i int) geom.Size {
	if i < 0 || i >= len(l.sizes) {
		return geom.Size{}
	}
	return l.sizes[i]
}

// PageAt 包含文档坐标 p 的页面，不在任何页面上时返回 -1
func (l *Layout) PageAt(p geom.Point) int {
	for i := range l.sizes {
		if l.PageRect(i).Contains(p) {
			return i
		}
	}
	return -1
}

// NearestPage 距离 p 最近的页面（按纵向距离），没有页面时返回 -1
func (l *Layout) NearestPage(p geom.Point) int {
	best, bestDist := -1, math.Inf(1)
	for i := range l.sizes {
		r := l.PageRect(i)
		d := 0.0
		switch {
		case p.Y < r.Top():
			d = r.Top() - p.Y
		case p.Y >= r.Bottom():
			d = p.Y - r.Bottom()
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Converter 第 i 页在给定缩放下的坐标转换器
func (l *Layout) Converter(i int, zoom float64) *geom.CoordinateConverter {
	r := l.PageRect(i)
	return geom.NewCoordinateConverter(r.Origin, r.Size, zoom)
}
