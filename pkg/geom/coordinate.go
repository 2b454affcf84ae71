package geom

// CoordinateSystem 表示坐标系统类型
type CoordinateSystem int

const (
	// CoordSystemPage 注释（页面）坐标：原点在页面左上角，单位为 point，Y 轴向下
	CoordSystemPage CoordinateSystem = iota
	// CoordSystemView 视图坐标：文档视图左上角为原点，已乘以缩放比例
	CoordSystemView
	// CoordSystemPDF PDF 用户空间：原点在左下角，Y 轴向上
	CoordSystemPDF
)

// CoordinateConverter 单个页面的坐标转换器
type CoordinateConverter struct {
	pageOrigin Point // 页面在未缩放文档中的位置
	pageSize   Size
	zoom       float64
	toView     *Matrix
	fromView   *Matrix
}

// NewCoordinateConverter 创建坐标转换器；zoom <= 0 时按 1 处理
func NewCoordinateConverter(pageOrigin Point, pageSize Size, zoom float64) *CoordinateConverter {
	if zoom <= 0 {
		zoom = 1
	}
	toView := NewTranslationMatrix(pageOrigin.X, pageOrigin.Y).Scale(zoom, zoom)
	fromView, err := toView.Invert()
	if err != nil {
		fromView = NewIdentityMatrix()
	}
	return &CoordinateConverter{
		pageOrigin: pageOrigin,
		pageSize:   pageSize,
		zoom:       zoom,
		toView:     toView,
		fromView:   fromView,
	}
}

// Zoom 当前缩放比例
func (c *CoordinateConverter) Zoom() float64 {
	return c.zoom
}

// PageOrigin 页面在未缩放文档中的原点
func (c *CoordinateConverter) PageOrigin() Point {
	return c.pageOrigin
}

// ToView 页面坐标 -> 视图坐标
func (c *CoordinateConverter) ToView(p Point) Point {
	return c.toView.TransformPoint(p)
}

// FromView 视图坐标 -> 页面坐标
func (c *CoordinateConverter) FromView(p Point) Point {
	return c.fromView.TransformPoint(p)
}

// RectToView 页面矩形 -> 视图矩形
func (c *CoordinateConverter) RectToView(r Rect) Rect {
	return c.toView.TransformRect(r)
}

// RectFromView 视图矩形 -> 页面矩形
func (c *CoordinateConverter) RectFromView(r Rect) Rect {
	return c.fromView.TransformRect(r)
}

// ToPDF 页面坐标 -> PDF 坐标（Y 轴翻转）
func (c *CoordinateConverter) ToPDF(p Point) Point {
	return Point{X: p.X, Y: c.pageSize.Height - p.Y}
}

// FromPDF PDF 坐标 -> 页面坐标
func (c *CoordinateConverter) FromPDF(p Point) Point {
	return Point{X: p.X, Y: c.pageSize.Height - p.Y}
}

// ConvertPoint 在两个坐标系统之间转换点
func (c *CoordinateConverter) ConvertPoint(p Point, from, to CoordinateSystem) Point {
	if from == to {
		return p
	}
	switch from {
	case CoordSystemView:
		p = c.FromView(p)
	case CoordSystemPDF:
		p = c.FromPDF(p)
	}
	switch to {
	case CoordSystemView:
		return c.ToView(p)
	case CoordSystemPDF:
		return c.ToPDF(p)
	}
	return p
}

// ViewMatrix 页面 -> 视图的变换矩阵
func (c *CoordinateConverter) ViewMatrix() *Matrix {
	return c.toView.Clone()
}
