package geom

import (
	"fmt"
	"math"
)

// Matrix 仿射变换矩阵
//
//	x' = XX*x + XY*y + X0
//	y' = YX*x + YY*y + Y0
type Matrix struct {
	XX, YX float64
	XY, YY float64
	X0, Y0 float64
}

// NewIdentityMatrix 创建单位矩阵
func NewIdentityMatrix() *Matrix {
	return &Matrix{XX: 1, YY: 1}
}

// NewTranslationMatrix 创建平移矩阵
func NewTranslationMatrix(tx, ty float64) *Matrix {
	return &Matrix{XX: 1, YY: 1, X0: tx, Y0: ty}
}

// NewScaleMatrix 创建缩放矩阵
func NewScaleMatrix(sx, sy float64) *Matrix {
	return &Matrix{XX: sx, YY: sy}
}

// Multiply 矩阵乘法：先应用 m，再应用 other
func (m *Matrix) Multiply(other *Matrix) *Matrix {
	return &Matrix{
		XX: m.XX*other.XX + m.YX*other.XY,
		YX: m.XX*other.YX + m.YX*other.YY,
		XY: m.XY*other.XX + m.YY*other.XY,
		YY: m.XY*other.YX + m.YY*other.YY,
		X0: m.X0*other.XX + m.Y0*other.XY + other.X0,
		Y0: m.X0*other.YX + m.Y0*other.YY + other.Y0,
	}
}

// Transform 对点进行变换
func (m *Matrix) Transform(x, y float64) (float64, float64) {
	return m.XX*x + m.XY*y + m.X0, m.YX*x + m.YY*y + m.Y0
}

// TransformPoint 对 Point 进行变换
func (m *Matrix) TransformPoint(p Point) Point {
	x, y := m.Transform(p.X, p.Y)
	return Point{X: x, Y: y}
}

// TransformDistance 对距离向量进行变换（不包括平移）
func (m *Matrix) TransformDistance(dx, dy float64) (float64, float64) {
	return m.XX*dx + m.XY*dy, m.YX*dx + m.YY*dy
}

// TransformRect 变换矩形，返回四个角的包围盒
func (m *Matrix) TransformRect(r Rect) Rect {
	corners := [4]Point{
		m.TransformPoint(r.UpperLeft()),
		m.TransformPoint(r.UpperRight()),
		m.TransformPoint(r.LowerLeft()),
		m.TransformPoint(r.LowerRight()),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return RectFromPoints(Point{X: minX, Y: minY}, Point{X: maxX, Y: maxY})
}

// Invert 计算逆矩阵
func (m *Matrix) Invert() (*Matrix, error) {
	det := m.XX*m.YY - m.YX*m.XY
	if math.Abs(det) < 1e-10 {
		return nil, fmt.Errorf("matrix is not invertible (determinant is zero)")
	}

	invDet := 1.0 / det
	return &Matrix{
		XX: m.YY * invDet,
		YX: -m.YX * invDet,
		XY: -m.XY * invDet,
		YY: m.XX * invDet,
		X0: (m.XY*m.Y0 - m.YY*m.X0) * invDet,
		Y0: (m.YX*m.X0 - m.XX*m.Y0) * invDet,
	}, nil
}

// Translate 追加平移变换
func (m *Matrix) Translate(tx, ty float64) *Matrix {
	return m.Multiply(NewTranslationMatrix(tx, ty))
}

// Scale 追加缩放变换
func (m *Matrix) Scale(sx, sy float64) *Matrix {
	return m.Multiply(NewScaleMatrix(sx, sy))
}

// Clone 复制矩阵
func (m *Matrix) Clone() *Matrix {
	c := *m
	return &c
}

// String 返回矩阵的字符串表示
func (m *Matrix) String() string {
	return fmt.Sprintf("[%.3f %.3f %.3f %.3f %.3f %.3f]", m.XX, m.YX, m.XY, m.YY, m.X0, m.Y0)
}
