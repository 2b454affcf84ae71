package geom

import (
	"fmt"
	"math"
)

// Point 二维点（页面坐标或视图坐标）
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt 创建点
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// TranslatedBy 返回平移后的点
func (p Point) TranslatedBy(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Add 点相加
func (p Point) Add(q Point) Point {
	return p.TranslatedBy(q.X, q.Y)
}

// Sub 点相减
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// ScaledBy 按比例缩放
func (p Point) ScaledBy(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Rounded 四舍五入到整数坐标
func (p Point) Rounded() Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// IsFinite 检查坐标是否为有限值
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("%f,%f", p.X, p.Y)
}

// Size 尺寸，交互缩放过程中可以暂时为负
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sz 创建尺寸
func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}

// ScaledBy 按比例缩放
func (s Size) ScaledBy(factor float64) Size {
	return Size{Width: s.Width * factor, Height: s.Height * factor}
}

// RoundedUp 向上取整
func (s Size) RoundedUp() Size {
	return Size{Width: math.Ceil(s.Width), Height: math.Ceil(s.Height)}
}

// IsZero 宽高都为 0
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// IsFinite 检查宽高是否为有限值
func (s Size) IsFinite() bool {
	return isFinite(s.Width) && isFinite(s.Height)
}

func (s Size) String() string {
	return fmt.Sprintf("%f,%f", s.Width, s.Height)
}

// Rect 矩形 = 原点 + 尺寸
type Rect struct {
	Origin Point `json:"origin"`
	Size   Size  `json:"size"`
}

// R 由 x, y, w, h 创建矩形
func R(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// RectFromPoints 由左上角和右下角创建矩形
func RectFromPoints(upperLeft, lowerRight Point) Rect {
	return Rect{
		Origin: upperLeft,
		Size:   Size{Width: lowerRight.X - upperLeft.X, Height: lowerRight.Y - upperLeft.Y},
	}
}

func (r Rect) Top() float64    { return r.Origin.Y }
func (r Rect) Bottom() float64 { return r.Origin.Y + r.Size.Height }
func (r Rect) Left() float64   { return r.Origin.X }
func (r Rect) Right() float64  { return r.Origin.X + r.Size.Width }

func (r Rect) UpperLeft() Point  { return r.Origin }
func (r Rect) UpperRight() Point { return Point{X: r.Right(), Y: r.Top()} }
func (r Rect) LowerLeft() Point  { return Point{X: r.Left(), Y: r.Bottom()} }
func (r Rect) LowerRight() Point { return Point{X: r.Right(), Y: r.Bottom()} }

// Center 中心点
func (r Rect) Center() Point {
	return Point{X: r.Origin.X + 0.5*r.Size.Width, Y: r.Origin.Y + 0.5*r.Size.Height}
}

// SetCenter 保持尺寸，移动中心到 location
func (r *Rect) SetCenter(location Point) {
	r.Origin.X = location.X - r.Size.Width*0.5
	r.Origin.Y = location.Y - r.Size.Height*0.5
}

// TranslatedBy 返回平移后的矩形
func (r Rect) TranslatedBy(dx, dy float64) Rect {
	return Rect{Origin: r.Origin.TranslatedBy(dx, dy), Size: r.Size}
}

// ScaledBy 原点不变，尺寸缩放
func (r Rect) ScaledBy(factor float64) Rect {
	return Rect{Origin: r.Origin, Size: r.Size.ScaledBy(factor)}
}

// InsetBy 四边同时内缩（负值为外扩）
func (r Rect) InsetBy(inset float64) Rect {
	return R(r.Origin.X+inset, r.Origin.Y+inset,
		r.Size.Width-2*inset, r.Size.Height-2*inset)
}

// Intersect 求交集；不相交时尺寸截断为 0
func (r Rect) Intersect(that Rect) Rect {
	ret := RectFromPoints(
		Point{X: math.Max(r.Left(), that.Left()), Y: math.Max(r.Top(), that.Top())},
		Point{X: math.Min(r.Right(), that.Right()), Y: math.Min(r.Bottom(), that.Bottom())},
	)
	ret.Size.Width = math.Max(ret.Size.Width, 0)
	ret.Size.Height = math.Max(ret.Size.Height, 0)
	return ret
}

// Intersects 交集宽高都大于 0 时为 true
func (r Rect) Intersects(that Rect) bool {
	in := r.Intersect(that)
	return in.Size.Width > 0 && in.Size.Height > 0
}

// Contains 半开区间：origin <= p < origin+size
func (r Rect) Contains(p Point) bool {
	return r.Origin.X <= p.X && p.X < r.Origin.X+r.Size.Width &&
		r.Origin.Y <= p.Y && p.Y < r.Origin.Y+r.Size.Height
}

// Union 包含两个矩形的最小矩形；空矩形不参与
func (r Rect) Union(that Rect) Rect {
	if r.IsEmpty() {
		return that
	}
	if that.IsEmpty() {
		return r
	}
	return RectFromPoints(
		Point{X: math.Min(r.Left(), that.Left()), Y: math.Min(r.Top(), that.Top())},
		Point{X: math.Max(r.Right(), that.Right()), Y: math.Max(r.Bottom(), that.Bottom())},
	)
}

// IsEmpty 宽或高不为正
func (r Rect) IsEmpty() bool {
	return r.Size.Width <= 0 || r.Size.Height <= 0
}

// IsFinite 检查所有分量是否为有限值
func (r Rect) IsFinite() bool {
	return r.Origin.IsFinite() && r.Size.IsFinite()
}

// SetBottomAbs 把下边移动到 bottom；越过上边时翻转并返回 true
func (r *Rect) SetBottomAbs(bottom float64) bool {
	flip := bottom < r.Origin.Y
	if flip {
		r.Size.Height = r.Origin.Y - bottom
		r.Origin.Y = bottom
	} else {
		r.Size.Height = bottom - r.Origin.Y
	}
	return flip
}

// SetRightAbs 把右边移动到 right；越过左边时翻转并返回 true
func (r *Rect) SetRightAbs(right float64) bool {
	flip := right < r.Origin.X
	if flip {
		r.Size.Width = r.Origin.X - right
		r.Origin.X = right
	} else {
		r.Size.Width = right - r.Origin.X
	}
	return flip
}

// SetTopAbs 把上边移动到 top；越过下边时翻转并返回 true
func (r *Rect) SetTopAbs(top float64) bool {
	flip := top > r.Origin.Y+r.Size.Height
	if flip {
		r.Origin.Y += r.Size.Height
		r.Size.Height = top - r.Origin.Y
	} else {
		r.Size.Height += r.Origin.Y - top
		r.Origin.Y = top
	}
	return flip
}

// SetLeftAbs 把左边移动到 left；越过右边时翻转并返回 true
func (r *Rect) SetLeftAbs(left float64) bool {
	flip := left > r.Origin.X+r.Size.Width
	if flip {
		r.Origin.X += r.Size.Width
		r.Size.Width = left - r.Origin.X
	} else {
		r.Size.Width += r.Origin.X - left
		r.Origin.X = left
	}
	return flip
}

func (r Rect) String() string {
	return fmt.Sprintf("[%f,%f,%f,%f]", r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
