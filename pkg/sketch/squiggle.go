package sketch

import (
	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
)

// Squiggle 手绘折线。点保存在放置时的页面坐标中，绘制时从原始包围盒映射到当前框架
type Squiggle struct {
	Base
	points         []geom.Point
	originalOrigin geom.Point
}

// NewSquiggle 创建手绘线
func NewSquiggle() *Squiggle {
	return &Squiggle{Base: newBase(KnobsAll)}
}

func (s *Squiggle) Kind() Kind { return KindSquiggle }

// Points 返回点列表的副本
func (s *Squiggle) Points() []geom.Point {
	return append([]geom.Point(nil), s.points...)
}

func (s *Squiggle) Place(page int, location geom.Point, constrain bool) {
	s.page = page
	s.points = append(s.points[:0], location)
	s.frame = geom.Rect{Origin: location}
	s.originalOrigin = location
	s.naturalSize = geom.Size{}
}

// PlaceUpdate 追加一个点（跳过重复点）并把框架扩展到包围盒
func (s *Squiggle) PlaceUpdate(location geom.Point, constrain bool) {
	if len(s.points) > 0 && s.points[len(s.points)-1] == location {
		return
	}
	s.points = append(s.points, location)
	if location.X < s.frame.Left() {
		s.frame.SetLeftAbs(location.X)
	}
	if location.X > s.frame.Right() {
		s.frame.SetRightAbs(location.X)
	}
	if location.Y < s.frame.Top() {
		s.frame.SetTopAbs(location.Y)
	}
	if location.Y > s.frame.Bottom() {
		s.frame.SetBottomAbs(location.Y)
	}
	s.originalOrigin = s.frame.Origin
	s.naturalSize = s.frame.Size
	s.SetNeedsDisplay(false)
}

// PlaceComplete 少于两个点或者没有任何范围时删除
func (s *Squiggle) PlaceComplete() bool {
	s.resizingKnob = KnobNone
	return len(s.points) < 2 || s.frame.Size.IsZero()
}

func (s *Squiggle) Draw(ctx cairo.Context, selected bool) {
	if len(s.points) < 2 {
		return
	}
	if s.naturalSize.Width <= 0 && s.naturalSize.Height <= 0 {
		return
	}
	// 水平或竖直的直线只有一个方向有范围，另一个方向按 1 处理
	sx, sy := 1.0, 1.0
	if s.naturalSize.Width > 0 {
		sx = s.frame.Size.Width / s.naturalSize.Width
	}
	if s.naturalSize.Height > 0 {
		sy = s.frame.Size.Height / s.naturalSize.Height
	}
	if sx < 1e-7 && sy < 1e-7 {
		return
	}

	ctx.Save()
	defer ctx.Restore()
	ctx.NewPath()
	if s.hFlip {
		ctx.Translate(2*s.frame.Origin.X+s.frame.Size.Width, 0)
		ctx.Scale(-1, 1)
	}
	if s.vFlip {
		ctx.Translate(0, 2*s.frame.Origin.Y+s.frame.Size.Height)
		ctx.Scale(1, -1)
	}
	ctx.Save()
	ctx.Translate(s.frame.Origin.X, s.frame.Origin.Y)
	ctx.Scale(nonZero(sx), nonZero(sy))
	ctx.Translate(-s.originalOrigin.X, -s.originalOrigin.Y)
	ctx.MoveTo(s.points[0].X, s.points[0].Y)
	for _, p := range s.points[1:] {
		ctx.LineTo(p.X, p.Y)
	}
	ctx.Restore()
	s.style.Stroke.SetSource(ctx)
	ctx.SetLineWidth(s.style.LineWidth)
	ctx.SetLineCap(cairo.LineCapRound)
	ctx.SetLineJoin(cairo.LineJoinRound)
	ctx.Stroke()
}

func (s *Squiggle) Serialize() Record {
	rec := s.serializeBase(KindSquiggle)
	rec.Squiggle = &SquigglePayload{
		OriginalOrigin: s.originalOrigin,
		Points:         s.Points(),
	}
	return rec
}

// nonZero 避免奇异矩阵
func nonZero(v float64) float64 {
	if v < 1e-7 {
		return 1e-7
	}
	return v
}
