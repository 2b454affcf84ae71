package sketch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
)

// fakeDelegate 页面原点在视图原点，按 zoom 缩放
type fakeDelegate struct {
	zoom  float64
	dirty []geom.Rect
}

func newFakeDelegate(zoom float64) *fakeDelegate {
	return &fakeDelegate{zoom: zoom}
}

func (d *fakeDelegate) ConvertPointToAnnotation(page int, p geom.Point) geom.Point {
	return p.ScaledBy(1 / d.zoom)
}

func (d *fakeDelegate) ConvertPointFromAnnotation(page int, p geom.Point) geom.Point {
	return p.ScaledBy(d.zoom)
}

func (d *fakeDelegate) Zoom() float64 { return d.zoom }

func (d *fakeDelegate) SetNeedsDisplayInPageRect(page int, r geom.Rect) {
	d.dirty = append(d.dirty, r)
}

func TestPlaceAndFlipScenario(t *testing.T) {
	r := NewRectangle()
	r.SetDelegate(newFakeDelegate(1))

	r.Place(0, geom.Pt(10, 10), false)
	r.PlaceUpdate(geom.Pt(110, 60), false)
	if r.PlaceComplete() {
		t.Fatal("PlaceComplete() = true for a non-empty rectangle")
	}
	if got, want := r.Frame(), geom.R(10, 10, 100, 50); got != want {
		t.Fatalf("frame after place = %v, want %v", got, want)
	}
	if h, v := r.Flips(); h || v {
		t.Fatalf("flips after place = %v,%v, want none", h, v)
	}

	r.BeginResize(geom.Pt(5, 5), KnobLowerRight, false)
	if got, want := r.Frame(), geom.R(5, 5, 5, 5); got != want {
		t.Errorf("frame after flip = %v, want %v", got, want)
	}
	if h, v := r.Flips(); !h || !v {
		t.Errorf("flips = %v,%v, want both", h, v)
	}
	if got := r.ResizingKnob(); got != KnobUpperLeft {
		t.Errorf("active knob = %v, want upper-left", got)
	}
	r.EndResize()
	if got := r.ResizingKnob(); got != KnobNone {
		t.Errorf("knob after EndResize = %v", got)
	}
}

func TestPlaceCompleteDeletesEmpty(t *testing.T) {
	tests := []struct {
		name   string
		a      Annotation
		to     geom.Point
		delete bool
	}{
		{"rectangle click", NewRectangle(), geom.Pt(10, 10), true},
		{"rectangle flat", NewRectangle(), geom.Pt(50, 10), true},
		{"circle drag", NewCircle(), geom.Pt(30, 40), false},
		{"checkmark click", NewCheckmark(), geom.Pt(10, 10), false},
		{"squiggle single point", NewSquiggle(), geom.Pt(10, 10), true},
		{"squiggle line", NewSquiggle(), geom.Pt(50, 10), false},
		{"text click", NewTextArea(), geom.Pt(10, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.a.Place(0, geom.Pt(10, 10), false)
			tt.a.PlaceUpdate(tt.to, false)
			if got := tt.a.PlaceComplete(); got != tt.delete {
				t.Errorf("PlaceComplete() = %v, want %v (frame %v)", got, tt.delete, tt.a.Frame())
			}
		})
	}
}

func TestResizeEdgeKnobsMoveOneEdge(t *testing.T) {
	tests := []struct {
		knob Knob
		to   geom.Point
		want geom.Rect
	}{
		{KnobUpperMiddle, geom.Pt(999, 0), geom.R(10, 0, 100, 60)},
		{KnobLowerMiddle, geom.Pt(999, 100), geom.R(10, 10, 100, 90)},
		{KnobMiddleLeft, geom.Pt(0, 999), geom.R(0, 10, 110, 50)},
		{KnobMiddleRight, geom.Pt(200, 999), geom.R(10, 10, 190, 50)},
	}
	for _, tt := range tests {
		t.Run(tt.knob.String(), func(t *testing.T) {
			r := NewRectangle()
			r.SetFrame(geom.R(10, 10, 100, 50))
			r.BeginResize(tt.to, tt.knob, true)
			if diff := cmp.Diff(tt.want, r.Frame()); diff != "" {
				t.Errorf("frame mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConstrainedCornerResize(t *testing.T) {
	r := NewRectangle()
	r.SetFrame(geom.R(0, 0, 100, 50))

	r.BeginResize(geom.Pt(300, 100), KnobLowerRight, true)
	if got, want := r.Frame(), geom.R(0, 0, 200, 100); got != want {
		t.Errorf("lower-right constrained = %v, want %v", got, want)
	}
	r.EndResize()

	// 左侧控制点固定右边
	r.SetFrame(geom.R(0, 0, 100, 50))
	r.BeginResize(geom.Pt(-50, -50), KnobUpperLeft, true)
	if got, want := r.Frame(), geom.R(-100, -50, 200, 100); got != want {
		t.Errorf("upper-left constrained = %v, want %v", got, want)
	}
}

func TestConstrainUsesNaturalSize(t *testing.T) {
	s := NewSquiggle()
	s.Place(0, geom.Pt(0, 0), false)
	s.PlaceUpdate(geom.Pt(40, 10), false)
	s.PlaceUpdate(geom.Pt(20, 20), false)
	s.PlaceComplete()
	if got, want := s.NaturalSize(), geom.Sz(40, 20); got != want {
		t.Fatalf("natural size = %v, want %v", got, want)
	}
	// 框架比例被改变后，约束仍按固有尺寸 2:1
	s.SetFrame(geom.R(0, 0, 10, 10))
	s.BeginResize(geom.Pt(0, 30), KnobLowerRight, true)
	if got, want := s.Frame(), geom.R(0, 0, 60, 30); got != want {
		t.Errorf("frame = %v, want %v", got, want)
	}
}

func TestPointInKnob(t *testing.T) {
	r := NewRectangle()
	r.SetDelegate(newFakeDelegate(1))
	r.SetFrame(geom.R(10, 10, 100, 50))

	tests := []struct {
		p    geom.Point
		want Knob
	}{
		{geom.Pt(10, 10), KnobUpperLeft},
		{geom.Pt(60, 10), KnobUpperMiddle},
		{geom.Pt(112, 12), KnobUpperRight},
		{geom.Pt(10, 35), KnobMiddleLeft},
		{geom.Pt(110, 35), KnobMiddleRight},
		{geom.Pt(8, 62), KnobLowerLeft},
		{geom.Pt(60, 60), KnobLowerMiddle},
		{geom.Pt(110, 60), KnobLowerRight},
		{geom.Pt(50, 30), KnobNone},
		{geom.Pt(115, 60), KnobNone},
	}
	for _, tt := range tests {
		if got := r.PointInKnob(tt.p); got != tt.want {
			t.Errorf("PointInKnob(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	text := NewTextArea()
	text.SetDelegate(newFakeDelegate(1))
	text.SetFrame(geom.R(10, 10, 100, 50))
	if got := text.PointInKnob(geom.Pt(10, 10)); got != KnobNone {
		t.Errorf("text area corner knob = %v, want none", got)
	}
	mid := text.Frame().Center().Y
	if got := text.PointInKnob(geom.Pt(110, mid)); got != KnobMiddleRight {
		t.Errorf("text area side knob = %v, want middle-right", got)
	}
}

func TestKnobFrameIsFixedInViewPixels(t *testing.T) {
	r := NewRectangle()
	r.SetDelegate(newFakeDelegate(2))
	r.SetFrame(geom.R(10, 10, 100, 50))

	kf := r.KnobFrame(KnobUpperLeft)
	// 7 个视图像素在 2 倍缩放下是 3.5 点
	if got, want := kf, geom.R(8.25, 8.25, 3.5, 3.5); got != want {
		t.Errorf("KnobFrame = %v, want %v", got, want)
	}
	if !r.DrawingFrameWithKnobs().Intersects(kf) {
		t.Error("DrawingFrameWithKnobs does not cover knob frame")
	}
}

func TestInvalidationBeforeAndAfter(t *testing.T) {
	d := newFakeDelegate(1)
	r := NewRectangle()
	r.SetDelegate(d)
	r.SetFrame(geom.R(0, 0, 10, 10))
	d.dirty = nil

	r.MoveBy(100, 0)
	if len(d.dirty) != 2 {
		t.Fatalf("MoveBy invalidated %d rects, want 2", len(d.dirty))
	}
	if !d.dirty[0].Contains(geom.Pt(5, 5)) || !d.dirty[1].Contains(geom.Pt(105, 5)) {
		t.Errorf("dirty rects = %v", d.dirty)
	}
}

func TestHitTestUsesDrawingFrame(t *testing.T) {
	r := NewRectangle()
	r.SetFrame(geom.R(10, 10, 10, 10))
	r.SetStyle(Style{Stroke: Black, LineWidth: 4})
	if !r.HitTest(geom.Pt(8.5, 10)) {
		t.Error("point in the stroke outset should hit")
	}
	if r.HitTest(geom.Pt(7, 10)) {
		t.Error("point outside the stroke should miss")
	}
}

func TestCheckmarkCentersOnPointer(t *testing.T) {
	c := NewCheckmark()
	c.Place(1, geom.Pt(50, 50), false)
	c.PlaceUpdate(geom.Pt(60, 40), false)
	if got, want := c.Frame(), geom.R(55.5, 35.5, 9, 9); got != want {
		t.Errorf("frame = %v, want %v", got, want)
	}
	if c.Page() != 1 {
		t.Errorf("page = %d, want 1", c.Page())
	}
}

func TestSquiggleSkipsDuplicatePoints(t *testing.T) {
	s := NewSquiggle()
	s.Place(0, geom.Pt(5, 5), false)
	s.PlaceUpdate(geom.Pt(5, 5), false)
	s.PlaceUpdate(geom.Pt(10, 8), false)
	s.PlaceUpdate(geom.Pt(10, 8), false)
	s.PlaceUpdate(geom.Pt(2, 12), false)

	want := []geom.Point{geom.Pt(5, 5), geom.Pt(10, 8), geom.Pt(2, 12)}
	if diff := cmp.Diff(want, s.Points()); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	if got, want := s.Frame(), geom.R(2, 5, 8, 7); got != want {
		t.Errorf("frame = %v, want %v", got, want)
	}
}

func TestToolNames(t *testing.T) {
	for _, tool := range Tools() {
		got, err := ParseTool(tool.String())
		if err != nil || got != tool {
			t.Errorf("ParseTool(%q) = %v, %v", tool.String(), got, err)
		}
	}
	if _, err := ParseTool("lasso"); err == nil {
		t.Error("expected error for unknown tool")
	}
	if NewForTool(ToolArrow) != nil {
		t.Error("arrow tool should not create an annotation")
	}
	if a := NewForTool(ToolSquiggle); a == nil || a.Kind() != KindSquiggle {
		t.Errorf("NewForTool(squiggle) = %v", a)
	}
}

func TestColorHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		hex  string
	}{
		{"#000000", Black, "#000000ff"},
		{"#ffffff80", Color{R: 1, G: 1, B: 1, A: 128.0 / 255.0}, "#ffffff80"},
		{"00ff00", Color{G: 1, A: 1}, "#00ff00ff"},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got.Hex() != tt.hex {
			t.Errorf("Hex() = %q, want %q", got.Hex(), tt.hex)
		}
	}
	for _, bad := range []string{"", "#12345", "#gggggg"} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("ParseHex(%q) succeeded", bad)
		}
	}
}
