package sketch

import (
	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/undo"
)

const (
	textAreaWidth       = 150.0
	textAreaPlaceHeight = 72.0
)

type selectionSide int

const (
	sideLeft selectionSide = iota
	sideRight
)

// TextArea 文本框。宽度由用户调整，高度跟随内容行数
type TextArea struct {
	Base

	text     []rune
	font     TextFont
	layouter TextLayouter
	layout   TextLayout

	selStart   int
	selSize    int
	cursorSide selectionSide
	// cursorX 上下移动光标时希望保持的水平位置，负数表示未设置
	cursorX float64

	editing bool
	undo    *undo.Manager
}

// NewTextArea 创建空文本框
func NewTextArea() *TextArea {
	t := &TextArea{
		Base:    newBase(KnobsSides),
		font:    defaultTextFont,
		cursorX: -1,
	}
	t.frame.Size.Width = textAreaWidth
	t.layouter = NewCellLayout(t.font.Size)
	t.relayout()
	return t
}

// NewText 创建包含 text 的文本框（粘贴文本时使用）
func NewText(text string) *TextArea {
	t := NewTextArea()
	t.text = []rune(normalizeText(text))
	t.selStart = len(t.text)
	t.relayout()
	return t
}

func (t *TextArea) Kind() Kind     { return KindText }
func (t *TextArea) Editable() bool { return true }

// Text 当前文本
func (t *TextArea) Text() string { return string(t.text) }

// SetText 替换文本（不记录撤销）
func (t *TextArea) SetText(s string) {
	t.SetNeedsDisplay(false)
	t.text = []rune(normalizeText(s))
	t.selStart = min(t.selStart, len(t.text))
	t.selSize = 0
	t.relayout()
	t.SetNeedsDisplay(false)
}

// Selection 选区起点和长度（rune 下标）
func (t *TextArea) Selection() (start, size int) { return t.selStart, t.selSize }

// Layout 当前排版结果
func (t *TextArea) Layout() TextLayout { return t.layout }

// SetLayouter 替换排版器
func (t *TextArea) SetLayouter(l TextLayouter) {
	if l == nil {
		l = NewCellLayout(t.font.Size)
	}
	t.layouter = l
	t.relayout()
}

// relayout 按当前宽度重新排版，并把高度设为行数乘行高
func (t *TextArea) relayout() {
	t.layout = t.layouter.Layout(t.text, t.frame.Size.Width)
	height := float64(t.layout.RowCount()) * t.layout.LineHeight
	if height != t.frame.Size.Height {
		t.SetNeedsDisplay(true)
		t.frame.Size.Height = height
		t.SetNeedsDisplay(true)
	}
}

// Place 文本框放置时框架固定为 150x72，不随拖动改变大小
func (t *TextArea) Place(page int, location geom.Point, constrain bool) {
	t.page = page
	t.PlaceUpdate(location, constrain)
}

func (t *TextArea) PlaceUpdate(location geom.Point, constrain bool) {
	t.SetNeedsDisplay(true)
	t.frame = geom.Rect{Origin: location, Size: geom.Sz(textAreaWidth, textAreaPlaceHeight)}
	t.SetNeedsDisplay(true)
}

// PlaceComplete 文本框从不因为尺寸被删除
func (t *TextArea) PlaceComplete() bool {
	t.resizingKnob = KnobNone
	t.relayout()
	return false
}

func (t *TextArea) SetFrame(r geom.Rect) {
	t.Base.SetFrame(r)
	t.relayout()
}

func (t *TextArea) BeginResize(location geom.Point, knob Knob, constrain bool) {
	t.Base.BeginResize(location, knob, constrain)
	t.relayout()
}

func (t *TextArea) UpdateResize(location geom.Point, constrain bool) {
	t.Base.UpdateResize(location, constrain)
	t.relayout()
}

// IndexForPoint 页面坐标对应的光标位置
func (t *TextArea) IndexForPoint(p geom.Point) int {
	if t.frame.Size.Height < 0.0001 {
		return 0
	}
	yFraction := (p.Y - t.frame.Top()) / t.frame.Size.Height
	if yFraction < 0 {
		return 0
	}
	if yFraction >= 1 {
		return len(t.text)
	}
	row := int(yFraction * float64(t.layout.RowCount()))
	return t.layout.IndexForRowAndOffset(row, p.X-t.frame.Left(), len(t.text))
}

func (t *TextArea) Draw(ctx cairo.Context, selected bool) {
	lineHeight := t.layout.LineHeight
	ctx.Save()
	defer ctx.Restore()

	if t.editing && t.selSize > 0 {
		ctx.SetSourceRGBA(0, 0, 1, 0.2)
		for i := t.selStart; i < t.selStart+t.selSize && i < len(t.text); i++ {
			width := t.layout.LeftEdges[i+1] - t.layout.LeftEdges[i]
			if width <= 0 {
				width = t.frame.Size.Width - t.layout.LeftEdges[i]
			}
			box := geom.R(t.layout.LeftEdges[i], float64(t.layout.RowIndex(i))*lineHeight, width, lineHeight)
			box = box.TranslatedBy(t.frame.Left(), t.frame.Top())
			ctx.NewPath()
			rectPath(ctx, box)
			ctx.Fill()
		}
	}

	if len(t.text) > 0 {
		layout := ctx.PangoCairoCreateLayout().(*cairo.PangoCairoLayout)
		fontDesc := cairo.NewPangoFontDescription()
		fontDesc.SetFamily(t.font.Family)
		fontDesc.SetSize(t.font.Size)
		layout.SetFontDescription(fontDesc)
		t.style.Stroke.SetSource(ctx)
		for row := 0; row < t.layout.RowCount(); row++ {
			start, end := t.layout.RowRange(row, len(t.text))
			line := trimNewlines(t.text[start:end])
			if len(line) == 0 {
				continue
			}
			ctx.MoveTo(t.frame.Left(), t.frame.Top()+float64(row)*lineHeight+t.layout.Ascent)
			layout.SetText(string(line))
			ctx.PangoCairoShowText(layout)
		}
	}

	if !t.editing && !selected {
		return
	}
	ctx.NewPath()
	rectPath(ctx, t.frame)
	ctx.SetSourceRGBA(0, 0, 0, 0.2)
	ctx.SetLineWidth(1)
	ctx.Stroke()

	if t.editing && t.selSize == 0 && t.selStart <= len(t.text) {
		x := t.layout.LeftEdges[t.selStart] + t.frame.Left()
		y := float64(t.layout.RowIndex(t.selStart))*lineHeight + t.frame.Top()
		ctx.SetSourceRGBA(0, 0, 0, 1)
		ctx.SetLineWidth(1)
		ctx.MoveTo(x, y)
		ctx.LineTo(x, y+lineHeight)
		ctx.Stroke()
	}
}

// ApplyTextTransform 执行文本变换并把逆操作加回撤销管理器
func (t *TextArea) ApplyTextTransform(op *undo.TextTransformOp, m *undo.Manager) {
	preStart, preSize := t.selStart, t.selSize
	text, trimmed := op.ApplyTo(string(t.text))

	t.SetNeedsDisplay(false)
	t.text = []rune(text)
	t.setSelectionRange(op.FinalStart(), op.FinalSize())
	t.cursorX = -1
	t.relayout()
	t.SetNeedsDisplay(false)

	m.AddOp(undo.NewTextTransformOp(t, op.RemoveStart(), runeCount(op.Insert()),
		trimmed, preStart, preSize))
}

func (t *TextArea) setSelectionRange(start, size int) {
	start = min(max(start, 0), len(t.text))
	size = min(max(size, 0), len(t.text)-start)
	t.selStart, t.selSize = start, size
	t.cursorSide = sideLeft
}

func (t *TextArea) Serialize() Record {
	rec := t.serializeBase(KindText)
	rec.Text = &TextPayload{Text: string(t.text)}
	return rec
}

func trimNewlines(line []rune) []rune {
	for len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	return line
}

func runeCount(s string) int {
	return len([]rune(s))
}
