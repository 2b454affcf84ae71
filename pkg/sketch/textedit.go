package sketch

import (
	"sort"
	"strings"
	"unicode"

	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/undo"
	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// Editor 可以进入编辑状态的注释（目前只有文本框）
type Editor interface {
	Annotation
	BeginEditing(m *undo.Manager)
	EndEditing()
	IsEditing() bool
	OnKeyText(text string, mods Modifiers)
	OnKeyDown(ev KeyEvent)
	OnPaste(text string) bool
	OnMouseDown(p geom.Point) bool
	OnMouseDrag(p geom.Point)
	OnMouseUp()
}

var _ Editor = (*TextArea)(nil)

// BeginEditing 进入编辑：压入撤销标记，光标移到文本末尾
func (t *TextArea) BeginEditing(m *undo.Manager) {
	t.editing = true
	t.undo = m
	if m != nil {
		m.SetMarker()
	}
	t.selStart = len(t.text)
	t.selSize = 0
	t.cursorSide = sideLeft
	t.cursorX = -1
	t.SetNeedsDisplay(false)
}

// EndEditing 退出编辑。没有任何修改时丢弃标记；
// 否则标记和会话中的操作都留在历史中，撤销到标记处停止
func (t *TextArea) EndEditing() {
	if !t.editing {
		return
	}
	t.editing = false
	if t.undo != nil && !t.undo.OpsAddedAfterMarker() {
		t.undo.ClearFromMarker()
	}
	t.undo = nil
	t.selSize = 0
	t.SetNeedsDisplay(false)
}

func (t *TextArea) IsEditing() bool { return t.editing }

// OnKeyText 输入文本，替换选区。带快捷键修饰的输入被忽略
func (t *TextArea) OnKeyText(text string, mods Modifiers) {
	if mods&ModShortcut != 0 || text == "" {
		return
	}
	t.replaceSelection(text)
}

// OnPaste 粘贴文本，整体作为一次撤销操作
func (t *TextArea) OnPaste(text string) bool {
	if text == "" {
		return false
	}
	t.replaceSelection(text)
	return true
}

// replaceSelection 用 text 替换选区并记录逆操作
func (t *TextArea) replaceSelection(text string) {
	insert := []rune(normalizeText(text))
	oldStart, oldSize := t.selStart, t.selSize
	oldSelected := string(t.text[t.selStart : t.selStart+t.selSize])

	t.SetNeedsDisplay(false)
	t.eraseSelection()
	t.text = append(t.text[:t.selStart], append(insert, t.text[t.selStart:]...)...)
	t.selStart += len(insert)
	t.cursorX = -1
	t.relayout()
	t.SetNeedsDisplay(false)

	t.addUndo(undo.NewTextTransformOp(t, t.selStart-len(insert), len(insert),
		oldSelected, oldStart, oldSize))
}

// OnKeyDown 处理编辑键、光标移动和 Alt+方向键平移
func (t *TextArea) OnKeyDown(ev KeyEvent) {
	switch ev.Key {
	case KeyLeft, KeyRight, KeyUp, KeyDown:
		if ev.Alt() {
			t.nudge(ev)
			return
		}
	}

	switch ev.Key {
	case KeyEnter:
		t.replaceSelection("\n")
		return
	case KeyBackspace, KeyDelete:
		t.deleteBackwardOrForward(ev.Key == KeyBackspace)
	case KeyHome, KeyEnd, KeyUp, KeyDown, KeyLeft, KeyRight:
		t.moveCursor(ev)
	case KeyA:
		if ev.Control() {
			t.selStart = 0
			t.selSize = len(t.text)
			t.cursorSide = sideRight
			t.cursorX = -1
		}
	}
	t.SetNeedsDisplay(false)
}

// nudge 平移文本框 1 点，按住 Shift 时 10 点
func (t *TextArea) nudge(ev KeyEvent) {
	var dx, dy float64
	switch ev.Key {
	case KeyLeft:
		dx = -1
	case KeyRight:
		dx = 1
	case KeyUp:
		dy = -1
	case KeyDown:
		dy = 1
	}
	if ev.Shift() {
		dx *= 10
		dy *= 10
	}
	MoveByUndoable(t, t.undo, dx, dy)
}

func (t *TextArea) deleteBackwardOrForward(backward bool) {
	if t.selSize > 0 {
		trimmed := string(t.text[t.selStart : t.selStart+t.selSize])
		t.addUndo(undo.NewTextTransformOp(t, t.selStart, 0, trimmed, t.selStart, t.selSize))
		t.eraseSelection()
		t.relayout()
		return
	}
	if backward {
		if t.selStart == 0 {
			return
		}
		start := t.prevGrapheme(t.selStart)
		trimmed := string(t.text[start:t.selStart])
		finalStart := t.selStart
		t.text = append(t.text[:start], t.text[t.selStart:]...)
		t.selStart = start
		t.addUndo(undo.NewTextTransformOp(t, start, 0, trimmed, finalStart, 0))
	} else {
		if t.selStart >= len(t.text) {
			return
		}
		end := t.nextGrapheme(t.selStart)
		trimmed := string(t.text[t.selStart:end])
		t.text = append(t.text[:t.selStart], t.text[end:]...)
		t.addUndo(undo.NewTextTransformOp(t, t.selStart, 0, trimmed, t.selStart, 0))
	}
	t.cursorX = -1
	t.relayout()
}

func (t *TextArea) moveCursor(ev KeyEvent) {
	var next int
	switch ev.Key {
	case KeyHome, KeyEnd:
		next = t.cursorForHomeEnd(ev.Key == KeyHome)
		t.cursorX = -1
	case KeyUp, KeyDown:
		if t.cursorX < 0 {
			t.cursorX = t.layout.LeftEdges[t.cursorPos()]
		}
		next = t.cursorForUpDown(ev.Key == KeyUp)
	case KeyLeft, KeyRight:
		next = t.cursorForLeftRight(ev.Key == KeyLeft, ev.Shift(), ev.Control())
		t.cursorX = -1
	}
	if !ev.Shift() {
		t.selStart = next
		t.selSize = 0
		return
	}
	t.setSelection(t.nonCursorPos(), next)
}

func (t *TextArea) cursorPos() int {
	if t.cursorSide == sideLeft {
		return t.selStart
	}
	return t.selStart + t.selSize
}

func (t *TextArea) nonCursorPos() int {
	if t.cursorSide == sideRight {
		return t.selStart
	}
	return t.selStart + t.selSize
}

// setSelection 选区为 nonCursor 与 cursor 之间，光标在 cursor 一侧
func (t *TextArea) setSelection(nonCursor, cursor int) {
	t.selStart = min(nonCursor, cursor)
	t.selSize = max(nonCursor, cursor) - t.selStart
	if cursor < nonCursor {
		t.cursorSide = sideLeft
	} else {
		t.cursorSide = sideRight
	}
}

func (t *TextArea) eraseSelection() {
	if t.selSize == 0 {
		return
	}
	t.text = append(t.text[:t.selStart], t.text[t.selStart+t.selSize:]...)
	t.selSize = 0
}

func (t *TextArea) cursorForHomeEnd(home bool) int {
	rows := t.layout.NewRowIndexes
	if len(rows) == 0 {
		if home {
			return 0
		}
		return len(t.text)
	}
	n := sort.Search(len(rows), func(i int) bool { return rows[i] > t.cursorPos() })
	if n == len(rows) {
		if home {
			return rows[n-1]
		}
		return len(t.text)
	}
	if !home {
		return rows[n] - 1
	}
	if n == 0 {
		return 0
	}
	return rows[n-1]
}

func (t *TextArea) cursorForUpDown(up bool) int {
	row := t.layout.RowIndex(t.cursorPos())
	lastRow := t.layout.RowIndex(len(t.text))
	if row == 0 && up {
		return 0
	}
	if row == lastRow && !up {
		return len(t.text)
	}
	if up {
		row--
	} else {
		row++
	}
	return t.layout.IndexForRowAndOffset(row, t.cursorX, len(t.text))
}

func (t *TextArea) cursorForLeftRight(left, shift, control bool) int {
	// 没有 Shift 且有选区时，移到选区的对应端
	if !shift && !control && t.selSize > 0 {
		if left {
			return t.selStart
		}
		return t.selStart + t.selSize
	}
	cursor := t.cursorPos()
	if control {
		if left {
			return t.prevWordStart(cursor)
		}
		return t.nextWordEnd(cursor)
	}
	if left {
		return t.prevGrapheme(cursor)
	}
	return t.nextGrapheme(cursor)
}

// graphemeBoundaries 所有字素簇边界（rune 下标），包括 0 和文本长度
func (t *TextArea) graphemeBoundaries() []int {
	bounds := []int{0}
	pos := 0
	g := uniseg.NewGraphemes(string(t.text))
	for g.Next() {
		pos += len(g.Runes())
		bounds = append(bounds, pos)
	}
	return bounds
}

func (t *TextArea) prevGrapheme(cursor int) int {
	bounds := t.graphemeBoundaries()
	n := sort.SearchInts(bounds, cursor)
	if n == 0 {
		return 0
	}
	return bounds[n-1]
}

func (t *TextArea) nextGrapheme(cursor int) int {
	bounds := t.graphemeBoundaries()
	n := sort.Search(len(bounds), func(i int) bool { return bounds[i] > cursor })
	if n == len(bounds) {
		return len(t.text)
	}
	return bounds[n]
}

type wordSpan struct {
	start, end int
}

// words 包含字母或数字的单词片段
func (t *TextArea) words() []wordSpan {
	var spans []wordSpan
	rest := string(t.text)
	state := -1
	pos := 0
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		n := runeCount(word)
		if strings.IndexFunc(word, isWordRune) >= 0 {
			spans = append(spans, wordSpan{start: pos, end: pos + n})
		}
		pos += n
	}
	return spans
}

func (t *TextArea) prevWordStart(cursor int) int {
	words := t.words()
	for i := len(words) - 1; i >= 0; i-- {
		if words[i].start < cursor {
			return words[i].start
		}
	}
	return 0
}

func (t *TextArea) nextWordEnd(cursor int) int {
	for _, w := range t.words() {
		if w.end > cursor {
			return w.end
		}
	}
	return len(t.text)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// OnMouseDown 把光标放到点击位置
func (t *TextArea) OnMouseDown(p geom.Point) bool {
	t.selStart = t.IndexForPoint(p)
	t.selSize = 0
	t.cursorSide = sideLeft
	t.cursorX = -1
	t.SetNeedsDisplay(false)
	return true
}

// OnMouseDrag 从按下位置到当前位置建立选区
func (t *TextArea) OnMouseDrag(p geom.Point) {
	t.setSelection(t.nonCursorPos(), t.IndexForPoint(p))
	t.SetNeedsDisplay(false)
}

func (t *TextArea) OnMouseUp() {}

func (t *TextArea) addUndo(op undo.Op) {
	if t.undo != nil {
		t.undo.AddOp(op)
	}
}

// normalizeText 统一换行符并做 NFC 规范化
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}
