package sketch

import (
	"sort"

	"github.com/mattn/go-runewidth"
)

// TextLayout 一次排版的结果。LeftEdges 比文本多一项（末尾光标位置），
// NewRowIndexes 为第 2 行起每行第一个字符的下标（第 0 行隐含从 0 开始），下标均按 rune 计
type TextLayout struct {
	LeftEdges     []float64
	NewRowIndexes []int
	LineHeight    float64
	Ascent        float64
}

// TextLayouter 文本排版器：给定文本和最大宽度计算每个字符的左边缘与换行位置
type TextLayouter interface {
	Layout(text []rune, maxWidth float64) TextLayout
}

// TextFont 文本框字体
type TextFont struct {
	Family string
	Size   float64
}

var defaultTextFont = TextFont{Family: "Monospace", Size: 13}

// DefaultTextFont 新建文本框使用的字体
func DefaultTextFont() TextFont {
	return defaultTextFont
}

// SetDefaultTextFont 修改文本框字体（来自配置文件）
func SetDefaultTextFont(f TextFont) {
	if f.Family == "" {
		f.Family = defaultTextFont.Family
	}
	if f.Size <= 0 {
		f.Size = defaultTextFont.Size
	}
	defaultTextFont = f
}

// CellLayout 等宽字符格排版：每个字符占 runewidth 个格。
// 按单词换行，单词比一行还长时拆开
type CellLayout struct {
	CellWidth  float64
	LineHeight float64
	Ascent     float64
}

// NewCellLayout 按字号创建等宽排版器：格宽 0.6 倍字号，行高 1.2 倍字号
func NewCellLayout(fontSize float64) *CellLayout {
	if fontSize <= 0 {
		fontSize = defaultTextFont.Size
	}
	return &CellLayout{
		CellWidth:  fontSize * 0.6,
		LineHeight: fontSize * 1.2,
		Ascent:     fontSize * 0.9,
	}
}

func (l *CellLayout) advance(r rune) float64 {
	return float64(runewidth.RuneWidth(r)) * l.CellWidth
}

func (l *CellLayout) Layout(text []rune, maxWidth float64) TextLayout {
	out := TextLayout{
		LeftEdges:  make([]float64, len(text)+1),
		LineHeight: l.LineHeight,
		Ascent:     l.Ascent,
	}
	edges := out.LeftEdges
	leftEdge := 0.0
	startOfWord := 0
	for i := 0; i < len(text); i++ {
		r := text[i]
		if r == '\n' {
			edges[i] = leftEdge
			if leftEdge == 0 && i != 0 {
				out.NewRowIndexes = append(out.NewRowIndexes, i)
			}
			leftEdge = 0
			if i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\n' {
				startOfWord = i + 1
			}
			continue
		}

		width := l.advance(r)
		rightEdge := leftEdge + width
		if rightEdge > maxWidth {
			if r == ' ' {
				// 行尾空格保留位置，下一个字符换行
				rightEdge = 0
			} else {
				if startOfWord > 0 && startOfWord < i && edges[startOfWord] > 0 {
					// 整个单词移到下一行
					i = startOfWord - 1
					leftEdge = 0
					out.NewRowIndexes = trimRowsFrom(out.NewRowIndexes, startOfWord)
					continue
				}
				leftEdge = 0
				rightEdge = width
			}
		}
		edges[i] = leftEdge
		if leftEdge == 0 && i != 0 && width > 0 {
			out.NewRowIndexes = append(out.NewRowIndexes, i)
		}
		if i+1 < len(text) && r == ' ' && text[i+1] != ' ' && text[i+1] != '\n' {
			startOfWord = i + 1
		}
		leftEdge = rightEdge
	}
	edges[len(text)] = leftEdge
	if leftEdge == 0 && len(text) != 0 {
		out.NewRowIndexes = append(out.NewRowIndexes, len(text))
	}
	return out
}

// trimRowsFrom 去掉 >= from 的换行位置
func trimRowsFrom(rows []int, from int) []int {
	n := sort.SearchInts(rows, from)
	return rows[:n]
}

// RowCount 行数
func (t *TextLayout) RowCount() int {
	return len(t.NewRowIndexes) + 1
}

// RowIndex 下标 index 所在的行
func (t *TextLayout) RowIndex(index int) int {
	return sort.Search(len(t.NewRowIndexes), func(i int) bool {
		return t.NewRowIndexes[i] > index
	})
}

// RowRange 第 row 行的下标范围 [start, end)
func (t *TextLayout) RowRange(row, textLen int) (start, end int) {
	if row > 0 && row-1 < len(t.NewRowIndexes) {
		start = t.NewRowIndexes[row-1]
	}
	end = textLen
	if row < len(t.NewRowIndexes) {
		end = t.NewRowIndexes[row]
	}
	return start, end
}

// IndexForRowAndOffset 第 row 行中最接近 x 的光标位置
func (t *TextLayout) IndexForRowAndOffset(row int, x float64, textLen int) int {
	first, end := t.RowRange(row, textLen)
	last := end
	if row < len(t.NewRowIndexes) {
		last = end - 1
	}
	if last <= first {
		return first
	}
	// 第一个左边缘 >= x 的位置
	n := first + sort.Search(last-first, func(i int) bool {
		return t.LeftEdges[first+i] >= x
	})
	if n == first {
		return first
	}
	if n == last && t.LeftEdges[n] < x {
		return last
	}
	if t.LeftEdges[n]-x <= x-t.LeftEdges[n-1] {
		return n
	}
	return n - 1
}
