package undo

import (
	"fmt"
	"unicode/utf8"

	"github.com/novvoo/go-pdfsketch/pkg/logging"
)

// OpKind 撤销操作类型
type OpKind int

const (
	OpKindFunc OpKind = iota
	OpKindMarker
	OpKindTextTransform
)

func (k OpKind) String() string {
	switch k {
	case OpKindFunc:
		return "func"
	case OpKindMarker:
		return "marker"
	case OpKindTextTransform:
		return "text-transform"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op 可撤销操作。Exec 执行时负责把自己的逆操作加回 Manager
type Op interface {
	Kind() OpKind
	Exec(m *Manager)
	// Merge 尝试把紧随其后的 next 合并进自身，成功返回 true
	Merge(next Op) bool
}

// FuncOp 闭包操作
type FuncOp struct {
	fn func()
}

// NewFuncOp 创建闭包操作
func NewFuncOp(fn func()) *FuncOp {
	return &FuncOp{fn: fn}
}

func (o *FuncOp) Kind() OpKind { return OpKindFunc }

func (o *FuncOp) Exec(m *Manager) {
	if o.fn != nil {
		o.fn()
	}
}

func (o *FuncOp) Merge(next Op) bool { return false }

// MarkerOp 编辑会话的边界标记，不会被当作普通操作撤销
type MarkerOp struct{}

func (MarkerOp) Kind() OpKind       { return OpKindMarker }
func (MarkerOp) Exec(m *Manager)    {}
func (MarkerOp) Merge(next Op) bool { return false }

// TextTarget 可被文本变换操作修改的对象（文本框）
type TextTarget interface {
	ApplyTextTransform(op *TextTransformOp, m *Manager)
}

// TextTransformOp 删除 [removeStart, removeStart+removeSize) 的字符，插入 insert，
// 然后把选区设为 (finalStart, finalSize)。下标均按 rune 计
type TextTransformOp struct {
	target      TextTarget
	removeStart int
	removeSize  int
	insert      string
	finalStart  int
	finalSize   int
}

// NewTextTransformOp 创建文本变换操作
func NewTextTransformOp(target TextTarget, removeStart, removeSize int, insert string, finalStart, finalSize int) *TextTransformOp {
	return &TextTransformOp{
		target:      target,
		removeStart: removeStart,
		removeSize:  removeSize,
		insert:      insert,
		finalStart:  finalStart,
		finalSize:   finalSize,
	}
}

func (o *TextTransformOp) Target() TextTarget { return o.target }
func (o *TextTransformOp) RemoveStart() int   { return o.removeStart }
func (o *TextTransformOp) RemoveSize() int    { return o.removeSize }
func (o *TextTransformOp) Insert() string     { return o.insert }
func (o *TextTransformOp) FinalStart() int    { return o.finalStart }
func (o *TextTransformOp) FinalSize() int     { return o.finalSize }

func (o *TextTransformOp) Kind() OpKind { return OpKindTextTransform }

func (o *TextTransformOp) Exec(m *Manager) {
	logging.Debugf("doing text edit undo: %s\n", o)
	o.target.ApplyTextTransform(o, m)
}

// Merge 合并相邻的同一文本框的操作：
// 两次纯删除（打字的逆操作）且后者紧接前者末尾时扩大删除范围；
// 两次纯插入（退格/删除键的逆操作）位置相邻时拼接插入文本，保留第一次的最终选区
func (o *TextTransformOp) Merge(next Op) bool {
	that, ok := next.(*TextTransformOp)
	if !ok || that.target != o.target {
		return false
	}
	if o.insert == "" && that.insert == "" &&
		that.removeStart == o.removeStart+o.removeSize {
		o.removeSize += that.removeSize
		return true
	}
	if o.removeSize == 0 && that.removeSize == 0 && o.insert != "" && that.insert != "" {
		switch {
		case that.removeStart+utf8.RuneCountInString(that.insert) == o.removeStart:
			// 退格：新删除的字符在前面
			o.removeStart = that.removeStart
			o.insert = that.insert + o.insert
			return true
		case that.removeStart == o.removeStart:
			// 向前删除：位置不变
			o.insert += that.insert
			return true
		}
	}
	return false
}

// ApplyTo 把操作应用到 text，返回新文本和被删除的部分。越界下标会被截断
func (o *TextTransformOp) ApplyTo(text string) (result, removed string) {
	runes := []rune(text)
	start := clamp(o.removeStart, 0, len(runes))
	end := clamp(o.removeStart+o.removeSize, start, len(runes))

	out := make([]rune, 0, len(runes)-(end-start)+utf8.RuneCountInString(o.insert))
	out = append(out, runes[:start]...)
	out = append(out, []rune(o.insert)...)
	out = append(out, runes[end:]...)
	return string(out), string(runes[start:end])
}

func (o *TextTransformOp) String() string {
	return fmt.Sprintf("remove[%d, size %d] ins[%s](size %d) sel[%d, size %d]",
		o.removeStart, o.removeSize, o.insert, utf8.RuneCountInString(o.insert),
		o.finalStart, o.finalSize)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
