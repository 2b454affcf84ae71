package undo

import (
	"testing"
	"unicode/utf8"
)

// textBuf 模拟文本框的编辑协议
type textBuf struct {
	m        *Manager
	text     string
	selStart int
	selSize  int
}

func (b *textBuf) ApplyTextTransform(op *TextTransformOp, m *Manager) {
	preStart, preSize := b.selStart, b.selSize
	text, trimmed := op.ApplyTo(b.text)
	b.text = text
	b.selStart, b.selSize = op.FinalStart(), op.FinalSize()
	m.AddOp(NewTextTransformOp(b, op.RemoveStart(), utf8.RuneCountInString(op.Insert()),
		trimmed, preStart, preSize))
}

func (b *textBuf) typeText(s string) {
	op := NewTextTransformOp(b, b.selStart, 0, s, b.selStart+utf8.RuneCountInString(s), 0)
	text, old := op.ApplyTo(b.text)
	b.text = text
	n := utf8.RuneCountInString(s)
	b.m.AddOp(NewTextTransformOp(b, b.selStart, n, old, b.selStart, b.selSize))
	b.selStart += n
	b.selSize = 0
}

func (b *textBuf) backspace() {
	if b.selStart == 0 {
		return
	}
	runes := []rune(b.text)
	trimmed := string(runes[b.selStart-1])
	b.text = string(runes[:b.selStart-1]) + string(runes[b.selStart:])
	b.selStart--
	b.m.AddOp(NewTextTransformOp(b, b.selStart, 0, trimmed, b.selStart+1, 0))
}

func (b *textBuf) forwardDelete() {
	runes := []rune(b.text)
	if b.selStart >= len(runes) {
		return
	}
	trimmed := string(runes[b.selStart])
	b.text = string(runes[:b.selStart]) + string(runes[b.selStart+1:])
	b.m.AddOp(NewTextTransformOp(b, b.selStart, 0, trimmed, b.selStart, 0))
}

func TestTypingMergesIntoOneEntry(t *testing.T) {
	m := NewManager(0)
	b := &textBuf{m: m}
	for _, r := range "hello, 世界" {
		b.typeText(string(r))
	}
	if m.UndoLen() != 1 {
		t.Fatalf("UndoLen = %d, want 1", m.UndoLen())
	}
	m.PerformUndo()
	if b.text != "" {
		t.Errorf("text after undo = %q", b.text)
	}
	m.PerformRedo()
	if b.text != "hello, 世界" {
		t.Errorf("text after redo = %q", b.text)
	}
}

func TestTypeThenBackspaceBounded(t *testing.T) {
	const k = 40
	m := NewManager(0)
	b := &textBuf{m: m, text: "ab", selStart: 2}
	m.SetMarker()
	for i := 0; i < k; i++ {
		b.typeText("x")
	}
	for i := 0; i < k; i++ {
		b.backspace()
	}
	if b.text != "ab" {
		t.Fatalf("text = %q, want ab", b.text)
	}
	if m.UndoLen() > 3 {
		t.Errorf("history grew to %d entries for %d keystrokes", m.UndoLen(), 2*k)
	}

	m.PerformUndo()
	want := "ab"
	for i := 0; i < k; i++ {
		want += "x"
	}
	if b.text != want {
		t.Errorf("one undo should restore the typed run, got %q", b.text)
	}
	if b.selStart != k+2 || b.selSize != 0 {
		t.Errorf("selection = (%d,%d), want (%d,0)", b.selStart, b.selSize, k+2)
	}
}

func TestForwardDeleteMerges(t *testing.T) {
	m := NewManager(0)
	b := &textBuf{m: m, text: "abcdef", selStart: 1}
	b.forwardDelete()
	b.forwardDelete()
	b.forwardDelete()
	if b.text != "aef" {
		t.Fatalf("text = %q", b.text)
	}
	if m.UndoLen() != 1 {
		t.Fatalf("UndoLen = %d, want 1", m.UndoLen())
	}
	m.PerformUndo()
	if b.text != "abcdef" {
		t.Errorf("text after undo = %q", b.text)
	}
}

func TestTextMergeRequiresSameTarget(t *testing.T) {
	a := &textBuf{}
	b := &textBuf{}
	op := NewTextTransformOp(a, 0, 1, "", 0, 0)
	if op.Merge(NewTextTransformOp(b, 1, 1, "", 1, 0)) {
		t.Error("ops on different targets must not merge")
	}
	if op.Merge(NewTextTransformOp(a, 5, 1, "", 5, 0)) {
		t.Error("non-adjacent removals must not merge")
	}
	if !op.Merge(NewTextTransformOp(a, 1, 2, "", 1, 0)) || op.RemoveSize() != 3 {
		t.Errorf("adjacent removals should merge, got %s", op)
	}
}

func TestApplyToClampsIndices(t *testing.T) {
	op := NewTextTransformOp(nil, 2, 10, "Z", 0, 0)
	got, removed := op.ApplyTo("abcd")
	if got != "abZ" || removed != "cd" {
		t.Errorf("ApplyTo = %q, %q", got, removed)
	}
}
