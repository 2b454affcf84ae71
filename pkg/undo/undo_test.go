package undo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// counter 是一个最简单的可撤销模型：setTo 会把逆操作加回管理器
type counter struct {
	m     *Manager
	value int
}

func (c *counter) setTo(v int) {
	old := c.value
	c.value = v
	c.m.AddClosure(func() { c.setTo(old) })
}

type recordingDelegate struct {
	undo, redo bool
	calls      int
}

func (d *recordingDelegate) SetUndoEnabled(enabled bool) { d.undo = enabled; d.calls++ }
func (d *recordingDelegate) SetRedoEnabled(enabled bool) { d.redo = enabled }

func TestUndoRedoRoundTrip(t *testing.T) {
	m := NewManager(0)
	c := &counter{m: m}
	for i := 1; i <= 5; i++ {
		c.setTo(i * 10)
	}
	for i := 0; i < 5; i++ {
		m.PerformUndo()
	}
	if c.value != 0 {
		t.Fatalf("after undo value = %d, want 0", c.value)
	}
	if m.UndoLen() != 0 || m.RedoLen() != 5 {
		t.Fatalf("undo/redo len = %d/%d, want 0/5", m.UndoLen(), m.RedoLen())
	}
	for i := 0; i < 5; i++ {
		m.PerformRedo()
	}
	if c.value != 50 {
		t.Fatalf("after redo value = %d, want 50", c.value)
	}
	if m.UndoLen() != 5 || m.RedoLen() != 0 {
		t.Fatalf("undo/redo len = %d/%d, want 5/0", m.UndoLen(), m.RedoLen())
	}
}

func TestNewOpClearsRedo(t *testing.T) {
	m := NewManager(0)
	c := &counter{m: m}
	c.setTo(1)
	c.setTo(2)
	m.PerformUndo()
	if !m.CanRedo() {
		t.Fatal("expected redo to be available")
	}
	c.setTo(7)
	if m.CanRedo() {
		t.Error("fresh edit should clear redo history")
	}
}

func TestEmptyHistoryIsNoop(t *testing.T) {
	m := NewManager(0)
	m.PerformUndo()
	m.PerformRedo()
	if m.CanUndo() || m.CanRedo() {
		t.Error("empty manager should not report undo/redo")
	}
}

func TestLimitNeverTrimsThroughMarker(t *testing.T) {
	m := NewManager(0)
	c := &counter{m: m}
	for i := 0; i < 25; i++ {
		c.setTo(i)
	}
	if m.UndoLen() != DefaultLimit {
		t.Fatalf("UndoLen = %d, want %d", m.UndoLen(), DefaultLimit)
	}

	m = NewManager(3)
	c = &counter{m: m}
	m.SetMarker()
	for i := 0; i < 6; i++ {
		c.setTo(i)
	}
	if m.UndoLen() != 7 {
		t.Errorf("marker at front must stop trimming, UndoLen = %d, want 7", m.UndoLen())
	}
}

func TestMarker(t *testing.T) {
	m := NewManager(0)
	c := &counter{m: m}
	c.setTo(1)
	m.SetMarker()
	if m.OpsAddedAfterMarker() {
		t.Error("nothing added after marker yet")
	}
	if m.CanUndo() {
		t.Error("undo must be disabled with a marker on top")
	}
	m.PerformUndo()
	if c.value != 1 || m.UndoLen() != 2 {
		t.Fatalf("undo ran into the marker: value=%d len=%d", c.value, m.UndoLen())
	}

	c.setTo(2)
	c.setTo(3)
	if !m.OpsAddedAfterMarker() {
		t.Error("ops were added after marker")
	}
	m.PerformUndo()
	m.PerformUndo()
	m.PerformUndo()
	if c.value != 1 {
		t.Errorf("undo should stop at the marker, value = %d", c.value)
	}

	m.ClearFromMarker()
	if m.UndoLen() != 1 {
		t.Fatalf("ClearFromMarker left %d ops, want 1", m.UndoLen())
	}
	m.PerformUndo()
	if c.value != 0 {
		t.Errorf("value = %d, want 0", c.value)
	}
}

func TestAggregatorGroupsOps(t *testing.T) {
	m := NewManager(0)
	var log []string
	var apply func(name string)
	apply = func(name string) {
		log = append(log, name)
		m.AddClosure(func() { apply("undo-" + name) })
	}

	agg := NewScopedAggregator(m)
	apply("a")
	apply("b")
	apply("c")
	if m.UndoLen() != 0 {
		t.Fatalf("ops leaked past the aggregator: %d", m.UndoLen())
	}
	agg.Close()
	if m.UndoLen() != 1 {
		t.Fatalf("UndoLen = %d, want 1", m.UndoLen())
	}

	log = nil
	m.PerformUndo()
	if diff := cmp.Diff([]string{"undo-c", "undo-b", "undo-a"}, log); diff != "" {
		t.Errorf("undo order mismatch (-want +got):\n%s", diff)
	}
	if m.RedoLen() != 1 {
		t.Fatalf("RedoLen = %d, want 1", m.RedoLen())
	}

	log = nil
	m.PerformRedo()
	if diff := cmp.Diff([]string{"undo-undo-a", "undo-undo-b", "undo-undo-c"}, log); diff != "" {
		t.Errorf("redo order mismatch (-want +got):\n%s", diff)
	}
	if m.UndoLen() != 1 || m.RedoLen() != 0 {
		t.Errorf("undo/redo len = %d/%d, want 1/0", m.UndoLen(), m.RedoLen())
	}
}

func TestAggregatorNesting(t *testing.T) {
	m := NewManager(0)
	c := &counter{m: m}
	outer := NewScopedAggregator(m)
	inner := NewScopedAggregator(m)
	if inner.Active() {
		t.Fatal("inner aggregator must not install while outer is active")
	}
	c.setTo(1)
	inner.Close()
	c.setTo(2)
	outer.Close()
	if m.UndoLen() != 1 {
		t.Fatalf("UndoLen = %d, want 1", m.UndoLen())
	}
	m.PerformUndo()
	if c.value != 0 {
		t.Errorf("value = %d, want 0", c.value)
	}
}

func TestAggregatorSingleOpForwarded(t *testing.T) {
	m := NewManager(0)
	c := &counter{m: m}
	agg := NewScopedAggregator(m)
	c.setTo(4)
	agg.Close()
	if m.UndoLen() != 1 {
		t.Fatalf("UndoLen = %d, want 1", m.UndoLen())
	}
	if _, ok := m.undoOps[0].(*FuncOp); !ok {
		t.Errorf("single op should be forwarded as-is, got %T", m.undoOps[0])
	}

	empty := NewScopedAggregator(m)
	empty.Close()
	if m.UndoLen() != 1 {
		t.Errorf("empty aggregator added an entry")
	}
}

func TestDelegateNotified(t *testing.T) {
	m := NewManager(0)
	d := &recordingDelegate{}
	m.SetDelegate(d)
	c := &counter{m: m}
	c.setTo(1)
	if !d.undo || d.redo {
		t.Errorf("after edit: undo=%v redo=%v", d.undo, d.redo)
	}
	m.PerformUndo()
	if d.undo || !d.redo {
		t.Errorf("after undo: undo=%v redo=%v", d.undo, d.redo)
	}
	m.SetMarker()
	if d.undo {
		t.Error("undo should be disabled with a marker on top")
	}
}
