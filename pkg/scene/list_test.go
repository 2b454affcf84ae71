package scene

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/novvoo/go-pdfsketch/pkg/logging"
)

type item struct {
	id int
	h  Handle
}

func (i *item) SceneHandle() Handle     { return i.h }
func (i *item) SetSceneHandle(h Handle) { i.h = h }

func ids(items []*item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

func TestInsertAndOrder(t *testing.T) {
	l := NewList[*item]()
	a, b, c := &item{id: 1}, &item{id: 2}, &item{id: 3}

	if err := l.InsertAfter(a, nil); err != nil {
		t.Fatal(err)
	}
	if err := l.InsertAfter(b, nil); err != nil {
		t.Fatal(err)
	}
	// c 放在 b 的正下方
	if err := l.InsertAfter(c, b); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]int{1, 3, 2}, ids(l.PaintOrder())); diff != "" {
		t.Errorf("paint order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 3, 1}, ids(l.HitOrder())); diff != "" {
		t.Errorf("hit order mismatch (-want +got):\n%s", diff)
	}
	if l.Top() != b || l.Bottom() != a {
		t.Errorf("top/bottom = %v/%v", l.Top(), l.Bottom())
	}
	if l.Upper(c) != b || l.Lower(c) != a {
		t.Errorf("neighbours of c wrong")
	}
	if err := l.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestRemoveReturnsUpperSibling(t *testing.T) {
	l := NewList[*item]()
	a, b, c := &item{id: 1}, &item{id: 2}, &item{id: 3}
	for _, it := range []*item{a, b, c} {
		if err := l.InsertAfter(it, nil); err != nil {
			t.Fatal(err)
		}
	}

	upper, err := l.Remove(b)
	if err != nil {
		t.Fatal(err)
	}
	if upper != c {
		t.Errorf("upper of removed = %v, want c", upper)
	}
	if !b.SceneHandle().IsZero() {
		t.Error("removed element still holds a handle")
	}
	if err := l.Check(); err != nil {
		t.Fatal(err)
	}

	// 插回原位置
	if err := l.InsertAfter(b, upper); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, ids(l.PaintOrder())); diff != "" {
		t.Errorf("reinsert order mismatch (-want +got):\n%s", diff)
	}

	top, err := l.Remove(c)
	if err != nil || top != nil {
		t.Errorf("removing top should return nil upper, got %v, %v", top, err)
	}
}

func TestErrors(t *testing.T) {
	l := NewList[*item]()
	other := NewList[*item]()
	a, b := &item{id: 1}, &item{id: 2}

	if _, err := l.Remove(a); !errors.Is(err, ErrNotInList) {
		t.Errorf("Remove of unattached = %v, want ErrNotInList", err)
	}
	if err := l.InsertAfter(nil, nil); !errors.Is(err, ErrNilElement) {
		t.Errorf("InsertAfter(nil) = %v", err)
	}
	if err := l.InsertAfter(a, nil); err != nil {
		t.Fatal(err)
	}
	if err := other.InsertAfter(a, nil); !errors.Is(err, ErrAlreadyInList) {
		t.Errorf("double insert = %v, want ErrAlreadyInList", err)
	}
	if err := other.InsertAfter(b, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Remove(b); err == nil {
		t.Error("removing an element of another list should fail")
	}
	if err := l.InsertAfter(&item{id: 9}, b); err == nil {
		t.Error("inserting below a foreign sibling should fail")
	}

	stale := a.SceneHandle()
	if _, err := l.Remove(a); err != nil {
		t.Fatal(err)
	}
	a.SetSceneHandle(stale)
	if _, err := l.Remove(a); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Remove with stale handle = %v, want ErrStaleHandle", err)
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d", l.Len())
	}
}

func TestMoveToTopAndBottom(t *testing.T) {
	l := NewList[*item]()
	items := []*item{{id: 1}, {id: 2}, {id: 3}}
	for _, it := range items {
		if err := l.InsertAfter(it, nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.MoveToBottom(items[2]); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{3, 1, 2}, ids(l.PaintOrder())); diff != "" {
		t.Errorf("after MoveToBottom (-want +got):\n%s", diff)
	}
	if err := l.MoveToTop(items[0]); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{3, 2, 1}, ids(l.PaintOrder())); diff != "" {
		t.Errorf("after MoveToTop (-want +got):\n%s", diff)
	}
	if err := l.Check(); err != nil {
		t.Fatal(err)
	}
}

// TestRandomInsertRemove 随机插入删除并与切片模型对比
func TestRandomInsertRemove(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	l := NewList[*item]()
	var model []*item // 绘制顺序
	nextID := 0

	for step := 0; step < 3000; step++ {
		if len(model) == 0 || rng.Intn(3) != 0 {
			it := &item{id: nextID}
			nextID++
			var upper *item
			pos := len(model)
			if len(model) > 0 && rng.Intn(2) == 0 {
				pos = rng.Intn(len(model))
				upper = model[pos]
			}
			if err := l.InsertAfter(it, upper); err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
			model = append(model[:pos], append([]*item{it}, model[pos:]...)...)
		} else {
			pos := rng.Intn(len(model))
			it := model[pos]
			upper, err := l.Remove(it)
			if err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
			var want *item
			if pos+1 < len(model) {
				want = model[pos+1]
			}
			if upper != want {
				t.Fatalf("step %d: Remove returned wrong upper sibling", step)
			}
			model = append(model[:pos], model[pos+1:]...)
		}

		if err := l.Check(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if l.Len() != len(model) {
			t.Fatalf("step %d: Len = %d, want %d", step, l.Len(), len(model))
		}
		if diff := cmp.Diff(ids(model), ids(l.PaintOrder())); diff != "" {
			t.Fatalf("step %d: order mismatch (-want +got):\n%s", step, diff)
		}
	}
}

func TestContainmentWarnings(t *testing.T) {
	log := logging.GetLogger()
	before := log.Warnings(logging.Scene)

	l := NewList[*item]()
	if _, err := l.Remove(&item{id: 1}); err == nil {
		t.Fatal("Remove of unattached succeeded")
	}
	if err := l.InsertAfter(&item{id: 2}, &item{id: 3}); err == nil {
		t.Fatal("InsertAfter below unattached sibling succeeded")
	}
	if got := log.Warnings(logging.Scene) - before; got != 2 {
		t.Errorf("scene warnings = %d, want 2", got)
	}
}
