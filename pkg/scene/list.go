// Package scene 保存每个文档的注释对象列表。
//
// 列表按绘制顺序从底到顶排列，命中测试按相反顺序进行。节点存放在一个槽位数组中，
// 通过带代数的句柄互相引用；元素自己记住句柄，删除时不需要扫描。
package scene

import (
	"errors"
	"fmt"

	"github.com/novvoo/go-pdfsketch/pkg/logging"
)

var (
	ErrNotInList     = errors.New("scene: element is not in this list")
	ErrStaleHandle   = errors.New("scene: stale handle")
	ErrAlreadyInList = errors.New("scene: element is already in a list")
	ErrNilElement    = errors.New("scene: nil element")
)

var logger = logging.For(logging.Scene)

// Handle 槽位句柄。零值表示“无”
type Handle struct {
	index int
	gen   uint32
}

// IsZero 是否为空句柄
func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%d@%d", h.index, h.gen)
}

// Element 可放入列表的元素。元素保存自己的句柄，供 O(1) 删除
type Element interface {
	comparable
	SceneHandle() Handle
	SetSceneHandle(h Handle)
}

type slot[T Element] struct {
	value T
	gen   uint32
	used  bool
	upper Handle
	lower Handle
}

// List 双向链表，拥有其中的元素
type List[T Element] struct {
	slots  []slot[T]
	free   []int
	top    Handle
	bottom Handle
	n      int
}

// NewList 创建空列表
func NewList[T Element]() *List[T] {
	return &List[T]{}
}

// Len 元素个数
func (l *List[T]) Len() int {
	return l.n
}

// Contains 元素是否在本列表中
func (l *List[T]) Contains(v T) bool {
	_, err := l.lookup(v)
	return err == nil
}

// Top 最上层元素；列表为空时返回零值
func (l *List[T]) Top() T {
	return l.valueAt(l.top)
}

// Bottom 最下层元素；列表为空时返回零值
func (l *List[T]) Bottom() T {
	return l.valueAt(l.bottom)
}

// Upper 紧挨在 v 上面的元素
func (l *List[T]) Upper(v T) T {
	h, err := l.lookup(v)
	if err != nil {
		var zero T
		return zero
	}
	return l.valueAt(l.slots[h.index].upper)
}

// Lower 紧挨在 v 下面的元素
func (l *List[T]) Lower(v T) T {
	h, err := l.lookup(v)
	if err != nil {
		var zero T
		return zero
	}
	return l.valueAt(l.slots[h.index].lower)
}

// InsertAfter 插入 v：upper 为零值时成为新的顶层，否则放在 upper 的正下方
func (l *List[T]) InsertAfter(v, upper T) error {
	var zero T
	if v == zero {
		return ErrNilElement
	}
	if !v.SceneHandle().IsZero() {
		return ErrAlreadyInList
	}

	var upperH Handle
	if upper != zero {
		h, err := l.lookup(upper)
		if err != nil {
			logger.Containment("insert below", "sibling", err)
			return fmt.Errorf("failed to insert below sibling: %w", err)
		}
		upperH = h
	}

	h := l.alloc(v)
	s := &l.slots[h.index]
	if upperH.IsZero() {
		s.lower = l.top
		if l.top.IsZero() {
			l.bottom = h
		} else {
			l.slots[l.top.index].upper = h
		}
		l.top = h
	} else {
		us := &l.slots[upperH.index]
		s.upper = upperH
		s.lower = us.lower
		if us.lower.IsZero() {
			l.bottom = h
		} else {
			l.slots[us.lower.index].upper = h
		}
		us.lower = h
	}
	l.n++
	v.SetSceneHandle(h)
	return nil
}

// Remove 移除 v 并返回它原来上方的元素（顶层时为零值），
// 撤销时可用该元素把 v 插回原位置
func (l *List[T]) Remove(v T) (T, error) {
	var zero T
	h, err := l.lookup(v)
	if err != nil {
		logger.Containment("remove", "element", err)
		return zero, err
	}
	s := &l.slots[h.index]
	upper := l.valueAt(s.upper)

	if s.upper.IsZero() {
		l.top = s.lower
	} else {
		l.slots[s.upper.index].lower = s.lower
	}
	if s.lower.IsZero() {
		l.bottom = s.upper
	} else {
		l.slots[s.lower.index].upper = s.upper
	}

	l.release(h)
	l.n--
	v.SetSceneHandle(Handle{})
	return upper, nil
}

// MoveToTop 把 v 移到最上层
func (l *List[T]) MoveToTop(v T) error {
	var zero T
	if _, err := l.Remove(v); err != nil {
		return err
	}
	return l.InsertAfter(v, zero)
}

// MoveToBottom 把 v 移到最下层
func (l *List[T]) MoveToBottom(v T) error {
	if _, err := l.Remove(v); err != nil {
		return err
	}
	var zero T
	if l.bottom.IsZero() {
		return l.InsertAfter(v, zero)
	}
	return l.InsertAfter(v, l.valueAt(l.bottom))
}

// PaintOrder 按绘制顺序（从底到顶）返回所有元素
func (l *List[T]) PaintOrder() []T {
	out := make([]T, 0, l.n)
	for h := l.bottom; !h.IsZero(); h = l.slots[h.index].upper {
		out = append(out, l.slots[h.index].value)
	}
	return out
}

// HitOrder 按命中测试顺序（从顶到底）返回所有元素
func (l *List[T]) HitOrder() []T {
	out := make([]T, 0, l.n)
	for h := l.top; !h.IsZero(); h = l.slots[h.index].lower {
		out = append(out, l.slots[h.index].value)
	}
	return out
}

// Clear 移除所有元素
func (l *List[T]) Clear() {
	for _, v := range l.PaintOrder() {
		v.SetSceneHandle(Handle{})
	}
	*l = List[T]{}
}

// Check 校验链表结构：顶/底节点没有外侧链接，相邻节点互相指向，
// 从两端遍历得到同样的节点集合
func (l *List[T]) Check() error {
	if l.n == 0 {
		if !l.top.IsZero() || !l.bottom.IsZero() {
			return fmt.Errorf("scene: empty list has top %v bottom %v", l.top, l.bottom)
		}
		return nil
	}
	if err := l.validHandle(l.top); err != nil {
		return fmt.Errorf("scene: bad top: %w", err)
	}
	if err := l.validHandle(l.bottom); err != nil {
		return fmt.Errorf("scene: bad bottom: %w", err)
	}
	if !l.slots[l.top.index].upper.IsZero() {
		return errors.New("scene: top has an upper link")
	}
	if !l.slots[l.bottom.index].lower.IsZero() {
		return errors.New("scene: bottom has a lower link")
	}

	fromBottom := make(map[Handle]bool, l.n)
	prev := Handle{}
	for h := l.bottom; !h.IsZero(); h = l.slots[h.index].upper {
		if err := l.validHandle(h); err != nil {
			return fmt.Errorf("scene: bad upper link: %w", err)
		}
		if fromBottom[h] {
			return fmt.Errorf("scene: cycle at %v", h)
		}
		s := l.slots[h.index]
		if s.lower != prev {
			return fmt.Errorf("scene: %v lower link %v, want %v", h, s.lower, prev)
		}
		if s.value.SceneHandle() != h {
			return fmt.Errorf("scene: element at %v holds handle %v", h, s.value.SceneHandle())
		}
		fromBottom[h] = true
		prev = h
	}
	if prev != l.top {
		return fmt.Errorf("scene: walk from bottom ends at %v, top is %v", prev, l.top)
	}

	count := 0
	for h := l.top; !h.IsZero(); h = l.slots[h.index].lower {
		if !fromBottom[h] {
			return fmt.Errorf("scene: %v reachable from top only", h)
		}
		count++
		if count > len(fromBottom) {
			return errors.New("scene: cycle walking from top")
		}
	}
	if count != len(fromBottom) || count != l.n {
		return fmt.Errorf("scene: %d from top, %d from bottom, len %d", count, len(fromBottom), l.n)
	}
	return nil
}

func (l *List[T]) alloc(v T) Handle {
	var idx int
	if n := len(l.free); n > 0 {
		idx = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		l.slots = append(l.slots, slot[T]{})
		idx = len(l.slots) - 1
	}
	s := &l.slots[idx]
	s.gen++
	s.used = true
	s.value = v
	s.upper = Handle{}
	s.lower = Handle{}
	return Handle{index: idx, gen: s.gen}
}

func (l *List[T]) release(h Handle) {
	var zero T
	s := &l.slots[h.index]
	s.used = false
	s.value = zero
	s.upper = Handle{}
	s.lower = Handle{}
	l.free = append(l.free, h.index)
}

func (l *List[T]) validHandle(h Handle) error {
	if h.IsZero() {
		return ErrNotInList
	}
	if h.index < 0 || h.index >= len(l.slots) {
		return ErrStaleHandle
	}
	s := l.slots[h.index]
	if !s.used || s.gen != h.gen {
		return ErrStaleHandle
	}
	return nil
}

func (l *List[T]) lookup(v T) (Handle, error) {
	var zero T
	if v == zero {
		return Handle{}, ErrNilElement
	}
	h := v.SceneHandle()
	if err := l.validHandle(h); err != nil {
		return Handle{}, err
	}
	if l.slots[h.index].value != v {
		return Handle{}, ErrNotInList
	}
	return h, nil
}

func (l *List[T]) valueAt(h Handle) T {
	if h.IsZero() {
		var zero T
		return zero
	}
	return l.slots[h.index].value
}
