package undo

import "github.com/novvoo/go-pdfsketch/pkg/logging"

var logger = logging.For(logging.Undo)

// DefaultLimit 撤销历史的默认长度上限
const DefaultLimit = 10

// Delegate 接收撤销/重做可用状态变化（菜单、按钮）
type Delegate interface {
	SetUndoEnabled(enabled bool)
	SetRedoEnabled(enabled bool)
}

// Manager 撤销/重做管理器。只能在编辑 goroutine 中使用
type Manager struct {
	delegate Delegate
	limit    int

	undoOps []Op
	redoOps []Op

	undoInProgress bool
	redoInProgress bool

	aggregator *ScopedAggregator
}

// NewManager 创建撤销管理器；limit <= 0 时使用 DefaultLimit
func NewManager(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit}
}

// SetDelegate 设置状态回调并立即同步一次
func (m *Manager) SetDelegate(d Delegate) {
	m.delegate = d
	m.updateDelegate()
}

// AddClosure 添加闭包操作
func (m *Manager) AddClosure(fn func()) {
	m.AddOp(NewFuncOp(fn))
}

// AddOp 添加操作。聚合器激活时转交给聚合器；
// 撤销过程中产生的操作进入重做栈，否则进入撤销栈
func (m *Manager) AddOp(op Op) {
	if op == nil {
		return
	}
	if m.aggregator != nil {
		m.aggregator.add(op)
		return
	}
	if !m.undoInProgress {
		if !m.redoInProgress {
			m.redoOps = nil
		}
		merged := false
		if !m.redoInProgress && len(m.undoOps) > 0 {
			merged = m.undoOps[len(m.undoOps)-1].Merge(op)
		}
		if !merged {
			m.undoOps = append(m.undoOps, op)
		}
		m.trim()
	} else {
		m.redoOps = append(m.redoOps, op)
	}
	m.updateDelegate()
}

// trim 从最旧的一端丢弃操作，遇到标记即停止
func (m *Manager) trim() {
	n := 0
	for len(m.undoOps)-n > m.limit && m.undoOps[n].Kind() != OpKindMarker {
		n++
	}
	if n > 0 {
		logger.Debug("trimmed %d ops", n)
		m.undoOps = append(m.undoOps[:0:0], m.undoOps[n:]...)
	}
}

// PerformUndo 撤销最近一个操作；历史为空或栈顶是标记时什么也不做
func (m *Manager) PerformUndo() {
	if len(m.undoOps) == 0 || m.undoOps[len(m.undoOps)-1].Kind() == OpKindMarker {
		return
	}
	m.undoInProgress = true
	op := pop(&m.undoOps)
	op.Exec(m)
	m.undoInProgress = false
	m.updateDelegate()
}

// PerformRedo 重做最近一次撤销；会跳过栈顶的标记
func (m *Manager) PerformRedo() {
	if len(m.redoOps) == 0 {
		return
	}
	m.redoInProgress = true
	for len(m.redoOps) > 0 && m.redoOps[len(m.redoOps)-1].Kind() == OpKindMarker {
		pop(&m.redoOps)
	}
	if len(m.redoOps) > 0 {
		op := pop(&m.redoOps)
		op.Exec(m)
	}
	m.redoInProgress = false
	m.updateDelegate()
}

// SetMarker 压入编辑会话标记
func (m *Manager) SetMarker() {
	m.AddOp(MarkerOp{})
}

// ClearFromMarker 丢弃最近的标记以及它之后的所有操作
func (m *Manager) ClearFromMarker() {
	for len(m.undoOps) > 0 {
		op := pop(&m.undoOps)
		if op.Kind() == OpKindMarker {
			break
		}
	}
	m.updateDelegate()
}

// OpsAddedAfterMarker 栈顶不是标记时返回 true
func (m *Manager) OpsAddedAfterMarker() bool {
	return len(m.undoOps) > 0 && m.undoOps[len(m.undoOps)-1].Kind() != OpKindMarker
}

// Reset 清空全部历史（加载新文档时使用）
func (m *Manager) Reset() {
	m.undoOps = nil
	m.redoOps = nil
	m.aggregator = nil
	m.updateDelegate()
}

// CanUndo 栈非空且栈顶不是标记
func (m *Manager) CanUndo() bool {
	return len(m.undoOps) > 0 && m.undoOps[len(m.undoOps)-1].Kind() != OpKindMarker
}

// CanRedo 重做栈非空
func (m *Manager) CanRedo() bool {
	return len(m.redoOps) > 0
}

// UndoLen 撤销栈长度（包括标记）
func (m *Manager) UndoLen() int { return len(m.undoOps) }

// RedoLen 重做栈长度
func (m *Manager) RedoLen() int { return len(m.redoOps) }

// Aggregating 是否有聚合器处于激活状态
func (m *Manager) Aggregating() bool { return m.aggregator != nil }

func (m *Manager) updateDelegate() {
	if m.delegate == nil {
		return
	}
	m.delegate.SetUndoEnabled(m.CanUndo())
	m.delegate.SetRedoEnabled(m.CanRedo())
}

// group 把多个操作包装成一个闭包：执行时安装嵌套聚合器并倒序重放
func (m *Manager) group(ops []Op) Op {
	switch len(ops) {
	case 0:
		return nil
	case 1:
		return ops[0]
	}
	return NewFuncOp(func() {
		agg := NewScopedAggregator(m)
		defer agg.Close()
		for i := len(ops) - 1; i >= 0; i-- {
			ops[i].Exec(m)
		}
	})
}

func pop(ops *[]Op) Op {
	s := *ops
	op := s[len(s)-1]
	s[len(s)-1] = nil
	*ops = s[:len(s)-1]
	return op
}
