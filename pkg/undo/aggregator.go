package undo

// ScopedAggregator 在存活期间截获 Manager.AddOp，Close 时把截获的操作作为一个历史条目提交。
// 已有激活的聚合器时不安装，新操作由外层聚合器吸收
type ScopedAggregator struct {
	m      *Manager
	ops    []Op
	closed bool
}

// NewScopedAggregator 创建并（在没有外层聚合器时）安装聚合器
//
//	agg := undo.NewScopedAggregator(m)
//	defer agg.Close()
func NewScopedAggregator(m *Manager) *ScopedAggregator {
	a := &ScopedAggregator{m: m}
	if m.aggregator == nil {
		m.aggregator = a
	}
	return a
}

// Active 该聚合器是否正在截获操作
func (a *ScopedAggregator) Active() bool {
	return !a.closed && a.m.aggregator == a
}

func (a *ScopedAggregator) add(op Op) {
	a.ops = append(a.ops, op)
}

// Close 卸载聚合器：单个操作原样转交，多个操作合并为一个闭包，没有操作则什么也不做
func (a *ScopedAggregator) Close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.m.aggregator != a {
		return
	}
	a.m.aggregator = nil
	ops := a.ops
	a.ops = nil
	if op := a.m.group(ops); op != nil {
		a.m.AddOp(op)
	}
}
