package canvas

import (
	"context"
	"sync"

	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/novvoo/go-pdfsketch/pkg/logging"
)

// Loop 编辑 goroutine 的任务队列。Post 可在任意 goroutine 调用，任务按提交顺序执行
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
}

// NewLoop 创建任务队列
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post 提交任务
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending 排队中的任务数
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// RunPending 执行队列中的任务，包括执行过程中新提交的任务，直到队列为空。返回执行的任务数
func (l *Loop) RunPending() int {
	n := 0
	for {
		l.mu.Lock()
		tasks := l.tasks
		l.tasks = nil
		l.mu.Unlock()
		if len(tasks) == 0 {
			return n
		}
		for _, fn := range tasks {
			fn()
			n++
		}
	}
}

// Run 持续执行任务直到 ctx 结束
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// maxPendingRedraws 挂起的重绘请求计数上限
const maxPendingRedraws = 2

// Redrawer 合并重绘请求：同一时刻最多一次绘制在进行中，
// 进行中到达的请求合并成一次后续重绘。只能在 Loop 的 goroutine 中使用
type Redrawer struct {
	loop     *Loop
	surfaces SurfaceProvider
	paint    func(ctx cairo.Context)

	pending  int
	queued   bool
	inFlight bool
	frames   int
}

// NewRedrawer 创建重绘调度器；paint 在分配到的上下文上绘制一帧
func NewRedrawer(loop *Loop, surfaces SurfaceProvider, paint func(ctx cairo.Context)) *Redrawer {
	return &Redrawer{loop: loop, surfaces: surfaces, paint: paint}
}

// Request 请求一次重绘，立即返回
func (r *Redrawer) Request() {
	if r.pending < maxPendingRedraws {
		r.pending++
	}
	r.schedule()
}

func (r *Redrawer) schedule() {
	if r.queued || r.inFlight || r.pending == 0 {
		return
	}
	r.queued = true
	r.loop.Post(r.draw)
}

func (r *Redrawer) draw() {
	r.queued = false
	if r.pending == 0 || r.inFlight {
		return
	}
	ctx, ok := r.surfaces.AllocateSurface()
	if !ok {
		logging.Debugf("redraw: no surface available\n")
		return
	}
	r.pending = 0
	r.paint(ctx)
	ctx.Destroy()
	r.inFlight = true
	r.frames++
	r.surfaces.Flush(func() { r.loop.Post(r.flushed) })
}

func (r *Redrawer) flushed() {
	r.inFlight = false
	r.schedule()
}

// Frames 已提交的帧数
func (r *Redrawer) Frames() int { return r.frames }

// InFlight 是否有帧在等待刷新完成
func (r *Redrawer) InFlight() bool { return r.inFlight }

// AttachRedrawer 让画布的失效请求通过 loop 合并重绘到 surfaces
func (c *Canvas) AttachRedrawer(loop *Loop, surfaces SurfaceProvider) *Redrawer {
	c.redrawer = NewRedrawer(loop, surfaces, func(ctx cairo.Context) {
		dirty := c.TakeDirty()
		if dirty.IsEmpty() {
			return
		}
		c.Paint(ctx, dirty)
	})
	if !c.dirty.IsEmpty() {
		c.redrawer.Request()
	}
	return c.redrawer
}
