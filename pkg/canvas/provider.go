package canvas

import (
	"fmt"
	"math"
	"sync"

	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
)

// PageProvider 提供页面尺寸并把页面内容绘制到 cairo 上下文。
// RenderPage 调用时上下文原点已经平移到页面左上角，单位为 point
type PageProvider interface {
	PageCount() int
	PageSize(i int) geom.Size
	RenderPage(i int, forPrint bool, ctx cairo.Context) error
}

// SurfaceProvider 提供绘制目标。Flush 把绘制结果交给宿主，完成后（可在任意 goroutine）调用 onComplete
type SurfaceProvider interface {
	AllocateSurface() (cairo.Context, bool)
	Flush(onComplete func())
}

// BlankPages 固定尺寸的空白页面
type BlankPages struct {
	Sizes []geom.Size
}

// NewBlankPages 创建 n 个相同尺寸的空白页
func NewBlankPages(n int, size geom.Size) *BlankPages {
	p := &BlankPages{Sizes: make([]geom.Size, n)}
	for i := range p.Sizes {
		p.Sizes[i] = size
	}
	return p
}

func (p *BlankPages) PageCount() int { return len(p.Sizes) }

func (p *BlankPages) PageSize(i int) geom.Size {
	if i < 0 || i >= len(p.Sizes) {
		return geom.Size{}
	}
	return p.Sizes[i]
}

// RenderPage 空白页不需要绘制任何内容
func (p *BlankPages) RenderPage(i int, forPrint bool, ctx cairo.Context) error {
	if i < 0 || i >= len(p.Sizes) {
		return fmt.Errorf("page %d out of range [0, %d)", i, len(p.Sizes))
	}
	return nil
}

// Offscreen 内存中的 ARGB32 绘制目标，供命令行渲染和测试使用。
// Flush 异步调用完成回调，模拟宿主的显示刷新
type Offscreen struct {
	mu      sync.Mutex
	surface cairo.ImageSurface
	width   int
	height  int
	flushes int
	sync    bool
}

// NewOffscreen 创建 width x height 像素的离屏表面
func NewOffscreen(width, height int) (*Offscreen, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid offscreen size %dx%d", width, height)
	}
	surface := cairo.NewImageSurface(cairo.FormatARGB32, width, height)
	img, ok := surface.(cairo.ImageSurface)
	if !ok || surface.Status() != cairo.StatusSuccess {
		return nil, fmt.Errorf("failed to create offscreen surface %dx%d", width, height)
	}
	return &Offscreen{surface: img, width: width, height: height}, nil
}

// NewOffscreenFor 创建能容纳整个文档视图的离屏表面
func NewOffscreenFor(docSize geom.Size, zoom float64) (*Offscreen, error) {
	w := int(math.Ceil(docSize.Width * zoom))
	h := int(math.Ceil(docSize.Height * zoom))
	return NewOffscreen(w, h)
}

// SetSynchronous 设为 true 时 Flush 直接在调用者 goroutine 中回调
func (o *Offscreen) SetSynchronous(sync bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sync = sync
}

// AllocateSurface 返回新的绘制上下文，调用方负责 Destroy
func (o *Offscreen) AllocateSurface() (cairo.Context, bool) {
	ctx := cairo.NewContext(o.surface)
	if ctx == nil {
		return nil, false
	}
	return ctx, true
}

// Flush 记录一次刷新并通知完成
func (o *Offscreen) Flush(onComplete func()) {
	o.mu.Lock()
	o.flushes++
	async := !o.sync
	o.mu.Unlock()
	o.surface.MarkDirty()
	if onComplete == nil {
		return
	}
	if async {
		go onComplete()
	} else {
		onComplete()
	}
}

// Flushes 已完成的刷新次数
func (o *Offscreen) Flushes() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flushes
}

// Surface 底层图像表面
func (o *Offscreen) Surface() cairo.ImageSurface {
	return o.surface
}

// WritePNG 把当前内容写成 PNG
func (o *Offscreen) WritePNG(path string) error {
	if status := o.surface.WriteToPNG(path); status != cairo.StatusSuccess {
		return fmt.Errorf("failed to write PNG: %v", status)
	}
	return nil
}

// Close 释放表面
func (o *Offscreen) Close() {
	o.surface.Destroy()
}
