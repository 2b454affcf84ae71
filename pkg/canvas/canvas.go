// Package canvas 是文档画布控制器：持有注释场景、选择集和撤销历史，
// 把指针与键盘事件转换为注释操作，并负责页面布局、重绘调度和导出渲染。
//
// Canvas 的所有方法都必须在同一个编辑 goroutine 中调用（通常是 Loop 中的任务）。
package canvas

import (
	"fmt"
	"strings"

	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/logging"
	"github.com/novvoo/go-pdfsketch/pkg/scene"
	"github.com/novvoo/go-pdfsketch/pkg/sketch"
	"github.com/novvoo/go-pdfsketch/pkg/undo"
)

// ConstrainPolicy 角点调整时何时保持宽高比
type ConstrainPolicy int

const (
	// ConstrainNatural 按住 Shift 或注释有固有尺寸（图片）时约束
	ConstrainNatural ConstrainPolicy = iota
	// ConstrainShift 仅在按住 Shift 时约束
	ConstrainShift
	// ConstrainAlways 角点调整总是约束
	ConstrainAlways
)

var constrainNames = []string{"natural", "shift", "always"}

var logger = logging.For(logging.Canvas)

func (p ConstrainPolicy) String() string {
	if p < 0 || int(p) >= len(constrainNames) {
		return fmt.Sprintf("ConstrainPolicy(%d)", int(p))
	}
	return constrainNames[p]
}

// ParseConstrainPolicy 解析配置中的策略名称
func ParseConstrainPolicy(name string) (ConstrainPolicy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ConstrainNatural, nil
	}
	for i, n := range constrainNames {
		if n == name {
			return ConstrainPolicy(i), nil
		}
	}
	return ConstrainNatural, fmt.Errorf("unknown constrain policy %q", name)
}

// Options 画布参数
type Options struct {
	UndoLimit int
	Zoom      float64
	Spacing   float64
	Constrain ConstrainPolicy
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		UndoLimit: undo.DefaultLimit,
		Zoom:      1,
		Spacing:   DefaultSpacing,
		Constrain: ConstrainNatural,
	}
}

// Canvas 文档画布控制器，实现 sketch.Delegate
type Canvas struct {
	opts   Options
	pages  PageProvider
	layout *Layout
	zoom   float64

	scene     *scene.List[sketch.Annotation]
	selection map[sketch.Annotation]struct{}
	undo      *undo.Manager

	tool    sketch.Tool
	editing sketch.Editor
	drag    *gesture

	dirty    geom.Rect
	redrawer *Redrawer
}

var _ sketch.Delegate = (*Canvas)(nil)

// New 创建画布；pages 可以为 nil（没有打开文档）
func New(pages PageProvider, opts Options) *Canvas {
	if opts.Zoom <= 0 {
		opts.Zoom = 1
	}
	if opts.Spacing <= 0 {
		opts.Spacing = DefaultSpacing
	}
	c := &Canvas{
		opts:      opts,
		zoom:      opts.Zoom,
		scene:     scene.NewList[sketch.Annotation](),
		selection: make(map[sketch.Annotation]struct{}),
		undo:      undo.NewManager(opts.UndoLimit),
		tool:      sketch.ToolArrow,
	}
	c.SetPages(pages)
	return c
}

// SetPages 换成新的文档：清空场景和撤销历史，重新计算布局
func (c *Canvas) SetPages(pages PageProvider) {
	c.EndEditing()
	c.drag = nil
	for _, a := range c.scene.PaintOrder() {
		c.removeRaw(a)
	}
	c.pages = pages
	c.layout = LayoutFor(pages, c.opts.Spacing)
	c.undo.Reset()
	c.SetNeedsDisplay()
	logger.Debug("%d pages, document size %v", c.layout.PageCount(), c.layout.DocSize())
}

// Pages 当前页面提供者
func (c *Canvas) Pages() PageProvider { return c.pages }

// Layout 当前页面布局
func (c *Canvas) Layout() *Layout { return c.layout }

// UndoManager 画布的撤销历史
func (c *Canvas) UndoManager() *undo.Manager { return c.undo }

// Tool 当前工具
func (c *Canvas) Tool() sketch.Tool { return c.tool }

// SetTool 切换工具，同时结束文本编辑
func (c *Canvas) SetTool(t sketch.Tool) {
	c.EndEditing()
	c.tool = t
}

// ViewSize 缩放后的文档尺寸（像素）
func (c *Canvas) ViewSize() geom.Size {
	return c.layout.DocSize().ScaledBy(c.zoom)
}

// Zoom 当前缩放比例
func (c *Canvas) Zoom() float64 { return c.zoom }

// SetZoom 修改缩放并重绘整个视图
func (c *Canvas) SetZoom(zoom float64) {
	if zoom <= 0 || zoom == c.zoom {
		return
	}
	c.zoom = zoom
	c.SetNeedsDisplay()
}

// ConvertPointToAnnotation 视图坐标 -> 第 page 页的页面坐标
func (c *Canvas) ConvertPointToAnnotation(page int, p geom.Point) geom.Point {
	return c.layout.Converter(page, c.zoom).FromView(p)
}

// ConvertPointFromAnnotation 第 page 页的页面坐标 -> 视图坐标
func (c *Canvas) ConvertPointFromAnnotation(page int, p geom.Point) geom.Point {
	return c.layout.Converter(page, c.zoom).ToView(p)
}

// SetNeedsDisplayInPageRect 记录页面矩形对应的视图区域为脏区域
func (c *Canvas) SetNeedsDisplayInPageRect(page int, r geom.Rect) {
	c.invalidate(c.layout.Converter(page, c.zoom).RectToView(r))
}

// SetNeedsDisplay 整个视图需要重绘
func (c *Canvas) SetNeedsDisplay() {
	size := c.ViewSize()
	c.invalidate(geom.Rect{Size: size})
}

func (c *Canvas) invalidate(r geom.Rect) {
	if r.IsEmpty() {
		return
	}
	c.dirty = c.dirty.Union(r.InsetBy(-1))
	if c.redrawer != nil {
		c.redrawer.Request()
	}
}

// Dirty 尚未重绘的视图区域
func (c *Canvas) Dirty() geom.Rect { return c.dirty }

// TakeDirty 取出并清空脏区域
func (c *Canvas) TakeDirty() geom.Rect {
	r := c.dirty
	c.dirty = geom.Rect{}
	return r
}

// Annotations 按绘制顺序返回所有注释
func (c *Canvas) Annotations() []sketch.Annotation {
	return c.scene.PaintOrder()
}

// Len 注释个数
func (c *Canvas) Len() int { return c.scene.Len() }

// Check 校验场景结构
func (c *Canvas) Check() error {
	if err := c.scene.Check(); err != nil {
		return err
	}
	for a := range c.selection {
		if !c.scene.Contains(a) {
			return fmt.Errorf("canvas: selected %s is not in the scene", a.Kind())
		}
	}
	return nil
}

// Upper 紧挨在 a 上方的注释
func (c *Canvas) Upper(a sketch.Annotation) sketch.Annotation {
	return c.scene.Upper(a)
}

// Insert 把 a 放到 upper 的正下方（upper 为 nil 时放到顶层），并记录撤销操作
func (c *Canvas) Insert(a, upper sketch.Annotation) error {
	if err := c.insertRaw(a, upper); err != nil {
		return err
	}
	c.undo.AddClosure(c.removeLater(a))
	return nil
}

// removeLater 撤销插入用的闭包
func (c *Canvas) removeLater(a sketch.Annotation) func() {
	return func() {
		if err := c.Remove(a); err != nil {
			logger.Warn("undo insert of %s: %v", a.Kind(), err)
		}
	}
}

// Remove 移除 a，撤销时插回原来的位置并恢复选择状态
func (c *Canvas) Remove(a sketch.Annotation) error {
	selected := c.IsSelected(a)
	upper, err := c.removeRaw(a)
	if err != nil {
		return err
	}
	c.undo.AddClosure(func() {
		if !c.scene.Contains(upper) {
			upper = nil
		}
		if err := c.Insert(a, upper); err != nil {
			logger.Warn("failed to restore %s: %v", a.Kind(), err)
			return
		}
		if selected {
			c.selectRaw(a)
		}
	})
	return nil
}

func (c *Canvas) insertRaw(a, upper sketch.Annotation) error {
	if err := c.scene.InsertAfter(a, upper); err != nil {
		logger.Containment("insert "+string(a.Kind()), "sibling", err)
		return err
	}
	a.SetDelegate(c)
	a.SetNeedsDisplay(c.IsSelected(a))
	return nil
}

func (c *Canvas) removeRaw(a sketch.Annotation) (sketch.Annotation, error) {
	if c.editing != nil && sketch.Annotation(c.editing) == a {
		c.EndEditing()
	}
	if c.drag != nil && c.drag.target == a {
		c.drag = nil
	}
	upper, err := c.scene.Remove(a)
	if err != nil {
		return nil, err
	}
	a.SetNeedsDisplay(c.IsSelected(a))
	delete(c.selection, a)
	a.SetDelegate(nil)
	return upper, nil
}

// IsSelected a 是否在选择集中
func (c *Canvas) IsSelected(a sketch.Annotation) bool {
	_, ok := c.selection[a]
	return ok
}

// Selection 按绘制顺序返回选中的注释
func (c *Canvas) Selection() []sketch.Annotation {
	if len(c.selection) == 0 {
		return nil
	}
	out := make([]sketch.Annotation, 0, len(c.selection))
	for _, a := range c.scene.PaintOrder() {
		if c.IsSelected(a) {
			out = append(out, a)
		}
	}
	return out
}

// Select 把 a 加入选择集
func (c *Canvas) Select(a sketch.Annotation) {
	if !c.scene.Contains(a) {
		return
	}
	c.selectRaw(a)
}

func (c *Canvas) selectRaw(a sketch.Annotation) {
	if c.IsSelected(a) {
		return
	}
	c.selection[a] = struct{}{}
	a.SetNeedsDisplay(true)
}

// Deselect 把 a 移出选择集
func (c *Canvas) Deselect(a sketch.Annotation) {
	if !c.IsSelected(a) {
		return
	}
	a.SetNeedsDisplay(true)
	delete(c.selection, a)
	if c.editing != nil && sketch.Annotation(c.editing) == a {
		c.EndEditing()
	}
}

// ClearSelection 清空选择集
func (c *Canvas) ClearSelection() {
	for _, a := range c.Selection() {
		c.Deselect(a)
	}
}

// SetSelection 只选中 a
func (c *Canvas) SetSelection(a sketch.Annotation) {
	for _, s := range c.Selection() {
		if s != a {
			c.Deselect(s)
		}
	}
	c.Select(a)
}

// SelectAll 选中所有注释
func (c *Canvas) SelectAll() {
	c.EndEditing()
	for _, a := range c.scene.PaintOrder() {
		c.selectRaw(a)
	}
}

// Editing 正在编辑的注释，没有时为 nil
func (c *Canvas) Editing() sketch.Editor { return c.editing }

// BeginEditing 让 e 进入编辑状态，结束之前的编辑
func (c *Canvas) BeginEditing(e sketch.Editor) {
	if c.editing == e {
		return
	}
	c.EndEditing()
	c.SetSelection(e)
	c.editing = e
	e.BeginEditing(c.undo)
}

// EndEditing 结束当前编辑
func (c *Canvas) EndEditing() {
	e := c.editing
	if e == nil {
		return
	}
	c.editing = nil
	e.EndEditing()
}

// HitTest 自顶向下查找包含视图点 p 的注释
func (c *Canvas) HitTest(p geom.Point) sketch.Annotation {
	for _, a := range c.scene.HitOrder() {
		if a.HitTest(c.ConvertPointToAnnotation(a.Page(), p)) {
			return a
		}
	}
	return nil
}

// PageAt 视图点所在的页面，不在页面上时返回 -1
func (c *Canvas) PageAt(p geom.Point) int {
	return c.layout.PageAt(p.ScaledBy(1 / c.zoom))
}

// PerformUndo 撤销
func (c *Canvas) PerformUndo() {
	c.drag = nil
	c.undo.PerformUndo()
}

// PerformRedo 重做
func (c *Canvas) PerformRedo() {
	c.drag = nil
	c.undo.PerformRedo()
}

// DeleteSelection 删除所有选中的注释，作为一个撤销条目
func (c *Canvas) DeleteSelection() {
	c.EndEditing()
	sel := c.Selection()
	if len(sel) == 0 {
		return
	}
	agg := undo.NewScopedAggregator(c.undo)
	defer agg.Close()
	for _, a := range sel {
		if err := c.Remove(a); err != nil {
			logger.Warn("delete %s: %v", a.Kind(), err)
		}
	}
}

// BringToFront 把选中的注释移到最上层，保持它们之间的相对顺序
func (c *Canvas) BringToFront() {
	sel := c.Selection()
	if len(sel) == 0 {
		return
	}
	agg := undo.NewScopedAggregator(c.undo)
	defer agg.Close()
	for _, a := range sel {
		if c.scene.Upper(a) == nil {
			continue
		}
		c.restack(a, nil)
	}
}

// SendToBack 把选中的注释移到最下层，保持它们之间的相对顺序
func (c *Canvas) SendToBack() {
	sel := c.Selection()
	if len(sel) == 0 {
		return
	}
	agg := undo.NewScopedAggregator(c.undo)
	defer agg.Close()
	for i := len(sel) - 1; i >= 0; i-- {
		a := sel[i]
		bottom := c.scene.Bottom()
		if bottom == a {
			continue
		}
		c.restack(a, bottom)
	}
}

// restack 把 a 移到 upper 正下方（nil 表示顶层），并记录移回原位的操作
func (c *Canvas) restack(a, upper sketch.Annotation) {
	old := c.scene.Upper(a)
	if _, err := c.scene.Remove(a); err != nil {
		return
	}
	if upper != nil && !c.scene.Contains(upper) {
		upper = nil
	}
	if err := c.scene.InsertAfter(a, upper); err != nil {
		logger.Error("restack %s lost its slot: %v", a.Kind(), err)
		delete(c.selection, a)
		return
	}
	a.SetNeedsDisplay(c.IsSelected(a))
	c.undo.AddClosure(func() { c.restack(a, old) })
}

// MoveSelectionBy 平移所有选中的注释，作为一个撤销条目
func (c *Canvas) MoveSelectionBy(dx, dy float64) {
	sel := c.Selection()
	if len(sel) == 0 || (dx == 0 && dy == 0) {
		return
	}
	agg := undo.NewScopedAggregator(c.undo)
	defer agg.Close()
	for _, a := range sel {
		sketch.MoveByUndoable(a, c.undo, dx, dy)
	}
}

// SetSelectionStyle 修改所有选中注释的样式，作为一个撤销条目
func (c *Canvas) SetSelectionStyle(s sketch.Style) {
	sel := c.Selection()
	if len(sel) == 0 {
		return
	}
	agg := undo.NewScopedAggregator(c.undo)
	defer agg.Close()
	for _, a := range sel {
		sketch.SetStyleUndoable(a, c.undo, s)
	}
}

// constrain 按策略决定本次调整是否保持宽高比
func (c *Canvas) constrain(a sketch.Annotation, mods sketch.Modifiers) bool {
	shift := mods&sketch.ModShift != 0
	switch c.opts.Constrain {
	case ConstrainAlways:
		return true
	case ConstrainShift:
		return shift
	}
	ns := a.NaturalSize()
	return shift || (ns.Width > 0 && ns.Height > 0)
}
