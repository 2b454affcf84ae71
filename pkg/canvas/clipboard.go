package canvas

import (
	"fmt"
	"unicode/utf8"

	"github.com/novvoo/go-pdfsketch/pkg/sketch"
	"github.com/novvoo/go-pdfsketch/pkg/sketchfile"
	"github.com/novvoo/go-pdfsketch/pkg/undo"
)

// Copy 把选中的注释编码为 Document JSON；没有选中时返回 nil
func (c *Canvas) Copy() ([]byte, error) {
	sel := c.Selection()
	if len(sel) == 0 {
		return nil, nil
	}
	return sketchfile.MarshalDocument(sketchfile.NewDocument(sel))
}

// Cut 复制后删除选中的注释
func (c *Canvas) Cut() ([]byte, error) {
	c.EndEditing()
	data, err := c.Copy()
	if err != nil || data == nil {
		return data, err
	}
	c.DeleteSelection()
	return data, nil
}

// Paste 粘贴剪贴板数据。编辑中的文本框直接接收文本；否则依次尝试
// Document 记录、图片数据和普通文本。返回是否粘贴了任何内容
func (c *Canvas) Paste(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if e := c.editing; e != nil {
		if !utf8.Valid(data) {
			return false
		}
		return e.OnPaste(string(data))
	}

	annotations, err := c.decodeClipboard(data)
	if err != nil {
		logger.Debug("paste ignored: %v", err)
		return false
	}
	if len(annotations) == 0 {
		return false
	}

	agg := undo.NewScopedAggregator(c.undo)
	defer agg.Close()
	c.ClearSelection()
	for _, a := range annotations {
		if err := c.Insert(a, nil); err != nil {
			continue
		}
		c.selectRaw(a)
	}
	return true
}

func (c *Canvas) decodeClipboard(data []byte) ([]sketch.Annotation, error) {
	pageCount := c.layout.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("no pages to paste onto")
	}

	if doc, err := sketchfile.UnmarshalDocument(data); err == nil {
		for i := range doc.Graphics {
			if doc.Graphics[i].Page >= pageCount {
				doc.Graphics[i].Page = pageCount - 1
			}
		}
		return doc.Restore()
	}

	page := c.pasteTargetPage()
	if img, err := sketch.NewImage(data); err == nil {
		return onPage(img, page)
	}
	if utf8.Valid(data) {
		return onPage(sketch.NewText(string(data)), page)
	}
	return nil, fmt.Errorf("unrecognized clipboard data (%d bytes)", len(data))
}

// pasteTargetPage 第一个选中注释所在的页面，否则第 0 页
func (c *Canvas) pasteTargetPage() int {
	if sel := c.Selection(); len(sel) > 0 {
		return sel[0].Page()
	}
	return 0
}

// onPage 通过记录把新建的注释移到 page 页
func onPage(a sketch.Annotation, page int) ([]sketch.Annotation, error) {
	if page == a.Page() {
		return []sketch.Annotation{a}, nil
	}
	rec := a.Serialize()
	rec.Page = page
	moved, err := sketch.Restore(rec)
	if err != nil {
		return nil, err
	}
	return []sketch.Annotation{moved}, nil
}

// Serialize 按绘制顺序导出所有注释
func (c *Canvas) Serialize() *sketchfile.Document {
	return sketchfile.NewDocument(c.scene.PaintOrder())
}

// Load 用 doc 替换场景中的所有注释。任何记录无效时场景保持不变
func (c *Canvas) Load(doc *sketchfile.Document) error {
	pageCount := c.layout.PageCount()
	for i, rec := range doc.Graphics {
		if rec.Page >= pageCount {
			return fmt.Errorf("graphic %d: page %d out of range [0, %d)", i, rec.Page, pageCount)
		}
	}
	annotations, err := doc.Restore()
	if err != nil {
		return err
	}

	c.EndEditing()
	c.drag = nil
	for _, a := range c.scene.PaintOrder() {
		c.removeRaw(a)
	}
	for _, a := range annotations {
		if err := c.insertRaw(a, nil); err != nil {
			return fmt.Errorf("failed to load %s: %w", a.Kind(), err)
		}
	}
	c.undo.Reset()
	c.SetNeedsDisplay()
	logger.Info("loaded %d graphics", len(annotations))
	return nil
}
