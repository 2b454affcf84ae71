// Package sketchfile 读写 pdfsketch 的存档：skch 容器（原始 PDF + 注释记录）以及
// 剪贴板和存档共用的 Document JSON 记录。
package sketchfile

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/novvoo/go-pdfsketch/pkg/sketch"
)

var ErrEmptyDocument = errors.New("sketchfile: empty document record")

// Document 有序的注释记录列表（绘制顺序，从底到顶）
type Document struct {
	Graphics []sketch.Record `json:"graphics"`
}

// Validate 逐条检查记录，返回第一条无效记录的错误
func (d *Document) Validate() error {
	for i := range d.Graphics {
		if err := d.Graphics[i].Validate(); err != nil {
			return fmt.Errorf("graphic %d: %w", i, err)
		}
	}
	return nil
}

// Restore 把所有记录恢复为注释。任何一条失败都不返回部分结果
func (d *Document) Restore() ([]sketch.Annotation, error) {
	out := make([]sketch.Annotation, 0, len(d.Graphics))
	for i, rec := range d.Graphics {
		a, err := sketch.Restore(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to restore graphic %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// NewDocument 按给定顺序序列化注释
func NewDocument(annotations []sketch.Annotation) *Document {
	doc := &Document{Graphics: make([]sketch.Record, 0, len(annotations))}
	for _, a := range annotations {
		doc.Graphics = append(doc.Graphics, a.Serialize())
	}
	return doc
}

// MarshalDocument 编码为 JSON
func MarshalDocument(d *Document) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// UnmarshalDocument 解码并校验 JSON 记录
func UnmarshalDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if d.Graphics == nil {
		return nil, fmt.Errorf("failed to decode document: %w", ErrEmptyDocument)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
