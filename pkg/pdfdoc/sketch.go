package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/novvoo/go-pdfsketch/pkg/canvas"
	"github.com/novvoo/go-pdfsketch/pkg/sketchfile"
)

// AttachmentName 导出的 PDF 中嵌入的可编辑源文件名
const AttachmentName = "source.pdfsketch"

// ErrNoSketch PDF 中没有嵌入的源文件
var ErrNoSketch = errors.New("pdfdoc: no embedded " + AttachmentName)

// Source 文档来源
type Source int

const (
	// SourcePDF 普通 PDF，没有注释
	SourcePDF Source = iota
	// SourceContainer skch 容器文件
	SourceContainer
	// SourceEmbedded 导出的 PDF，注释来自嵌入的源文件
	SourceEmbedded
)

func (s Source) String() string {
	switch s {
	case SourceContainer:
		return "container"
	case SourceEmbedded:
		return "embedded"
	}
	return "pdf"
}

// Loaded 打开的文档：页面加上可选的注释记录
type Loaded struct {
	PDF    *Document
	Sketch *sketchfile.Document // 普通 PDF 时为 nil
	Source Source
}

// Load 识别并打开数据：skch 容器、带嵌入源文件的 PDF 或普通 PDF
func Load(data []byte) (*Loaded, error) {
	if sketchfile.IsContainer(data) {
		return loadContainer(data, SourceContainer)
	}
	if !IsPDF(data) {
		return nil, fmt.Errorf("unrecognized file: %w", ErrNotPDF)
	}

	embedded, err := ExtractSketch(data)
	switch {
	case err == nil && len(embedded) > len(sketchfile.Magic):
		loaded, lerr := loadContainer(embedded, SourceEmbedded)
		if lerr == nil {
			return loaded, nil
		}
		logger.Warn("ignoring damaged %s: %v", AttachmentName, lerr)
	case err != nil:
		logger.Debug("%v", err)
	}

	doc, err := Open(data)
	if err != nil {
		return nil, err
	}
	return &Loaded{PDF: doc, Source: SourcePDF}, nil
}

// LoadFile 读取并打开文件
func LoadFile(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Load(data)
}

func loadContainer(data []byte, source Source) (*Loaded, error) {
	f, err := sketchfile.Decode(data)
	if err != nil {
		return nil, err
	}
	sk, err := f.Document()
	if err != nil {
		return nil, err
	}
	doc, err := Open(f.PDF)
	if err != nil {
		return nil, fmt.Errorf("embedded PDF: %w", err)
	}
	return &Loaded{PDF: doc, Sketch: sk, Source: source}, nil
}

// NewCanvas 用打开的文档创建画布并载入注释
func (l *Loaded) NewCanvas(opts canvas.Options) (*canvas.Canvas, error) {
	c := canvas.New(l.PDF, opts)
	if l.Sketch != nil {
		if err := c.Load(l.Sketch); err != nil {
			return nil, fmt.Errorf("failed to load annotations: %w", err)
		}
	}
	return c, nil
}

// ExtractSketch 读取 PDF 中嵌入的 source.pdfsketch
func ExtractSketch(pdf []byte) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	attachments, err := api.ExtractAttachmentsRaw(bytes.NewReader(pdf), "", []string{AttachmentName}, conf)
	if err != nil {
		// 没有附件时 pdfcpu 同样返回错误
		return nil, fmt.Errorf("%w: %v", ErrNoSketch, err)
	}
	for _, a := range attachments {
		if a.FileName != AttachmentName || a.Reader == nil {
			continue
		}
		data, err := io.ReadAll(a)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", AttachmentName, err)
		}
		return data, nil
	}
	return nil, ErrNoSketch
}

// Container 把画布当前内容和原始 PDF 编码为 skch 容器
func Container(c *canvas.Canvas, doc *Document) ([]byte, error) {
	record, err := sketchfile.MarshalDocument(c.Serialize())
	if err != nil {
		return nil, err
	}
	return sketchfile.Encode(doc.Data(), record)
}

// Embed 把容器作为 source.pdfsketch 附件写入 PDF
func Embed(pdf, container []byte, w io.Writer) error {
	dir, err := os.MkdirTemp("", "pdfsketch-embed-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	attachment := filepath.Join(dir, AttachmentName)
	if err := os.WriteFile(attachment, container, 0o644); err != nil {
		return fmt.Errorf("failed to write attachment: %w", err)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.AddAttachments(bytes.NewReader(pdf), w, []string{attachment}, false, conf); err != nil {
		return fmt.Errorf("failed to attach %s: %w", AttachmentName, err)
	}
	return nil
}

// Export 输出扁平化的 PDF（页面 + 注释），并嵌入可重新编辑的容器
func Export(c *canvas.Canvas, doc *Document, w io.Writer) error {
	container, err := Container(c, doc)
	if err != nil {
		return err
	}
	snap, err := c.Snapshot()
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "pdfsketch-export-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	flat := filepath.Join(dir, "flat.pdf")
	if err := snap.RenderPDF(flat); err != nil {
		return fmt.Errorf("failed to flatten: %w", err)
	}
	flatData, err := os.ReadFile(flat)
	if err != nil {
		return fmt.Errorf("failed to read flattened PDF: %w", err)
	}
	logger.Debug("export: flattened %d pages, %d bytes", snap.PageCount(), len(flatData))
	return Embed(flatData, container, w)
}

// ExportFile 导出到文件
func ExportFile(c *canvas.Canvas, doc *Document, path string) error {
	var buf bytes.Buffer
	if err := Export(c, doc, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
