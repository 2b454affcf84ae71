package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/logging"
)

// ErrNotPDF 数据不是 PDF
var ErrNotPDF = errors.New("pdfdoc: data is not a PDF")

// letterSize 缺少 MediaBox 时使用的页面尺寸
var letterSize = geom.Sz(612, 792)

var logger = logging.For(logging.PDF)

// pageInfo 一页的几何信息（单位 point）
type pageInfo struct {
	box    geom.Rect // MediaBox，PDF 坐标（y 向上）
	rotate int       // 0, 90, 180, 270
}

// size 旋转后的显示尺寸
func (p pageInfo) size() geom.Size {
	if p.rotate == 90 || p.rotate == 270 {
		return geom.Sz(p.box.Size.Height, p.box.Size.Width)
	}
	return p.box.Size
}

// toDisplay 把 PDF 用户空间的点转换为左上角为原点、y 向下的页面坐标
func (p pageInfo) toDisplay(x, y float64) geom.Point {
	x -= p.box.Origin.X
	y -= p.box.Origin.Y
	w, h := p.box.Size.Width, p.box.Size.Height
	switch p.rotate {
	case 90:
		return geom.Pt(y, x)
	case 180:
		return geom.Pt(w-x, y)
	case 270:
		return geom.Pt(h-y, w-x)
	}
	return geom.Pt(x, h-y)
}

// Document 只读 PDF 文档，实现 canvas.PageProvider。
// 页面尺寸优先由 pdfcpu 读取，失败时退回 ledongthuc/pdf；
// 页面内容以文本预览的方式绘制
type Document struct {
	data    []byte
	pages   []pageInfo
	backend string

	mu     sync.Mutex
	reader *lpdf.Reader
	texts  map[int][]lpdf.Text
}

// Open 解析内存中的 PDF
func Open(data []byte) (*Document, error) {
	if !IsPDF(data) {
		return nil, ErrNotPDF
	}
	d := &Document{data: data, texts: make(map[int][]lpdf.Text)}

	pages, err := readPagesPDFCPU(data)
	if err == nil {
		d.pages = pages
		d.backend = "pdfcpu"
	} else {
		logger.Warn("pdfcpu could not read document, falling back: %v", err)
		pages, lerr := readPagesLedongthuc(data)
		if lerr != nil {
			return nil, fmt.Errorf("failed to open PDF: %w", errors.Join(err, lerr))
		}
		d.pages = pages
		d.backend = "ledongthuc"
	}
	logger.Debug("opened PDF with %s: %d pages", d.backend, len(d.pages))
	return d, nil
}

// OpenFile 读取并解析 PDF 文件
func OpenFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return Open(data)
}

// IsPDF 检查 %PDF- 文件头（允许前导空白）
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n\x00"), []byte("%PDF-"))
}

// Data 原始 PDF 字节
func (d *Document) Data() []byte { return d.data }

// Backend 读取页面信息使用的库
func (d *Document) Backend() string { return d.backend }

func (d *Document) PageCount() int { return len(d.pages) }

func (d *Document) PageSize(i int) geom.Size {
	if i < 0 || i >= len(d.pages) {
		return geom.Size{}
	}
	return d.pages[i].size()
}

// Rotation 第 i 页的 /Rotate（已规范化到 0..270）
func (d *Document) Rotation(i int) int {
	if i < 0 || i >= len(d.pages) {
		return 0
	}
	return d.pages[i].rotate
}

// RenderPage 绘制第 i 页的文本预览
func (d *Document) RenderPage(i int, forPrint bool, ctx cairo.Context) error {
	if i < 0 || i >= len(d.pages) {
		return fmt.Errorf("page %d out of range [0, %d)", i, len(d.pages))
	}
	texts, err := d.pageTexts(i)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return nil
	}

	info := d.pages[i]
	layout := ctx.PangoCairoCreateLayout().(*cairo.PangoCairoLayout)
	ctx.SetSourceRGB(0, 0, 0)
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" || t.FontSize <= 0 {
			continue
		}
		fontDesc := cairo.NewPangoFontDescription()
		fontDesc.SetFamily(fontFamily(t.Font))
		fontDesc.SetSize(t.FontSize)
		layout.SetFontDescription(fontDesc)
		layout.SetText(t.S)
		p := info.toDisplay(t.X, t.Y)
		ctx.MoveTo(p.X, p.Y)
		ctx.PangoCairoShowText(layout)
	}
	return nil
}

// PageText 第 i 页的纯文本
func (d *Document) PageText(i int) (string, error) {
	texts, err := d.pageTexts(i)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	lastY := 0.0
	for n, t := range texts {
		if n > 0 && t.Y != lastY {
			sb.WriteByte('\n')
		}
		sb.WriteString(t.S)
		lastY = t.Y
	}
	return sb.String(), nil
}

// pageTexts 读取并缓存第 i 页的文本片段。
// ledongthuc/pdf 遇到损坏的内容流会 panic，这里转换为错误
func (d *Document) pageTexts(i int) (texts []lpdf.Text, err error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range [0, %d)", i, len(d.pages))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if cached, ok := d.texts[i]; ok {
		return cached, nil
	}
	if d.reader == nil {
		r, err := lpdf.NewReader(bytes.NewReader(d.data), int64(len(d.data)))
		if err != nil {
			return nil, fmt.Errorf("failed to read page content: %w", err)
		}
		d.reader = r
	}
	if i >= d.reader.NumPage() {
		d.texts[i] = nil
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("page %d: unreadable content: %v", i+1, r)
			d.texts[i] = nil
			texts, err = nil, nil
		}
	}()
	page := d.reader.Page(i + 1)
	if page.V.IsNull() {
		d.texts[i] = nil
		return nil, nil
	}
	texts = page.Content().Text
	d.texts[i] = texts
	return texts, nil
}

// readPagesPDFCPU 用 pdfcpu 读取每页的 MediaBox 和 Rotate（含继承属性）
func readPagesPDFCPU(data []byte) ([]pageInfo, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	if ctx.PageCount == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	pages := make([]pageInfo, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		_, _, attrs, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("failed to get page dict %d: %w", i, err)
		}
		info := pageInfo{box: geom.Rect{Size: letterSize}}
		if attrs != nil {
			box := attrs.MediaBox
			if attrs.CropBox != nil {
				box = attrs.CropBox
			}
			if box != nil && box.Width() > 0 && box.Height() > 0 {
				info.box = geom.R(box.LL.X, box.LL.Y, box.Width(), box.Height())
			}
			info.rotate = normalizeRotation(attrs.Rotate)
		}
		pages[i-1] = info
	}
	return pages, nil
}

// maxParentDepth 沿 Parent 链查找继承属性的最大深度
const maxParentDepth = 32

// readPagesLedongthuc 备用读取器；MediaBox 和 Rotate 需要手动沿 Parent 链继承
func readPagesLedongthuc(data []byte) (pages []pageInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()
	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}
	n := r.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("document has no pages")
	}
	pages = make([]pageInfo, n)
	for i := 1; i <= n; i++ {
		v := r.Page(i).V
		info := pageInfo{box: geom.Rect{Size: letterSize}}
		if box := inherited(v, "MediaBox"); box.Kind() == lpdf.Array && box.Len() == 4 {
			x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
			x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
			rect := geom.RectFromPoints(
				geom.Pt(math.Min(x0, x1), math.Min(y0, y1)),
				geom.Pt(math.Max(x0, x1), math.Max(y0, y1)))
			if !rect.IsEmpty() {
				info.box = rect
			}
		}
		if rot := inherited(v, "Rotate"); rot.Kind() == lpdf.Integer {
			info.rotate = normalizeRotation(int(rot.Int64()))
		}
		pages[i-1] = info
	}
	return pages, nil
}

func inherited(v lpdf.Value, key string) lpdf.Value {
	for depth := 0; depth < maxParentDepth && !v.IsNull(); depth++ {
		if val := v.Key(key); !val.IsNull() {
			return val
		}
		v = v.Key("Parent")
	}
	return lpdf.Value{}
}

func normalizeRotation(r int) int {
	r %= 360
	if r < 0 {
		r += 360
	}
	switch r {
	case 90, 180, 270:
		return r
	}
	return 0
}

// fontFamily 把 PDF 字体名映射到系统字体族
func fontFamily(name string) string {
	if i := strings.IndexByte(name, '+'); i >= 0 {
		name = name[i+1:]
	}
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "courier") || strings.Contains(lower, "mono"):
		return "Monospace"
	case strings.Contains(lower, "times") || (strings.Contains(lower, "serif") && !strings.Contains(lower, "sans")):
		return "Serif"
	}
	return "Sans"
}
