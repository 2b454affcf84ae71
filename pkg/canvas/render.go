package canvas

import (
	"fmt"
	"image"
	"math"

	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/logging"
	"github.com/novvoo/go-pdfsketch/pkg/sketch"
)

// RenderOptions 导出渲染选项
type RenderOptions struct {
	DPI        float64       // 分辨率，默认 72
	Background *sketch.Color // 页面背景色，nil 表示白色
	ForPrint   bool          // 传给页面提供者
}

var renderLog = logging.For(logging.Render)

func (o *RenderOptions) scale() float64 {
	if o == nil || o.DPI <= 0 {
		return 1
	}
	return o.DPI / 72.0
}

// Snapshot 某一时刻的文档内容：页面提供者加上按页分组的注释副本。
// 副本与画布中的注释互不共享，可以在其他 goroutine 中并发渲染
type Snapshot struct {
	pages  PageProvider
	byPage [][]sketch.Annotation
}

// Snapshot 复制当前所有注释
func (c *Canvas) Snapshot() (*Snapshot, error) {
	if c.pages == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	annotations, err := c.Serialize().Restore()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot annotations: %w", err)
	}
	return NewSnapshot(c.pages, annotations), nil
}

// NewSnapshot 用独立的注释对象创建快照；页码越界的注释被忽略
func NewSnapshot(pages PageProvider, annotations []sketch.Annotation) *Snapshot {
	s := &Snapshot{pages: pages, byPage: make([][]sketch.Annotation, pages.PageCount())}
	for _, a := range annotations {
		p := a.Page()
		if p < 0 || p >= len(s.byPage) {
			renderLog.Warn("snapshot: %s on missing page %d", a.Kind(), p)
			continue
		}
		s.byPage[p] = append(s.byPage[p], a)
	}
	return s
}

// PageCount 页数
func (s *Snapshot) PageCount() int { return len(s.byPage) }

// PageSize 第 i 页尺寸（point）
func (s *Snapshot) PageSize(i int) geom.Size { return s.pages.PageSize(i) }

// Annotations 第 i 页的注释，按绘制顺序
func (s *Snapshot) Annotations(i int) []sketch.Annotation {
	if i < 0 || i >= len(s.byPage) {
		return nil
	}
	return s.byPage[i]
}

// DrawPage 在页面坐标系中绘制第 i 页的内容和注释（不含选中状态）
func (s *Snapshot) DrawPage(ctx cairo.Context, i int, forPrint bool) error {
	if i < 0 || i >= len(s.byPage) {
		return fmt.Errorf("page %d out of range [0, %d)", i, len(s.byPage))
	}
	ctx.Save()
	err := s.pages.RenderPage(i, forPrint, ctx)
	ctx.Restore()
	if err != nil {
		return fmt.Errorf("failed to render page %d: %w", i, err)
	}
	for _, a := range s.byPage[i] {
		ctx.Save()
		a.Draw(ctx, false)
		ctx.Restore()
	}
	return nil
}

// RenderPageImage 按 DPI 把第 i 页渲染到新的图像表面，调用方负责 Destroy
func (s *Snapshot) RenderPageImage(i int, opts *RenderOptions) (cairo.ImageSurface, error) {
	size := s.PageSize(i)
	scale := opts.scale()
	w := int(math.Ceil(size.Width * scale))
	h := int(math.Ceil(size.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page %d has empty size %v", i, size)
	}

	surface := cairo.NewImageSurface(cairo.FormatARGB32, w, h)
	imgSurf, ok := surface.(cairo.ImageSurface)
	if !ok {
		surface.Destroy()
		return nil, fmt.Errorf("failed to create image surface")
	}
	ctx := cairo.NewContext(imgSurf)
	defer ctx.Destroy()

	bg := sketch.White
	if opts != nil && opts.Background != nil {
		bg = *opts.Background
	}
	bg.SetSource(ctx)
	ctx.Paint()
	ctx.Scale(scale, scale)

	forPrint := opts != nil && opts.ForPrint
	if err := s.DrawPage(ctx, i, forPrint); err != nil {
		imgSurf.Destroy()
		return nil, err
	}
	return imgSurf, nil
}

// RenderPagePNG 把第 i 页渲染成 PNG 文件
func (s *Snapshot) RenderPagePNG(i int, path string, opts *RenderOptions) error {
	imgSurf, err := s.RenderPageImage(i, opts)
	if err != nil {
		return err
	}
	defer imgSurf.Destroy()
	if status := imgSurf.WriteToPNG(path); status != cairo.StatusSuccess {
		return fmt.Errorf("failed to write PNG: %v", status)
	}
	return nil
}

// RenderPDF 把所有页面（页面内容 + 注释）写成一个矢量 PDF。
// 表面尺寸取第一页，尺寸不同的页面按第一页尺寸输出
func (s *Snapshot) RenderPDF(path string) error {
	if s.PageCount() == 0 {
		return fmt.Errorf("no pages to render")
	}
	first := s.PageSize(0)
	pdfSurface := cairo.NewPDFSurface(path, first.Width, first.Height)
	defer pdfSurface.Destroy()
	if pdfSurface.Status() != cairo.StatusSuccess {
		return fmt.Errorf("failed to create PDF surface: %v", pdfSurface.Status())
	}

	ctx := cairo.NewContext(pdfSurface)
	defer ctx.Destroy()

	for i := 0; i < s.PageCount(); i++ {
		if size := s.PageSize(i); size != first {
			renderLog.Warn("page %d is %v, output uses %v", i, size, first)
		}
		if err := s.DrawPage(ctx, i, true); err != nil {
			return err
		}
		pdfSurface.ShowPage()
	}
	return nil
}

// SurfaceToImage 把 ARGB32 表面复制为 image.RGBA。
// 绘制结果保存在表面的 Go 图像中，GetData 的字节不会同步
func SurfaceToImage(surface cairo.ImageSurface) (*image.RGBA, error) {
	w, h := surface.GetWidth(), surface.GetHeight()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty surface %dx%d", w, h)
	}
	src, ok := surface.GetGoImage().(*image.RGBA)
	if !ok || src == nil {
		return nil, fmt.Errorf("surface has no RGBA image (format %v)", surface.GetFormat())
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w*4], src.Pix[y*src.Stride:y*src.Stride+w*4])
	}
	return img, nil
}
