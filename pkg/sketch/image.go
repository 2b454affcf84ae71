package sketch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/novvoo/go-cairo/pkg/cairo"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/logging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// imageMaxFrame 新建图片注释时框架的最大边长
	imageMaxFrame = 500.0
	// imageMaxSurface 缓存 surface 的最大边长，更大的图片先缩小
	imageMaxSurface = 2048
)

// Image 图片注释，保存原始字节，绘制时使用缓存的 surface
type Image struct {
	Base
	data   []byte
	key    string
	format string
}

// NewImage 从 PNG/JPEG/GIF/BMP/TIFF/WebP 数据创建图片注释。
// 固有尺寸为像素尺寸，框架等比缩放到 500x500 以内
func NewImage(data []byte) (*Image, error) {
	img := &Image{Base: newBase(KnobsAll)}
	if err := img.load(data); err != nil {
		return nil, err
	}
	img.frame.Size = img.naturalSize
	if maxLen := max(img.frame.Size.Width, img.frame.Size.Height); maxLen > imageMaxFrame {
		img.frame.Size = img.frame.Size.ScaledBy(imageMaxFrame / maxLen)
	}
	return img, nil
}

func (img *Image) load(data []byte) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("failed to decode image: empty %s image", format)
	}
	sum := sha256.Sum256(data)
	img.data = append([]byte(nil), data...)
	img.key = hex.EncodeToString(sum[:])
	img.format = format
	img.naturalSize = geom.Sz(float64(cfg.Width), float64(cfg.Height))
	return nil
}

func (img *Image) Kind() Kind { return KindImage }

// Data 原始图片字节
func (img *Image) Data() []byte { return img.data }

// Format 解码器报告的格式名（png、jpeg ...）
func (img *Image) Format() string { return img.format }

func (img *Image) Draw(ctx cairo.Context, selected bool) {
	surf, err := img.surface()
	if err != nil {
		logging.For(logging.Sketch).Warn("image annotation: %v", err)
		return
	}
	w, h := surf.GetWidth(), surf.GetHeight()
	if w <= 0 || h <= 0 || img.frame.Size.Width <= 0 || img.frame.Size.Height <= 0 {
		return
	}
	sx := img.frame.Size.Width / float64(w)
	sy := img.frame.Size.Height / float64(h)
	if compositeSurface(ctx, surf, img.frame.Left(), img.frame.Top(), sx, sy) {
		return
	}
	ctx.Save()
	defer ctx.Restore()
	ctx.Translate(img.frame.Left(), img.frame.Top())
	ctx.Scale(sx, sy)
	ctx.SetSourceSurface(surf, 0, 0)
	ctx.Paint()
}

// compositeSurface 把 src 的像素合成到目标图像表面：像素 (u, v) 落在用户空间
// (x+u*sx, y+v*sy)，再经当前矩阵映射到设备空间。目标不是 RGBA 图像表面时返回 false
func compositeSurface(ctx cairo.Context, src cairo.ImageSurface, x, y, sx, sy float64) bool {
	target, ok := ctx.GetTarget().(cairo.ImageSurface)
	if !ok {
		return false
	}
	dst, ok := target.GetGoImage().(*image.RGBA)
	if !ok || dst == nil {
		return false
	}
	pix, ok := src.GetGoImage().(*image.RGBA)
	if !ok || pix == nil {
		return false
	}
	m := ctx.GetMatrix()
	aff := f64.Aff3{
		m.XX * sx, m.XY * sy, m.XX*x + m.XY*y + m.X0,
		m.YX * sx, m.YY * sy, m.YX*x + m.YY*y + m.Y0,
	}
	draw.BiLinear.Transform(dst, aff, pix, pix.Bounds(), draw.Over, nil)
	return true
}

// surface 从缓存取 surface，没有则解码并放入缓存
func (img *Image) surface() (cairo.ImageSurface, error) {
	cache := DefaultSurfaceCache()
	if s, ok := cache.Get(img.key); ok {
		return s, nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(img.data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	s, err := ImageToSurface(fitImage(decoded, imageMaxSurface))
	if err != nil {
		return nil, err
	}
	cache.Set(img.key, s, s.GetStride()*s.GetHeight())
	logging.Debugf("image surface cached: %s %dx%d\n", img.key[:12], s.GetWidth(), s.GetHeight())
	return s, nil
}

func (img *Image) Serialize() Record {
	rec := img.serializeBase(KindImage)
	rec.Image = &ImagePayload{Data: append([]byte(nil), img.data...)}
	return rec
}

// fitImage 把图片等比缩小到 maxSide 以内，返回预乘 alpha 的 RGBA
func fitImage(src image.Image, maxSide int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxSide || h > maxSide {
		scale := float64(maxSide) / float64(max(w, h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	return dst
}

// ImageToSurface 把 RGBA 图片复制到 ARGB32 surface 的 Go 图像中。
// 两者都是预乘 alpha 的 RGBA 排列，按行复制即可
func ImageToSurface(src *image.RGBA) (cairo.ImageSurface, error) {
	b := src.Bounds()
	surface := cairo.NewImageSurface(cairo.FormatARGB32, b.Dx(), b.Dy())
	imgSurf, ok := surface.(cairo.ImageSurface)
	if !ok {
		surface.Destroy()
		return nil, fmt.Errorf("failed to create image surface")
	}
	dst, ok := imgSurf.GetGoImage().(*image.RGBA)
	if !ok || dst == nil {
		imgSurf.Destroy()
		return nil, fmt.Errorf("image surface has no RGBA buffer")
	}
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	imgSurf.MarkDirty()
	return imgSurf, nil
}
