package sketch

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/novvoo/go-cairo/pkg/cairo"
)

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func whiteSurface(t *testing.T, w, h int) (cairo.ImageSurface, cairo.Context) {
	t.Helper()
	surf, ok := cairo.NewImageSurface(cairo.FormatARGB32, w, h).(cairo.ImageSurface)
	if !ok {
		t.Fatal("NewImageSurface did not return an image surface")
	}
	ctx := cairo.NewContext(surf)
	t.Cleanup(func() {
		ctx.Destroy()
		surf.Destroy()
	})
	ctx.SetSourceRGB(1, 1, 1)
	ctx.Paint()
	return surf, ctx
}

func pixelAt(t *testing.T, surf cairo.ImageSurface, x, y int) color.RGBA {
	t.Helper()
	img, ok := surf.GetGoImage().(*image.RGBA)
	if !ok {
		t.Fatalf("surface image is %T", surf.GetGoImage())
	}
	return img.RGBAAt(x, y)
}

func isRed(c color.RGBA) bool   { return c.R > 250 && c.G < 5 && c.B < 5 && c.A > 250 }
func isWhite(c color.RGBA) bool { return c.R > 250 && c.G > 250 && c.B > 250 && c.A > 250 }

func TestImageDrawsPixels(t *testing.T) {
	img, err := NewImage(solidPNG(t, 10, 10, color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	surf, ctx := whiteSurface(t, 20, 20)

	img.Draw(ctx, false)

	if c := pixelAt(t, surf, 5, 5); !isRed(c) {
		t.Errorf("pixel inside image = %+v, want red", c)
	}
	if c := pixelAt(t, surf, 15, 15); !isWhite(c) {
		t.Errorf("pixel outside image = %+v, want white", c)
	}
}

func TestImageDrawFollowsTransform(t *testing.T) {
	img, err := NewImage(solidPNG(t, 4, 4, color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	surf, ctx := whiteSurface(t, 40, 20)
	ctx.Translate(20, 0)

	img.Draw(ctx, false)

	if c := pixelAt(t, surf, 22, 2); !isRed(c) {
		t.Errorf("pixel under translated image = %+v, want red", c)
	}
	if c := pixelAt(t, surf, 2, 2); !isWhite(c) {
		t.Errorf("pixel at untranslated origin = %+v, want white", c)
	}
}
