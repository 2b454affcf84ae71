package sketch

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"unicode/utf8"

	"github.com/novvoo/go-pdfsketch/pkg/geom"
)

// Record 注释的持久化形式，按 Kind 携带对应的负载
type Record struct {
	Kind        Kind      `json:"kind"`
	Frame       geom.Rect `json:"frame"`
	NaturalSize geom.Size `json:"natural_size"`
	Page        int       `json:"page"`
	Fill        Color     `json:"fill"`
	Stroke      Color     `json:"stroke"`
	LineWidth   float64   `json:"line_width"`
	HFlip       bool      `json:"h_flip,omitempty"`
	VFlip       bool      `json:"v_flip,omitempty"`

	Text     *TextPayload     `json:"text,omitempty"`
	Squiggle *SquigglePayload `json:"squiggle,omitempty"`
	Image    *ImagePayload    `json:"image,omitempty"`
}

// TextPayload 文本框内容
type TextPayload struct {
	Text string `json:"text"`
}

// SquigglePayload 手绘线的点（放置时的页面坐标）
type SquigglePayload struct {
	OriginalOrigin geom.Point   `json:"original_origin"`
	Points         []geom.Point `json:"points"`
}

// ImagePayload 原始图片字节，JSON 中为 base64
type ImagePayload struct {
	Data []byte `json:"data"`
}

// Validate 检查记录是否可以恢复，返回的错误包装 ErrInvalidRecord 或 ErrUnknownKind
func (rec *Record) Validate() error {
	switch rec.Kind {
	case KindRectangle, KindCircle, KindCheckmark, KindSquiggle, KindText, KindImage:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, rec.Kind)
	}
	if !rec.Frame.IsFinite() || rec.Frame.Size.Width < 0 || rec.Frame.Size.Height < 0 {
		return fmt.Errorf("%w: bad frame %v", ErrInvalidRecord, rec.Frame)
	}
	if !rec.NaturalSize.IsFinite() || rec.NaturalSize.Width < 0 || rec.NaturalSize.Height < 0 {
		return fmt.Errorf("%w: bad natural size %v", ErrInvalidRecord, rec.NaturalSize)
	}
	if rec.Page < 0 {
		return fmt.Errorf("%w: negative page %d", ErrInvalidRecord, rec.Page)
	}
	if !rec.Fill.Valid() || !rec.Stroke.Valid() {
		return fmt.Errorf("%w: color component out of range", ErrInvalidRecord)
	}
	if math.IsNaN(rec.LineWidth) || math.IsInf(rec.LineWidth, 0) || rec.LineWidth < 0 {
		return fmt.Errorf("%w: bad line width %v", ErrInvalidRecord, rec.LineWidth)
	}

	hasText, hasSquiggle, hasImage := rec.Text != nil, rec.Squiggle != nil, rec.Image != nil
	if hasText != (rec.Kind == KindText) || hasSquiggle != (rec.Kind == KindSquiggle) || hasImage != (rec.Kind == KindImage) {
		return fmt.Errorf("%w: payload does not match kind %q", ErrInvalidRecord, rec.Kind)
	}
	switch rec.Kind {
	case KindText:
		if !utf8.ValidString(rec.Text.Text) {
			return fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidRecord)
		}
	case KindSquiggle:
		if !rec.Squiggle.OriginalOrigin.IsFinite() {
			return fmt.Errorf("%w: bad squiggle origin", ErrInvalidRecord)
		}
		for i, p := range rec.Squiggle.Points {
			if !p.IsFinite() {
				return fmt.Errorf("%w: squiggle point %d is not finite", ErrInvalidRecord, i)
			}
		}
	case KindImage:
		if _, _, err := image.DecodeConfig(bytes.NewReader(rec.Image.Data)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
	}
	return nil
}

// Restore 从记录重建注释；记录无效时不创建任何对象
func Restore(rec Record) (Annotation, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	var a Annotation
	switch rec.Kind {
	case KindRectangle:
		r := NewRectangle()
		r.restoreBase(&rec)
		a = r
	case KindCircle:
		c := NewCircle()
		c.restoreBase(&rec)
		a = c
	case KindCheckmark:
		c := NewCheckmark()
		c.restoreBase(&rec)
		a = c
	case KindSquiggle:
		s := NewSquiggle()
		s.restoreBase(&rec)
		s.points = append([]geom.Point(nil), rec.Squiggle.Points...)
		s.originalOrigin = rec.Squiggle.OriginalOrigin
		a = s
	case KindText:
		t := NewTextArea()
		t.restoreBase(&rec)
		t.text = []rune(rec.Text.Text)
		t.relayout()
		a = t
	case KindImage:
		img := &Image{Base: newBase(KnobsAll)}
		if err := img.load(rec.Image.Data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		img.restoreBase(&rec)
		a = img
	}
	return a, nil
}
