package sketch

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/novvoo/go-cairo/pkg/cairo"
)

// Color RGBA 颜色，分量范围 [0, 1]
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

var (
	Black = Color{A: 1}
	White = Color{R: 1, G: 1, B: 1, A: 1}
)

// RGBA 创建颜色
func RGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ParseHex 解析 "#rrggbbaa" 形式的颜色；"#rrggbb" 视为不透明
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 6:
		hex += "ff"
	case 8:
	default:
		return Black, fmt.Errorf("invalid color %q: want #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Black, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		R: float64((v>>24)&0xff) / 255.0,
		G: float64((v>>16)&0xff) / 255.0,
		B: float64((v>>8)&0xff) / 255.0,
		A: float64(v&0xff) / 255.0,
	}, nil
}

// Hex 格式化为 "#rrggbbaa"
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B), channel(c.A))
}

func (c Color) String() string {
	return c.Hex()
}

// Valid 所有分量都是 [0, 1] 内的有限值
func (c Color) Valid() bool {
	for _, v := range [4]float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// SetSource 设置为 cairo 的当前源颜色
func (c Color) SetSource(ctx cairo.Context) {
	ctx.SetSourceRGBA(c.R, c.G, c.B, c.A)
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
