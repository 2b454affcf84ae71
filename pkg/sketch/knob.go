package sketch

import "strings"

// Knob 调整大小用的控制点，按位组合表示能力掩码
type Knob int

const (
	KnobNone        Knob = 0
	KnobUpperLeft   Knob = 1 << 0
	KnobUpperMiddle Knob = 1 << 1
	KnobUpperRight  Knob = 1 << 2
	KnobMiddleLeft  Knob = 1 << 3
	KnobMiddleRight Knob = 1 << 4
	KnobLowerLeft   Knob = 1 << 5
	KnobLowerMiddle Knob = 1 << 6
	KnobLowerRight  Knob = 1 << 7

	KnobsAll   = KnobUpperLeft | KnobUpperMiddle | KnobUpperRight | KnobMiddleLeft | KnobMiddleRight | KnobLowerLeft | KnobLowerMiddle | KnobLowerRight
	KnobsSides = KnobMiddleLeft | KnobMiddleRight
)

const (
	knobEdgeLength = 7.0
	knobLineWidth  = 1.0
	knobCount      = 8
)

var knobNames = map[Knob]string{
	KnobNone:        "none",
	KnobUpperLeft:   "upper-left",
	KnobUpperMiddle: "upper-middle",
	KnobUpperRight:  "upper-right",
	KnobMiddleLeft:  "middle-left",
	KnobMiddleRight: "middle-right",
	KnobLowerLeft:   "lower-left",
	KnobLowerMiddle: "lower-middle",
	KnobLowerRight:  "lower-right",
}

func (k Knob) String() string {
	if name, ok := knobNames[k]; ok {
		return name
	}
	var parts []string
	for i := 0; i < knobCount; i++ {
		if bit := Knob(1 << i); k&bit != 0 {
			parts = append(parts, knobNames[bit])
		}
	}
	return strings.Join(parts, "|")
}

// Has 掩码是否包含 knob
func (k Knob) Has(knob Knob) bool {
	return k&knob != 0
}

func (k Knob) isUpper() bool {
	return k == KnobUpperLeft || k == KnobUpperMiddle || k == KnobUpperRight
}

func (k Knob) isLower() bool {
	return k == KnobLowerLeft || k == KnobLowerMiddle || k == KnobLowerRight
}

func (k Knob) isLeft() bool {
	return k == KnobUpperLeft || k == KnobMiddleLeft || k == KnobLowerLeft
}

func (k Knob) isRight() bool {
	return k == KnobUpperRight || k == KnobMiddleRight || k == KnobLowerRight
}

// IsCorner 四个角之一
func (k Knob) IsCorner() bool {
	return k == KnobUpperLeft || k == KnobUpperRight || k == KnobLowerLeft || k == KnobLowerRight
}

// flippedY 上下镜像
func (k Knob) flippedY() Knob {
	switch k {
	case KnobUpperLeft:
		return KnobLowerLeft
	case KnobUpperMiddle:
		return KnobLowerMiddle
	case KnobUpperRight:
		return KnobLowerRight
	case KnobLowerLeft:
		return KnobUpperLeft
	case KnobLowerMiddle:
		return KnobUpperMiddle
	case KnobLowerRight:
		return KnobUpperRight
	}
	return k
}

// flippedX 左右镜像
func (k Knob) flippedX() Knob {
	switch k {
	case KnobUpperLeft:
		return KnobUpperRight
	case KnobMiddleLeft:
		return KnobMiddleRight
	case KnobLowerLeft:
		return KnobLowerRight
	case KnobUpperRight:
		return KnobUpperLeft
	case KnobMiddleRight:
		return KnobMiddleLeft
	case KnobLowerRight:
		return KnobLowerLeft
	}
	return k
}
