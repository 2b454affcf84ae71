package sketch

// Key 编辑用到的按键
type Key int

const (
	KeyNone Key = iota
	KeyBackspace
	KeyDelete
	KeyEnter
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyA
)

// Modifiers 修饰键
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModMeta
)

// ModShortcut 带有 Control 或 Meta 的组合键不产生文本
const ModShortcut = ModControl | ModMeta

// KeyEvent 键盘事件
type KeyEvent struct {
	Key  Key
	Mods Modifiers
}

func (e KeyEvent) Shift() bool   { return e.Mods&ModShift != 0 }
func (e KeyEvent) Control() bool { return e.Mods&ModControl != 0 }
func (e KeyEvent) Alt() bool     { return e.Mods&ModAlt != 0 }
