package sketch

import (
	"fmt"
	"strings"
)

// Tool 工具箱中的工具
type Tool int

const (
	ToolArrow Tool = iota
	ToolText
	ToolCircle
	ToolRectangle
	ToolSquiggle
	ToolCheckmark
)

var toolNames = []string{"Arrow", "Text", "Circle", "Rectangle", "Squiggle", "Checkmark"}

func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool 按名称查找工具，不区分大小写
func ParseTool(name string) (Tool, error) {
	for i, n := range toolNames {
		if strings.EqualFold(n, name) {
			return Tool(i), nil
		}
	}
	return ToolArrow, fmt.Errorf("unknown tool %q", name)
}

// Tools 全部工具，按工具箱顺序
func Tools() []Tool {
	out := make([]Tool, len(toolNames))
	for i := range out {
		out[i] = Tool(i)
	}
	return out
}

// NewForTool 创建工具对应的新注释；Arrow 返回 nil
func NewForTool(tool Tool) Annotation {
	switch tool {
	case ToolText:
		return NewTextArea()
	case ToolCircle:
		return NewCircle()
	case ToolRectangle:
		return NewRectangle()
	case ToolSquiggle:
		return NewSquiggle()
	case ToolCheckmark:
		return NewCheckmark()
	}
	return nil
}

var (
	_ Annotation = (*Rectangle)(nil)
	_ Annotation = (*Circle)(nil)
	_ Annotation = (*Checkmark)(nil)
	_ Annotation = (*Squiggle)(nil)
	_ Annotation = (*TextArea)(nil)
	_ Annotation = (*Image)(nil)
)
