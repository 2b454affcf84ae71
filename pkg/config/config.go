package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/novvoo/go-pdfsketch/pkg/canvas"
	"github.com/novvoo/go-pdfsketch/pkg/logging"
	"github.com/novvoo/go-pdfsketch/pkg/sketch"
	"github.com/novvoo/go-pdfsketch/pkg/undo"
)

// Config 编辑器配置，对应 YAML 文件
type Config struct {
	Canvas CanvasConfig `yaml:"canvas"`
	Style  StyleConfig  `yaml:"style"`
	Text   TextConfig   `yaml:"text"`
	Render RenderConfig `yaml:"render"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// CanvasConfig 画布行为
type CanvasConfig struct {
	UndoLimit int     `yaml:"undo_limit"`
	Zoom      float64 `yaml:"zoom"`
	Spacing   float64 `yaml:"spacing"`
	Constrain string  `yaml:"constrain"` // natural | shift | always
}

// StyleConfig 新建注释的默认样式
type StyleConfig struct {
	Fill      string  `yaml:"fill"`
	Stroke    string  `yaml:"stroke"`
	LineWidth float64 `yaml:"line_width"`
}

// TextConfig 文本框字体
type TextConfig struct {
	Family string  `yaml:"family"`
	Size   float64 `yaml:"size"`
}

// RenderConfig 导出渲染
type RenderConfig struct {
	DPI     float64 `yaml:"dpi"`
	Workers int     `yaml:"workers"`
}

// CacheConfig 图片 surface 缓存
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
}

// LogConfig 日志
type LogConfig struct {
	Level      string            `yaml:"level"`
	Debug      bool              `yaml:"debug"`
	Components map[string]string `yaml:"components,omitempty"` // 子系统 -> 级别，例如 undo: debug
}

// Default 返回默认配置
func Default() *Config {
	style := sketch.DefaultStyle()
	font := sketch.DefaultTextFont()
	return &Config{
		Canvas: CanvasConfig{
			UndoLimit: undo.DefaultLimit,
			Zoom:      1,
			Spacing:   canvas.DefaultSpacing,
			Constrain: canvas.ConstrainNatural.String(),
		},
		Style: StyleConfig{
			Fill:      style.Fill.Hex(),
			Stroke:    style.Stroke.Hex(),
			LineWidth: style.LineWidth,
		},
		Text:   TextConfig{Family: font.Family, Size: font.Size},
		Render: RenderConfig{DPI: 150, Workers: 4},
		Cache:  CacheConfig{MaxEntries: 256, TTL: 5 * time.Minute},
		Log:    LogConfig{Level: "warn"},
	}
}

// Load 读取 YAML 配置文件，未出现的字段保留默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse 解析 YAML 数据并校验
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal 编码为 YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	if c.Canvas.UndoLimit < 0 {
		return fmt.Errorf("canvas.undo_limit must be >= 0, got %d", c.Canvas.UndoLimit)
	}
	if c.Canvas.Zoom <= 0 {
		return fmt.Errorf("canvas.zoom must be > 0, got %g", c.Canvas.Zoom)
	}
	if c.Canvas.Spacing < 0 {
		return fmt.Errorf("canvas.spacing must be >= 0, got %g", c.Canvas.Spacing)
	}
	if _, err := canvas.ParseConstrainPolicy(c.Canvas.Constrain); err != nil {
		return fmt.Errorf("canvas.constrain: %w", err)
	}
	if _, err := c.style(); err != nil {
		return err
	}
	if c.Text.Size < 0 {
		return fmt.Errorf("text.size must be >= 0, got %g", c.Text.Size)
	}
	if c.Render.DPI <= 0 {
		return fmt.Errorf("render.dpi must be > 0, got %g", c.Render.DPI)
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("render.workers must be >= 0, got %d", c.Render.Workers)
	}
	if c.Cache.MaxEntries < 0 || c.Cache.TTL < 0 {
		return fmt.Errorf("cache limits must be >= 0")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := c.componentLevels(); err != nil {
		return err
	}
	return nil
}

func (c *Config) componentLevels() (map[logging.Component]logging.LogLevel, error) {
	levels := make(map[logging.Component]logging.LogLevel, len(c.Log.Components))
	for name, lvl := range c.Log.Components {
		comp, err := logging.ParseComponent(name)
		if err != nil {
			return nil, fmt.Errorf("log.components: %w", err)
		}
		level, err := logging.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("log.components.%s: %w", name, err)
		}
		levels[comp] = level
	}
	return levels, nil
}

func (c *Config) style() (sketch.Style, error) {
	fill, err := sketch.ParseHex(c.Style.Fill)
	if err != nil {
		return sketch.Style{}, fmt.Errorf("style.fill: %w", err)
	}
	stroke, err := sketch.ParseHex(c.Style.Stroke)
	if err != nil {
		return sketch.Style{}, fmt.Errorf("style.stroke: %w", err)
	}
	if c.Style.LineWidth <= 0 {
		return sketch.Style{}, fmt.Errorf("style.line_width must be > 0, got %g", c.Style.LineWidth)
	}
	return sketch.Style{Fill: fill, Stroke: stroke, LineWidth: c.Style.LineWidth}, nil
}

// CanvasOptions 转换为画布选项
func (c *Config) CanvasOptions() canvas.Options {
	policy, _ := canvas.ParseConstrainPolicy(c.Canvas.Constrain)
	return canvas.Options{
		UndoLimit: c.Canvas.UndoLimit,
		Zoom:      c.Canvas.Zoom,
		Spacing:   c.Canvas.Spacing,
		Constrain: policy,
	}
}

// RenderOptions 转换为导出渲染选项
func (c *Config) RenderOptions() canvas.RenderOptions {
	return canvas.RenderOptions{DPI: c.Render.DPI}
}

// Apply 安装全局设置：默认样式、字体、日志级别和图片缓存
func (c *Config) Apply() error {
	if err := c.Validate(); err != nil {
		return err
	}
	style, _ := c.style()
	sketch.SetDefaultStyle(style)
	sketch.SetDefaultTextFont(sketch.TextFont{Family: c.Text.Family, Size: c.Text.Size})

	level, _ := logging.ParseLevel(c.Log.Level)
	logging.SetLogLevel(level)
	components, _ := c.componentLevels()
	logging.GetLogger().ClearComponentLevels()
	for comp, lvl := range components {
		logging.SetComponentLevel(comp, lvl)
	}
	if c.Log.Debug {
		logging.EnableDebug()
	} else {
		logging.DisableDebug()
	}

	if c.Cache.MaxEntries > 0 {
		sketch.SetDefaultSurfaceCache(sketch.NewSurfaceCache(c.Cache.MaxEntries, c.Cache.TTL))
	}
	logging.Debug("config applied: undo limit %d, zoom %g, constrain %s",
		c.Canvas.UndoLimit, c.Canvas.Zoom, c.Canvas.Constrain)
	return nil
}
