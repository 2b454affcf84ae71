package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
)

// LogLevel 日志级别
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelNone
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "NONE"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel 解析配置文件中的级别名称
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn", "warning", "":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none", "off":
		return LogLevelNone, nil
	}
	return LogLevelWarn, fmt.Errorf("unknown log level %q", name)
}

// Component 产生日志的子系统，输出时作为 [scene] 这样的标签
type Component string

const (
	Scene  Component = "scene"
	Undo   Component = "undo"
	Sketch Component = "sketch"
	Canvas Component = "canvas"
	Render Component = "render"
	PDF    Component = "pdf"
	File   Component = "file"
)

// Components 所有已知的子系统
var Components = []Component{Scene, Undo, Sketch, Canvas, Render, PDF, File}

// ParseComponent 解析子系统名称
func ParseComponent(name string) (Component, error) {
	c := Component(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Components {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown log component %q", name)
}

// Logger 分级日志记录器。每个子系统可以单独设置级别，
// 并统计警告次数，测试用它确认容器越界之类的问题被报告过
type Logger struct {
	mu       sync.RWMutex
	level    LogLevel
	levels   map[Component]LogLevel
	prefix   string
	logger   *log.Logger
	enabled  bool
	warnings map[Component]int
}

var (
	defaultLogger *Logger
	loggerOnce    sync.Once
)

// GetLogger 获取默认日志记录器（单例）
func GetLogger() *Logger {
	loggerOnce.Do(func() {
		defaultLogger = NewLogger(LogLevelWarn, os.Stderr, "[pdfsketch] ")
	})
	return defaultLogger
}

// NewLogger 创建新的日志记录器
func NewLogger(level LogLevel, output io.Writer, prefix string) *Logger {
	return &Logger{
		level:    level,
		levels:   make(map[Component]LogLevel),
		prefix:   prefix,
		logger:   log.New(output, prefix, log.LstdFlags),
		enabled:  true,
		warnings: make(map[Component]int),
	}
}

// SetLevel 设置默认级别
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetComponentLevel 覆盖某个子系统的级别
func (l *Logger) SetComponentLevel(c Component, level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.levels[c] = level
}

// ClearComponentLevels 去掉所有子系统级别覆盖
func (l *Logger) ClearComponentLevels() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.levels = make(map[Component]LogLevel)
}

// Level 子系统的有效级别
func (l *Logger) Level(c Component) LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.levelLocked(c)
}

func (l *Logger) levelLocked(c Component) LogLevel {
	if lvl, ok := l.levels[c]; ok {
		return lvl
	}
	return l.level
}

// SetOutput 切换输出目标
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = log.New(w, l.prefix, log.LstdFlags)
}

// SetEnabled 启用或禁用日志
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// Warnings 子系统累计的警告数（包括被级别过滤掉的）
func (l *Logger) Warnings(c Component) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.warnings[c]
}

// Summary 按子系统列出警告数，例如 "canvas=2 scene=1"
func (l *Logger) Summary() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	parts := make([]string, 0, len(l.warnings))
	for c, n := range l.warnings {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", c, n))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// For 返回带子系统标签的记录器
func (l *Logger) For(c Component) *ComponentLogger {
	return &ComponentLogger{logger: l, component: c}
}

func (l *Logger) Debug(format string, v ...interface{}) { l.log("", LogLevelDebug, format, v...) }
func (l *Logger) Info(format string, v ...interface{})  { l.log("", LogLevelInfo, format, v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.log("", LogLevelWarn, format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.log("", LogLevelError, format, v...) }

func (l *Logger) log(c Component, level LogLevel, format string, v ...interface{}) {
	if level >= LogLevelWarn {
		l.mu.Lock()
		l.warnings[c]++
		l.mu.Unlock()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.enabled || level < l.levelLocked(c) {
		return
	}
	msg := fmt.Sprintf(format, v...)
	if c == "" {
		l.logger.Printf("[%s] %s", level, msg)
		return
	}
	l.logger.Printf("[%s] [%s] %s", level, c, msg)
}

// ComponentLogger 某个子系统的记录器
type ComponentLogger struct {
	logger    *Logger
	component Component
}

func (c *ComponentLogger) Debug(format string, v ...interface{}) {
	c.logger.log(c.component, LogLevelDebug, format, v...)
}

func (c *ComponentLogger) Info(format string, v ...interface{}) {
	c.logger.log(c.component, LogLevelInfo, format, v...)
}

func (c *ComponentLogger) Warn(format string, v ...interface{}) {
	c.logger.log(c.component, LogLevelWarn, format, v...)
}

func (c *ComponentLogger) Error(format string, v ...interface{}) {
	c.logger.log(c.component, LogLevelError, format, v...)
}

// Containment 记录对不在容器中的元素的操作。
// 这类调用属于调用方的错误，操作本身已被忽略
func (c *ComponentLogger) Containment(op, what string, err error) {
	c.logger.log(c.component, LogLevelWarn, "%s: %s not in %s: %v", op, what, c.component, err)
}

// 全局便捷函数
func Debug(format string, v ...interface{}) {
	GetLogger().Debug(format, v...)
}

func Info(format string, v ...interface{}) {
	GetLogger().Info(format, v...)
}

func Warn(format string, v ...interface{}) {
	GetLogger().Warn(format, v...)
}

func LogError(format string, v ...interface{}) {
	GetLogger().Error(format, v...)
}

// For 默认记录器上的子系统记录器
func For(c Component) *ComponentLogger {
	return GetLogger().For(c)
}

// SetLogLevel 设置全局日志级别
func SetLogLevel(level LogLevel) {
	GetLogger().SetLevel(level)
}

// SetComponentLevel 设置全局记录器中某个子系统的级别
func SetComponentLevel(c Component, level LogLevel) {
	GetLogger().SetComponentLevel(c, level)
}

// EnableLogging 启用或禁用全局日志
func EnableLogging(enabled bool) {
	GetLogger().SetEnabled(enabled)
}
