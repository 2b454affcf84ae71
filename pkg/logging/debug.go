package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// 调试跟踪输出，与分级日志分开：手势、重绘这类高频事件只走这里
var (
	debugMu      sync.Mutex
	debugOutput  io.Writer = os.Stdout
	debugEnabled           = false
)

// SetDebugOutput 设置调试输出目标并启用调试
func SetDebugOutput(w io.Writer) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugOutput = w
	debugEnabled = true
}

// EnableDebug 启用调试输出
func EnableDebug() {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugEnabled = true
}

// DisableDebug 禁用调试输出
func DisableDebug() {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugEnabled = false
}

// Debugf 调试输出函数
func Debugf(format string, args ...interface{}) {
	debugMu.Lock()
	defer debugMu.Unlock()
	if debugEnabled && debugOutput != nil {
		fmt.Fprintf(debugOutput, format, args...)
	}
}

// Debugln 调试输出函数（带换行）
func Debugln(args ...interface{}) {
	debugMu.Lock()
	defer debugMu.Unlock()
	if debugEnabled && debugOutput != nil {
		fmt.Fprintln(debugOutput, args...)
	}
}
