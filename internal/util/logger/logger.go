// Package logger 提供 zeroeq 的统一日志系统
//
// 基于标准库 log/slog，支持：
//   - 按子系统配置日志级别
//   - 环境变量配置（ZEROEQ_LOG_LEVEL, ZEROEQ_LOG_FORMAT）
//   - 结构化日志
//
// 使用示例:
//
//	var log = logger.Logger("core/poller")
//
//	func foo() {
//	    log.Debug("分发就绪套接字", "ready", len(ready))
//	}
//
// 环境变量配置:
//
//	# 所有模块为 info，poller 模块为 debug
//	ZEROEQ_LOG_LEVEL=core/poller=debug,info
//
//	# 使用 JSON 格式输出
//	ZEROEQ_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// levels 各子系统共享的级别变量（用于动态调整级别）
	levels sync.Map // map[string]*slog.LevelVar
)

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用返回相同实例，级别来自 ZEROEQ_LOG_LEVEL。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	lv := levelVar(subsystem, cfg.LevelForSubsystem(subsystem))
	l := slog.New(newHandler(subsystem, lv, cfg))

	actual, _ := loggers.LoadOrStore(subsystem, l)
	return actual.(*slog.Logger)
}

// levelVar 获取或创建子系统的级别变量
func levelVar(subsystem string, initial slog.Level) *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(initial)
	actual, _ := levels.LoadOrStore(subsystem, lv)
	return actual.(*slog.LevelVar)
}

// SetLevel 动态设置子系统的日志级别
func SetLevel(subsystem string, level slog.Level) {
	levelVar(subsystem, level).Set(level)
}

// SetGlobalLevel 设置所有已创建子系统的日志级别
func SetGlobalLevel(level slog.Level) {
	levels.Range(func(_, value any) bool {
		value.(*slog.LevelVar).Set(level)
		return true
	})
}

// Discard 返回一个丢弃所有日志的 Logger（用于测试）
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

// With 创建带有预设属性的 Logger
func With(subsystem string, args ...any) *slog.Logger {
	return Logger(subsystem).With(args...)
}

// SetOutput 设置全局日志输出目标
//
// 已创建的 Logger 同样生效。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
