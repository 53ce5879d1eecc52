// Package logging 构造进程内统一使用的 *slog.Logger。
//
// 输出由 charmbracelet/log 负责（终端友好的文本或 JSON），调用方只依赖 slog。
// 解析引擎本身从不记录日志；只有 CLI 与批处理会用到这里。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// 结构化日志的固定键名。
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldPage      = "page"
	FieldParser    = "parser"
	FieldField     = "field"
	FieldStage     = "stage"
	FieldStatus    = "status"
)

// Options 描述 logger 的构造参数。
type Options struct {
	Level string // debug / info / warn / error / fatal；空串视为 info
	JSON  bool
	// Timestamps 为 false 时不输出时间（测试与管道场景更稳定）。
	Timestamps bool
}

// New 返回写入 w 的 logger。
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	l := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: opts.Timestamps,
		TimeFormat:      time.TimeOnly,
	})
	if opts.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return slog.New(l), nil
}

// NewNop 返回丢弃一切输出的 logger。
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseLevel(s string) (charmlog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return charmlog.InfoLevel, nil
	}
	lvl, err := charmlog.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("log level: unsupported value %q", s)
	}
	return lvl, nil
}

// ValidLevel 报告 s 是否是可接受的日志级别（用于配置校验）。
func ValidLevel(s string) bool {
	_, err := parseLevel(s)
	return err == nil
}
