// Package logging 基于 zerolog 的日志构建
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const filePermission = 0o664

// Builder 日志构建器
//
//	logging.New().Level("debug").Format("text").FromPath("logs/app.log").Make()
type Builder struct {
	writer io.Writer
	path   string
	level  string
	format string
	fields map[string]string
}

// Logger 构建结果，使用文件输出时需要 Close
type Logger struct {
	zerolog.Logger
	file *os.File
}

func New() *Builder {
	return &Builder{fields: map[string]string{}}
}

// FromPath 输出到文件（追加）
func (b *Builder) FromPath(path string) *Builder {
	b.path = path
	return b
}

// FromBuffer 输出到指定 writer，主要给测试用
func (b *Builder) FromBuffer(w io.Writer) *Builder {
	b.writer = w
	return b
}

func (b *Builder) Level(level string) *Builder {
	b.level = level
	return b
}

// Format json 或 text
func (b *Builder) Format(format string) *Builder {
	b.format = format
	return b
}

// With 附加固定字段，如 service
func (b *Builder) With(key, value string) *Builder {
	b.fields[key] = value
	return b
}

func (b *Builder) Make() (*Logger, error) {
	out := &Logger{}

	var w io.Writer = os.Stdout
	if b.writer != nil {
		w = b.writer
	}
	if b.path != "" {
		if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermission)
		if err != nil {
			return nil, err
		}
		out.file = f
		w = zerolog.SyncWriter(f)
	}
	if strings.EqualFold(b.format, "text") {
		w = zerolog.ConsoleWriter{Out: w, NoColor: b.path != ""}
	}

	ctx := zerolog.New(w).Level(ParseLevel(b.level)).With().Timestamp()
	for key, value := range b.fields {
		ctx = ctx.Str(key, value)
	}
	out.Logger = ctx.Logger()
	return out, nil
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// SetGlobal 设为 zerolog 全局 logger，供没有注入 logger 的包使用
func (l *Logger) SetGlobal() {
	log.Logger = l.Logger
}

// Component 带 component 字段的子 logger
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// ParseLevel 无法识别时返回 info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
