package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookledger/internal/infrastructure/config"
)

// New 根据配置创建zerolog Logger
// 设计说明：
// 1. console格式用于本地开发（带颜色、可读），json格式用于生产（便于日志采集）
// 2. 输出到文件时返回的closer负责关闭文件，stdout/stderr返回空操作
// 3. 不修改全局状态，由Install决定是否设为全局Logger
func New(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	out, closer, err := openOutput(cfg.Output)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var w io.Writer = out
	if cfg.Format != "json" {
		// 写文件时去掉颜色转义符
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: closer != nil}
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if cfg.EnableCaller {
		ctx = ctx.Caller()
	}

	if closer == nil {
		closer = nopCloser{}
	}
	return ctx.Logger(), closer, nil
}

// Install 设为全局Logger
// zerolog.Ctx(ctx)在ctx里没有Logger时回退到DefaultContextLogger，
// 所以后台任务（消息消费、启动日志）也能拿到同一个Logger
func Install(l zerolog.Logger) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
}

func parseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("无效的日志级别 %q: %w", s, err)
	}
	return level, nil
}

func openOutput(output string) (io.Writer, io.Closer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		return f, f, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
