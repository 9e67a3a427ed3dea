// Package observability 配置进程级日志输出。
package observability

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup 设置标准库 log 的输出。path 为空时只写 stderr；
// 否则同时写入按大小滚动的日志文件（20MB，保留 5 个，14 天，压缩）。
func Setup(path string) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if path == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	roller := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, roller))
	return roller
}
