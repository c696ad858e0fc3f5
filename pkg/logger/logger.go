package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log 是全局的 logrus 实例，InitLogger 之前也可以直接使用（输出到标准错误，测试里就是这样）
var Log = logrus.New()

// InitLogger 初始化全局的Logger实例
// logFile 为空时只输出到控制台；level 解析失败时回退到 info
func InitLogger(logFile, level string) error {
	Log = logrus.New()

	// 日志格式为JSON，方便后续用ELK、Loki等工具分析
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// 同时输出到文件和控制台
	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		out = io.MultiWriter(os.Stdout, file)
	}
	Log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	return nil
}
