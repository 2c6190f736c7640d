package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 滚动日志文件配置，零值使用默认值
type Options struct {
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func (o Options) filePath() (string, error) {
	dir := strings.TrimSpace(o.Dir)
	if dir == "" {
		workDir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir failed: %w", err)
		}
		dir = filepath.Join(workDir, "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir failed: %w", err)
	}

	filename := strings.TrimSpace(o.Filename)
	if filename == "" {
		filename = "bookvine.log"
	}
	path := filepath.Join(dir, filename)

	// 提前探测可写性，启动时报错比首条日志时报错好排查
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file failed: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close log file failed: %w", err)
	}
	return path, nil
}

func (o Options) rollingWriter() (zapcore.WriteSyncer, error) {
	path, err := o.filePath()
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    orDefault(o.MaxSizeMB, 100),
		MaxBackups: orDefault(o.MaxBackups, 7),
		MaxAge:     orDefault(o.MaxAgeDays, 30),
		Compress:   o.Compress,
	}), nil
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

// L 全局结构化日志实例
var L *zap.Logger

var (
	bootOnce sync.Once
	bootLog  *zap.Logger
)

// Init 初始化全局日志。debug 模式写控制台到 stdout，
// 其它模式写 JSON 到滚动文件。
func Init(mode string, options Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")

	var sink zapcore.WriteSyncer = zapcore.AddSync(os.Stdout)
	var encoder zapcore.Encoder = zapcore.NewConsoleEncoder(encoderConfig())
	level := zap.DebugLevel

	if !debug {
		level = zap.InfoLevel
		encoder = zapcore.NewJSONEncoder(encoderConfig())
		writer, err := options.rollingWriter()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger init failed, fallback to stdout: %v\n", err)
		} else {
			sink = writer
		}
	}

	L = zap.New(
		zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(level)),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	)
	zap.ReplaceGlobals(L)
	return L
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

// Z 返回可用的日志实例。Init 之前调用会拿到控制台兜底实例。
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	bootOnce.Do(func() {
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.AddSync(os.Stdout),
			zap.NewAtomicLevelAt(zap.InfoLevel),
		)
		bootLog = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	})
	return bootLog
}

// S 返回 SugaredLogger
func S() *zap.SugaredLogger {
	return Z().Sugar()
}

// SW 返回带上下文字段的 SugaredLogger
func SW(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return S()
	}
	return S().With(kv...)
}

// StdLogger 返回兼容标准库 log 的 logger
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

func Debugw(message string, kv ...interface{}) { S().Debugw(message, kv...) }
func Infow(message string, kv ...interface{})  { S().Infow(message, kv...) }
func Warnw(message string, kv ...interface{})  { S().Warnw(message, kv...) }
func Errorw(message string, kv ...interface{}) { S().Errorw(message, kv...) }
