package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures InitLogger.
type Options struct {
	Level      string // debug | info | warn | error
	File       string // empty disables the file sink
	MaxSizeMB  int
	MaxBackups int
	Console    bool
}

var (
	mu          sync.RWMutex
	sugar       *zap.SugaredLogger
	fileOnly    *zap.SugaredLogger
	fileWriter  *lumberjack.Logger
	initialized bool
)

func init() {
	sugar = newConsole(zapcore.InfoLevel).Sugar()
	fileOnly = zap.NewNop().Sugar()
}

func newConsole(level zapcore.Level) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

// InitLogger 初始化 console + 文件日志
func InitLogger(opts Options) error {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var cores []zapcore.Core
	var fileCore zapcore.Core
	var writer *lumberjack.Logger
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		writer = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		enc := zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		fileCore = zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(writer), level)
		cores = append(cores, fileCore)
	}
	if opts.Console {
		cores = append(cores, newConsole(level).Core())
	}

	mu.Lock()
	defer mu.Unlock()
	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = writer
	sugar = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	if fileCore != nil {
		fileOnly = zap.New(fileCore, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	} else {
		fileOnly = zap.NewNop().Sugar()
	}
	initialized = true
	return nil
}

// Close flushes and closes the file sink.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = sugar.Sync()
	if fileWriter != nil {
		_ = fileWriter.Close()
		fileWriter = nil
	}
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// InfoFileOnly writes to the log file without echoing to the console.
func InfoFileOnly(format string, v ...interface{}) {
	mu.RLock()
	l := fileOnly
	mu.RUnlock()
	l.Infof(format, v...)
}

func Info(format string, v ...interface{}) {
	current().Infof(format, v...)
}

func Debug(format string, v ...interface{}) {
	current().Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	current().Warnf(format, v...)
}

func Error(format string, v ...interface{}) {
	current().Errorf(format, v...)
}

// Initialized reports whether InitLogger has run.
func Initialized() bool {
	mu.RLock()
	defer mu.RUnlock()
	return initialized
}
