package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/viewer.log"

// maxLines bounds the in-memory history shown on screen.
const maxLines = 200

// Logger writes structured entries through zap (rotating JSON file + console) and keeps the
// most recent lines in memory so the HUD can draw them.
type Logger struct {
	mu    sync.Mutex
	lines []string
	z     *zap.SugaredLogger
	sink  io.Closer
}

// New returns a Logger writing JSON to path (LogFilePath when empty, rotated by lumberjack)
// and human-readable lines to stderr. The log directory is created if needed.
func New(path string) *Logger {
	if path == "" {
		path = LogFilePath
	}
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(sink),
		zap.InfoLevel,
	)
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleCfg),
		zapcore.Lock(os.Stderr),
		zap.InfoLevel,
	)
	return newLogger(zapcore.NewTee(fileCore, consoleCore), sink)
}

// NewWithCore returns a Logger on top of an existing zap core (tests use an observer core).
func NewWithCore(core zapcore.Core) *Logger {
	return newLogger(core, nil)
}

func newLogger(core zapcore.Core, sink io.Closer) *Logger {
	return &Logger{
		lines: make([]string, 0, maxLines),
		z:     zap.New(core).Sugar(),
		sink:  sink,
	}
}

// Log records a plain line at info level.
func (l *Logger) Log(line string) {
	l.z.Info(line)
	l.remember(line)
}

// Info records msg with key/value pairs at info level.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.z.Infow(msg, keysAndValues...)
	l.remember(msg + formatPairs(keysAndValues))
}

// Error records msg and err at error level.
func (l *Logger) Error(msg string, err error, keysAndValues ...interface{}) {
	l.z.Errorw(msg, append(keysAndValues, "error", err)...)
	l.remember(fmt.Sprintf("%s%s: %v", msg, formatPairs(keysAndValues), err))
}

// Lines returns a copy of the remembered lines, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Close flushes zap and closes the log file.
func (l *Logger) Close() error {
	err := l.z.Sync()
	if l.sink != nil {
		err = multierr.Append(err, l.sink.Close())
	}
	return err
}

func (l *Logger) remember(line string) {
	stamped := "[" + time.Now().Format("15:04:05") + "] " + line
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.lines) == maxLines {
		copy(l.lines, l.lines[1:])
		l.lines = l.lines[:maxLines-1]
	}
	l.lines = append(l.lines, stamped)
}

func formatPairs(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
