package internal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	SUCCESS
)

var levelNames = map[LogLevel]string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARNING",
	ERROR:   "ERROR",
	SUCCESS: "SUCCESS",
}

// Logger is a minimal leveled logger writing timestamped lines to a single
// writer. Construct with NewLogger; the zero value has no writer.
type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	writer io.Writer
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func NewLogger(out io.Writer, level LogLevel) *Logger {
	return &Logger{
		level:  level,
		writer: out,
	}
}

func InitDefaultLogger(level LogLevel) {
	once.Do(func() {
		defaultLogger = NewLogger(os.Stdout, level)
	})
}

func GetDefaultLogger() *Logger {
	if defaultLogger == nil {
		InitDefaultLogger(INFO)
	}
	return defaultLogger
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) log(level LogLevel, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	msg := fmt.Sprintf(format, v...)
	line := fmt.Sprintf("%s [%s] %s\n", time.Now().Format(time.DateTime), levelNames[level], msg)
	_, _ = l.writer.Write([]byte(line))
}

func (l *Logger) Debug(format string, v ...any)   { l.log(DEBUG, format, v...) }
func (l *Logger) Info(format string, v ...any)    { l.log(INFO, format, v...) }
func (l *Logger) Warning(format string, v ...any) { l.log(WARNING, format, v...) }
func (l *Logger) Error(format string, v ...any)   { l.log(ERROR, format, v...) }
func (l *Logger) Success(format string, v ...any) { l.log(SUCCESS, format, v...) }

func DebugLog(format string, v ...any) {
	GetDefaultLogger().Debug(format, v...)
}

func InfoLog(format string, v ...any) {
	GetDefaultLogger().Info(format, v...)
}

func WarningLog(format string, v ...any) {
	GetDefaultLogger().Warning(format, v...)
}

func ErrorLog(format string, v ...any) {
	GetDefaultLogger().Error(format, v...)
}

func SuccessLog(format string, v ...any) {
	GetDefaultLogger().Success(format, v...)
}
