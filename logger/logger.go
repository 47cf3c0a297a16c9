package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// filePrefix 로그 파일 이름 접두사
const filePrefix = "feed-admin"

var (
	levelNames = map[LogLevel]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}

	levelColors = map[LogLevel]string{
		DEBUG: "\033[36m", // Cyan
		INFO:  "\033[32m", // Green
		WARN:  "\033[33m", // Yellow
		ERROR: "\033[31m", // Red
		FATAL: "\033[35m", // Magenta
	}

	resetColor = "\033[0m"
)

// Logger writes leveled entries to stdout and an optional daily file.
type Logger struct {
	level      LogLevel
	console    io.Writer
	file       io.Writer
	mu         sync.Mutex
	useColor   bool
	prefix     string
	showCaller bool
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Config describes how the logger should be initialised.
type Config struct {
	Level      LogLevel
	LogDir     string
	MaxSize    int64 // bytes
	MaxAge     int   // days
	UseColor   bool
	ShowCaller bool
	Prefix     string
}

// ParseLevel 설정 문자열을 로그 레벨로 변환 (알 수 없으면 INFO)
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// Initialize boots the global logger instance if it has not been created yet.
func Initialize(config Config) error {
	var err error
	once.Do(func() {
		l := &Logger{
			level:      config.Level,
			console:    os.Stdout,
			useColor:   config.UseColor,
			prefix:     config.Prefix,
			showCaller: config.ShowCaller,
		}

		if config.LogDir != "" {
			if err = os.MkdirAll(config.LogDir, 0755); err != nil {
				return
			}

			logFile, fileErr := openLogFile(config.LogDir, time.Now())
			if fileErr != nil {
				err = fileErr
				return
			}
			l.file = logFile

			go l.rotate(config.LogDir, config.MaxSize, config.MaxAge)
		}
		defaultLogger = l
	})

	return err
}

// SetOutput 콘솔 출력 대상을 교체 (테스트용)
func SetOutput(w io.Writer, level LogLevel) {
	l := &Logger{level: level, console: w}
	defaultLogger = l
}

func logFileName(t time.Time) string {
	return fmt.Sprintf("%s-%s.log", filePrefix, t.Format("2006-01-02"))
}

func openLogFile(logDir string, t time.Time) (*os.File, error) {
	return os.OpenFile(filepath.Join(logDir, logFileName(t)), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// rotate switches to a new file when the day changes, archives oversize files
// and prunes files older than maxAge days.
func (l *Logger) rotate(logDir string, maxSize int64, maxAge int) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	current := logFileName(time.Now())
	for now := range ticker.C {
		files, _ := filepath.Glob(filepath.Join(logDir, filePrefix+"-*.log"))
		for _, file := range files {
			info, err := os.Stat(file)
			if err != nil {
				continue
			}
			if maxAge > 0 && now.Sub(info.ModTime()) > time.Duration(maxAge)*24*time.Hour {
				os.Remove(file)
				continue
			}
			if maxSize > 0 && info.Size() > maxSize && filepath.Base(file) == current {
				archived := strings.TrimSuffix(file, ".log") + fmt.Sprintf("-%d.log", now.Unix())
				os.Rename(file, archived)
				l.reopen(logDir, now)
			}
		}

		if name := logFileName(now); name != current {
			current = name
			l.reopen(logDir, now)
		}
	}
}

func (l *Logger) reopen(logDir string, now time.Time) {
	f, err := openLogFile(logDir, now)
	if err != nil {
		return
	}
	l.mu.Lock()
	if old, ok := l.file.(*os.File); ok {
		old.Close()
	}
	l.file = f
	l.mu.Unlock()
}

// log writes the formatted entry to the underlying writers.
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	levelName := levelNames[level]
	message := fmt.Sprintf(format, args...)

	caller := ""
	if l.showCaller {
		if _, file, line, ok := runtime.Caller(3); ok {
			caller = fmt.Sprintf(" [%s:%d]", filepath.Base(file), line)
		}
	}

	plain := fmt.Sprintf("%s%s [%s]%s %s\n", timestamp, caller, levelName, l.prefix, message)
	if l.console != nil {
		if l.useColor {
			fmt.Fprintf(l.console, "%s%s [%s]%s %s%s%s\n",
				timestamp, caller, levelName, l.prefix, levelColors[level], message, resetColor)
		} else {
			io.WriteString(l.console, plain)
		}
	}
	if l.file != nil {
		io.WriteString(l.file, plain)
	}

	if level == FATAL {
		os.Exit(1)
	}
}

// emit 기본 로거로 출력. 초기화 전에는 표준 log 로 대신 남긴다
func emit(level LogLevel, format string, args ...interface{}) {
	if l := defaultLogger; l != nil {
		l.log(level, format, args...)
		return
	}
	if level == DEBUG {
		return
	}
	log.Printf("["+levelNames[level]+"] "+format, args...)
	if level == FATAL {
		os.Exit(1)
	}
}

func Debug(format string, args ...interface{}) { emit(DEBUG, format, args...) }
func Info(format string, args ...interface{}) { emit(INFO, format, args...) }
func Warn(format string, args ...interface{}) { emit(WARN, format, args...) }
func Error(format string, args ...interface{}) { emit(ERROR, format, args...) }
func Fatal(format string, args ...interface{}) { emit(FATAL, format, args...) }

// WithFields attaches structured fields to the log entry.
func WithFields(fields map[string]interface{}) *LogEntry {
	return &LogEntry{
		fields: fields,
		logger: defaultLogger,
	}
}

// LogEntry represents a structured log entry builder.
type LogEntry struct {
	fields map[string]interface{}
	logger *Logger
}

func (e *LogEntry) Debug(format string, args ...interface{}) { e.log(DEBUG, format, args...) }
func (e *LogEntry) Info(format string, args ...interface{}) { e.log(INFO, format, args...) }
func (e *LogEntry) Warn(format string, args ...interface{}) { e.log(WARN, format, args...) }
func (e *LogEntry) Error(format string, args ...interface{}) { e.log(ERROR, format, args...) }

func (e *LogEntry) log(level LogLevel, format string, args ...interface{}) {
	if e.logger == nil || level < e.logger.level {
		return
	}

	message := fmt.Sprintf(format, args...)

	// 필드는 키 순서대로 붙여 로그 비교가 쉽도록 한다
	if len(e.fields) > 0 {
		keys := make([]string, 0, len(e.fields))
		for k := range e.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.fields[k]))
		}
		message = fmt.Sprintf("%s | %s", message, strings.Join(parts, ", "))
	}

	e.logger.log(level, "%s", message)
}

// Log allows emitting a message with an explicit level via the entry.
func (e *LogEntry) Log(level LogLevel, format string, args ...interface{}) {
	e.log(level, format, args...)
}

// SetLevel updates the global logging level.
func SetLevel(level LogLevel) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.level = level
		defaultLogger.mu.Unlock()
	}
}

// GetLevel returns the current global logging level.
func GetLevel() LogLevel {
	if defaultLogger != nil {
		return defaultLogger.level
	}
	return INFO
}
