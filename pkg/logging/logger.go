package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// EnvLevel and EnvFormat configure the default logger
const (
	EnvLevel  = "MVDECRYPT_LOG_LEVEL"
	EnvFormat = "MVDECRYPT_LOG_FORMAT"
)

// New creates a logger writing to w
func New(w io.Writer, level Level, format Format) *StructuredLogger {
	return &StructuredLogger{
		out:    &syncWriter{w: w},
		level:  &levelVar{level: level},
		format: format,
	}
}

// NewJSONLogger creates a JSON logger
func NewJSONLogger(w io.Writer, level Level) *StructuredLogger {
	return New(w, level, FormatJSON)
}

func (l *StructuredLogger) log(level Level, msg string, fields ...Field) {
	if level < l.level.get() {
		return
	}

	fieldMap := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		fieldMap[f.Key] = f.Value
	}
	for _, f := range fields {
		fieldMap[f.Key] = f.Value
	}

	now := time.Now().Format(time.RFC3339Nano)
	if l.format == FormatText {
		l.out.write([]byte(renderText(now, level, msg, fieldMap)))
		return
	}

	entry := LogEntry{
		Time:    now,
		Level:   level.String(),
		Message: msg,
	}
	if len(fieldMap) > 0 {
		entry.Fields = fieldMap
	}

	data, err := json.Marshal(entry)
	if err != nil {
		l.out.write([]byte(fmt.Sprintf("[ERROR] Failed to marshal log entry: %v\n", err)))
		return
	}
	l.out.write(append(data, '\n'))
}

// renderText produces "time LEVEL msg k=v k=v" with keys sorted
func renderText(now string, level Level, msg string, fields map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", now, level.String(), msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteByte('\n')
	return b.String()
}

func (l *StructuredLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *StructuredLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *StructuredLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *StructuredLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

// With creates a child logger sharing the writer and level
func (l *StructuredLogger) With(fields ...Field) Logger {
	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &StructuredLogger{
		out:    l.out,
		level:  l.level,
		format: l.format,
		fields: newFields,
	}
}

// SetLevel sets the minimum log level for this logger and its children
func (l *StructuredLogger) SetLevel(level Level) { l.level.set(level) }

// GetLevel returns the current log level
func (l *StructuredLogger) GetLevel() Level { return l.level.get() }

var (
	defaultMu     sync.Mutex
	defaultLogger Logger
)

// DefaultLogger returns the process logger. It writes to stderr so that
// stdout stays usable for command output such as recovered keys.
func DefaultLogger() Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(os.Stderr, ParseLevel(os.Getenv(EnvLevel)), ParseFormat(os.Getenv(EnvFormat)))
	}
	return defaultLogger
}

// SetDefaultLogger replaces the process logger
func SetDefaultLogger(logger Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// End logs the operation at debug level with its duration
func (t *TimedOperation) End(fields ...Field) {
	t.logger.Debug(t.msg, t.collect(fields, Latency(time.Since(t.start)))...)
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error, fields ...Field) {
	t.logger.Error(t.msg, t.collect(fields, Latency(time.Since(t.start)), Error(err))...)
}

// Elapsed returns the time since the timer started
func (t *TimedOperation) Elapsed() time.Duration {
	return time.Since(t.start)
}

func (t *TimedOperation) collect(extra []Field, tail ...Field) []Field {
	out := make([]Field, 0, len(t.fields)+len(extra)+len(tail))
	out = append(out, t.fields...)
	out = append(out, extra...)
	return append(out, tail...)
}
