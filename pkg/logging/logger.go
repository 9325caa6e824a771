package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// core is the output state shared by a logger and every child made with
// With. Changing the level on any of them changes it for all.
type core struct {
	mu    sync.Mutex
	w     io.Writer
	level atomic.Int32
}

func newCore(w io.Writer, level Level) *core {
	if w == nil {
		w = os.Stderr
	}
	c := &core{w: w}
	c.level.Store(int32(level))
	return c
}

func (c *core) enabled(level Level) bool { return level >= Level(c.level.Load()) }
func (c *core) setLevel(level Level)     { c.level.Store(int32(level)) }
func (c *core) getLevel() Level          { return Level(c.level.Load()) }

func (c *core) write(line []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.w.Write(line)
}

// merge flattens preset and call-site fields. Call-site keys win.
func merge(preset, fields []Field) map[string]any {
	if len(preset)+len(fields) == 0 {
		return nil
	}
	m := make(map[string]any, len(preset)+len(fields))
	for _, f := range preset {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}

func extend(preset, fields []Field) []Field {
	out := make([]Field, 0, len(preset)+len(fields))
	out = append(out, preset...)
	return append(out, fields...)
}

// New creates a logger for the named format ("json" or "text"). Unknown
// formats fall back to JSON; a nil writer means stderr.
func New(format string, w io.Writer, level Level) Logger {
	if strings.EqualFold(format, "text") {
		return NewTextLogger(w, level)
	}
	return NewJSONLogger(w, level)
}

// JSONLogger writes one JSON object per line.
type JSONLogger struct {
	core   *core
	fields []Field
}

func NewJSONLogger(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{core: newCore(w, level)}
}

func (l *JSONLogger) log(level Level, msg string, fields []Field) {
	if !l.core.enabled(level) {
		return
	}
	entry := LogEntry{
		Time:    time.Now().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
		Fields:  merge(l.fields, fields),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		data = fmt.Appendf(nil, `{"level":"ERROR","msg":"unencodable log entry","error":%q}`, err.Error())
	}
	l.core.write(append(data, '\n'))
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *JSONLogger) With(fields ...Field) Logger {
	return &JSONLogger{core: l.core, fields: extend(l.fields, fields)}
}

func (l *JSONLogger) SetLevel(level Level) { l.core.setLevel(level) }
func (l *JSONLogger) GetLevel() Level      { return l.core.getLevel() }
