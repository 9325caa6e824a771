package logging

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// TextLogger writes single-line key=value output, for interactive use
// where JSON is hard to read.
type TextLogger struct {
	core   *core
	fields []Field
}

func NewTextLogger(w io.Writer, level Level) *TextLogger {
	return &TextLogger{core: newCore(w, level)}
}

func (l *TextLogger) log(level Level, msg string, fields []Field) {
	if !l.core.enabled(level) {
		return
	}
	all := merge(l.fields, fields)
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(time.Now().Format(time.TimeOnly))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, all[k])
	}
	b.WriteByte('\n')
	l.core.write([]byte(b.String()))
}

func (l *TextLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *TextLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *TextLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *TextLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *TextLogger) With(fields ...Field) Logger {
	return &TextLogger{core: l.core, fields: extend(l.fields, fields)}
}

func (l *TextLogger) SetLevel(level Level) { l.core.setLevel(level) }
func (l *TextLogger) GetLevel() Level      { return l.core.getLevel() }
