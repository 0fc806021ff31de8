package log

import (
	"context"
	"fmt"
	stdlog "log"
	"strings"

	"github.com/LerianStudio/lib-debugassert/debugassert/security"
)

// GoLogger writes through the standard library logger.
//
// Messages and string field values are escaped with EscapeControlChars, so a
// multi-line assertion report becomes a single log line. Values of fields
// whose key looks like a secret are replaced with security.RedactedValue.
type GoLogger struct {
	Level  Level
	fields []Field
	groups []string
}

// Compile-time assertion: *GoLogger implements Logger.
var _ Logger = (*GoLogger)(nil)

// Log emits msg when level is enabled.
func (l *GoLogger) Log(_ context.Context, level Level, msg string, fields ...Field) {
	if !l.Enabled(level) {
		return
	}

	stdlog.Print(l.render(level, msg, fields))
}

// With returns a child logger carrying fields on every entry.
//
//nolint:ireturn
func (l *GoLogger) With(fields ...Field) Logger {
	if l == nil {
		return &GoLogger{}
	}

	child := l.clone()
	for _, f := range fields {
		child.fields = append(child.fields, l.qualify(f))
	}

	return child
}

// WithGroup returns a child logger that prefixes subsequent field keys with name.
//
//nolint:ireturn
func (l *GoLogger) WithGroup(name string) Logger {
	if l == nil {
		return &GoLogger{}
	}

	child := l.clone()
	if name != "" {
		child.groups = append(child.groups, name)
	}

	return child
}

// Enabled reports whether level is within the logger's verbosity ceiling.
func (l *GoLogger) Enabled(level Level) bool {
	if l == nil {
		return false
	}

	return l.Level >= level
}

// Sync is a no-op; the standard logger does not buffer.
func (l *GoLogger) Sync(_ context.Context) error { return nil }

func (l *GoLogger) clone() *GoLogger {
	child := &GoLogger{
		Level:  l.Level,
		fields: make([]Field, len(l.fields)),
		groups: make([]string, len(l.groups)),
	}

	copy(child.fields, l.fields)
	copy(child.groups, l.groups)

	return child
}

func (l *GoLogger) qualify(f Field) Field {
	if len(l.groups) == 0 {
		return f
	}

	return Field{Key: strings.Join(l.groups, ".") + "." + f.Key, Value: f.Value}
}

func (l *GoLogger) render(level Level, msg string, fields []Field) string {
	var sb strings.Builder

	sb.WriteString("[")
	sb.WriteString(level.String())
	sb.WriteString("] ")
	sb.WriteString(EscapeControlChars(msg))

	for _, f := range l.fields {
		writeField(&sb, f)
	}

	for _, f := range fields {
		writeField(&sb, l.qualify(f))
	}

	return sb.String()
}

func writeField(sb *strings.Builder, f Field) {
	sb.WriteString(" ")
	sb.WriteString(f.Key)
	sb.WriteString("=")

	switch v := security.Redact(f.Key, f.Value).(type) {
	case string:
		sb.WriteString(EscapeControlChars(v))
	case error:
		sb.WriteString(EscapeControlChars(v.Error()))
	default:
		sb.WriteString(EscapeControlChars(fmt.Sprintf("%v", v)))
	}
}
