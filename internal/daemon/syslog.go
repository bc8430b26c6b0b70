package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"log/syslog"
	"strings"
)

// syslogWriter is the subset of *syslog.Writer the handler needs.
type syslogWriter interface {
	Debug(m string) error
	Info(m string) error
	Warning(m string) error
	Err(m string) error
}

// SyslogHandler is a slog.Handler that forwards records to the system
// log. Attributes are appended to the message as key=value pairs since
// syslog carries no structured payload of its own.
type SyslogHandler struct {
	writer syslogWriter
	level  slog.Level

	// Attrs from WithAttrs, keys already qualified by the groups
	// that were open when they were added.
	attrs  []slog.Attr
	groups []string
}

// NewSyslogHandler connects to the local syslog daemon under tag.
func NewSyslogHandler(tag string, level slog.Level) (*SyslogHandler, error) {
	writer, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to syslog: %w", err)
	}
	return &SyslogHandler{writer: writer, level: level}, nil
}

func (h *SyslogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *SyslogHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)
	for _, attr := range h.attrs {
		writeAttr(&sb, attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&sb, h.qualify(attr.Key), attr.Value)
		return true
	})

	msg := sb.String()
	switch {
	case record.Level >= slog.LevelError:
		return h.writer.Err(msg)
	case record.Level >= slog.LevelWarn:
		return h.writer.Warning(msg)
	case record.Level >= slog.LevelInfo:
		return h.writer.Info(msg)
	default:
		return h.writer.Debug(msg)
	}
}

func (h *SyslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, attr := range attrs {
		attr.Key = h.qualify(attr.Key)
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

func (h *SyslogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *SyslogHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

func writeAttr(sb *strings.Builder, key string, value slog.Value) {
	sb.WriteByte(' ')
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(value.String())
}
