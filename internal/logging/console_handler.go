package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// runIDPrefixLen keeps console lines short; the JSON format has the full id.
const runIDPrefixLen = 8

// consoleHandler writes one line per record:
//
//	2026-01-02T15:04:05Z WARN  #1a2b3c4d regen media 7/thumb: message key=value hint="..."
//
// The run id, component, media id and conversion move into the line prefix.
// event_type is dropped and error_hint is printed last.
type consoleHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, writer: w, level: lvl}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// consoleSubject holds the attributes promoted into the line prefix.
type consoleSubject struct {
	runID      string
	component  string
	mediaID    string
	conversion string
	hint       string
}

func (s *consoleSubject) take(f field) bool {
	var slot *string
	switch f.key {
	case FieldRunID:
		slot = &s.runID
	case FieldComponent:
		slot = &s.component
	case FieldMediaID:
		slot = &s.mediaID
	case FieldConversion:
		slot = &s.conversion
	case FieldErrorHint:
		slot = &s.hint
	case FieldEventType:
		return true
	default:
		return false
	}
	if *slot == "" {
		*slot = plainString(f.value)
	}
	return true
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	fields := make([]field, 0, record.NumAttrs()+len(h.attrs))
	appendFields(&fields, h.groups, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		appendFields(&fields, h.groups, attr)
		return true
	})

	var subject consoleSubject
	rest := fields[:0]
	for _, f := range fields {
		if !subject.take(f) {
			rest = append(rest, f)
		}
	}

	var buf bytes.Buffer
	buf.Grow(96 + len(rest)*24)
	buf.WriteString(ts.UTC().Format(time.RFC3339))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	if subject.runID != "" {
		id := subject.runID
		if len(id) > runIDPrefixLen {
			id = id[:runIDPrefixLen]
		}
		buf.WriteString(" #")
		buf.WriteString(id)
	}
	if subject.component != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject.component)
	}
	if subject.mediaID != "" {
		buf.WriteString(" media ")
		buf.WriteString(subject.mediaID)
		if subject.conversion != "" {
			buf.WriteByte('/')
			buf.WriteString(subject.conversion)
		}
	} else if subject.conversion != "" {
		buf.WriteString(" conversion ")
		buf.WriteString(subject.conversion)
	}
	if subject.runID != "" || subject.component != "" || subject.mediaID != "" || subject.conversion != "" {
		buf.WriteString(": ")
	} else {
		buf.WriteByte(' ')
	}

	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf.WriteString(msg)

	for _, f := range rest {
		if f.key == "" {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(quoteIfNeeded(plainString(f.value)))
	}
	if subject.hint != "" {
		buf.WriteString(" hint=")
		buf.WriteString(strconv.Quote(subject.hint))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

type field struct {
	key   string
	value slog.Value
}

// appendFields flattens groups into dotted keys.
func appendFields(dst *[]field, prefix []string, attrs ...slog.Attr) {
	for _, attr := range attrs {
		if attr.Equal(slog.Attr{}) {
			continue
		}
		attr.Value = attr.Value.Resolve()
		if attr.Value.Kind() == slog.KindGroup {
			next := prefix
			if attr.Key != "" {
				next = append(append([]string(nil), prefix...), attr.Key)
			}
			appendFields(dst, next, attr.Value.Group()...)
			continue
		}
		key := attr.Key
		if len(prefix) > 0 {
			key = strings.Join(prefix, ".") + "." + key
		}
		*dst = append(*dst, field{key: key, value: attr.Value})
	}
}

func plainString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n=\"") {
		return strconv.Quote(s)
	}
	return s
}

// levelLabel pads to five columns so messages line up.
func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}
