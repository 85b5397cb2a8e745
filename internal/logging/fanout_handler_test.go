package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be enabled by the debug handler")
	}
	logger := slog.New(h).With("component", "regen")
	logger.Debug("only debug")
	logger.Info("both")

	if strings.Contains(infoBuf.String(), "only debug") {
		t.Fatalf("info handler received debug record: %s", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "only debug") || !strings.Contains(debugBuf.String(), "both") {
		t.Fatalf("debug handler missing records: %s", debugBuf.String())
	}
	if !strings.Contains(infoBuf.String(), `"component":"regen"`) {
		t.Fatalf("expected attrs to reach every handler: %s", infoBuf.String())
	}
}

func TestMirrorWritesToConsole(t *testing.T) {
	var fileBuf, consoleBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&fileBuf, nil))
	logger := Mirror(base, &consoleBuf, "warn")

	logger.Info("quiet on console")
	logger.Warn("loud everywhere")

	if !strings.Contains(fileBuf.String(), "quiet on console") {
		t.Fatalf("base logger lost info record: %s", fileBuf.String())
	}
	if strings.Contains(consoleBuf.String(), "quiet on console") {
		t.Fatalf("console should filter info: %s", consoleBuf.String())
	}
	if !strings.Contains(consoleBuf.String(), "loud everywhere") {
		t.Fatalf("console missing warning: %s", consoleBuf.String())
	}
	if Mirror(base, nil, "info") != base {
		t.Fatal("expected nil writer to return base unchanged")
	}
}
