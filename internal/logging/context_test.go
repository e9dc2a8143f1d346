package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFromContext_NoLogger(t *testing.T) {
	if FromContext(context.Background()) != Default() {
		t.Error("FromContext() should return the default logger when none is set")
	}
}

func TestFromContext_WithLogger(t *testing.T) {
	customLogger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithContext(context.Background(), customLogger)

	if FromContext(ctx) != customLogger {
		t.Error("FromContext() should return the logger from context")
	}
}

func TestContextWith(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithContext(context.Background(), base)

	ctx = ContextWith(ctx, "command", "db list")
	FromContext(ctx).Info("running")

	if !strings.Contains(buf.String(), `command="db list"`) {
		t.Errorf("expected command attribute, got: %s", buf.String())
	}
}
