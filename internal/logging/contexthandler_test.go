package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/liftapp/liftapp/internal/logging"
)

func TestContextAttrsReachRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := logging.WithAttrs(context.Background(), slog.String("user_id", "u1"))
	ctx = logging.WithAttrs(ctx, slog.String("command", "params"))

	logger.InfoContext(ctx, "hello")

	line := buf.String()
	for _, want := range []string{"user_id=u1", "command=params"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}

	// A context without attrs logs cleanly.
	buf.Reset()
	logger.InfoContext(context.Background(), "plain")
	if strings.Contains(buf.String(), "user_id") {
		t.Errorf("log line %q carries attrs from an unrelated context", buf.String())
	}
}
