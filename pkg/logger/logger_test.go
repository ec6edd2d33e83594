package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cl := NewCronLogger(Component(l, "cron"))
	cl.Info("wake", "now", "07:00")
	cl.Error(errors.New("bad spec"), "schedule", "entry", 1)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG msg=wake component=cron now=07:00")
	assert.Contains(t, out, "level=ERROR msg=schedule component=cron entry=1 error=\"bad spec\"")
}
