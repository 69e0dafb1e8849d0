package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorDrain(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()
	c.Notify(ctx, Notice{Level: LevelWarning, Code: "adjusted", Message: "quantity adjusted"})
	c.Notify(ctx, Notice{Level: LevelError, Code: "sync_failed", Message: "boom"})

	require.Len(t, c.Notices(), 2)
	got := c.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "adjusted", got[0].Code)
	assert.Empty(t, c.Drain())
}

func TestLoggerNotifierLevels(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	n.Notify(context.Background(), Notice{Level: LevelInfo, Code: "added", Message: "added to cart"})
	assert.Empty(t, buf.String())

	n.Notify(context.Background(), Notice{Level: LevelError, Code: "sync_failed", Message: "sync failed"})
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "code=sync_failed")
}

func TestMulti(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	Multi(a, nil, b).Notify(context.Background(), Notice{Code: "x"})
	assert.Len(t, a.Notices(), 1)
	assert.Len(t, b.Notices(), 1)
}
