package shutdown

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWithSignals(t *testing.T) {
	t.Run("signal cancels and is logged", func(t *testing.T) {
		var out syncBuffer
		log := slog.New(slog.NewTextHandler(&out, nil))

		ctx, cancel := WithSignals(context.Background(), log, syscall.SIGUSR1)
		defer cancel()

		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("context was not cancelled by the signal")
		}
		assert.Eventually(t, func() bool {
			return strings.Contains(out.String(), `signal="user defined signal 1"`)
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("parent cancellation stops watching", func(t *testing.T) {
		parent, stop := context.WithCancel(context.Background())
		ctx, cancel := WithSignals(parent, nil)
		defer cancel()

		stop()
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context outlived its parent")
		}
	})
}
