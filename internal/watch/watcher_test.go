package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/config"
)

func TestWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Dir:      dir,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	for _, name := range []string{"a.vcf", "b.VCARD", "notes.txt", "a.vcf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked")
	}

	// Let a second debounce window pass to make sure nothing else fires.
	time.Sleep(300 * time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"a.vcf", "b.VCARD"}, collected)
}

func TestWatcher_RunTwice(t *testing.T) {
	w, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	assert.EqualError(t, w.Run(ctx), config.ErrWatcherRunning)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{})
	assert.EqualError(t, err, config.ErrLocalPathEmpty)

	_, err = New(Config{Dir: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrWatcher)
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		evt  fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/c/a.vcf", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/c/a.vcf", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/c/a.vcf", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/c/a.vcf.swp", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/c/b.Vcard", Op: fsnotify.Rename}, true},
	}
	for _, tt := range tests {
		t.Run(tt.evt.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.evt))
		})
	}
}
