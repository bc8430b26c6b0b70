package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/pimirror/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfigWatcher_ReloadValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nfps = 25\n"), 0644))

	w, err := NewConfigWatcher(path, discardLogger())
	require.NoError(t, err)
	defer w.Stop()

	var got *config.Config
	w.SetReloadCallback(func(cfg *config.Config) { got = cfg })

	w.reload()

	require.NotNil(t, got)
	assert.Equal(t, 25, got.Output.FPS)
	assert.Equal(t, got, w.GetCurrentConfig())
}

func TestConfigWatcher_ReloadInvalidKeepsCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[source]\ndisplay = -1\n"), 0644))

	w, err := NewConfigWatcher(path, discardLogger())
	require.NoError(t, err)
	defer w.Stop()

	initial := config.DefaultConfig()
	w.currentConfig = initial

	called := false
	w.SetReloadCallback(func(*config.Config) { called = true })

	w.reload()

	assert.False(t, called)
	assert.Equal(t, initial, w.GetCurrentConfig())
}

func TestConfigWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nfps = 10\n"), 0644))

	w, err := NewConfigWatcher(path, discardLogger())
	require.NoError(t, err)
	defer w.Stop()

	reloaded := make(chan *config.Config, 1)
	w.SetReloadCallback(func(cfg *config.Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, config.DefaultConfig()))

	require.NoError(t, os.WriteFile(path, []byte("[output]\nfps = 30\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 30, cfg.Output.FPS)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	w, err := NewConfigWatcher(path, discardLogger())
	require.NoError(t, err)
	defer w.Stop()

	reloaded := make(chan struct{}, 1)
	w.SetReloadCallback(func(*config.Config) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, config.DefaultConfig()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("[output]\nfps = 99\n"), 0644))

	select {
	case <-reloaded:
		t.Fatal("reload fired for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestConfigWatcher_StopIdempotent(t *testing.T) {
	w, err := NewConfigWatcher(filepath.Join(t.TempDir(), "config.toml"), discardLogger())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background(), config.DefaultConfig()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestNewConfigWatcher_DefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	w, err := NewConfigWatcher("", discardLogger())
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, config.ConfigPath(), w.configPath)
}
