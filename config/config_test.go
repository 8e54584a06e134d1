package config_test

import (
	"context"
	"os"
	"testing"
	"time"

	"code.vegaprotocol.io/venue/config"
	"code.vegaprotocol.io/venue/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadGivesDefaults(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, config.Write(home, config.NewDefaultConfig(), false))

	cfg, err := config.Read(home)
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig(), *cfg)
}

func TestWriteRefusesExistingFileUnlessForced(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, config.Write(home, config.NewDefaultConfig(), false))

	err := config.Write(home, config.NewDefaultConfig(), false)
	assert.ErrorIs(t, err, config.ErrConfigExists)

	assert.NoError(t, config.Write(home, config.NewDefaultConfig(), true))
}

func TestReadOverridesDefaults(t *testing.T) {
	home := t.TempDir()
	writeFile(t, home, `
[Engine]
  Level = "debug"
  QueueSize = 16

[Registry]
  Symbols = ["IBM"]
  Accounts = [7, 8]
`)

	cfg, err := config.Read(home)
	require.NoError(t, err)
	assert.Equal(t, logging.DebugLevel, cfg.Engine.Level.Get())
	assert.Equal(t, 16, cfg.Engine.QueueSize)
	assert.Equal(t, config.NewDefaultConfig().Engine.BatchSize, cfg.Engine.BatchSize)
	assert.Equal(t, []string{"IBM"}, cfg.Registry.Symbols)
	assert.Equal(t, []uint32{7, 8}, cfg.Registry.Accounts)
}

func TestReadErrors(t *testing.T) {
	_, err := config.Read(t.TempDir())
	assert.Error(t, err)

	home := t.TempDir()
	writeFile(t, home, `[Engine]
  Level = "loud"
`)
	_, err = config.Read(home)
	assert.Error(t, err)
}

func TestWatcherNotifiesListeners(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	home := t.TempDir()
	require.NoError(t, config.Write(home, config.NewDefaultConfig(), false))

	w, err := config.NewFromFile(ctx, logging.NewTestLogger(), home)
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig(), w.Get())

	updates := make(chan config.Config, 8)
	w.OnConfigUpdate(listener(updates))

	writeFile(t, home, `[Matching]
  Level = "debug"
`)

	waitFor(t, updates, func(cfg config.Config) bool {
		return cfg.Matching.Level.Get() == logging.DebugLevel
	})
	cfg := w.Get()
	assert.Equal(t, logging.DebugLevel, cfg.Matching.Level.Get())
}

func TestWatcherAppliesOptionsOnEveryLoad(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	home := t.TempDir()
	require.NoError(t, config.Write(home, config.NewDefaultConfig(), false))

	forcePort := func(cfg *config.Config) error {
		cfg.Gateway.Port = 4000
		return nil
	}
	w, err := config.NewFromFile(ctx, logging.NewTestLogger(), home, config.Use(forcePort))
	require.NoError(t, err)
	assert.Equal(t, 4000, w.Get().Gateway.Port)

	updates := make(chan config.Config, 8)
	w.OnConfigUpdate(listener(updates))
	writeFile(t, home, `[Gateway]
  Port = 5000
  ReplyBuffer = 8
`)

	cfg := waitFor(t, updates, func(cfg config.Config) bool {
		return cfg.Gateway.ReplyBuffer == 8
	})
	assert.Equal(t, 4000, cfg.Gateway.Port)
}

func TestWatcherRequiresFile(t *testing.T) {
	_, err := config.NewFromFile(context.Background(), logging.NewTestLogger(), t.TempDir())
	assert.Error(t, err)
}

func writeFile(t *testing.T, home, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(config.FilePath(home), []byte(content), 0o644))
}

// waitFor returns the first update matching cond. A write may be seen as
// several events, some of them on a truncated file.
func waitFor(t *testing.T, updates <-chan config.Config, cond func(config.Config) bool) config.Config {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-updates:
			if cond(cfg) {
				return cfg
			}
		case <-timeout:
			t.Fatal("no matching configuration update received")
			return config.Config{}
		}
	}
}

func listener(updates chan<- config.Config) func(config.Config) {
	return func(cfg config.Config) {
		select {
		case updates <- cfg:
		default:
		}
	}
}
